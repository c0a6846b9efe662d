package api

import (
	"time"

	"github.com/swaplab/swap-history/internal/history"
)

// Service exposes the aggregated swap history to external consumers: the
// day-sectioned view as JSON and the CSV export. Both are synchronous reads
// of the current history snapshot — they observe fully the pre- or fully
// the post-refresh state, never a mix.
type Service struct {
	history *history.Service
	nowFn   func() time.Time
}

// NewService creates the read/export API service.
func NewService(historySvc *history.Service) *Service {
	return &Service{
		history: historySvc,
		nowFn: func() time.Time {
			return time.Now().UTC()
		},
	}
}
