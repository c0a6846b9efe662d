package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	httperr "github.com/swaplab/swap-history/internal/core/errors"
	"github.com/swaplab/swap-history/internal/core/export"
	corehistory "github.com/swaplab/swap-history/internal/core/history"
)

// RegisterRoutes registers the history API routes on the given router.
func (s *Service) RegisterRoutes(r gin.IRouter) {
	r.GET("/v1/history", s.HandleGetHistory)
	r.GET("/v1/history/export", s.HandleExportHistory)
}

// historyResponse wraps the sections with summary fields the renderer needs
// to distinguish "no data yet" from "loaded, zero operations".
type historyResponse struct {
	Sections   corehistory.History `json:"sections"`
	Operations int                 `json:"operations"`
	HasPending bool                `json:"has_pending"`
}

// HandleGetHistory handles GET /v1/history — the current day-sectioned view.
func (s *Service) HandleGetHistory(c *gin.Context) {
	h := s.history.Current()
	if h == nil {
		h = corehistory.History{}
	}
	c.JSON(http.StatusOK, historyResponse{
		Sections:   h,
		Operations: h.OperationCount(),
		HasPending: s.history.HasPending(),
	})
}

// HandleExportHistory handles GET /v1/history/export — the CSV download.
// Export failure is reported once to the caller and leaves the aggregated
// state untouched.
func (s *Service) HandleExportHistory(c *gin.Context) {
	csvText, err := export.Serialize(s.history.Current())
	if err != nil {
		c.JSON(http.StatusInternalServerError, httperr.ErrorResponse{
			ErrorType: httperr.HttpExportFailedError,
			Message:   "Failed to serialize swap history",
			Details:   err.Error(),
		})
		return
	}

	c.Header("Content-Disposition", `attachment; filename="`+export.Filename(s.nowFn())+`"`)
	c.Data(http.StatusOK, "text/csv; charset=utf-8", []byte(csvText))
}
