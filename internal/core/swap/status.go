package swap

// StatusSet is a membership test over provider statuses. The pending subset
// is injected wherever it is needed so the provider's status taxonomy can
// evolve without touching the aggregation core.
type StatusSet map[Status]struct{}

// NewStatusSet builds a StatusSet from the given statuses.
func NewStatusSet(statuses ...Status) StatusSet {
	set := make(StatusSet, len(statuses))
	for _, s := range statuses {
		set[s] = struct{}{}
	}
	return set
}

// Contains reports whether s is a member of the set.
func (set StatusSet) Contains(s Status) bool {
	_, ok := set[s]
	return ok
}

// PendingStatuses returns the default non-terminal subset.
func PendingStatuses() StatusSet {
	return NewStatusSet(StatusPending, StatusOnHold, StatusExpired)
}
