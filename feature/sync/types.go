package sync

// Result is the structured outcome of one reconciliation cycle, so callers
// can report partial success.
type Result struct {
	// Processed counts connections whose pull succeeded.
	Processed int `json:"processed"`
	// Conflicts counts genuine booking-vs-booking conflicts detected.
	Conflicts int `json:"conflicts"`
	// Errors collects non-fatal per-connection failure messages.
	Errors []string `json:"errors"`
}

// merge folds another unit's result into this one.
func (r *Result) merge(other *Result) {
	if other == nil {
		return
	}
	r.Processed += other.Processed
	r.Conflicts += other.Conflicts
	r.Errors = append(r.Errors, other.Errors...)
}

// Status describes the scheduler for the status endpoint.
type Status struct {
	State    State  `json:"state"`
	Interval string `json:"interval"`
	Online   bool   `json:"online"`
}
