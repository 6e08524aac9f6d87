package model

// BatchResult aggregates the outcome of one batch run.
//
// Every item the batch reached is counted exactly once in SuccessCount or
// FailedCount. Skipped items (output already present and overwriting
// disabled) are part of FailedCount, are also counted in SkippedCount, and
// add nothing to Errors.
type BatchResult struct {
	SuccessCount int
	FailedCount  int
	SkippedCount int

	// Errors holds one "file: reason" message per failed item, in input order.
	Errors []string

	// Cancelled is set when the run stopped before reaching every item.
	Cancelled bool
}

// Processed returns the number of items the batch reached.
func (r BatchResult) Processed() int {
	return r.SuccessCount + r.FailedCount
}
