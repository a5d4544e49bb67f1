package domain

// BatchFailure records one item of a batch that the backend rejected or
// that could not be attempted.
type BatchFailure struct {
	ID    *int64 `json:"id,omitempty"`
	Input any    `json:"input,omitempty"`
	Error string `json:"error"`
}

// BatchResult aggregates the outcome of a batch mutation. T is a TimeEntry
// for create/update and a DeleteStatus for delete.
type BatchResult[T any] struct {
	Succeeded    []T            `json:"succeeded"`
	Failed       []BatchFailure `json:"failed"`
	SuccessCount int            `json:"success_count"`
	ErrorCount   int            `json:"error_count"`
}

// NewBatchResult returns a result with empty, non-nil lists.
func NewBatchResult[T any]() BatchResult[T] {
	return BatchResult[T]{Succeeded: []T{}, Failed: []BatchFailure{}}
}

func (r *BatchResult[T]) AddSuccess(v T) {
	r.Succeeded = append(r.Succeeded, v)
	r.SuccessCount++
}

func (r *BatchResult[T]) AddFailure(f BatchFailure) {
	r.Failed = append(r.Failed, f)
	r.ErrorCount++
}

// DeleteStatus is a successful delete with the backend's HTTP status.
type DeleteStatus struct {
	ID     int64 `json:"id"`
	Status int   `json:"status"`
}
