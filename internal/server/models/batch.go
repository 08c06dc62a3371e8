package models

// MaxBatchErrors caps the error list carried by a batch result so a large
// failing batch cannot balloon the response.
const MaxBatchErrors = 100

// BatchResult reports the outcome of a bulk operation (import, sync).
// Failures are isolated per item: one bad item never aborts the batch.
type BatchResult struct {
	Succeeded int      `json:"succeeded"`
	Failed    int      `json:"failed"`
	Errors    []string `json:"errors"`
}

// AddError records one failed item, keeping at most MaxBatchErrors messages.
func (b *BatchResult) AddError(msg string) {
	b.Failed++
	if len(b.Errors) < MaxBatchErrors {
		b.Errors = append(b.Errors, msg)
	}
}
