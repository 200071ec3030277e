package types

// Batch is an ordered, non-empty group of methods sent in one request.
// Methods are references into the caller's method slice.
type Batch struct {
	Index           int
	Methods         []*Method
	EstimatedTokens int

	// Oversize marks a single method whose own cost exceeds the
	// safety-adjusted ceiling. Its payload may be truncated when rendered.
	Oversize bool
}

// Len returns the number of methods in the batch
func (b *Batch) Len() int {
	return len(b.Methods)
}

// Validate checks batch structure
func (b *Batch) Validate() error {
	if b.Index < 0 {
		return ErrInvalidBatchIndex
	}
	if len(b.Methods) == 0 {
		return ErrEmptyBatch
	}
	return nil
}
