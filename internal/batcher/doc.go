// Package batcher groups extracted methods into request-sized batches.
//
// Admission is strictly greedy and left to right: methods are never
// reordered, so batch membership can be audited against the input order.
//
// # Basic Usage
//
//	a := batcher.New(batcher.Config{MaxItems: 5, MaxTokens: 100000}, logger)
//	for _, b := range a.Assemble(methods, guidelines) {
//	    fmt.Printf("batch %d: %d methods, ~%d tokens\n", b.Index, b.Len(), b.EstimatedTokens)
//	}
//
// # Budget
//
// Every batch is charged the guideline text once, since it is resent with
// each request, plus MethodCost for each method. A batch closes when the
// next method would push it past MaxTokens or when it already holds
// MaxItems methods.
//
// A method whose own cost exceeds MaxTokens minus the guideline cost minus
// SafetyMargin is emitted alone with Batch.Oversize set. Renderers may
// truncate its payload from the end.
package batcher
