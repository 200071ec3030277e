// Package pipeline runs a complete documentation audit.
//
// A run moves through these stages:
//
//  1. Scan: source units are parsed concurrently (errgroup plus a
//     semaphore sized by Config.Workers). A unit that cannot be scanned
//     is counted and reported, never fatal. Output keeps unit order.
//  2. Filter: only methods with a doc comment are kept unless
//     IncludeUndocumented is set.
//  3. Batch: methods are grouped under the item and token ceilings.
//  4. Evaluate: each batch is rendered to a prompt and sent to the
//     evaluator. A failed call leaves that batch without results.
//  5. Reconcile: the response is parsed and section i is attached to the
//     i-th method of the batch. Methods with no section stay unevaluated.
//  6. Persist: when a storage sink is configured, the run and every
//     method are written in one transaction.
//
// Only one run may be active per Pipeline; a concurrent call fails with
// ErrRunInProgress.
package pipeline
