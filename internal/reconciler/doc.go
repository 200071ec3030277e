// Package reconciler maps a free-text evaluation response back onto
// structured per-method results.
//
// The response is expected to contain one section per method:
//
//	METHOD 1 add(int, int) EVALUATION:
//	Completeness: 4
//	Justification: Covers parameters and return value.
//	Clarity: 5
//	Justification: Short and precise.
//
//	Recommendations:
//	1. Mention overflow behavior.
//	---
//
// Parsing is structural and lenient. The method name in a header is
// optional and headers are matched case-insensitively. A section ends at
// the last "---" before the next header, or at the next header when no
// separator is found.
//
// # Metrics
//
// Every "Label: N" line is a metric candidate. With a catalog, each
// candidate is validated; a rejected candidate is still recorded, without a
// guideline, and the rejection is logged. The overall score of a section is
// always the mean of its recorded scores, or 0 when none were recognized.
//
// # Missing Sections
//
// Reconcile returns only the sections it found. A method index absent from
// the map was not evaluated, which callers must keep distinct from a low
// score.
package reconciler
