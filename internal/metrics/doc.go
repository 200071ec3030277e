// Package metrics provides the read-only metric catalog used to render
// guidelines and validate reconciled scores.
//
// A Catalog is built once, from DefaultMetrics or a definitions file, and
// never mutated afterwards, so it can be shared by concurrent readers
// without locking.
//
//	catalog, err := metrics.Load("metrics-definitions.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if err := catalog.Validate("Clarity", 4); err != nil {
//	    // unknown metric, score off the 1-5 scale, or no guideline
//	}
//
// Definitions files may be YAML or JSON:
//
//	metrics:
//	  - name: Clarity
//	    description: Evaluates how clear the documentation is
//	    weight: 1.0
//	    guidelines:
//	      "1": Confusing or misleading documentation
//	      "5": Exceptionally clear
package metrics
