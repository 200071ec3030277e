// Package types provides shared type definitions for docaudit.
//
// This package defines the domain types passed between the scanner, the
// doc comment structurer, the batch assembler, the response reconciler and
// the report sinks.
//
// # Core Types
//
// SourceUnit is one Java compilation unit handed to the scanner:
//
//	unit := parser.NewSourceUnit("src/Calc.java", content)
//
// Method is one extracted method or constructor declaration. Its Body never
// includes the outer braces, and ParameterNames and ParameterTypes are
// always the same length:
//
//	m := &types.Method{
//	    Name:           "add",
//	    Signature:      "public int add(int a, int b)",
//	    ParameterNames: []string{"a", "b"},
//	    ParameterTypes: []string{"int", "int"},
//	    ReturnType:     "int",
//	}
//
// DocComment is the structured form of a method's /** ... */ block.
//
// # Evaluation
//
// Metric describes one rubric dimension scored 1 to 5. EvaluationResult
// collects the MetricResult values recorded for a method and keeps the
// overall score equal to the arithmetic mean of every recorded score:
//
//	res := types.NewEvaluationResult()
//	res.AddMetric(types.MetricResult{Name: "Clarity", Score: 4})
//	res.AddMetric(types.MetricResult{Name: "Completeness", Score: 5})
//	res.OverallScore() // 4.5
//
// # Batches
//
// Batch is an ordered group of methods sent to the evaluator in one request.
// Positions inside a batch are 0-based here and 1-based in prompts.
package types
