// Package report renders analyzed methods as an XML report and derives
// compact score codes from it.
//
// The report layout:
//
//	<javadoc-analysis-report generated-at="..." total-methods="N">
//	  <summary>
//	    <total-methods/>, <methods-with-metrics/>, <average-score/>
//	    <score-distribution> score-1-2 ... score-5 </score-distribution>
//	  </summary>
//	  <methods>
//	    <method> name, signature, parameters, javadoc, metrics-result </method>
//	  </methods>
//	</javadoc-analysis-report>
//
// Score codes have the form Q{method}_{metric}-{score}, with methods
// numbered in report order from 1 and metrics numbered by a caller-supplied
// mapping. Metrics missing from the mapping are left out.
package report
