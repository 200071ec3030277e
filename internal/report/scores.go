package report

import "fmt"

// MappingFromNames numbers metrics by position, starting at 1
func MappingFromNames(names []string) map[string]int {
	mapping := make(map[string]int, len(names))
	for i, name := range names {
		mapping[name] = i + 1
	}
	return mapping
}

// ScoreCodes lists Q{method}_{metric}-{score} for every mapped metric in
// report order.
func (d *Document) ScoreCodes(mapping map[string]int) []string {
	var codes []string
	for i, m := range d.Methods {
		if m.Result == nil {
			continue
		}
		for _, r := range m.Result.Metrics {
			n, ok := mapping[r.Name]
			if !ok {
				continue
			}
			codes = append(codes, fmt.Sprintf("Q%d_%d-%d", i+1, n, r.Score))
		}
	}
	return codes
}
