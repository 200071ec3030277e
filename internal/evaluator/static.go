package evaluator

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"sync"
)

// ProviderStatic names the offline evaluator
const ProviderStatic = "static"

var (
	promptMethodRe = regexp.MustCompile(`(?m)^METHOD (\d+):\n`)
	promptFormatRe = regexp.MustCompile(`(?m)^IMPORTANT FORMATTING REQUIREMENTS:`)
	metricLineRe   = regexp.MustCompile(`(?m)^(.+): \[rating score\]$`)
)

// StaticProvider answers without network access. Canned responses are
// returned in order; once they run out, a response is synthesized from the
// prompt by checking each method's Javadoc against its parameters and
// return type.
type StaticProvider struct {
	mu        sync.Mutex
	responses []string
	calls     int
}

// NewStaticProvider creates an offline evaluator
func NewStaticProvider(responses ...string) *StaticProvider {
	return &StaticProvider{responses: responses}
}

// Evaluate returns the next canned response or a synthesized one
func (s *StaticProvider) Evaluate(ctx context.Context, req Request) (*Response, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := ValidateRequest(req); err != nil {
		return nil, err
	}

	s.mu.Lock()
	n := s.calls
	s.calls++
	s.mu.Unlock()

	text := ""
	if n < len(s.responses) {
		text = s.responses[n]
	} else {
		text = Synthesize(req.Prompt)
	}
	return &Response{Text: text, Provider: ProviderStatic, Model: ProviderStatic}, nil
}

// Calls reports how many prompts were evaluated
func (s *StaticProvider) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

func (s *StaticProvider) Provider() string { return ProviderStatic }
func (s *StaticProvider) Model() string    { return ProviderStatic }
func (s *StaticProvider) Close() error     { return nil }

// Synthesize builds an evaluation response in the requested format for
// every method in a rendered prompt. Scores come from tag coverage: 1 with
// no Javadoc, otherwise 3 plus one point each for full @param coverage and
// a needed @return.
func Synthesize(prompt string) string {
	metrics := metricLineRe.FindAllStringSubmatch(prompt, -1)
	names := make([]string, 0, len(metrics))
	seen := make(map[string]bool)
	for _, m := range metrics {
		if !seen[m[1]] {
			seen[m[1]] = true
			names = append(names, m[1])
		}
	}

	end := len(prompt)
	if loc := promptFormatRe.FindStringIndex(prompt); loc != nil {
		end = loc[0]
	}
	headers := promptMethodRe.FindAllStringSubmatchIndex(prompt[:end], -1)

	var b strings.Builder
	for i, h := range headers {
		blockEnd := end
		if i+1 < len(headers) {
			blockEnd = headers[i+1][0]
		}
		index := prompt[h[2]:h[3]]
		block := prompt[h[1]:blockEnd]

		if i > 0 {
			b.WriteString("---\n\n")
		}
		writeSynthesized(&b, index, block, names)
	}
	return b.String()
}

type coverage struct {
	name          string
	hasDoc        bool
	params        int
	documented    int
	needsReturn   bool
	returnPresent bool
}

func inspect(block string) coverage {
	c := coverage{hasDoc: !strings.Contains(block, "JAVADOC: None")}

	if sig, ok := strings.CutPrefix(block, "```java\n"); ok {
		line, _, _ := strings.Cut(sig, "\n")
		if open := strings.Index(line, "("); open > 0 {
			fields := strings.Fields(line[:open])
			if len(fields) > 0 {
				c.name = fields[len(fields)-1]
			}
		}
	}

	if _, after, ok := strings.Cut(block, "\nParameters:\n"); ok {
		for _, line := range strings.Split(after, "\n") {
			if !strings.HasPrefix(line, "- ") {
				break
			}
			c.params++
		}
	}
	c.documented = strings.Count(block, "@param")
	c.needsReturn = strings.Contains(block, "\nReturn Type: ")
	c.returnPresent = strings.Contains(block, "@return")
	return c
}

func (c coverage) score() int {
	if !c.hasDoc {
		return 1
	}
	score := 3
	if c.documented >= c.params {
		score++
	}
	if !c.needsReturn || c.returnPresent {
		score++
	}
	return score
}

func writeSynthesized(b *strings.Builder, index, block string, names []string) {
	c := inspect(block)
	score := c.score()

	fmt.Fprintf(b, "METHOD %s %s EVALUATION:\n", index, c.name)
	for _, name := range names {
		fmt.Fprintf(b, "%s: %d\n", name, score)
		fmt.Fprintf(b, "Justification: %d of %d parameters documented, return documented: %t.\n\n",
			min(c.documented, c.params), c.params, c.returnPresent)
	}
	fmt.Fprintf(b, "Overall Assessment: heuristic score %d.\n\n", score)

	var recs []string
	if !c.hasDoc {
		recs = append(recs, "Add a Javadoc comment")
	} else {
		if c.documented < c.params {
			recs = append(recs, "Document every parameter with @param")
		}
		if c.needsReturn && !c.returnPresent {
			recs = append(recs, "Describe the return value with @return")
		}
	}
	b.WriteString("Recommendations:\n")
	for i, r := range recs {
		fmt.Fprintf(b, "%d. %s\n", i+1, r)
	}
	b.WriteString("\n")
}
