// Package prompt renders the evaluation request for a batch of methods.
package prompt

import (
	"fmt"
	"strings"

	"github.com/dshills/docaudit/internal/tokens"
	"github.com/dshills/docaudit/pkg/types"
)

// MetricNamer lists the metrics the response format should ask for
type MetricNamer interface {
	Names() []string
}

// Renderer builds prompts from methods and guideline text
type Renderer struct {
	metrics MetricNamer
}

// New creates a Renderer for the given catalog
func New(metrics MetricNamer) *Renderer {
	return &Renderer{metrics: metrics}
}

// Render builds the prompt for methods. Method i is numbered i+1.
func (r *Renderer) Render(methods []*types.Method, guidelines string) string {
	return r.render(methods, guidelines, nil)
}

// RenderBatch renders a batch. For an oversize batch with maxTokens > 0
// the method body is truncated from the end so the prompt's estimate
// fits maxTokens; the rest of the prompt is kept intact.
func (r *Renderer) RenderBatch(b *types.Batch, guidelines string, maxTokens int) string {
	if !b.Oversize || maxTokens <= 0 || len(b.Methods) != 1 {
		return r.Render(b.Methods, guidelines)
	}

	full := r.Render(b.Methods, guidelines)
	if tokens.Fits(full, maxTokens) {
		return full
	}

	empty := ""
	skeleton := r.render(b.Methods, guidelines, &empty)
	budget := maxTokens - tokens.Estimate(skeleton)
	body := tokens.Truncate(b.Methods[0].Body, budget)
	return r.render(b.Methods, guidelines, &body)
}

func (r *Renderer) render(methods []*types.Method, guidelines string, bodyOverride *string) string {
	var b strings.Builder

	b.WriteString("You are a documentation quality evaluator. Your task is to evaluate the quality of Javadoc documentation for Java methods.\n\n")

	b.WriteString("EVALUATION GUIDELINES:\n")
	b.WriteString(guidelines)
	b.WriteString("\n\n")

	b.WriteString("METHODS TO EVALUATE:\n\n")
	for i, m := range methods {
		fmt.Fprintf(&b, "METHOD %d:\n", i+1)
		body := m.Body
		if bodyOverride != nil {
			body = *bodyOverride
		}
		writeMethod(&b, m, body)
		b.WriteString("\n\n")
	}

	b.WriteString("IMPORTANT FORMATTING REQUIREMENTS:\n")
	b.WriteString("- Use PLAIN TEXT only - NO markdown formatting (no **, *, etc.)\n")
	b.WriteString("- Format metrics exactly as: 'MetricName: Score' (e.g., 'Clarity: 3')\n")
	b.WriteString("- Do NOT bold, italicize, or emphasize metric names\n")
	b.WriteString("- Use consistent formatting throughout your response\n")
	b.WriteString("- Each metric should be on its own line followed by justification\n\n")

	b.WriteString("FORMAT YOUR RESPONSE AS:\n\n")
	var names []string
	if r.metrics != nil {
		names = r.metrics.Names()
	}
	for i := range methods {
		fmt.Fprintf(&b, "METHOD %d [method name] EVALUATION:\n", i+1)
		for _, name := range names {
			fmt.Fprintf(&b, "%s: [rating score]\n", name)
			b.WriteString("Justification: [explanation]\n\n")
		}
		b.WriteString("Overall Assessment: [brief summary]\n\n")
		b.WriteString("Recommendations:\n")
		b.WriteString("1. [recommendation 1]\n")
		b.WriteString("2. [recommendation 2]\n")
		b.WriteString("... (if any)\n\n")
		if i < len(methods)-1 {
			b.WriteString("---\n\n")
		}
	}

	return b.String()
}

func writeMethod(b *strings.Builder, m *types.Method, body string) {
	b.WriteString("```java\n")
	b.WriteString(m.Signature)
	b.WriteString("\n```\n\n")

	b.WriteString("METHOD BODY:\n```java\n")
	b.WriteString(body)
	b.WriteString("\n```\n\n")

	if m.RawDoc != "" {
		b.WriteString("JAVADOC:\n```java\n")
		b.WriteString(m.RawDoc)
		b.WriteString("\n```\n")
	} else {
		b.WriteString("JAVADOC: None\n")
	}

	b.WriteString("\nCONTEXT:\n")
	fmt.Fprintf(b, "Class: %s\n", m.ClassName)
	fmt.Fprintf(b, "Package: %s\n", m.PackageName)

	if len(m.ParameterNames) > 0 {
		b.WriteString("Parameters:\n")
		for i, name := range m.ParameterNames {
			fmt.Fprintf(b, "- %s %s\n", m.ParameterTypes[i], name)
		}
	}

	if !m.IsConstructor && m.ReturnType != "void" {
		fmt.Fprintf(b, "Return Type: %s\n", m.ReturnType)
	}
}
