package types

import "strings"

// Method is one method or constructor declaration extracted from a source
// unit. It is the unit of work for batching, evaluation and reporting.
type Method struct {
	// Identification
	Name        string
	ClassName   string
	PackageName string
	FilePath    string

	// Content
	Signature string // Rebuilt from parsed tokens, not the raw source slice
	Body      string // Text between the outer braces, "" when bodiless
	FullCode  string // Signature plus body or terminating ';'
	RawDoc    string // Preceding /** */ block verbatim, "" when absent

	// Parameters are positionally paired
	ParameterNames []string
	ParameterTypes []string
	ReturnType     string // "" for constructors

	// Location
	StartLine int
	EndLine   int

	IsConstructor bool
	Bodiless      bool // Declaration ended with ';'
	Unterminated  bool // Body ran to end of input without a closing brace

	Doc    *DocComment
	Result *EvaluationResult
}

// QualifiedName returns package.Class.name with empty parts skipped
func (m *Method) QualifiedName() string {
	parts := make([]string, 0, 3)
	if m.PackageName != "" {
		parts = append(parts, m.PackageName)
	}
	if m.ClassName != "" {
		parts = append(parts, m.ClassName)
	}
	parts = append(parts, m.Name)
	return strings.Join(parts, ".")
}

// HasDoc reports whether a structured doc comment is attached
func (m *Method) HasDoc() bool {
	return m.Doc != nil
}

// Evaluated reports whether an evaluation result has been attached
func (m *Method) Evaluated() bool {
	return m.Result != nil
}

// Validate performs structural validation of the method
func (m *Method) Validate() error {
	if m.Name == "" {
		return ErrEmptyName
	}
	if len(m.ParameterNames) != len(m.ParameterTypes) {
		return ErrParameterMismatch
	}
	if m.StartLine > 0 && m.EndLine < m.StartLine {
		return ErrInvalidLineRange
	}
	return nil
}
