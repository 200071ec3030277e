package types

import (
	"path/filepath"
	"strings"
)

// SourceUnit is one Java compilation unit as read from disk
type SourceUnit struct {
	Path     string // Origin path
	Content  string // Raw file text
	Package  string // Inferred package, "" for the default package
	TypeName string // Inferred primary type name
}

// Validate checks that the unit carries an origin path
func (u *SourceUnit) Validate() error {
	if u.Path == "" {
		return ErrMissingSourcePath
	}
	return nil
}

// RelativePath returns Path relative to base, or Path unchanged when it
// cannot be made relative.
func (u *SourceUnit) RelativePath(base string) string {
	if base == "" {
		return u.Path
	}
	rel, err := filepath.Rel(base, u.Path)
	if err != nil || strings.HasPrefix(rel, "..") {
		return u.Path
	}
	return filepath.ToSlash(rel)
}

// ParseResult represents the output of scanning one source unit
type ParseResult struct {
	Unit    *SourceUnit
	Methods []*Method

	// Errors encountered during scanning. None of them abort the scan.
	Errors []ParseError
}

// ParseError represents a recoverable problem found while scanning
type ParseError struct {
	File    string
	Line    int
	Message string
}

// Error implements the error interface
func (pe *ParseError) Error() string {
	return pe.Message
}

// HasErrors returns true if any scanning errors occurred
func (pr *ParseResult) HasErrors() bool {
	return len(pr.Errors) > 0
}

// AddError adds a scanning error to the result
func (pr *ParseResult) AddError(file string, line int, msg string) {
	pr.Errors = append(pr.Errors, ParseError{
		File:    file,
		Line:    line,
		Message: msg,
	})
}

// Documented returns the methods that carry a structured doc comment
func (pr *ParseResult) Documented() []*Method {
	out := make([]*Method, 0, len(pr.Methods))
	for _, m := range pr.Methods {
		if m.Doc != nil {
			out = append(out, m)
		}
	}
	return out
}
