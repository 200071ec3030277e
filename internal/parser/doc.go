// Package parser extracts method and constructor declarations from Java
// source text without a full grammar.
//
// A lexer first splits the text into identifiers, punctuation, literals and
// comments. Declarations are matched only at the first code token after a
// '{', '}' or ';' boundary: optional annotations, modifiers in any order, an
// optional <...> type parameter clause, a return type (absent for
// constructors), a name, a parenthesized parameter list, an optional throws
// clause and a terminator of '{' or ';'.
//
// # Basic Usage
//
//	p := parser.New(logger)
//	result, err := p.ParseFile("/path/to/Calc.java")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	for _, m := range result.Methods {
//	    fmt.Printf("%s:%d %s\n", m.FilePath, m.StartLine, m.Signature)
//	}
//
// # Body Extraction
//
// ExtractBody counts brace depth from the opening brace while tracking
// line comments, block comments, string literals, char literals and text
// blocks, so braces inside any of them never change the depth. A body that
// reaches end of input is returned as-is and flagged Unterminated.
//
// # Doc Comments
//
// The last /** ... */ block between the previous boundary and a declaration
// is attached to it. Earlier blocks in the same gap are discarded, which
// keeps a type's comment from leaking onto the type's first method. This is
// a heuristic, not a scoping rule.
//
// # Error Handling
//
// Scanning never fails on malformed input:
//
//	result := p.Parse(unit)
//	for _, perr := range result.Errors {
//	    fmt.Printf("%s:%d %s\n", perr.File, perr.Line, perr.Message)
//	}
//
// A header whose parameters cannot be paired into (type, name) is skipped
// and recorded with ErrMalformedDeclaration; scanning resumes after it.
package parser
