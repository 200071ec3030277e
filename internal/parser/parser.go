package parser

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sort"
	"strings"
	"unicode"

	"github.com/dshills/docaudit/internal/doccomment"
	"github.com/dshills/docaudit/pkg/types"
)

// ErrMalformedDeclaration marks a declaration header that was recognized
// but could not be decomposed.
var ErrMalformedDeclaration = errors.New("malformed declaration")

// modifiers are the keywords accepted before a declaration, in any order
var modifiers = map[string]bool{
	"public": true, "protected": true, "private": true,
	"static": true, "final": true, "abstract": true,
	"native": true, "synchronized": true, "transient": true,
	"strictfp": true, "default": true, "sealed": true,
}

// reserved words can never be a return type or a declaration name
var reserved = map[string]bool{
	"class": true, "interface": true, "enum": true, "record": true,
	"new": true, "return": true, "throw": true, "throws": true,
	"if": true, "else": true, "for": true, "while": true, "do": true,
	"switch": true, "case": true, "try": true, "catch": true, "finally": true,
	"package": true, "import": true, "extends": true, "implements": true,
	"assert": true, "break": true, "continue": true, "instanceof": true,
	"this": true, "super": true, "goto": true, "const": true,
	"default": true, "volatile": true,
}

// Parser extracts method and constructor declarations from Java source
// using a token scan and brace balancing rather than a full grammar.
type Parser struct {
	logger *slog.Logger
	docs   *doccomment.Structurer
}

// New creates a new Parser instance. A nil logger uses slog.Default().
func New(logger *slog.Logger) *Parser {
	if logger == nil {
		logger = slog.Default()
	}
	return &Parser{
		logger: logger.With("component", "parser"),
		docs:   doccomment.New(logger),
	}
}

// ParseFile reads a Java source file and extracts its declarations
func (p *Parser) ParseFile(filePath string) (*types.ParseResult, error) {
	content, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	return p.Parse(NewSourceUnit(filePath, string(content))), nil
}

// Parse extracts every recognizable declaration from unit. Problems with
// individual declarations are recorded in the result and never stop the
// scan.
func (p *Parser) Parse(unit *types.SourceUnit) *types.ParseResult {
	s := &scan{
		p:      p,
		unit:   unit,
		src:    unit.Content,
		toks:   lex(unit.Content),
		lines:  newlineOffsets(unit.Content),
		result: &types.ParseResult{Unit: unit},
	}
	s.run()

	p.logger.Debug("parsed source unit",
		"file", unit.Path,
		"methods", len(s.result.Methods),
		"errors", len(s.result.Errors))
	return s.result
}

// typeScope is an open type body and the brace depth it lives at
type typeScope struct {
	name  string
	depth int
}

// scan holds the state for one Parse call
type scan struct {
	p      *Parser
	unit   *types.SourceUnit
	src    string
	toks   []token
	lines  []int
	result *types.ParseResult

	depth       int
	pendingType string
	scopes      []typeScope
}

// declaration is a matched declaration header
type declaration struct {
	start       int // token index of the first annotation or modifier
	modifiers   []string
	typeParams  string
	returnType  string
	name        string
	params      []token
	throws      []string
	term        int // token index of '{' or ';'
	constructor bool
}

// run walks the token stream. Declarations are only tried at the first
// code token after a '{', '}' or ';' boundary.
func (s *scan) run() {
	regionStart := 0
	atBoundary := true

	for i := 0; i < len(s.toks); {
		tok := s.toks[i]
		if tok.isComment() {
			i++
			continue
		}

		if atBoundary {
			if d, ok := s.match(i); ok {
				next := s.emit(d, s.toks[regionStart:i])
				i, regionStart = next, next
				continue
			}
		}

		s.track(i)
		if tok.isPunct("{") || tok.isPunct("}") || tok.isPunct(";") {
			atBoundary = true
			regionStart = i + 1
		} else {
			atBoundary = false
		}
		i++
	}
}

// track follows type declarations and brace depth so methods can be
// attributed to their innermost enclosing type.
func (s *scan) track(i int) {
	tok := s.toks[i]
	switch {
	case tok.kind == tokIdent && isTypeKeyword(tok.text):
		prev := s.prevCode(i)
		next := s.nextCode(i)
		if !prev.isPunct(".") && next.kind == tokIdent {
			s.pendingType = next.text
		}
	case tok.isPunct("{"):
		s.depth++
		if s.pendingType != "" {
			s.scopes = append(s.scopes, typeScope{name: s.pendingType, depth: s.depth})
			s.pendingType = ""
		}
	case tok.isPunct("}"):
		if n := len(s.scopes); n > 0 && s.scopes[n-1].depth == s.depth {
			s.scopes = s.scopes[:n-1]
		}
		s.depth--
	case tok.isPunct(";"):
		s.pendingType = ""
	}
}

func (s *scan) enclosingType() string {
	if n := len(s.scopes); n > 0 {
		return s.scopes[n-1].name
	}
	return s.unit.TypeName
}

// match tries to read a declaration header starting at token i
func (s *scan) match(i int) (declaration, bool) {
	c := &cursor{toks: s.toks, pos: i}
	d := declaration{start: i}

	for {
		t := c.peek()
		if t.isPunct("@") {
			if c.peekAt(1).isIdent("interface") {
				return d, false
			}
			if !c.skipAnnotation() {
				return d, false
			}
			continue
		}
		if t.kind == tokIdent && modifiers[t.text] {
			d.modifiers = append(d.modifiers, t.text)
			c.advance()
			continue
		}
		break
	}

	if c.peek().isPunct("<") {
		inner, ok := c.balanced("<", ">")
		if !ok {
			return d, false
		}
		d.typeParams = "<" + joinTokens(inner) + ">"
	}

	t := c.peek()
	if t.kind != tokIdent || reserved[t.text] {
		return d, false
	}

	if c.peekAt(1).isPunct("(") {
		// Constructors have no return type
		if !startsUpper(t.text) {
			return d, false
		}
		d.name = t.text
		d.constructor = true
		c.advance()
	} else {
		rt, ok := c.typeRef()
		if !ok {
			return d, false
		}
		d.returnType = rt
		name := c.peek()
		if name.kind != tokIdent || reserved[name.text] || modifiers[name.text] {
			return d, false
		}
		d.name = name.text
		c.advance()
	}

	if !c.peek().isPunct("(") {
		return d, false
	}
	params, ok := c.balanced("(", ")")
	if !ok {
		return d, false
	}
	d.params = params

	// Legacy array dims after the parameter list: int grid()[]
	for c.peek().isPunct("[") && c.peekAt(1).isPunct("]") {
		c.advance()
		c.advance()
		d.returnType += "[]"
	}

	if c.peek().isIdent("throws") {
		c.advance()
		throws, ok := c.throwsList()
		if !ok {
			return d, false
		}
		d.throws = throws
	}

	term := c.peek()
	switch {
	case term.isPunct("{"):
	case term.isPunct(";") && !d.constructor:
	default:
		return d, false
	}
	d.term = c.pos
	return d, true
}

// emit turns a matched header into a Method and returns the token index at
// which scanning resumes. region holds the comments preceding the header.
func (s *scan) emit(d declaration, region []token) int {
	termTok := s.toks[d.term]
	next := d.term + 1
	end := termTok.end
	body := ""
	terminated := true
	hasBody := termTok.isPunct("{")

	if hasBody {
		body, end, terminated = ExtractBody(s.src, termTok.start)
		next = s.tokenAt(end)
	}

	startLine := s.lineOf(s.toks[d.start].start)
	endLine := s.lineOf(end - 1)

	params, err := splitParams(d.params)
	if err != nil {
		s.p.logger.Warn("malformed declaration skipped",
			"file", s.unit.Path, "line", startLine, "name", d.name, "error", err)
		s.result.AddError(s.unit.Path, startLine,
			fmt.Sprintf("%v: %s: %v", ErrMalformedDeclaration, d.name, err))
		return next
	}

	if !terminated {
		s.p.logger.Warn("unterminated method body",
			"file", s.unit.Path, "line", startLine, "name", d.name)
		s.result.AddError(s.unit.Path, startLine,
			fmt.Sprintf("unterminated body for %s", d.name))
	}

	m := &types.Method{
		Name:           d.name,
		ClassName:      s.enclosingType(),
		PackageName:    s.unit.Package,
		FilePath:       s.unit.Path,
		Body:           body,
		ParameterNames: make([]string, 0, len(params)),
		ParameterTypes: make([]string, 0, len(params)),
		ReturnType:     d.returnType,
		StartLine:      startLine,
		EndLine:        endLine,
		IsConstructor:  d.constructor,
		Bodiless:       !hasBody,
		Unterminated:   !terminated,
	}
	for _, prm := range params {
		m.ParameterNames = append(m.ParameterNames, prm.Name)
		m.ParameterTypes = append(m.ParameterTypes, prm.Type)
	}

	m.Signature = d.signature(params)
	switch {
	case !hasBody:
		m.FullCode = m.Signature + ";"
	case terminated:
		m.FullCode = m.Signature + " {" + body + "}"
	default:
		m.FullCode = m.Signature + " {" + body
	}

	if raw := lastDocComment(region); raw != "" {
		m.RawDoc = raw
		m.Doc = s.p.docs.Parse(raw, m.ParameterNames)
	}

	s.result.Methods = append(s.result.Methods, m)
	return next
}

// lastDocComment returns the final doc comment among the comments that
// precede a declaration. Earlier blocks, such as a type-level comment
// followed by a method comment, are discarded. This is a heuristic: it
// assumes the closest block documents the declaration.
func lastDocComment(region []token) string {
	doc := ""
	for _, t := range region {
		if t.kind == tokDocComment {
			doc = t.text
		}
	}
	return doc
}

// signature rebuilds the canonical declaration header from parsed tokens
func (d *declaration) signature(params []Parameter) string {
	parts := make([]string, 0, len(d.modifiers)+2)
	parts = append(parts, d.modifiers...)
	if d.typeParams != "" {
		parts = append(parts, d.typeParams)
	}
	if d.returnType != "" {
		parts = append(parts, d.returnType)
	}

	args := make([]string, len(params))
	for i, prm := range params {
		args[i] = prm.Type + " " + prm.Name
	}
	parts = append(parts, d.name+"("+strings.Join(args, ", ")+")")

	sig := strings.Join(parts, " ")
	if len(d.throws) > 0 {
		sig += " throws " + strings.Join(d.throws, ", ")
	}
	return sig
}

func (s *scan) prevCode(i int) token {
	for j := i - 1; j >= 0; j-- {
		if !s.toks[j].isComment() {
			return s.toks[j]
		}
	}
	return token{kind: tokEOF}
}

func (s *scan) nextCode(i int) token {
	for j := i + 1; j < len(s.toks); j++ {
		if !s.toks[j].isComment() {
			return s.toks[j]
		}
	}
	return token{kind: tokEOF}
}

// tokenAt returns the index of the first token starting at or after offset
func (s *scan) tokenAt(offset int) int {
	return sort.Search(len(s.toks), func(i int) bool {
		return s.toks[i].start >= offset
	})
}

// lineOf converts a byte offset to a 1-based line number
func (s *scan) lineOf(offset int) int {
	return sort.SearchInts(s.lines, offset) + 1
}

func newlineOffsets(src string) []int {
	var lines []int
	for i := 0; i < len(src); i++ {
		if src[i] == '\n' {
			lines = append(lines, i)
		}
	}
	return lines
}

func isTypeKeyword(s string) bool {
	switch s {
	case "class", "interface", "enum", "record":
		return true
	}
	return false
}

func startsUpper(s string) bool {
	for _, r := range s {
		return unicode.IsUpper(r)
	}
	return false
}
