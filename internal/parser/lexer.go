package parser

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// tokenKind classifies a lexical token
type tokenKind int

const (
	tokIdent tokenKind = iota
	tokPunct
	tokString
	tokChar
	tokNumber
	tokComment
	tokDocComment
	tokEOF
)

// token is one lexical element with its byte span in the source
type token struct {
	kind  tokenKind
	text  string
	start int
	end   int
}

func (t token) isPunct(s string) bool {
	return t.kind == tokPunct && t.text == s
}

func (t token) isIdent(s string) bool {
	return t.kind == tokIdent && t.text == s
}

func (t token) isComment() bool {
	return t.kind == tokComment || t.kind == tokDocComment
}

// lex splits src into tokens. It never fails: unterminated literals and
// comments end at the end of the line or input. Multi-character operators
// are emitted one character at a time so '>>' closes two type argument
// lists.
func lex(src string) []token {
	var toks []token
	i := 0
	for i < len(src) {
		r, size := utf8.DecodeRuneInString(src[i:])
		start := i

		switch {
		case unicode.IsSpace(r):
			i += size
			continue

		case strings.HasPrefix(src[i:], "//"):
			end := strings.IndexByte(src[i:], '\n')
			if end < 0 {
				i = len(src)
			} else {
				i += end
			}
			toks = append(toks, token{kind: tokComment, text: src[start:i], start: start, end: i})
			continue

		case strings.HasPrefix(src[i:], "/*"):
			end := strings.Index(src[i+2:], "*/")
			if end < 0 {
				i = len(src)
			} else {
				i += 2 + end + 2
			}
			text := src[start:i]
			kind := tokComment
			if isDocBlock(text) {
				kind = tokDocComment
			}
			toks = append(toks, token{kind: kind, text: text, start: start, end: i})
			continue

		case strings.HasPrefix(src[i:], `"""`):
			i = skipTextBlock(src, i+3)
			toks = append(toks, token{kind: tokString, text: src[start:i], start: start, end: i})
			continue

		case r == '"' || r == '\'':
			i = skipQuoted(src, i+1, byte(r))
			kind := tokString
			if r == '\'' {
				kind = tokChar
			}
			toks = append(toks, token{kind: kind, text: src[start:i], start: start, end: i})
			continue

		case isIdentStart(r):
			i += size
			for i < len(src) {
				r, size = utf8.DecodeRuneInString(src[i:])
				if !isIdentPart(r) {
					break
				}
				i += size
			}
			toks = append(toks, token{kind: tokIdent, text: src[start:i], start: start, end: i})
			continue

		case r >= '0' && r <= '9':
			i++
			for i < len(src) && isNumberPart(src[i]) {
				i++
			}
			toks = append(toks, token{kind: tokNumber, text: src[start:i], start: start, end: i})
			continue
		}

		i += size
		toks = append(toks, token{kind: tokPunct, text: src[start:i], start: start, end: i})
	}
	return toks
}

// isDocBlock reports whether a block comment is a doc comment. The empty
// comment "/**/" is not.
func isDocBlock(text string) bool {
	return strings.HasPrefix(text, "/**") && text != "/**/"
}

// skipQuoted returns the offset just past the closing quote, honoring
// backslash escapes. A newline ends an unterminated literal.
func skipQuoted(src string, i int, quote byte) int {
	for i < len(src) {
		switch src[i] {
		case '\\':
			i += 2
			continue
		case quote:
			return i + 1
		case '\n':
			return i
		}
		i++
	}
	return len(src)
}

// skipTextBlock returns the offset just past the closing """
func skipTextBlock(src string, i int) int {
	for i < len(src) {
		if src[i] == '\\' {
			i += 2
			continue
		}
		if strings.HasPrefix(src[i:], `"""`) {
			return i + 3
		}
		i++
	}
	return len(src)
}

func isIdentStart(r rune) bool {
	return r == '_' || r == '$' || unicode.IsLetter(r)
}

func isIdentPart(r rune) bool {
	return isIdentStart(r) || unicode.IsDigit(r)
}

func isNumberPart(b byte) bool {
	return b == '_' || b == '.' ||
		(b >= '0' && b <= '9') ||
		(b >= 'a' && b <= 'z') ||
		(b >= 'A' && b <= 'Z')
}
