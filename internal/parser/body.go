package parser

import "strings"

// lexMode is the lexical state of the body extractor
type lexMode int

const (
	modeCode lexMode = iota
	modeLineComment
	modeBlockComment
	modeString
	modeChar
	modeTextBlock
)

// ExtractBody scans forward from the opening brace at src[open] and
// returns the text between it and its matching closing brace, exclusive
// of both. end is the offset just past the closing brace.
//
// Braces inside comments and string, char or text block literals never
// change the depth. If input ends before the depth returns to zero the
// rest of src is returned with terminated set to false.
func ExtractBody(src string, open int) (body string, end int, terminated bool) {
	if open < 0 || open >= len(src) || src[open] != '{' {
		return "", open, false
	}

	depth := 0
	mode := modeCode
	for i := open; i < len(src); i++ {
		c := src[i]
		switch mode {
		case modeCode:
			switch {
			case c == '/' && i+1 < len(src) && src[i+1] == '/':
				mode = modeLineComment
				i++
			case c == '/' && i+1 < len(src) && src[i+1] == '*':
				mode = modeBlockComment
				i++
			case strings.HasPrefix(src[i:], `"""`):
				mode = modeTextBlock
				i += 2
			case c == '"':
				mode = modeString
			case c == '\'':
				mode = modeChar
			case c == '{':
				depth++
			case c == '}':
				depth--
				if depth == 0 {
					return src[open+1 : i], i + 1, true
				}
			}

		case modeLineComment:
			if c == '\n' {
				mode = modeCode
			}

		case modeBlockComment:
			if c == '*' && i+1 < len(src) && src[i+1] == '/' {
				mode = modeCode
				i++
			}

		case modeString, modeChar:
			switch {
			case c == '\\':
				i++
			case c == '\n':
				// Unterminated literal; resume code on the next line
				mode = modeCode
			case c == '"' && mode == modeString, c == '\'' && mode == modeChar:
				mode = modeCode
			}

		case modeTextBlock:
			switch {
			case c == '\\':
				i++
			case strings.HasPrefix(src[i:], `"""`):
				mode = modeCode
				i += 2
			}
		}
	}

	return src[open+1:], len(src), false
}
