package parser

import (
	"errors"
	"fmt"
	"strings"
)

// errEmptyParameter and errMissingParamName describe parameter lists that
// cannot be paired into (type, name).
var (
	errEmptyParameter   = errors.New("empty parameter")
	errMissingParamName = errors.New("parameter has no name")
)

// Parameter is one declared parameter
type Parameter struct {
	Type string
	Name string
}

// SplitParameters decomposes the text between a declaration's parentheses
// into ordered (type, name) pairs. Annotations and the final modifier are
// dropped. An empty list yields no parameters and no error.
func SplitParameters(raw string) ([]Parameter, error) {
	return splitParams(codeTokens(lex(raw)))
}

func codeTokens(toks []token) []token {
	out := make([]token, 0, len(toks))
	for _, t := range toks {
		if !t.isComment() {
			out = append(out, t)
		}
	}
	return out
}

func splitParams(toks []token) ([]Parameter, error) {
	toks = codeTokens(toks)
	if len(toks) == 0 {
		return nil, nil
	}

	var params []Parameter
	depth := 0
	start := 0
	for i, t := range toks {
		if t.kind != tokPunct {
			continue
		}
		switch t.text {
		case "<", "(", "[":
			depth++
		case ">", ")", "]":
			depth--
		case ",":
			if depth == 0 {
				p, err := parseParam(toks[start:i])
				if err != nil {
					return nil, fmt.Errorf("parameter %d: %w", len(params)+1, err)
				}
				params = append(params, p)
				start = i + 1
			}
		}
	}

	p, err := parseParam(toks[start:])
	if err != nil {
		return nil, fmt.Errorf("parameter %d: %w", len(params)+1, err)
	}
	return append(params, p), nil
}

func parseParam(toks []token) (Parameter, error) {
	j := 0
	for j < len(toks) {
		if toks[j].isPunct("@") {
			j = skipAnnotation(toks, j)
			continue
		}
		if toks[j].isIdent("final") {
			j++
			continue
		}
		break
	}

	rest := toks[j:]
	if len(rest) == 0 {
		return Parameter{}, errEmptyParameter
	}

	// C-style dims on the name belong to the type: int values[]
	dims := 0
	for len(rest) >= 2 && rest[len(rest)-1].isPunct("]") && rest[len(rest)-2].isPunct("[") {
		rest = rest[:len(rest)-2]
		dims++
	}

	if len(rest) < 2 {
		return Parameter{}, errMissingParamName
	}
	name := rest[len(rest)-1]
	if name.kind != tokIdent || (reserved[name.text] && name.text != "this") {
		return Parameter{}, errMissingParamName
	}

	return Parameter{
		Type: joinTokens(rest[:len(rest)-1]) + strings.Repeat("[]", dims),
		Name: name.text,
	}, nil
}

// skipAnnotation returns the index just past an annotation starting at '@'
func skipAnnotation(toks []token, j int) int {
	j++
	for j < len(toks) && toks[j].kind == tokIdent {
		j++
		if j < len(toks) && toks[j].isPunct(".") {
			j++
			continue
		}
		break
	}
	if j < len(toks) && toks[j].isPunct("(") {
		depth := 0
		for ; j < len(toks); j++ {
			if toks[j].isPunct("(") {
				depth++
			} else if toks[j].isPunct(")") {
				depth--
				if depth == 0 {
					return j + 1
				}
			}
		}
	}
	return j
}

// joinTokens renders type tokens with canonical spacing:
// Map<String, List<int[]>> and ? extends T.
func joinTokens(toks []token) string {
	var b strings.Builder
	for i, t := range toks {
		if i > 0 && needsSpace(toks[i-1], t) {
			b.WriteByte(' ')
		}
		b.WriteString(t.text)
	}
	return b.String()
}

func needsSpace(prev, cur token) bool {
	if prev.isPunct(",") || prev.isPunct("&") || cur.isPunct("&") {
		return true
	}
	return isWordish(prev) && isWordish(cur)
}

func isWordish(t token) bool {
	return t.kind == tokIdent || t.kind == tokNumber || t.isPunct("?")
}
