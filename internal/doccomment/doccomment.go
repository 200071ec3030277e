package doccomment

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"unicode"

	"github.com/dshills/docaudit/pkg/types"
)

var (
	// ErrEmptyComment is returned for a block with no content
	ErrEmptyComment = errors.New("doc comment is empty")

	// ErrMalformedTag is returned when a tag is missing its required name
	ErrMalformedTag = errors.New("malformed doc comment tag")
)

// Structurer parses doc comments and reports coverage diagnostics
type Structurer struct {
	logger *slog.Logger
}

// New creates a Structurer. A nil logger uses slog.Default().
func New(logger *slog.Logger) *Structurer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Structurer{logger: logger.With("component", "doccomment")}
}

// Parse structures raw for a method with the given parameter names.
// It returns nil for blank input and for any comment that cannot be
// decomposed cleanly.
func (s *Structurer) Parse(raw string, params []string) *types.DocComment {
	if strings.TrimSpace(raw) == "" {
		return nil
	}

	doc, err := Structure(raw)
	if err != nil {
		if errors.Is(err, ErrEmptyComment) {
			s.logger.Debug("empty doc comment ignored")
		} else {
			s.logger.Warn("malformed doc comment ignored", "error", err)
		}
		return nil
	}

	if missing := Undocumented(doc, params); len(missing) > 0 {
		s.logger.Debug("undocumented parameters", "params", missing)
	}
	return doc
}

// Structure decomposes raw into a DocComment without logging
func Structure(raw string) (*types.DocComment, error) {
	text := Normalize(raw)
	if text == "" {
		return nil, ErrEmptyComment
	}

	segments := splitTags(text)
	doc := &types.DocComment{
		Description: strings.TrimSpace(segments[0]),
		Raw:         raw,
	}

	for _, seg := range segments[1:] {
		tag, rest := splitFirst(seg[1:])
		switch tag {
		case "param":
			name, desc := splitFirst(rest)
			if name == "" {
				return nil, fmt.Errorf("%w: @param without a name", ErrMalformedTag)
			}
			doc.Params = append(doc.Params, types.ParamTag{Name: name, Description: desc})
		case "return":
			doc.Return = rest
			doc.HasReturn = true
		case "throws", "exception":
			typ, desc := splitFirst(rest)
			if typ == "" {
				return nil, fmt.Errorf("%w: @%s without a type", ErrMalformedTag, tag)
			}
			doc.Throws = append(doc.Throws, types.ThrowsTag{Type: typ, Description: desc})
		default:
			if tag == "" {
				return nil, fmt.Errorf("%w: bare '@'", ErrMalformedTag)
			}
			doc.Other = append(doc.Other, types.OtherTag{Name: tag, Content: rest})
		}
	}

	return doc, nil
}

// Normalize strips comment delimiters and line prefixes and collapses
// whitespace to single spaces.
func Normalize(raw string) string {
	text := strings.TrimSpace(raw)
	text = strings.TrimPrefix(text, "/**")
	text = strings.TrimSuffix(text, "*/")
	text = strings.ReplaceAll(text, "\r\n", "\n")

	lines := strings.Split(text, "\n")
	for i, line := range lines {
		line = strings.TrimLeftFunc(line, unicode.IsSpace)
		lines[i] = strings.TrimPrefix(line, "*")
	}

	return strings.Join(strings.Fields(strings.Join(lines, " ")), " ")
}

// Undocumented returns the params that have no @param entry in doc
func Undocumented(doc *types.DocComment, params []string) []string {
	var missing []string
	for _, p := range params {
		if doc == nil || !doc.Documents(p) {
			missing = append(missing, p)
		}
	}
	return missing
}

// splitTags returns the description followed by one segment per block tag.
// Each tag segment starts with '@'.
func splitTags(text string) []string {
	segments := make([]string, 0, 4)
	start := 0
	for i := 0; i < len(text); i++ {
		if text[i] != '@' {
			continue
		}
		if i > 0 && text[i-1] != ' ' {
			continue
		}
		segments = append(segments, text[start:i])
		start = i
	}
	return append(segments, text[start:])
}

// splitFirst splits s at its first whitespace run
func splitFirst(s string) (head, rest string) {
	s = strings.TrimSpace(s)
	idx := strings.IndexFunc(s, unicode.IsSpace)
	if idx < 0 {
		return s, ""
	}
	return s[:idx], strings.TrimSpace(s[idx:])
}
