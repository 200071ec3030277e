package parser

import (
	"path/filepath"
	"strings"

	"github.com/dshills/docaudit/pkg/types"
)

// NewSourceUnit builds a SourceUnit and infers its package and primary
// type name. The type name falls back to the file's base name.
func NewSourceUnit(path, content string) *types.SourceUnit {
	unit := &types.SourceUnit{Path: path, Content: content}
	code := codeTokens(lex(content))

	for i := 0; i < len(code); i++ {
		t := code[i]
		if t.kind != tokIdent {
			continue
		}
		if i > 0 && code[i-1].isPunct(".") {
			continue
		}

		if unit.Package == "" && t.text == "package" {
			j := i + 1
			for j < len(code) && !code[j].isPunct(";") {
				j++
			}
			unit.Package = joinTokens(code[i+1 : j])
			i = j
			continue
		}

		if isTypeKeyword(t.text) && i+1 < len(code) && code[i+1].kind == tokIdent {
			unit.TypeName = code[i+1].text
			break
		}
	}

	if unit.TypeName == "" {
		base := filepath.Base(path)
		unit.TypeName = strings.TrimSuffix(base, filepath.Ext(base))
	}
	return unit
}
