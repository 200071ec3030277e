package doccomment

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/docaudit/pkg/types"
)

func TestParseAddsTwoNumbers(t *testing.T) {
	raw := "/** Adds two numbers.\n@param a the first\n@param b the second\n@return sum */"

	doc := New(nil).Parse(raw, []string{"a", "b"})
	require.NotNil(t, doc)

	assert.Equal(t, "Adds two numbers.", doc.Description)
	assert.Equal(t, []types.ParamTag{
		{Name: "a", Description: "the first"},
		{Name: "b", Description: "the second"},
	}, doc.Params)
	assert.True(t, doc.HasReturn)
	assert.Equal(t, "sum", doc.Return)
	assert.Equal(t, raw, doc.Raw)
}

func TestParseAllTagKinds(t *testing.T) {
	raw := "/**\n * Does x.\n * @param x desc\n * @return y\n * @throws E reason\n */"

	doc := New(nil).Parse(raw, []string{"x"})
	require.NotNil(t, doc)

	require.Len(t, doc.Params, 1)
	assert.Equal(t, types.ParamTag{Name: "x", Description: "desc"}, doc.Params[0])
	assert.Equal(t, "y", doc.Return)
	require.Len(t, doc.Throws, 1)
	assert.Equal(t, types.ThrowsTag{Type: "E", Description: "reason"}, doc.Throws[0])
	assert.Empty(t, doc.Other)
}

func TestStructure(t *testing.T) {
	tests := []struct {
		name  string
		raw   string
		check func(t *testing.T, doc *types.DocComment)
	}{
		{
			name: "multi-line description collapses",
			raw:  "/**\r\n * First line\r\n *   second   line\r\n */",
			check: func(t *testing.T, doc *types.DocComment) {
				assert.Equal(t, "First line second line", doc.Description)
			},
		},
		{
			name: "exception spelling",
			raw:  "/** Reads. @exception java.io.IOException when the disk fails */",
			check: func(t *testing.T, doc *types.DocComment) {
				require.Len(t, doc.Throws, 1)
				assert.Equal(t, "java.io.IOException", doc.Throws[0].Type)
				assert.Equal(t, "when the disk fails", doc.Throws[0].Description)
			},
		},
		{
			name: "inline link stays in description",
			raw:  "/** See {@link Foo#bar} for details. @since 1.2 */",
			check: func(t *testing.T, doc *types.DocComment) {
				assert.Equal(t, "See {@link Foo#bar} for details.", doc.Description)
				assert.Equal(t, []types.OtherTag{{Name: "since", Content: "1.2"}}, doc.Other)
			},
		},
		{
			name: "email is not a tag",
			raw:  "/** Contact dev@example.com */",
			check: func(t *testing.T, doc *types.DocComment) {
				assert.Equal(t, "Contact dev@example.com", doc.Description)
				assert.Empty(t, doc.Other)
			},
		},
		{
			name: "param without description",
			raw:  "/** @param id */",
			check: func(t *testing.T, doc *types.DocComment) {
				assert.Equal(t, "", doc.Description)
				assert.Equal(t, []types.ParamTag{{Name: "id"}}, doc.Params)
			},
		},
		{
			name: "tag order preserved",
			raw:  "/** x @see A @author me @see B */",
			check: func(t *testing.T, doc *types.DocComment) {
				assert.Equal(t, []types.OtherTag{
					{Name: "see", Content: "A"},
					{Name: "author", Content: "me"},
					{Name: "see", Content: "B"},
				}, doc.Other)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, err := Structure(tt.raw)
			require.NoError(t, err)
			tt.check(t, doc)
		})
	}
}

func TestStructureErrors(t *testing.T) {
	_, err := Structure("/** */")
	assert.ErrorIs(t, err, ErrEmptyComment)

	_, err = Structure("/** Desc @param */")
	assert.ErrorIs(t, err, ErrMalformedTag)

	_, err = Structure("/** Desc @throws */")
	assert.ErrorIs(t, err, ErrMalformedTag)
}

func TestParseAbsent(t *testing.T) {
	s := New(nil)
	assert.Nil(t, s.Parse("", nil))
	assert.Nil(t, s.Parse("   \n", nil))
	assert.Nil(t, s.Parse("/** Broken @param */", []string{"a"}))
}

func TestParseLogsUndocumentedParams(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	doc := New(logger).Parse("/** Adds. @param a first */", []string{"a", "b"})
	require.NotNil(t, doc)

	// Coverage gaps are diagnostic only
	assert.Len(t, doc.Params, 1)
	assert.Contains(t, buf.String(), "undocumented parameters")
	assert.Contains(t, buf.String(), "b")
}

func TestUndocumented(t *testing.T) {
	doc := &types.DocComment{Params: []types.ParamTag{{Name: "a"}}}
	assert.Equal(t, []string{"b"}, Undocumented(doc, []string{"a", "b"}))
	assert.Nil(t, Undocumented(doc, []string{"a"}))
	assert.Equal(t, []string{"a"}, Undocumented(nil, []string{"a"}))
}

func TestNormalize(t *testing.T) {
	assert.Equal(t, "a b", Normalize("/**\n * a\n *\n * b\n */"))
	assert.Equal(t, "", Normalize("/***/"))
}
