package tokens

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEstimate(t *testing.T) {
	tests := []struct {
		text string
		want int
	}{
		{"", 0},
		{"a", 1},
		{"abcd", 1},
		{"abcde", 2},
		{strings.Repeat("x", 400), 100},
		{"héllo", 2},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Estimate(tt.text), "text %q", tt.text)
	}
}

func TestEstimateAll(t *testing.T) {
	assert.Equal(t, 3, EstimateAll("abcd", "abcde"))
	assert.Equal(t, 0, EstimateAll())
}

func TestFits(t *testing.T) {
	assert.True(t, Fits("abcdefgh", 2))
	assert.False(t, Fits("abcdefghi", 2))
}

func TestTruncate(t *testing.T) {
	text := strings.Repeat("a", 10) + strings.Repeat("b", 10)

	got := Truncate(text, 3)
	assert.Equal(t, strings.Repeat("a", 10)+"bb", got)
	assert.True(t, Fits(got, 3))
	assert.True(t, strings.HasPrefix(text, got))

	assert.Equal(t, text, Truncate(text, 100))
	assert.Equal(t, "", Truncate(text, 0))
	assert.Equal(t, "éééé", Truncate("ééééé", 1))
}
