package main

import (
	"encoding/base64"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodePlaceholder(t *testing.T, uri string) string {
	t.Helper()
	require.True(t, strings.HasPrefix(uri, placeholderPrefix), "not a placeholder: %.40s", uri)
	raw, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(uri, placeholderPrefix))
	require.NoError(t, err)
	return string(raw)
}

func TestInitials(t *testing.T) {
	tests := []struct {
		id   string
		want string
	}{
		{"totally_unknown_id", "TU"},
		{"max_verstappen", "MV"},
		{"hamilton", "H"},
		{"_leading__gaps_", "LG"},
		{"", "?"},
		{"___", "?"},
		{"émile_bob", "ÉB"},
	}
	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			assert.Equal(t, tt.want, initials(tt.id))
		})
	}
}

func TestPaletteForSumsCharacterCodes(t *testing.T) {
	// 'a'(97) + 'b'(98) = 195
	assert.Equal(t, placeholderPalette[195%len(placeholderPalette)], paletteFor("ab"))
	assert.Equal(t, paletteFor("ba"), paletteFor("ab"))
}

func TestPlaceholderImageIsDeterministic(t *testing.T) {
	a := placeholderImage("totally_unknown_id")
	b := placeholderImage("totally_unknown_id")
	assert.Equal(t, a, b)
	assert.True(t, isPlaceholder(a))

	svg := decodePlaceholder(t, a)
	colors := paletteFor("totally_unknown_id")
	assert.Contains(t, svg, "<radialGradient")
	assert.Contains(t, svg, `stop-color="`+colors.inner+`"`)
	assert.Contains(t, svg, `stop-color="`+colors.outer+`"`)
	assert.Contains(t, svg, ">TU</text>")
	assert.Contains(t, svg, "<circle")
}

func TestPlaceholderImageEscapesInitials(t *testing.T) {
	svg := decodePlaceholder(t, placeholderImage("<x_&y"))
	assert.Contains(t, svg, ">&lt;&amp;</text>")
}

func TestIsPlaceholder(t *testing.T) {
	assert.False(t, isPlaceholder("https://upload.wikimedia.org/a.jpg"))
	assert.False(t, isPlaceholder(""))
}
