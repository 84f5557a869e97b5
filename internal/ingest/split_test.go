package ingest

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplit(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		size     int
		overlap  int
		expected []string
	}{
		{name: "empty", text: "", size: 10, expected: nil},
		{name: "whitespace only", text: " \n\n ", size: 10, expected: nil},
		{name: "fits in one chunk", text: "short text", size: 50, expected: []string{"short text"}},
		{
			name:     "paragraph boundaries",
			text:     "alpha beta\n\ngamma delta",
			size:     12,
			expected: []string{"alpha beta", "gamma delta"},
		},
		{
			name:     "words with overlap",
			text:     "one two three four five",
			size:     9,
			overlap:  4,
			expected: []string{"one two", "two three", "four five"},
		},
		{
			name:     "long word falls back to characters",
			text:     "abcdefghij",
			size:     4,
			expected: []string{"abcd", "efgh", "ij"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Split(tt.text, tt.size, tt.overlap))
		})
	}
}

func TestSplitRespectsChunkSize(t *testing.T) {
	text := strings.Repeat("Responsible for building resilient services in Go. ", 80) +
		"\n\n" + strings.Repeat("Must know Kubernetes and Terraform.\n", 40)

	chunks := Split(text, 200, 20)
	require.NotEmpty(t, chunks)
	for _, chunk := range chunks {
		assert.LessOrEqual(t, utf8.RuneCountInString(chunk), 200)
		assert.NotEmpty(t, strings.TrimSpace(chunk))
	}
	assert.Contains(t, chunks[0], "Responsible")
	assert.Contains(t, chunks[len(chunks)-1], "Terraform")
}

func TestSplitInvalidParameters(t *testing.T) {
	assert.Nil(t, Split("text", 0, 0))
	// an overlap that is not smaller than the size is ignored
	assert.Equal(t, []string{"ab", "cd"}, Split("abcd", 2, 5))
}
