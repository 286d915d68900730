package services

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKeyStats_AddDocument(t *testing.T) {
	stats := NewKeyStats()
	stats.AddDocument(map[string]any{
		"title":   "Pump",
		"license": map[string]any{"hardware": "CERN-OHL-S-2.0", "documentation": "CC-BY-4.0"},
		"keywords": []any{"water", "pump", "hand"},
		"contributors": []any{
			map[string]any{"name": "A", "email": "a@example.org"},
			map[string]any{"name": "B"},
		},
		"numbers": map[any]any{1: "one"},
	})
	stats.AddDocument(map[string]any{"title": "Drill"})

	tests := []struct {
		key      string
		expected int
	}{
		{key: "title", expected: 2},
		{key: "license.hardware", expected: 1},
		{key: "license.documentation", expected: 1},
		{key: "license", expected: 0},
		{key: "keywords", expected: 3},
		{key: "contributors.name", expected: 2},
		{key: "contributors.email", expected: 1},
		{key: "numbers.1", expected: 1},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			assert.Equal(t, tt.expected, stats.Count(tt.key))
		})
	}
	assert.Equal(t, 2, stats.Files())
}

func TestKeyStats_Sorted(t *testing.T) {
	stats := NewKeyStats()
	stats.AddDocument(map[string]any{"b": 1, "a": 1, "c": []any{"x", "y"}})
	stats.AddDocument(map[string]any{"c": "z"})

	sorted := stats.Sorted()

	require.Len(t, sorted, 3)
	assert.Equal(t, []KeyCount{{Key: "a", Count: 1}, {Key: "b", Count: 1}, {Key: "c", Count: 3}}, sorted)
}

func TestKeyStats_WriteTo(t *testing.T) {
	stats := NewKeyStats()
	stats.AddDocument(map[string]any{"title": "x"})

	var buf bytes.Buffer
	n, err := stats.WriteTo(&buf)

	require.NoError(t, err)
	assert.Equal(t, int64(buf.Len()), n)

	lines := strings.Split(buf.String(), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, "title"+strings.Repeat(" ", 35)+" 1", lines[0])
	assert.Empty(t, lines[1])
	assert.Equal(t, "Parsed-files"+strings.Repeat(" ", 28)+" 1", lines[2])
}
