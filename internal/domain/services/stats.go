package services

import (
	"fmt"
	"io"

	"github.com/elliotchance/pie/v2"
)

// ParsedFilesKey labels the line reporting the number of tallied documents.
const ParsedFilesKey = "Parsed-files"

// KeyCount is the number of times a dotted key occurs across documents.
type KeyCount struct {
	Key   string
	Count int
}

// KeyStats tallies how often each key is used across YAML documents.
// Nested mappings contribute dotted keys ("a.b.c"); every scalar in a list
// counts once for the key holding the list.
type KeyStats struct {
	counts map[string]int
	files  int
}

// NewKeyStats creates an empty tally.
func NewKeyStats() *KeyStats {
	return &KeyStats{counts: make(map[string]int)}
}

// AddDocument tallies the keys of one decoded document.
func (s *KeyStats) AddDocument(doc map[string]any) {
	s.files++
	s.addMapping(doc, "")
}

// Count returns the tally for a key.
func (s *KeyStats) Count(key string) int {
	return s.counts[key]
}

// Files returns the number of documents added.
func (s *KeyStats) Files() int {
	return s.files
}

// Sorted returns all keys by ascending count, ties broken by key.
func (s *KeyStats) Sorted() []KeyCount {
	result := make([]KeyCount, 0, len(s.counts))
	for _, key := range pie.Keys(s.counts) {
		result = append(result, KeyCount{Key: key, Count: s.counts[key]})
	}
	return pie.SortUsing(result, func(a, b KeyCount) bool {
		if a.Count != b.Count {
			return a.Count < b.Count
		}
		return a.Key < b.Key
	})
}

// WriteTo writes the report: one padded line per key, a blank line, then the file count.
func (s *KeyStats) WriteTo(w io.Writer) (int64, error) {
	var total int64
	write := func(format string, args ...any) error {
		n, err := fmt.Fprintf(w, format, args...)
		total += int64(n)
		return err
	}

	for _, kc := range s.Sorted() {
		if err := write("%-40s %d\n", kc.Key, kc.Count); err != nil {
			return total, err
		}
	}
	if err := write("\n%-40s %d\n", ParsedFilesKey, s.files); err != nil {
		return total, err
	}
	return total, nil
}

func (s *KeyStats) addMapping(m map[string]any, prefix string) {
	for key, val := range m {
		s.addValue(prefix+key, val)
	}
}

func (s *KeyStats) addValue(key string, val any) {
	switch v := val.(type) {
	case map[string]any:
		s.addMapping(v, key+".")
	case map[any]any:
		s.addMapping(stringKeys(v), key+".")
	case []any:
		for _, entry := range v {
			s.addValue(key, entry)
		}
	default:
		s.counts[key]++
	}
}

func stringKeys(m map[any]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[fmt.Sprint(k)] = v
	}
	return out
}
