package analyzer

import (
	"bufio"
	"fmt"
	"os"
	"strings"
)

// DefaultStopWords returns the built-in stop-word set, used when no word
// list file is configured or the configured one cannot be read.
func DefaultStopWords() map[string]struct{} {
	words := []string{
		"a", "an", "and", "are", "as", "at", "be", "by", "for", "from",
		"had", "has", "have", "he", "if", "in", "is", "it", "its", "of",
		"on", "or", "that", "the", "they", "this", "to", "was", "were",
		"what", "when", "where", "which", "who", "will", "with",
	}
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		set[w] = struct{}{}
	}
	return set
}

// LoadStopWords reads a stop-word list file, one word per line. Blank lines
// are ignored and words are lowercased.
func LoadStopWords(path string) (map[string]struct{}, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening stop-word file %s: %w", path, err)
	}
	defer f.Close()

	set := make(map[string]struct{})
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		word := strings.ToLower(strings.TrimSpace(scanner.Text()))
		if word == "" {
			continue
		}
		set[word] = struct{}{}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading stop-word file %s: %w", path, err)
	}
	return set, nil
}
