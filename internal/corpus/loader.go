// Package corpus loads the document collection the index is built from: a
// directory of .txt files, one document per file. The document ID is the
// file name without its extension and stays stable across rebuilds.
package corpus

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"unicode/utf8"
)

// Document is one corpus entry. Text is consumed by the indexer and not
// retained afterward.
type Document struct {
	ID       string
	Filename string
	Text     string
	ByteSize int
}

// Load reads every .txt file in dir. Files that cannot be read are skipped
// and reported in the load summary rather than failing the whole corpus.
// Invalid UTF-8 is replaced; encoding detection proper is up to whoever
// produced the files.
func Load(dir string) ([]Document, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading corpus directory %s: %w", dir, err)
	}

	logger := slog.Default().With("component", "corpus-loader")
	docs := make([]Document, 0, len(entries))
	var failed []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".txt") {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			logger.Warn("skipping unreadable document", "file", entry.Name(), "error", err)
			failed = append(failed, entry.Name())
			continue
		}
		text := string(data)
		if !utf8.ValidString(text) {
			text = strings.ToValidUTF8(text, "�")
		}
		docs = append(docs, Document{
			ID:       strings.TrimSuffix(entry.Name(), ".txt"),
			Filename: entry.Name(),
			Text:     text,
			ByteSize: len(data),
		})
	}
	sort.Slice(docs, func(i, j int) bool { return docs[i].ID < docs[j].ID })

	logger.Info("corpus loaded",
		"dir", dir,
		"documents", len(docs),
		"failed", len(failed),
	)
	if len(docs) == 0 {
		return nil, fmt.Errorf("corpus directory %s contains no .txt documents", dir)
	}
	return docs, nil
}
