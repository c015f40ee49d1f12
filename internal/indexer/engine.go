// Package indexer builds the positional inverted index from a loaded corpus
// and manages its on-disk snapshot. The index is built exactly once per
// corpus and is immutable afterward; queries must not observe a partially
// built index, so Index returns ErrIndexUnavailable until Open completes.
package indexer

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/karthikrangan/irengine/internal/corpus"
	"github.com/karthikrangan/irengine/internal/indexer/analyzer"
	"github.com/karthikrangan/irengine/internal/indexer/index"
	"github.com/karthikrangan/irengine/internal/indexer/segment"
	"github.com/karthikrangan/irengine/pkg/config"
	apperrors "github.com/karthikrangan/irengine/pkg/errors"
)

// Engine owns the index lifecycle: build from corpus, snapshot to disk,
// reload on later runs.
type Engine struct {
	cfg      config.IndexerConfig
	analyzer *analyzer.Analyzer
	logger   *slog.Logger
	idx      *index.Index
}

// NewEngine creates an Engine. The index does not exist until Open returns.
func NewEngine(cfg config.IndexerConfig, an *analyzer.Analyzer) *Engine {
	return &Engine{
		cfg:      cfg,
		analyzer: an,
		logger:   slog.Default().With("component", "indexer"),
	}
}

// Open makes the index available: it reloads the snapshot at SnapshotPath if
// one exists, otherwise builds from docs and writes a fresh snapshot.
func (e *Engine) Open(ctx context.Context, docs []corpus.Document) error {
	start := time.Now()
	if e.cfg.SnapshotPath != "" {
		if _, err := os.Stat(e.cfg.SnapshotPath); err == nil {
			ix, err := segment.Load(e.cfg.SnapshotPath)
			if err != nil {
				e.logger.Warn("snapshot unreadable, rebuilding index",
					"snapshot", e.cfg.SnapshotPath,
					"error", err,
				)
			} else {
				e.idx = ix
				e.logger.Info("index loaded from snapshot",
					"snapshot", e.cfg.SnapshotPath,
					"terms", ix.TermCount(),
					"docs", ix.DocCount(),
					"elapsed", time.Since(start).Round(time.Millisecond),
				)
				return nil
			}
		}
	}

	ix, err := e.build(ctx, docs)
	if err != nil {
		return err
	}
	e.idx = ix
	e.logger.Info("index built",
		"terms", ix.TermCount(),
		"docs", ix.DocCount(),
		"elapsed", time.Since(start).Round(time.Millisecond),
	)

	if e.cfg.SnapshotPath != "" {
		if err := segment.Write(e.cfg.SnapshotPath, ix); err != nil {
			// A failed snapshot only costs a rebuild next run.
			e.logger.Warn("failed to write index snapshot",
				"snapshot", e.cfg.SnapshotPath,
				"error", err,
			)
		} else {
			e.logger.Info("index snapshot written", "snapshot", e.cfg.SnapshotPath)
		}
	}
	return nil
}

// Index returns the built index, or ErrIndexUnavailable if Open has not
// completed successfully.
func (e *Engine) Index() (*index.Index, error) {
	if e.idx == nil {
		return nil, apperrors.ErrIndexUnavailable
	}
	return e.idx, nil
}

// build analyzes documents across BuildWorkers goroutines, each folding its
// share of the corpus into a partial builder, and merges the partials. Each
// document is handled entirely by one worker, so per-document position order
// is preserved and the merged content is deterministic.
func (e *Engine) build(ctx context.Context, docs []corpus.Document) (*index.Index, error) {
	workers := e.cfg.BuildWorkers
	if workers < 1 {
		workers = 1
	}
	if workers > len(docs) {
		workers = len(docs)
	}
	if len(docs) == 0 {
		return nil, fmt.Errorf("cannot build index from an empty corpus")
	}

	partials := make([]*index.Builder, workers)
	g, gctx := errgroup.WithContext(ctx)
	for w := 0; w < workers; w++ {
		partials[w] = index.NewBuilder()
		builder := partials[w]
		worker := w
		g.Go(func() error {
			for i := worker; i < len(docs); i += workers {
				if err := gctx.Err(); err != nil {
					return err
				}
				doc := docs[i]
				builder.AddDocument(doc.ID)
				for _, token := range e.analyzer.Tokenize(doc.Text) {
					builder.Add(doc.ID, token.Term, token.Position)
				}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("building index: %w", err)
	}

	merged := partials[0]
	for _, partial := range partials[1:] {
		merged.Merge(partial)
	}
	return merged.Freeze(), nil
}
