package indexer

import (
	"context"
	"errors"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/karthikrangan/irengine/internal/corpus"
	"github.com/karthikrangan/irengine/internal/indexer/analyzer"
	"github.com/karthikrangan/irengine/pkg/config"
	apperrors "github.com/karthikrangan/irengine/pkg/errors"
)

func testDocs() []corpus.Document {
	return []corpus.Document{
		{ID: "doc1", Text: "computer science data"},
		{ID: "doc2", Text: "data science only"},
		{ID: "doc3", Text: ""},
	}
}

func TestIndexBeforeOpen(t *testing.T) {
	e := NewEngine(config.IndexerConfig{}, analyzer.New(nil))
	if _, err := e.Index(); !errors.Is(err, apperrors.ErrIndexUnavailable) {
		t.Errorf("Index() before Open = %v, want ErrIndexUnavailable", err)
	}
}

func TestOpenBuildsIndex(t *testing.T) {
	e := NewEngine(config.IndexerConfig{BuildWorkers: 2}, analyzer.New(nil))
	if err := e.Open(context.Background(), testDocs()); err != nil {
		t.Fatalf("Open() error: %v", err)
	}
	ix, err := e.Index()
	if err != nil {
		t.Fatalf("Index() error: %v", err)
	}
	if got, want := ix.DocCount(), 3; got != want {
		t.Errorf("DocCount() = %d, want %d", got, want)
	}
	if got, want := ix.Positions("scienc", "doc1"), []int{1}; !reflect.DeepEqual(got, want) {
		t.Errorf("Positions(scienc, doc1) = %v, want %v", got, want)
	}
	if _, ok := ix.Universe()["doc3"]; !ok {
		t.Error("empty document missing from the universe")
	}
}

func TestOpenEmptyCorpus(t *testing.T) {
	e := NewEngine(config.IndexerConfig{}, analyzer.New(nil))
	if err := e.Open(context.Background(), nil); err == nil {
		t.Error("Open() on an empty corpus succeeded, want error")
	}
}

func TestBuildDeterministicAcrossWorkerCounts(t *testing.T) {
	docs := testDocs()
	var snapshots [][]any
	for _, workers := range []int{1, 2, 8} {
		e := NewEngine(config.IndexerConfig{BuildWorkers: workers}, analyzer.New(nil))
		if err := e.Open(context.Background(), docs); err != nil {
			t.Fatalf("Open() with %d workers: %v", workers, err)
		}
		ix, err := e.Index()
		if err != nil {
			t.Fatalf("Index() with %d workers: %v", workers, err)
		}
		entries, universe := ix.Snapshot()
		snapshots = append(snapshots, []any{entries, universe})
	}
	for i := 1; i < len(snapshots); i++ {
		if !reflect.DeepEqual(snapshots[i], snapshots[0]) {
			t.Errorf("index content differs between worker counts")
		}
	}
}

func TestOpenWritesAndReloadsSnapshot(t *testing.T) {
	path := filepath.Join(t.TempDir(), "index.irsx")
	cfg := config.IndexerConfig{SnapshotPath: path, BuildWorkers: 2}

	first := NewEngine(cfg, analyzer.New(nil))
	if err := first.Open(context.Background(), testDocs()); err != nil {
		t.Fatalf("first Open() error: %v", err)
	}

	// The second engine gets no documents, so a successful Open proves the
	// snapshot was used.
	second := NewEngine(cfg, analyzer.New(nil))
	if err := second.Open(context.Background(), nil); err != nil {
		t.Fatalf("second Open() error: %v", err)
	}

	firstIx, _ := first.Index()
	secondIx, _ := second.Index()
	fe, fu := firstIx.Snapshot()
	se, su := secondIx.Snapshot()
	if !reflect.DeepEqual(se, fe) || !reflect.DeepEqual(su, fu) {
		t.Error("reloaded index differs from the built one")
	}
}

func TestOpenCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	e := NewEngine(config.IndexerConfig{BuildWorkers: 1}, analyzer.New(nil))
	if err := e.Open(ctx, testDocs()); err == nil {
		t.Error("Open() with a cancelled context succeeded, want error")
	}
}
