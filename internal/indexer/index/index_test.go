package index

import (
	"reflect"
	"testing"
)

// buildTestIndex indexes three small documents plus one empty document that
// belongs to the universe but carries no terms.
func buildTestIndex() *Index {
	b := NewBuilder()
	for docID, terms := range map[string][]string{
		"doc1": {"cat", "dog", "cat"},
		"doc2": {"dog", "fish"},
		"doc3": {"cat"},
	} {
		b.AddDocument(docID)
		for pos, term := range terms {
			b.Add(docID, term, pos)
		}
	}
	b.AddDocument("empty")
	return b.Freeze()
}

func TestDocs(t *testing.T) {
	ix := buildTestIndex()
	got := ix.Docs("cat")
	want := map[string]struct{}{"doc1": {}, "doc3": {}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Docs(cat) = %v, want %v", got, want)
	}
	if got := ix.Docs("absent"); len(got) != 0 {
		t.Errorf("Docs(absent) = %v, want empty set", got)
	}
}

func TestDocsReturnsCopy(t *testing.T) {
	ix := buildTestIndex()
	first := ix.Docs("cat")
	delete(first, "doc1")
	second := ix.Docs("cat")
	if _, ok := second["doc1"]; !ok {
		t.Error("mutating one Docs() result leaked into the next")
	}
}

func TestPositions(t *testing.T) {
	ix := buildTestIndex()
	if got, want := ix.Positions("cat", "doc1"), []int{0, 2}; !reflect.DeepEqual(got, want) {
		t.Errorf("Positions(cat, doc1) = %v, want %v", got, want)
	}
	if got := ix.Positions("cat", "doc2"); got != nil {
		t.Errorf("Positions(cat, doc2) = %v, want nil", got)
	}
	if got := ix.Positions("absent", "doc1"); got != nil {
		t.Errorf("Positions(absent, doc1) = %v, want nil", got)
	}
}

func TestUniverseIncludesEmptyDocuments(t *testing.T) {
	ix := buildTestIndex()
	universe := ix.Universe()
	if _, ok := universe["empty"]; !ok {
		t.Error("universe does not include the document with no terms")
	}
	if got, want := ix.DocCount(), 4; got != want {
		t.Errorf("DocCount() = %d, want %d", got, want)
	}
	if got, want := ix.TermCount(), 3; got != want {
		t.Errorf("TermCount() = %d, want %d", got, want)
	}
}

func TestHasTerm(t *testing.T) {
	ix := buildTestIndex()
	if !ix.HasTerm("fish") {
		t.Error("HasTerm(fish) = false, want true")
	}
	if ix.HasTerm("absent") {
		t.Error("HasTerm(absent) = true, want false")
	}
}

func TestSnapshotRoundTrip(t *testing.T) {
	ix := buildTestIndex()
	entries, universe := ix.Snapshot()

	wantUniverse := []string{"doc1", "doc2", "doc3", "empty"}
	if !reflect.DeepEqual(universe, wantUniverse) {
		t.Errorf("snapshot universe = %v, want %v", universe, wantUniverse)
	}
	for i := 1; i < len(entries); i++ {
		if entries[i-1].Term >= entries[i].Term {
			t.Fatalf("snapshot terms not strictly sorted: %q before %q", entries[i-1].Term, entries[i].Term)
		}
	}

	restored := FromSnapshot(entries, universe)
	gotEntries, gotUniverse := restored.Snapshot()
	if !reflect.DeepEqual(gotEntries, entries) {
		t.Errorf("restored entries differ:\n got %v\nwant %v", gotEntries, entries)
	}
	if !reflect.DeepEqual(gotUniverse, universe) {
		t.Errorf("restored universe = %v, want %v", gotUniverse, universe)
	}
}

func TestBuilderMerge(t *testing.T) {
	a := NewBuilder()
	a.AddDocument("doc1")
	a.Add("doc1", "cat", 0)
	a.Add("doc1", "dog", 1)

	b := NewBuilder()
	b.AddDocument("doc2")
	b.Add("doc2", "cat", 3)
	b.AddDocument("doc3")

	a.Merge(b)
	ix := a.Freeze()

	if got, want := ix.DocCount(), 3; got != want {
		t.Errorf("DocCount() = %d, want %d", got, want)
	}
	wantDocs := map[string]struct{}{"doc1": {}, "doc2": {}}
	if got := ix.Docs("cat"); !reflect.DeepEqual(got, wantDocs) {
		t.Errorf("Docs(cat) = %v, want %v", got, wantDocs)
	}
	if got, want := ix.Positions("cat", "doc2"), []int{3}; !reflect.DeepEqual(got, want) {
		t.Errorf("Positions(cat, doc2) = %v, want %v", got, want)
	}
}

func TestBuilderPositionsStayIncreasing(t *testing.T) {
	b := NewBuilder()
	b.AddDocument("doc1")
	for _, pos := range []int{1, 4, 9} {
		b.Add("doc1", "cat", pos)
	}
	ix := b.Freeze()
	positions := ix.Positions("cat", "doc1")
	for i := 1; i < len(positions); i++ {
		if positions[i-1] >= positions[i] {
			t.Fatalf("positions not strictly increasing: %v", positions)
		}
	}
}
