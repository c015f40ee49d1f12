package evaluator

import (
	"reflect"
	"strconv"
	"testing"

	"github.com/karthikrangan/irengine/internal/indexer/analyzer"
	"github.com/karthikrangan/irengine/internal/indexer/index"
	"github.com/karthikrangan/irengine/internal/searcher/parser"
)

// newFixture indexes a tiny corpus with no stop-word removal and returns an
// evaluator plus a parser sharing the same analyzer, so query terms line up
// with indexed terms.
func newFixture(t *testing.T, docs map[string]string) (*Evaluator, *parser.Parser) {
	t.Helper()
	an := analyzer.New(nil)
	b := index.NewBuilder()
	for docID, text := range docs {
		b.AddDocument(docID)
		for _, token := range an.Tokenize(text) {
			b.Add(docID, token.Term, token.Position)
		}
	}
	return New(b.Freeze()), parser.New(an)
}

func search(t *testing.T, ev *Evaluator, qp *parser.Parser, query string) []string {
	t.Helper()
	expr, err := qp.Parse(query)
	if err != nil {
		t.Fatalf("Parse(%q) error: %v", query, err)
	}
	set, err := ev.Evaluate(expr)
	if err != nil {
		t.Fatalf("Evaluate(%q) error: %v", query, err)
	}
	return set.Sorted()
}

func TestEvaluateBooleanAndProximity(t *testing.T) {
	ev, qp := newFixture(t, map[string]string{
		"doc1": "computer science data",
		"doc2": "data science only",
	})
	tests := []struct {
		query string
		want  []string
	}{
		{"computer AND science", []string{"doc1"}},
		{"computer OR data", []string{"doc1", "doc2"}},
		{"science NOT data", []string{}},
		{"data NOT computer", []string{"doc2"}},
		{"computer science /1", []string{"doc1"}},
		{"computer science /0", []string{}},
		{"computer data /2", []string{"doc1"}},
		{"NOT computer", []string{"doc2"}},
		{"NOT (computer OR data)", []string{}},
		{"unicorn", []string{}},
		{"unicorn OR data", []string{"doc1", "doc2"}},
		{"unicorn AND data", []string{}},
		{"NOT unicorn", []string{"doc1", "doc2"}},
	}
	for _, tt := range tests {
		got := search(t, ev, qp, tt.query)
		if !reflect.DeepEqual(got, tt.want) {
			t.Errorf("query %q = %v, want %v", tt.query, got, tt.want)
		}
	}
}

func TestEvaluateDoubleNegation(t *testing.T) {
	ev, qp := newFixture(t, map[string]string{
		"doc1": "cat dog",
		"doc2": "dog fish",
		"doc3": "fish",
	})
	direct := search(t, ev, qp, "dog")
	doubled := search(t, ev, qp, "NOT NOT dog")
	if !reflect.DeepEqual(direct, doubled) {
		t.Errorf("NOT NOT dog = %v, want %v", doubled, direct)
	}
}

func TestEvaluateNotIncludesEmptyDocuments(t *testing.T) {
	an := analyzer.New(nil)
	b := index.NewBuilder()
	b.AddDocument("doc1")
	for _, token := range an.Tokenize("cat") {
		b.Add("doc1", token.Term, token.Position)
	}
	b.AddDocument("blank")
	ev, qp := New(b.Freeze()), parser.New(an)

	got := search(t, ev, qp, "NOT cat")
	if !reflect.DeepEqual(got, []string{"blank"}) {
		t.Errorf("NOT cat = %v, want [blank]", got)
	}
}

func TestProximitySymmetric(t *testing.T) {
	ev, qp := newFixture(t, map[string]string{
		"doc1": "alpha beta gamma",
		"doc2": "beta gamma gamma alpha",
	})
	for _, window := range []int{0, 1, 2, 3} {
		forward := search(t, ev, qp, "alpha gamma /"+strconv.Itoa(window))
		reverse := search(t, ev, qp, "gamma alpha /"+strconv.Itoa(window))
		if !reflect.DeepEqual(forward, reverse) {
			t.Errorf("window %d: forward %v != reverse %v", window, forward, reverse)
		}
	}
}

func TestProximityMonotoneInWindow(t *testing.T) {
	ev, qp := newFixture(t, map[string]string{
		"doc1": "alpha beta gamma delta",
		"doc2": "alpha x x x gamma",
		"doc3": "gamma alpha",
	})
	var prev []string
	for _, window := range []int{0, 1, 2, 3, 4, 5} {
		got := search(t, ev, qp, "alpha gamma /"+strconv.Itoa(window))
		if prev != nil && len(got) < len(prev) {
			t.Fatalf("window %d matched fewer documents than a smaller window: %v < %v", window, got, prev)
		}
		prev = got
	}
}

func TestProximitySubsetOfAnd(t *testing.T) {
	ev, qp := newFixture(t, map[string]string{
		"doc1": "alpha beta gamma",
		"doc2": "alpha x x x x x x gamma",
		"doc3": "alpha only",
	})
	andSet := search(t, ev, qp, "alpha AND gamma")
	nearSet := search(t, ev, qp, "alpha gamma /2")
	for _, docID := range nearSet {
		found := false
		for _, other := range andSet {
			if docID == other {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("proximity matched %s, which alpha AND gamma does not contain", docID)
		}
	}
	if reflect.DeepEqual(andSet, nearSet) {
		t.Errorf("expected the window to exclude doc2, got identical sets %v", andSet)
	}
}

func BenchmarkEvaluateBoolean(b *testing.B) {
	an := analyzer.New(nil)
	builder := index.NewBuilder()
	for i := 0; i < 1000; i++ {
		docID := "doc" + strconv.Itoa(i)
		builder.AddDocument(docID)
		text := "alpha beta gamma"
		if i%3 == 0 {
			text = "alpha delta"
		}
		for _, token := range an.Tokenize(text) {
			builder.Add(docID, token.Term, token.Position)
		}
	}
	ev := New(builder.Freeze())
	expr, err := parser.New(an).Parse("(alpha AND beta) OR delta NOT gamma")
	if err != nil {
		b.Fatalf("Parse() error: %v", err)
	}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := ev.Evaluate(expr); err != nil {
			b.Fatal(err)
		}
	}
}

func TestExecuteLimitsResults(t *testing.T) {
	ev, qp := newFixture(t, map[string]string{
		"doc1": "cat", "doc2": "cat", "doc3": "cat", "doc4": "cat",
	})
	expr, err := qp.Parse("cat")
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	result, err := ev.Execute(expr, "cat", 2)
	if err != nil {
		t.Fatalf("Execute() error: %v", err)
	}
	if result.TotalHits != 4 {
		t.Errorf("TotalHits = %d, want 4", result.TotalHits)
	}
	if want := []string{"doc1", "doc2"}; !reflect.DeepEqual(result.DocIDs, want) {
		t.Errorf("DocIDs = %v, want %v", result.DocIDs, want)
	}
	if result.Query != "cat" {
		t.Errorf("Query = %q, want %q", result.Query, "cat")
	}
}
