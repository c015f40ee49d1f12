// Package evaluator resolves a parsed query expression against the
// positional index into a set of matching document IDs. Evaluation is a
// bottom-up tree walk: term nodes read postings, boolean nodes combine child
// sets, NOT complements against the corpus universe, and proximity nodes
// merge-walk position lists. A term absent from the index yields an empty
// set, never an error.
package evaluator

import (
	"fmt"
	"sort"

	"github.com/karthikrangan/irengine/internal/indexer/index"
	"github.com/karthikrangan/irengine/internal/searcher/parser"
	apperrors "github.com/karthikrangan/irengine/pkg/errors"
)

// DocSet is a set of matching document IDs.
type DocSet map[string]struct{}

// Sorted returns the set's document IDs in ascending order.
func (s DocSet) Sorted() []string {
	ids := make([]string, 0, len(s))
	for id := range s {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// SearchResult is the evaluated outcome of one query.
type SearchResult struct {
	Query     string   `json:"query"`
	TotalHits int      `json:"total_hits"`
	DocIDs    []string `json:"doc_ids"`
}

// Evaluator walks expression trees against one immutable index. It is safe
// for concurrent use.
type Evaluator struct {
	idx *index.Index
}

// New creates an Evaluator over idx.
func New(idx *index.Index) *Evaluator {
	return &Evaluator{idx: idx}
}

// Execute evaluates expr and packages the sorted matches as a SearchResult.
// If limit is positive, DocIDs is truncated to at most limit entries;
// TotalHits always reflects the full match count.
func (e *Evaluator) Execute(expr parser.Expr, rawQuery string, limit int) (*SearchResult, error) {
	set, err := e.Evaluate(expr)
	if err != nil {
		return nil, err
	}
	ids := set.Sorted()
	total := len(ids)
	if limit > 0 && len(ids) > limit {
		ids = ids[:limit]
	}
	return &SearchResult{
		Query:     rawQuery,
		TotalHits: total,
		DocIDs:    ids,
	}, nil
}

// Evaluate resolves expr into the set of matching document IDs.
func (e *Evaluator) Evaluate(expr parser.Expr) (DocSet, error) {
	switch n := expr.(type) {
	case *parser.TermExpr:
		return DocSet(e.idx.Docs(n.Term)), nil

	case *parser.AndExpr:
		result, err := e.Evaluate(n.Children[0])
		if err != nil {
			return nil, err
		}
		for _, child := range n.Children[1:] {
			if len(result) == 0 {
				return result, nil
			}
			childSet, err := e.Evaluate(child)
			if err != nil {
				return nil, err
			}
			result = intersect(result, childSet)
		}
		return result, nil

	case *parser.OrExpr:
		result := make(DocSet)
		for _, child := range n.Children {
			childSet, err := e.Evaluate(child)
			if err != nil {
				return nil, err
			}
			for docID := range childSet {
				result[docID] = struct{}{}
			}
		}
		return result, nil

	case *parser.NotExpr:
		childSet, err := e.Evaluate(n.Child)
		if err != nil {
			return nil, err
		}
		result := DocSet(e.idx.Universe())
		for docID := range childSet {
			delete(result, docID)
		}
		return result, nil

	case *parser.ProximityExpr:
		return e.evaluateProximity(n), nil

	default:
		return nil, fmt.Errorf("%w: unhandled expression node %T", apperrors.ErrInternal, expr)
	}
}

// evaluateProximity matches documents containing both terms with at least
// one position pair within the window.
func (e *Evaluator) evaluateProximity(n *parser.ProximityExpr) DocSet {
	docsA := e.idx.Docs(n.TermA)
	docsB := e.idx.Docs(n.TermB)
	result := make(DocSet)
	for docID := range docsA {
		if _, ok := docsB[docID]; !ok {
			continue
		}
		a := e.idx.Positions(n.TermA, docID)
		b := e.idx.Positions(n.TermB, docID)
		if withinWindow(a, b, n.Window) {
			result[docID] = struct{}{}
		}
	}
	return result
}

// withinWindow merge-walks two increasing position lists and reports whether
// any pair is at most window apart. Linear in the combined list length.
func withinWindow(a, b []int, window int) bool {
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		d := a[i] - b[j]
		if d < 0 {
			d = -d
		}
		if d <= window {
			return true
		}
		if a[i] < b[j] {
			i++
		} else {
			j++
		}
	}
	return false
}

func intersect(a, b DocSet) DocSet {
	if len(b) < len(a) {
		a, b = b, a
	}
	result := make(DocSet, len(a))
	for docID := range a {
		if _, ok := b[docID]; ok {
			result[docID] = struct{}{}
		}
	}
	return result
}
