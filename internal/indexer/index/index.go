// Package index holds the positional inverted index: a mapping from term to
// document to the ordered positions of that term in the document, plus the
// corpus universe used to complement NOT queries. An Index is built once and
// read-only afterward, so concurrent queries need no locking.
package index

import "sort"

// Posting holds the ordered, duplicate-free positions of one term within one
// document. Positions are strictly increasing.
type Posting struct {
	DocID     string `json:"doc_id"`
	Positions []int  `json:"positions"`
}

// PostingList is the postings of a single term across documents, ordered by
// document ID.
type PostingList []Posting

// TermEntry pairs a term with its PostingList, used for snapshots.
type TermEntry struct {
	Term     string
	Postings PostingList
}

// Index is an immutable positional inverted index.
type Index struct {
	terms    map[string]map[string][]int
	universe map[string]struct{}
}

// Docs returns the set of document IDs containing term. The returned map is
// a fresh copy the caller may mutate. Absent terms yield an empty set.
func (ix *Index) Docs(term string) map[string]struct{} {
	postings := ix.terms[term]
	docs := make(map[string]struct{}, len(postings))
	for docID := range postings {
		docs[docID] = struct{}{}
	}
	return docs
}

// Positions returns the increasing position list of term in docID, or nil if
// the term does not occur there.
func (ix *Index) Positions(term, docID string) []int {
	return ix.terms[term][docID]
}

// HasTerm reports whether term occurs in at least one document.
func (ix *Index) HasTerm(term string) bool {
	_, ok := ix.terms[term]
	return ok
}

// Universe returns a copy of the full set of document IDs known at build
// time, including documents with no surviving terms.
func (ix *Index) Universe() map[string]struct{} {
	docs := make(map[string]struct{}, len(ix.universe))
	for docID := range ix.universe {
		docs[docID] = struct{}{}
	}
	return docs
}

// DocCount returns the size of the corpus universe.
func (ix *Index) DocCount() int {
	return len(ix.universe)
}

// TermCount returns the number of distinct terms.
func (ix *Index) TermCount() int {
	return len(ix.terms)
}

// Snapshot flattens the index into sorted term entries and the sorted
// universe, for serialization.
func (ix *Index) Snapshot() ([]TermEntry, []string) {
	entries := make([]TermEntry, 0, len(ix.terms))
	for term, docs := range ix.terms {
		postings := make(PostingList, 0, len(docs))
		for docID, positions := range docs {
			postings = append(postings, Posting{DocID: docID, Positions: positions})
		}
		sort.Slice(postings, func(i, j int) bool {
			return postings[i].DocID < postings[j].DocID
		})
		entries = append(entries, TermEntry{Term: term, Postings: postings})
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Term < entries[j].Term
	})

	universe := make([]string, 0, len(ix.universe))
	for docID := range ix.universe {
		universe = append(universe, docID)
	}
	sort.Strings(universe)
	return entries, universe
}

// FromSnapshot rebuilds an Index from serialized term entries and universe.
func FromSnapshot(entries []TermEntry, universe []string) *Index {
	ix := &Index{
		terms:    make(map[string]map[string][]int, len(entries)),
		universe: make(map[string]struct{}, len(universe)),
	}
	for _, entry := range entries {
		docs := make(map[string][]int, len(entry.Postings))
		for _, posting := range entry.Postings {
			docs[posting.DocID] = posting.Positions
		}
		ix.terms[entry.Term] = docs
	}
	for _, docID := range universe {
		ix.universe[docID] = struct{}{}
	}
	return ix
}
