package index

// Builder accumulates postings during index construction. It is not safe for
// concurrent use; parallel builds create one Builder per worker and merge
// them (see the indexer engine). Freeze seals the result into an Index.
type Builder struct {
	terms    map[string]map[string][]int
	universe map[string]struct{}
}

// NewBuilder creates an empty Builder.
func NewBuilder() *Builder {
	return &Builder{
		terms:    make(map[string]map[string][]int),
		universe: make(map[string]struct{}),
	}
}

// AddDocument registers docID in the corpus universe. Documents with no
// surviving terms still belong to the universe so NOT complements correctly.
func (b *Builder) AddDocument(docID string) {
	b.universe[docID] = struct{}{}
}

// Add appends a position for (term, docID), creating entries on first
// occurrence. Callers must add positions for one document in increasing
// order; the analyzer's output satisfies this naturally.
func (b *Builder) Add(docID, term string, position int) {
	docs, ok := b.terms[term]
	if !ok {
		docs = make(map[string][]int)
		b.terms[term] = docs
	}
	positions := docs[docID]
	// Positions arrive increasing per document; duplicates cannot occur
	// since each token stream position is visited once.
	docs[docID] = append(positions, position)
}

// Merge folds other into b. The two builders must not share any document,
// which holds when documents are partitioned across workers.
func (b *Builder) Merge(other *Builder) {
	for docID := range other.universe {
		b.universe[docID] = struct{}{}
	}
	for term, docs := range other.terms {
		dst, ok := b.terms[term]
		if !ok {
			b.terms[term] = docs
			continue
		}
		for docID, positions := range docs {
			dst[docID] = positions
		}
	}
}

// Freeze seals the accumulated postings into an immutable Index. The Builder
// must not be used afterward.
func (b *Builder) Freeze() *Index {
	ix := &Index{terms: b.terms, universe: b.universe}
	b.terms = nil
	b.universe = nil
	return ix
}
