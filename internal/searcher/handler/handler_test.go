package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"reflect"
	"testing"

	"github.com/karthikrangan/irengine/internal/indexer/analyzer"
	"github.com/karthikrangan/irengine/internal/indexer/index"
	"github.com/karthikrangan/irengine/internal/searcher/parser"
	apperrors "github.com/karthikrangan/irengine/pkg/errors"
)

type stubProvider struct {
	idx *index.Index
	err error
}

func (s *stubProvider) Index() (*index.Index, error) {
	return s.idx, s.err
}

func newTestHandler(t *testing.T) *Handler {
	t.Helper()
	an := analyzer.New(nil)
	b := index.NewBuilder()
	for docID, text := range map[string]string{
		"doc1": "computer science data",
		"doc2": "data science only",
	} {
		b.AddDocument(docID)
		for _, token := range an.Tokenize(text) {
			b.Add(docID, token.Term, token.Position)
		}
	}
	provider := &stubProvider{idx: b.Freeze()}
	return New(provider, parser.New(an), nil, nil, nil, nil, 50, 1000)
}

func doSearch(t *testing.T, h *Handler, target string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	h.Search(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, into any) {
	t.Helper()
	if err := json.NewDecoder(rec.Body).Decode(into); err != nil {
		t.Fatalf("decoding response body: %v", err)
	}
}

func TestSearch(t *testing.T) {
	h := newTestHandler(t)
	tests := []struct {
		query    string
		wantHits int
		wantDocs []string
	}{
		{"computer AND science", 1, []string{"doc1"}},
		{"computer OR data", 2, []string{"doc1", "doc2"}},
		{"science NOT data", 0, []string{}},
		{"computer science /1", 1, []string{"doc1"}},
	}
	for _, tt := range tests {
		rec := doSearch(t, h, "/api/v1/search?q="+url.QueryEscape(tt.query))
		if rec.Code != http.StatusOK {
			t.Errorf("query %q status = %d, want 200; body %s", tt.query, rec.Code, rec.Body)
			continue
		}
		var result struct {
			Query     string   `json:"query"`
			TotalHits int      `json:"total_hits"`
			DocIDs    []string `json:"doc_ids"`
		}
		decodeBody(t, rec, &result)
		if result.TotalHits != tt.wantHits {
			t.Errorf("query %q total_hits = %d, want %d", tt.query, result.TotalHits, tt.wantHits)
		}
		if !reflect.DeepEqual(result.DocIDs, tt.wantDocs) {
			t.Errorf("query %q doc_ids = %v, want %v", tt.query, result.DocIDs, tt.wantDocs)
		}
	}
}

func TestSearchMissingQuery(t *testing.T) {
	h := newTestHandler(t)
	rec := doSearch(t, h, "/api/v1/search")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestSearchInvalidQuery(t *testing.T) {
	h := newTestHandler(t)
	for _, query := range []string{"computer AND", "(computer", "computer data /x"} {
		rec := doSearch(t, h, "/api/v1/search?q="+url.QueryEscape(query))
		if rec.Code != http.StatusBadRequest {
			t.Errorf("query %q status = %d, want 400", query, rec.Code)
		}
		var body struct {
			Error string `json:"error"`
		}
		decodeBody(t, rec, &body)
		if body.Error == "" {
			t.Errorf("query %q returned no error message", query)
		}
	}
}

func TestSearchInvalidLimit(t *testing.T) {
	h := newTestHandler(t)
	for _, limit := range []string{"0", "-3", "abc"} {
		rec := doSearch(t, h, "/api/v1/search?q=data&limit="+limit)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("limit %q status = %d, want 400", limit, rec.Code)
		}
	}
}

func TestSearchLimitTruncates(t *testing.T) {
	h := newTestHandler(t)
	rec := doSearch(t, h, "/api/v1/search?q=data&limit=1")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var result struct {
		TotalHits int      `json:"total_hits"`
		DocIDs    []string `json:"doc_ids"`
	}
	decodeBody(t, rec, &result)
	if result.TotalHits != 2 {
		t.Errorf("total_hits = %d, want 2", result.TotalHits)
	}
	if len(result.DocIDs) != 1 {
		t.Errorf("doc_ids = %v, want one entry", result.DocIDs)
	}
}

func TestSearchIndexUnavailable(t *testing.T) {
	an := analyzer.New(nil)
	h := New(&stubProvider{err: apperrors.ErrIndexUnavailable}, parser.New(an), nil, nil, nil, nil, 50, 1000)
	rec := doSearch(t, h, "/api/v1/search?q=data")
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", rec.Code)
	}
}

func TestDocumentWithoutStore(t *testing.T) {
	h := newTestHandler(t)
	req := httptest.NewRequest(http.MethodGet, "/api/v1/documents/doc1", nil)
	req.SetPathValue("id", "doc1")
	rec := httptest.NewRecorder()
	h.Document(rec, req)
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", rec.Code)
	}
}

func TestCacheEndpointsWithoutCache(t *testing.T) {
	h := newTestHandler(t)

	rec := httptest.NewRecorder()
	h.CacheStats(rec, httptest.NewRequest(http.MethodGet, "/api/v1/cache/stats", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("CacheStats status = %d, want 200", rec.Code)
	}
	var stats struct {
		Status string `json:"status"`
	}
	decodeBody(t, rec, &stats)
	if stats.Status != "disabled" {
		t.Errorf("CacheStats status field = %q, want %q", stats.Status, "disabled")
	}

	rec = httptest.NewRecorder()
	h.CacheInvalidate(rec, httptest.NewRequest(http.MethodPost, "/api/v1/cache/invalidate", nil))
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("CacheInvalidate status = %d, want 503", rec.Code)
	}
}
