// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package retrieve

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/meshintel/autoresearcher/pkg/types"
)

const semanticTestResponse = `{
  "total": 154,
  "offset": 0,
  "data": [
    {
      "paperId": "abc123",
      "title": "  Attention Is All You Need  ",
      "abstract": "The dominant sequence transduction models...",
      "year": 2017,
      "publicationDate": "2017-06-12",
      "journal": {"name": "NeurIPS"},
      "citationCount": 90000,
      "url": "https://www.semanticscholar.org/paper/abc123",
      "authors": [
        {"authorId": "1", "name": "Ashish Vaswani"},
        {"authorId": "2", "name": ""}
      ]
    },
    {
      "paperId": "def456",
      "title": "Year Only Paper",
      "abstract": null,
      "year": 0,
      "publicationDate": "2019",
      "journal": null,
      "citationCount": 3,
      "url": "",
      "authors": []
    },
    {
      "paperId": "empty",
      "title": "   ",
      "year": 2020
    }
  ]
}`

func TestSemanticScholarSearch(t *testing.T) {
	var gotKey, gotQuery, gotLimit string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotKey = r.Header.Get("x-api-key")
		gotQuery = r.URL.Query().Get("query")
		gotLimit = r.URL.Query().Get("limit")
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(semanticTestResponse))
	}))
	defer ts.Close()

	old := semanticAPIBase
	semanticAPIBase = ts.URL
	defer func() { semanticAPIBase = old }()

	src := NewSemanticScholarSource(ts.Client(), types.HTTPConfig{UserAgent: "test-agent"}, "sekrit")
	result, err := src.Search(context.Background(), "attention transformers", 10)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}

	if gotKey != "sekrit" {
		t.Errorf("x-api-key = %q", gotKey)
	}
	if gotQuery != "attention transformers" {
		t.Errorf("query = %q, want goal passed verbatim", gotQuery)
	}
	if gotLimit != "10" {
		t.Errorf("limit = %q, want 10", gotLimit)
	}

	if result.Count != 2 {
		t.Fatalf("got %d documents, want 2 (blank title dropped)", result.Count)
	}
	if result.TotalFound != 154 {
		t.Errorf("TotalFound = %d, want 154 from API total", result.TotalFound)
	}

	d := result.Documents[0]
	if d.Title != "Attention Is All You Need" {
		t.Errorf("title not trimmed: %q", d.Title)
	}
	if d.Year != 2017 {
		t.Errorf("year = %d, want 2017", d.Year)
	}
	if d.Published != "2017-06-12T00:00:00Z" {
		t.Errorf("published = %q, want synthesized ISO timestamp", d.Published)
	}
	if len(d.Authors) != 1 || d.Authors[0] != "Ashish Vaswani" {
		t.Errorf("authors = %v, empty names must be dropped", d.Authors)
	}
	if len(d.Categories) != 1 || d.Categories[0] != "NeurIPS" {
		t.Errorf("categories = %v, want journal name", d.Categories)
	}
	if d.CitationCount != 90000 {
		t.Errorf("citations = %d", d.CitationCount)
	}
	if d.Source != types.SourceSemanticScholar {
		t.Errorf("source = %q", d.Source)
	}

	// Year-only publication date: year recovered, timestamp synthesized.
	d2 := result.Documents[1]
	if d2.Year != 2019 {
		t.Errorf("year-only paper year = %d, want 2019", d2.Year)
	}
	if d2.Published != "2019-01-01T00:00:00Z" {
		t.Errorf("year-only published = %q", d2.Published)
	}
}

func TestSemanticScholarLimitCap(t *testing.T) {
	var gotLimit string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotLimit = r.URL.Query().Get("limit")
		w.Write([]byte(`{"total": 0, "data": []}`))
	}))
	defer ts.Close()

	old := semanticAPIBase
	semanticAPIBase = ts.URL
	defer func() { semanticAPIBase = old }()

	src := NewSemanticScholarSource(ts.Client(), types.HTTPConfig{}, "")
	if _, err := src.Search(context.Background(), "anything", 500); err != nil {
		t.Fatalf("Search: %v", err)
	}
	if gotLimit != "100" {
		t.Errorf("limit = %q, want capped at 100", gotLimit)
	}
}

func TestSemanticScholarHTTPError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer ts.Close()

	old := semanticAPIBase
	semanticAPIBase = ts.URL
	defer func() { semanticAPIBase = old }()

	src := NewSemanticScholarSource(ts.Client(), types.HTTPConfig{}, "")
	if _, err := src.Search(context.Background(), "anything", 10); err == nil {
		t.Fatal("expected error for HTTP 500")
	}
}

func TestSemanticPublished(t *testing.T) {
	cases := []struct {
		pubDate string
		year    int
		want    string
	}{
		{"2019", 2019, "2019-01-01T00:00:00Z"},
		{"2017-06-12", 2017, "2017-06-12T00:00:00Z"},
		{"", 2015, "2015-01-01T00:00:00Z"},
		{"", 0, ""},
		{"2017-06-12T10:00:00Z", 2017, "2017-06-12T10:00:00Z"},
	}
	for _, c := range cases {
		if got := semanticPublished(c.pubDate, c.year); got != c.want {
			t.Errorf("semanticPublished(%q, %d) = %q, want %q", c.pubDate, c.year, got, c.want)
		}
	}
}
