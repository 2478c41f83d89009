// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package retrieve

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/meshintel/autoresearcher/internal/httputil"
	"github.com/meshintel/autoresearcher/pkg/types"
)

// semanticAPIBase is the Semantic Scholar paper search endpoint. Declared as
// a var so tests can substitute an httptest server.
var semanticAPIBase = "https://api.semanticscholar.org/graph/v1/paper/search"

const semanticFields = "paperId,title,abstract,authors,year,publicationDate,journal,citationCount,url"

// semanticMaxLimit is the API's per-request result cap.
const semanticMaxLimit = 100

// SemanticScholarSource queries the Semantic Scholar Graph API.
type SemanticScholarSource struct {
	client *http.Client
	cfg    types.HTTPConfig
	apiKey string
}

// NewSemanticScholarSource builds the Semantic Scholar adapter. apiKey may be
// empty; the free tier works without one at lower rate limits.
func NewSemanticScholarSource(client *http.Client, cfg types.HTTPConfig, apiKey string) *SemanticScholarSource {
	return &SemanticScholarSource{client: client, cfg: cfg, apiKey: apiKey}
}

// Name returns the adapter identifier.
func (s *SemanticScholarSource) Name() string { return NameSemanticScholar }

// Search sends the goal verbatim to the paper search endpoint and normalizes
// the response. Rate-limit responses are retried with backoff.
func (s *SemanticScholarSource) Search(ctx context.Context, goal string, maxResults int) (types.SourceResult, error) {
	if maxResults <= 0 {
		maxResults = 10
	}
	if maxResults > semanticMaxLimit {
		maxResults = semanticMaxLimit
	}

	params := url.Values{
		"query":  {goal},
		"limit":  {fmt.Sprintf("%d", maxResults)},
		"fields": {semanticFields},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, semanticAPIBase+"?"+params.Encode(), nil)
	if err != nil {
		return types.SourceResult{QueryUsed: goal}, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", s.cfg.UserAgent)
	if s.apiKey != "" {
		req.Header.Set("x-api-key", s.apiKey)
	}

	resp, err := httputil.DoWithRetry(ctx, s.client, req, 0)
	if err != nil {
		return types.SourceResult{QueryUsed: goal}, fmt.Errorf("Semantic Scholar API request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return types.SourceResult{QueryUsed: goal}, fmt.Errorf("Semantic Scholar API returned HTTP %d", resp.StatusCode)
	}

	var sr semanticResponse
	if err := json.NewDecoder(resp.Body).Decode(&sr); err != nil {
		return types.SourceResult{QueryUsed: goal}, fmt.Errorf("parsing Semantic Scholar response: %w", err)
	}

	var documents []types.Document
	for _, paper := range sr.Data {
		title := strings.TrimSpace(paper.Title)
		if title == "" {
			continue
		}

		doc := types.Document{
			ID:            paper.PaperID,
			Title:         title,
			Authors:       []string{},
			Abstract:      strings.TrimSpace(paper.Abstract),
			Source:        types.SourceSemanticScholar,
			LinkAbs:       paper.URL,
			CitationCount: paper.CitationCount,
		}

		for _, a := range paper.Authors {
			if a.Name != "" {
				doc.Authors = append(doc.Authors, a.Name)
			}
		}

		doc.Year = paper.Year
		if doc.Year == 0 && len(paper.PublicationDate) >= 4 {
			fmt.Sscanf(paper.PublicationDate[:4], "%d", &doc.Year)
		}
		doc.Published = semanticPublished(paper.PublicationDate, doc.Year)

		if paper.Journal != nil && paper.Journal.Name != "" {
			doc.Categories = []string{paper.Journal.Name}
		}

		documents = append(documents, doc)
	}

	total := sr.Total
	if total < len(documents) {
		total = len(documents)
	}

	return types.SourceResult{
		QueryUsed:  goal,
		Documents:  documents,
		Count:      len(documents),
		TotalFound: total,
	}, nil
}

// semanticPublished normalizes the publication date to ISO-8601, synthesizing
// midnight UTC on January 1st when only a year is known.
func semanticPublished(pubDate string, year int) string {
	switch len(pubDate) {
	case 4: // year only
		return pubDate + "-01-01T00:00:00Z"
	case 10: // YYYY-MM-DD
		return pubDate + "T00:00:00Z"
	}
	if pubDate != "" {
		return pubDate
	}
	if year > 0 {
		return fmt.Sprintf("%d-01-01T00:00:00Z", year)
	}
	return ""
}

// Semantic Scholar API JSON structures.
type semanticResponse struct {
	Total  int             `json:"total"`
	Offset int             `json:"offset"`
	Data   []semanticPaper `json:"data"`
}

type semanticPaper struct {
	PaperID         string           `json:"paperId"`
	Title           string           `json:"title"`
	Abstract        string           `json:"abstract"`
	Year            int              `json:"year"`
	PublicationDate string           `json:"publicationDate"`
	Journal         *semanticJournal `json:"journal"`
	CitationCount   int              `json:"citationCount"`
	URL             string           `json:"url"`
	Authors         []semanticAuthor `json:"authors"`
}

type semanticAuthor struct {
	AuthorID string `json:"authorId"`
	Name     string `json:"name"`
}

type semanticJournal struct {
	Name string `json:"name"`
}
