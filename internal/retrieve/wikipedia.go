// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package retrieve

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/meshintel/autoresearcher/internal/httputil"
	"github.com/meshintel/autoresearcher/pkg/types"
)

// Wikipedia endpoints. Declared as vars so tests can substitute httptest
// servers.
var (
	wikipediaSearchAPIBase  = "https://en.wikipedia.org/w/api.php"
	wikipediaSummaryAPIBase = "https://en.wikipedia.org/api/rest_v1/page/summary"
)

// wikipediaExtractLimit bounds the stored extract length.
const wikipediaExtractLimit = 500

var htmlTag = regexp.MustCompile(`<[^>]+>`)

// WikipediaSource queries the MediaWiki action API for article hits and the
// REST summary API for each hit's extract.
type WikipediaSource struct {
	client *http.Client
	cfg    types.HTTPConfig
}

// NewWikipediaSource builds the Wikipedia adapter.
func NewWikipediaSource(client *http.Client, cfg types.HTTPConfig) *WikipediaSource {
	return &WikipediaSource{client: client, cfg: cfg}
}

// Name returns the adapter identifier.
func (s *WikipediaSource) Name() string { return NameWikipedia }

// Search finds matching articles and fetches a summary for each. When a
// summary fetch fails the article's search snippet is used instead, so one
// bad page never sinks the whole source.
func (s *WikipediaSource) Search(ctx context.Context, goal string, maxResults int) (types.SourceResult, error) {
	if maxResults <= 0 {
		maxResults = 5
	}

	params := url.Values{
		"action":   {"query"},
		"format":   {"json"},
		"list":     {"search"},
		"srsearch": {goal},
		"srlimit":  {fmt.Sprintf("%d", maxResults)},
		"srprop":   {"snippet|titlesnippet|size"},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, wikipediaSearchAPIBase+"?"+params.Encode(), nil)
	if err != nil {
		return types.SourceResult{QueryUsed: goal}, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", s.cfg.UserAgent)

	resp, err := httputil.DoWithRetry(ctx, s.client, req, 0)
	if err != nil {
		return types.SourceResult{QueryUsed: goal}, fmt.Errorf("Wikipedia search request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return types.SourceResult{QueryUsed: goal}, fmt.Errorf("Wikipedia search returned HTTP %d", resp.StatusCode)
	}

	var search wikipediaSearchResponse
	if err := json.NewDecoder(resp.Body).Decode(&search); err != nil {
		return types.SourceResult{QueryUsed: goal}, fmt.Errorf("parsing Wikipedia search response: %w", err)
	}

	var documents []types.Document
	for _, hit := range search.Query.Search {
		if strings.TrimSpace(hit.Title) == "" {
			continue
		}

		summary, sumErr := s.fetchSummary(ctx, hit.Title)
		var doc types.Document
		if sumErr != nil {
			doc = wikipediaDocFromSnippet(hit)
		} else {
			doc = wikipediaDocFromSummary(hit, summary)
		}
		documents = append(documents, doc)
	}

	return types.SourceResult{
		QueryUsed:  goal,
		Documents:  documents,
		Count:      len(documents),
		TotalFound: len(documents),
	}, nil
}

func (s *WikipediaSource) fetchSummary(ctx context.Context, title string) (*wikipediaSummary, error) {
	slug := url.PathEscape(strings.ReplaceAll(title, " ", "_"))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, wikipediaSummaryAPIBase+"/"+slug, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", s.cfg.UserAgent)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("summary returned HTTP %d", resp.StatusCode)
	}

	var summary wikipediaSummary
	if err := json.NewDecoder(resp.Body).Decode(&summary); err != nil {
		return nil, err
	}
	return &summary, nil
}

func wikipediaDocFromSummary(hit wikipediaSearchHit, summary *wikipediaSummary) types.Document {
	title := summary.Title
	if title == "" {
		title = hit.Title
	}

	extract := summary.Extract
	if extract == "" {
		extract = htmlTag.ReplaceAllString(hit.Snippet, "")
	}
	extract = truncateExtract(extract)

	published, year := wikipediaPublished(summary.Timestamp)

	link := summary.ContentURLs.Desktop.Page
	if link == "" {
		link = wikipediaPageURL(title)
	}

	return types.Document{
		ID:         "wikipedia_" + strings.ReplaceAll(title, " ", "_"),
		Title:      title,
		Authors:    []string{"Wikipedia Contributors"},
		Abstract:   extract,
		Published:  published,
		Year:       year,
		Source:     types.SourceWikipedia,
		Categories: []string{"Encyclopedia"},
		LinkAbs:    link,
	}
}

func wikipediaDocFromSnippet(hit wikipediaSearchHit) types.Document {
	now := time.Now().UTC()
	return types.Document{
		ID:         "wikipedia_" + strings.ReplaceAll(hit.Title, " ", "_"),
		Title:      hit.Title,
		Authors:    []string{"Wikipedia Contributors"},
		Abstract:   htmlTag.ReplaceAllString(hit.Snippet, ""),
		Published:  now.Format(time.RFC3339),
		Year:       now.Year(),
		Source:     types.SourceWikipedia,
		Categories: []string{"Encyclopedia"},
		LinkAbs:    wikipediaPageURL(hit.Title),
	}
}

// wikipediaPublished parses the article revision timestamp; an absent or
// malformed timestamp falls back to the current time, since encyclopedia
// entries are continuously revised.
func wikipediaPublished(timestamp string) (string, int) {
	if t, err := time.Parse(time.RFC3339, timestamp); err == nil {
		return t.UTC().Format(time.RFC3339), t.Year()
	}
	now := time.Now().UTC()
	return now.Format(time.RFC3339), now.Year()
}

// truncateExtract caps the extract at wikipediaExtractLimit runes, cutting
// on a rune boundary so multi-byte characters are never split.
func truncateExtract(extract string) string {
	r := []rune(extract)
	if len(r) <= wikipediaExtractLimit {
		return extract
	}
	return string(r[:wikipediaExtractLimit]) + "..."
}

func wikipediaPageURL(title string) string {
	return "https://en.wikipedia.org/wiki/" + strings.ReplaceAll(title, " ", "_")
}

// MediaWiki API JSON structures.
type wikipediaSearchResponse struct {
	Query struct {
		Search []wikipediaSearchHit `json:"search"`
	} `json:"query"`
}

type wikipediaSearchHit struct {
	Title   string `json:"title"`
	Snippet string `json:"snippet"`
	PageID  int    `json:"pageid"`
}

type wikipediaSummary struct {
	Title       string `json:"title"`
	Extract     string `json:"extract"`
	Timestamp   string `json:"timestamp"`
	PageID      int    `json:"pageid"`
	ContentURLs struct {
		Desktop struct {
			Page string `json:"page"`
		} `json:"desktop"`
	} `json:"content_urls"`
}
