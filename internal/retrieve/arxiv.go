// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package retrieve

import (
	"context"
	"encoding/xml"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
	"unicode"

	"github.com/meshintel/autoresearcher/pkg/types"
)

// arxivAPIBase is the arXiv search endpoint. Declared as a var so tests can
// substitute an httptest server.
var arxivAPIBase = "https://export.arxiv.org/api/query"

// arxivStopwords are filler words dropped when rewriting a research goal into
// an arXiv query.
var arxivStopwords = map[string]struct{}{
	"latest": {}, "recent": {}, "developments": {}, "the": {}, "a": {}, "an": {},
	"for": {}, "in": {}, "of": {}, "and": {}, "to": {}, "on": {}, "with": {},
	"towards": {}, "into": {}, "about": {}, "overview": {}, "state": {}, "art": {},
}

// arxivMaxQueryTokens caps the rewritten query so it stays focused.
const arxivMaxQueryTokens = 6

// ArxivSource queries the arXiv Atom API.
type ArxivSource struct {
	client *http.Client
	cfg    types.HTTPConfig
}

// NewArxivSource builds the arXiv adapter around the given HTTP client.
func NewArxivSource(client *http.Client, cfg types.HTTPConfig) *ArxivSource {
	return &ArxivSource{client: client, cfg: cfg}
}

// Name returns the adapter identifier.
func (s *ArxivSource) Name() string { return NameArxiv }

// Search rewrites the goal into a fielded boolean query, asks arXiv for the
// most recently submitted matches, and normalizes the Atom entries.
func (s *ArxivSource) Search(ctx context.Context, goal string, maxResults int) (types.SourceResult, error) {
	query := buildArxivQuery(goal)

	if maxResults <= 0 {
		maxResults = 10
	}

	params := url.Values{
		"search_query": {query},
		"start":        {"0"},
		"max_results":  {fmt.Sprintf("%d", maxResults)},
		"sortBy":       {"submittedDate"},
		"sortOrder":    {"descending"},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, arxivAPIBase+"?"+params.Encode(), nil)
	if err != nil {
		return types.SourceResult{QueryUsed: query}, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", s.cfg.UserAgent)

	resp, err := s.client.Do(req)
	if err != nil {
		return types.SourceResult{QueryUsed: query}, fmt.Errorf("arXiv API request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return types.SourceResult{QueryUsed: query}, fmt.Errorf("arXiv API returned HTTP %d", resp.StatusCode)
	}

	var feed arxivFeed
	if err := xml.NewDecoder(resp.Body).Decode(&feed); err != nil {
		return types.SourceResult{QueryUsed: query}, fmt.Errorf("parsing arXiv response: %w", err)
	}

	var documents []types.Document
	for _, entry := range feed.Entries {
		title := collapseWhitespace(entry.Title)
		if title == "" {
			continue
		}

		doc := types.Document{
			ID:        entry.ID,
			Title:     title,
			Authors:   []string{},
			Abstract:  collapseWhitespace(entry.Summary),
			Published: entry.Published,
			Source:    types.SourceArxiv,
			LinkAbs:   entry.ID,
		}

		for _, a := range entry.Authors {
			if name := strings.TrimSpace(a.Name); name != "" {
				doc.Authors = append(doc.Authors, name)
			}
		}
		for _, c := range entry.Categories {
			if c.Term != "" {
				doc.Categories = append(doc.Categories, c.Term)
			}
		}
		for _, l := range entry.Links {
			switch {
			case l.Title == "pdf":
				doc.LinkPDF = l.Href
			case l.Rel == "alternate" && l.Href != "":
				doc.LinkAbs = l.Href
			}
		}

		if t, parseErr := time.Parse(time.RFC3339, entry.Published); parseErr == nil {
			doc.Year = t.Year()
		}

		documents = append(documents, doc)
	}

	return types.SourceResult{
		QueryUsed:  query,
		Documents:  documents,
		Count:      len(documents),
		TotalFound: len(documents),
	}, nil
}

// buildArxivQuery rewrites a free-text goal into a constrained boolean query:
// drop stopwords and tokens of length <= 2, collapse a co-occurring
// "swarm"+"robotics" pair into one quoted phrase, cap at six tokens, and
// AND-join everything as quoted all: terms. An over-filtered goal falls back
// to the raw quoted string.
func buildArxivQuery(goal string) string {
	g := strings.ToLower(strings.TrimSpace(goal))

	var tokens []string
	for _, t := range tokenizeAlnum(g) {
		if _, stop := arxivStopwords[t]; stop || len(t) <= 2 {
			continue
		}
		tokens = append(tokens, t)
	}

	var phrases []string
	if containsToken(tokens, "swarm") && containsToken(tokens, "robotics") {
		phrases = append(phrases, `"swarm robotics"`)
		kept := tokens[:0]
		for _, t := range tokens {
			if t != "swarm" && t != "robotics" {
				kept = append(kept, t)
			}
		}
		tokens = kept
	}

	if len(tokens) > arxivMaxQueryTokens {
		tokens = tokens[:arxivMaxQueryTokens]
	}

	var parts []string
	for _, p := range phrases {
		parts = append(parts, "all:"+p)
	}
	for _, t := range tokens {
		parts = append(parts, fmt.Sprintf("all:%q", t))
	}

	if len(parts) == 0 {
		return fmt.Sprintf("all:%q", strings.TrimSpace(goal))
	}
	return strings.Join(parts, " AND ")
}

// tokenizeAlnum splits on every non-alphanumeric rune.
func tokenizeAlnum(s string) []string {
	return strings.FieldsFunc(s, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

func containsToken(tokens []string, want string) bool {
	for _, t := range tokens {
		if t == want {
			return true
		}
	}
	return false
}

func collapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// arXiv Atom feed XML structures.
type arxivFeed struct {
	Entries []arxivEntry `xml:"entry"`
}

type arxivEntry struct {
	ID         string          `xml:"id"`
	Title      string          `xml:"title"`
	Summary    string          `xml:"summary"`
	Published  string          `xml:"published"`
	Authors    []arxivAuthor   `xml:"author"`
	Categories []arxivCategory `xml:"category"`
	Links      []arxivLink     `xml:"link"`
}

type arxivAuthor struct {
	Name string `xml:"name"`
}

type arxivCategory struct {
	Term string `xml:"term,attr"`
}

type arxivLink struct {
	Href  string `xml:"href,attr"`
	Rel   string `xml:"rel,attr"`
	Title string `xml:"title,attr"`
}
