// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package report renders structured Markdown research reports from collected
// documents. Section content is keyword- and template-driven; when a chunk
// searcher is available the per-subtopic analysis pulls supporting snippets
// from the document store.
package report

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/meshintel/autoresearcher/internal/store"
	"github.com/meshintel/autoresearcher/pkg/types"
)

// Searcher finds stored chunks similar to a query. *store.Store satisfies it.
type Searcher interface {
	SearchSimilar(ctx context.Context, query string, k int) ([]store.Match, error)
}

// Generator renders research reports. A nil searcher disables the
// per-subtopic analysis section's document lookups.
type Generator struct {
	searcher Searcher
	now      func() time.Time
}

// NewGenerator returns a Generator backed by the given searcher, which may
// be nil.
func NewGenerator(searcher Searcher) *Generator {
	return &Generator{searcher: searcher, now: time.Now}
}

// Generate renders the full Markdown report for the goal.
func (g *Generator) Generate(ctx context.Context, goal string, docs []types.Document, subtopics []types.Subtopic) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# Research Report: %s\n\n", goal)
	fmt.Fprintf(&b, "**Generated on:** %s\n\n", g.now().Format("2006-01-02 15:04:05"))
	fmt.Fprintf(&b, "**Total Sources:** %d\n\n", len(docs))

	g.executiveSummary(&b, goal, docs)
	g.sourceOverview(&b, docs)
	if len(subtopics) > 0 {
		g.subtopicAnalysis(ctx, &b, subtopics)
	}
	g.recentDevelopments(&b, docs)
	g.knowledgeGaps(&b, docs)
	g.references(&b, docs)

	return b.String()
}

func (g *Generator) executiveSummary(b *strings.Builder, goal string, docs []types.Document) {
	b.WriteString("## Executive Summary\n\n")

	if len(docs) == 0 {
		b.WriteString("No relevant documents were found for this research goal.\n\n")
		return
	}

	years := knownYears(docs)

	// Per-source counts in first-seen order.
	var sourceOrder []string
	sources := map[string]int{}
	for _, d := range docs {
		name := sourceName(d)
		if sources[name] == 0 {
			sourceOrder = append(sourceOrder, name)
		}
		sources[name]++
	}

	fmt.Fprintf(b, "This report analyzes **%d documents** related to %s. ", len(docs), goal)
	if len(years) > 0 {
		earliest, latest := years[0], years[0]
		for _, y := range years {
			if y < earliest {
				earliest = y
			}
			if y > latest {
				latest = y
			}
		}
		fmt.Fprintf(b, "The research spans from %d to %d, with the most recent publications from %d. ",
			earliest, latest, latest)
	}

	parts := make([]string, 0, len(sourceOrder))
	for _, name := range sourceOrder {
		parts = append(parts, fmt.Sprintf("%s (%d)", name, sources[name]))
	}
	fmt.Fprintf(b, "Sources include: %s.\n\n", strings.Join(parts, ", "))

	keywords := extractKeywords(allText(docs), goal, 20)
	if len(keywords) > 10 {
		keywords = keywords[:10]
	}
	if len(keywords) > 0 {
		fmt.Fprintf(b, "**Key themes identified:** %s\n\n", strings.Join(keywords, ", "))
	}
}

func (g *Generator) sourceOverview(b *strings.Builder, docs []types.Document) {
	b.WriteString("## Source Overview\n\n")

	var sourceOrder []string
	bySource := map[string][]types.Document{}
	for _, d := range docs {
		name := sourceName(d)
		if _, ok := bySource[name]; !ok {
			sourceOrder = append(sourceOrder, name)
		}
		bySource[name] = append(bySource[name], d)
	}

	for _, name := range sourceOrder {
		group := bySource[name]
		fmt.Fprintf(b, "### %s (%d documents)\n\n", name, len(group))

		sorted := append([]types.Document{}, group...)
		sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Year > sorted[j].Year })

		shown := len(sorted)
		if shown > 5 {
			shown = 5
		}
		for _, d := range sorted[:shown] {
			title := d.Title
			if title == "" {
				title = "Untitled"
			}
			fmt.Fprintf(b, "- **%s** (%s)\n", title, yearLabel(d.Year, "Unknown"))
			if authors := shortAuthors(d.Authors); authors != "" {
				fmt.Fprintf(b, "  - Authors: %s\n", authors)
			}
			if link := docLink(d); link != "" {
				fmt.Fprintf(b, "  - [View Source](%s)\n", link)
			}
			b.WriteString("\n")
		}

		if len(group) > 5 {
			fmt.Fprintf(b, "*... and %d more documents*\n\n", len(group)-5)
		}
	}
}

func (g *Generator) subtopicAnalysis(ctx context.Context, b *strings.Builder, subtopics []types.Subtopic) {
	b.WriteString("## Analysis by Research Areas\n\n")

	if g.searcher == nil {
		b.WriteString("*Subtopic analysis requires document processing to be enabled.*\n\n")
		return
	}

	limit := len(subtopics)
	if limit > 8 {
		limit = 8
	}
	for _, st := range subtopics[:limit] {
		fmt.Fprintf(b, "### %s\n\n", st.Name)
		fmt.Fprintf(b, "*%s*\n\n", st.Rationale)

		matches, err := g.searcher.SearchSimilar(ctx, st.Name, 5)
		if err != nil || len(matches) == 0 {
			b.WriteString("*No specific documents found for this subtopic. This may represent a research gap.*\n\n")
			continue
		}

		b.WriteString("**Key findings:**\n\n")
		for _, m := range matches {
			if m.Metadata.Title == "" {
				continue
			}
			fmt.Fprintf(b, "- **%s** (%s)\n", m.Metadata.Title, m.Metadata.Source)
			snippet := m.Text
			if len(snippet) > 200 {
				snippet = snippet[:200]
			}
			if snippet != "" {
				fmt.Fprintf(b, "  - %s...\n", snippet)
			}
			b.WriteString("\n")
		}
	}
}

func (g *Generator) recentDevelopments(b *strings.Builder, docs []types.Document) {
	b.WriteString("## Recent Developments (Last 3 Years)\n\n")

	cutoff := g.now().Year() - 3
	var recent []types.Document
	for _, d := range docs {
		if d.Year >= cutoff && d.Year > 0 {
			recent = append(recent, d)
		}
	}

	if len(recent) == 0 {
		b.WriteString("No recent developments found in the collected sources.\n\n")
		return
	}

	sort.SliceStable(recent, func(i, j int) bool { return recent[i].Year > recent[j].Year })

	shown := len(recent)
	if shown > 10 {
		shown = 10
	}
	for _, d := range recent[:shown] {
		fmt.Fprintf(b, "### %s (%d)\n\n", d.Title, d.Year)

		if authors := shortAuthors(d.Authors); authors != "" {
			fmt.Fprintf(b, "**Authors:** %s\n\n", authors)
		}

		if d.Abstract != "" {
			sentences := sentenceSplit.Split(d.Abstract, -1)
			var key []string
			for _, s := range sentences {
				s = strings.TrimSpace(s)
				if s != "" {
					key = append(key, s)
				}
				if len(key) == 2 {
					break
				}
			}
			if len(key) > 0 {
				fmt.Fprintf(b, "**Key contribution:** %s.\n\n", strings.Join(key, ". "))
			}
		}

		if link := docLink(d); link != "" {
			fmt.Fprintf(b, "[Read more](%s)\n\n", link)
		}
		b.WriteString("---\n\n")
	}
}

// potentialGaps are research areas checked against the collected text; an
// area never mentioned is reported as a possible gap.
var potentialGaps = []string{
	"ethical considerations",
	"real-world deployment",
	"scalability challenges",
	"cost analysis",
	"user studies",
	"comparative evaluation",
	"failure modes",
	"limitations",
	"future work",
	"open problems",
}

func (g *Generator) knowledgeGaps(b *strings.Builder, docs []types.Document) {
	b.WriteString("## Potential Knowledge Gaps\n\n")

	text := strings.ToLower(allText(docs))

	var missing []string
	for _, gap := range potentialGaps {
		if !strings.Contains(text, gap) {
			missing = append(missing, gap)
		}
	}

	if len(missing) > 0 {
		b.WriteString("Based on the collected literature, the following areas may need more research:\n\n")
		shown := len(missing)
		if shown > 5 {
			shown = 5
		}
		for _, area := range missing[:shown] {
			fmt.Fprintf(b, "- **%s**: Limited coverage in current sources\n", titleCase(area))
		}
		b.WriteString("\n")
	}

	years := knownYears(docs)
	if len(years) > 0 {
		minY, maxY := years[0], years[0]
		for _, y := range years {
			if y < minY {
				minY = y
			}
			if y > maxY {
				maxY = y
			}
		}
		if maxY-minY > 5 {
			fmt.Fprintf(b, "**Temporal coverage:** Research spans %d years, but there may be gaps in certain time periods.\n\n", maxY-minY)
		}
	}

	b.WriteString("*Note: These gaps are identified automatically and may not represent actual research needs.*\n\n")
}

func (g *Generator) references(b *strings.Builder, docs []types.Document) {
	b.WriteString("## References\n\n")

	sorted := append([]types.Document{}, docs...)
	sort.SliceStable(sorted, func(i, j int) bool {
		si, sj := surname(sorted[i]), surname(sorted[j])
		if si != sj {
			return si < sj
		}
		return sorted[i].Year < sorted[j].Year
	})

	for i, d := range sorted {
		title := d.Title
		if title == "" {
			title = "Untitled"
		}

		var authors string
		switch n := len(d.Authors); {
		case n == 0:
			authors = "Unknown Author"
		case n == 1:
			authors = d.Authors[0]
		case n <= 3:
			authors = strings.Join(d.Authors[:n-1], ", ") + " & " + d.Authors[n-1]
		default:
			authors = d.Authors[0] + " et al."
		}

		fmt.Fprintf(b, "%d. %s (%s). *%s*. %s.", i+1, authors, yearLabel(d.Year, "n.d."), title, d.Source)
		if link := docLink(d); link != "" {
			fmt.Fprintf(b, " Available at: %s", link)
		}
		b.WriteString("\n\n")
	}
}

var (
	sentenceSplit = regexp.MustCompile(`[.!?]+`)
	keywordToken  = regexp.MustCompile(`\b[a-zA-Z]{4,}\b`)
)

var keywordStopwords = map[string]bool{
	"this": true, "that": true, "with": true, "have": true, "will": true,
	"from": true, "they": true, "been": true, "were": true, "said": true,
	"each": true, "which": true, "their": true, "time": true, "more": true,
	"very": true, "when": true, "come": true, "here": true, "could": true,
	"than": true, "like": true, "other": true, "into": true, "after": true,
	"first": true, "well": true, "also": true, "where": true, "much": true,
	"before": true, "through": true, "these": true, "such": true, "only": true,
	"over": true, "think": true, "most": true, "even": true, "find": true,
	"work": true, "life": true, "without": true, "should": true, "made": true,
	"while": true, "make": true, "right": true, "still": true, "being": true,
	"never": true, "down": true, "same": true, "tell": true, "does": true,
	"three": true, "want": true, "play": true, "small": true, "home": true,
	"read": true, "hand": true, "port": true, "large": true, "spell": true,
	"land": true, "must": true, "high": true, "follow": true, "change": true,
	"went": true, "light": true, "kind": true, "need": true, "house": true,
	"picture": true, "again": true, "animal": true, "point": true,
	"mother": true, "world": true, "near": true, "build": true, "self": true,
	"earth": true, "father": true,
}

// extractKeywords counts word frequencies in text, excluding stopwords and
// the goal's own words, and returns up to max terms that occur more than
// once, most frequent first. Ties keep first-seen order.
func extractKeywords(text, goal string, max int) []string {
	goalWords := map[string]bool{}
	for _, w := range strings.Fields(strings.ToLower(goal)) {
		goalWords[w] = true
	}

	freq := map[string]int{}
	var order []string
	for _, w := range keywordToken.FindAllString(strings.ToLower(text), -1) {
		if keywordStopwords[w] || goalWords[w] {
			continue
		}
		if freq[w] == 0 {
			order = append(order, w)
		}
		freq[w]++
	}

	sort.SliceStable(order, func(i, j int) bool { return freq[order[i]] > freq[order[j]] })

	var keywords []string
	for _, w := range order {
		if freq[w] > 1 {
			keywords = append(keywords, w)
		}
		if len(keywords) == max {
			break
		}
	}
	return keywords
}

func allText(docs []types.Document) string {
	parts := make([]string, 0, len(docs))
	for _, d := range docs {
		parts = append(parts, d.Title+" "+d.Abstract)
	}
	return strings.Join(parts, " ")
}

func knownYears(docs []types.Document) []int {
	var years []int
	for _, d := range docs {
		if d.Year > 0 {
			years = append(years, d.Year)
		}
	}
	return years
}

func sourceName(d types.Document) string {
	if d.Source == "" {
		return "Unknown"
	}
	return d.Source
}

func yearLabel(year int, unknown string) string {
	if year <= 0 {
		return unknown
	}
	return fmt.Sprintf("%d", year)
}

func docLink(d types.Document) string {
	if d.LinkAbs != "" {
		return d.LinkAbs
	}
	return d.LinkPDF
}

// shortAuthors joins the first three authors, appending "et al." when more
// exist.
func shortAuthors(authors []string) string {
	if len(authors) == 0 {
		return ""
	}
	shown := len(authors)
	if shown > 3 {
		shown = 3
	}
	s := strings.Join(authors[:shown], ", ")
	if len(authors) > 3 {
		s += " et al."
	}
	return s
}

func surname(d types.Document) string {
	if len(d.Authors) == 0 {
		return ""
	}
	fields := strings.Fields(d.Authors[0])
	if len(fields) == 0 {
		return ""
	}
	return fields[len(fields)-1]
}

func titleCase(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
