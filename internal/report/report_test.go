// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package report

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/meshintel/autoresearcher/internal/store"
	"github.com/meshintel/autoresearcher/pkg/types"
)

type fakeSearcher struct {
	matches []store.Match
	err     error
}

func (f *fakeSearcher) SearchSimilar(_ context.Context, _ string, _ int) ([]store.Match, error) {
	return f.matches, f.err
}

func fixedNow() time.Time {
	return time.Date(2026, 8, 27, 12, 0, 0, 0, time.UTC)
}

func newTestGenerator(s Searcher) *Generator {
	g := NewGenerator(s)
	g.now = fixedNow
	return g
}

func sampleDocs() []types.Document {
	return []types.Document{
		{
			ID:       "arxiv_1",
			Title:    "Swarm Coordination Under Uncertainty",
			Authors:  []string{"Ada Lovelace", "Grace Hopper"},
			Abstract: "We study coordination of robot swarms. Scalability challenges are analyzed in depth. Results are promising.",
			Year:     2025,
			Source:   types.SourceArxiv,
			LinkAbs:  "https://arxiv.org/abs/1",
		},
		{
			ID:      "s2_1",
			Title:   "A Survey of Multi-Robot Systems",
			Authors: []string{"Alan Turing", "John McCarthy", "Marvin Minsky", "Claude Shannon"},
			Year:    2018,
			Source:  types.SourceSemanticScholar,
		},
		{
			ID:     "wiki_1",
			Title:  "Swarm robotics",
			Year:   0,
			Source: types.SourceWikipedia,
		},
	}
}

func TestGenerateHeaderAndSummary(t *testing.T) {
	g := newTestGenerator(nil)
	out := g.Generate(context.Background(), "swarm robotics", sampleDocs(), nil)

	for _, want := range []string{
		"# Research Report: swarm robotics",
		"**Generated on:** 2026-08-27 12:00:00",
		"**Total Sources:** 3",
		"This report analyzes **3 documents**",
		"The research spans from 2018 to 2025",
		"arXiv (1)",
		"Semantic Scholar (1)",
		"Wikipedia (1)",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("report missing %q", want)
		}
	}
}

func TestGenerateEmptyDocuments(t *testing.T) {
	g := newTestGenerator(nil)
	out := g.Generate(context.Background(), "anything", nil, nil)

	if !strings.Contains(out, "No relevant documents were found for this research goal.") {
		t.Error("missing empty-collection summary")
	}
	if !strings.Contains(out, "No recent developments found in the collected sources.") {
		t.Error("missing empty recent developments")
	}
}

func TestSourceOverviewGroupsAndTruncates(t *testing.T) {
	docs := sampleDocs()
	for i := 0; i < 7; i++ {
		docs = append(docs, types.Document{
			ID:     "extra",
			Title:  "Extra Paper",
			Year:   2020 + i,
			Source: types.SourceArxiv,
		})
	}

	g := newTestGenerator(nil)
	out := g.Generate(context.Background(), "swarm robotics", docs, nil)

	if !strings.Contains(out, "### arXiv (8 documents)") {
		t.Error("missing arXiv group header")
	}
	if !strings.Contains(out, "*... and 3 more documents*") {
		t.Error("missing truncation note for sources beyond the first five")
	}
	if !strings.Contains(out, "Alan Turing, John McCarthy, Marvin Minsky et al.") {
		t.Error("missing et al. author shortening")
	}
}

func TestSubtopicAnalysisWithoutSearcher(t *testing.T) {
	g := newTestGenerator(nil)
	subtopics := []types.Subtopic{{Name: "Methods & approaches", Rationale: "Map techniques."}}
	out := g.Generate(context.Background(), "swarm robotics", sampleDocs(), subtopics)

	if !strings.Contains(out, "*Subtopic analysis requires document processing to be enabled.*") {
		t.Error("missing disabled-analysis note")
	}
}

func TestSubtopicAnalysisWithMatches(t *testing.T) {
	s := &fakeSearcher{matches: []store.Match{
		{
			Text: "Robots coordinate using local rules.",
			Metadata: store.ChunkMetadata{
				Title:  "Swarm Coordination Under Uncertainty",
				Source: types.SourceArxiv,
			},
		},
	}}

	g := newTestGenerator(s)
	subtopics := []types.Subtopic{{Name: "Multi-agent coordination", Rationale: "Essential for scaling."}}
	out := g.Generate(context.Background(), "swarm robotics", sampleDocs(), subtopics)

	for _, want := range []string{
		"### Multi-agent coordination",
		"**Key findings:**",
		"- **Swarm Coordination Under Uncertainty** (arXiv)",
		"Robots coordinate using local rules....",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("report missing %q", want)
		}
	}
}

func TestSubtopicAnalysisSearchErrorReportsGap(t *testing.T) {
	s := &fakeSearcher{err: errors.New("index offline")}
	g := newTestGenerator(s)
	subtopics := []types.Subtopic{{Name: "Evaluation metrics", Rationale: "Compare fairly."}}
	out := g.Generate(context.Background(), "swarm robotics", sampleDocs(), subtopics)

	if !strings.Contains(out, "*No specific documents found for this subtopic. This may represent a research gap.*") {
		t.Error("search error should render as a research gap note")
	}
}

func TestRecentDevelopmentsExcludesOldAndUnknownYears(t *testing.T) {
	g := newTestGenerator(nil)
	out := g.Generate(context.Background(), "swarm robotics", sampleDocs(), nil)

	if !strings.Contains(out, "### Swarm Coordination Under Uncertainty (2025)") {
		t.Error("missing 2025 paper in recent developments")
	}
	if strings.Contains(out, "### A Survey of Multi-Robot Systems (2018)") {
		t.Error("2018 paper should not appear in recent developments")
	}
	if strings.Contains(out, "### Swarm robotics (0)") {
		t.Error("unknown-year document should not appear in recent developments")
	}
	if !strings.Contains(out, "**Key contribution:** We study coordination of robot swarms. Scalability challenges are analyzed in depth.") {
		t.Error("missing first-two-sentence key contribution")
	}
}

func TestKnowledgeGapsReportsMissingAreas(t *testing.T) {
	g := newTestGenerator(nil)
	out := g.Generate(context.Background(), "swarm robotics", sampleDocs(), nil)

	// "scalability challenges" appears in an abstract, so it is covered.
	if strings.Contains(out, "- **Scalability Challenges**") {
		t.Error("covered area listed as a gap")
	}
	if !strings.Contains(out, "- **Ethical Considerations**: Limited coverage in current sources") {
		t.Error("missing uncovered gap area")
	}
	if !strings.Contains(out, "**Temporal coverage:** Research spans 7 years") {
		t.Error("missing temporal coverage note")
	}
}

func TestReferencesSortedByAuthorSurname(t *testing.T) {
	g := newTestGenerator(nil)
	out := g.Generate(context.Background(), "swarm robotics", sampleDocs(), nil)

	// Empty-author Wikipedia entry sorts first, then Lovelace, then Turing.
	wiki := strings.Index(out, "1. Unknown Author (n.d.). *Swarm robotics*. Wikipedia.")
	lovelace := strings.Index(out, "2. Ada Lovelace & Grace Hopper (2025). *Swarm Coordination Under Uncertainty*. arXiv. Available at: https://arxiv.org/abs/1")
	turing := strings.Index(out, "3. Alan Turing et al. (2018). *A Survey of Multi-Robot Systems*. Semantic Scholar.")

	if wiki == -1 || lovelace == -1 || turing == -1 {
		t.Fatalf("missing reference entries:\n%s", out)
	}
	if !(wiki < lovelace && lovelace < turing) {
		t.Error("references out of order")
	}
}

func TestExtractKeywords(t *testing.T) {
	text := "neural networks learn representations. neural networks generalize. representations matter."
	got := extractKeywords(text, "machine learning goal", 20)

	if len(got) == 0 || got[0] != "neural" {
		t.Errorf("extractKeywords = %v, want neural first", got)
	}

	for _, w := range got {
		if w == "learn" || w == "matter" || w == "generalize" {
			t.Errorf("single-occurrence word %q should be excluded", w)
		}
	}
}
