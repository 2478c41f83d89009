// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package plan builds rule-based research plans. A plan expands a research
// goal into subtopics with rationales, suggested search queries, free data
// sources, and the next pipeline steps. No network calls are involved.
package plan

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/meshintel/autoresearcher/pkg/types"
)

// domainHints maps a keyword found in the goal to extra subtopics.
var domainHints = []struct {
	keyword   string
	subtopics []string
}{
	{"robot", []string{"Multi-agent coordination", "Swarm communication protocols", "Real-world deployment & logistics"}},
	{"disaster", []string{"Incident command systems", "Search & rescue case studies", "Evaluation in constrained environments"}},
	{"health", []string{"Clinical validation & safety", "Data privacy & compliance"}},
	{"finance", []string{"Risk & compliance", "Market datasets & backtesting"}},
	{"llm", []string{"Retrieval-Augmented Generation (RAG)", "Evaluation & hallucination mitigation"}},
	{"climate", []string{"Impact pathways", "Datasets & geospatial layers"}},
	{"education", []string{"Learning outcomes & pedagogy", "Ethical use & bias"}},
}

var coreSubtopics = []string{
	"Background & definitions",
	"State of the art & key breakthroughs",
	"Methods & approaches",
	"Datasets & benchmarks",
	"Evaluation metrics",
	"Applications & case studies",
	"Challenges, risks & limitations",
	"Open problems & research gaps",
	"Tooling & ecosystem",
}

var freeSources = []string{
	"arXiv API",
	"Crossref API",
	"Semantic Scholar (free endpoints; rate limits apply)",
	"PubMed / Europe PMC",
	"Wikipedia / MediaWiki API",
	"Hugging Face Datasets",
	"Google Patents (scrape/search; no official free API)",
	"DOAJ (open access journals)",
}

var rationales = map[string]string{
	"Background & definitions":                 "Establish common terminology and scope to avoid ambiguity when surveying literature.",
	"State of the art & key breakthroughs":     "Identify seminal papers and recent advances that define the field.",
	"Methods & approaches":                     "Map techniques and architectures used to tackle the goal.",
	"Datasets & benchmarks":                    "List public datasets and benchmarks used for comparison.",
	"Evaluation metrics":                       "Clarify how progress is measured to compare methods fairly.",
	"Applications & case studies":              "Show real-world usage and lessons learned.",
	"Challenges, risks & limitations":          "Surface practical blockers, ethical issues, and failure modes.",
	"Open problems & research gaps":            "Highlight under-explored areas and unanswered questions.",
	"Tooling & ecosystem":                      "Collect libraries, frameworks, and tooling to reproduce results.",
	"Multi-agent coordination":                 "Essential for scaling to large teams/agents in complex tasks.",
	"Swarm communication protocols":            "Covers robustness, latency, and topology effects in coordination.",
	"Real-world deployment & logistics":        "Bridges simulation-to-reality and operational constraints.",
	"Incident command systems":                 "Interfaces with established response workflows and standards.",
	"Search & rescue case studies":             "Grounds methods in practical disaster scenarios.",
	"Evaluation in constrained environments":   "Captures power, connectivity, and safety constraints.",
	"Clinical validation & safety":             "Mandatory evidence for healthcare deployment.",
	"Data privacy & compliance":                "Regulatory alignment (HIPAA/GDPR etc.) is crucial.",
	"Risk & compliance":                        "Financial systems require governance and auditability.",
	"Market datasets & backtesting":            "Empirical validation with realistic data splits.",
	"Retrieval-Augmented Generation (RAG)":     "Improves correctness by grounding generation in sources.",
	"Evaluation & hallucination mitigation":    "Ensures reliability of LLM-based systems.",
	"Impact pathways":                          "Connect interventions to measurable climate outcomes.",
	"Datasets & geospatial layers":             "Spatial data is core for climate & environment analyses.",
	"Learning outcomes & pedagogy":             "Ties methods to measurable educational impact.",
	"Ethical use & bias":                       "Mitigates harms and inequity in learning contexts.",
}

var nextActions = []string{
	"Collect sources from arXiv, Semantic Scholar, and Wikipedia.",
	"Deduplicate and rank by relevance, recency, and credibility.",
	"Chunk documents and index them in the local full-text store.",
	"Retrieve top-k chunks per subtopic for section summaries with citations.",
	"Generate a structured report (Markdown) with references.",
}

var whitespace = regexp.MustCompile(`\s+`)

// Make builds a plan for the goal.
func Make(goal string) types.Plan {
	ng := normalizeGoal(goal)
	subtopics := append(append([]string{}, coreSubtopics...), domainSubtopics(ng)...)

	st := make([]types.Subtopic, 0, len(subtopics))
	for _, name := range subtopics {
		st = append(st, types.Subtopic{Name: name, Rationale: rationale(name, ng)})
	}

	return types.Plan{
		NormalizedGoal:   ng,
		Subtopics:        st,
		SuggestedQueries: suggestQueries(ng, subtopics),
		SuggestedSources: append([]string{}, freeSources...),
		NextActions:      append([]string{}, nextActions...),
	}
}

// normalizeGoal collapses whitespace and capitalizes the first letter.
func normalizeGoal(goal string) string {
	g := strings.TrimSpace(whitespace.ReplaceAllString(goal, " "))
	if g == "" {
		return g
	}
	r, size := utf8.DecodeRuneInString(g)
	return string(unicode.ToUpper(r)) + g[size:]
}

// domainSubtopics returns extra subtopics for domain keywords found in the
// goal, de-duplicated in hint order.
func domainSubtopics(goal string) []string {
	g := strings.ToLower(goal)
	seen := make(map[string]bool)
	var extras []string
	for _, hint := range domainHints {
		if !strings.Contains(g, hint.keyword) {
			continue
		}
		for _, s := range hint.subtopics {
			if !seen[s] {
				seen[s] = true
				extras = append(extras, s)
			}
		}
	}
	return extras
}

func rationale(name, goal string) string {
	if r, ok := rationales[name]; ok {
		return r
	}
	return fmt.Sprintf("Relevant to the goal: %s", goal)
}

// suggestQueries produces generic queries, site-scoped operator queries, and
// one quoted query per subtopic (first six only, to keep the list short).
func suggestQueries(goal string, subtopics []string) []string {
	queries := []string{
		goal + " literature review",
		goal + " survey 2023..2025",
		goal + " state of the art",
		goal + " open problems",
		goal + " datasets AND benchmarks",
		goal + " evaluation metrics",
		goal + " applications case studies",
		fmt.Sprintf(`site:arxiv.org "%s"`, goal),
		fmt.Sprintf(`site:ieeexplore.ieee.org "%s"`, goal),
		fmt.Sprintf(`site:nature.com "%s" review`, goal),
		fmt.Sprintf(`site:aclanthology.org "%s"`, goal),
		fmt.Sprintf(`site:ncbi.nlm.nih.gov "%s"`, goal),
	}

	limit := len(subtopics)
	if limit > 6 {
		limit = 6
	}
	for _, t := range subtopics[:limit] {
		queries = append(queries, strings.TrimSpace(fmt.Sprintf(`%s "%s"`, goal, t)))
	}
	return queries
}
