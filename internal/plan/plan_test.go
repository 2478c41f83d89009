// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package plan

import (
	"strings"
	"testing"
)

func TestMakeNormalizesGoal(t *testing.T) {
	p := Make("  swarm   robotics\tfor disaster response ")
	want := "Swarm robotics for disaster response"
	if p.NormalizedGoal != want {
		t.Errorf("NormalizedGoal = %q, want %q", p.NormalizedGoal, want)
	}
}

func TestMakeCoreSubtopicsAlwaysPresent(t *testing.T) {
	p := Make("quantum error correction")
	if len(p.Subtopics) != len(coreSubtopics) {
		t.Fatalf("got %d subtopics, want %d", len(p.Subtopics), len(coreSubtopics))
	}
	for i, name := range coreSubtopics {
		if p.Subtopics[i].Name != name {
			t.Errorf("subtopic[%d] = %q, want %q", i, p.Subtopics[i].Name, name)
		}
		if p.Subtopics[i].Rationale == "" {
			t.Errorf("subtopic %q has empty rationale", name)
		}
	}
}

func TestMakeDomainHints(t *testing.T) {
	p := Make("swarm robotics for disaster response")

	names := make(map[string]bool)
	for _, s := range p.Subtopics {
		names[s.Name] = true
	}

	for _, want := range []string{
		"Multi-agent coordination",
		"Swarm communication protocols",
		"Incident command systems",
		"Search & rescue case studies",
	} {
		if !names[want] {
			t.Errorf("expected domain subtopic %q, got %v", want, names)
		}
	}
}

func TestMakeDomainSubtopicsDeduplicated(t *testing.T) {
	p := Make("robot robot robotics")
	counts := make(map[string]int)
	for _, s := range p.Subtopics {
		counts[s.Name]++
	}
	for name, n := range counts {
		if n > 1 {
			t.Errorf("subtopic %q appears %d times", name, n)
		}
	}
}

func TestMakeSuggestedQueries(t *testing.T) {
	p := Make("AI ethics")

	if len(p.SuggestedQueries) == 0 {
		t.Fatal("no suggested queries")
	}
	if p.SuggestedQueries[0] != "AI ethics literature review" {
		t.Errorf("first query = %q", p.SuggestedQueries[0])
	}

	var siteQueries, subtopicQueries int
	for _, q := range p.SuggestedQueries {
		if strings.HasPrefix(q, "site:") {
			siteQueries++
		}
		if strings.Contains(q, `"Background & definitions"`) {
			subtopicQueries++
		}
	}
	if siteQueries != 5 {
		t.Errorf("got %d site-scoped queries, want 5", siteQueries)
	}
	if subtopicQueries != 1 {
		t.Errorf("got %d subtopic queries for first subtopic, want 1", subtopicQueries)
	}
}

func TestMakeSourcesAndNextActions(t *testing.T) {
	p := Make("anything at all")
	if len(p.SuggestedSources) == 0 {
		t.Error("no suggested sources")
	}
	if len(p.NextActions) == 0 {
		t.Error("no next actions")
	}
}

func TestNormalizeGoalEmpty(t *testing.T) {
	if got := normalizeGoal("   "); got != "" {
		t.Errorf("normalizeGoal(blank) = %q, want empty", got)
	}
}

func TestNormalizeGoalMultibyteFirstLetter(t *testing.T) {
	if got := normalizeGoal("études of swarm behaviour"); got != "Études of swarm behaviour" {
		t.Errorf("normalizeGoal = %q, want whole first rune upper-cased", got)
	}
	if got := normalizeGoal("日本語 research goal"); got != "日本語 research goal" {
		t.Errorf("normalizeGoal = %q, caseless script must pass through intact", got)
	}
}
