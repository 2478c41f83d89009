// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package retrieve

import (
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/meshintel/autoresearcher/pkg/types"
)

var wordToken = regexp.MustCompile(`\w+`)

// rankSourceBonus is the fixed credibility weight per source.
var rankSourceBonus = map[string]float64{
	types.SourceArxiv:           2,
	types.SourceSemanticScholar: 2,
	types.SourceWikipedia:       1,
}

// Rank orders documents by relevance to the goal, most relevant first. The
// score combines lexical overlap between the goal and the title (weight 3)
// and abstract (weight 1), a recency bonus when boostRecent is set, a source
// credibility bonus, and up to 5 points from citation counts. The input slice
// is not modified; the sort is stable, so equal scores keep input order.
func Rank(docs []types.Document, goal string, boostRecent bool) []types.Document {
	goalWords := wordSet(goal)
	currentYear := time.Now().Year()

	order := make([]int, len(docs))
	scores := make([]float64, len(docs))
	for i := range docs {
		order[i] = i
		scores[i] = relevanceScore(docs[i], goalWords, currentYear, boostRecent)
	}

	sort.SliceStable(order, func(i, j int) bool {
		return scores[order[i]] > scores[order[j]]
	})

	out := make([]types.Document, len(docs))
	for i, idx := range order {
		out[i] = docs[idx]
	}
	return out
}

func relevanceScore(d types.Document, goalWords map[string]struct{}, currentYear int, boostRecent bool) float64 {
	var score float64

	score += 3 * float64(overlap(goalWords, wordSet(d.Title)))
	score += 1 * float64(overlap(goalWords, wordSet(d.Abstract)))

	// Year 0 is the unknown sentinel and earns no recency signal.
	if boostRecent && d.Year != 0 {
		switch diff := currentYear - d.Year; {
		case diff <= 2:
			score += 5
		case diff <= 5:
			score += 3
		case diff <= 10:
			score += 1
		}
	}

	score += rankSourceBonus[d.Source]
	score += min(float64(d.CitationCount)/100, 5)

	return score
}

// wordSet returns the case-folded word tokens of s as a set.
func wordSet(s string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, w := range wordToken.FindAllString(strings.ToLower(s), -1) {
		set[w] = struct{}{}
	}
	return set
}

func overlap(a, b map[string]struct{}) int {
	if len(b) < len(a) {
		a, b = b, a
	}
	n := 0
	for w := range a {
		if _, ok := b[w]; ok {
			n++
		}
	}
	return n
}
