// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package retrieve

import (
	"regexp"
	"sort"
	"strings"

	"github.com/hbollon/go-edlib"

	"github.com/meshintel/autoresearcher/pkg/types"
)

// similarityThreshold is intentionally high so that genuinely distinct works
// sharing common terminology are not merged. Identical normalized titles
// short-cut to similarity 1.0, so exact duplicates always clear it.
const similarityThreshold = 0.9

// coreBonus is added when one stripped core title contains the other.
const coreBonus = 0.3

// sourcePriority orders survivors in the canonical output sort. Unknown
// sources rank 0.
var sourcePriority = map[string]int{
	types.SourceArxiv:           3,
	types.SourceSemanticScholar: 2,
	types.SourceWikipedia:       1,
}

// sourceQuality breaks representative ties left open by score and abstract
// length.
var sourceQuality = map[string]float64{
	types.SourceArxiv:           0.3,
	types.SourceSemanticScholar: 0.2,
	types.SourceWikipedia:       0.1,
}

// Deduplicate collapses near-duplicate documents from different sources into
// one canonical entry per underlying work.
//
// A single pass groups each unprocessed document with every later document
// whose title similarity exceeds the threshold. One representative per group
// is then chosen by a score that rewards source under-representation,
// recency, abstract presence and length, and author presence; equal scores
// fall to the more complete abstract, then source quality. The per-source
// selection count is carried across groups (not reset), so later groups see
// the diversity effect of earlier choices; group processing order is the
// discovery order, which makes pinned input order part of the contract.
//
// Survivors are returned sorted descending by (year, source priority,
// abstract length). Documents with empty titles are skipped entirely.
func Deduplicate(docs []types.Document) []types.Document {
	if len(docs) == 0 {
		return nil
	}

	processed := make([]bool, len(docs))
	var groups [][]int

	for i := range docs {
		if processed[i] {
			continue
		}
		processed[i] = true
		if docs[i].Title == "" {
			continue
		}

		group := []int{i}
		for j := i + 1; j < len(docs); j++ {
			if processed[j] || docs[j].Title == "" {
				continue
			}
			if titleSimilarity(docs[i].Title, docs[j].Title) > similarityThreshold {
				group = append(group, j)
				processed[j] = true
			}
		}
		groups = append(groups, group)
	}

	selectedPerSource := make(map[string]int)
	survivors := make([]types.Document, 0, len(groups))

	for _, group := range groups {
		best := group[0]
		if len(group) > 1 {
			bestScore := representativeScore(docs[best], selectedPerSource)
			for _, idx := range group[1:] {
				score := representativeScore(docs[idx], selectedPerSource)
				if betterRepresentative(docs[idx], score, docs[best], bestScore) {
					best, bestScore = idx, score
				}
			}
		}
		survivors = append(survivors, docs[best])
		selectedPerSource[docs[best].Source]++
	}

	sort.SliceStable(survivors, func(i, j int) bool {
		a, b := survivors[i], survivors[j]
		if a.Year != b.Year {
			return a.Year > b.Year
		}
		if pa, pb := sourcePriority[a.Source], sourcePriority[b.Source]; pa != pb {
			return pa > pb
		}
		return len(a.Abstract) > len(b.Abstract)
	})

	return survivors
}

// titleSimilarity combines word-set Jaccard overlap, character-sequence LCS
// ratio, and a core-substring bonus into a symmetric [0, 1] score.
func titleSimilarity(a, b string) float64 {
	na := strings.ToLower(strings.TrimSpace(a))
	nb := strings.ToLower(strings.TrimSpace(b))
	if na == "" || nb == "" {
		return 0
	}
	if na == nb {
		return 1
	}

	jaccard := float64(edlib.JaccardSimilarity(na, nb, 0))
	lcsRatio := float64(edlib.LCS(na, nb)) / float64(max(len(na), len(nb)))

	sim := 0.6*jaccard + 0.3*lcsRatio
	if coreSubstringMatch(na, nb) {
		sim += coreBonus
	}
	return min(sim, 1)
}

// Academic framing that survives retitling between venues; stripped before
// the substring comparison. "towards" must precede "toward".
var academicPrefixes = []string{"a study of ", "an analysis of ", "on the ", "towards ", "toward "}

var (
	yearAnnotation = regexp.MustCompile(`\s*\(\d{4}\)`)
	versionSuffix  = regexp.MustCompile(`\s*v\d+(\.\d+)?$`)
)

// coreTitle strips one leading academic prefix, parenthesized year
// annotations, and a trailing version marker (v2, v1.3).
func coreTitle(t string) string {
	for _, p := range academicPrefixes {
		if strings.HasPrefix(t, p) {
			t = strings.TrimPrefix(t, p)
			break
		}
	}
	t = yearAnnotation.ReplaceAllString(t, "")
	t = versionSuffix.ReplaceAllString(t, "")
	return strings.TrimSpace(t)
}

// coreSubstringMatch reports whether one normalized core title contains the
// other. Only titles longer than 20 characters qualify; short titles produce
// too many accidental containments.
func coreSubstringMatch(a, b string) bool {
	if len(a) <= 20 || len(b) <= 20 {
		return false
	}
	ca, cb := coreTitle(a), coreTitle(b)
	if ca == "" || cb == "" {
		return false
	}
	return strings.Contains(ca, cb) || strings.Contains(cb, ca)
}

// betterRepresentative reports whether candidate c beats the current best.
// Scores decide first; a tie goes to the more complete abstract, then to the
// stronger source. Remaining ties keep the first occurrence, so a duplicate
// of the same work from the same source never displaces an earlier copy.
func betterRepresentative(c types.Document, cScore int, best types.Document, bestScore int) bool {
	if cScore != bestScore {
		return cScore > bestScore
	}
	if len(c.Abstract) != len(best.Abstract) {
		return len(c.Abstract) > len(best.Abstract)
	}
	return sourceQuality[c.Source] > sourceQuality[best.Source]
}

// representativeScore ranks a duplicate-group member for selection. selected
// holds the running per-source selection counts across all groups so far.
func representativeScore(d types.Document, selected map[string]int) int {
	score := 0

	switch n := selected[d.Source]; {
	case n == 0:
		score += 10
	case n < 3:
		score += 5
	}

	switch {
	case d.Year >= 2020:
		score += 3
	case d.Year >= 2015:
		score += 2
	case d.Year >= 2010:
		score += 1
	}

	if d.Abstract != "" {
		score += 2
		if len(d.Abstract) > 200 {
			score++
		}
	}
	if len(d.Authors) > 0 {
		score++
	}

	return score
}
