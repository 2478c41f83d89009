// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package retrieve aggregates research documents from external APIs,
// deduplicates near-duplicate results across sources, and ranks the
// survivors against the research goal.
package retrieve

import (
	"context"
	"fmt"
	"io"

	"golang.org/x/sync/errgroup"

	"github.com/meshintel/autoresearcher/pkg/types"
)

// Aggregation keys for the built-in sources. These are request/response map
// keys; the Document.Source tags are the display names in pkg/types.
const (
	NameArxiv           = "arxiv"
	NameSemanticScholar = "semantic_scholar"
	NameWikipedia       = "wikipedia"
)

// Source searches a single external API. Each adapter normalizes its API's
// response shape into canonical Documents and returns failures as errors;
// nothing may panic past this boundary.
type Source interface {
	Name() string
	Search(ctx context.Context, goal string, maxResults int) (types.SourceResult, error)
}

// Collector fans a research goal out to a fixed set of sources.
type Collector struct {
	sources []Source
	w       io.Writer
}

// NewCollector builds a Collector over the given sources. Warnings about
// failed sources are written to w.
func NewCollector(sources []Source, w io.Writer) *Collector {
	if w == nil {
		w = io.Discard
	}
	return &Collector{sources: sources, w: w}
}

// SourceNames returns the configured source names in fan-out order.
func (c *Collector) SourceNames() []string {
	names := make([]string, len(c.sources))
	for i, s := range c.sources {
		names[i] = s.Name()
	}
	return names
}

// Collect queries the requested subset of sources concurrently and returns
// the aggregated, deduplicated documents. A nil or empty requested list means
// all configured sources. One source failing (or panicking) never prevents
// the others' results from being collected; per-source failures are recorded
// in the Sources map and the request still succeeds. Results are assembled in
// requested-source order regardless of completion order, so the output is
// deterministic for a given input.
func (c *Collector) Collect(ctx context.Context, goal string, maxPerSource int, requested []string) types.AggregateResult {
	if len(requested) == 0 {
		requested = c.SourceNames()
	}

	var active []Source
	for _, name := range requested {
		for _, s := range c.sources {
			if s.Name() == name {
				active = append(active, s)
				break
			}
		}
	}

	if err := ctx.Err(); err != nil {
		return types.AggregateResult{
			Goal:    goal,
			Sources: map[string]types.SourceResult{},
			Error:   fmt.Sprintf("failed to execute searches: %v", err),
		}
	}

	results := make([]types.SourceResult, len(active))

	g, gctx := errgroup.WithContext(ctx)
	for i, s := range active {
		g.Go(func() error {
			// A panicking adapter is recorded as that source's failure;
			// sibling tasks keep running.
			defer func() {
				if r := recover(); r != nil {
					results[i] = types.SourceResult{Error: fmt.Sprintf("source %s panicked: %v", s.Name(), r)}
				}
			}()

			sr, err := s.Search(gctx, goal, maxPerSource)
			if err != nil {
				sr.Documents = nil
				sr.Count = 0
				sr.Error = err.Error()
			}
			results[i] = sr
			return nil
		})
	}
	g.Wait()

	var all []types.Document
	sourceResults := make(map[string]types.SourceResult, len(active))
	totalFound := 0

	for i, s := range active {
		sr := results[i]
		if sr.Error != "" {
			fmt.Fprintf(c.w, "warning: source %s failed: %s\n", s.Name(), sr.Error)
			sourceResults[s.Name()] = sr
			continue
		}

		// Empty titles are dropped before dedup ever sees them.
		kept := sr.Documents[:0:0]
		for _, d := range sr.Documents {
			if d.Title != "" {
				kept = append(kept, d)
			}
		}
		sr.Documents = kept
		sr.Count = len(kept)
		if sr.TotalFound < sr.Count {
			sr.TotalFound = sr.Count
		}

		all = append(all, kept...)
		totalFound += sr.Count
		sourceResults[s.Name()] = sr
	}

	unique := Deduplicate(all)

	return types.AggregateResult{
		Goal:                    goal,
		Documents:               unique,
		Sources:                 sourceResults,
		TotalDocuments:          len(unique),
		UniqueDocuments:         len(unique),
		TotalFoundAcrossSources: totalFound,
	}
}
