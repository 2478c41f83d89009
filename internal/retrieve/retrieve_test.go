// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package retrieve

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/meshintel/autoresearcher/pkg/types"
)

// stubSource is a controllable Source for collector tests.
type stubSource struct {
	name     string
	result   types.SourceResult
	err      error
	panicMsg string
}

func (s *stubSource) Name() string { return s.name }

func (s *stubSource) Search(_ context.Context, _ string, _ int) (types.SourceResult, error) {
	if s.panicMsg != "" {
		panic(s.panicMsg)
	}
	return s.result, s.err
}

func doc(id, title, source string, year int) types.Document {
	return types.Document{ID: id, Title: title, Source: source, Year: year}
}

func sourceResult(docs ...types.Document) types.SourceResult {
	return types.SourceResult{Documents: docs, Count: len(docs), TotalFound: len(docs)}
}

func TestCollectAggregatesAllSources(t *testing.T) {
	c := NewCollector([]Source{
		&stubSource{name: NameArxiv, result: sourceResult(doc("a1", "Distributed Consensus Protocols", types.SourceArxiv, 2024))},
		&stubSource{name: NameWikipedia, result: sourceResult(doc("w1", "Consensus (computer science)", types.SourceWikipedia, 2023))},
	}, nil)

	result := c.Collect(context.Background(), "distributed consensus", 5, nil)

	if result.Error != "" {
		t.Fatalf("unexpected top-level error: %s", result.Error)
	}
	if result.TotalDocuments != 2 || result.UniqueDocuments != 2 {
		t.Errorf("got %d/%d documents, want 2/2", result.TotalDocuments, result.UniqueDocuments)
	}
	if result.TotalFoundAcrossSources != 2 {
		t.Errorf("TotalFoundAcrossSources = %d, want 2", result.TotalFoundAcrossSources)
	}
	if len(result.Sources) != 2 {
		t.Errorf("got %d source results, want 2", len(result.Sources))
	}
}

func TestCollectPartialFailure(t *testing.T) {
	var warnings bytes.Buffer
	c := NewCollector([]Source{
		&stubSource{name: NameArxiv, err: errors.New("connection refused")},
		&stubSource{name: NameWikipedia, result: sourceResult(doc("w1", "Swarm robotics", types.SourceWikipedia, 2023))},
	}, &warnings)

	result := c.Collect(context.Background(), "swarm robotics", 5, nil)

	if result.Error != "" {
		t.Fatalf("one failing source must not fail the aggregation, got %q", result.Error)
	}
	if result.UniqueDocuments != 1 {
		t.Errorf("got %d documents, want 1 from the healthy source", result.UniqueDocuments)
	}
	if result.Sources[NameArxiv].Error == "" {
		t.Error("failing source's error missing from Sources map")
	}
	if len(result.Sources[NameArxiv].Documents) != 0 {
		t.Error("failing source must contribute no documents")
	}
	if !strings.Contains(warnings.String(), "warning: source arxiv failed: connection refused") {
		t.Errorf("warning not written, got %q", warnings.String())
	}
}

func TestCollectPanicCaptured(t *testing.T) {
	c := NewCollector([]Source{
		&stubSource{name: NameArxiv, panicMsg: "nil map write"},
		&stubSource{name: NameWikipedia, result: sourceResult(doc("w1", "Swarm robotics", types.SourceWikipedia, 2023))},
	}, nil)

	result := c.Collect(context.Background(), "swarm robotics", 5, nil)

	if result.UniqueDocuments != 1 {
		t.Errorf("got %d documents, want 1", result.UniqueDocuments)
	}
	if got := result.Sources[NameArxiv].Error; !strings.Contains(got, "panicked") || !strings.Contains(got, "nil map write") {
		t.Errorf("panic not recorded as source error, got %q", got)
	}
}

func TestCollectDeterministicSourceOrder(t *testing.T) {
	var warnings bytes.Buffer
	c := NewCollector([]Source{
		&stubSource{name: NameArxiv, err: errors.New("service unavailable")},
		&stubSource{name: NameSemanticScholar, err: errors.New("quota exceeded")},
		&stubSource{name: NameWikipedia, result: sourceResult(doc("w1", "Title Gamma", types.SourceWikipedia, 2024))},
	}, &warnings)

	// Requested order reversed relative to configuration. Results are
	// assembled in requested order regardless of fan-out completion order,
	// so the warning stream is identical on every run.
	for i := 0; i < 10; i++ {
		warnings.Reset()
		result := c.Collect(context.Background(), "anything here", 5,
			[]string{NameWikipedia, NameSemanticScholar, NameArxiv})
		if len(result.Documents) != 1 || result.Documents[0].Title != "Title Gamma" {
			t.Fatalf("run %d: documents = %v", i, result.Documents)
		}
		w := warnings.String()
		semAt := strings.Index(w, "source semantic_scholar failed")
		arxAt := strings.Index(w, "source arxiv failed")
		if semAt == -1 || arxAt == -1 || semAt > arxAt {
			t.Fatalf("run %d: warnings out of requested-source order: %q", i, w)
		}
	}
}

func TestCollectRequestedSubset(t *testing.T) {
	c := NewCollector([]Source{
		&stubSource{name: NameArxiv, result: sourceResult(doc("a1", "Alpha", types.SourceArxiv, 2024))},
		&stubSource{name: NameWikipedia, result: sourceResult(doc("w1", "Gamma", types.SourceWikipedia, 2024))},
	}, nil)

	result := c.Collect(context.Background(), "anything here", 5, []string{NameWikipedia})

	if len(result.Sources) != 1 {
		t.Fatalf("got %d source results, want 1", len(result.Sources))
	}
	if _, ok := result.Sources[NameWikipedia]; !ok {
		t.Error("requested source missing from results")
	}
}

func TestCollectUnknownRequestedSourceIgnored(t *testing.T) {
	c := NewCollector([]Source{
		&stubSource{name: NameArxiv, result: sourceResult(doc("a1", "Alpha", types.SourceArxiv, 2024))},
	}, nil)

	result := c.Collect(context.Background(), "anything here", 5, []string{"pubmed", NameArxiv})

	if len(result.Sources) != 1 {
		t.Errorf("unknown source name must be skipped, got %d source results", len(result.Sources))
	}
}

func TestCollectFiltersEmptyTitles(t *testing.T) {
	c := NewCollector([]Source{
		&stubSource{name: NameArxiv, result: sourceResult(
			doc("a1", "", types.SourceArxiv, 2024),
			doc("a2", "Kept Document", types.SourceArxiv, 2024),
		)},
	}, nil)

	result := c.Collect(context.Background(), "anything here", 5, nil)

	if result.UniqueDocuments != 1 {
		t.Errorf("got %d documents, want 1 (empty title dropped)", result.UniqueDocuments)
	}
	if result.Sources[NameArxiv].Count != 1 {
		t.Errorf("source count = %d, want 1 after filtering", result.Sources[NameArxiv].Count)
	}
}

func TestCollectCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	c := NewCollector([]Source{
		&stubSource{name: NameArxiv, result: sourceResult(doc("a1", "Alpha", types.SourceArxiv, 2024))},
	}, nil)

	result := c.Collect(ctx, "anything here", 5, nil)

	if !strings.Contains(result.Error, "failed to execute searches") {
		t.Errorf("cancelled context must produce a top-level error, got %q", result.Error)
	}
	if len(result.Documents) != 0 {
		t.Error("cancelled collection must return no documents")
	}
}

func TestSourceNames(t *testing.T) {
	c := NewCollector([]Source{
		&stubSource{name: NameArxiv},
		&stubSource{name: NameSemanticScholar},
		&stubSource{name: NameWikipedia},
	}, nil)

	names := c.SourceNames()
	want := []string{NameArxiv, NameSemanticScholar, NameWikipedia}
	if len(names) != len(want) {
		t.Fatalf("got %d names, want %d", len(names), len(want))
	}
	for i := range want {
		if names[i] != want[i] {
			t.Errorf("names[%d] = %q, want %q", i, names[i], want[i])
		}
	}
}
