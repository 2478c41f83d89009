// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for the autoresearcher pipeline.
package types

// Source name tags carried by Documents. Adapters set exactly one of these;
// scoring code treats anything else as an unknown source.
const (
	SourceArxiv           = "arXiv"
	SourceSemanticScholar = "Semantic Scholar"
	SourceWikipedia       = "Wikipedia"
)

// Document is the canonical, source-agnostic record every adapter produces.
// Adapters validate and default all optional fields once at their boundary, so
// downstream code never needs defensive lookups. Documents are immutable value
// objects after production; deduplication and ranking only select and reorder.
type Document struct {
	// ID is assigned by the adapter and unique within its source. It is not
	// guaranteed globally unique across sources.
	ID string `json:"id" yaml:"id"`

	// Title is the document title. Adapters never emit an empty title.
	Title string `json:"title" yaml:"title"`

	// Authors lists authors in source order. Empty when the source has none.
	Authors []string `json:"authors" yaml:"authors"`

	// Abstract is the abstract, summary, or encyclopedia extract. Some
	// adapters truncate it to a bounded length.
	Abstract string `json:"abstract" yaml:"abstract"`

	// Published is an ISO-8601 timestamp. Synthesized as
	// "YYYY-01-01T00:00:00Z" when only a year is available.
	Published string `json:"published" yaml:"published"`

	// Year is the publication year. Zero means unknown, never year zero;
	// year-based scoring treats zero as "no signal".
	Year int `json:"year" yaml:"year"`

	// Source identifies the producing adapter (SourceArxiv,
	// SourceSemanticScholar, SourceWikipedia).
	Source string `json:"source" yaml:"source"`

	// Categories holds classification tags: subject categories, a journal
	// name, or an encyclopedia tag. May be empty.
	Categories []string `json:"categories" yaml:"categories"`

	// LinkPDF is a direct PDF URL when the source exposes one.
	LinkPDF string `json:"link_pdf,omitempty" yaml:"link_pdf,omitempty"`

	// LinkAbs is the abstract or landing page URL.
	LinkAbs string `json:"link_abs,omitempty" yaml:"link_abs,omitempty"`

	// CitationCount is present only for sources that expose it; zero
	// otherwise.
	CitationCount int `json:"citation_count,omitempty" yaml:"citation_count,omitempty"`
}

// SourceResult holds one adapter's contribution to an aggregation request.
type SourceResult struct {
	// QueryUsed is the query string the adapter actually sent, after any
	// source-specific rewriting.
	QueryUsed string `json:"query_used" yaml:"query_used"`

	// Documents are the normalized results. Empty on failure.
	Documents []Document `json:"documents" yaml:"documents"`

	// Count is len(Documents), kept for observability output.
	Count int `json:"count" yaml:"count"`

	// TotalFound is the source-reported total match count when available,
	// otherwise Count.
	TotalFound int `json:"total_found" yaml:"total_found"`

	// Error carries the adapter failure message. Empty on success.
	Error string `json:"error,omitempty" yaml:"error,omitempty"`
}

// AggregateResult is the outcome of a multi-source collection request.
// Partial source failures are recorded per source; the request itself still
// succeeds with the documents the remaining sources returned.
type AggregateResult struct {
	Goal string `json:"goal" yaml:"goal"`

	// Documents is the deduplicated document list in canonical order.
	Documents []Document `json:"documents" yaml:"documents"`

	// Sources maps source name to that source's raw contribution. Keys are
	// deterministic: they always match the requested source list.
	Sources map[string]SourceResult `json:"sources" yaml:"sources"`

	// TotalDocuments and UniqueDocuments both count the post-dedup list.
	TotalDocuments  int `json:"total_documents" yaml:"total_documents"`
	UniqueDocuments int `json:"unique_documents" yaml:"unique_documents"`

	// TotalFoundAcrossSources sums per-source raw counts before dedup.
	TotalFoundAcrossSources int `json:"total_found_across_sources" yaml:"total_found_across_sources"`

	// Error is set only when the fan-out itself failed and no documents
	// could be collected.
	Error string `json:"error,omitempty" yaml:"error,omitempty"`
}
