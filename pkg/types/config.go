// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// HTTPConfig holds shared HTTP settings used by components that make network
// requests.
type HTTPConfig struct {
	// Timeout is the per-request HTTP timeout. A bounded timeout keeps one
	// unresponsive source from hanging a whole aggregation.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "autoresearcher/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent"`
}

// RetrievalConfig holds settings for the retrieval stage.
type RetrievalConfig struct {
	HTTPConfig `yaml:",inline"`

	// MaxPerSource is the maximum number of documents requested from each
	// source (default 10).
	MaxPerSource int `json:"max_per_source" yaml:"max_per_source"`

	// EnableArxiv controls whether the arXiv adapter is used.
	EnableArxiv bool `json:"enable_arxiv" yaml:"enable_arxiv"`

	// EnableSemanticScholar controls whether the Semantic Scholar adapter is used.
	EnableSemanticScholar bool `json:"enable_semantic_scholar" yaml:"enable_semantic_scholar"`

	// EnableWikipedia controls whether the Wikipedia adapter is used.
	EnableWikipedia bool `json:"enable_wikipedia" yaml:"enable_wikipedia"`

	// SemanticScholarAPIKey is an optional API key for higher rate limits.
	SemanticScholarAPIKey string `json:"semantic_scholar_api_key,omitempty" yaml:"semantic_scholar_api_key,omitempty"`
}

// StoreConfig holds settings for the document chunk store.
type StoreConfig struct {
	// DataDir is the base directory for the store (contains index/).
	DataDir string `json:"data_dir" yaml:"data_dir"`

	// ChunkSize is the target chunk length in characters (default 512).
	ChunkSize int `json:"chunk_size" yaml:"chunk_size"`

	// ChunkOverlap is the number of trailing words carried into the next
	// chunk (default 50).
	ChunkOverlap int `json:"chunk_overlap" yaml:"chunk_overlap"`

	// MaxResults is the default maximum number of similarity-search results
	// (default 10).
	MaxResults int `json:"max_results" yaml:"max_results"`
}

// ServerConfig holds settings for the HTTP surface.
type ServerConfig struct {
	// Addr is the listen address (default ":8000").
	Addr string `json:"addr" yaml:"addr"`

	// AllowedOrigins configures CORS. Empty allows any origin.
	AllowedOrigins []string `json:"allowed_origins" yaml:"allowed_origins"`
}

// PipelineConfig groups all stage configurations.
type PipelineConfig struct {
	Retrieval RetrievalConfig `json:"retrieval" yaml:"retrieval"`
	Store     StoreConfig     `json:"store" yaml:"store"`
	Server    ServerConfig    `json:"server" yaml:"server"`
}
