// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package server exposes the research pipeline over HTTP. The surface is a
// thin layer over the collector, the document store, the planner, and the
// report generator; request validation is minimal and internal errors are
// returned to the client with their message.
package server

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/meshintel/autoresearcher/internal/report"
	"github.com/meshintel/autoresearcher/internal/store"
	"github.com/meshintel/autoresearcher/pkg/types"
)

// Collector fans a goal out to the configured document sources.
// *retrieve.Collector satisfies it.
type Collector interface {
	Collect(ctx context.Context, goal string, maxPerSource int, sources []string) types.AggregateResult
	SourceNames() []string
}

// DocumentStore persists and searches document chunks. *store.Store
// satisfies it. A nil DocumentStore disables /process, /search, /stats, and
// the report's subtopic analysis.
type DocumentStore interface {
	Store(ctx context.Context, docs []types.Document) (store.Summary, error)
	SearchSimilar(ctx context.Context, query string, k int) ([]store.Match, error)
	Stats(ctx context.Context) (store.Stats, error)
}

// Server holds the pipeline components behind the HTTP surface.
type Server struct {
	collector Collector
	docs      DocumentStore
	reports   *report.Generator
	logger    *zap.Logger
	cfg       types.ServerConfig
}

// New builds a Server. docs may be nil.
func New(collector Collector, docs DocumentStore, logger *zap.Logger, cfg types.ServerConfig) *Server {
	var searcher report.Searcher
	if docs != nil {
		searcher = docs
	}
	return &Server{
		collector: collector,
		docs:      docs,
		reports:   report.NewGenerator(searcher),
		logger:    logger,
		cfg:       cfg,
	}
}

// Handler returns the configured HTTP router.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(requestLogger(s.logger))

	allowedOrigins := s.cfg.AllowedOrigins
	if len(allowedOrigins) == 0 {
		allowedOrigins = []string{"*"}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
		ExposedHeaders: []string{"X-Request-ID"},
		MaxAge:         300,
	}))

	r.Get("/", s.handleRoot)
	r.Get("/healthz", s.handleHealth)
	r.Post("/plan", s.handlePlan)
	r.Post("/collect", s.handleCollect)
	r.Post("/process", s.handleProcess)
	r.Get("/search", s.handleSearch)
	r.Get("/stats", s.handleStats)
	r.Post("/generate-report", s.handleGenerateReport)

	return r
}
