// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the autoresearcher CLI. The pipeline
// stages are subcommands: plan, collect, store (process/search/stats/export),
// report, and serve for the HTTP surface.
package main

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/meshintel/autoresearcher/internal/retrieve"
	"github.com/meshintel/autoresearcher/internal/secrets"
	"github.com/meshintel/autoresearcher/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

// loadedSecrets holds API keys loaded from .secrets/ at startup.
var loadedSecrets map[string]string

// secretDefault returns fallback if non-empty, otherwise the secret value
// for key if it exists.
func secretDefault(key, fallback string) string {
	if fallback != "" {
		return fallback
	}
	if v, ok := loadedSecrets[key]; ok {
		return v
	}
	return ""
}

// rootCmd is the base command for the autoresearcher CLI.
var rootCmd = &cobra.Command{
	Use:   "autoresearcher",
	Short: "Multi-source research document aggregation and reporting",
	Long: `autoresearcher collects research documents from free academic APIs (arXiv,
Semantic Scholar, Wikipedia), deduplicates and ranks them against a research
goal, indexes them in a local full-text store, and renders structured
Markdown reports.

Each pipeline stage is a subcommand: plan, collect, store, and report.
The serve subcommand exposes the same pipeline over HTTP.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		s, err := secrets.Load(".secrets/")
		if err != nil {
			return err
		}
		loadedSecrets = s
		if len(s) > 0 {
			keys := make([]string, 0, len(s))
			for k := range s {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			fmt.Fprintf(os.Stderr, "Loaded secrets: %v\n", keys)
		}
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./autoresearcher.yaml or ~/.config/autoresearcher/config.yaml)")
	rootCmd.PersistentFlags().String("data-dir", "", "base directory for the document store (default: ./data)")
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("autoresearcher")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "autoresearcher"))
		}
	}

	viper.SetDefault("retrieval.timeout", "30s")
	viper.SetDefault("retrieval.user_agent", "autoresearcher/"+version)
	viper.SetDefault("retrieval.max_per_source", 10)
	viper.SetDefault("retrieval.enable_arxiv", true)
	viper.SetDefault("retrieval.enable_semantic_scholar", true)
	viper.SetDefault("retrieval.enable_wikipedia", true)
	viper.SetDefault("store.data_dir", "data")
	viper.SetDefault("store.chunk_size", 512)
	viper.SetDefault("store.chunk_overlap", 50)
	viper.SetDefault("store.max_results", 10)
	viper.SetDefault("server.addr", ":8000")

	viper.SetEnvPrefix("AUTORESEARCHER")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// retrievalConfig assembles the retrieval settings from viper and secrets.
func retrievalConfig() types.RetrievalConfig {
	timeout := viper.GetDuration("retrieval.timeout")
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return types.RetrievalConfig{
		HTTPConfig: types.HTTPConfig{
			Timeout:   timeout,
			UserAgent: viper.GetString("retrieval.user_agent"),
		},
		MaxPerSource:          viper.GetInt("retrieval.max_per_source"),
		EnableArxiv:           viper.GetBool("retrieval.enable_arxiv"),
		EnableSemanticScholar: viper.GetBool("retrieval.enable_semantic_scholar"),
		EnableWikipedia:       viper.GetBool("retrieval.enable_wikipedia"),
		SemanticScholarAPIKey: secretDefault("semantic-scholar-api-key", viper.GetString("retrieval.semantic_scholar_api_key")),
	}
}

// storeConfig assembles the store settings, letting --data-dir override the
// config file.
func storeConfig() types.StoreConfig {
	dataDir, _ := rootCmd.PersistentFlags().GetString("data-dir")
	if dataDir == "" {
		dataDir = viper.GetString("store.data_dir")
	}
	return types.StoreConfig{
		DataDir:      dataDir,
		ChunkSize:    viper.GetInt("store.chunk_size"),
		ChunkOverlap: viper.GetInt("store.chunk_overlap"),
		MaxResults:   viper.GetInt("store.max_results"),
	}
}

// newCollector builds a Collector over the enabled sources.
func newCollector(cfg types.RetrievalConfig) *retrieve.Collector {
	client := &http.Client{Timeout: cfg.Timeout}

	var sources []retrieve.Source
	if cfg.EnableArxiv {
		sources = append(sources, retrieve.NewArxivSource(client, cfg.HTTPConfig))
	}
	if cfg.EnableSemanticScholar {
		sources = append(sources, retrieve.NewSemanticScholarSource(client, cfg.HTTPConfig, cfg.SemanticScholarAPIKey))
	}
	if cfg.EnableWikipedia {
		sources = append(sources, retrieve.NewWikipediaSource(client, cfg.HTTPConfig))
	}
	return retrieve.NewCollector(sources, os.Stderr)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
