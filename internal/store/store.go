// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package store chunks collected documents and persists them in a SQLite
// database with an FTS5 index for similarity search. Resubmitting the same
// content is a no-op: chunk identifiers derive from document ID and position,
// and existing chunks are skipped and counted.
package store

import (
	"context"
	"crypto/md5"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	_ "github.com/mattn/go-sqlite3"
	"go.yaml.in/yaml/v3"

	"github.com/meshintel/autoresearcher/pkg/types"
)

const (
	indexDir = "index"
	dbFile   = "documents.db"

	defaultChunkSize    = 512
	defaultChunkOverlap = 50
	defaultMaxResults   = 10
)

var sentenceEnd = regexp.MustCompile(`[.!?]+`)

// Store manages the chunked document database.
type Store struct {
	db           *sql.DB
	dataDir      string
	chunkSize    int
	chunkOverlap int
	maxResults   int
}

// New opens or creates the document database at dataDir/index/documents.db
// and creates the schema if it does not exist. The binary must be compiled
// with the sqlite_fts5 build tag (the mage Build and Test targets set it);
// go-sqlite3 omits the FTS5 module otherwise and schema creation fails.
func New(cfg types.StoreConfig) (*Store, error) {
	dbDir := filepath.Join(cfg.DataDir, indexDir)
	if err := os.MkdirAll(dbDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating index directory: %w", err)
	}

	dbPath := filepath.Join(dbDir, dbFile)
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{
		db:           db,
		dataDir:      cfg.DataDir,
		chunkSize:    cfg.ChunkSize,
		chunkOverlap: cfg.ChunkOverlap,
		maxResults:   cfg.MaxResults,
	}
	if s.chunkSize <= 0 {
		s.chunkSize = defaultChunkSize
	}
	if s.chunkOverlap <= 0 {
		s.chunkOverlap = defaultChunkOverlap
	}
	if s.maxResults <= 0 {
		s.maxResults = defaultMaxResults
	}

	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS chunks (
			rowid INTEGER PRIMARY KEY AUTOINCREMENT,
			chunk_id TEXT NOT NULL UNIQUE,
			document_id TEXT NOT NULL,
			chunk_index INTEGER NOT NULL,
			content TEXT NOT NULL,
			hash TEXT NOT NULL,
			title TEXT,
			source TEXT,
			year INTEGER,
			authors TEXT,
			categories TEXT,
			link_abs TEXT,
			link_pdf TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_chunks_document_id ON chunks(document_id)`,
		`CREATE INDEX IF NOT EXISTS idx_chunks_source ON chunks(source)`,
	}

	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}

	// FTS5 virtual table with triggers for sync.
	var ftsExists int
	if err := s.db.QueryRow(
		`SELECT count(*) FROM sqlite_master WHERE type='table' AND name='chunks_fts'`,
	).Scan(&ftsExists); err != nil {
		return fmt.Errorf("checking FTS table: %w", err)
	}

	if ftsExists == 0 {
		ftsStatements := []string{
			`CREATE VIRTUAL TABLE chunks_fts USING fts5(content, content=chunks, content_rowid=rowid)`,
			`CREATE TRIGGER chunks_ai AFTER INSERT ON chunks BEGIN
				INSERT INTO chunks_fts(rowid, content) VALUES (new.rowid, new.content);
			END`,
			`CREATE TRIGGER chunks_ad AFTER DELETE ON chunks BEGIN
				INSERT INTO chunks_fts(chunks_fts, rowid, content) VALUES('delete', old.rowid, old.content);
			END`,
			`CREATE TRIGGER chunks_au AFTER UPDATE ON chunks BEGIN
				INSERT INTO chunks_fts(chunks_fts, rowid, content) VALUES('delete', old.rowid, old.content);
				INSERT INTO chunks_fts(rowid, content) VALUES (new.rowid, new.content);
			END`,
		}
		for _, stmt := range ftsStatements {
			if _, err := s.db.Exec(stmt); err != nil {
				return fmt.Errorf("creating FTS infrastructure: %w", err)
			}
		}
	}

	return nil
}

// Summary holds counts from a storage run.
type Summary struct {
	StoredCount     int `json:"stored_count" yaml:"stored_count"`
	SkippedExisting int `json:"skipped_existing" yaml:"skipped_existing"`
	TotalProcessed  int `json:"total_processed" yaml:"total_processed"`
}

// Store chunks each document's title and abstract and inserts the chunks.
// Chunks whose identifiers already exist are skipped, which makes the
// operation idempotent under resubmission of the same documents.
func (s *Store) Store(ctx context.Context, docs []types.Document) (Summary, error) {
	var summary Summary

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return summary, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT OR IGNORE INTO chunks
			(chunk_id, document_id, chunk_index, content, hash,
			 title, source, year, authors, categories, link_abs, link_pdf)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return summary, fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	for _, doc := range docs {
		fullText := doc.Title
		if doc.Abstract != "" {
			fullText = doc.Title + ". " + doc.Abstract
		}
		if strings.TrimSpace(fullText) == "" {
			continue
		}

		authorsJSON, _ := json.Marshal(doc.Authors)
		categoriesJSON, _ := json.Marshal(doc.Categories)

		for i, chunk := range s.chunkText(fullText) {
			chunkID := fmt.Sprintf("%s_chunk_%d", doc.ID, i)
			hash := fmt.Sprintf("%x", md5.Sum([]byte(chunk)))

			res, err := stmt.ExecContext(ctx,
				chunkID, doc.ID, i, chunk, hash,
				doc.Title, doc.Source, doc.Year,
				string(authorsJSON), string(categoriesJSON),
				doc.LinkAbs, doc.LinkPDF,
			)
			if err != nil {
				return summary, fmt.Errorf("inserting chunk %s: %w", chunkID, err)
			}

			summary.TotalProcessed++
			if n, _ := res.RowsAffected(); n > 0 {
				summary.StoredCount++
			} else {
				summary.SkippedExisting++
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return summary, fmt.Errorf("committing: %w", err)
	}
	return summary, nil
}

// chunkText splits text into chunks of roughly chunkSize characters along
// sentence boundaries, carrying the last chunkOverlap words into the next
// chunk so neighboring chunks share context.
func (s *Store) chunkText(text string) []string {
	if text == "" {
		return nil
	}
	if len(text) < s.chunkSize {
		return []string{text}
	}

	var chunks []string
	var current string

	for _, sentence := range sentenceEnd.Split(text, -1) {
		sentence = strings.TrimSpace(sentence)
		if sentence == "" {
			continue
		}

		if current != "" && len(current)+len(sentence) > s.chunkSize {
			chunks = append(chunks, strings.TrimSpace(current))

			words := strings.Fields(current)
			if len(words) > s.chunkOverlap {
				current = strings.Join(words[len(words)-s.chunkOverlap:], " ") + " " + sentence
			} else {
				current = sentence
			}
			continue
		}

		if current == "" {
			current = sentence
		} else {
			current += " " + sentence
		}
	}

	if strings.TrimSpace(current) != "" {
		chunks = append(chunks, strings.TrimSpace(current))
	}
	return chunks
}

// ChunkMetadata carries the document fields stored alongside each chunk.
type ChunkMetadata struct {
	DocumentID string   `json:"document_id" yaml:"document_id"`
	ChunkIndex int      `json:"chunk_index" yaml:"chunk_index"`
	Title      string   `json:"title" yaml:"title"`
	Source     string   `json:"source" yaml:"source"`
	Year       int      `json:"year" yaml:"year"`
	Authors    []string `json:"authors" yaml:"authors"`
	Categories []string `json:"categories" yaml:"categories"`
	LinkAbs    string   `json:"link_abs,omitempty" yaml:"link_abs,omitempty"`
	LinkPDF    string   `json:"link_pdf,omitempty" yaml:"link_pdf,omitempty"`
}

// Match is one similarity-search hit. Distance is the FTS5 bm25 rank, where
// smaller (more negative) means a closer match.
type Match struct {
	ChunkID  string        `json:"chunk_id" yaml:"chunk_id"`
	Text     string        `json:"text" yaml:"text"`
	Distance float64       `json:"distance" yaml:"distance"`
	Metadata ChunkMetadata `json:"metadata" yaml:"metadata"`
}

// SearchSimilar returns the k chunks most similar to the query text. Free
// text is not valid FTS5 MATCH syntax, so the query is reduced to its word
// tokens OR-joined before matching. A query with no word tokens returns no
// matches.
func (s *Store) SearchSimilar(ctx context.Context, query string, k int) ([]Match, error) {
	if k <= 0 {
		k = s.maxResults
	}

	ftsQuery := ftsMatchQuery(query)
	if ftsQuery == "" {
		return nil, nil
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT c.chunk_id, c.content, c.document_id, c.chunk_index,
			c.title, c.source, c.year, c.authors, c.categories,
			c.link_abs, c.link_pdf, chunks_fts.rank
		FROM chunks_fts
		JOIN chunks c ON c.rowid = chunks_fts.rowid
		WHERE chunks_fts MATCH ?
		ORDER BY chunks_fts.rank
		LIMIT ?`,
		ftsQuery, k,
	)
	if err != nil {
		return nil, fmt.Errorf("querying chunks: %w", err)
	}
	defer rows.Close()

	var matches []Match
	for rows.Next() {
		var (
			m              Match
			authorsJSON    sql.NullString
			categoriesJSON sql.NullString
			linkAbs        sql.NullString
			linkPDF        sql.NullString
		)

		if err := rows.Scan(
			&m.ChunkID, &m.Text, &m.Metadata.DocumentID, &m.Metadata.ChunkIndex,
			&m.Metadata.Title, &m.Metadata.Source, &m.Metadata.Year,
			&authorsJSON, &categoriesJSON, &linkAbs, &linkPDF, &m.Distance,
		); err != nil {
			return nil, fmt.Errorf("scanning row: %w", err)
		}

		if authorsJSON.Valid {
			json.Unmarshal([]byte(authorsJSON.String), &m.Metadata.Authors)
		}
		if categoriesJSON.Valid {
			json.Unmarshal([]byte(categoriesJSON.String), &m.Metadata.Categories)
		}
		m.Metadata.LinkAbs = linkAbs.String
		m.Metadata.LinkPDF = linkPDF.String

		matches = append(matches, m)
	}

	return matches, rows.Err()
}

var ftsToken = regexp.MustCompile(`\w+`)

// ftsMatchQuery turns free text into an OR query of quoted word tokens.
func ftsMatchQuery(query string) string {
	tokens := ftsToken.FindAllString(query, -1)
	if len(tokens) == 0 {
		return ""
	}
	for i, t := range tokens {
		tokens[i] = `"` + t + `"`
	}
	return strings.Join(tokens, " OR ")
}

// Stats summarizes the stored collection.
type Stats struct {
	TotalChunks     int            `json:"total_chunks" yaml:"total_chunks"`
	UniqueDocuments int            `json:"unique_documents" yaml:"unique_documents"`
	Sources         map[string]int `json:"sources" yaml:"sources"`
	Years           map[int]int    `json:"years" yaml:"years"`
}

// Stats reports chunk and document counts, per-source chunk counts, and a
// histogram of the ten most recent publication years. Year 0 (unknown) is
// excluded from the histogram.
func (s *Store) Stats(ctx context.Context) (Stats, error) {
	stats := Stats{
		Sources: map[string]int{},
		Years:   map[int]int{},
	}

	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*), COUNT(DISTINCT document_id) FROM chunks`,
	).Scan(&stats.TotalChunks, &stats.UniqueDocuments)
	if err != nil {
		return stats, fmt.Errorf("counting chunks: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, `SELECT source, COUNT(*) FROM chunks GROUP BY source`)
	if err != nil {
		return stats, fmt.Errorf("counting sources: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var source sql.NullString
		var n int
		if err := rows.Scan(&source, &n); err != nil {
			return stats, fmt.Errorf("scanning source row: %w", err)
		}
		name := source.String
		if name == "" {
			name = "Unknown"
		}
		stats.Sources[name] = n
	}
	if err := rows.Err(); err != nil {
		return stats, err
	}

	yearRows, err := s.db.QueryContext(ctx,
		`SELECT year, COUNT(*) FROM chunks WHERE year > 0 GROUP BY year ORDER BY year DESC LIMIT 10`)
	if err != nil {
		return stats, fmt.Errorf("counting years: %w", err)
	}
	defer yearRows.Close()
	for yearRows.Next() {
		var year, n int
		if err := yearRows.Scan(&year, &n); err != nil {
			return stats, fmt.Errorf("scanning year row: %w", err)
		}
		stats.Years[year] = n
	}

	return stats, yearRows.Err()
}

// ExportEntry is one chunk row in the collection export.
type ExportEntry struct {
	ChunkID  string        `json:"chunk_id" yaml:"chunk_id"`
	Content  string        `json:"content" yaml:"content"`
	Hash     string        `json:"hash" yaml:"hash"`
	Metadata ChunkMetadata `json:"metadata" yaml:"metadata"`
}

// ExportYAML writes the full collection to dataDir/index/export.yaml.
func (s *Store) ExportYAML(ctx context.Context) error {
	rows, err := s.db.QueryContext(ctx,
		`SELECT chunk_id, content, hash, document_id, chunk_index,
			title, source, year, authors, categories, link_abs, link_pdf
		FROM chunks ORDER BY document_id, chunk_index`)
	if err != nil {
		return fmt.Errorf("querying for export: %w", err)
	}
	defer rows.Close()

	var entries []ExportEntry
	for rows.Next() {
		var (
			e              ExportEntry
			authorsJSON    sql.NullString
			categoriesJSON sql.NullString
			linkAbs        sql.NullString
			linkPDF        sql.NullString
		)
		if err := rows.Scan(
			&e.ChunkID, &e.Content, &e.Hash, &e.Metadata.DocumentID, &e.Metadata.ChunkIndex,
			&e.Metadata.Title, &e.Metadata.Source, &e.Metadata.Year,
			&authorsJSON, &categoriesJSON, &linkAbs, &linkPDF,
		); err != nil {
			return fmt.Errorf("scanning export row: %w", err)
		}
		if authorsJSON.Valid {
			json.Unmarshal([]byte(authorsJSON.String), &e.Metadata.Authors)
		}
		if categoriesJSON.Valid {
			json.Unmarshal([]byte(categoriesJSON.String), &e.Metadata.Categories)
		}
		e.Metadata.LinkAbs = linkAbs.String
		e.Metadata.LinkPDF = linkPDF.String
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return err
	}

	data, err := yaml.Marshal(entries)
	if err != nil {
		return fmt.Errorf("marshaling YAML: %w", err)
	}
	return os.WriteFile(filepath.Join(s.dataDir, indexDir, "export.yaml"), data, 0o644)
}
