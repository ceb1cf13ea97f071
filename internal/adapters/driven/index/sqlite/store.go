// Package sqlite provides a persistent vector index backed by SQLite.
//
// The index is a single database file. Rebuilds write into a temporary
// file next to the target and rename it into place, so a reader opens
// either the old complete index or the new complete index, never a
// half-written one. Similarity search is exact (brute-force cosine):
// private document corpora index at most a few thousand segments, and
// exact search keeps retrieval deterministic.
package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"encoding/binary"
	"fmt"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/beck40/insight/internal/adapters/driven/index/sqlite/migrations"
	"github.com/beck40/insight/internal/core/domain"
	"github.com/beck40/insight/internal/core/ports/driven"
	"github.com/beck40/insight/internal/logger"
)

// Meta keys persisted alongside the segments.
const (
	metaModel      = "embedding_model"
	metaDimensions = "dimensions"
	metaPages      = "pages"
	metaBuiltAt    = "built_at"
)

// Ensure the adapter implements the ports.
var (
	_ driven.VectorIndex = (*Index)(nil)
	_ driven.IndexWriter = (*Writer)(nil)
)

// Index is a read handle on a persisted vector index.
type Index struct {
	db   *sql.DB
	path string
}

// Open opens the index at path. It returns domain.ErrIndexNotFound
// when no file exists at path or the file is not a valid index.
func Open(path string) (*Index, error) {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s (run 'insight ingest' first)", domain.ErrIndexNotFound, path)
		}
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}

	db, err := openDB(path)
	if err != nil {
		return nil, err
	}

	// A database without index metadata is not a valid index.
	var model string
	row := db.QueryRow("SELECT value FROM index_meta WHERE key = ?", metaModel)
	if err := row.Scan(&model); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: %s is not a valid index: %v", domain.ErrIndexNotFound, path, err)
	}

	return &Index{db: db, path: path}, nil
}

// Path returns the index file path.
func (ix *Index) Path() string {
	return ix.path
}

// Search returns up to k segments nearest to the query vector by
// cosine similarity, most similar first. An empty index yields an
// empty result. Ties are broken by segment position so repeated
// searches return identical orderings.
func (ix *Index) Search(ctx context.Context, query []float32, k int) ([]domain.RetrievedSegment, error) {
	if k <= 0 {
		return []domain.RetrievedSegment{}, nil
	}

	dims, err := ix.metaInt(ctx, metaDimensions)
	if err != nil {
		return nil, err
	}
	// An index built from zero segments records no dimensionality;
	// any query against it finds nothing.
	if dims == 0 {
		return []domain.RetrievedSegment{}, nil
	}
	if len(query) != dims {
		return nil, fmt.Errorf("query vector has %d dimensions, index expects %d", len(query), dims)
	}

	rows, err := ix.db.QueryContext(ctx,
		"SELECT id, source, page, position, content, embedding FROM segments")
	if err != nil {
		return nil, fmt.Errorf("query segments: %w", err)
	}
	defer rows.Close()

	var results []domain.RetrievedSegment
	for rows.Next() {
		var seg domain.Segment
		var blob []byte
		if err := rows.Scan(&seg.ID, &seg.Source, &seg.Page, &seg.Position, &seg.Text, &blob); err != nil {
			return nil, fmt.Errorf("scan segment: %w", err)
		}
		results = append(results, domain.RetrievedSegment{
			Segment: seg,
			Score:   cosineSimilarity(query, bytesToFloat32Slice(blob)),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate segments: %w", err)
	}

	sort.SliceStable(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return results[i].Segment.Position < results[j].Segment.Position
	})

	if k > len(results) {
		k = len(results)
	}
	if results == nil {
		return []domain.RetrievedSegment{}, nil
	}
	return results[:k], nil
}

// Stats reports the index contents.
func (ix *Index) Stats(ctx context.Context) (domain.IndexStats, error) {
	var stats domain.IndexStats

	row := ix.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM segments")
	if err := row.Scan(&stats.Segments); err != nil {
		return domain.IndexStats{}, fmt.Errorf("count segments: %w", err)
	}

	model, err := ix.metaValue(ctx, metaModel)
	if err != nil {
		return domain.IndexStats{}, err
	}
	stats.Model = model

	pages, err := ix.metaInt(ctx, metaPages)
	if err != nil {
		return domain.IndexStats{}, err
	}
	stats.Pages = pages

	return stats, nil
}

// ModelName returns the embedding model identifier the index was built
// with.
func (ix *Index) ModelName(ctx context.Context) (string, error) {
	return ix.metaValue(ctx, metaModel)
}

// Close closes the database handle.
func (ix *Index) Close() error {
	return ix.db.Close()
}

func (ix *Index) metaValue(ctx context.Context, key string) (string, error) {
	var value string
	row := ix.db.QueryRowContext(ctx, "SELECT value FROM index_meta WHERE key = ?", key)
	if err := row.Scan(&value); err != nil {
		return "", fmt.Errorf("read meta %q: %w", key, err)
	}
	return value, nil
}

func (ix *Index) metaInt(ctx context.Context, key string) (int, error) {
	value, err := ix.metaValue(ctx, key)
	if err != nil {
		return 0, err
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("meta %q is not an integer: %w", key, err)
	}
	return n, nil
}

// Writer rebuilds the persisted index at a fixed path.
type Writer struct {
	path string
}

// NewWriter creates a writer targeting the index file at path.
func NewWriter(path string) *Writer {
	return &Writer{path: path}
}

// Rebuild persists the full segment set, replacing any prior index at
// the path. The new index is built in a temporary file and renamed
// into place; on any error the previous index is left untouched.
func (w *Writer) Rebuild(ctx context.Context, model string, pages int, segments []driven.IndexedSegment) error {
	if model == "" {
		return fmt.Errorf("%w: embedding model identifier is required", domain.ErrConfig)
	}

	if err := os.MkdirAll(filepath.Dir(w.path), 0o700); err != nil {
		return fmt.Errorf("creating index directory: %w", err)
	}

	tmp := w.path + ".rebuild"
	if err := os.Remove(tmp); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("removing stale rebuild file: %w", err)
	}

	if err := w.build(ctx, tmp, model, pages, segments); err != nil {
		os.Remove(tmp)
		return err
	}

	if err := os.Rename(tmp, w.path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("swapping index into place: %w", err)
	}

	logger.Info("index rebuilt: %d segments at %s", len(segments), w.path)
	return nil
}

func (w *Writer) build(ctx context.Context, path, model string, pages int, segments []driven.IndexedSegment) error {
	db, err := openDB(path)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := migrate(db, migrations.FS); err != nil {
		return err
	}

	dims := 0
	if len(segments) > 0 {
		dims = len(segments[0].Embedding)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, s := range segments {
		if len(s.Embedding) != dims {
			return fmt.Errorf("segment %s: embedding has %d dimensions, expected %d", s.Segment.ID, len(s.Embedding), dims)
		}
		_, err := tx.ExecContext(ctx, `
			INSERT INTO segments (id, source, page, position, content, length, embedding)
			VALUES (?, ?, ?, ?, ?, ?, ?)`,
			s.Segment.ID, s.Segment.Source, s.Segment.Page, s.Segment.Position,
			s.Segment.Text, s.Segment.Length(), float32SliceToBytes(s.Embedding),
		)
		if err != nil {
			return fmt.Errorf("insert segment %s: %w", s.Segment.ID, err)
		}
	}

	meta := map[string]string{
		metaModel:      model,
		metaDimensions: strconv.Itoa(dims),
		metaPages:      strconv.Itoa(pages),
		metaBuiltAt:    time.Now().UTC().Format(time.RFC3339),
	}
	for key, value := range meta {
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO index_meta (key, value) VALUES (?, ?)", key, value); err != nil {
			return fmt.Errorf("write meta %q: %w", key, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit index: %w", err)
	}
	return nil
}

// openDB opens a SQLite database with WAL mode and a busy timeout.
func openDB(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	return db, nil
}

// migrate runs all pending migrations.
func migrate(db *sql.DB, fsys embed.FS) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	var currentVersion int
	row := db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	var upFiles []string
	for _, entry := range entries {
		if strings.HasSuffix(entry.Name(), ".up.sql") {
			upFiles = append(upFiles, entry.Name())
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue // Skip files that don't match pattern
		}
		if version <= currentVersion {
			continue // Already applied
		}

		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}
		if _, err := db.Exec(string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}
		if _, err := db.Exec("INSERT INTO schema_migrations (version) VALUES (?)", version); err != nil {
			return fmt.Errorf("recording migration %s: %w", name, err)
		}
	}

	return nil
}

// cosineSimilarity returns the cosine of the angle between a and b.
// Zero-norm vectors yield 0.
func cosineSimilarity(a, b []float32) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	var dot, normA, normB float64
	for i := 0; i < n; i++ {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

// float32SliceToBytes converts a vector to a little-endian byte blob.
func float32SliceToBytes(floats []float32) []byte {
	buf := make([]byte, len(floats)*4)
	for i, f := range floats {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}

// bytesToFloat32Slice converts a byte blob back to a vector.
func bytesToFloat32Slice(data []byte) []float32 {
	floats := make([]float32, len(data)/4)
	for i := range floats {
		floats[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[i*4:]))
	}
	return floats
}
