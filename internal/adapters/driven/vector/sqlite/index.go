// Package sqlite provides a SQLite-backed vector index. Embeddings are
// stored as little-endian float32 blobs; attribute filters are pushed
// down to SQL and distances are computed in-process over the filtered
// rows. Exact rather than approximate, and persistent across restarts.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/binary"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/custodia-labs/corpora/internal/core/ports/driven"
)

// Ensure Index implements the interface.
var _ driven.VectorIndex = (*Index)(nil)

// Index is a SQLite-backed implementation of driven.VectorIndex.
type Index struct {
	db   *sql.DB
	path string
}

// NewIndex creates or opens a vector index at the specified data directory.
// If dataDir is empty, defaults to ~/.corpora/data.
func NewIndex(dataDir string) (*Index, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".corpora", "data")
	}

	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, "vectors.db")

	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if _, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS vectors (
			id TEXT PRIMARY KEY,
			document_id TEXT NOT NULL,
			group_id INTEGER NOT NULL,
			chunk_index INTEGER NOT NULL,
			text TEXT NOT NULL,
			embedding BLOB NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_vectors_group ON vectors(group_id);
		CREATE INDEX IF NOT EXISTS idx_vectors_document ON vectors(document_id);
	`); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating vectors table: %w", err)
	}

	return &Index{db: db, path: dbPath}, nil
}

// Path returns the database file path.
func (x *Index) Path() string {
	return x.path
}

// Upsert inserts or replaces entries by ID in a single transaction.
func (x *Index) Upsert(ctx context.Context, entries []driven.VectorEntry) error {
	if len(entries) == 0 {
		return nil
	}

	tx, err := x.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO vectors (id, document_id, group_id, chunk_index, text, embedding)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			document_id = excluded.document_id,
			group_id = excluded.group_id,
			chunk_index = excluded.chunk_index,
			text = excluded.text,
			embedding = excluded.embedding
	`)
	if err != nil {
		return fmt.Errorf("preparing statement: %w", err)
	}
	defer stmt.Close()

	for _, e := range entries {
		if _, err := stmt.ExecContext(ctx, e.ID, e.Attributes.DocumentID,
			e.Attributes.GroupID, e.Attributes.ChunkIndex, e.Text,
			float32SliceToBytes(e.Vector)); err != nil {
			return fmt.Errorf("saving vector %s: %w", e.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// Query returns up to k nearest entries matching the filter, ordered by
// ascending L2 distance with ties broken by entry ID ascending.
func (x *Index) Query(ctx context.Context, vector []float32, k int, filter driven.Filter) ([]driven.VectorHit, error) {
	where, args := filterClause(filter)
	rows, err := x.db.QueryContext(ctx, `
		SELECT id, document_id, group_id, chunk_index, text, embedding
		FROM vectors`+where, args...)
	if err != nil {
		return nil, fmt.Errorf("querying vectors: %w", err)
	}
	defer rows.Close()

	var hits []driven.VectorHit //nolint:prealloc // size unknown from query
	for rows.Next() {
		var hit driven.VectorHit
		var blob []byte
		if err := rows.Scan(&hit.ID, &hit.Attributes.DocumentID, &hit.Attributes.GroupID,
			&hit.Attributes.ChunkIndex, &hit.Text, &blob); err != nil {
			return nil, fmt.Errorf("scanning vector: %w", err)
		}
		hit.Score = squaredL2(vector, bytesToFloat32Slice(blob))
		hits = append(hits, hit)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating vectors: %w", err)
	}

	sort.Slice(hits, func(i, j int) bool {
		if hits[i].Score != hits[j].Score {
			return hits[i].Score < hits[j].Score
		}
		return hits[i].ID < hits[j].ID
	})

	if k >= 0 && len(hits) > k {
		hits = hits[:k]
	}
	return hits, nil
}

// Delete removes all entries matching the filter.
func (x *Index) Delete(ctx context.Context, filter driven.Filter) error {
	where, args := filterClause(filter)
	if _, err := x.db.ExecContext(ctx, "DELETE FROM vectors"+where, args...); err != nil {
		return fmt.Errorf("deleting vectors: %w", err)
	}
	return nil
}

// Close closes the database connection.
func (x *Index) Close() error {
	return x.db.Close()
}

// filterClause builds a WHERE clause for the set filter predicates.
func filterClause(filter driven.Filter) (string, []any) {
	var conds []string
	var args []any
	if filter.GroupID != 0 {
		conds = append(conds, "group_id = ?")
		args = append(args, filter.GroupID)
	}
	if filter.DocumentID != "" {
		conds = append(conds, "document_id = ?")
		args = append(args, filter.DocumentID)
	}
	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

// float32SliceToBytes converts a []float32 to a byte slice for storage.
func float32SliceToBytes(floats []float32) []byte {
	if len(floats) == 0 {
		return nil
	}
	buf := make([]byte, len(floats)*4)
	for i, f := range floats {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}

// bytesToFloat32Slice converts a stored byte slice back to a []float32.
func bytesToFloat32Slice(data []byte) []float32 {
	if len(data) == 0 {
		return nil
	}
	floats := make([]float32, len(data)/4)
	for i := range floats {
		floats[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[i*4:]))
	}
	return floats
}

// squaredL2 computes the squared Euclidean distance between two vectors.
func squaredL2(a, b []float32) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	var sum float64
	for i := 0; i < n; i++ {
		d := float64(a[i]) - float64(b[i])
		sum += d * d
	}
	return sum
}
