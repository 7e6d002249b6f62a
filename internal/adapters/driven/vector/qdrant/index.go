// Package qdrant provides a vector index backed by a Qdrant server.
// It is a minimal REST client; no generated SDK.
package qdrant

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/corpora/internal/core/ports/driven"
)

// Ensure Index implements the interface.
var _ driven.VectorIndex = (*Index)(nil)

// Default configuration values.
const (
	DefaultBaseURL    = "http://localhost:6333"
	DefaultCollection = "corpora_chunks"
	DefaultTimeout    = 15 * time.Second
)

// pointNamespace is the UUID namespace for deriving Qdrant point IDs
// from chunk IDs. Qdrant only accepts UUIDs or unsigned integers as
// point IDs, so the textual chunk ID lives in the payload.
var pointNamespace = uuid.MustParse("8a9e5a60-74a3-4f0b-9d2f-2f45c5a9b1e7")

// pointID derives the deterministic Qdrant point ID for a chunk ID.
func pointID(chunkID string) string {
	return uuid.NewSHA1(pointNamespace, []byte(chunkID)).String()
}

// Config holds configuration for the Qdrant index.
type Config struct {
	// BaseURL is the Qdrant API base URL (default: http://localhost:6333).
	BaseURL string

	// APIKey authenticates requests when set.
	APIKey string

	// Collection is the collection name (default: corpora_chunks).
	Collection string

	// Dimensions is the embedding vector size (required).
	Dimensions int

	// Timeout is the request timeout (default: 15s).
	Timeout time.Duration
}

// Index is a Qdrant-backed implementation of driven.VectorIndex.
type Index struct {
	client     *http.Client
	baseURL    string
	apiKey     string
	collection string
}

// NewIndex creates the collection if missing and returns the index.
// The collection uses Euclidean distance so scores order ascending,
// matching the port contract.
func NewIndex(cfg Config) (*Index, error) {
	if cfg.Dimensions <= 0 {
		return nil, fmt.Errorf("qdrant: dimensions must be positive")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Collection == "" {
		cfg.Collection = DefaultCollection
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}

	x := &Index{
		client:     &http.Client{Timeout: cfg.Timeout},
		baseURL:    cfg.BaseURL,
		apiKey:     cfg.APIKey,
		collection: cfg.Collection,
	}

	body := map[string]any{
		"vectors": map[string]any{
			"size":     cfg.Dimensions,
			"distance": "Euclid",
		},
	}
	// Qdrant returns 409 if the collection already exists.
	if err := x.doJSON(context.Background(), http.MethodPut,
		fmt.Sprintf("/collections/%s", x.collection), body, nil, http.StatusConflict); err != nil {
		return nil, fmt.Errorf("qdrant: create collection: %w", err)
	}

	return x, nil
}

// Upsert inserts or replaces entries by ID.
func (x *Index) Upsert(ctx context.Context, entries []driven.VectorEntry) error {
	if len(entries) == 0 {
		return nil
	}

	points := make([]map[string]any, len(entries))
	for i, e := range entries {
		points[i] = map[string]any{
			"id":     pointID(e.ID),
			"vector": e.Vector,
			"payload": map[string]any{
				"chunk_id":    e.ID,
				"document_id": e.Attributes.DocumentID,
				"group_id":    e.Attributes.GroupID,
				"chunk_index": e.Attributes.ChunkIndex,
				"text":        e.Text,
			},
		}
	}

	return x.doJSON(ctx, http.MethodPut,
		fmt.Sprintf("/collections/%s/points?wait=true", x.collection),
		map[string]any{"points": points}, nil)
}

// Query returns up to k nearest entries matching the filter, ordered by
// ascending distance with ties broken by chunk ID ascending.
func (x *Index) Query(ctx context.Context, vector []float32, k int, filter driven.Filter) ([]driven.VectorHit, error) {
	req := map[string]any{
		"vector":       vector,
		"limit":        k,
		"with_payload": true,
	}
	if cond := filterConditions(filter); cond != nil {
		req["filter"] = cond
	}

	var resp struct {
		Result []struct {
			Score   float64        `json:"score"`
			Payload map[string]any `json:"payload"`
		} `json:"result"`
	}
	if err := x.doJSON(ctx, http.MethodPost,
		fmt.Sprintf("/collections/%s/points/search", x.collection), req, &resp); err != nil {
		return nil, fmt.Errorf("qdrant: search: %w", err)
	}

	hits := make([]driven.VectorHit, 0, len(resp.Result))
	for _, r := range resp.Result {
		hit := driven.VectorHit{Score: r.Score}
		if v, ok := r.Payload["chunk_id"].(string); ok {
			hit.ID = v
		}
		if v, ok := r.Payload["document_id"].(string); ok {
			hit.Attributes.DocumentID = v
		}
		if v, ok := r.Payload["group_id"].(float64); ok {
			hit.Attributes.GroupID = int64(v)
		}
		if v, ok := r.Payload["chunk_index"].(float64); ok {
			hit.Attributes.ChunkIndex = int(v)
		}
		if v, ok := r.Payload["text"].(string); ok {
			hit.Text = v
		}
		hits = append(hits, hit)
	}

	// The server orders by distance; re-sort to pin the tie-break.
	sort.Slice(hits, func(i, j int) bool {
		if hits[i].Score != hits[j].Score {
			return hits[i].Score < hits[j].Score
		}
		return hits[i].ID < hits[j].ID
	})

	return hits, nil
}

// Delete removes all entries matching the filter.
func (x *Index) Delete(ctx context.Context, filter driven.Filter) error {
	req := map[string]any{}
	if cond := filterConditions(filter); cond != nil {
		req["filter"] = cond
	}
	return x.doJSON(ctx, http.MethodPost,
		fmt.Sprintf("/collections/%s/points/delete?wait=true", x.collection), req, nil)
}

// Close releases resources.
func (x *Index) Close() error {
	// HTTP client doesn't need explicit cleanup
	return nil
}

// filterConditions builds a Qdrant must-match filter, or nil when the
// filter is empty.
func filterConditions(filter driven.Filter) map[string]any {
	var must []map[string]any
	if filter.GroupID != 0 {
		must = append(must, map[string]any{
			"key": "group_id", "match": map[string]any{"value": filter.GroupID},
		})
	}
	if filter.DocumentID != "" {
		must = append(must, map[string]any{
			"key": "document_id", "match": map[string]any{"value": filter.DocumentID},
		})
	}
	if must == nil {
		return nil
	}
	return map[string]any{"must": must}
}

// doJSON sends a JSON request and decodes the response into out when
// non-nil. Status codes listed in tolerated are not treated as errors.
func (x *Index) doJSON(ctx context.Context, method, path string, body, out any, tolerated ...int) error {
	data, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, method, x.baseURL+path, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if x.apiKey != "" {
		req.Header.Set("api-key", x.apiKey)
	}

	resp, err := x.client.Do(req)
	if err != nil {
		return fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 && !contains(tolerated, resp.StatusCode) {
		msg, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("qdrant %s %s: status %d: %s", method, path, resp.StatusCode, string(msg))
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}

func contains(codes []int, code int) bool {
	for _, c := range codes {
		if c == code {
			return true
		}
	}
	return false
}
