package services

import (
	"context"
	"fmt"
	"hash/fnv"

	"github.com/custodia-labs/corpora/internal/core/domain"
	"github.com/custodia-labs/corpora/internal/core/ports/driven"
)

// --- Shared mock implementations ---

// mockEmbedder produces deterministic vectors derived from the text, so
// identical texts land on identical vectors across calls.
type mockEmbedder struct {
	dims       int
	embedErr   error
	failAtText string // EmbedBatch fails when it reaches this text
	embedCalls int
	batchCalls int
}

func newMockEmbedder() *mockEmbedder {
	return &mockEmbedder{dims: 4}
}

func (m *mockEmbedder) vectorFor(text string) []float32 {
	h := fnv.New32a()
	_, _ = h.Write([]byte(text))
	seed := h.Sum32()

	vec := make([]float32, m.dims)
	for i := range vec {
		seed = seed*1664525 + 1013904223
		vec[i] = float32(seed%1000) / 1000.0
	}
	return vec
}

func (m *mockEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	m.embedCalls++
	if m.embedErr != nil {
		return nil, m.embedErr
	}
	return m.vectorFor(text), nil
}

func (m *mockEmbedder) EmbedBatch(_ context.Context, texts []string) ([][]float32, error) {
	m.batchCalls++
	if m.embedErr != nil {
		return nil, m.embedErr
	}
	out := make([][]float32, len(texts))
	for i, text := range texts {
		if m.failAtText != "" && text == m.failAtText {
			return nil, fmt.Errorf("embedding backend rejected text %d", i)
		}
		out[i] = m.vectorFor(text)
	}
	return out, nil
}

func (m *mockEmbedder) Dimensions() int              { return m.dims }
func (m *mockEmbedder) ModelName() string            { return "mock-embedder" }
func (m *mockEmbedder) Ping(_ context.Context) error { return nil }
func (m *mockEmbedder) Close() error                 { return nil }

// mockLLM returns a canned response and records the last prompt.
type mockLLM struct {
	response     string
	generateErr  error
	lastPrompt   string
	generateCnt  int
	summariseCnt int
}

func (m *mockLLM) Generate(_ context.Context, prompt string, _ driven.GenerateOptions) (string, error) {
	m.generateCnt++
	m.lastPrompt = prompt
	if m.generateErr != nil {
		return "", m.generateErr
	}
	return m.response, nil
}

func (m *mockLLM) Summarise(_ context.Context, content string, maxWords int) (string, error) {
	m.summariseCnt++
	m.lastPrompt = content
	if m.generateErr != nil {
		return "", m.generateErr
	}
	return m.response, nil
}

func (m *mockLLM) ModelName() string            { return "mock-llm" }
func (m *mockLLM) Ping(_ context.Context) error { return nil }
func (m *mockLLM) Close() error                 { return nil }

// mockExtractor passes content through as text.
type mockExtractor struct {
	extractErr error
}

func (m *mockExtractor) Extract(_ context.Context, content []byte, _ string) (string, error) {
	if m.extractErr != nil {
		return "", m.extractErr
	}
	return string(content), nil
}

// failingVectorIndex wraps a real index and injects failures.
type failingVectorIndex struct {
	driven.VectorIndex
	upsertErr error
	deleteErr error
}

func (f *failingVectorIndex) Upsert(ctx context.Context, entries []driven.VectorEntry) error {
	if f.upsertErr != nil {
		return f.upsertErr
	}
	return f.VectorIndex.Upsert(ctx, entries)
}

func (f *failingVectorIndex) Delete(ctx context.Context, filter driven.Filter) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	return f.VectorIndex.Delete(ctx, filter)
}

// failingChunkStore wraps a real chunk store and injects save failures.
type failingChunkStore struct {
	driven.ChunkStore
	saveErr error
}

func (f *failingChunkStore) SaveChunks(ctx context.Context, records []domain.ChunkRecord) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	return f.ChunkStore.SaveChunks(ctx, records)
}
