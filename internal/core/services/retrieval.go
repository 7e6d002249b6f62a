package services

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/custodia-labs/corpora/internal/core/domain"
	"github.com/custodia-labs/corpora/internal/core/ports/driven"
	"github.com/custodia-labs/corpora/internal/core/ports/driving"
	"github.com/custodia-labs/corpora/internal/logger"
)

// Ensure RetrievalService implements the interface.
var _ driving.RetrievalService = (*RetrievalService)(nil)

// DefaultTopK is the number of chunks retrieved when the caller does
// not specify one.
const DefaultTopK = 5

// NoResultsMessage is returned as the answer when retrieval finds
// nothing to ground a synthesis on.
const NoResultsMessage = "No relevant documents found for your query."

// NoGroupMessage is returned as the answer when routing declines to
// pick a group, so callers can tell it apart from an empty search.
const NoGroupMessage = "No relevant group found."

// defaultSynthesisPrompt is the fallback prompt when no PromptStore is configured.
const defaultSynthesisPrompt = `You are a helpful AI assistant that answers questions based on provided context.

CONTEXT:
%s

QUESTION: %s

INSTRUCTIONS:
- Answer the question using ONLY the information provided in the context above
- If the context doesn't contain enough information to answer the question, say so clearly
- Be specific and detailed in your response when possible
- Do not make up information that isn't in the context
- Structure your answer clearly with bullet points or numbered lists when appropriate

ANSWER:`

// RetrievalService answers questions from indexed chunks: route to a
// group, search inside it, synthesise from what comes back.
type RetrievalService struct {
	groupStore  driven.GroupStore
	docStore    driven.DocumentStore
	chunkStore  driven.ChunkStore
	vectorIndex driven.VectorIndex
	embedder    driven.EmbeddingService
	llm         driven.LLMService
	resolver    driving.GroupResolver
	promptStore driven.PromptStore
}

// NewRetrievalService creates a new retrieval service.
// The llm, resolver and promptStore parameters are optional (can be nil):
// without an llm, answers degrade to raw retrieved text; without a
// resolver, queries must name a group explicitly.
func NewRetrievalService(
	groupStore driven.GroupStore,
	docStore driven.DocumentStore,
	chunkStore driven.ChunkStore,
	vectorIndex driven.VectorIndex,
	embedder driven.EmbeddingService,
	llm driven.LLMService,
	resolver driving.GroupResolver,
) *RetrievalService {
	return &RetrievalService{
		groupStore:  groupStore,
		docStore:    docStore,
		chunkStore:  chunkStore,
		vectorIndex: vectorIndex,
		embedder:    embedder,
		llm:         llm,
		resolver:    resolver,
	}
}

// SetPromptStore sets the prompt store for loading customisable prompts.
// If not set, the service uses hardcoded default prompts.
func (s *RetrievalService) SetPromptStore(store driven.PromptStore) {
	s.promptStore = store
}

// Answer resolves the target group, runs a scoped similarity search and
// synthesises an answer from the retrieved chunks.
//
// Failures along the query path degrade to a textual error answer
// rather than aborting the query; only caller misuse (an empty query,
// an explicit group that does not exist) returns an error.
func (s *RetrievalService) Answer(
	ctx context.Context, query string, groupID *int64, k int,
) (*domain.Answer, error) {
	logger.Section("Query Answering")

	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("%w: empty query", domain.ErrInvalidInput)
	}

	group, err := s.resolveTargetGroup(ctx, query, groupID)
	if err != nil {
		if groupID != nil {
			// The caller named a group; a bad ID is their mistake.
			return nil, err
		}
		logger.Warn("Group routing failed: %v", err)
		return &domain.Answer{
			Query:  query,
			Answer: fmt.Sprintf("Error processing query: %v", err),
		}, nil
	}
	if group == nil {
		// Routing found no suitable group. Not an error: the caller
		// gets an honest "nothing found" instead of a wrong-group answer.
		logger.Info("No group matched the query")
		return &domain.Answer{
			Query:  query,
			Answer: NoGroupMessage,
		}, nil
	}

	matches, err := s.searchGroup(ctx, group.ID, query, k)
	if err != nil {
		logger.Warn("Search in group %d failed: %v", group.ID, err)
		return &domain.Answer{
			Query:     query,
			Answer:    fmt.Sprintf("Error processing query: %v", err),
			GroupUsed: group.Name,
		}, nil
	}

	if len(matches) == 0 {
		logger.Info("No chunks retrieved from group %d", group.ID)
		return &domain.Answer{
			Query:     query,
			Answer:    NoResultsMessage,
			GroupUsed: group.Name,
		}, nil
	}

	answer, err := s.synthesise(ctx, query, matches)
	if err != nil {
		// The retrieval worked; only the final generation failed. Report
		// that in the answer text, keeping the retrieval metadata.
		logger.Warn("Answer synthesis failed: %v", err)
		answer = fmt.Sprintf("Error generating response: %v", err)
	}

	return &domain.Answer{
		Query:       query,
		Answer:      answer,
		GroupUsed:   group.Name,
		ChunksFound: len(matches),
	}, nil
}

// SearchInGroup runs the scoped similarity search only, returning
// ranked chunks with scores and no synthesis.
func (s *RetrievalService) SearchInGroup(
	ctx context.Context, groupID int64, query string, k int,
) ([]domain.ChunkMatch, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("%w: empty query", domain.ErrInvalidInput)
	}
	if _, err := s.groupStore.GetGroup(ctx, groupID); err != nil {
		return nil, err
	}
	return s.searchGroup(ctx, groupID, query, k)
}

// Summarise produces a summary of an indexed document's text in at most
// maxWords words.
func (s *RetrievalService) Summarise(ctx context.Context, documentID string, maxWords int) (string, error) {
	if s.llm == nil {
		return "", domain.ErrLLMUnavailable
	}
	if maxWords <= 0 {
		maxWords = 200
	}

	if _, err := s.docStore.GetDocument(ctx, documentID); err != nil {
		return "", err
	}

	text, err := s.documentText(ctx, documentID)
	if err != nil {
		return "", err
	}
	if text == "" {
		return "", fmt.Errorf("%w: document %s has no indexed text", domain.ErrInvalidInput, documentID)
	}

	return s.llm.Summarise(ctx, text, maxWords)
}

// resolveTargetGroup picks the group to search. Explicit IDs are
// validated; nil means route via the resolver. A nil, nil return means
// routing declined to pick a group.
func (s *RetrievalService) resolveTargetGroup(
	ctx context.Context, query string, groupID *int64,
) (*domain.Group, error) {
	if groupID != nil {
		return s.groupStore.GetGroup(ctx, *groupID)
	}

	if s.resolver == nil {
		return nil, fmt.Errorf("%w: no group given and no resolver configured", domain.ErrRouting)
	}

	candidates, err := s.groupStore.ListGroups(ctx)
	if err != nil {
		return nil, fmt.Errorf("list groups: %w", err)
	}

	id, ok, err := s.resolver.ResolveGroup(ctx, query, candidates)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}

	for i := range candidates {
		if candidates[i].ID == id {
			return &candidates[i], nil
		}
	}
	// The resolver contract keeps this unreachable, but a stale group
	// list between ListGroups and here degrades to "no match".
	return nil, nil
}

// searchGroup embeds the query and runs the group-scoped vector search.
func (s *RetrievalService) searchGroup(
	ctx context.Context, groupID int64, query string, k int,
) ([]domain.ChunkMatch, error) {
	if s.embedder == nil {
		return nil, domain.ErrEmbeddingUnavailable
	}
	if s.vectorIndex == nil {
		return nil, domain.ErrVectorIndexUnavailable
	}
	if k <= 0 {
		k = DefaultTopK
	}

	vector, err := s.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	hits, err := s.vectorIndex.Query(ctx, vector, k, driven.Filter{GroupID: groupID})
	if err != nil {
		return nil, fmt.Errorf("vector search: %w", err)
	}
	logger.Debug("Retrieved %d chunks from group %d", len(hits), groupID)

	matches := make([]domain.ChunkMatch, len(hits))
	for i, hit := range hits {
		matches[i] = domain.ChunkMatch{
			ChunkID:    hit.ID,
			DocumentID: hit.Attributes.DocumentID,
			ChunkIndex: hit.Attributes.ChunkIndex,
			Content:    hit.Text,
			Score:      hit.Score,
		}
	}
	return matches, nil
}

// synthesise grounds an answer in the retrieved chunks. Without an LLM
// the raw context is returned so retrieval stays usable.
func (s *RetrievalService) synthesise(ctx context.Context, query string, matches []domain.ChunkMatch) (string, error) {
	contents := make([]string, len(matches))
	for i, m := range matches {
		contents[i] = m.Content
	}
	contextText := strings.Join(contents, "\n\n")

	if s.llm == nil {
		logger.Debug("No LLM configured, returning raw context")
		return contextText, nil
	}

	prompt := fmt.Sprintf(s.loadSynthesisPrompt(), contextText, query)
	answer, err := s.llm.Generate(ctx, prompt, driven.GenerateOptions{
		Temperature: 0.2,
	})
	if err != nil {
		return "", fmt.Errorf("synthesise answer: %w", err)
	}
	return strings.TrimSpace(answer), nil
}

// documentText reassembles a document's text from its indexed chunks.
// Chunk text lives in the vector index; the hits are re-ordered by
// chunk index to restore reading order.
func (s *RetrievalService) documentText(ctx context.Context, documentID string) (string, error) {
	if s.vectorIndex == nil {
		return "", domain.ErrVectorIndexUnavailable
	}
	if s.embedder == nil {
		return "", domain.ErrEmbeddingUnavailable
	}

	records, err := s.chunkStore.GetChunks(ctx, documentID)
	if err != nil {
		return "", fmt.Errorf("get chunk records: %w", err)
	}
	if len(records) == 0 {
		return "", nil
	}

	// The query vector is irrelevant here: the document filter selects
	// the chunks and k covers all of them.
	probe := make([]float32, s.embedder.Dimensions())
	hits, err := s.vectorIndex.Query(ctx, probe, len(records), driven.Filter{DocumentID: documentID})
	if err != nil {
		return "", fmt.Errorf("fetch chunks: %w", err)
	}

	sort.Slice(hits, func(i, j int) bool {
		return hits[i].Attributes.ChunkIndex < hits[j].Attributes.ChunkIndex
	})

	texts := make([]string, len(hits))
	for i, hit := range hits {
		texts[i] = hit.Text
	}
	return strings.Join(texts, "\n\n"), nil
}

// loadSynthesisPrompt returns the synthesis template from the store or
// the default.
func (s *RetrievalService) loadSynthesisPrompt() string {
	if s.promptStore == nil {
		return defaultSynthesisPrompt
	}
	prompt, err := s.promptStore.Load(driven.PromptSynthesis)
	if err != nil {
		return defaultSynthesisPrompt
	}
	return prompt
}
