package cli

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/corpora/internal/core/domain"
	"github.com/custodia-labs/corpora/internal/core/ports/driving"
)

// execute runs the root command with args and returns its combined output.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()

	out := &bytes.Buffer{}
	rootCmd.SetOut(out)
	rootCmd.SetErr(out)
	rootCmd.SetArgs(args)

	err := rootCmd.Execute()
	return out.String(), err
}

// withServices installs stubs so PersistentPreRunE skips real wiring,
// and restores the globals afterwards.
func withServices(t *testing.T, g driving.GroupService, i driving.IngestionService, r driving.RetrievalService) {
	t.Helper()

	prevGroup, prevIngest, prevRetrieval := groupService, ingestionService, retrievalService
	groupService, ingestionService, retrievalService = g, i, r
	t.Cleanup(func() {
		groupService, ingestionService, retrievalService = prevGroup, prevIngest, prevRetrieval
	})
}

type stubGroupService struct {
	groups    []domain.Group
	docs      []domain.Document
	created   *domain.Group
	deletedID int64
	err       error
}

func (s *stubGroupService) CreateGroup(_ context.Context, name, description string) (*domain.Group, error) {
	if s.err != nil {
		return nil, s.err
	}
	s.created = &domain.Group{ID: 1, Name: name, Description: description}
	return s.created, nil
}

func (s *stubGroupService) GetGroup(_ context.Context, id int64) (*domain.Group, error) {
	for i := range s.groups {
		if s.groups[i].ID == id {
			return &s.groups[i], nil
		}
	}
	return nil, domain.ErrNotFound
}

func (s *stubGroupService) ListGroups(_ context.Context) ([]domain.Group, error) {
	return s.groups, s.err
}

func (s *stubGroupService) DeleteGroup(_ context.Context, id int64) error {
	s.deletedID = id
	return s.err
}

func (s *stubGroupService) ListDocuments(_ context.Context, _ int64) ([]domain.Document, error) {
	return s.docs, s.err
}

type stubIngestionService struct {
	result    *driving.IngestResult
	deletedID string
	err       error
}

func (s *stubIngestionService) Ingest(_ context.Context, _ []byte, _ string, _ int64) (*driving.IngestResult, error) {
	return s.result, s.err
}

func (s *stubIngestionService) DeleteDocument(_ context.Context, documentID string) error {
	s.deletedID = documentID
	return s.err
}

type stubRetrievalService struct {
	answer    *domain.Answer
	matches   []domain.ChunkMatch
	summary   string
	lastQuery string
	lastGroup *int64
	err       error
}

func (s *stubRetrievalService) Answer(_ context.Context, query string, groupID *int64, _ int) (*domain.Answer, error) {
	s.lastQuery = query
	s.lastGroup = groupID
	return s.answer, s.err
}

func (s *stubRetrievalService) SearchInGroup(_ context.Context, _ int64, query string, _ int) ([]domain.ChunkMatch, error) {
	s.lastQuery = query
	return s.matches, s.err
}

func (s *stubRetrievalService) Summarise(_ context.Context, _ string, _ int) (string, error) {
	return s.summary, s.err
}

func TestVersionCommand(t *testing.T) {
	out, err := execute(t, "version")

	require.NoError(t, err)
	assert.Contains(t, out, "corpora version")
	assert.Contains(t, out, version)
}

func TestGroupCreate(t *testing.T) {
	groups := &stubGroupService{}
	withServices(t, groups, &stubIngestionService{}, &stubRetrievalService{})

	out, err := execute(t, "group", "create", "hr", "HR policies and benefits")

	require.NoError(t, err)
	assert.Contains(t, out, "Created group 1: hr")
	require.NotNil(t, groups.created)
	assert.Equal(t, "HR policies and benefits", groups.created.Description)
}

func TestGroupList(t *testing.T) {
	groups := &stubGroupService{groups: []domain.Group{
		{ID: 1, Name: "hr", Description: "HR policies"},
		{ID: 2, Name: "legal", Description: "Contracts"},
	}}
	withServices(t, groups, &stubIngestionService{}, &stubRetrievalService{})

	out, err := execute(t, "group", "list")

	require.NoError(t, err)
	assert.Contains(t, out, "hr")
	assert.Contains(t, out, "legal")
}

func TestGroupListEmpty(t *testing.T) {
	withServices(t, &stubGroupService{}, &stubIngestionService{}, &stubRetrievalService{})

	out, err := execute(t, "group", "list")

	require.NoError(t, err)
	assert.Contains(t, out, "No groups")
}

func TestGroupDelete(t *testing.T) {
	groups := &stubGroupService{}
	withServices(t, groups, &stubIngestionService{}, &stubRetrievalService{})

	out, err := execute(t, "group", "delete", "3")

	require.NoError(t, err)
	assert.Contains(t, out, "Deleted group 3")
	assert.Equal(t, int64(3), groups.deletedID)
}

func TestGroupDeleteRejectsNonNumericID(t *testing.T) {
	withServices(t, &stubGroupService{}, &stubIngestionService{}, &stubRetrievalService{})

	_, err := execute(t, "group", "delete", "hr")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "must be a number")
}

func TestGroupDocs(t *testing.T) {
	groups := &stubGroupService{docs: []domain.Document{
		{ID: "doc-1", Filename: "handbook.txt", Status: domain.DocumentStatusReady},
	}}
	withServices(t, groups, &stubIngestionService{}, &stubRetrievalService{})

	out, err := execute(t, "group", "docs", "1")

	require.NoError(t, err)
	assert.Contains(t, out, "doc-1")
	assert.Contains(t, out, "handbook.txt")
}

func TestIngestCommand(t *testing.T) {
	ingest := &stubIngestionService{result: &driving.IngestResult{DocumentID: "doc-42", ChunkCount: 7}}
	withServices(t, &stubGroupService{}, ingest, &stubRetrievalService{})

	path := filepath.Join(t.TempDir(), "notes.txt")
	require.NoError(t, os.WriteFile(path, []byte("some text"), 0o644))

	out, err := execute(t, "ingest", path, "--group", "1")

	require.NoError(t, err)
	assert.Contains(t, out, "doc-42")
	assert.Contains(t, out, "7 chunks")
}

func TestIngestRequiresGroup(t *testing.T) {
	withServices(t, &stubGroupService{}, &stubIngestionService{}, &stubRetrievalService{})
	ingestGroup = 0

	_, err := execute(t, "ingest", "whatever.txt")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "--group is required")
}

func TestAskCommand(t *testing.T) {
	retrieval := &stubRetrievalService{answer: &domain.Answer{
		Query:       "how much leave",
		Answer:      "20 days of paid leave.",
		GroupUsed:   "hr",
		ChunksFound: 3,
	}}
	withServices(t, &stubGroupService{}, &stubIngestionService{}, retrieval)
	askGroup = 0

	out, err := execute(t, "ask", "how", "much", "leave")

	require.NoError(t, err)
	assert.Contains(t, out, "20 days of paid leave.")
	assert.Contains(t, out, "group: hr")
	assert.Equal(t, "how much leave", retrieval.lastQuery)
	assert.Nil(t, retrieval.lastGroup)
}

func TestAskWithExplicitGroup(t *testing.T) {
	retrieval := &stubRetrievalService{answer: &domain.Answer{Answer: "ok", GroupUsed: "hr"}}
	withServices(t, &stubGroupService{}, &stubIngestionService{}, retrieval)

	_, err := execute(t, "ask", "leave?", "--group", "2")

	require.NoError(t, err)
	require.NotNil(t, retrieval.lastGroup)
	assert.Equal(t, int64(2), *retrieval.lastGroup)
}

func TestAskPropagatesErrors(t *testing.T) {
	retrieval := &stubRetrievalService{err: errors.New("router offline")}
	withServices(t, &stubGroupService{}, &stubIngestionService{}, retrieval)
	askGroup = 0

	_, err := execute(t, "ask", "anything")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "router offline")
}

func TestSearchCommand(t *testing.T) {
	retrieval := &stubRetrievalService{matches: []domain.ChunkMatch{
		{ChunkID: "doc_d1_chunk_0", Content: "annual leave policy", Score: 0.12},
	}}
	withServices(t, &stubGroupService{}, &stubIngestionService{}, retrieval)

	out, err := execute(t, "search", "leave", "--group", "1")

	require.NoError(t, err)
	assert.Contains(t, out, "doc_d1_chunk_0")
	assert.Contains(t, out, "annual leave policy")
}

func TestSearchRequiresGroup(t *testing.T) {
	withServices(t, &stubGroupService{}, &stubIngestionService{}, &stubRetrievalService{})
	searchGroup = 0

	_, err := execute(t, "search", "leave")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "--group is required")
}

func TestDocumentDelete(t *testing.T) {
	ingest := &stubIngestionService{}
	withServices(t, &stubGroupService{}, ingest, &stubRetrievalService{})

	out, err := execute(t, "document", "delete", "doc-9")

	require.NoError(t, err)
	assert.Contains(t, out, "Deleted document doc-9")
	assert.Equal(t, "doc-9", ingest.deletedID)
}

func TestDocumentSummary(t *testing.T) {
	retrieval := &stubRetrievalService{summary: "A short summary."}
	withServices(t, &stubGroupService{}, &stubIngestionService{}, retrieval)

	out, err := execute(t, "document", "summary", "doc-9")

	require.NoError(t, err)
	assert.Contains(t, out, "A short summary.")
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "a b", truncate("a\nb", 10))
	assert.Equal(t, "abcde...", truncate("abcdefgh", 5))
}
