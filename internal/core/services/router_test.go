package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/corpora/internal/core/domain"
)

var routerCandidates = []domain.Group{
	{ID: 1, Name: "hr", Description: "HR policies, leave, benefits"},
	{ID: 2, Name: "legal", Description: "Contracts and NDAs"},
	{ID: 7, Name: "eng", Description: "Engineering runbooks"},
}

func TestResolveGroup_PicksCandidate(t *testing.T) {
	llm := &mockLLM{response: "2"}
	router := NewGroupRouter(llm, nil)

	id, ok, err := router.ResolveGroup(context.Background(), "what does our NDA say?", routerCandidates)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, int64(2), id)
}

func TestResolveGroup_TrimsOutput(t *testing.T) {
	llm := &mockLLM{response: "  7\n"}
	router := NewGroupRouter(llm, nil)

	id, ok, err := router.ResolveGroup(context.Background(), "deploy runbook", routerCandidates)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, int64(7), id)
}

func TestResolveGroup_ZeroSentinelMeansNoMatch(t *testing.T) {
	llm := &mockLLM{response: "0"}
	router := NewGroupRouter(llm, nil)

	_, ok, err := router.ResolveGroup(context.Background(), "weather tomorrow?", routerCandidates)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestResolveGroup_UnparseableOutputMeansNoMatch(t *testing.T) {
	tests := []struct {
		name     string
		response string
	}{
		{name: "prose", response: "The best group is HR."},
		{name: "id with prose", response: "group 1"},
		{name: "empty", response: ""},
		{name: "float", response: "1.0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := NewGroupRouter(&mockLLM{response: tt.response}, nil)

			_, ok, err := router.ResolveGroup(context.Background(), "query", routerCandidates)
			require.NoError(t, err)
			assert.False(t, ok)
		})
	}
}

func TestResolveGroup_UnknownIDMeansNoMatch(t *testing.T) {
	llm := &mockLLM{response: "42"}
	router := NewGroupRouter(llm, nil)

	_, ok, err := router.ResolveGroup(context.Background(), "query", routerCandidates)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestResolveGroup_LLMFailureIsRoutingError(t *testing.T) {
	llm := &mockLLM{generateErr: errors.New("connection refused")}
	router := NewGroupRouter(llm, nil)

	_, _, err := router.ResolveGroup(context.Background(), "query", routerCandidates)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrRouting))
}

func TestResolveGroup_NoCandidates(t *testing.T) {
	llm := &mockLLM{response: "1"}
	router := NewGroupRouter(llm, nil)

	_, ok, err := router.ResolveGroup(context.Background(), "query", nil)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, 0, llm.generateCnt, "no LLM call without candidates")
}

func TestResolveGroup_PromptCarriesDescriptions(t *testing.T) {
	llm := &mockLLM{response: "1"}
	router := NewGroupRouter(llm, nil)

	_, _, err := router.ResolveGroup(context.Background(), "how many leave days?", routerCandidates)
	require.NoError(t, err)

	assert.Contains(t, llm.lastPrompt, "1: HR policies, leave, benefits")
	assert.Contains(t, llm.lastPrompt, "2: Contracts and NDAs")
	assert.Contains(t, llm.lastPrompt, "how many leave days?")
}

func TestFormatCandidates(t *testing.T) {
	out := formatCandidates(routerCandidates)
	assert.Equal(t, "1: HR policies, leave, benefits\n2: Contracts and NDAs\n7: Engineering runbooks", out)
}
