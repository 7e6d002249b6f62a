package services

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/custodia-labs/corpora/internal/core/domain"
	"github.com/custodia-labs/corpora/internal/core/ports/driven"
	"github.com/custodia-labs/corpora/internal/core/ports/driving"
	"github.com/custodia-labs/corpora/internal/logger"
)

// Ensure GroupRouter implements the interface.
var _ driving.GroupResolver = (*GroupRouter)(nil)

// defaultRoutingPrompt is the fallback prompt when no PromptStore is configured.
const defaultRoutingPrompt = `You are a helpful AI assistant that selects which group suits the user's query best based on the group's description.

GROUPS:
%s

QUESTION: %s

INSTRUCTIONS:
- Select and return only the group id that suits the user's query best based on the group's description.
- If no group's description fits the question, return 0.
- **MUST** return only the group id.

ANSWER:`

// GroupRouter classifies queries against group descriptions with an LLM.
//
// The model is asked for a bare group id, with 0 as the "nothing fits"
// sentinel. Output that cannot be parsed, names an unknown group, or is
// the sentinel counts as "no match", not as an error: a confused model
// degrades to unrouted behaviour instead of failing the query.
type GroupRouter struct {
	llm         driven.LLMService
	promptStore driven.PromptStore
}

// NewGroupRouter creates a new group router.
// The promptStore parameter is optional (can be nil).
func NewGroupRouter(llm driven.LLMService, promptStore driven.PromptStore) *GroupRouter {
	return &GroupRouter{
		llm:         llm,
		promptStore: promptStore,
	}
}

// ResolveGroup classifies the query against the candidate groups'
// descriptions. Returns domain.ErrRouting only when the LLM call itself
// fails; every unusable answer is (0, false, nil).
func (r *GroupRouter) ResolveGroup(
	ctx context.Context, query string, candidates []domain.Group,
) (int64, bool, error) {
	if len(candidates) == 0 {
		logger.Debug("No candidate groups, skipping routing")
		return 0, false, nil
	}
	if r.llm == nil {
		return 0, false, fmt.Errorf("%w: no LLM configured", domain.ErrRouting)
	}

	prompt := fmt.Sprintf(r.loadPrompt(), formatCandidates(candidates), query)

	raw, err := r.llm.Generate(ctx, prompt, driven.GenerateOptions{
		MaxTokens:   16,
		Temperature: 0.0,
	})
	if err != nil {
		return 0, false, fmt.Errorf("%w: %v", domain.ErrRouting, err)
	}

	output := strings.TrimSpace(raw)
	logger.Debug("Router output: %q", output)

	id, err := strconv.ParseInt(output, 10, 64)
	if err != nil {
		logger.Debug("Router output not a group id, treating as no match")
		return 0, false, nil
	}
	if id == 0 {
		return 0, false, nil
	}

	for _, g := range candidates {
		if g.ID == id {
			logger.Info("Routed query to group %d (%s)", g.ID, g.Name)
			return id, true, nil
		}
	}

	logger.Debug("Router chose unknown group %d, treating as no match", id)
	return 0, false, nil
}

// loadPrompt returns the routing template from the store or the default.
func (r *GroupRouter) loadPrompt() string {
	if r.promptStore == nil {
		return defaultRoutingPrompt
	}
	prompt, err := r.promptStore.Load(driven.PromptGroupRouting)
	if err != nil {
		return defaultRoutingPrompt
	}
	return prompt
}

// formatCandidates renders groups as "id: description" lines for the prompt.
func formatCandidates(groups []domain.Group) string {
	var b strings.Builder
	for i, g := range groups {
		if i > 0 {
			b.WriteByte('\n')
		}
		fmt.Fprintf(&b, "%d: %s", g.ID, g.Description)
	}
	return b.String()
}
