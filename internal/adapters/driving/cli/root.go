// Package cli provides the cobra command tree for corpora.
// Commands talk to the core through driving port interfaces; wiring of
// concrete adapters happens once in initServices.
package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	configfile "github.com/custodia-labs/corpora/internal/adapters/driven/config/file"
	"github.com/custodia-labs/corpora/internal/adapters/driven/embedding"
	embeddingollama "github.com/custodia-labs/corpora/internal/adapters/driven/embedding/ollama"
	embeddingopenai "github.com/custodia-labs/corpora/internal/adapters/driven/embedding/openai"
	"github.com/custodia-labs/corpora/internal/adapters/driven/extractor"
	llmanthropic "github.com/custodia-labs/corpora/internal/adapters/driven/llm/anthropic"
	llmollama "github.com/custodia-labs/corpora/internal/adapters/driven/llm/ollama"
	llmopenai "github.com/custodia-labs/corpora/internal/adapters/driven/llm/openai"
	storagesqlite "github.com/custodia-labs/corpora/internal/adapters/driven/storage/sqlite"
	vectormem "github.com/custodia-labs/corpora/internal/adapters/driven/vector/memory"
	vectorqdrant "github.com/custodia-labs/corpora/internal/adapters/driven/vector/qdrant"
	vectorsqlite "github.com/custodia-labs/corpora/internal/adapters/driven/vector/sqlite"
	"github.com/custodia-labs/corpora/internal/core/ports/driven"
	"github.com/custodia-labs/corpora/internal/core/ports/driving"
	"github.com/custodia-labs/corpora/internal/core/services"
	"github.com/custodia-labs/corpora/internal/logger"
	"github.com/custodia-labs/corpora/internal/splitter"
)

// version is set at build time via -ldflags.
var version = "dev"

// SetVersion overrides the reported version (used by main).
func SetVersion(v string) {
	version = v
}

// Wired adapters and services, shared by all commands.
var (
	configStore      driven.ConfigStore
	promptStore      driven.PromptStore
	metaStore        *storagesqlite.Store
	vectorIndex      driven.VectorIndex
	extractorReg     *extractor.Registry
	groupService     driving.GroupService
	ingestionService driving.IngestionService
	retrievalService driving.RetrievalService
)

var (
	flagVerbose   bool
	flagConfigDir string
)

var rootCmd = &cobra.Command{
	Use:   "corpora",
	Short: "Group-scoped document Q&A from the command line",
	Long: `Corpora ingests documents into named groups and answers questions
against them: queries are routed to the right group, searched by
embedding similarity inside it, and answered by an LLM grounded in the
retrieved chunks.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		logger.SetVerbose(flagVerbose)
		// version and help need no services.
		if cmd.Name() == "version" || cmd.Name() == "help" {
			return nil
		}
		return initServices()
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "enable verbose logging")
	rootCmd.PersistentFlags().StringVar(&flagConfigDir, "config-dir", "", "configuration directory (default ~/.corpora)")
}

// Execute runs the root command.
func Execute() error {
	defer shutdown()
	return rootCmd.Execute()
}

// initServices wires adapters to services from configuration.
// Idempotent: tests may pre-populate the globals to skip wiring.
func initServices() error {
	if retrievalService != nil {
		return nil
	}

	var err error
	configStore, err = configfile.NewConfigStore(flagConfigDir)
	if err != nil {
		return fmt.Errorf("open config: %w", err)
	}
	promptStore, err = configfile.NewPromptStore(promptDir())
	if err != nil {
		return fmt.Errorf("open prompt store: %w", err)
	}

	metaStore, err = storagesqlite.NewStore(dataDir())
	if err != nil {
		return fmt.Errorf("open metadata store: %w", err)
	}

	embedder, err := buildEmbedder()
	if err != nil {
		return err
	}

	vectorIndex, err = buildVectorIndex(embedder.Dimensions())
	if err != nil {
		return err
	}

	llm := buildLLM()

	extractorReg = extractor.NewRegistry()
	split := buildSplitter()

	groupService = services.NewGroupService(metaStore.GroupStore(), metaStore.DocumentStore(), vectorIndex)
	ingestionService = services.NewIngestionService(
		metaStore.GroupStore(), metaStore.DocumentStore(), metaStore.ChunkStore(),
		vectorIndex, embedder, extractorReg, split,
	)

	var resolver driving.GroupResolver
	if llm != nil {
		resolver = services.NewGroupRouter(llm, promptStore)
	}
	retrieval := services.NewRetrievalService(
		metaStore.GroupStore(), metaStore.DocumentStore(), metaStore.ChunkStore(),
		vectorIndex, embedder, llm, resolver,
	)
	retrieval.SetPromptStore(promptStore)
	retrievalService = retrieval

	return nil
}

// shutdown closes wired adapters, tolerating partial wiring.
func shutdown() {
	if vectorIndex != nil {
		if err := vectorIndex.Close(); err != nil {
			logger.Warn("Closing vector index: %v", err)
		}
	}
	if metaStore != nil {
		if err := metaStore.Close(); err != nil {
			logger.Warn("Closing metadata store: %v", err)
		}
	}
}

// buildEmbedder selects the embedding provider from configuration.
func buildEmbedder() (driven.EmbeddingService, error) {
	var svc driven.EmbeddingService

	switch provider := configStore.GetString("embedding.provider"); provider {
	case "", "ollama":
		svc = embeddingollama.NewEmbeddingService(embeddingollama.Config{
			BaseURL:    configStore.GetString("embedding.base_url"),
			Model:      configStore.GetString("embedding.model"),
			Dimensions: configStore.GetInt("embedding.dimensions"),
		})
	case "openai":
		var err error
		svc, err = embeddingopenai.NewEmbeddingService(embeddingopenai.Config{
			APIKey:     apiKey("embedding.api_key", "OPENAI_API_KEY"),
			BaseURL:    configStore.GetString("embedding.base_url"),
			Model:      configStore.GetString("embedding.model"),
			Dimensions: configStore.GetInt("embedding.dimensions"),
		})
		if err != nil {
			return nil, fmt.Errorf("configure openai embeddings: %w", err)
		}
	default:
		return nil, fmt.Errorf("unknown embedding provider %q", provider)
	}

	return embedding.NewRateLimited(svc, embedding.RateLimitConfig{
		RequestsPerSecond: float64(configStore.GetInt("embedding.requests_per_second")),
		BurstSize:         configStore.GetInt("embedding.burst_size"),
	}), nil
}

// buildLLM selects the LLM provider from configuration. Returns nil
// when the configured provider cannot be constructed; retrieval then
// degrades to raw context answers.
func buildLLM() driven.LLMService {
	switch provider := configStore.GetString("llm.provider"); provider {
	case "", "ollama":
		svc := llmollama.NewLLMService(llmollama.LLMConfig{
			BaseURL: configStore.GetString("llm.base_url"),
			Model:   configStore.GetString("llm.model"),
		})
		svc.SetPromptStore(promptStore)
		return svc
	case "openai":
		svc, err := llmopenai.NewLLMService(llmopenai.LLMConfig{
			APIKey:  apiKey("llm.api_key", "OPENAI_API_KEY"),
			BaseURL: configStore.GetString("llm.base_url"),
			Model:   configStore.GetString("llm.model"),
		})
		if err != nil {
			logger.Warn("OpenAI LLM not configured: %v", err)
			return nil
		}
		svc.SetPromptStore(promptStore)
		return svc
	case "anthropic":
		svc, err := llmanthropic.NewLLMService(llmanthropic.Config{
			APIKey:  apiKey("llm.api_key", "ANTHROPIC_API_KEY"),
			BaseURL: configStore.GetString("llm.base_url"),
			Model:   configStore.GetString("llm.model"),
		})
		if err != nil {
			logger.Warn("Anthropic LLM not configured: %v", err)
			return nil
		}
		svc.SetPromptStore(promptStore)
		return svc
	default:
		logger.Warn("Unknown LLM provider %q, answers degrade to raw context", provider)
		return nil
	}
}

// buildVectorIndex selects the vector backend from configuration.
func buildVectorIndex(dimensions int) (driven.VectorIndex, error) {
	switch backend := configStore.GetString("vector.backend"); backend {
	case "", "sqlite":
		idx, err := vectorsqlite.NewIndex(dataDir())
		if err != nil {
			return nil, fmt.Errorf("open sqlite vector index: %w", err)
		}
		return idx, nil
	case "qdrant":
		idx, err := vectorqdrant.NewIndex(vectorqdrant.Config{
			BaseURL:    configStore.GetString("vector.base_url"),
			APIKey:     configStore.GetString("vector.api_key"),
			Collection: configStore.GetString("vector.collection"),
			Dimensions: dimensions,
			Timeout:    time.Duration(configStore.GetInt("vector.timeout_seconds")) * time.Second,
		})
		if err != nil {
			return nil, fmt.Errorf("connect to qdrant: %w", err)
		}
		return idx, nil
	case "memory":
		return vectormem.NewIndex(), nil
	default:
		return nil, fmt.Errorf("unknown vector backend %q", backend)
	}
}

// buildSplitter reads chunking parameters from configuration.
func buildSplitter() *splitter.Splitter {
	opts := []splitter.Option{}
	if size := configStore.GetInt("chunking.chunk_size"); size > 0 {
		opts = append(opts, splitter.WithChunkSize(size))
	}
	if overlap := configStore.GetInt("chunking.overlap"); overlap > 0 {
		opts = append(opts, splitter.WithOverlap(overlap))
	}
	return splitter.New(opts...)
}

// apiKey reads a key from config with an environment fallback.
func apiKey(configKey, envVar string) string {
	if key := configStore.GetString(configKey); key != "" {
		return key
	}
	return os.Getenv(envVar)
}

// dataDir resolves the data directory under the config dir.
func dataDir() string {
	if flagConfigDir != "" {
		return filepath.Join(flagConfigDir, "data")
	}
	return "" // Adapters default to ~/.corpora/data.
}

// promptDir resolves the prompt directory under the config dir.
func promptDir() string {
	if flagConfigDir != "" {
		return filepath.Join(flagConfigDir, "prompts")
	}
	return "" // Adapter defaults to ~/.corpora/prompts.
}
