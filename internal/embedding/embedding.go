package embedding

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/tmc/langchaingo/embeddings"
	"github.com/tmc/langchaingo/llms/ollama"
	"github.com/tmc/langchaingo/llms/openai"

	"textbook-rag/internal/config"
	"textbook-rag/internal/models"
)

// Embedder maps text to a fixed-length vector.
type Embedder interface {
	EmbedQuery(ctx context.Context, text string) ([]float32, error)
}

var _ Embedder = (*embeddings.EmbedderImpl)(nil)

const progressBatchSize = 10

// NewEmbedder creates an embedder for the backend named in the config.
func NewEmbedder(llmConfig *config.LLMConfig) (*embeddings.EmbedderImpl, error) {
	var client embeddings.EmbedderClient

	switch llmConfig.Provider {
	case config.ProviderOllama:
		llm, err := ollama.New(
			ollama.WithServerURL(llmConfig.BaseURL),
			ollama.WithModel(llmConfig.Model),
		)
		if err != nil {
			return nil, fmt.Errorf("error initializing ollama embedder: %w", err)
		}
		client = llm
	case config.ProviderOpenAI:
		llm, err := openai.New(
			openai.WithBaseURL(llmConfig.BaseURL),
			openai.WithToken(strings.TrimPrefix(llmConfig.Key, "Bearer ")),
			openai.WithModel(llmConfig.Model),
		)
		if err != nil {
			return nil, fmt.Errorf("error initializing openai embedder: %w", err)
		}
		client = llm
	default:
		return nil, fmt.Errorf("%w: unknown embedding provider %q", models.ErrInvalidConfiguration, llmConfig.Provider)
	}

	embedder, err := embeddings.NewEmbedder(client)
	if err != nil {
		return nil, fmt.Errorf("error creating embedder: %w", err)
	}
	return embedder, nil
}

// GenerateEmbedding embeds every chunk of a file, preserving chunk order.
func GenerateEmbedding(ctx context.Context, embedder Embedder, filename string, chunks []models.Chunk) ([]models.ChunkEmbedding, error) {
	if len(chunks) == 0 {
		log.Info().Str("file", filename).Msg("No chunks generated from content")
		return nil, nil
	}

	chunkEmbeddings := make([]models.ChunkEmbedding, 0, len(chunks))
	for i, chunk := range chunks {
		vector, err := embedder.EmbedQuery(ctx, chunk.Content)
		if err != nil {
			return nil, fmt.Errorf("%w: embedding chunk %d of %s: %v", models.ErrBackendUnavailable, chunk.ChunkID, filename, err)
		}
		chunkEmbeddings = append(chunkEmbeddings, models.ChunkEmbedding{
			Content:        chunk.Content,
			Embedding:      vector,
			SourceFilename: filename,
			PageNumber:     chunk.PageNumber,
			ChunkID:        chunk.ChunkID,
		})
		if (i+1)%progressBatchSize == 0 {
			log.Debug().Int("done", i+1).Int("total", len(chunks)).Str("file", filename).Msg("Embedding progress")
		}
	}
	return chunkEmbeddings, nil
}

// Probe embeds a short test string to verify the backend is reachable and
// reports the vector dimension.
func Probe(ctx context.Context, embedder Embedder) (int, error) {
	vector, err := embedder.EmbedQuery(ctx, "test")
	if err != nil {
		return 0, fmt.Errorf("%w: %v", models.ErrBackendUnavailable, err)
	}
	return len(vector), nil
}
