package embedding

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"textbook-rag/internal/config"
	"textbook-rag/internal/models"
)

type stubEmbedder struct {
	dimension int
	calls     []string
	fail      bool
}

func (s *stubEmbedder) EmbedQuery(_ context.Context, text string) ([]float32, error) {
	if s.fail {
		return nil, fmt.Errorf("dial tcp: connection refused")
	}
	s.calls = append(s.calls, text)
	vector := make([]float32, s.dimension)
	vector[0] = float32(len(text))
	return vector, nil
}

func TestGenerateEmbedding_MapsChunks(t *testing.T) {
	stub := &stubEmbedder{dimension: 8}
	chunks := []models.Chunk{
		{Content: "first chunk", PageNumber: 1, ChunkID: 1},
		{Content: "second chunk", PageNumber: 1, ChunkID: 2},
		{Content: "third chunk", PageNumber: 2, ChunkID: 1},
	}

	embeddings, err := GenerateEmbedding(context.Background(), stub, "MRlib.pdf", chunks)
	require.NoError(t, err)
	require.Len(t, embeddings, 3)

	assert.Equal(t, []string{"first chunk", "second chunk", "third chunk"}, stub.calls)
	for i, emb := range embeddings {
		assert.Equal(t, chunks[i].Content, emb.Content)
		assert.Equal(t, chunks[i].PageNumber, emb.PageNumber)
		assert.Equal(t, chunks[i].ChunkID, emb.ChunkID)
		assert.Equal(t, "MRlib.pdf", emb.SourceFilename)
		assert.Len(t, emb.Embedding, 8)
	}
}

func TestGenerateEmbedding_NoChunks(t *testing.T) {
	embeddings, err := GenerateEmbedding(context.Background(), &stubEmbedder{dimension: 8}, "empty.txt", nil)
	require.NoError(t, err)
	assert.Nil(t, embeddings)
}

func TestGenerateEmbedding_BackendUnavailable(t *testing.T) {
	stub := &stubEmbedder{dimension: 8, fail: true}
	chunks := []models.Chunk{{Content: "chunk", PageNumber: 1, ChunkID: 1}}

	_, err := GenerateEmbedding(context.Background(), stub, "MRlib.pdf", chunks)
	require.ErrorIs(t, err, models.ErrBackendUnavailable)
}

func TestProbe(t *testing.T) {
	dimension, err := Probe(context.Background(), &stubEmbedder{dimension: 768})
	require.NoError(t, err)
	assert.Equal(t, 768, dimension)

	_, err = Probe(context.Background(), &stubEmbedder{dimension: 768, fail: true})
	require.ErrorIs(t, err, models.ErrBackendUnavailable)
}

func TestNewEmbedder_UnknownProvider(t *testing.T) {
	_, err := NewEmbedder(&config.LLMConfig{Provider: "gemini"})
	require.ErrorIs(t, err, models.ErrInvalidConfiguration)
}

func TestNewEmbedder_Ollama(t *testing.T) {
	embedder, err := NewEmbedder(&config.LLMConfig{
		Provider: config.ProviderOllama,
		BaseURL:  "http://localhost:11434",
		Model:    "nomic-embed-text",
	})
	require.NoError(t, err)
	assert.NotNil(t, embedder)
}
