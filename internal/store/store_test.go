package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"textbook-rag/internal/config"
	"textbook-rag/internal/models"
)

func TestNew_Chromem(t *testing.T) {
	cfg := &config.Config{
		Store: config.StoreChromem,
		Chromem: config.ChromemConfig{
			Path:       t.TempDir(),
			Collection: "test_collection",
		},
	}

	s, err := New(cfg)
	require.NoError(t, err)
	defer s.Close()

	count, err := s.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}

func TestNew_UnknownStore(t *testing.T) {
	_, err := New(&config.Config{Store: "qdrant"})
	require.ErrorIs(t, err, models.ErrInvalidConfiguration)
}
