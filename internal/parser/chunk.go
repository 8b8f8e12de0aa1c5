package parser

import (
	"fmt"

	"textbook-rag/internal/models"
)

// ChunkText splits content into rune windows of the given size with the given
// overlap between consecutive chunks. Coverage is exact: the first chunk plus
// each subsequent chunk minus its first overlap runes reconstructs the input.
// The final chunk may be shorter than size.
func ChunkText(content string, size, overlap int) ([]string, error) {
	if size <= 0 {
		return nil, fmt.Errorf("%w: chunk size %d must be positive", models.ErrInvalidConfiguration, size)
	}
	if overlap < 0 || overlap >= size {
		return nil, fmt.Errorf("%w: chunk overlap %d must be in [0, %d)", models.ErrInvalidConfiguration, overlap, size)
	}

	runes := []rune(content)
	if len(runes) == 0 {
		return nil, nil
	}

	step := size - overlap
	var chunks []string
	for start := 0; start < len(runes); start += step {
		end := start + size
		if end > len(runes) {
			end = len(runes)
		}
		chunks = append(chunks, string(runes[start:end]))
		if end == len(runes) {
			break
		}
	}
	return chunks, nil
}

// getChunks turns page content into chunks with page number, 1-based chunk id
// and rune offset into the page.
func (p *ParserConfig) getChunks(content string, pageNumber int) ([]models.Chunk, error) {
	chunkStrings, err := ChunkText(content, p.Config.RAG.ChunkSize, p.Config.RAG.ChunkOverlap)
	if err != nil {
		return nil, err
	}

	step := p.Config.RAG.ChunkSize - p.Config.RAG.ChunkOverlap
	var chunks []models.Chunk
	for i, chunkString := range chunkStrings {
		chunks = append(chunks, models.Chunk{
			Content:    chunkString,
			PageNumber: pageNumber,
			ChunkID:    i + 1,
			Offset:     i * step,
		})
	}
	return chunks, nil
}
