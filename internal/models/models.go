package models

// Chunk represents a parsed chunk with metadata
type Chunk struct {
	Content    string
	PageNumber int
	ChunkID    int
	Offset     int
}

// ChunkEmbedding pairs a chunk with its embedding vector and source file
type ChunkEmbedding struct {
	Content        string
	Embedding      []float32
	SourceFilename string
	PageNumber     int
	ChunkID        int
}

// SearchResult is an index entry returned from a similarity search
type SearchResult struct {
	ChunkEmbedding
	Similarity float32
}

// Citation identifies the source document and page of a retrieved chunk
type Citation struct {
	Document string
	Page     int
}

type PromptResponse struct {
	Query     string
	Source    string
	Content   string
	Citations []Citation
}
