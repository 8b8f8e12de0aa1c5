package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"textbook-rag/internal/models"
)

const (
	defaultDocsDir      = "./docs"
	defaultStore        = "chromem"
	defaultChromemPath  = "./chroma_db"
	defaultCollection   = "modern_robotics"
	defaultChunkSize    = 500
	defaultChunkOverlap = 100
	defaultTopK         = 4
	defaultVectorSize   = 768

	defaultOllamaURL      = "http://localhost:11434"
	defaultEmbeddingModel = "nomic-embed-text"
	defaultInferenceModel = "llama3.2"
	defaultTemperature    = 0.7

	ProviderOllama = "ollama"
	ProviderOpenAI = "openai"

	StoreChromem  = "chromem"
	StorePostgres = "postgres"
)

type LLMConfig struct {
	Provider    string  `yaml:"provider"`
	BaseURL     string  `yaml:"base_url"`
	Model       string  `yaml:"model"`
	Key         string  `yaml:"key"`
	Temperature float64 `yaml:"temperature"`
}

type ChromemConfig struct {
	Path       string `yaml:"path"`
	Collection string `yaml:"collection"`
	Compress   bool   `yaml:"compress"`
}

type DatabaseConfig struct {
	URL        string `yaml:"url"`
	Driver     string `yaml:"driver"`
	Debug      bool   `yaml:"debug"`
	VectorSize int    `yaml:"vector_size"`
}

type RAGConfig struct {
	ChunkSize    int `yaml:"chunk_size"`
	ChunkOverlap int `yaml:"chunk_overlap"`
	TopK         int `yaml:"top_k"`
}

type Config struct {
	Debug    bool           `yaml:"debug"`
	DocsDir  string         `yaml:"docs_dir"`
	Store    string         `yaml:"store"`
	Chromem  ChromemConfig  `yaml:"chromem"`
	Database DatabaseConfig `yaml:"database"`
	RAG      RAGConfig      `yaml:"rag"`
	EmbedLLM LLMConfig      `yaml:"embed_llm"`
	InferLLM LLMConfig      `yaml:"infer_llm"`
}

// LoadConfig reads the YAML config at path. A missing file yields defaults so
// the CLI runs without any setup against a local Ollama.
func LoadConfig(path string) (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	data, err := os.ReadFile(path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return nil, err
		}
	} else if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	applyDefaults(&cfg)
	applyEnv(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.DocsDir == "" {
		cfg.DocsDir = defaultDocsDir
	}
	if cfg.Store == "" {
		cfg.Store = defaultStore
	}
	if cfg.Chromem.Path == "" {
		cfg.Chromem.Path = defaultChromemPath
	}
	if cfg.Chromem.Collection == "" {
		cfg.Chromem.Collection = defaultCollection
	}
	if cfg.Database.VectorSize == 0 {
		cfg.Database.VectorSize = defaultVectorSize
	}
	if cfg.RAG.ChunkSize == 0 {
		cfg.RAG.ChunkSize = defaultChunkSize
	}
	if cfg.RAG.ChunkOverlap == 0 {
		cfg.RAG.ChunkOverlap = defaultChunkOverlap
	}
	if cfg.RAG.TopK == 0 {
		cfg.RAG.TopK = defaultTopK
	}
	if cfg.EmbedLLM.Provider == "" {
		cfg.EmbedLLM.Provider = ProviderOllama
	}
	if cfg.EmbedLLM.BaseURL == "" {
		cfg.EmbedLLM.BaseURL = defaultOllamaURL
	}
	if cfg.EmbedLLM.Model == "" {
		cfg.EmbedLLM.Model = defaultEmbeddingModel
	}
	if cfg.InferLLM.Provider == "" {
		cfg.InferLLM.Provider = ProviderOllama
	}
	if cfg.InferLLM.BaseURL == "" {
		cfg.InferLLM.BaseURL = defaultOllamaURL
	}
	if cfg.InferLLM.Model == "" {
		cfg.InferLLM.Model = defaultInferenceModel
	}
	if cfg.InferLLM.Temperature == 0 {
		cfg.InferLLM.Temperature = defaultTemperature
	}
}

// applyEnv overlays secrets from the environment so they stay out of the
// config file.
func applyEnv(cfg *Config) {
	if v := os.Getenv("DATABASE_URL"); v != "" {
		cfg.Database.URL = v
	}
	if v := os.Getenv("OPENAI_API_KEY"); v != "" {
		if cfg.EmbedLLM.Key == "" {
			cfg.EmbedLLM.Key = v
		}
		if cfg.InferLLM.Key == "" {
			cfg.InferLLM.Key = v
		}
	}
}

func (c *Config) Validate() error {
	if c.RAG.ChunkSize <= 0 {
		return fmt.Errorf("%w: chunk size %d must be positive", models.ErrInvalidConfiguration, c.RAG.ChunkSize)
	}
	if c.RAG.ChunkOverlap < 0 || c.RAG.ChunkOverlap >= c.RAG.ChunkSize {
		return fmt.Errorf("%w: chunk overlap %d must be in [0, %d)", models.ErrInvalidConfiguration, c.RAG.ChunkOverlap, c.RAG.ChunkSize)
	}
	if c.RAG.TopK <= 0 {
		return fmt.Errorf("%w: top_k %d must be positive", models.ErrInvalidConfiguration, c.RAG.TopK)
	}
	switch c.Store {
	case StoreChromem:
	case StorePostgres:
		if c.Database.URL == "" {
			return fmt.Errorf("%w: postgres store requires database.url or DATABASE_URL", models.ErrInvalidConfiguration)
		}
	default:
		return fmt.Errorf("%w: unknown store %q", models.ErrInvalidConfiguration, c.Store)
	}
	for _, llm := range []*LLMConfig{&c.EmbedLLM, &c.InferLLM} {
		switch llm.Provider {
		case ProviderOllama, ProviderOpenAI:
		default:
			return fmt.Errorf("%w: unknown LLM provider %q", models.ErrInvalidConfiguration, llm.Provider)
		}
	}
	return nil
}
