package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"textbook-rag/internal/config"
	"textbook-rag/internal/embedding"
	"textbook-rag/internal/helper"
	"textbook-rag/internal/llmservice"
	"textbook-rag/internal/rag"
	"textbook-rag/internal/store"
)

const configFilePath = "./configs/config.yaml"

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	zerolog.SetGlobalLevel(zerolog.DebugLevel)
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}).With().Caller().Logger()

	configPath := flag.String("config", configFilePath, "Path to the config file")
	docsDir := flag.String("docs", "", "Directory containing the course documents")
	query := flag.String("query", "", "Single query mode (skip the interactive chat)")
	rebuild := flag.Bool("rebuild", false, "Rebuild the vector index from documents")
	model := flag.String("model", "", "Inference model override")
	embeddingModel := flag.String("embedding-model", "", "Embedding model override")
	flag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("Error loading config")
	}
	if *docsDir != "" {
		cfg.DocsDir = *docsDir
	}
	if *model != "" {
		cfg.InferLLM.Model = *model
	}
	if *embeddingModel != "" {
		cfg.EmbedLLM.Model = *embeddingModel
	}

	if cfg.Debug {
		helper.PrettyPrint(cfg)
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}

	ctx := context.Background()

	if cfg.Store == config.StoreChromem {
		if err := helper.CreateFolder(cfg.Chromem.Path); err != nil {
			log.Fatal().Err(err).Msg("Error creating index folder")
		}
	}
	vectorStore, err := store.New(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Error opening vector store")
	}
	defer vectorStore.Close()

	embedder, err := embedding.NewEmbedder(&cfg.EmbedLLM)
	if err != nil {
		log.Fatal().Err(err).Msg("Error initializing embedder")
	}

	generator, err := llmservice.NewClient(&cfg.InferLLM)
	if err != nil {
		log.Fatal().Err(err).Msg("Error initializing LLM")
	}

	bot := rag.NewRAG(vectorStore, embedder, generator, cfg)

	count, err := vectorStore.Count(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("Error reading vector store")
	}
	if *rebuild || count == 0 {
		log.Info().Str("docs", cfg.DocsDir).Msg("Building vector index")
		entries, err := bot.BuildIndex(ctx)
		if err != nil {
			log.Fatal().Err(err).Msg("Error building index")
		}
		log.Info().Int("entries", entries).Msg("Vector index ready")
	} else {
		log.Info().Int("entries", count).Msg("Loaded existing vector index")
	}

	if *query != "" {
		if err := answer(ctx, bot, *query); err != nil {
			log.Fatal().Err(err).Msg("Error querying")
		}
		return
	}

	chat(ctx, bot)
}

func answer(ctx context.Context, bot *rag.RAG, query string) error {
	response, err := bot.Query(ctx, query)
	if err != nil {
		return err
	}

	log.Info().Msg("Query: ~~~~~~~~~~~~~~~~~~~~~~~~~>>>>>")
	fmt.Printf("%s\n\n", response.Query)

	log.Info().Msg("Assistant: ~~~~~~~~~~~~~~~~~~~~~~~~~>>>>>")
	fmt.Printf("%s\n\n", response.Content)

	log.Info().Msg("Sources: ~~~~~~~~~~~~~~~~~~~~~~~~~>>>>>")
	for i, citation := range response.Citations {
		fmt.Printf("%d. %s (Page %d)\n", i+1, citation.Document, citation.Page)
	}
	fmt.Println()
	return nil
}

func chat(ctx context.Context, bot *rag.RAG) {
	fmt.Println("Ask questions about the course material.")
	fmt.Println("Type 'rebuild' to rebuild the index, 'quit' to leave.")

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("\nYou: ")
		if !scanner.Scan() {
			break
		}
		input := strings.TrimSpace(scanner.Text())
		if input == "" {
			continue
		}

		switch strings.ToLower(input) {
		case "quit", "exit", "q":
			fmt.Println("Goodbye!")
			return
		case "rebuild":
			entries, err := bot.BuildIndex(ctx)
			if err != nil {
				log.Error().Err(err).Msg("Error rebuilding index")
				continue
			}
			log.Info().Int("entries", entries).Msg("Vector index rebuilt")
			continue
		}

		if err := answer(ctx, bot, input); err != nil {
			log.Error().Err(err).Msg("Error querying")
		}
	}
}
