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

	"document-chat/internal/chromemdb"
	"document-chat/internal/config"
	"document-chat/internal/db"
	"document-chat/internal/embedding"
	"document-chat/internal/helper"
	"document-chat/internal/index"
	"document-chat/internal/ingest"
	"document-chat/internal/llmservice"
	"document-chat/internal/rag"
	"document-chat/internal/retriever"
)

const configFilePath = "./configs/config.yaml"

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}).With().Caller().Logger()

	configPath := flag.String("config", configFilePath, "Path to the config file")
	filePath := flag.String("file", "", "Path to a document file to ingest")
	dirPath := flag.String("dir", "", "Directory of documents to ingest")
	seed := flag.Bool("seed", false, "Seed the knowledge base with the built-in fact corpus")
	query := flag.String("query", "", "One-shot question to answer")
	chat := flag.Bool("chat", false, "Start an interactive chat session")
	strategy := flag.String("strategy", "direct", "Response strategy: direct or tools")
	showConfig := flag.Bool("show-config", false, "Print the effective configuration and exit")
	verbose := flag.Bool("verbose", false, "Enable debug logging")
	flag.Parse()

	if *verbose {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("Error loading config")
	}

	if *showConfig {
		helper.PrettyPrint(cfg)
		return
	}

	ctx := context.Background()

	svc, cleanup, err := buildIndexService(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Error initializing index backend")
	}
	defer cleanup()

	manager := index.NewManager(svc, &cfg.Index)
	handle := manager.EnsureIndex(ctx, index.Spec{
		Name:   cfg.Index.Name,
		Cloud:  cfg.Index.Cloud,
		Region: cfg.Index.Region,
		Embed: index.EmbedSpec{
			Model:     cfg.Index.EmbeddingModel,
			TextField: cfg.Index.TextField,
		},
	})

	pipeline := ingest.NewPipeline(handle, &cfg.RAG)

	switch {
	case *seed:
		summary, err := pipeline.SeedDefaultKnowledge(ctx)
		if err != nil {
			log.Fatal().Err(err).Msg("Error seeding knowledge base")
		}
		fmt.Println(summary)
	case *filePath != "":
		n, err := pipeline.Ingest(ctx, *filePath)
		if err != nil {
			log.Fatal().Err(err).Int("written", n).Msg("Error ingesting document")
		}
		fmt.Printf("ingested %s (%d records)\n", *filePath, n)
	case *dirPath != "":
		n, err := pipeline.IngestDir(ctx, *dirPath)
		if err != nil {
			log.Fatal().Err(err).Msg("Error ingesting directory")
		}
		fmt.Printf("ingested %s (%d records)\n", *dirPath, n)
	case *query != "":
		session, err := buildSession(cfg, handle, *strategy)
		if err != nil {
			log.Fatal().Err(err).Msg("Error initializing session")
		}
		answer, err := session.Chat(ctx, *query)
		if err != nil {
			log.Fatal().Err(err).Msg("Error generating response")
		}
		fmt.Printf("%s\n", answer)
	case *chat:
		session, err := buildSession(cfg, handle, *strategy)
		if err != nil {
			log.Fatal().Err(err).Msg("Error initializing session")
		}
		runChatLoop(ctx, session, pipeline)
	default:
		flag.Usage()
	}
}

func loadConfig(path string) (*config.Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		log.Debug().Str("path", path).Msg("config file not found, using defaults")
		return config.Default(), nil
	}
	return config.LoadConfig(path)
}

// buildIndexService wires the configured backend behind the index service
// interface. Local backends need an embedder to honor the index's embedding
// model binding; the remote backend embeds server-side.
func buildIndexService(cfg *config.Config) (index.Service, func(), error) {
	noop := func() {}
	switch cfg.Index.Backend {
	case "remote":
		return index.NewRemoteService(&cfg.Index), noop, nil
	case "chromem":
		embedder, err := embedding.FromConfig(&cfg.EmbedLLM)
		if err != nil {
			return nil, noop, err
		}
		svc, err := chromemdb.NewService(cfg.Index.Path, cfg.Index.InMemory, embedding.ChromemFunc(embedder))
		if err != nil {
			return nil, noop, err
		}
		return svc, noop, nil
	case "postgres":
		embedder, err := embedding.FromConfig(&cfg.EmbedLLM)
		if err != nil {
			return nil, noop, err
		}
		sqldb, err := db.ConnectDB(&cfg.Database)
		if err != nil {
			return nil, noop, err
		}
		svc := db.NewService(db.NewDB(sqldb, cfg.Database.Debug), embedder)
		return svc, func() { _ = svc.Close() }, nil
	default:
		return nil, noop, fmt.Errorf("unknown index backend: %s", cfg.Index.Backend)
	}
}

func buildSession(cfg *config.Config, handle *index.Handle, strategy string) (*rag.Session, error) {
	client, err := llmservice.NewClient(&cfg.LLM)
	if err != nil {
		return nil, err
	}

	opts := []rag.Option{rag.WithTopK(cfg.RAG.TopK)}
	switch strategy {
	case "direct":
	case "tools":
		opts = append(opts, rag.WithStrategy(&rag.ToolLoop{}))
	default:
		return nil, fmt.Errorf("unknown strategy: %s", strategy)
	}

	return rag.NewSession(retriever.New(handle, &cfg.RAG), client, opts...), nil
}

// runChatLoop reads questions from stdin until EOF. Per-turn errors are
// shown to the user and never end the session.
func runChatLoop(ctx context.Context, session *rag.Session, pipeline *ingest.Pipeline) {
	fmt.Println("Chat session started. Commands: /reset, /seed, /quit")
	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())
		switch {
		case line == "":
			continue
		case line == "/quit":
			return
		case line == "/reset":
			session.Memory().Reset()
			fmt.Println("conversation memory cleared")
			continue
		case line == "/seed":
			summary, err := pipeline.SeedDefaultKnowledge(ctx)
			if err != nil {
				fmt.Printf("seeding failed: %v\n", err)
				continue
			}
			fmt.Println(summary)
			continue
		}

		answer, err := session.Chat(ctx, line)
		if err != nil {
			fmt.Printf("I encountered an error processing your request: %v\n", err)
			continue
		}
		fmt.Printf("%s\n\n", answer)
	}
}
