package cli

import (
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/veldtlabs/querra/internal/adapters/driven/config/file"
	"github.com/veldtlabs/querra/internal/adapters/driven/crawler"
	"github.com/veldtlabs/querra/internal/adapters/driven/embedding/ollama"
	"github.com/veldtlabs/querra/internal/adapters/driven/embedding/openai"
	"github.com/veldtlabs/querra/internal/adapters/driven/vectorstore/memory"
	"github.com/veldtlabs/querra/internal/adapters/driven/vectorstore/qdrant"
	"github.com/veldtlabs/querra/internal/adapters/driven/vectorstore/sqlite"
	"github.com/veldtlabs/querra/internal/adapters/driving/natsrpc"
	"github.com/veldtlabs/querra/internal/core/ports/driven"
	"github.com/veldtlabs/querra/internal/core/services"
	"github.com/veldtlabs/querra/internal/loaders"
	"github.com/veldtlabs/querra/internal/logger"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the RAG server",
	Long: `Connects to NATS and serves collection and query requests until
interrupted.`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	embedder, err := buildEmbedder(cfg)
	if err != nil {
		return err
	}
	defer embedder.Close() //nolint:errcheck

	store, err := buildStore(cfg)
	if err != nil {
		return err
	}
	defer store.Close() //nolint:errcheck

	fetcher := crawler.New(crawler.Config{
		UserAgent: cfg.Ingest.UserAgent,
		Timeout:   cfg.FetchTimeout(),
	})

	router := services.NewRouter(services.RouterConfig{
		Loader:              loaders.New(fetcher, cfg.Ingest.ChunkSize, cfg.Ingest.ChunkOverlap),
		Fetcher:             fetcher,
		Embedder:            embedder,
		Store:               store,
		Sessions:            services.NewSessionRegistry(cfg.Sessions.AllowReinit),
		TopK:                cfg.Ingest.TopK,
		ChunkSize:           cfg.Ingest.ChunkSize,
		ChunkOverlap:        cfg.Ingest.ChunkOverlap,
		CollaboratorTimeout: cfg.CollaboratorTimeout(),
	})

	server, err := natsrpc.New(natsrpc.Config{
		URL:     cfg.Server.NatsURL,
		Subject: cfg.Server.Subject,
	}, router)
	if err != nil {
		return err
	}
	defer server.Close() //nolint:errcheck

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Info("querra %s starting (embedding=%s store=%s)",
		version, cfg.Embedding.Provider, cfg.VectorStore.Provider)

	if err := server.Run(ctx); err != nil {
		return fmt.Errorf("server: %w", err)
	}
	logger.Info("shutting down")
	return nil
}

// buildEmbedder creates the configured embedding service.
func buildEmbedder(cfg *file.Config) (driven.EmbeddingService, error) {
	switch cfg.Embedding.Provider {
	case "openai":
		return openai.NewEmbeddingService(openai.Config{
			APIKey:  cfg.Embedding.APIKey,
			BaseURL: cfg.Embedding.BaseURL,
			Model:   cfg.Embedding.Model,
		})
	case "ollama":
		return ollama.NewEmbeddingService(ollama.Config{
			BaseURL: cfg.Embedding.BaseURL,
			Model:   cfg.Embedding.Model,
		}), nil
	default:
		return nil, fmt.Errorf("unknown embedding provider %q", cfg.Embedding.Provider)
	}
}

// buildStore creates the configured vector store backend.
func buildStore(cfg *file.Config) (driven.VectorStore, error) {
	switch cfg.VectorStore.Provider {
	case "qdrant":
		return qdrant.New(qdrant.Config{
			URL:        cfg.VectorStore.URL,
			APIKey:     cfg.VectorStore.APIKey,
			VectorSize: cfg.VectorStore.VectorSize,
			Timeout:    15 * time.Second,
		})
	case "sqlite":
		return sqlite.New(cfg.VectorStore.Path)
	case "memory":
		return memory.New(), nil
	default:
		return nil, fmt.Errorf("unknown vector store provider %q", cfg.VectorStore.Provider)
	}
}
