// Package file loads server configuration from a TOML file.
package file

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// Default configuration values.
const (
	DefaultConfigDir  = ".querra"
	DefaultConfigFile = "config.toml"
)

// Config is the full server configuration.
type Config struct {
	Server      ServerConfig      `toml:"server"`
	Embedding   EmbeddingConfig   `toml:"embedding"`
	VectorStore VectorStoreConfig `toml:"vectorstore"`
	Ingest      IngestConfig      `toml:"ingest"`
	Sessions    SessionsConfig    `toml:"sessions"`
}

// ServerConfig configures the NATS transport.
type ServerConfig struct {
	// NatsURL is the NATS server URL (default: nats://127.0.0.1:4222).
	NatsURL string `toml:"nats_url"`

	// Subject is the request subject (default: querra.rag).
	Subject string `toml:"subject"`

	// CollaboratorTimeoutSeconds bounds collaborator work per request
	// (default: 60).
	CollaboratorTimeoutSeconds int `toml:"collaborator_timeout_seconds"`
}

// EmbeddingConfig selects and configures the embedding provider.
type EmbeddingConfig struct {
	// Provider is "openai" or "ollama" (default: ollama).
	Provider string `toml:"provider"`

	// APIKey authenticates against the provider. The QUERRA_API_KEY
	// environment variable takes precedence.
	APIKey string `toml:"api_key"`

	// Model overrides the provider's default embedding model.
	Model string `toml:"model"`

	// BaseURL overrides the provider's default API base URL.
	BaseURL string `toml:"base_url"`
}

// VectorStoreConfig selects and configures the vector store backend.
type VectorStoreConfig struct {
	// Provider is "qdrant", "sqlite" or "memory" (default: sqlite).
	Provider string `toml:"provider"`

	// URL is the Qdrant base URL.
	URL string `toml:"url"`

	// APIKey authenticates against Qdrant when set.
	APIKey string `toml:"api_key"`

	// Path is the SQLite database path (default: <config dir>/querra.db).
	Path string `toml:"path"`

	// VectorSize is the embedding dimension, required for Qdrant.
	VectorSize int `toml:"vector_size"`
}

// IngestConfig tunes chunking, crawling and retrieval.
type IngestConfig struct {
	ChunkSize    int `toml:"chunk_size"`
	ChunkOverlap int `toml:"chunk_overlap"`
	TopK         int `toml:"top_k"`

	// UserAgent is sent on crawler requests.
	UserAgent string `toml:"user_agent"`

	// FetchTimeoutSeconds bounds a single page fetch (default: 10).
	FetchTimeoutSeconds int `toml:"fetch_timeout_seconds"`
}

// SessionsConfig tunes the chat session registry.
type SessionsConfig struct {
	// AllowReinit lets a repeated init_chat rebind an existing session
	// instead of failing (default: false).
	AllowReinit bool `toml:"allow_reinit"`
}

// DefaultPath returns the default config file path, ~/.querra/config.toml.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home directory: %w", err)
	}
	return filepath.Join(home, DefaultConfigDir, DefaultConfigFile), nil
}

// Load reads the config file at path and applies defaults. A missing
// file yields the defaults rather than an error; a malformed file does
// not.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	} else if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}

	cfg.applyDefaults(filepath.Dir(path))
	return cfg, nil
}

func (c *Config) applyDefaults(configDir string) {
	if c.Server.NatsURL == "" {
		c.Server.NatsURL = "nats://127.0.0.1:4222"
	}
	if c.Server.Subject == "" {
		c.Server.Subject = "querra.rag"
	}
	if c.Server.CollaboratorTimeoutSeconds <= 0 {
		c.Server.CollaboratorTimeoutSeconds = 60
	}
	if c.Embedding.Provider == "" {
		c.Embedding.Provider = "ollama"
	}
	if key := os.Getenv("QUERRA_API_KEY"); key != "" {
		c.Embedding.APIKey = key
	}
	if c.VectorStore.Provider == "" {
		c.VectorStore.Provider = "sqlite"
	}
	if c.VectorStore.Path == "" {
		c.VectorStore.Path = filepath.Join(configDir, "querra.db")
	}
	if c.Ingest.FetchTimeoutSeconds <= 0 {
		c.Ingest.FetchTimeoutSeconds = 10
	}
}

// CollaboratorTimeout returns the configured timeout as a duration.
func (c *Config) CollaboratorTimeout() time.Duration {
	return time.Duration(c.Server.CollaboratorTimeoutSeconds) * time.Second
}

// FetchTimeout returns the configured page fetch timeout as a duration.
func (c *Config) FetchTimeout() time.Duration {
	return time.Duration(c.Ingest.FetchTimeoutSeconds) * time.Second
}
