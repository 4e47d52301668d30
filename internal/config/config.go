// ABOUTME: Centralized configuration for the recall retrieval engine
// ABOUTME: Loads from environment variables with validation and defaults
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/adrg/xdg"
)

// Config holds all configuration for the retrieval engine
type Config struct {
	// Storage settings
	DataDir string

	// OpenAI settings
	OpenAIKey      string
	ChatModel      string
	EmbeddingModel string
	Timeout        time.Duration
	MaxRetries     int
	RetryDelay     time.Duration

	// Chunking settings
	MaxChunkSize int
	ChunkOverlap int

	// Retrieval settings
	DefaultTopK     int
	VectorDimension int
}

// MaxTopK bounds the top_k argument accepted by query operations
const MaxTopK = 20

// Load reads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		// Defaults
		DataDir:         getEnv("RECALL_DATA_DIR", defaultDataDir()),
		OpenAIKey:       os.Getenv("OPENAI_API_KEY"),
		ChatModel:       getEnv("RECALL_CHAT_MODEL", "gpt-4o-mini"),
		EmbeddingModel:  getEnv("RECALL_EMBEDDING_MODEL", "text-embedding-3-small"),
		Timeout:         getEnvDuration("OPENAI_TIMEOUT", 30*time.Second),
		MaxRetries:      getEnvInt("OPENAI_MAX_RETRIES", 3),
		RetryDelay:      getEnvDuration("OPENAI_RETRY_DELAY", 2*time.Second),
		MaxChunkSize:    getEnvInt("RECALL_CHUNK_SIZE", 1000),
		ChunkOverlap:    getEnvInt("RECALL_CHUNK_OVERLAP", 200),
		DefaultTopK:     getEnvInt("RECALL_TOP_K", 3),
		VectorDimension: getEnvInt("VECTOR_DIMENSION", 1536),
	}

	return cfg, cfg.Validate()
}

func (c *Config) Validate() error {
	if c.MaxRetries < 0 || c.MaxRetries > 10 {
		return fmt.Errorf("OPENAI_MAX_RETRIES must be 0-10, got %d", c.MaxRetries)
	}
	if c.MaxChunkSize <= 0 {
		return fmt.Errorf("RECALL_CHUNK_SIZE must be positive, got %d", c.MaxChunkSize)
	}
	if c.ChunkOverlap < 0 || c.ChunkOverlap >= c.MaxChunkSize {
		return fmt.Errorf("RECALL_CHUNK_OVERLAP must be in [0, chunk size), got %d", c.ChunkOverlap)
	}
	if c.DefaultTopK < 1 || c.DefaultTopK > MaxTopK {
		return fmt.Errorf("RECALL_TOP_K must be 1-%d, got %d", MaxTopK, c.DefaultTopK)
	}
	return nil
}

// IndexDir is where per-owner vector indexes are persisted
func (c *Config) IndexDir() string {
	return filepath.Join(c.DataDir, "indexes")
}

// UploadsDir is where raw uploaded files are kept
func (c *Config) UploadsDir() string {
	return filepath.Join(c.DataDir, "uploads")
}

// DatabasePath is the SQLite file holding document metadata records
func (c *Config) DatabasePath() string {
	return filepath.Join(c.DataDir, "documents.db")
}

func defaultDataDir() string {
	// Use XDG data directory: ~/.local/share/recall/
	// Respects XDG_DATA_HOME environment variable override for testing
	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		dataHome = xdg.DataHome
	}
	return filepath.Join(dataHome, "recall")
}

// Helper functions
func getEnv(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return defaultVal
}

func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return defaultVal
}
