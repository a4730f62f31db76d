package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

type Config struct {
	Server   ServerConfig   `json:"server"`
	Database DatabaseConfig `json:"database"`
	Provider ProviderConfig `json:"provider"`
	RAG      RAGConfig      `json:"rag"`
	Redis    RedisConfig    `json:"redis"`
	Version  string         `json:"version"`
}

type ServerConfig struct {
	Host            string   `json:"host"`
	Port            int      `json:"port"`
	ReadTimeout     int      `json:"read_timeout"`
	WriteTimeout    int      `json:"write_timeout"`
	IdleTimeout     int      `json:"idle_timeout"`
	RequestTimeout  int      `json:"request_timeout"`
	MaxRequestBytes int64    `json:"max_request_bytes"`
	CORSOrigins     []string `json:"cors_origins"`
}

type DatabaseConfig struct {
	Host         string `json:"host"`
	Port         int    `json:"port"`
	User         string `json:"user"`
	Password     string `json:"password"`
	Name         string `json:"name"`
	SSLMode      string `json:"ssl_mode"`
	MaxOpenConns int    `json:"max_open_conns"`
	MinIdleConns int    `json:"min_idle_conns"`
	MaxLifetime  int    `json:"max_lifetime"`
}

// ProviderConfig holds the OpenAI-compatible provider settings. BaseURL may
// point at any compatible endpoint; model names are passed through verbatim.
type ProviderConfig struct {
	APIKey             string `json:"api_key"`
	BaseURL            string `json:"base_url"`
	EmbeddingModel     string `json:"embedding_model"`
	EmbeddingDimension int    `json:"embedding_dimension"`
	ChatModel          string `json:"chat_model"`
	Timeout            int    `json:"timeout"`
	MaxRetries         int    `json:"max_retries"`
	MaxConcurrency     int    `json:"max_concurrency"`
	EmbedBatchSize     int    `json:"embed_batch_size"`
}

// RAGConfig holds retrieval and chunking behavior.
type RAGConfig struct {
	MaxHistoryMessages int     `json:"max_history_messages"`
	TopKDefault        int     `json:"top_k_default"`
	DefaultTemperature float64 `json:"default_temperature"`
	ChunkWindowChars   int     `json:"chunk_window_chars"`
	ChunkOverlapChars  int     `json:"chunk_overlap_chars"`
	MaxContextChars    int     `json:"max_context_chars"`
}

// RedisConfig holds the optional embedding-cache settings. An empty Host
// disables the cache.
type RedisConfig struct {
	Host                 string `json:"host"`
	Port                 int    `json:"port"`
	Password             string `json:"password"`
	DB                   int    `json:"db"`
	EmbeddingCacheTTL    int    `json:"embedding_cache_ttl"`
	EnableEmbeddingCache bool   `json:"enable_embedding_cache"`
}

func LoadConfig() (*Config, error) {
	config := &Config{
		Server: ServerConfig{
			Host:            getEnv("SERVER_HOST", "0.0.0.0"),
			Port:            getEnvAsInt("SERVER_PORT", 8080),
			ReadTimeout:     getEnvAsInt("SERVER_READ_TIMEOUT", 30),
			WriteTimeout:    getEnvAsInt("SERVER_WRITE_TIMEOUT", 70),
			IdleTimeout:     getEnvAsInt("SERVER_IDLE_TIMEOUT", 60),
			RequestTimeout:  getEnvAsInt("REQUEST_TIMEOUT_SECONDS", 60),
			MaxRequestBytes: int64(getEnvAsInt("MAX_REQUEST_BYTES", 10*1024*1024)),
			CORSOrigins:     getEnvAsSlice("CORS_ORIGINS", []string{"*"}),
		},
		Database: DatabaseConfig{
			Host:         getEnv("DB_HOST", "localhost"),
			Port:         getEnvAsInt("DB_PORT", 5432),
			User:         getEnv("DB_USER", "raguser"),
			Password:     getEnv("DB_PASSWORD", ""),
			Name:         getEnv("DB_NAME", "rag"),
			SSLMode:      getEnv("DB_SSL_MODE", "disable"),
			MaxOpenConns: getEnvAsInt("DB_POOL_MAX", 25),
			MinIdleConns: getEnvAsInt("DB_POOL_MIN", 5),
			MaxLifetime:  getEnvAsInt("DB_MAX_LIFETIME", 300),
		},
		Provider: ProviderConfig{
			APIKey:             getEnv("PROVIDER_API_KEY", ""),
			BaseURL:            getEnv("PROVIDER_BASE_URL", "https://api.openai.com"),
			EmbeddingModel:     getEnv("EMBEDDING_MODEL", "text-embedding-3-small"),
			EmbeddingDimension: getEnvAsInt("EMBEDDING_DIMENSION", 1536),
			ChatModel:          getEnv("CHAT_MODEL", "gpt-4.1-mini"),
			Timeout:            getEnvAsInt("PROVIDER_TIMEOUT", 30),
			MaxRetries:         getEnvAsInt("PROVIDER_MAX_RETRIES", 3),
			MaxConcurrency:     getEnvAsInt("PROVIDER_MAX_CONCURRENCY", 8),
			EmbedBatchSize:     getEnvAsInt("EMBED_BATCH_SIZE", 64),
		},
		RAG: RAGConfig{
			MaxHistoryMessages: getEnvAsInt("MAX_HISTORY_MESSAGES", 10),
			TopKDefault:        getEnvAsInt("TOP_K_DEFAULT", 5),
			DefaultTemperature: getEnvAsFloat("DEFAULT_TEMPERATURE", 0.3),
			ChunkWindowChars:   getEnvAsInt("CHUNK_WINDOW_CHARS", 1000),
			ChunkOverlapChars:  getEnvAsInt("CHUNK_OVERLAP_CHARS", 200),
			MaxContextChars:    getEnvAsInt("MAX_CONTEXT_CHARS", 8000),
		},
		Redis: RedisConfig{
			Host:                 getEnv("REDIS_HOST", ""),
			Port:                 getEnvAsInt("REDIS_PORT", 6379),
			Password:             getEnv("REDIS_PASSWORD", ""),
			DB:                   getEnvAsInt("REDIS_DB", 0),
			EmbeddingCacheTTL:    getEnvAsInt("REDIS_EMBEDDING_CACHE_TTL", 7*24*3600),
			EnableEmbeddingCache: getEnvAsBool("REDIS_ENABLE_EMBEDDING_CACHE", true),
		},
		Version: getEnv("APP_VERSION", "0.1.0"),
	}

	if err := validateConfig(config); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return config, nil
}

func (c *Config) GetDatabaseDSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Database.Host,
		c.Database.Port,
		c.Database.User,
		c.Database.Password,
		c.Database.Name,
		c.Database.SSLMode,
	)
}

func (c *Config) GetServerAddress() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

func validateConfig(config *Config) error {
	if config.Provider.APIKey == "" {
		return fmt.Errorf("provider API key is required (PROVIDER_API_KEY)")
	}

	if config.Database.Password == "" {
		return fmt.Errorf("database password is required (DB_PASSWORD)")
	}

	if config.Provider.EmbeddingDimension <= 0 {
		return fmt.Errorf("embedding dimension must be positive (EMBEDDING_DIMENSION)")
	}

	if config.RAG.MaxHistoryMessages < 1 {
		return fmt.Errorf("max history messages must be at least 1 (MAX_HISTORY_MESSAGES)")
	}

	if config.RAG.TopKDefault < 1 {
		return fmt.Errorf("default top_k must be at least 1 (TOP_K_DEFAULT)")
	}

	if config.RAG.DefaultTemperature < 0 || config.RAG.DefaultTemperature > 2 {
		return fmt.Errorf("default temperature must be between 0 and 2 (DEFAULT_TEMPERATURE)")
	}

	if config.RAG.ChunkOverlapChars >= config.RAG.ChunkWindowChars {
		return fmt.Errorf("chunk overlap must be smaller than the chunk window (CHUNK_OVERLAP_CHARS)")
	}

	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvAsSlice(key string, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
		return strings.Split(value, ",")
	}
	return defaultValue
}
