package config

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config represents the complete application configuration
type Config struct {
	Server        ServerConfig
	Knowledge     KnowledgeConfig
	Cache         CacheConfig
	RateLimits    RateLimitsConfig
	Gateway       GatewayConfig
	Providers     ProvidersConfig
	Observability ObservabilityConfig
	Environment   string
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host            string
	Port            int
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
}

// KnowledgeConfig holds chunking, indexing, and retrieval configuration
type KnowledgeConfig struct {
	CorpusDir          string
	SnapshotPath       string
	ChunkMaxWords      int
	ChunkOverlapWords  int
	EmbeddingDimension int
	TopK               int
	RetrievalCacheTTL  time.Duration
}

// CacheConfig holds the shared response cache configuration
type CacheConfig struct {
	MaxEntries      int
	CleanupInterval time.Duration
}

// ServiceRateLimit holds one external service's rate budget
type ServiceRateLimit struct {
	Budget  int
	Window  time.Duration
	Policy  string // block or reject
	MaxWait time.Duration
}

// RateLimitsConfig holds the per-service rate budgets
type RateLimitsConfig struct {
	Generation ServiceRateLimit
	Embedding  ServiceRateLimit
	Recipes    ServiceRateLimit
}

// GatewayConfig holds retry and response-cache behavior per service kind
type GatewayConfig struct {
	RetryMaxAttempts   int
	RetryBackoffBase   time.Duration
	RetryMaxBackoff    time.Duration
	GenerationCacheTTL time.Duration
	RecipesCacheTTL    time.Duration
}

// ProvidersConfig holds external provider configurations
type ProvidersConfig struct {
	Gemini      GeminiConfig
	Spoonacular SpoonacularConfig
}

// GeminiConfig holds the Gemini provider configuration
type GeminiConfig struct {
	APIKey         string
	BaseURL        string
	GenerateModel  string
	EmbeddingModel string
	Timeout        time.Duration
}

// SpoonacularConfig holds the Spoonacular provider configuration
type SpoonacularConfig struct {
	APIKey  string
	BaseURL string
	Timeout time.Duration
}

// ObservabilityConfig holds logging configuration
type ObservabilityConfig struct {
	LogLevel  string
	LogFormat string // json or text
}

// New creates a new Config instance by loading environment variables
func New(ctx context.Context) (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load(".env")

	cfg := &Config{
		Environment: getEnv("ENVIRONMENT", "development"),
		Server: ServerConfig{
			Host:            getEnv("SERVER_HOST", "0.0.0.0"),
			Port:            getPort(),
			ReadTimeout:     getEnvAsDuration("SERVER_READ_TIMEOUT", 30*time.Second),
			WriteTimeout:    getEnvAsDuration("SERVER_WRITE_TIMEOUT", 60*time.Second),
			ShutdownTimeout: getEnvAsDuration("SERVER_SHUTDOWN_TIMEOUT", 10*time.Second),
		},
		Knowledge: KnowledgeConfig{
			CorpusDir:          getEnv("KNOWLEDGE_CORPUS_DIR", "knowledge"),
			SnapshotPath:       getEnv("KNOWLEDGE_SNAPSHOT_PATH", "data/index.json"),
			ChunkMaxWords:      getEnvAsInt("CHUNK_MAX_WORDS", 500),
			ChunkOverlapWords:  getEnvAsInt("CHUNK_OVERLAP_WORDS", 50),
			EmbeddingDimension: getEnvAsInt("EMBEDDING_DIMENSION", 768),
			TopK:               getEnvAsInt("RETRIEVAL_TOP_K", 3),
			RetrievalCacheTTL:  getEnvAsDuration("RETRIEVAL_CACHE_TTL", 10*time.Minute),
		},
		Cache: CacheConfig{
			MaxEntries:      getEnvAsInt("CACHE_MAX_ENTRIES", 1000),
			CleanupInterval: getEnvAsDuration("CACHE_CLEANUP_INTERVAL", time.Minute),
		},
		RateLimits: RateLimitsConfig{
			Generation: loadServiceRateLimit("GENERATION", 30, time.Minute, "reject"),
			Embedding:  loadServiceRateLimit("EMBEDDING", 120, time.Minute, "block"),
			Recipes:    loadServiceRateLimit("RECIPES", 50, 24*time.Hour, "reject"),
		},
		Gateway: GatewayConfig{
			RetryMaxAttempts:   getEnvAsInt("GATEWAY_RETRY_MAX_ATTEMPTS", 3),
			RetryBackoffBase:   getEnvAsDuration("GATEWAY_RETRY_BACKOFF_BASE", 500*time.Millisecond),
			RetryMaxBackoff:    getEnvAsDuration("GATEWAY_RETRY_MAX_BACKOFF", 5*time.Second),
			GenerationCacheTTL: getEnvAsDuration("GENERATION_CACHE_TTL", 15*time.Minute),
			RecipesCacheTTL:    getEnvAsDuration("RECIPES_CACHE_TTL", time.Hour),
		},
		Providers: ProvidersConfig{
			Gemini: GeminiConfig{
				APIKey:         getEnv("GEMINI_API_KEY", ""),
				BaseURL:        getEnv("GEMINI_BASE_URL", "https://generativelanguage.googleapis.com/v1beta"),
				GenerateModel:  getEnv("GEMINI_GENERATE_MODEL", "gemini-1.5-flash"),
				EmbeddingModel: getEnv("GEMINI_EMBEDDING_MODEL", "embedding-001"),
				Timeout:        getEnvAsDuration("GEMINI_TIMEOUT", 30*time.Second),
			},
			Spoonacular: SpoonacularConfig{
				APIKey:  getEnv("SPOONACULAR_API_KEY", ""),
				BaseURL: getEnv("SPOONACULAR_BASE_URL", "https://api.spoonacular.com"),
				Timeout: getEnvAsDuration("SPOONACULAR_TIMEOUT", 15*time.Second),
			},
		},
		Observability: ObservabilityConfig{
			LogLevel:  getEnv("LOG_LEVEL", "info"),
			LogFormat: getEnv("LOG_FORMAT", "json"),
		},
	}

	// Validate the configuration
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks if all required configuration fields are set
func (c *Config) Validate() error {
	if c.Knowledge.ChunkMaxWords <= 0 {
		return fmt.Errorf("chunk size must be positive")
	}
	if c.Knowledge.ChunkOverlapWords < 0 || c.Knowledge.ChunkOverlapWords >= c.Knowledge.ChunkMaxWords {
		return fmt.Errorf("chunk overlap must be non-negative and smaller than chunk size")
	}
	if c.Knowledge.EmbeddingDimension <= 0 {
		return fmt.Errorf("embedding dimension must be positive")
	}
	if c.Knowledge.TopK <= 0 {
		return fmt.Errorf("retrieval top-k must be positive")
	}
	if c.Cache.MaxEntries <= 0 {
		return fmt.Errorf("cache max entries must be positive")
	}

	for name, rl := range map[string]ServiceRateLimit{
		"generation": c.RateLimits.Generation,
		"embedding":  c.RateLimits.Embedding,
		"recipes":    c.RateLimits.Recipes,
	} {
		if rl.Budget <= 0 || rl.Window <= 0 {
			return fmt.Errorf("%s rate budget and window must be positive", name)
		}
		if rl.Policy != "block" && rl.Policy != "reject" {
			return fmt.Errorf("%s rate policy must be block or reject", name)
		}
		if rl.Policy == "block" && rl.MaxWait <= 0 {
			return fmt.Errorf("%s block policy requires a positive max wait", name)
		}
	}

	// Provider validation (keys required in production)
	if c.IsProduction() {
		if c.Providers.Gemini.APIKey == "" {
			return fmt.Errorf("gemini API key is required in production")
		}
	}

	// Observability validation
	if c.Observability.LogLevel == "" {
		return fmt.Errorf("log level is required")
	}

	return nil
}

// IsProduction returns true if running in production environment
func (c *Config) IsProduction() bool {
	return c.Environment == "production" || c.Environment == "prod"
}

// IsDevelopment returns true if running in development environment
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development" || c.Environment == "dev"
}

// Address returns the HTTP server address
func (c *ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// loadServiceRateLimit loads one service's rate budget from
// <PREFIX>_RATE_BUDGET, <PREFIX>_RATE_WINDOW, <PREFIX>_RATE_POLICY, and
// <PREFIX>_RATE_MAX_WAIT.
func loadServiceRateLimit(prefix string, defaultBudget int, defaultWindow time.Duration, defaultPolicy string) ServiceRateLimit {
	return ServiceRateLimit{
		Budget:  getEnvAsInt(prefix+"_RATE_BUDGET", defaultBudget),
		Window:  getEnvAsDuration(prefix+"_RATE_WINDOW", defaultWindow),
		Policy:  getEnv(prefix+"_RATE_POLICY", defaultPolicy),
		MaxWait: getEnvAsDuration(prefix+"_RATE_MAX_WAIT", 10*time.Second),
	}
}

// Helper functions

// getPort returns the server port from PORT or SERVER_PORT env vars (default: 8080)
func getPort() int {
	if value := os.Getenv("PORT"); value != "" {
		if p, err := strconv.Atoi(value); err == nil {
			return p
		}
	}
	if value := os.Getenv("SERVER_PORT"); value != "" {
		if p, err := strconv.Atoi(value); err == nil {
			return p
		}
	}
	return 8080
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := time.ParseDuration(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}
