package config

import (
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	App     AppConfig
	Storage StorageConfig
	Ai      AIConfig
	Rag     RagConfig
}

type AppConfig struct {
	Port               string
	Environment        string
	LogFilePath        string
	LLMLogFilePath     string
	CorsAllowedOrigins string
	NatsURL            string
	OtelEnabled        bool
	OtelEndpoint       string
}

type StorageConfig struct {
	BrokerURL       string // pre-signed upload target broker; empty skips the transfer stages
	ChunkMode       string // "local" | "remote"
	ChunkTriggerURL string
	TimeoutSecs     int
}

type AIConfig struct {
	LLMProvider        string // "openai" | "ollama" | "huggingface"
	LLMModel           string
	OpenAIBaseURL      string
	OllamaBaseURL      string
	HuggingFaceBaseURL string
	DefaultAPIKey      string
	TimeoutSecs        int
}

// BaseURL returns the endpoint configured for the selected provider.
func (c AIConfig) BaseURL() string {
	switch c.LLMProvider {
	case "ollama":
		return c.OllamaBaseURL
	case "huggingface":
		return c.HuggingFaceBaseURL
	default:
		return c.OpenAIBaseURL
	}
}

// RagConfig can be overridden by the `rag:` section of the file named in RAG_CONFIG_FILE.
type RagConfig struct {
	ChunkSize     int    `yaml:"chunk_size"`
	ChunkOverlap  int    `yaml:"chunk_overlap"`
	RetrievalMode string `yaml:"retrieval_mode"` // "all" | "lexical"
	RetrievalTopK int    `yaml:"retrieval_top_k"`
}

type fileConfig struct {
	Rag *RagConfig `yaml:"rag"`
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, usage system environment")
	}

	cfg := &Config{
		App: AppConfig{
			Port:               getEnv("APP_PORT", "3000"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "logs/app.log"),
			LLMLogFilePath:     getEnv("LLM_LOG_FILE_PATH", "logs/llm.log"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),
			NatsURL:            getEnv("NATS_URL", ""),
			OtelEnabled:        getEnvAsBool("OTEL_ENABLED", false),
			OtelEndpoint:       getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4318"),
		},
		Storage: StorageConfig{
			BrokerURL:       getEnv("BLOB_BROKER_URL", ""),
			ChunkMode:       getEnv("CHUNK_MODE", "local"),
			ChunkTriggerURL: getEnv("CHUNK_TRIGGER_URL", ""),
			TimeoutSecs:     getEnvAsInt("STORAGE_TIMEOUT_SECS", 60),
		},
		Ai: AIConfig{
			LLMProvider:        getEnv("LLM_PROVIDER", "openai"),
			LLMModel:           getEnv("LLM_MODEL", "gpt-4o-mini"),
			OpenAIBaseURL:      getEnv("OPENAI_BASE_URL", ""),
			OllamaBaseURL:      getEnv("OLLAMA_BASE_URL", "http://localhost:11434"),
			HuggingFaceBaseURL: getEnv("HUGGINGFACE_BASE_URL", ""),
			DefaultAPIKey:      getEnv("LLM_DEFAULT_API_KEY", ""),
			TimeoutSecs:        getEnvAsInt("LLM_TIMEOUT_SECS", 120),
		},
		Rag: RagConfig{
			ChunkSize:     getEnvAsInt("CHUNK_SIZE", 1000),
			ChunkOverlap:  getEnvAsInt("CHUNK_OVERLAP", 200),
			RetrievalMode: getEnv("RETRIEVAL_MODE", "all"),
			RetrievalTopK: getEnvAsInt("RETRIEVAL_TOP_K", 6),
		},
	}

	if path := getEnv("RAG_CONFIG_FILE", ""); path != "" {
		if err := applyFile(cfg, path); err != nil {
			log.Printf("[WARN] Ignoring RAG_CONFIG_FILE: %v", err)
		}
	}
	applyDefaults(cfg)

	return cfg
}

// applyFile overlays the non-zero fields of the file's rag section.
func applyFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	if fc.Rag == nil {
		return nil
	}
	if fc.Rag.ChunkSize > 0 {
		cfg.Rag.ChunkSize = fc.Rag.ChunkSize
	}
	if fc.Rag.ChunkOverlap > 0 {
		cfg.Rag.ChunkOverlap = fc.Rag.ChunkOverlap
	}
	if fc.Rag.RetrievalMode != "" {
		cfg.Rag.RetrievalMode = fc.Rag.RetrievalMode
	}
	if fc.Rag.RetrievalTopK > 0 {
		cfg.Rag.RetrievalTopK = fc.Rag.RetrievalTopK
	}
	return nil
}

func applyDefaults(cfg *Config) {
	if cfg.Rag.ChunkSize <= 0 {
		cfg.Rag.ChunkSize = 1000
	}
	if cfg.Rag.ChunkOverlap < 0 || cfg.Rag.ChunkOverlap >= cfg.Rag.ChunkSize {
		cfg.Rag.ChunkOverlap = cfg.Rag.ChunkSize / 5
	}
	if cfg.Rag.RetrievalTopK <= 0 {
		cfg.Rag.RetrievalTopK = 6
	}
	if cfg.Storage.ChunkMode != "remote" {
		cfg.Storage.ChunkMode = "local"
	}
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	strValue := getEnv(key, "")
	if value, err := strconv.Atoi(strValue); err == nil {
		return value
	}
	return fallback
}

func getEnvAsBool(key string, fallback bool) bool {
	strValue := getEnv(key, "")
	if value, err := strconv.ParseBool(strValue); err == nil {
		return value
	}
	return fallback
}
