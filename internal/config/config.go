package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	App      AppConfig
	Database DatabaseConfig
	Corpus   CorpusConfig
	Keys     APIKeys
	Ai       AIConfig
	Language LanguageConfig
	Services ServicesConfig
	Timeouts TimeoutConfig
}

type AppConfig struct {
	Port               string
	Environment        string
	LogFilePath        string
	WsLogFilePath      string
	CorsAllowedOrigins string
	NatsURL            string
	RedisURL           string
	APIBaseURL         string // used by cmd/ask
}

type DatabaseConfig struct {
	Connection string
	Verbose    bool
}

type CorpusConfig struct {
	Backend  string // "memory" or "postgres"
	FilePath string
}

type APIKeys struct {
	HuggingFace    string
	GoogleGemini   string
	Jina           string
	LibreTranslate string
	SearchLogTopic string
}

type AIConfig struct {
	LLMProvider       string // "ollama" or "huggingface"
	LLMModel          string
	LLMBaseURL        string // empty selects the provider default
	LLMConcurrency    int
	MaxTokens         int
	Temperature       float64
	EmbeddingProvider string // "ollama", "gemini" or "jina"
	EmbeddingBaseURL  string
	EmbeddingModel    string
	IngestConcurrency int
}

type LanguageConfig struct {
	Working       string
	Detector      string // "whatlang" or "libretranslate"
	MinConfidence float64
	TranslateURL  string
	CacheTTL      time.Duration
}

type ServicesConfig struct {
	WhisperURL     string
	WhisperModel   string
	ImageSearchURL string
	UserAgent      string
	ImageCount     int
	ImageCacheTTL  time.Duration
	AnswerCacheTTL time.Duration
}

type TimeoutConfig struct {
	Lookup    time.Duration
	Model     time.Duration
	Image     time.Duration
	Translate time.Duration
}

func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

// EmbeddingAPIKey returns the key of the configured embedding provider.
func (c *Config) EmbeddingAPIKey() string {
	switch c.Ai.EmbeddingProvider {
	case "gemini":
		return c.Keys.GoogleGemini
	case "jina":
		return c.Keys.Jina
	}
	return ""
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, using system environment")
	}

	return &Config{
		App: AppConfig{
			Port:               getEnv("APP_PORT", "3000"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "logs/app.log"),
			WsLogFilePath:      getEnv("WS_LOG_FILE_PATH", "logs/websocket.log"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),
			NatsURL:            getEnv("NATS_URL", ""),
			RedisURL:           getEnv("REDIS_URL", ""),
			APIBaseURL:         getEnv("API_BASE_URL", "http://localhost:3000"),
		},
		Database: DatabaseConfig{
			Connection: getEnv("DB_CONNECTION_STRING", ""),
			Verbose:    getEnvAsBool("DB_VERBOSE", false),
		},
		Corpus: CorpusConfig{
			Backend:  getEnv("CORPUS_BACKEND", "memory"),
			FilePath: getEnv("CORPUS_FILE", "data/heritage_sites.json"),
		},
		Keys: APIKeys{
			HuggingFace:    getEnv("HUGGINGFACE_API_KEY", ""),
			GoogleGemini:   getEnv("GOOGLE_GEMINI_API_KEY", ""),
			Jina:           getEnv("JINA_API_KEY", ""),
			LibreTranslate: getEnv("LIBRETRANSLATE_API_KEY", ""),
			SearchLogTopic: getEnv("SEARCH_LOG_TOPIC_NAME", "SEARCH_LOGGED"),
		},
		Ai: AIConfig{
			LLMProvider:       getEnv("LLM_PROVIDER", "ollama"),
			LLMModel:          getEnv("LLM_MODEL", "llama3"),
			LLMBaseURL:        getEnv("LLM_BASE_URL", ""),
			LLMConcurrency:    getEnvAsInt("LLM_CONCURRENCY", 2),
			MaxTokens:         getEnvAsInt("LLM_MAX_TOKENS", 512),
			Temperature:       getEnvAsFloat("LLM_TEMPERATURE", 0.3),
			EmbeddingProvider: getEnv("EMBEDDING_PROVIDER", "ollama"),
			EmbeddingBaseURL:  getEnv("OLLAMA_BASE_URL", "http://localhost:11434"),
			EmbeddingModel:    getEnv("OLLAMA_EMBEDDING_MODEL", "nomic-embed-text"),
			IngestConcurrency: getEnvAsInt("INGEST_CONCURRENCY", 4),
		},
		Language: LanguageConfig{
			Working:       getEnv("WORKING_LANGUAGE", "en"),
			Detector:      getEnv("LANGUAGE_DETECTOR", "whatlang"),
			MinConfidence: getEnvAsFloat("LANGUAGE_MIN_CONFIDENCE", 0.5),
			TranslateURL:  getEnv("LIBRETRANSLATE_URL", "http://localhost:5000"),
			CacheTTL:      getEnvAsDuration("TRANSLATE_CACHE_TTL", time.Hour),
		},
		Services: ServicesConfig{
			WhisperURL:     getEnv("WHISPER_URL", ""),
			WhisperModel:   getEnv("WHISPER_MODEL", "whisper-1"),
			ImageSearchURL: getEnv("IMAGE_SEARCH_URL", "https://commons.wikimedia.org/w/api.php"),
			UserAgent:      getEnv("HTTP_USER_AGENT", "deepsight-be/1.0 (heritage assistant)"),
			ImageCount:     getEnvAsInt("IMAGE_COUNT", 3),
			ImageCacheTTL:  getEnvAsDuration("IMAGE_CACHE_TTL", 6*time.Hour),
			AnswerCacheTTL: getEnvAsDuration("ANSWER_CACHE_TTL", 24*time.Hour),
		},
		Timeouts: TimeoutConfig{
			Lookup:    getEnvAsDuration("LOOKUP_TIMEOUT", 5*time.Second),
			Model:     getEnvAsDuration("MODEL_TIMEOUT", 90*time.Second),
			Image:     getEnvAsDuration("IMAGE_TIMEOUT", 5*time.Second),
			Translate: getEnvAsDuration("TRANSLATE_TIMEOUT", 10*time.Second),
		},
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

func getEnvAsFloat(key string, fallback float64) float64 {
	if value, err := strconv.ParseFloat(getEnv(key, ""), 64); err == nil {
		return value
	}
	return fallback
}

func getEnvAsBool(key string, fallback bool) bool {
	if value, err := strconv.ParseBool(getEnv(key, "")); err == nil {
		return value
	}
	return fallback
}

// getEnvAsDuration accepts Go durations ("90s") or plain seconds ("90").
func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	strValue := getEnv(key, "")
	if d, err := time.ParseDuration(strValue); err == nil {
		return d
	}
	if n, err := strconv.Atoi(strValue); err == nil {
		return time.Duration(n) * time.Second
	}
	return fallback
}
