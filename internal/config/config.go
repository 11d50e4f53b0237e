package config

import (
	"log"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
)

// Config stores runtime configuration loaded from environment variables.
type Config struct {
	GeminiKey string
	OpenAIKey string

	// Provider forces "gemini" or "openai"; empty picks whichever key is set,
	// preferring Gemini.
	Provider string

	// Model pins a single model ID and skips discovery.
	Model string

	Port           string
	DataDir        string
	HistoryPath    string
	CurriculumPath string
	DiagramHints   string
	FontPath       string

	DiagramsEnabled bool
	DiagramWorkers  int

	LogMode string
}

// Load reads configuration from the environment, providing sensible defaults.
func Load() Config {
	// Load .env file if it exists (useful for development)
	_ = godotenv.Load()
	cfg := Config{
		GeminiKey:       os.Getenv("GEMINI_API_KEY"),
		OpenAIKey:       os.Getenv("OPENAI_API_KEY"),
		Provider:        os.Getenv("LLM_PROVIDER"),
		Model:           os.Getenv("LLM_MODEL"),
		Port:            getEnv("PORT", "3000"),
		DataDir:         getEnv("DATA_DIR", "./data"),
		FontPath:        getEnv("FONT_PATH", "./static/fonts/DejaVuSans.ttf"),
		DiagramsEnabled: getBool("DIAGRAMS_ENABLED", true),
		DiagramWorkers:  getInt("DIAGRAM_WORKERS", 4),
		LogMode:         getEnv("LOG_MODE", "dev"),
	}
	cfg.HistoryPath = getEnv("HISTORY_PATH", filepath.Join(cfg.DataDir, "history.json"))
	cfg.CurriculumPath = os.Getenv("CURRICULUM_PATH")
	cfg.DiagramHints = os.Getenv("DIAGRAM_HINTS_PATH")

	if err := os.MkdirAll(filepath.Dir(cfg.HistoryPath), 0o755); err != nil {
		log.Fatalf("failed to ensure data dir %s: %v", cfg.DataDir, err)
	}

	return cfg
}

func getEnv(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok && val != "" {
		return val
	}
	return fallback
}

func getBool(key string, fallback bool) bool {
	val, ok := os.LookupEnv(key)
	if !ok || val == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(val)
	if err != nil {
		return fallback
	}
	return parsed
}

func getInt(key string, fallback int) int {
	val, ok := os.LookupEnv(key)
	if !ok || val == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(val)
	if err != nil || parsed <= 0 {
		return fallback
	}
	return parsed
}
