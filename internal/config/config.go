package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port           string
	DBPath         string
	HFToken        string
	HFAPIURL       string
	SentimentModel string
	EmotionModel   string
	UseRemote      bool
	HFTimeout      time.Duration
	JWTSecret      string
	Timezone       string
}

func Load() (*Config, error) {
	// Best effort, mirrors the backend's dotenv load
	_ = godotenv.Load()

	cfg := &Config{
		Port:           getEnv("EUNOIA_PORT", "8000"),
		DBPath:         getEnv("EUNOIA_DB_PATH", "eunoia_journal.db"),
		HFToken:        getEnv("HF_TOKEN", ""),
		HFAPIURL:       getEnv("EUNOIA_HF_API_URL", "https://api-inference.huggingface.co/models"),
		SentimentModel: getEnv("EUNOIA_SENTIMENT_MODEL", "cardiffnlp/twitter-roberta-base-sentiment-latest"),
		EmotionModel:   getEnv("EUNOIA_EMOTION_MODEL", "SamLowe/roberta-base-go_emotions"),
		UseRemote:      boolEnv("EUNOIA_USE_REMOTE", false),
		HFTimeout:      durationEnv("EUNOIA_HF_TIMEOUT_SECONDS", 30*time.Second),
		JWTSecret:      getEnv("EUNOIA_JWT_SECRET", ""),
		Timezone:       getEnv("EUNOIA_TIMEZONE", "UTC"),
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if c.DBPath == "" {
		return fmt.Errorf("EUNOIA_DB_PATH is required")
	}
	if c.HFAPIURL == "" {
		return fmt.Errorf("EUNOIA_HF_API_URL is required")
	}
	return nil
}

// RemoteAvailable reports whether the remote analysis strategy is usable:
// the feature flag must be on and a token must be present.
func (c *Config) RemoteAvailable() bool {
	return c.UseRemote && c.HFToken != ""
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func boolEnv(key string, defaultVal bool) bool {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	switch val {
	case "1", "true", "True", "TRUE":
		return true
	default:
		return false
	}
}

func durationEnv(key string, defaultVal time.Duration) time.Duration {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	secs, err := strconv.Atoi(val)
	if err != nil || secs <= 0 {
		return defaultVal
	}
	return time.Duration(secs) * time.Second
}
