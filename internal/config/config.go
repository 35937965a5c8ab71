package config

import (
	"os"
	"strconv"

	_ "github.com/joho/godotenv/autoload"
	"github.com/rs/zerolog/log"
)

// Config holds every external setting the service needs. Both API keys are
// optional: missing keys switch the assistant onto its documented fallback
// paths instead of failing startup.
type Config struct {
	// MistralAPIKey authorizes chat-completion calls. Empty means AI features
	// fall back to deterministic behavior (or fail loudly, for workout plans).
	MistralAPIKey string

	// ExaAPIKey authorizes web-search calls. Empty disables restaurant search.
	ExaAPIKey string

	// DatabasePath is the SQLite file holding preferences and food logs.
	DatabasePath string

	// Port is the TCP port the HTTP server listens on.
	Port int

	// SessionSecret signs the chat session cookie.
	SessionSecret string
}

// FromEnv reads configuration from the environment. A .env file in the
// working directory is picked up via godotenv's autoload import.
func FromEnv() Config {
	cfg := Config{
		MistralAPIKey: os.Getenv("MISTRAL_API_KEY"),
		ExaAPIKey:     os.Getenv("EXA_API_KEY"),
		DatabasePath:  os.Getenv("DATABASE_URL"),
		SessionSecret: os.Getenv("SESSION_SECRET"),
	}

	if cfg.DatabasePath == "" {
		cfg.DatabasePath = "nutrisense_data.db"
	}
	if cfg.SessionSecret == "" {
		cfg.SessionSecret = "nutrisense-dev-secret"
	}

	port, err := strconv.Atoi(os.Getenv("PORT"))
	if err != nil || port == 0 {
		port = 8080
	}
	cfg.Port = port

	// Mistral keys are 32-character alphanumeric; a malformed one usually
	// means a copy-paste error, so warn early rather than on first call.
	if k := cfg.MistralAPIKey; k != "" && len(k) != 32 {
		log.Warn().Int("length", len(k)).Msg("MISTRAL_API_KEY has unexpected length, authentication may fail")
	}

	if cfg.MistralAPIKey == "" {
		log.Info().Msg("MISTRAL_API_KEY not configured - AI features will use fallback responses")
	}
	if cfg.ExaAPIKey == "" {
		log.Info().Msg("EXA_API_KEY not configured - restaurant search will be unavailable")
	}

	return cfg
}
