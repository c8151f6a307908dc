// Package config loads voicechat configuration from built-in defaults, an optional
// TOML file and environment variables, in that order of precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/papercomputeco/voicechat/pkg/llm"
)

// ErrMissingAPIKey is returned when no OpenRouter credential is configured.
var ErrMissingAPIKey = errors.New("OpenRouter API key is required (set OPENROUTER_API_KEY)")

const (
	DefaultBaseURL          = "https://openrouter.ai/api/v1"
	DefaultModel            = "openai/gpt-4o-mini"
	DefaultListenAddr       = ":5000"
	DefaultMaxMessages      = 20
	DefaultTimeoutSecs      = 30
	DefaultModelsTimeoutSec = 10
)

// Config is the complete voicechat configuration.
type Config struct {
	Debug bool `toml:"debug"`

	OpenRouter OpenRouterConfig `toml:"openrouter"`
	Generation GenerationConfig `toml:"generation"`
	History    HistoryConfig    `toml:"history"`
	Server     ServerConfig     `toml:"server"`
	Speech     SpeechConfig     `toml:"speech"`
}

// OpenRouterConfig holds the completion endpoint settings.
type OpenRouterConfig struct {
	APIKey            string `toml:"api_key"`
	BaseURL           string `toml:"base_url"`
	DefaultModel      string `toml:"default_model"`
	Referer           string `toml:"referer"`
	Title             string `toml:"title"`
	TimeoutSecs       int    `toml:"timeout_secs"`
	ModelsTimeoutSecs int    `toml:"models_timeout_secs"`
}

// GenerationConfig holds the sampling parameters sent with every request.
type GenerationConfig struct {
	MaxTokens        int     `toml:"max_tokens"`
	Temperature      float64 `toml:"temperature"`
	TopP             float64 `toml:"top_p"`
	FrequencyPenalty float64 `toml:"frequency_penalty"`
	PresencePenalty  float64 `toml:"presence_penalty"`
}

// HistoryConfig bounds the rolling conversation history.
type HistoryConfig struct {
	// MaxMessages is the number of messages kept (two per exchange).
	MaxMessages int `toml:"max_messages"`
}

// ServerConfig configures the web UI server.
type ServerConfig struct {
	ListenAddr string `toml:"listen_addr"`
}

// SpeechConfig holds the argv templates of the external speech commands.
// "{file}" is replaced by the recording path and "{text}" by the text to speak.
// An empty command disables that capability.
type SpeechConfig struct {
	RecordCommand     []string `toml:"record_command"`
	TranscribeCommand []string `toml:"transcribe_command"`
	SpeakCommand      []string `toml:"speak_command"`
}

// Default returns the built-in configuration.
func Default() *Config {
	params := llm.DefaultGenerationParams()
	return &Config{
		OpenRouter: OpenRouterConfig{
			BaseURL:           DefaultBaseURL,
			DefaultModel:      DefaultModel,
			Referer:           "http://localhost:5000",
			Title:             "Voice Chatbot",
			TimeoutSecs:       DefaultTimeoutSecs,
			ModelsTimeoutSecs: DefaultModelsTimeoutSec,
		},
		Generation: GenerationConfig{
			MaxTokens:        params.MaxTokens,
			Temperature:      params.Temperature,
			TopP:             params.TopP,
			FrequencyPenalty: params.FrequencyPenalty,
			PresencePenalty:  params.PresencePenalty,
		},
		History: HistoryConfig{MaxMessages: DefaultMaxMessages},
		Server:  ServerConfig{ListenAddr: DefaultListenAddr},
	}
}

// DefaultPath returns ~/.voicechat/config.toml.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not resolve home directory: %w", err)
	}
	return filepath.Join(home, ".voicechat", "config.toml"), nil
}

// Load builds the configuration. An explicit path must exist; without one the
// default path is read only when present. Environment variables win over the file.
func Load(path string) (*Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		p, err := DefaultPath()
		if err == nil {
			path = p
		}
	}

	if path != "" {
		if _, err := os.Stat(path); err == nil || explicit {
			if _, err := toml.DecodeFile(path, cfg); err != nil {
				return nil, fmt.Errorf("could not read config %s: %w", path, err)
			}
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) applyEnv() error {
	if v := os.Getenv("OPENROUTER_API_KEY"); v != "" {
		c.OpenRouter.APIKey = v
	}
	if v := os.Getenv("OPENROUTER_BASE_URL"); v != "" {
		c.OpenRouter.BaseURL = v
	}
	if v := os.Getenv("DEFAULT_MODEL"); v != "" {
		c.OpenRouter.DefaultModel = v
	}
	if v := os.Getenv("VOICECHAT_LISTEN"); v != "" {
		c.Server.ListenAddr = v
	}
	if v := os.Getenv("DEBUG"); v != "" {
		debug, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid DEBUG value %q: %w", v, err)
		}
		c.Debug = debug
	}
	if v := os.Getenv("VOICECHAT_MAX_HISTORY"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid VOICECHAT_MAX_HISTORY value %q: %w", v, err)
		}
		c.History.MaxMessages = n
	}
	return nil
}

// Validate reports configuration errors that must abort startup.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.OpenRouter.APIKey) == "" {
		return ErrMissingAPIKey
	}
	if c.OpenRouter.BaseURL == "" {
		return errors.New("openrouter.base_url must not be empty")
	}
	if c.History.MaxMessages < 2 {
		return fmt.Errorf("history.max_messages must be at least 2, got %d", c.History.MaxMessages)
	}
	if c.OpenRouter.TimeoutSecs <= 0 || c.OpenRouter.ModelsTimeoutSecs <= 0 {
		return errors.New("openrouter timeouts must be positive")
	}
	if c.Generation.MaxTokens <= 0 {
		return fmt.Errorf("generation.max_tokens must be positive, got %d", c.Generation.MaxTokens)
	}
	return nil
}

// Params returns the configured generation parameters.
func (c *Config) Params() llm.GenerationParams {
	return llm.GenerationParams{
		MaxTokens:        c.Generation.MaxTokens,
		Temperature:      c.Generation.Temperature,
		TopP:             c.Generation.TopP,
		FrequencyPenalty: c.Generation.FrequencyPenalty,
		PresencePenalty:  c.Generation.PresencePenalty,
	}
}

// Timeout is the completion request timeout.
func (c *Config) Timeout() time.Duration {
	return time.Duration(c.OpenRouter.TimeoutSecs) * time.Second
}

// ModelsTimeout is the model listing request timeout.
func (c *Config) ModelsTimeout() time.Duration {
	return time.Duration(c.OpenRouter.ModelsTimeoutSecs) * time.Second
}
