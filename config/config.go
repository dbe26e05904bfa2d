// Package config loads agentkit settings from the environment and an
// optional .env file and builds the configured collaborators.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cast"

	"github.com/hupe1980/agentkit/logging"
	"github.com/hupe1980/agentkit/model"
)

// Supported providers.
const (
	ProviderMock        = "mock"
	ProviderOpenAI      = "openai"
	ProviderAzureOpenAI = "azure-openai"
	ProviderAnthropic   = "anthropic"
	ProviderGemini      = "gemini"
	ProviderOllama      = "ollama"
)

// Supported session stores.
const (
	StoreMemory   = "memory"
	StorePostgres = "postgres"
	StoreMongo    = "mongo"
)

const (
	defaultHTTPAddr = "127.0.0.1:8080"
	defaultEnvFile  = ".env"
)

// Config holds runtime settings.
type Config struct {
	Provider string
	Model    string

	OpenAIAPIKey    string
	AnthropicAPIKey string
	GoogleAPIKey    string

	AzureEndpoint   string
	AzureAPIKey     string
	AzureAPIVersion string

	OllamaURL string

	SessionStore string
	DatabaseURL  string
	MongoURI     string
	MongoDB      string

	PineconeAPIKey string
	PineconeIndex  string

	LogLevel  string
	LogFormat string

	HTTPAddr string

	Sampling model.Sampling
}

// Load reads configuration from the process environment, falling back to
// values from the given .env files. Without files, ./.env is read if present.
// Process environment variables always win.
func Load(files ...string) (Config, error) {
	optional := len(files) == 0
	if optional {
		files = []string{defaultEnvFile}
	}

	fileEnv := map[string]string{}

	for _, f := range files {
		values, err := godotenv.Read(f)
		if err != nil {
			if optional && errors.Is(err, fs.ErrNotExist) {
				continue
			}

			return Config{}, fmt.Errorf("read %s: %w", f, err)
		}

		for k, v := range values {
			fileEnv[k] = v
		}
	}

	return FromLookup(func(key string) (string, bool) {
		if v, ok := os.LookupEnv(key); ok {
			return v, true
		}

		v, ok := fileEnv[key]

		return v, ok
	})
}

// FromLookup builds and validates a Config from a key lookup function.
func FromLookup(lookup func(string) (string, bool)) (Config, error) {
	get := func(key, fallback string) string {
		if v, ok := lookup(key); ok && strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}

		return fallback
	}

	cfg := Config{
		Provider:        strings.ToLower(get("AGENTKIT_PROVIDER", ProviderMock)),
		Model:           get("AGENTKIT_MODEL", ""),
		OpenAIAPIKey:    get("OPENAI_API_KEY", ""),
		AnthropicAPIKey: get("ANTHROPIC_API_KEY", ""),
		GoogleAPIKey:    get("GOOGLE_API_KEY", get("GEMINI_API_KEY", "")),
		AzureEndpoint:   get("AZURE_OPENAI_ENDPOINT", ""),
		AzureAPIKey:     get("AZURE_OPENAI_API_KEY", ""),
		AzureAPIVersion: get("AZURE_OPENAI_API_VERSION", ""),
		OllamaURL:       get("OLLAMA_URL", ""),
		SessionStore:    strings.ToLower(get("AGENTKIT_SESSION_STORE", StoreMemory)),
		DatabaseURL:     get("DATABASE_URL", ""),
		MongoURI:        get("MONGO_URI", ""),
		MongoDB:         get("MONGO_DATABASE", "agentkit"),
		PineconeAPIKey:  get("PINECONE_API_KEY", ""),
		PineconeIndex:   get("PINECONE_INDEX", ""),
		LogLevel:        get("LOG_LEVEL", "info"),
		LogFormat:       strings.ToLower(get("LOG_FORMAT", logging.FormatText)),
		HTTPAddr:        get("AGENTKIT_HTTP_ADDR", defaultHTTPAddr),
	}

	var err error

	if cfg.Sampling.MaxTokens, err = intVar(get, "MAX_TOKENS"); err != nil {
		return Config{}, err
	}

	if cfg.Sampling.TopK, err = intVar(get, "TOP_K"); err != nil {
		return Config{}, err
	}

	if cfg.Sampling.Temperature, err = floatVar(get, "TEMPERATURE"); err != nil {
		return Config{}, err
	}

	if cfg.Sampling.TopP, err = floatVar(get, "TOP_P"); err != nil {
		return Config{}, err
	}

	if cfg.Sampling.FrequencyPenalty, err = floatVar(get, "FREQUENCY_PENALTY"); err != nil {
		return Config{}, err
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func intVar(get func(string, string) string, key string) (*int, error) {
	raw := get(key, "")
	if raw == "" {
		return nil, nil
	}

	v, err := cast.ToIntE(raw)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", key, err)
	}

	return &v, nil
}

func floatVar(get func(string, string) string, key string) (*float64, error) {
	raw := get(key, "")
	if raw == "" {
		return nil, nil
	}

	v, err := cast.ToFloat64E(raw)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", key, err)
	}

	return &v, nil
}

// Validate checks that the selected provider and store have what they need.
func (c Config) Validate() error {
	var errs []error

	switch c.Provider {
	case ProviderMock, ProviderOllama:
	case ProviderOpenAI:
		if c.OpenAIAPIKey == "" {
			errs = append(errs, errors.New("OPENAI_API_KEY is required for provider openai"))
		}
	case ProviderAzureOpenAI:
		if c.AzureEndpoint == "" {
			errs = append(errs, errors.New("AZURE_OPENAI_ENDPOINT is required for provider azure-openai"))
		}

		if c.Model == "" {
			errs = append(errs, errors.New("AGENTKIT_MODEL (deployment) is required for provider azure-openai"))
		}
	case ProviderAnthropic:
		if c.AnthropicAPIKey == "" {
			errs = append(errs, errors.New("ANTHROPIC_API_KEY is required for provider anthropic"))
		}
	case ProviderGemini:
		if c.GoogleAPIKey == "" {
			errs = append(errs, errors.New("GOOGLE_API_KEY or GEMINI_API_KEY is required for provider gemini"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown AGENTKIT_PROVIDER %q", c.Provider))
	}

	switch c.SessionStore {
	case StoreMemory:
	case StorePostgres:
		if c.DatabaseURL == "" {
			errs = append(errs, errors.New("DATABASE_URL is required for session store postgres"))
		}
	case StoreMongo:
		if c.MongoURI == "" {
			errs = append(errs, errors.New("MONGO_URI is required for session store mongo"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown AGENTKIT_SESSION_STORE %q", c.SessionStore))
	}

	switch c.LogFormat {
	case logging.FormatJSON, logging.FormatText, logging.FormatTint:
	default:
		errs = append(errs, fmt.Errorf("unknown LOG_FORMAT %q", c.LogFormat))
	}

	if c.Sampling.Temperature != nil && (*c.Sampling.Temperature < 0 || *c.Sampling.Temperature > 2) {
		errs = append(errs, fmt.Errorf("TEMPERATURE must be within [0, 2], got %v", *c.Sampling.Temperature))
	}

	if c.Sampling.MaxTokens != nil && *c.Sampling.MaxTokens <= 0 {
		errs = append(errs, fmt.Errorf("MAX_TOKENS must be > 0, got %d", *c.Sampling.MaxTokens))
	}

	return errors.Join(errs...)
}
