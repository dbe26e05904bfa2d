package config

import (
	"context"
	"fmt"
	"os"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/openai/openai-go/option"
	"github.com/tmc/langchaingo/embeddings"
	lcopenai "github.com/tmc/langchaingo/llms/openai"

	"github.com/hupe1980/agentkit/core"
	"github.com/hupe1980/agentkit/logging"
	"github.com/hupe1980/agentkit/model"
	anthropicmodel "github.com/hupe1980/agentkit/model/anthropic"
	"github.com/hupe1980/agentkit/model/gemini"
	"github.com/hupe1980/agentkit/model/langchain"
	openaimodel "github.com/hupe1980/agentkit/model/openai"
	"github.com/hupe1980/agentkit/session"
	"github.com/hupe1980/agentkit/session/mongo"
	"github.com/hupe1980/agentkit/session/postgres"
	"github.com/hupe1980/agentkit/tool/rag"
)

// NewLogger builds the logger described by LOG_LEVEL and LOG_FORMAT.
func (c Config) NewLogger() *logging.KitLogger {
	return logging.NewLogger(&logging.LoggerConfig{
		Level:     logging.ParseLevel(c.LogLevel),
		Format:    c.LogFormat,
		Output:    os.Stderr,
		Component: "agentkit",
	})
}

// NewModelClient builds the model client for the configured provider.
func (c Config) NewModelClient(ctx context.Context) (model.Client, error) {
	switch c.Provider {
	case ProviderMock:
		return model.NewMockClient(c.modelOr("mock")), nil
	case ProviderOpenAI:
		return openaimodel.NewClient(func(o *openaimodel.Options) {
			if c.Model != "" {
				o.Model = c.Model
			}
			o.RequestOptions = append(o.RequestOptions, option.WithAPIKey(c.OpenAIAPIKey))
		}), nil
	case ProviderAzureOpenAI:
		return nonNil(openaimodel.NewAzureClient(openaimodel.AzureOptions{
			Endpoint:   c.AzureEndpoint,
			APIVersion: c.AzureAPIVersion,
			APIKey:     c.AzureAPIKey,
		}, func(o *openaimodel.Options) {
			o.Model = c.Model
		}))
	case ProviderAnthropic:
		return anthropicmodel.NewClient(func(o *anthropicmodel.Options) {
			if c.Model != "" {
				o.Model = anthropic.Model(c.Model)
			}
			o.APIKey = c.AnthropicAPIKey
		}), nil
	case ProviderGemini:
		return nonNil(gemini.NewClient(ctx, func(o *gemini.Options) {
			if c.Model != "" {
				o.Model = c.Model
			}
			o.APIKey = c.GoogleAPIKey
		}))
	case ProviderOllama:
		return nonNil(langchain.NewOllamaClient(c.modelOr("llama3.1"), c.OllamaURL))
	default:
		return nil, fmt.Errorf("unknown provider %q", c.Provider)
	}
}

// nonNil keeps a failed constructor from returning a typed nil client.
func nonNil[T model.Client](client T, err error) (model.Client, error) {
	if err != nil {
		return nil, err
	}

	return client, nil
}

func (c Config) modelOr(fallback string) string {
	if c.Model != "" {
		return c.Model
	}

	return fallback
}

// CloseFunc releases a collaborator's resources.
type CloseFunc func(ctx context.Context) error

// NewSessionStore builds the configured session store. Postgres tables are
// migrated on open.
func (c Config) NewSessionStore(ctx context.Context) (core.SessionStore, CloseFunc, error) {
	switch c.SessionStore {
	case StoreMemory:
		return session.NewInMemoryStore(), func(context.Context) error { return nil }, nil
	case StorePostgres:
		store, err := postgres.New(ctx, c.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}

		if err := store.Migrate(ctx); err != nil {
			store.Close()
			return nil, nil, err
		}

		return store, func(context.Context) error {
			store.Close()
			return nil
		}, nil
	case StoreMongo:
		store, err := mongo.New(ctx, c.MongoURI, func(o *mongo.Options) {
			o.Database = c.MongoDB
		})
		if err != nil {
			return nil, nil, err
		}

		return store, store.Close, nil
	default:
		return nil, nil, fmt.Errorf("unknown session store %q", c.SessionStore)
	}
}

// NewRetriever builds a Pinecone retriever using OpenAI embeddings through
// langchaingo. It requires PINECONE_API_KEY, PINECONE_INDEX and OPENAI_API_KEY.
func (c Config) NewRetriever() (*rag.PineconeRetriever, error) {
	if c.PineconeAPIKey == "" || c.PineconeIndex == "" {
		return nil, fmt.Errorf("PINECONE_API_KEY and PINECONE_INDEX are required")
	}

	if c.OpenAIAPIKey == "" {
		return nil, fmt.Errorf("OPENAI_API_KEY is required for query embeddings")
	}

	llm, err := lcopenai.New(
		lcopenai.WithToken(c.OpenAIAPIKey),
		lcopenai.WithEmbeddingModel("text-embedding-3-small"),
	)
	if err != nil {
		return nil, fmt.Errorf("embedding client: %w", err)
	}

	embedder, err := embeddings.NewEmbedder(llm)
	if err != nil {
		return nil, fmt.Errorf("embedder: %w", err)
	}

	pc, err := rag.NewPineconeClient(c.PineconeAPIKey)
	if err != nil {
		return nil, err
	}

	return rag.NewPineconeRetriever(pc, embedder, func(o *rag.PineconeOptions) {
		o.IndexName = c.PineconeIndex
	})
}
