package main

import (
	"context"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/smegrowth/profiler-cli/internal/pipeline"
	"github.com/smegrowth/profiler-cli/internal/store"
	"github.com/smegrowth/profiler-cli/internal/vocab"
	"github.com/smegrowth/profiler-cli/pkg/strategy"
	"github.com/smegrowth/profiler-cli/pkg/textgen"
)

// appEnv holds the initialized store, vocabulary, profile builder and strategy
// client shared by the serve/build/batch commands.
type appEnv struct {
	Store    store.Store
	Vocab    *vocab.Vocabulary
	Builder  *pipeline.Builder
	Strategy strategy.Client
}

// Close releases resources held by the environment.
func (e *appEnv) Close() {
	if e.Store != nil {
		_ = e.Store.Close()
	}
}

// initEnv sets up the store for the configured driver, loads the vocabulary
// overlay when one is configured, and wires the builder to the configured
// text-generation provider. Callers should defer env.Close().
func initEnv(ctx context.Context) (*appEnv, error) {
	st, err := initStore(ctx)
	if err != nil {
		return nil, err
	}

	if err := st.Migrate(ctx); err != nil {
		_ = st.Close()
		return nil, eris.Wrap(err, "migrate store")
	}

	v := vocab.New()
	if cfg.Pipeline.VocabFile != "" {
		if err := v.LoadOverlay(cfg.Pipeline.VocabFile); err != nil {
			_ = st.Close()
			return nil, eris.Wrapf(err, "load vocab overlay %s", cfg.Pipeline.VocabFile)
		}
		zap.L().Info("vocab overlay loaded", zap.String("file", cfg.Pipeline.VocabFile))
	}

	gateway, err := initGateway()
	if err != nil {
		_ = st.Close()
		return nil, err
	}

	stratClient := strategy.NewClient(
		strategy.WithBaseURL(cfg.Strategy.BaseURL),
		strategy.WithTimeout(time.Duration(cfg.Strategy.TimeoutSecs)*time.Second),
	)

	return &appEnv{
		Store:    st,
		Vocab:    v,
		Builder:  pipeline.NewBuilder(v, gateway, cfg.Pipeline.Currency),
		Strategy: stratClient,
	}, nil
}

func initStore(ctx context.Context) (store.Store, error) {
	switch cfg.Store.Driver {
	case "postgres":
		if cfg.Store.DatabaseURL == "" {
			return nil, eris.New("store.database_url is required for the postgres driver")
		}
		return store.NewPostgres(ctx, cfg.Store.DatabaseURL, &store.PoolConfig{
			MaxConns: cfg.Store.MaxConns,
			MinConns: cfg.Store.MinConns,
		})
	case "sqlite", "":
		return store.NewSQLite(cfg.Store.SQLitePath)
	case "memory":
		return store.NewMemory(), nil
	default:
		return nil, eris.Errorf("unknown store driver %q", cfg.Store.Driver)
	}
}

func initGateway() (textgen.Client, error) {
	switch cfg.LLM.Provider {
	case "anthropic":
		if cfg.LLM.APIKey == "" {
			return nil, eris.New("llm.api_key is required for the anthropic provider")
		}
		opts := []textgen.AnthropicOption{}
		// llm.model defaults to the local backend's model; only forward it
		// when the operator picked an Anthropic one.
		if strings.HasPrefix(cfg.LLM.Model, "claude") {
			opts = append(opts, textgen.WithAnthropicModel(cfg.LLM.Model))
		}
		if cfg.LLM.MaxTokens > 0 {
			opts = append(opts, textgen.WithAnthropicMaxTokens(cfg.LLM.MaxTokens))
		}
		return textgen.NewAnthropic(cfg.LLM.APIKey, opts...), nil
	case "local", "":
		return textgen.NewLocal(
			textgen.WithBaseURL(cfg.LLM.BaseURL),
			textgen.WithModel(cfg.LLM.Model),
			textgen.WithTimeout(time.Duration(cfg.LLM.TimeoutSecs)*time.Second),
			textgen.WithTemperature(cfg.LLM.Temperature),
		), nil
	default:
		return nil, eris.Errorf("unknown llm provider %q", cfg.LLM.Provider)
	}
}
