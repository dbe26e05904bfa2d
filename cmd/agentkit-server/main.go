// Command agentkit-server serves agents over HTTP.
//
// Configuration comes from the environment and an optional .env file:
//
//	AGENTKIT_PROVIDER=openai OPENAI_API_KEY=sk-... go run ./cmd/agentkit-server
//
// The server hosts an "Assistant" agent with the calculator toolkit and, when
// Pinecone is configured, a "Support" agent with a knowledge base tool.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hupe1980/agentkit"
	"github.com/hupe1980/agentkit/agent"
	"github.com/hupe1980/agentkit/config"
	"github.com/hupe1980/agentkit/tool"
	"github.com/hupe1980/agentkit/tool/prebuilt"
	"github.com/hupe1980/agentkit/tool/rag"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "agentkit-server:", err)
		os.Exit(1)
	}
}

func run() error {
	var (
		addr     = flag.String("addr", "", "listen address (overrides AGENTKIT_HTTP_ADDR)")
		envFile  = flag.String("env", "", "path to a .env file (default ./.env if present)")
		shutdown = flag.Duration("shutdown-timeout", 5*time.Second, "graceful shutdown timeout")
	)

	flag.Parse()

	var files []string
	if *envFile != "" {
		files = append(files, *envFile)
	}

	cfg, err := config.Load(files...)
	if err != nil {
		return err
	}

	if *addr != "" {
		cfg.HTTPAddr = *addr
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	kit, err := agentkit.FromConfig(ctx, cfg)
	if err != nil {
		return err
	}

	defer func() { _ = kit.Close(context.Background()) }()

	logger := kit.Logger()

	if _, err := kit.NewAgent("Assistant", func(o *agent.Options) {
		o.Description = "General assistant that can do arithmetic"
		o.Instructions = agent.NewInstructionFromText("You are a helpful assistant. Use the calculator tools for any arithmetic.")
		o.Tools = []tool.Registrable{prebuilt.CalculatorToolkit()}
	}); err != nil {
		return err
	}

	if retriever, err := cfg.NewRetriever(); err == nil {
		if _, err := kit.NewAgent("Support", func(o *agent.Options) {
			o.Description = "Customer support agent backed by a knowledge base"
			o.Instructions = agent.NewInstructionFromText("You answer customer questions. Search the knowledge base before answering and cite what you found.")
			o.Tools = []tool.Registrable{rag.NewKnowledgeBaseTool(retriever)}
		}); err != nil {
			return err
		}
	} else {
		logger.Info("server.support.disabled", "reason", err.Error())
	}

	if err := kit.Setup(ctx); err != nil {
		return fmt.Errorf("setup agents: %w", err)
	}

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           kit.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)

	go func() {
		logger.Info("server.start", "addr", cfg.HTTPAddr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}

		return err
	case <-ctx.Done():
	}

	logger.Info("server.shutdown")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), *shutdown)
	defer cancel()

	return srv.Shutdown(shutdownCtx)
}
