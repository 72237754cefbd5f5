// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"

	"github.com/poiesic/docrag"
	"github.com/poiesic/docrag/ai"
	"github.com/poiesic/docrag/server"
)

func main() {
	// Optional .env next to the binary; absence is not an error.
	_ = godotenv.Load()

	app := &cli.App{
		Name:  "docrag",
		Usage: "Documentation retrieval service",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "info",
			},
		},
		Before: setupLogger,
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "Serve the search API over HTTP",
				Action: serveCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "cache-dir",
						Aliases: []string{"d"},
						Usage:   "Directory holding the corpus artifacts",
						Value:   "./data",
						EnvVars: []string{"RAG_CACHE_DIR"},
					},
					&cli.IntFlag{
						Name:    "port",
						Aliases: []string{"p"},
						Usage:   "TCP port to listen on",
						Value:   8080,
						EnvVars: []string{"RAG_SERVER_PORT"},
					},
					&cli.StringFlag{
						Name:    "backend",
						Usage:   "Scoring backend (embedding, lexical)",
						Value:   "embedding",
						EnvVars: []string{"RAG_BACKEND"},
					},
					&cli.StringFlag{
						Name:    "embedding-host",
						Usage:   "Embedding service host URL",
						Value:   "http://localhost:11434/v1",
						EnvVars: []string{"RAG_EMBEDDING_HOST"},
					},
					&cli.StringFlag{
						Name:    "embedding-model",
						Usage:   "Embedding model name",
						Value:   "all-minilm",
						EnvVars: []string{"RAG_EMBEDDING_MODEL"},
					},
					&cli.BoolFlag{
						Name:  "serial",
						Usage: "Handle one connection at a time instead of concurrently",
					},
					&cli.BoolFlag{
						Name:  "warmup",
						Usage: "Load the corpus at startup instead of on the first request",
					},
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func serveCommand(c *cli.Context) error {
	port := c.Int("port")
	if port < 1 || port > 65535 {
		return fmt.Errorf("invalid port %d: must be in 1-65535", port)
	}

	opts := []docrag.EngineOption{
		docrag.WithAIConfig(ai.NewConfig(
			ai.WithHost(c.String("embedding-host")),
			ai.WithModel(c.String("embedding-model")),
		)),
	}
	switch backend := c.String("backend"); backend {
	case "embedding":
	case "lexical":
		opts = append(opts, docrag.WithLexicalScoring())
	default:
		return fmt.Errorf("invalid backend %q: must be embedding or lexical", backend)
	}

	engine, err := docrag.NewEngine(c.String("cache-dir"), opts...)
	if err != nil {
		return fmt.Errorf("failed to create engine: %w", err)
	}
	defer engine.Close()

	if c.Bool("warmup") {
		go func() {
			if err := engine.Warmup(context.Background()); err != nil {
				slog.Error("warmup failed, will retry on first request", "err", err)
			}
		}()
	}

	srv, err := server.New(engine.Service())
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}

	addr := fmt.Sprintf(":%d", port)
	if c.Bool("serial") {
		serial := server.NewSerial(srv)
		go handleShutdown(func(context.Context) error { return serial.Close() })
		if err := serial.Start(addr); err != nil && !errors.Is(err, net.ErrClosed) {
			return err
		}
		return nil
	}

	go handleShutdown(srv.Shutdown)
	if err := srv.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// handleShutdown blocks until SIGINT or SIGTERM, then stops the server.
func handleShutdown(stop func(context.Context) error) {
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig

	slog.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := stop(ctx); err != nil {
		slog.Error("shutdown error", "err", err)
	}
}

func setupLogger(c *cli.Context) error {
	// Get log level from flag and normalize to lowercase
	levelStr := strings.ToLower(c.String("log-level"))

	// Map string to slog.Level
	var level slog.Level
	switch levelStr {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		return fmt.Errorf("invalid log level %q: must be one of debug, info, warn, error", levelStr)
	}

	// Configure slog with the specified level
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	return nil
}
