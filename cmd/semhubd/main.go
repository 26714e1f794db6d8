// Copyright 2025 Kadir Pekel
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

// Command semhubd is the semhub server.
//
// Usage:
//
//	semhubd serve --config config.yaml
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"

	"github.com/kadirpekel/semhub/pkg/cache"
	"github.com/kadirpekel/semhub/pkg/config"
	"github.com/kadirpekel/semhub/pkg/embedders"
	"github.com/kadirpekel/semhub/pkg/httpapi"
	"github.com/kadirpekel/semhub/pkg/llms"
	"github.com/kadirpekel/semhub/pkg/lock"
	"github.com/kadirpekel/semhub/pkg/logger"
	"github.com/kadirpekel/semhub/pkg/store"
)

// CLI defines the command-line interface.
type CLI struct {
	Serve ServeCmd `cmd:"" help:"Start the HTTP server."`

	Config string `short:"c" help:"Path to config file." type:"path" required:""`
}

// ServeCmd starts the HTTP server, the maintenance/retention scheduler, and
// blocks until an interrupt or terminate signal arrives.
type ServeCmd struct{}

func (c *ServeCmd) Run(cli *CLI) error {
	cfg, err := config.Load(cli.Config)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	level, err := logger.ParseLevel(cfg.Logger.Level)
	if err != nil {
		return fmt.Errorf("invalid logger level: %w", err)
	}
	logger.Init(level, os.Stderr, cfg.Logger.Format)
	log := logger.GetLogger()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		log.Info("shutting down")
		cancel()
	}()

	st, err := store.Open(cfg.Store)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer st.Close()

	ch := cache.New(cfg.Cache)
	lk := lock.New(cfg.Lock)

	llmReg := llms.NewRegistry()
	for name, llmCfg := range cfg.LLMs {
		if _, err := llmReg.CreateFromConfig(name, llmCfg); err != nil {
			return fmt.Errorf("build llm %q: %w", name, err)
		}
	}
	embReg := embedders.NewRegistry()
	for name, embCfg := range cfg.Embedders {
		if _, err := embReg.CreateFromConfig(name, embCfg); err != nil {
			return fmt.Errorf("build embedder %q: %w", name, err)
		}
	}

	app := httpapi.NewApp(cfg, st, ch, lk, llmReg, embReg)

	scheduler, err := scheduleMaintenance(ctx, cfg, st, embReg, app)
	if err != nil {
		return fmt.Errorf("schedule maintenance: %w", err)
	}
	scheduler.Start()
	defer scheduler.Stop()

	srv := &http.Server{
		Addr:    cfg.Server.Address,
		Handler: httpapi.NewRouter(app),
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), gracefulShutdownTimeout)
		defer shutdownCancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error("server shutdown failed", "error", err)
		}
	}()

	log.Info("semhubd listening", "address", cfg.Server.Address)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("serve: %w", err)
	}
	return nil
}

func main() {
	cli := CLI{}
	ctx := kong.Parse(&cli,
		kong.Name("semhubd"),
		kong.Description("semhub server"),
		kong.UsageOnError(),
	)
	err := ctx.Run(&cli)
	ctx.FatalIfErrorf(err)
}
