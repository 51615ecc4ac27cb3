package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/urfave/cli/v3"

	"github.com/vibelang-org/vibe/providers"
	"github.com/vibelang-org/vibe/runner"
	"github.com/vibelang-org/vibe/server"
	"github.com/vibelang-org/vibe/telemetry"
)

var serveCommand = &cli.Command{
	Name:  "serve",
	Usage: "Exposes the engine over HTTP, one session per running program",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:  "addr",
			Usage: "Address to listen on (overrides vibe.yaml's server.addr)",
		},
	},
	Action: serveAction,
}

func serveAction(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd.String("config"))
	if err != nil {
		return fmt.Errorf("vibe: load config: %w", err)
	}
	addr := cfg.Server.Addr
	if a := cmd.String("addr"); a != "" {
		addr = a
	}

	shutdownMetrics, err := telemetry.InitProvider(telemetry.ProviderConfig{ServiceName: "vibe"})
	if err != nil {
		return fmt.Errorf("vibe: init telemetry: %w", err)
	}
	defer shutdownMetrics(context.Background())

	auditSink, closers, err := buildAuditSink(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		for _, closeFn := range closers {
			if err := closeFn(); err != nil {
				log.Printf("vibe: close collaborator: %v", err)
			}
		}
	}()

	// Unlike runAction's single-session Router, a server.API serves many
	// concurrent sessions from one shared Collaborators set — there is no
	// single RuntimeState a Resolver could close over, so each session's
	// models are registered statically at creation time instead (see
	// server.handleCreateSession and providers.RegisterStaticModels).
	router := providers.NewRouter()
	collaborators := runner.Collaborators{
		Providers: router,
		Audit:     auditSink,
	}

	metrics := telemetry.Default()
	api := server.New(server.WithCollaborators(collaborators), server.WithMetrics(metrics))

	mux := http.NewServeMux()
	mux.Handle("/", api.Routes())
	mux.Handle("/metrics", promhttp.Handler())

	httpServer := &http.Server{Addr: addr, Handler: mux}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	serveErr := make(chan error, 1)
	go func() {
		log.Printf("vibe: serving on %s", addr)
		serveErr <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("vibe: serve: %w", err)
		}
		return nil
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	}
}
