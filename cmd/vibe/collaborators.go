package main

import (
	"context"
	"fmt"
	"log"

	"github.com/vibelang-org/vibe/audit"
	"github.com/vibelang-org/vibe/engine"
	"github.com/vibelang-org/vibe/hostlang"
	"github.com/vibelang-org/vibe/memory"
	"github.com/vibelang-org/vibe/providers"
	"github.com/vibelang-org/vibe/runner"
	"github.com/vibelang-org/vibe/values"
)

// modelResolver lets a Router discover a model's live ModelHandle binding
// straight from the running program's call stack (the scope chain of the
// current frame, the same lookup handleAICall uses), so the CLI never has to
// duplicate the model statement's own field evaluation (engine/model.go
// already did it once, at DeclareModel time).
func modelResolver(state *engine.RuntimeState) providers.Resolver {
	return func(varName string) (values.ModelHandle, bool) {
		v, _, ok := engine.LookupVariable(state.CallStack, len(state.CallStack)-1, varName)
		if !ok {
			return values.ModelHandle{}, false
		}
		u := v.Value.Underlying()
		if u.Type != values.TypeModelHandle {
			return values.ModelHandle{}, false
		}
		h, ok := u.Data.(*values.ModelHandle)
		if !ok {
			return values.ModelHandle{}, false
		}
		return *h, true
	}
}

// buildAuditSink opens whichever of audit.SQLSink/memory.VectorStore the
// config points at and fans both into one engine.AuditSink. Either, both, or
// neither may be configured; closers is returned so callers can release them
// on shutdown.
func buildAuditSink(ctx context.Context, cfg *Config) (engine.AuditSink, []func() error, error) {
	var sinks audit.Multi
	var closers []func() error

	if cfg.Audit.DSN != "" {
		driver := cfg.Audit.Driver
		if driver == "" {
			driver = audit.DriverSQLite
		}
		sink, err := audit.Open(ctx, driver, cfg.Audit.DSN)
		if err != nil {
			return nil, nil, fmt.Errorf("audit sink: %w", err)
		}
		sinks = append(sinks, sink)
		closers = append(closers, sink.Close)
		log.Printf("audit: recording to %s (%s)", cfg.Audit.DSN, driver)
	}

	if cfg.Memory.DSN != "" {
		embedder := memory.OpenAIEmbedder{APIKey: cfg.Memory.EmbedderAPIKey, URL: cfg.Memory.EmbedderURL}
		store, err := memory.Open(ctx, cfg.Memory.DSN, embedder)
		if err != nil {
			return nil, nil, fmt.Errorf("memory store: %w", err)
		}
		sinks = append(sinks, store)
		closers = append(closers, func() error { store.Close(); return nil })
		log.Printf("memory: recall store at %s", cfg.Memory.DSN)
	}

	if len(sinks) == 0 {
		return nil, nil, nil
	}
	return sinks, closers, nil
}

// newCollaborators assembles the reference runner.Collaborators set: a
// provider router resolving models straight from state, the yaegi host
// evaluator, and whatever audit sinks the config names. Tools are left
// unwired here — RequestTool is always the embedder's own choice about when
// a vibe interaction's tool round happens, never something Advance resolves
// on its own (see runner.Driver).
func newCollaborators(ctx context.Context, state *engine.RuntimeState, cfg *Config) (runner.Collaborators, []func() error, error) {
	router := providers.NewRouter()
	router.SetResolver(modelResolver(state))

	auditSink, closers, err := buildAuditSink(ctx, cfg)
	if err != nil {
		return runner.Collaborators{}, nil, err
	}

	return runner.Collaborators{
		Providers: router,
		Host:      hostlang.YaegiEvaluator{},
		Audit:     auditSink,
	}, closers, nil
}
