// Package providers is the reference ProviderClient (engine.ProviderClient)
// implementation (§4.11). The engine itself never imports this package — it
// only suspends into awaiting_ai and leaves invoking a real AI backend to
// whatever embedder wires one in. Router is that wiring: it keeps one entry
// per declared model (§4.3's `model` statement freezes name/apiKey/url/
// provider/maxRetriesOnError/thinkingLevel/tools into a values.ModelHandle)
// and dispatches each Complete call to the adapter matching that model's
// provider field.
package providers

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/sethvargo/go-retry"

	"github.com/vibelang-org/vibe/values"
)

// retryBaseDelay is the initial backoff between retries of a failed
// completion; it doubles on each subsequent attempt up to maxRetriesOnError.
const retryBaseDelay = 500 * time.Millisecond

// backend is the narrow seam every per-provider adapter satisfies. It is
// deliberately smaller than engine.ProviderClient: adapters work in terms of
// the full model handle (for apiKey/url/thinkingLevel), while Router is the
// one that satisfies engine.ProviderClient's (model-name-only) signature.
type backend interface {
	complete(ctx context.Context, model values.ModelHandle, prompt, contextText string) (string, error)
}

// Resolver looks up a model variable's live binding when Complete sees a
// model name it has no Register'd entry for — the common case for a single
// run-to-completion CLI invocation, since a `model` declaration only becomes
// a runtime ModelHandle once its declaring statement actually executes,
// which for a top-level model is typically just before the first
// awaiting_ai suspension that needs it. Wired by the embedder (cmd/vibe),
// not required by server.API, which instead expects the caller to have
// Register'd every model up front across a session's lifetime.
type Resolver func(varName string) (values.ModelHandle, bool)

// Router implements engine.ProviderClient by dispatching on a registered
// model's Provider field to one of the three dedicated adapters, falling
// back to the any-llm-go bridge for every provider name neither of those
// speaks natively.
type Router struct {
	mu       sync.RWMutex
	models   map[string]values.ModelHandle
	resolver Resolver
	openai   *OpenAI
	anthropic *Anthropic
	gemini   *Gemini
	fallback *AnyLLM
}

// NewRouter constructs a Router with all four backends ready; each backend
// builds its actual SDK client lazily, per call, from the model handle's own
// apiKey/url rather than a single process-wide credential.
func NewRouter() *Router {
	return &Router{
		models:    make(map[string]values.ModelHandle),
		openai:    &OpenAI{},
		anthropic: &Anthropic{},
		gemini:    &Gemini{},
		fallback:  &AnyLLM{},
	}
}

// Register makes a model handle's configuration available to Complete,
// keyed by the script-level variable name its `model` declaration bound
// (§4.3) — e.g. "agent" in `model agent { name: "gpt-4o", ... }" — which is
// exactly what engine.PendingAI.ModelName carries, not the handle's own Name
// field (the provider-facing model id passed to the backend SDK). Call this
// once per `model` declaration the loaded program encounters, typically
// while walking the entry program's top-level statements before the first
// RunUntilPause.
func (r *Router) Register(varName string, h values.ModelHandle) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.models[varName] = h
}

// SetResolver installs the fallback used by Complete on a cache miss.
func (r *Router) SetResolver(resolve Resolver) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.resolver = resolve
}

// Complete implements engine.ProviderClient.
func (r *Router) Complete(ctx context.Context, model, prompt, contextText string) (string, error) {
	r.mu.RLock()
	h, ok := r.models[model]
	resolve := r.resolver
	r.mu.RUnlock()
	if !ok && resolve != nil {
		if resolved, found := resolve(model); found {
			h, ok = resolved, true
			r.Register(model, h)
		}
	}
	if !ok {
		return "", fmt.Errorf("providers: no model registered with name %q", model)
	}

	var b backend
	switch strings.ToLower(h.Provider) {
	case "openai":
		b = r.openai
	case "anthropic":
		b = r.anthropic
	case "gemini", "google":
		b = r.gemini
	default:
		b = r.fallback
	}

	retries := h.MaxRetriesOnError
	if retries < 0 {
		retries = 0
	}
	backoff := retry.WithMaxRetries(uint64(retries), retry.NewExponential(retryBaseDelay))

	var out string
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		resp, err := b.complete(ctx, h, prompt, contextText)
		if err != nil {
			return retry.RetryableError(err)
		}
		out = resp
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("providers: %s: %w", h.Provider, err)
	}
	return out, nil
}
