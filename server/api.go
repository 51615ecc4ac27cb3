// Package server is the embedder-facing network API (§6 Engine API exposed
// remotely, §4.11): a thin HTTP/WS front end owning a map of session id to
// *engine.RuntimeState, calling straight into the engine's Resume*/RunUntilPause
// functions through a runner.Driver. It is pure plumbing — one HTTP endpoint
// per ai/user/host/tool/compress resumption, with no endpoint for an
// imported-host-call suspension — and the only component that needs the
// chi/cors/websocket stack.
package server

import (
	"encoding/json"
	"net/http"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/google/uuid"

	"github.com/vibelang-org/vibe/engine"
	"github.com/vibelang-org/vibe/programs"
	"github.com/vibelang-org/vibe/providers"
	"github.com/vibelang-org/vibe/runner"
	"github.com/vibelang-org/vibe/telemetry"
)

// API owns every live session and exposes them over HTTP. Multiple sessions
// run concurrently, one RuntimeState each guarded by its own mutex — the
// embedder-level concurrency §5 allows ("each thread owns its own
// RuntimeState").
type API struct {
	mu       sync.RWMutex
	sessions map[string]*session

	collaborators runner.Collaborators
	metrics       *telemetry.Metrics
}

type session struct {
	mu     sync.Mutex
	id     string
	driver *runner.Driver
}

// Option configures a new API.
type Option func(*API)

// WithCollaborators wires the ProviderClient/ToolExecutor/HostEvaluator/
// AuditSink every new session's runner.Driver is built with.
func WithCollaborators(c runner.Collaborators) Option {
	return func(a *API) { a.collaborators = c }
}

// WithMetrics attaches a telemetry.Metrics instance; nil (the default)
// disables recording.
func WithMetrics(m *telemetry.Metrics) Option {
	return func(a *API) { a.metrics = m }
}

// New builds an API with no sessions yet.
func New(opts ...Option) *API {
	a := &API{sessions: make(map[string]*session)}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Routes builds the chi.Router serving this API, with permissive CORS for
// browser-based embedders.
func (a *API) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST"},
		AllowedHeaders:   []string{"Content-Type"},
		AllowCredentials: false,
	}))

	r.Get("/programs", a.handleListPrograms)
	r.Post("/sessions", a.handleCreateSession)
	r.Route("/sessions/{id}", func(r chi.Router) {
		r.Get("/", a.handleGetSession)
		r.Post("/resume/ai", a.handleResumeAI)
		r.Post("/resume/user", a.handleResumeUser)
		r.Post("/resume/host", a.handleResumeHost)
		r.Post("/resume/tool", a.handleResumeTool)
		r.Post("/resume/compress", a.handleResumeCompress)
		r.Get("/stream", a.handleStream)
	})
	return r
}

func (a *API) handleListPrograms(w http.ResponseWriter, r *http.Request) {
	type entry struct {
		Name        string `json:"name"`
		Description string `json:"description"`
	}
	var out []entry
	for _, p := range programs.All {
		out = append(out, entry{Name: p.Name, Description: p.Description})
	}
	writeJSON(w, http.StatusOK, out)
}

type createSessionRequest struct {
	Program string `json:"program"`
}

func (a *API) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var req createSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	p, ok := programs.All[req.Program]
	if !ok {
		writeError(w, http.StatusNotFound, errProgramNotFound(req.Program))
		return
	}

	program := p.Build()
	state := engine.InitialState(program, engine.Options{LogAIInteractions: true})
	// A session's Router is shared across every concurrent session this API
	// serves, so it can't discover models the way a single-process CLI run
	// does (by reading the one RuntimeState its Resolver closes over) —
	// register this program's model declarations statically instead, before
	// the program has taken its first step.
	if router, ok := a.collaborators.Providers.(*providers.Router); ok {
		if err := providers.RegisterStaticModels(router, program); err != nil {
			writeError(w, http.StatusInternalServerError, err)
			return
		}
	}
	driver := runner.New(state, a.collaborators)
	sess := &session{id: uuid.NewString(), driver: driver}

	a.mu.Lock()
	a.sessions[sess.id] = sess
	a.mu.Unlock()
	if a.metrics != nil {
		a.metrics.SessionsActive.Add(r.Context(), 1)
	}

	a.advanceAndReply(w, r, sess)
}

func (a *API) lookupSession(w http.ResponseWriter, r *http.Request) *session {
	id := chi.URLParam(r, "id")
	a.mu.RLock()
	sess, ok := a.sessions[id]
	a.mu.RUnlock()
	if !ok {
		writeError(w, http.StatusNotFound, errSessionNotFound(id))
		return nil
	}
	return sess
}

func (a *API) handleGetSession(w http.ResponseWriter, r *http.Request) {
	sess := a.lookupSession(w, r)
	if sess == nil {
		return
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	writeJSON(w, http.StatusOK, snapshot(sess))
}

type resumeAIRequest struct {
	Response string            `json:"response"`
	Rounds   []toolRoundWireIn `json:"rounds"`
}

type toolRoundWireIn struct {
	Name   string         `json:"name"`
	Args   map[string]any `json:"args"`
	Result any            `json:"result"`
	Error  string         `json:"error"`
}

func (a *API) handleResumeAI(w http.ResponseWriter, r *http.Request) {
	sess := a.lookupSession(w, r)
	if sess == nil {
		return
	}
	var req resumeAIRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()
	rounds := toEngineRounds(req.Rounds)
	if _, err := engine.ResumeWithAIResponse(sess.driver.State, req.Response, rounds); err != nil {
		writeError(w, http.StatusConflict, err)
		return
	}
	a.advanceAndReply(w, r, sess)
}

type resumeUserRequest struct {
	Input string `json:"input"`
}

func (a *API) handleResumeUser(w http.ResponseWriter, r *http.Request) {
	sess := a.lookupSession(w, r)
	if sess == nil {
		return
	}
	var req resumeUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	if _, err := engine.ResumeWithUserInput(sess.driver.State, req.Input); err != nil {
		writeError(w, http.StatusConflict, err)
		return
	}
	a.advanceAndReply(w, r, sess)
}

type resumeHostRequest struct {
	Result any `json:"result"`
}

func (a *API) handleResumeHost(w http.ResponseWriter, r *http.Request) {
	sess := a.lookupSession(w, r)
	if sess == nil {
		return
	}
	var req resumeHostRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	if _, err := engine.ResumeWithHostResult(sess.driver.State, valueFromWire(req.Result)); err != nil {
		writeError(w, http.StatusConflict, err)
		return
	}
	a.advanceAndReply(w, r, sess)
}

type resumeToolRequest struct {
	Result any    `json:"result"`
	Error  string `json:"error"`
}

func (a *API) handleResumeTool(w http.ResponseWriter, r *http.Request) {
	sess := a.lookupSession(w, r)
	if sess == nil {
		return
	}
	var req resumeToolRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	if _, err := engine.ResumeWithToolResult(sess.driver.State, valueFromWire(req.Result), req.Error); err != nil {
		writeError(w, http.StatusConflict, err)
		return
	}
	a.advanceAndReply(w, r, sess)
}

type resumeCompressRequest struct {
	Summary string `json:"summary"`
}

func (a *API) handleResumeCompress(w http.ResponseWriter, r *http.Request) {
	sess := a.lookupSession(w, r)
	if sess == nil {
		return
	}
	var req resumeCompressRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	if _, err := engine.ResumeWithCompressResult(sess.driver.State, req.Summary); err != nil {
		writeError(w, http.StatusConflict, err)
		return
	}
	a.advanceAndReply(w, r, sess)
}

// advanceAndReply runs the wired collaborators as far as they can and
// writes the resulting status. Caller must hold sess.mu.
func (a *API) advanceAndReply(w http.ResponseWriter, r *http.Request, sess *session) {
	if _, err := sess.driver.Advance(r.Context()); err != nil {
		writeError(w, http.StatusBadGateway, err)
		return
	}
	if a.metrics != nil {
		a.metrics.RecordSuspension(r.Context(), string(sess.driver.State.Status))
	}
	writeJSON(w, http.StatusOK, snapshot(sess))
}
