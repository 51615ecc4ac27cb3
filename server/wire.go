package server

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/vibelang-org/vibe/engine"
	"github.com/vibelang-org/vibe/tools"
	"github.com/vibelang-org/vibe/values"
)

// snapshotView is the JSON rendering of a RuntimeState's externally visible
// fields — the subset an embedder actually needs to decide its next
// resume_with_* call.
type snapshotView struct {
	ID     string `json:"id"`
	Status string `json:"status"`
	Result any    `json:"result,omitempty"`
	Error  string `json:"error,omitempty"`
	Prompt string `json:"prompt,omitempty"`
	Model  string `json:"model,omitempty"`
	Tool   string `json:"tool,omitempty"`
}

func snapshot(sess *session) snapshotView {
	s := sess.driver.State
	v := snapshotView{ID: sess.id, Status: string(s.Status)}
	if s.LastResult != nil {
		v.Result = tools.ValueToAny(s.LastResult)
	}
	switch s.Status {
	case engine.StatusError:
		if s.Error != nil {
			v.Error = s.Error.Error()
		}
	case engine.StatusAwaitingAI:
		v.Prompt = s.PendingAI.Prompt
		v.Model = s.PendingAI.ModelName
	case engine.StatusAwaitingTool:
		v.Tool = s.PendingTool.Name
	}
	return v
}

func valueFromWire(a any) *values.Value {
	return tools.AnyToValue(a)
}

// toEngineRounds converts the wire form of tool rounds an embedder reports
// alongside a final AI response into engine.ToolRound values.
func toEngineRounds(in []toolRoundWireIn) []engine.ToolRound {
	out := make([]engine.ToolRound, len(in))
	for i, r := range in {
		args := make(map[string]*values.Value, len(r.Args))
		for k, v := range r.Args {
			args[k] = tools.AnyToValue(v)
		}
		out[i] = engine.ToolRound{Name: r.Name, Args: args, Error: r.Error}
		if r.Error == "" {
			out[i].Result = tools.AnyToValue(r.Result)
		}
	}
	return out
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func errProgramNotFound(name string) error {
	return fmt.Errorf("server: no program named %q", name)
}

func errSessionNotFound(id string) error {
	return fmt.Errorf("server: no session %q", id)
}
