package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/vibelang-org/vibe/runner"
)

type fakeProvider struct{}

func (fakeProvider) Complete(ctx context.Context, model, prompt, contextText string) (string, error) {
	return "reply to: " + prompt, nil
}

func newTestAPI() *API {
	return New(WithCollaborators(runner.Collaborators{Providers: fakeProvider{}}))
}

func TestCreateSessionRunsToCompletion(t *testing.T) {
	api := newTestAPI()
	srv := httptest.NewServer(api.Routes())
	defer srv.Close()

	body, _ := json.Marshal(createSessionRequest{Program: "greeting"})
	resp, err := http.Post(srv.URL+"/sessions", "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("POST /sessions: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}

	var view snapshotView
	if err := json.NewDecoder(resp.Body).Decode(&view); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if view.Status != "completed" {
		t.Fatalf("status = %q, want completed", view.Status)
	}
	text, ok := view.Result.(string)
	if !ok || text == "" {
		t.Fatalf("result = %v, want a non-empty string", view.Result)
	}
}

func TestCreateSessionUnknownProgram(t *testing.T) {
	api := newTestAPI()
	srv := httptest.NewServer(api.Routes())
	defer srv.Close()

	body, _ := json.Marshal(createSessionRequest{Program: "nonexistent"})
	resp, err := http.Post(srv.URL+"/sessions", "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("POST /sessions: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", resp.StatusCode)
	}
}

func TestGetSessionUnknownID(t *testing.T) {
	api := newTestAPI()
	srv := httptest.NewServer(api.Routes())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/sessions/does-not-exist")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", resp.StatusCode)
	}
}

func TestListPrograms(t *testing.T) {
	api := newTestAPI()
	srv := httptest.NewServer(api.Routes())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/programs")
	if err != nil {
		t.Fatalf("GET /programs: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	var out []map[string]string
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(out) == 0 {
		t.Fatal("expected at least one program listed")
	}
}
