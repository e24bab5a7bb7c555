package provision

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"embedctl/internal/api"
	"embedctl/internal/config"
)

// answer is one scripted reply. Exactly one of the fields is meaningful for
// the prompt kind it is consumed by.
type answer struct {
	text    string
	confirm bool
	err     error
}

func say(s string) answer { return answer{text: s} }

func choose(value string) answer { return answer{text: value} }

func yes() answer { return answer{confirm: true} }

func no() answer { return answer{confirm: false} }

func cancel() answer { return answer{err: ErrCancelled} }

// scriptedPrompter replays answers in order and records every question.
type scriptedPrompter struct {
	t       *testing.T
	answers []answer
	asked   []string
}

func script(t *testing.T, answers ...answer) *scriptedPrompter {
	return &scriptedPrompter{t: t, answers: answers}
}

func (p *scriptedPrompter) next(question string) answer {
	p.t.Helper()
	p.asked = append(p.asked, question)
	require.NotEmpty(p.t, p.answers, "unexpected prompt %q", question)
	a := p.answers[0]
	p.answers = p.answers[1:]
	return a
}

func (p *scriptedPrompter) Text(_ context.Context, q TextPrompt) (string, error) {
	a := p.next(q.Message)
	if a.err != nil {
		return "", a.err
	}
	v := a.text
	if v == "" {
		v = q.Default
	}
	if q.Validate != nil {
		if err := q.Validate(v); err != nil {
			return "", fmt.Errorf("scripted answer %q rejected: %w", v, err)
		}
	}
	return v, nil
}

func (p *scriptedPrompter) Select(_ context.Context, message string, choices []Choice) (string, error) {
	a := p.next(message)
	if a.err != nil {
		return "", a.err
	}
	for _, c := range choices {
		if c.Value == a.text {
			return a.text, nil
		}
	}
	return "", fmt.Errorf("scripted choice %q not offered for %q", a.text, message)
}

func (p *scriptedPrompter) Confirm(_ context.Context, message string, _ bool) (bool, error) {
	a := p.next(message)
	return a.confirm, a.err
}

func (p *scriptedPrompter) done() {
	p.t.Helper()
	require.Empty(p.t, p.answers, "unused scripted answers")
}

// recordingReporter keeps notes and warnings for assertions.
type recordingReporter struct {
	mu       sync.Mutex
	notes    []string
	warnings []string
	failures []string
}

func (r *recordingReporter) Heading(string)         {}
func (r *recordingReporter) Info(string, ...any)    {}
func (r *recordingReporter) Success(string, ...any) {}

func (r *recordingReporter) Warn(format string, args ...any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.warnings = append(r.warnings, fmt.Sprintf(format, args...))
}

func (r *recordingReporter) Note(title, _ string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notes = append(r.notes, title)
}

func (r *recordingReporter) Start(string) Activity { return &recordingActivity{r: r} }

type recordingActivity struct{ r *recordingReporter }

func (a *recordingActivity) Done(string) {}

func (a *recordingActivity) Fail(msg string) {
	a.r.mu.Lock()
	defer a.r.mu.Unlock()
	a.r.failures = append(a.r.failures, msg)
}

// fakeService is an in-memory stand-in for the remote API.
type fakeService struct {
	mu           sync.Mutex
	validKey     string
	connections  []map[string]any
	environments []map[string]any
	embeddables  []map[string]any
	testStatus   int
	testBody     string
	calls        []string
	lastToken    map[string]any
}

func (s *fakeService) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	route := r.Method + " " + r.URL.Path
	s.calls = append(s.calls, route)

	if r.Header.Get("Authorization") != "Bearer "+s.validKey {
		writeJSON(w, http.StatusUnauthorized, map[string]any{"message": "invalid API key"})
		return
	}

	var body map[string]any
	if data, _ := io.ReadAll(r.Body); len(data) > 0 {
		_ = json.Unmarshal(data, &body)
	}

	switch {
	case route == "GET /embeddables":
		writeJSON(w, http.StatusOK, map[string]any{"embeddables": orEmpty(s.embeddables)})
	case route == "GET /connections":
		names := []string{}
		for _, c := range s.connections {
			names = append(names, c["name"].(string))
		}
		writeJSON(w, http.StatusOK, map[string]any{"connections": names})
	case r.Method == http.MethodGet && strings.HasPrefix(r.URL.Path, "/connections/"):
		name := strings.TrimPrefix(r.URL.Path, "/connections/")
		for _, c := range s.connections {
			if c["name"] == name {
				writeJSON(w, http.StatusOK, c)
				return
			}
		}
		writeJSON(w, http.StatusNotFound, map[string]any{"message": "not found"})
	case route == "POST /connections/test" || (r.Method == http.MethodPost && strings.HasSuffix(r.URL.Path, "/test")):
		status := s.testStatus
		if status == 0 {
			status = http.StatusOK
		}
		w.WriteHeader(status)
		_, _ = io.WriteString(w, s.testBody)
	case route == "POST /connections":
		s.connections = append(s.connections, body)
		writeJSON(w, http.StatusCreated, body)
	case r.Method == http.MethodDelete && strings.HasPrefix(r.URL.Path, "/connections/"):
		w.WriteHeader(http.StatusNoContent)
	case route == "GET /environments":
		writeJSON(w, http.StatusOK, orEmpty(s.environments))
	case route == "POST /environments":
		env := map[string]any{
			"id":          fmt.Sprintf("env-%d", len(s.environments)+1),
			"name":        body["name"],
			"datasources": body["datasourceMappings"],
		}
		s.environments = append(s.environments, env)
		writeJSON(w, http.StatusCreated, env)
	case r.Method == http.MethodDelete && strings.HasPrefix(r.URL.Path, "/environments/"):
		w.WriteHeader(http.StatusNoContent)
	case route == "POST /security-token":
		s.lastToken = body
		writeJSON(w, http.StatusOK, map[string]any{"token": "tok-abc"})
	default:
		writeJSON(w, http.StatusNotFound, map[string]any{"message": "no route " + route})
	}
}

func (s *fakeService) callCount(prefix string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, c := range s.calls {
		if strings.HasPrefix(c, prefix) {
			n++
		}
	}
	return n
}

func (s *fakeService) failTests(status int, body string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.testStatus = status
	s.testBody = body
}

func (s *fakeService) seedConnections(conns ...map[string]any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.connections = append(s.connections, conns...)
}

func (s *fakeService) seedEnvironments(envs ...map[string]any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.environments = append(s.environments, envs...)
}

func (s *fakeService) seedEmbeddables(items ...map[string]any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.embeddables = append(s.embeddables, items...)
}

func (s *fakeService) connectionCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.connections)
}

func (s *fakeService) environmentCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.environments)
}

func (s *fakeService) tokenRequest() map[string]any {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastToken
}

func orEmpty(items []map[string]any) []map[string]any {
	if items == nil {
		return []map[string]any{}
	}
	return items
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

const testKey = "emb_test_key_123456"

type harness struct {
	svc      *fakeService
	store    *config.Store
	prompter *scriptedPrompter
	out      *recordingReporter
	orch     *Orchestrator
}

func newHarness(t *testing.T, answers ...answer) *harness {
	t.Helper()
	svc := &fakeService{validKey: testKey}
	srv := httptest.NewServer(svc)
	t.Cleanup(srv.Close)

	h := &harness{
		svc:      svc,
		store:    config.NewStoreInDir(t.TempDir()),
		prompter: script(t, answers...),
		out:      &recordingReporter{},
	}
	h.orch = New(h.store,
		WithPrompter(h.prompter),
		WithReporter(h.out),
		WithClientOptions(api.WithBaseURL(srv.URL)),
	)
	return h
}

// login stores a valid credential and returns a client for it.
func (h *harness) login(t *testing.T) *api.Client {
	t.Helper()
	require.NoError(t, h.store.Save(config.Config{APIKey: testKey, Region: config.RegionEU}))
	client, _, err := h.orch.Client()
	require.NoError(t, err)
	return client
}
