package api

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"embedctl/internal/config"
	"embedctl/internal/validation"
)

type recordedRequest struct {
	Method string
	Path   string
	Header http.Header
	Body   map[string]any
}

// fakeAPI routes "METHOD /path" to canned handlers and records every request.
type fakeAPI struct {
	t        *testing.T
	mu       sync.Mutex
	requests []recordedRequest
	routes   map[string]http.HandlerFunc
}

func newFakeAPI(t *testing.T) (*fakeAPI, *Client) {
	t.Helper()
	f := &fakeAPI{t: t, routes: map[string]http.HandlerFunc{}}
	srv := httptest.NewServer(http.HandlerFunc(f.serve))
	t.Cleanup(srv.Close)
	return f, New("test-api-key-123", config.RegionEU, WithBaseURL(srv.URL))
}

func (f *fakeAPI) handle(route string, h http.HandlerFunc) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.routes[route] = h
}

func (f *fakeAPI) reply(route string, status int, body string) {
	f.handle(route, func(w http.ResponseWriter, r *http.Request) {
		if body != "" {
			w.Header().Set("Content-Type", "application/json")
		}
		w.WriteHeader(status)
		_, _ = io.WriteString(w, body)
	})
}

func (f *fakeAPI) serve(w http.ResponseWriter, r *http.Request) {
	raw, _ := io.ReadAll(r.Body)
	rec := recordedRequest{Method: r.Method, Path: r.URL.EscapedPath(), Header: r.Header.Clone()}
	if len(raw) > 0 {
		assert.NoError(f.t, json.Unmarshal(raw, &rec.Body))
	}
	f.mu.Lock()
	f.requests = append(f.requests, rec)
	h, ok := f.routes[r.Method+" "+r.URL.EscapedPath()]
	f.mu.Unlock()

	if !ok {
		w.WriteHeader(http.StatusNotFound)
		_, _ = io.WriteString(w, `{"message":"no route"}`)
		return
	}
	h(w, r)
}

func (f *fakeAPI) last() recordedRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	require.NotEmpty(f.t, f.requests)
	return f.requests[len(f.requests)-1]
}

func TestRequestHeaders(t *testing.T) {
	f, c := newFakeAPI(t)
	f.reply("GET /embeddables", http.StatusOK, `{"embeddables":[]}`)

	_, err := c.ListEmbeddables(context.Background())
	require.NoError(t, err)

	req := f.last()
	assert.Equal(t, "Bearer test-api-key-123", req.Header.Get("Authorization"))
	assert.Equal(t, "application/json", req.Header.Get("Content-Type"))
	assert.Equal(t, "application/json", req.Header.Get("Accept"))
	assert.NotEmpty(t, req.Header.Get("X-Request-ID"))
}

func TestRequestErrors(t *testing.T) {
	tests := []struct {
		name       string
		status     int
		body       string
		wantStatus int
		wantMsg    string
	}{
		{"message field", http.StatusBadRequest, `{"message":"bad input"}`, 400, "bad input"},
		{"errorMessage field", http.StatusConflict, `{"errorMessage":"already exists"}`, 409, "already exists"},
		{"no body", http.StatusInternalServerError, ``, 500, "HTTP 500 error"},
		{"non-json body", http.StatusBadGateway, `<html>oops</html>`, 502, "HTTP 502 error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, c := newFakeAPI(t)
			f.reply("GET /environments", tt.status, tt.body)

			_, err := c.ListEnvironments(context.Background())
			require.Error(t, err)

			var apiErr *Error
			require.ErrorAs(t, err, &apiErr)
			assert.Equal(t, tt.wantStatus, apiErr.StatusCode)
			assert.Equal(t, tt.wantMsg, apiErr.Message)
			assert.Contains(t, err.Error(), "API Error (")
		})
	}
}

func TestErrorHelpers(t *testing.T) {
	assert.True(t, IsNotFound(&Error{StatusCode: 404}))
	assert.True(t, IsUnauthorized(&Error{StatusCode: 401}))
	assert.True(t, IsUnauthorized(&Error{StatusCode: 403}))
	assert.True(t, IsConflict(&Error{StatusCode: 409}))
	assert.True(t, IsConflict(&Error{StatusCode: 400, Message: "Connection Already Exists"}))
	assert.False(t, IsNotFound(assert.AnError))
	assert.Equal(t, 0, StatusOf(nil))
}

func TestEmptySuccessBodies(t *testing.T) {
	f, c := newFakeAPI(t)
	f.reply("DELETE /connections/pg", http.StatusNoContent, "")
	f.reply("DELETE /environments/prod", http.StatusOK, "not json at all")

	assert.NoError(t, c.DeleteConnection(context.Background(), "pg"))
	assert.NoError(t, c.DeleteEnvironment(context.Background(), "prod"))
}

func TestCreateConnectionPayload(t *testing.T) {
	f, c := newFakeAPI(t)
	f.reply("POST /connections", http.StatusCreated, `{"id":42,"name":"pg","type":"postgres"}`)

	conn, err := c.CreateConnection(context.Background(), validation.ConnectionConfigInput{
		Name:     "pg",
		Type:     validation.Postgres,
		Host:     "db.internal",
		Port:     5432,
		Database: "analytics",
		Username: "reader",
		Password: "s3cret",
	})
	require.NoError(t, err)
	assert.Equal(t, "42", conn.ID)
	assert.Equal(t, "42", conn.Identifier())

	body := f.last().Body
	assert.Equal(t, "pg", body["name"])
	assert.Equal(t, "postgres", body["type"])
	creds := body["credentials"].(map[string]any)
	assert.Equal(t, "reader", creds["user"])
	assert.NotContains(t, creds, "username")
	assert.Equal(t, float64(5432), creds["port"])
}

func TestCreateConnectionBigQuery(t *testing.T) {
	f, c := newFakeAPI(t)
	f.reply("POST /connections", http.StatusCreated, "")

	conn, err := c.CreateConnection(context.Background(), validation.ConnectionConfigInput{
		Name:   "bq",
		Type:   validation.BigQuery,
		Config: map[string]any{"project_id": "acme", "private_key": "---"},
	})
	require.NoError(t, err)
	assert.Equal(t, "bq", conn.Name)
	assert.Equal(t, "bq", conn.Identifier())

	creds := f.last().Body["credentials"].(map[string]any)
	assert.Equal(t, "acme", creds["project_id"])
}

func TestListConnectionsNamesOnly(t *testing.T) {
	f, c := newFakeAPI(t)
	f.reply("GET /connections", http.StatusOK, `{"connections":["pg","broken"]}`)
	f.reply("GET /connections/pg", http.StatusOK, `{"name":"pg","type":"postgres","credentials":{"host":"db","database":"app","port":5432}}`)
	f.reply("GET /connections/broken", http.StatusInternalServerError, `{"message":"boom"}`)

	conns, err := c.ListConnections(context.Background())
	require.NoError(t, err)
	require.Len(t, conns, 2)

	assert.Equal(t, "postgres", conns[0].Type)
	assert.Equal(t, "db", conns[0].Host())
	assert.Equal(t, "app", conns[0].Database())
	assert.Equal(t, Connection{Name: "broken", Type: "unknown"}, conns[1])
}

func TestListConnectionsShapes(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"wrapped objects", `{"connections":[{"id":"c1","name":"pg","type":"postgres"}]}`},
		{"bare array", `[{"id":"c1","name":"pg","type":"postgres"}]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, c := newFakeAPI(t)
			f.reply("GET /connections", http.StatusOK, tt.body)

			conns, err := c.ListConnections(context.Background())
			require.NoError(t, err)
			require.Len(t, conns, 1)
			assert.Equal(t, "c1", conns[0].Identifier())
		})
	}
}

func TestEnvironmentMappingShapes(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"connections map", `{"id":"e1","name":"prod","connections":{"main":"c1"}}`},
		{"datasources map", `{"id":"e1","name":"prod","datasources":{"main":"c1"}}`},
		{"array of objects", `{"id":"e1","name":"prod","datasources":[{"dataSource":"main","connection":"c1"}]}`},
		{"array alt keys", `{"id":"e1","name":"prod","connections":[{"name":"main","connectionId":"c1"}]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var env Environment
			require.NoError(t, json.Unmarshal([]byte(tt.body), &env))
			assert.Equal(t, map[string]string{"main": "c1"}, env.Mappings)
			assert.Equal(t, []string{"main"}, env.DataSources())
		})
	}
}

func TestListEnvironmentsShapes(t *testing.T) {
	for _, body := range []string{
		`[{"name":"prod"},{"id":"e2","name":"dev"}]`,
		`{"environments":[{"name":"prod"},{"id":"e2","name":"dev"}]}`,
	} {
		f, c := newFakeAPI(t)
		f.reply("GET /environments", http.StatusOK, body)

		envs, err := c.ListEnvironments(context.Background())
		require.NoError(t, err)
		require.Len(t, envs, 2)
		assert.Equal(t, "prod", envs[0].Identifier())
		assert.Equal(t, "e2", envs[1].Identifier())
	}
}

func TestEnvironmentUnknownMappingShapeKeepsName(t *testing.T) {
	for _, body := range []string{
		`{"id":"env-1","name":"Prod","connections":5}`,
		`{"id":"env-1","name":"Prod","datasources":"main"}`,
		`{"id":"env-1","name":"Prod","connections":[1,2]}`,
	} {
		var env Environment
		require.NoError(t, json.Unmarshal([]byte(body), &env), body)
		assert.Equal(t, "Prod", env.Name)
		assert.Equal(t, "env-1", env.ID)
		assert.Empty(t, env.Mappings)
	}
}

func TestListEnvironmentsKeepsOddEntries(t *testing.T) {
	f, c := newFakeAPI(t)
	f.reply("GET /environments", http.StatusOK,
		`[{"id":"env-1","name":"Prod","connections":5},{"id":true,"name":"Staging"},42,{"name":"dev","connections":{"main":"c1"}}]`)

	envs, err := c.ListEnvironments(context.Background())
	require.NoError(t, err)
	require.Len(t, envs, 3)
	assert.Equal(t, "Prod", envs[0].Name)
	assert.Equal(t, "Staging", envs[1].Name)
	assert.Equal(t, "dev", envs[2].Name)
	assert.Equal(t, map[string]string{"main": "c1"}, envs[2].Mappings)
}

func TestCreateEnvironment(t *testing.T) {
	f, c := newFakeAPI(t)
	f.reply("POST /environments", http.StatusCreated, `{"id":"e1","name":"prod"}`)

	env, err := c.CreateEnvironment(context.Background(), "prod", map[string]string{"main": "c1"})
	require.NoError(t, err)
	assert.Equal(t, "e1", env.ID)
	assert.Equal(t, map[string]string{"main": "c1"}, env.Mappings)

	body := f.last().Body
	assert.Equal(t, "prod", body["name"])
	assert.Equal(t, map[string]any{"main": "c1"}, body["datasourceMappings"])
}

func TestUpdateEnvironmentEscapesName(t *testing.T) {
	f, c := newFakeAPI(t)
	f.reply("PUT /environments/my%20env", http.StatusOK, `{"id":"e1","name":"renamed"}`)

	env, err := c.UpdateEnvironment(context.Background(), "my env", EnvironmentUpdate{Name: "renamed"})
	require.NoError(t, err)
	assert.Equal(t, "renamed", env.Name)
	assert.Equal(t, "renamed", f.last().Body["name"])
}

func TestEmbeddablePublishedDates(t *testing.T) {
	f, c := newFakeAPI(t)
	f.reply("GET /embeddables", http.StatusOK, `{"embeddables":[
		{"id":"a","name":"String","lastPublishedAt":"2024-05-01T10:00:00Z"},
		{"id":"b","name":"Object","lastPublishedAt":{"date":"2024-05-02T10:00:00Z"}},
		{"id":"c","name":"Empty","lastPublishedAt":{}},
		{"id":"d","name":"Missing"}
	]}`)

	items, err := c.ListEmbeddables(context.Background())
	require.NoError(t, err)
	require.Len(t, items, 4)

	require.NotNil(t, items[0].LastPublishedAt)
	assert.Equal(t, 2024, items[0].LastPublishedAt.Year())
	require.NotNil(t, items[1].LastPublishedAt)
	assert.Equal(t, 2, items[1].LastPublishedAt.Day())
	assert.Nil(t, items[2].LastPublishedAt)
	assert.Nil(t, items[3].LastPublishedAt)
}

func TestValidateAPIKey(t *testing.T) {
	f, c := newFakeAPI(t)
	f.reply("GET /embeddables", http.StatusOK, `{"embeddables":[]}`)
	assert.True(t, c.ValidateAPIKey(context.Background()))

	f.reply("GET /embeddables", http.StatusUnauthorized, `{"message":"invalid key"}`)
	assert.False(t, c.ValidateAPIKey(context.Background()))
}

func TestGenerateSecurityTokenDefaults(t *testing.T) {
	f, c := newFakeAPI(t)
	fixed := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return fixed }
	f.reply("POST /security-token", http.StatusOK, `{"token":"tok-123"}`)

	tok, err := c.GenerateSecurityToken(context.Background(), "emb-1", TokenOptions{Environment: "prod"})
	require.NoError(t, err)
	assert.Equal(t, "tok-123", tok.Token)
	assert.Equal(t, fixed.Add(time.Hour), tok.ExpiresAt)

	body := f.last().Body
	assert.Equal(t, "emb-1", body["embeddableId"])
	assert.Equal(t, float64(3600), body["expiryInSeconds"])
	assert.Equal(t, map[string]any{}, body["securityContext"])
	assert.Equal(t, map[string]any{"id": "cli-user"}, body["user"])
	assert.Equal(t, "prod", body["environment"])
}

func TestGenerateSecurityTokenOptions(t *testing.T) {
	f, c := newFakeAPI(t)
	f.reply("POST /security-token", http.StatusOK, `{"token":"tok","embedUrl":"https://embed.example/x"}`)

	tok, err := c.GenerateSecurityToken(context.Background(), "emb-1", TokenOptions{
		ExpiryInSeconds: 7200,
		SecurityContext: map[string]any{"tenant": "acme"},
		User:            &TokenUser{ID: "u-9"},
	})
	require.NoError(t, err)
	assert.Equal(t, "https://embed.example/x", tok.EmbedURL)

	body := f.last().Body
	assert.Equal(t, float64(7200), body["expiryInSeconds"])
	assert.Equal(t, map[string]any{"tenant": "acme"}, body["securityContext"])
	assert.Equal(t, map[string]any{"id": "u-9"}, body["user"])
	assert.NotContains(t, body, "environment")
}

func TestGenerateSecurityTokenMissingToken(t *testing.T) {
	f, c := newFakeAPI(t)
	f.reply("POST /security-token", http.StatusOK, `{}`)

	_, err := c.GenerateSecurityToken(context.Background(), "emb-1", TokenOptions{})
	assert.ErrorIs(t, err, ErrEmptyToken)
}

func TestTestConnection(t *testing.T) {
	t.Run("saved success", func(t *testing.T) {
		f, c := newFakeAPI(t)
		f.reply("POST /connections/pg/test", http.StatusOK, `{}`)

		res := c.TestConnection(context.Background(), Saved("pg"))
		assert.True(t, res.Success)
		assert.Equal(t, "Connection test successful", res.Message)
	})

	t.Run("draft failure", func(t *testing.T) {
		f, c := newFakeAPI(t)
		f.reply("POST /connections/test", http.StatusBadRequest,
			`{"errorMessage":"generic","underlyingErrorMessage":"password authentication failed for user"}`)

		res := c.TestConnection(context.Background(), Draft(validation.ConnectionConfigInput{
			Name: "pg", Type: validation.Postgres, Host: "h", Database: "d", Username: "u", Password: "p",
		}))
		assert.False(t, res.Success)
		assert.Equal(t, "password authentication failed for user", res.Error)

		creds := f.last().Body["credentials"].(map[string]any)
		assert.Equal(t, "u", creds["user"])
	})

	t.Run("failure without body", func(t *testing.T) {
		f, c := newFakeAPI(t)
		f.reply("POST /connections/pg/test", http.StatusInternalServerError, "")

		res := c.TestConnection(context.Background(), Saved("pg"))
		assert.False(t, res.Success)
		assert.Equal(t, "Connection test failed", res.Error)
	})

	t.Run("transport failure", func(t *testing.T) {
		srv := httptest.NewServer(http.NotFoundHandler())
		url := srv.URL
		srv.Close()

		c := New("test-api-key-123", config.RegionUS, WithBaseURL(url))
		res := c.TestConnection(context.Background(), Saved("pg"))
		assert.False(t, res.Success)
		assert.Contains(t, res.Error, "refused")
	})

	t.Run("transport failure hides the endpoint", func(t *testing.T) {
		srv := httptest.NewServer(http.NotFoundHandler())
		url := srv.URL
		srv.Close()

		c := New("test-api-key-123", config.RegionUS, WithBaseURL(url))
		res := c.TestConnection(context.Background(), Saved("users_db"))
		assert.False(t, res.Success)
		assert.NotContains(t, res.Error, "users_db")
		assert.NotContains(t, res.Error, url)
		assert.Equal(t, res.Error, res.Message)
	})
}

func TestRedactHidesSecrets(t *testing.T) {
	out := redact([]byte(`{"name":"pg","credentials":{"password":"hunter2","user":"u"}}`))
	assert.NotContains(t, out, "hunter2")
	assert.Contains(t, out, `"user":"u"`)
}

func TestNewUsesRegionBaseURL(t *testing.T) {
	c := New("key", config.RegionUS)
	assert.Equal(t, config.RegionUS.BaseURL(), c.BaseURL())

	c = New("key", config.RegionUS, WithBaseURL("http://localhost:8080/"))
	assert.Equal(t, "http://localhost:8080", c.BaseURL())
}
