package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/moodlog/pkg/config"
	"github.com/dmitrymomot/moodlog/pkg/session"
)

func newAuthServer(t *testing.T) *httptest.Server {
	t.Helper()

	r := chi.NewRouter()
	for _, prefix := range []string{"/api/auth", "/api/admin"} {
		token := "tok-user"
		if prefix == "/api/admin" {
			token = "tok-admin"
		}
		r.Post(prefix+"/login", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			_ = json.NewEncoder(w).Encode(map[string]any{
				"token": token, "refreshToken": "ref", "expiresIn": 3600,
				"user": map[string]any{"id": 1},
			})
		})
		r.Post(prefix+"/logout", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNoContent)
		})
	}

	server := httptest.NewServer(r)
	t.Cleanup(server.Close)
	return server
}

func setup(t *testing.T) string {
	t.Helper()
	server := newAuthServer(t)
	file := filepath.Join(t.TempDir(), "session.yaml")

	t.Setenv("APP_ENV", "production")
	t.Setenv("AUTH_API_URL", server.URL)
	t.Setenv("MOODLOG_SESSION_FILE", file)
	t.Setenv("MOODLOG_DURABLE", "file")
	config.ResetCache()
	t.Cleanup(config.ResetCache)

	return file
}

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	err := run(context.Background(), args, &out, &errOut)
	return out.String(), err
}

func TestRun_Usage(t *testing.T) {
	_, err := runCLI(t)
	assert.ErrorIs(t, err, errUsage)

	_, err = runCLI(t, "dance")
	assert.ErrorIs(t, err, errUsage)

	_, err = runCLI(t, "login", "-bogus")
	assert.ErrorIs(t, err, errUsage)
}

func TestRun_SessionLifecycle(t *testing.T) {
	setup(t)

	out, err := runCLI(t, "login", "-email", "alice@example.com", "-password", "secret", "-remember")
	require.NoError(t, err)
	var view summaryView
	require.NoError(t, json.Unmarshal([]byte(out), &view))
	assert.True(t, view.Authenticated)
	assert.True(t, view.RememberMe)

	out, err = runCLI(t, "status")
	require.NoError(t, err)
	assert.Contains(t, out, "durable: file")
	assert.Contains(t, out, `"authenticated": true`)

	out, err = runCLI(t, "token")
	require.NoError(t, err)
	assert.Equal(t, "tok-user\n", out)

	_, err = runCLI(t, "token", "-admin")
	assert.ErrorIs(t, err, session.ErrNoSession)

	out, err = runCLI(t, "logout")
	require.NoError(t, err)
	assert.Equal(t, "logged out\n", out)

	_, err = runCLI(t, "token")
	assert.ErrorIs(t, err, session.ErrNoSession)
}

func TestRun_AdminSession(t *testing.T) {
	setup(t)

	_, err := runCLI(t, "login", "-admin", "-email", "root@example.com", "-password", "secret", "-remember")
	require.NoError(t, err)

	out, err := runCLI(t, "token", "-admin")
	require.NoError(t, err)
	assert.Equal(t, "tok-admin\n", out)

	_, err = runCLI(t, "token")
	assert.ErrorIs(t, err, session.ErrNoSession)
}

func TestRun_ForgottenSessionEndsWithProcess(t *testing.T) {
	setup(t)

	_, err := runCLI(t, "login", "-email", "alice@example.com", "-password", "secret")
	require.NoError(t, err)

	_, err = runCLI(t, "token")
	assert.ErrorIs(t, err, session.ErrNoSession)
}

func TestDefaultSessionFile(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)

	path, err := defaultSessionFile()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "moodlog", "session.yaml"), path)
}
