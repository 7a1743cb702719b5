package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/LeventeLantos/webhook-chat/internal/service"
)

// testEnv points every command at a fresh settings file.
func testEnv(t *testing.T) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "settings.yaml")
	t.Setenv("STORE_DRIVER", "file")
	t.Setenv("STORE_PATH", path)
	t.Setenv("POLL_INTERVAL_SECONDS", "3600")
	t.Setenv("WEBHOOK_TIMEOUT_SECONDS", "2")
	t.Setenv("LOG_LEVEL", "error")
	t.Setenv("LOG_FORMAT", "text")
	t.Setenv("WELCOME_MESSAGE", "Hi from the bot")
	return path
}

func run(t *testing.T, stdin string, args ...string) (stdout, stderr string, err error) {
	t.Helper()

	cmd := NewRootCommand()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)

	err = cmd.ExecuteContext(context.Background())
	return out.String(), errOut.String(), err
}

func webhook(t *testing.T, status int, body string) *httptest.Server {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestConfigSetAndShow(t *testing.T) {
	testEnv(t)

	out, _, err := run(t, "", "config", "set", "--url", " https://n8n.example.com/webhook/abc ", "--method", "get")
	if err != nil {
		t.Fatalf("config set error: %v", err)
	}
	if !strings.Contains(out, "Configuration saved: GET https://n8n.example.com/webhook/abc") {
		t.Fatalf("unexpected config set output %q", out)
	}

	out, _, err = run(t, "", "config", "show")
	if err != nil {
		t.Fatalf("config show error: %v", err)
	}
	for _, want := range []string{
		"webhookUrl: https://n8n.example.com/webhook/abc",
		"httpMethod: GET",
		"online: true",
		"theme: light",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in:\n%s", want, out)
		}
	}
}

func TestConfigSet_OnlyChangesGivenFlags(t *testing.T) {
	testEnv(t)

	if _, _, err := run(t, "", "config", "set", "--url", "https://a.example/hook", "--method", "PUT"); err != nil {
		t.Fatalf("config set error: %v", err)
	}
	if _, _, err := run(t, "", "config", "set", "--response-url", "https://a.example/replies"); err != nil {
		t.Fatalf("config set error: %v", err)
	}

	out, _, _ := run(t, "", "config", "show")
	for _, want := range []string{"httpMethod: PUT", "responseUrl: https://a.example/replies", "webhookUrl: https://a.example/hook"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in:\n%s", want, out)
		}
	}
}

func TestConfigSet_InvalidPersistsNothing(t *testing.T) {
	testEnv(t)

	_, _, err := run(t, "", "config", "set", "--url", "not a url")
	if err == nil || !strings.Contains(err.Error(), "webhookUrl") {
		t.Fatalf("expected webhookUrl validation error, got %v", err)
	}

	_, _, err = run(t, "", "config", "set")
	if err == nil || !strings.Contains(err.Error(), "nothing to set") {
		t.Fatalf("expected nothing-to-set error, got %v", err)
	}

	out, _, _ := run(t, "", "config", "show")
	if !strings.Contains(out, "online: false") {
		t.Fatalf("expected unconfigured state, got:\n%s", out)
	}
}

func TestConfigTest(t *testing.T) {
	testEnv(t)
	srv := webhook(t, http.StatusOK, `{}`)

	out, _, err := run(t, "", "config", "test", "--url", srv.URL)
	if err != nil {
		t.Fatalf("config test error: %v", err)
	}
	if !strings.Contains(out, "Test OK") {
		t.Fatalf("expected Test OK, got %q", out)
	}

	_, _, err = run(t, "", "config", "test")
	if err == nil || !strings.Contains(err.Error(), "not configured") {
		t.Fatalf("expected not configured error, got %v", err)
	}
}

func TestSend_NotConfigured(t *testing.T) {
	testEnv(t)

	_, _, err := run(t, "", "send", "oi")
	if !errors.Is(err, service.ErrNotConfigured) {
		t.Fatalf("expected ErrNotConfigured, got %v", err)
	}
	if !strings.Contains(err.Error(), "webchat config set") {
		t.Fatalf("expected configuration hint, got %v", err)
	}
}

func TestSend_PrintsTranscript(t *testing.T) {
	testEnv(t)
	srv := webhook(t, http.StatusOK, `{"message":"olá!","timestamp":"1700000000000"}`)

	if _, _, err := run(t, "", "config", "set", "--url", srv.URL); err != nil {
		t.Fatalf("config set error: %v", err)
	}

	out, _, err := run(t, "", "send", "hello", "there")
	if err != nil {
		t.Fatalf("send error: %v", err)
	}
	for _, want := range []string{"Hi from the bot", "hello there", "olá!", "✓✓"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in:\n%s", want, out)
		}
	}
}

func TestSend_JSONFormat(t *testing.T) {
	testEnv(t)
	srv := webhook(t, http.StatusOK, `[{"text":"pong"}]`)

	if _, _, err := run(t, "", "config", "set", "--url", srv.URL); err != nil {
		t.Fatalf("config set error: %v", err)
	}

	out, _, err := run(t, "", "send", "--format", "json", "ping")
	if err != nil {
		t.Fatalf("send error: %v", err)
	}

	var doc struct {
		Messages []struct {
			ID     string `json:"id"`
			Text   string `json:"text"`
			Sent   bool   `json:"sent"`
			Status string `json:"status"`
		} `json:"messages"`
	}
	if err := json.Unmarshal([]byte(out), &doc); err != nil {
		t.Fatalf("decode output: %v out=%q", err, out)
	}
	if len(doc.Messages) != 3 {
		t.Fatalf("expected welcome, sent and reply, got %+v", doc.Messages)
	}
	if doc.Messages[0].ID != "welcome" || !doc.Messages[1].Sent || doc.Messages[2].Text != "pong" {
		t.Fatalf("unexpected transcript %+v", doc.Messages)
	}
}

func TestSend_WebhookFailure(t *testing.T) {
	testEnv(t)
	srv := webhook(t, http.StatusBadGateway, `upstream down`)

	if _, _, err := run(t, "", "config", "set", "--url", srv.URL); err != nil {
		t.Fatalf("config set error: %v", err)
	}

	_, errOut, err := run(t, "", "send", "oi")
	if err == nil || !strings.Contains(err.Error(), "not delivered") {
		t.Fatalf("expected not delivered error, got %v", err)
	}
	if !strings.Contains(errOut, "Webhook returned status 502.") {
		t.Fatalf("expected notification on stderr, got %q", errOut)
	}
}

func TestSend_UnknownFormat(t *testing.T) {
	testEnv(t)

	_, _, err := run(t, "", "send", "--format", "pdf", "oi")
	if err == nil || !strings.Contains(err.Error(), "unsupported format") {
		t.Fatalf("expected unsupported format error, got %v", err)
	}
}

func TestTheme(t *testing.T) {
	testEnv(t)

	steps := []struct {
		args []string
		want string
	}{
		{[]string{"theme"}, "light"},
		{[]string{"theme", "toggle"}, "dark"},
		{[]string{"theme"}, "dark"},
		{[]string{"theme", "LIGHT"}, "light"},
	}
	for _, st := range steps {
		out, _, err := run(t, "", st.args...)
		if err != nil {
			t.Fatalf("%v: %v", st.args, err)
		}
		if strings.TrimSpace(out) != st.want {
			t.Fatalf("%v: expected %q, got %q", st.args, st.want, out)
		}
	}

	if _, _, err := run(t, "", "theme", "solarized"); err == nil {
		t.Fatalf("expected error for unknown theme")
	}
}

func TestChat_Session(t *testing.T) {
	testEnv(t)
	srv := webhook(t, http.StatusOK, `{"message":"pong","timestamp":"42"}`)

	if _, _, err := run(t, "", "config", "set", "--url", srv.URL); err != nil {
		t.Fatalf("config set error: %v", err)
	}

	stdin := strings.Join([]string{
		"ping",
		"   ",
		"/help",
		"/bogus",
		"/theme",
		"/export md",
		"/quit",
		"never sent",
	}, "\n")

	out, _, err := run(t, stdin, "chat")
	if err != nil {
		t.Fatalf("chat error: %v", err)
	}

	for _, want := range []string{
		"Hi from the bot",
		"online",
		"ping",
		"pong",
		"/export <format>",
		"unknown command /bogus",
		"Theme: dark",
		"# Chat transcript",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in:\n%s", want, out)
		}
	}
	if strings.Contains(out, "never sent") {
		t.Fatalf("expected input after /quit to be ignored")
	}

	theme, _, _ := run(t, "", "theme")
	if strings.TrimSpace(theme) != "dark" {
		t.Fatalf("expected theme change to persist, got %q", theme)
	}
}

func TestChat_NotConfiguredShowsHint(t *testing.T) {
	testEnv(t)

	out, _, err := run(t, "oi\n", "chat")
	if err != nil {
		t.Fatalf("chat error: %v", err)
	}
	for _, want := range []string{"offline", "Configuration required", "webchat config set"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in:\n%s", want, out)
		}
	}
}

func TestEnvFile(t *testing.T) {
	testEnv(t)

	t.Setenv("WELCOME_MESSAGE", "")
	_ = os.Unsetenv("WELCOME_MESSAGE")

	path := filepath.Join(t.TempDir(), "chat.env")
	if err := os.WriteFile(path, []byte("WELCOME_MESSAGE=Hello from env file\n"), 0o600); err != nil {
		t.Fatalf("write env file: %v", err)
	}

	out, _, err := run(t, "/quit\n", "--env-file", path, "chat")
	if err != nil {
		t.Fatalf("chat error: %v", err)
	}
	if !strings.Contains(out, "Hello from env file") {
		t.Fatalf("expected welcome from env file, got:\n%s", out)
	}

	_, _, err = run(t, "", "--env-file", filepath.Join(t.TempDir(), "missing.env"), "theme")
	if err == nil || !strings.Contains(err.Error(), "load env file") {
		t.Fatalf("expected env file error, got %v", err)
	}
}

func TestServe_StopsOnContextCancel(t *testing.T) {
	testEnv(t)

	cmd := NewRootCommand()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"serve", "--addr", "127.0.0.1:0"})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- cmd.ExecuteContext(ctx) }()

	time.Sleep(100 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("serve returned error: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("serve did not stop after cancel")
	}
}

func TestOpenStore_Drivers(t *testing.T) {
	testEnv(t)
	t.Setenv("STORE_DRIVER", "sqlite")
	t.Setenv("STORE_PATH", filepath.Join(t.TempDir(), "nested", "settings.db"))

	if _, _, err := run(t, "", "theme", "dark"); err != nil {
		t.Fatalf("sqlite theme set: %v", err)
	}
	out, _, err := run(t, "", "theme")
	if err != nil || strings.TrimSpace(out) != "dark" {
		t.Fatalf("expected dark persisted in sqlite, got %q err=%v", out, err)
	}

	t.Setenv("STORE_DRIVER", "memory")
	out, _, err = run(t, "", "theme")
	if err != nil || strings.TrimSpace(out) != "light" {
		t.Fatalf("expected fresh memory store, got %q err=%v", out, err)
	}
}
