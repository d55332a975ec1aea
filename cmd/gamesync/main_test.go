package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/goliatone/go-gamesync/pkg/config"
)

func execute(t *testing.T, env map[string]string, args ...string) (string, error) {
	t.Helper()
	if env == nil {
		env = map[string]string{}
	}
	cmd := buildRootCmd(&rootOptions{
		loadOptions: []config.LoadOption{config.WithEnvironment(env)},
	})
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestDemoPlaysAndMirrorsPlayerData(t *testing.T) {
	out, err := execute(t, nil, "demo", "--rounds", "2", "--log-level", "error")
	if err != nil {
		t.Fatalf("demo: %v", err)
	}
	var payload struct {
		Saved bool `json:"saved"`
		Game  struct {
			Score int `json:"score"`
			Level int `json:"level"`
		} `json:"game"`
		Worker struct {
			Processed int `json:"processed"`
		} `json:"worker"`
		Document map[string]any `json:"document"`
	}
	if err := json.Unmarshal([]byte(out), &payload); err != nil {
		t.Fatalf("decode output: %v\n%s", err, out)
	}
	if !payload.Saved {
		t.Fatalf("expected saved state, got %s", out)
	}
	if payload.Game.Score != 30 || payload.Game.Level != 3 {
		t.Fatalf("unexpected game state %+v", payload.Game)
	}
	if payload.Worker.Processed != 1 {
		t.Fatalf("expected one processed message, got %+v", payload.Worker)
	}
	if payload.Document["score"] != float64(30) {
		t.Fatalf("expected mirrored score, got %#v", payload.Document)
	}
}

func TestConfigShowMergesFileOverEnvironment(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gamesync.json")
	if err := os.WriteFile(path, []byte(`{"app":{"locale":"es"}}`), 0o600); err != nil {
		t.Fatal(err)
	}
	out, err := execute(t, map[string]string{"GAMESYNC_APP_LOCALE": "fr", "GAMESYNC_GAME_AUTO_SAVE": "true"}, "--config", path, "config", "show")
	if err != nil {
		t.Fatalf("config show: %v", err)
	}
	var cfg config.Config
	if err := json.Unmarshal([]byte(out), &cfg); err != nil {
		t.Fatalf("decode config: %v", err)
	}
	if cfg.App.Locale != "es" {
		t.Fatalf("expected file locale to win, got %q", cfg.App.Locale)
	}
	if !cfg.Game.AutoSave {
		t.Fatalf("expected environment auto save")
	}
}

func TestConfigExplainNamesWinningLayer(t *testing.T) {
	out, err := execute(t, map[string]string{"GAMESYNC_APP_LOCALE": "fr"}, "config", "explain", "app.locale")
	if err != nil {
		t.Fatalf("config explain: %v", err)
	}
	if !strings.Contains(out, "* Environment") {
		t.Fatalf("expected environment layer to win:\n%s", out)
	}
}

func TestConfigExplainRequiresPath(t *testing.T) {
	if _, err := execute(t, nil, "config", "explain"); err == nil {
		t.Fatalf("expected argument error")
	}
}

func TestWorkerOnceOnEmptyQueue(t *testing.T) {
	env := map[string]string{
		"GAMESYNC_QUEUE_CREDENTIAL":            "demo-queue",
		"GAMESYNC_DOCUMENTS_CONNECTION_STRING": "demo-documents",
		"GAMESYNC_IDENTITY_CREDENTIAL":         "title-secret",
		"GAMESYNC_APP_LOG_LEVEL":               "error",
	}
	out, err := execute(t, env, "worker", "--once")
	if err != nil {
		t.Fatalf("worker: %v", err)
	}
	if !strings.Contains(out, `"processed": 0`) {
		t.Fatalf("expected empty run, got %s", out)
	}
}

func TestBlobSignThenVerify(t *testing.T) {
	env := map[string]string{
		"GAMESYNC_BLOB_CREDENTIAL":     "account-key",
		"GAMESYNC_IDENTITY_CREDENTIAL": "title-secret",
		"GAMESYNC_APP_LOG_LEVEL":       "error",
	}
	out, err := execute(t, env, "blob", "sign", "123-me.png", "--ttl", "5m")
	if err != nil {
		t.Fatalf("blob sign: %v", err)
	}
	signed := strings.TrimSpace(out)
	if !strings.Contains(signed, "/avatars/123-me.png?sig=") {
		t.Fatalf("unexpected signed url %q", signed)
	}

	out, err = execute(t, env, "blob", "verify", signed)
	if err != nil {
		t.Fatalf("blob verify: %v", err)
	}
	if strings.TrimSpace(out) != "123-me.png" {
		t.Fatalf("unexpected blob name %q", out)
	}
	if _, err := execute(t, env, "blob", "verify", signed+"x"); err == nil {
		t.Fatalf("expected tampered signature rejected")
	}
}
