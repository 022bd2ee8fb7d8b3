package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadEnv(t *testing.T) {
	tmpDir := t.TempDir()
	envFile := filepath.Join(tmpDir, ".env")

	content := `
# Comment
TRIAD_MAX_ROUNDS=4
TRIAD_DB_PATH="/tmp/triad test.db"
TRIAD_SOURCE_GROK='script'
EMPTY=
`
	if err := os.WriteFile(envFile, []byte(content), 0644); err != nil {
		t.Fatalf("failed to create env file: %v", err)
	}

	env, err := LoadEnv(envFile)
	if err != nil {
		t.Fatalf("LoadEnv failed: %v", err)
	}

	tests := []struct {
		key      string
		expected string
	}{
		{"TRIAD_MAX_ROUNDS", "4"},
		{"TRIAD_DB_PATH", "/tmp/triad test.db"},
		{"TRIAD_SOURCE_GROK", "script"},
		{"EMPTY", ""},
	}

	for _, tt := range tests {
		if got, ok := env[tt.key]; !ok || got != tt.expected {
			t.Errorf("expected %s=%q, got %q (exists=%v)", tt.key, tt.expected, got, ok)
		}
	}

	if _, err := LoadEnv(filepath.Join(tmpDir, "missing.env")); err == nil {
		t.Error("expected error for missing env file")
	}
}

func TestApplyEnvOverrides(t *testing.T) {
	cfg := Default()

	env := map[string]string{
		"TRIAD_SERVER_PORT":   "9090",
		"TRIAD_MAX_ROUNDS":    "6",
		"TRIAD_DB_PATH":       "/var/lib/triad.db",
		"TRIAD_SCRIPT_PATH":   "/etc/triad/ubi.yaml",
		"TRIAD_SOURCE_CLAUDE": "script",
		"TRIAD_SOURCE_GPT":    "",
	}

	ApplyEnvOverrides(cfg, env)

	if cfg.Server.Port != 9090 {
		t.Errorf("expected port 9090, got %d", cfg.Server.Port)
	}
	if cfg.Defaults.MaxRounds != 6 {
		t.Errorf("expected max rounds 6, got %d", cfg.Defaults.MaxRounds)
	}
	if cfg.Storage.Path != "/var/lib/triad.db" {
		t.Errorf("unexpected db path %q", cfg.Storage.Path)
	}
	if cfg.Script.Path != "/etc/triad/ubi.yaml" {
		t.Errorf("unexpected script path %q", cfg.Script.Path)
	}
	if cfg.Sources["Claude"] != "script" {
		t.Errorf("expected Claude bound to script, got %q", cfg.Sources["Claude"])
	}
	if cfg.Sources["GPT"] != "mock" {
		t.Errorf("empty override should keep GPT on mock, got %q", cfg.Sources["GPT"])
	}
}

func TestApplyEnvOverridesIgnoresBadValues(t *testing.T) {
	cfg := Default()

	ApplyEnvOverrides(cfg, map[string]string{
		"TRIAD_SERVER_PORT": "not-a-port",
		"TRIAD_MAX_ROUNDS":  "0",
	})

	if cfg.Server.Port != 8182 {
		t.Errorf("port changed by invalid value: %d", cfg.Server.Port)
	}
	if cfg.Defaults.MaxRounds != 10 {
		t.Errorf("max rounds changed by invalid value: %d", cfg.Defaults.MaxRounds)
	}
}

func TestProcessEnv(t *testing.T) {
	t.Setenv("TRIAD_MAX_ROUNDS", "3")
	t.Setenv("UNRELATED_VAR", "x")

	env := ProcessEnv()
	if env["TRIAD_MAX_ROUNDS"] != "3" {
		t.Errorf("expected TRIAD_MAX_ROUNDS=3, got %q", env["TRIAD_MAX_ROUNDS"])
	}
	if _, ok := env["UNRELATED_VAR"]; ok {
		t.Error("ProcessEnv returned a variable without the TRIAD_ prefix")
	}
}
