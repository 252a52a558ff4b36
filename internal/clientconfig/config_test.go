package clientconfig

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad_WritesDefaultWhenMissing(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !cfg.Localhost || !cfg.Outputs || cfg.Verbose {
		t.Fatalf("unexpected default config: %+v", cfg)
	}
	if len(cfg.Nodes) != 0 {
		t.Fatalf("expected no nodes in default config, got %+v", cfg.Nodes)
	}

	path := filepath.Join(dir, "concurr", "config.toml")
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("expected default config file to be written: %v", err)
	}
}

func TestLoad_ParsesNodes(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)

	confDir := filepath.Join(dir, "concurr")
	if err := os.MkdirAll(confDir, 0o755); err != nil {
		t.Fatalf("MkdirAll: %v", err)
	}
	contents := `localhost = false
outputs = true
verbose = true

[[nodes]]
address = "10.0.0.2:31514"
domain = "node2.internal"
`
	if err := os.WriteFile(filepath.Join(confDir, "config.toml"), []byte(contents), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Localhost || !cfg.Verbose {
		t.Fatalf("unexpected config: %+v", cfg)
	}
	if len(cfg.Nodes) != 1 || cfg.Nodes[0].Address != "10.0.0.2:31514" || cfg.Nodes[0].Domain != "node2.internal" {
		t.Fatalf("unexpected nodes: %+v", cfg.Nodes)
	}
}
