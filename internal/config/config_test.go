package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadConfigMissingFile(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "nope.toml"))
	if err != nil {
		t.Fatalf("expected no error for missing file, got %v", err)
	}
	if cfg.Practice.Score != nil || cfg.Practice.ToleranceMs != nil {
		t.Fatalf("expected empty config, got %+v", cfg)
	}
}

func TestLoadConfigEmptyPath(t *testing.T) {
	if _, err := LoadConfig(""); err == nil {
		t.Fatalf("expected error for empty path")
	}
}

func TestLoadConfigPractice(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	data := `[practice]
score = "syncopation"
tolerance-ms = 90
tap-keys = ["space", "j"]
beaming = false
offset-ms = 25.5
`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	p := cfg.Practice
	if p.Score == nil || *p.Score != "syncopation" {
		t.Fatalf("unexpected score: %v", p.Score)
	}
	if p.ToleranceMs == nil || *p.ToleranceMs != 90 {
		t.Fatalf("unexpected tolerance: %v", p.ToleranceMs)
	}
	if p.TapKeys == nil || strings.Join(*p.TapKeys, ",") != "space,j" {
		t.Fatalf("unexpected tap keys: %v", p.TapKeys)
	}
	if p.Beaming == nil || *p.Beaming {
		t.Fatalf("unexpected beaming: %v", p.Beaming)
	}
	if p.Mute != nil {
		t.Fatalf("expected mute unset, got %v", *p.Mute)
	}
	if p.OffsetMs == nil || *p.OffsetMs != 25.5 {
		t.Fatalf("unexpected offset: %v", p.OffsetMs)
	}
}

func TestLoadConfigRejectsUnknownKey(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("[practice]\ntempo = 90\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, err := LoadConfig(path); err == nil || !strings.Contains(err.Error(), "practice.tempo") {
		t.Fatalf("expected unknown key error, got %v", err)
	}
}

func TestXDGPaths(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/cfg")
	t.Setenv("XDG_STATE_HOME", "/state")
	if got := DefaultConfigPath(); got != filepath.Join("/cfg", "rhythmtap", "config.toml") {
		t.Fatalf("unexpected config path %q", got)
	}
	if got := DefaultDebugLogPath(); got != filepath.Join("/state", "rhythmtap", "debug.log") {
		t.Fatalf("unexpected debug log path %q", got)
	}
}
