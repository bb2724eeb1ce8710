package debug

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLogDisabledIsNoop(t *testing.T) {
	Disable()
	Log("session", "should not panic %d", 1)
	if Enabled() {
		t.Fatalf("expected logging disabled")
	}
}

func TestEnableWritesLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "debug.log")
	if err := Enable(path); err != nil {
		t.Fatalf("enable: %v", err)
	}
	Log("session", "phase %s", "playing")
	Disable()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d: %q", len(lines), data)
	}
	if !strings.Contains(lines[1], "session") || !strings.HasSuffix(lines[1], "phase playing") {
		t.Fatalf("unexpected log line: %q", lines[1])
	}
}
