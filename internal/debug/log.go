// Package debug writes an opt-in diagnostic log. The terminal is owned by
// the UI while a session runs, so diagnostics go to a file instead.
package debug

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"
)

var (
	mu  sync.Mutex
	out io.WriteCloser
)

// Enable starts logging to path, truncating any previous log.
func Enable(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create log directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open debug log: %w", err)
	}
	EnableWriter(f)
	Log("debug", "=== debug logging started ===")
	return nil
}

// EnableWriter starts logging to w. The previous writer, if any, is closed.
func EnableWriter(w io.WriteCloser) {
	mu.Lock()
	defer mu.Unlock()
	if out != nil {
		_ = out.Close()
	}
	out = w
}

// Disable stops logging and closes the log.
func Disable() {
	mu.Lock()
	defer mu.Unlock()
	if out != nil {
		_ = out.Close()
		out = nil
	}
}

// Enabled reports whether a log is open.
func Enabled() bool {
	mu.Lock()
	defer mu.Unlock()
	return out != nil
}

// Log writes one line under the given category.
func Log(category, format string, args ...any) {
	mu.Lock()
	defer mu.Unlock()
	if out == nil {
		return
	}
	ts := time.Now().Format("15:04:05.000")
	msg := fmt.Sprintf(format, args...)
	if _, err := fmt.Fprintf(out, "[%s] %-10s %s\n", ts, category, msg); err != nil {
		// Best-effort logging.
		_ = err
	}
	if f, ok := out.(*os.File); ok {
		_ = f.Sync()
	}
}
