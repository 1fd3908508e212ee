// Package output publishes unread counts to the console and to a file.
package output

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/creachadair/atomicfile"

	"github.com/tbunread/tbunread/internal/config"
)

// Writer prints each value to the console unless quiet, and replaces the
// contents of the output file with it when one is configured.
type Writer struct {
	mu     sync.Mutex
	quiet  bool
	path   string
	stdout io.Writer
}

// New returns a Writer configured from cfg. A nil stdout means os.Stdout.
func New(cfg *config.Config, stdout io.Writer) *Writer {
	if stdout == nil {
		stdout = os.Stdout
	}
	return &Writer{
		quiet:  cfg.Quiet,
		path:   cfg.Output,
		stdout: stdout,
	}
}

// Emit publishes one value. The file is replaced atomically, so readers never
// observe a partially written count.
func (w *Writer) Emit(value string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.quiet {
		if _, err := fmt.Fprintln(w.stdout, value); err != nil {
			return fmt.Errorf("failed to write to console: %w", err)
		}
	}

	if w.path != "" {
		if err := atomicfile.WriteData(w.path, []byte(value), 0644); err != nil {
			return fmt.Errorf("failed to write file %s: %w", w.path, err)
		}
	}

	return nil
}
