package tool

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"
)

// FileStatusLog appends status changes to a plain text log, one line per
// event. The line is written with a single Write call under a mutex so
// concurrent runs cannot interleave partial lines.
type FileStatusLog struct {
	path string
	mu   sync.Mutex
}

func NewFileStatusLog(path string) *FileStatusLog {
	return &FileStatusLog{path: path}
}

func (l *FileStatusLog) Append(_ context.Context, customerID, action string, at time.Time) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	f, err := os.OpenFile(l.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open status log: %w", err)
	}
	defer f.Close()

	line := fmt.Sprintf("[%s] Customer: %s | Action: %s\n", at.Format("2006-01-02 15:04:05"), customerID, action)
	if _, err := f.WriteString(line); err != nil {
		return fmt.Errorf("append status log: %w", err)
	}
	return nil
}

var _ StatusWriter = (*FileStatusLog)(nil)
