package kb

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"med-lt/models"
)

// ErrPersist marks a failed write-back of the terms document. The in-memory
// entry survives the failure; callers must not report the enrichment as
// fully stored when they see this error.
var ErrPersist = errors.New("failed to persist terms document")

// Base is the local term dictionary: loaded in bulk at startup, appended to
// by enrichment, fully rewritten on every append. Appends are serialized by
// the mutex; lookups may run concurrently.
type Base struct {
	logger  *slog.Logger
	path    string
	mu      sync.RWMutex
	entries []models.TermEntry
}

func LoadBase(logger *slog.Logger, path string) (*Base, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read terms document: %w", err)
	}
	entries := []models.TermEntry{}
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("failed to decode terms document %s: %w", path, err)
	}
	logger.Debug("loaded terms", "path", path, "count", len(entries))
	return &Base{logger: logger, path: path, entries: entries}, nil
}

// Lookup matches term against fr case-insensitively; first match wins when
// duplicates coexist.
func (b *Base) Lookup(term string) (models.TermEntry, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for _, entry := range b.entries {
		if strings.EqualFold(term, entry.Fr) {
			return entry, true
		}
	}
	return models.TermEntry{}, false
}

func (b *Base) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.entries)
}

// Append adds the entry and rewrites the whole document. The rewrite goes
// through a temp file and rename, so a concurrent reader of the document
// sees either the old or the new content, never a torn file. On a failed
// rewrite the in-memory list keeps the entry and the error wraps ErrPersist.
func (b *Base) Append(entry models.TermEntry) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.entries = append(b.entries, entry)
	if err := b.persist(); err != nil {
		b.logger.Error("terms document rewrite failed; memory is ahead of storage",
			"path", b.path, "term", entry.Fr, "error", err)
		return fmt.Errorf("%w: %v", ErrPersist, err)
	}
	return nil
}

func (b *Base) persist() error {
	tmp, err := os.CreateTemp(filepath.Dir(b.path), ".terms-*.json")
	if err != nil {
		return err
	}
	enc := json.NewEncoder(tmp)
	// arabic and accented french must survive as-is
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(b.entries); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), b.path)
}
