package prompts

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path"
	"strings"
)

//go:embed defaults/*.txt
var defaultsFS embed.FS

var ErrNotFound = errors.New("prompt template not found")

// Required are the template names every operation of the assistant depends
// on; a store missing any of them is unusable.
var Required = []string{
	"simplify",
	"translate_fr_ar",
	"translate_fr_en",
	"profile_adapt",
	"clarity_eval",
	"enrich_term",
}

// Store holds named prompt templates; read-only after New.
type Store struct {
	templates map[string]string
}

// New loads the embedded default templates and overlays any *.txt files
// found in dir (empty dir means embedded only). It fails when a required
// template is missing, so a broken prompt setup dies at startup and not in
// the middle of a consultation.
func New(logger *slog.Logger, dir string) (*Store, error) {
	s := &Store{templates: map[string]string{}}
	if err := s.loadFS(defaultsFS, "defaults"); err != nil {
		return nil, fmt.Errorf("failed to load embedded prompts: %w", err)
	}
	if dir != "" {
		if err := s.loadFS(os.DirFS(dir), "."); err != nil {
			logger.Warn("failed to read prompts dir; using embedded", "dir", dir, "error", err)
		}
	}
	for _, name := range Required {
		if _, ok := s.templates[name]; !ok {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
		}
	}
	logger.Debug("loaded prompt templates", "count", len(s.templates))
	return s, nil
}

func (s *Store) loadFS(fsys fs.FS, dir string) error {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return err
	}
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".txt") {
			continue
		}
		data, err := fs.ReadFile(fsys, path.Join(dir, entry.Name()))
		if err != nil {
			return err
		}
		name := strings.TrimSuffix(entry.Name(), ".txt")
		s.templates[name] = string(data)
	}
	return nil
}

func (s *Store) Get(name string) (string, error) {
	tpl, ok := s.templates[name]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	return tpl, nil
}

// Render substitutes every literal {{key}} occurrence with its value.
// Keys absent from subs stay in the text verbatim; the model sees them
// as-is rather than the caller getting an error.
func Render(tpl string, subs map[string]string) string {
	out := tpl
	for k, v := range subs {
		out = strings.ReplaceAll(out, "{{"+k+"}}", v)
	}
	return out
}
