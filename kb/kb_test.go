package kb

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"med-lt/models"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func writeTermsFile(t *testing.T, entries string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "terms.json")
	if err := os.WriteFile(path, []byte(entries), 0644); err != nil {
		t.Fatalf("failed to write terms file: %v", err)
	}
	return path
}

const seedTerms = `[
  {"fr": "Fièvre", "ar": "حمى", "en": "Fever", "definition": "Température corporelle élevée."},
  {"fr": "Diabète", "ar": "داء السكري", "en": "Diabetes", "definition": "Excès de sucre dans le sang."}
]`

func TestLookupCaseInsensitive(t *testing.T) {
	base, err := LoadBase(testLogger(), writeTermsFile(t, seedTerms))
	if err != nil {
		t.Fatalf("failed to load base: %v", err)
	}
	cases := []struct {
		term  string
		found bool
	}{
		{term: "Fièvre", found: true},
		{term: "fièvre", found: true},
		{term: "FIÈVRE", found: true},
		{term: "diabète", found: true},
		{term: "grippe", found: false},
	}
	for i, tc := range cases {
		t.Run(fmt.Sprintf("run_%d", i), func(t *testing.T) {
			entry, found := base.Lookup(tc.term)
			if found != tc.found {
				t.Fatalf("term %q: expected found=%v, got %v", tc.term, tc.found, found)
			}
			if found && !strings.EqualFold(entry.Fr, tc.term) {
				t.Errorf("term %q resolved to %q", tc.term, entry.Fr)
			}
		})
	}
}

func TestAppendRoundTrip(t *testing.T) {
	path := writeTermsFile(t, seedTerms)
	base, err := LoadBase(testLogger(), path)
	if err != nil {
		t.Fatalf("failed to load base: %v", err)
	}
	entry := models.TermEntry{
		Fr:         "Migraine",
		Ar:         "الشقيقة",
		En:         "Migraine",
		Definition: "Céphalée intense, souvent unilatérale.",
	}
	if err := base.Append(entry); err != nil {
		t.Fatalf("append failed: %v", err)
	}
	// a fresh load of the document must contain the entry as last record,
	// unicode intact
	reloaded, err := LoadBase(testLogger(), path)
	if err != nil {
		t.Fatalf("failed to reload base: %v", err)
	}
	if reloaded.Len() != 3 {
		t.Fatalf("expected 3 entries after reload, got %d", reloaded.Len())
	}
	got, found := reloaded.Lookup("migraine")
	if !found {
		t.Fatal("appended entry not found after reload")
	}
	if got != entry {
		t.Errorf("round trip mismatch: expected %+v, got %+v", entry, got)
	}
}

func TestConcurrentAppends(t *testing.T) {
	path := writeTermsFile(t, seedTerms)
	base, err := LoadBase(testLogger(), path)
	if err != nil {
		t.Fatalf("failed to load base: %v", err)
	}
	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			entry := models.TermEntry{Fr: fmt.Sprintf("Terme%d", n)}
			if err := base.Append(entry); err != nil {
				t.Errorf("concurrent append %d failed: %v", n, err)
			}
		}(i)
	}
	wg.Wait()
	// no lost update: both entries survive in the persisted document
	reloaded, err := LoadBase(testLogger(), path)
	if err != nil {
		t.Fatalf("failed to reload base: %v", err)
	}
	for i := 0; i < 2; i++ {
		if _, found := reloaded.Lookup(fmt.Sprintf("Terme%d", i)); !found {
			t.Errorf("lost update: Terme%d missing from persisted document", i)
		}
	}
}

func TestAppendPersistError(t *testing.T) {
	path := writeTermsFile(t, seedTerms)
	base, err := LoadBase(testLogger(), path)
	if err != nil {
		t.Fatalf("failed to load base: %v", err)
	}
	// make the document directory unwritable so the rewrite fails
	dir := filepath.Dir(path)
	if err := os.Chmod(dir, 0555); err != nil {
		t.Skipf("cannot chmod temp dir: %v", err)
	}
	defer os.Chmod(dir, 0755)
	appendErr := base.Append(models.TermEntry{Fr: "Éphémère"})
	if appendErr == nil {
		t.Skip("filesystem ignored the permission change")
	}
	if !errors.Is(appendErr, ErrPersist) {
		t.Errorf("expected ErrPersist, got %v", appendErr)
	}
	// in-memory state stays ahead of storage
	if _, found := base.Lookup("éphémère"); !found {
		t.Error("entry lost from memory after failed persist")
	}
}

func TestRecommendations(t *testing.T) {
	path := filepath.Join(t.TempDir(), "recs.json")
	doc := `{"fièvre": ["Boire de l'eau.", "Se reposer."]}`
	if err := os.WriteFile(path, []byte(doc), 0644); err != nil {
		t.Fatalf("failed to write recs file: %v", err)
	}
	recs, err := LoadRecommendations(testLogger(), path)
	if err != nil {
		t.Fatalf("failed to load recommendations: %v", err)
	}
	if got := recs.For("Fièvre"); len(got) != 2 {
		t.Errorf("expected 2 recommendations, got %v", got)
	}
	if got := recs.For("inconnu"); got != nil {
		t.Errorf("expected nil for unknown term, got %v", got)
	}
}

func TestProfiles(t *testing.T) {
	path := filepath.Join(t.TempDir(), "profiles.json")
	doc := `{"profiles": [{"key": "child", "label": "Enfant"}]}`
	if err := os.WriteFile(path, []byte(doc), 0644); err != nil {
		t.Fatalf("failed to write profiles file: %v", err)
	}
	profiles, err := LoadProfiles(testLogger(), path)
	if err != nil {
		t.Fatalf("failed to load profiles: %v", err)
	}
	if got := profiles.LabelFor("child"); got != "Enfant" {
		t.Errorf("expected Enfant, got %s", got)
	}
	// unknown keys fall back to the key itself
	if got := profiles.LabelFor("alien"); got != "alien" {
		t.Errorf("expected fallback to key, got %s", got)
	}
	if got := profiles.KeyFor("Enfant"); got != "child" {
		t.Errorf("expected child, got %s", got)
	}
}
