package kb

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"med-lt/models"
)

// Recommendations is the static term -> advisory strings table; read-only
// after load, keys are lower-cased.
type Recommendations struct {
	byTerm map[string][]string
}

func LoadRecommendations(logger *slog.Logger, path string) (*Recommendations, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read recommendations document: %w", err)
	}
	byTerm := map[string][]string{}
	if err := json.Unmarshal(data, &byTerm); err != nil {
		return nil, fmt.Errorf("failed to decode recommendations %s: %w", path, err)
	}
	logger.Debug("loaded recommendations", "path", path, "count", len(byTerm))
	return &Recommendations{byTerm: byTerm}, nil
}

// For returns the advisories for a term; nil when the term is unknown.
func (r *Recommendations) For(term string) []string {
	return r.byTerm[strings.ToLower(strings.TrimSpace(term))]
}

// Profiles is the read-only patient profile reference table.
type Profiles struct {
	list []models.Profile
}

func LoadProfiles(logger *slog.Logger, path string) (*Profiles, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read profiles document: %w", err)
	}
	doc := models.ProfileDoc{}
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to decode profiles %s: %w", path, err)
	}
	logger.Debug("loaded profiles", "path", path, "count", len(doc.Profiles))
	return &Profiles{list: doc.Profiles}, nil
}

// LabelFor resolves a profile key to its display label, falling back to the
// key itself for unknown profiles.
func (p *Profiles) LabelFor(key string) string {
	for _, profile := range p.list {
		if profile.Key == key {
			return profile.Label
		}
	}
	return key
}

// KeyFor is the reverse resolution used by the UI, which exposes labels.
func (p *Profiles) KeyFor(label string) string {
	for _, profile := range p.list {
		if profile.Label == label {
			return profile.Key
		}
	}
	return label
}

func (p *Profiles) Labels() []string {
	labels := make([]string, 0, len(p.list))
	for _, profile := range p.list {
		labels = append(labels, profile.Label)
	}
	return labels
}
