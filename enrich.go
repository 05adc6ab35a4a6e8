package main

import (
	"fmt"
	"strings"

	"med-lt/models"
)

// labels the enrichment prompt asks the model to emit
const (
	labelAR  = "Traduction AR"
	labelEN  = "Traduction EN"
	labelDef = "Définition"
)

// parseEnrichment extracts the three fields from the model's
// "label: value; label: value; ..." answer. A label the model did not emit
// resolves to an empty string; text that does not follow the shape at all
// yields three empty strings. Never an error: the degradation is silent and
// the caller logs it.
func parseEnrichment(raw string) (ar, en, definition string) {
	fields := map[string]string{}
	for _, part := range strings.Split(raw, ";") {
		if !strings.Contains(part, ":") {
			continue
		}
		kv := strings.SplitN(part, ":", 2)
		fields[strings.TrimSpace(kv[0])] = strings.TrimSpace(kv[1])
	}
	return fields[labelAR], fields[labelEN], fields[labelDef]
}

// EnrichTerm asks the model to translate and define term, stores the result
// in the knowledge base and returns a confirmation summary. Inference or
// render failure aborts before anything is written. A persistence failure
// returns the summary together with the error, so the parsed values reach
// the caller while the failure still gets reported as such.
func (a *Assistant) EnrichTerm(term string) (string, error) {
	term = strings.TrimSpace(term)
	raw, err := a.renderAndInvoke("enrich_term", map[string]string{"input": term})
	if err != nil {
		return "", err
	}
	ar, en, definition := parseEnrichment(raw)
	if ar == "" && en == "" && definition == "" {
		a.logger.Warn("enrichment answer did not match the expected format",
			"term", term, "raw", raw)
	}
	entry := models.TermEntry{Fr: term, Ar: ar, En: en, Definition: definition}
	summary := fmt.Sprintf("Terminé : %s → AR: %s, EN: %s\nDéfinition: %s",
		term, ar, en, definition)
	if err := a.terms.Append(entry); err != nil {
		return summary, err
	}
	return summary, nil
}
