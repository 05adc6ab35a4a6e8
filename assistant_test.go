package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"med-lt/config"
	"med-lt/kb"
	"med-lt/models"
	"med-lt/prompts"
)

// fakeLLM serves a /v1/chat/completions-shaped answer produced by reply.
func fakeLLM(t *testing.T, reply func(body models.ChatBody) string) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body := models.ChatBody{}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		resp := map[string]any{
			"choices": []map[string]any{{
				"finish_reason": "stop",
				"index":         0,
				"message": map[string]string{
					"role":    "assistant",
					"content": reply(body),
				},
			}},
		}
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(resp); err != nil {
			t.Errorf("fake llm encode: %v", err)
		}
	}))
	t.Cleanup(server.Close)
	return server
}

func newTestAssistant(t *testing.T, chatAPI string) *Assistant {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	promptStore, err := prompts.New(logger, "")
	if err != nil {
		t.Fatalf("failed to load prompts: %v", err)
	}
	termsPath := filepath.Join(t.TempDir(), "terms.json")
	if err := os.WriteFile(termsPath, []byte("[]"), 0644); err != nil {
		t.Fatalf("failed to seed terms file: %v", err)
	}
	terms, err := kb.LoadBase(logger, termsPath)
	if err != nil {
		t.Fatalf("failed to load terms: %v", err)
	}
	recsPath := filepath.Join(t.TempDir(), "recs.json")
	if err := os.WriteFile(recsPath, []byte(`{"fièvre": ["Boire de l'eau."]}`), 0644); err != nil {
		t.Fatalf("failed to seed recs file: %v", err)
	}
	recs, err := kb.LoadRecommendations(logger, recsPath)
	if err != nil {
		t.Fatalf("failed to load recs: %v", err)
	}
	profilesPath := filepath.Join(t.TempDir(), "profiles.json")
	if err := os.WriteFile(profilesPath, []byte(`{"profiles": [{"key": "child", "label": "Enfant"}]}`), 0644); err != nil {
		t.Fatalf("failed to seed profiles file: %v", err)
	}
	profiles, err := kb.LoadProfiles(logger, profilesPath)
	if err != nil {
		t.Fatalf("failed to load profiles: %v", err)
	}
	cfg := config.DefaultConfig()
	cfg.ChatAPI = chatAPI
	a := &Assistant{
		cfg:        cfg,
		logger:     logger,
		httpClient: &http.Client{},
		prompts:    promptStore,
		terms:      terms,
		recs:       recs,
		profiles:   profiles,
	}
	a.dispatch = a.buildDispatch()
	return a
}

func TestDispatchUnknownAction(t *testing.T) {
	a := newTestAssistant(t, "http://localhost:1")
	if _, err := a.Dispatch(Action("Danser"), "texte"); err == nil {
		t.Error("expected an error for an unknown action")
	}
}

func TestDispatchEmptyText(t *testing.T) {
	a := newTestAssistant(t, "http://localhost:1")
	got, err := a.Dispatch(ActionSimplify, "   ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "Aucun texte reconnu." {
		t.Errorf("expected fallback message, got %q", got)
	}
}

func TestRenderAndInvoke(t *testing.T) {
	var seenPrompt string
	server := fakeLLM(t, func(body models.ChatBody) string {
		if len(body.Messages) != 1 || body.Messages[0].Role != "user" {
			t.Errorf("expected a fresh single user turn, got %v", body.Messages)
		}
		seenPrompt = body.Messages[0].Content
		return "  réponse simplifiée \n"
	})
	a := newTestAssistant(t, server.URL)
	got, err := a.SimplifyText("Le patient présente une hyperthermie.")
	if err != nil {
		t.Fatalf("simplify failed: %v", err)
	}
	if got != "réponse simplifiée" {
		t.Errorf("reply not trimmed: %q", got)
	}
	if !strings.Contains(seenPrompt, "Le patient présente une hyperthermie.") {
		t.Errorf("input not substituted into the prompt: %q", seenPrompt)
	}
	if strings.Contains(seenPrompt, "{{input}}") {
		t.Errorf("placeholder left in rendered prompt: %q", seenPrompt)
	}
}

func TestInferenceError(t *testing.T) {
	// nothing listens here
	a := newTestAssistant(t, "http://127.0.0.1:1")
	_, err := a.SimplifyText("texte")
	if err == nil {
		t.Fatal("expected an inference error")
	}
	if !errors.Is(err, ErrInference) {
		t.Errorf("expected ErrInference, got %v", err)
	}
}

func TestChatTurn(t *testing.T) {
	server := fakeLLM(t, func(body models.ChatBody) string {
		return fmt.Sprintf("réponse %d", len(body.Messages))
	})
	a := newTestAssistant(t, server.URL)
	history, reply, err := a.ChatTurn(nil, "Bonjour")
	if err != nil {
		t.Fatalf("first turn failed: %v", err)
	}
	if len(history) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(history))
	}
	if history[1].Role != a.cfg.AssistantRole || history[1].Content != reply {
		t.Errorf("history must end with the assistant reply: %v", history)
	}
	history2, _, err := a.ChatTurn(history, "Et maintenant?")
	if err != nil {
		t.Fatalf("second turn failed: %v", err)
	}
	if len(history2) != 4 {
		t.Fatalf("expected 4 messages, got %d", len(history2))
	}
	if history2[0] != history[0] || history2[1] != history[1] {
		t.Error("earlier messages must be preserved unchanged")
	}
}
