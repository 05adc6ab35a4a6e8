package main

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strings"

	"med-lt/config"
	"med-lt/kb"
	"med-lt/models"
	"med-lt/prompts"
	"med-lt/storage"
)

// Action names the operations reachable from the audio tab and the API.
// The set is closed; unknown actions are rejected, not silently ignored.
type Action string

const (
	ActionSimplify    Action = "Simplifier"
	ActionTranslateAR Action = "FR→AR"
	ActionTranslateEN Action = "FR→EN"
	ActionRecommend   Action = "Recommandations"
	ActionLookup      Action = "Recherche locale"
	ActionEnrich      Action = "Enrichir"
	ActionEvaluate    Action = "Évaluer clarté"
)

var actionOrder = []Action{
	ActionSimplify,
	ActionTranslateAR,
	ActionTranslateEN,
	ActionRecommend,
	ActionLookup,
	ActionEnrich,
	ActionEvaluate,
}

// Assistant owns every loaded table and collaborator; constructed once in
// main and passed by reference, nothing lives in package globals.
type Assistant struct {
	cfg        *config.Config
	logger     *slog.Logger
	logLevel   *slog.LevelVar
	httpClient *http.Client
	prompts    *prompts.Store
	terms      *kb.Base
	recs       *kb.Recommendations
	profiles   *kb.Profiles
	store      storage.ChatHistory
	orator     Orator
	asr        STT
	dispatch   map[Action]func(string) (string, error)
}

func NewAssistant(cfg *config.Config) (*Assistant, error) {
	logLevel := new(slog.LevelVar)
	logLevel.Set(slog.LevelInfo)
	logfile, err := os.OpenFile(cfg.LogFile,
		os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file %s: %w", cfg.LogFile, err)
	}
	logger := slog.New(slog.NewTextHandler(logfile, &slog.HandlerOptions{Level: logLevel}))
	promptStore, err := prompts.New(logger, cfg.PromptsDir)
	if err != nil {
		return nil, err
	}
	terms, err := kb.LoadBase(logger, cfg.TermsPath)
	if err != nil {
		return nil, err
	}
	recs, err := kb.LoadRecommendations(logger, cfg.RecsPath)
	if err != nil {
		return nil, err
	}
	profiles, err := kb.LoadProfiles(logger, cfg.ProfilesPath)
	if err != nil {
		return nil, err
	}
	store, err := storage.NewProviderSQL(cfg.DBPATH, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to open chat storage %s: %w", cfg.DBPATH, err)
	}
	a := &Assistant{
		cfg:        cfg,
		logger:     logger,
		logLevel:   logLevel,
		httpClient: &http.Client{},
		prompts:    promptStore,
		terms:      terms,
		recs:       recs,
		profiles:   profiles,
		store:      store,
	}
	a.orator = NewOrator(logger, cfg)
	a.asr = NewSTT(logger, cfg)
	a.dispatch = a.buildDispatch()
	return a, nil
}

func (a *Assistant) buildDispatch() map[Action]func(string) (string, error) {
	return map[Action]func(string) (string, error){
		ActionSimplify:    a.SimplifyText,
		ActionTranslateAR: a.TranslateToArabic,
		ActionTranslateEN: a.TranslateToEnglish,
		ActionRecommend:   a.Recommendations,
		ActionLookup:      a.SearchLocal,
		ActionEnrich:      a.EnrichTerm,
		ActionEvaluate:    a.EvaluateClarity,
	}
}

// Dispatch routes text to the named action handler.
func (a *Assistant) Dispatch(act Action, text string) (string, error) {
	handler, ok := a.dispatch[act]
	if !ok {
		return "", fmt.Errorf("action non reconnue: %q", act)
	}
	if strings.TrimSpace(text) == "" {
		return "Aucun texte reconnu.", nil
	}
	return handler(text)
}

func (a *Assistant) SimplifyText(text string) (string, error) {
	return a.renderAndInvoke("simplify", map[string]string{"input": text})
}

func (a *Assistant) TranslateToArabic(text string) (string, error) {
	return a.renderAndInvoke("translate_fr_ar", map[string]string{"input": text})
}

func (a *Assistant) TranslateToEnglish(text string) (string, error) {
	return a.renderAndInvoke("translate_fr_en", map[string]string{"input": text})
}

// AdaptToProfile parametrizes the adaptation prompt with the profile label;
// an unknown key falls back to the key itself.
func (a *Assistant) AdaptToProfile(text, profileKey string) (string, error) {
	label := a.profiles.LabelFor(profileKey)
	return a.renderAndInvoke("profile_adapt", map[string]string{
		"profile": label,
		"input":   text,
	})
}

func (a *Assistant) EvaluateClarity(text string) (string, error) {
	return a.renderAndInvoke("clarity_eval", map[string]string{"input": text})
}

// Recommendations and SearchLocal hit local tables only; they fail soft
// with a fallback message instead of an error.
func (a *Assistant) Recommendations(term string) (string, error) {
	recs := a.recs.For(term)
	if len(recs) == 0 {
		return "Aucune recommandation disponible.", nil
	}
	lines := make([]string, len(recs))
	for i, r := range recs {
		lines[i] = "- " + r
	}
	return strings.Join(lines, "\n"), nil
}

func (a *Assistant) SearchLocal(term string) (string, error) {
	entry, found := a.terms.Lookup(strings.TrimSpace(term))
	if !found {
		return "Mot introuvable dans la base locale.", nil
	}
	return entry.Card(), nil
}

func (a *Assistant) SetLogLevel(sl string) {
	switch sl {
	case "Debug":
		a.logLevel.Set(slog.LevelDebug)
	case "Info":
		a.logLevel.Set(slog.LevelInfo)
	case "Warn":
		a.logLevel.Set(slog.LevelWarn)
	}
}

// Speak voices text when TTS is enabled; errors are logged, not surfaced,
// audio being a side effect of an already delivered result.
func (a *Assistant) Speak(text string) {
	if !a.cfg.TTS_ENABLED || text == "" {
		return
	}
	go func() {
		if err := a.orator.Speak(text); err != nil {
			a.logger.Error("tts failed", "error", err)
		}
	}()
}

func (a *Assistant) defaultStarter() []models.RoleMsg {
	sys := a.cfg.SysPrompt
	if sys == "" {
		sys = "Tu es un assistant médical local. Réponds en français, simplement et prudemment; recommande de consulter un professionnel de santé pour tout diagnostic."
	}
	return []models.RoleMsg{{Role: "system", Content: sys}}
}
