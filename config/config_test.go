package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.ChatAPI == "" || cfg.ModelName == "" || cfg.TermsPath == "" {
		t.Errorf("defaults not filled: %+v", cfg)
	}
	if cfg.STT_SR != 16000 {
		t.Errorf("expected default sample rate 16000, got %d", cfg.STT_SR)
	}
}

func TestLoadConfigPartial(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := "ModelName = \"gemma:7b\"\nTTS_ENABLED = true\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}
	if cfg.ModelName != "gemma:7b" {
		t.Errorf("expected gemma:7b, got %s", cfg.ModelName)
	}
	if !cfg.TTS_ENABLED {
		t.Error("expected TTS_ENABLED")
	}
	// unset values fall back to defaults
	if cfg.ChatAPI == "" || cfg.TermsPath == "" {
		t.Errorf("defaults not applied: %+v", cfg)
	}
}
