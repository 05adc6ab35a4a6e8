package config

import (
	"github.com/BurntSushi/toml"
)

type Config struct {
	ChatAPI   string `toml:"ChatAPI"`
	ModelName string `toml:"ModelName"`
	LogFile   string `toml:"LogFile"`
	//
	UserRole      string `toml:"UserRole"`
	AssistantRole string `toml:"AssistantRole"`
	SysPrompt     string `toml:"SysPrompt"`
	// data documents
	TermsPath    string `toml:"TermsPath"`
	RecsPath     string `toml:"RecsPath"`
	ProfilesPath string `toml:"ProfilesPath"`
	PromptsDir   string `toml:"PromptsDir"`
	DBPATH       string `toml:"DBPATH"`
	// TTS
	TTS_URL      string  `toml:"TTS_URL"`
	TTS_ENABLED  bool    `toml:"TTS_ENABLED"`
	TTS_SPEED    float32 `toml:"TTS_SPEED"`
	TTS_PROVIDER string  `toml:"TTS_PROVIDER"` // SERVER, GOOGLE
	TTS_LANGUAGE string  `toml:"TTS_LANGUAGE"`
	// STT
	STT_URL     string `toml:"STT_URL"`
	STT_SR      int    `toml:"STT_SR"`
	STT_ENABLED bool   `toml:"STT_ENABLED"`
}

func LoadConfig(fn string) (*Config, error) {
	if fn == "" {
		fn = "config.toml"
	}
	config := &Config{}
	_, err := toml.DecodeFile(fn, &config)
	if err != nil {
		return nil, err
	}
	setDefaults(config)
	return config, nil
}

// DefaultConfig covers the case when there is no config file around.
func DefaultConfig() *Config {
	config := &Config{}
	setDefaults(config)
	return config
}

func setDefaults(config *Config) {
	if config.ChatAPI == "" {
		config.ChatAPI = "http://localhost:11434/v1/chat/completions"
	}
	if config.ModelName == "" {
		config.ModelName = "gemma:2b"
	}
	if config.LogFile == "" {
		config.LogFile = "medlt.log"
	}
	if config.UserRole == "" {
		config.UserRole = "user"
	}
	if config.AssistantRole == "" {
		config.AssistantRole = "assistant"
	}
	if config.TermsPath == "" {
		config.TermsPath = "data/medical_terms_fr_ar_en.json"
	}
	if config.RecsPath == "" {
		config.RecsPath = "data/recommendations.json"
	}
	if config.ProfilesPath == "" {
		config.ProfilesPath = "data/patient_profiles.json"
	}
	if config.DBPATH == "" {
		config.DBPATH = "medlt.db"
	}
	if config.STT_SR == 0 {
		config.STT_SR = 16000
	}
	if config.TTS_SPEED == 0 {
		config.TTS_SPEED = 1.0
	}
}
