//go:build !extra

package main

import (
	"log/slog"

	"med-lt/config"
)

// No-op speech implementations when the extra modules are not built in.

type Orator interface {
	Speak(text string) error
	Stop()
}

type STT interface {
	StartRecording() error
	StopRecording() (string, error)
	IsRecording() bool
}

type DefaultOrator struct {
	logger *slog.Logger
}

func NewOrator(logger *slog.Logger, cfg *config.Config) Orator {
	return &DefaultOrator{logger: logger}
}

func (d *DefaultOrator) Speak(text string) error {
	d.logger.Debug("TTS not available - extra modules disabled")
	return nil
}

func (d *DefaultOrator) Stop() {}

type DefaultSTT struct {
	logger *slog.Logger
}

func NewSTT(logger *slog.Logger, cfg *config.Config) STT {
	return &DefaultSTT{logger: logger}
}

func (d *DefaultSTT) StartRecording() error {
	d.logger.Debug("STT not available - extra modules disabled")
	return nil
}

func (d *DefaultSTT) StopRecording() (string, error) {
	d.logger.Debug("STT not available - extra modules disabled")
	return "", nil
}

func (d *DefaultSTT) IsRecording() bool {
	return false
}
