//go:build extra
// +build extra

package main

import (
	"log/slog"

	"med-lt/config"
	"med-lt/extra"
)

// Speech implementations when the extra modules are built in.

type Orator = extra.Orator
type STT = extra.STT

func NewOrator(logger *slog.Logger, cfg *config.Config) Orator {
	return extra.NewOrator(logger, cfg)
}

func NewSTT(logger *slog.Logger, cfg *config.Config) STT {
	return extra.NewSTT(logger, cfg)
}
