package main

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"nerva/internal/dispatcher"
)

// Exit codes: 0 ok, 1 internal error, 2 clarification needed,
// 3 refused by safety, 130 interrupted (matches the shell convention
// of 128+SIGINT).
const (
	exitOK             = 0
	exitInternalError  = 1
	exitClarifyNeeded  = 2
	exitRefused        = 3
	exitInterrupted    = 130
)

func exitCodeFor(err error) int {
	switch {
	case err == nil:
		return exitOK
	case errors.Is(err, dispatcher.ErrAmbiguous):
		return exitClarifyNeeded
	case errors.Is(err, dispatcher.ErrRefused):
		return exitRefused
	case errors.Is(err, context.Canceled):
		return exitInterrupted
	default:
		return exitInternalError
	}
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
