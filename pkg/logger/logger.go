// Package logger builds the structured loggers every ignitekv subsystem
// takes through its Config struct. It is a thin wrapper around zap's
// production/development presets, tagged with a service name so multi-
// process deployments (server vs client) can tell their logs apart.
package logger

import (
	"go.uber.org/zap"
)

// New builds a *zap.SugaredLogger for the named service. development
// selects zap's human-readable console encoder and debug level; otherwise
// the JSON production encoder is used.
func New(service string, development bool) *zap.SugaredLogger {
	var base *zap.Logger
	var err error

	if development {
		base, err = zap.NewDevelopment()
	} else {
		base, err = zap.NewProduction()
	}
	if err != nil {
		// zap's default configs only fail to build on a broken encoder
		// registration, which can't happen with the built-in presets.
		base = zap.NewNop()
	}

	return base.Sugar().Named(service)
}

// NewNop returns a logger that discards everything, for tests that don't
// care about log output but need to satisfy a *zap.SugaredLogger field.
func NewNop() *zap.SugaredLogger {
	return zap.NewNop().Sugar()
}
