// Package logging builds the application logger.
package logging

import "go.uber.org/zap"

// New returns a production JSON logger, or a human-readable development
// logger for any other environment value.
func New(env string) (*zap.Logger, error) {
	if env == "production" {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}

// Nop returns a logger that discards everything. Used in tests.
func Nop() *zap.Logger {
	return zap.NewNop()
}
