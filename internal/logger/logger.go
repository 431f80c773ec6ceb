package logger

import (
	"go.uber.org/zap"
)

// New builds the application logger. "development" gets the human-readable
// console encoder at debug level, anything else the JSON production config.
func New(env string) (*zap.Logger, error) {
	if env == "development" {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

// Must is New for main: it panics when the logger cannot be built.
func Must(env string) *zap.Logger {
	l, err := New(env)
	if err != nil {
		panic(err)
	}
	return l
}
