// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package logging

import (
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var _ LoggerInterface = (*Logger)(nil)

type Logger struct {
	*zap.SugaredLogger

	security *SecurityLogger
}

func (l *Logger) Security() SecurityLoggerInterface {
	return l.security
}

// NewLogger creates a json logger writing to stdout, unknown levels fall back to info
func NewLogger(l string) *Logger {
	var lvl zapcore.Level

	switch strings.ToLower(l) {
	case "debug":
		lvl = zap.DebugLevel
	case "info":
		lvl = zap.InfoLevel
	case "warning", "warn":
		lvl = zap.WarnLevel
	case "error":
		lvl = zap.ErrorLevel
	default:
		lvl = zap.InfoLevel
	}

	c := zap.NewProductionConfig()
	c.Level = zap.NewAtomicLevelAt(lvl)
	c.EncoderConfig.TimeKey = "@timestamp"
	c.EncoderConfig.EncodeTime = zapcore.RFC3339NanoTimeEncoder

	if lvl == zap.DebugLevel {
		c.Development = true
	}

	z, err := c.Build(zap.AddCallerSkip(0))
	if err != nil {
		panic(err)
	}

	logger := new(Logger)
	logger.SugaredLogger = z.Sugar()
	logger.security = newSecurityLogger(z.Named("security"))

	logger.Debugf("logger initialized with level %s", lvl.String())

	return logger
}

// NewLoggerFromZap wraps an existing zap logger, used to plug in observers.
func NewLoggerFromZap(z *zap.Logger) *Logger {
	logger := new(Logger)
	logger.SugaredLogger = z.Sugar()
	logger.security = newSecurityLogger(z.Named("security"))

	return logger
}
