// Copyright 2020 Adam Chalkley
//
// https://github.com/atc0005/check-cert
//
// Licensed under the MIT License. See LICENSE file in the project root for
// full license information.

package config

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
)

const (
	// LogLevelDisabled maps to zerolog.Disabled logging level.
	LogLevelDisabled string = "disabled"

	// LogLevelPanic maps to zerolog.PanicLevel logging level.
	LogLevelPanic string = "panic"

	// LogLevelFatal maps to zerolog.FatalLevel logging level.
	LogLevelFatal string = "fatal"

	// LogLevelError maps to zerolog.ErrorLevel logging level.
	LogLevelError string = "error"

	// LogLevelWarn maps to zerolog.WarnLevel logging level.
	LogLevelWarn string = "warn"

	// LogLevelInfo maps to zerolog.InfoLevel logging level.
	LogLevelInfo string = "info"

	// LogLevelDebug maps to zerolog.DebugLevel logging level.
	LogLevelDebug string = "debug"

	// LogLevelTrace maps to zerolog.TraceLevel logging level.
	LogLevelTrace string = "trace"
)

// loggingLevels is a map of string to zerolog.Level created in an effort to
// keep from repeating ourselves.
var loggingLevels = make(map[string]zerolog.Level)

func init() {
	loggingLevels[LogLevelDisabled] = zerolog.Disabled
	loggingLevels[LogLevelPanic] = zerolog.PanicLevel
	loggingLevels[LogLevelFatal] = zerolog.FatalLevel
	loggingLevels[LogLevelError] = zerolog.ErrorLevel
	loggingLevels[LogLevelWarn] = zerolog.WarnLevel
	loggingLevels[LogLevelInfo] = zerolog.InfoLevel
	loggingLevels[LogLevelDebug] = zerolog.DebugLevel
	loggingLevels[LogLevelTrace] = zerolog.TraceLevel
}

// setLoggingLevel applies the requested logging level to filter out
// messages with a lower level than the one configured.
func setLoggingLevel(logLevel string) error {
	level, ok := loggingLevels[logLevel]
	if !ok {
		return fmt.Errorf("invalid option provided: %v", logLevel)
	}
	zerolog.SetGlobalLevel(level)
	return nil
}

// setupLogging configures c.Log for appType. The pathverify plugin logs to
// stderr, keeping stdout free for the Nagios-formatted check result;
// pathinfo, a plain inspection CLI, logs to stdout.
func (c *Config) setupLogging(appType AppType) error {
	switch {
	case appType.Plugin:
		consoleWriter := zerolog.ConsoleWriter{Out: os.Stderr}
		c.Log = zerolog.New(consoleWriter).With().Timestamp().Caller().
			Str("version", Version()).
			Str("logging_level", c.LoggingLevel).
			Str("app_type", "pathverify").
			Str("leaf_file", c.LeafFile).
			Str("pool_file", c.PoolFile).
			Str("anchors_file", c.AnchorsFile).
			Int("max_depth", c.MaxDepth).
			Logger()

	case appType.Inspecter:
		consoleWriter := zerolog.ConsoleWriter{Out: os.Stdout}
		c.Log = zerolog.New(consoleWriter).With().Timestamp().Caller().
			Str("version", Version()).
			Str("logging_level", c.LoggingLevel).
			Str("app_type", "pathinfo").
			Str("leaf_file", c.LeafFile).
			Logger()
	}

	return setLoggingLevel(c.LoggingLevel)
}
