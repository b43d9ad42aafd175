/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package logging

import (
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Options controls process logging.
type Options struct {
	Environment string
	Level       string
	// File, when set, receives JSON log lines in addition to the console.
	File string
}

// Setup configures zerolog for the process.
func Setup(opts Options) zerolog.Logger {
	var fileWriter io.Writer
	if opts.File != "" {
		fileWriter = &lumberjack.Logger{
			Filename:   opts.File,
			MaxSize:    20, // megabytes
			MaxBackups: 5,
			MaxAge:     30, // days
			Compress:   true,
		}
	}
	return SetupWithWriter(opts, os.Stdout, fileWriter)
}

// SetupWithWriter configures zerolog with a console writer and an optional
// additional JSON writer.
func SetupWithWriter(opts Options, console io.Writer, additionalWriter io.Writer) zerolog.Logger {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix

	consoleWriter := zerolog.ConsoleWriter{Out: console}

	var writer io.Writer = consoleWriter
	if additionalWriter != nil {
		writer = zerolog.MultiLevelWriter(consoleWriter, additionalWriter)
	}

	logger := zerolog.New(writer).With().Timestamp().Logger().Level(level(opts))
	log.Logger = logger
	return logger
}

func level(opts Options) zerolog.Level {
	if opts.Level != "" {
		if lvl, err := zerolog.ParseLevel(strings.ToLower(opts.Level)); err == nil && lvl != zerolog.NoLevel {
			return lvl
		}
	}
	if opts.Environment == "development" {
		return zerolog.DebugLevel
	}
	return zerolog.InfoLevel
}
