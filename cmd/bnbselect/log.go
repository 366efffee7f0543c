// Copyright (c) 2025 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/btcsuite/btclog"
	"github.com/btcsuite/coinselect/coinselect"
	"github.com/jrick/logrotate/rotator"
)

const (
	// logFilename is the name of the log file created in the log
	// directory.
	logFilename = "bnbselect.log"

	// logRollThresholdKB is the size after which the log file is rolled.
	logRollThresholdKB = 10 * 1024

	// logMaxRolls is the number of rolled log files kept.
	logMaxRolls = 3
)

// logWriter implements an io.Writer that outputs to both standard output and
// the write-end pipe of an initialized log rotator.
type logWriter struct{}

func (logWriter) Write(p []byte) (n int, err error) {
	os.Stdout.Write(p)
	if logRotator != nil {
		logRotator.Write(p)
	}

	return len(p), nil
}

var (
	// backendLog is the logging backend used to create all subsystem
	// loggers.
	backendLog = btclog.NewBackend(logWriter{})

	// logRotator is one of the logging outputs. It is only set if a log
	// directory is configured and should be closed on shutdown.
	logRotator *rotator.Rotator

	mainLog = backendLog.Logger("BNBS")
	slctLog = backendLog.Logger("SLCT")
)

func init() {
	coinselect.UseLogger(slctLog)
}

// subsystemLoggers maps each subsystem identifier to its associated logger.
var subsystemLoggers = map[string]btclog.Logger{
	"BNBS": mainLog,
	"SLCT": slctLog,
}

// initLogRotator initializes the logging rotator to write logs to a file in
// logDir and create roll files in the same directory.
func initLogRotator(logDir string) error {
	err := os.MkdirAll(logDir, 0700)
	if err != nil {
		return fmt.Errorf("failed to create log directory: %w", err)
	}

	logFile := filepath.Join(logDir, logFilename)
	r, err := rotator.New(logFile, logRollThresholdKB, false, logMaxRolls)
	if err != nil {
		return fmt.Errorf("failed to create file rotator: %w", err)
	}

	logRotator = r

	return nil
}

// setLogLevels sets the log level of all subsystems.
func setLogLevels(logLevel string) error {
	level, ok := btclog.LevelFromString(logLevel)
	if !ok {
		return fmt.Errorf("invalid log level %q", logLevel)
	}

	for _, logger := range subsystemLoggers {
		logger.SetLevel(level)
	}

	return nil
}
