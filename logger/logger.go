// Copyright 2024 Quasar Labs
// This file is part of the Quasar uncertainty quantification toolkit.
//
// Quasar is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// Quasar is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with Quasar. If not, see <http://www.gnu.org/licenses/>.

package logger

import (
	"os"
	"time"

	"github.com/op/go-logging"
	"github.com/urfave/cli/v2"
)

// LogLevelFlag defines the verbosity of the app's logging output.
var LogLevelFlag = cli.StringFlag{
	Name:    "log",
	Aliases: []string{"l"},
	Usage:   "Level of the logging of the app action (\"critical\", \"error\", \"warning\", \"notice\", \"info\", \"debug\"; default: INFO)",
	Value:   "info",
}

const defaultLogFormat = "%{time:15:04:05.000} %{color}%{level:-8s}%{color:reset} %{module}: %{message}"

// Logger is the logging interface threaded through the toolkit.
//
//go:generate mockgen -source logger.go -destination logger_mock.go -package logger
type Logger interface {
	Fatal(args ...interface{})
	Fatalf(format string, args ...interface{})
	Panic(args ...interface{})
	Panicf(format string, args ...interface{})
	Critical(args ...interface{})
	Criticalf(format string, args ...interface{})
	Error(args ...interface{})
	Errorf(format string, args ...interface{})
	Warning(args ...interface{})
	Warningf(format string, args ...interface{})
	Notice(args ...interface{})
	Noticef(format string, args ...interface{})
	Info(args ...interface{})
	Infof(format string, args ...interface{})
	Debug(args ...interface{})
	Debugf(format string, args ...interface{})
	IsEnabledFor(level logging.Level) bool
}

// NewLogger provides a new instance of the Logger based on the log level.
// An unknown level string falls back to INFO.
func NewLogger(level string, module string) Logger {
	backend := logging.NewLogBackend(os.Stdout, "", 0)

	fm := logging.MustStringFormatter(defaultLogFormat)
	fmtBackend := logging.NewBackendFormatter(backend, fm)

	lvl, err := logging.LogLevel(level)
	if err != nil {
		lvl = logging.INFO
	}
	lvlBackend := logging.AddModuleLevel(fmtBackend)
	lvlBackend.SetLevel(lvl, "")

	logging.SetBackend(lvlBackend)
	return logging.MustGetLogger(module)
}

// ParseTime splits an elapsed duration into hours, minutes and seconds
// for progress reports.
func ParseTime(elapsed time.Duration) (uint32, uint32, uint32) {
	hours := uint32(elapsed.Seconds()) / 3600
	minutes := (uint32(elapsed.Seconds()) % 3600) / 60
	seconds := uint32(elapsed.Seconds()) % 60

	return hours, minutes, seconds
}
