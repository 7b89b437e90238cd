// Package logger configures the echo (gommon) logger shared by the HTTP
// server, services, the queue consumer and the expiry sweep.
package logger

import (
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/labstack/gommon/log"
	"gopkg.in/natefinch/lumberjack.v2"
)

// New returns a gommon logger writing to stdout and, when file is non-empty,
// to a rotating log file.  level is one of debug, info, warn, error or off.
func New(prefix, level, file string) *log.Logger {
	l := log.New(prefix)
	l.SetHeader(`${time_rfc3339} ${level} ${prefix} ${short_file}:${line}`)
	l.SetLevel(ParseLevel(level))

	var out io.Writer = os.Stdout
	if file != "" {
		_ = os.MkdirAll(filepath.Dir(file), 0o755)
		out = io.MultiWriter(os.Stdout, &lumberjack.Logger{
			Filename:   file,
			MaxSize:    100, // megabytes
			MaxBackups: 3,
			MaxAge:     30, // days
			Compress:   true,
		})
	}
	l.SetOutput(out)
	return l
}

// ParseLevel maps a textual level to gommon's enum.  Unknown values map to INFO.
func ParseLevel(level string) log.Lvl {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return log.DEBUG
	case "warn", "warning":
		return log.WARN
	case "error":
		return log.ERROR
	case "off":
		return log.OFF
	}
	return log.INFO
}
