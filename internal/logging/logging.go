// Package logging builds the application logger: JSON lines with ts/level/msg keys.
package logging

import (
	"io"
	"os"
	"time"

	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"

	"domsync/internal/config"
)

// New returns a logger configured from cfg.
// Writer is "stdout", "stderr", "" (discard) or a file path rotated by size.
func New(cfg config.LogConfig) *logrus.Entry {
	base := logrus.New()
	base.Out = writer(cfg)
	base.Formatter = &logrus.JSONFormatter{
		TimestampFormat: time.RFC3339Nano,
		FieldMap: logrus.FieldMap{
			logrus.FieldKeyTime:  "ts",
			logrus.FieldKeyLevel: "level",
			logrus.FieldKeyMsg:   "msg",
		},
	}

	level, err := logrus.ParseLevel(cfg.Level)
	// unsupported levels fall back to info
	if err != nil {
		base.WithError(err).Error("invalid_log_level")
		level = logrus.InfoLevel
	}
	base.Level = level

	return logrus.NewEntry(base).WithField("component", "domsync")
}

func writer(cfg config.LogConfig) io.Writer {
	switch cfg.Writer {
	case "stdout":
		return os.Stdout
	case "stderr":
		return os.Stderr
	case "":
		return io.Discard
	default:
		return &lumberjack.Logger{
			Filename:   cfg.Writer,
			MaxSize:    cfg.MaxSizeMB,
			MaxAge:     cfg.MaxAgeDays,
			MaxBackups: cfg.MaxBackups,
		}
	}
}
