package db

import (
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm/logger"
)

// NewLogger routes gorm's logging through logrus at a level derived from the
// service log level. Only debug and trace surface individual SQL statements.
func NewLogger(logLevel string) logger.Interface {
	level := logger.Warn
	switch logLevel {
	case "trace", "debug":
		level = logger.Info
	case "error":
		level = logger.Error
	}

	return logger.New(logrus.WithField("component", "gorm"), logger.Config{
		SlowThreshold:             500 * time.Millisecond,
		LogLevel:                  level,
		IgnoreRecordNotFoundError: true,
		Colorful:                  false,
	})
}
