package logger

import (
	"io"
	"net"
	"time"

	logrustash "github.com/bshuster-repo/logrus-logstash-hook"
	"github.com/natefinch/lumberjack"
	logrus "github.com/sirupsen/logrus"
)

// Options controls where and how much is logged.
type Options struct {
	File         string
	Level        string
	LogstashAddr string
}

var output io.Writer = logrus.StandardLogger().Out

// Setup initializes Logrus and GORM logging via a rotating file, and ships
// entries to logstash when an address is configured.
func Setup(opts Options) {
	// 1) Lumberjack for file rotation
	rotator := &lumberjack.Logger{
		Filename:   opts.File,
		MaxSize:    10, // megabytes
		MaxBackups: 7,  // keep up to 7 old files
		MaxAge:     7,  // days
		Compress:   true,
	}
	output = rotator

	// 2) Configure Logrus to write to that file
	logrus.SetOutput(rotator)
	logrus.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: time.RFC3339,
	})

	level, err := logrus.ParseLevel(opts.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	logrus.SetLevel(level)

	if opts.LogstashAddr != "" {
		conn, err := net.Dial("udp", opts.LogstashAddr)
		if err != nil {
			logrus.WithError(err).Warn("logstash unreachable, shipping disabled")
			return
		}
		logrus.AddHook(logrustash.New(conn, logrustash.DefaultFormatter(logrus.Fields{"type": "encho-fleet"})))
	}
}

// Output is the writer behind the application log, shared with the HTTP
// access log.
func Output() io.Writer {
	return output
}

// GormLogger returns the standard Logrus logger for GORM
func GormLogger() *logrus.Logger {
	return logrus.StandardLogger()
}
