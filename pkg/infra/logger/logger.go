package logger

import (
	"io"
	"os"
	"time"

	"github.com/sirupsen/logrus"
)

// NewLogger builds the process-wide structured logger: JSON lines to stdout,
// optionally duplicated to the file named by GATEWAY_LOG_FILE. The returned
// closer flushes and closes the file sink; call it on shutdown. It is a no-op
// when logging to stdout only.
func NewLogger() (*logrus.Logger, func()) {
	log := logrus.New()

	log.SetFormatter(&logrus.JSONFormatter{
		TimestampFormat: time.RFC3339,
		FieldMap: logrus.FieldMap{
			logrus.FieldKeyTime: "time",
			logrus.FieldKeyMsg:  "msg",
		},
	})

	if os.Getenv("LOG_LEVEL") == "debug" {
		log.SetLevel(logrus.DebugLevel)
	} else {
		log.SetLevel(logrus.InfoLevel)
	}

	logFile := os.Getenv("GATEWAY_LOG_FILE")
	if logFile == "" {
		log.SetOutput(os.Stdout)
		return log, func() {}
	}

	fileWriter, err := NewAsyncFileWriter(logFile, 32*1024)
	if err != nil {
		log.WithError(err).Warn("failed to open log file, logging to stdout only")
		log.SetOutput(os.Stdout)
		return log, func() {}
	}

	log.SetOutput(io.MultiWriter(os.Stdout, fileWriter))
	return log, func() {
		if err := fileWriter.Close(); err != nil {
			log.WithError(err).Warn("failed to close log file")
		}
		if dropped := fileWriter.Dropped(); dropped > 0 {
			log.WithField("dropped", dropped).Warn("log records were dropped under load")
		}
	}
}
