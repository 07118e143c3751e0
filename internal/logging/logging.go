// Package logging routes the standard logger and gin's request log to stdout
// and, when configured, to a rotated log file.
package logging

import (
	"io"
	"log"
	"os"
	"path/filepath"

	"github.com/gin-gonic/gin"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Setup points the standard logger and gin's writers at stdout, teeing into
// a rotated file when logFile is not empty. The returned closer flushes the
// file and must be called on shutdown.
func Setup(logFile string) (io.Closer, error) {
	log.SetFlags(log.LstdFlags | log.Lmicroseconds)

	if logFile == "" {
		return io.NopCloser(nil), nil
	}

	if err := os.MkdirAll(filepath.Dir(logFile), os.ModePerm); err != nil {
		return nil, err
	}

	rotated := &lumberjack.Logger{
		Filename:   logFile,
		MaxSize:    10, // megabytes
		MaxBackups: 3,
		MaxAge:     28, // days
		Compress:   true,
	}

	out := io.MultiWriter(os.Stdout, rotated)
	log.SetOutput(out)
	gin.DefaultWriter = out
	gin.DefaultErrorWriter = io.MultiWriter(os.Stderr, rotated)

	return rotated, nil
}
