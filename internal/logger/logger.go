// Package logger wraps the standard logger with leveled helpers and mirrors
// output to a daily file when a log directory is configured.
package logger

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"time"
)

// Init points the standard logger at stdout and a dated file under dir.
// An empty dir keeps stdout only.
func Init(dir string) {
	if dir == "" {
		return
	}
	if err := os.MkdirAll(dir, os.ModePerm); err != nil {
		log.Printf("[ERROR] could not create log directory %s: %v", dir, err)
		return
	}

	fileName := filepath.Join(dir, fmt.Sprintf("app_%s.log", time.Now().Format("02-01-2006")))
	logFile, err := os.OpenFile(fileName, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
	if err != nil {
		log.Printf("[ERROR] could not open log file %s: %v", fileName, err)
		return
	}
	log.SetOutput(io.MultiWriter(os.Stdout, logFile))
	Info("Logger initialized, writing to " + fileName)
}

func Success(message string) {
	log.Printf("[OK] %s", message)
}

func Info(message string) {
	log.Printf("[INFO] %s", message)
}

func Warning(message string) {
	log.Printf("[WARN] %s", message)
}

func Error(message string, err error) {
	if err != nil {
		log.Printf("[ERROR] %s: %v", message, err)
		return
	}
	log.Printf("[ERROR] %s", message)
}

func Printf(format string, args ...interface{}) {
	log.Printf("[INFO] "+format, args...)
}

func Fatal(message string, err error) {
	log.Fatalf("[FATAL] %s: %v", message, err)
}
