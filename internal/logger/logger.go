package logger

import (
	"log"
	"os"
	"strings"
)

var levels = map[string]int{
	"debug": 0,
	"info":  1,
	"warn":  2,
	"error": 3,
}

type Logger struct {
	level string
}

func New(level string) *Logger {
	level = strings.ToLower(level)
	if _, ok := levels[level]; !ok {
		level = "info"
	}
	return &Logger{
		level: level,
	}
}

func (l *Logger) enabled(level string) bool {
	return levels[level] >= levels[l.level]
}

func (l *Logger) Info(msg string, args ...interface{}) {
	if l.enabled("info") {
		log.Printf("[INFO] "+msg, args...)
	}
}

func (l *Logger) Debug(msg string, args ...interface{}) {
	if l.enabled("debug") {
		log.Printf("[DEBUG] "+msg, args...)
	}
}

func (l *Logger) Warn(msg string, args ...interface{}) {
	if l.enabled("warn") {
		log.Printf("[WARN] "+msg, args...)
	}
}

func (l *Logger) Error(msg string, args ...interface{}) {
	log.Printf("[ERROR] "+msg, args...)
}

func (l *Logger) Fatal(msg string, args ...interface{}) {
	log.Printf("[FATAL] "+msg, args...)
	os.Exit(1)
}
