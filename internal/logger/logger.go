package logger

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"gopkg.in/natefinch/lumberjack.v2"
)

type LogLevel string

const (
	LevelInfo  LogLevel = "INFO"
	LevelWarn  LogLevel = "WARN"
	LevelError LogLevel = "ERROR"
)

const (
	EventLoginSuccess    = "LOGIN_SUCCESS"
	EventLoginFailure    = "LOGIN_FAILURE"
	EventAccessDenied    = "ACCESS_DENIED"
	EventRegistration    = "REGISTRATION"
	EventUpload          = "UPLOAD"
	EventSongDeleted     = "SONG_DELETED"
	EventRating          = "RATING"
	EventServiceStartup  = "SERVICE_STARTUP"
	EventServiceShutdown = "SERVICE_SHUTDOWN"
	EventDBConnection    = "DB_CONNECTION"
	EventDBError         = "DB_ERROR"
	EventStorageError    = "STORAGE_ERROR"
	EventGeneral         = "GENERAL"
)

type LogEntry struct {
	Timestamp string                 `json:"timestamp"`
	Level     LogLevel               `json:"level"`
	EventType string                 `json:"event_type"`
	Message   string                 `json:"message"`
	Details   map[string]interface{} `json:"details,omitempty"`
}

type Config struct {
	LogFilePath string
	MaxSizeMB   int
	MaxBackups  int
	MaxAgeDays  int
}

type Logger struct {
	writer io.Writer
	mu     sync.Mutex
}

// Credentials and session material never reach the log file.
var sensitiveFields = map[string]bool{
	"password":         true,
	"confirm_password": true,
	"token":            true,
	"cookie":           true,
	"session":          true,
	"authorization":    true,
}

var instance *Logger

func Init(cfg Config) {
	instance = NewLogger(cfg)
}

func GetLogger() *Logger {
	if instance == nil {
		instance = &Logger{writer: os.Stdout}
	}
	return instance
}

func NewLogger(cfg Config) *Logger {
	if cfg.MaxSizeMB == 0 {
		cfg.MaxSizeMB = 100
	}
	if cfg.MaxBackups == 0 {
		cfg.MaxBackups = 5
	}
	if cfg.MaxAgeDays == 0 {
		cfg.MaxAgeDays = 30
	}

	writers := []io.Writer{os.Stdout}

	if cfg.LogFilePath != "" {
		logDir := filepath.Dir(cfg.LogFilePath)
		if err := os.MkdirAll(logDir, 0o700); err != nil {
			fmt.Fprintf(os.Stderr, "WARNING: cannot create log directory %s: %v, using stdout only\n", logDir, err)
		} else {
			writers = append(writers, &lumberjack.Logger{
				Filename:   cfg.LogFilePath,
				MaxSize:    cfg.MaxSizeMB,
				MaxBackups: cfg.MaxBackups,
				MaxAge:     cfg.MaxAgeDays,
				Compress:   true,
			})
		}
	}

	return &Logger{writer: io.MultiWriter(writers...)}
}

func (l *Logger) log(level LogLevel, eventType, message string, details map[string]interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()

	entry := LogEntry{
		Timestamp: time.Now().UTC().Format(time.RFC3339Nano),
		Level:     level,
		EventType: eventType,
		Message:   message,
		Details:   redact(details),
	}

	data, err := json.Marshal(entry)
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: failed to marshal log entry: %v\n", err)
		return
	}

	l.writer.Write(append(data, '\n'))
}

func redact(details map[string]interface{}) map[string]interface{} {
	if details == nil {
		return nil
	}
	out := make(map[string]interface{}, len(details))
	for k, v := range details {
		if sensitiveFields[k] {
			out[k] = "[REDACTED]"
			continue
		}
		out[k] = v
	}
	return out
}

func (l *Logger) Info(eventType, message string, details map[string]interface{}) {
	l.log(LevelInfo, eventType, message, details)
}

func (l *Logger) Warn(eventType, message string, details map[string]interface{}) {
	l.log(LevelWarn, eventType, message, details)
}

func (l *Logger) Error(eventType, message string, details map[string]interface{}) {
	l.log(LevelError, eventType, message, details)
}

// Fields builds a details map from alternating key/value pairs.
func Fields(kv ...interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(kv)/2)
	for i := 0; i+1 < len(kv); i += 2 {
		key, ok := kv[i].(string)
		if !ok {
			continue
		}
		out[key] = kv[i+1]
	}
	return out
}

func Info(eventType, message string, details map[string]interface{}) {
	GetLogger().Info(eventType, message, details)
}

func Warn(eventType, message string, details map[string]interface{}) {
	GetLogger().Warn(eventType, message, details)
}

func Error(eventType, message string, details map[string]interface{}) {
	GetLogger().Error(eventType, message, details)
}
