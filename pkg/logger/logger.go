package logger

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/fatih/color"
)

var nowFunc = time.Now

// Logger логгер в стиле printf для всего сервиса.
// В консоль пишет читаемый текст с цветными уровнями, в файл (если задан) JSON строки.
type Logger struct {
	handlers []slog.Handler
	file     *os.File
	exit     func(code int)
}

// New создает логгер в stdout и, если filePath не пустой, в файл
func New(filePath string, level string) (*Logger, error) {
	lvl := ParseLevel(level)

	l := &Logger{exit: os.Exit}
	l.handlers = append(l.handlers, newConsoleHandler(os.Stdout, lvl))

	if filePath != "" {
		f, err := os.OpenFile(filePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, fmt.Errorf("logger: open %s: %w", filePath, err)
		}
		l.file = f
		l.handlers = append(l.handlers, slog.NewJSONHandler(f, &slog.HandlerOptions{Level: lvl}))
	}

	return l, nil
}

// NewWithWriter пишет JSON строки в w (для тестов)
func NewWithWriter(w io.Writer, level string) *Logger {
	return &Logger{
		handlers: []slog.Handler{slog.NewJSONHandler(w, &slog.HandlerOptions{Level: ParseLevel(level)})},
		exit:     os.Exit,
	}
}

// Nop логгер, который все выбрасывает
func Nop() *Logger {
	return &Logger{exit: os.Exit}
}

// ParseLevel debug/info/warn/error в уровни slog, неизвестное значение дает info
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Debug logs at debug level
func (l *Logger) Debug(format string, v ...interface{}) {
	l.log(slog.LevelDebug, format, v...)
}

// Info logs at info level
func (l *Logger) Info(format string, v ...interface{}) {
	l.log(slog.LevelInfo, format, v...)
}

// Warn logs at warn level
func (l *Logger) Warn(format string, v ...interface{}) {
	l.log(slog.LevelWarn, format, v...)
}

// Error logs at error level
func (l *Logger) Error(format string, v ...interface{}) {
	l.log(slog.LevelError, format, v...)
}

// Fatal пишет на уровне error и завершает процесс
func (l *Logger) Fatal(format string, v ...interface{}) {
	l.log(slog.LevelError, format, v...)
	l.Close()
	l.exit(1)
}

// Close закрывает файл лога
func (l *Logger) Close() {
	if l.file != nil {
		_ = l.file.Sync()
		_ = l.file.Close()
		l.file = nil
	}
}

func (l *Logger) log(level slog.Level, format string, v ...interface{}) {
	if l == nil || len(l.handlers) == 0 {
		return
	}

	ctx := context.Background()
	msg := fmt.Sprintf(format, v...)

	for _, h := range l.handlers {
		if !h.Enabled(ctx, level) {
			continue
		}
		rec := slog.NewRecord(nowFunc(), level, msg, 0)
		_ = h.Handle(ctx, rec)
	}
}

var (
	debugColor = color.New(color.FgMagenta).SprintFunc()
	infoColor  = color.New(color.FgBlue).SprintFunc()
	warnColor  = color.New(color.FgYellow).SprintFunc()
	errorColor = color.New(color.FgRed, color.Bold).SprintFunc()
)

func newConsoleHandler(w io.Writer, level slog.Level) slog.Handler {
	return slog.NewTextHandler(w, &slog.HandlerOptions{
		Level: level,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if a.Key != slog.LevelKey || len(groups) > 0 {
				return a
			}
			lvl, ok := a.Value.Any().(slog.Level)
			if !ok {
				return a
			}
			return slog.String(slog.LevelKey, colorLevel(lvl))
		},
	})
}

func colorLevel(level slog.Level) string {
	switch {
	case level >= slog.LevelError:
		return errorColor("ERROR")
	case level >= slog.LevelWarn:
		return warnColor("WARN")
	case level >= slog.LevelInfo:
		return infoColor("INFO")
	default:
		return debugColor("DEBUG")
	}
}
