package log

import (
	stdlog "log"
	"os"
	"strings"
	"sync/atomic"
)

type Level int32

const (
	Debug Level = iota
	Info
	Warn
	Error
)

func (l Level) String() string {
	switch l {
	case Debug:
		return "DEBUG"
	case Info:
		return "INFO"
	case Warn:
		return "WARN"
	default:
		return "ERROR"
	}
}

// current wird von Handlern parallel gelesen, daher atomar.
var current atomic.Int32

func init() { current.Store(int32(Info)) }

func ParseLevel(s string) Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return Debug
	case "info", "":
		return Info
	case "warn", "warning":
		return Warn
	case "err", "error":
		return Error
	default:
		return Info
	}
}

func SetLevel(l Level) { current.Store(int32(l)) }

func CurrentLevel() Level { return Level(current.Load()) }

func Enabled(l Level) bool { return CurrentLevel() <= l }

func logf(l Level, format string, v ...any) {
	if !Enabled(l) {
		return
	}
	stdlog.Printf("["+l.String()+"] "+format, v...)
}

func Debugf(format string, v ...any) { logf(Debug, format, v...) }
func Infof(format string, v ...any) { logf(Info, format, v...) }
func Warnf(format string, v ...any) { logf(Warn, format, v...) }
func Errorf(format string, v ...any) { logf(Error, format, v...) }

// InitFromEnvFallback setzt das Level aus der Config; AUFGABEN_LOG_LEVEL hat Vorrang.
func InitFromEnvFallback(level string) {
	if env := os.Getenv("AUFGABEN_LOG_LEVEL"); env != "" {
		level = env
	}
	SetLevel(ParseLevel(level))
}
