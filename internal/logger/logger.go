package logger

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const timeLayout = "2006-01-02 15:04:05"

var (
	level      = zap.NewAtomicLevelAt(zapcore.InfoLevel)
	loggerMu   sync.RWMutex
	baseLogger *zap.SugaredLogger
	location   atomic.Pointer[time.Location]
)

func init() {
	location.Store(time.Local)
	baseLogger = newLogger(os.Stdout)
}

func newLogger(w io.Writer) *zap.SugaredLogger {
	if w == nil {
		w = os.Stdout
	}
	encCfg := zap.NewProductionEncoderConfig()
	encCfg.TimeKey = "time"
	encCfg.EncodeTime = encodeLocalTime
	encCfg.EncodeLevel = zapcore.CapitalLevelEncoder
	encCfg.CallerKey = ""
	encCfg.StacktraceKey = ""
	core := zapcore.NewCore(zapcore.NewConsoleEncoder(encCfg), zapcore.AddSync(w), level)
	return zap.New(core).Sugar()
}

func encodeLocalTime(t time.Time, enc zapcore.PrimitiveArrayEncoder) {
	enc.AppendString(t.In(Location()).Format(timeLayout))
}

func SetOutput(w io.Writer) {
	l := newLogger(w)
	loggerMu.Lock()
	old := baseLogger
	baseLogger = l
	loggerMu.Unlock()
	if old != nil {
		_ = old.Sync()
	}
}

func SetLevel(lvl string) {
	switch strings.ToLower(strings.TrimSpace(lvl)) {
	case "debug":
		level.SetLevel(zapcore.DebugLevel)
	case "info":
		level.SetLevel(zapcore.InfoLevel)
	case "warn", "warning":
		level.SetLevel(zapcore.WarnLevel)
	case "error":
		level.SetLevel(zapcore.ErrorLevel)
	default:
		level.SetLevel(zapcore.InfoLevel)
	}
}

// SetTimezone changes the zone used for log timestamps. The panel runs on
// America/Sao_Paulo wall-clock time regardless of the host zone.
func SetTimezone(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		location.Store(time.Local)
		return nil
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return fmt.Errorf("load timezone %q: %w", name, err)
	}
	location.Store(loc)
	return nil
}

func Location() *time.Location {
	if loc := location.Load(); loc != nil {
		return loc
	}
	return time.Local
}

func Sync() {
	_ = activeLogger().Sync()
}

func activeLogger() *zap.SugaredLogger {
	loggerMu.RLock()
	l := baseLogger
	loggerMu.RUnlock()
	if l != nil {
		return l
	}
	loggerMu.Lock()
	defer loggerMu.Unlock()
	if baseLogger == nil {
		baseLogger = newLogger(os.Stdout)
	}
	return baseLogger
}

func Debugf(format string, v ...any) {
	activeLogger().Debugf(format, v...)
}

func Infof(format string, v ...any) {
	activeLogger().Infof(format, v...)
}

func Warnf(format string, v ...any) {
	activeLogger().Warnf(format, v...)
}

func Errorf(format string, v ...any) {
	activeLogger().Errorf(format, v...)
}

func InfoBlock(block string) {
	block = strings.TrimSpace(block)
	if block == "" {
		return
	}
	for _, line := range strings.Split(block, "\n") {
		Infof("%s", line)
	}
}
