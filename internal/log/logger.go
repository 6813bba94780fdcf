// Package log carries a zap logger and its fields through a context.Context
package log

import (
	"context"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	_logger       *zap.Logger
	defaultlogger *zap.Logger
)

type contextKey int

const (
	contextKeyFields contextKey = iota
)

func init() {
	Structured()
}

func setLogger(l *zap.Logger) {
	defaultlogger = l
}

func resetLogger() {
	defaultlogger = _logger
}

// level parses the LOGLEVEL environment variable (debug, info, warn, error). Default: info
func level() zap.AtomicLevel {
	lvl := zap.NewAtomicLevelAt(zap.InfoLevel)
	if s := os.Getenv("LOGLEVEL"); s != "" {
		if err := lvl.UnmarshalText([]byte(s)); err != nil {
			lvl = zap.NewAtomicLevelAt(zap.DebugLevel)
		}
	}
	return lvl
}

func build(cfg zap.Config, enc zapcore.EncoderConfig) {
	enc.LevelKey = "severity"
	enc.TimeKey = "timestamp"
	enc.StacktraceKey = ""
	enc.MessageKey = "message"
	cfg.EncoderConfig = enc
	cfg.DisableCaller = true
	cfg.DisableStacktrace = true
	cfg.Level = level()
	var err error
	if _logger, err = cfg.Build(); err != nil {
		panic(err)
	}
	defaultlogger = _logger
}

// Structured sets output to be JSON encoded
func Structured() {
	enc := zap.NewProductionEncoderConfig()
	enc.EncodeTime = zapcore.ISO8601TimeEncoder
	build(zap.NewProductionConfig(), enc)
}

func timeEncoder(t time.Time, enc zapcore.PrimitiveArrayEncoder) {
	enc.AppendString(t.Format("15:04:05.000"))
}

// Console sets output to be human-readable
func Console() {
	enc := zap.NewDevelopmentEncoderConfig()
	enc.EncodeTime = timeEncoder
	enc.EncodeLevel = zapcore.CapitalColorLevelEncoder
	build(zap.NewDevelopmentConfig(), enc)
}

// Logger returns a logger that will print fields previously added to the context
func Logger(ctx context.Context) *zap.Logger {
	if flds, ok := ctx.Value(contextKeyFields).([]zap.Field); ok {
		return defaultlogger.With(flds...)
	}
	return defaultlogger
}

// With adds a key=value field to the returned context
func With(ctx context.Context, key string, value interface{}) context.Context {
	return WithFields(ctx, zap.Any(key, value))
}

// WithFields adds fields to the returned context
func WithFields(ctx context.Context, fields ...zapcore.Field) context.Context {
	flds, _ := ctx.Value(contextKeyFields).([]zap.Field)
	fflds := make([]zap.Field, 0, len(flds)+len(fields))
	fflds = append(append(fflds, flds...), fields...)
	return context.WithValue(ctx, contextKeyFields, fflds)
}

// CopyContext returns a context derived from dst that contains the logging fields of ctx
// followed by the fields of dst
func CopyContext(ctx context.Context, dst context.Context) context.Context {
	flds, ok := ctx.Value(contextKeyFields).([]zap.Field)
	if !ok {
		return dst
	}
	dflds, _ := dst.Value(contextKeyFields).([]zap.Field)
	fflds := make([]zap.Field, 0, len(flds)+len(dflds))
	fflds = append(append(fflds, flds...), dflds...)
	return context.WithValue(dst, contextKeyFields, fflds)
}

// Sync flushes the default logger
func Sync() {
	_ = defaultlogger.Sync()
}

func Fatal(v ...interface{}) {
	defaultlogger.Fatal(fmt.Sprint(v...))
}

func Fatalf(format string, v ...interface{}) {
	defaultlogger.Sugar().Fatalf(format, v...)
}
