// Package logging provides the structured logger that provider.Source
// uses to report connection establishment, backed by github.com/rs/zerolog.
package logging

import (
	"context"
	"io"
	"os"

	"github.com/rs/zerolog"
)

// Field is one structured key/value pair attached to a log line.
type Field struct {
	Key   string
	Value any
}

func Str(key, value string) Field { return Field{Key: key, Value: value} }
func Err(err error) Field         { return Field{Key: "error", Value: err} }
func Int(key string, value int) Field { return Field{Key: key, Value: value} }
func Duration(key string, value any) Field { return Field{Key: key, Value: value} }

// Logger is the engine's structured logging contract.
type Logger interface {
	Debug(ctx context.Context, msg string, fields ...Field)
	Info(ctx context.Context, msg string, fields ...Field)
	Warn(ctx context.Context, msg string, fields ...Field)
	Error(ctx context.Context, msg string, fields ...Field)
	With(fields ...Field) Logger
}

// Logger implementation backed by zerolog.
type zlog struct {
	l zerolog.Logger
}

// New builds a Logger writing JSON lines to w (os.Stderr if nil).
func New(w io.Writer) Logger {
	if w == nil {
		w = os.Stderr
	}
	return &zlog{l: zerolog.New(w).With().Timestamp().Logger()}
}

// Nop returns a Logger that discards everything, for callers that don't
// want logging wired up (e.g. most unit tests).
func Nop() Logger { return &zlog{l: zerolog.Nop()} }

func apply(e *zerolog.Event, fields []Field) *zerolog.Event {
	for _, f := range fields {
		if err, ok := f.Value.(error); ok {
			e = e.AnErr(f.Key, err)
			continue
		}
		e = e.Interface(f.Key, f.Value)
	}
	return e
}

func (z *zlog) Debug(ctx context.Context, msg string, fields ...Field) {
	apply(z.l.Debug(), fields).Msg(msg)
}

func (z *zlog) Info(ctx context.Context, msg string, fields ...Field) {
	apply(z.l.Info(), fields).Msg(msg)
}

func (z *zlog) Warn(ctx context.Context, msg string, fields ...Field) {
	apply(z.l.Warn(), fields).Msg(msg)
}

func (z *zlog) Error(ctx context.Context, msg string, fields ...Field) {
	apply(z.l.Error(), fields).Msg(msg)
}

func (z *zlog) With(fields ...Field) Logger {
	ctx := z.l.With()
	for _, f := range fields {
		ctx = ctx.Interface(f.Key, f.Value)
	}
	return &zlog{l: ctx.Logger()}
}
