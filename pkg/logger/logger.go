// Package logger provides a structured, levelled logger built on log/slog.
//
// WithCtx returns the per-request logger injected by the Logger middleware,
// so every line written while serving a search carries its request_id:
//
//	log := logger.WithCtx(r.Context())
//	log.Info("search computed", "total", res.Pagination.Total)
//	// → time=... level=INFO msg="search computed" request_id=a1b2c3d4 total=2
package logger

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/shashiranjanraj/storefront/config"
)

var L *slog.Logger

// sink is the optional MongoDB handler installed by EnableMongo.
var sink *MongoHandler

func init() {
	L = slog.New(consoleHandler(os.Stdout))
	slog.SetDefault(L)
}

func consoleHandler(w io.Writer) slog.Handler {
	if config.IsProduction() {
		return slog.NewJSONHandler(w, &slog.HandlerOptions{Level: slog.LevelInfo})
	}
	return slog.NewTextHandler(w, &slog.HandlerOptions{Level: slog.LevelDebug})
}

// EnableMongo fans every log record out to a MongoDB collection in addition
// to stdout. Call Close on shutdown to flush the pending batch.
func EnableMongo(uri, db string) error {
	h, err := NewMongoHandler(uri, db, "logs")
	if err != nil {
		return fmt.Errorf("logger: %w", err)
	}
	sink = h
	L = slog.New(NewMultiHandler(consoleHandler(os.Stdout), h))
	slog.SetDefault(L)
	return nil
}

// Close flushes and disconnects the MongoDB sink, if one is enabled.
func Close() {
	if sink != nil {
		sink.Close()
		sink = nil
	}
}

// ctxKey is the unexported key used to store a per-request *slog.Logger.
type ctxKey struct{}

// WithCtx returns the request-scoped logger stored in ctx, or the base
// logger when none was injected.
func WithCtx(ctx context.Context) *slog.Logger {
	if ctx == nil {
		return L
	}
	if log, ok := ctx.Value(ctxKey{}).(*slog.Logger); ok && log != nil {
		return log
	}
	return L
}

// InjectLogger stores a *slog.Logger (pre-tagged with request_id) into ctx.
func InjectLogger(ctx context.Context, log *slog.Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, log)
}

func Debug(msg string, args ...any) { L.Debug(msg, args...) }

func Info(msg string, args ...any) { L.Info(msg, args...) }

func Warn(msg string, args ...any) { L.Warn(msg, args...) }

func Error(msg string, args ...any) { L.Error(msg, args...) }
