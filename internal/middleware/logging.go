package middleware

import (
	"context"
	"log/slog"
	"os"
	"strings"
	"time"

	"careerhub/internal/observability"

	"github.com/gofiber/fiber/v2"
)

// Logger is the process-wide structured logger. It reads request, user and
// listing values from the context passed to the *Context logging methods.
var Logger *slog.Logger

type contextKey string

const (
	RequestIDKey contextKey = "request_id"
	UserIDKey    contextKey = "user_id"
	TraceIDKey   contextKey = "trace_id"
	CategoryKey  contextKey = "category"
	ListingIDKey contextKey = "listing_id"
)

// Fiber locals carrying the listing a request is about.
const (
	localCategory  = "category"
	localListingID = "listingID"
)

// contextAttrs lists the context values copied onto every record, in output order.
var contextAttrs = []contextKey{RequestIDKey, TraceIDKey, UserIDKey, CategoryKey, ListingIDKey}

type ctxHandler struct {
	slog.Handler
}

func (h *ctxHandler) Handle(ctx context.Context, r slog.Record) error {
	for _, key := range contextAttrs {
		switch v := ctx.Value(key).(type) {
		case string:
			if v != "" {
				r.AddAttrs(slog.String(string(key), v))
			}
		case uint:
			r.AddAttrs(slog.Uint64(string(key), uint64(v)))
		}
	}
	return h.Handler.Handle(ctx, r)
}

func (h *ctxHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &ctxHandler{h.Handler.WithAttrs(attrs)}
}

func (h *ctxHandler) WithGroup(name string) slog.Handler {
	return &ctxHandler{h.Handler.WithGroup(name)}
}

func init() {
	ConfigureLogger(os.Getenv("APP_ENV"), os.Getenv("LOG_LEVEL"))
}

// ConfigureLogger replaces Logger: JSON in production, text elsewhere, at the
// given level (info when empty or unknown).
func ConfigureLogger(env, level string) {
	opts := &slog.HandlerOptions{Level: parseLevel(level)}

	var handler slog.Handler
	if env == "production" || env == "prod" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}
	Logger = slog.New(&ctxHandler{handler})
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	return slog.LevelInfo
}

// ContextMiddleware moves the request ID from Fiber locals into the request
// context, where it doubles as the correlation ID of repository logs.
func ContextMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx := c.UserContext()

		if rid, ok := c.Locals("requestid").(string); ok && rid != "" {
			ctx = context.WithValue(ctx, RequestIDKey, rid)
			ctx = observability.WithCorrelationID(ctx, rid)
		}
		ctx = observability.EnsureCorrelationID(ctx)

		c.SetUserContext(ctx)
		return c.Next()
	}
}

// WithListing records the category and, when known, the listing ID a request is
// about, for the request log, the request span and every log line below it.
func WithListing(c *fiber.Ctx, category, id string) {
	c.Locals(localCategory, category)
	ctx := context.WithValue(c.UserContext(), CategoryKey, category)
	if id != "" {
		c.Locals(localListingID, id)
		ctx = context.WithValue(ctx, ListingIDKey, id)
	}
	c.SetUserContext(ctx)
}

// StructuredLogger writes one record per request. Server errors log at error,
// client errors at warn and health checks at debug. Category and listing ID
// come from the context set by WithListing.
func StructuredLogger() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		status := c.Response().StatusCode()
		if err != nil {
			if fe, ok := err.(*fiber.Error); ok {
				status = fe.Code
			} else if status < fiber.StatusBadRequest {
				status = fiber.StatusInternalServerError
			}
		}

		fields := []any{
			slog.Int("status", status),
			slog.String("method", c.Method()),
			slog.String("route", c.Route().Path),
			slog.String("path", c.Path()),
			slog.Duration("latency", time.Since(start)),
			slog.String("ip", c.IP()),
		}
		if err != nil {
			fields = append(fields, slog.String("error", err.Error()))
		}

		ctx := c.UserContext()
		switch {
		case status >= fiber.StatusInternalServerError:
			Logger.ErrorContext(ctx, "request failed", fields...)
		case status >= fiber.StatusBadRequest:
			Logger.WarnContext(ctx, "request rejected", fields...)
		case strings.HasPrefix(c.Path(), "/health"), c.Path() == "/metrics":
			Logger.DebugContext(ctx, "health check served", fields...)
		default:
			Logger.InfoContext(ctx, "request served", fields...)
		}
		return err
	}
}
