package middleware

import (
	"context"
	"strconv"

	"careerhub/internal/observability"

	"github.com/gofiber/fiber/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

// TracingMiddleware opens a server span per request, continuing a trace
// propagated by the caller. The span is renamed to the matched route once the
// handler ran, and carries the listing category and ID when the handler set them.
func TracingMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx := otel.GetTextMapPropagator().Extract(c.UserContext(), propagation.HeaderCarrier(c.GetReqHeaders()))
		ctx, span := observability.Tracer.Start(ctx, c.Method()+" "+c.Path(),
			trace.WithSpanKind(trace.SpanKindServer),
			trace.WithAttributes(
				attribute.String("http.method", c.Method()),
				attribute.String("http.target", c.OriginalURL()),
				attribute.String("net.peer.ip", c.IP()),
			),
		)
		defer span.End()

		traceID := span.SpanContext().TraceID().String()
		c.Locals("traceID", traceID)
		c.Set("X-Trace-ID", traceID)
		if rid, ok := c.Locals("requestid").(string); ok {
			span.SetAttributes(attribute.String("request.id", rid))
		}
		c.SetUserContext(context.WithValue(ctx, TraceIDKey, traceID))

		err := c.Next()

		status := c.Response().StatusCode()
		if route := c.Route().Path; route != "" {
			span.SetName(c.Method() + " " + route)
			span.SetAttributes(attribute.String("http.route", route))
		}
		span.SetAttributes(attribute.Int("http.status_code", status))
		span.SetAttributes(requestAttributes(c)...)

		switch {
		case err != nil:
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		case status >= fiber.StatusInternalServerError:
			span.SetStatus(codes.Error, strconv.Itoa(status))
		}
		return err
	}
}

// requestAttributes reads what handlers and auth left in the Fiber locals.
func requestAttributes(c *fiber.Ctx) []attribute.KeyValue {
	var attrs []attribute.KeyValue
	if category, ok := c.Locals(localCategory).(string); ok {
		attrs = append(attrs, attribute.String("listing.category", category))
	}
	if id, ok := c.Locals(localListingID).(string); ok {
		attrs = append(attrs, attribute.String("listing.id", id))
	}
	if uid, ok := c.Locals("userID").(uint); ok {
		attrs = append(attrs, attribute.Int64("enduser.id", int64(uid)))
	}
	return attrs
}
