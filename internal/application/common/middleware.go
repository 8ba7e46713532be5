package common

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/andrescamacho/routing-go/internal/application/mediator"
	"github.com/andrescamacho/routing-go/internal/application/requestid"
)

// RequestIDMiddleware stamps a request id onto the context when the caller
// did not provide one. Installed outermost so every later middleware and
// handler sees the same id.
func RequestIDMiddleware() mediator.Middleware {
	return func(ctx context.Context, request mediator.Request, next mediator.HandlerFunc) (mediator.Response, error) {
		if requestid.FromContext(ctx) == "" {
			ctx = requestid.WithRequestID(ctx, requestid.New())
		}
		return next(ctx, request)
	}
}

// LoggingMiddleware binds a request-scoped logger to the context and logs
// each request's outcome. A nil logger disables it.
func LoggingMiddleware(logger logrus.FieldLogger) mediator.Middleware {
	return func(ctx context.Context, request mediator.Request, next mediator.HandlerFunc) (mediator.Response, error) {
		if logger == nil {
			return next(ctx, request)
		}

		entry := logger.WithFields(logrus.Fields{
			"request_id": requestid.FromContext(ctx),
			"request":    fmt.Sprintf("%T", request),
		})
		ctx = WithLogger(ctx, entry)

		start := time.Now()
		response, err := next(ctx, request)
		elapsed := time.Since(start)

		if err != nil {
			entry.WithError(err).WithField("elapsed", elapsed.String()).Warn("request failed")
			return response, err
		}
		entry.WithField("elapsed", elapsed.String()).Debug("request handled")
		return response, err
	}
}
