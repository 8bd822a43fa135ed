package api

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/okian/feint/internal/domain/scenario"
	"github.com/okian/feint/pkg/logger"
	"github.com/okian/feint/pkg/metrics"
)

// stallPath is the one scenario whose behavior suspends; its lifecycle gets
// dedicated metrics.
const stallPath = "/no-response"

// scenarioHandler adapts one registry endpoint to an http.HandlerFunc.
//
// The handler translates the inbound *http.Request into the domain's
// framework-independent scenario.Request, logs POST bodies for diagnostics,
// invokes the behavior, and writes its canned response. Behaviors that stall
// run against the request context, so a client disconnect unblocks them.
func (s *Server) scenarioHandler(e scenario.Endpoint) http.HandlerFunc {
	const op = "api.scenario"
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		fields := []logger.Field{
			logger.String("scenario", e.Path),
			logger.String("method", r.Method),
			logger.String("request_id", RequestIDFromContext(ctx)),
		}

		if !e.AcceptsMethod(r.Method) {
			writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", NewKind(op, ErrMethodNotAllowed))
			return
		}

		s.log.Info(ctx, "received request", fields...)

		body := s.captureBody(ctx, r, fields)

		req := scenario.Request{
			Method: r.Method,
			Header: r.Header,
			Body:   body,
		}

		stalled := e.Path == stallPath
		if stalled {
			metrics.RecordStallStarted()
		}

		resp, err := e.Respond(ctx, req)
		if err != nil {
			// The only error behaviors return is ctx.Err(): the peer went
			// away mid-stall. Nothing to write; the connection is gone.
			if stalled && errors.Is(err, context.Canceled) {
				metrics.RecordStallCancelled()
			}
			s.log.Debug(ctx, "request abandoned before response",
				append(fields, logger.Error(err))...)
			return
		}
		if stalled {
			metrics.RecordStallCompleted()
		}

		writeResponse(w, resp)
	}
}

// captureBody reads up to the configured limit of the request body so POST
// payloads can be logged. Failures here are diagnostic-only and must never
// change the canned response, so everything is swallowed after logging.
func (s *Server) captureBody(ctx context.Context, r *http.Request, fields []logger.Field) []byte {
	if r.Body == nil {
		return nil
	}
	defer func() {
		if rec := recover(); rec != nil {
			s.log.Warn(ctx, "panic while reading request body",
				append(fields, logger.Any("panic", rec))...)
		}
	}()

	body, err := io.ReadAll(io.LimitReader(r.Body, int64(s.deps.BodyLogLimit())))
	if err != nil {
		s.log.Warn(ctx, "failed to read request body",
			append(fields, logger.Error(err))...)
		return nil
	}

	if r.Method == http.MethodPost {
		s.logPostBody(ctx, r.Header.Get("Content-Type"), body, fields)
	}
	return body
}

// writeResponse emits a scenario.Response. ContentType is set only when the
// scenario declares one; 204 and empty-body scenarios must not leak a
// Content-Type header or any body bytes.
func writeResponse(w http.ResponseWriter, resp scenario.Response) {
	if resp.ContentType != "" {
		w.Header().Set("Content-Type", resp.ContentType)
	}
	w.WriteHeader(resp.Status)
	if len(resp.Body) > 0 {
		_, _ = w.Write(resp.Body)
	}
}
