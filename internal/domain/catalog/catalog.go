// Package catalog builds the registry of canned failure scenarios.
//
// Each scenario exists to provoke a specific error path in a client under
// test: connection timeouts, JSON parse failures, empty-output handling,
// and content-type mismatches. The payloads below are intentional and must
// stay byte-for-byte stable; clients key their assertions on them.
package catalog

import (
	"context"
	"net/http"
	"time"

	"github.com/okian/feint/internal/domain/scenario"
)

// defaultStall exceeds common client timeouts (30s, 60s, 120s) so the
// no-response scenario reliably looks like a dead upstream.
const defaultStall = 600 * time.Second

// Content types used by the scenarios.
const (
	contentTypeJSON = "application/json"
	contentTypeHTML = "text/html"
)

// Canned payloads. The malformed body deliberately ends mid-array so any
// standard JSON parser rejects it.
const (
	stalledBody    = `{"message": "This response should not be seen by the client due to timeout."}`
	malformedBody  = `{"status": "error", "message": "This is malformed JSON, missing a closing brace or invalid syntax", "data": [1, 2,`
	emptyJSONBody  = `{}`
	notJSONBody    = `This is not JSON, but the header says it is!`
	hollowBody     = `{"output": {"text": "", "tokens": 0, "model_response": null}, "details": {}, "metadata": []}`
	htmlBody       = `<html><body><h1>Hello from Test API!</h1><p>This is an HTML response.</p></body></html>`
	simpleJSONBody = `{"status": "ok", "message": "This is a simple response."}`
	llmShapedBody  = `{"choices":[{"message":{"role":"string","content":"string<>"},"finish_reason":"string","index":"string"}]}`
)

var getAndPost = []string{http.MethodGet, http.MethodPost}

// New builds the immutable registry of all ten scenarios.
func New(opts ...Option) (*scenario.Registry, error) {
	c := &catalog{stall: defaultStall}
	for _, opt := range opts {
		opt(c)
	}
	return scenario.NewRegistry(
		scenario.Endpoint{
			Path:     "/no-response",
			Methods:  getAndPost,
			Describe: "holds the request open past any client timeout",
			Respond:  stalled(c.stall),
		},
		scenario.Endpoint{
			Path:     "/malformed-response",
			Methods:  getAndPost,
			Describe: "returns truncated JSON that fails parsing",
			Respond:  constant(http.StatusOK, contentTypeJSON, malformedBody),
		},
		scenario.Endpoint{
			Path:     "/empty-json-response",
			Methods:  getAndPost,
			Describe: "returns a well-formed but empty JSON object",
			Respond:  constant(http.StatusOK, contentTypeJSON, emptyJSONBody),
		},
		scenario.Endpoint{
			Path:     "/non-json-with-json-header",
			Methods:  getAndPost,
			Describe: "returns plain text mislabeled as JSON",
			Respond:  constant(http.StatusOK, contentTypeJSON, notJSONBody),
		},
		scenario.Endpoint{
			Path:     "/empty-structured-json",
			Methods:  getAndPost,
			Describe: "returns valid JSON whose payload fields are empty or null",
			Respond:  constant(http.StatusOK, contentTypeJSON, hollowBody),
		},
		scenario.Endpoint{
			Path:     "/no-content-204",
			Methods:  getAndPost,
			Describe: "returns 204 with no body and no content type",
			Respond:  constant(http.StatusNoContent, "", ""),
		},
		scenario.Endpoint{
			Path:     "/html-like-response",
			Methods:  getAndPost,
			Describe: "returns HTML where the client expects JSON",
			Respond:  constant(http.StatusOK, contentTypeHTML, htmlBody),
		},
		scenario.Endpoint{
			Path:     "/empty-body-200",
			Methods:  getAndPost,
			Describe: "returns 200 with a zero-length body",
			Respond:  constant(http.StatusOK, "", ""),
		},
		scenario.Endpoint{
			Path:     "/simple-unexpected-json",
			Methods:  getAndPost,
			Describe: "returns flat JSON lacking the nesting clients expect",
			Respond:  constant(http.StatusOK, contentTypeJSON, simpleJSONBody),
		},
		scenario.Endpoint{
			Path:     "/specific-llm-like-response",
			Methods:  getAndPost,
			Describe: "returns a chat-completion shape with placeholder values",
			Respond:  constant(http.StatusOK, contentTypeJSON, llmShapedBody),
		},
	)
}

type catalog struct {
	stall time.Duration
}

// constant returns a behavior emitting the same response on every call.
func constant(status int, contentType, body string) scenario.Behavior {
	resp := scenario.Response{
		Status:      status,
		ContentType: contentType,
		Body:        []byte(body),
	}
	return func(_ context.Context, _ scenario.Request) (scenario.Response, error) {
		return resp, nil
	}
}

// stalled returns a behavior that suspends for the given duration before
// emitting its body. The suspend is cancellable: if the peer disconnects,
// the request context is done and the behavior returns ctx.Err() so the
// caller can release the connection without writing anything.
func stalled(d time.Duration) scenario.Behavior {
	return func(ctx context.Context, _ scenario.Request) (scenario.Response, error) {
		timer := time.NewTimer(d)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return scenario.Response{}, ctx.Err()
		case <-timer.C:
			return scenario.Response{
				Status:      http.StatusOK,
				ContentType: contentTypeJSON,
				Body:        []byte(stalledBody),
			}, nil
		}
	}
}
