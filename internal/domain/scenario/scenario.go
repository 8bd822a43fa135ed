// Package scenario contains the contracts for canned-response endpoints.
//
// A scenario is a pure description of an HTTP exchange: given a
// framework-independent Request, a Behavior produces a fixed Response.
// Behaviors carry no state and never depend on request content, so repeated
// invocations yield byte-identical responses.
package scenario

import (
	"context"
	"fmt"
)

// Request is a framework-independent description of an inbound request.
// Handlers construct it from their transport's native request type, keeping
// behaviors decoupled from net/http.
type Request struct {
	Method string
	Header map[string][]string
	Body   []byte
}

// Response is a description of the bytes to emit. An empty ContentType
// means no Content-Type header is set at all, which matters for scenarios
// that must not leak one (204, empty-body 200).
type Response struct {
	Status      int
	ContentType string
	Body        []byte
}

// Behavior produces the canned response for one scenario. The only error a
// behavior may return is ctx.Err(), raised when a deliberate stall is cut
// short by the peer disconnecting.
type Behavior func(ctx context.Context, req Request) (Response, error)

// Endpoint binds a route to its behavior.
type Endpoint struct {
	// Path is the unique route key, e.g. "/malformed-response".
	Path string

	// Methods lists the accepted HTTP methods.
	Methods []string

	// Describe is a short operator-facing summary of what the scenario
	// provokes on the client side.
	Describe string

	// Respond produces the canned response.
	Respond Behavior
}

// AcceptsMethod reports whether the endpoint serves the given method.
func (e Endpoint) AcceptsMethod(method string) bool {
	for _, m := range e.Methods {
		if m == method {
			return true
		}
	}
	return false
}

// Registry is an immutable set of endpoints built once at startup and
// read-only for the process lifetime.
type Registry struct {
	endpoints []Endpoint
	byPath    map[string]Endpoint
}

// NewRegistry builds a Registry from the given endpoints. Duplicate paths
// are a programming error and rejected.
func NewRegistry(endpoints ...Endpoint) (*Registry, error) {
	byPath := make(map[string]Endpoint, len(endpoints))
	for _, e := range endpoints {
		if e.Path == "" {
			return nil, fmt.Errorf("%w: empty path", ErrInvalidEndpoint)
		}
		if e.Respond == nil {
			return nil, fmt.Errorf("%w: %s has no behavior", ErrInvalidEndpoint, e.Path)
		}
		if _, dup := byPath[e.Path]; dup {
			return nil, fmt.Errorf("%w: %s", ErrDuplicatePath, e.Path)
		}
		byPath[e.Path] = e
	}
	reg := &Registry{
		endpoints: make([]Endpoint, len(endpoints)),
		byPath:    byPath,
	}
	copy(reg.endpoints, endpoints)
	return reg, nil
}

// Lookup returns the endpoint registered at path.
func (r *Registry) Lookup(path string) (Endpoint, bool) {
	e, ok := r.byPath[path]
	return e, ok
}

// All returns the endpoints in registration order. The returned slice is a
// copy; callers cannot mutate the registry through it.
func (r *Registry) All() []Endpoint {
	out := make([]Endpoint, len(r.endpoints))
	copy(out, r.endpoints)
	return out
}

// Len returns the number of registered endpoints.
func (r *Registry) Len() int {
	return len(r.endpoints)
}
