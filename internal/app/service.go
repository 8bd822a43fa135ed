// Package service wires the scenario catalog into a process-scoped service
// that the HTTP adapter depends on.
package service

import (
	"context"
	"sync"
	"time"

	"github.com/okian/feint/internal/domain/catalog"
	"github.com/okian/feint/internal/domain/scenario"
	"github.com/okian/feint/pkg/logger"
	"github.com/okian/feint/pkg/metrics"
)

// Defaults mirror the original deployment: ten-minute stall, 64 KiB of a
// POST body logged at most.
const (
	defaultStallDuration = 600 * time.Second
	defaultBodyLogLimit  = 64 * 1024
)

// Service owns the immutable route registry and its configuration.
type Service struct {
	mu sync.Mutex

	registry *scenario.Registry

	stallDuration time.Duration
	bodyLogLimit  int

	started bool

	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithStallDuration sets how long the no-response scenario suspends.
func WithStallDuration(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.stallDuration = d
		}
	}
}

// WithBodyLogLimit caps how many bytes of a POST body get logged.
func WithBodyLogLimit(limit int) Option {
	return func(s *Service) {
		if limit >= 0 {
			s.bodyLogLimit = limit
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// New constructs a Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		stallDuration: defaultStallDuration,
		bodyLogLimit:  defaultBodyLogLimit,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start builds the scenario registry. Idempotent.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	if s.logger == nil {
		s.logger = logger.Get()
	}

	reg, err := catalog.New(catalog.WithStallDuration(s.stallDuration))
	if err != nil {
		return err
	}
	s.registry = reg
	s.started = true

	metrics.UpdateScenarioCount(reg.Len())
	metrics.UpdateStallSeconds(s.stallDuration.Seconds())

	s.logger.Info(ctx, "mock API service started",
		logger.Int("scenarios", reg.Len()),
		logger.Duration("stall", s.stallDuration),
		logger.Int("bodyLogLimit", s.bodyLogLimit),
	)
	return nil
}

// Stop marks the service stopped. There are no resources to release; the
// registry is read-only and simply discarded with the process.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}
	s.started = false
	s.logger.Info(context.Background(), "mock API service stopped")
}

// Registry returns the immutable route registry. Nil before Start.
func (s *Service) Registry() *scenario.Registry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.registry
}

// BodyLogLimit returns the configured body logging cap.
func (s *Service) BodyLogLimit() int {
	return s.bodyLogLimit
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.Lock()
	defer s.mu.Unlock()

	stats := map[string]interface{}{
		"started":        s.started,
		"stall_seconds":  s.stallDuration.Seconds(),
		"body_log_limit": s.bodyLogLimit,
	}
	if s.registry != nil {
		stats["scenario_count"] = s.registry.Len()

		paths := make([]string, 0, s.registry.Len())
		for _, e := range s.registry.All() {
			paths = append(paths, e.Path)
		}
		stats["scenarios"] = paths
	}
	return stats
}
