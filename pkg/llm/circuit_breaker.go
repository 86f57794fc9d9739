package llm

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// CircuitState represents the current state of the circuit breaker.
type CircuitState int

const (
	CircuitClosed   CircuitState = 0
	CircuitOpen     CircuitState = 1
	CircuitHalfOpen CircuitState = 2
)

func (s CircuitState) String() string {
	switch s {
	case CircuitClosed:
		return "closed"
	case CircuitOpen:
		return "open"
	case CircuitHalfOpen:
		return "half-open"
	default:
		return fmt.Sprintf("unknown(%d)", int(s))
	}
}

// CircuitBreakerConfig holds configuration for the circuit breaker.
type CircuitBreakerConfig struct {
	// ConsecutiveFailures before the circuit opens. Must be >= 1.
	ConsecutiveFailures int
	// OpenDuration before a single probe request is let through.
	OpenDuration time.Duration
	// OnStateChange, if set, is called with the new state on every
	// transition, outside the breaker's lock.
	OnStateChange func(CircuitState)
}

// CircuitBreaker wraps a Backend. While open it fails fast with
// ErrUnavailable so callers drop straight to their deterministic path
// instead of waiting on a backend that keeps failing.
//
//	closed    -> open       (after ConsecutiveFailures)
//	open      -> half-open  (after OpenDuration)
//	half-open -> closed     (probe succeeded)
//	half-open -> open       (probe failed)
type CircuitBreaker struct {
	primary Backend
	logger  *slog.Logger
	cfg     CircuitBreakerConfig

	mu                  sync.Mutex
	state               CircuitState
	consecutiveFailures int
	openedAt            time.Time
	probing             bool

	// nowFunc allows testing to inject a clock.
	nowFunc func() time.Time
}

var _ Backend = (*CircuitBreaker)(nil)

// NewCircuitBreaker wraps primary.
func NewCircuitBreaker(primary Backend, cfg CircuitBreakerConfig, logger *slog.Logger) (*CircuitBreaker, error) {
	if primary == nil {
		return nil, fmt.Errorf("circuit_breaker: primary backend must not be nil")
	}
	if cfg.ConsecutiveFailures < 1 {
		return nil, fmt.Errorf("circuit_breaker: consecutiveFailures must be >= 1, got %d", cfg.ConsecutiveFailures)
	}
	if cfg.OpenDuration <= 0 {
		return nil, fmt.Errorf("circuit_breaker: openDuration must be > 0, got %v", cfg.OpenDuration)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &CircuitBreaker{
		primary: primary,
		logger:  logger,
		cfg:     cfg,
		state:   CircuitClosed,
		nowFunc: time.Now,
	}, nil
}

// Name returns the primary backend's name.
func (cb *CircuitBreaker) Name() string {
	return cb.primary.Name()
}

// Invoke forwards to the primary backend unless the circuit is open.
func (cb *CircuitBreaker) Invoke(ctx context.Context, req Request) (*Response, error) {
	cb.mu.Lock()
	state, changed := cb.currentStateLocked()
	if state == CircuitHalfOpen {
		if cb.probing {
			state = CircuitOpen
		} else {
			cb.probing = true
		}
	}
	cb.mu.Unlock()
	if changed {
		cb.notify(CircuitHalfOpen)
	}

	if state == CircuitOpen {
		cb.logger.Debug("circuit breaker open, skipping language model", "backend", cb.primary.Name())
		return nil, &Error{Backend: cb.primary.Name(), Kind: ErrUnavailable, Err: fmt.Errorf("circuit open")}
	}

	resp, err := cb.primary.Invoke(ctx, req)
	// A cancelled caller says nothing about the backend's health.
	if err != nil && ctx.Err() == context.Canceled {
		cb.mu.Lock()
		cb.probing = false
		cb.mu.Unlock()
		return nil, err
	}
	if err != nil {
		cb.recordFailure()
		return nil, err
	}
	cb.recordSuccess()
	return resp, nil
}

// State returns the current circuit breaker state.
func (cb *CircuitBreaker) State() CircuitState {
	cb.mu.Lock()
	state, changed := cb.currentStateLocked()
	cb.mu.Unlock()
	if changed {
		cb.notify(CircuitHalfOpen)
	}
	return state
}

// currentStateLocked handles the time-based open to half-open transition.
// Caller must hold cb.mu.
func (cb *CircuitBreaker) currentStateLocked() (CircuitState, bool) {
	if cb.state == CircuitOpen && cb.nowFunc().Sub(cb.openedAt) >= cb.cfg.OpenDuration {
		cb.state = CircuitHalfOpen
		cb.logger.Info("circuit breaker transitioning to half-open",
			"backend", cb.primary.Name(),
			"open_duration", cb.cfg.OpenDuration,
		)
		return cb.state, true
	}
	return cb.state, false
}

func (cb *CircuitBreaker) recordSuccess() {
	cb.mu.Lock()
	wasOpen := cb.state != CircuitClosed
	cb.consecutiveFailures = 0
	cb.state = CircuitClosed
	cb.probing = false
	cb.mu.Unlock()

	if wasOpen {
		cb.logger.Info("circuit breaker closed after successful probe", "backend", cb.primary.Name())
		cb.notify(CircuitClosed)
	}
}

func (cb *CircuitBreaker) recordFailure() {
	cb.mu.Lock()
	cb.consecutiveFailures++
	opened := false
	switch {
	case cb.state == CircuitHalfOpen:
		cb.state = CircuitOpen
		cb.openedAt = cb.nowFunc()
		cb.probing = false
		opened = true
		cb.logger.Warn("circuit breaker reopened after failed probe",
			"backend", cb.primary.Name(),
			"consecutive_failures", cb.consecutiveFailures,
		)
	case cb.state == CircuitClosed && cb.consecutiveFailures >= cb.cfg.ConsecutiveFailures:
		cb.state = CircuitOpen
		cb.openedAt = cb.nowFunc()
		opened = true
		cb.logger.Warn("circuit breaker opened",
			"backend", cb.primary.Name(),
			"consecutive_failures", cb.consecutiveFailures,
			"open_duration", cb.cfg.OpenDuration,
		)
	}
	cb.mu.Unlock()

	if opened {
		cb.notify(CircuitOpen)
	}
}

func (cb *CircuitBreaker) notify(state CircuitState) {
	if cb.cfg.OnStateChange != nil {
		cb.cfg.OnStateChange(state)
	}
}
