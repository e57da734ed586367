// Package resilience implements a circuit breaker, adapted from the
// teacher's orders-service resilience package for the Remote Vacancy
// Client: it protects a struggling Inventory Engine peer from pile-up, but
// — unlike the teacher's inventory client — it never retries a call. The
// Dispatcher path only ever attempts a reservation once (spec.md §4.4).
package resilience

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"
)

// State represents the circuit breaker state.
type State int

const (
	StateClosed   State = iota // normal operation, requests are allowed
	StateOpen                  // circuit is open, requests are blocked
	StateHalfOpen              // testing if the peer has recovered
)

func (s State) String() string {
	switch s {
	case StateClosed:
		return "CLOSED"
	case StateOpen:
		return "OPEN"
	case StateHalfOpen:
		return "HALF-OPEN"
	default:
		return "UNKNOWN"
	}
}

// ErrCircuitOpen is returned by Execute when the circuit is open and the
// call is rejected without being attempted.
var ErrCircuitOpen = errors.New("resilience: circuit breaker is open")

// CircuitBreaker implements the circuit breaker pattern over a single
// named upstream dependency.
type CircuitBreaker struct {
	name            string
	maxFailures     int
	timeout         time.Duration
	failureCount    int
	lastFailureTime time.Time
	state           State
	mu              sync.RWMutex
}

// New creates a circuit breaker with the given configuration.
func New(name string, maxFailures int, timeout time.Duration) *CircuitBreaker {
	return &CircuitBreaker{
		name:        name,
		maxFailures: maxFailures,
		timeout:     timeout,
		state:       StateClosed,
	}
}

// Execute runs fn exactly once if the circuit allows it, recording the
// outcome. It never retries fn itself.
func (cb *CircuitBreaker) Execute(ctx context.Context, fn func(context.Context) error) error {
	if !cb.allowRequest() {
		slog.Warn("circuit breaker open, rejecting call",
			"name", cb.name,
			"state", cb.State().String(),
			"failure_count", cb.FailureCount(),
		)
		return ErrCircuitOpen
	}

	err := fn(ctx)

	if err != nil {
		cb.recordFailure()
		return err
	}

	cb.recordSuccess()
	return nil
}

func (cb *CircuitBreaker) allowRequest() bool {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	switch cb.state {
	case StateClosed:
		return true
	case StateOpen:
		if time.Since(cb.lastFailureTime) > cb.timeout {
			slog.Info("circuit breaker transitioning to half-open", "name", cb.name)
			cb.state = StateHalfOpen
			return true
		}
		return false
	case StateHalfOpen:
		return true
	default:
		return false
	}
}

func (cb *CircuitBreaker) recordFailure() {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	cb.failureCount++
	cb.lastFailureTime = time.Now()

	if cb.state == StateHalfOpen {
		slog.Warn("failure in half-open state, reopening circuit", "name", cb.name)
		cb.state = StateOpen
		return
	}

	if cb.failureCount >= cb.maxFailures {
		slog.Warn("circuit breaker opened", "name", cb.name, "failure_count", cb.failureCount)
		cb.state = StateOpen
	}
}

func (cb *CircuitBreaker) recordSuccess() {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	if cb.state == StateHalfOpen {
		slog.Info("circuit breaker closing after half-open success", "name", cb.name)
		cb.state = StateClosed
		cb.failureCount = 0
	}
}

// State returns the current circuit breaker state.
func (cb *CircuitBreaker) State() State {
	cb.mu.RLock()
	defer cb.mu.RUnlock()
	return cb.state
}

// FailureCount returns the current failure count.
func (cb *CircuitBreaker) FailureCount() int {
	cb.mu.RLock()
	defer cb.mu.RUnlock()
	return cb.failureCount
}

// Reset returns the circuit breaker to its initial state.
func (cb *CircuitBreaker) Reset() {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	cb.state = StateClosed
	cb.failureCount = 0
	cb.lastFailureTime = time.Time{}
}
