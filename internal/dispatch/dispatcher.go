// Package dispatch implements the Reservation Dispatcher: the
// outward-facing purchase pipeline, grounded on the teacher's
// orders-service handlers.CreateOrder but generalized from a
// database-order flow to the topology-agnostic Vacancy Client contract
// (spec.md §4.4). The Dispatcher holds no state across requests and never
// retries.
package dispatch

import (
	"context"
	"errors"
	"fmt"

	"github.com/flmendes/ticket-system/internal/inventory"
	"github.com/flmendes/ticket-system/internal/resilience"
	"github.com/flmendes/ticket-system/internal/vacancy"
)

// Kind classifies a purchase failure for the HTTP Surface to map to a
// status code (spec.md §7).
type Kind int

const (
	KindNone Kind = iota
	KindInvalidQuantity
	KindUpstreamUnavailable
	KindInternal
)

// Error wraps a purchase failure with its Kind.
type Error struct {
	Kind Kind
	Err  error
}

func (e *Error) Error() string { return e.Err.Error() }
func (e *Error) Unwrap() error { return e.Err }

// Result is the response envelope shape shared by /reserve and /purchase
// (spec.md §6).
type Result struct {
	Success   bool
	Remaining int
	Message   string
}

// Dispatcher orchestrates a purchase over a Vacancy Client. It is
// stateless: every field is immutable after construction.
type Dispatcher struct {
	client vacancy.Client
}

// New builds a Dispatcher over the given Vacancy Client, which may be a
// Local or Remote variant; the Dispatcher never observes which.
func New(client vacancy.Client) *Dispatcher {
	return &Dispatcher{client: client}
}

// Purchase validates quantity, calls the Vacancy Client's Reserve, and
// shapes the outcome into a Result, or classifies the failure per
// spec.md §4.4 and §7.
func (d *Dispatcher) Purchase(ctx context.Context, quantity int) (Result, error) {
	if quantity <= 0 {
		return Result{}, &Error{
			Kind: KindInvalidQuantity,
			Err:  fmt.Errorf("dispatch: %w", inventory.ErrInvalidQuantity),
		}
	}

	outcome, err := d.client.Reserve(ctx, inventory.Request{Quantity: quantity})
	if err != nil {
		return Result{}, classify(err)
	}

	if outcome.Accepted {
		return Result{
			Success:   true,
			Remaining: outcome.Remaining,
			Message:   "purchase successful",
		}, nil
	}

	return Result{
		Success:   false,
		Remaining: outcome.Remaining,
		Message:   "insufficient inventory",
	}, nil
}

// Available returns a raw Availability Snapshot via the Vacancy Client,
// classifying any failure the same way Purchase does.
func (d *Dispatcher) Available(ctx context.Context) (int, error) {
	qty, err := d.client.Available(ctx)
	if err != nil {
		return 0, classify(err)
	}
	return qty, nil
}

// circuitStater is implemented by Vacancy Client variants that guard
// themselves with a circuit breaker (the Remote variant); the Local
// variant has no transport to protect and never implements it.
type circuitStater interface {
	CircuitState() resilience.State
}

// Ready reports whether the Dispatcher's Vacancy Client currently looks
// reachable, without making a network call: for the Remote variant this is
// "circuit breaker is not OPEN" (spec.md §4.5); the Local variant, having
// no transport to protect, is always ready.
func (d *Dispatcher) Ready() bool {
	if cs, ok := d.client.(circuitStater); ok {
		return cs.CircuitState() != resilience.StateOpen
	}
	return true
}

func classify(err error) error {
	switch {
	case errors.Is(err, inventory.ErrInvalidQuantity):
		return &Error{Kind: KindInvalidQuantity, Err: err}
	case errors.Is(err, vacancy.ErrTransport),
		errors.Is(err, vacancy.ErrUpstreamStatus),
		errors.Is(err, vacancy.ErrMalformedResponse):
		return &Error{Kind: KindUpstreamUnavailable, Err: err}
	case errors.Is(err, vacancy.ErrDeadlineExceeded):
		// Treated as a variant of upstream unavailability for
		// propagation purposes (spec.md §7).
		return &Error{Kind: KindUpstreamUnavailable, Err: err}
	default:
		return &Error{Kind: KindInternal, Err: err}
	}
}
