// Package vacancy is the indirection that makes the Reservation Dispatcher
// topology-agnostic (spec.md §4.3): the Client interface has identical
// semantics whether Reserve/Available run in-process (Local) or over a
// pooled HTTP transport (Remote). The Dispatcher never observes which
// variant it has — any leak of the transport distinction into the
// Dispatcher is a design bug.
package vacancy

import (
	"context"
	"errors"

	"github.com/flmendes/ticket-system/internal/inventory"
)

// Distinct error kinds the Remote variant must surface (spec.md §4.3);
// the Local variant never produces these, since its failures bubble up
// directly from the Inventory Service.
var (
	ErrTransport         = errors.New("vacancy: transport/connect failure")
	ErrDeadlineExceeded  = errors.New("vacancy: deadline exceeded")
	ErrUpstreamStatus    = errors.New("vacancy: peer returned an error status")
	ErrMalformedResponse = errors.New("vacancy: malformed response body")
)

// Client is the capability the Dispatcher depends on. Both Reserve and
// Available have the exact contract of Inventory Service's operations of
// the same name (spec.md §4.2).
type Client interface {
	Reserve(ctx context.Context, req inventory.Request) (inventory.Outcome, error)
	Available(ctx context.Context) (int, error)
}
