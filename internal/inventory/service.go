// Package inventory implements the domain API over a Stock Cell, grounded
// on the teacher's handlers.InventoryHandler ReserveProduct/ReleaseProduct
// pair, generalized from a Postgres-backed per-product row to a single
// in-memory Stock Cell per spec.md §4.2.
package inventory

import (
	"errors"
	"fmt"

	"github.com/flmendes/ticket-system/internal/stock"
)

// ErrInvalidQuantity classifies a validation failure as the programming /
// client-input error spec.md §4.2 calls for — never an inventory failure.
var ErrInvalidQuantity = stock.ErrInvalidQuantity

// Request is the Reservation Request entity (spec.md §3): quantity > 0.
type Request struct {
	Quantity int
}

// Outcome is the Reservation Outcome entity (spec.md §3).
type Outcome struct {
	Accepted  bool
	Remaining int
	Message   string
}

// Service is the domain API over a Stock Cell.
type Service struct {
	cell *stock.Cell
}

// New wraps cell with the domain operations.
func New(cell *stock.Cell) *Service {
	return &Service{cell: cell}
}

// Reserve validates request.Quantity > 0, delegates to the Stock Cell's
// TryDecrement, and translates the result into a Reservation Outcome with
// the fixed-by-policy messages from spec.md §4.2.
func (s *Service) Reserve(req Request) (Outcome, error) {
	if req.Quantity <= 0 {
		return Outcome{}, fmt.Errorf("inventory: %w", ErrInvalidQuantity)
	}

	accepted, remaining, err := s.cell.TryDecrement(req.Quantity)
	if err != nil {
		if errors.Is(err, stock.ErrInvalidQuantity) {
			return Outcome{}, fmt.Errorf("inventory: %w", ErrInvalidQuantity)
		}
		return Outcome{}, fmt.Errorf("inventory: %w", err)
	}

	if accepted {
		return Outcome{
			Accepted:  true,
			Remaining: remaining,
			Message:   fmt.Sprintf("reserved %d", req.Quantity),
		}, nil
	}

	return Outcome{
		Accepted:  false,
		Remaining: remaining,
		Message:   "insufficient inventory",
	}, nil
}

// Available returns an Availability Snapshot (spec.md §3): a possibly
// stale, bounded-by-TTL read of the Stock Cell's total.
func (s *Service) Available() int {
	return s.cell.Snapshot()
}
