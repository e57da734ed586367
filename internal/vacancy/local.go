package vacancy

import (
	"context"

	"github.com/flmendes/ticket-system/internal/inventory"
)

// Local holds a direct reference to the Inventory Service instance in the
// same process. Operations are plain function calls; no suspension
// between validation and decision beyond what the Inventory Service
// itself imposes (spec.md §4.3).
type Local struct {
	svc *inventory.Service
}

// NewLocal builds a Local Vacancy Client over svc.
func NewLocal(svc *inventory.Service) *Local {
	return &Local{svc: svc}
}

// Reserve delegates directly to the Inventory Service; failures bubble up
// unchanged.
func (l *Local) Reserve(_ context.Context, req inventory.Request) (inventory.Outcome, error) {
	return l.svc.Reserve(req)
}

// Available delegates directly to the Inventory Service.
func (l *Local) Available(_ context.Context) (int, error) {
	return l.svc.Available(), nil
}
