package ports

import (
	"context"

	"github.com/zaremifa-cell/NEWMQL5PROJECT/internal/domain"
)

// RunRepository stores simulation runs together with the events and trades they produced.
type RunRepository interface {
	// SaveRun persists the run, its events and its trades in one transaction and returns the run ID.
	SaveRun(ctx context.Context, run *domain.Run, events []domain.CrossingEvent, trades []domain.Trade) (string, error)
	// FindRun retrieves a run by ID. Returns nil, nil if not found.
	FindRun(ctx context.Context, id string) (*domain.Run, error)
	// FindTradesByRun retrieves the trades of a run in event order.
	FindTradesByRun(ctx context.Context, runID string) ([]domain.Trade, error)
	// FindEventsByRun retrieves the crossing events of a run in event order.
	FindEventsByRun(ctx context.Context, runID string) ([]domain.CrossingEvent, error)
}
