package analytics

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

// buildSnapshot produces a single metrics snapshot for one date range. It is
// deterministic and side-effect-free: the orchestrator calls it once for the
// primary range and once more when a comparison range exists.
func buildSnapshot(ctx context.Context, q Querier, storeID uuid.UUID, r Range) (Snapshot, error) {
	revenue, orders, err := q.OrderTotals(ctx, storeID, r)
	if err != nil {
		return Snapshot{}, fmt.Errorf("order totals for store %s: %w", storeID, err)
	}

	sessions, avgCR, err := q.SessionTotals(ctx, storeID, r)
	if err != nil {
		return Snapshot{}, fmt.Errorf("session totals for store %s: %w", storeID, err)
	}

	aov := float64(0)
	if orders > 0 {
		aov = revenue / float64(orders)
	}

	return Snapshot{
		Revenue:           revenue,
		Orders:            orders,
		AverageOrderValue: aov,
		Sessions:          sessions,
		ConversionRate:    avgCR,
	}, nil
}
