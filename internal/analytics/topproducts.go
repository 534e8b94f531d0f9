package analytics

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

// topProductsLimit caps the ranked product list.
const topProductsLimit = 5

// rankTopProducts returns up to topProductsLimit products by sales sum within
// the range. Ties keep whatever order the aggregation returned; the database
// does not guarantee a stable order between equal sums.
func rankTopProducts(ctx context.Context, q Querier, storeID uuid.UUID, r Range) ([]ProductRankEntry, error) {
	rows, err := q.TopProducts(ctx, storeID, r, topProductsLimit)
	if err != nil {
		return nil, fmt.Errorf("top products for store %s: %w", storeID, err)
	}

	entries := make([]ProductRankEntry, 0, len(rows))
	for _, row := range rows {
		entries = append(entries, ProductRankEntry{
			ID:         row.Title,
			Title:      row.Title,
			TotalSales: row.TotalSales,
		})
	}
	return entries, nil
}
