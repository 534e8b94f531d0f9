package shopify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"go.uber.org/zap"

	shopifydomain "github.com/pulse-platform/service-store-analytics/internal/domain/shopify"
)

// DailyAnalyticsRow is one normalized per-day row from the sales+sessions
// ShopifyQL query.
type DailyAnalyticsRow struct {
	Date              string
	TotalSales        float64
	Orders            int
	AverageOrderValue float64
	ConversionRate    float64
	Sessions          int
}

// ProductAnalyticsRow is one normalized per-day per-product row.
type ProductAnalyticsRow struct {
	Date         string
	ProductTitle string
	TotalSales   float64
	NetSales     float64
	NetItemsSold int
}

// Column describes one column of a ShopifyQL result.
type Column struct {
	Name     string `json:"name"`
	DataType string `json:"dataType"`
}

// TableData is the tabular payload of a ShopifyQL result. Rows are either
// positional arrays or keyed objects depending on API version.
type TableData struct {
	Columns []Column          `json:"columns"`
	Rows    []json.RawMessage `json:"rows"`
}

// QueryResult is the shopifyqlQuery payload of a GraphQL response.
type QueryResult struct {
	TableData   *TableData        `json:"tableData"`
	ParseErrors []json.RawMessage `json:"parseErrors"`
}

// Err returns a descriptive error when the result carries parse errors. The
// API reports them either as plain strings or structured objects.
func (r *QueryResult) Err(operation string) error {
	if len(r.ParseErrors) == 0 {
		return nil
	}
	return fmt.Errorf("shopifyql %s: %s", operation, shopifydomain.ParseErrorMessage(r.ParseErrors[0]))
}

// GetDailyAnalytics fetches per-day sales and session metrics via ShopifyQL.
// Stores without ShopifyQL support yield an empty slice, not an error.
func (c *Client) GetDailyAnalytics(ctx context.Context, since, until string) ([]DailyAnalyticsRow, error) {
	ql := fmt.Sprintf(
		"FROM sales, sessions SHOW day, total_sales, orders, average_order_value, conversion_rate, sessions GROUP BY day SINCE %s UNTIL %s ORDER BY day ASC",
		since, until,
	)

	result, err := c.runShopifyQL(ctx, "getDailyAnalytics", ql)
	if err != nil {
		if errors.Is(err, shopifydomain.ErrFieldUndefined) {
			return []DailyAnalyticsRow{}, nil
		}
		return nil, err
	}

	rows, err := ParseDailyRows(result)
	if err != nil {
		return nil, err
	}

	c.logger.Debug("fetched daily analytics rows", zap.Int("rows", len(rows)))
	return rows, nil
}

// GetProductAnalytics fetches per-day per-product sales via ShopifyQL, with
// the same soft degradation as GetDailyAnalytics.
func (c *Client) GetProductAnalytics(ctx context.Context, since, until string) ([]ProductAnalyticsRow, error) {
	ql := fmt.Sprintf(
		"FROM sales SHOW day, product_title, total_sales, net_sales, net_items_sold GROUP BY day, product_title SINCE %s UNTIL %s ORDER BY day ASC",
		since, until,
	)

	result, err := c.runShopifyQL(ctx, "getProductAnalytics", ql)
	if err != nil {
		if errors.Is(err, shopifydomain.ErrFieldUndefined) {
			return []ProductAnalyticsRow{}, nil
		}
		return nil, err
	}

	rows, err := ParseProductRows(result)
	if err != nil {
		return nil, err
	}

	c.logger.Debug("fetched product analytics rows", zap.Int("rows", len(rows)))
	return rows, nil
}

// runShopifyQL wraps a ShopifyQL query in the GraphQL document and unwraps
// the shopifyqlQuery payload.
func (c *Client) runShopifyQL(ctx context.Context, operation, ql string) (*QueryResult, error) {
	query := fmt.Sprintf(`
		query %s {
			shopifyqlQuery(query: """%s""") {
				tableData {
					columns {
						name
						dataType
					}
					rows
				}
				parseErrors
			}
		}
	`, operation, ql)

	data, err := c.ExecuteGraphQL(ctx, operation, query)
	if err != nil {
		return nil, err
	}

	var envelope struct {
		ShopifyQLQuery *QueryResult `json:"shopifyqlQuery"`
	}
	if err := json.Unmarshal(data, &envelope); err != nil {
		return nil, fmt.Errorf("decode shopifyql payload for %s: %w", operation, err)
	}
	if envelope.ShopifyQLQuery == nil {
		return &QueryResult{}, nil
	}
	return envelope.ShopifyQLQuery, nil
}

// ParseDailyRows normalizes a daily-analytics result. Column positions match
// the declared query, grouping key first: day, total_sales, orders,
// average_order_value, conversion_rate, sessions.
func ParseDailyRows(result *QueryResult) ([]DailyAnalyticsRow, error) {
	if err := result.Err("getDailyAnalytics"); err != nil {
		return nil, err
	}
	if result.TableData == nil || len(result.TableData.Rows) == 0 {
		return []DailyAnalyticsRow{}, nil
	}

	rows := make([]DailyAnalyticsRow, 0, len(result.TableData.Rows))
	for _, raw := range result.TableData.Rows {
		cells, err := newRowCells(raw)
		if err != nil {
			return nil, fmt.Errorf("malformed daily analytics row: %w", err)
		}
		rows = append(rows, DailyAnalyticsRow{
			Date:              cells.str(0, "day"),
			TotalSales:        cells.float(1, "total_sales"),
			Orders:            cells.int(2, "orders"),
			AverageOrderValue: cells.float(3, "average_order_value"),
			ConversionRate:    cells.float(4, "conversion_rate"),
			Sessions:          cells.int(5, "sessions"),
		})
	}
	return rows, nil
}

// ParseProductRows normalizes a product-analytics result. Column positions:
// day, product_title, total_sales, net_sales, net_items_sold.
func ParseProductRows(result *QueryResult) ([]ProductAnalyticsRow, error) {
	if err := result.Err("getProductAnalytics"); err != nil {
		return nil, err
	}
	if result.TableData == nil || len(result.TableData.Rows) == 0 {
		return []ProductAnalyticsRow{}, nil
	}

	rows := make([]ProductAnalyticsRow, 0, len(result.TableData.Rows))
	for _, raw := range result.TableData.Rows {
		cells, err := newRowCells(raw)
		if err != nil {
			return nil, fmt.Errorf("malformed product analytics row: %w", err)
		}
		rows = append(rows, ProductAnalyticsRow{
			Date:         cells.str(0, "day"),
			ProductTitle: cells.str(1, "product_title"),
			TotalSales:   cells.float(2, "total_sales"),
			NetSales:     cells.float(3, "net_sales"),
			NetItemsSold: cells.int(4, "net_items_sold"),
		})
	}
	return rows, nil
}

// rowCells resolves the two row shapes the API emits (positional array or
// keyed object) into one accessor, so only this boundary knows about both.
type rowCells struct {
	cells  []json.RawMessage
	fields map[string]json.RawMessage
}

func newRowCells(raw json.RawMessage) (*rowCells, error) {
	var cells []json.RawMessage
	if err := json.Unmarshal(raw, &cells); err == nil {
		return &rowCells{cells: cells}, nil
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, err
	}
	return &rowCells{fields: fields}, nil
}

func (r *rowCells) cell(idx int, key string) json.RawMessage {
	if r.cells != nil {
		if idx < len(r.cells) {
			return r.cells[idx]
		}
		return nil
	}
	return r.fields[key]
}

func (r *rowCells) str(idx int, key string) string {
	raw := r.cell(idx, key)
	if raw == nil {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return string(raw)
}

// float parses a decimal cell, defaulting to 0 on missing or unparseable
// values. Cells arrive as JSON numbers or numeric strings.
func (r *rowCells) float(idx int, key string) float64 {
	raw := r.cell(idx, key)
	if raw == nil {
		return 0
	}

	var f float64
	if err := json.Unmarshal(raw, &f); err == nil {
		return f
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return f
		}
	}
	return 0
}

// int parses a count cell, defaulting to 0. Some API versions return counts
// as decimals; those truncate.
func (r *rowCells) int(idx int, key string) int {
	return int(r.float(idx, key))
}
