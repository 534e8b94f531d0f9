package shopify

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// restPageLimit is the Admin REST page size cap.
const restPageLimit = 250

// Order is a Shopify order as fetched from the Admin REST API.
type Order struct {
	ShopifyID   string
	TotalPrice  decimal.Decimal
	ProcessedAt time.Time
	LineItems   []LineItem
}

// LineItem is one product line within a fetched order.
type LineItem struct {
	Title    string
	Quantity int
	Price    decimal.Decimal
}

// Product is a catalog entry as fetched from the Admin REST API.
type Product struct {
	ShopifyID string
	Title     string
	Handle    string
	Status    string
	Image     string
	Tags      []string
}

type restOrdersResponse struct {
	Orders []struct {
		ID          int64      `json:"id"`
		TotalPrice  string     `json:"total_price"`
		ProcessedAt *time.Time `json:"processed_at"`
		CreatedAt   time.Time  `json:"created_at"`
		LineItems   []struct {
			Title    string `json:"title"`
			Quantity int    `json:"quantity"`
			Price    string `json:"price"`
		} `json:"line_items"`
	} `json:"orders"`
}

type restProductsResponse struct {
	Products []struct {
		ID     int64  `json:"id"`
		Title  string `json:"title"`
		Handle string `json:"handle"`
		Status string `json:"status"`
		Tags   string `json:"tags"`
		Image  *struct {
			Src string `json:"src"`
		} `json:"image"`
	} `json:"products"`
}

// GetOrders fetches orders of any status via the Admin REST API. Orders
// missing a processed_at timestamp fall back to created_at.
func (c *Client) GetOrders(ctx context.Context) ([]Order, error) {
	var resp restOrdersResponse
	path := "orders.json?status=any&limit=" + strconv.Itoa(restPageLimit)
	if err := c.getREST(ctx, "getOrders", path, &resp); err != nil {
		return nil, err
	}

	orders := make([]Order, 0, len(resp.Orders))
	for _, o := range resp.Orders {
		processedAt := o.CreatedAt
		if o.ProcessedAt != nil {
			processedAt = *o.ProcessedAt
		}

		order := Order{
			ShopifyID:   strconv.FormatInt(o.ID, 10),
			TotalPrice:  parseMoney(o.TotalPrice),
			ProcessedAt: processedAt,
			LineItems:   make([]LineItem, 0, len(o.LineItems)),
		}
		for _, li := range o.LineItems {
			order.LineItems = append(order.LineItems, LineItem{
				Title:    li.Title,
				Quantity: li.Quantity,
				Price:    parseMoney(li.Price),
			})
		}
		orders = append(orders, order)
	}
	return orders, nil
}

// GetProducts fetches the product catalog via the Admin REST API.
func (c *Client) GetProducts(ctx context.Context) ([]Product, error) {
	var resp restProductsResponse
	path := "products.json?limit=" + strconv.Itoa(restPageLimit)
	if err := c.getREST(ctx, "getProducts", path, &resp); err != nil {
		return nil, err
	}

	products := make([]Product, 0, len(resp.Products))
	for _, p := range resp.Products {
		product := Product{
			ShopifyID: strconv.FormatInt(p.ID, 10),
			Title:     p.Title,
			Handle:    p.Handle,
			Status:    p.Status,
			Tags:      splitTags(p.Tags),
		}
		if p.Image != nil {
			product.Image = p.Image.Src
		}
		products = append(products, product)
	}
	return products, nil
}

// splitTags splits the comma-separated tag string Shopify returns.
func splitTags(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	tags := make([]string, 0, len(parts))
	for _, p := range parts {
		if tag := strings.TrimSpace(p); tag != "" {
			tags = append(tags, tag)
		}
	}
	return tags
}

// parseMoney parses a Shopify money string, zero on failure.
func parseMoney(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}
