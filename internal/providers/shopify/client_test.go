package shopify

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	shopifydomain "github.com/pulse-platform/service-store-analytics/internal/domain/shopify"
)

func TestFormatStoreURL(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"bare store name", "my-store", "https://my-store.myshopify.com"},
		{"full domain", "my-store.myshopify.com", "https://my-store.myshopify.com"},
		{"with https", "https://my-store.myshopify.com", "https://my-store.myshopify.com"},
		{"with http", "http://my-store.myshopify.com", "http://my-store.myshopify.com"},
		{"custom domain", "shop.example.com", "https://shop.example.com"},
		{"surrounding whitespace", "  my-store  ", "https://my-store.myshopify.com"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatStoreURL(tt.input))
		})
	}
}

func TestNewClient_RequiresStoreURL(t *testing.T) {
	_, err := NewClient(&ClientConfig{})
	assert.Error(t, err)
}

func TestClient_RetriesServerErrors(t *testing.T) {
	var calls atomic.Int32

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"orders": []}`))
	}))
	defer srv.Close()

	policy := shopifydomain.DefaultRetryPolicy().WithInitialDelay(time.Millisecond)
	client, err := NewClient(&ClientConfig{
		StoreURL:    srv.URL,
		AccessToken: "test-token",
		Logger:      zap.NewNop(),
		RetryPolicy: policy,
	})
	require.NoError(t, err)

	orders, err := client.GetOrders(context.Background())
	require.NoError(t, err)
	assert.Empty(t, orders)
	assert.Equal(t, int32(3), calls.Load())
}

func TestClient_DoesNotRetryClientErrors(t *testing.T) {
	var calls atomic.Int32

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"errors": "Invalid API key or access token"}`))
	}))
	defer srv.Close()

	policy := shopifydomain.DefaultRetryPolicy().WithInitialDelay(time.Millisecond)
	client, err := NewClient(&ClientConfig{
		StoreURL:    srv.URL,
		AccessToken: "bad-token",
		Logger:      zap.NewNop(),
		RetryPolicy: policy,
	})
	require.NoError(t, err)

	_, err = client.GetOrders(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, shopifydomain.ErrUnauthorized))
	assert.Equal(t, int32(1), calls.Load())
}

func TestGetOrders(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Contains(t, r.URL.Path, "/orders.json")
		assert.Equal(t, "any", r.URL.Query().Get("status"))
		assert.Equal(t, "250", r.URL.Query().Get("limit"))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"orders": [
				{
					"id": 123456,
					"total_price": "99.95",
					"processed_at": "2026-03-05T10:00:00Z",
					"created_at": "2026-03-05T09:58:00Z",
					"line_items": [
						{"title": "Linen Shirt", "quantity": 2, "price": "49.97"}
					]
				},
				{
					"id": 123457,
					"total_price": "10.00",
					"processed_at": null,
					"created_at": "2026-03-06T08:00:00Z",
					"line_items": []
				}
			]
		}`))
	})

	orders, err := client.GetOrders(context.Background())
	require.NoError(t, err)
	require.Len(t, orders, 2)

	assert.Equal(t, "123456", orders[0].ShopifyID)
	assert.Equal(t, "99.95", orders[0].TotalPrice.String())
	assert.Equal(t, time.Date(2026, 3, 5, 10, 0, 0, 0, time.UTC), orders[0].ProcessedAt)
	require.Len(t, orders[0].LineItems, 1)
	assert.Equal(t, "Linen Shirt", orders[0].LineItems[0].Title)
	assert.Equal(t, 2, orders[0].LineItems[0].Quantity)

	// processed_at missing falls back to created_at
	assert.Equal(t, time.Date(2026, 3, 6, 8, 0, 0, 0, time.UTC), orders[1].ProcessedAt)
}

func TestGetProducts(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Contains(t, r.URL.Path, "/products.json")

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"products": [
				{"id": 777, "title": "Canvas Tote", "handle": "canvas-tote", "status": "active", "tags": "summer, bags", "image": {"src": "https://cdn.example.com/tote.jpg"}},
				{"id": 778, "title": "Wool Scarf", "handle": "wool-scarf", "status": "draft", "tags": "", "image": null}
			]
		}`))
	})

	products, err := client.GetProducts(context.Background())
	require.NoError(t, err)
	require.Len(t, products, 2)

	assert.Equal(t, "777", products[0].ShopifyID)
	assert.Equal(t, "https://cdn.example.com/tote.jpg", products[0].Image)
	assert.Equal(t, []string{"summer", "bags"}, products[0].Tags)
	assert.Equal(t, "", products[1].Image)
	assert.Empty(t, products[1].Tags)
}
