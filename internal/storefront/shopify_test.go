package storefront

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewShopifyClient_RequiresCredentials(t *testing.T) {
	_, err := NewShopifyClient(ShopifyOpts{ShopDomain: "shop.myshopify.com"})
	assert.ErrorIs(t, err, ErrNotConfigured)
}

func TestShopifyClient_CreateProduct(t *testing.T) {
	var got productEnvelope
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/admin/api/2024-10/products.json", r.URL.Path)
		assert.Equal(t, "shpat_test", r.Header.Get("X-Shopify-Access-Token"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"product": {"id": 632910392, "title": "x"}}`))
	}))
	defer srv.Close()

	c, err := NewShopifyClient(ShopifyOpts{ShopDomain: "shop.myshopify.com", AccessToken: "shpat_test", BaseURL: srv.URL})
	require.NoError(t, err)

	pub, err := c.CreateProduct(context.Background(), Listing{
		Title:    "Mountain Sunset - Single Canvas - Minimalist #1",
		SKU:      "POD-MOUNTAIN-SUNSET-MINIMALIST-SINGLE-18x24-ABCDEFGH",
		Price:    49.99,
		Tags:     []string{"mountain", "canvas"},
		ImageURL: "https://cdn.example.com/a.png",
	})
	require.NoError(t, err)
	assert.Equal(t, "632910392", pub.ProductID)
	assert.Equal(t, "https://shop.myshopify.com/admin/products/632910392", pub.AdminURL)

	assert.Equal(t, "draft", got.Product.Status)
	assert.Equal(t, "mountain, canvas", got.Product.Tags)
	require.Len(t, got.Product.Variants, 1)
	assert.Equal(t, "49.99", got.Product.Variants[0].Price)
	require.Len(t, got.Product.Images, 1)
	assert.Equal(t, "https://cdn.example.com/a.png", got.Product.Images[0].Src)
}

func TestShopifyClient_CreateProduct_Error(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`{"errors": {"title": ["can't be blank"]}}`))
	}))
	defer srv.Close()

	c, err := NewShopifyClient(ShopifyOpts{ShopDomain: "s", AccessToken: "t", BaseURL: srv.URL})
	require.NoError(t, err)

	_, err = c.CreateProduct(context.Background(), Listing{SKU: "X"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status: 422")
}
