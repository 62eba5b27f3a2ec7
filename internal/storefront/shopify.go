// Package storefront publishes approved products to an online store.
package storefront

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

const (
	DefaultAPIVersion = "2024-10"
	defaultVendor     = "POD Pipeline"
	defaultType       = "Canvas Wall Art"
)

// ErrNotConfigured is returned when publishing without shop credentials.
var ErrNotConfigured = errors.New("storefront not configured")

// Listing is the storefront view of a product.
type Listing struct {
	Title       string
	Description string
	SKU         string
	Price       float64
	Tags        []string
	ImageURL    string
}

// Publication identifies a created storefront product.
type Publication struct {
	ProductID string
	AdminURL  string
}

// Publisher creates storefront products.
type Publisher interface {
	CreateProduct(ctx context.Context, l Listing) (*Publication, error)
}

// ShopifyOpts configures a ShopifyClient.
type ShopifyOpts struct {
	ShopDomain  string
	AccessToken string
	APIVersion  string
	BaseURL     string // Overrides https://<ShopDomain>, used by tests
	Timeout     time.Duration
	Logger      *slog.Logger
}

// ShopifyClient talks to the Shopify Admin REST API.
type ShopifyClient struct {
	httpClient *resty.Client
	shopDomain string
	apiVersion string
	logger     *slog.Logger
}

// NewShopifyClient creates a client. Returns ErrNotConfigured without a domain and token.
func NewShopifyClient(opts ShopifyOpts) (*ShopifyClient, error) {
	if opts.ShopDomain == "" || opts.AccessToken == "" {
		return nil, ErrNotConfigured
	}
	c := ShopifyClient{shopDomain: opts.ShopDomain, apiVersion: opts.APIVersion, logger: opts.Logger}
	if c.apiVersion == "" {
		c.apiVersion = DefaultAPIVersion
	}
	if c.logger == nil {
		c.logger = slog.Default()
	}
	c.logger = c.logger.With("component", "shopify")

	baseURL := opts.BaseURL
	if baseURL == "" {
		baseURL = "https://" + strings.TrimSuffix(opts.ShopDomain, "/")
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	c.httpClient = resty.New().
		SetBaseURL(baseURL).
		SetTimeout(timeout).
		SetHeader("X-Shopify-Access-Token", opts.AccessToken).
		SetHeader("Content-Type", "application/json")
	return &c, nil
}

type shopifyImage struct {
	Src string `json:"src"`
}

type shopifyVariant struct {
	Price               string  `json:"price"`
	SKU                 string  `json:"sku"`
	InventoryManagement *string `json:"inventory_management"`
}

type shopifyProduct struct {
	ID          int64            `json:"id,omitempty"`
	Title       string           `json:"title"`
	BodyHTML    string           `json:"body_html"`
	Vendor      string           `json:"vendor"`
	ProductType string           `json:"product_type"`
	Status      string           `json:"status"`
	Tags        string           `json:"tags,omitempty"`
	Variants    []shopifyVariant `json:"variants"`
	Images      []shopifyImage   `json:"images,omitempty"`
}

type productEnvelope struct {
	Product shopifyProduct `json:"product"`
}

// CreateProduct creates a draft product with a single variant.
func (c *ShopifyClient) CreateProduct(ctx context.Context, l Listing) (*Publication, error) {
	title := l.Title
	if title == "" {
		title = "Design " + l.SKU
	}
	p := shopifyProduct{
		Title:       title,
		BodyHTML:    l.Description,
		Vendor:      defaultVendor,
		ProductType: defaultType,
		Status:      "draft",
		Tags:        strings.Join(l.Tags, ", "),
		Variants: []shopifyVariant{{
			Price: strconv.FormatFloat(l.Price, 'f', 2, 64),
			SKU:   l.SKU,
		}},
	}
	if l.ImageURL != "" {
		p.Images = []shopifyImage{{Src: l.ImageURL}}
	}

	result := &productEnvelope{}
	_, err := handleError(c.httpClient.NewRequest().
		SetContext(ctx).
		SetBody(productEnvelope{Product: p}).
		SetResult(result).
		Post(fmt.Sprintf("/admin/api/%s/products.json", c.apiVersion)))
	if err != nil {
		return nil, fmt.Errorf("create shopify product: %w", err)
	}
	if result.Product.ID == 0 {
		return nil, errors.New("create shopify product: response missing product id")
	}

	id := strconv.FormatInt(result.Product.ID, 10)
	c.logger.Info("product published", "sku", l.SKU, "shopify_product_id", id)
	return &Publication{
		ProductID: id,
		AdminURL:  fmt.Sprintf("https://%s/admin/products/%s", c.shopDomain, id),
	}, nil
}

func handleError(res *resty.Response, err error) (*resty.Response, error) {
	if err != nil {
		return res, err
	}
	if res.IsError() {
		return res, fmt.Errorf("request failed: %s %s (status: %d)", res.Request.Method, res.Request.URL, res.StatusCode())
	}
	return res, nil
}
