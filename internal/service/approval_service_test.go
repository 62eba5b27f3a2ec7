package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/jmylchreest/pod-pipeline/internal/models"
	"github.com/jmylchreest/pod-pipeline/internal/repository"
	"github.com/jmylchreest/pod-pipeline/internal/storefront"
)

type fakePublisher struct {
	listings []storefront.Listing
	err      error
}

func (f *fakePublisher) CreateProduct(_ context.Context, l storefront.Listing) (*storefront.Publication, error) {
	f.listings = append(f.listings, l)
	if f.err != nil {
		return nil, f.err
	}
	return &storefront.Publication{ProductID: "shop-42", AdminURL: "https://shop.test/admin/products/shop-42"}, nil
}

// insertTestProduct stores a trend, an artwork and a pending product.
func insertTestProduct(t *testing.T, repos *repository.Repositories, title string) *models.Product {
	t.Helper()
	ctx := context.Background()
	trend := insertTestTrend(t, repos, title, time.Now())

	artwork := &models.Artwork{
		ID:       ulid.Make().String(),
		TrendID:  trend.ID,
		Style:    "minimalist",
		Prompt:   title + ", minimalist canvas wall art",
		ModelKey: "flux-schnell",
		Cost:     0.003,
		ImageURL: "https://cdn.test/artwork/" + title + ".png",
	}
	if err := repos.Artwork.Insert(ctx, artwork); err != nil {
		t.Fatalf("failed to insert artwork: %v", err)
	}

	product := &models.Product{
		ID:        ulid.Make().String(),
		ArtworkID: artwork.ID,
		Title:     title,
		SKU:       "POD-TEST-" + artwork.ID,
		BasePrice: 49.99,
		Tags:      []string{"canvas", "wall art"},
		Status:    models.ProductPendingApproval,
	}
	if err := repos.Product.Insert(ctx, product); err != nil {
		t.Fatalf("failed to insert product: %v", err)
	}
	return product
}

// ========================================
// Approve Tests
// ========================================

func TestApprovalService_Approve_NoPublisher(t *testing.T) {
	repos := setupTestRepos(t)
	svc := NewApprovalService(repos, nil, nil)
	product := insertTestProduct(t, repos, "Ocean Waves")

	res, err := svc.Approve(context.Background(), product.ID)
	if err != nil {
		t.Fatalf("Approve() error = %v", err)
	}
	if res.Status != models.ProductApproved || res.StorefrontID != "" {
		t.Errorf("result = %+v, want approved without storefront id", res)
	}
	if svc.PublishingEnabled() {
		t.Error("PublishingEnabled() = true without a publisher")
	}

	got, _ := repos.Product.GetByID(context.Background(), product.ID)
	if got.Status != models.ProductApproved {
		t.Errorf("Status = %q, want approved", got.Status)
	}
}

func TestApprovalService_Approve_Publishes(t *testing.T) {
	repos := setupTestRepos(t)
	pub := &fakePublisher{}
	svc := NewApprovalService(repos, pub, nil)
	product := insertTestProduct(t, repos, "Mountain Lake")

	res, err := svc.Approve(context.Background(), product.ID)
	if err != nil {
		t.Fatalf("Approve() error = %v", err)
	}
	if res.Status != models.ProductPublished || res.StorefrontID != "shop-42" {
		t.Errorf("result = %+v, want published as shop-42", res)
	}
	if len(pub.listings) != 1 {
		t.Fatalf("listings = %d, want 1", len(pub.listings))
	}
	if l := pub.listings[0]; l.ImageURL != "https://cdn.test/artwork/Mountain Lake.png" || l.Price != 49.99 {
		t.Errorf("listing = %+v", l)
	}

	got, _ := repos.Product.GetByID(context.Background(), product.ID)
	if got.Status != models.ProductPublished || got.StorefrontID != "shop-42" {
		t.Errorf("product = %+v, want published", got)
	}

	// Published products cannot change.
	if _, err := svc.Approve(context.Background(), product.ID); !errors.Is(err, ErrProductFinal) {
		t.Errorf("Approve(published) error = %v, want ErrProductFinal", err)
	}
	if err := svc.Reject(context.Background(), product.ID, "late"); !errors.Is(err, ErrProductFinal) {
		t.Errorf("Reject(published) error = %v, want ErrProductFinal", err)
	}
}

func TestApprovalService_Approve_PublishFailure(t *testing.T) {
	repos := setupTestRepos(t)
	svc := NewApprovalService(repos, &fakePublisher{err: errors.New("shopify down")}, nil)
	product := insertTestProduct(t, repos, "Desert Bloom")

	res, err := svc.Approve(context.Background(), product.ID)
	if err != nil {
		t.Fatalf("Approve() error = %v", err)
	}
	if res.Status != models.ProductApproved || res.PublishError == "" {
		t.Errorf("result = %+v, want approved with publish error", res)
	}
	got, _ := repos.Product.GetByID(context.Background(), product.ID)
	if got.Status != models.ProductApproved {
		t.Errorf("Status = %q, want approved", got.Status)
	}
}

func TestApprovalService_NotFound(t *testing.T) {
	svc := NewApprovalService(setupTestRepos(t), nil, nil)
	if _, err := svc.Approve(context.Background(), "missing"); !errors.Is(err, ErrProductNotFound) {
		t.Errorf("Approve() error = %v, want ErrProductNotFound", err)
	}
	if err := svc.Reject(context.Background(), "missing", ""); !errors.Is(err, ErrProductNotFound) {
		t.Errorf("Reject() error = %v, want ErrProductNotFound", err)
	}
}

// ========================================
// Reject / Batch / Stats Tests
// ========================================

func TestApprovalService_Reject(t *testing.T) {
	repos := setupTestRepos(t)
	svc := NewApprovalService(repos, nil, nil)
	product := insertTestProduct(t, repos, "Neon City")

	if err := svc.Reject(context.Background(), product.ID, "blurry text"); err != nil {
		t.Fatalf("Reject() error = %v", err)
	}
	got, _ := repos.Product.GetByID(context.Background(), product.ID)
	if got.Status != models.ProductRejected || got.RejectionReason != "blurry text" {
		t.Errorf("product = %+v, want rejected with reason", got)
	}

	// A rejected product can still be approved.
	if _, err := svc.Approve(context.Background(), product.ID); err != nil {
		t.Errorf("Approve(rejected) error = %v", err)
	}
}

func TestApprovalService_BatchApproveAndStats(t *testing.T) {
	repos := setupTestRepos(t)
	pub := &fakePublisher{}
	svc := NewApprovalService(repos, pub, nil)
	ctx := context.Background()

	a := insertTestProduct(t, repos, "Alpha")
	b := insertTestProduct(t, repos, "Beta")
	c := insertTestProduct(t, repos, "Gamma")
	d := insertTestProduct(t, repos, "Delta")

	pending, err := svc.ListPending(ctx, 0)
	if err != nil {
		t.Fatalf("ListPending() error = %v", err)
	}
	if len(pending) != 4 {
		t.Fatalf("pending = %d, want 4", len(pending))
	}

	n, err := svc.BatchApprove(ctx, []string{a.ID, b.ID, "missing"})
	if err != nil {
		t.Fatalf("BatchApprove() error = %v", err)
	}
	if n != 2 {
		t.Errorf("approved = %d, want 2", n)
	}
	if len(pub.listings) != 0 {
		t.Errorf("batch approval published %d listings, want 0", len(pub.listings))
	}
	if n, err := svc.BatchApprove(ctx, nil); err != nil || n != 0 {
		t.Errorf("BatchApprove(nil) = %d, %v", n, err)
	}

	if err := svc.Reject(ctx, c.ID, ""); err != nil {
		t.Fatalf("Reject() error = %v", err)
	}

	stats, err := svc.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats() error = %v", err)
	}
	if stats.Total != 4 || stats.Approved != 2 || stats.Rejected != 1 || stats.Pending != 1 {
		t.Errorf("stats = %+v", stats)
	}
	if stats.ApprovalRate != 50 {
		t.Errorf("ApprovalRate = %v, want 50", stats.ApprovalRate)
	}

	pending, _ = svc.ListPending(ctx, 10)
	if len(pending) != 1 || pending[0].ID != d.ID {
		t.Errorf("pending = %v, want only Delta", pending)
	}
}
