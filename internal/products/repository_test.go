package products

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/tmaseko/veldmarket-backend/pkg/db/models"
	"github.com/tmaseko/veldmarket-backend/pkg/enums"
)

func setupProductsTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)

	collections := `
CREATE TABLE IF NOT EXISTS collections (
  id TEXT PRIMARY KEY,
  slug TEXT NOT NULL UNIQUE,
  title TEXT NOT NULL,
  description TEXT,
  created_at DATETIME,
  updated_at DATETIME
);`
	products := `
CREATE TABLE IF NOT EXISTS products (
  id TEXT PRIMARY KEY,
  collection_id TEXT,
  title TEXT NOT NULL,
  description TEXT,
  category TEXT NOT NULL,
  price_cents INTEGER NOT NULL,
  colors TEXT NOT NULL DEFAULT '{}',
  sizes TEXT NOT NULL DEFAULT '{}',
  is_active INTEGER NOT NULL DEFAULT 1,
  is_featured INTEGER NOT NULL DEFAULT 0,
  created_at DATETIME,
  updated_at DATETIME
);`
	images := `
CREATE TABLE IF NOT EXISTS product_images (
  id TEXT PRIMARY KEY,
  product_id TEXT NOT NULL,
  url TEXT NOT NULL,
  alt_text TEXT,
  position INTEGER NOT NULL DEFAULT 0,
  created_at DATETIME
);`
	require.NoError(t, db.Exec(collections).Error)
	require.NoError(t, db.Exec(products).Error)
	require.NoError(t, db.Exec(images).Error)
	return db
}

func newProduct(t *testing.T, db *gorm.DB, title string, category enums.ProductCategory, priceCents int, active, featured bool, created time.Time) *models.Product {
	t.Helper()

	product := &models.Product{
		ID:         uuid.New(),
		Title:      title,
		Category:   category,
		PriceCents: priceCents,
		Colors:     []string{},
		Sizes:      []string{},
		IsActive:   active,
		IsFeatured: featured,
		CreatedAt:  created,
		UpdatedAt:  created,
	}
	require.NoError(t, db.Create(product).Error)
	return product
}

func TestRepositoryList_pagination(t *testing.T) {
	db := setupProductsTestDB(t)
	repo := NewRepository(db)

	now := time.Now().UTC()
	newProduct(t, db, "Karoo Beanie", enums.ProductCategoryAccessories, 2500, true, false, now.Add(-2*time.Hour))
	newProduct(t, db, "Veld Jacket", enums.ProductCategoryApparel, 14990, true, false, now.Add(-time.Hour))
	newProduct(t, db, "Trail Boot", enums.ProductCategoryFootwear, 20000, true, false, now)

	first, total, cursor, err := repo.List(context.Background(), ListQuery{Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	require.Len(t, first, 2)
	assert.Equal(t, "Trail Boot", first[0].Title)
	assert.Equal(t, "Veld Jacket", first[1].Title)
	require.NotEmpty(t, cursor)

	second, _, nextCursor, err := repo.List(context.Background(), ListQuery{Limit: 2, Cursor: cursor})
	require.NoError(t, err)
	require.Len(t, second, 1)
	assert.Equal(t, "Karoo Beanie", second[0].Title)
	assert.Empty(t, nextCursor)
}

func TestRepositoryList_filters(t *testing.T) {
	db := setupProductsTestDB(t)
	repo := NewRepository(db)

	now := time.Now().UTC()
	newProduct(t, db, "Veld Jacket", enums.ProductCategoryApparel, 14990, true, true, now)
	newProduct(t, db, "Trail Boot", enums.ProductCategoryFootwear, 20000, true, false, now.Add(-time.Minute))
	newProduct(t, db, "Hidden Coat", enums.ProductCategoryApparel, 9900, false, false, now.Add(-2*time.Minute))

	apparel := enums.ProductCategoryApparel
	byCategory, total, _, err := repo.List(context.Background(), ListQuery{Category: &apparel})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, byCategory, 1)
	assert.Equal(t, "Veld Jacket", byCategory[0].Title)

	featured, _, _, err := repo.List(context.Background(), ListQuery{FeaturedOnly: true})
	require.NoError(t, err)
	require.Len(t, featured, 1)
	assert.Equal(t, "Veld Jacket", featured[0].Title)

	withInactive, total, _, err := repo.List(context.Background(), ListQuery{IncludeInactive: true})
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	require.Len(t, withInactive, 3)

	search, _, _, err := repo.List(context.Background(), ListQuery{Query: "trail"})
	require.NoError(t, err)
	require.Len(t, search, 1)
	assert.Equal(t, "Trail Boot", search[0].Title)
}

func TestRepositoryCreatePersistsInactiveProduct(t *testing.T) {
	db := setupProductsTestDB(t)
	repo := NewRepository(db)

	created, err := repo.Create(context.Background(), &models.Product{
		ID:         uuid.New(),
		Title:      "Back Room Coat",
		Category:   enums.ProductCategoryApparel,
		PriceCents: 9900,
		Colors:     []string{},
		Sizes:      []string{},
		IsActive:   false,
	})
	require.NoError(t, err)
	assert.False(t, created.IsActive)

	visible, total, _, err := repo.List(context.Background(), ListQuery{})
	require.NoError(t, err)
	assert.Equal(t, int64(0), total)
	assert.Empty(t, visible)
}

func TestRepositoryReplaceImages(t *testing.T) {
	db := setupProductsTestDB(t)
	repo := NewRepository(db)

	product := newProduct(t, db, "Veld Jacket", enums.ProductCategoryApparel, 14990, true, false, time.Now().UTC())

	first := []models.ProductImage{
		{ID: uuid.New(), URL: "https://cdn.example/a.jpg", Position: 0},
		{ID: uuid.New(), URL: "https://cdn.example/b.jpg", Position: 1},
	}
	require.NoError(t, repo.ReplaceImages(context.Background(), product.ID, first))

	loaded, err := repo.FindByID(context.Background(), product.ID)
	require.NoError(t, err)
	require.Len(t, loaded.Images, 2)
	assert.Equal(t, "https://cdn.example/a.jpg", loaded.Images[0].URL)

	replacement := []models.ProductImage{
		{ID: uuid.New(), URL: "https://cdn.example/c.jpg", Position: 0},
	}
	require.NoError(t, repo.ReplaceImages(context.Background(), product.ID, replacement))

	loaded, err = repo.FindByID(context.Background(), product.ID)
	require.NoError(t, err)
	require.Len(t, loaded.Images, 1)
	assert.Equal(t, "https://cdn.example/c.jpg", loaded.Images[0].URL)
}

func TestRepositoryCollections(t *testing.T) {
	db := setupProductsTestDB(t)
	repo := NewRepository(db)

	created, err := repo.CreateCollection(context.Background(), &models.Collection{
		ID:    uuid.New(),
		Slug:  "winter-drop",
		Title: "Winter Drop",
	})
	require.NoError(t, err)

	found, err := repo.FindCollectionBySlug(context.Background(), "winter-drop")
	require.NoError(t, err)
	assert.Equal(t, created.ID, found.ID)

	all, err := repo.ListCollections(context.Background())
	require.NoError(t, err)
	require.Len(t, all, 1)

	require.NoError(t, repo.DeleteCollection(context.Background(), created.ID))
	_, err = repo.FindCollectionBySlug(context.Background(), "winter-drop")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}
