package products

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tmaseko/veldmarket-backend/pkg/db/models"
	"github.com/tmaseko/veldmarket-backend/pkg/enums"
	"github.com/tmaseko/veldmarket-backend/pkg/pagination"
)

// ListQuery carries catalog list filters plus cursor pagination inputs.
type ListQuery struct {
	Category        *enums.ProductCategory
	CollectionID    *uuid.UUID
	FeaturedOnly    bool
	Query           string
	IncludeInactive bool
	Cursor          string
	Limit           int
}

// Repository wires together product and collection persistence.
type Repository struct {
	db *gorm.DB
}

// NewRepository builds a repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository bound to the provided transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{db: tx}
}

// Create inserts the product with its images.
func (r *Repository) Create(ctx context.Context, product *models.Product) (*models.Product, error) {
	if err := r.db.WithContext(ctx).Create(product).Error; err != nil {
		return nil, err
	}
	return r.FindByID(ctx, product.ID)
}

// Update saves the full product row and returns the reloaded record.
func (r *Repository) Update(ctx context.Context, product *models.Product) (*models.Product, error) {
	if err := r.db.WithContext(ctx).Save(product).Error; err != nil {
		return nil, err
	}
	return r.FindByID(ctx, product.ID)
}

// Delete removes the product; images cascade at the database level.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&models.Product{}, "id = ?", id).Error
}

// FindByID loads the product with its images ordered by position.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	var product models.Product
	err := r.db.WithContext(ctx).
		Preload("Images", func(tx *gorm.DB) *gorm.DB {
			return tx.Order("position ASC, created_at ASC")
		}).
		First(&product, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &product, nil
}

// ReplaceImages swaps the product's image set atomically.
func (r *Repository) ReplaceImages(ctx context.Context, productID uuid.UUID, images []models.ProductImage) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("product_id = ?", productID).Delete(&models.ProductImage{}).Error; err != nil {
			return err
		}
		if len(images) == 0 {
			return nil
		}
		for i := range images {
			images[i].ProductID = productID
		}
		return tx.Create(&images).Error
	})
}

// List returns one cursor page of products plus the filtered total.
func (r *Repository) List(ctx context.Context, q ListQuery) ([]models.Product, int64, string, error) {
	normalizedLimit := pagination.NormalizeLimit(q.Limit)
	limitWithBuffer := pagination.LimitWithBuffer(q.Limit)
	decodedCursor, err := pagination.ParseCursor(strings.TrimSpace(q.Cursor))
	if err != nil {
		return nil, 0, "", err
	}

	base := r.db.WithContext(ctx).Model(&models.Product{})
	base = applyListFilters(base, q)

	var total int64
	if err := base.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, "", err
	}

	query := base.Session(&gorm.Session{}).
		Preload("Images", func(tx *gorm.DB) *gorm.DB {
			return tx.Order("position ASC, created_at ASC")
		})
	if decodedCursor != nil {
		query = query.Where("(created_at < ?) OR (created_at = ? AND id < ?)",
			decodedCursor.CreatedAt, decodedCursor.CreatedAt, decodedCursor.ID)
	}

	var records []models.Product
	if err := query.
		Order("created_at DESC").
		Order("id DESC").
		Limit(limitWithBuffer).
		Find(&records).Error; err != nil {
		return nil, 0, "", err
	}

	nextCursor := ""
	if len(records) > normalizedLimit {
		records = records[:normalizedLimit]
		last := records[len(records)-1]
		nextCursor = pagination.EncodeCursor(pagination.Cursor{
			CreatedAt: last.CreatedAt,
			ID:        last.ID,
		})
	}

	return records, total, nextCursor, nil
}

func applyListFilters(query *gorm.DB, q ListQuery) *gorm.DB {
	if !q.IncludeInactive {
		query = query.Where("is_active = ?", true)
	}
	if q.Category != nil {
		query = query.Where("category = ?", *q.Category)
	}
	if q.CollectionID != nil {
		query = query.Where("collection_id = ?", *q.CollectionID)
	}
	if q.FeaturedOnly {
		query = query.Where("is_featured = ?", true)
	}
	if text := strings.TrimSpace(q.Query); text != "" {
		like := "%" + strings.ToLower(text) + "%"
		query = query.Where("LOWER(title) LIKE ? OR LOWER(COALESCE(description, '')) LIKE ?", like, like)
	}
	return query
}

// CreateCollection inserts a merchandising collection.
func (r *Repository) CreateCollection(ctx context.Context, collection *models.Collection) (*models.Collection, error) {
	if err := r.db.WithContext(ctx).Create(collection).Error; err != nil {
		return nil, err
	}
	return collection, nil
}

// ListCollections returns all collections ordered by slug.
func (r *Repository) ListCollections(ctx context.Context) ([]models.Collection, error) {
	var collections []models.Collection
	if err := r.db.WithContext(ctx).Order("slug ASC").Find(&collections).Error; err != nil {
		return nil, err
	}
	return collections, nil
}

// FindCollectionBySlug loads one collection.
func (r *Repository) FindCollectionBySlug(ctx context.Context, slug string) (*models.Collection, error) {
	var collection models.Collection
	if err := r.db.WithContext(ctx).Where("slug = ?", slug).First(&collection).Error; err != nil {
		return nil, err
	}
	return &collection, nil
}

// DeleteCollection removes the collection; products keep a null collection id.
func (r *Repository) DeleteCollection(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&models.Collection{}, "id = ?", id).Error
}
