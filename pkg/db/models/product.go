package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/tmaseko/veldmarket-backend/pkg/enums"
)

// Product represents a storefront catalog listing.
type Product struct {
	ID           uuid.UUID             `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	CollectionID *uuid.UUID            `gorm:"column:collection_id;type:uuid;index:products_collection_id_idx"`
	Title        string                `gorm:"column:title;not null"`
	Description  *string               `gorm:"column:description"`
	Category     enums.ProductCategory `gorm:"column:category;not null"`
	PriceCents   int                   `gorm:"column:price_cents;not null"`
	Colors       pq.StringArray        `gorm:"column:colors;type:text[];not null;default:ARRAY[]::text[]"`
	Sizes        pq.StringArray        `gorm:"column:sizes;type:text[];not null;default:ARRAY[]::text[]"`
	// gorm skips zero-value fields that carry a default tag on Create;
	// the booleans declare no default so false persists as false.
	IsActive     bool                  `gorm:"column:is_active;not null"`
	IsFeatured   bool                  `gorm:"column:is_featured;not null"`
	Images       []ProductImage        `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE"`
	CreatedAt    time.Time             `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time             `gorm:"column:updated_at;autoUpdateTime"`
}
