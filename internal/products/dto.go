package products

import (
	"time"

	"github.com/google/uuid"

	"github.com/tmaseko/veldmarket-backend/pkg/db/models"
	"github.com/tmaseko/veldmarket-backend/pkg/enums"
)

// ProductImageDTO is the transport shape for one catalog image.
type ProductImageDTO struct {
	ID       uuid.UUID `json:"id"`
	URL      string    `json:"url"`
	AltText  *string   `json:"alt_text,omitempty"`
	Position int       `json:"position"`
}

// ProductDTO is the full catalog listing returned by detail endpoints.
type ProductDTO struct {
	ID           uuid.UUID             `json:"id"`
	CollectionID *uuid.UUID            `json:"collection_id,omitempty"`
	Title        string                `json:"title"`
	Description  *string               `json:"description,omitempty"`
	Category     enums.ProductCategory `json:"category"`
	PriceCents   int                   `json:"price_cents"`
	Colors       []string              `json:"colors"`
	Sizes        []string              `json:"sizes"`
	IsActive     bool                  `json:"is_active"`
	IsFeatured   bool                  `json:"is_featured"`
	Images       []ProductImageDTO     `json:"images"`
	CreatedAt    time.Time             `json:"created_at"`
	UpdatedAt    time.Time             `json:"updated_at"`
}

// CollectionDTO is the transport shape for a catalog collection.
type CollectionDTO struct {
	ID          uuid.UUID `json:"id"`
	Slug        string    `json:"slug"`
	Title       string    `json:"title"`
	Description *string   `json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// ListPage is a cursor-paginated slice of the catalog.
type ListPage struct {
	Items      []ProductDTO `json:"items"`
	Total      int64        `json:"total"`
	NextCursor string       `json:"next_cursor,omitempty"`
}

func fromModel(p *models.Product) *ProductDTO {
	if p == nil {
		return nil
	}

	images := make([]ProductImageDTO, 0, len(p.Images))
	for _, img := range p.Images {
		images = append(images, ProductImageDTO{
			ID:       img.ID,
			URL:      img.URL,
			AltText:  img.AltText,
			Position: img.Position,
		})
	}

	return &ProductDTO{
		ID:           p.ID,
		CollectionID: p.CollectionID,
		Title:        p.Title,
		Description:  p.Description,
		Category:     p.Category,
		PriceCents:   p.PriceCents,
		Colors:       append([]string(nil), p.Colors...),
		Sizes:        append([]string(nil), p.Sizes...),
		IsActive:     p.IsActive,
		IsFeatured:   p.IsFeatured,
		Images:       images,
		CreatedAt:    p.CreatedAt,
		UpdatedAt:    p.UpdatedAt,
	}
}

func collectionFromModel(c *models.Collection) *CollectionDTO {
	if c == nil {
		return nil
	}
	return &CollectionDTO{
		ID:          c.ID,
		Slug:        c.Slug,
		Title:       c.Title,
		Description: c.Description,
		CreatedAt:   c.CreatedAt,
	}
}
