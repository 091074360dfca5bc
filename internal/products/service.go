package products

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	pkgdb "github.com/tmaseko/veldmarket-backend/pkg/db"
	"github.com/tmaseko/veldmarket-backend/pkg/db/models"
	"github.com/tmaseko/veldmarket-backend/pkg/enums"
	pkgerrors "github.com/tmaseko/veldmarket-backend/pkg/errors"
)

// Service exposes public catalog reads and admin catalog management.
type Service interface {
	List(ctx context.Context, q ListQuery) (*ListPage, error)
	GetDetail(ctx context.Context, id uuid.UUID) (*ProductDTO, error)

	Create(ctx context.Context, input CreateProductInput) (*ProductDTO, error)
	Update(ctx context.Context, productID uuid.UUID, input UpdateProductInput) (*ProductDTO, error)
	Delete(ctx context.Context, productID uuid.UUID) error

	CreateCollection(ctx context.Context, input CreateCollectionInput) (*CollectionDTO, error)
	ListCollections(ctx context.Context) ([]CollectionDTO, error)
	DeleteCollection(ctx context.Context, id uuid.UUID) error
}

// ImageInput describes one image to attach to a product.
type ImageInput struct {
	URL      string  `json:"url" validate:"required,url"`
	AltText  *string `json:"alt_text,omitempty"`
	Position int     `json:"position" validate:"gte=0"`
}

// CreateProductInput holds the validated payload to create a product.
type CreateProductInput struct {
	CollectionID *uuid.UUID   `json:"collection_id,omitempty"`
	Title        string       `json:"title" validate:"required"`
	Description  *string      `json:"description,omitempty"`
	Category     string       `json:"category" validate:"required"`
	PriceCents   int          `json:"price_cents" validate:"gte=0"`
	Colors       []string     `json:"colors,omitempty"`
	Sizes        []string     `json:"sizes,omitempty"`
	IsActive     *bool        `json:"is_active,omitempty"`
	IsFeatured   bool         `json:"is_featured"`
	Images       []ImageInput `json:"images,omitempty" validate:"dive"`
}

// UpdateProductInput holds optional mutation values for a product.
type UpdateProductInput struct {
	CollectionID *uuid.UUID    `json:"collection_id,omitempty"`
	Title        *string       `json:"title,omitempty"`
	Description  *string       `json:"description,omitempty"`
	Category     *string       `json:"category,omitempty"`
	PriceCents   *int          `json:"price_cents,omitempty" validate:"omitempty,gte=0"`
	Colors       *[]string     `json:"colors,omitempty"`
	Sizes        *[]string     `json:"sizes,omitempty"`
	IsActive     *bool         `json:"is_active,omitempty"`
	IsFeatured   *bool         `json:"is_featured,omitempty"`
	Images       *[]ImageInput `json:"images,omitempty" validate:"omitempty,dive"`
}

// CreateCollectionInput is the admin payload for a new collection.
type CreateCollectionInput struct {
	Slug        string  `json:"slug" validate:"required,lowercase"`
	Title       string  `json:"title" validate:"required"`
	Description *string `json:"description,omitempty"`
}

type service struct {
	repo *Repository
}

// NewService constructs a catalog service instance.
func NewService(repo *Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("product repository required")
	}
	return &service{repo: repo}, nil
}

// List serves the public catalog; inactive products are excluded unless the
// caller asked for them (admin paths only).
func (s *service) List(ctx context.Context, q ListQuery) (*ListPage, error) {
	records, total, nextCursor, err := s.repo.List(ctx, q)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list products")
	}

	items := make([]ProductDTO, 0, len(records))
	for i := range records {
		items = append(items, *fromModel(&records[i]))
	}
	return &ListPage{Items: items, Total: total, NextCursor: nextCursor}, nil
}

// GetDetail loads one product with images.
func (s *service) GetDetail(ctx context.Context, id uuid.UUID) (*ProductDTO, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id is required")
	}
	product, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}
	return fromModel(product), nil
}

// Create validates and persists a new product.
func (s *service) Create(ctx context.Context, input CreateProductInput) (*ProductDTO, error) {
	category, err := enums.ParseProductCategory(input.Category)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, err.Error())
	}
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "title is required")
	}
	if input.PriceCents < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "price must not be negative")
	}

	isActive := true
	if input.IsActive != nil {
		isActive = *input.IsActive
	}

	product := &models.Product{
		CollectionID: input.CollectionID,
		Title:        title,
		Description:  input.Description,
		Category:     category,
		PriceCents:   input.PriceCents,
		Colors:       append([]string{}, input.Colors...),
		Sizes:        append([]string{}, input.Sizes...),
		IsActive:     isActive,
		IsFeatured:   input.IsFeatured,
		Images:       imagesFromInput(input.Images),
	}

	created, err := s.repo.Create(ctx, product)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create product")
	}
	return fromModel(created), nil
}

// Update applies the non-nil fields and replaces images when provided.
func (s *service) Update(ctx context.Context, productID uuid.UUID, input UpdateProductInput) (*ProductDTO, error) {
	product, err := s.repo.FindByID(ctx, productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}

	if input.Title != nil {
		title := strings.TrimSpace(*input.Title)
		if title == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "title must not be empty")
		}
		product.Title = title
	}
	if input.Description != nil {
		product.Description = input.Description
	}
	if input.Category != nil {
		category, err := enums.ParseProductCategory(*input.Category)
		if err != nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, err.Error())
		}
		product.Category = category
	}
	if input.PriceCents != nil {
		if *input.PriceCents < 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "price must not be negative")
		}
		product.PriceCents = *input.PriceCents
	}
	if input.CollectionID != nil {
		product.CollectionID = input.CollectionID
	}
	if input.Colors != nil {
		product.Colors = append([]string{}, (*input.Colors)...)
	}
	if input.Sizes != nil {
		product.Sizes = append([]string{}, (*input.Sizes)...)
	}
	if input.IsActive != nil {
		product.IsActive = *input.IsActive
	}
	if input.IsFeatured != nil {
		product.IsFeatured = *input.IsFeatured
	}

	if input.Images != nil {
		if err := s.repo.ReplaceImages(ctx, productID, imagesFromInput(*input.Images)); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "replace images")
		}
	}

	// Save without the Images association so replaced sets are not re-created.
	product.Images = nil
	updated, err := s.repo.Update(ctx, product)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update product")
	}
	return fromModel(updated), nil
}

// Delete removes the product.
func (s *service) Delete(ctx context.Context, productID uuid.UUID) error {
	if productID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "product id is required")
	}
	if _, err := s.repo.FindByID(ctx, productID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}
	if err := s.repo.Delete(ctx, productID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete product")
	}
	return nil
}

// CreateCollection persists a merchandising collection.
func (s *service) CreateCollection(ctx context.Context, input CreateCollectionInput) (*CollectionDTO, error) {
	slug := strings.ToLower(strings.TrimSpace(input.Slug))
	if slug == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "slug is required")
	}
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "title is required")
	}

	collection, err := s.repo.CreateCollection(ctx, &models.Collection{
		Slug:        slug,
		Title:       title,
		Description: input.Description,
	})
	if err != nil {
		if pkgdb.IsUniqueViolation(err, "collections_slug_key") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "slug already in use")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create collection")
	}
	return collectionFromModel(collection), nil
}

// ListCollections returns every collection.
func (s *service) ListCollections(ctx context.Context) ([]CollectionDTO, error) {
	records, err := s.repo.ListCollections(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list collections")
	}
	items := make([]CollectionDTO, 0, len(records))
	for i := range records {
		items = append(items, *collectionFromModel(&records[i]))
	}
	return items, nil
}

// DeleteCollection removes the collection.
func (s *service) DeleteCollection(ctx context.Context, id uuid.UUID) error {
	if id == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "collection id is required")
	}
	if err := s.repo.DeleteCollection(ctx, id); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete collection")
	}
	return nil
}

func imagesFromInput(inputs []ImageInput) []models.ProductImage {
	images := make([]models.ProductImage, 0, len(inputs))
	for _, input := range inputs {
		images = append(images, models.ProductImage{
			URL:      input.URL,
			AltText:  input.AltText,
			Position: input.Position,
		})
	}
	return images
}
