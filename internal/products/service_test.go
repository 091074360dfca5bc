package products

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgerrors "github.com/tmaseko/veldmarket-backend/pkg/errors"
)

func newTestService(t *testing.T) Service {
	t.Helper()
	db := setupProductsTestDB(t)
	svc, err := NewService(NewRepository(db))
	require.NoError(t, err)
	return svc
}

func TestServiceCreateValidation(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, CreateProductInput{Title: "Jacket", Category: "weaponry", PriceCents: 100})
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeValidation, pkgerrors.As(err).Code())

	_, err = svc.Create(ctx, CreateProductInput{Title: "  ", Category: "apparel", PriceCents: 100})
	require.Error(t, err)

	_, err = svc.Create(ctx, CreateProductInput{Title: "Jacket", Category: "apparel", PriceCents: -1})
	require.Error(t, err)
}

func TestServiceGetDetailNotFound(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.GetDetail(context.Background(), uuid.New())
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeNotFound, pkgerrors.As(err).Code())

	_, err = svc.GetDetail(context.Background(), uuid.Nil)
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeValidation, pkgerrors.As(err).Code())
}

func TestServiceUpdateAppliesPartialFields(t *testing.T) {
	db := setupProductsTestDB(t)
	repo := NewRepository(db)
	svc, err := NewService(repo)
	require.NoError(t, err)
	ctx := context.Background()

	product := newProduct(t, db, "Veld Jacket", "apparel", 14990, true, false, time.Now().UTC())

	newTitle := "Veld Jacket II"
	newPrice := 15990
	updated, err := svc.Update(ctx, product.ID, UpdateProductInput{Title: &newTitle, PriceCents: &newPrice})
	require.NoError(t, err)
	assert.Equal(t, "Veld Jacket II", updated.Title)
	assert.Equal(t, 15990, updated.PriceCents)
	assert.Equal(t, "apparel", updated.Category.String())

	_, err = svc.Update(ctx, uuid.New(), UpdateProductInput{Title: &newTitle})
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeNotFound, pkgerrors.As(err).Code())
}

func TestServiceDelete(t *testing.T) {
	db := setupProductsTestDB(t)
	repo := NewRepository(db)
	svc, err := NewService(repo)
	require.NoError(t, err)
	ctx := context.Background()

	product := newProduct(t, db, "Trail Boot", "footwear", 20000, true, false, time.Now().UTC())

	require.NoError(t, svc.Delete(ctx, product.ID))

	err = svc.Delete(ctx, product.ID)
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeNotFound, pkgerrors.As(err).Code())
}
