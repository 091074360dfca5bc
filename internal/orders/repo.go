package orders

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tmaseko/veldmarket-backend/pkg/db/models"
	"github.com/tmaseko/veldmarket-backend/pkg/enums"
	"github.com/tmaseko/veldmarket-backend/pkg/pagination"
)

// Repository encapsulates order persistence.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs an order repository bound to the provided gorm DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository bound to the given transaction handle.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{db: tx}
}

// Create persists the order and its line items in one insert chain. Callers
// that need the snapshot and cart clear to be atomic wrap this in a
// transaction via WithTx.
func (r *Repository) Create(ctx context.Context, input NewOrderInput) (*models.Order, error) {
	if input.UserID == uuid.Nil {
		return nil, gorm.ErrInvalidValue
	}
	if len(input.Items) == 0 {
		return nil, gorm.ErrEmptySlice
	}

	order := &models.Order{
		ID:                 uuid.New(),
		UserID:             input.UserID,
		Status:             enums.OrderStatusPending,
		DeliveryName:       input.Delivery.Name,
		DeliveryPhone:      input.Delivery.Phone,
		DeliveryAddress:    input.Delivery.Address,
		DeliveryCity:       input.Delivery.City,
		DeliveryProvince:   input.Delivery.Province,
		DeliveryPostalCode: input.Delivery.PostalCode,
	}

	for _, item := range input.Items {
		lineTotal := item.UnitPriceCents * item.Qty
		order.Items = append(order.Items, models.OrderItem{
			ID:             uuid.New(),
			OrderID:        order.ID,
			ProductID:      item.ProductID,
			Title:          item.Title,
			Color:          item.Color,
			Size:           item.Size,
			UnitPriceCents: item.UnitPriceCents,
			Qty:            item.Qty,
			TotalCents:     lineTotal,
		})
		order.SubtotalCents += lineTotal
	}
	order.TotalCents = order.SubtotalCents

	if err := r.db.WithContext(ctx).Create(order).Error; err != nil {
		return nil, err
	}
	return order, nil
}

// FindByID loads an order with its line items.
func (r *Repository) FindByID(ctx context.Context, orderID uuid.UUID) (*models.Order, error) {
	if orderID == uuid.Nil {
		return nil, gorm.ErrRecordNotFound
	}

	var order models.Order
	if err := r.db.WithContext(ctx).
		Preload("Items").
		First(&order, "id = ?", orderID).Error; err != nil {
		return nil, err
	}
	return &order, nil
}

// ListByUser returns one cursor page of the user's orders, newest first.
func (r *Repository) ListByUser(ctx context.Context, userID uuid.UUID, cursor string, limit int) ([]models.Order, int64, string, error) {
	return r.list(ctx, cursor, limit, func(query *gorm.DB) *gorm.DB {
		return query.Where("user_id = ?", userID)
	})
}

// ListAll returns one cursor page across every order, newest first. Admin use.
func (r *Repository) ListAll(ctx context.Context, cursor string, limit int) ([]models.Order, int64, string, error) {
	return r.list(ctx, cursor, limit, func(query *gorm.DB) *gorm.DB {
		return query
	})
}

func (r *Repository) list(ctx context.Context, cursor string, limit int, scope func(*gorm.DB) *gorm.DB) ([]models.Order, int64, string, error) {
	normalizedLimit := pagination.NormalizeLimit(limit)
	limitWithBuffer := pagination.LimitWithBuffer(limit)
	decodedCursor, err := pagination.ParseCursor(strings.TrimSpace(cursor))
	if err != nil {
		return nil, 0, "", err
	}

	var total int64
	if err := scope(r.db.WithContext(ctx).Model(&models.Order{})).
		Count(&total).Error; err != nil {
		return nil, 0, "", err
	}

	query := scope(r.db.WithContext(ctx).Model(&models.Order{}))
	if decodedCursor != nil {
		query = query.Where("(created_at < ?) OR (created_at = ? AND id < ?)",
			decodedCursor.CreatedAt, decodedCursor.CreatedAt, decodedCursor.ID)
	}

	var records []models.Order
	if err := query.
		Preload("Items").
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

// MarkPaid flips a pending order to paid and records the gateway payment id.
// The COALESCE keeps the first recorded payment id when notifications arrive
// more than once. Returns gorm.ErrRecordNotFound for unknown order ids.
func (r *Repository) MarkPaid(ctx context.Context, orderID uuid.UUID, paymentID string) (*models.Order, error) {
	if orderID == uuid.Nil {
		return nil, gorm.ErrRecordNotFound
	}

	result := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("id = ?", orderID).
		Updates(map[string]interface{}{
			"status":     enums.OrderStatusPaid,
			"payment_id": gorm.Expr("COALESCE(payment_id, ?)", paymentID),
		})
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, gorm.ErrRecordNotFound
	}

	return r.FindByID(ctx, orderID)
}
