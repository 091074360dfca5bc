package orders

import (
	"time"

	"github.com/google/uuid"

	"github.com/tmaseko/veldmarket-backend/pkg/db/models"
	"github.com/tmaseko/veldmarket-backend/pkg/enums"
)

// DeliveryDetails is the address snapshot captured at checkout time.
type DeliveryDetails struct {
	Name       string `json:"name" validate:"required"`
	Phone      string `json:"phone" validate:"required"`
	Address    string `json:"address" validate:"required"`
	City       string `json:"city" validate:"required"`
	Province   string `json:"province" validate:"required"`
	PostalCode string `json:"postal_code" validate:"required"`
}

// ItemDTO is one immutable order line.
type ItemDTO struct {
	ID             uuid.UUID  `json:"id"`
	ProductID      *uuid.UUID `json:"product_id,omitempty"`
	Title          string     `json:"title"`
	Color          *string    `json:"color,omitempty"`
	Size           *string    `json:"size,omitempty"`
	UnitPriceCents int        `json:"unit_price_cents"`
	Qty            int        `json:"qty"`
	TotalCents     int        `json:"total_cents"`
}

// OrderDTO is the transport shape for one order.
type OrderDTO struct {
	ID            uuid.UUID         `json:"id"`
	UserID        uuid.UUID         `json:"user_id"`
	Status        enums.OrderStatus `json:"status"`
	PaymentID     *string           `json:"payment_id,omitempty"`
	SubtotalCents int               `json:"subtotal_cents"`
	TotalCents    int               `json:"total_cents"`
	Delivery      DeliveryDetails   `json:"delivery"`
	Items         []ItemDTO         `json:"items"`
	CreatedAt     time.Time         `json:"created_at"`
	UpdatedAt     time.Time         `json:"updated_at"`
}

// ListPage is one cursor page of orders.
type ListPage struct {
	Orders     []OrderDTO `json:"orders"`
	Total      int64      `json:"total"`
	NextCursor string     `json:"next_cursor,omitempty"`
}

// NewOrderInput carries the cart snapshot the checkout service persists.
type NewOrderInput struct {
	UserID   uuid.UUID
	Delivery DeliveryDetails
	Items    []NewOrderItem
}

// NewOrderItem is one snapshotted cart line.
type NewOrderItem struct {
	ProductID      *uuid.UUID
	Title          string
	Color          *string
	Size           *string
	UnitPriceCents int
	Qty            int
}

func DTOFromModel(o *models.Order) *OrderDTO {
	if o == nil {
		return nil
	}

	items := make([]ItemDTO, 0, len(o.Items))
	for _, item := range o.Items {
		items = append(items, ItemDTO{
			ID:             item.ID,
			ProductID:      item.ProductID,
			Title:          item.Title,
			Color:          item.Color,
			Size:           item.Size,
			UnitPriceCents: item.UnitPriceCents,
			Qty:            item.Qty,
			TotalCents:     item.TotalCents,
		})
	}

	return &OrderDTO{
		ID:            o.ID,
		UserID:        o.UserID,
		Status:        o.Status,
		PaymentID:     o.PaymentID,
		SubtotalCents: o.SubtotalCents,
		TotalCents:    o.TotalCents,
		Delivery: DeliveryDetails{
			Name:       o.DeliveryName,
			Phone:      o.DeliveryPhone,
			Address:    o.DeliveryAddress,
			City:       o.DeliveryCity,
			Province:   o.DeliveryProvince,
			PostalCode: o.DeliveryPostalCode,
		},
		Items:     items,
		CreatedAt: o.CreatedAt,
		UpdatedAt: o.UpdatedAt,
	}
}
