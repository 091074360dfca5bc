package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/tmaseko/veldmarket-backend/pkg/enums"
)

// Order is created at payment-redirect time from a cart snapshot plus
// delivery details. Status moves pending -> paid via an idempotent upsert
// keyed by order id, driven by either the gateway webhook or the client-side
// success handler.
type Order struct {
	ID                 uuid.UUID         `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	UserID             uuid.UUID         `gorm:"column:user_id;type:uuid;not null;index:orders_user_id_idx"`
	Status             enums.OrderStatus `gorm:"column:status;not null;default:'pending'"`
	PaymentID          *string           `gorm:"column:payment_id"`
	SubtotalCents      int               `gorm:"column:subtotal_cents;not null"`
	TotalCents         int               `gorm:"column:total_cents;not null"`
	DeliveryName       string            `gorm:"column:delivery_name;not null"`
	DeliveryPhone      string            `gorm:"column:delivery_phone;not null"`
	DeliveryAddress    string            `gorm:"column:delivery_address;not null"`
	DeliveryCity       string            `gorm:"column:delivery_city;not null"`
	DeliveryProvince   string            `gorm:"column:delivery_province;not null"`
	DeliveryPostalCode string            `gorm:"column:delivery_postal_code;not null"`
	Items              []OrderItem       `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	CreatedAt          time.Time         `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt          time.Time         `gorm:"column:updated_at;autoUpdateTime"`
}
