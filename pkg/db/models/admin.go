package models

import (
	"time"

	"github.com/google/uuid"
)

// Admin marks a user as having back-office access. Membership in this table
// is the only admin authorization check.
type Admin struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	UserID    uuid.UUID `gorm:"column:user_id;type:uuid;not null;uniqueIndex:admins_user_id_key"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}
