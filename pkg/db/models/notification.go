package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/borrowhub/borrowhub-backend/pkg/enums"
)

// Notification is a persisted in-app notification row. Push/email/SMS
// delivery is handled by an external consumer reading these rows.
type Notification struct {
	ID     uuid.UUID              `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	UserID uuid.UUID              `gorm:"column:user_id;type:uuid;not null;index" json:"user_id"`
	Type   enums.NotificationType `gorm:"column:type;type:text;not null" json:"type"`
	Title  string                 `gorm:"column:title;not null" json:"title"`
	Body   string                 `gorm:"column:body" json:"body"`
	Data   json.RawMessage        `gorm:"column:data;type:jsonb" json:"data,omitempty"`
	ReadAt *time.Time             `gorm:"column:read_at" json:"read_at,omitempty"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}
