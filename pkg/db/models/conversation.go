package models

import (
	"time"

	"github.com/google/uuid"
)

// Conversation is the chat channel opened between owner and renter when a
// rental is requested. Message storage and delivery live in the chat
// service; the core only creates the channel and pins its id on the rental.
type Conversation struct {
	ID       uuid.UUID   `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	RentalID *uuid.UUID  `gorm:"column:rental_id;type:uuid;index" json:"rental_id,omitempty"`
	// Participants are stored as a JSONB array of user ids.
	Participants []uuid.UUID `gorm:"column:participants;type:jsonb;serializer:json" json:"participants"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}
