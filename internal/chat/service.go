package chat

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/borrowhub/borrowhub-backend/pkg/db/models"
	pkgerrors "github.com/borrowhub/borrowhub-backend/pkg/errors"
)

// Service opens communication channels between rental participants.
// Message storage and delivery live in the chat product; the core only
// creates the channel row and hands back its id.
type Service interface {
	OpenChannel(ctx context.Context, tx *gorm.DB, rentalID uuid.UUID, participants []uuid.UUID) (string, error)
}

type service struct {
	db *gorm.DB
}

// NewService wires a chat channel service on the provided database.
func NewService(db *gorm.DB) (Service, error) {
	if db == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "chat db required")
	}
	return &service{db: db}, nil
}

func (s *service) OpenChannel(ctx context.Context, tx *gorm.DB, rentalID uuid.UUID, participants []uuid.UUID) (string, error) {
	if len(participants) < 2 {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "a channel needs at least two participants")
	}
	db := s.db
	if tx != nil {
		db = tx
	}

	conversation := &models.Conversation{
		Participants: participants,
	}
	if rentalID != uuid.Nil {
		conversation.RentalID = &rentalID
	}
	if err := db.WithContext(ctx).Create(conversation).Error; err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeInternal, err, "creating conversation")
	}
	return conversation.ID.String(), nil
}
