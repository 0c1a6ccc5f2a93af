package notifications

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/borrowhub/borrowhub-backend/pkg/db/models"
	"github.com/borrowhub/borrowhub-backend/pkg/enums"
	pkgerrors "github.com/borrowhub/borrowhub-backend/pkg/errors"
)

// Input is one notification to persist. Push/email/SMS delivery is an
// external consumer's job; this service only writes the row, at-least-once.
type Input struct {
	UserID uuid.UUID
	Type   enums.NotificationType
	Title  string
	Body   string
	Data   map[string]any
}

// Service persists in-app notification rows.
type Service interface {
	Notify(ctx context.Context, input Input) error
}

type service struct {
	db *gorm.DB
}

// NewService wires a notification service on the provided database.
func NewService(db *gorm.DB) (Service, error) {
	if db == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "notifications db required")
	}
	return &service{db: db}, nil
}

func (s *service) Notify(ctx context.Context, input Input) error {
	if input.UserID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}
	if input.Type == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "notification type is required")
	}

	var data json.RawMessage
	if len(input.Data) > 0 {
		raw, err := json.Marshal(input.Data)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encoding notification data")
		}
		data = raw
	}

	row := &models.Notification{
		UserID: input.UserID,
		Type:   input.Type,
		Title:  input.Title,
		Body:   input.Body,
		Data:   data,
	}
	if err := s.db.WithContext(ctx).Create(row).Error; err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "creating notification")
	}
	return nil
}
