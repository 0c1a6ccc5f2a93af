package stats

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/borrowhub/borrowhub-backend/pkg/db/models"
	pkgerrors "github.com/borrowhub/borrowhub-backend/pkg/errors"
)

// Service applies the counter side effects of rental lifecycle events.
// Increments run on the caller's transaction so a failed transition never
// leaves a half-applied counter.
type Service interface {
	OnRentalCreated(ctx context.Context, tx *gorm.DB, itemID, renterID uuid.UUID) error
	OnRentalCompleted(ctx context.Context, tx *gorm.DB, rental *models.Rental) error
}

type service struct {
	db *gorm.DB
}

// NewService wires a stats service on the provided database.
func NewService(db *gorm.DB) (Service, error) {
	if db == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "stats db required")
	}
	return &service{db: db}, nil
}

func (s *service) conn(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return s.db
}

// OnRentalCreated bumps the item's view counter and the renter's
// items-rented counter.
func (s *service) OnRentalCreated(ctx context.Context, tx *gorm.DB, itemID, renterID uuid.UUID) error {
	db := s.conn(tx).WithContext(ctx)

	if err := db.Model(&models.Item{}).
		Where("id = ?", itemID).
		Update("view_count", gorm.Expr("view_count + 1")).Error; err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "incrementing item view count")
	}
	if err := db.Model(&models.User{}).
		Where("id = ?", renterID).
		Update("items_rented", gorm.Expr("items_rented + 1")).Error; err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "incrementing renter items rented")
	}
	return nil
}

// OnRentalCompleted bumps both parties' successful-rental counters and the
// item's rental and revenue counters.
func (s *service) OnRentalCompleted(ctx context.Context, tx *gorm.DB, rental *models.Rental) error {
	if rental == nil {
		return pkgerrors.New(pkgerrors.CodeInternal, "rental is required")
	}
	db := s.conn(tx).WithContext(ctx)

	if err := db.Model(&models.User{}).
		Where("id IN ?", []uuid.UUID{rental.OwnerID, rental.RenterID}).
		Update("successful_rentals", gorm.Expr("successful_rentals + 1")).Error; err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "incrementing successful rentals")
	}
	if err := db.Model(&models.Item{}).
		Where("id = ?", rental.ItemID).
		Updates(map[string]any{
			"rental_count":  gorm.Expr("rental_count + 1"),
			"revenue_cents": gorm.Expr("revenue_cents + ?", rental.Pricing.SubtotalCents),
		}).Error; err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "incrementing item rental counters")
	}
	return nil
}
