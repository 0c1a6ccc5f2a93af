package wallet

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/borrowhub/borrowhub-backend/pkg/db/models"
	"github.com/borrowhub/borrowhub-backend/pkg/enums"
)

// AvailabilitySum is one row of a user's balance grouped by availability tag.
type AvailabilitySum struct {
	AvailabilityStatus enums.AvailabilityStatus
	TotalCents         int64
}

// Repository manages persistence for wallet ledger entries.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, entry *models.WalletTransaction) error
	SumByAvailability(ctx context.Context, userID uuid.UUID) ([]AvailabilitySum, error)
	ListRecent(ctx context.Context, userID uuid.UUID, limit int) ([]models.WalletTransaction, error)
	ListByRental(ctx context.Context, rentalID uuid.UUID) ([]models.WalletTransaction, error)
	// AdvanceForRental moves all completed entries tied to the rental from one
	// availability status to another and reports how many rows moved. Entries
	// in any other status are untouched.
	AdvanceForRental(ctx context.Context, rentalID uuid.UUID, from, to enums.AvailabilityStatus) (int64, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a wallet repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, entry *models.WalletTransaction) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

func (r *repository) SumByAvailability(ctx context.Context, userID uuid.UUID) ([]AvailabilitySum, error) {
	var rows []AvailabilitySum
	if err := r.db.WithContext(ctx).
		Model(&models.WalletTransaction{}).
		Select("availability_status, COALESCE(SUM(amount_cents), 0) AS total_cents").
		Where("user_id = ? AND status = ?", userID, enums.WalletTxStatusCompleted).
		Group("availability_status").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repository) ListRecent(ctx context.Context, userID uuid.UUID, limit int) ([]models.WalletTransaction, error) {
	var entries []models.WalletTransaction
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

func (r *repository) ListByRental(ctx context.Context, rentalID uuid.UUID) ([]models.WalletTransaction, error) {
	var entries []models.WalletTransaction
	if err := r.db.WithContext(ctx).
		Where("related_rental_id = ?", rentalID).
		Order("created_at ASC").
		Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

func (r *repository) AdvanceForRental(ctx context.Context, rentalID uuid.UUID, from, to enums.AvailabilityStatus) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&models.WalletTransaction{}).
		Where("related_rental_id = ? AND status = ? AND availability_status = ?",
			rentalID, enums.WalletTxStatusCompleted, from).
		Update("availability_status", to)
	return result.RowsAffected, result.Error
}
