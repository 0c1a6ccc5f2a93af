package wallet

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/borrowhub/borrowhub-backend/pkg/db/models"
	"github.com/borrowhub/borrowhub-backend/pkg/enums"
	pkgerrors "github.com/borrowhub/borrowhub-backend/pkg/errors"
)

const defaultListLimit = 50

// Balance is a user's ledger-derived balance split by availability status.
// available + pending + locked always equals total.
type Balance struct {
	AvailableCents int64 `json:"available_cents"`
	PendingCents   int64 `json:"pending_cents"`
	LockedCents    int64 `json:"locked_cents"`
	TotalCents     int64 `json:"total_cents"`
}

// PostInput captures one ledger entry to append.
type PostInput struct {
	UserID             uuid.UUID
	Type               enums.WalletTransactionType
	AmountCents        int64
	Currency           string
	AvailabilityStatus enums.AvailabilityStatus
	RelatedRentalID    *uuid.UUID
	Description        string
}

// Service defines wallet ledger operations. Balances are always derived from
// the ledger; the cached per-user counter is display-only and maintained
// elsewhere.
type Service interface {
	// WithTx returns a service whose writes run on the supplied transaction.
	WithTx(tx *gorm.DB) Service
	Post(ctx context.Context, input PostInput) (*models.WalletTransaction, error)
	Balance(ctx context.Context, userID uuid.UUID) (*Balance, error)
	ListRecent(ctx context.Context, userID uuid.UUID, limit int) ([]models.WalletTransaction, error)
	ListByRental(ctx context.Context, rentalID uuid.UUID) ([]models.WalletTransaction, error)
	AdvanceForRental(ctx context.Context, rentalID uuid.UUID, from, to enums.AvailabilityStatus) (int64, error)
}

type service struct {
	repo Repository
}

// NewService wires a wallet service with the provided repository.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "wallet repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) WithTx(tx *gorm.DB) Service {
	if tx == nil {
		return s
	}
	return &service{repo: s.repo.WithTx(tx)}
}

func (s *service) Post(ctx context.Context, input PostInput) (*models.WalletTransaction, error) {
	if input.UserID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}
	if !input.Type.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid wallet transaction type")
	}
	if input.AmountCents == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "amount must be non-zero")
	}
	// New entries always carry an explicit tag; the empty legacy value is
	// read-side compatibility only.
	if !input.AvailabilityStatus.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid availability status")
	}

	currency := strings.ToUpper(strings.TrimSpace(input.Currency))
	if currency == "" {
		currency = "USD"
	}

	entry := &models.WalletTransaction{
		UserID:             input.UserID,
		Type:               input.Type,
		AmountCents:        input.AmountCents,
		Currency:           currency,
		Status:             enums.WalletTxStatusCompleted,
		AvailabilityStatus: input.AvailabilityStatus,
		RelatedRentalID:    input.RelatedRentalID,
		Description:        strings.TrimSpace(input.Description),
	}
	if err := s.repo.Create(ctx, entry); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "creating wallet transaction")
	}
	return entry, nil
}

func (s *service) Balance(ctx context.Context, userID uuid.UUID) (*Balance, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}
	sums, err := s.repo.SumByAvailability(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "summing wallet transactions")
	}

	balance := &Balance{}
	for _, row := range sums {
		// Effective folds legacy untagged rows into AVAILABLE.
		switch row.AvailabilityStatus.Effective() {
		case enums.AvailabilityAvailable:
			balance.AvailableCents += row.TotalCents
		case enums.AvailabilityPending:
			balance.PendingCents += row.TotalCents
		case enums.AvailabilityLocked:
			balance.LockedCents += row.TotalCents
		}
	}
	balance.TotalCents = balance.AvailableCents + balance.PendingCents + balance.LockedCents
	return balance, nil
}

func (s *service) ListRecent(ctx context.Context, userID uuid.UUID, limit int) ([]models.WalletTransaction, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}
	if limit <= 0 || limit > 200 {
		limit = defaultListLimit
	}
	entries, err := s.repo.ListRecent(ctx, userID, limit)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "listing wallet transactions")
	}
	return entries, nil
}

func (s *service) ListByRental(ctx context.Context, rentalID uuid.UUID) ([]models.WalletTransaction, error) {
	if rentalID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "rental id is required")
	}
	entries, err := s.repo.ListByRental(ctx, rentalID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "listing rental wallet transactions")
	}
	return entries, nil
}

func (s *service) AdvanceForRental(ctx context.Context, rentalID uuid.UUID, from, to enums.AvailabilityStatus) (int64, error) {
	if rentalID == uuid.Nil {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "rental id is required")
	}
	if !from.CanAdvanceTo(to) {
		return 0, pkgerrors.New(pkgerrors.CodeStateConflict, "availability status cannot advance that way")
	}
	moved, err := s.repo.AdvanceForRental(ctx, rentalID, from, to)
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "advancing availability status")
	}
	return moved, nil
}
