package disputes

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/borrowhub/borrowhub-backend/internal/notifications"
	"github.com/borrowhub/borrowhub-backend/internal/rentals"
	"github.com/borrowhub/borrowhub-backend/internal/wallet"
	"github.com/borrowhub/borrowhub-backend/pkg/db/models"
	"github.com/borrowhub/borrowhub-backend/pkg/enums"
	pkgerrors "github.com/borrowhub/borrowhub-backend/pkg/errors"
	"github.com/borrowhub/borrowhub-backend/pkg/logger"
	"github.com/borrowhub/borrowhub-backend/pkg/metrics"
	"github.com/borrowhub/borrowhub-backend/pkg/types"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type notifier interface {
	Notify(ctx context.Context, input notifications.Input) error
}

// RaiseInput captures a participant's dispute filing.
type RaiseInput struct {
	RentalID uuid.UUID
	UserID   uuid.UUID
	Reason   string
	Evidence []string
}

// ResolveInput captures the moderator's final ruling. The moderator supplies
// the split; the core does not derive or bound it against the original
// escrow, it only logs when the split exceeds the amount at risk.
type ResolveInput struct {
	RentalID          uuid.UUID
	ModeratorID       uuid.UUID
	Decision          enums.DisputeDecision
	RefundCents       int64
	CompensationCents int64
	Notes             string
}

// Service closes the dispute path of the rental lifecycle.
type Service interface {
	Raise(ctx context.Context, input RaiseInput) (*models.Rental, error)
	Resolve(ctx context.Context, input ResolveInput) (*models.Rental, error)
}

type service struct {
	repo     rentals.Repository
	tx       txRunner
	ledger   wallet.Service
	notifier notifier
	logg     *logger.Logger
	metrics  *metrics.RentalMetrics
}

// NewService builds the dispute service with its collaborators.
func NewService(
	repo rentals.Repository,
	tx txRunner,
	ledger wallet.Service,
	notif notifier,
	logg *logger.Logger,
	rentalMetrics *metrics.RentalMetrics,
) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("rentals repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if ledger == nil {
		return nil, fmt.Errorf("wallet service required")
	}
	if notif == nil {
		return nil, fmt.Errorf("notifier required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{
		repo:     repo,
		tx:       tx,
		ledger:   ledger,
		notifier: notif,
		logg:     logg,
		metrics:  rentalMetrics,
	}, nil
}

func (s *service) Raise(ctx context.Context, input RaiseInput) (*models.Rental, error) {
	if input.RentalID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "rental id is required")
	}
	if input.UserID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "caller identity missing")
	}
	if input.Reason == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "a dispute reason is required")
	}

	var rental *models.Rental
	var previous enums.RentalStatus
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		loaded, err := loadRentalLocked(ctx, repo, input.RentalID)
		if err != nil {
			return err
		}
		rental = loaded

		if !rental.IsParticipant(input.UserID) {
			return pkgerrors.New(pkgerrors.CodeForbidden, "caller is not a participant")
		}
		if rental.Status != enums.RentalStatusActive && rental.Status != enums.RentalStatusCompleted {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "disputes require an active or completed rental")
		}
		if rental.HasOpenDispute() {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "a dispute is already open")
		}

		now := time.Now().UTC()
		previous = rental.Status
		rental.Status = enums.RentalStatusDisputed
		rental.Dispute = &types.Dispute{
			Status:      string(enums.DisputeStatusOpen),
			InitiatedBy: input.UserID,
			Reason:      input.Reason,
			Evidence:    input.Evidence,
			InitiatedAt: now,
		}
		rental.Timeline = rental.Timeline.Append("dispute_raised", input.UserID, now, map[string]any{
			"reason": input.Reason,
		})

		// Freeze the rental's in-flight funds while the dispute is open.
		if _, err := s.ledger.WithTx(tx).AdvanceForRental(ctx, rental.ID, enums.AvailabilityPending, enums.AvailabilityLocked); err != nil {
			return err
		}
		if err := repo.Save(ctx, rental); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "saving rental")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.IncTransition(string(previous), string(enums.RentalStatusDisputed))
	other := rental.OwnerID
	if input.UserID == rental.OwnerID {
		other = rental.RenterID
	}
	s.notify(ctx, notifications.Input{
		UserID: other,
		Type:   enums.NotificationDisputeOpened,
		Title:  "A dispute was opened",
		Body:   "A moderator will review the rental.",
		Data:   map[string]any{"rental_id": rental.ID.String()},
	})
	return rental, nil
}

func (s *service) Resolve(ctx context.Context, input ResolveInput) (*models.Rental, error) {
	if input.RentalID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "rental id is required")
	}
	if input.ModeratorID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "moderator identity missing")
	}
	if !input.Decision.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid dispute decision")
	}
	if input.RefundCents < 0 || input.CompensationCents < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "settlement amounts cannot be negative")
	}

	var rental *models.Rental
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		loaded, err := loadRentalLocked(ctx, repo, input.RentalID)
		if err != nil {
			return err
		}
		rental = loaded

		if !rental.HasOpenDispute() {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "no open dispute on this rental")
		}

		now := time.Now().UTC()
		atRisk := rental.Pricing.SecurityDepositCents + rental.Pricing.SubtotalCents
		if input.RefundCents+input.CompensationCents > atRisk {
			warnCtx := s.logg.WithFields(ctx, map[string]any{
				"rental_id":          rental.ID.String(),
				"refund_cents":       input.RefundCents,
				"compensation_cents": input.CompensationCents,
				"at_risk_cents":      atRisk,
			})
			s.logg.Warn(warnCtx, "dispute settlement exceeds amount at risk")
		}

		rental.Dispute.Status = string(enums.DisputeStatusResolved)
		rental.Dispute.Resolution = &types.DisputeResolution{
			Decision:          string(input.Decision),
			RefundCents:       input.RefundCents,
			CompensationCents: input.CompensationCents,
			ModeratorID:       input.ModeratorID,
			Notes:             input.Notes,
			ResolvedAt:        now,
		}
		rental.Status = enums.RentalStatusCompleted
		if rental.CompletedAt == nil {
			completedAt := now
			rental.CompletedAt = &completedAt
		}
		rental.Timeline = rental.Timeline.Append("dispute_resolved", input.ModeratorID, now, map[string]any{
			"decision":           string(input.Decision),
			"refund_cents":       input.RefundCents,
			"compensation_cents": input.CompensationCents,
		})

		ledger := s.ledger.WithTx(tx)
		rentalID := rental.ID
		if input.RefundCents > 0 {
			if _, err := ledger.Post(ctx, wallet.PostInput{
				UserID:             rental.RenterID,
				Type:               enums.WalletTxDepositRefund,
				AmountCents:        input.RefundCents,
				Currency:           rental.Pricing.Currency,
				AvailabilityStatus: enums.AvailabilityAvailable,
				RelatedRentalID:    &rentalID,
				Description:        "dispute refund",
			}); err != nil {
				return err
			}
		}
		if input.CompensationCents > 0 {
			if _, err := ledger.Post(ctx, wallet.PostInput{
				UserID:             rental.OwnerID,
				Type:               enums.WalletTxRentalIncome,
				AmountCents:        input.CompensationCents,
				Currency:           rental.Pricing.Currency,
				AvailabilityStatus: enums.AvailabilityAvailable,
				RelatedRentalID:    &rentalID,
				Description:        "dispute compensation",
			}); err != nil {
				return err
			}
			if err := repo.IncrementUserBalance(ctx, rental.OwnerID, input.CompensationCents); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "updating owner balance cache")
			}
		}
		// Resolution releases whatever the dispute froze.
		if _, err := ledger.AdvanceForRental(ctx, rentalID, enums.AvailabilityLocked, enums.AvailabilityAvailable); err != nil {
			return err
		}

		if err := repo.Save(ctx, rental); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "saving rental")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.IncTransition(string(enums.RentalStatusDisputed), string(enums.RentalStatusCompleted))
	s.metrics.IncSettlement("dispute")
	for _, userID := range []uuid.UUID{rental.OwnerID, rental.RenterID} {
		s.notify(ctx, notifications.Input{
			UserID: userID,
			Type:   enums.NotificationDisputeResolved,
			Title:  "Dispute resolved",
			Data: map[string]any{
				"rental_id": rental.ID.String(),
				"decision":  string(input.Decision),
			},
		})
	}
	return rental, nil
}

func (s *service) notify(ctx context.Context, input notifications.Input) {
	if err := s.notifier.Notify(ctx, input); err != nil {
		ctx = s.logg.WithField(ctx, "notification_type", string(input.Type))
		s.logg.Warn(ctx, "notification write failed")
	}
}

// loadRentalLocked takes the row lock so a dispute cannot race a settlement
// or a second dispute on the same rental. Only valid inside a transaction.
func loadRentalLocked(ctx context.Context, repo rentals.Repository, id uuid.UUID) (*models.Rental, error) {
	rental, err := repo.FindByIDForUpdate(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "rental not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading rental")
	}
	return rental, nil
}
