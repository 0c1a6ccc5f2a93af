package rentals

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/borrowhub/borrowhub-backend/internal/notifications"
	"github.com/borrowhub/borrowhub-backend/internal/wallet"
	"github.com/borrowhub/borrowhub-backend/pkg/db/models"
	"github.com/borrowhub/borrowhub-backend/pkg/enums"
	pkgerrors "github.com/borrowhub/borrowhub-backend/pkg/errors"
	"github.com/borrowhub/borrowhub-backend/pkg/gateway"
	"github.com/borrowhub/borrowhub-backend/pkg/logger"
	"github.com/borrowhub/borrowhub-backend/pkg/metrics"
	"github.com/borrowhub/borrowhub-backend/pkg/types"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type charger interface {
	Charge(ctx context.Context, params gateway.ChargeParams) (*gateway.ChargeResult, error)
}

type channelOpener interface {
	OpenChannel(ctx context.Context, tx *gorm.DB, rentalID uuid.UUID, participants []uuid.UUID) (string, error)
}

type notifier interface {
	Notify(ctx context.Context, input notifications.Input) error
}

type statsRecorder interface {
	OnRentalCreated(ctx context.Context, tx *gorm.DB, itemID, renterID uuid.UUID) error
	OnRentalCompleted(ctx context.Context, tx *gorm.DB, rental *models.Rental) error
}

// Service is the rental lifecycle state machine. Every transition validates
// its preconditions, then applies all writes for that transition in one
// transaction so a failed step leaves no observable change.
type Service interface {
	Request(ctx context.Context, input RequestInput) (*models.Rental, error)
	Respond(ctx context.Context, input RespondInput) (*models.Rental, error)
	ConfirmHandover(ctx context.Context, input HandoverInput) (*models.Rental, error)
	ConfirmCompletion(ctx context.Context, input CompletionInput) (*models.Rental, error)
	HandlePaymentSucceeded(ctx context.Context, gatewayOrderID, transactionID string) error
	HandlePaymentFailed(ctx context.Context, gatewayOrderID string) error
	Get(ctx context.Context, rentalID, callerID uuid.UUID) (*models.Rental, error)
	List(ctx context.Context, userID uuid.UUID, filter ListFilter) ([]models.Rental, error)
}

type service struct {
	repo       Repository
	tx         txRunner
	ledger     wallet.Service
	gateway    charger
	chat       channelOpener
	notifier   notifier
	stats      statsRecorder
	logg       *logger.Logger
	metrics    *metrics.RentalMetrics
	feePercent int
}

// NewService builds the rental state machine with its collaborators.
func NewService(
	repo Repository,
	tx txRunner,
	ledger wallet.Service,
	gw charger,
	chat channelOpener,
	notif notifier,
	stats statsRecorder,
	logg *logger.Logger,
	rentalMetrics *metrics.RentalMetrics,
	feePercent int,
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
	if gw == nil {
		return nil, fmt.Errorf("payment gateway required")
	}
	if chat == nil {
		return nil, fmt.Errorf("chat service required")
	}
	if notif == nil {
		return nil, fmt.Errorf("notifier required")
	}
	if stats == nil {
		return nil, fmt.Errorf("stats service required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	if feePercent < 0 || feePercent > 100 {
		return nil, fmt.Errorf("platform fee percent out of range")
	}
	return &service{
		repo:       repo,
		tx:         tx,
		ledger:     ledger,
		gateway:    gw,
		chat:       chat,
		notifier:   notif,
		stats:      stats,
		logg:       logg,
		metrics:    rentalMetrics,
		feePercent: feePercent,
	}, nil
}

func (s *service) Request(ctx context.Context, input RequestInput) (*models.Rental, error) {
	defer s.trackDuration("request")()
	if input.ItemID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "item id is required")
	}
	if input.RenterID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "caller identity missing")
	}
	if input.Start.IsZero() || input.End.IsZero() || !input.End.After(input.Start) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "end date must be after start date")
	}
	if !input.DeliveryMethod.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid delivery method")
	}

	item, err := s.repo.FindItem(ctx, input.ItemID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "item not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading item")
	}
	if item.OwnerID == input.RenterID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "cannot rent your own item")
	}

	renter, err := s.repo.FindUser(ctx, input.RenterID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "renter not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading renter")
	}
	if !renter.Verified {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "renter identity is not verified")
	}

	conflicts, err := s.repo.ListBlocking(ctx, input.ItemID, input.Start, input.End)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "checking availability")
	}
	if len(conflicts) > 0 {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "item is not available for those dates")
	}

	pricing, err := ComputePricing(item, input.Start, input.End, s.feePercent)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	rental := &models.Rental{
		ItemID:         item.ID,
		OwnerID:        item.OwnerID,
		RenterID:       input.RenterID,
		Status:         enums.RentalStatusPending,
		DeliveryMethod: input.DeliveryMethod,
		RequestedStart: input.Start,
		RequestedEnd:   input.End,
		Pricing:        pricing,
		PaymentStatus:  enums.PaymentStatusPending,
		Timeline: types.Timeline{}.Append("rental_requested", input.RenterID, now, map[string]any{
			"item_id":     item.ID.String(),
			"total_cents": pricing.TotalCents,
		}),
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if err := repo.Create(ctx, rental); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "creating rental")
		}
		channelID, err := s.chat.OpenChannel(ctx, tx, rental.ID, []uuid.UUID{rental.OwnerID, rental.RenterID})
		if err != nil {
			return err
		}
		rental.ChannelID = &channelID
		if err := repo.Save(ctx, rental); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "saving rental channel")
		}
		return s.stats.OnRentalCreated(ctx, tx, item.ID, rental.RenterID)
	})
	if err != nil {
		return nil, err
	}

	s.metrics.IncTransition("", string(enums.RentalStatusPending))
	s.notify(ctx, notifications.Input{
		UserID: rental.OwnerID,
		Type:   enums.NotificationRentalRequested,
		Title:  "New rental request",
		Body:   fmt.Sprintf("Your item %q has a new rental request.", item.Title),
		Data:   map[string]any{"rental_id": rental.ID.String()},
	})
	return rental, nil
}

func (s *service) Respond(ctx context.Context, input RespondInput) (*models.Rental, error) {
	defer s.trackDuration("respond")()
	if input.RentalID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "rental id is required")
	}
	if input.OwnerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "caller identity missing")
	}
	if input.Action != RespondActionApprove && input.Action != RespondActionReject {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "action must be approve or reject")
	}

	rental, err := s.loadRental(ctx, input.RentalID)
	if err != nil {
		return nil, err
	}
	if rental.OwnerID != input.OwnerID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "only the item owner may respond")
	}
	if rental.Status != enums.RentalStatusPending {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "rental is no longer pending")
	}

	now := time.Now().UTC()

	if input.Action == RespondActionReject {
		err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
			repo := s.repo.WithTx(tx)
			locked, err := s.loadRentalLocked(ctx, repo, input.RentalID)
			if err != nil {
				return err
			}
			if locked.Status != enums.RentalStatusPending {
				return pkgerrors.New(pkgerrors.CodeStateConflict, "rental is no longer pending")
			}
			rental = locked
			rental.Status = enums.RentalStatusRejected
			rental.Timeline = rental.Timeline.Append("rental_rejected", input.OwnerID, now, nil)
			return wrapSave(repo.Save(ctx, rental))
		})
		if err != nil {
			return nil, err
		}
		s.metrics.IncTransition(string(enums.RentalStatusPending), string(enums.RentalStatusRejected))
		s.notify(ctx, notifications.Input{
			UserID: rental.RenterID,
			Type:   enums.NotificationRentalRejected,
			Title:  "Rental request declined",
			Data:   map[string]any{"rental_id": rental.ID.String()},
		})
		return rental, nil
	}

	// The gateway call stays outside the transaction: a committed rental must
	// never reference a charge that was rolled back, but the reverse (an
	// orphaned gateway order) is harmless because webhooks resolve rentals by
	// the order id persisted below.
	charge, err := s.gateway.Charge(ctx, gateway.ChargeParams{
		AmountCents:    rental.Pricing.TotalCents,
		Currency:       rental.Pricing.Currency,
		SourceID:       input.SourceID,
		IdempotencyKey: fmt.Sprintf("rental-%s", rental.ID),
		ReferenceID:    rental.ID.String(),
		Note:           "rental charge",
	})
	if err != nil {
		return nil, err
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		locked, err := s.loadRentalLocked(ctx, repo, input.RentalID)
		if err != nil {
			return err
		}
		// A concurrent reject between the precondition check and the charge
		// must win; the orphaned gateway order is harmless (see above).
		if locked.Status != enums.RentalStatusPending {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "rental is no longer pending")
		}
		rental = locked
		confirmedStart := rental.RequestedStart
		confirmedEnd := rental.RequestedEnd
		rental.ConfirmedStart = &confirmedStart
		rental.ConfirmedEnd = &confirmedEnd
		rental.Status = enums.RentalStatusApproved
		rental.PaymentStatus = enums.PaymentStatusPending
		rental.GatewayOrderID = &charge.OrderID
		if charge.TransactionID != "" {
			rental.GatewayTransactionID = &charge.TransactionID
		}
		rental.Timeline = rental.Timeline.Append("rental_approved", input.OwnerID, now, map[string]any{
			"gateway_order_id": charge.OrderID,
		})
		return wrapSave(repo.Save(ctx, rental))
	})
	if err != nil {
		return nil, err
	}

	s.metrics.IncTransition(string(enums.RentalStatusPending), string(enums.RentalStatusApproved))
	s.notify(ctx, notifications.Input{
		UserID: rental.RenterID,
		Type:   enums.NotificationRentalApproved,
		Title:  "Rental request approved",
		Body:   "Payment is being processed.",
		Data:   map[string]any{"rental_id": rental.ID.String()},
	})
	return rental, nil
}

func (s *service) ConfirmHandover(ctx context.Context, input HandoverInput) (*models.Rental, error) {
	defer s.trackDuration("confirm_handover")()
	if input.RentalID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "rental id is required")
	}
	if input.UserID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "caller identity missing")
	}
	if !input.Role.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "role must be owner or renter")
	}

	var rental *models.Rental
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		loaded, err := s.loadRentalLocked(ctx, repo, input.RentalID)
		if err != nil {
			return err
		}
		rental = loaded

		if rental.Status != enums.RentalStatusAwaitingHandover {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "rental is not awaiting handover")
		}
		if err := requireRole(rental, input.UserID, input.Role); err != nil {
			return err
		}

		now := time.Now().UTC()
		switch input.Role {
		case enums.RentalRoleOwner:
			// Repeated confirmation is rejected, not absorbed, so client
			// bugs surface instead of silently passing.
			if rental.OwnerHandoverConfirmed {
				return pkgerrors.New(pkgerrors.CodeStateConflict, "owner already confirmed handover")
			}
			rental.OwnerHandoverConfirmed = true
			rental.OwnerHandoverConfirmedAt = &now
		case enums.RentalRoleRenter:
			if rental.RenterHandoverConfirmed {
				return pkgerrors.New(pkgerrors.CodeStateConflict, "renter already confirmed handover")
			}
			rental.RenterHandoverConfirmed = true
			rental.RenterHandoverConfirmedAt = &now
		}
		rental.Timeline = rental.Timeline.Append("handover_confirmed", input.UserID, now, map[string]any{
			"role": string(input.Role),
		})

		if rental.OwnerHandoverConfirmed && rental.RenterHandoverConfirmed {
			rental.Status = enums.RentalStatusActive
			actualStart := now
			rental.ActualStart = &actualStart
			rental.Timeline = rental.Timeline.Append("rental_activated", input.UserID, now, nil)
		}
		return wrapSave(repo.Save(ctx, rental))
	})
	if err != nil {
		return nil, err
	}

	if rental.Status == enums.RentalStatusActive {
		s.metrics.IncTransition(string(enums.RentalStatusAwaitingHandover), string(enums.RentalStatusActive))
		s.notify(ctx, notifications.Input{
			UserID: participantID(rental, input.Role.Other()),
			Type:   enums.NotificationHandoverComplete,
			Title:  "Rental is now active",
			Data:   map[string]any{"rental_id": rental.ID.String()},
		})
	}
	return rental, nil
}

func (s *service) ConfirmCompletion(ctx context.Context, input CompletionInput) (*models.Rental, error) {
	defer s.trackDuration("confirm_completion")()
	if input.RentalID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "rental id is required")
	}
	if input.UserID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "caller identity missing")
	}
	if !input.Role.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "role must be owner or renter")
	}
	if input.DamageReport != nil {
		if input.Role != enums.RentalRoleOwner {
			return nil, pkgerrors.New(pkgerrors.CodeForbidden, "only the owner may report damage")
		}
		if input.DamageReport.AmountCents < 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "damage amount cannot be negative")
		}
	}

	var rental *models.Rental
	var settled bool
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		loaded, err := s.loadRentalLocked(ctx, repo, input.RentalID)
		if err != nil {
			return err
		}
		rental = loaded
		settled = false

		if rental.Status != enums.RentalStatusActive {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "rental is not active")
		}
		if err := requireRole(rental, input.UserID, input.Role); err != nil {
			return err
		}

		now := time.Now().UTC()
		switch input.Role {
		case enums.RentalRoleOwner:
			if rental.OwnerCompletionConfirmed {
				return pkgerrors.New(pkgerrors.CodeStateConflict, "owner already confirmed completion")
			}
			rental.OwnerCompletionConfirmed = true
			if input.DamageReport != nil {
				rental.DamageReport = input.DamageReport
			}
		case enums.RentalRoleRenter:
			if rental.RenterCompletionConfirmed {
				return pkgerrors.New(pkgerrors.CodeStateConflict, "renter already confirmed completion")
			}
			rental.RenterCompletionConfirmed = true
		}
		rental.Timeline = rental.Timeline.Append("completion_confirmed", input.UserID, now, map[string]any{
			"role": string(input.Role),
		})

		if rental.OwnerCompletionConfirmed && rental.RenterCompletionConfirmed {
			if err := s.settle(ctx, tx, repo, rental, input.UserID, now); err != nil {
				return err
			}
			settled = true
		}
		return wrapSave(repo.Save(ctx, rental))
	})
	if err != nil {
		return nil, err
	}

	if settled {
		s.metrics.IncTransition(string(enums.RentalStatusActive), string(enums.RentalStatusCompleted))
		outcome := "clean"
		if rental.DamageReport != nil && rental.DamageReport.AmountCents > 0 {
			outcome = "damage"
		}
		s.metrics.IncSettlement(outcome)
		for _, userID := range []uuid.UUID{rental.OwnerID, rental.RenterID} {
			s.notify(ctx, notifications.Input{
				UserID: userID,
				Type:   enums.NotificationRentalCompleted,
				Title:  "Rental completed",
				Data:   map[string]any{"rental_id": rental.ID.String()},
			})
		}
	}
	return rental, nil
}

// settle posts the completion ledger entries and flips the rental to
// completed. Runs inside the caller's transaction; posting and status change
// commit or roll back together, which is what makes settlement exactly-once.
func (s *service) settle(ctx context.Context, tx *gorm.DB, repo Repository, rental *models.Rental, actor uuid.UUID, now time.Time) error {
	var damage int64
	if rental.DamageReport != nil {
		damage = rental.DamageReport.AmountCents
	}
	depositRefund := rental.Pricing.SecurityDepositCents - damage
	ownerPayout := rental.Pricing.SubtotalCents - rental.Pricing.PlatformFeeCents + damage

	ledger := s.ledger.WithTx(tx)
	rentalID := rental.ID

	if depositRefund > 0 {
		if _, err := ledger.Post(ctx, wallet.PostInput{
			UserID:             rental.RenterID,
			Type:               enums.WalletTxDepositRelease,
			AmountCents:        depositRefund,
			Currency:           rental.Pricing.Currency,
			AvailabilityStatus: enums.AvailabilityAvailable,
			RelatedRentalID:    &rentalID,
			Description:        "security deposit release",
		}); err != nil {
			return err
		}
	}
	if _, err := ledger.Post(ctx, wallet.PostInput{
		UserID:             rental.OwnerID,
		Type:               enums.WalletTxRentalPayout,
		AmountCents:        ownerPayout,
		Currency:           rental.Pricing.Currency,
		AvailabilityStatus: enums.AvailabilityAvailable,
		RelatedRentalID:    &rentalID,
		Description:        "rental payout",
	}); err != nil {
		return err
	}
	// The renter's in-flight debit stops being provisional once settled.
	if _, err := ledger.AdvanceForRental(ctx, rentalID, enums.AvailabilityPending, enums.AvailabilityAvailable); err != nil {
		return err
	}
	if err := repo.IncrementUserBalance(ctx, rental.OwnerID, ownerPayout); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "updating owner balance cache")
	}

	rental.Status = enums.RentalStatusCompleted
	completedAt := now
	rental.CompletedAt = &completedAt
	if rental.ActualEnd == nil {
		rental.ActualEnd = &completedAt
	}
	rental.Timeline = rental.Timeline.Append("rental_completed", actor, now, map[string]any{
		"deposit_refund_cents": depositRefund,
		"owner_payout_cents":   ownerPayout,
		"damage_cents":         damage,
	})
	return s.stats.OnRentalCompleted(ctx, tx, rental)
}

func (s *service) HandlePaymentSucceeded(ctx context.Context, gatewayOrderID, transactionID string) error {
	defer s.trackDuration("payment_succeeded")()
	if gatewayOrderID == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "gateway order id is required")
	}

	var rental *models.Rental
	var applied bool
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		// Row lock: distinct events for the same order (an update and a
		// succeeded, say) must serialize on the payment status gate or both
		// would post the renter debit.
		loaded, err := repo.FindByGatewayOrderIDForUpdate(ctx, gatewayOrderID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "no rental for gateway order")
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading rental by order id")
		}
		rental = loaded
		applied = false

		// Gateways retry delivery; the payment status is the authoritative
		// idempotency gate.
		if rental.PaymentStatus == enums.PaymentStatusSucceeded {
			return nil
		}
		if rental.Status != enums.RentalStatusApproved {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "rental is not awaiting payment")
		}

		now := time.Now().UTC()
		rental.PaymentStatus = enums.PaymentStatusSucceeded
		if transactionID != "" {
			rental.GatewayTransactionID = &transactionID
		}
		rental.Status = enums.RentalStatusAwaitingHandover
		rental.Timeline = rental.Timeline.Append("payment_succeeded", uuid.Nil, now, map[string]any{
			"gateway_order_id": gatewayOrderID,
		})

		rentalID := rental.ID
		if _, err := s.ledger.WithTx(tx).Post(ctx, wallet.PostInput{
			UserID:             rental.RenterID,
			Type:               enums.WalletTxRentalPayment,
			AmountCents:        -rental.Pricing.TotalCents,
			Currency:           rental.Pricing.Currency,
			AvailabilityStatus: enums.AvailabilityPending,
			RelatedRentalID:    &rentalID,
			Description:        "rental payment",
		}); err != nil {
			return err
		}
		applied = true
		return wrapSave(repo.Save(ctx, rental))
	})
	if err != nil {
		return err
	}

	if applied {
		s.metrics.IncTransition(string(enums.RentalStatusApproved), string(enums.RentalStatusAwaitingHandover))
		s.notify(ctx, notifications.Input{
			UserID: rental.OwnerID,
			Type:   enums.NotificationPaymentReceived,
			Title:  "Payment received",
			Body:   "Arrange the handover with your renter.",
			Data:   map[string]any{"rental_id": rental.ID.String()},
		})
	}
	return nil
}

func (s *service) HandlePaymentFailed(ctx context.Context, gatewayOrderID string) error {
	defer s.trackDuration("payment_failed")()
	if gatewayOrderID == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "gateway order id is required")
	}

	var rental *models.Rental
	var applied bool
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		loaded, err := repo.FindByGatewayOrderIDForUpdate(ctx, gatewayOrderID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "no rental for gateway order")
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading rental by order id")
		}
		rental = loaded
		applied = false

		if rental.PaymentStatus == enums.PaymentStatusFailed {
			return nil
		}
		if rental.Status != enums.RentalStatusApproved {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "rental is not awaiting payment")
		}

		now := time.Now().UTC()
		rental.PaymentStatus = enums.PaymentStatusFailed
		rental.Status = enums.RentalStatusRejected
		rental.Timeline = rental.Timeline.Append("payment_failed", uuid.Nil, now, map[string]any{
			"gateway_order_id": gatewayOrderID,
		})
		// No ledger entry: nothing was captured.
		applied = true
		return wrapSave(repo.Save(ctx, rental))
	})
	if err != nil {
		return err
	}

	if applied {
		s.metrics.IncTransition(string(enums.RentalStatusApproved), string(enums.RentalStatusRejected))
		s.notify(ctx, notifications.Input{
			UserID: rental.RenterID,
			Type:   enums.NotificationPaymentFailed,
			Title:  "Payment failed",
			Body:   "Your rental payment did not go through.",
			Data:   map[string]any{"rental_id": rental.ID.String()},
		})
	}
	return nil
}

func (s *service) Get(ctx context.Context, rentalID, callerID uuid.UUID) (*models.Rental, error) {
	if rentalID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "rental id is required")
	}
	if callerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "caller identity missing")
	}
	rental, err := s.loadRental(ctx, rentalID)
	if err != nil {
		return nil, err
	}
	if !rental.IsParticipant(callerID) {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "caller is not a participant")
	}
	return rental, nil
}

func (s *service) List(ctx context.Context, userID uuid.UUID, filter ListFilter) ([]models.Rental, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "caller identity missing")
	}
	rentals, err := s.repo.ListByParticipant(ctx, userID, filter)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "listing rentals")
	}
	return rentals, nil
}

func (s *service) loadRental(ctx context.Context, id uuid.UUID) (*models.Rental, error) {
	return s.loadRentalWith(ctx, s.repo, id)
}

func (s *service) loadRentalWith(ctx context.Context, repo Repository, id uuid.UUID) (*models.Rental, error) {
	rental, err := repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "rental not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading rental")
	}
	return rental, nil
}

// loadRentalLocked loads the rental with FOR UPDATE; only valid inside a
// transaction.
func (s *service) loadRentalLocked(ctx context.Context, repo Repository, id uuid.UUID) (*models.Rental, error) {
	rental, err := repo.FindByIDForUpdate(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "rental not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading rental")
	}
	return rental, nil
}

func (s *service) trackDuration(operation string) func() {
	start := time.Now()
	return func() {
		s.metrics.ObserveDuration(operation, time.Since(start))
	}
}

func (s *service) notify(ctx context.Context, input notifications.Input) {
	if err := s.notifier.Notify(ctx, input); err != nil {
		ctx = s.logg.WithField(ctx, "notification_type", string(input.Type))
		s.logg.Warn(ctx, "notification write failed")
	}
}

func requireRole(rental *models.Rental, userID uuid.UUID, role enums.RentalRole) error {
	actual, ok := rental.RoleOf(userID)
	if !ok {
		return pkgerrors.New(pkgerrors.CodeForbidden, "caller is not a participant")
	}
	if actual != role {
		return pkgerrors.New(pkgerrors.CodeForbidden, "caller does not hold the claimed role")
	}
	return nil
}

func participantID(rental *models.Rental, role enums.RentalRole) uuid.UUID {
	if role == enums.RentalRoleOwner {
		return rental.OwnerID
	}
	return rental.RenterID
}

func wrapSave(err error) error {
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "saving rental")
	}
	return nil
}
