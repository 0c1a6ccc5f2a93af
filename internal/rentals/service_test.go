package rentals

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
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

type fakeTx struct{}

func (fakeTx) WithTx(_ context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

type fakeRepo struct {
	rental   *models.Rental
	item     *models.Item
	user     *models.User
	blocking []models.Rental
	listed   []models.Rental

	listFilter    ListFilter
	saves         int
	balanceDeltas map[uuid.UUID]int64

	lockedFinds      int
	lockedOrderFinds int
	// statusOnLock simulates a concurrent transition committing between a
	// plain precondition read and the in-transaction locked read.
	statusOnLock *enums.RentalStatus
}

func (f *fakeRepo) WithTx(*gorm.DB) Repository { return f }

func (f *fakeRepo) Create(_ context.Context, rental *models.Rental) error {
	if rental.ID == uuid.Nil {
		rental.ID = uuid.New()
	}
	f.rental = rental
	return nil
}

func (f *fakeRepo) FindByID(_ context.Context, id uuid.UUID) (*models.Rental, error) {
	if f.rental == nil || f.rental.ID != id {
		return nil, gorm.ErrRecordNotFound
	}
	return f.rental, nil
}

func (f *fakeRepo) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*models.Rental, error) {
	f.lockedFinds++
	rental, err := f.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if f.statusOnLock != nil {
		rental.Status = *f.statusOnLock
	}
	return rental, nil
}

func (f *fakeRepo) FindByGatewayOrderIDForUpdate(_ context.Context, orderID string) (*models.Rental, error) {
	f.lockedOrderFinds++
	if f.rental == nil || f.rental.GatewayOrderID == nil || *f.rental.GatewayOrderID != orderID {
		return nil, gorm.ErrRecordNotFound
	}
	return f.rental, nil
}

func (f *fakeRepo) Save(_ context.Context, rental *models.Rental) error {
	f.saves++
	f.rental = rental
	return nil
}

func (f *fakeRepo) ListByParticipant(_ context.Context, _ uuid.UUID, filter ListFilter) ([]models.Rental, error) {
	f.listFilter = filter
	return f.listed, nil
}

func (f *fakeRepo) ListBlocking(context.Context, uuid.UUID, time.Time, time.Time) ([]models.Rental, error) {
	return f.blocking, nil
}

func (f *fakeRepo) FindItem(_ context.Context, id uuid.UUID) (*models.Item, error) {
	if f.item == nil || f.item.ID != id {
		return nil, gorm.ErrRecordNotFound
	}
	return f.item, nil
}

func (f *fakeRepo) FindUser(_ context.Context, id uuid.UUID) (*models.User, error) {
	if f.user == nil || f.user.ID != id {
		return nil, gorm.ErrRecordNotFound
	}
	return f.user, nil
}

func (f *fakeRepo) IncrementUserBalance(_ context.Context, userID uuid.UUID, deltaCents int64) error {
	if f.balanceDeltas == nil {
		f.balanceDeltas = map[uuid.UUID]int64{}
	}
	f.balanceDeltas[userID] += deltaCents
	return nil
}

type ledgerAdvance struct {
	rentalID uuid.UUID
	from, to enums.AvailabilityStatus
}

type fakeLedger struct {
	posts    []wallet.PostInput
	advances []ledgerAdvance
}

func (f *fakeLedger) WithTx(*gorm.DB) wallet.Service { return f }

func (f *fakeLedger) Post(_ context.Context, input wallet.PostInput) (*models.WalletTransaction, error) {
	f.posts = append(f.posts, input)
	return &models.WalletTransaction{}, nil
}

func (f *fakeLedger) Balance(context.Context, uuid.UUID) (*wallet.Balance, error) {
	return &wallet.Balance{}, nil
}

func (f *fakeLedger) ListRecent(context.Context, uuid.UUID, int) ([]models.WalletTransaction, error) {
	return nil, nil
}

func (f *fakeLedger) ListByRental(context.Context, uuid.UUID) ([]models.WalletTransaction, error) {
	return nil, nil
}

func (f *fakeLedger) AdvanceForRental(_ context.Context, rentalID uuid.UUID, from, to enums.AvailabilityStatus) (int64, error) {
	f.advances = append(f.advances, ledgerAdvance{rentalID: rentalID, from: from, to: to})
	return 1, nil
}

type fakeCharger struct {
	params  gateway.ChargeParams
	charges int
	result  *gateway.ChargeResult
	err     error
}

func (f *fakeCharger) Charge(_ context.Context, params gateway.ChargeParams) (*gateway.ChargeResult, error) {
	f.params = params
	f.charges++
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

type fakeChat struct {
	opened       int
	participants []uuid.UUID
}

func (f *fakeChat) OpenChannel(_ context.Context, _ *gorm.DB, _ uuid.UUID, participants []uuid.UUID) (string, error) {
	f.opened++
	f.participants = participants
	return "chan-1", nil
}

type fakeNotifier struct {
	inputs []notifications.Input
}

func (f *fakeNotifier) Notify(_ context.Context, input notifications.Input) error {
	f.inputs = append(f.inputs, input)
	return nil
}

type fakeStats struct {
	created   int
	completed int
}

func (f *fakeStats) OnRentalCreated(context.Context, *gorm.DB, uuid.UUID, uuid.UUID) error {
	f.created++
	return nil
}

func (f *fakeStats) OnRentalCompleted(context.Context, *gorm.DB, *models.Rental) error {
	f.completed++
	return nil
}

type fixture struct {
	repo     *fakeRepo
	ledger   *fakeLedger
	charger  *fakeCharger
	chat     *fakeChat
	notifier *fakeNotifier
	stats    *fakeStats
	svc      Service
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		repo:     &fakeRepo{},
		ledger:   &fakeLedger{},
		charger:  &fakeCharger{result: &gateway.ChargeResult{OrderID: "ord-1", TransactionID: "txn-1", Status: "PENDING"}},
		chat:     &fakeChat{},
		notifier: &fakeNotifier{},
		stats:    &fakeStats{},
	}
	logg := logger.New(logger.Options{ServiceName: "rentals-test", Output: io.Discard})
	svc, err := NewService(f.repo, fakeTx{}, f.ledger, f.charger, f.chat, f.notifier, f.stats, logg, nil, 10)
	require.NoError(t, err)
	f.svc = svc
	return f
}

func (f *fixture) seedItem() *models.Item {
	item := &models.Item{
		ID:                   uuid.New(),
		OwnerID:              uuid.New(),
		Title:                "Cordless drill",
		DailyRateCents:       2500,
		SecurityDepositCents: 5000,
		Currency:             "USD",
	}
	f.repo.item = item
	return item
}

func (f *fixture) seedRenter() *models.User {
	user := &models.User{ID: uuid.New(), DisplayName: "Renter", Verified: true}
	f.repo.user = user
	return user
}

// seedRental installs a rental in the given status with a realistic pricing
// snapshot: 3 days at 2500, 10% fee, 5000 deposit.
func (f *fixture) seedRental(status enums.RentalStatus) *models.Rental {
	rental := &models.Rental{
		ID:       uuid.New(),
		ItemID:   uuid.New(),
		OwnerID:  uuid.New(),
		RenterID: uuid.New(),
		Status:   status,
		Pricing: models.RentalPricing{
			DailyRateCents:       2500,
			TotalDays:            3,
			SubtotalCents:        7500,
			PlatformFeeCents:     750,
			SecurityDepositCents: 5000,
			TotalCents:           13250,
			Currency:             "USD",
		},
		PaymentStatus: enums.PaymentStatusPending,
	}
	f.repo.rental = rental
	return rental
}

func requireCode(t *testing.T, err error, code pkgerrors.Code) {
	t.Helper()
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed, "expected typed error, got %v", err)
	assert.Equal(t, code, typed.Code())
}

func TestRequestCreatesPendingRental(t *testing.T) {
	f := newFixture(t)
	item := f.seedItem()
	renter := f.seedRenter()

	rental, err := f.svc.Request(context.Background(), RequestInput{
		ItemID:         item.ID,
		RenterID:       renter.ID,
		Start:          day(1),
		End:            day(4),
		DeliveryMethod: enums.DeliveryMethodPickup,
	})
	require.NoError(t, err)

	assert.Equal(t, enums.RentalStatusPending, rental.Status)
	assert.Equal(t, item.OwnerID, rental.OwnerID)
	assert.Equal(t, enums.PaymentStatusPending, rental.PaymentStatus)
	assert.Equal(t, int64(7500), rental.Pricing.SubtotalCents)
	assert.Equal(t, int64(750), rental.Pricing.PlatformFeeCents)
	assert.Equal(t, int64(13250), rental.Pricing.TotalCents)
	require.NotNil(t, rental.ChannelID)
	assert.Equal(t, "chan-1", *rental.ChannelID)
	assert.Equal(t, 1, f.chat.opened)
	assert.ElementsMatch(t, []uuid.UUID{item.OwnerID, renter.ID}, f.chat.participants)
	assert.Equal(t, 1, f.stats.created)

	require.Len(t, f.notifier.inputs, 1)
	assert.Equal(t, item.OwnerID, f.notifier.inputs[0].UserID)
	assert.Equal(t, enums.NotificationRentalRequested, f.notifier.inputs[0].Type)
}

func TestRequestRejectsOwnItem(t *testing.T) {
	f := newFixture(t)
	item := f.seedItem()

	_, err := f.svc.Request(context.Background(), RequestInput{
		ItemID:         item.ID,
		RenterID:       item.OwnerID,
		Start:          day(1),
		End:            day(4),
		DeliveryMethod: enums.DeliveryMethodPickup,
	})
	requireCode(t, err, pkgerrors.CodeForbidden)
}

func TestRequestRequiresVerifiedRenter(t *testing.T) {
	f := newFixture(t)
	item := f.seedItem()
	renter := f.seedRenter()
	renter.Verified = false

	_, err := f.svc.Request(context.Background(), RequestInput{
		ItemID:         item.ID,
		RenterID:       renter.ID,
		Start:          day(1),
		End:            day(4),
		DeliveryMethod: enums.DeliveryMethodPickup,
	})
	requireCode(t, err, pkgerrors.CodeForbidden)
}

func TestRequestRejectsDateConflict(t *testing.T) {
	f := newFixture(t)
	item := f.seedItem()
	renter := f.seedRenter()
	f.repo.blocking = []models.Rental{{Status: enums.RentalStatusActive}}

	_, err := f.svc.Request(context.Background(), RequestInput{
		ItemID:         item.ID,
		RenterID:       renter.ID,
		Start:          day(1),
		End:            day(4),
		DeliveryMethod: enums.DeliveryMethodPickup,
	})
	requireCode(t, err, pkgerrors.CodeStateConflict)
	assert.Zero(t, f.chat.opened)
}

func TestRespondReject(t *testing.T) {
	f := newFixture(t)
	rental := f.seedRental(enums.RentalStatusPending)

	got, err := f.svc.Respond(context.Background(), RespondInput{
		RentalID: rental.ID,
		OwnerID:  rental.OwnerID,
		Action:   RespondActionReject,
	})
	require.NoError(t, err)

	assert.Equal(t, enums.RentalStatusRejected, got.Status)
	assert.Zero(t, f.charger.charges, "rejection must not charge")
	require.Len(t, f.notifier.inputs, 1)
	assert.Equal(t, rental.RenterID, f.notifier.inputs[0].UserID)
}

func TestRespondApproveCharges(t *testing.T) {
	f := newFixture(t)
	rental := f.seedRental(enums.RentalStatusPending)

	got, err := f.svc.Respond(context.Background(), RespondInput{
		RentalID: rental.ID,
		OwnerID:  rental.OwnerID,
		Action:   RespondActionApprove,
		SourceID: "card-nonce",
	})
	require.NoError(t, err)

	assert.Equal(t, enums.RentalStatusApproved, got.Status)
	require.NotNil(t, got.GatewayOrderID)
	assert.Equal(t, "ord-1", *got.GatewayOrderID)
	require.NotNil(t, got.ConfirmedStart)
	require.NotNil(t, got.ConfirmedEnd)

	assert.Equal(t, 1, f.charger.charges)
	assert.Equal(t, rental.Pricing.TotalCents, f.charger.params.AmountCents)
	assert.Equal(t, "card-nonce", f.charger.params.SourceID)
	assert.Equal(t, "rental-"+rental.ID.String(), f.charger.params.IdempotencyKey)
	assert.Equal(t, rental.ID.String(), f.charger.params.ReferenceID)
}

func TestRespondRequiresOwner(t *testing.T) {
	f := newFixture(t)
	rental := f.seedRental(enums.RentalStatusPending)

	_, err := f.svc.Respond(context.Background(), RespondInput{
		RentalID: rental.ID,
		OwnerID:  rental.RenterID,
		Action:   RespondActionApprove,
	})
	requireCode(t, err, pkgerrors.CodeForbidden)
	assert.Zero(t, f.charger.charges)
}

func TestRespondApproveDetectsConcurrentReject(t *testing.T) {
	f := newFixture(t)
	rental := f.seedRental(enums.RentalStatusPending)
	// Another session rejects after the precondition read; the locked
	// re-check inside the transaction must refuse the approval.
	rejected := enums.RentalStatusRejected
	f.repo.statusOnLock = &rejected

	_, err := f.svc.Respond(context.Background(), RespondInput{
		RentalID: rental.ID,
		OwnerID:  rental.OwnerID,
		Action:   RespondActionApprove,
		SourceID: "card-nonce",
	})
	requireCode(t, err, pkgerrors.CodeStateConflict)
	assert.Zero(t, f.repo.saves, "stale approval must not overwrite the reject")
	assert.GreaterOrEqual(t, f.repo.lockedFinds, 1)
}

func TestRespondRejectDetectsConcurrentTransition(t *testing.T) {
	f := newFixture(t)
	rental := f.seedRental(enums.RentalStatusPending)
	approved := enums.RentalStatusApproved
	f.repo.statusOnLock = &approved

	_, err := f.svc.Respond(context.Background(), RespondInput{
		RentalID: rental.ID,
		OwnerID:  rental.OwnerID,
		Action:   RespondActionReject,
	})
	requireCode(t, err, pkgerrors.CodeStateConflict)
	assert.Zero(t, f.repo.saves)
}

func TestRespondConflictsWhenNotPending(t *testing.T) {
	f := newFixture(t)
	rental := f.seedRental(enums.RentalStatusApproved)

	_, err := f.svc.Respond(context.Background(), RespondInput{
		RentalID: rental.ID,
		OwnerID:  rental.OwnerID,
		Action:   RespondActionApprove,
	})
	requireCode(t, err, pkgerrors.CodeStateConflict)
}

func TestHandlePaymentSucceeded(t *testing.T) {
	f := newFixture(t)
	rental := f.seedRental(enums.RentalStatusApproved)
	orderID := "ord-1"
	rental.GatewayOrderID = &orderID

	require.NoError(t, f.svc.HandlePaymentSucceeded(context.Background(), orderID, "txn-1"))

	assert.Equal(t, enums.RentalStatusAwaitingHandover, rental.Status)
	assert.Equal(t, enums.PaymentStatusSucceeded, rental.PaymentStatus)
	require.NotNil(t, rental.GatewayTransactionID)
	assert.Equal(t, "txn-1", *rental.GatewayTransactionID)

	require.Len(t, f.ledger.posts, 1)
	post := f.ledger.posts[0]
	assert.Equal(t, rental.RenterID, post.UserID)
	assert.Equal(t, enums.WalletTxRentalPayment, post.Type)
	assert.Equal(t, -rental.Pricing.TotalCents, post.AmountCents)
	assert.Equal(t, enums.AvailabilityPending, post.AvailabilityStatus)
	require.NotNil(t, post.RelatedRentalID)
	assert.Equal(t, rental.ID, *post.RelatedRentalID)

	// Gateways redeliver; a second success must not double-debit.
	require.NoError(t, f.svc.HandlePaymentSucceeded(context.Background(), orderID, "txn-1"))
	assert.Len(t, f.ledger.posts, 1)
	assert.Equal(t, enums.RentalStatusAwaitingHandover, rental.Status)

	// Both applies went through the locked read so concurrent distinct
	// events for the same order serialize on the payment status gate.
	assert.Equal(t, 2, f.repo.lockedOrderFinds)
}

func TestHandlePaymentSucceededWrongState(t *testing.T) {
	f := newFixture(t)
	rental := f.seedRental(enums.RentalStatusActive)
	orderID := "ord-1"
	rental.GatewayOrderID = &orderID

	err := f.svc.HandlePaymentSucceeded(context.Background(), orderID, "txn-1")
	requireCode(t, err, pkgerrors.CodeStateConflict)
	assert.Empty(t, f.ledger.posts)
}

func TestHandlePaymentSucceededUnknownOrder(t *testing.T) {
	f := newFixture(t)
	err := f.svc.HandlePaymentSucceeded(context.Background(), "ord-missing", "")
	requireCode(t, err, pkgerrors.CodeNotFound)
}

func TestHandlePaymentFailed(t *testing.T) {
	f := newFixture(t)
	rental := f.seedRental(enums.RentalStatusApproved)
	orderID := "ord-1"
	rental.GatewayOrderID = &orderID

	require.NoError(t, f.svc.HandlePaymentFailed(context.Background(), orderID))

	assert.Equal(t, enums.RentalStatusRejected, rental.Status)
	assert.Equal(t, enums.PaymentStatusFailed, rental.PaymentStatus)
	assert.Empty(t, f.ledger.posts, "nothing captured means nothing posted")

	// Redelivery of the same failure is absorbed.
	require.NoError(t, f.svc.HandlePaymentFailed(context.Background(), orderID))
	assert.Empty(t, f.ledger.posts)
}

func TestConfirmHandoverActivatesAfterBothSides(t *testing.T) {
	f := newFixture(t)
	rental := f.seedRental(enums.RentalStatusAwaitingHandover)

	got, err := f.svc.ConfirmHandover(context.Background(), HandoverInput{
		RentalID: rental.ID,
		UserID:   rental.OwnerID,
		Role:     enums.RentalRoleOwner,
	})
	require.NoError(t, err)
	assert.Equal(t, enums.RentalStatusAwaitingHandover, got.Status)
	assert.True(t, got.OwnerHandoverConfirmed)
	assert.Nil(t, got.ActualStart)

	got, err = f.svc.ConfirmHandover(context.Background(), HandoverInput{
		RentalID: rental.ID,
		UserID:   rental.RenterID,
		Role:     enums.RentalRoleRenter,
	})
	require.NoError(t, err)
	assert.Equal(t, enums.RentalStatusActive, got.Status)
	require.NotNil(t, got.ActualStart)

	// Each confirmation held the row lock, so one side can never clobber
	// the other's freshly committed flag.
	assert.Equal(t, 2, f.repo.lockedFinds)
}

func TestConfirmHandoverRepeatRejected(t *testing.T) {
	f := newFixture(t)
	rental := f.seedRental(enums.RentalStatusAwaitingHandover)

	_, err := f.svc.ConfirmHandover(context.Background(), HandoverInput{
		RentalID: rental.ID,
		UserID:   rental.OwnerID,
		Role:     enums.RentalRoleOwner,
	})
	require.NoError(t, err)

	_, err = f.svc.ConfirmHandover(context.Background(), HandoverInput{
		RentalID: rental.ID,
		UserID:   rental.OwnerID,
		Role:     enums.RentalRoleOwner,
	})
	requireCode(t, err, pkgerrors.CodeStateConflict)
}

func TestConfirmHandoverRejectsClaimedRole(t *testing.T) {
	f := newFixture(t)
	rental := f.seedRental(enums.RentalStatusAwaitingHandover)

	// The renter cannot confirm as the owner.
	_, err := f.svc.ConfirmHandover(context.Background(), HandoverInput{
		RentalID: rental.ID,
		UserID:   rental.RenterID,
		Role:     enums.RentalRoleOwner,
	})
	requireCode(t, err, pkgerrors.CodeForbidden)
}

func confirmBoth(t *testing.T, f *fixture, rental *models.Rental, damage *int64) *models.Rental {
	t.Helper()
	ownerInput := CompletionInput{
		RentalID: rental.ID,
		UserID:   rental.OwnerID,
		Role:     enums.RentalRoleOwner,
	}
	if damage != nil {
		ownerInput.DamageReport = &types.DamageReport{Description: "scratched casing", AmountCents: *damage}
	}
	_, err := f.svc.ConfirmCompletion(context.Background(), ownerInput)
	require.NoError(t, err)

	got, err := f.svc.ConfirmCompletion(context.Background(), CompletionInput{
		RentalID: rental.ID,
		UserID:   rental.RenterID,
		Role:     enums.RentalRoleRenter,
	})
	require.NoError(t, err)
	return got
}

func TestConfirmCompletionCleanSettlement(t *testing.T) {
	f := newFixture(t)
	rental := f.seedRental(enums.RentalStatusActive)

	got := confirmBoth(t, f, rental, nil)

	assert.Equal(t, enums.RentalStatusCompleted, got.Status)
	require.NotNil(t, got.CompletedAt)
	require.NotNil(t, got.ActualEnd)

	require.Len(t, f.ledger.posts, 2)
	release := f.ledger.posts[0]
	assert.Equal(t, enums.WalletTxDepositRelease, release.Type)
	assert.Equal(t, rental.RenterID, release.UserID)
	assert.Equal(t, int64(5000), release.AmountCents)
	assert.Equal(t, enums.AvailabilityAvailable, release.AvailabilityStatus)

	payout := f.ledger.posts[1]
	assert.Equal(t, enums.WalletTxRentalPayout, payout.Type)
	assert.Equal(t, rental.OwnerID, payout.UserID)
	assert.Equal(t, int64(6750), payout.AmountCents, "subtotal minus platform fee")
	assert.Equal(t, enums.AvailabilityAvailable, payout.AvailabilityStatus)

	require.Len(t, f.ledger.advances, 1)
	assert.Equal(t, ledgerAdvance{rentalID: rental.ID, from: enums.AvailabilityPending, to: enums.AvailabilityAvailable}, f.ledger.advances[0])
	assert.Equal(t, int64(6750), f.repo.balanceDeltas[rental.OwnerID])
	assert.Equal(t, 1, f.stats.completed)
}

func TestConfirmCompletionWithDamageReport(t *testing.T) {
	f := newFixture(t)
	rental := f.seedRental(enums.RentalStatusActive)
	damage := int64(2000)

	got := confirmBoth(t, f, rental, &damage)

	assert.Equal(t, enums.RentalStatusCompleted, got.Status)
	require.NotNil(t, got.DamageReport)

	require.Len(t, f.ledger.posts, 2)
	assert.Equal(t, int64(3000), f.ledger.posts[0].AmountCents, "deposit minus damage")
	assert.Equal(t, int64(8750), f.ledger.posts[1].AmountCents, "payout plus damage")
	assert.Equal(t, int64(8750), f.repo.balanceDeltas[rental.OwnerID])
}

func TestConfirmCompletionDamageConsumesDeposit(t *testing.T) {
	f := newFixture(t)
	rental := f.seedRental(enums.RentalStatusActive)
	damage := rental.Pricing.SecurityDepositCents

	confirmBoth(t, f, rental, &damage)

	// No release entry when the refund nets to zero.
	require.Len(t, f.ledger.posts, 1)
	assert.Equal(t, enums.WalletTxRentalPayout, f.ledger.posts[0].Type)
	assert.Equal(t, int64(11750), f.ledger.posts[0].AmountCents)
}

func TestConfirmCompletionDamageOnlyFromOwner(t *testing.T) {
	f := newFixture(t)
	rental := f.seedRental(enums.RentalStatusActive)

	_, err := f.svc.ConfirmCompletion(context.Background(), CompletionInput{
		RentalID:     rental.ID,
		UserID:       rental.RenterID,
		Role:         enums.RentalRoleRenter,
		DamageReport: &types.DamageReport{Description: "dent", AmountCents: 100},
	})
	requireCode(t, err, pkgerrors.CodeForbidden)
}

func TestConfirmCompletionRepeatRejected(t *testing.T) {
	f := newFixture(t)
	rental := f.seedRental(enums.RentalStatusActive)

	_, err := f.svc.ConfirmCompletion(context.Background(), CompletionInput{
		RentalID: rental.ID,
		UserID:   rental.OwnerID,
		Role:     enums.RentalRoleOwner,
	})
	require.NoError(t, err)

	_, err = f.svc.ConfirmCompletion(context.Background(), CompletionInput{
		RentalID: rental.ID,
		UserID:   rental.OwnerID,
		Role:     enums.RentalRoleOwner,
	})
	requireCode(t, err, pkgerrors.CodeStateConflict)
}

func TestConfirmCompletionOnCompletedRental(t *testing.T) {
	f := newFixture(t)
	rental := f.seedRental(enums.RentalStatusCompleted)

	_, err := f.svc.ConfirmCompletion(context.Background(), CompletionInput{
		RentalID: rental.ID,
		UserID:   rental.OwnerID,
		Role:     enums.RentalRoleOwner,
	})
	requireCode(t, err, pkgerrors.CodeStateConflict)
	assert.Empty(t, f.ledger.posts)
}

func TestGetRequiresParticipant(t *testing.T) {
	f := newFixture(t)
	rental := f.seedRental(enums.RentalStatusActive)

	got, err := f.svc.Get(context.Background(), rental.ID, rental.RenterID)
	require.NoError(t, err)
	assert.Equal(t, rental.ID, got.ID)

	_, err = f.svc.Get(context.Background(), rental.ID, uuid.New())
	requireCode(t, err, pkgerrors.CodeForbidden)
}

func TestOperationsRecordDuration(t *testing.T) {
	reg := prometheus.NewPedanticRegistry()
	rentalMetrics := metrics.NewRentalMetrics(reg)

	f := &fixture{
		repo:     &fakeRepo{},
		ledger:   &fakeLedger{},
		charger:  &fakeCharger{result: &gateway.ChargeResult{OrderID: "ord-1"}},
		chat:     &fakeChat{},
		notifier: &fakeNotifier{},
		stats:    &fakeStats{},
	}
	logg := logger.New(logger.Options{ServiceName: "rentals-test", Output: io.Discard})
	svc, err := NewService(f.repo, fakeTx{}, f.ledger, f.charger, f.chat, f.notifier, f.stats, logg, rentalMetrics, 10)
	require.NoError(t, err)

	item := f.seedItem()
	renter := f.seedRenter()
	_, err = svc.Request(context.Background(), RequestInput{
		ItemID:         item.ID,
		RenterID:       renter.ID,
		Start:          day(1),
		End:            day(4),
		DeliveryMethod: enums.DeliveryMethodPickup,
	})
	require.NoError(t, err)

	count, err := testutil.GatherAndCount(reg, "rental_operation_duration_seconds")
	require.NoError(t, err)
	assert.GreaterOrEqual(t, count, 1, "request duration should be observed")
}

func TestListPassesFilterThrough(t *testing.T) {
	f := newFixture(t)
	role := enums.RentalRoleOwner
	status := enums.RentalStatusActive

	_, err := f.svc.List(context.Background(), uuid.New(), ListFilter{Role: &role, Status: &status, Limit: 25})
	require.NoError(t, err)
	assert.Equal(t, &role, f.repo.listFilter.Role)
	assert.Equal(t, &status, f.repo.listFilter.Status)
	assert.Equal(t, 25, f.repo.listFilter.Limit)
}
