package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/borrowhub/borrowhub-backend/api/middleware"
	"github.com/borrowhub/borrowhub-backend/internal/wallet"
	"github.com/borrowhub/borrowhub-backend/pkg/db/models"
	"github.com/borrowhub/borrowhub-backend/pkg/enums"
	"github.com/borrowhub/borrowhub-backend/pkg/types"
)

type fakeWalletService struct {
	balance     *wallet.Balance
	listUserID  uuid.UUID
	listLimit   int
	listEntries []models.WalletTransaction
	err         error
}

func (f *fakeWalletService) WithTx(*gorm.DB) wallet.Service { return f }

func (f *fakeWalletService) Post(context.Context, wallet.PostInput) (*models.WalletTransaction, error) {
	return nil, f.err
}

func (f *fakeWalletService) Balance(context.Context, uuid.UUID) (*wallet.Balance, error) {
	return f.balance, f.err
}

func (f *fakeWalletService) ListRecent(_ context.Context, userID uuid.UUID, limit int) ([]models.WalletTransaction, error) {
	f.listUserID = userID
	f.listLimit = limit
	return f.listEntries, f.err
}

func (f *fakeWalletService) ListByRental(context.Context, uuid.UUID) ([]models.WalletTransaction, error) {
	return f.listEntries, f.err
}

func (f *fakeWalletService) AdvanceForRental(context.Context, uuid.UUID, enums.AvailabilityStatus, enums.AvailabilityStatus) (int64, error) {
	return 0, f.err
}

func TestWalletBalance(t *testing.T) {
	svc := &fakeWalletService{balance: &wallet.Balance{
		AvailableCents: 5000,
		PendingCents:   1200,
		LockedCents:    0,
		TotalCents:     6200,
	}}

	req := httptest.NewRequest(http.MethodGet, "/wallet/balance", nil)
	req = req.WithContext(middleware.WithUserID(req.Context(), uuid.NewString()))
	rec := httptest.NewRecorder()
	WalletBalance(svc, nil)(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var envelope struct {
		Data wallet.Balance `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if envelope.Data.TotalCents != 6200 || envelope.Data.PendingCents != 1200 {
		t.Fatalf("balance = %+v", envelope.Data)
	}
}

func TestWalletBalanceRequiresIdentity(t *testing.T) {
	svc := &fakeWalletService{}
	req := httptest.NewRequest(http.MethodGet, "/wallet/balance", nil)
	rec := httptest.NewRecorder()
	WalletBalance(svc, nil)(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
}

func TestWalletTransactionsPassesLimit(t *testing.T) {
	userID := uuid.New()
	svc := &fakeWalletService{listEntries: []models.WalletTransaction{}}

	req := httptest.NewRequest(http.MethodGet, "/wallet/transactions?limit=10", nil)
	req = req.WithContext(middleware.WithUserID(req.Context(), userID.String()))
	rec := httptest.NewRecorder()
	WalletTransactions(svc, nil)(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	if svc.listUserID != userID {
		t.Fatalf("user id = %s, want %s", svc.listUserID, userID)
	}
	if svc.listLimit != 10 {
		t.Fatalf("limit = %d, want 10", svc.listLimit)
	}
}

func TestWalletTransactionsRejectsBadLimit(t *testing.T) {
	svc := &fakeWalletService{}
	req := httptest.NewRequest(http.MethodGet, "/wallet/transactions?limit=9000", nil)
	req = req.WithContext(middleware.WithUserID(req.Context(), uuid.NewString()))
	rec := httptest.NewRecorder()
	WalletTransactions(svc, nil)(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	var envelope types.ErrorEnvelope
	if err := json.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decode body: %v", err)
	}
}
