package routes

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/borrowhub/borrowhub-backend/internal/rentals"
	pkgauth "github.com/borrowhub/borrowhub-backend/pkg/auth"
	"github.com/borrowhub/borrowhub-backend/pkg/config"
	"github.com/borrowhub/borrowhub-backend/pkg/db/models"
	"github.com/borrowhub/borrowhub-backend/pkg/enums"
	"github.com/borrowhub/borrowhub-backend/pkg/logger"
)

type stubRentalService struct{}

func (stubRentalService) Request(context.Context, rentals.RequestInput) (*models.Rental, error) {
	return &models.Rental{}, nil
}

func (stubRentalService) Respond(context.Context, rentals.RespondInput) (*models.Rental, error) {
	return &models.Rental{}, nil
}

func (stubRentalService) ConfirmHandover(context.Context, rentals.HandoverInput) (*models.Rental, error) {
	return &models.Rental{}, nil
}

func (stubRentalService) ConfirmCompletion(context.Context, rentals.CompletionInput) (*models.Rental, error) {
	return &models.Rental{}, nil
}

func (stubRentalService) HandlePaymentSucceeded(context.Context, string, string) error { return nil }
func (stubRentalService) HandlePaymentFailed(context.Context, string) error            { return nil }

func (stubRentalService) Get(context.Context, uuid.UUID, uuid.UUID) (*models.Rental, error) {
	return &models.Rental{}, nil
}

func (stubRentalService) List(context.Context, uuid.UUID, rentals.ListFilter) ([]models.Rental, error) {
	return nil, nil
}

func testConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{Env: "test", Port: "8080"},
		JWT: config.JWTConfig{
			Secret:            "router-test-secret",
			Issuer:            "borrowhub-test",
			ExpirationMinutes: 15,
		},
	}
}

func testRouter() http.Handler {
	cfg := testConfig()
	logg := logger.New(logger.Options{ServiceName: "router-test"})
	return NewRouter(cfg, logg, nil, nil, nil, stubRentalService{}, nil, nil, nil, nil, nil, nil)
}

func bearerFor(t *testing.T, cfg *config.Config, role enums.UserRole) string {
	t.Helper()
	token, err := pkgauth.MintAccessToken(cfg.JWT, time.Now().UTC(), pkgauth.AccessTokenPayload{
		UserID: uuid.New(),
		Role:   role,
	})
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}
	return "Bearer " + token
}

func TestHealthLiveRoute(t *testing.T) {
	router := testRouter()
	req := httptest.NewRequest(http.MethodGet, "/health/live", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
}

func TestHealthReadyFailsWithoutDependencies(t *testing.T) {
	router := testRouter()
	req := httptest.NewRequest(http.MethodGet, "/health/ready", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503", rec.Code)
	}
}

func TestRentalRoutesRequireAuth(t *testing.T) {
	router := testRouter()

	paths := []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/api/v1/rentals"},
		{http.MethodPost, "/api/v1/rentals"},
		{http.MethodGet, "/api/v1/wallet/balance"},
		{http.MethodPost, "/api/v1/rentals/" + uuid.NewString() + "/handover"},
	}

	for _, p := range paths {
		req := httptest.NewRequest(p.method, p.path, nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("%s %s status = %d, want 401", p.method, p.path, rec.Code)
		}
	}
}

func TestRentalListWithValidToken(t *testing.T) {
	cfg := testConfig()
	logg := logger.New(logger.Options{ServiceName: "router-test"})
	router := NewRouter(cfg, logg, nil, nil, nil, stubRentalService{}, nil, nil, nil, nil, nil, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/rentals", nil)
	req.Header.Set("Authorization", bearerFor(t, cfg, enums.UserRoleUser))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
}

func TestDisputeResolveRequiresModerator(t *testing.T) {
	cfg := testConfig()
	logg := logger.New(logger.Options{ServiceName: "router-test"})
	router := NewRouter(cfg, logg, nil, nil, nil, stubRentalService{}, nil, nil, nil, nil, nil, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/rentals/"+uuid.NewString()+"/dispute/resolve", nil)
	req.Header.Set("Authorization", bearerFor(t, cfg, enums.UserRoleUser))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want 403", rec.Code)
	}
}

func TestWebhookRouteSkipsAuthButVerifiesSignature(t *testing.T) {
	router := testRouter()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/webhooks/payment", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	// No bearer token needed; the missing gateway signature is what rejects it.
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
}
