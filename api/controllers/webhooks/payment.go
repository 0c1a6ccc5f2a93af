package webhooks

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"

	"github.com/borrowhub/borrowhub-backend/api/responses"
	paymentwebhook "github.com/borrowhub/borrowhub-backend/internal/webhooks/payment"
	pkgerrors "github.com/borrowhub/borrowhub-backend/pkg/errors"
	"github.com/borrowhub/borrowhub-backend/pkg/logger"
	"github.com/borrowhub/borrowhub-backend/pkg/metrics"
)

const signatureHeader = "X-Gateway-Signature"

type PaymentWebhookService interface {
	HandleEvent(ctx context.Context, event *paymentwebhook.Event) error
}

type paymentWebhookGuard interface {
	Seen(ctx context.Context, eventID string) (bool, error)
	Mark(ctx context.Context, eventID string) error
}

type gatewayClient interface {
	SigningSecret() string
}

// PaymentWebhook ingests gateway payment notifications. Signature
// verification happens before any parsing; the guard dedups retries and an
// event is marked seen only after the handler commits, so a crash or handler
// failure leaves no mark and the gateway's redelivery is reprocessed.
func PaymentWebhook(svc PaymentWebhookService, client gatewayClient, guard paymentWebhookGuard, m *metrics.WebhookMetrics, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "webhook service unavailable"))
			return
		}
		if client == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "gateway client unavailable"))
			return
		}
		if guard == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "idempotency guard unavailable"))
			return
		}

		payload, err := io.ReadAll(r.Body)
		if err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "read request body"))
			return
		}

		sigHeader := r.Header.Get(signatureHeader)
		if sigHeader == "" {
			m.IncRejected("missing_signature")
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "gateway signature missing"))
			return
		}
		if !validateSignature(payload, client.SigningSecret(), sigHeader) {
			m.IncRejected("bad_signature")
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid gateway signature"))
			return
		}

		event, err := paymentwebhook.ParseEvent(payload)
		if err != nil {
			m.IncRejected("bad_payload")
			responses.WriteError(ctx, logg, w, err)
			return
		}

		eventID := event.ID()
		alreadyProcessed, err := guard.Seen(ctx, eventID)
		if err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check idempotency"))
			return
		}
		if alreadyProcessed {
			m.IncDuplicate(event.Type)
			responses.WriteSuccess(w, nil)
			return
		}

		if err := svc.HandleEvent(ctx, event); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		// A failed mark only costs one redundant redelivery; the rental's
		// payment status absorbs it.
		if err := guard.Mark(ctx, eventID); err != nil && logg != nil {
			logg.Warn(ctx, fmt.Sprintf("marking payment event %s failed", eventID))
		}

		m.IncReceived(event.Type)
		if logg != nil {
			logg.Info(ctx, fmt.Sprintf("payment event %s processed", eventID))
		}
		responses.WriteSuccess(w, nil)
	}
}

func validateSignature(payload []byte, secret, header string) bool {
	if header == "" || secret == "" {
		return false
	}
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(payload)
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(header))
}
