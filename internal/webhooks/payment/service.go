package paymentwebhook

import (
	"context"
	"encoding/json"
	"strings"

	pkgerrors "github.com/borrowhub/borrowhub-backend/pkg/errors"
)

type rentalPaymentHandler interface {
	HandlePaymentSucceeded(ctx context.Context, gatewayOrderID, transactionID string) error
	HandlePaymentFailed(ctx context.Context, gatewayOrderID string) error
}

// Event is the gateway's webhook envelope, reduced to the fields the rental
// flow consumes.
type Event struct {
	EventID string    `json:"event_id"`
	Type    string    `json:"type"`
	Data    EventData `json:"data"`
}

// EventData carries the payment object identifiers.
type EventData struct {
	OrderID       string `json:"order_id"`
	TransactionID string `json:"transaction_id"`
	Status        string `json:"status"`
}

// ID returns the best dedup key the envelope offers.
func (e *Event) ID() string {
	if id := strings.TrimSpace(e.EventID); id != "" {
		return id
	}
	return strings.TrimSpace(e.Data.OrderID)
}

// ParseEvent decodes a raw webhook body and validates its mandatory fields.
func ParseEvent(payload []byte) (*Event, error) {
	var event Event
	if err := json.Unmarshal(payload, &event); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "decoding webhook event")
	}
	if err := event.Validate(); err != nil {
		return nil, err
	}
	return &event, nil
}

// Validate checks the mandatory envelope fields.
func (e *Event) Validate() error {
	if strings.TrimSpace(e.Type) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "event type is required")
	}
	if strings.TrimSpace(e.Data.OrderID) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "order id is required")
	}
	return nil
}

// Service routes verified payment events into the rental state machine.
type Service struct {
	rentals rentalPaymentHandler
}

func NewService(rentals rentalPaymentHandler) (*Service, error) {
	if rentals == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "rental payment handler required")
	}
	return &Service{rentals: rentals}, nil
}

// HandleEvent dispatches one event. Unknown event types are acknowledged
// without action so the gateway stops retrying them.
func (s *Service) HandleEvent(ctx context.Context, event *Event) error {
	if event == nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "payment event required")
	}
	if err := event.Validate(); err != nil {
		return err
	}

	switch strings.ToLower(strings.TrimSpace(event.Type)) {
	case "payment.succeeded":
		return s.rentals.HandlePaymentSucceeded(ctx, event.Data.OrderID, event.Data.TransactionID)
	case "payment.failed":
		return s.rentals.HandlePaymentFailed(ctx, event.Data.OrderID)
	case "payment.updated":
		// Some gateways fold terminal states into a generic update.
		switch strings.ToUpper(strings.TrimSpace(event.Data.Status)) {
		case "COMPLETED", "SUCCEEDED":
			return s.rentals.HandlePaymentSucceeded(ctx, event.Data.OrderID, event.Data.TransactionID)
		case "FAILED", "CANCELED":
			return s.rentals.HandlePaymentFailed(ctx, event.Data.OrderID)
		}
		return nil
	default:
		return nil
	}
}
