package controllers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/borrowhub/borrowhub-backend/api/middleware"
	"github.com/borrowhub/borrowhub-backend/api/responses"
	"github.com/borrowhub/borrowhub-backend/api/validators"
	"github.com/borrowhub/borrowhub-backend/internal/disputes"
	"github.com/borrowhub/borrowhub-backend/internal/rentals"
	"github.com/borrowhub/borrowhub-backend/pkg/enums"
	pkgerrors "github.com/borrowhub/borrowhub-backend/pkg/errors"
	"github.com/borrowhub/borrowhub-backend/pkg/logger"
	"github.com/borrowhub/borrowhub-backend/pkg/types"
)

type rentalRequestBody struct {
	ItemID         string    `json:"item_id" validate:"required"`
	StartDate      time.Time `json:"start_date" validate:"required"`
	EndDate        time.Time `json:"end_date" validate:"required"`
	DeliveryMethod string    `json:"delivery_method" validate:"required,oneof=pickup delivery"`
}

type rentalRespondBody struct {
	Action   string `json:"action" validate:"required,oneof=approve reject"`
	SourceID string `json:"source_id"`
}

type rentalConfirmBody struct {
	Role string `json:"role" validate:"required,oneof=owner renter"`
}

type rentalCompleteBody struct {
	Role         string            `json:"role" validate:"required,oneof=owner renter"`
	DamageReport *damageReportBody `json:"damage_report"`
}

type damageReportBody struct {
	Description string `json:"description" validate:"required"`
	AmountCents int64  `json:"amount_cents" validate:"min=0"`
}

type disputeRaiseBody struct {
	Reason   string   `json:"reason" validate:"required"`
	Evidence []string `json:"evidence"`
}

type disputeResolveBody struct {
	Decision          string `json:"decision" validate:"required"`
	RefundCents       int64  `json:"refund_cents" validate:"min=0"`
	CompensationCents int64  `json:"compensation_cents" validate:"min=0"`
	Notes             string `json:"notes"`
}

// RentalRequest creates a pending rental request for an item.
func RentalRequest(svc rentals.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "rental service unavailable"))
			return
		}

		renterID, err := callerID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body rentalRequestBody
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		itemID, err := uuid.Parse(body.ItemID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid item id"))
			return
		}

		rental, err := svc.Request(r.Context(), rentals.RequestInput{
			ItemID:         itemID,
			RenterID:       renterID,
			Start:          body.StartDate,
			End:            body.EndDate,
			DeliveryMethod: enums.DeliveryMethod(body.DeliveryMethod),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, rental)
	}
}

// RentalRespond records the owner's approve or reject decision.
func RentalRespond(svc rentals.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "rental service unavailable"))
			return
		}

		ownerID, err := callerID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		rentalID, err := rentalIDParam(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body rentalRespondBody
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		rental, err := svc.Respond(r.Context(), rentals.RespondInput{
			RentalID: rentalID,
			OwnerID:  ownerID,
			Action:   rentals.RespondAction(body.Action),
			SourceID: body.SourceID,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, rental)
	}
}

// RentalConfirmHandover records one side's handover confirmation.
func RentalConfirmHandover(svc rentals.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "rental service unavailable"))
			return
		}

		userID, err := callerID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		rentalID, err := rentalIDParam(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body rentalConfirmBody
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		rental, err := svc.ConfirmHandover(r.Context(), rentals.HandoverInput{
			RentalID: rentalID,
			UserID:   userID,
			Role:     enums.RentalRole(body.Role),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, rental)
	}
}

// RentalConfirmCompletion records one side's completion confirmation. The
// owner may attach a damage report.
func RentalConfirmCompletion(svc rentals.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "rental service unavailable"))
			return
		}

		userID, err := callerID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		rentalID, err := rentalIDParam(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body rentalCompleteBody
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input := rentals.CompletionInput{
			RentalID: rentalID,
			UserID:   userID,
			Role:     enums.RentalRole(body.Role),
		}
		if body.DamageReport != nil {
			input.DamageReport = &types.DamageReport{
				Description: body.DamageReport.Description,
				AmountCents: body.DamageReport.AmountCents,
			}
		}

		rental, err := svc.ConfirmCompletion(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, rental)
	}
}

// RentalDisputeRaise opens a dispute on an active or completed rental.
func RentalDisputeRaise(svc disputes.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "dispute service unavailable"))
			return
		}

		userID, err := callerID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		rentalID, err := rentalIDParam(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body disputeRaiseBody
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		rental, err := svc.Raise(r.Context(), disputes.RaiseInput{
			RentalID: rentalID,
			UserID:   userID,
			Reason:   body.Reason,
			Evidence: body.Evidence,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, rental)
	}
}

// RentalDisputeResolve applies a moderator ruling to an open dispute.
func RentalDisputeResolve(svc disputes.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "dispute service unavailable"))
			return
		}

		moderatorID, err := callerID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		rentalID, err := rentalIDParam(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body disputeResolveBody
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		rental, err := svc.Resolve(r.Context(), disputes.ResolveInput{
			RentalID:          rentalID,
			ModeratorID:       moderatorID,
			Decision:          enums.DisputeDecision(body.Decision),
			RefundCents:       body.RefundCents,
			CompensationCents: body.CompensationCents,
			Notes:             body.Notes,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, rental)
	}
}

// RentalDetail returns a single rental visible to its participants.
func RentalDetail(svc rentals.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "rental service unavailable"))
			return
		}

		userID, err := callerID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		rentalID, err := rentalIDParam(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		rental, err := svc.Get(r.Context(), rentalID, userID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, rental)
	}
}

// RentalList returns rentals where the caller participates, optionally
// filtered by role and status.
func RentalList(svc rentals.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "rental service unavailable"))
			return
		}

		userID, err := callerID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		filter := rentals.ListFilter{}
		if raw := r.URL.Query().Get("role"); raw != "" {
			role, parseErr := enums.ParseRentalRole(raw)
			if parseErr != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, parseErr, "invalid role filter"))
				return
			}
			filter.Role = &role
		}
		if raw := r.URL.Query().Get("status"); raw != "" {
			status, parseErr := enums.ParseRentalStatus(raw)
			if parseErr != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, parseErr, "invalid status filter"))
				return
			}
			filter.Status = &status
		}
		limit, err := validators.ParseQueryInt(r, "limit", 0, 1, 100)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		filter.Limit = limit

		list, err := svc.List(r.Context(), userID, filter)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}

func callerID(r *http.Request) (uuid.UUID, error) {
	raw := middleware.UserIDFromContext(r.Context())
	if raw == "" {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "caller identity missing")
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid caller identity")
	}
	return id, nil
}

func rentalIDParam(r *http.Request) (uuid.UUID, error) {
	raw := chi.URLParam(r, "rentalId")
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid rental id")
	}
	return id, nil
}
