package bookings

import (
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/glowcall/glowcall-backend/api/middleware"
	"github.com/glowcall/glowcall-backend/api/responses"
	"github.com/glowcall/glowcall-backend/api/validators"
	internalbookings "github.com/glowcall/glowcall-backend/internal/bookings"
	"github.com/glowcall/glowcall-backend/internal/intake"
	"github.com/glowcall/glowcall-backend/pkg/enums"
	pkgerrors "github.com/glowcall/glowcall-backend/pkg/errors"
	"github.com/glowcall/glowcall-backend/pkg/logger"
	"github.com/glowcall/glowcall-backend/pkg/pagination"
	"github.com/glowcall/glowcall-backend/pkg/types"
)

const maxReasonLength = 500

type statusRequest struct {
	Status string `json:"status" validate:"required"`
}

type cancelRequest struct {
	Reason string `json:"reason" validate:"max=500"`
}

type assignVendorRequest struct {
	VendorID uuid.UUID `json:"vendorId"`
}

type vendorResponseRequest struct {
	Accept *bool  `json:"accept" validate:"required"`
	Reason string `json:"reason" validate:"max=500"`
}

type assignBeauticianRequest struct {
	EmployeeID *uuid.UUID `json:"employeeId,omitempty"`
	Name       string     `json:"name,omitempty" validate:"required_without=EmployeeID,max=200"`
	Phone      *string    `json:"phone,omitempty" validate:"omitempty,max=40"`
	Email      *string    `json:"email,omitempty" validate:"omitempty,email"`
}

// Create books services for a customer. Customers always book for themselves;
// staff name the customer in the body.
func Create(svc intake.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "booking intake unavailable"))
			return
		}
		actor, ok := actorFrom(w, r, logg)
		if !ok {
			return
		}

		var input intake.CreateBookingInput
		if err := validators.DecodeJSONBody(r, &input); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if actor.Role == enums.ActorRoleCustomer {
			if input.CustomerID != uuid.Nil && input.CustomerID != *actor.ID {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeForbidden, "customers can only book for themselves"))
				return
			}
			input.CustomerID = *actor.ID
		}

		booking, err := svc.CreateBooking(r.Context(), input, actor)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, internalbookings.NewBookingDTO(booking))
	}
}

// Detail returns a booking the caller is party to.
func Detail(svc internalbookings.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "bookings service unavailable"))
			return
		}
		actor, ok := actorFrom(w, r, logg)
		if !ok {
			return
		}
		bookingID, err := validators.URLParamUUID(r, "bookingId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		booking, err := svc.Get(r.Context(), bookingID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := internalbookings.CanView(booking, actor); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, internalbookings.NewBookingDTO(booking))
	}
}

// Events pages through the booking audit trail, oldest first.
func Events(svc internalbookings.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "bookings service unavailable"))
			return
		}
		actor, ok := actorFrom(w, r, logg)
		if !ok {
			return
		}
		bookingID, err := validators.URLParamUUID(r, "bookingId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		booking, err := svc.Get(r.Context(), bookingID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := internalbookings.CanView(booking, actor); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		page, err := svc.ListEvents(r.Context(), bookingID, pagination.Params{
			Limit:  limit,
			Cursor: strings.TrimSpace(r.URL.Query().Get("cursor")),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, internalbookings.NewBookingEventPage(page))
	}
}

// TransitionStatus moves a booking to the requested status.
func TransitionStatus(svc internalbookings.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "bookings service unavailable"))
			return
		}
		actor, ok := actorFrom(w, r, logg)
		if !ok {
			return
		}
		bookingID, err := validators.URLParamUUID(r, "bookingId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body statusRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		target, err := enums.ParseBookingStatus(strings.ToUpper(strings.TrimSpace(body.Status)))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid booking status").WithDetails(map[string]any{"status": body.Status}))
			return
		}

		booking, err := svc.TransitionStatus(r.Context(), bookingID, target, actor)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, internalbookings.NewBookingDTO(booking))
	}
}

// Cancel cancels a booking with an optional reason.
func Cancel(svc internalbookings.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "bookings service unavailable"))
			return
		}
		actor, ok := actorFrom(w, r, logg)
		if !ok {
			return
		}
		bookingID, err := validators.URLParamUUID(r, "bookingId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body cancelRequest
		if err := validators.DecodeOptionalJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		booking, err := svc.Cancel(r.Context(), bookingID, validators.SanitizeString(body.Reason, maxReasonLength), actor)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, internalbookings.NewBookingDTO(booking))
	}
}

// AssignVendor hands a booking awaiting a manager to a vendor.
func AssignVendor(svc internalbookings.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "bookings service unavailable"))
			return
		}
		actor, ok := actorFrom(w, r, logg)
		if !ok {
			return
		}
		bookingID, err := validators.URLParamUUID(r, "bookingId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body assignVendorRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		booking, err := svc.AssignVendor(r.Context(), bookingID, body.VendorID, actor)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, internalbookings.NewBookingDTO(booking))
	}
}

// VendorResponse records a vendor accepting or declining a booking.
func VendorResponse(svc internalbookings.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "bookings service unavailable"))
			return
		}
		actor, ok := actorFrom(w, r, logg)
		if !ok {
			return
		}
		bookingID, err := validators.URLParamUUID(r, "bookingId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body vendorResponseRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		booking, err := svc.VendorRespond(r.Context(), bookingID, *body.Accept, validators.SanitizeString(body.Reason, maxReasonLength), actor)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, internalbookings.NewBookingDTO(booking))
	}
}

// AssignBeautician confirms a booking with an existing or new employee.
func AssignBeautician(svc internalbookings.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "bookings service unavailable"))
			return
		}
		actor, ok := actorFrom(w, r, logg)
		if !ok {
			return
		}
		bookingID, err := validators.URLParamUUID(r, "bookingId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body assignBeauticianRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		booking, err := svc.AssignBeautician(r.Context(), bookingID, internalbookings.EmployeeRef{
			EmployeeID: body.EmployeeID,
			Name:       strings.TrimSpace(body.Name),
			Phone:      body.Phone,
			Email:      body.Email,
		}, actor)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, internalbookings.NewBookingDTO(booking))
	}
}

func actorFrom(w http.ResponseWriter, r *http.Request, logg *logger.Logger) (types.Actor, bool) {
	principal, ok := middleware.PrincipalFromContext(r.Context())
	if !ok {
		responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials"))
		return types.Actor{}, false
	}
	return principal.Actor(), true
}
