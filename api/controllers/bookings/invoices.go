package bookings

import (
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/glowcall/glowcall-backend/api/responses"
	"github.com/glowcall/glowcall-backend/api/validators"
	internalbookings "github.com/glowcall/glowcall-backend/internal/bookings"
	"github.com/glowcall/glowcall-backend/internal/invoices"
	pkgerrors "github.com/glowcall/glowcall-backend/pkg/errors"
	"github.com/glowcall/glowcall-backend/pkg/logger"
)

// GenerateInvoice issues the invoice for a completed booking. Repeated calls
// return the invoice issued first.
func GenerateInvoice(svc invoices.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "invoice service unavailable"))
			return
		}
		bookingID, err := validators.URLParamUUID(r, "bookingId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		invoice, err := svc.Generate(r.Context(), bookingID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, invoices.NewInvoiceDTO(invoice))
	}
}

// InvoiceDetail returns the issued invoice with its payout.
func InvoiceDetail(bookingsSvc internalbookings.Service, svc invoices.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil || bookingsSvc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "invoice service unavailable"))
			return
		}
		bookingID, ok := viewableBooking(w, r, bookingsSvc, logg)
		if !ok {
			return
		}

		details, err := svc.Get(r.Context(), bookingID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, invoices.NewDetailsDTO(details))
	}
}

// InvoiceDocument streams the rendered invoice. It never issues one.
func InvoiceDocument(bookingsSvc internalbookings.Service, svc invoices.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil || bookingsSvc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "invoice service unavailable"))
			return
		}
		bookingID, ok := viewableBooking(w, r, bookingsSvc, logg)
		if !ok {
			return
		}

		body, contentType, err := svc.RenderDocument(r.Context(), bookingID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteDocument(w, contentType, documentName(bookingID.String(), contentType), body)
	}
}

func viewableBooking(w http.ResponseWriter, r *http.Request, svc internalbookings.Service, logg *logger.Logger) (uuid.UUID, bool) {
	actor, ok := actorFrom(w, r, logg)
	if !ok {
		return uuid.Nil, false
	}
	id, err := validators.URLParamUUID(r, "bookingId")
	if err != nil {
		responses.WriteError(r.Context(), logg, w, err)
		return uuid.Nil, false
	}
	booking, err := svc.Get(r.Context(), id)
	if err != nil {
		responses.WriteError(r.Context(), logg, w, err)
		return uuid.Nil, false
	}
	if err := internalbookings.CanView(booking, actor); err != nil {
		responses.WriteError(r.Context(), logg, w, err)
		return uuid.Nil, false
	}
	return id, true
}

func documentName(bookingID, contentType string) string {
	ext := ".html"
	if strings.HasPrefix(contentType, "application/pdf") {
		ext = ".pdf"
	}
	return "invoice-" + bookingID + ext
}
