package controllers

import (
	"net/http"
	"strings"

	"github.com/glowcall/glowcall-backend/api/middleware"
	"github.com/glowcall/glowcall-backend/api/responses"
	"github.com/glowcall/glowcall-backend/api/validators"
	"github.com/glowcall/glowcall-backend/internal/notifications"
	"github.com/glowcall/glowcall-backend/pkg/enums"
	pkgerrors "github.com/glowcall/glowcall-backend/pkg/errors"
	"github.com/glowcall/glowcall-backend/pkg/logger"
	"github.com/glowcall/glowcall-backend/pkg/pagination"
)

// ListNotifications returns the caller's in-app inbox, newest first.
func ListNotifications(svc notifications.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "notifications service unavailable"))
			return
		}

		recipient, err := recipientFromContext(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		unreadOnly, err := validators.ParseQueryBool(r, "unreadOnly", false)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		resp, err := svc.List(r.Context(), notifications.ListParams{
			Recipient:  recipient,
			Limit:      limit,
			Cursor:     strings.TrimSpace(r.URL.Query().Get("cursor")),
			UnreadOnly: unreadOnly,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, resp)
	}
}

// MarkNotificationRead flags one notification in the caller's inbox as read.
func MarkNotificationRead(svc notifications.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "notifications service unavailable"))
			return
		}

		recipient, err := recipientFromContext(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		notificationID, err := validators.URLParamUUID(r, "notificationId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.MarkRead(r.Context(), recipient, notificationID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]bool{"read": true})
	}
}

// MarkAllNotificationsRead flags the caller's whole inbox as read.
func MarkAllNotificationsRead(svc notifications.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "notifications service unavailable"))
			return
		}

		recipient, err := recipientFromContext(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		updated, err := svc.MarkAllRead(r.Context(), recipient)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]int64{"updated": updated})
	}
}

func recipientFromContext(r *http.Request) (notifications.Recipient, error) {
	principal, ok := middleware.PrincipalFromContext(r.Context())
	if !ok {
		return notifications.Recipient{}, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials")
	}
	switch principal.Role {
	case enums.ActorRoleCustomer:
		return notifications.Recipient{Type: enums.RecipientCustomer, ID: principal.UserID}, nil
	case enums.ActorRoleBeautician:
		if principal.EmployeeID != nil {
			return notifications.Recipient{Type: enums.RecipientEmployee, ID: *principal.EmployeeID}, nil
		}
	case enums.ActorRoleVendor:
		if principal.VendorID != nil {
			return notifications.Recipient{Type: enums.RecipientVendor, ID: *principal.VendorID}, nil
		}
	}
	return notifications.Recipient{}, pkgerrors.New(pkgerrors.CodeForbidden, "no inbox for this role")
}
