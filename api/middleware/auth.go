package middleware

import (
	"net/http"
	"strings"

	"github.com/glowcall/glowcall-backend/api/responses"
	pkgAuth "github.com/glowcall/glowcall-backend/pkg/auth"
	"github.com/glowcall/glowcall-backend/pkg/config"
	pkgerrors "github.com/glowcall/glowcall-backend/pkg/errors"
	"github.com/glowcall/glowcall-backend/pkg/logger"
)

// Auth validates a bearer token and seeds the request context with the principal.
func Auth(cfg config.JWTConfig, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := bearerToken(r.Header.Get("Authorization"))
			if token == "" {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials"))
				return
			}

			claims, err := pkgAuth.ParseAccessToken(cfg, token)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid token"))
				return
			}

			ctx := WithPrincipal(r.Context(), Principal{
				UserID:     claims.UserID,
				Role:       claims.Role,
				VendorID:   claims.VendorID,
				EmployeeID: claims.EmployeeID,
			})

			if logg != nil {
				ctx = logg.WithUserID(ctx, claims.UserID.String())
				ctx = logg.WithActorRole(ctx, string(claims.Role))
				if claims.VendorID != nil {
					ctx = logg.WithVendorID(ctx, claims.VendorID.String())
				}
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func bearerToken(header string) string {
	raw := strings.TrimSpace(header)
	if len(raw) > 7 && strings.EqualFold(raw[:7], "bearer ") {
		raw = raw[7:]
	}
	return strings.TrimSpace(raw)
}
