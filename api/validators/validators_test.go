package validators

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgerrors "github.com/glowcall/glowcall-backend/pkg/errors"
)

type statusBody struct {
	Status string `json:"status" validate:"required,oneof=CONFIRMED COMPLETED"`
}

func TestDecodeJSONBodyValidates(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"status":"LOST"}`))
	var body statusBody
	err := DecodeJSONBody(req, &body)
	require.Error(t, err)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))

	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, map[string]string{"status": "must be one of CONFIRMED COMPLETED"}, typed.Details())
}

func TestDecodeJSONBodyRejectsUnknownFieldsAndEmptyBody(t *testing.T) {
	var body statusBody
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"status":"CONFIRMED","extra":1}`))
	assert.True(t, pkgerrors.IsCode(DecodeJSONBody(req, &body), pkgerrors.CodeValidation))

	req = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(""))
	assert.True(t, pkgerrors.IsCode(DecodeJSONBody(req, &body), pkgerrors.CodeValidation))
}

func TestDecodeOptionalJSONBodyAcceptsEmptyBody(t *testing.T) {
	var body struct {
		Reason string `json:"reason" validate:"max=10"`
	}
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(""))
	require.NoError(t, DecodeOptionalJSONBody(req, &body))
	assert.Empty(t, body.Reason)

	req = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"reason":"far too long for this"}`))
	assert.True(t, pkgerrors.IsCode(DecodeOptionalJSONBody(req, &body), pkgerrors.CodeValidation))
}

func TestParseQueryHelpers(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/?limit=5&unreadOnly=true&bad=x", nil)

	limit, err := ParseQueryInt(req, "limit", 25, 1, 100)
	require.NoError(t, err)
	assert.Equal(t, 5, limit)

	limit, err = ParseQueryInt(req, "missing", 25, 1, 100)
	require.NoError(t, err)
	assert.Equal(t, 25, limit)

	_, err = ParseQueryInt(req, "bad", 25, 1, 100)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))

	unread, err := ParseQueryBool(req, "unreadOnly", false)
	require.NoError(t, err)
	assert.True(t, unread)

	_, err = ParseQueryBool(req, "bad", false)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}

func TestURLParamUUID(t *testing.T) {
	id := uuid.New()
	withParam := func(value string) *http.Request {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		rc := chi.NewRouteContext()
		rc.URLParams.Add("bookingId", value)
		return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rc))
	}

	got, err := URLParamUUID(withParam(id.String()), "bookingId")
	require.NoError(t, err)
	assert.Equal(t, id, got)

	_, err = URLParamUUID(withParam("nope"), "bookingId")
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))

	_, err = URLParamUUID(httptest.NewRequest(http.MethodGet, "/", nil), "bookingId")
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}

func TestSanitizeString(t *testing.T) {
	assert.Equal(t, "abc", SanitizeString("  abcdef ", 3))
	assert.Equal(t, "abcdef", SanitizeString("  abcdef ", 0))
}
