package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/marioblades-cmyk/flujo-de-caja-version-2/internal/apperr"
	"github.com/marioblades-cmyk/flujo-de-caja-version-2/internal/domain"
	"github.com/marioblades-cmyk/flujo-de-caja-version-2/internal/server/authctx"
	"github.com/marioblades-cmyk/flujo-de-caja-version-2/internal/service"
)

type stubAdminActions struct {
	listOut []domain.Account
	listErr error

	updateErr    error
	updateCaller uuid.UUID
	updateTarget uuid.UUID

	toggleGranted bool
	toggleErr     error
	toggleRole    string

	deleteErr    error
	deleteTarget uuid.UUID
}

func (s *stubAdminActions) ListUsers(_ context.Context, _ uuid.UUID) ([]domain.Account, error) {
	return s.listOut, s.listErr
}

func (s *stubAdminActions) UpdateProfile(_ context.Context, callerID, targetID uuid.UUID, _ service.UpdateProfileInput) error {
	s.updateCaller = callerID
	s.updateTarget = targetID
	return s.updateErr
}

func (s *stubAdminActions) ToggleRole(_ context.Context, _, _ uuid.UUID, role string) (bool, error) {
	s.toggleRole = role
	return s.toggleGranted, s.toggleErr
}

func (s *stubAdminActions) DeleteAccount(_ context.Context, _, targetID uuid.UUID) error {
	s.deleteTarget = targetID
	return s.deleteErr
}

func adminDispatch(t *testing.T, actions AdminActions, caller *authctx.CurrentUser, body string) *httptest.ResponseRecorder {
	t.Helper()
	r := chi.NewRouter()
	AdminHandler{Service: actions}.RegisterRoutes(r)

	req := httptest.NewRequest(http.MethodPost, "/admin/users", strings.NewReader(body))
	if caller != nil {
		req = req.WithContext(authctx.WithCurrentUser(req.Context(), *caller))
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func errorBody(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body["error"]
}

func TestAdminDispatchRequiresIdentity(t *testing.T) {
	rec := adminDispatch(t, &stubAdminActions{}, nil, `{"action":"list"}`)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.Equal(t, "unauthorized", errorBody(t, rec))
}

func TestAdminDispatchUnknownAction(t *testing.T) {
	caller := &authctx.CurrentUser{ID: uuid.New()}
	rec := adminDispatch(t, &stubAdminActions{}, caller, `{"action":"promote"}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Equal(t, "unknown action", errorBody(t, rec))
}

func TestAdminDispatchInvalidPayload(t *testing.T) {
	caller := &authctx.CurrentUser{ID: uuid.New()}
	rec := adminDispatch(t, &stubAdminActions{}, caller, `{"action":`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAdminDispatchForbidden(t *testing.T) {
	caller := &authctx.CurrentUser{ID: uuid.New()}
	actions := &stubAdminActions{listErr: apperr.Forbidden("admin role required")}

	rec := adminDispatch(t, actions, caller, `{"action":"list"}`)
	require.Equal(t, http.StatusForbidden, rec.Code)
	require.Equal(t, "admin role required", errorBody(t, rec))
}

func TestAdminDispatchList(t *testing.T) {
	caller := &authctx.CurrentUser{ID: uuid.New()}
	actions := &stubAdminActions{listOut: []domain.Account{
		{UserID: uuid.New(), Nombre: "Mario", Email: "mario@example.com", Active: true, Roles: []string{"admin"}},
	}}

	rec := adminDispatch(t, actions, caller, `{"action":"list"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var body []map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body, 1)
	require.Equal(t, "Mario", body[0]["nombre"])
	require.Equal(t, "mario@example.com", body[0]["email"])
}

func TestAdminDispatchUpdateProfile(t *testing.T) {
	caller := &authctx.CurrentUser{ID: uuid.New()}
	target := uuid.New()
	actions := &stubAdminActions{}

	rec := adminDispatch(t, actions, caller,
		`{"action":"update_profile","user_id":"`+target.String()+`","nombre":"Mauri"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, caller.ID, actions.updateCaller)
	require.Equal(t, target, actions.updateTarget)

	rec = adminDispatch(t, actions, caller, `{"action":"update_profile","user_id":"not-a-uuid"}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Equal(t, "invalid user_id", errorBody(t, rec))
}

func TestAdminDispatchToggleRole(t *testing.T) {
	caller := &authctx.CurrentUser{ID: uuid.New()}
	actions := &stubAdminActions{toggleGranted: true}

	rec := adminDispatch(t, actions, caller,
		`{"action":"toggle_role","user_id":"`+uuid.NewString()+`","role":"admin"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "admin", actions.toggleRole)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Equal(t, true, body["granted"])
}

func TestAdminDispatchToggleRoleFailures(t *testing.T) {
	caller := &authctx.CurrentUser{ID: uuid.New()}

	// A self-admin revoke refusal is a validation error and maps to 400.
	actions := &stubAdminActions{toggleErr: apperr.Validation("cannot remove your own admin role")}
	rec := adminDispatch(t, actions, caller,
		`{"action":"toggle_role","user_id":"`+caller.ID.String()+`","role":"admin"}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Equal(t, "cannot remove your own admin role", errorBody(t, rec))

	// A lost concurrent-grant race maps to 409.
	actions = &stubAdminActions{toggleErr: apperr.Conflict("role was granted concurrently")}
	rec = adminDispatch(t, actions, caller,
		`{"action":"toggle_role","user_id":"`+uuid.NewString()+`","role":"admin"}`)
	require.Equal(t, http.StatusConflict, rec.Code)
	require.Equal(t, "role was granted concurrently", errorBody(t, rec))
}

func TestAdminDispatchDeleteUser(t *testing.T) {
	caller := &authctx.CurrentUser{ID: uuid.New()}
	target := uuid.New()
	actions := &stubAdminActions{}

	rec := adminDispatch(t, actions, caller,
		`{"action":"delete_user","user_id":"`+target.String()+`"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, target, actions.deleteTarget)

	actions.deleteErr = apperr.Validation("cannot delete yourself")
	rec = adminDispatch(t, actions, caller,
		`{"action":"delete_user","user_id":"`+caller.ID.String()+`"}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Equal(t, "cannot delete yourself", errorBody(t, rec))
}
