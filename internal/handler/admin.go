package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/marioblades-cmyk/flujo-de-caja-version-2/internal/apperr"
	"github.com/marioblades-cmyk/flujo-de-caja-version-2/internal/domain"
	"github.com/marioblades-cmyk/flujo-de-caja-version-2/internal/server/authctx"
	"github.com/marioblades-cmyk/flujo-de-caja-version-2/internal/service"
)

// AdminActions is the account-management surface behind the dispatch
// endpoint.
type AdminActions interface {
	ListUsers(ctx context.Context, callerID uuid.UUID) ([]domain.Account, error)
	UpdateProfile(ctx context.Context, callerID, targetID uuid.UUID, in service.UpdateProfileInput) error
	ToggleRole(ctx context.Context, callerID, targetID uuid.UUID, role string) (bool, error)
	DeleteAccount(ctx context.Context, callerID, targetID uuid.UUID) error
}

// AdminHandler exposes account management as a single action-dispatch
// endpoint: {action, ...payload} with action one of list, update_profile,
// toggle_role, delete_user.
type AdminHandler struct {
	Service AdminActions
}

func (h AdminHandler) RegisterRoutes(r chi.Router) {
	r.Post("/admin/users", h.dispatch)
}

type adminRequest struct {
	Action string  `json:"action"`
	UserID string  `json:"user_id"`
	Nombre *string `json:"nombre"`
	Active *bool   `json:"active"`
	Role   string  `json:"role"`
}

func (h AdminHandler) dispatch(w http.ResponseWriter, r *http.Request) {
	caller := authctx.FromContext(r.Context())
	if caller == nil {
		writeAdminError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req adminRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAdminError(w, http.StatusBadRequest, "invalid payload")
		return
	}

	switch req.Action {
	case "list":
		accounts, err := h.Service.ListUsers(r.Context(), caller.ID)
		if err != nil {
			writeAdminFailure(w, err)
			return
		}
		resp := make([]map[string]any, 0, len(accounts))
		for _, a := range accounts {
			resp = append(resp, map[string]any{
				"user_id":    a.UserID.String(),
				"nombre":     a.Nombre,
				"email":      a.Email,
				"active":     a.Active,
				"roles":      a.Roles,
				"created_at": a.CreatedAt,
			})
		}
		writeRawJSON(w, http.StatusOK, resp)

	case "update_profile":
		targetID, err := uuid.Parse(req.UserID)
		if err != nil {
			writeAdminError(w, http.StatusBadRequest, "invalid user_id")
			return
		}
		if err := h.Service.UpdateProfile(r.Context(), caller.ID, targetID, service.UpdateProfileInput{
			Nombre: req.Nombre,
			Active: req.Active,
		}); err != nil {
			writeAdminFailure(w, err)
			return
		}
		writeRawJSON(w, http.StatusOK, map[string]any{"success": true})

	case "toggle_role":
		targetID, err := uuid.Parse(req.UserID)
		if err != nil {
			writeAdminError(w, http.StatusBadRequest, "invalid user_id")
			return
		}
		granted, err := h.Service.ToggleRole(r.Context(), caller.ID, targetID, req.Role)
		if err != nil {
			writeAdminFailure(w, err)
			return
		}
		writeRawJSON(w, http.StatusOK, map[string]any{"success": true, "granted": granted})

	case "delete_user":
		targetID, err := uuid.Parse(req.UserID)
		if err != nil {
			writeAdminError(w, http.StatusBadRequest, "invalid user_id")
			return
		}
		if err := h.Service.DeleteAccount(r.Context(), caller.ID, targetID); err != nil {
			writeAdminFailure(w, err)
			return
		}
		writeRawJSON(w, http.StatusOK, map[string]any{"success": true})

	default:
		writeAdminError(w, http.StatusBadRequest, "unknown action")
	}
}

// Admin responses keep the {error: message} body shape the frontend already
// consumes, unlike the enveloped ledger endpoints.
func writeAdminError(w http.ResponseWriter, status int, message string) {
	writeRawJSON(w, status, map[string]string{"error": message})
}

func writeAdminFailure(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, apperr.ErrForbidden):
		writeAdminError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, apperr.ErrValidation):
		writeAdminError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, apperr.ErrNotFound):
		writeAdminError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, apperr.ErrConflict):
		writeAdminError(w, http.StatusConflict, err.Error())
	default:
		writeAdminError(w, http.StatusInternalServerError, "unexpected error")
	}
}
