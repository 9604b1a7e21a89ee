package handler

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/marioblades-cmyk/flujo-de-caja-version-2/internal/server/authctx"
	"github.com/marioblades-cmyk/flujo-de-caja-version-2/internal/service"
)

type AuditHandler struct {
	Admin service.AdminService
}

func (h AuditHandler) RegisterRoutes(r chi.Router) {
	r.Get("/audit", h.list)
}

func (h AuditHandler) list(w http.ResponseWriter, r *http.Request) {
	caller := authctx.FromContext(r.Context())
	if caller == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	entries, err := h.Admin.ListAudit(r.Context(), caller.ID, limit)
	if err != nil {
		writeAppError(w, err)
		return
	}
	resp := make([]map[string]any, 0, len(entries))
	for _, e := range entries {
		resp = append(resp, map[string]any{
			"id":       e.ID,
			"action":   e.Action,
			"detail":   e.Detail,
			"actor":    e.Actor,
			"loggedAt": e.LoggedAt,
		})
	}
	writeJSON(w, http.StatusOK, resp)
}
