package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/marioblades-cmyk/flujo-de-caja-version-2/internal/domain"
	"github.com/marioblades-cmyk/flujo-de-caja-version-2/internal/service"
)

type TransactionHandler struct {
	Service service.ShiftService
}

func (h TransactionHandler) RegisterRoutes(r chi.Router) {
	r.Post("/shifts/{id}/transactions", h.add)
	r.Put("/transactions/{id}", h.update)
	r.Delete("/transactions/{id}", h.delete)
}

func (h TransactionHandler) add(w http.ResponseWriter, r *http.Request) {
	shiftID, ok := shiftID(w, r)
	if !ok {
		return
	}
	var req struct {
		Concepto string `json:"concepto"`
		Tipo     string `json:"tipo"`
		Monto    string `json:"monto"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	monto, err := decimal.NewFromString(req.Monto)
	if err != nil {
		writeError(w, http.StatusBadRequest, "monto must be a decimal number")
		return
	}
	tr, err := h.Service.AddMovement(r.Context(), shiftID, service.AddMovementInput{
		Concepto: req.Concepto,
		Tipo:     domain.MovementKind(req.Tipo),
		Monto:    monto,
	})
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, movementPayload(*tr))
}

func (h TransactionHandler) update(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid transaction id")
		return
	}
	var req struct {
		Concepto *string `json:"concepto"`
		Tipo     *string `json:"tipo"`
		Monto    *string `json:"monto"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	var in service.UpdateMovementInput
	in.Concepto = req.Concepto
	if req.Tipo != nil {
		tipo := domain.MovementKind(*req.Tipo)
		in.Tipo = &tipo
	}
	if req.Monto != nil {
		monto, err := decimal.NewFromString(*req.Monto)
		if err != nil {
			writeError(w, http.StatusBadRequest, "monto must be a decimal number")
			return
		}
		in.Monto = &monto
	}
	if err := h.Service.UpdateMovement(r.Context(), id, in); err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h TransactionHandler) delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid transaction id")
		return
	}
	if err := h.Service.DeleteMovement(r.Context(), id); err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}
