package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/marioblades-cmyk/flujo-de-caja-version-2/internal/domain"
	"github.com/marioblades-cmyk/flujo-de-caja-version-2/internal/service"
)

const fechaLayout = "2006-01-02"

type ShiftHandler struct {
	Service service.ShiftService
}

func (h ShiftHandler) RegisterRoutes(r chi.Router) {
	r.Post("/shifts/open", h.open)
	r.Get("/shifts", h.list)
	r.Get("/shifts/active", h.active)
	r.Get("/shifts/summary", h.summary)
	r.Get("/shifts/{id}", h.get)
	r.Post("/shifts/{id}/close", h.close)
	r.Post("/shifts/{id}/reopen", h.reopen)
	r.Put("/shifts/{id}", h.editHeader)
	r.Delete("/shifts/{id}", h.delete)
}

func (h ShiftHandler) open(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Turno        string `json:"turno"`
		Responsable  string `json:"responsable"`
		MontoInicial string `json:"montoInicial"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	monto, err := decimal.NewFromString(req.MontoInicial)
	if err != nil {
		writeError(w, http.StatusBadRequest, "montoInicial must be a decimal number")
		return
	}
	shift, err := h.Service.Open(r.Context(), service.OpenShiftInput{
		Turno:        domain.ShiftPeriod(req.Turno),
		Responsable:  req.Responsable,
		MontoInicial: monto,
	})
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, shiftPayload(service.ShiftReport{
		Shift:        *shift,
		FinalBalance: domain.FinalBalance(*shift),
	}))
}

func (h ShiftHandler) list(w http.ResponseWriter, r *http.Request) {
	from, to, err := fechaWindow(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	reports, err := h.Service.List(r.Context(), from, to)
	if err != nil {
		writeAppError(w, err)
		return
	}
	resp := make([]map[string]any, 0, len(reports))
	for _, rep := range reports {
		resp = append(resp, shiftPayload(rep))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h ShiftHandler) get(w http.ResponseWriter, r *http.Request) {
	id, ok := shiftID(w, r)
	if !ok {
		return
	}
	report, err := h.Service.Get(r.Context(), id)
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, shiftPayload(*report))
}

func (h ShiftHandler) active(w http.ResponseWriter, r *http.Request) {
	report, err := h.Service.Active(r.Context())
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, shiftPayload(*report))
}

func (h ShiftHandler) summary(w http.ResponseWriter, r *http.Request) {
	s, err := h.Service.Summary(r.Context())
	if err != nil {
		writeAppError(w, err)
		return
	}
	payload := map[string]any{
		"shiftCount":   s.ShiftCount,
		"totalIngreso": s.TotalIncome.String(),
		"totalEgreso":  s.TotalExpense.String(),
	}
	if s.ActiveBalance != nil {
		payload["activeBalance"] = s.ActiveBalance.String()
	}
	writeJSON(w, http.StatusOK, payload)
}

func (h ShiftHandler) close(w http.ResponseWriter, r *http.Request) {
	id, ok := shiftID(w, r)
	if !ok {
		return
	}
	if err := h.Service.Close(r.Context(), id); err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "closed"})
}

func (h ShiftHandler) reopen(w http.ResponseWriter, r *http.Request) {
	id, ok := shiftID(w, r)
	if !ok {
		return
	}
	if err := h.Service.Reopen(r.Context(), id); err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "open"})
}

func (h ShiftHandler) editHeader(w http.ResponseWriter, r *http.Request) {
	id, ok := shiftID(w, r)
	if !ok {
		return
	}
	var req struct {
		Turno        *string `json:"turno"`
		Responsable  *string `json:"responsable"`
		MontoInicial *string `json:"montoInicial"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	var in service.EditShiftHeaderInput
	if req.Turno != nil {
		turno := domain.ShiftPeriod(*req.Turno)
		in.Turno = &turno
	}
	in.Responsable = req.Responsable
	if req.MontoInicial != nil {
		monto, err := decimal.NewFromString(*req.MontoInicial)
		if err != nil {
			writeError(w, http.StatusBadRequest, "montoInicial must be a decimal number")
			return
		}
		in.MontoInicial = &monto
	}
	if err := h.Service.EditHeader(r.Context(), id, in); err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h ShiftHandler) delete(w http.ResponseWriter, r *http.Request) {
	id, ok := shiftID(w, r)
	if !ok {
		return
	}
	if err := h.Service.Delete(r.Context(), id); err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// fechaWindow reads the optional startDate/endDate query filters applied to
// shift listings and exports.
func fechaWindow(r *http.Request) (from, to *time.Time, err error) {
	if from, err = parseFecha(r, "startDate"); err != nil {
		return nil, nil, errors.New("invalid startDate")
	}
	if to, err = parseFecha(r, "endDate"); err != nil {
		return nil, nil, errors.New("invalid endDate")
	}
	if from != nil && to != nil && from.After(*to) {
		return nil, nil, errors.New("startDate must be before endDate")
	}
	return from, to, nil
}

func parseFecha(r *http.Request, key string) (*time.Time, error) {
	value := r.URL.Query().Get(key)
	if value == "" {
		return nil, nil
	}
	parsed, err := time.Parse(fechaLayout, value)
	if err != nil {
		return nil, err
	}
	return &parsed, nil
}

func shiftID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid shift id")
		return uuid.Nil, false
	}
	return id, true
}

func shiftPayload(rep service.ShiftReport) map[string]any {
	s := rep.Shift
	txs := make([]map[string]any, 0, len(s.Transactions))
	for _, t := range s.Transactions {
		txs = append(txs, movementPayload(t))
	}
	payload := map[string]any{
		"id":           s.ID.String(),
		"fecha":        s.Fecha.Format(fechaLayout),
		"turno":        string(s.Turno),
		"responsable":  s.Responsable,
		"montoInicial": s.MontoInicial.String(),
		"cerrado":      s.Cerrado,
		"horaApertura": s.HoraApertura,
		"horaCierre":   s.HoraCierre,
		"transactions": txs,
		"totalIngreso": rep.TotalIncome.String(),
		"totalEgreso":  rep.TotalExpense.String(),
		"saldoFinal":   rep.FinalBalance.String(),
	}
	if s.MontoFinalAnterior != nil {
		payload["montoFinalAnterior"] = s.MontoFinalAnterior.String()
	}
	if rep.Continuity != nil {
		payload["continuity"] = map[string]any{
			"expected":    rep.Continuity.Expected.String(),
			"discrepancy": rep.Continuity.Discrepancy.String(),
			"matched":     rep.Continuity.Matched,
		}
	}
	return payload
}

func movementPayload(t domain.Transaction) map[string]any {
	return map[string]any{
		"id":       t.ID.String(),
		"concepto": t.Concepto,
		"tipo":     string(t.Tipo),
		"monto":    t.Monto.String(),
		"hora":     t.Hora,
	}
}
