package handler

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/xuri/excelize/v2"

	"github.com/marioblades-cmyk/flujo-de-caja-version-2/internal/service"
)

// ExportHandler downloads the shift history with derived balances and
// continuity discrepancies as csv or xlsx.
type ExportHandler struct {
	Service service.ShiftService
}

func (h ExportHandler) RegisterRoutes(r chi.Router) {
	r.Get("/shifts/export", h.export)
}

func (h ExportHandler) export(w http.ResponseWriter, r *http.Request) {
	format := r.URL.Query().Get("format")
	if format == "" {
		format = "csv"
	}

	startDate, endDate, err := fechaWindow(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	reports, err := h.Service.List(r.Context(), startDate, endDate)
	if err != nil {
		writeAppError(w, err)
		return
	}

	filenameSuffix := time.Now().Format("20060102_150405")
	if startDate != nil && endDate != nil {
		filenameSuffix = fmt.Sprintf("%s_%s", startDate.Format("20060102"), endDate.Format("20060102"))
	}

	switch format {
	case "csv":
		data, err := exportShiftsCSV(reports)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		w.Header().Set("Content-Type", "text/csv; charset=utf-8")
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=\"turnos_%s.csv\"", filenameSuffix))
		_, _ = w.Write(data)
	case "xlsx", "excel":
		data, err := exportShiftsXLSX(reports)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=\"turnos_%s.xlsx\"", filenameSuffix))
		_, _ = w.Write(data)
	default:
		writeError(w, http.StatusBadRequest, "invalid format (use csv or xlsx)")
	}
}

func exportShiftsCSV(reports []service.ShiftReport) ([]byte, error) {
	buf := new(bytes.Buffer)
	w := csv.NewWriter(buf)
	_ = w.Write(shiftExportHeader)
	for _, rep := range reports {
		_ = w.Write(shiftExportRow(rep))
	}
	w.Flush()
	return buf.Bytes(), w.Error()
}

func exportShiftsXLSX(reports []service.ShiftReport) ([]byte, error) {
	f := excelize.NewFile()
	sheet := "Turnos"
	index, err := f.NewSheet(sheet)
	if err != nil {
		return nil, err
	}
	f.DeleteSheet("Sheet1")
	f.SetActiveSheet(index)

	for c, v := range shiftExportHeader {
		cell, _ := excelize.CoordinatesToCellName(c+1, 1)
		_ = f.SetCellValue(sheet, cell, v)
	}
	for r, rep := range reports {
		for c, v := range shiftExportRow(rep) {
			cell, _ := excelize.CoordinatesToCellName(c+1, r+2)
			_ = f.SetCellValue(sheet, cell, v)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

var shiftExportHeader = []string{
	"fecha", "turno", "responsable", "apertura", "cierre", "monto_inicial",
	"ingresos", "egresos", "saldo_final", "movimientos", "descuadre",
}

func shiftExportRow(rep service.ShiftReport) []string {
	s := rep.Shift
	cierre := ""
	if s.HoraCierre != nil {
		cierre = *s.HoraCierre
	}
	descuadre := ""
	if rep.Continuity != nil {
		descuadre = rep.Continuity.Discrepancy.StringFixed(2)
	}
	return []string{
		s.Fecha.Format(fechaLayout),
		string(s.Turno),
		s.Responsable,
		s.HoraApertura,
		cierre,
		s.MontoInicial.StringFixed(2),
		rep.TotalIncome.StringFixed(2),
		rep.TotalExpense.StringFixed(2),
		rep.FinalBalance.StringFixed(2),
		strconv.Itoa(len(s.Transactions)),
		descuadre,
	}
}
