package service

import (
	"github.com/shopspring/decimal"

	"github.com/marioblades-cmyk/flujo-de-caja-version-2/internal/domain"
)

// continuityTolerance is one minor currency unit: opening amounts within
// 0.01 of the previous closing balance count as matched.
var continuityTolerance = decimal.New(1, -2)

// Continuity is the verdict of comparing a shift's opening amount against
// the final balance of the shift before it.
type Continuity struct {
	Expected    decimal.Decimal
	Discrepancy decimal.Decimal
	Matched     bool
}

// ShiftReport is a shift with all its derived figures. Balances and
// continuity are recomputed from the movement log on every call and are
// authoritative over the snapshot captured at open time, which can go stale
// when past movements are edited.
type ShiftReport struct {
	Shift        domain.Shift
	TotalIncome  decimal.Decimal
	TotalExpense decimal.Decimal
	FinalBalance decimal.Decimal
	Continuity   *Continuity
}

// BuildReports derives balances and continuity for shifts given in
// ascending creation order. The first shift has no predecessor and carries
// no continuity verdict.
func BuildReports(shifts []domain.Shift) []ShiftReport {
	reports := make([]ShiftReport, 0, len(shifts))
	for i, s := range shifts {
		income, expense := domain.MovementTotals(s)
		report := ShiftReport{
			Shift:        s,
			TotalIncome:  income,
			TotalExpense: expense,
			FinalBalance: domain.FinalBalance(s),
		}
		if i > 0 {
			expected := reports[i-1].FinalBalance
			diff := s.MontoInicial.Sub(expected)
			report.Continuity = &Continuity{
				Expected:    expected,
				Discrepancy: diff,
				Matched:     diff.Abs().LessThan(continuityTolerance),
			}
		}
		reports = append(reports, report)
	}
	return reports
}
