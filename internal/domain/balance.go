package domain

import "github.com/shopspring/decimal"

// FinalBalance derives a shift's balance from its transaction list: opening
// amount plus income minus expense. Balances are never persisted; callers
// recompute on every read so edits to past movements are always reflected.
func FinalBalance(s Shift) decimal.Decimal {
	saldo := s.MontoInicial
	for _, t := range s.Transactions {
		if t.Tipo == MovementIncome {
			saldo = saldo.Add(t.Monto)
		} else {
			saldo = saldo.Sub(t.Monto)
		}
	}
	return saldo
}

// MovementTotals sums the shift's income and expense sides separately.
func MovementTotals(s Shift) (income, expense decimal.Decimal) {
	for _, t := range s.Transactions {
		if t.Tipo == MovementIncome {
			income = income.Add(t.Monto)
		} else {
			expense = expense.Add(t.Monto)
		}
	}
	return income, expense
}
