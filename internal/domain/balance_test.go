package domain

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func TestFinalBalanceEmptyShift(t *testing.T) {
	s := Shift{MontoInicial: dec("500.00")}
	require.True(t, FinalBalance(s).Equal(dec("500.00")))
}

func TestFinalBalanceIncomeAndExpense(t *testing.T) {
	s := Shift{
		MontoInicial: dec("500.00"),
		Transactions: []Transaction{
			{Tipo: MovementIncome, Monto: dec("100.00")},
			{Tipo: MovementExpense, Monto: dec("30.00")},
		},
	}
	require.True(t, FinalBalance(s).Equal(dec("570.00")))
}

func TestFinalBalanceOrderIndependent(t *testing.T) {
	a := Shift{
		MontoInicial: dec("10.50"),
		Transactions: []Transaction{
			{Tipo: MovementExpense, Monto: dec("3.25")},
			{Tipo: MovementIncome, Monto: dec("7.10")},
			{Tipo: MovementIncome, Monto: dec("0.90")},
		},
	}
	b := Shift{
		MontoInicial: a.MontoInicial,
		Transactions: []Transaction{a.Transactions[2], a.Transactions[0], a.Transactions[1]},
	}
	require.True(t, FinalBalance(a).Equal(FinalBalance(b)))
}

func TestFinalBalanceCanGoNegative(t *testing.T) {
	s := Shift{
		MontoInicial: dec("5.00"),
		Transactions: []Transaction{
			{Tipo: MovementExpense, Monto: dec("8.00")},
		},
	}
	require.True(t, FinalBalance(s).Equal(dec("-3.00")))
}

func TestFinalBalanceExactDecimals(t *testing.T) {
	// 0.10 added ten times must be exactly 1.00, no binary drift.
	s := Shift{MontoInicial: dec("0")}
	for i := 0; i < 10; i++ {
		s.Transactions = append(s.Transactions, Transaction{Tipo: MovementIncome, Monto: dec("0.10")})
	}
	require.True(t, FinalBalance(s).Equal(dec("1.00")))
}

func TestMovementTotals(t *testing.T) {
	s := Shift{
		MontoInicial: dec("100"),
		Transactions: []Transaction{
			{Tipo: MovementIncome, Monto: dec("20.00")},
			{Tipo: MovementIncome, Monto: dec("5.50")},
			{Tipo: MovementExpense, Monto: dec("12.25")},
		},
	}
	income, expense := MovementTotals(s)
	require.True(t, income.Equal(dec("25.50")))
	require.True(t, expense.Equal(dec("12.25")))
}

func TestEnumHelpers(t *testing.T) {
	require.True(t, ValidPeriod(PeriodMorning))
	require.True(t, ValidPeriod(PeriodFullDay))
	require.False(t, ValidPeriod("NIGHT"))

	require.True(t, ValidMovementKind(MovementIncome))
	require.False(t, ValidMovementKind("TRANSFER"))

	require.True(t, KnownResponsable("MARIO"))
	require.False(t, KnownResponsable("PEDRO"))
}
