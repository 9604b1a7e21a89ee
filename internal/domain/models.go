package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Enumerations
const (
	PeriodMorning   ShiftPeriod = "MORNING"
	PeriodAfternoon ShiftPeriod = "AFTERNOON"
	PeriodFullDay   ShiftPeriod = "FULL_DAY"

	MovementIncome  MovementKind = "INGRESO"
	MovementExpense MovementKind = "EGRESO"

	RoleAdmin = "admin"
)

type ShiftPeriod string
type MovementKind string

// Responsables is the closed set of operators allowed to run the register.
var Responsables = []string{"MARIO", "MARITO", "ALITO", "MAURI"}

func ValidPeriod(p ShiftPeriod) bool {
	switch p {
	case PeriodMorning, PeriodAfternoon, PeriodFullDay:
		return true
	}
	return false
}

func ValidMovementKind(k MovementKind) bool {
	return k == MovementIncome || k == MovementExpense
}

func KnownResponsable(name string) bool {
	for _, r := range Responsables {
		if r == name {
			return true
		}
	}
	return false
}

// Shift is one operator's accountable session at the register. At most one
// shift may be open (Cerrado=false) at any time; the store enforces this.
type Shift struct {
	ID                 uuid.UUID
	Fecha              time.Time
	Turno              ShiftPeriod
	Responsable        string
	MontoInicial       decimal.Decimal
	MontoFinalAnterior *decimal.Decimal
	Transactions       []Transaction
	Cerrado            bool
	HoraApertura       string
	HoraCierre         *string
	CreatedAt          time.Time
}

// Transaction is a single income or expense movement inside a shift. It has
// no lifecycle of its own and is removed together with its shift.
type Transaction struct {
	ID        uuid.UUID
	ShiftID   uuid.UUID
	Concepto  string
	Tipo      MovementKind
	Monto     decimal.Decimal
	Hora      string
	CreatedAt time.Time
}

type User struct {
	ID           uuid.UUID
	Email        string
	Nombre       string
	PasswordHash *string
	CreatedAt    time.Time
}

type Profile struct {
	UserID    uuid.UUID
	Nombre    string
	Active    bool
	CreatedAt time.Time
}

// Account is the admin listing view: profile joined with roles and the
// identity record's email.
type Account struct {
	UserID    uuid.UUID
	Nombre    string
	Email     string
	Active    bool
	Roles     []string
	CreatedAt time.Time
}

type AuditEntry struct {
	ID       int64
	Action   string
	Detail   string
	Actor    string
	LoggedAt time.Time
}
