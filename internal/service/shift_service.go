package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/marioblades-cmyk/flujo-de-caja-version-2/internal/apperr"
	"github.com/marioblades-cmyk/flujo-de-caja-version-2/internal/domain"
	"github.com/marioblades-cmyk/flujo-de-caja-version-2/internal/repository"
)

const horaLayout = "15:04"

// ShiftStore is the ledger-store surface the lifecycle manager needs.
type ShiftStore interface {
	Open(ctx context.Context, in repository.OpenShiftInput) (*domain.Shift, error)
	Close(ctx context.Context, id uuid.UUID, horaCierre string) error
	Reopen(ctx context.Context, id uuid.UUID) error
	Delete(ctx context.Context, id uuid.UUID) error
	UpdateHeader(ctx context.Context, id uuid.UUID, in repository.UpdateShiftHeaderInput) error
	Get(ctx context.Context, id uuid.UUID) (*domain.Shift, error)
	List(ctx context.Context) ([]domain.Shift, error)
	Active(ctx context.Context) (*domain.Shift, error)
	LastClosed(ctx context.Context) (*domain.Shift, error)
	Summary(ctx context.Context) (repository.LedgerSummary, error)
}

// MovementStore is the store surface for individual movements.
type MovementStore interface {
	Add(ctx context.Context, in repository.AddTransactionInput) (*domain.Transaction, error)
	Update(ctx context.Context, id uuid.UUID, in repository.UpdateTransactionInput) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// AuditStore records mutations for later review. Appends are best-effort.
type AuditStore interface {
	Append(ctx context.Context, action, detail, actor string) error
}

// ShiftService enforces the shift lifecycle and movement validation on top
// of the store.
type ShiftService struct {
	Shifts    ShiftStore
	Movements MovementStore
	Audit     AuditStore
	Logger    *slog.Logger
	Now       func() time.Time
}

func (s ShiftService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

type OpenShiftInput struct {
	Turno        domain.ShiftPeriod
	Responsable  string
	MontoInicial decimal.Decimal
}

// Open starts a new shift, snapshotting the previous closing balance as an
// audit field. The store rejects a second open shift atomically; this method
// performs no existence pre-check of its own.
func (s ShiftService) Open(ctx context.Context, in OpenShiftInput) (*domain.Shift, error) {
	if !domain.ValidPeriod(in.Turno) {
		return nil, apperr.Validation("unknown shift period")
	}
	if !domain.KnownResponsable(in.Responsable) {
		return nil, apperr.Validation("unknown responsable")
	}
	if in.MontoInicial.IsNegative() {
		return nil, apperr.Validation("opening amount cannot be negative")
	}

	var snapshot *decimal.Decimal
	last, err := s.Shifts.LastClosed(ctx)
	switch {
	case err == nil:
		balance := domain.FinalBalance(*last)
		snapshot = &balance
	case errors.Is(err, apperr.ErrNotFound):
		// first shift ever: no previous closing balance
	default:
		return nil, err
	}

	now := s.now()
	shift, err := s.Shifts.Open(ctx, repository.OpenShiftInput{
		Fecha:              now,
		Turno:              in.Turno,
		Responsable:        in.Responsable,
		MontoInicial:       in.MontoInicial,
		MontoFinalAnterior: snapshot,
		HoraApertura:       now.Format(horaLayout),
	})
	if err != nil {
		return nil, err
	}
	s.audit(ctx, "shift_opened", fmt.Sprintf("turno=%s monto_inicial=%s", in.Turno, in.MontoInicial), in.Responsable)
	return shift, nil
}

func (s ShiftService) Close(ctx context.Context, id uuid.UUID) error {
	if err := s.Shifts.Close(ctx, id, s.now().Format(horaLayout)); err != nil {
		return err
	}
	s.audit(ctx, "shift_closed", "shift="+id.String(), "")
	return nil
}

func (s ShiftService) Reopen(ctx context.Context, id uuid.UUID) error {
	if err := s.Shifts.Reopen(ctx, id); err != nil {
		return err
	}
	s.audit(ctx, "shift_reopened", "shift="+id.String(), "")
	return nil
}

func (s ShiftService) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.Shifts.Delete(ctx, id); err != nil {
		return err
	}
	s.audit(ctx, "shift_deleted", "shift="+id.String(), "")
	return nil
}

type EditShiftHeaderInput struct {
	Turno        *domain.ShiftPeriod
	Responsable  *string
	MontoInicial *decimal.Decimal
}

// EditHeader partially updates the mutable header fields on any shift,
// open or closed.
func (s ShiftService) EditHeader(ctx context.Context, id uuid.UUID, in EditShiftHeaderInput) error {
	if in.Turno != nil && !domain.ValidPeriod(*in.Turno) {
		return apperr.Validation("unknown shift period")
	}
	if in.Responsable != nil && !domain.KnownResponsable(*in.Responsable) {
		return apperr.Validation("unknown responsable")
	}
	if in.MontoInicial != nil && in.MontoInicial.IsNegative() {
		return apperr.Validation("opening amount cannot be negative")
	}
	if err := s.Shifts.UpdateHeader(ctx, id, repository.UpdateShiftHeaderInput{
		Turno:        in.Turno,
		Responsable:  in.Responsable,
		MontoInicial: in.MontoInicial,
	}); err != nil {
		return err
	}
	s.audit(ctx, "shift_header_edited", "shift="+id.String(), "")
	return nil
}

type AddMovementInput struct {
	Concepto string
	Tipo     domain.MovementKind
	Monto    decimal.Decimal
}

// AddMovement appends a movement; the shift may be open or closed.
func (s ShiftService) AddMovement(ctx context.Context, shiftID uuid.UUID, in AddMovementInput) (*domain.Transaction, error) {
	if strings.TrimSpace(in.Concepto) == "" {
		return nil, apperr.Validation("concepto is required")
	}
	if !domain.ValidMovementKind(in.Tipo) {
		return nil, apperr.Validation("tipo must be INGRESO or EGRESO")
	}
	if !in.Monto.IsPositive() {
		return nil, apperr.Validation("monto must be positive")
	}
	tr, err := s.Movements.Add(ctx, repository.AddTransactionInput{
		ShiftID:  shiftID,
		Concepto: strings.TrimSpace(in.Concepto),
		Tipo:     in.Tipo,
		Monto:    in.Monto,
		Hora:     s.now().Format(horaLayout),
	})
	if err != nil {
		return nil, err
	}
	s.audit(ctx, "movement_added", fmt.Sprintf("shift=%s tipo=%s monto=%s", shiftID, in.Tipo, in.Monto), "")
	return tr, nil
}

type UpdateMovementInput struct {
	Concepto *string
	Tipo     *domain.MovementKind
	Monto    *decimal.Decimal
}

func (s ShiftService) UpdateMovement(ctx context.Context, id uuid.UUID, in UpdateMovementInput) error {
	if in.Concepto != nil && strings.TrimSpace(*in.Concepto) == "" {
		return apperr.Validation("concepto cannot be empty")
	}
	if in.Tipo != nil && !domain.ValidMovementKind(*in.Tipo) {
		return apperr.Validation("tipo must be INGRESO or EGRESO")
	}
	if in.Monto != nil && !in.Monto.IsPositive() {
		return apperr.Validation("monto must be positive")
	}
	if err := s.Movements.Update(ctx, id, repository.UpdateTransactionInput{
		Concepto: in.Concepto,
		Tipo:     in.Tipo,
		Monto:    in.Monto,
	}); err != nil {
		return err
	}
	s.audit(ctx, "movement_updated", "movement="+id.String(), "")
	return nil
}

func (s ShiftService) DeleteMovement(ctx context.Context, id uuid.UUID) error {
	if err := s.Movements.Delete(ctx, id); err != nil {
		return err
	}
	s.audit(ctx, "movement_deleted", "movement="+id.String(), "")
	return nil
}

// List returns shifts oldest-first with derived balances and the continuity
// verdict of each against its predecessor. Continuity needs the full
// chronological list: the date window is applied to the derived reports, not
// the query, so a windowed first shift keeps its verdict against the true
// predecessor outside the window.
func (s ShiftService) List(ctx context.Context, from, to *time.Time) ([]ShiftReport, error) {
	shifts, err := s.Shifts.List(ctx)
	if err != nil {
		return nil, err
	}
	reports := BuildReports(shifts)
	if from == nil && to == nil {
		return reports, nil
	}
	windowed := make([]ShiftReport, 0, len(reports))
	for _, rep := range reports {
		if from != nil && rep.Shift.Fecha.Before(*from) {
			continue
		}
		if to != nil && rep.Shift.Fecha.After(*to) {
			continue
		}
		windowed = append(windowed, rep)
	}
	return windowed, nil
}

// Get returns one shift with its derived balance.
func (s ShiftService) Get(ctx context.Context, id uuid.UUID) (*ShiftReport, error) {
	shift, err := s.Shifts.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	income, expense := domain.MovementTotals(*shift)
	return &ShiftReport{
		Shift:        *shift,
		TotalIncome:  income,
		TotalExpense: expense,
		FinalBalance: domain.FinalBalance(*shift),
	}, nil
}

// Active returns the open shift with its running balance.
func (s ShiftService) Active(ctx context.Context) (*ShiftReport, error) {
	shift, err := s.Shifts.Active(ctx)
	if err != nil {
		return nil, err
	}
	income, expense := domain.MovementTotals(*shift)
	return &ShiftReport{
		Shift:        *shift,
		TotalIncome:  income,
		TotalExpense: expense,
		FinalBalance: domain.FinalBalance(*shift),
	}, nil
}

type LedgerSummary struct {
	ShiftCount    int64
	TotalIncome   decimal.Decimal
	TotalExpense  decimal.Decimal
	ActiveBalance *decimal.Decimal
}

// Summary aggregates the whole ledger plus the running balance of the
// active shift, when there is one.
func (s ShiftService) Summary(ctx context.Context) (LedgerSummary, error) {
	agg, err := s.Shifts.Summary(ctx)
	if err != nil {
		return LedgerSummary{}, err
	}
	out := LedgerSummary{
		ShiftCount:   agg.ShiftCount,
		TotalIncome:  agg.TotalIncome,
		TotalExpense: agg.TotalExpense,
	}
	active, err := s.Shifts.Active(ctx)
	switch {
	case err == nil:
		balance := domain.FinalBalance(*active)
		out.ActiveBalance = &balance
	case errors.Is(err, apperr.ErrNotFound):
	default:
		return LedgerSummary{}, err
	}
	return out, nil
}

func (s ShiftService) audit(ctx context.Context, action, detail, actor string) {
	if s.Audit == nil {
		return
	}
	if err := s.Audit.Append(ctx, action, detail, actor); err != nil && s.Logger != nil {
		s.Logger.Warn("audit append failed", "action", action, "err", err)
	}
}
