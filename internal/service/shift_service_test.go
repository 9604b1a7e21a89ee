package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/marioblades-cmyk/flujo-de-caja-version-2/internal/apperr"
	"github.com/marioblades-cmyk/flujo-de-caja-version-2/internal/domain"
	"github.com/marioblades-cmyk/flujo-de-caja-version-2/internal/repository"
)

type stubShiftStore struct {
	openIn     *repository.OpenShiftInput
	openErr    error
	lastClosed *domain.Shift
	closedID   *uuid.UUID
	closedHora string
	reopenedID *uuid.UUID
	reopenErr  error
	deletedID  *uuid.UUID
	headerIn   *repository.UpdateShiftHeaderInput
	active     *domain.Shift
	shifts     []domain.Shift
}

func (s *stubShiftStore) Open(_ context.Context, in repository.OpenShiftInput) (*domain.Shift, error) {
	s.openIn = &in
	if s.openErr != nil {
		return nil, s.openErr
	}
	return &domain.Shift{
		ID:                 uuid.New(),
		Fecha:              in.Fecha,
		Turno:              in.Turno,
		Responsable:        in.Responsable,
		MontoInicial:       in.MontoInicial,
		MontoFinalAnterior: in.MontoFinalAnterior,
		HoraApertura:       in.HoraApertura,
		Transactions:       []domain.Transaction{},
	}, nil
}

func (s *stubShiftStore) Close(_ context.Context, id uuid.UUID, hora string) error {
	s.closedID = &id
	s.closedHora = hora
	return nil
}

func (s *stubShiftStore) Reopen(_ context.Context, id uuid.UUID) error {
	if s.reopenErr != nil {
		return s.reopenErr
	}
	s.reopenedID = &id
	return nil
}

func (s *stubShiftStore) Delete(_ context.Context, id uuid.UUID) error {
	s.deletedID = &id
	return nil
}

func (s *stubShiftStore) UpdateHeader(_ context.Context, _ uuid.UUID, in repository.UpdateShiftHeaderInput) error {
	s.headerIn = &in
	return nil
}

func (s *stubShiftStore) Get(_ context.Context, _ uuid.UUID) (*domain.Shift, error) {
	return nil, apperr.NotFound("shift not found")
}

func (s *stubShiftStore) List(_ context.Context) ([]domain.Shift, error) {
	return s.shifts, nil
}

func (s *stubShiftStore) Active(_ context.Context) (*domain.Shift, error) {
	if s.active == nil {
		return nil, apperr.NotFound("no active shift")
	}
	return s.active, nil
}

func (s *stubShiftStore) LastClosed(_ context.Context) (*domain.Shift, error) {
	if s.lastClosed == nil {
		return nil, apperr.NotFound("no closed shift")
	}
	return s.lastClosed, nil
}

func (s *stubShiftStore) Summary(_ context.Context) (repository.LedgerSummary, error) {
	return repository.LedgerSummary{}, nil
}

type stubMovementStore struct {
	addIn    *repository.AddTransactionInput
	updateIn *repository.UpdateTransactionInput
	deleted  *uuid.UUID
}

func (s *stubMovementStore) Add(_ context.Context, in repository.AddTransactionInput) (*domain.Transaction, error) {
	s.addIn = &in
	return &domain.Transaction{
		ID:       uuid.New(),
		ShiftID:  in.ShiftID,
		Concepto: in.Concepto,
		Tipo:     in.Tipo,
		Monto:    in.Monto,
		Hora:     in.Hora,
	}, nil
}

func (s *stubMovementStore) Update(_ context.Context, _ uuid.UUID, in repository.UpdateTransactionInput) error {
	s.updateIn = &in
	return nil
}

func (s *stubMovementStore) Delete(_ context.Context, id uuid.UUID) error {
	s.deleted = &id
	return nil
}

func newShiftService(store *stubShiftStore, movements *stubMovementStore) ShiftService {
	fixed := time.Date(2024, 6, 1, 9, 30, 0, 0, time.UTC)
	return ShiftService{
		Shifts:    store,
		Movements: movements,
		Now:       func() time.Time { return fixed },
	}
}

func TestOpenValidation(t *testing.T) {
	store := &stubShiftStore{}
	svc := newShiftService(store, &stubMovementStore{})

	cases := []struct {
		name string
		in   OpenShiftInput
	}{
		{"unknown period", OpenShiftInput{Turno: "NIGHT", Responsable: "MARIO", MontoInicial: dec("10")}},
		{"unknown responsable", OpenShiftInput{Turno: domain.PeriodMorning, Responsable: "PEDRO", MontoInicial: dec("10")}},
		{"negative opening", OpenShiftInput{Turno: domain.PeriodMorning, Responsable: "MARIO", MontoInicial: dec("-1")}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Open(context.Background(), tc.in)
			require.ErrorIs(t, err, apperr.ErrValidation)
			require.Nil(t, store.openIn, "store must not be touched on invalid input")
		})
	}
}

func TestOpenSnapshotsPreviousClosingBalance(t *testing.T) {
	store := &stubShiftStore{
		lastClosed: &domain.Shift{
			MontoInicial: dec("100.00"),
			Cerrado:      true,
			Transactions: []domain.Transaction{
				{Tipo: domain.MovementIncome, Monto: dec("50.00")},
			},
		},
	}
	svc := newShiftService(store, &stubMovementStore{})

	shift, err := svc.Open(context.Background(), OpenShiftInput{
		Turno:        domain.PeriodMorning,
		Responsable:  "MARIO",
		MontoInicial: dec("150.00"),
	})
	require.NoError(t, err)
	require.NotNil(t, store.openIn.MontoFinalAnterior)
	require.True(t, store.openIn.MontoFinalAnterior.Equal(dec("150.00")))
	require.Equal(t, "09:30", store.openIn.HoraApertura)
	require.NotNil(t, shift.MontoFinalAnterior)
}

func TestOpenFirstShiftHasNoSnapshot(t *testing.T) {
	store := &stubShiftStore{}
	svc := newShiftService(store, &stubMovementStore{})

	_, err := svc.Open(context.Background(), OpenShiftInput{
		Turno:        domain.PeriodFullDay,
		Responsable:  "ALITO",
		MontoInicial: dec("0"),
	})
	require.NoError(t, err)
	require.Nil(t, store.openIn.MontoFinalAnterior)
}

func TestOpenPropagatesConflict(t *testing.T) {
	store := &stubShiftStore{openErr: apperr.Conflict("a shift is already open")}
	svc := newShiftService(store, &stubMovementStore{})

	_, err := svc.Open(context.Background(), OpenShiftInput{
		Turno:        domain.PeriodMorning,
		Responsable:  "MARIO",
		MontoInicial: dec("10"),
	})
	require.ErrorIs(t, err, apperr.ErrConflict)
}

func TestCloseStampsTime(t *testing.T) {
	store := &stubShiftStore{}
	svc := newShiftService(store, &stubMovementStore{})

	id := uuid.New()
	require.NoError(t, svc.Close(context.Background(), id))
	require.Equal(t, id, *store.closedID)
	require.Equal(t, "09:30", store.closedHora)
}

func TestReopenPropagatesConflict(t *testing.T) {
	store := &stubShiftStore{reopenErr: apperr.Conflict("another shift is already open")}
	svc := newShiftService(store, &stubMovementStore{})
	require.ErrorIs(t, svc.Reopen(context.Background(), uuid.New()), apperr.ErrConflict)
}

func TestEditHeaderRejectsNegativeOpening(t *testing.T) {
	store := &stubShiftStore{}
	svc := newShiftService(store, &stubMovementStore{})

	monto := dec("-5.00")
	err := svc.EditHeader(context.Background(), uuid.New(), EditShiftHeaderInput{MontoInicial: &monto})
	require.ErrorIs(t, err, apperr.ErrValidation)
	require.Nil(t, store.headerIn)
}

func TestEditHeaderPartialUpdate(t *testing.T) {
	store := &stubShiftStore{}
	svc := newShiftService(store, &stubMovementStore{})

	turno := domain.PeriodAfternoon
	require.NoError(t, svc.EditHeader(context.Background(), uuid.New(), EditShiftHeaderInput{Turno: &turno}))
	require.NotNil(t, store.headerIn)
	require.Equal(t, turno, *store.headerIn.Turno)
	require.Nil(t, store.headerIn.Responsable)
	require.Nil(t, store.headerIn.MontoInicial)
}

func TestAddMovementValidation(t *testing.T) {
	movements := &stubMovementStore{}
	svc := newShiftService(&stubShiftStore{}, movements)

	cases := []struct {
		name string
		in   AddMovementInput
	}{
		{"empty concepto", AddMovementInput{Concepto: "  ", Tipo: domain.MovementIncome, Monto: dec("5")}},
		{"bad kind", AddMovementInput{Concepto: "venta", Tipo: "TRANSFER", Monto: dec("5")}},
		{"zero amount", AddMovementInput{Concepto: "venta", Tipo: domain.MovementIncome, Monto: dec("0")}},
		{"negative amount", AddMovementInput{Concepto: "venta", Tipo: domain.MovementExpense, Monto: dec("-3")}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.AddMovement(context.Background(), uuid.New(), tc.in)
			require.ErrorIs(t, err, apperr.ErrValidation)
			require.Nil(t, movements.addIn, "movement log must stay unchanged")
		})
	}
}

func TestAddMovementStampsTimeAndTrims(t *testing.T) {
	movements := &stubMovementStore{}
	svc := newShiftService(&stubShiftStore{}, movements)

	tr, err := svc.AddMovement(context.Background(), uuid.New(), AddMovementInput{
		Concepto: "  venta mostrador ",
		Tipo:     domain.MovementIncome,
		Monto:    dec("25.00"),
	})
	require.NoError(t, err)
	require.Equal(t, "venta mostrador", movements.addIn.Concepto)
	require.Equal(t, "09:30", movements.addIn.Hora)
	require.Equal(t, "09:30", tr.Hora)
}

func TestUpdateMovementValidatesProvidedFields(t *testing.T) {
	movements := &stubMovementStore{}
	svc := newShiftService(&stubShiftStore{}, movements)

	empty := ""
	err := svc.UpdateMovement(context.Background(), uuid.New(), UpdateMovementInput{Concepto: &empty})
	require.ErrorIs(t, err, apperr.ErrValidation)

	zero := dec("0")
	err = svc.UpdateMovement(context.Background(), uuid.New(), UpdateMovementInput{Monto: &zero})
	require.ErrorIs(t, err, apperr.ErrValidation)
	require.Nil(t, movements.updateIn)

	monto := dec("12.00")
	require.NoError(t, svc.UpdateMovement(context.Background(), uuid.New(), UpdateMovementInput{Monto: &monto}))
	require.NotNil(t, movements.updateIn)
}

func TestListBuildsContinuity(t *testing.T) {
	store := &stubShiftStore{shifts: []domain.Shift{
		closedShift("500.00",
			domain.Transaction{Tipo: domain.MovementIncome, Monto: dec("100.00")},
			domain.Transaction{Tipo: domain.MovementExpense, Monto: dec("30.00")},
		),
		closedShift("570.00"),
	}}
	svc := newShiftService(store, &stubMovementStore{})

	reports, err := svc.List(context.Background(), nil, nil)
	require.NoError(t, err)
	require.Len(t, reports, 2)
	require.True(t, reports[0].FinalBalance.Equal(dec("570.00")))
	require.NotNil(t, reports[1].Continuity)
	require.True(t, reports[1].Continuity.Matched)
}

func TestListWindowKeepsGlobalContinuity(t *testing.T) {
	older := closedShift("100.00", domain.Transaction{Tipo: domain.MovementIncome, Monto: dec("50.00")})
	older.Fecha = time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	newer := closedShift("140.00")
	newer.Fecha = time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)

	store := &stubShiftStore{shifts: []domain.Shift{older, newer}}
	svc := newShiftService(store, &stubMovementStore{})

	from := time.Date(2024, 5, 15, 0, 0, 0, 0, time.UTC)
	reports, err := svc.List(context.Background(), &from, nil)
	require.NoError(t, err)
	require.Len(t, reports, 1)

	c := reports[0].Continuity
	require.NotNil(t, c, "window's first shift keeps its verdict against the predecessor outside the window")
	require.False(t, c.Matched)
	require.True(t, c.Expected.Equal(dec("150.00")))
	require.True(t, c.Discrepancy.Equal(dec("-10.00")))
}

func TestActiveReportsRunningBalance(t *testing.T) {
	store := &stubShiftStore{active: &domain.Shift{
		MontoInicial: dec("50.00"),
		Transactions: []domain.Transaction{
			{Tipo: domain.MovementIncome, Monto: dec("10.00")},
		},
	}}
	svc := newShiftService(store, &stubMovementStore{})

	report, err := svc.Active(context.Background())
	require.NoError(t, err)
	require.True(t, report.FinalBalance.Equal(dec("60.00")))

	store.active = nil
	_, err = svc.Active(context.Background())
	require.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestSummaryIncludesActiveBalance(t *testing.T) {
	store := &stubShiftStore{active: &domain.Shift{MontoInicial: dec("80.00")}}
	svc := newShiftService(store, &stubMovementStore{})

	sum, err := svc.Summary(context.Background())
	require.NoError(t, err)
	require.NotNil(t, sum.ActiveBalance)
	require.True(t, sum.ActiveBalance.Equal(dec("80.00")))

	store.active = nil
	sum, err = svc.Summary(context.Background())
	require.NoError(t, err)
	require.Nil(t, sum.ActiveBalance)
}
