package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"

	"github.com/marioblades-cmyk/flujo-de-caja-version-2/internal/apperr"
	"github.com/marioblades-cmyk/flujo-de-caja-version-2/internal/db"
	"github.com/marioblades-cmyk/flujo-de-caja-version-2/internal/domain"
)

type ShiftRepository struct {
	DB *db.Postgres
}

const shiftColumns = `id, fecha, turno, responsable, monto_inicial::text, monto_final_anterior::text, cerrado, hora_apertura, hora_cierre, created_at`

type OpenShiftInput struct {
	Fecha              time.Time
	Turno              domain.ShiftPeriod
	Responsable        string
	MontoInicial       decimal.Decimal
	MontoFinalAnterior *decimal.Decimal
	HoraApertura       string
}

// Open inserts a new active shift. The partial unique index on
// shifts(cerrado) WHERE NOT cerrado makes the existence check and the insert
// a single atomic step: of two concurrent opens, exactly one succeeds and
// the other gets a unique violation, surfaced here as a conflict.
func (r ShiftRepository) Open(ctx context.Context, in OpenShiftInput) (*domain.Shift, error) {
	id := uuid.New()
	var prev *string
	if in.MontoFinalAnterior != nil {
		s := in.MontoFinalAnterior.String()
		prev = &s
	}
	row := r.DB.Pool.QueryRow(ctx, `
		INSERT INTO shifts (id, fecha, turno, responsable, monto_inicial, monto_final_anterior, cerrado, hora_apertura, created_at)
		VALUES ($1, $2, $3, $4, $5::numeric, $6::numeric, false, $7, now())
		RETURNING `+shiftColumns+`
	`, id, in.Fecha.Format("2006-01-02"), string(in.Turno), in.Responsable, in.MontoInicial.String(), prev, in.HoraApertura)
	shift, err := scanShift(row)
	if err != nil {
		if db.IsUniqueViolation(err) {
			return nil, apperr.Conflict("a shift is already open")
		}
		return nil, err
	}
	shift.Transactions = []domain.Transaction{}
	return shift, nil
}

// Close marks a shift closed and stamps the closing time. The conditional
// update is the whole read-modify-write: zero affected rows means the shift
// is absent or was already closed.
func (r ShiftRepository) Close(ctx context.Context, id uuid.UUID, horaCierre string) error {
	tag, err := r.DB.Pool.Exec(ctx, `
		UPDATE shifts SET cerrado = true, hora_cierre = $2
		WHERE id = $1 AND NOT cerrado
	`, id, horaCierre)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("shift not found or already closed")
	}
	return nil
}

// Reopen reactivates a closed shift. The single-open-shift index rejects the
// update while another shift is active.
func (r ShiftRepository) Reopen(ctx context.Context, id uuid.UUID) error {
	tag, err := r.DB.Pool.Exec(ctx, `
		UPDATE shifts SET cerrado = false, hora_cierre = NULL
		WHERE id = $1 AND cerrado
	`, id)
	if err != nil {
		if db.IsUniqueViolation(err) {
			return apperr.Conflict("another shift is already open")
		}
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("shift not found or not closed")
	}
	return nil
}

// Delete removes a shift and all its movements. Children go first so a crash
// mid-way never leaves transactions pointing at a missing shift.
func (r ShiftRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tx, err := r.DB.Pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM transactions WHERE shift_id = $1`, id); err != nil {
		return err
	}
	tag, err := tx.Exec(ctx, `DELETE FROM shifts WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("shift not found")
	}
	return tx.Commit(ctx)
}

type UpdateShiftHeaderInput struct {
	Turno        *domain.ShiftPeriod
	Responsable  *string
	MontoInicial *decimal.Decimal
}

func (r ShiftRepository) UpdateHeader(ctx context.Context, id uuid.UUID, in UpdateShiftHeaderInput) error {
	var turno, monto *string
	if in.Turno != nil {
		s := string(*in.Turno)
		turno = &s
	}
	if in.MontoInicial != nil {
		s := in.MontoInicial.String()
		monto = &s
	}
	tag, err := r.DB.Pool.Exec(ctx, `
		UPDATE shifts SET
			turno = COALESCE($2, turno),
			responsable = COALESCE($3, responsable),
			monto_inicial = COALESCE($4::numeric, monto_inicial)
		WHERE id = $1
	`, id, turno, in.Responsable, monto)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("shift not found")
	}
	return nil
}

func (r ShiftRepository) Get(ctx context.Context, id uuid.UUID) (*domain.Shift, error) {
	row := r.DB.Pool.QueryRow(ctx, `SELECT `+shiftColumns+` FROM shifts WHERE id = $1`, id)
	shift, err := scanShift(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("shift not found")
		}
		return nil, err
	}
	if err := r.attachTransactions(ctx, []*domain.Shift{shift}); err != nil {
		return nil, err
	}
	return shift, nil
}

// List returns every shift in ascending creation order with its movements
// batch-loaded in a second query. The continuity chain depends on this order
// and on the list being complete, so no filtering happens here.
func (r ShiftRepository) List(ctx context.Context) ([]domain.Shift, error) {
	rows, err := r.DB.Pool.Query(ctx, `
		SELECT `+shiftColumns+`
		FROM shifts
		ORDER BY created_at ASC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var shifts []domain.Shift
	var refs []*domain.Shift
	for rows.Next() {
		shift, err := scanShift(rows)
		if err != nil {
			return nil, err
		}
		shifts = append(shifts, *shift)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for i := range shifts {
		refs = append(refs, &shifts[i])
	}
	if err := r.attachTransactions(ctx, refs); err != nil {
		return nil, err
	}
	return shifts, nil
}

// Active returns the single open shift, or a not-found failure.
func (r ShiftRepository) Active(ctx context.Context) (*domain.Shift, error) {
	row := r.DB.Pool.QueryRow(ctx, `SELECT `+shiftColumns+` FROM shifts WHERE NOT cerrado LIMIT 1`)
	shift, err := scanShift(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("no active shift")
		}
		return nil, err
	}
	if err := r.attachTransactions(ctx, []*domain.Shift{shift}); err != nil {
		return nil, err
	}
	return shift, nil
}

// LastClosed returns the most recently closed shift with its movements, used
// to snapshot the previous closing balance at open time.
func (r ShiftRepository) LastClosed(ctx context.Context) (*domain.Shift, error) {
	row := r.DB.Pool.QueryRow(ctx, `
		SELECT `+shiftColumns+` FROM shifts WHERE cerrado
		ORDER BY created_at DESC LIMIT 1
	`)
	shift, err := scanShift(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("no closed shift")
		}
		return nil, err
	}
	if err := r.attachTransactions(ctx, []*domain.Shift{shift}); err != nil {
		return nil, err
	}
	return shift, nil
}

type LedgerSummary struct {
	ShiftCount   int64
	TotalIncome  decimal.Decimal
	TotalExpense decimal.Decimal
}

// Summary aggregates the whole ledger in one round trip.
func (r ShiftRepository) Summary(ctx context.Context) (LedgerSummary, error) {
	var s LedgerSummary
	var income, expense string
	err := r.DB.Pool.QueryRow(ctx, `
		SELECT
			(SELECT COUNT(*) FROM shifts) AS shift_count,
			COALESCE(SUM(monto) FILTER (WHERE tipo = 'INGRESO'), 0)::text AS income,
			COALESCE(SUM(monto) FILTER (WHERE tipo = 'EGRESO'), 0)::text AS expense
		FROM transactions
	`).Scan(&s.ShiftCount, &income, &expense)
	if err != nil {
		return s, err
	}
	if s.TotalIncome, err = decimal.NewFromString(income); err != nil {
		return s, err
	}
	if s.TotalExpense, err = decimal.NewFromString(expense); err != nil {
		return s, err
	}
	return s, nil
}

func (r ShiftRepository) attachTransactions(ctx context.Context, shifts []*domain.Shift) error {
	if len(shifts) == 0 {
		return nil
	}
	ids := make([]uuid.UUID, 0, len(shifts))
	for _, s := range shifts {
		ids = append(ids, s.ID)
	}
	rows, err := r.DB.Pool.Query(ctx, `
		SELECT id, shift_id, concepto, tipo, monto::text, hora, created_at
		FROM transactions
		WHERE shift_id = ANY($1)
		ORDER BY created_at ASC, id ASC
	`, ids)
	if err != nil {
		return err
	}
	defer rows.Close()

	byShift := make(map[uuid.UUID][]domain.Transaction, len(shifts))
	for rows.Next() {
		tr, err := scanTransaction(rows)
		if err != nil {
			return err
		}
		byShift[tr.ShiftID] = append(byShift[tr.ShiftID], *tr)
	}
	if err := rows.Err(); err != nil {
		return err
	}
	for _, s := range shifts {
		txs := byShift[s.ID]
		if txs == nil {
			txs = []domain.Transaction{}
		}
		s.Transactions = txs
	}
	return nil
}

func scanShift(row pgx.Row) (*domain.Shift, error) {
	var (
		s          domain.Shift
		turno      string
		monto      string
		prev       pgtype.Text
		horaCierre pgtype.Text
	)
	if err := row.Scan(&s.ID, &s.Fecha, &turno, &s.Responsable, &monto, &prev, &s.Cerrado, &s.HoraApertura, &horaCierre, &s.CreatedAt); err != nil {
		return nil, err
	}
	s.Turno = domain.ShiftPeriod(turno)
	var err error
	if s.MontoInicial, err = decimal.NewFromString(monto); err != nil {
		return nil, err
	}
	if prev.Valid {
		d, err := decimal.NewFromString(prev.String)
		if err != nil {
			return nil, err
		}
		s.MontoFinalAnterior = &d
	}
	if horaCierre.Valid {
		hc := horaCierre.String
		s.HoraCierre = &hc
	}
	return &s, nil
}
