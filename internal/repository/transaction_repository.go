package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/marioblades-cmyk/flujo-de-caja-version-2/internal/apperr"
	"github.com/marioblades-cmyk/flujo-de-caja-version-2/internal/db"
	"github.com/marioblades-cmyk/flujo-de-caja-version-2/internal/domain"
)

type TransactionRepository struct {
	DB *db.Postgres
}

type AddTransactionInput struct {
	ShiftID  uuid.UUID
	Concepto string
	Tipo     domain.MovementKind
	Monto    decimal.Decimal
	Hora     string
}

// Add appends a movement to a shift. There is deliberately no open/closed
// guard: corrections on closed shifts stay possible.
func (r TransactionRepository) Add(ctx context.Context, in AddTransactionInput) (*domain.Transaction, error) {
	id := uuid.New()
	row := r.DB.Pool.QueryRow(ctx, `
		INSERT INTO transactions (id, shift_id, concepto, tipo, monto, hora, created_at)
		VALUES ($1, $2, $3, $4, $5::numeric, $6, now())
		RETURNING id, shift_id, concepto, tipo, monto::text, hora, created_at
	`, id, in.ShiftID, in.Concepto, string(in.Tipo), in.Monto.String(), in.Hora)
	tr, err := scanTransaction(row)
	if err != nil {
		if db.IsForeignKeyViolation(err) {
			return nil, apperr.NotFound("shift not found")
		}
		return nil, err
	}
	return tr, nil
}

type UpdateTransactionInput struct {
	Concepto *string
	Tipo     *domain.MovementKind
	Monto    *decimal.Decimal
}

func (r TransactionRepository) Update(ctx context.Context, id uuid.UUID, in UpdateTransactionInput) error {
	var tipo, monto *string
	if in.Tipo != nil {
		s := string(*in.Tipo)
		tipo = &s
	}
	if in.Monto != nil {
		s := in.Monto.String()
		monto = &s
	}
	tag, err := r.DB.Pool.Exec(ctx, `
		UPDATE transactions SET
			concepto = COALESCE($2, concepto),
			tipo = COALESCE($3, tipo),
			monto = COALESCE($4::numeric, monto)
		WHERE id = $1
	`, id, in.Concepto, tipo, monto)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("transaction not found")
	}
	return nil
}

func (r TransactionRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.DB.Pool.Exec(ctx, `DELETE FROM transactions WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("transaction not found")
	}
	return nil
}

func scanTransaction(row pgx.Row) (*domain.Transaction, error) {
	var (
		t     domain.Transaction
		tipo  string
		monto string
	)
	if err := row.Scan(&t.ID, &t.ShiftID, &t.Concepto, &tipo, &monto, &t.Hora, &t.CreatedAt); err != nil {
		return nil, err
	}
	t.Tipo = domain.MovementKind(tipo)
	var err error
	if t.Monto, err = decimal.NewFromString(monto); err != nil {
		return nil, err
	}
	return &t, nil
}
