package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/marioblades-cmyk/flujo-de-caja-version-2/internal/apperr"
	"github.com/marioblades-cmyk/flujo-de-caja-version-2/internal/db"
	"github.com/marioblades-cmyk/flujo-de-caja-version-2/internal/domain"
)

type UserRepository struct {
	DB *db.Postgres
}

type CreateUserParams struct {
	Email        string
	Nombre       string
	PasswordHash *string
}

// registrationLockID keys the advisory lock serializing registrations, so
// two concurrent first registrations cannot both observe an empty table and
// both receive the admin grant.
const registrationLockID = 7451

// Create inserts the identity, its profile row and, for the very first
// account, an admin grant, all in one transaction.
func (r UserRepository) Create(ctx context.Context, p CreateUserParams) (*domain.User, error) {
	tx, err := r.DB.Pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock($1)`, registrationLockID); err != nil {
		return nil, err
	}

	var first bool
	if err := tx.QueryRow(ctx, `SELECT NOT EXISTS (SELECT 1 FROM users)`).Scan(&first); err != nil {
		return nil, err
	}

	id := uuid.New()
	var u domain.User
	err = tx.QueryRow(ctx, `
		INSERT INTO users (id, email, password_hash, created_at)
		VALUES ($1, $2, $3, now())
		RETURNING id, email, password_hash, created_at
	`, id, p.Email, p.PasswordHash).Scan(&u.ID, &u.Email, &u.PasswordHash, &u.CreatedAt)
	if err != nil {
		if db.IsUniqueViolation(err) {
			return nil, apperr.Validation("email already used")
		}
		return nil, err
	}

	if _, err := tx.Exec(ctx, `
		INSERT INTO profiles (user_id, nombre, active, created_at)
		VALUES ($1, $2, true, now())
	`, id, p.Nombre); err != nil {
		return nil, err
	}

	if first {
		if _, err := tx.Exec(ctx, `
			INSERT INTO user_roles (user_id, role) VALUES ($1, $2)
		`, id, domain.RoleAdmin); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	u.Nombre = p.Nombre
	return &u, nil
}

func (r UserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	row := r.DB.Pool.QueryRow(ctx, `
		SELECT u.id, u.email, p.nombre, u.password_hash, u.created_at
		FROM users u
		JOIN profiles p ON p.user_id = u.id
		WHERE lower(u.email) = lower($1)
	`, email)
	return scanUser(row)
}

func (r UserRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	row := r.DB.Pool.QueryRow(ctx, `
		SELECT u.id, u.email, p.nombre, u.password_hash, u.created_at
		FROM users u
		JOIN profiles p ON p.user_id = u.id
		WHERE u.id = $1
	`, id)
	return scanUser(row)
}

func scanUser(row pgx.Row) (*domain.User, error) {
	var u domain.User
	if err := row.Scan(&u.ID, &u.Email, &u.Nombre, &u.PasswordHash, &u.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("user not found")
		}
		return nil, err
	}
	return &u, nil
}
