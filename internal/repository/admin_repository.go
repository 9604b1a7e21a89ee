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

// AdminRepository backs the role-gated account management operations.
// Roles are presence rows in user_roles: a (user_id, role) pair exists
// exactly when the grant is held.
type AdminRepository struct {
	DB *db.Postgres
}

func (r AdminRepository) HasRole(ctx context.Context, userID uuid.UUID, role string) (bool, error) {
	var held bool
	err := r.DB.Pool.QueryRow(ctx, `
		SELECT EXISTS (SELECT 1 FROM user_roles WHERE user_id = $1 AND role = $2)
	`, userID, role).Scan(&held)
	return held, err
}

// ListAccounts joins profiles, identities and role grants. Roles come from a
// second query and are merged in memory, mirroring the shift/movement batch
// load.
func (r AdminRepository) ListAccounts(ctx context.Context) ([]domain.Account, error) {
	rows, err := r.DB.Pool.Query(ctx, `
		SELECT p.user_id, p.nombre, u.email, p.active, p.created_at
		FROM profiles p
		JOIN users u ON u.id = p.user_id
		ORDER BY p.created_at ASC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var accounts []domain.Account
	for rows.Next() {
		var a domain.Account
		if err := rows.Scan(&a.UserID, &a.Nombre, &a.Email, &a.Active, &a.CreatedAt); err != nil {
			return nil, err
		}
		a.Roles = []string{}
		accounts = append(accounts, a)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(accounts) == 0 {
		return accounts, nil
	}

	roleRows, err := r.DB.Pool.Query(ctx, `SELECT user_id, role FROM user_roles`)
	if err != nil {
		return nil, err
	}
	defer roleRows.Close()

	rolesByUser := make(map[uuid.UUID][]string)
	for roleRows.Next() {
		var userID uuid.UUID
		var role string
		if err := roleRows.Scan(&userID, &role); err != nil {
			return nil, err
		}
		rolesByUser[userID] = append(rolesByUser[userID], role)
	}
	if err := roleRows.Err(); err != nil {
		return nil, err
	}

	for i := range accounts {
		if roles := rolesByUser[accounts[i].UserID]; roles != nil {
			accounts[i].Roles = roles
		}
	}
	return accounts, nil
}

type UpdateProfileInput struct {
	Nombre *string
	Active *bool
}

func (r AdminRepository) UpdateProfile(ctx context.Context, userID uuid.UUID, in UpdateProfileInput) error {
	tag, err := r.DB.Pool.Exec(ctx, `
		UPDATE profiles SET
			nombre = COALESCE($2, nombre),
			active = COALESCE($3, active)
		WHERE user_id = $1
	`, userID, in.Nombre, in.Active)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("account not found")
	}
	return nil
}

// ToggleRole revokes the role if held, grants it otherwise. The row lock on
// the existing grant makes the check-then-act atomic: concurrent toggles
// serialize instead of double-granting or double-revoking. guardSelfAdmin is
// set when the caller targets their own admin role, in which case a revoke
// must be refused so admins cannot lock themselves out.
func (r AdminRepository) ToggleRole(ctx context.Context, userID uuid.UUID, role string, guardSelfAdmin bool) (granted bool, err error) {
	tx, err := r.DB.Pool.Begin(ctx)
	if err != nil {
		return false, err
	}
	defer tx.Rollback(ctx)

	var grantID int64
	err = tx.QueryRow(ctx, `
		SELECT id FROM user_roles WHERE user_id = $1 AND role = $2 FOR UPDATE
	`, userID, role).Scan(&grantID)
	switch {
	case err == nil:
		if guardSelfAdmin {
			return false, apperr.Validation("cannot remove your own admin role")
		}
		if _, err := tx.Exec(ctx, `DELETE FROM user_roles WHERE id = $1`, grantID); err != nil {
			return false, err
		}
		granted = false
	case errors.Is(err, pgx.ErrNoRows):
		if _, err := tx.Exec(ctx, `
			INSERT INTO user_roles (user_id, role) VALUES ($1, $2)
		`, userID, role); err != nil {
			if db.IsUniqueViolation(err) {
				return false, apperr.Conflict("role was granted concurrently")
			}
			if db.IsForeignKeyViolation(err) {
				return false, apperr.NotFound("account not found")
			}
			return false, err
		}
		granted = true
	default:
		return false, err
	}

	return granted, tx.Commit(ctx)
}

// DeleteAccount removes the identity with its profile and role grants,
// children first.
func (r AdminRepository) DeleteAccount(ctx context.Context, userID uuid.UUID) error {
	tx, err := r.DB.Pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM user_roles WHERE user_id = $1`, userID); err != nil {
		return err
	}
	if _, err := tx.Exec(ctx, `DELETE FROM profiles WHERE user_id = $1`, userID); err != nil {
		return err
	}
	tag, err := tx.Exec(ctx, `DELETE FROM users WHERE id = $1`, userID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("account not found")
	}
	return tx.Commit(ctx)
}
