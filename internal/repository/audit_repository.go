package repository

import (
	"context"

	"github.com/marioblades-cmyk/flujo-de-caja-version-2/internal/db"
	"github.com/marioblades-cmyk/flujo-de-caja-version-2/internal/domain"
)

type AuditLogRepository struct {
	DB *db.Postgres
}

func (r AuditLogRepository) Append(ctx context.Context, action, detail, actor string) error {
	_, err := r.DB.Pool.Exec(ctx, `
		INSERT INTO audit_logs (action, detail, actor, logged_at)
		VALUES ($1, $2, $3, now())
	`, action, detail, actor)
	return err
}

func (r AuditLogRepository) List(ctx context.Context, limit int) ([]domain.AuditEntry, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := r.DB.Pool.Query(ctx, `
		SELECT id, action, detail, actor, logged_at
		FROM audit_logs
		ORDER BY logged_at DESC, id DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.AuditEntry
	for rows.Next() {
		var e domain.AuditEntry
		if err := rows.Scan(&e.ID, &e.Action, &e.Detail, &e.Actor, &e.LoggedAt); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
