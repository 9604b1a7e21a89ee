package service

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/marioblades-cmyk/flujo-de-caja-version-2/internal/apperr"
	"github.com/marioblades-cmyk/flujo-de-caja-version-2/internal/domain"
	"github.com/marioblades-cmyk/flujo-de-caja-version-2/internal/repository"
)

// AccountStore is the store surface for role-gated account management.
type AccountStore interface {
	HasRole(ctx context.Context, userID uuid.UUID, role string) (bool, error)
	ListAccounts(ctx context.Context) ([]domain.Account, error)
	UpdateProfile(ctx context.Context, userID uuid.UUID, in repository.UpdateProfileInput) error
	ToggleRole(ctx context.Context, userID uuid.UUID, role string, guardSelfAdmin bool) (bool, error)
	DeleteAccount(ctx context.Context, userID uuid.UUID) error
}

// AuditReader lists recorded audit entries.
type AuditReader interface {
	List(ctx context.Context, limit int) ([]domain.AuditEntry, error)
}

// AdminService runs account management operations. Every call re-checks the
// caller's admin grant against the store rather than trusting token claims,
// and refuses before doing anything else when the grant is missing.
type AdminService struct {
	Accounts AccountStore
	Audit    AuditStore
	AuditLog AuditReader
	Logger   *slog.Logger
}

func (s AdminService) requireAdmin(ctx context.Context, callerID uuid.UUID) error {
	held, err := s.Accounts.HasRole(ctx, callerID, domain.RoleAdmin)
	if err != nil {
		return err
	}
	if !held {
		return apperr.Forbidden("admin role required")
	}
	return nil
}

func (s AdminService) ListUsers(ctx context.Context, callerID uuid.UUID) ([]domain.Account, error) {
	if err := s.requireAdmin(ctx, callerID); err != nil {
		return nil, err
	}
	return s.Accounts.ListAccounts(ctx)
}

type UpdateProfileInput struct {
	Nombre *string
	Active *bool
}

func (s AdminService) UpdateProfile(ctx context.Context, callerID, targetID uuid.UUID, in UpdateProfileInput) error {
	if err := s.requireAdmin(ctx, callerID); err != nil {
		return err
	}
	if err := s.Accounts.UpdateProfile(ctx, targetID, repository.UpdateProfileInput{
		Nombre: in.Nombre,
		Active: in.Active,
	}); err != nil {
		return err
	}
	s.audit(ctx, "profile_updated", "target="+targetID.String(), callerID.String())
	return nil
}

// ToggleRole grants the role when absent and revokes it when held. Revoking
// one's own admin role is refused so the caller cannot lock admins out.
func (s AdminService) ToggleRole(ctx context.Context, callerID, targetID uuid.UUID, role string) (granted bool, err error) {
	if err := s.requireAdmin(ctx, callerID); err != nil {
		return false, err
	}
	if role == "" {
		return false, apperr.Validation("role is required")
	}
	guard := targetID == callerID && role == domain.RoleAdmin
	granted, err = s.Accounts.ToggleRole(ctx, targetID, role, guard)
	if err != nil {
		return false, err
	}
	action := "role_revoked"
	if granted {
		action = "role_granted"
	}
	s.audit(ctx, action, "target="+targetID.String()+" role="+role, callerID.String())
	return granted, nil
}

func (s AdminService) DeleteAccount(ctx context.Context, callerID, targetID uuid.UUID) error {
	if err := s.requireAdmin(ctx, callerID); err != nil {
		return err
	}
	if targetID == callerID {
		return apperr.Validation("cannot delete yourself")
	}
	if err := s.Accounts.DeleteAccount(ctx, targetID); err != nil {
		return err
	}
	s.audit(ctx, "account_deleted", "target="+targetID.String(), callerID.String())
	return nil
}

// ListAudit returns recent audit entries, admin-gated like everything else.
func (s AdminService) ListAudit(ctx context.Context, callerID uuid.UUID, limit int) ([]domain.AuditEntry, error) {
	if err := s.requireAdmin(ctx, callerID); err != nil {
		return nil, err
	}
	return s.AuditLog.List(ctx, limit)
}

func (s AdminService) audit(ctx context.Context, action, detail, actor string) {
	if s.Audit == nil {
		return
	}
	if err := s.Audit.Append(ctx, action, detail, actor); err != nil && s.Logger != nil {
		s.Logger.Warn("audit append failed", "action", action, "err", err)
	}
}
