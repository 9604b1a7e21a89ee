package ports

import "context"

// HealthChecker is used to probe the ledger store.
type HealthChecker interface {
	Health(ctx context.Context) error
}
