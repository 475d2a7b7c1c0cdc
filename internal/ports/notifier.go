package ports

import (
	"context"

	"github.com/dexterhq/settlement/internal/domain"
)

// Notifier is the outbound notification sink. It is called after the
// financial transaction commits; an error here is logged by the caller and
// swallowed, never propagated as a settlement failure.
type Notifier interface {
	Notify(ctx context.Context, n domain.Notification) error
}
