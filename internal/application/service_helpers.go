package application

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/dexterhq/settlement/internal/domain"
)

// dispatch hands notifications to the sink after the financial transaction
// has committed. Failures are logged and swallowed: a dead notification
// channel must never look like a settlement failure.
func (s *Service) dispatch(ctx context.Context, notifications []domain.Notification) {
	if s.notifier == nil {
		return
	}
	for _, n := range notifications {
		if n.NotificationID == "" {
			n.NotificationID = uuid.NewString()
		}
		if n.CreatedAt.IsZero() {
			n.CreatedAt = s.nowFn()
		}
		if err := s.notifier.Notify(ctx, n); err != nil {
			slog.Default().WarnContext(ctx, "notification delivery failed",
				"module", "settlement",
				"layer", "application",
				"operation", "notify",
				"outcome", "dropped",
				"notification_type", n.Type,
				"user_id", n.UserID,
				"error", err,
			)
		}
	}
}

func notification(userID, kind, title, message string, data map[string]any) domain.Notification {
	return domain.Notification{
		UserID:  userID,
		Type:    kind,
		Title:   title,
		Message: message,
		Data:    data,
	}
}

func addDays(t time.Time, days int) time.Time {
	return t.Add(time.Duration(days) * 24 * time.Hour)
}

// orderNumber derives a human-readable order reference from the placement
// time plus a short random suffix.
func orderNumber(at time.Time) string {
	return "ORD-" + at.Format("20060102") + "-" + uuid.NewString()[:8]
}

// outcomeLabel buckets errors for the operations counter so dashboards can
// tell user mistakes from incidents without unbounded label cardinality.
func outcomeLabel(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, domain.ErrInsufficientFunds):
		return "insufficient_funds"
	case errors.Is(err, domain.ErrBudgetExceeded):
		return "budget_exceeded"
	case errors.Is(err, domain.ErrRevisionLimitReached):
		return "revision_limit"
	case errors.Is(err, domain.ErrInvalidState):
		return "invalid_state"
	case errors.Is(err, domain.ErrInvalidInput):
		return "invalid_input"
	case errors.Is(err, domain.ErrUnauthorized):
		return "unauthorized"
	case errors.Is(err, domain.ErrNotFound):
		return "not_found"
	default:
		return "error"
	}
}
