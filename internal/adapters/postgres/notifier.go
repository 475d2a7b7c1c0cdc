package postgres

import (
	"context"

	"gorm.io/gorm"

	"github.com/dexterhq/settlement/internal/domain"
	"github.com/dexterhq/settlement/internal/ports"
)

// NewNotifier writes notifications as in-app rows. Delivery beyond the row
// (push, email) belongs to a consumer of this table, not the settlement
// engine; inserts happen outside the financial transaction so a failure here
// never rolls one back.
func NewNotifier(db *gorm.DB) ports.Notifier {
	return &notificationSink{db: db}
}

type notificationSink struct {
	db *gorm.DB
}

func (n *notificationSink) Notify(ctx context.Context, notification domain.Notification) error {
	row := notificationModel{
		NotificationID: notification.NotificationID,
		UserID:         notification.UserID,
		Type:           notification.Type,
		Title:          notification.Title,
		Message:        notification.Message,
		Data:           encodeData(notification.Data),
		CreatedAt:      notification.CreatedAt,
	}
	return n.db.WithContext(ctx).Create(&row).Error
}
