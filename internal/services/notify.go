package services

import (
	"encoding/json"
	"errors"

	"github.com/taskhive-dev/taskhive/internal/apperr"
	"github.com/taskhive-dev/taskhive/internal/models"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Dispatcher creates notification records and marks them read. Sends are
// side effects of some primary mutation: a failed write is logged and never
// fails the operation that triggered it.
type Dispatcher struct {
	db  *gorm.DB
	log *zap.SugaredLogger
}

func NewDispatcher(conn *gorm.DB, log *zap.SugaredLogger) *Dispatcher {
	return &Dispatcher{db: conn, log: log}
}

// Create persists one notification and returns the stored record.
func (d *Dispatcher) Create(notification models.Notification) (*models.Notification, error) {
	if err := d.db.Create(&notification).Error; err != nil {
		return nil, err
	}

	return &notification, nil
}

// Send is the fire-and-forget variant used by the managers.
func (d *Dispatcher) Send(notification models.Notification) {
	if _, err := d.Create(notification); err != nil {
		d.log.Warnw("Failed to create notification",
			"user_id", notification.UserID,
			"project_id", notification.ProjectID,
			"title", notification.Title,
			"error", err)
	}
}

// FanOut sends one copy of notification per team member, skipping
// excludeUserID (0 skips nobody). Each write is independent; a failure for
// one recipient is logged and does not block the rest.
func (d *Dispatcher) FanOut(members []models.ProjectMember, excludeUserID uint, notification models.Notification) {
	for _, member := range members {
		if excludeUserID != 0 && member.UserID == excludeUserID {
			continue
		}

		recipient := notification
		recipient.UserID = member.UserID
		d.Send(recipient)
	}
}

// MarkRead marks a single notification read on behalf of its recipient.
func (d *Dispatcher) MarkRead(notificationID, userID uint) error {
	var notification models.Notification

	err := d.db.First(&notification, notificationID).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperr.New(apperr.NotFound, "Notification not found")
	}

	if err != nil {
		return err
	}

	if notification.UserID != userID {
		return apperr.New(apperr.Forbidden, "Forbidden: You do not have permission to update this notification")
	}

	return d.db.Model(&notification).Update("read", true).Error
}

// MarkAllRead marks every unread notification owned by the user and returns
// how many were updated.
func (d *Dispatcher) MarkAllRead(userID uint) (int64, error) {
	result := d.db.Model(&models.Notification{}).
		Where("user_id = ? AND read = ?", userID, false).
		Update("read", true)

	return result.RowsAffected, result.Error
}

// ListForUser returns the user's notifications, newest first.
func (d *Dispatcher) ListForUser(userID uint) ([]models.Notification, error) {
	var notifications []models.Notification

	err := d.db.Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&notifications).Error

	if err != nil {
		return nil, err
	}

	return notifications, nil
}

// eventData marshals a structured payload for the notification's Data
// column. Marshal failures yield a null payload rather than an error; the
// payload is advisory.
func eventData(fields map[string]interface{}) datatypes.JSON {
	raw, err := json.Marshal(fields)
	if err != nil {
		return nil
	}
	return datatypes.JSON(raw)
}
