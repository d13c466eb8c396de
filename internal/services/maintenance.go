package services

import (
	"context"
	"fmt"
	"time"

	"github.com/taskhive-dev/taskhive/internal/models"
	"github.com/taskhive-dev/taskhive/internal/types"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// deadlineWindow is how far ahead of a task's end date the approaching-
// deadline alert fires.
const deadlineWindow = 24 * time.Hour

// Maintenance bundles the periodic work an external scheduler drives: the
// deadline scan and the full status recompute.
type Maintenance struct {
	db     *gorm.DB
	notify *Dispatcher
	status *StatusEngine
	log    *zap.SugaredLogger

	now func() time.Time
}

func NewMaintenance(conn *gorm.DB, notify *Dispatcher, status *StatusEngine, log *zap.SugaredLogger) *Maintenance {
	return &Maintenance{db: conn, notify: notify, status: status, log: log, now: time.Now}
}

// ScanDeadlines notifies every team member once per task whose end date is
// still ahead but inside the deadline window. The per-task DeadlineNotified
// flag keeps repeated scan ticks inside the window from re-alerting.
// Per-task failures are logged and the scan continues.
func (m *Maintenance) ScanDeadlines(ctx context.Context) (int, error) {
	var projects []models.Project

	if err := m.db.Find(&projects).Error; err != nil {
		return 0, err
	}

	now := m.now()
	alerted := 0

	for _, project := range projects {
		if err := ctx.Err(); err != nil {
			return alerted, err
		}

		members, err := teamMembers(m.db, project.ID)

		if err != nil {
			m.log.Errorw("Failed to load team for deadline scan", "project_id", project.ID, "error", err)
			continue
		}

		var tasks []models.Task

		err = m.db.Where(
			"project_id = ? AND status <> ? AND deadline_notified = ? AND end_date > ? AND end_date <= ?",
			project.ID, types.StatusDone, false, now, now.Add(deadlineWindow),
		).Find(&tasks).Error

		if err != nil {
			m.log.Errorw("Failed to load tasks for deadline scan", "project_id", project.ID, "error", err)
			continue
		}

		for _, task := range tasks {
			taskID := task.ID
			m.notify.FanOut(members, 0, models.Notification{
				ProjectID: project.ID,
				TaskID:    &taskID,
				Title:     "Deadline Approaching",
				Body:      fmt.Sprintf("Task '%s' will be due in less than 24 hours", task.Name),
				Type:      types.NotificationDeadline,
			})

			err := m.db.Model(&models.Task{}).Where("id = ?", task.ID).
				Update("deadline_notified", true).Error

			if err != nil {
				m.log.Errorw("Failed to mark deadline notified", "task_id", task.ID, "error", err)
				continue
			}

			alerted++
		}
	}

	m.log.Infow("Deadline scan completed", "alerted", alerted)

	return alerted, nil
}

// Run performs one full maintenance pass: deadline scan, then status
// recompute. Either half failing does not stop the other.
func (m *Maintenance) Run(ctx context.Context) {
	if _, err := m.ScanDeadlines(ctx); err != nil {
		m.log.Errorw("Deadline scan failed", "error", err)
	}

	if _, err := m.status.RecomputeAll(ctx); err != nil {
		m.log.Errorw("Status recompute failed", "error", err)
	}
}
