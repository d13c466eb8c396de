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

// StatusEngine derives task statuses from their date windows and keeps them
// current across the whole store.
type StatusEngine struct {
	db     *gorm.DB
	notify *Dispatcher
	log    *zap.SugaredLogger

	// now is swappable so tests can move the clock.
	now func() time.Time
}

func NewStatusEngine(conn *gorm.DB, notify *Dispatcher, log *zap.SugaredLogger) *StatusEngine {
	return &StatusEngine{db: conn, notify: notify, log: log, now: time.Now}
}

// DeriveStatus computes the automatic status for a task window. Zero-valued
// dates are a soft failure: the task is reported Not Started rather than an
// error, matching the engine's never-raise contract.
func DeriveStatus(now, start, end time.Time) string {
	if start.IsZero() || end.IsZero() {
		return types.StatusNotStarted
	}

	if now.Before(start) {
		return types.StatusNotStarted
	}

	if now.After(end) {
		return types.StatusOverdue
	}

	return types.StatusOngoing
}

// RecomputeAll walks every project and every non-Done task, re-derives each
// status, writes the ones that changed and notifies the whole team about
// each change. Per-task failures are logged and the scan continues, so one
// bad row cannot abort the run. Returns the number of tasks updated.
func (e *StatusEngine) RecomputeAll(ctx context.Context) (int, error) {
	var projects []models.Project

	if err := e.db.Find(&projects).Error; err != nil {
		return 0, err
	}

	now := e.now()
	updated := 0

	for _, project := range projects {
		if err := ctx.Err(); err != nil {
			return updated, err
		}

		members, err := teamMembers(e.db, project.ID)

		if err != nil {
			e.log.Errorw("Failed to load team for status recompute", "project_id", project.ID, "error", err)
			continue
		}

		var tasks []models.Task

		err = e.db.Where("project_id = ? AND status <> ?", project.ID, types.StatusDone).
			Find(&tasks).Error

		if err != nil {
			e.log.Errorw("Failed to load tasks for status recompute", "project_id", project.ID, "error", err)
			continue
		}

		for _, task := range tasks {
			if task.StartDate.IsZero() || task.EndDate.IsZero() {
				e.log.Warnw("Skipping task with invalid dates", "task_id", task.ID)
				continue
			}

			newStatus := DeriveStatus(now, task.StartDate, task.EndDate)

			if task.Status == newStatus {
				continue
			}

			err := e.db.Model(&models.Task{}).Where("id = ?", task.ID).
				Update("status", newStatus).Error

			if err != nil {
				e.log.Errorw("Failed to update task status", "task_id", task.ID, "error", err)
				continue
			}

			updated++

			taskID := task.ID
			e.notify.FanOut(members, 0, models.Notification{
				ProjectID: project.ID,
				TaskID:    &taskID,
				Title:     "Task Status Update",
				Body: fmt.Sprintf("Task '%s' status automatically changed from '%s' to '%s'",
					task.Name, task.Status, newStatus),
				Type: types.NotificationStatus,
				Data: eventData(map[string]interface{}{"old_status": task.Status, "new_status": newStatus}),
			})
		}
	}

	e.log.Infow("Task status recompute completed", "updated", updated)

	return updated, nil
}
