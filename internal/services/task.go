package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/taskhive-dev/taskhive/internal/apperr"
	"github.com/taskhive-dev/taskhive/internal/models"
	"github.com/taskhive-dev/taskhive/internal/types"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Tasks struct {
	db     *gorm.DB
	notify *Dispatcher
	log    *zap.SugaredLogger

	now func() time.Time
}

func NewTasks(conn *gorm.DB, notify *Dispatcher, log *zap.SugaredLogger) *Tasks {
	return &Tasks{db: conn, notify: notify, log: log, now: time.Now}
}

type NewTask struct {
	Name        string
	Deliverable string
	StartDate   time.Time
	EndDate     time.Time
	Status      string // optional; derived from the date window when empty
}

// Add validates and persists a task under the project, then notifies every
// team member except the creator. When the caller does not supply a status
// the engine derives one from the date window; the only status a caller may
// pin at creation is Done.
func (t *Tasks) Add(projectID, userID uint, input NewTask) (*models.Task, error) {
	if strings.TrimSpace(input.Name) == "" {
		return nil, apperr.New(apperr.InvalidInput, "Missing required fields: name, startDate, or endDate")
	}

	if input.StartDate.IsZero() || input.EndDate.IsZero() {
		return nil, apperr.New(apperr.InvalidInput, "Missing required fields: name, startDate, or endDate")
	}

	if !input.StartDate.Before(input.EndDate) {
		return nil, apperr.New(apperr.InvalidInput, "startDate must be before endDate")
	}

	status := input.Status

	switch status {
	case "":
		status = DeriveStatus(t.now(), input.StartDate, input.EndDate)
	case types.StatusDone:
		// allowed as a manual pin
	default:
		return nil, apperr.New(apperr.InvalidInput, `Invalid status: Only "Done" can be set manually`)
	}

	var project models.Project

	if err := t.db.First(&project, projectID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.New(apperr.NotFound, "Project not found")
		}
		return nil, err
	}

	members, err := teamMembers(t.db, projectID)

	if err != nil {
		return nil, err
	}

	if !IsTeamMember(roleOfMembers(members, userID)) {
		return nil, apperr.New(apperr.Forbidden, "Access denied: not part of project team")
	}

	task := models.Task{
		ProjectID:   projectID,
		Name:        input.Name,
		Deliverable: input.Deliverable,
		StartDate:   input.StartDate,
		EndDate:     input.EndDate,
		Status:      status,
		CreatedByID: userID,
	}

	if err := t.db.Create(&task).Error; err != nil {
		return nil, err
	}

	taskID := task.ID
	t.notify.FanOut(members, userID, models.Notification{
		ProjectID: projectID,
		TaskID:    &taskID,
		Title:     "New Task Created",
		Body:      fmt.Sprintf("New task '%s' has been added to project '%s'", task.Name, project.Name),
		Type:      types.NotificationInfo,
	})

	return &task, nil
}

// List returns every task under the project. Members only.
func (t *Tasks) List(projectID, userID uint) ([]models.Task, error) {
	if err := t.requireMember(projectID, userID); err != nil {
		return nil, err
	}

	var tasks []models.Task

	if err := t.db.Where("project_id = ?", projectID).Order("id").Find(&tasks).Error; err != nil {
		return nil, err
	}

	return tasks, nil
}

// Get returns a single task. Members only.
func (t *Tasks) Get(projectID, taskID, userID uint) (*models.Task, error) {
	if err := t.requireMember(projectID, userID); err != nil {
		return nil, err
	}

	return t.loadTask(projectID, taskID)
}

// SetDone is the only manual status transition. Any other target is
// rejected, and once Done a task is terminal: the recompute scan skips it.
func (t *Tasks) SetDone(projectID, taskID, userID uint, newStatus string) (*models.Task, error) {
	var project models.Project

	if err := t.db.First(&project, projectID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.New(apperr.NotFound, "Project not found")
		}
		return nil, err
	}

	members, err := teamMembers(t.db, projectID)

	if err != nil {
		return nil, err
	}

	if !CanManage(roleOfMembers(members, userID)) {
		return nil, apperr.New(apperr.Forbidden, "Forbidden: Only owner or editor can update status")
	}

	task, err := t.loadTask(projectID, taskID)

	if err != nil {
		return nil, err
	}

	if newStatus != types.StatusDone {
		return nil, apperr.New(apperr.InvalidInput, `Invalid status: Only "Done" can be set manually`)
	}

	if task.Status != types.StatusDone {
		err = t.db.Model(task).Update("status", types.StatusDone).Error

		if err != nil {
			return nil, err
		}

		task.Status = types.StatusDone

		id := task.ID
		t.notify.FanOut(members, userID, models.Notification{
			ProjectID: projectID,
			TaskID:    &id,
			Title:     "Task Completed",
			Body:      fmt.Sprintf("Task '%s' has been marked as Done", task.Name),
			Type:      types.NotificationInfo,
		})
	}

	return task, nil
}

// Delete removes the task, its comments and every notification referencing
// it in one transaction, then notifies the rest of the team.
func (t *Tasks) Delete(projectID, taskID, userID uint) error {
	var project models.Project

	if err := t.db.First(&project, projectID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.New(apperr.NotFound, "Project not found")
		}
		return err
	}

	members, err := teamMembers(t.db, projectID)

	if err != nil {
		return err
	}

	if !CanManage(roleOfMembers(members, userID)) {
		return apperr.New(apperr.Forbidden, "Forbidden: You do not have permission to delete tasks")
	}

	task, err := t.loadTask(projectID, taskID)

	if err != nil {
		return err
	}

	err = t.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("task_id = ?", task.ID).Delete(&models.Comment{}).Error; err != nil {
			return err
		}

		if err := tx.Where("task_id = ?", task.ID).Delete(&models.Notification{}).Error; err != nil {
			return err
		}

		return tx.Delete(task).Error
	})

	if err != nil {
		return err
	}

	t.notify.FanOut(members, userID, models.Notification{
		ProjectID: projectID,
		Title:     "Task Deleted",
		Body:      fmt.Sprintf("Task '%s' has been deleted from project '%s'", task.Name, project.Name),
		Type:      types.NotificationInfo,
	})

	return nil
}

func (t *Tasks) requireMember(projectID, userID uint) error {
	var project models.Project

	if err := t.db.First(&project, projectID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.New(apperr.NotFound, "Project not found")
		}
		return err
	}

	role, err := roleOf(t.db, projectID, userID)

	if err != nil {
		return err
	}

	if !IsTeamMember(role) {
		return apperr.New(apperr.Forbidden, "Access denied: not part of project team")
	}

	return nil
}

func (t *Tasks) loadTask(projectID, taskID uint) (*models.Task, error) {
	var task models.Task

	err := t.db.Where("id = ? AND project_id = ?", taskID, projectID).First(&task).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.New(apperr.NotFound, "Task not found")
	}

	if err != nil {
		return nil, err
	}

	return &task, nil
}
