package services

import (
	"errors"
	"fmt"
	"strings"

	"github.com/taskhive-dev/taskhive/internal/apperr"
	"github.com/taskhive-dev/taskhive/internal/models"
	"github.com/taskhive-dev/taskhive/internal/types"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Comments struct {
	db     *gorm.DB
	notify *Dispatcher
	log    *zap.SugaredLogger
}

func NewComments(conn *gorm.DB, notify *Dispatcher, log *zap.SugaredLogger) *Comments {
	return &Comments{db: conn, notify: notify, log: log}
}

// Add posts a comment on a task and notifies the rest of the team. Any team
// member may comment; outsiders get Forbidden.
func (c *Comments) Add(projectID, taskID, userID uint, message string) (*models.Comment, error) {
	if strings.TrimSpace(message) == "" {
		return nil, apperr.New(apperr.InvalidInput, "Comment message cannot be empty")
	}

	var project models.Project

	if err := c.db.First(&project, projectID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.New(apperr.NotFound, "Project not found")
		}
		return nil, err
	}

	members, err := teamMembers(c.db, projectID)

	if err != nil {
		return nil, err
	}

	if !IsTeamMember(roleOfMembers(members, userID)) {
		return nil, apperr.New(apperr.Forbidden, "Forbidden: You are not part of this project team")
	}

	task, err := c.loadTask(projectID, taskID)

	if err != nil {
		return nil, err
	}

	comment := models.Comment{
		TaskID:  taskID,
		UserID:  userID,
		Message: message,
	}

	if err := c.db.Create(&comment).Error; err != nil {
		return nil, err
	}

	id := task.ID
	c.notify.FanOut(members, userID, models.Notification{
		ProjectID: projectID,
		TaskID:    &id,
		Title:     "New Comment",
		Body:      fmt.Sprintf("New comment on task '%s'", task.Name),
		Type:      types.NotificationMessage,
	})

	return &comment, nil
}

// List returns a task's comments in posting order. Members only.
func (c *Comments) List(projectID, taskID, userID uint) ([]models.Comment, error) {
	role, err := c.memberRole(projectID, userID)

	if err != nil {
		return nil, err
	}

	if !IsTeamMember(role) {
		return nil, apperr.New(apperr.Forbidden, "Forbidden: You are not part of this project team")
	}

	if _, err := c.loadTask(projectID, taskID); err != nil {
		return nil, err
	}

	var comments []models.Comment

	if err := c.db.Where("task_id = ?", taskID).Order("id").Find(&comments).Error; err != nil {
		return nil, err
	}

	return comments, nil
}

// Delete removes a comment. Permitted for the comment's author and for
// project owner/editor roles; everyone else gets Forbidden.
func (c *Comments) Delete(projectID, taskID, commentID, userID uint) error {
	role, err := c.memberRole(projectID, userID)

	if err != nil {
		return err
	}

	if _, err := c.loadTask(projectID, taskID); err != nil {
		return err
	}

	var comment models.Comment

	err = c.db.Where("id = ? AND task_id = ?", commentID, taskID).First(&comment).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperr.New(apperr.NotFound, "Comment not found")
	}

	if err != nil {
		return err
	}

	if comment.UserID != userID && !CanManage(role) {
		return apperr.New(apperr.Forbidden, "Forbidden: You do not have permission to delete this comment")
	}

	return c.db.Delete(&comment).Error
}

func (c *Comments) memberRole(projectID, userID uint) (string, error) {
	var project models.Project

	if err := c.db.First(&project, projectID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return RoleAbsent, apperr.New(apperr.NotFound, "Project not found")
		}
		return RoleAbsent, err
	}

	return roleOf(c.db, projectID, userID)
}

func (c *Comments) loadTask(projectID, taskID uint) (*models.Task, error) {
	var task models.Task

	err := c.db.Where("id = ? AND project_id = ?", taskID, projectID).First(&task).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.New(apperr.NotFound, "Task not found")
	}

	if err != nil {
		return nil, err
	}

	return &task, nil
}
