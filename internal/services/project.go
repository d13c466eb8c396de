package services

import (
	"errors"
	"strings"

	"github.com/taskhive-dev/taskhive/internal/apperr"
	"github.com/taskhive-dev/taskhive/internal/models"
	"github.com/taskhive-dev/taskhive/internal/types"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Projects struct {
	db     *gorm.DB
	notify *Dispatcher
	log    *zap.SugaredLogger
}

func NewProjects(conn *gorm.DB, notify *Dispatcher, log *zap.SugaredLogger) *Projects {
	return &Projects{db: conn, notify: notify, log: log}
}

type ProjectUpdate struct {
	Name        *string
	Description *string
}

// Create writes the project and its single owner membership row in one
// transaction, so a project can never exist without exactly one owner entry.
func (p *Projects) Create(name, description string, ownerID uint) (*models.Project, error) {
	if strings.TrimSpace(name) == "" {
		return nil, apperr.New(apperr.InvalidInput, "Project name is required")
	}

	project := models.Project{
		Name:        name,
		Description: description,
		OwnerID:     ownerID,
	}

	err := p.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&project).Error; err != nil {
			return err
		}

		member := models.ProjectMember{
			ProjectID: project.ID,
			UserID:    ownerID,
			Role:      types.RoleOwner,
		}

		return tx.Create(&member).Error
	})

	if err != nil {
		return nil, err
	}

	return &project, nil
}

// ListForUser returns every project the user is a team member of.
func (p *Projects) ListForUser(userID uint) ([]models.Project, error) {
	var projects []models.Project

	err := p.db.
		Joins("JOIN project_members ON project_members.project_id = projects.id").
		Where("project_members.user_id = ? AND project_members.deleted_at IS NULL", userID).
		Find(&projects).Error

	if err != nil {
		return nil, err
	}

	return projects, nil
}

// Get returns the project and its ordered team. Non-members get Forbidden.
func (p *Projects) Get(projectID, userID uint) (*models.Project, []models.ProjectMember, error) {
	var project models.Project

	if err := p.db.First(&project, projectID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, apperr.New(apperr.NotFound, "Project not found")
		}
		return nil, nil, err
	}

	var members []models.ProjectMember

	err := p.db.Preload("User").
		Where("project_id = ?", projectID).Order("id").
		Find(&members).Error

	if err != nil {
		return nil, nil, err
	}

	if !IsTeamMember(roleOfMembers(members, userID)) {
		return nil, nil, apperr.New(apperr.Forbidden, "Access denied: not part of project team")
	}

	return &project, members, nil
}

// UpdateDetails merges only the supplied fields and returns the result.
func (p *Projects) UpdateDetails(projectID, userID uint, update ProjectUpdate) (*models.Project, error) {
	if update.Name == nil && update.Description == nil {
		return nil, apperr.New(apperr.InvalidInput, "No fields provided for update")
	}

	if update.Name != nil && strings.TrimSpace(*update.Name) == "" {
		return nil, apperr.New(apperr.InvalidInput, "Project name cannot be empty")
	}

	var project models.Project

	if err := p.db.First(&project, projectID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.New(apperr.NotFound, "Project not found")
		}
		return nil, err
	}

	role, err := roleOf(p.db, projectID, userID)

	if err != nil {
		return nil, err
	}

	if !CanManage(role) {
		return nil, apperr.New(apperr.Forbidden, "Access denied: only owner or editor can update project")
	}

	if update.Name != nil {
		project.Name = *update.Name
	}

	if update.Description != nil {
		project.Description = *update.Description
	}

	if err := p.db.Save(&project).Error; err != nil {
		return nil, err
	}

	return &project, nil
}

// Delete removes the project and everything scoped to it: comments under
// its tasks, the tasks, every notification referencing the project and the
// membership rows. One transaction; a partial cascade never commits. Only
// the owner may delete.
func (p *Projects) Delete(projectID, userID uint) error {
	var project models.Project

	if err := p.db.First(&project, projectID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.New(apperr.NotFound, "Project not found")
		}
		return err
	}

	role, err := roleOf(p.db, projectID, userID)

	if err != nil {
		return err
	}

	if role != types.RoleOwner {
		return apperr.New(apperr.Forbidden, "Forbidden: Only owner can delete the project")
	}

	return p.db.Transaction(func(tx *gorm.DB) error {
		err := tx.Where("task_id IN (?)",
			tx.Model(&models.Task{}).Select("id").Where("project_id = ?", projectID),
		).Delete(&models.Comment{}).Error

		if err != nil {
			return err
		}

		if err := tx.Where("project_id = ?", projectID).Delete(&models.Task{}).Error; err != nil {
			return err
		}

		if err := tx.Where("project_id = ?", projectID).Delete(&models.Notification{}).Error; err != nil {
			return err
		}

		if err := tx.Unscoped().Where("project_id = ?", projectID).Delete(&models.ProjectMember{}).Error; err != nil {
			return err
		}

		return tx.Delete(&project).Error
	})
}

func roleOfMembers(members []models.ProjectMember, userID uint) string {
	for _, member := range members {
		if member.UserID == userID {
			return member.Role
		}
	}
	return RoleAbsent
}
