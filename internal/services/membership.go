package services

import (
	"errors"
	"fmt"

	"github.com/taskhive-dev/taskhive/internal/apperr"
	"github.com/taskhive-dev/taskhive/internal/models"
	"github.com/taskhive-dev/taskhive/internal/types"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// RoleAbsent is returned by RoleOf for users outside the project team.
const RoleAbsent = ""

// Membership is the single authority for who may act on a project. Every
// mutating operation in the other services goes through RoleOf or one of the
// Can* predicates, so the permission table lives here and nowhere else.
type Membership struct {
	db     *gorm.DB
	notify *Dispatcher
	log    *zap.SugaredLogger
}

func NewMembership(conn *gorm.DB, notify *Dispatcher, log *zap.SugaredLogger) *Membership {
	return &Membership{db: conn, notify: notify, log: log}
}

// RoleOf returns the user's declared role in the project, or RoleAbsent.
func (m *Membership) RoleOf(projectID, userID uint) (string, error) {
	return roleOf(m.db, projectID, userID)
}

func roleOf(conn *gorm.DB, projectID, userID uint) (string, error) {
	var member models.ProjectMember

	err := conn.Where("project_id = ? AND user_id = ?", projectID, userID).First(&member).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return RoleAbsent, nil
	}

	if err != nil {
		return RoleAbsent, err
	}

	return member.Role, nil
}

// CanManage reports whether role may mutate project contents: update project
// details, set a task Done, delete tasks, delete any comment. Admin carries
// the same write surface as editor.
func CanManage(role string) bool {
	return role == types.RoleOwner || role == types.RoleEditor || role == types.RoleAdmin
}

// IsTeamMember reports whether role grants read access and commenting.
func IsTeamMember(role string) bool {
	return role != RoleAbsent
}

func teamMembers(conn *gorm.DB, projectID uint) ([]models.ProjectMember, error) {
	var members []models.ProjectMember

	if err := conn.Where("project_id = ?", projectID).Order("id").Find(&members).Error; err != nil {
		return nil, err
	}

	return members, nil
}

// AddMember appends a user to the project team and notifies them. The
// membership row is the only write needed; the user's project list is a
// projection of membership rows, so both sides move together by construction.
func (m *Membership) AddMember(projectID, requesterID, userID uint, role string) error {
	if !types.ValidRole(role) || role == types.RoleOwner {
		return apperr.New(apperr.InvalidInput, fmt.Sprintf("Invalid role: %s", role))
	}

	var project models.Project

	if err := m.db.First(&project, projectID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.New(apperr.NotFound, "Project not found")
		}
		return err
	}

	requesterRole, err := roleOf(m.db, projectID, requesterID)

	if err != nil {
		return err
	}

	if !CanManage(requesterRole) {
		return apperr.New(apperr.Forbidden, "Forbidden: You do not have permission to manage members")
	}

	var user models.User

	if err := m.db.First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.New(apperr.NotFound, "User not found")
		}
		return err
	}

	existing, err := roleOf(m.db, projectID, userID)

	if err != nil {
		return err
	}

	if existing != RoleAbsent {
		return apperr.New(apperr.InvalidInput, "User is already a member of the project")
	}

	member := models.ProjectMember{
		ProjectID: projectID,
		UserID:    userID,
		Role:      role,
	}

	if err := m.db.Create(&member).Error; err != nil {
		return err
	}

	m.notify.Send(models.Notification{
		UserID:    userID,
		ProjectID: projectID,
		Title:     "Project Invitation",
		Body:      fmt.Sprintf("You have been added to project '%s' as %s", project.Name, role),
		Type:      types.NotificationInfo,
	})

	return nil
}

// RemoveMember removes a user from the project team and notifies them. The
// owner cannot be removed.
func (m *Membership) RemoveMember(projectID, requesterID, userID uint) error {
	var project models.Project

	if err := m.db.First(&project, projectID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.New(apperr.NotFound, "Project not found")
		}
		return err
	}

	requesterRole, err := roleOf(m.db, projectID, requesterID)

	if err != nil {
		return err
	}

	if !CanManage(requesterRole) {
		return apperr.New(apperr.Forbidden, "Forbidden: You do not have permission to manage members")
	}

	role, err := roleOf(m.db, projectID, userID)

	if err != nil {
		return err
	}

	if role == RoleAbsent {
		return apperr.New(apperr.NotFound, "User is not a member of the project")
	}

	if role == types.RoleOwner {
		return apperr.New(apperr.InvalidInput, "The project owner cannot be removed")
	}

	// Hard delete so the (user_id, project_id) unique index does not block
	// re-inviting the same user later.
	err = m.db.Unscoped().Where("project_id = ? AND user_id = ?", projectID, userID).
		Delete(&models.ProjectMember{}).Error

	if err != nil {
		return err
	}

	m.notify.Send(models.Notification{
		UserID:    userID,
		ProjectID: projectID,
		Title:     "Project Removal",
		Body:      fmt.Sprintf("You have been removed from project '%s'", project.Name),
		Type:      types.NotificationInfo,
	})

	return nil
}

// UpdateRole replaces a member's role and notifies them, naming old and new
// role. Ownership cannot be granted or revoked this way.
func (m *Membership) UpdateRole(projectID, requesterID, userID uint, newRole string) error {
	if !types.ValidRole(newRole) || newRole == types.RoleOwner {
		return apperr.New(apperr.InvalidInput, fmt.Sprintf("Invalid role: %s", newRole))
	}

	var project models.Project

	if err := m.db.First(&project, projectID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.New(apperr.NotFound, "Project not found")
		}
		return err
	}

	requesterRole, err := roleOf(m.db, projectID, requesterID)

	if err != nil {
		return err
	}

	if !CanManage(requesterRole) {
		return apperr.New(apperr.Forbidden, "Forbidden: You do not have permission to manage members")
	}

	var member models.ProjectMember

	err = m.db.Where("project_id = ? AND user_id = ?", projectID, userID).First(&member).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperr.New(apperr.NotFound, "User is not a member of the project")
	}

	if err != nil {
		return err
	}

	if member.Role == types.RoleOwner {
		return apperr.New(apperr.InvalidInput, "The owner role cannot be changed")
	}

	oldRole := member.Role
	member.Role = newRole

	if err := m.db.Save(&member).Error; err != nil {
		return err
	}

	m.notify.Send(models.Notification{
		UserID:    userID,
		ProjectID: projectID,
		Title:     "Role Update",
		Body: fmt.Sprintf("Your role in project '%s' has been updated from %s to %s",
			project.Name, oldRole, newRole),
		Type: types.NotificationInfo,
		Data: eventData(map[string]interface{}{"old_role": oldRole, "new_role": newRole}),
	})

	return nil
}
