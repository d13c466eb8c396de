package services

import (
	"fmt"
	"testing"

	"github.com/taskhive-dev/taskhive/internal/apperr"
	"github.com/taskhive-dev/taskhive/internal/models"
	"github.com/taskhive-dev/taskhive/internal/testutil"
	"gorm.io/gorm"
)

type testEnv struct {
	db          *gorm.DB
	notify      *Dispatcher
	membership  *Membership
	status      *StatusEngine
	projects    *Projects
	tasks       *Tasks
	comments    *Comments
	maintenance *Maintenance
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	conn := testutil.NewTestDB(t)
	log := testutil.NewTestLogger(t)

	notify := NewDispatcher(conn, log)
	status := NewStatusEngine(conn, notify, log)

	return &testEnv{
		db:          conn,
		notify:      notify,
		membership:  NewMembership(conn, notify, log),
		status:      status,
		projects:    NewProjects(conn, notify, log),
		tasks:       NewTasks(conn, notify, log),
		comments:    NewComments(conn, notify, log),
		maintenance: NewMaintenance(conn, notify, status, log),
	}
}

func (e *testEnv) createUser(t *testing.T, name string) *models.User {
	t.Helper()

	user := models.User{
		FirstName:    name,
		LastName:     "Tester",
		Email:        fmt.Sprintf("%s@example.com", name),
		PasswordHash: "x",
	}

	if err := e.db.Create(&user).Error; err != nil {
		t.Fatalf("creating user %s: %v", name, err)
	}

	return &user
}

// createProject creates a project owned by owner and returns it.
func (e *testEnv) createProject(t *testing.T, owner *models.User, name string) *models.Project {
	t.Helper()

	project, err := e.projects.Create(name, "test project", owner.ID)

	if err != nil {
		t.Fatalf("creating project %s: %v", name, err)
	}

	return project
}

// addMember adds user to project with role, acting as the owner.
func (e *testEnv) addMember(t *testing.T, project *models.Project, user *models.User, role string) {
	t.Helper()

	if err := e.membership.AddMember(project.ID, project.OwnerID, user.ID, role); err != nil {
		t.Fatalf("adding member %d: %v", user.ID, err)
	}
}

func (e *testEnv) notificationsFor(t *testing.T, userID uint) []models.Notification {
	t.Helper()

	notifications, err := e.notify.ListForUser(userID)

	if err != nil {
		t.Fatalf("listing notifications for %d: %v", userID, err)
	}

	return notifications
}

func (e *testEnv) clearNotifications(t *testing.T) {
	t.Helper()

	if err := e.db.Unscoped().Where("1 = 1").Delete(&models.Notification{}).Error; err != nil {
		t.Fatalf("clearing notifications: %v", err)
	}
}

func wantKind(t *testing.T, err error, kind apperr.Kind) {
	t.Helper()

	if err == nil {
		t.Fatalf("expected error of kind %v, got nil", kind)
	}

	if got := apperr.KindOf(err); got != kind {
		t.Fatalf("expected error kind %v, got %v (%v)", kind, got, err)
	}
}
