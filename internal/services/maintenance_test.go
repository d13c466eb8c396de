package services

import (
	"context"
	"testing"
	"time"

	"github.com/taskhive-dev/taskhive/internal/models"
	"github.com/taskhive-dev/taskhive/internal/types"
)

func TestScanDeadlines(t *testing.T) {
	env := newTestEnv(t)

	owner := env.createUser(t, "owner")
	member := env.createUser(t, "member")
	project := env.createProject(t, owner, "alpha")
	env.addMember(t, project, member, types.RoleMember)

	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	env.tasks.now = func() time.Time { return now }
	env.maintenance.now = func() time.Time { return now }

	dueSoon, err := env.tasks.Add(project.ID, owner.ID, NewTask{
		Name:      "due soon",
		StartDate: now.Add(-time.Hour),
		EndDate:   now.Add(6 * time.Hour),
	})

	if err != nil {
		t.Fatalf("adding task: %v", err)
	}

	if _, err := env.tasks.Add(project.ID, owner.ID, NewTask{
		Name:      "due next week",
		StartDate: now.Add(-time.Hour),
		EndDate:   now.Add(7 * 24 * time.Hour),
	}); err != nil {
		t.Fatalf("adding task: %v", err)
	}

	overdue := models.Task{
		ProjectID:   project.ID,
		Name:        "already late",
		StartDate:   now.Add(-48 * time.Hour),
		EndDate:     now.Add(-time.Hour),
		Status:      types.StatusOverdue,
		CreatedByID: owner.ID,
	}

	if err := env.db.Create(&overdue).Error; err != nil {
		t.Fatalf("seeding overdue task: %v", err)
	}

	env.clearNotifications(t)

	alerted, err := env.maintenance.ScanDeadlines(context.Background())

	if err != nil {
		t.Fatalf("scanning deadlines: %v", err)
	}

	if alerted != 1 {
		t.Fatalf("expected 1 alerted task, got %d", alerted)
	}

	// Every member gets exactly one deadline alert, for the due-soon task.
	for _, user := range []*models.User{owner, member} {
		n := env.notificationsFor(t, user.ID)

		if len(n) != 1 || n[0].Title != "Deadline Approaching" || n[0].Type != types.NotificationDeadline {
			t.Fatalf("expected one Deadline Approaching notification for user %d, got %+v", user.ID, n)
		}

		if n[0].TaskID == nil || *n[0].TaskID != dueSoon.ID {
			t.Fatalf("alert references wrong task: %+v", n[0])
		}
	}

	// A second tick inside the window does not re-alert.
	alerted, err = env.maintenance.ScanDeadlines(context.Background())

	if err != nil {
		t.Fatalf("second scan: %v", err)
	}

	if alerted != 0 {
		t.Fatalf("expected dedupe to suppress re-alerts, got %d", alerted)
	}
}

func TestScanDeadlinesSkipsDone(t *testing.T) {
	env := newTestEnv(t)

	owner := env.createUser(t, "owner")
	project := env.createProject(t, owner, "alpha")

	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	env.maintenance.now = func() time.Time { return now }

	done := models.Task{
		ProjectID:   project.ID,
		Name:        "done already",
		StartDate:   now.Add(-time.Hour),
		EndDate:     now.Add(6 * time.Hour),
		Status:      types.StatusDone,
		CreatedByID: owner.ID,
	}

	if err := env.db.Create(&done).Error; err != nil {
		t.Fatalf("seeding task: %v", err)
	}

	env.clearNotifications(t)

	alerted, err := env.maintenance.ScanDeadlines(context.Background())

	if err != nil {
		t.Fatalf("scanning deadlines: %v", err)
	}

	if alerted != 0 {
		t.Fatalf("Done tasks must not alert, got %d", alerted)
	}
}

func TestMaintenanceRun(t *testing.T) {
	env := newTestEnv(t)

	owner := env.createUser(t, "owner")
	project := env.createProject(t, owner, "alpha")

	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	env.tasks.now = func() time.Time { return now }

	task, err := env.tasks.Add(project.ID, owner.ID, NewTask{
		Name:      "slipping",
		StartDate: now.Add(-2 * time.Hour),
		EndDate:   now.Add(12 * time.Hour),
	})

	if err != nil {
		t.Fatalf("adding task: %v", err)
	}

	later := now.Add(36 * time.Hour)
	env.status.now = func() time.Time { return later }
	env.maintenance.now = func() time.Time { return later }

	env.maintenance.Run(context.Background())

	var got models.Task

	if err := env.db.First(&got, task.ID).Error; err != nil {
		t.Fatalf("reloading task: %v", err)
	}

	if got.Status != types.StatusOverdue {
		t.Fatalf("expected recompute to mark task Overdue, got %q", got.Status)
	}
}
