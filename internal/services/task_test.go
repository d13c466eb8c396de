package services

import (
	"testing"
	"time"

	"github.com/taskhive-dev/taskhive/internal/apperr"
	"github.com/taskhive-dev/taskhive/internal/models"
	"github.com/taskhive-dev/taskhive/internal/types"
)

func TestAddTaskValidation(t *testing.T) {
	env := newTestEnv(t)

	owner := env.createUser(t, "owner")
	project := env.createProject(t, owner, "alpha")

	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	env.tasks.now = func() time.Time { return now }

	// startDate >= endDate never writes.
	_, err := env.tasks.Add(project.ID, owner.ID, NewTask{
		Name:      "backwards",
		StartDate: now.Add(time.Hour),
		EndDate:   now,
	})
	wantKind(t, err, apperr.InvalidInput)

	_, err = env.tasks.Add(project.ID, owner.ID, NewTask{
		Name:      "same instant",
		StartDate: now,
		EndDate:   now,
	})
	wantKind(t, err, apperr.InvalidInput)

	_, err = env.tasks.Add(project.ID, owner.ID, NewTask{
		Name:    "undated",
		EndDate: now,
	})
	wantKind(t, err, apperr.InvalidInput)

	_, err = env.tasks.Add(project.ID, owner.ID, NewTask{
		Name:      "weird status",
		StartDate: now,
		EndDate:   now.Add(time.Hour),
		Status:    "Paused",
	})
	wantKind(t, err, apperr.InvalidInput)

	var count int64

	env.db.Model(&models.Task{}).Count(&count)
	if count != 0 {
		t.Fatalf("rejected tasks must not be written, found %d", count)
	}
}

func TestAddTaskAutoStatusAndFanOut(t *testing.T) {
	env := newTestEnv(t)

	owner := env.createUser(t, "owner")
	editor := env.createUser(t, "editor")
	member := env.createUser(t, "member")
	project := env.createProject(t, owner, "alpha")
	env.addMember(t, project, editor, types.RoleEditor)
	env.addMember(t, project, member, types.RoleMember)
	env.clearNotifications(t)

	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	env.tasks.now = func() time.Time { return now }

	task, err := env.tasks.Add(project.ID, editor.ID, NewTask{
		Name:      "yesterday to tomorrow",
		StartDate: now.Add(-24 * time.Hour),
		EndDate:   now.Add(24 * time.Hour),
	})

	if err != nil {
		t.Fatalf("adding task: %v", err)
	}

	if task.Status != types.StatusOngoing {
		t.Fatalf("expected %q, got %q", types.StatusOngoing, task.Status)
	}

	// Everyone but the creator hears about it.
	if got := env.notificationsFor(t, editor.ID); len(got) != 0 {
		t.Fatalf("creator should not be notified, got %+v", got)
	}

	for _, user := range []*models.User{owner, member} {
		got := env.notificationsFor(t, user.ID)

		if len(got) != 1 || got[0].Title != "New Task Created" {
			t.Fatalf("expected one New Task Created notification for user %d, got %+v", user.ID, got)
		}
	}

	// Outsiders cannot add tasks.
	outsider := env.createUser(t, "outsider")

	_, err = env.tasks.Add(project.ID, outsider.ID, NewTask{
		Name:      "sneaky",
		StartDate: now,
		EndDate:   now.Add(time.Hour),
	})
	wantKind(t, err, apperr.Forbidden)
}

func TestSetDone(t *testing.T) {
	env := newTestEnv(t)

	owner := env.createUser(t, "owner")
	editor := env.createUser(t, "editor")
	member := env.createUser(t, "member")
	outsider := env.createUser(t, "outsider")
	project := env.createProject(t, owner, "alpha")
	env.addMember(t, project, editor, types.RoleEditor)
	env.addMember(t, project, member, types.RoleMember)

	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	env.tasks.now = func() time.Time { return now }

	task, err := env.tasks.Add(project.ID, owner.ID, NewTask{
		Name:      "close me",
		StartDate: now.Add(-time.Hour),
		EndDate:   now.Add(time.Hour),
	})

	if err != nil {
		t.Fatalf("adding task: %v", err)
	}

	// Only Done may be set manually.
	_, err = env.tasks.SetDone(project.ID, task.ID, editor.ID, types.StatusOverdue)
	wantKind(t, err, apperr.InvalidInput)

	// Plain members and outsiders are rejected.
	_, err = env.tasks.SetDone(project.ID, task.ID, member.ID, types.StatusDone)
	wantKind(t, err, apperr.Forbidden)

	_, err = env.tasks.SetDone(project.ID, task.ID, outsider.ID, types.StatusDone)
	wantKind(t, err, apperr.Forbidden)

	env.clearNotifications(t)

	got, err := env.tasks.SetDone(project.ID, task.ID, editor.ID, types.StatusDone)

	if err != nil {
		t.Fatalf("setting done: %v", err)
	}

	if got.Status != types.StatusDone {
		t.Fatalf("expected %q, got %q", types.StatusDone, got.Status)
	}

	// Actor excluded from the completion fan-out.
	if n := env.notificationsFor(t, editor.ID); len(n) != 0 {
		t.Fatalf("actor should not be notified, got %+v", n)
	}

	if n := env.notificationsFor(t, owner.ID); len(n) != 1 || n[0].Title != "Task Completed" {
		t.Fatalf("expected Task Completed notification, got %+v", n)
	}

	// Setting Done again is a no-op, not an error.
	env.clearNotifications(t)

	if _, err := env.tasks.SetDone(project.ID, task.ID, owner.ID, types.StatusDone); err != nil {
		t.Fatalf("re-setting done: %v", err)
	}

	if n := env.notificationsFor(t, member.ID); len(n) != 0 {
		t.Fatalf("no-op completion should not re-notify, got %+v", n)
	}
}

func TestDeleteTaskCascades(t *testing.T) {
	env := newTestEnv(t)

	owner := env.createUser(t, "owner")
	member := env.createUser(t, "member")
	project := env.createProject(t, owner, "alpha")
	env.addMember(t, project, member, types.RoleMember)

	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	env.tasks.now = func() time.Time { return now }

	task, err := env.tasks.Add(project.ID, owner.ID, NewTask{
		Name:      "doomed",
		StartDate: now.Add(-time.Hour),
		EndDate:   now.Add(time.Hour),
	})

	if err != nil {
		t.Fatalf("adding task: %v", err)
	}

	if _, err := env.comments.Add(project.ID, task.ID, member.ID, "hello"); err != nil {
		t.Fatalf("adding comment: %v", err)
	}

	// Plain members cannot delete tasks.
	wantKind(t, env.tasks.Delete(project.ID, task.ID, member.ID), apperr.Forbidden)

	if err := env.tasks.Delete(project.ID, task.ID, owner.ID); err != nil {
		t.Fatalf("deleting task: %v", err)
	}

	_, err = env.tasks.Get(project.ID, task.ID, owner.ID)
	wantKind(t, err, apperr.NotFound)

	var count int64

	env.db.Model(&models.Comment{}).Where("task_id = ?", task.ID).Count(&count)
	if count != 0 {
		t.Fatalf("expected no comments after delete, got %d", count)
	}

	env.db.Model(&models.Notification{}).Where("task_id = ?", task.ID).Count(&count)
	if count != 0 {
		t.Fatalf("expected no task notifications after delete, got %d", count)
	}
}
