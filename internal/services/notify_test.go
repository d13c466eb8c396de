package services

import (
	"testing"

	"github.com/taskhive-dev/taskhive/internal/apperr"
	"github.com/taskhive-dev/taskhive/internal/models"
	"github.com/taskhive-dev/taskhive/internal/types"
)

func TestMarkRead(t *testing.T) {
	env := newTestEnv(t)

	alice := env.createUser(t, "alice")
	bob := env.createUser(t, "bob")
	project := env.createProject(t, alice, "alpha")

	stored, err := env.notify.Create(models.Notification{
		UserID:    alice.ID,
		ProjectID: project.ID,
		Title:     "Hello",
		Body:      "first notification",
		Type:      types.NotificationInfo,
	})

	if err != nil {
		t.Fatalf("creating notification: %v", err)
	}

	if stored.ID == 0 {
		t.Fatal("expected stored notification to have an id")
	}

	wantKind(t, env.notify.MarkRead(9999, alice.ID), apperr.NotFound)
	wantKind(t, env.notify.MarkRead(stored.ID, bob.ID), apperr.Forbidden)

	if err := env.notify.MarkRead(stored.ID, alice.ID); err != nil {
		t.Fatalf("marking read: %v", err)
	}

	var got models.Notification

	if err := env.db.First(&got, stored.ID).Error; err != nil {
		t.Fatalf("reloading notification: %v", err)
	}

	if !got.Read {
		t.Fatal("expected notification to be read")
	}
}

func TestMarkAllRead(t *testing.T) {
	env := newTestEnv(t)

	alice := env.createUser(t, "alice")
	bob := env.createUser(t, "bob")
	project := env.createProject(t, alice, "alpha")

	for i := 0; i < 3; i++ {
		if _, err := env.notify.Create(models.Notification{
			UserID:    alice.ID,
			ProjectID: project.ID,
			Title:     "ping",
			Type:      types.NotificationInfo,
		}); err != nil {
			t.Fatalf("creating notification: %v", err)
		}
	}

	if _, err := env.notify.Create(models.Notification{
		UserID:    bob.ID,
		ProjectID: project.ID,
		Title:     "for bob",
		Type:      types.NotificationInfo,
	}); err != nil {
		t.Fatalf("creating notification: %v", err)
	}

	count, err := env.notify.MarkAllRead(alice.ID)

	if err != nil {
		t.Fatalf("marking all read: %v", err)
	}

	if count != 3 {
		t.Fatalf("expected 3 updated, got %d", count)
	}

	// Bob's notification is untouched, and a second pass updates nothing.
	n := env.notificationsFor(t, bob.ID)

	if len(n) != 1 || n[0].Read {
		t.Fatalf("expected bob's notification unread, got %+v", n)
	}

	count, err = env.notify.MarkAllRead(alice.ID)

	if err != nil {
		t.Fatalf("second mark all read: %v", err)
	}

	if count != 0 {
		t.Fatalf("expected 0 updated on second pass, got %d", count)
	}
}

func TestFanOutSkipsExcluded(t *testing.T) {
	env := newTestEnv(t)

	alice := env.createUser(t, "alice")
	bob := env.createUser(t, "bob")
	carol := env.createUser(t, "carol")
	project := env.createProject(t, alice, "alpha")
	env.addMember(t, project, bob, types.RoleMember)
	env.addMember(t, project, carol, types.RoleMember)
	env.clearNotifications(t)

	members, err := teamMembers(env.db, project.ID)

	if err != nil {
		t.Fatalf("loading team: %v", err)
	}

	env.notify.FanOut(members, bob.ID, models.Notification{
		ProjectID: project.ID,
		Title:     "broadcast",
		Type:      types.NotificationInfo,
	})

	if n := env.notificationsFor(t, bob.ID); len(n) != 0 {
		t.Fatalf("excluded member should get nothing, got %+v", n)
	}

	for _, user := range []*models.User{alice, carol} {
		if n := env.notificationsFor(t, user.ID); len(n) != 1 {
			t.Fatalf("expected one notification for user %d, got %d", user.ID, len(n))
		}
	}
}
