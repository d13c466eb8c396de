package services

import (
	"testing"
	"time"

	"github.com/taskhive-dev/taskhive/internal/apperr"
	"github.com/taskhive-dev/taskhive/internal/types"
)

// End-to-end walk through a project's life: ownership, editor privileges,
// outsider rejection and the full cascade on delete.
func TestProjectLifecycle(t *testing.T) {
	env := newTestEnv(t)

	alice := env.createUser(t, "alice")
	bob := env.createUser(t, "bob")
	carol := env.createUser(t, "carol")

	project := env.createProject(t, alice, "launch")
	env.addMember(t, project, bob, types.RoleEditor)

	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	env.tasks.now = func() time.Time { return now }

	task, err := env.tasks.Add(project.ID, alice.ID, NewTask{
		Name:      "press release",
		StartDate: now.Add(-24 * time.Hour),
		EndDate:   now.Add(24 * time.Hour),
	})

	if err != nil {
		t.Fatalf("adding task: %v", err)
	}

	if task.Status != types.StatusOngoing {
		t.Fatalf("expected Ongoing, got %q", task.Status)
	}

	// The editor may close the task; the outsider may not.
	if _, err := env.tasks.SetDone(project.ID, task.ID, bob.ID, types.StatusDone); err != nil {
		t.Fatalf("editor set done: %v", err)
	}

	_, err = env.tasks.SetDone(project.ID, task.ID, carol.ID, types.StatusDone)
	wantKind(t, err, apperr.Forbidden)

	if _, err := env.comments.Add(project.ID, task.ID, bob.ID, "shipped"); err != nil {
		t.Fatalf("adding comment: %v", err)
	}

	_, err = env.comments.Add(project.ID, task.ID, carol.ID, "me too")
	wantKind(t, err, apperr.Forbidden)

	_, err = env.tasks.List(project.ID, carol.ID)
	wantKind(t, err, apperr.Forbidden)

	// Owner deletes; everything scoped to the project is gone.
	if err := env.projects.Delete(project.ID, alice.ID); err != nil {
		t.Fatalf("deleting project: %v", err)
	}

	_, _, err = env.projects.Get(project.ID, alice.ID)
	wantKind(t, err, apperr.NotFound)

	_, err = env.tasks.Get(project.ID, task.ID, alice.ID)
	wantKind(t, err, apperr.NotFound)

	_, err = env.comments.List(project.ID, task.ID, alice.ID)
	wantKind(t, err, apperr.NotFound)

	projects, err := env.projects.ListForUser(bob.ID)

	if err != nil {
		t.Fatalf("listing bob's projects: %v", err)
	}

	if len(projects) != 0 {
		t.Fatalf("expected empty project list for former member, got %d", len(projects))
	}
}
