package commands_test

import (
	"errors"
	"testing"

	"taskdeck/internal/commands"
	"taskdeck/internal/exitcode"
	"taskdeck/internal/task"
	"taskdeck/internal/testutil"
)

func remoteFixture(t *testing.T) *testutil.Fixture {
	t.Helper()
	fx := testutil.NewApp(t)
	fx.Login(t)
	fx.Service.AddTask("a1", "Alpha")
	fx.Service.AddTask("b2", "Beta")
	return fx
}

func runRemote(t *testing.T, fx *testutil.Fixture, args ...string) (string, string, int) {
	t.Helper()
	return runCommand(t, &commands.RemoteCmd{}, fx, args, false)
}

func TestRemoteList(t *testing.T) {
	fx := remoteFixture(t)

	stdout, stderr, code := runRemote(t, fx, "list")
	expectCode(t, exitcode.Success, code)
	if stderr != "" {
		t.Errorf("expected no stderr, got %q", stderr)
	}
	expected := "   1  a1  [ ] Alpha  (medium)\n" +
		"   2  b2  [ ] Beta  (medium)\n"
	if stdout != expected {
		t.Errorf("expected %q, got %q", expected, stdout)
	}
}

func TestRemoteList_Query(t *testing.T) {
	fx := remoteFixture(t)

	stdout, _, code := runRemote(t, fx, "ls", "--search", "beta", "--status", "active")
	expectCode(t, exitcode.Success, code)

	// Numbers stay positions in the unfiltered listing.
	if stdout != "   2  b2  [ ] Beta  (medium)\n" {
		t.Errorf("unexpected output %q", stdout)
	}
}

func TestRemoteList_NoMatches(t *testing.T) {
	fx := remoteFixture(t)

	stdout, _, _ := runRemote(t, fx, "list", "--search", "zzz")
	if stdout != "no tasks found\n" {
		t.Errorf("unexpected output %q", stdout)
	}
}

func TestRemoteList_BackendError(t *testing.T) {
	fx := remoteFixture(t)
	fx.Service.ListTasksErr = errors.New("boom")

	stdout, stderr, code := runRemote(t, fx, "list")
	expectCode(t, exitcode.BackendError, code)
	if stdout != "" {
		t.Errorf("expected no stdout, got %q", stdout)
	}
	if stderr != "error: backend error: boom\n" {
		t.Errorf("unexpected stderr %q", stderr)
	}
}

func TestRemoteAdd(t *testing.T) {
	fx := remoteFixture(t)

	stdout, _, code := runRemote(t, fx, "add", "--priority", "high", "--category", "health", "Gym")
	expectCode(t, exitcode.Success, code)
	if stdout != "ok\n" {
		t.Errorf("expected %q, got %q", "ok\n", stdout)
	}

	tasks := fx.Service.Tasks()
	if len(tasks) != 3 {
		t.Fatalf("expected 3 remote tasks, got %d", len(tasks))
	}
	got := tasks[2]
	if got.ID != "r1" || got.Title != "Gym" || got.Priority != task.PriorityHigh || got.Category != "Health" {
		t.Errorf("unexpected task %+v", got)
	}

	// Remote changes never touch the local collection.
	if n := len(fx.App.Tasks.All()); n != 0 {
		t.Errorf("expected no local tasks, got %d", n)
	}
}

func TestRemoteToggle(t *testing.T) {
	fx := remoteFixture(t)

	stdout, _, code := runRemote(t, fx, "done", "2")
	expectCode(t, exitcode.Success, code)
	if stdout != "   2  b2  [x] Beta  (medium)\n" {
		t.Errorf("unexpected output %q", stdout)
	}
	if !fx.Service.Tasks()[1].Completed {
		t.Error("expected remote task to be completed")
	}
}

func TestRemoteEdit(t *testing.T) {
	fx := remoteFixture(t)

	stdout, _, code := runRemote(t, fx, "edit", "--title", "Alpha 2", "--due", "2026-11-01", "a1")
	expectCode(t, exitcode.Success, code)
	if stdout != "   1  a1  [ ] Alpha 2  (medium, due 2026-11-01)\n" {
		t.Errorf("unexpected output %q", stdout)
	}
}

func TestRemoteEdit_NothingToChange(t *testing.T) {
	fx := remoteFixture(t)

	_, stderr, code := runRemote(t, fx, "edit", "1")
	expectCode(t, exitcode.UserError, code)
	if stderr != "error: nothing to change\n" {
		t.Errorf("unexpected stderr %q", stderr)
	}
}

func TestRemoteShow(t *testing.T) {
	fx := remoteFixture(t)

	stdout, _, code := runRemote(t, fx, "show", "1")
	expectCode(t, exitcode.Success, code)

	expected := "id:          a1\n" +
		"title:       Alpha\n" +
		"status:      active\n" +
		"priority:    medium\n" +
		"created:     2026-01-01 00:00\n"
	if stdout != expected {
		t.Errorf("expected %q, got %q", expected, stdout)
	}
}

func TestRemoteRm(t *testing.T) {
	fx := remoteFixture(t)

	stdout, _, code := runRemote(t, fx, "rm", "a1")
	expectCode(t, exitcode.Success, code)
	if stdout != "ok\n" {
		t.Errorf("expected %q, got %q", "ok\n", stdout)
	}
	tasks := fx.Service.Tasks()
	if len(tasks) != 1 || tasks[0].ID != "b2" {
		t.Errorf("unexpected remote tasks %+v", tasks)
	}
}

func TestRemote_Errors(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		wantCode int
		wantErr  string
	}{
		{"no subcommand", nil, exitcode.UserError, "error: subcommand required: list, add, show, toggle, rm or edit\n"},
		{"unknown subcommand", []string{"sync"}, exitcode.UserError, "error: unknown remote subcommand: sync\n"},
		{"unknown flag", []string{"list", "--bogus"}, exitcode.UserError, "error: unknown flag: -bogus\n"},
		{"out of range", []string{"toggle", "9"}, exitcode.UserError, "error: task number out of range: 9\n"},
		{"missing ref", []string{"rm"}, exitcode.UserError, "error: task reference required\n"},
		{"missing title", []string{"add"}, exitcode.UserError, "error: title required\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fx := remoteFixture(t)

			stdout, stderr, code := runRemote(t, fx, tt.args...)
			expectCode(t, tt.wantCode, code)
			if stdout != "" {
				t.Errorf("expected no stdout, got %q", stdout)
			}
			if stderr != tt.wantErr {
				t.Errorf("expected %q, got %q", tt.wantErr, stderr)
			}
			if n := len(fx.Service.Tasks()); n != 2 {
				t.Errorf("expected remote tasks unchanged, got %d", n)
			}
		})
	}
}
