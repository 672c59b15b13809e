package testutil

import (
	"bufio"
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"taskdeck/internal/commands"
	"taskdeck/internal/config"
	"taskdeck/internal/kv"
	"taskdeck/internal/logging"
	"taskdeck/internal/push"
	"taskdeck/internal/session"
	"taskdeck/internal/task"
)

// Now is the fixed clock used by NewApp.
var Now = time.Date(2026, time.October, 16, 9, 0, 0, 0, time.UTC)

// Fixture is a fully wired App on fakes.
type Fixture struct {
	App     *commands.App
	Service *FakeService
	Runtime *FakeRuntime
	KV      *kv.Memory

	mu   sync.Mutex
	tick int
}

// TaskID returns the id NewApp's store assigns to the n-th created task.
func TaskID(n int) string {
	return fmt.Sprintf("t%07d-0000-4000-8000-000000000000", n)
}

// NewApp builds an App on an in-memory store, FakeService and FakeRuntime.
// The task store hands out TaskID(1), TaskID(2), ... and creation times one
// minute apart starting at Now.
func NewApp(t testing.TB) *Fixture {
	t.Helper()

	f := &Fixture{
		Service: NewFakeService(),
		Runtime: NewFakeRuntime(),
		KV:      kv.NewMemory(),
	}
	f.Service.AddUser("tester", "tester@example.com", "secret1")

	cfg := config.New(t.TempDir())
	log := logging.Discard()

	var ids int
	tasks := task.NewStore(f.KV, log,
		task.WithClock(f.clock),
		task.WithIDs(func() string {
			ids++
			return TaskID(ids)
		}),
	)
	pm := push.NewManager(f.Runtime, f.Service, cfg.VAPIDPublicKey, log)

	f.App = &commands.App{
		Config:  cfg,
		Service: f.Service,
		Session: session.New(f.Service, f.KV, pm, log),
		Tasks:   tasks,
		Push:    pm,
		In:      bufio.NewReader(strings.NewReader("")),
		Log:     log,
		Now:     func() time.Time { return Now },
	}
	return f
}

func (f *Fixture) clock() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tick++
	return Now.Add(time.Duration(f.tick) * time.Minute)
}

// SetInput replaces the App's stdin.
func (f *Fixture) SetInput(s string) {
	f.App.In = bufio.NewReader(strings.NewReader(s))
}

// Login stores a valid token and initializes the session.
func (f *Fixture) Login(t testing.TB) {
	t.Helper()
	ctx := context.Background()
	if err := f.KV.Set(ctx, kv.KeyToken, []byte(ValidToken)); err != nil {
		t.Fatalf("failed to store token: %v", err)
	}
	if err := f.App.Session.Init(ctx); err != nil {
		t.Fatalf("failed to init session: %v", err)
	}
	f.App.Session.Wait()
}

// AddTask creates a local task and fails the test on error.
func (f *Fixture) AddTask(t testing.TB, in task.Input) task.Task {
	t.Helper()
	created, err := f.App.Tasks.Add(context.Background(), in)
	if err != nil {
		t.Fatalf("failed to add task: %v", err)
	}
	return created
}
