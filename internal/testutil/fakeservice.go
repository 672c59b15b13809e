// Package testutil provides testing utilities.
package testutil

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"sync"
	"time"

	"taskdeck/internal/service"
	"taskdeck/internal/task"
)

// ErrNotFound is returned when a task does not exist.
var ErrNotFound = errors.New("Task not found")

// ErrInvalidCredentials is the backend's login rejection.
var ErrInvalidCredentials = errors.New("Invalid credentials")

// ValidToken is the token FakeService issues and accepts.
const ValidToken = "fake-token"

// FakeService is an in-memory implementation of service.Service for testing.
type FakeService struct {
	mu    sync.RWMutex
	users map[string]fakeUser // username -> user
	tasks []task.Task
	subs  map[string]service.PushSubscription // endpoint -> subscription
	seq   int

	// Token is the token Verify and Me check against. Empty accepts any.
	Token string

	// PushKey is returned by VAPIDPublicKey. Empty fails the call.
	PushKey string

	// Error injection for testing
	RegisterErr    error
	LoginErr       error
	VerifyErr      error
	ListTasksErr   error
	CreateTaskErr  error
	UpdateTaskErr  error
	DeleteTaskErr  error
	ToggleTaskErr  error
	SubscribeErr   error
	UnsubscribeErr error

	// Call counters
	VerifyCalls      int
	SubscribeCalls   int
	UnsubscribeCalls int
	LastQuery        service.TaskQuery
}

type fakeUser struct {
	user     service.User
	password string
}

// NewFakeService creates an empty FakeService.
func NewFakeService() *FakeService {
	return &FakeService{
		users: make(map[string]fakeUser),
		subs:  make(map[string]service.PushSubscription),
		Token: ValidToken,
	}
}

// AddUser registers a user that can log in with password.
func (f *FakeService) AddUser(username, email, password string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.users[username] = fakeUser{
		user:     service.User{ID: "u-" + username, Username: username, Email: email},
		password: password,
	}
}

// AddTask adds a remote task.
func (f *FakeService) AddTask(id, title string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tasks = append(f.tasks, task.Task{
		ID:        id,
		Title:     title,
		Priority:  task.PriorityMedium,
		CreatedAt: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC).Add(time.Duration(len(f.tasks)) * time.Minute),
	})
}

// Tasks returns a copy of the remote tasks.
func (f *FakeService) Tasks() []task.Task {
	f.mu.RLock()
	defer f.mu.RUnlock()
	out := make([]task.Task, len(f.tasks))
	copy(out, f.tasks)
	return out
}

// Subscriptions returns the registered push subscriptions.
func (f *FakeService) Subscriptions() []service.PushSubscription {
	f.mu.RLock()
	defer f.mu.RUnlock()
	out := make([]service.PushSubscription, 0, len(f.subs))
	for _, s := range f.subs {
		out = append(out, s)
	}
	return out
}

// Register implements service.Service.
func (f *FakeService) Register(ctx context.Context, req service.RegisterRequest) (service.AuthResult, error) {
	if f.RegisterErr != nil {
		return service.AuthResult{}, f.RegisterErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.users[req.Username]; ok {
		return service.AuthResult{}, errors.New("User already exists")
	}
	u := service.User{ID: "u-" + req.Username, Username: req.Username, Email: req.Email}
	f.users[req.Username] = fakeUser{user: u, password: req.Password}
	return service.AuthResult{Token: f.issue(), User: u}, nil
}

// Login implements service.Service. Username may also be an email.
func (f *FakeService) Login(ctx context.Context, req service.LoginRequest) (service.AuthResult, error) {
	if f.LoginErr != nil {
		return service.AuthResult{}, f.LoginErr
	}
	f.mu.RLock()
	defer f.mu.RUnlock()
	for _, u := range f.users {
		if u.user.Username != req.Username && u.user.Email != req.Username {
			continue
		}
		if u.password != req.Password {
			break
		}
		return service.AuthResult{Token: f.issue(), User: u.user}, nil
	}
	return service.AuthResult{}, ErrInvalidCredentials
}

func (f *FakeService) issue() string {
	if f.Token == "" {
		return ValidToken
	}
	return f.Token
}

// Verify implements service.Service. It returns the first user.
func (f *FakeService) Verify(ctx context.Context) (service.User, error) {
	f.mu.Lock()
	f.VerifyCalls++
	f.mu.Unlock()
	if f.VerifyErr != nil {
		return service.User{}, f.VerifyErr
	}
	return f.Me(ctx)
}

// Me implements service.Service.
func (f *FakeService) Me(ctx context.Context) (service.User, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	for _, u := range f.users {
		return u.user, nil
	}
	return service.User{Username: "tester"}, nil
}

// ListTasks implements service.Service. Only Status and Search are applied.
func (f *FakeService) ListTasks(ctx context.Context, q service.TaskQuery) ([]task.Task, error) {
	if f.ListTasksErr != nil {
		return nil, f.ListTasksErr
	}
	f.mu.Lock()
	f.LastQuery = q
	f.mu.Unlock()

	f.mu.RLock()
	defer f.mu.RUnlock()
	var out []task.Task
	for _, t := range f.tasks {
		if q.Status == task.StatusActive && t.Completed || q.Status == task.StatusCompleted && !t.Completed {
			continue
		}
		if q.Search != "" && !strings.Contains(strings.ToLower(t.Title), strings.ToLower(q.Search)) {
			continue
		}
		out = append(out, t)
	}
	return out, nil
}

// GetTask implements service.Service.
func (f *FakeService) GetTask(ctx context.Context, id string) (task.Task, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	i := f.index(id)
	if i < 0 {
		return task.Task{}, ErrNotFound
	}
	return f.tasks[i], nil
}

// CreateTask implements service.Service.
func (f *FakeService) CreateTask(ctx context.Context, in task.Input) (task.Task, error) {
	if f.CreateTaskErr != nil {
		return task.Task{}, f.CreateTaskErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seq++
	t := task.Task{
		ID:          "r" + strconv.Itoa(f.seq),
		Title:       in.Title,
		Description: in.Description,
		Priority:    in.Priority,
		Category:    in.Category,
		DueDate:     in.DueDate,
		CreatedAt:   time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC).Add(time.Duration(f.seq) * time.Minute),
	}
	if t.Priority == "" {
		t.Priority = task.PriorityMedium
	}
	f.tasks = append(f.tasks, t)
	return t, nil
}

// UpdateTask implements service.Service.
func (f *FakeService) UpdateTask(ctx context.Context, id string, p task.Patch) (task.Task, error) {
	if f.UpdateTaskErr != nil {
		return task.Task{}, f.UpdateTaskErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	i := f.index(id)
	if i < 0 {
		return task.Task{}, ErrNotFound
	}
	t := &f.tasks[i]
	if p.Title != nil {
		t.Title = *p.Title
	}
	if p.Description != nil {
		t.Description = *p.Description
	}
	if p.Priority != nil {
		t.Priority = *p.Priority
	}
	if p.Category != nil {
		t.Category = *p.Category
	}
	if p.ClearDueDate {
		t.DueDate = nil
	} else if p.DueDate != nil {
		d := *p.DueDate
		t.DueDate = &d
	}
	if p.Completed != nil {
		t.Completed = *p.Completed
	}
	return *t, nil
}

// DeleteTask implements service.Service.
func (f *FakeService) DeleteTask(ctx context.Context, id string) error {
	if f.DeleteTaskErr != nil {
		return f.DeleteTaskErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	i := f.index(id)
	if i < 0 {
		return ErrNotFound
	}
	f.tasks = append(f.tasks[:i], f.tasks[i+1:]...)
	return nil
}

// ToggleTask implements service.Service.
func (f *FakeService) ToggleTask(ctx context.Context, id string) (task.Task, error) {
	if f.ToggleTaskErr != nil {
		return task.Task{}, f.ToggleTaskErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	i := f.index(id)
	if i < 0 {
		return task.Task{}, ErrNotFound
	}
	f.tasks[i].Completed = !f.tasks[i].Completed
	return f.tasks[i], nil
}

func (f *FakeService) index(id string) int {
	for i, t := range f.tasks {
		if t.ID == id {
			return i
		}
	}
	return -1
}

// VAPIDPublicKey implements service.Service.
func (f *FakeService) VAPIDPublicKey(ctx context.Context) (string, error) {
	if f.PushKey == "" {
		return "", errors.New("VAPID public key not configured")
	}
	return f.PushKey, nil
}

// SubscribePush implements service.Service. Subscriptions are keyed by
// endpoint so repeats do not duplicate.
func (f *FakeService) SubscribePush(ctx context.Context, sub service.PushSubscription) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.SubscribeCalls++
	if f.SubscribeErr != nil {
		return f.SubscribeErr
	}
	f.subs[sub.Endpoint] = sub
	return nil
}

// UnsubscribePush implements service.Service.
func (f *FakeService) UnsubscribePush(ctx context.Context, endpoint string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.UnsubscribeCalls++
	if f.UnsubscribeErr != nil {
		return f.UnsubscribeErr
	}
	delete(f.subs, endpoint)
	return nil
}
