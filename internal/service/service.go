// Package service defines the backend-agnostic interface for the task API.
package service

import (
	"context"

	"taskdeck/internal/task"
)

// Service defines the interface for task API operations.
// All HTTP calls go through this interface.
// Commands and stores never talk to the network directly.
type Service interface {
	// Register creates an account and returns its token and user.
	Register(ctx context.Context, req RegisterRequest) (AuthResult, error)

	// Login authenticates and returns a token and user.
	Login(ctx context.Context, req LoginRequest) (AuthResult, error)

	// Verify validates the stored token and returns its user.
	Verify(ctx context.Context) (User, error)

	// Me returns the current user.
	Me(ctx context.Context) (User, error)

	// ListTasks returns the server-side tasks matching q.
	ListTasks(ctx context.Context, q TaskQuery) ([]task.Task, error)

	// GetTask returns one task.
	GetTask(ctx context.Context, id string) (task.Task, error)

	// CreateTask creates a task.
	CreateTask(ctx context.Context, in task.Input) (task.Task, error)

	// UpdateTask applies a partial update.
	UpdateTask(ctx context.Context, id string, p task.Patch) (task.Task, error)

	// DeleteTask deletes a task.
	DeleteTask(ctx context.Context, id string) error

	// ToggleTask flips completion.
	ToggleTask(ctx context.Context, id string) (task.Task, error)

	// VAPIDPublicKey returns the server's push public key.
	VAPIDPublicKey(ctx context.Context) (string, error)

	// SubscribePush registers a push subscription. Repeating the call with
	// the same subscription must not create duplicates server-side.
	SubscribePush(ctx context.Context, sub PushSubscription) error

	// UnsubscribePush removes a push subscription by endpoint.
	UnsubscribePush(ctx context.Context, endpoint string) error
}
