package service

import "taskdeck/internal/task"

// User is the authenticated identity.
type User struct {
	ID       string `json:"id,omitempty"`
	Username string `json:"username"`
	Email    string `json:"email,omitempty"`
}

// AuthResult is returned by Login and Register.
type AuthResult struct {
	Token string
	User  User
}

// LoginRequest holds login credentials. Username may also be an email.
type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// Messages overrides validator messages.
func (LoginRequest) Messages() map[string]string {
	return map[string]string{
		"Username.required": "username or email is required",
		"Password.required": "password is required",
	}
}

// RegisterRequest holds signup data.
type RegisterRequest struct {
	Username string `json:"username" validate:"min=3"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"min=6"`
}

// Messages overrides validator messages.
func (RegisterRequest) Messages() map[string]string {
	return map[string]string{
		"Username.min":   "username must be at least 3 characters",
		"Email.required": "please enter a valid email",
		"Email.email":    "please enter a valid email",
		"Password.min":   "password must be at least 6 characters",
	}
}

// TaskQuery filters a server-side task listing. Empty fields are not sent.
type TaskQuery struct {
	Status   task.Status
	Category string
	Search   string
	Sort     task.SortKey
}

// PushKeys are the client keys of a push subscription.
type PushKeys struct {
	P256dh string `json:"p256dh"`
	Auth   string `json:"auth"`
}

// PushSubscription is the serialized form of a push subscription.
type PushSubscription struct {
	Endpoint       string   `json:"endpoint"`
	ExpirationTime *int64   `json:"expirationTime"`
	Keys           PushKeys `json:"keys"`
}
