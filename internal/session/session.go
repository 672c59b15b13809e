// Package session holds the authenticated identity and its bearer token.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/sourcegraph/conc"

	"taskdeck/internal/kv"
	"taskdeck/internal/service"
	"taskdeck/internal/validate"
)

// PushTimeout bounds a detached push subscription attempt.
const PushTimeout = 30 * time.Second

// State is the authentication state.
type State int

const (
	Unauthenticated State = iota
	Verifying
	Authenticated
)

func (s State) String() string {
	switch s {
	case Verifying:
		return "verifying"
	case Authenticated:
		return "authenticated"
	default:
		return "unauthenticated"
	}
}

// Authenticator is the part of service.Service the session needs.
type Authenticator interface {
	Register(ctx context.Context, req service.RegisterRequest) (service.AuthResult, error)
	Login(ctx context.Context, req service.LoginRequest) (service.AuthResult, error)
	Verify(ctx context.Context) (service.User, error)
}

// Pusher subscribes and unsubscribes push notifications.
type Pusher interface {
	EnsureSubscribed(ctx context.Context) (service.PushSubscription, error)
	Unsubscribe(ctx context.Context)
}

// Store is the session store. Create one per application start.
type Store struct {
	auth Authenticator
	kv   kv.Store
	push Pusher
	log  *slog.Logger

	wg conc.WaitGroup

	mu      sync.RWMutex
	state   State
	user    *service.User
	loading bool
}

// New creates a store that is loading until Init returns. push may be nil.
func New(auth Authenticator, store kv.Store, push Pusher, log *slog.Logger) *Store {
	return &Store{
		auth:    auth,
		kv:      store,
		push:    push,
		log:     log,
		loading: true,
	}
}

// Init restores the session from the stored token. Without a token the
// session is unauthenticated; otherwise the token is verified. Loading is
// cleared on every path.
func (s *Store) Init(ctx context.Context) error {
	defer s.setLoading(false)

	if _, err := s.token(ctx); err != nil {
		if errors.Is(err, ErrNoToken) {
			s.setState(Unauthenticated, nil)
			return nil
		}
		s.setState(Unauthenticated, nil)
		return fmt.Errorf("read stored token: %w", err)
	}
	return s.VerifyToken(ctx)
}

// Login authenticates with a username (or email) and password.
func (s *Store) Login(ctx context.Context, username, password string) error {
	req := service.LoginRequest{Username: strings.TrimSpace(username), Password: password}
	if err := validate.Struct(req); err != nil {
		return err
	}
	res, err := s.auth.Login(ctx, req)
	if err != nil {
		return err
	}
	return s.establish(ctx, res)
}

// Signup creates an account and logs in.
func (s *Store) Signup(ctx context.Context, username, email, password string) error {
	req := service.RegisterRequest{
		Username: strings.TrimSpace(username),
		Email:    strings.TrimSpace(email),
		Password: password,
	}
	if err := validate.Struct(req); err != nil {
		return err
	}
	res, err := s.auth.Register(ctx, req)
	if err != nil {
		return err
	}
	return s.establish(ctx, res)
}

func (s *Store) establish(ctx context.Context, res service.AuthResult) error {
	if err := s.kv.Set(ctx, kv.KeyToken, []byte(res.Token)); err != nil {
		return fmt.Errorf("save token: %w", err)
	}
	u := res.User
	s.setState(Authenticated, &u)
	s.log.Info("authenticated", "username", u.Username)
	s.subscribeDetached(ctx)
	return nil
}

// VerifyToken checks the stored token with the backend. On failure the token
// is cleared and the session becomes unauthenticated.
func (s *Store) VerifyToken(ctx context.Context) error {
	s.setState(Verifying, nil)

	u, err := s.auth.Verify(ctx)
	if err != nil {
		s.log.Warn("token verification failed", "error", err)
		if derr := s.kv.Delete(ctx, kv.KeyToken); derr != nil {
			s.log.Warn("clear token failed", "error", derr)
		}
		s.setState(Unauthenticated, nil)
		return err
	}

	s.setState(Authenticated, &u)
	s.subscribeDetached(ctx)
	return nil
}

// Logout unsubscribes from push (best effort) and forgets the token.
func (s *Store) Logout(ctx context.Context) error {
	if s.push != nil {
		s.push.Unsubscribe(ctx)
	}
	err := s.kv.Delete(ctx, kv.KeyToken)
	s.setState(Unauthenticated, nil)
	if err != nil {
		return fmt.Errorf("clear token: %w", err)
	}
	return nil
}

// subscribeDetached starts a push subscription attempt that outlives ctx's
// cancellation. Failures are logged only.
func (s *Store) subscribeDetached(ctx context.Context) {
	if s.push == nil {
		return
	}
	ctx = context.WithoutCancel(ctx)
	s.wg.Go(func() {
		ctx, cancel := context.WithTimeout(ctx, PushTimeout)
		defer cancel()
		if _, err := s.push.EnsureSubscribed(ctx); err != nil {
			s.log.Warn("push subscription failed", "error", err)
		}
	})
}

// Wait blocks until detached work has finished. A panic in detached work is
// logged instead of propagated.
func (s *Store) Wait() {
	if r := s.wg.WaitAndRecover(); r != nil {
		s.log.Error("push subscription panicked", "panic", r.String())
	}
}

// State returns the authentication state.
func (s *Store) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// User returns the authenticated user, or nil.
func (s *Store) User() *service.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return nil
	}
	u := *s.user
	return &u
}

// Loading reports whether Init is still running.
func (s *Store) Loading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loading
}

func (s *Store) setState(st State, u *service.User) {
	s.mu.Lock()
	s.state = st
	s.user = u
	s.mu.Unlock()
}

func (s *Store) setLoading(v bool) {
	s.mu.Lock()
	s.loading = v
	s.mu.Unlock()
}
