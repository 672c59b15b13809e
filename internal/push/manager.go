package push

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"golang.org/x/sync/singleflight"

	"taskdeck/internal/service"
)

// State is the manager's view of the subscription.
type State int

const (
	StateUnknown State = iota
	StateSubscribing
	StateSubscribed
	StateUnsubscribed
)

func (s State) String() string {
	switch s {
	case StateSubscribing:
		return "subscribing"
	case StateSubscribed:
		return "subscribed"
	case StateUnsubscribed:
		return "unsubscribed"
	default:
		return "unknown"
	}
}

// Manager drives the subscription lifecycle.
// Concurrent calls to the same operation share the in-flight call, and
// subscribe and unsubscribe never overlap.
type Manager struct {
	rt          Runtime
	backend     Backend
	fallbackKey string
	log         *slog.Logger

	flight singleflight.Group
	opMu   sync.Mutex

	mu    sync.Mutex
	state State
}

// NewManager creates a manager. fallbackKey is used when the backend cannot
// provide a public key.
func NewManager(rt Runtime, backend Backend, fallbackKey string, log *slog.Logger) *Manager {
	return &Manager{
		rt:          rt,
		backend:     backend,
		fallbackKey: fallbackKey,
		log:         log,
	}
}

// State returns the current state.
func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

func (m *Manager) setState(s State) {
	m.mu.Lock()
	m.state = s
	m.mu.Unlock()
}

// EnsureSubscribed makes sure a subscription exists and is registered with
// the backend. It prompts for permission only when none was decided yet.
// A call made while another is in flight waits for and shares its result.
func (m *Manager) EnsureSubscribed(ctx context.Context) (service.PushSubscription, error) {
	v, err, _ := m.flight.Do("subscribe", func() (any, error) {
		m.opMu.Lock()
		defer m.opMu.Unlock()
		return m.ensureSubscribed(ctx)
	})
	if err != nil {
		return service.PushSubscription{}, err
	}
	return v.(service.PushSubscription), nil
}

func (m *Manager) ensureSubscribed(ctx context.Context) (service.PushSubscription, error) {
	if err := m.rt.Supported(ctx); err != nil {
		m.setState(StateUnsubscribed)
		return service.PushSubscription{}, err
	}
	m.setState(StateSubscribing)

	sub, err := m.subscribe(ctx)
	if err != nil {
		m.setState(StateUnsubscribed)
		return service.PushSubscription{}, err
	}

	m.setState(StateSubscribed)
	m.log.Debug("push subscription registered", "endpoint", sub.Endpoint)
	return sub, nil
}

func (m *Manager) subscribe(ctx context.Context) (service.PushSubscription, error) {
	perm, err := m.rt.Permission(ctx)
	if err != nil {
		return service.PushSubscription{}, fmt.Errorf("read notification permission: %w", err)
	}
	if perm == PermissionDefault {
		perm, err = m.rt.RequestPermission(ctx)
		if err != nil {
			return service.PushSubscription{}, fmt.Errorf("request notification permission: %w", err)
		}
	}
	if perm != PermissionGranted {
		return service.PushSubscription{}, ErrPermissionDenied
	}

	existing, err := m.rt.Subscription(ctx)
	if err != nil {
		return service.PushSubscription{}, fmt.Errorf("read push subscription: %w", err)
	}

	var sub service.PushSubscription
	if existing != nil {
		sub = *existing
	} else {
		key, err := m.serverKey(ctx)
		if err != nil {
			return service.PushSubscription{}, err
		}
		raw, err := DecodeServerKey(key)
		if err != nil {
			return service.PushSubscription{}, err
		}
		sub, err = m.rt.Subscribe(ctx, raw)
		if err != nil {
			return service.PushSubscription{}, fmt.Errorf("create push subscription: %w", err)
		}
	}

	// Always mirror to the backend; the call is idempotent server-side.
	if err := m.backend.SubscribePush(ctx, sub); err != nil {
		return service.PushSubscription{}, fmt.Errorf("register push subscription: %w", err)
	}
	return sub, nil
}

// serverKey asks the backend for its public key and falls back to the
// configured one.
func (m *Manager) serverKey(ctx context.Context) (string, error) {
	key, err := m.backend.VAPIDPublicKey(ctx)
	if err == nil && key != "" {
		return key, nil
	}
	m.log.Debug("server push key unavailable, using configured key", "error", err)
	if m.fallbackKey == "" {
		return "", ErrNoServerKey
	}
	return m.fallbackKey, nil
}

// Unsubscribe forgets the active subscription on the backend (errors
// ignored) and tears it down locally. Without a subscription it does
// nothing. It never fails.
func (m *Manager) Unsubscribe(ctx context.Context) {
	_, _, _ = m.flight.Do("unsubscribe", func() (any, error) {
		m.opMu.Lock()
		defer m.opMu.Unlock()
		m.unsubscribe(ctx)
		return nil, nil
	})
}

func (m *Manager) unsubscribe(ctx context.Context) {
	if err := m.rt.Supported(ctx); err != nil {
		return
	}

	sub, err := m.rt.Subscription(ctx)
	if err != nil {
		m.log.Debug("read push subscription failed", "error", err)
		return
	}
	if sub == nil {
		m.setState(StateUnsubscribed)
		return
	}

	if err := m.backend.UnsubscribePush(ctx, sub.Endpoint); err != nil {
		m.log.Debug("backend unsubscribe failed, continuing", "error", err)
	}
	if err := m.rt.Unsubscribe(ctx, *sub); err != nil {
		m.log.Warn("local push unsubscribe failed", "error", err)
		return
	}
	m.setState(StateUnsubscribed)
	m.log.Debug("push subscription removed", "endpoint", sub.Endpoint)
}

// Status is a read-only snapshot for display.
type Status struct {
	Supported    bool
	Reason       string
	Permission   Permission
	Subscription *service.PushSubscription
	State        State
}

// Describe reports support, permission and the active subscription without
// prompting or contacting the backend.
func (m *Manager) Describe(ctx context.Context) (Status, error) {
	st := Status{State: m.State()}
	if err := m.rt.Supported(ctx); err != nil {
		if !errors.Is(err, ErrUnsupported) {
			return st, err
		}
		st.Reason = err.Error()
		return st, nil
	}
	st.Supported = true

	perm, err := m.rt.Permission(ctx)
	if err != nil {
		return st, err
	}
	st.Permission = perm

	sub, err := m.rt.Subscription(ctx)
	if err != nil {
		return st, err
	}
	st.Subscription = sub
	return st, nil
}
