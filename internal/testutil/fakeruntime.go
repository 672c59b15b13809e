package testutil

import (
	"context"
	"crypto/ecdh"
	"crypto/rand"
	"encoding/base64"
	"strconv"
	"sync"

	"taskdeck/internal/push"
	"taskdeck/internal/service"
)

// FakeRuntime is an in-memory push.Runtime.
type FakeRuntime struct {
	mu sync.Mutex

	// Unsupported makes Supported fail with push.ErrUnsupported.
	Unsupported bool

	// Perm is the current permission.
	Perm push.Permission

	// Answer is the decision RequestPermission records.
	Answer push.Permission

	// Sub is the active subscription, nil when none.
	Sub *service.PushSubscription

	// Release, when set, blocks Subscribe until it is closed.
	Release chan struct{}

	SubscribeErr error

	RequestCalls     int
	SubscribeCalls   int
	UnsubscribeCalls int
	LastServerKey    []byte
}

// NewFakeRuntime creates a supported runtime with undecided permission that
// grants when asked.
func NewFakeRuntime() *FakeRuntime {
	return &FakeRuntime{Perm: push.PermissionDefault, Answer: push.PermissionGranted}
}

// Supported implements push.Runtime.
func (r *FakeRuntime) Supported(ctx context.Context) error {
	if r.Unsupported {
		return push.ErrUnsupported
	}
	return nil
}

// Permission implements push.Runtime.
func (r *FakeRuntime) Permission(ctx context.Context) (push.Permission, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.Perm, nil
}

// RequestPermission implements push.Runtime.
func (r *FakeRuntime) RequestPermission(ctx context.Context) (push.Permission, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.RequestCalls++
	r.Perm = r.Answer
	return r.Perm, nil
}

// Subscription implements push.Runtime.
func (r *FakeRuntime) Subscription(ctx context.Context) (*service.PushSubscription, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Sub == nil {
		return nil, nil
	}
	s := *r.Sub
	return &s, nil
}

// Subscribe implements push.Runtime.
func (r *FakeRuntime) Subscribe(ctx context.Context, key []byte) (service.PushSubscription, error) {
	if r.Release != nil {
		select {
		case <-r.Release:
		case <-ctx.Done():
			return service.PushSubscription{}, ctx.Err()
		}
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.SubscribeCalls++
	r.LastServerKey = key
	if r.SubscribeErr != nil {
		return service.PushSubscription{}, r.SubscribeErr
	}
	sub := service.PushSubscription{
		Endpoint: "https://push.test/" + strconv.Itoa(r.SubscribeCalls),
		Keys:     service.PushKeys{P256dh: "p256dh", Auth: "auth"},
	}
	r.Sub = &sub
	return sub, nil
}

// Unsubscribe implements push.Runtime.
func (r *FakeRuntime) Unsubscribe(ctx context.Context, sub service.PushSubscription) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.UnsubscribeCalls++
	r.Sub = nil
	return nil
}

// NewPushKey returns a fresh base64url-encoded P-256 public key.
func NewPushKey() string {
	k, err := ecdh.P256().GenerateKey(rand.Reader)
	if err != nil {
		panic(err)
	}
	return base64.RawURLEncoding.EncodeToString(k.PublicKey().Bytes())
}
