// Package push manages the push-notification subscription lifecycle: asking
// for permission, creating or reusing a subscription on the host runtime and
// mirroring it to the backend.
package push

import (
	"context"
	"crypto/ecdh"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"taskdeck/internal/service"
)

// Capability and permission errors.
var (
	ErrUnsupported      = errors.New("push notifications are not supported on this host")
	ErrPermissionDenied = errors.New("notification permission was not granted")
	ErrNoServerKey      = errors.New("push public key is not configured; set it on the server or in TASKDECK_VAPID_PUBLIC_KEY")
	ErrInvalidServerKey = errors.New("push public key is not a valid P-256 public key")
)

// Permission is the host's notification permission.
type Permission string

const (
	PermissionDefault Permission = "default"
	PermissionGranted Permission = "granted"
	PermissionDenied  Permission = "denied"
)

// Runtime is the host push capability. The manager's logic only goes
// through this interface so it can run against a fake.
type Runtime interface {
	// Supported returns ErrUnsupported (possibly wrapped) when the host
	// cannot deliver push notifications.
	Supported(ctx context.Context) error

	// Permission returns the current decision without prompting.
	Permission(ctx context.Context) (Permission, error)

	// RequestPermission prompts the user and returns the decision.
	RequestPermission(ctx context.Context) (Permission, error)

	// Subscription returns the active subscription or nil.
	Subscription(ctx context.Context) (*service.PushSubscription, error)

	// Subscribe creates a subscription authorized by applicationServerKey.
	Subscribe(ctx context.Context, applicationServerKey []byte) (service.PushSubscription, error)

	// Unsubscribe tears down sub locally.
	Unsubscribe(ctx context.Context, sub service.PushSubscription) error
}

// Backend is the subset of service.Service the manager needs.
type Backend interface {
	VAPIDPublicKey(ctx context.Context) (string, error)
	SubscribePush(ctx context.Context, sub service.PushSubscription) error
	UnsubscribePush(ctx context.Context, endpoint string) error
}

// DecodeServerKey decodes a base64url public key (padding optional, standard
// alphabet tolerated) and checks it is an uncompressed P-256 point.
func DecodeServerKey(s string) ([]byte, error) {
	s = strings.TrimSpace(s)
	s = strings.TrimRight(s, "=")
	s = strings.NewReplacer("+", "-", "/", "_").Replace(s)

	raw, err := base64.RawURLEncoding.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidServerKey, err)
	}
	if _, err := ecdh.P256().NewPublicKey(raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidServerKey, err)
	}
	return raw, nil
}
