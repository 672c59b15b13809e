package push

import (
	"context"
	"crypto/ecdh"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"

	"taskdeck/internal/kv"
	"taskdeck/internal/service"
)

// Prompter asks the user a yes/no question.
type Prompter func(ctx context.Context, question string) (bool, error)

// PermissionQuestion is shown when notification permission is requested.
const PermissionQuestion = "Allow taskdeck to send task notifications?"

// LocalRuntime is the Runtime for a terminal host. Push is supported when a
// relay endpoint is configured; permission and the subscription (including
// its private key) are kept in the kv store.
type LocalRuntime struct {
	store    kv.Store
	endpoint string
	prompt   Prompter
	rand     io.Reader
}

// NewLocalRuntime creates a runtime. A nil prompt leaves permission undecided.
func NewLocalRuntime(store kv.Store, endpoint string, prompt Prompter) *LocalRuntime {
	return &LocalRuntime{
		store:    store,
		endpoint: strings.TrimRight(strings.TrimSpace(endpoint), "/"),
		prompt:   prompt,
		rand:     rand.Reader,
	}
}

type localRecord struct {
	Subscription service.PushSubscription `json:"subscription"`
	ServerKey    string                   `json:"serverKey"`
	PrivateKey   string                   `json:"privateKey"`
}

// Supported implements Runtime.
func (r *LocalRuntime) Supported(ctx context.Context) error {
	if r.endpoint == "" {
		return fmt.Errorf("%w: no push endpoint configured (set TASKDECK_PUSH_ENDPOINT)", ErrUnsupported)
	}
	return nil
}

// Permission implements Runtime.
func (r *LocalRuntime) Permission(ctx context.Context) (Permission, error) {
	data, err := r.store.Get(ctx, kv.KeyPushPermission)
	if errors.Is(err, kv.ErrNotFound) {
		return PermissionDefault, nil
	}
	if err != nil {
		return PermissionDefault, err
	}
	switch p := Permission(data); p {
	case PermissionGranted, PermissionDenied:
		return p, nil
	default:
		return PermissionDefault, nil
	}
}

// RequestPermission implements Runtime. A decision already made is returned
// without prompting again.
func (r *LocalRuntime) RequestPermission(ctx context.Context) (Permission, error) {
	current, err := r.Permission(ctx)
	if err != nil || current != PermissionDefault {
		return current, err
	}
	if r.prompt == nil {
		return PermissionDefault, nil
	}

	ok, err := r.prompt(ctx, PermissionQuestion)
	if err != nil {
		return PermissionDefault, err
	}
	decision := PermissionDenied
	if ok {
		decision = PermissionGranted
	}
	if err := r.store.Set(ctx, kv.KeyPushPermission, []byte(decision)); err != nil {
		return PermissionDefault, fmt.Errorf("save permission: %w", err)
	}
	return decision, nil
}

// Subscription implements Runtime. Unreadable records count as no subscription.
func (r *LocalRuntime) Subscription(ctx context.Context) (*service.PushSubscription, error) {
	rec, err := r.record(ctx)
	if err != nil || rec == nil {
		return nil, err
	}
	sub := rec.Subscription
	return &sub, nil
}

func (r *LocalRuntime) record(ctx context.Context) (*localRecord, error) {
	data, err := r.store.Get(ctx, kv.KeyPushSubscription)
	if errors.Is(err, kv.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var rec localRecord
	if err := json.Unmarshal(data, &rec); err != nil || rec.Subscription.Endpoint == "" {
		return nil, nil
	}
	return &rec, nil
}

// Subscribe implements Runtime. It creates a P-256 key pair and a 16-byte
// auth secret and an endpoint under the relay.
func (r *LocalRuntime) Subscribe(ctx context.Context, applicationServerKey []byte) (service.PushSubscription, error) {
	if err := r.Supported(ctx); err != nil {
		return service.PushSubscription{}, err
	}

	priv, err := ecdh.P256().GenerateKey(r.rand)
	if err != nil {
		return service.PushSubscription{}, fmt.Errorf("generate key: %w", err)
	}
	secret := make([]byte, 16)
	if _, err := io.ReadFull(r.rand, secret); err != nil {
		return service.PushSubscription{}, fmt.Errorf("generate auth secret: %w", err)
	}

	enc := base64.RawURLEncoding
	rec := localRecord{
		Subscription: service.PushSubscription{
			Endpoint: r.endpoint + "/" + uuid.NewString(),
			Keys: service.PushKeys{
				P256dh: enc.EncodeToString(priv.PublicKey().Bytes()),
				Auth:   enc.EncodeToString(secret),
			},
		},
		ServerKey:  enc.EncodeToString(applicationServerKey),
		PrivateKey: enc.EncodeToString(priv.Bytes()),
	}

	data, err := json.Marshal(rec)
	if err != nil {
		return service.PushSubscription{}, err
	}
	if err := r.store.Set(ctx, kv.KeyPushSubscription, data); err != nil {
		return service.PushSubscription{}, fmt.Errorf("save subscription: %w", err)
	}
	return rec.Subscription, nil
}

// Unsubscribe implements Runtime.
func (r *LocalRuntime) Unsubscribe(ctx context.Context, sub service.PushSubscription) error {
	rec, err := r.record(ctx)
	if err != nil {
		return err
	}
	if rec == nil || rec.Subscription.Endpoint != sub.Endpoint {
		return nil
	}
	return r.store.Delete(ctx, kv.KeyPushSubscription)
}
