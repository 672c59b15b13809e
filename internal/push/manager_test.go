package push_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taskdeck/internal/logging"
	"taskdeck/internal/push"
	"taskdeck/internal/service"
	"taskdeck/internal/testutil"
)

func newManager(rt push.Runtime, svc *testutil.FakeService, fallback string) *push.Manager {
	return push.NewManager(rt, svc, fallback, logging.Discard())
}

func TestEnsureSubscribed_GrantsAndRegisters(t *testing.T) {
	rt := testutil.NewFakeRuntime()
	svc := testutil.NewFakeService()
	svc.PushKey = testutil.NewPushKey()
	m := newManager(rt, svc, "")

	sub, err := m.EnsureSubscribed(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, rt.RequestCalls)
	assert.Equal(t, 1, rt.SubscribeCalls)
	assert.Equal(t, []service.PushSubscription{sub}, svc.Subscriptions())
	assert.Equal(t, push.StateSubscribed, m.State())
}

func TestEnsureSubscribed_DeniedMakesNoCalls(t *testing.T) {
	rt := testutil.NewFakeRuntime()
	rt.Answer = push.PermissionDenied
	svc := testutil.NewFakeService()
	svc.PushKey = testutil.NewPushKey()
	m := newManager(rt, svc, "")

	_, err := m.EnsureSubscribed(context.Background())
	require.ErrorIs(t, err, push.ErrPermissionDenied)

	assert.Equal(t, 0, rt.SubscribeCalls)
	assert.Equal(t, 0, svc.SubscribeCalls)
	assert.Equal(t, push.StateUnsubscribed, m.State())
}

func TestEnsureSubscribed_PreviouslyDeniedDoesNotPrompt(t *testing.T) {
	rt := testutil.NewFakeRuntime()
	rt.Perm = push.PermissionDenied
	m := newManager(rt, testutil.NewFakeService(), "")

	_, err := m.EnsureSubscribed(context.Background())
	require.ErrorIs(t, err, push.ErrPermissionDenied)
	assert.Equal(t, 0, rt.RequestCalls)
}

func TestEnsureSubscribed_Unsupported(t *testing.T) {
	rt := testutil.NewFakeRuntime()
	rt.Unsupported = true
	svc := testutil.NewFakeService()
	m := newManager(rt, svc, "")

	_, err := m.EnsureSubscribed(context.Background())
	require.ErrorIs(t, err, push.ErrUnsupported)
	assert.Equal(t, 0, rt.RequestCalls)
	assert.Equal(t, 0, svc.SubscribeCalls)
}

func TestEnsureSubscribed_FallbackKey(t *testing.T) {
	rt := testutil.NewFakeRuntime()
	svc := testutil.NewFakeService() // no server key
	fallback := testutil.NewPushKey()
	m := newManager(rt, svc, fallback)

	_, err := m.EnsureSubscribed(context.Background())
	require.NoError(t, err)

	want, err := push.DecodeServerKey(fallback)
	require.NoError(t, err)
	assert.Equal(t, want, rt.LastServerKey)
}

func TestEnsureSubscribed_NoKeyAnywhere(t *testing.T) {
	rt := testutil.NewFakeRuntime()
	m := newManager(rt, testutil.NewFakeService(), "")

	_, err := m.EnsureSubscribed(context.Background())
	require.ErrorIs(t, err, push.ErrNoServerKey)
	assert.Equal(t, 0, rt.SubscribeCalls)
}

func TestEnsureSubscribed_InvalidKey(t *testing.T) {
	rt := testutil.NewFakeRuntime()
	svc := testutil.NewFakeService()
	svc.PushKey = "not-a-key"
	m := newManager(rt, svc, "")

	_, err := m.EnsureSubscribed(context.Background())
	require.ErrorIs(t, err, push.ErrInvalidServerKey)
}

func TestEnsureSubscribed_RepeatReusesSubscription(t *testing.T) {
	rt := testutil.NewFakeRuntime()
	svc := testutil.NewFakeService()
	svc.PushKey = testutil.NewPushKey()
	m := newManager(rt, svc, "")

	first, err := m.EnsureSubscribed(context.Background())
	require.NoError(t, err)
	second, err := m.EnsureSubscribed(context.Background())
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, rt.SubscribeCalls)
	assert.Equal(t, 2, svc.SubscribeCalls, "the backend is told every time")
	assert.Len(t, svc.Subscriptions(), 1)
}

func TestEnsureSubscribed_ConcurrentCallsShareOneSubscribe(t *testing.T) {
	rt := testutil.NewFakeRuntime()
	rt.Release = make(chan struct{})
	svc := testutil.NewFakeService()
	svc.PushKey = testutil.NewPushKey()
	m := newManager(rt, svc, "")

	const n = 5
	var wg sync.WaitGroup
	errs := make([]error, n)
	for i := range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, errs[i] = m.EnsureSubscribed(context.Background())
		}()
	}

	time.Sleep(50 * time.Millisecond)
	close(rt.Release)
	wg.Wait()

	for _, err := range errs {
		assert.NoError(t, err)
	}
	assert.Equal(t, 1, rt.SubscribeCalls)
	assert.Len(t, svc.Subscriptions(), 1)
}

func TestEnsureSubscribed_BackendFailure(t *testing.T) {
	rt := testutil.NewFakeRuntime()
	svc := testutil.NewFakeService()
	svc.PushKey = testutil.NewPushKey()
	svc.SubscribeErr = errors.New("boom")
	m := newManager(rt, svc, "")

	_, err := m.EnsureSubscribed(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "boom")
	assert.Equal(t, push.StateUnsubscribed, m.State())
}

func TestUnsubscribe_RemovesEverywhere(t *testing.T) {
	rt := testutil.NewFakeRuntime()
	svc := testutil.NewFakeService()
	svc.PushKey = testutil.NewPushKey()
	m := newManager(rt, svc, "")

	_, err := m.EnsureSubscribed(context.Background())
	require.NoError(t, err)

	m.Unsubscribe(context.Background())
	assert.Empty(t, svc.Subscriptions())
	assert.Nil(t, rt.Sub)
	assert.Equal(t, push.StateUnsubscribed, m.State())
}

func TestUnsubscribe_NoSubscriptionIsNoop(t *testing.T) {
	rt := testutil.NewFakeRuntime()
	svc := testutil.NewFakeService()
	m := newManager(rt, svc, "")

	m.Unsubscribe(context.Background())
	assert.Equal(t, 0, svc.UnsubscribeCalls)
	assert.Equal(t, 0, rt.UnsubscribeCalls)
}

func TestUnsubscribe_UnsupportedIsNoop(t *testing.T) {
	rt := testutil.NewFakeRuntime()
	rt.Unsupported = true
	svc := testutil.NewFakeService()
	m := newManager(rt, svc, "")

	m.Unsubscribe(context.Background())
	assert.Equal(t, 0, svc.UnsubscribeCalls)
}

func TestUnsubscribe_BackendErrorIgnored(t *testing.T) {
	rt := testutil.NewFakeRuntime()
	rt.Sub = &service.PushSubscription{Endpoint: "https://push.test/x"}
	svc := testutil.NewFakeService()
	svc.UnsubscribeErr = errors.New("offline")
	m := newManager(rt, svc, "")

	m.Unsubscribe(context.Background())
	assert.Equal(t, 1, svc.UnsubscribeCalls)
	assert.Nil(t, rt.Sub, "local teardown still happens")
}

func TestDescribe(t *testing.T) {
	rt := testutil.NewFakeRuntime()
	rt.Perm = push.PermissionGranted
	rt.Sub = &service.PushSubscription{Endpoint: "https://push.test/1"}
	m := newManager(rt, testutil.NewFakeService(), "")

	st, err := m.Describe(context.Background())
	require.NoError(t, err)
	assert.True(t, st.Supported)
	assert.Equal(t, push.PermissionGranted, st.Permission)
	require.NotNil(t, st.Subscription)
	assert.Equal(t, "https://push.test/1", st.Subscription.Endpoint)
	assert.Equal(t, 0, rt.RequestCalls)

	rt.Unsupported = true
	st, err = m.Describe(context.Background())
	require.NoError(t, err)
	assert.False(t, st.Supported)
	assert.NotEmpty(t, st.Reason)
}

func TestDecodeServerKey(t *testing.T) {
	key := testutil.NewPushKey()

	raw, err := push.DecodeServerKey(key)
	require.NoError(t, err)
	assert.Len(t, raw, 65)

	padded, err := push.DecodeServerKey(key + "=")
	require.NoError(t, err)
	assert.Equal(t, raw, padded)

	_, err = push.DecodeServerKey("AAAA")
	assert.ErrorIs(t, err, push.ErrInvalidServerKey)

	_, err = push.DecodeServerKey("***")
	assert.ErrorIs(t, err, push.ErrInvalidServerKey)
}
