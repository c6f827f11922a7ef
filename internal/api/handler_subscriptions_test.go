package api

import (
	"net/http"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const endpoint = "https://push.example.com/send/abc%3D123"

func TestPutSubscription(t *testing.T) {
	env := newTestEnv(t)

	testCases := []struct {
		name       string
		body       any
		wantStatus int
		wantField  string
	}{
		{name: "no body", body: nil, wantStatus: http.StatusBadRequest},
		{name: "missing endpoint", body: map[string]any{"p256dh": "k", "auth": "a"}, wantStatus: http.StatusBadRequest, wantField: "endpoint"},
		{name: "endpoint not a url", body: map[string]any{"endpoint": "nope", "p256dh": "k", "auth": "a"}, wantStatus: http.StatusBadRequest, wantField: "endpoint"},
		{name: "missing keys", body: map[string]any{"endpoint": endpoint}, wantStatus: http.StatusBadRequest, wantField: "p256dh"},
		{name: "flat keys", body: map[string]any{"endpoint": endpoint, "p256dh": "k", "auth": "a"}, wantStatus: http.StatusCreated},
		{name: "nested keys", body: map[string]any{"endpoint": endpoint, "keys": map[string]string{"p256dh": "k2", "auth": "a2"}}, wantStatus: http.StatusCreated},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			w := env.do(t, http.MethodPut, "/api/subscriptions", env.guest(t), tc.body)
			require.Equal(t, tc.wantStatus, w.Code, w.Body.String())
			if tc.wantField != "" {
				assert.Contains(t, decode[errorResponse](t, w).Error.Details, tc.wantField)
			}
		})
	}

	subs, err := env.store.SubscriptionsForUser(t.Context(), guestID)
	require.NoError(t, err)
	require.Len(t, subs, 1, "re-subscribing the same endpoint replaces it")
	assert.Equal(t, "k2", subs[0].P256DH)
}

func TestGetSubscription(t *testing.T) {
	env := newTestEnv(t)
	require.Equal(t, http.StatusCreated, env.do(t, http.MethodPut, "/api/subscriptions", env.guest(t),
		map[string]any{"endpoint": endpoint, "p256dh": "k", "auth": "a"}).Code)

	path := "/api/subscriptions?endpoint=" + endpoint

	w := env.do(t, http.MethodGet, path, env.guest(t), nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, endpoint, decode[map[string]any](t, w)["endpoint"])

	w = env.do(t, http.MethodGet, path, env.other(t), nil)
	assert.Equal(t, http.StatusNotFound, w.Code, "subscriptions are private to their owner")

	w = env.do(t, http.MethodGet, "/api/subscriptions?endpoint="+url.QueryEscape(endpoint), env.guest(t), nil)
	assert.Equal(t, http.StatusNotFound, w.Code, "endpoints are matched without decoding")

	w = env.do(t, http.MethodGet, "/api/subscriptions", env.guest(t), nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDeleteSubscription(t *testing.T) {
	env := newTestEnv(t)
	require.Equal(t, http.StatusCreated, env.do(t, http.MethodPut, "/api/subscriptions", env.guest(t),
		map[string]any{"endpoint": endpoint, "p256dh": "k", "auth": "a"}).Code)

	w := env.do(t, http.MethodDelete, "/api/subscriptions", env.other(t), map[string]any{"endpoint": endpoint})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = env.do(t, http.MethodDelete, "/api/subscriptions", env.guest(t), map[string]any{"endpoint": endpoint})
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = env.do(t, http.MethodDelete, "/api/subscriptions", env.guest(t), map[string]any{"endpoint": endpoint})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = env.do(t, http.MethodDelete, "/api/subscriptions", env.guest(t), map[string]any{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRawQueryParam(t *testing.T) {
	v, ok := rawQueryParam("a=1&endpoint=https://x/y%3D&b=2", "endpoint")
	assert.True(t, ok)
	assert.Equal(t, "https://x/y%3D", v)

	_, ok = rawQueryParam("a=1", "endpoint")
	assert.False(t, ok)
}
