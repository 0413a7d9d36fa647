package middleware_test

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/orca/pkg/adapters/memory"
	"github.com/aretw0/orca/pkg/domain"
	"github.com/aretw0/orca/pkg/persistence/middleware"
	"github.com/aretw0/orca/pkg/ports"
)

func generateKey(t *testing.T) []byte {
	t.Helper()
	k := make([]byte, middleware.KeySize)
	_, err := io.ReadFull(rand.Reader, k)
	require.NoError(t, err)
	return k
}

func sealed(t *testing.T, store ports.StateStore, cfg middleware.EncryptionConfig) ports.StateStore {
	t.Helper()
	mw, err := middleware.NewEncryptionMiddleware(cfg)
	require.NoError(t, err)
	return mw(store)
}

func sampleState(id string) *domain.State {
	s := domain.NewState(id)
	s.Screen = domain.ScreenConfirm
	s.Draft.Contact.Phone = "05321234567"
	s.Draft.Contact.Email = "ayse@example.com"
	return s
}

func TestEncryptionMiddleware_Roundtrip(t *testing.T) {
	underlying := memory.NewStore()
	store := sealed(t, underlying, middleware.EncryptionConfig{ActiveKey: generateKey(t)})
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "s1", sampleState("s1")))

	raw, err := underlying.Load(ctx, "s1")
	require.NoError(t, err)
	assert.NotEmpty(t, raw.Sealed)
	assert.Equal(t, "s1", raw.SessionID)
	assert.Equal(t, domain.StatusActive, raw.Status)
	assert.Empty(t, raw.Draft.Contact.Phone, "envelope must not leak the draft")
	assert.Empty(t, raw.Screen)

	loaded, err := store.Load(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, "05321234567", loaded.Draft.Contact.Phone)
	assert.Equal(t, domain.ScreenConfirm, loaded.Screen)
	assert.Empty(t, loaded.Sealed)
}

func TestEncryptionMiddleware_KeyRotation(t *testing.T) {
	underlying := memory.NewStore()
	oldKey, newKey := generateKey(t), generateKey(t)
	ctx := context.Background()

	oldStore := sealed(t, underlying, middleware.EncryptionConfig{ActiveKey: oldKey})
	require.NoError(t, oldStore.Save(ctx, "s1", sampleState("s1")))

	newStore := sealed(t, underlying, middleware.EncryptionConfig{ActiveKey: newKey, FallbackKeys: [][]byte{oldKey}})
	loaded, err := newStore.Load(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, "ayse@example.com", loaded.Draft.Contact.Email)

	require.NoError(t, newStore.Save(ctx, "s1", loaded))
	_, err = oldStore.Load(ctx, "s1")
	assert.Error(t, err, "old key alone cannot read data sealed with the new key")
}

func TestEncryptionMiddleware_RejectsPlainState(t *testing.T) {
	underlying := memory.NewStore()
	ctx := context.Background()
	require.NoError(t, underlying.Save(ctx, "plain", sampleState("plain")))

	store := sealed(t, underlying, middleware.EncryptionConfig{ActiveKey: generateKey(t)})
	_, err := store.Load(ctx, "plain")
	assert.ErrorIs(t, err, middleware.ErrNotSealed)

	_, err = store.Load(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
}

func TestEncryptionMiddleware_InvalidKey(t *testing.T) {
	_, err := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: []byte("short-key")})
	assert.Error(t, err)

	_, err = middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{
		ActiveKey:    generateKey(t),
		FallbackKeys: [][]byte{[]byte("short")},
	})
	assert.Error(t, err)
}

func TestDeriveKey(t *testing.T) {
	raw := generateKey(t)
	key, err := middleware.DeriveKey(base64.StdEncoding.EncodeToString(raw))
	require.NoError(t, err)
	assert.Equal(t, raw, key, "a base64 key is used as is")

	a, err := middleware.DeriveKey("orman ürünleri")
	require.NoError(t, err)
	b, err := middleware.DeriveKey("orman ürünleri")
	require.NoError(t, err)
	assert.Len(t, a, middleware.KeySize)
	assert.Equal(t, a, b, "derivation is deterministic")

	c, err := middleware.DeriveKey("another secret")
	require.NoError(t, err)
	assert.NotEqual(t, a, c)

	_, err = middleware.DeriveKey("")
	assert.Error(t, err)
}
