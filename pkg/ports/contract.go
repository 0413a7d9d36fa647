package ports

import (
	"context"
	"testing"
	"time"

	"github.com/aretw0/orca/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunStateStoreContract runs a suite of tests to verify that a StateStore implementation
// adheres to the defined interface contract.
func RunStateStoreContract(t *testing.T, store StateStore) {
	ctx := context.Background()
	sessionID := "contract-test-session-" + time.Now().Format("20060102150405")

	t.Run("Save and Load", func(t *testing.T) {
		state := domain.NewState(sessionID)
		state.Screen = domain.ScreenSpecs
		state.History = append(state.History, domain.ScreenProduct, domain.ScreenSpecs)
		state.Draft.SelectCategory("palet")
		state.Draft.Product.Quantity = 30
		state.Draft.Product.BelowMinimum = true
		state.Draft.Contact.Name = "Ayşe Yılmaz"
		require.NoError(t, state.Draft.AddAttachment(domain.Attachment{
			Kind:     domain.AttachmentPhoto,
			Payload:  "aGVsbG8=",
			Filename: "palet.jpg",
		}))

		err := store.Save(ctx, sessionID, state)
		require.NoError(t, err, "Save should not return error")

		loaded, err := store.Load(ctx, sessionID)
		require.NoError(t, err, "Load should not return error")
		assert.Equal(t, domain.ScreenSpecs, loaded.Screen)
		assert.Equal(t, state.History, loaded.History)
		assert.Equal(t, state.Draft.Product, loaded.Draft.Product)
		assert.Equal(t, "Ayşe Yılmaz", loaded.Draft.Contact.Name)
		require.Len(t, loaded.Draft.Attachments, 1)
		assert.Equal(t, "palet.jpg", loaded.Draft.Attachments[0].Filename)
	})

	t.Run("Loaded state is isolated", func(t *testing.T) {
		loaded, err := store.Load(ctx, sessionID)
		require.NoError(t, err)
		loaded.Draft.Contact.Name = "mutated"
		loaded.Draft.Attachments[0].Filename = "mutated.jpg"

		again, err := store.Load(ctx, sessionID)
		require.NoError(t, err)
		assert.Equal(t, "Ayşe Yılmaz", again.Draft.Contact.Name)
		assert.Equal(t, "palet.jpg", again.Draft.Attachments[0].Filename)
	})

	t.Run("Load Non-Existent", func(t *testing.T) {
		_, err := store.Load(ctx, "non-existent-"+sessionID)
		assert.ErrorIs(t, err, domain.ErrSessionNotFound)
	})

	t.Run("Delete", func(t *testing.T) {
		err := store.Save(ctx, sessionID, domain.NewState(sessionID))
		require.NoError(t, err)

		err = store.Delete(ctx, sessionID)
		require.NoError(t, err, "Delete should not return error")

		_, err = store.Load(ctx, sessionID)
		assert.ErrorIs(t, err, domain.ErrSessionNotFound, "Load after Delete should return ErrSessionNotFound")
	})

	t.Run("List", func(t *testing.T) {
		id1 := sessionID + "-1"
		id2 := sessionID + "-2"
		_ = store.Save(ctx, id1, domain.NewState(id1))
		_ = store.Save(ctx, id2, domain.NewState(id2))

		defer func() {
			_ = store.Delete(ctx, id1)
			_ = store.Delete(ctx, id2)
		}()

		sessions, err := store.List(ctx)
		require.NoError(t, err)
		assert.Contains(t, sessions, id1)
		assert.Contains(t, sessions, id2)
	})
}

// RunContactStoreContract verifies the autofill store semantics.
func RunContactStoreContract(t *testing.T, store ContactStore) {
	ctx := context.Background()

	t.Run("Missing profile yields no autofill", func(t *testing.T) {
		_, ok := store.LoadContact(ctx, "missing-profile")
		assert.False(t, ok)
	})

	t.Run("Save and Load", func(t *testing.T) {
		contact := domain.Contact{
			Name:    "Mehmet Demir",
			Company: "Demir Lojistik",
			Phone:   "05331234567",
			Email:   "mehmet@demir.com.tr",
			City:    "Bursa",
		}
		require.NoError(t, store.SaveContact(ctx, "p1", contact))

		loaded, ok := store.LoadContact(ctx, "p1")
		require.True(t, ok)
		assert.Equal(t, contact, loaded)
	})

	t.Run("Contact without name is not offered", func(t *testing.T) {
		require.NoError(t, store.SaveContact(ctx, "p2", domain.Contact{City: "İzmir"}))

		_, ok := store.LoadContact(ctx, "p2")
		assert.False(t, ok)
	})
}
