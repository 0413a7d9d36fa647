package orca_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/orca"
	"github.com/aretw0/orca/pkg/adapters/memory"
	"github.com/aretw0/orca/pkg/catalog"
	"github.com/aretw0/orca/pkg/dispatch"
	"github.com/aretw0/orca/pkg/domain"
)

var fixedClock = func() time.Time { return time.Date(2026, 3, 14, 10, 15, 30, 0, time.UTC) }

// orderCollaborator records the orders posted to it.
type orderCollaborator struct {
	mu     sync.Mutex
	orders []domain.OrderRequest
}

func (c *orderCollaborator) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req domain.OrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	c.mu.Lock()
	c.orders = append(c.orders, req)
	c.mu.Unlock()
	_ = json.NewEncoder(w).Encode(domain.OrderResponse{Success: true})
}

func fillOrder(t *testing.T, ctx context.Context, e *orca.Engine, state *domain.State) *domain.State {
	t.Helper()
	var err error
	state, err = e.Navigate(ctx, state, "")
	require.NoError(t, err)
	state, err = e.SelectCategory(ctx, state, catalog.KeyPallet)
	require.NoError(t, err)
	state, err = e.SetFields(ctx, state, map[string]string{
		"subcategory": "1", "quantity": "200", "size_mode": "standart", "dimensions": "1", "usage": "ihracat", "notes": "yok",
	})
	require.NoError(t, err)
	state, err = e.Next(ctx, state)
	require.NoError(t, err)
	state, err = e.SetFields(ctx, state, map[string]string{
		"name": "Ayşe Yılmaz", "company": "Yılmaz Lojistik", "phone": "0532 123 45 67",
		"email": "ayse@example.com", "city": "Bursa", "timeline": "normal",
	})
	require.NoError(t, err)
	state, err = e.Next(ctx, state)
	require.NoError(t, err)
	require.Equal(t, domain.ScreenConfirm, state.Screen)
	return state
}

func TestNew_Defaults(t *testing.T) {
	e, err := orca.New(context.Background(), "")
	require.NoError(t, err)

	assert.Equal(t, 6, e.Catalog().Len())
	assert.Equal(t, 50, e.MinimumQuantity())
	assert.Equal(t, dispatch.DefaultBusiness(), e.Business())
	assert.True(t, strings.HasPrefix(e.QuickWhatsAppLink(), "https://wa.me/905336605802?text="))
}

func TestNew_Options(t *testing.T) {
	cat, err := catalog.New([]domain.Category{{Key: "kasa", Name: "Kasa", Subcategories: []string{"OSB Kasa"}}})
	require.NoError(t, err)
	business := dispatch.DefaultBusiness()
	business.WhatsAppNumber = "905550000000"

	e, err := orca.New(context.Background(), "ignored.yaml",
		orca.WithCatalog(cat),
		orca.WithMinimumQuantity(10),
		orca.WithBusiness(business),
	)
	require.NoError(t, err, "an explicit catalog wins over the path")
	assert.Equal(t, []string{"kasa"}, e.Catalog().Keys())
	assert.Equal(t, 10, e.MinimumQuantity())
	assert.Contains(t, e.QuickWhatsAppLink(), "905550000000")
}

func TestNew_MissingCatalog(t *testing.T) {
	_, err := orca.New(context.Background(), "does/not/exist.yaml")
	assert.ErrorContains(t, err, "failed to load catalog")
}

func TestEngine_SubmitThroughOrderURL(t *testing.T) {
	collab := &orderCollaborator{}
	srv := httptest.NewServer(collab)
	defer srv.Close()

	var submitted []domain.SubmitEvent
	ctx := context.Background()
	e, err := orca.New(ctx, "",
		orca.WithOrderURL(srv.URL),
		orca.WithClock(fixedClock),
		orca.WithOrderIDGenerator(func(time.Time) string { return "ORC-2026-0042" }),
		orca.WithLifecycleHooks(domain.LifecycleHooks{
			OnSubmit: func(_ context.Context, ev *domain.SubmitEvent) { submitted = append(submitted, *ev) },
		}),
	)
	require.NoError(t, err)

	state, err := e.Start(ctx, "s1", "")
	require.NoError(t, err)
	state = fillOrder(t, ctx, e, state)
	assert.Equal(t, "ORC-2026-0042", state.Draft.OrderID)

	state, err = e.Submit(ctx, state, domain.ChannelEmail)
	require.NoError(t, err)
	assert.Equal(t, domain.ScreenSuccess, state.Screen)
	assert.True(t, state.Done())
	require.NotNil(t, state.Outcome)
	assert.True(t, state.Outcome.EmailSent)

	require.Len(t, collab.orders, 1)
	assert.Equal(t, "ORC-2026-0042", collab.orders[0].OrderNumber)
	assert.Equal(t, "Ayşe Yılmaz", collab.orders[0].CustomerName)

	require.Len(t, submitted, 1)
	assert.Equal(t, catalog.KeyPallet, submitted[0].Category)

	_, err = e.Navigate(ctx, state, "x")
	assert.ErrorIs(t, err, domain.ErrSessionClosed)
}

func TestEngine_SubmitSurvivesUnreachableCollaborator(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	ctx := context.Background()
	e, err := orca.New(ctx, "", orca.WithOrderURL(srv.URL), orca.WithHTTPClient(&http.Client{Timeout: time.Second}))
	require.NoError(t, err)

	state, err := e.Start(ctx, "s2", "")
	require.NoError(t, err)
	state, err = e.Submit(ctx, fillOrder(t, ctx, e, state), domain.ChannelBoth)
	require.NoError(t, err, "dispatch problems never block completion")

	assert.Equal(t, domain.StatusCompleted, state.Status)
	assert.False(t, state.Outcome.EmailSent)
	assert.NotEmpty(t, state.Outcome.EmailError)
	assert.Contains(t, state.Outcome.WhatsAppLink, "https://wa.me/905336605802?text=")
}

func TestEngine_ClassifyThroughClassifierURL(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req map[string]any
		_ = json.NewDecoder(r.Body).Decode(&req)
		reply := "```json\n{\"category\":\"kasa\",\"confidence\":0.9,\"reason\":\"ambalaj\"}\n```"
		if req["type"] == "validate" {
			reply = "Ölçüler makul görünüyor."
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"success": true, "response": reply})
	}))
	defer srv.Close()

	ctx := context.Background()
	e, err := orca.New(ctx, "", orca.WithClassifierURL(srv.URL))
	require.NoError(t, err)

	state, err := e.Start(ctx, "s3", "")
	require.NoError(t, err)

	state, err = e.Classify(ctx, state, "makine taşıma sandığı")
	require.NoError(t, err)
	assert.Equal(t, domain.ScreenSpecs, state.Screen)
	assert.Equal(t, catalog.KeyCrate, state.Draft.Product.Category)
	assert.Equal(t, "makine taşıma sandığı", state.Draft.Product.Notes)
	assert.Contains(t, state.Notice, "(ambalaj)")

	state, err = e.Advise(ctx, state, "120x80")
	require.NoError(t, err)
	assert.Equal(t, "Ölçüler makul görünüyor.", state.Notice)
}

func TestEngine_ContactAutofill(t *testing.T) {
	ctx := context.Background()
	contacts := memory.NewContactStore()
	e, err := orca.New(ctx, "", orca.WithContactStore(contacts), orca.WithOrderURL(""))
	require.NoError(t, err)

	first, err := e.Start(ctx, "a", "ayse")
	require.NoError(t, err)
	_, err = e.Submit(ctx, fillOrder(t, ctx, e, first), domain.ChannelWhatsApp)
	require.NoError(t, err)

	second, err := e.Start(ctx, "b", "ayse")
	require.NoError(t, err)
	assert.Equal(t, "Ayşe Yılmaz", second.Draft.Contact.Name)

	stranger, err := e.Start(ctx, "c", "")
	require.NoError(t, err)
	assert.True(t, stranger.Draft.Contact.IsZero())
}
