package domain

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDiff(t *testing.T) {
	specs := ScreenSpecs
	active := StatusActive
	completed := StatusCompleted

	tests := []struct {
		name     string
		old      *State
		new      *State
		wantDiff *StateDiff // nil means no diff
	}{
		{
			name: "Initial Load (Old is Nil)",
			old:  nil,
			new: &State{
				SessionID: "sess-1",
				Screen:    ScreenSpecs,
				Status:    StatusActive,
				Draft:     Draft{Product: Product{Category: "palet"}},
				History:   []Screen{ScreenWelcome, ScreenProduct, ScreenSpecs},
			},
			wantDiff: &StateDiff{
				SessionID: "sess-1",
				Screen:    &specs,
				Status:    &active,
				Fields:    map[string]any{"product.category": "palet"},
				History:   &HistoryDelta{Appended: []Screen{ScreenWelcome, ScreenProduct, ScreenSpecs}},
			},
		},
		{
			name: "No Changes",
			old: &State{
				SessionID: "sess-1",
				Screen:    ScreenSpecs,
				Status:    StatusActive,
				History:   []Screen{ScreenWelcome},
			},
			new: &State{
				SessionID: "sess-1",
				Screen:    ScreenSpecs,
				Status:    StatusActive,
				History:   []Screen{ScreenWelcome},
			},
			wantDiff: nil,
		},
		{
			name: "Field Change Only",
			old: &State{
				SessionID: "sess-1",
				Screen:    ScreenContact,
				Status:    StatusActive,
				Draft:     Draft{Contact: Contact{Name: "Ali"}},
			},
			new: &State{
				SessionID: "sess-1",
				Screen:    ScreenContact,
				Status:    StatusActive,
				Draft:     Draft{Contact: Contact{Name: "Ali", City: "Bursa"}},
			},
			wantDiff: &StateDiff{
				SessionID: "sess-1",
				Fields:    map[string]any{"contact.city": "Bursa"},
			},
		},
		{
			name: "Completion",
			old: &State{
				SessionID: "sess-1",
				Screen:    ScreenConfirm,
				Status:    StatusActive,
				History:   []Screen{ScreenConfirm},
			},
			new: &State{
				SessionID: "sess-1",
				Screen:    ScreenSuccess,
				Status:    StatusCompleted,
				History:   []Screen{ScreenConfirm, ScreenSuccess},
			},
			wantDiff: &StateDiff{
				SessionID: "sess-1",
				Screen:    &[]Screen{ScreenSuccess}[0],
				Status:    &completed,
				History:   &HistoryDelta{Appended: []Screen{ScreenSuccess}},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Diff(tt.old, tt.new)
			assert.Equal(t, tt.wantDiff, got)
		})
	}
}

func TestDiff_ErrorsClearedAreSent(t *testing.T) {
	old := &State{SessionID: "s", Screen: ScreenContact, Errors: []string{"Ad Soyad gerekli"}}
	next := old.Snapshot()
	next.Errors = nil

	diff := Diff(old, next)
	require.NotNil(t, diff)
	require.NotNil(t, diff.Errors)
	assert.Empty(t, *diff.Errors)

	data, err := json.Marshal(diff)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(data), `"errors":[]`), string(data))
}

func TestDiff_RestartSendsWholeHistory(t *testing.T) {
	old := &State{SessionID: "s", History: []Screen{ScreenWelcome, ScreenProduct, ScreenSpecs}}
	next := &State{SessionID: "s", History: []Screen{ScreenWelcome}}

	diff := Diff(old, next)
	require.NotNil(t, diff)
	assert.Equal(t, []Screen{ScreenWelcome}, diff.History.Appended)
}
