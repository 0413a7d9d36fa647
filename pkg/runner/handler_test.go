package runner_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/orca/pkg/domain"
	"github.com/aretw0/orca/pkg/runner"
)

var sampleActions = []domain.ActionRequest{
	{Type: domain.ActionRenderContent, Payload: "## Ürün Seçimi"},
	{Type: domain.ActionSystemMessage, Payload: "⚠️ Kategori seçin"},
	{Type: domain.ActionRequestInput, Payload: domain.InputRequest{Field: "category", Type: domain.InputChoice}},
}

func TestTextHandler_Output(t *testing.T) {
	var out bytes.Buffer
	h := runner.NewTextHandler(strings.NewReader(""), &out,
		runner.WithTextHandlerRenderer(func(s string) (string, error) { return strings.ToUpper(s), nil }),
	)

	needsInput, err := h.Output(context.Background(), sampleActions)
	require.NoError(t, err)
	assert.True(t, needsInput)
	assert.Equal(t, "## ÜRÜN SEÇIMI\n⚠️ Kategori seçin\n", out.String())
}

func TestTextHandler_PacingHonorsCancellation(t *testing.T) {
	h := runner.NewTextHandler(strings.NewReader(""), io.Discard, runner.WithPacing(time.Hour))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := h.Output(ctx, sampleActions)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestTextHandler_Input(t *testing.T) {
	var out bytes.Buffer
	h := runner.NewTextHandler(strings.NewReader("  200 adet \nsecond\x07\n"), &out)

	first, err := h.Input(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "200 adet", first)

	second, err := h.Input(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "second", second)

	_, err = h.Input(context.Background())
	assert.ErrorIs(t, err, io.EOF)
	assert.Contains(t, out.String(), "> ")
}

func TestTextHandler_InputRetriesOversizedLine(t *testing.T) {
	t.Setenv(runner.EnvMaxInputSize, "8")
	var out bytes.Buffer
	h := runner.NewTextHandler(strings.NewReader("far too long for the limit\nkısa\n"), &out)

	got, err := h.Input(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "kısa", got)
	assert.Contains(t, out.String(), "Lütfen tekrar deneyin")
}

func TestTextHandler_InputCancelled(t *testing.T) {
	pr, pw := io.Pipe()
	defer pw.Close()
	h := runner.NewTextHandler(pr, io.Discard)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err := h.Input(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestTextHandler_Signal(t *testing.T) {
	var out bytes.Buffer
	h := runner.NewTextHandler(strings.NewReader(""), &out)
	require.NoError(t, h.Signal(context.Background(), runner.SignalTranscript, map[string]any{"text": "iki yüz"}))
	require.NoError(t, h.Signal(context.Background(), "other", nil))
	assert.Equal(t, "\r🎤 iki yüz", out.String())
}

func TestJSONHandler(t *testing.T) {
	var out bytes.Buffer
	h := runner.NewJSONHandler(strings.NewReader("\"palet\"\nraw text\n"), &out)
	ctx := context.Background()

	needsInput, err := h.Output(ctx, sampleActions)
	require.NoError(t, err)
	assert.True(t, needsInput)
	require.NoError(t, h.Signal(ctx, runner.SignalTranscript, map[string]any{"text": "kasa"}))
	require.NoError(t, h.SystemOutput(ctx, "kaydedildi"))

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 3)

	var actions []map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &actions))
	require.Len(t, actions, 3)
	assert.Equal(t, domain.ActionRequestInput, actions[2]["type"])

	require.NoError(t, json.Unmarshal([]byte(lines[1]), &actions))
	assert.Equal(t, runner.ActionSignal, actions[0]["type"])
	assert.Equal(t, map[string]any{"name": "transcript", "args": map[string]any{"text": "kasa"}}, actions[0]["payload"])

	require.NoError(t, json.Unmarshal([]byte(lines[2]), &actions))
	assert.Equal(t, domain.ActionSystemMessage, actions[0]["type"])

	in, err := h.Input(ctx)
	require.NoError(t, err)
	assert.Equal(t, "palet", in)
	in, err = h.Input(ctx)
	require.NoError(t, err)
	assert.Equal(t, "raw text", in)
	_, err = h.Input(ctx)
	assert.ErrorIs(t, err, io.EOF)
}

func TestJSONHandler_EmptyOutput(t *testing.T) {
	var out bytes.Buffer
	needsInput, err := runner.NewJSONHandler(strings.NewReader(""), &out).Output(context.Background(), nil)
	require.NoError(t, err)
	assert.False(t, needsInput)
	assert.Empty(t, out.String())
}

func TestSanitizeInput(t *testing.T) {
	got, err := runner.SanitizeInput("Forklift\tgirişi\x00 olsun\n")
	require.NoError(t, err)
	assert.Equal(t, "Forklift\tgirişi olsun\n", got)

	got, err = runner.SanitizeInput("ag\u0306ac\u0327\r")
	require.NoError(t, err)
	assert.Equal(t, "ağaç", got, "decomposed letters are composed")

	_, err = runner.SanitizeInput(string([]byte{0xff, 0xfe}))
	assert.ErrorIs(t, err, runner.ErrInvalidUTF8)

	_, err = runner.SanitizeInput(strings.Repeat("a", runner.DefaultMaxInputSize+1))
	assert.ErrorIs(t, err, runner.ErrInputTooLarge)

	t.Setenv(runner.EnvMaxInputSize, "10000")
	_, err = runner.SanitizeInput(strings.Repeat("a", runner.DefaultMaxInputSize+1))
	assert.NoError(t, err)
}

func TestSignalManager_ParentCancel(t *testing.T) {
	parent, cancel := context.WithCancel(context.Background())
	sm := runner.NewSignalManager(parent)
	defer sm.Stop()

	assert.NoError(t, sm.Context().Err())
	cancel()
	sm.CheckRace()
	assert.Error(t, sm.Context().Err())
}
