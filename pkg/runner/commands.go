package runner

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/aretw0/orca/pkg/attachment"
	"github.com/aretw0/orca/pkg/domain"
)

// SignalTranscript carries the running voice transcript while a note is replayed.
const SignalTranscript = "transcript"

// transcriptWait bounds how long a replayed note waits for its transcript.
const transcriptWait = 2 * time.Second

var (
	errUnknownCommand = errors.New("unknown command, type /help")
	errCommandUsage   = errors.New("usage")
)

// Command is a slash command available in every screen.
type Command struct {
	Usage       string
	Description string
	Run         func(ctx context.Context, r *Runner, state *domain.State, arg string) (*domain.State, error)
}

// DefaultCommands returns the attachment and assistant commands.
func DefaultCommands() map[string]Command {
	return map[string]Command{
		"photo": {
			Usage:       "/photo <dosya>",
			Description: "Fotoğraf ekler (JPG, PNG)",
			Run:         attachPhoto,
		},
		"voice": {
			Usage:       "/voice <dosya>",
			Description: "Sesli not ekler; yanındaki .txt dosyası döküm olarak okunur",
			Run:         attachVoice,
		},
		"remove": {
			Usage:       "/remove <sıra>",
			Description: "Eki siler",
			Run:         removeAttachment,
		},
		"files": {
			Usage:       "/files",
			Description: "Ekleri listeler",
			Run:         listAttachments,
		},
		"search": {
			Usage:       "/search <metin>",
			Description: "Ürünü tarif ederek kategori bulur",
			Run: func(ctx context.Context, r *Runner, state *domain.State, arg string) (*domain.State, error) {
				if arg == "" {
					return nil, fmt.Errorf("%w: /search <metin>", errCommandUsage)
				}
				return r.engine.Classify(ctx, state, arg)
			},
		},
		"advise": {
			Usage:       "/advise <metin>",
			Description: "Siparişiniz hakkında öneri ister",
			Run: func(ctx context.Context, r *Runner, state *domain.State, arg string) (*domain.State, error) {
				if arg == "" {
					return nil, fmt.Errorf("%w: /advise <metin>", errCommandUsage)
				}
				return r.engine.Advise(ctx, state, arg)
			},
		},
		"help": {
			Usage:       "/help",
			Description: "Komutları gösterir",
			Run:         showHelp,
		},
	}
}

// parseCommand splits "/name arg" input.
func parseCommand(input string) (name, arg string, ok bool) {
	input = strings.TrimSpace(input)
	if !strings.HasPrefix(input, "/") || len(input) < 2 {
		return "", "", false
	}
	name, arg, _ = strings.Cut(input[1:], " ")
	return strings.ToLower(name), strings.TrimSpace(arg), true
}

func attachPhoto(ctx context.Context, r *Runner, state *domain.State, path string) (*domain.State, error) {
	if path == "" {
		return nil, fmt.Errorf("%w: /photo <dosya>", errCommandUsage)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrCapabilityUnavailable, err)
	}
	a, err := attachment.NewPhoto(path, data)
	if err != nil {
		return nil, err
	}
	next, err := r.engine.Attach(ctx, state, a)
	if err != nil {
		return nil, err
	}
	next.Notice = fmt.Sprintf("📷 %s eklendi.", a.Filename)
	return next, nil
}

// attachVoice replays an audio file through the recorder. A sidecar text
// file with the same base name stands in for live speech recognition.
func attachVoice(ctx context.Context, r *Runner, state *domain.State, path string) (*domain.State, error) {
	if path == "" {
		return nil, fmt.Errorf("%w: /voice <dosya>", errCommandUsage)
	}
	if state.Done() {
		return nil, domain.ErrSessionClosed
	}

	opts := []attachment.RecorderOption{attachment.WithRecorderLogger(r.Logger)}
	sidecar := strings.TrimSuffix(path, filepath.Ext(path)) + ".txt"
	text, err := os.ReadFile(sidecar)
	transcribing := err == nil && len(strings.TrimSpace(string(text))) > 0
	if transcribing {
		opts = append(opts, attachment.WithRecognizer(&attachment.TextRecognizer{Text: strings.TrimSpace(string(text))}))
	}
	rec := attachment.NewRecorder(attachment.FileMicrophone{Path: path}, opts...)

	heard := make(chan struct{})
	var once sync.Once
	rec.OnTranscript = func(text string) {
		_ = r.Handler.Signal(ctx, SignalTranscript, map[string]any{"text": text})
		once.Do(func() { close(heard) })
	}

	if _, err := rec.Start(ctx); err != nil {
		return nil, err
	}
	select {
	case <-rec.AudioDone():
	case <-ctx.Done():
	}
	if transcribing {
		select {
		case <-heard:
		case <-ctx.Done():
		case <-time.After(transcriptWait):
		}
	}
	clip, err := rec.Stop()
	if err != nil {
		return nil, err
	}
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	next, err := r.engine.AttachVoiceNote(ctx, state, clip.Attachment, clip.Transcript)
	if err != nil {
		return nil, err
	}
	next.Notice = fmt.Sprintf("🎤 %s eklendi.", clip.Attachment.Filename)
	return next, nil
}

func removeAttachment(ctx context.Context, r *Runner, state *domain.State, arg string) (*domain.State, error) {
	n, err := strconv.Atoi(arg)
	if err != nil || n < 1 || n > len(state.Draft.Attachments) {
		return nil, fmt.Errorf("%w: /remove <1-%d>", errCommandUsage, len(state.Draft.Attachments))
	}
	removed := state.Draft.Attachments[n-1].Filename
	next, err := r.engine.RemoveAttachment(ctx, state, n-1)
	if err != nil {
		return nil, err
	}
	next.Notice = fmt.Sprintf("%s silindi.", removed)
	return next, nil
}

func listAttachments(ctx context.Context, r *Runner, state *domain.State, _ string) (*domain.State, error) {
	if len(state.Draft.Attachments) == 0 {
		return nil, r.Handler.SystemOutput(ctx, "Henüz ek yok.")
	}
	var b strings.Builder
	for i, a := range state.Draft.Attachments {
		icon := "📷"
		if a.Kind == domain.AttachmentAudio {
			icon = "🎤"
		}
		fmt.Fprintf(&b, "%d. %s %s\n", i+1, icon, a.Filename)
	}
	if state.Draft.VoiceTranscript != "" {
		fmt.Fprintf(&b, "Sesli not: %s\n", state.Draft.VoiceTranscript)
	}
	return nil, r.Handler.SystemOutput(ctx, strings.TrimRight(b.String(), "\n"))
}

func showHelp(ctx context.Context, r *Runner, _ *domain.State, _ string) (*domain.State, error) {
	names := make([]string, 0, len(r.Commands))
	for name := range r.Commands {
		names = append(names, name)
	}
	sort.Strings(names)

	var b strings.Builder
	b.WriteString("Komutlar:\n")
	for _, name := range names {
		cmd := r.Commands[name]
		fmt.Fprintf(&b, "  %-18s %s\n", cmd.Usage, cmd.Description)
	}
	b.WriteString("  geri | iptal | yeni  Akış komutları")
	return nil, r.Handler.SystemOutput(ctx, b.String())
}
