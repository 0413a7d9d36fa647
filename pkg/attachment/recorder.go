package attachment

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/aretw0/orca/pkg/domain"
)

// Microphone gives access to an audio source.
type Microphone interface {
	// Open starts capturing. It fails when no device or permission is available.
	Open(ctx context.Context) (AudioStream, error)
}

// AudioStream delivers captured audio. Close must release the device and
// close the Chunks channel.
type AudioStream interface {
	Chunks() <-chan []byte
	Close() error
}

// Recognition is one speech-to-text result.
type Recognition struct {
	Text  string
	Final bool
}

// Recognizer transcribes the audio of the open microphone.
type Recognizer interface {
	// Listen starts a recognition session. The channel is closed when the
	// session ends, which may happen before the recording stops.
	Listen(ctx context.Context, lang string) (<-chan Recognition, error)
}

// Clip is a finished recording.
type Clip struct {
	Attachment domain.Attachment
	Transcript string
	Duration   time.Duration
}

// restartDelay throttles recognizer restarts.
const restartDelay = 100 * time.Millisecond

// Recorder runs at most one voice recording at a time.
type Recorder struct {
	mic    Microphone
	rec    Recognizer
	logger *slog.Logger
	now    func() time.Time

	// OnTranscript, when set, receives the running transcript after every result.
	OnTranscript func(text string)

	mu      sync.Mutex
	current *recording
}

// RecorderOption configures a Recorder.
type RecorderOption func(*Recorder)

// WithRecognizer enables live transcription.
func WithRecognizer(r Recognizer) RecorderOption {
	return func(rc *Recorder) {
		rc.rec = r
	}
}

// WithRecorderLogger sets the logger.
func WithRecorderLogger(l *slog.Logger) RecorderOption {
	return func(rc *Recorder) {
		if l != nil {
			rc.logger = l
		}
	}
}

// WithRecorderClock replaces time.Now.
func WithRecorderClock(now func() time.Time) RecorderOption {
	return func(rc *Recorder) {
		if now != nil {
			rc.now = now
		}
	}
}

// NewRecorder creates a recorder. mic may be nil, in which case every
// Start fails with domain.ErrCapabilityUnavailable.
func NewRecorder(mic Microphone, opts ...RecorderOption) *Recorder {
	r := &Recorder{
		mic:    mic,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// recording is the state of one session. Both listeners share it.
type recording struct {
	cancel    context.CancelFunc
	stream    AudioStream
	group     *errgroup.Group
	started   time.Time
	audioDone chan struct{}

	// live gates recognizer restarts and result delivery; cleared first on stop.
	live atomic.Bool

	mu      sync.Mutex
	audio   bytes.Buffer
	final   strings.Builder
	interim string
}

func (s *recording) transcript() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return strings.TrimSpace(strings.TrimSpace(s.final.String()) + " " + s.interim)
}

// Recording reports whether a session is active.
func (r *Recorder) Recording() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.current != nil
}

// Start begins a recording. When one is already running it is stopped
// instead and its clip returned. A fresh start returns a nil clip.
func (r *Recorder) Start(ctx context.Context) (*Clip, error) {
	r.mu.Lock()
	if r.current != nil {
		r.mu.Unlock()
		return r.Stop()
	}
	defer r.mu.Unlock()

	if r.mic == nil {
		return nil, fmt.Errorf("%w: no microphone", domain.ErrCapabilityUnavailable)
	}
	stream, err := r.mic.Open(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrCapabilityUnavailable, err)
	}

	// The session outlives the caller's request; Stop ends it.
	sessionCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	g, gctx := errgroup.WithContext(sessionCtx)
	s := &recording{
		cancel:    cancel,
		stream:    stream,
		group:     g,
		started:   r.now(),
		audioDone: make(chan struct{}),
	}
	s.live.Store(true)

	g.Go(func() error { return r.captureAudio(gctx, s) })
	if r.rec != nil {
		g.Go(func() error { return r.transcribe(gctx, s) })
	}

	r.current = s
	r.logger.Debug("recording started")
	return nil, nil
}

// AudioDone is closed when the audio source of the active recording has
// ended on its own. It returns nil when nothing is recording.
func (r *Recorder) AudioDone() <-chan struct{} {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.current == nil {
		return nil
	}
	return r.current.audioDone
}

// Stop ends the recording and returns the clip. The microphone is released
// even when a listener failed, and recognizer results still in flight are dropped.
func (r *Recorder) Stop() (*Clip, error) {
	r.mu.Lock()
	s := r.current
	r.current = nil
	r.mu.Unlock()
	if s == nil {
		return nil, domain.ErrNotRecording
	}

	s.live.Store(false)
	if err := s.stream.Close(); err != nil {
		r.logger.Warn("failed to release microphone", "err", err)
	}
	s.cancel()
	if err := s.group.Wait(); err != nil {
		r.logger.Warn("recording listener failed", "err", err)
	}

	s.mu.Lock()
	data := append([]byte(nil), s.audio.Bytes()...)
	s.mu.Unlock()

	transcript := TranscriptOrPlaceholder(s.transcript())
	r.logger.Debug("recording stopped", "bytes", len(data))

	return &Clip{
		Attachment: domain.Attachment{
			Kind:     domain.AttachmentAudio,
			Payload:  base64.StdEncoding.EncodeToString(data),
			Filename: VoiceFilename(s.started),
		},
		Transcript: transcript,
		Duration:   r.now().Sub(s.started),
	}, nil
}

// captureAudio appends chunks until the stream is closed.
func (r *Recorder) captureAudio(ctx context.Context, s *recording) error {
	defer close(s.audioDone)
	chunks := s.stream.Chunks()
	for {
		select {
		case chunk, ok := <-chunks:
			if !ok {
				return nil
			}
			s.mu.Lock()
			if s.audio.Len()+len(chunk) > MaxFileSize {
				s.mu.Unlock()
				return fmt.Errorf("%w: recording reached %s", domain.ErrAttachmentTooLarge, humanSize(MaxFileSize))
			}
			s.audio.Write(chunk)
			s.mu.Unlock()
		case <-ctx.Done():
			drain(s, chunks)
			return nil
		}
	}
}

// drain keeps the chunks already delivered when the session is cancelled.
func drain(s *recording, chunks <-chan []byte) {
	for {
		select {
		case chunk, ok := <-chunks:
			if !ok {
				return
			}
			s.mu.Lock()
			if s.audio.Len()+len(chunk) <= MaxFileSize {
				s.audio.Write(chunk)
			}
			s.mu.Unlock()
		default:
			return
		}
	}
}

// transcribe consumes recognizer sessions, reopening them while the recording is live.
func (r *Recorder) transcribe(ctx context.Context, s *recording) error {
	for s.live.Load() {
		results, err := r.rec.Listen(ctx, Language)
		if err != nil {
			// Recording continues without a transcript.
			r.logger.Debug("speech recognition unavailable", "err", err)
			return nil
		}
		if done := r.consume(ctx, s, results); done {
			return nil
		}

		select {
		case <-ctx.Done():
			return nil
		case <-time.After(restartDelay):
		}
	}
	return nil
}

// consume applies results until the session channel closes. It returns true
// when the recording is over.
func (r *Recorder) consume(ctx context.Context, s *recording, results <-chan Recognition) bool {
	for {
		select {
		case <-ctx.Done():
			return true
		case res, ok := <-results:
			if !ok {
				return !s.live.Load()
			}
			if !s.live.Load() {
				continue
			}
			s.mu.Lock()
			if res.Final {
				s.final.WriteString(res.Text + " ")
				s.interim = ""
			} else {
				s.interim = res.Text
			}
			s.mu.Unlock()
			if r.OnTranscript != nil {
				r.OnTranscript(s.transcript())
			}
		}
	}
}
