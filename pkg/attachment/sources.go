package attachment

import (
	"context"
	"errors"
	"io"
	"os"
	"sync"
)

const chunkSize = 32 << 10

// FileMicrophone replays an audio file as if it were being recorded.
// It lets terminal sessions attach existing recordings.
type FileMicrophone struct {
	Path string
}

// Open starts streaming the file. A missing file means no microphone.
func (m FileMicrophone) Open(ctx context.Context) (AudioStream, error) {
	f, err := os.Open(m.Path)
	if err != nil {
		return nil, err
	}
	return newReaderStream(f), nil
}

// readerStream pumps an io.ReadCloser into chunks.
type readerStream struct {
	src    io.ReadCloser
	chunks chan []byte
	stop   chan struct{}
	once   sync.Once
	wg     sync.WaitGroup
}

func newReaderStream(src io.ReadCloser) *readerStream {
	s := &readerStream{
		src:    src,
		chunks: make(chan []byte),
		stop:   make(chan struct{}),
	}
	s.wg.Add(1)
	go s.pump()
	return s
}

func (s *readerStream) pump() {
	defer s.wg.Done()
	defer close(s.chunks)
	buf := make([]byte, chunkSize)
	for {
		n, err := s.src.Read(buf)
		if n > 0 {
			chunk := append([]byte(nil), buf[:n]...)
			select {
			case s.chunks <- chunk:
			case <-s.stop:
				return
			}
		}
		if err != nil {
			return
		}
	}
}

func (s *readerStream) Chunks() <-chan []byte { return s.chunks }

func (s *readerStream) Close() error {
	var err error
	s.once.Do(func() {
		close(s.stop)
		err = s.src.Close()
		s.wg.Wait()
		if errors.Is(err, os.ErrClosed) {
			err = nil
		}
	})
	return err
}

// TextRecognizer yields a known transcript once, e.g. a sidecar text file
// next to a replayed recording. Later sessions stay silent until cancelled.
type TextRecognizer struct {
	Text string

	mu   sync.Mutex
	sent bool
}

// Listen implements Recognizer.
func (r *TextRecognizer) Listen(ctx context.Context, _ string) (<-chan Recognition, error) {
	r.mu.Lock()
	first := !r.sent && r.Text != ""
	r.sent = true
	r.mu.Unlock()

	out := make(chan Recognition, 1)
	if first {
		out <- Recognition{Text: r.Text, Final: true}
		close(out)
		return out, nil
	}
	go func() {
		<-ctx.Done()
		close(out)
	}()
	return out, nil
}
