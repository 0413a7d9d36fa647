// Package attachment captures the files that travel with an order: photos
// picked by the customer and voice notes recorded during the session.
//
// Constraints are enforced at capture time, before anything reaches the
// network. A Recorder runs one voice recording at a time, capturing audio and
// transcribing it concurrently.
package attachment

import (
	"encoding/base64"
	"fmt"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/aretw0/orca/pkg/domain"
)

// MaxFileSize is the largest photo or voice note accepted.
const MaxFileSize = 5 << 20

// Language is the speech recognition locale.
const Language = "tr-TR"

// TranscriptPlaceholder replaces the transcript when recognition produced nothing.
const TranscriptPlaceholder = "Sesli not kaydedildi (Transkript alınamadı)"

// DefaultPhotoName is used when an upload carries no filename.
const DefaultPhotoName = "photo.jpg"

// NewPhoto validates an image and encodes it for transport.
// Non-images fail with domain.ErrNotAnImage, oversized files with domain.ErrAttachmentTooLarge.
func NewPhoto(filename string, data []byte) (domain.Attachment, error) {
	if len(data) > MaxFileSize {
		return domain.Attachment{}, fmt.Errorf("%w: %s is %s, limit is %s",
			domain.ErrAttachmentTooLarge, displayName(filename, DefaultPhotoName), humanSize(len(data)), humanSize(MaxFileSize))
	}
	if mime := http.DetectContentType(data); !strings.HasPrefix(mime, "image/") {
		return domain.Attachment{}, fmt.Errorf("%w: got %s", domain.ErrNotAnImage, mime)
	}
	return domain.Attachment{
		Kind:     domain.AttachmentPhoto,
		Payload:  base64.StdEncoding.EncodeToString(data),
		Filename: displayName(filename, DefaultPhotoName),
	}, nil
}

// NewVoiceNote encodes an already recorded clip. The returned transcript is
// the given one, or TranscriptPlaceholder when it is blank.
func NewVoiceNote(filename string, data []byte, transcript string, at time.Time) (domain.Attachment, string, error) {
	if len(data) > MaxFileSize {
		return domain.Attachment{}, "", fmt.Errorf("%w: voice note is %s, limit is %s",
			domain.ErrAttachmentTooLarge, humanSize(len(data)), humanSize(MaxFileSize))
	}
	return domain.Attachment{
		Kind:     domain.AttachmentAudio,
		Payload:  base64.StdEncoding.EncodeToString(data),
		Filename: displayName(filename, VoiceFilename(at)),
	}, TranscriptOrPlaceholder(transcript), nil
}

// VoiceFilename names a recording started at t.
func VoiceFilename(t time.Time) string {
	return fmt.Sprintf("sesli-not-%d.webm", t.UnixMilli())
}

// TranscriptOrPlaceholder trims text and substitutes the placeholder when empty.
func TranscriptOrPlaceholder(text string) string {
	if text = strings.TrimSpace(text); text != "" {
		return text
	}
	return TranscriptPlaceholder
}

// Decode returns the raw bytes of an attachment.
func Decode(a domain.Attachment) ([]byte, error) {
	return base64.StdEncoding.DecodeString(a.Payload)
}

func displayName(name, fallback string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return fallback
	}
	return filepath.Base(name)
}

func humanSize(n int) string {
	return fmt.Sprintf("%.1f MB", float64(n)/(1<<20))
}
