package intake

import (
	"regexp"
	"strings"

	"github.com/aretw0/orca/pkg/domain"
)

// Limits of a single request.
const (
	MaxAttachments    = 5
	MaxAttachmentSize = 4.5 * 1024 * 1024
	MaxBodySize       = 8 << 20
)

var (
	emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	phonePattern = regexp.MustCompile(`^[\d\s+\-()]{10,20}$`)
)

// Validate returns every problem with req, or nil.
func Validate(req domain.OrderRequest) []string {
	var errs []string
	if strings.TrimSpace(req.OrderNumber) == "" {
		errs = append(errs, "Order number is required")
	}
	if !emailPattern.MatchString(req.CustomerEmail) {
		errs = append(errs, "Valid email is required")
	}
	if req.CustomerPhone != "" && !phonePattern.MatchString(req.CustomerPhone) {
		errs = append(errs, "Valid phone number is required")
	}
	if strings.TrimSpace(req.OrderDetails) == "" {
		errs = append(errs, "Order details are required")
	}
	return errs
}

// attachmentBytes estimates the decoded size of all attachments.
func attachmentBytes(atts []domain.OrderAttachment) int {
	total := 0
	for _, a := range atts {
		total += len(a.Content) * 3 / 4
	}
	return total
}

// mimeType maps the attachment kind sent by the dispatcher to a MIME type.
func mimeType(kind string) string {
	switch kind {
	case "image":
		return "image/jpeg"
	case "audio":
		return "audio/webm"
	}
	return "application/octet-stream"
}

func defaultFilename(kind string) string {
	if kind == "audio" {
		return "sesli-not.webm"
	}
	return "photo.jpg"
}
