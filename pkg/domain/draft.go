package domain

import (
	"fmt"
	"time"
)

// MaxAttachments is the number of files a single draft may carry.
const MaxAttachments = 5

// NotSpecified is the marker rendered (and stored for notes) when a value is absent.
const NotSpecified = "Belirtilmedi"

// SizeMode selects between catalog sizes and free-form dimensions.
type SizeMode string

const (
	SizeStandard SizeMode = "standard"
	SizeCustom   SizeMode = "custom"
)

// Usage tells whether the goods leave the country (ISPM-15 treatment).
type Usage string

const (
	UsageExport   Usage = "export"
	UsageDomestic Usage = "domestic"
)

// Timeline is the delivery urgency chosen by the customer.
type Timeline string

const (
	TimelineUrgent   Timeline = "urgent"
	TimelineNormal   Timeline = "normal"
	TimelineFlexible Timeline = "flexible"
)

// Label returns the display text for the timeline.
func (t Timeline) Label() string {
	switch t {
	case TimelineUrgent:
		return "Acil (Bu hafta)"
	case TimelineNormal:
		return "Normal (2-3 hafta)"
	case TimelineFlexible:
		return "Esnek"
	}
	return NotSpecified
}

// Channel is the delivery mechanism for a completed order.
type Channel string

const (
	ChannelEmail    Channel = "email"
	ChannelWhatsApp Channel = "whatsapp"
	ChannelBoth     Channel = "both"
)

// IncludesEmail reports whether the email collaborator must be called.
func (c Channel) IncludesEmail() bool {
	return c == ChannelEmail || c == ChannelBoth
}

// IncludesWhatsApp reports whether the WhatsApp deep link must be opened.
func (c Channel) IncludesWhatsApp() bool {
	return c == ChannelWhatsApp || c == ChannelBoth
}

// Valid reports whether c is one of the known channels.
func (c Channel) Valid() bool {
	return c == ChannelEmail || c == ChannelWhatsApp || c == ChannelBoth
}

// AttachmentKind distinguishes photos from voice notes.
type AttachmentKind string

const (
	AttachmentPhoto AttachmentKind = "photo"
	AttachmentAudio AttachmentKind = "audio"
)

// Attachment is a file carried with the order. Payload is standard base64
// without any data URL prefix.
type Attachment struct {
	Kind     AttachmentKind `json:"kind"`
	Payload  string         `json:"payload"`
	Filename string         `json:"filename"`
}

// Product holds the product specification. Zero values mean unset.
type Product struct {
	Category     string   `json:"category,omitempty"`
	Subcategory  string   `json:"subcategory,omitempty"`
	Quantity     int      `json:"quantity,omitempty"`
	BelowMinimum bool     `json:"below_minimum,omitempty"`
	SizeMode     SizeMode `json:"size_mode,omitempty"`
	Dimensions   string   `json:"dimensions,omitempty"`
	Usage        Usage    `json:"usage,omitempty"`
	Notes        string   `json:"notes,omitempty"`
}

// Contact holds the customer details. Zero values mean unset.
type Contact struct {
	Name    string `json:"name,omitempty"`
	Company string `json:"company,omitempty"`
	Phone   string `json:"phone,omitempty"`
	Email   string `json:"email,omitempty"`
	City    string `json:"city,omitempty"`
}

// IsZero reports whether no contact field is set.
func (c Contact) IsZero() bool {
	return c == Contact{}
}

// Draft is the order being assembled during a session.
type Draft struct {
	Product         Product      `json:"product"`
	Contact         Contact      `json:"contact"`
	Timeline        Timeline     `json:"timeline,omitempty"`
	Attachments     []Attachment `json:"attachments,omitempty"`
	VoiceTranscript string       `json:"voice_transcript,omitempty"`
	OrderID         string       `json:"order_id,omitempty"`
	ConfirmedAt     time.Time    `json:"confirmed_at,omitempty"`
	Channel         Channel      `json:"channel,omitempty"`
}

// Clone returns a copy that shares no slices with d.
func (d Draft) Clone() Draft {
	next := d
	if d.Attachments != nil {
		next.Attachments = make([]Attachment, len(d.Attachments))
		copy(next.Attachments, d.Attachments)
	}
	return next
}

// SelectCategory sets the category and clears every field that depends on it.
func (d *Draft) SelectCategory(key string) {
	d.Product.Category = key
	d.Product.Subcategory = ""
	d.Product.Dimensions = ""
	d.Product.SizeMode = ""
	d.Product.Usage = ""
}

// SetSizeMode switches between standard and custom sizes, discarding dimensions.
func (d *Draft) SetSizeMode(mode SizeMode) {
	d.Product.SizeMode = mode
	d.Product.Dimensions = ""
}

// AddAttachment appends a file, enforcing MaxAttachments.
func (d *Draft) AddAttachment(a Attachment) error {
	if len(d.Attachments) >= MaxAttachments {
		return fmt.Errorf("%w: limit is %d", ErrTooManyAttachments, MaxAttachments)
	}
	d.Attachments = append(d.Attachments, a)
	return nil
}

// RemoveAttachment deletes the attachment at index. Out of range indexes are ignored.
// Removing a voice note also clears the transcript.
func (d *Draft) RemoveAttachment(index int) {
	if index < 0 || index >= len(d.Attachments) {
		return
	}
	removed := d.Attachments[index]
	next := make([]Attachment, 0, len(d.Attachments)-1)
	next = append(next, d.Attachments[:index]...)
	next = append(next, d.Attachments[index+1:]...)
	d.Attachments = next
	if removed.Kind == AttachmentAudio {
		d.VoiceTranscript = ""
	}
}

// CountAttachments returns the number of attachments of the given kind.
func (d Draft) CountAttachments(kind AttachmentKind) int {
	n := 0
	for _, a := range d.Attachments {
		if a.Kind == kind {
			n++
		}
	}
	return n
}

// AssignOrderID sets the order id and confirmation time unless already assigned.
// It returns true when a new id was assigned.
func (d *Draft) AssignOrderID(id string, at time.Time) bool {
	if d.OrderID != "" {
		return false
	}
	d.OrderID = id
	d.ConfirmedAt = at
	return true
}

// Flatten exposes the draft as dotted keys, used for diffs and masking.
func (d Draft) Flatten() map[string]any {
	return map[string]any{
		"product.category":      d.Product.Category,
		"product.subcategory":   d.Product.Subcategory,
		"product.quantity":      d.Product.Quantity,
		"product.below_minimum": d.Product.BelowMinimum,
		"product.size_mode":     string(d.Product.SizeMode),
		"product.dimensions":    d.Product.Dimensions,
		"product.usage":         string(d.Product.Usage),
		"product.notes":         d.Product.Notes,
		"contact.name":          d.Contact.Name,
		"contact.company":       d.Contact.Company,
		"contact.phone":         d.Contact.Phone,
		"contact.email":         d.Contact.Email,
		"contact.city":          d.Contact.City,
		"timeline":              string(d.Timeline),
		"attachments":           len(d.Attachments),
		"voice_transcript":      d.VoiceTranscript,
		"order_id":              d.OrderID,
		"channel":               string(d.Channel),
	}
}
