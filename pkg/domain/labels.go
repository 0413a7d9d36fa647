package domain

import "strconv"

// Label returns the display text for the usage, including the ISPM-15 note for export.
func (u Usage) Label() string {
	switch u {
	case UsageExport:
		return "İhracat (ISPM-15)"
	case UsageDomestic:
		return "Yurtiçi"
	}
	return NotSpecified
}

// Label returns the display text for the size mode.
func (m SizeMode) Label() string {
	switch m {
	case SizeStandard:
		return "Standart ölçü"
	case SizeCustom:
		return "Özel ölçü"
	}
	return NotSpecified
}

// Label returns the display text for the channel.
func (c Channel) Label() string {
	switch c {
	case ChannelEmail:
		return "E-posta"
	case ChannelWhatsApp:
		return "WhatsApp"
	case ChannelBoth:
		return "E-posta + WhatsApp"
	}
	return NotSpecified
}

// BelowMinimumNote is appended to quantities under the minimum order size.
const BelowMinimumNote = "(minimum altı, satış onayı gerekli)"

// QuantityLabel renders the quantity with its unit and the below-minimum note.
func (p Product) QuantityLabel() string {
	if p.Quantity <= 0 {
		return NotSpecified
	}
	text := strconv.Itoa(p.Quantity) + " adet"
	if p.BelowMinimum {
		text += " " + BelowMinimumNote
	}
	return text
}

// Or returns s, or NotSpecified when s is empty.
func Or(s string) string {
	if s == "" {
		return NotSpecified
	}
	return s
}

// Label returns the display name of the screen.
func (s Screen) Label() string {
	switch s {
	case ScreenWelcome:
		return "Hoş geldiniz"
	case ScreenProduct:
		return "Ürün"
	case ScreenSpecs:
		return "Detaylar"
	case ScreenContact:
		return "İletişim"
	case ScreenConfirm:
		return "Özet"
	case ScreenSuccess:
		return "Tamamlandı"
	}
	return string(s)
}
