package runtime

import (
	"errors"
	"strconv"
	"strings"

	"github.com/aretw0/orca/pkg/catalog"
	"github.com/aretw0/orca/pkg/domain"
)

// DefaultMinimumQuantity is the smallest order accepted without sales approval.
const DefaultMinimumQuantity = 50

// noNotesSynonyms are answers that mean "nothing to add".
var noNotesSynonyms = foldedSet(
	"-", "--", "none", "no", "nope", "skip", "n/a",
	"yok", "hayır", "gerek yok", "yok yok", "belirtilmedi",
)

func foldedSet(words ...string) map[string]struct{} {
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		set[catalog.Fold(w)] = struct{}{}
	}
	return set
}

// NormalizeNotes trims free-text notes and maps "no notes" answers to domain.NotSpecified.
func NormalizeNotes(input string) string {
	text := strings.TrimSpace(input)
	if text == "" {
		return ""
	}
	if _, ok := noNotesSynonyms[catalog.Fold(text)]; ok {
		return domain.NotSpecified
	}
	return text
}

// NormalizePhone converts Turkish numbers to the 11-digit local form (0XXXXXXXXXX).
// Inputs with an unexpected digit count are returned unchanged.
func NormalizePhone(input string) string {
	digits := onlyDigits(input)
	switch {
	case len(digits) == 10:
		return "0" + digits
	case len(digits) == 11 && digits[0] == '0':
		return digits
	case len(digits) == 12 && strings.HasPrefix(digits, "90"):
		return "0" + digits[2:]
	}
	return strings.TrimSpace(input)
}

func onlyDigits(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

var (
	errQuantityNotNumber = errors.New("Lütfen geçerli bir adet girin (sadece rakam)")
	errQuantityTooSmall  = errors.New("Miktar en az 1 adet olmalı")
)

// ParseQuantity accepts a positive integer, tolerating spaces and an "adet" suffix.
func ParseQuantity(input string) (int, error) {
	text := catalog.Fold(input)
	text = strings.TrimSuffix(text, "adet")
	text = strings.Join(strings.Fields(text), "")
	if text == "" {
		return 0, errQuantityNotNumber
	}
	if strings.HasPrefix(text, "-") {
		return 0, errQuantityTooSmall
	}
	n, err := strconv.Atoi(text)
	if err != nil {
		return 0, errQuantityNotNumber
	}
	if n < 1 {
		return 0, errQuantityTooSmall
	}
	return n, nil
}

// choice is an enumerated answer with its accepted spellings.
type choice struct {
	Value   string
	Label   string
	Aliases []string
}

// matchChoice resolves input by 1-based position, label or alias.
func matchChoice(input string, choices []choice) (choice, bool) {
	needle := catalog.Fold(input)
	if needle == "" {
		return choice{}, false
	}
	if n, err := strconv.Atoi(needle); err == nil {
		if n >= 1 && n <= len(choices) {
			return choices[n-1], true
		}
		return choice{}, false
	}
	for _, c := range choices {
		if catalog.Fold(c.Label) == needle || catalog.Fold(c.Value) == needle {
			return c, true
		}
		for _, alias := range c.Aliases {
			if catalog.Fold(alias) == needle {
				return c, true
			}
		}
	}
	return choice{}, false
}

// plainChoices turns a list of display strings into choices keyed by themselves.
func plainChoices(options []string) []choice {
	out := make([]choice, len(options))
	for i, o := range options {
		out[i] = choice{Value: o, Label: o}
	}
	return out
}

func labels(choices []choice) []string {
	out := make([]string, len(choices))
	for i, c := range choices {
		out[i] = c.Label
	}
	return out
}

var sizeModeChoices = []choice{
	{Value: string(domain.SizeStandard), Label: domain.SizeStandard.Label(), Aliases: []string{"standart", "s"}},
	{Value: string(domain.SizeCustom), Label: domain.SizeCustom.Label(), Aliases: []string{"özel", "ozel", "ö", "o"}},
}

var usageChoices = []choice{
	{Value: string(domain.UsageExport), Label: domain.UsageExport.Label(), Aliases: []string{"ihracat", "ispm", "ispm-15", "yurtdışı", "yurtdisi"}},
	{Value: string(domain.UsageDomestic), Label: domain.UsageDomestic.Label(), Aliases: []string{"yurtici", "yurt içi", "iç piyasa"}},
}

var timelineChoices = []choice{
	{Value: string(domain.TimelineUrgent), Label: "Acil", Aliases: []string{"acil (bu hafta)", "bu hafta"}},
	{Value: string(domain.TimelineNormal), Label: "Normal", Aliases: []string{"normal (2-3 hafta)", "2-3 hafta"}},
	{Value: string(domain.TimelineFlexible), Label: "Esnek", Aliases: []string{"farketmez", "fark etmez"}},
}

var channelChoices = []choice{
	{Value: string(domain.ChannelEmail), Label: "E-posta", Aliases: []string{"eposta", "e-mail", "mail"}},
	{Value: string(domain.ChannelWhatsApp), Label: "WhatsApp", Aliases: []string{"wa", "whats app"}},
	{Value: string(domain.ChannelBoth), Label: "Her ikisi", Aliases: []string{"ikisi", "ikisi de", "hepsi"}},
}
