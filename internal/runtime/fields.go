package runtime

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/aretw0/orca/pkg/catalog"
	"github.com/aretw0/orca/pkg/domain"
)

// FieldContext is what prompts and validators may depend on.
type FieldContext struct {
	Draft       domain.Draft
	Category    domain.Category
	MinQuantity int
}

// Prompt is the question text of a field: either StaticPrompt or DependentPrompt.
type Prompt interface {
	Text(fc FieldContext) string
}

// StaticPrompt is a fixed question.
type StaticPrompt string

func (p StaticPrompt) Text(FieldContext) string { return string(p) }

// DependentPrompt phrases the question from earlier answers.
type DependentPrompt func(fc FieldContext) string

func (p DependentPrompt) Text(fc FieldContext) string { return p(fc) }

// Field is one question of a screen.
type Field struct {
	ID     string
	Screen domain.Screen
	Label  string
	Prompt Prompt

	// Optional fields may be left empty.
	Optional bool

	// Deferred fields are stored as typed by SetField; their format is checked
	// when the screen is left. The conversational walk still checks them per answer.
	Deferred bool

	// Choices, when non-nil and non-empty, turns the field into a choice.
	Choices func(fc FieldContext) []choice

	// Skip hides the field for the current draft.
	Skip func(fc FieldContext) bool

	// Validate checks raw input. Choice fields are checked against Choices first.
	Validate func(input string, fc FieldContext) error

	// Apply stores validated input into the draft.
	Apply func(input string, d *domain.Draft, fc FieldContext)

	// Value reports the stored value, used to keep answers on empty input.
	Value func(d domain.Draft) string
}

func (f Field) skipped(fc FieldContext) bool {
	return f.Skip != nil && f.Skip(fc)
}

func (f Field) choices(fc FieldContext) []choice {
	if f.Choices == nil {
		return nil
	}
	return f.Choices(fc)
}

func (f Field) inputType(fc FieldContext) domain.InputType {
	if len(f.choices(fc)) > 0 {
		return domain.InputChoice
	}
	return domain.InputText
}

// check validates input for the field. When skipFormat is set only choice
// resolution runs, which is how deferred fields are stored.
func (f Field) check(input string, fc FieldContext, skipFormat bool) (string, error) {
	if cs := f.choices(fc); len(cs) > 0 {
		c, ok := matchChoice(input, cs)
		if !ok {
			return "", fmt.Errorf("Lütfen listeden bir seçenek girin (1-%d)", len(cs))
		}
		input = c.Value
	}
	if f.Validate != nil && !(skipFormat && f.Deferred) {
		if err := f.Validate(input, fc); err != nil {
			return "", err
		}
	}
	return input, nil
}

func (f Field) required() string {
	return f.Label + " gerekli"
}

// screenFields lists the questions of each screen in order.
var screenFields = map[domain.Screen][]Field{
	domain.ScreenProduct: {categoryField},
	domain.ScreenSpecs: {
		subcategoryField,
		quantityField,
		sizeModeField,
		dimensionsField,
		usageField,
		notesField,
	},
	domain.ScreenContact: {
		contactField("name", "Ad Soyad", "Adınız soyadınız?", func(c *domain.Contact) *string { return &c.Name }),
		contactField("company", "Firma adı", "Firma adınız?", func(c *domain.Contact) *string { return &c.Company }),
		phoneField,
		contactField("email", "E-posta", "E-posta adresiniz?", func(c *domain.Contact) *string { return &c.Email }),
		contactField("city", "Teslimat şehri", "Teslimat hangi şehre olacak?", func(c *domain.Contact) *string { return &c.City }),
		timelineField,
	},
	domain.ScreenConfirm: {channelField},
}

// Fields returns the questions of a screen.
func Fields(screen domain.Screen) []Field {
	return screenFields[screen]
}

func lookupField(screen domain.Screen, id string) (Field, bool) {
	for _, f := range screenFields[screen] {
		if f.ID == id {
			return f, true
		}
	}
	return Field{}, false
}

var categoryField = Field{
	ID:     "category",
	Screen: domain.ScreenProduct,
	Label:  "Kategori",
	Prompt: StaticPrompt("Hangi ürünle ilgileniyorsunuz? Listeden seçin ya da ne aradığınızı yazın."),
	Value:  func(d domain.Draft) string { return d.Product.Category },
	// Category choices come from the catalog, see Engine.categoryChoices.
	Apply: func(in string, d *domain.Draft, _ FieldContext) { d.SelectCategory(in) },
}

var subcategoryField = Field{
	ID:     "subcategory",
	Screen: domain.ScreenSpecs,
	Label:  "Ürün tipi",
	Prompt: DependentPrompt(func(fc FieldContext) string {
		return fmt.Sprintf("Hangi %s tipi?", catalog.Fold(fc.Category.Name))
	}),
	Choices: func(fc FieldContext) []choice { return plainChoices(fc.Category.Subcategories) },
	Skip:    func(fc FieldContext) bool { return len(fc.Category.Subcategories) == 0 },
	Apply:   func(in string, d *domain.Draft, _ FieldContext) { d.Product.Subcategory = in },
	Value:   func(d domain.Draft) string { return d.Product.Subcategory },
}

var quantityField = Field{
	ID:     "quantity",
	Screen: domain.ScreenSpecs,
	Label:  "Miktar",
	Prompt: DependentPrompt(func(fc FieldContext) string {
		return fmt.Sprintf("Kaç adet? (Min. sipariş: %d adet)", fc.MinQuantity)
	}),
	Validate: func(in string, _ FieldContext) error {
		_, err := ParseQuantity(in)
		return err
	},
	Apply: func(in string, d *domain.Draft, fc FieldContext) {
		n, _ := ParseQuantity(in)
		d.Product.Quantity = n
		d.Product.BelowMinimum = n < fc.MinQuantity
	},
	Value: func(d domain.Draft) string {
		if d.Product.Quantity == 0 {
			return ""
		}
		return strconv.Itoa(d.Product.Quantity)
	},
}

var sizeModeField = Field{
	ID:      "size_mode",
	Screen:  domain.ScreenSpecs,
	Label:   "Ölçü tipi",
	Prompt:  StaticPrompt("Standart ölçü mü, özel ölçü mü?"),
	Choices: func(FieldContext) []choice { return sizeModeChoices },
	Skip:    func(fc FieldContext) bool { return !fc.Category.HasStandardSizes() },
	Apply: func(in string, d *domain.Draft, _ FieldContext) {
		mode := domain.SizeMode(in)
		if d.Product.SizeMode != mode {
			d.SetSizeMode(mode)
		}
	},
	Value: func(d domain.Draft) string { return string(d.Product.SizeMode) },
}

// standardSizing reports whether dimensions are picked from the catalog list.
func standardSizing(fc FieldContext) bool {
	return fc.Category.HasStandardSizes() && fc.Draft.Product.SizeMode == domain.SizeStandard
}

var dimensionsField = Field{
	ID:       "dimensions",
	Screen:   domain.ScreenSpecs,
	Label:    "Ölçüler",
	Optional: true,
	Prompt: DependentPrompt(func(fc FieldContext) string {
		if standardSizing(fc) {
			return fmt.Sprintf("Hangi standart %s ölçüsü?", catalog.Fold(fc.Category.Name))
		}
		return "Ölçüleri yazın (Uzunluk × Genişlik × Yükseklik, örn. 120×80×15 cm)."
	}),
	Choices: func(fc FieldContext) []choice {
		if standardSizing(fc) {
			return plainChoices(fc.Category.StandardSizes)
		}
		return nil
	},
	Apply: func(in string, d *domain.Draft, fc FieldContext) {
		if fc.Category.HasStandardSizes() && d.Product.SizeMode == "" {
			d.Product.SizeMode = domain.SizeCustom
		}
		d.Product.Dimensions = strings.TrimSpace(in)
	},
	Value: func(d domain.Draft) string { return d.Product.Dimensions },
}

var usageField = Field{
	ID:      "usage",
	Screen:  domain.ScreenSpecs,
	Label:   "Kullanım amacı",
	Prompt:  StaticPrompt("Kullanım amacı nedir? İhracat için ISPM-15 ısıl işlem uygulanır."),
	Choices: func(FieldContext) []choice { return usageChoices },
	Skip:    func(fc FieldContext) bool { return !fc.Category.RequiresExport },
	Apply:   func(in string, d *domain.Draft, _ FieldContext) { d.Product.Usage = domain.Usage(in) },
	Value:   func(d domain.Draft) string { return string(d.Product.Usage) },
}

var notesField = Field{
	ID:       "notes",
	Screen:   domain.ScreenSpecs,
	Label:    "Notlar",
	Optional: true,
	Prompt:   StaticPrompt("Eklemek istediğiniz bir not var mı? (yoksa \"yok\" yazın)"),
	Apply:    func(in string, d *domain.Draft, _ FieldContext) { d.Product.Notes = NormalizeNotes(in) },
	Value:    func(d domain.Draft) string { return d.Product.Notes },
}

func contactField(id, label, prompt string, slot func(*domain.Contact) *string) Field {
	return Field{
		ID:       id,
		Screen:   domain.ScreenContact,
		Label:    label,
		Prompt:   StaticPrompt(prompt),
		Deferred: true,
		Validate: func(in string, _ FieldContext) error {
			var c domain.Contact
			*slot(&c) = strings.TrimSpace(in)
			return contactRule(id).check(c)
		},
		Apply: func(in string, d *domain.Draft, _ FieldContext) { *slot(&d.Contact) = strings.TrimSpace(in) },
		Value: func(d domain.Draft) string { return *slot(&d.Contact) },
	}
}

var phoneField = func() Field {
	f := contactField("phone", "Telefon", "Telefon numaranız?", func(c *domain.Contact) *string { return &c.Phone })
	f.Apply = func(in string, d *domain.Draft, _ FieldContext) { d.Contact.Phone = NormalizePhone(in) }
	return f
}()

var timelineField = Field{
	ID:       "timeline",
	Screen:   domain.ScreenContact,
	Label:    "Teslimat zamanı",
	Optional: true,
	Prompt:   StaticPrompt("Ne zaman ihtiyacınız var? Acil (bu hafta), Normal (2-3 hafta) veya Esnek."),
	Choices:  func(FieldContext) []choice { return timelineChoices },
	Apply:    func(in string, d *domain.Draft, _ FieldContext) { d.Timeline = domain.Timeline(in) },
	Value:    func(d domain.Draft) string { return string(d.Timeline) },
}

var channelField = Field{
	ID:      "channel",
	Screen:  domain.ScreenConfirm,
	Label:   "Gönderim şekli",
	Prompt:  StaticPrompt("Nasıl göndermek istersiniz? Düzeltmek için \"düzenle\" yazın."),
	Choices: func(FieldContext) []choice { return channelChoices },
	Apply:   func(in string, d *domain.Draft, _ FieldContext) { d.Channel = domain.Channel(in) },
	Value:   func(d domain.Draft) string { return string(d.Channel) },
}
