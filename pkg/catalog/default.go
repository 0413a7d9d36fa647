package catalog

import "github.com/aretw0/orca/pkg/domain"

// Built-in category keys.
const (
	KeyPallet     = "palet"
	KeyCrate      = "kasa"
	KeyLumber     = "kereste"
	KeyPlywood    = "kontrplak"
	KeyBatten     = "lata"
	KeyUsedPallet = "ikinciel"
)

// DefaultCategories is the ORCA product range.
func DefaultCategories() []domain.Category {
	return []domain.Category{
		{
			Key:           KeyPallet,
			Name:          "Palet",
			Icon:          "🪵",
			Subcategories: []string{"Ahşap Palet", "Kontrplak Palet"},
			StandardSizes: []string{
				"80×120 cm",
				"100×120 cm",
				"98×114 cm",
				"132×114 cm",
				"146×114 cm",
				"170×114 cm",
				"198×114 cm",
			},
			RequiresExport: true,
		},
		{
			Key:            KeyCrate,
			Name:           "Kasa",
			Icon:           "📦",
			Subcategories:  []string{"Ahşap Kasa", "Kontrplak Kasa", "OSB Kasa", "Hibrit Kasa"},
			RequiresExport: true,
		},
		{
			Key:           KeyLumber,
			Name:          "Kereste",
			Icon:          "🌲",
			Subcategories: []string{"İnşaatlık", "Doğramalık"},
		},
		{
			Key:           KeyPlywood,
			Name:          "Kontrplak",
			Icon:          "📋",
			Subcategories: []string{"Standart Levha", "Su Geçirmez", "Ebatlı"},
		},
		{
			Key:           KeyBatten,
			Name:          "Lata",
			Icon:          "🪚",
			Subcategories: []string{"Ahşap Lata", "Kontrplak Lata"},
		},
		{
			Key:           KeyUsedPallet,
			Name:          "2. El Palet",
			Icon:          "♻️",
			Subcategories: []string{"Ekonomik", "Tamir Görmüş"},
			StandardSizes: []string{"80×120 cm", "100×120 cm"},
		},
	}
}

// Default returns the built-in catalog.
func Default() *Catalog {
	c, err := New(DefaultCategories())
	if err != nil {
		panic(err)
	}
	return c
}
