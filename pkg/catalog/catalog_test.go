package catalog

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/aretw0/orca/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	c := Default()

	assert.Equal(t, []string{"palet", "kasa", "kereste", "kontrplak", "lata", "ikinciel"}, c.Keys())

	pallet := c.MustGet(KeyPallet)
	assert.True(t, pallet.RequiresExport)
	assert.True(t, pallet.HasStandardSizes())
	assert.Len(t, pallet.StandardSizes, 7)
	assert.Equal(t, "🪵 Palet", pallet.Label())

	lumber := c.MustGet(KeyLumber)
	assert.False(t, lumber.RequiresExport)
	assert.False(t, lumber.HasStandardSizes())

	used := c.MustGet(KeyUsedPallet)
	assert.False(t, used.RequiresExport)
	assert.Equal(t, []string{"80×120 cm", "100×120 cm"}, used.StandardSizes)
}

func TestCatalog_IsImmutable(t *testing.T) {
	c := Default()
	cat, _ := c.Get(KeyPallet)
	cat.Subcategories[0] = "changed"

	again, _ := c.Get(KeyPallet)
	assert.Equal(t, "Ahşap Palet", again.Subcategories[0])
}

func TestCatalog_Lookup(t *testing.T) {
	c := Default()

	tests := []struct {
		input string
		want  string
		ok    bool
	}{
		{"1", KeyPallet, true},
		{"6", KeyUsedPallet, true},
		{"7", "", false},
		{"palet", KeyPallet, true},
		{"  KASA ", KeyCrate, true},
		{"2. el palet", KeyUsedPallet, true},
		{"🌲 Kereste", KeyLumber, true},
		{"KONTRPLAK", KeyPlywood, true},
		{"İKİNCİEL", KeyUsedPallet, true},
		{"masa", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			cat, ok := c.Lookup(tt.input)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, cat.Key)
		})
	}
}

func TestFold_TurkishCasing(t *testing.T) {
	assert.Equal(t, "ihracat", Fold(" İHRACAT "))
	assert.Equal(t, "işik", Fold("IŞIK"))
	assert.Equal(t, Fold("çıkış"), Fold("ÇIKIŞ"))
	assert.Equal(t, "ispm", Fold("ISPM"))
}

func TestNew_Validation(t *testing.T) {
	_, err := New(nil)
	assert.Error(t, err)

	_, err = New([]domain.Category{{Key: "a", Name: "A"}, {Key: "a", Name: "B"}})
	assert.ErrorContains(t, err, "duplicate")

	_, err = New([]domain.Category{{Name: "A"}})
	assert.ErrorContains(t, err, "no key")
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()

	t.Run("yaml", func(t *testing.T) {
		path := filepath.Join(dir, "catalog.yaml")
		content := `categories:
  - key: palet
    name: Palet
    icon: "🪵"
    subcategories: [Ahşap Palet]
    standard_sizes: ["80×120 cm"]
    requires_export: true
  - key: lata
    name: Lata
    subcategories: [Ahşap Lata]
`
		require.NoError(t, os.WriteFile(path, []byte(content), 0644))

		c, err := LoadFile(path)
		require.NoError(t, err)
		assert.Equal(t, []string{"palet", "lata"}, c.Keys())
		assert.True(t, c.MustGet("palet").RequiresExport)
	})

	t.Run("json", func(t *testing.T) {
		path := filepath.Join(dir, "catalog.json")
		content := `{"categories":[{"key":"kasa","name":"Kasa","subcategories":["OSB Kasa"],"requires_export":"true"}]}`
		require.NoError(t, os.WriteFile(path, []byte(content), 0644))

		c, err := LoadFile(path)
		require.NoError(t, err)
		assert.True(t, c.MustGet("kasa").RequiresExport, "weakly typed booleans are accepted")
	})

	t.Run("unknown keys are rejected", func(t *testing.T) {
		path := filepath.Join(dir, "typo.yaml")
		content := "categories:\n  - key: palet\n    name: Palet\n    subcategory: [x]\n"
		require.NoError(t, os.WriteFile(path, []byte(content), 0644))

		_, err := LoadFile(path)
		assert.ErrorContains(t, err, "subcategory")
	})
}

func TestLoad_EmptyPathUsesDefault(t *testing.T) {
	c, err := Load(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, 6, c.Len())
}
