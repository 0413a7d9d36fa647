package runtime_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/aretw0/orca/internal/runtime"
	"github.com/aretw0/orca/pkg/domain"
)

func TestNormalizeNotes(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", ""},
		{"   ", ""},
		{"yok", domain.NotSpecified},
		{"YOK", domain.NotSpecified},
		{"Hayır", domain.NotSpecified},
		{"hayir", domain.NotSpecified},
		{" - ", domain.NotSpecified},
		{"N/A", domain.NotSpecified},
		{"gerek yok", domain.NotSpecified},
		{"Forklift girişi 4 yönlü olsun", "Forklift girişi 4 yönlü olsun"},
		{"  ısıl işlem şart  ", "ısıl işlem şart"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, runtime.NormalizeNotes(tt.in), "input %q", tt.in)
	}
}

func TestNormalizePhone(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"532 123 45 67", "05321234567"},
		{"0532 123 45 67", "05321234567"},
		{"+90 532 123 45 67", "05321234567"},
		{"90(532)1234567", "05321234567"},
		{"0224-482-2892", "02244822892"},
		{"12345", "12345"},
		{"  abc  ", "abc"},
	}
	for _, tt := range tests {
		got := runtime.NormalizePhone(tt.in)
		assert.Equal(t, tt.want, got, "input %q", tt.in)
		assert.Equal(t, got, runtime.NormalizePhone(got), "normalizing %q twice must not change it", tt.in)
	}
}

func TestValidPhone(t *testing.T) {
	assert.True(t, runtime.ValidPhone("0532 123 45 67"))
	assert.True(t, runtime.ValidPhone("+90 532 123 45 67"))
	assert.True(t, runtime.ValidPhone("5321234567"))
	assert.False(t, runtime.ValidPhone("12345"))
	assert.False(t, runtime.ValidPhone(""))
	assert.False(t, runtime.ValidPhone("0090 532 123 45 67 8"))
}

func TestParseQuantity(t *testing.T) {
	valid := map[string]int{
		"200":      200,
		" 30 ":     30,
		"1 000":    1000,
		"50 adet":  50,
		"120 ADET": 120,
		"1":        1,
	}
	for in, want := range valid {
		n, err := runtime.ParseQuantity(in)
		if assert.NoError(t, err, "input %q", in) {
			assert.Equal(t, want, n, "input %q", in)
		}
	}

	for _, in := range []string{"", "abc", "on iki", "12.5", "adet"} {
		_, err := runtime.ParseQuantity(in)
		assert.EqualError(t, err, "Lütfen geçerli bir adet girin (sadece rakam)", "input %q", in)
	}
	for _, in := range []string{"0", "-5"} {
		_, err := runtime.ParseQuantity(in)
		assert.EqualError(t, err, "Miktar en az 1 adet olmalı", "input %q", in)
	}
}

func TestValidateContact_CollectsAllFailures(t *testing.T) {
	errs := runtime.ValidateContact(domain.Contact{})
	assert.Equal(t, []string{
		"Ad Soyad gerekli",
		"Firma adı gerekli",
		"Geçerli telefon numarası girin",
		"Geçerli e-posta adresi girin",
		"Teslimat şehri gerekli",
	}, errs.Messages())

	errs = runtime.ValidateContact(domain.Contact{
		Name:    "Ö",
		Company: "Yılmaz Lojistik",
		Phone:   "0532 123 45 67",
		Email:   "ayse@@example",
		City:    "Bursa",
	})
	if assert.Len(t, errs, 2) {
		assert.Equal(t, "name", errs[0].Field)
		assert.Equal(t, "email", errs[1].Field)
	}

	assert.Nil(t, runtime.ValidateContact(validContact()))
}

func TestValidateContact_CountsRunes(t *testing.T) {
	// Two Turkish letters are four bytes but still a valid two-letter city.
	c := validContact()
	c.City = "Üş"
	assert.Nil(t, runtime.ValidateContact(c))
}

func TestNewOrderID(t *testing.T) {
	at := mustTime(t, "2026-03-14T10:00:00Z")
	for range 50 {
		id := runtime.NewOrderID(at)
		assert.Regexp(t, `^ORC-2026-\d{4}$`, id)
	}
}
