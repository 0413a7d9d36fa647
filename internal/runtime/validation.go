package runtime

import (
	"errors"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/aretw0/orca/pkg/domain"
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// rule is one contact requirement.
type rule struct {
	field   string
	message string
	ok      func(domain.Contact) bool
}

func (r rule) check(c domain.Contact) error {
	if r.ok(c) {
		return nil
	}
	return errors.New(r.message)
}

func minLength(n int, get func(domain.Contact) string) func(domain.Contact) bool {
	return func(c domain.Contact) bool {
		return utf8.RuneCountInString(strings.TrimSpace(get(c))) >= n
	}
}

// contactRules run in display order so messages read top to bottom.
var contactRules = []rule{
	{"name", "Ad Soyad gerekli", minLength(2, func(c domain.Contact) string { return c.Name })},
	{"company", "Firma adı gerekli", minLength(2, func(c domain.Contact) string { return c.Company })},
	{"phone", "Geçerli telefon numarası girin", func(c domain.Contact) bool { return ValidPhone(c.Phone) }},
	{"email", "Geçerli e-posta adresi girin", func(c domain.Contact) bool { return emailPattern.MatchString(strings.TrimSpace(c.Email)) }},
	{"city", "Teslimat şehri gerekli", minLength(2, func(c domain.Contact) string { return c.City })},
}

func contactRule(field string) rule {
	for _, r := range contactRules {
		if r.field == field {
			return r
		}
	}
	return rule{field: field, ok: func(domain.Contact) bool { return true }}
}

// ValidPhone reports whether the number has 10 or 11 digits once normalized.
func ValidPhone(phone string) bool {
	n := len(onlyDigits(NormalizePhone(phone)))
	return n == 10 || n == 11
}

// ValidateContact checks every contact field and returns all failures, or nil.
func ValidateContact(c domain.Contact) domain.ValidationErrors {
	var errs domain.ValidationErrors
	for _, r := range contactRules {
		if err := r.check(c); err != nil {
			errs = append(errs, domain.ValidationError{Field: r.field, Message: err.Error()})
		}
	}
	return errs
}
