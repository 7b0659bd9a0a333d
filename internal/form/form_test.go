package form_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/strictdev/contact-relay/internal/form"
)

func TestValidateFieldName(t *testing.T) {
	cases := []struct {
		name    string
		value   string
		wantErr string
	}{
		{"Empty", "", form.MsgRequired},
		{"OnlyWhitespace", "   \t ", form.MsgRequired},
		{"SingleRune", "M", form.MsgNameShort},
		{"SingleRunePadded", "  M  ", form.MsgNameShort},
		{"TwoRunes", "Ma", ""},
		{"FullName", "Maria Silva", ""},
		{"Multibyte", "Zé", ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			res := form.ValidateField(form.FieldName, tc.value)
			if tc.wantErr == "" {
				assert.True(t, res.Valid)
				assert.Empty(t, res.Error)
			} else {
				assert.False(t, res.Valid)
				assert.Equal(t, tc.wantErr, res.Error)
			}
		})
	}
}

func TestValidateFieldEmail(t *testing.T) {
	valid := []string{
		"maria@example.com",
		"a@b.co",
		"first.last+tag@sub.domain.pt",
	}
	invalid := []string{
		"",
		"   ",
		"plainaddress",
		"@no-local.com",
		"no-domain@",
		"no-tld@domain",
		"one@letter.t",
		"spaces in@local.com",
		"two@@ats.com",
		"digits@tld.12",
	}

	for _, v := range valid {
		res := form.ValidateField(form.FieldEmail, v)
		assert.True(t, res.Valid, "expected %q to be valid", v)
	}
	for _, v := range invalid {
		res := form.ValidateField(form.FieldEmail, v)
		assert.False(t, res.Valid, "expected %q to be invalid", v)
		assert.NotEmpty(t, res.Error, "invalid field must carry a message: %q", v)
	}
}

func TestValidateFieldRequirements(t *testing.T) {
	res := form.ValidateField(form.FieldRequirements, "hi")
	assert.False(t, res.Valid)
	assert.Equal(t, form.MsgRequirementsShort, res.Error)

	res = form.ValidateField(form.FieldRequirements, "")
	assert.Equal(t, form.MsgRequired, res.Error)

	res = form.ValidateField(form.FieldRequirements, "Preciso de um novo website")
	assert.True(t, res.Valid)
}

func TestValidateFieldUnknownIsOptional(t *testing.T) {
	for _, value := range []string{"", "Acme", strings.Repeat("x", 10_000)} {
		res := form.ValidateField(form.FieldCompany, value)
		assert.True(t, res.Valid)
	}
}

func TestValidateForm(t *testing.T) {
	p := form.Payload{
		Name:         "Maria Silva",
		Email:        "maria@example.com",
		Company:      "Acme",
		Requirements: "Preciso de um novo website para a minha empresa",
	}

	assert.Empty(t, form.ValidateForm(p, false))

	t.Run("TokenRequired", func(t *testing.T) {
		errs := form.ValidateForm(p, true)
		require.Len(t, errs, 1)
		assert.Equal(t, form.MsgTurnstile, errs[form.FieldTurnstile])

		withToken := p
		withToken.Token = "tok-123"
		assert.Empty(t, form.ValidateForm(withToken, true))
	})

	t.Run("CollectsEveryFailure", func(t *testing.T) {
		errs := form.ValidateForm(form.Payload{Name: "x", Email: "nope", Requirements: "hi"}, false)
		assert.Len(t, errs, 3)

		field, msg := form.FirstError(errs)
		assert.Equal(t, form.FieldName, field)
		assert.Equal(t, form.MsgNameShort, msg)
	})
}

func TestNormalizeIdempotent(t *testing.T) {
	p := form.Payload{
		Name:         "  Maria Silva  ",
		Email:        " maria@example.com ",
		Company:      strings.Repeat("A", 300),
		Requirements: "  " + strings.Repeat("descrição longa ", 400),
		Honeypot:     " ",
		Token:        " tok ",
	}

	once := form.Normalize(p)
	twice := form.Normalize(once)

	assert.Equal(t, once, twice)
	assert.Equal(t, "Maria Silva", once.Name)
	assert.Empty(t, once.Honeypot)
	assert.LessOrEqual(t, len([]rune(once.Company)), form.MaxCompanyLen)
	assert.LessOrEqual(t, len([]rune(once.Requirements)), form.MaxRequirementsLen)
}

func TestNormalizeCapWithTrailingSpace(t *testing.T) {
	// A cap that lands on whitespace must not leave a trailing space behind.
	p := form.Payload{Name: strings.Repeat("ab ", 40)}
	once := form.Normalize(p)
	assert.Equal(t, once, form.Normalize(once))
	assert.Equal(t, strings.TrimSpace(once.Name), once.Name)
}
