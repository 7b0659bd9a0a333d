// Package form holds the canonical submission payload and field rules shared
// by the relay and by client-side gating. The server never trusts the client,
// so both halves run the exact same code.
package form

import (
	"regexp"
	"strings"
)

// User facing messages, kept byte-identical to what the site ships.
const (
	MsgRequired          = "Campo obrigatório"
	MsgNameShort         = "Nome muito curto"
	MsgEmailInvalid      = "Email inválido"
	MsgRequirementsShort = "Descrição muito curta (mín. 10 caracteres)"
	MsgTurnstile         = "Confirma que não és um robô."
)

const (
	FieldName         = "name"
	FieldEmail        = "email"
	FieldCompany      = "company"
	FieldRequirements = "requirements"
	FieldTurnstile    = "turnstile"
)

// Length caps applied by Normalize. Oversized input is truncated, not
// rejected.
const (
	MaxNameLen         = 80
	MaxCompanyLen      = 120
	MaxEmailLen        = 120
	MaxRequirementsLen = 5000
)

const MinRequirementsLen = 10

// local@domain.tld with a two-or-more letter TLD. Deliberately simple; the
// delivery provider performs its own address verification.
var emailRegex = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[A-Za-z]{2,}$`)

// Payload is one submission attempt. It is never persisted; it exists only
// for the duration of a single request.
type Payload struct {
	Name         string
	Email        string
	Company      string
	Requirements string
	Honeypot     string
	Token        string
}

// FieldResult reports the outcome of validating a single field. Exactly one
// of Error-nonempty / Valid holds.
type FieldResult struct {
	Error string
	Valid bool
}

// ValidateField applies the per-field rules. Unknown fields are optional and
// always valid. The function is total: any input maps to valid or invalid,
// it never panics.
func ValidateField(field, value string) FieldResult {
	trimmed := strings.TrimSpace(value)

	switch field {
	case FieldName:
		if trimmed == "" {
			return FieldResult{Error: MsgRequired}
		}
		if len([]rune(trimmed)) < 2 {
			return FieldResult{Error: MsgNameShort}
		}
	case FieldEmail:
		if trimmed == "" {
			return FieldResult{Error: MsgRequired}
		}
		if !emailRegex.MatchString(trimmed) {
			return FieldResult{Error: MsgEmailInvalid}
		}
	case FieldRequirements:
		if trimmed == "" {
			return FieldResult{Error: MsgRequired}
		}
		if len([]rune(trimmed)) < MinRequirementsLen {
			return FieldResult{Error: MsgRequirementsShort}
		}
	}

	return FieldResult{Valid: true}
}

// ValidateForm runs every field rule and collects failures keyed by field
// name. When verification is required and the payload carries no token, a
// turnstile entry is added so the caller can surface it like any other field
// error.
func ValidateForm(p Payload, verificationRequired bool) map[string]string {
	errs := make(map[string]string)

	for field, value := range map[string]string{
		FieldName:         p.Name,
		FieldEmail:        p.Email,
		FieldCompany:      p.Company,
		FieldRequirements: p.Requirements,
	} {
		if res := ValidateField(field, value); !res.Valid {
			errs[field] = res.Error
		}
	}

	if verificationRequired && strings.TrimSpace(p.Token) == "" {
		errs[FieldTurnstile] = MsgTurnstile
	}

	return errs
}

// FirstError returns a stable (name, email, requirements, turnstile) pick
// from a validation map so responses do not flap between fields.
func FirstError(errs map[string]string) (string, string) {
	for _, field := range []string{FieldName, FieldEmail, FieldRequirements, FieldTurnstile, FieldCompany} {
		if msg, ok := errs[field]; ok {
			return field, msg
		}
	}
	for field, msg := range errs {
		return field, msg
	}
	return "", ""
}

// Normalize trims every text field and caps lengths to bound payload size.
// Idempotent: normalizing an already-normalized payload returns it unchanged.
func Normalize(p Payload) Payload {
	return Payload{
		Name:         capRunes(strings.TrimSpace(p.Name), MaxNameLen),
		Email:        capRunes(strings.TrimSpace(p.Email), MaxEmailLen),
		Company:      capRunes(strings.TrimSpace(p.Company), MaxCompanyLen),
		Requirements: capRunes(strings.TrimSpace(p.Requirements), MaxRequirementsLen),
		Honeypot:     strings.TrimSpace(p.Honeypot),
		Token:        strings.TrimSpace(p.Token),
	}
}

func capRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	// Re-trim so truncation cannot leave trailing whitespace behind, which
	// would break idempotence.
	return strings.TrimSpace(string(runes[:n]))
}
