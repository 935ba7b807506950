// Package message renders the text sent to a customer after a prize is revealed.
package message

import (
	"regexp"
	"strconv"
	"strings"
)

// Template tokens.
const (
	TokenPrize    = "{premio}"
	TokenValidity = "{validade}"
	TokenName     = "{nome}"
	TokenWhatsApp = "{whatsapp}"
)

// DefaultTemplate is used for prizes that carry no message of their own.
const DefaultTemplate = "Parabéns! Você ganhou {premio}! 🎉 Válido até {validade}. Apresente esta mensagem na loja."

// DefaultValidityDays applies when a campaign callout carries no number.
const DefaultValidityDays = 10

// defaults fill tokens that have no registered value.
var defaults = map[string]string{
	TokenPrize:    "Prêmio",
	TokenValidity: strconv.Itoa(DefaultValidityDays),
	TokenName:     "",
	TokenWhatsApp: "",
}

// tokenOrder keeps substitution deterministic.
var tokenOrder = []string{TokenPrize, TokenValidity, TokenName, TokenWhatsApp}

var firstNumber = regexp.MustCompile(`\d+`)

// Values holds the substitutions for one message.
type Values struct {
	Prize        string
	ValidityDays int
	Name         string
	WhatsApp     string
}

// Render replaces every occurrence of each token in tmpl. Empty values fall
// back to the token default.
func Render(tmpl string, v Values) string {
	vals := map[string]string{
		TokenPrize:    v.Prize,
		TokenName:     v.Name,
		TokenWhatsApp: v.WhatsApp,
	}
	if v.ValidityDays > 0 {
		vals[TokenValidity] = strconv.Itoa(v.ValidityDays)
	}
	return Substitute(tmpl, vals)
}

// Substitute replaces the known tokens in tmpl with vals, using the token
// defaults for missing or empty entries. Unknown tokens are left alone.
func Substitute(tmpl string, vals map[string]string) string {
	out := tmpl
	for _, tok := range tokenOrder {
		val := vals[tok]
		if val == "" {
			val = defaults[tok]
		}
		out = strings.ReplaceAll(out, tok, val)
	}
	return out
}

// TemplateOrDefault returns tmpl, or DefaultTemplate when tmpl is blank.
func TemplateOrDefault(tmpl string) string {
	if strings.TrimSpace(tmpl) == "" {
		return DefaultTemplate
	}
	return tmpl
}

// ValidityDays extracts the first integer in a campaign callout such as
// "Validade dos prêmios: 30 dias".
func ValidityDays(callout string) int {
	m := firstNumber.FindString(callout)
	if m == "" {
		return DefaultValidityDays
	}
	n, err := strconv.Atoi(m)
	if err != nil || n <= 0 {
		return DefaultValidityDays
	}
	return n
}

// Callout formats the campaign callout that carries the validity period.
func Callout(validityDays int) string {
	return "Validade dos prêmios: " + strconv.Itoa(validityDays) + " dias"
}
