package sanitizer

import (
	"regexp"
	"strings"
)

type Strategy func(string) string

type Pipeline []Strategy

func (p Pipeline) Apply(s string) string {
	for _, fn := range p {
		s = fn(s)
	}
	return s
}

var (
	reKeepLettersOnly = regexp.MustCompile(`[^\p{L}]+`)
	reValidPhone      = regexp.MustCompile(`^\+[1-9]\d{7,14}$`)
	rePhoneSeparators = regexp.MustCompile(`[\s\-().]`)
)

func trimAndLower(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// SanitizeCity lowercases and strips everything but letters so lookups
// match regardless of spacing or punctuation.
func SanitizeCity(input string) string {
	p := Pipeline{
		trimAndLower,
		func(s string) string { return reKeepLettersOnly.ReplaceAllString(s, "") },
	}
	return p.Apply(input)
}

// SanitizeServiceName normalizes an add-on name for matching against a
// listing's offered services.
func SanitizeServiceName(input string) string {
	return trimAndLower(TrimAndNormalize(input))
}

// SanitizePhone strips common separators and returns the number only if
// the result is valid E.164; anything else comes back empty.
func SanitizePhone(phone string) string {
	phone = rePhoneSeparators.ReplaceAllString(strings.TrimSpace(phone), "")
	if phone == "" {
		return ""
	}
	if !reValidPhone.MatchString(phone) {
		return ""
	}
	return phone
}
