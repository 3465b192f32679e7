package redact

import (
	"fmt"
	"strings"
	"unicode"
)

// MaskChar replaces every hidden character.
const MaskChar = '*'

// DefaultKeepDigits is the number of trailing positions left visible by
// the number masker when no explicit count is given.
const DefaultKeepDigits = 3

// Masker applies content-aware masking.
type Masker interface {
	// Mask applies masking to the value. It returns an error wrapping
	// ErrUnmaskable when the value does not have the expected shape.
	Mask(value string) (string, error)
}

// MaskName keeps at most the first and last character of s.
// Strings of length 0 or 1 carry nothing to hide and are returned unchanged.
func MaskName(s string) string {
	r := []rune(s)
	switch {
	case len(r) > 2:
		return string(r[0]) + strings.Repeat(string(MaskChar), len(r)-2) + string(r[len(r)-1])
	case len(r) == 2:
		return string(r[0]) + string(MaskChar)
	default:
		return s
	}
}

// MaskEmail masks the local part of an address with MaskName and keeps the
// domain. The split happens on the first "@"; anything after it, further
// "@" included, is kept as the domain. ok is false when there is no "@".
func MaskEmail(s string) (string, bool) {
	local, domain, found := strings.Cut(s, "@")
	if !found {
		return "", false
	}
	return MaskName(local) + "@" + domain, true
}

// MaskNumber replaces every digit with MaskChar except those in the last
// keep positions. Non-digit characters stay where they are.
func MaskNumber(s string, keep int) string {
	if keep < 0 {
		keep = 0
	}
	r := []rune(s)
	for i := 0; i < len(r)-keep; i++ {
		if unicode.IsDigit(r[i]) {
			r[i] = MaskChar
		}
	}
	return string(r)
}

// MaskWebsite masks a URL of the form scheme://domain/path/.../file.
// Every domain label but the last goes through MaskName, interior path
// segments are fully masked, and the final segment is kept. ok is false when
// s has no "//".
func MaskWebsite(s string) (string, bool) {
	scheme, rest, found := strings.Cut(s, "//")
	if !found {
		return "", false
	}

	segments := strings.Split(rest, "/")
	for i := range segments {
		switch {
		case i == 0:
			labels := strings.Split(segments[i], ".")
			for j := 0; j < len(labels)-1; j++ {
				labels[j] = MaskName(labels[j])
			}
			segments[i] = strings.Join(labels, ".")
		case i != len(segments)-1:
			segments[i] = strings.Repeat(string(MaskChar), len([]rune(segments[i])))
		}
	}

	return scheme + "//" + strings.Join(segments, "/"), true
}

// nameMasker masks names: Jennifer -> J******r
type nameMasker struct{}

// NameMasker returns a masker for personal names and identifiers.
func NameMasker() Masker {
	return &nameMasker{}
}

func (m *nameMasker) Mask(value string) (string, error) {
	return MaskName(value), nil
}

// emailMasker masks email format: jennifer@example.com -> j******r@example.com
type emailMasker struct{}

// EmailMasker returns a masker for email addresses.
func EmailMasker() Masker {
	return &emailMasker{}
}

func (m *emailMasker) Mask(value string) (string, error) {
	masked, ok := MaskEmail(value)
	if !ok {
		return "", fmt.Errorf("%w: no @ in email", ErrUnmaskable)
	}
	return masked, nil
}

// numberMasker masks digits: 0191-123-4567 -> ****-***-*567
type numberMasker struct {
	keep int
}

// NumberMasker returns a masker that hides all digits outside the last keep
// positions.
func NumberMasker(keep int) Masker {
	return &numberMasker{keep: keep}
}

func (m *numberMasker) Mask(value string) (string, error) {
	return MaskNumber(value, m.keep), nil
}

// websiteMasker masks URLs: https://randomuser.me/a/b.jpg -> https://r********r.me/*/b.jpg
type websiteMasker struct{}

// WebsiteMasker returns a masker for URLs.
func WebsiteMasker() Masker {
	return &websiteMasker{}
}

func (m *websiteMasker) Mask(value string) (string, error) {
	masked, ok := MaskWebsite(value)
	if !ok {
		return "", fmt.Errorf("%w: no // in url", ErrUnmaskable)
	}
	return masked, nil
}

// builtinMaskers returns the default masker registry.
// Number maskers are parameterized by rule and built on demand.
func builtinMaskers() map[RuleKind]Masker {
	return map[RuleKind]Masker{
		RuleName:    NameMasker(),
		RuleEmail:   EmailMasker(),
		RuleWebsite: WebsiteMasker(),
	}
}
