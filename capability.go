package redact

import (
	"fmt"
	"strconv"
	"strings"
)

// RuleKind represents a supported redaction technique.
// Use these constants in struct tags: `redact:"email"`
type RuleKind string

const (
	// RuleName keeps the first and last character of a value.
	RuleName RuleKind = "name"

	// RuleEmail masks the local part of an address.
	RuleEmail RuleKind = "email"

	// RuleNumber masks digits outside a trailing window.
	RuleNumber RuleKind = "number"

	// RuleWebsite masks domain labels and interior path segments.
	RuleWebsite RuleKind = "website"

	// RuleRound coarsens a coordinate to the nearest integer.
	RuleRound RuleKind = "round"

	// RuleDate normalizes a timestamp to a YYYY-MM-DD string.
	RuleDate RuleKind = "date"
)

// validRuleKinds contains all valid rule kinds for tag validation.
var validRuleKinds = map[RuleKind]bool{
	RuleName:    true,
	RuleEmail:   true,
	RuleNumber:  true,
	RuleWebsite: true,
	RuleRound:   true,
	RuleDate:    true,
}

// IsValidRuleKind returns true if the kind is a known redaction technique.
func IsValidRuleKind(k RuleKind) bool {
	return validRuleKinds[k]
}

// Rule is a parsed redaction rule.
type Rule struct {
	Kind RuleKind

	// Keep is the trailing window left visible by RuleNumber.
	Keep int
}

// ParseRule parses a tag value such as "name" or "number:1".
func ParseRule(tag string) (Rule, error) {
	kind, arg, hasArg := strings.Cut(tag, ":")
	r := Rule{Kind: RuleKind(kind)}
	if !IsValidRuleKind(r.Kind) {
		return Rule{}, fmt.Errorf("%w: %q", ErrInvalidRule, tag)
	}

	if r.Kind != RuleNumber {
		if hasArg {
			return Rule{}, fmt.Errorf("%w: %q takes no argument", ErrInvalidRule, tag)
		}
		return r, nil
	}

	r.Keep = DefaultKeepDigits
	if hasArg {
		keep, err := strconv.Atoi(arg)
		if err != nil || keep < 0 {
			return Rule{}, fmt.Errorf("%w: %q needs a non-negative digit count", ErrInvalidRule, tag)
		}
		r.Keep = keep
	}
	return r, nil
}

// String returns the tag form of the rule.
func (r Rule) String() string {
	if r.Kind == RuleNumber && r.Keep != DefaultKeepDigits {
		return fmt.Sprintf("%s:%d", r.Kind, r.Keep)
	}
	return string(r.Kind)
}

// accepts reports whether the rule can read a column of type t.
func (r Rule) accepts(t Type) bool {
	switch r.Kind {
	case RuleNumber:
		return t == TypeString || t == TypeInt64
	case RuleRound:
		return true
	default:
		return t == TypeString
	}
}

// output returns the column type the rule produces.
func (r Rule) output() Type {
	if r.Kind == RuleRound {
		return TypeFloat64
	}
	return TypeString
}

// ColumnRule binds a rule to a named column.
type ColumnRule struct {
	Column string
	Rule   Rule
}
