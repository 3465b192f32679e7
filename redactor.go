package redact

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"sync"
	"time"
)

// DateLayout is the canonical form produced by RuleDate.
const DateLayout = "2006-01-02"

// dateLayouts are tried in order when parsing a date cell.
var dateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05.999999999",
	DateLayout,
}

// Redactor applies a fixed set of column rules to a Table.
//
// Redactors are safe for concurrent use. SetMasker may be called at any time
// to replace a builtin masker.
type Redactor struct {
	rules []ColumnRule

	mu      sync.RWMutex
	maskers map[RuleKind]Masker
}

// NewRedactor creates a Redactor for the given rules.
// Rules are applied in order; a column may carry at most one rule.
func NewRedactor(rules []ColumnRule) (*Redactor, error) {
	seen := make(map[string]bool, len(rules))
	for _, cr := range rules {
		if !IsValidRuleKind(cr.Rule.Kind) {
			return nil, newConfigError(ErrInvalidRule, cr.Column, cr.Rule)
		}
		if cr.Rule.Kind == RuleNumber && cr.Rule.Keep < 0 {
			return nil, newConfigError(ErrInvalidRule, cr.Column, cr.Rule)
		}
		if seen[cr.Column] {
			return nil, fmt.Errorf("%w: column %q has more than one rule", ErrInvalidRule, cr.Column)
		}
		seen[cr.Column] = true
	}

	return &Redactor{
		rules:   append([]ColumnRule(nil), rules...),
		maskers: builtinMaskers(),
	}, nil
}

// DefaultRedactor returns a Redactor for the rules declared on Record.
func DefaultRedactor() (*Redactor, error) {
	plan, err := DefaultPlan()
	if err != nil {
		return nil, err
	}
	return NewRedactor(plan.Rules())
}

// SetMasker registers a masker for the given rule kind.
// Returns the redactor for chaining. Safe for concurrent use.
func (r *Redactor) SetMasker(kind RuleKind, m Masker) *Redactor {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.maskers[kind] = m
	return r
}

// Rules returns the column rules in application order.
func (r *Redactor) Rules() []ColumnRule {
	return append([]ColumnRule(nil), r.rules...)
}

// Report counts cell outcomes per redacted column.
type Report struct {
	Rows    int
	Columns []ColumnReport
}

// ColumnReport counts the outcomes of one column.
type ColumnReport struct {
	Column string
	Rule   Rule

	// Masked cells held a value and were transformed.
	Masked int
	// Unmaskable cells held a value of the wrong shape and are now null.
	Unmaskable int
	// Absent cells were null on input.
	Absent int
}

// Totals sums the outcomes across columns.
func (r Report) Totals() (masked, unmaskable, absent int) {
	for _, c := range r.Columns {
		masked += c.Masked
		unmaskable += c.Unmaskable
		absent += c.Absent
	}
	return masked, unmaskable, absent
}

// Column returns the report for the named column.
func (r Report) Column(name string) (ColumnReport, bool) {
	for _, c := range r.Columns {
		if c.Column == name {
			return c, true
		}
	}
	return ColumnReport{}, false
}

// Redact returns a new Table in which every ruled column has been replaced.
// Other columns pass through unchanged and the input table is not modified.
//
// A missing or mistyped column is a ConfigError and nothing is transformed.
// A numeric or date cell that cannot be parsed is a TransformError.
// A nil table is a ConfigError.
func (r *Redactor) Redact(ctx context.Context, t *Table) (*Table, Report, error) {
	if t == nil {
		return nil, Report{}, &ConfigError{Err: ErrInvalidTable}
	}
	start := time.Now()
	emitRedactStart(ctx, t.NumRows(), len(r.rules))

	report := Report{Rows: t.NumRows()}
	var retErr error
	defer func() {
		masked, unmaskable, absent := report.Totals()
		emitRedactComplete(ctx, report.Rows, time.Since(start), masked, unmaskable, absent, retErr)
	}()

	if err := r.validate(t); err != nil {
		retErr = err
		return nil, Report{}, retErr
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	// Clone to avoid mutating the input
	out := t.Clone()
	for _, cr := range r.rules {
		col, _ := out.Column(cr.Column)
		replaced, rep, err := r.apply(col, cr)
		if err != nil {
			retErr = err
			return nil, Report{}, retErr
		}
		if err := out.Replace(replaced); err != nil {
			retErr = err
			return nil, Report{}, retErr
		}
		report.Columns = append(report.Columns, rep)
	}

	return out, report, nil
}

// validate checks the schema contract before any column is touched.
func (r *Redactor) validate(t *Table) error {
	for _, cr := range r.rules {
		col, ok := t.Column(cr.Column)
		if !ok {
			return newConfigError(ErrMissingColumn, cr.Column, cr.Rule)
		}
		if !cr.Rule.accepts(col.Type) {
			return newConfigError(ErrColumnType, cr.Column, cr.Rule)
		}
	}
	return nil
}

// apply transforms one column according to its rule.
func (r *Redactor) apply(col Column, cr ColumnRule) (Column, ColumnReport, error) {
	rep := ColumnReport{Column: cr.Column, Rule: cr.Rule}
	out := Column{
		Name:   col.Name,
		Type:   cr.Rule.output(),
		Values: make([]Value, len(col.Values)),
	}

	var masker Masker
	switch cr.Rule.Kind {
	case RuleRound, RuleDate:
	case RuleNumber:
		masker = r.maskers[RuleNumber]
		if masker == nil {
			masker = NumberMasker(cr.Rule.Keep)
		}
	default:
		masker = r.maskers[cr.Rule.Kind]
		if masker == nil {
			return Column{}, rep, newConfigError(ErrInvalidRule, cr.Column, cr.Rule)
		}
	}

	for i, v := range col.Values {
		text, present := v.Text()
		if !present {
			out.Values[i] = NullValue(out.Type)
			rep.Absent++
			continue
		}

		switch cr.Rule.Kind {
		case RuleRound:
			f, err := coarsen(v)
			if err != nil {
				return Column{}, rep, newTransformError(cr.Column, i, cr.Rule, err)
			}
			out.Values[i] = FloatValue(f)
		case RuleDate:
			d, err := normalizeDate(text)
			if err != nil {
				return Column{}, rep, newTransformError(cr.Column, i, cr.Rule, err)
			}
			out.Values[i] = StringValue(d)
		default:
			masked, err := masker.Mask(text)
			if errors.Is(err, ErrUnmaskable) {
				out.Values[i] = NullValue(out.Type)
				rep.Unmaskable++
				continue
			}
			if err != nil {
				return Column{}, rep, newTransformError(cr.Column, i, cr.Rule, err)
			}
			out.Values[i] = StringValue(masked)
		}
		rep.Masked++
	}

	return out, rep, nil
}

// coarsen rounds a coordinate half to even.
func coarsen(v Value) (float64, error) {
	var f float64
	switch v.Type() {
	case TypeFloat64:
		f = v.Float()
	case TypeInt64:
		f = float64(v.Int())
	default:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(v.Str()), 64)
		if err != nil {
			return 0, err
		}
		f = parsed
	}
	return math.RoundToEven(f), nil
}

// normalizeDate reformats a timestamp as YYYY-MM-DD in its own offset.
func normalizeDate(s string) (string, error) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format(DateLayout), nil
		}
	}
	return "", fmt.Errorf("unrecognized date %q", s)
}
