package redact

import (
	"errors"
	"strconv"
	"strings"
	"testing"
)

func TestConfigError(t *testing.T) {
	tests := []struct {
		name     string
		err      *ConfigError
		contains []string
	}{
		{
			name:     "column and rule",
			err:      &ConfigError{Err: ErrMissingColumn, Column: "email", Rule: "email"},
			contains: []string{"missing column", `"email"`, "rule email"},
		},
		{
			name:     "column only",
			err:      &ConfigError{Err: ErrColumnType, Column: "latitude"},
			contains: []string{"column type mismatch", `"latitude"`},
		},
		{
			name:     "rule only",
			err:      &ConfigError{Err: ErrInvalidRule, Rule: "number:1"},
			contains: []string{"invalid rule", "number:1"},
		},
		{
			name:     "bare",
			err:      &ConfigError{Err: ErrInvalidRule},
			contains: []string{"invalid rule"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := tt.err.Error()
			for _, s := range tt.contains {
				if !strings.Contains(msg, s) {
					t.Errorf("Error() = %q, want it to contain %q", msg, s)
				}
			}
			if !errors.Is(tt.err, tt.err.Err) {
				t.Error("errors.Is() should match the wrapped sentinel")
			}
		})
	}
}

func TestNewConfigError(t *testing.T) {
	err := newConfigError(ErrMissingColumn, "street_number", Rule{Kind: RuleNumber, Keep: 1})

	var cfgErr *ConfigError
	if !errors.As(err, &cfgErr) {
		t.Fatalf("newConfigError() = %T, want *ConfigError", err)
	}
	if cfgErr.Column != "street_number" || cfgErr.Rule != "number:1" {
		t.Errorf("ConfigError = %+v", cfgErr)
	}
	if !errors.Is(err, ErrMissingColumn) {
		t.Error("errors.Is(err, ErrMissingColumn) = false")
	}
}

func TestTransformError(t *testing.T) {
	_, cause := strconv.ParseFloat("north", 64)
	err := newTransformError("latitude", 4, Rule{Kind: RuleRound}, cause)

	if !errors.Is(err, ErrTransform) {
		t.Error("errors.Is(err, ErrTransform) = false")
	}

	var te *TransformError
	if !errors.As(err, &te) {
		t.Fatalf("newTransformError() = %T, want *TransformError", err)
	}
	if te.Row != 4 || te.Column != "latitude" || te.Cause != cause {
		t.Errorf("TransformError = %+v", te)
	}

	msg := err.Error()
	for _, s := range []string{"round", "latitude", "row 4", "north"} {
		if !strings.Contains(msg, s) {
			t.Errorf("Error() = %q, want it to contain %q", msg, s)
		}
	}

	bare := &TransformError{Err: ErrTransform, Column: "dob_date", Row: 1, Rule: "date"}
	if got := bare.Error(); got != "date column dob_date row 1" {
		t.Errorf("Error() = %q", got)
	}
}

func TestCodecError(t *testing.T) {
	cause := errors.New("unexpected end of input")
	err := newCodecError("application/json", cause)

	if !errors.Is(err, ErrDecode) {
		t.Error("errors.Is(err, ErrDecode) = false")
	}
	if got := err.Error(); got != "decode failed (application/json): unexpected end of input" {
		t.Errorf("Error() = %q", got)
	}

	bare := &CodecError{Err: ErrDecode, ContentType: "application/yaml"}
	if got := bare.Error(); got != "decode failed (application/yaml)" {
		t.Errorf("Error() = %q", got)
	}
}
