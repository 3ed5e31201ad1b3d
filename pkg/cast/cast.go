package cast

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

// Options configures the fallback when a string cannot be converted.
type Options struct {
	// Strict declines unrecognised input instead of returning a zero value.
	// For numbers it also rejects exponent and hex notation.
	Strict bool `json:"strict,omitempty" yaml:"strict,omitempty" mapstructure:"strict"`
	// Preserve returns the original string when the conversion fails.
	Preserve bool `json:"preserve,omitempty" yaml:"preserve,omitempty" mapstructure:"preserve"`
}

var strictNumber = regexp.MustCompile(`^[+-]?\d+(\.\d+)?$`)

// Boolean maps "true"/"True"/"TRUE"/"1" to true and "false"/"False"/"FALSE"/"0"
// to false. Anything else yields the original string with Preserve, is
// declined with Strict, and is false otherwise.
func Boolean(s string, opts Options) (any, bool) {
	switch s {
	case "true", "True", "TRUE", "1":
		return true, true
	case "false", "False", "FALSE", "0":
		return false, true
	}
	return fallback(s, opts, false)
}

// Number parses s as a float64. In strict mode s must be a plain decimal.
// Failures follow the same Preserve/Strict policy as Boolean, except that
// the non-strict fallback is also a decline: there is no numeric default.
func Number(s string, opts Options) (any, bool) {
	if opts.Strict && !strictNumber.MatchString(s) {
		return decline(s, opts)
	}
	f, ok := parseLoose(s)
	if !ok || math.IsNaN(f) {
		return decline(s, opts)
	}
	return f, true
}

// parseLoose accepts surrounding whitespace, an empty string (zero) and
// integer literals with a 0x/0o/0b base prefix. Digit separators ("1_000")
// are not numbers.
func parseLoose(s string) (float64, bool) {
	t := strings.TrimSpace(s)
	if t == "" {
		return 0, true
	}
	if strings.Contains(t, "_") {
		return 0, false
	}
	if f, err := strconv.ParseFloat(t, 64); err == nil {
		return f, true
	}
	if i, err := strconv.ParseInt(t, 0, 64); err == nil {
		return float64(i), true
	}
	return 0, false
}

func fallback(s string, opts Options, zero any) (any, bool) {
	if opts.Preserve {
		return s, true
	}
	if opts.Strict {
		return nil, false
	}
	return zero, true
}

func decline(s string, opts Options) (any, bool) {
	if opts.Preserve {
		return s, true
	}
	return nil, false
}
