// Package threshold parses the comparison thresholds used in MODE field
// and convolution settings, e.g. ">0.5", "ge1.0" or "<=254".
package threshold

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ErrInvalid is wrapped by every parse failure.
var ErrInvalid = errors.New("threshold must start with a comparison operator (>,>=,==,!=,<,<=,gt,ge,eq,ne,lt,le)")

// Operator is the canonical mnemonic form of a comparison.
type Operator string

const (
	GT Operator = "gt"
	GE Operator = "ge"
	EQ Operator = "eq"
	NE Operator = "ne"
	LT Operator = "lt"
	LE Operator = "le"
)

// IsLowerBound reports whether the operator constrains values from below.
func (o Operator) IsLowerBound() bool { return o == GT || o == GE }

// IsUpperBound reports whether the operator constrains values from above.
func (o Operator) IsUpperBound() bool { return o == LT || o == LE }

// tokens is ordered so two-character symbols are tried before their
// one-character prefixes.
var tokens = []struct {
	text string
	op   Operator
}{
	{">=", GE}, {"<=", LE}, {"==", EQ}, {"!=", NE}, {">", GT}, {"<", LT},
	{"ge", GE}, {"le", LE}, {"eq", EQ}, {"ne", NE}, {"gt", GT}, {"lt", LT},
}

// Threshold is a parsed comparison. Literal keeps the number as written so
// it can be echoed back into the tool's config without reformatting.
type Threshold struct {
	Op      Operator
	Number  float64
	Literal string
}

// String renders the threshold with its mnemonic operator.
func (t Threshold) String() string {
	return string(t.Op) + t.Literal
}

// Parse splits s into operator and number.
func Parse(s string) (Threshold, error) {
	if s == "" {
		return Threshold{}, fmt.Errorf("empty threshold: %w", ErrInvalid)
	}
	for _, tok := range tokens {
		if !strings.HasPrefix(s, tok.text) {
			continue
		}
		literal := strings.TrimSpace(s[len(tok.text):])
		// MET reads plain decimal or exponent numbers only.
		if strings.ContainsAny(literal, "xX_") {
			return Threshold{}, fmt.Errorf("threshold %q has no decimal value: %w", s, ErrInvalid)
		}
		n, err := strconv.ParseFloat(literal, 64)
		if err != nil || math.IsNaN(n) || math.IsInf(n, 0) {
			return Threshold{}, fmt.Errorf("threshold %q has no numeric value: %w", s, ErrInvalid)
		}
		return Threshold{Op: tok.op, Number: n, Literal: literal}, nil
	}
	return Threshold{}, fmt.Errorf("threshold %q: %w", s, ErrInvalid)
}

// Split returns the operator and the numeric literal of s.
func Split(s string) (Operator, string, error) {
	t, err := Parse(s)
	if err != nil {
		return "", "", err
	}
	return t.Op, t.Literal, nil
}

// ValidateList returns an error naming the first malformed entry.
// An empty list is valid and means no threshold filtering.
func ValidateList(list []string) error {
	for i, s := range list {
		if _, err := Parse(s); err != nil {
			return fmt.Errorf("item %d: %w", i+1, err)
		}
	}
	return nil
}

// Validate reports whether every entry of list is a well-formed threshold.
func Validate(list []string) bool {
	return ValidateList(list) == nil
}
