// Package domain contains core business types and the case calculation engine.
//
// This file defines the defensive numeric parsing and display formatting
// shared by every calculator. Amounts travel through the engine as exact
// decimals and are rounded to cents only when formatted for display.
package domain

import (
	"fmt"
	"math"
	"math/big"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// hundred is the percentage base used by every split.
var hundred = decimal.NewFromInt(100)

// Bounds on the decimals the engine accepts. A value like "1e50000000"
// parses fine but makes every later Add or Sub rescale to millions of digits.
const (
	maxExponent = 20
	maxDigits   = 30
)

// WithinMoneyRange reports whether d is small enough in scale and precision
// to be a real amount or percentage.
func WithinMoneyRange(d decimal.Decimal) bool {
	exp := d.Exponent()
	if exp < -maxExponent || exp > maxExponent {
		return false
	}
	return d.NumDigits() <= maxDigits
}

// ParseAmount converts a loosely-typed value into a decimal amount.
//
// Missing values, unparsable strings, NaN and infinities all become zero,
// as do values outside WithinMoneyRange. Strings may carry a leading "$",
// thousands separators and whitespace.
func ParseAmount(v any) decimal.Decimal {
	d, ok := parseDecimal(v)
	if !ok || !WithinMoneyRange(d) {
		return decimal.Zero
	}
	return d
}

// ParsePercentage converts a loosely-typed value into an optional percentage.
//
// nil and blank strings are absent (Valid=false) so callers can apply their
// own default. Any other value that cannot be parsed is zero.
func ParsePercentage(v any) decimal.NullDecimal {
	switch t := v.(type) {
	case nil:
		return decimal.NullDecimal{}
	case string:
		if strings.TrimSpace(t) == "" {
			return decimal.NullDecimal{}
		}
	case decimal.NullDecimal:
		if t.Valid && !WithinMoneyRange(t.Decimal) {
			return decimal.NewNullDecimal(decimal.Zero)
		}
		return t
	}
	return decimal.NewNullDecimal(ParseAmount(v))
}

func parseDecimal(v any) (decimal.Decimal, bool) {
	switch t := v.(type) {
	case nil:
		return decimal.Zero, false
	case decimal.Decimal:
		return t, true
	case decimal.NullDecimal:
		return t.Decimal, t.Valid
	case float64:
		if math.IsNaN(t) || math.IsInf(t, 0) {
			return decimal.Zero, false
		}
		return decimal.NewFromFloat(t), true
	case float32:
		f := float64(t)
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return decimal.Zero, false
		}
		return decimal.NewFromFloat32(t), true
	case int:
		return decimal.NewFromInt(int64(t)), true
	case int32:
		return decimal.NewFromInt32(t), true
	case int64:
		return decimal.NewFromInt(t), true
	case uint32:
		return decimal.NewFromInt(int64(t)), true
	case uint64:
		return decimal.NewFromBigInt(new(big.Int).SetUint64(t), 0), true
	case string:
		return parseAmountString(t)
	case fmt.Stringer:
		// json.Number and friends
		return parseAmountString(t.String())
	}
	return decimal.Zero, false
}

func parseAmountString(s string) (decimal.Decimal, bool) {
	s = strings.TrimSpace(s)
	s = strings.NewReplacer("$", "", ",", "", " ", "").Replace(s)
	if s == "" {
		return decimal.Zero, false
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, false
	}
	return d, true
}

// FormatMoney renders an amount as US currency rounded to the cent,
// e.g. "$29,997.00" or "-$1,250.50".
func FormatMoney(d decimal.Decimal) string {
	rounded := d.Round(2)
	p := message.NewPrinter(language.AmericanEnglish)
	s := p.Sprintf("$%.2f", rounded.Abs().InexactFloat64())
	if rounded.IsNegative() {
		return "-" + s
	}
	return s
}

// FormatPercent renders a percentage with two decimals, e.g. "33.33%".
func FormatPercent(d decimal.Decimal) string {
	return d.StringFixed(2) + "%"
}

// Cents returns the amount rounded to whole cents.
func Cents(d decimal.Decimal) int64 {
	return d.Round(2).Shift(2).IntPart()
}
