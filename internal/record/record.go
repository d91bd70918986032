// Package record adapts the loosely-typed case, defendant and bill rows the
// hosted store hands back into the typed entities of the calculation engine.
//
// Rows arrive with either camelCase or snake_case keys depending on which
// screen produced them. Lookups try both. Bad values never fail a lookup;
// they degrade to zero or absent exactly as the engine expects.
package record

import (
	"io"
	"strconv"
	"strings"
	"unicode"

	json "github.com/goccy/go-json"
	"github.com/shopspring/decimal"

	"github.com/DukeRupert/casedesk/internal/domain"
)

// Record is one decoded JSON object.
type Record map[string]any

// Decode reads a single JSON object from r. Numbers are kept as
// json.Number so amounts never pass through float64.
func Decode(r io.Reader) (Record, error) {
	const op = "record.Decode"

	dec := json.NewDecoder(r)
	dec.UseNumber()

	var rec Record
	if err := dec.Decode(&rec); err != nil {
		return nil, domain.Wrap(err, domain.EINVALID, op, "Request body must be a JSON object")
	}
	if rec == nil {
		return nil, domain.Invalid(op, "Request body must be a JSON object")
	}
	return rec, nil
}

// Lookup returns the first non-nil value stored under any of keys, trying
// each key as given and in snake_case.
func (r Record) Lookup(keys ...string) (any, bool) {
	for _, key := range keys {
		if v, ok := r[key]; ok && v != nil {
			return v, true
		}
		if snake := toSnake(key); snake != key {
			if v, ok := r[snake]; ok && v != nil {
				return v, true
			}
		}
	}
	return nil, false
}

// Amount returns the amount under keys, zero when missing or unparsable.
func (r Record) Amount(keys ...string) decimal.Decimal {
	v, _ := r.Lookup(keys...)
	return domain.ParseAmount(v)
}

// Percentage returns the percentage under keys, absent when missing.
func (r Record) Percentage(keys ...string) decimal.NullDecimal {
	v, _ := r.Lookup(keys...)
	return domain.ParsePercentage(v)
}

// String returns the value under keys as text.
func (r Record) String(keys ...string) string {
	v, ok := r.Lookup(keys...)
	if !ok {
		return ""
	}
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	case json.Number:
		return t.String()
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	}
	return ""
}

// Int returns the integer under keys, zero when missing or unparsable.
func (r Record) Int(keys ...string) int64 {
	v, ok := r.Lookup(keys...)
	if !ok {
		return 0
	}
	return domain.ParseAmount(v).IntPart()
}

// Records returns the array of objects under keys. Elements that are not
// objects are skipped.
func (r Record) Records(keys ...string) []Record {
	v, ok := r.Lookup(keys...)
	if !ok {
		return nil
	}
	items, ok := v.([]any)
	if !ok {
		return nil
	}
	out := make([]Record, 0, len(items))
	for _, item := range items {
		switch m := item.(type) {
		case map[string]any:
			out = append(out, Record(m))
		case Record:
			out = append(out, m)
		}
	}
	return out
}

// toSnake converts camelCase to snake_case.
func toSnake(s string) string {
	var b strings.Builder
	for i, r := range s {
		if unicode.IsUpper(r) {
			if i > 0 {
				b.WriteByte('_')
			}
			b.WriteRune(unicode.ToLower(r))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
