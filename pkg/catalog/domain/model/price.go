package model

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

var ErrInvalidPrice = errors.New("price must be a string, a number or null")

type PriceKind int

const (
	PriceAbsent PriceKind = iota
	PriceNumeric
	PriceText
)

// Price keeps the value exactly as it was captured: a number, a free text
// or nothing at all. Numeric prices remember whether they arrived quoted so
// that a saved collection looks like the one that was loaded.
type Price struct {
	kind   PriceKind
	value  decimal.Decimal
	raw    string
	quoted bool
}

func ParsePrice(s string) Price {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return Price{}
	}
	d, err := decimal.NewFromString(trimmed)
	if err != nil {
		return Price{kind: PriceText, raw: s}
	}
	return Price{kind: PriceNumeric, value: d, raw: s, quoted: true}
}

func NumericPrice(d decimal.Decimal) Price {
	return Price{kind: PriceNumeric, value: d, raw: d.String()}
}

func (p Price) Kind() PriceKind { return p.kind }

func (p Price) IsAbsent() bool { return p.kind == PriceAbsent }

func (p Price) Decimal() (decimal.Decimal, bool) {
	return p.value, p.kind == PriceNumeric
}

func (p Price) String() string { return p.raw }

// Equal compares numeric prices by value and everything else by text.
func (p Price) Equal(other Price) bool {
	if p.kind != other.kind {
		return false
	}
	switch p.kind {
	case PriceAbsent:
		return true
	case PriceNumeric:
		return p.value.Equal(other.value)
	default:
		return p.raw == other.raw
	}
}

func (p Price) MarshalJSON() ([]byte, error) {
	switch p.kind {
	case PriceAbsent:
		return []byte(`""`), nil
	case PriceNumeric:
		if !p.quoted {
			return []byte(p.raw), nil
		}
	}
	return json.Marshal(p.raw)
}

func (p *Price) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case len(data) == 0 || bytes.Equal(data, []byte("null")):
		*p = Price{}
		return nil
	case data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*p = ParsePrice(s)
		return nil
	}

	d, err := decimal.NewFromString(string(data))
	if err != nil {
		return errors.Wrapf(ErrInvalidPrice, "got %s", data)
	}
	*p = Price{kind: PriceNumeric, value: d, raw: string(data)}
	return nil
}
