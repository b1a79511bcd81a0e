package model

import (
	"bytes"
	"encoding/json"

	"github.com/pkg/errors"
)

var ErrInvalidLiteral = errors.New("value must be a string, a number or null")

// Literal is a scalar seed value (code, size, weight) that may have been
// written either as a JSON string or as a JSON number.
type Literal struct {
	text   string
	number bool
}

func NewLiteral(s string) Literal { return Literal{text: s} }

func (l Literal) String() string { return l.text }

func (l Literal) IsNumber() bool { return l.number }

func (l Literal) MarshalJSON() ([]byte, error) {
	if l.number {
		return []byte(l.text), nil
	}
	return json.Marshal(l.text)
}

func (l *Literal) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*l = Literal{}
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*l = Literal{text: s}
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return errors.Wrapf(ErrInvalidLiteral, "got %s", data)
	}
	*l = Literal{text: n.String(), number: true}
	return nil
}
