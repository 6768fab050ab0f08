package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

type scalarKind uint8

const (
	kindNull scalarKind = iota
	kindString
	kindNumber
	kindBool
	kindRaw
)

// Scalar is a JSON value the provider may send as a string, a number, a
// boolean or null. It keeps the textual form for display and remembers
// whether the value counts as present: null, "", false and numeric zero do
// not; the string "0" does.
type Scalar struct {
	text string
	kind scalarKind
}

// Text returns a string scalar.
func Text(s string) Scalar {
	return Scalar{text: s, kind: kindString}
}

// Number returns a numeric scalar from its literal form, e.g. "12" or "0.5".
func Number(literal string) Scalar {
	return Scalar{text: literal, kind: kindNumber}
}

// String returns the value as it should be displayed. Null renders empty.
func (s Scalar) String() string {
	return s.text
}

// IsNull reports whether the value was null or missing.
func (s Scalar) IsNull() bool {
	return s.kind == kindNull
}

// Present reports whether the value is set to something displayable.
func (s Scalar) Present() bool {
	switch s.kind {
	case kindNull:
		return false
	case kindString:
		return s.text != ""
	case kindBool:
		return s.text == "true"
	case kindNumber:
		f, err := strconv.ParseFloat(s.text, 64)
		return err != nil || f != 0
	default:
		return true
	}
}

func (s *Scalar) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*s = Scalar{}
		return nil
	}

	switch data[0] {
	case '"':
		var str string
		if err := json.Unmarshal(data, &str); err != nil {
			return fmt.Errorf("decoding string scalar: %w", err)
		}
		*s = Text(str)
	case 't', 'f':
		var b bool
		if err := json.Unmarshal(data, &b); err != nil {
			return fmt.Errorf("decoding bool scalar: %w", err)
		}
		*s = Scalar{text: strconv.FormatBool(b), kind: kindBool}
	case '{', '[':
		*s = Scalar{text: string(data), kind: kindRaw}
	default:
		var n json.Number
		if err := json.Unmarshal(data, &n); err != nil {
			return fmt.Errorf("decoding number scalar: %w", err)
		}
		*s = Number(n.String())
	}
	return nil
}

func (s Scalar) MarshalJSON() ([]byte, error) {
	switch s.kind {
	case kindNull:
		return []byte("null"), nil
	case kindNumber, kindBool, kindRaw:
		return []byte(s.text), nil
	default:
		return json.Marshal(s.text)
	}
}
