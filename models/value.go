package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// Value is a product field that listings report either as a number or as
// free text ("N/A", "$5.99 - $9.99"). The zero value means the field was
// not captured, which is distinct from a numeric zero.
type Value struct {
	text   string
	number float64
	isNum  bool
}

// Number returns a numeric value.
func Number(f float64) Value {
	return Value{text: strconv.FormatFloat(f, 'f', -1, 64), number: f, isNum: true}
}

// Text returns a textual value. Empty text is an empty value.
func Text(s string) Value {
	return Value{text: s}
}

// IsEmpty reports whether nothing was captured.
func (v Value) IsEmpty() bool {
	return !v.isNum && v.text == ""
}

// Float returns the number and whether v holds one.
func (v Value) Float() (float64, bool) {
	return v.number, v.isNum
}

// String returns the value as it would appear in a text cell. Numbers
// decoded from JSON keep their original literal.
func (v Value) String() string {
	return v.text
}

// Cell returns a float64 for numbers, a string for text and nil when empty.
func (v Value) Cell() interface{} {
	switch {
	case v.isNum:
		return v.number
	case v.text == "":
		return nil
	default:
		return v.text
	}
}

// MarshalCSV writes the value as text.
func (v Value) MarshalCSV() (string, error) {
	return v.text, nil
}

// MarshalJSON writes numbers as JSON numbers, text as strings and empty as null.
func (v Value) MarshalJSON() ([]byte, error) {
	switch {
	case v.isNum:
		return []byte(v.text), nil
	case v.text == "":
		return []byte("null"), nil
	default:
		return json.Marshal(v.text)
	}
}

// UnmarshalJSON accepts a JSON number, string or null.
func (v *Value) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*v = Value{}
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*v = Text(s)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("value must be a number, string or null: %w", err)
	}
	f, err := n.Float64()
	if err != nil {
		return fmt.Errorf("parse number %s: %w", n, err)
	}
	*v = Value{text: n.String(), number: f, isNum: true}
	return nil
}
