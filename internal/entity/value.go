package entity

import (
	"strconv"

	"github.com/joseph-ayodele/nfse-extractor/constants"
)

// Kind tags a Value as numeric or textual.
type Kind uint8

const (
	KindText Kind = iota
	KindNumber
)

// Value is a normalized field value.
type Value struct {
	Kind   Kind    `json:"kind"`
	Number float64 `json:"number,omitempty"`
	Text   string  `json:"text,omitempty"`
}

func Number(f float64) Value { return Value{Kind: KindNumber, Number: f} }
func Text(s string) Value    { return Value{Kind: KindText, Text: s} }

// Default returns the type-appropriate empty value for field.
func Default(field string) Value {
	if constants.IsNumericField(field) {
		return Number(0)
	}
	return Text("")
}

// Any returns the value as float64 or string, ready for a spreadsheet cell.
func (v Value) Any() any {
	if v.Kind == KindNumber {
		return v.Number
	}
	return v.Text
}

func (v Value) String() string {
	if v.Kind == KindNumber {
		return strconv.FormatFloat(v.Number, 'f', -1, 64)
	}
	return v.Text
}
