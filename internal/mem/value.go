package mem

import (
	"fmt"
	"strconv"
	"strings"
)

// Kind tags a Value as integer or floating.
type Kind uint8

// Value kinds.
const (
	IntKind Kind = iota
	FloatKind
)

func (k Kind) String() string {
	switch k {
	case IntKind:
		return "int"
	case FloatKind:
		return "float"
	default:
		return fmt.Sprintf("Kind(%d)", uint8(k))
	}
}

// Value is a numeric cell: an integer or a float, never both.
// The zero Value is the integer 0.
type Value struct {
	Kind Kind
	I    int64
	F    float64
}

// Int returns an integer Value.
func Int(i int64) Value { return Value{Kind: IntKind, I: i} }

// Float returns a floating Value.
func Float(f float64) Value { return Value{Kind: FloatKind, F: f} }

// Bool returns the integer 1 or 0.
func Bool(b bool) Value {
	if b {
		return Int(1)
	}
	return Int(0)
}

// IsFloat returns true if v is a floating value.
func (v Value) IsFloat() bool { return v.Kind == FloatKind }

// Int returns v as an integer, truncating any fraction.
func (v Value) Int() int64 {
	if v.Kind == FloatKind {
		return int64(v.F)
	}
	return v.I
}

// Float returns v widened to a float.
func (v Value) Float() float64 {
	if v.Kind == FloatKind {
		return v.F
	}
	return float64(v.I)
}

// IsZero returns true for integer 0 and float 0.0.
func (v Value) IsZero() bool {
	if v.Kind == FloatKind {
		return v.F == 0
	}
	return v.I == 0
}

func (v Value) String() string {
	if v.Kind == FloatKind {
		return strconv.FormatFloat(v.F, 'g', -1, 64)
	}
	return strconv.FormatInt(v.I, 10)
}

// Literal renders v so that ParseValue reads back the same kind: floats
// always carry a decimal point.
func (v Value) Literal() string {
	s := v.String()
	if v.Kind == FloatKind && !strings.ContainsAny(s, ".eEnN") {
		s += ".0"
	}
	return s
}

// IsFloatType returns true for the declared types that hold floats.
func IsFloatType(typ string) bool {
	return typ == "float" || typ == "double"
}

// Zero returns the zero value of a declared type.
func Zero(typ string) Value {
	if IsFloatType(typ) {
		return Float(0)
	}
	return Int(0)
}

// As coerces v to a declared type: int and char truncate, float and double
// widen; any other type leaves v unchanged.
func (v Value) As(typ string) Value {
	switch typ {
	case "int", "char":
		return Int(v.Int())
	case "float", "double":
		return Float(v.Float())
	}
	return v
}

// ParseValue parses an integer literal, or failing that a decimal one.
func ParseValue(s string) (Value, error) {
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return Int(i), nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return Value{}, fmt.Errorf("invalid numeric value %q", s)
	}
	return Float(f), nil
}
