// Package iox implements the iox stack-oriented, indentation-sensitive
// scripting language: tokenizer, value model, stream/cycle evaluation,
// builtin operator table, and the mark/jump line driver.
package iox

import (
	"fmt"
	"strconv"
)

// Tag identifies the dynamic type carried by a Value.
type Tag int

// The tag set mirrors the original implementation's reflection names;
// List and Io are reserved and only ever produced by the type operator's
// own name table, never by any literal or cast.
const (
	Int Tag = iota
	Str
	Real
	Bool
	List
	Io
)

func (t Tag) String() string {
	switch t {
	case Int:
		return "int"
	case Str:
		return "str"
	case Real:
		return "real"
	case Bool:
		return "bool"
	case List:
		return "list"
	case Io:
		return "io"
	default:
		return fmt.Sprintf("Tag(%d)", int(t))
	}
}

// Value is a tagged dynamic value: exactly one of its payload fields is
// meaningful, selected by Tag.
type Value struct {
	Tag Tag
	i   int64
	s   string
	r   float32
	b   bool
}

// IntValue constructs an Int-tagged Value.
func IntValue(i int64) Value { return Value{Tag: Int, i: i} }

// StrValue constructs a Str-tagged Value.
func StrValue(s string) Value { return Value{Tag: Str, s: s} }

// RealValue constructs a Real-tagged Value.
func RealValue(r float32) Value { return Value{Tag: Real, r: r} }

// BoolValue constructs a Bool-tagged Value.
func BoolValue(b bool) Value { return Value{Tag: Bool, b: b} }

// Int returns the Int payload; only meaningful when Tag == Int.
func (v Value) Int() int64 { return v.i }

// Str returns the Str payload; only meaningful when Tag == Str.
func (v Value) Str() string { return v.s }

// Real returns the Real payload; only meaningful when Tag == Real.
func (v Value) Real() float32 { return v.r }

// Bool returns the Bool payload; only meaningful when Tag == Bool.
func (v Value) Bool() bool { return v.b }

// String formats a Value the way the out operator does: unquoted,
// decimal ints, showpoint reals, true/false booleans.
func (v Value) String() string {
	switch v.Tag {
	case Str:
		return v.s
	case Int:
		return strconv.FormatInt(v.i, 10)
	case Real:
		return formatReal(v.r)
	case Bool:
		if v.b {
			return "true"
		}
		return "false"
	default:
		return fmt.Sprintf("<%v>", v.Tag)
	}
}

func formatReal(r float32) string {
	s := strconv.FormatFloat(float64(r), 'f', -1, 32)
	for i := 0; i < len(s); i++ {
		if s[i] == '.' {
			return s
		}
	}
	return s + ".0"
}

// ToInt implements the int cast (spec.md §4.1): string parses as decimal,
// int is identity, real rounds half-away-from-zero, bool is 1/0.
func (v Value) ToInt() (Value, error) {
	switch v.Tag {
	case Int:
		return v, nil
	case Str:
		n, err := strconv.ParseInt(v.s, 10, 64)
		if err != nil {
			return Value{}, fmt.Errorf("cannot cast %q to int", v.s)
		}
		return IntValue(n), nil
	case Real:
		f := float64(v.r)
		if f > 0 {
			f += 0.5
		} else {
			f -= 0.5
		}
		return IntValue(int64(f)), nil
	case Bool:
		if v.b {
			return IntValue(1), nil
		}
		return IntValue(0), nil
	default:
		return Value{}, fmt.Errorf("cannot cast %v to int", v.Tag)
	}
}

// ToBool implements the bool cast (spec.md §4.1): non-empty string is
// true, nonzero int is true, bool is identity.
func (v Value) ToBool() (Value, error) {
	switch v.Tag {
	case Bool:
		return v, nil
	case Str:
		return BoolValue(v.s != ""), nil
	case Int:
		return BoolValue(v.i != 0), nil
	default:
		return Value{}, fmt.Errorf("cannot cast %v to bool", v.Tag)
	}
}
