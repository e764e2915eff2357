package disir

import (
	"strconv"
)

// ValueType tags the concrete type a Value carries (spec.md §3).
type ValueType int

const (
	// ValueTypeUnknown marks a value that has not yet been typed — only
	// legal transiently during Mold-side Keyval construction.
	ValueTypeUnknown ValueType = iota
	ValueTypeString
	ValueTypeInteger
	ValueTypeFloat
	ValueTypeBoolean
	ValueTypeEnum
)

func (t ValueType) String() string {
	switch t {
	case ValueTypeString:
		return "STRING"
	case ValueTypeInteger:
		return "INTEGER"
	case ValueTypeFloat:
		return "FLOAT"
	case ValueTypeBoolean:
		return "BOOLEAN"
	case ValueTypeEnum:
		return "ENUM"
	default:
		return "UNKNOWN"
	}
}

// Value is a tagged union carrying exactly one of {string, integer, float,
// boolean, enum-token} (spec.md §3). Every Value remembers its own
// ValueType; accessors fail with StatusWrongValueType on mismatch rather
// than silently coercing.
type Value struct {
	vtype   ValueType
	str     string
	integer int64
	float   float64
	boolean bool
}

// NewStringValue builds a String-typed Value.
func NewStringValue(s string) Value { return Value{vtype: ValueTypeString, str: s} }

// NewIntegerValue builds an Integer-typed Value.
func NewIntegerValue(i int64) Value { return Value{vtype: ValueTypeInteger, integer: i} }

// NewFloatValue builds a Float-typed Value.
func NewFloatValue(f float64) Value { return Value{vtype: ValueTypeFloat, float: f} }

// NewBooleanValue builds a Boolean-typed Value.
func NewBooleanValue(b bool) Value { return Value{vtype: ValueTypeBoolean, boolean: b} }

// NewEnumValue builds an Enum-typed Value carrying the given token. The
// token is not checked against any whitelist here — enum membership is an
// RestrictionValueEnum restriction, checked at validation time (spec.md §4.5).
func NewEnumValue(token string) Value { return Value{vtype: ValueTypeEnum, str: token} }

// Type returns the Value's declared type.
func (v Value) Type() ValueType { return v.vtype }

// String returns the underlying string/enum token.
//
// Returns StatusWrongValueType if v is not a String or Enum.
func (v Value) String() (string, error) {
	if v.vtype != ValueTypeString && v.vtype != ValueTypeEnum {
		return "", wrapf(StatusWrongValueType, "value is %s, not STRING/ENUM", v.vtype)
	}
	return v.str, nil
}

// Integer returns the underlying int64.
//
// Returns StatusWrongValueType if v is not an Integer.
func (v Value) Integer() (int64, error) {
	if v.vtype != ValueTypeInteger {
		return 0, wrapf(StatusWrongValueType, "value is %s, not INTEGER", v.vtype)
	}
	return v.integer, nil
}

// Float returns the underlying float64.
//
// Returns StatusWrongValueType if v is not a Float.
func (v Value) Float() (float64, error) {
	if v.vtype != ValueTypeFloat {
		return 0, wrapf(StatusWrongValueType, "value is %s, not FLOAT", v.vtype)
	}
	return v.float, nil
}

// Boolean returns the underlying bool.
//
// Returns StatusWrongValueType if v is not a Boolean.
func (v Value) Boolean() (bool, error) {
	if v.vtype != ValueTypeBoolean {
		return false, wrapf(StatusWrongValueType, "value is %s, not BOOLEAN", v.vtype)
	}
	return v.boolean, nil
}

// Format renders the value as a string irrespective of its type, used by
// GetDefault (spec.md §4.1) and by diff/log reporting. Unlike String, this
// never fails — every ValueType has a canonical textual form.
func (v Value) Format() string {
	switch v.vtype {
	case ValueTypeString, ValueTypeEnum:
		return v.str
	case ValueTypeInteger:
		return strconv.FormatInt(v.integer, 10)
	case ValueTypeFloat:
		return strconv.FormatFloat(v.float, 'g', -1, 64)
	case ValueTypeBoolean:
		return strconv.FormatBool(v.boolean)
	default:
		return ""
	}
}

// ParseValue builds a Value of the given type from its Format()-style
// textual form. Used by collaborators (plugins/*serializer,
// resolvercache) that only have a type tag and a string to rebuild a
// Value from — the inverse of Format.
func ParseValue(t ValueType, s string) (Value, error) {
	switch t {
	case ValueTypeString:
		return NewStringValue(s), nil
	case ValueTypeEnum:
		return NewEnumValue(s), nil
	case ValueTypeInteger:
		i, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return Value{}, wrapf(StatusWrongValueType, "cannot parse %q as INTEGER: %v", s, err)
		}
		return NewIntegerValue(i), nil
	case ValueTypeFloat:
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return Value{}, wrapf(StatusWrongValueType, "cannot parse %q as FLOAT: %v", s, err)
		}
		return NewFloatValue(f), nil
	case ValueTypeBoolean:
		b, err := strconv.ParseBool(s)
		if err != nil {
			return Value{}, wrapf(StatusWrongValueType, "cannot parse %q as BOOLEAN: %v", s, err)
		}
		return NewBooleanValue(b), nil
	default:
		return Value{}, wrapf(StatusWrongValueType, "cannot parse value of type %s", t)
	}
}

func (v Value) equal(other Value) bool {
	if v.vtype != other.vtype {
		return false
	}
	switch v.vtype {
	case ValueTypeString, ValueTypeEnum:
		return v.str == other.str
	case ValueTypeInteger:
		return v.integer == other.integer
	case ValueTypeFloat:
		return v.float == other.float
	case ValueTypeBoolean:
		return v.boolean == other.boolean
	default:
		return true
	}
}
