package cpn

import (
	"errors"
	"fmt"
	"github.com/jt05610/hcpn"
	"github.com/shopspring/decimal"
	"slices"
)

var _ hcpn.Domain = (*ColorSet)(nil)

type Kind string

const (
	IntKind     Kind = "int"
	FloatKind   Kind = "float"
	StringKind  Kind = "string"
	BoolKind    Kind = "bool"
	DecimalKind Kind = "decimal"
	EnumKind    Kind = "enum"
	UnitKind    Kind = "unit"
)

var ErrUnknownKind = errors.New("unknown colour set kind")

func ParseKind(s string) (Kind, error) {
	switch k := Kind(s); k {
	case IntKind, FloatKind, StringKind, BoolKind, DecimalKind, EnumKind, UnitKind:
		return k, nil
	case "integer":
		return IntKind, nil
	case "boolean":
		return BoolKind, nil
	}
	return "", fmt.Errorf("%w: %s", ErrUnknownKind, s)
}

// ColorSet is the type of the tokens a place may hold.
type ColorSet struct {
	name   string
	kind   Kind
	values []string
}

func NewColorSet(name string, kind Kind, values ...string) *ColorSet {
	return &ColorSet{name: name, kind: kind, values: values}
}

func Int(name string) *ColorSet     { return NewColorSet(name, IntKind) }
func Float(name string) *ColorSet   { return NewColorSet(name, FloatKind) }
func String(name string) *ColorSet  { return NewColorSet(name, StringKind) }
func Bool(name string) *ColorSet    { return NewColorSet(name, BoolKind) }
func Decimal(name string) *ColorSet { return NewColorSet(name, DecimalKind) }
func Unit(name string) *ColorSet    { return NewColorSet(name, UnitKind) }

// Enum is a colour set of named constants, carried as strings.
func Enum(name string, values ...string) *ColorSet {
	return NewColorSet(name, EnumKind, values...)
}

func (c *ColorSet) Name() string { return c.name }

func (c *ColorSet) Kind() Kind { return c.kind }

func (c *ColorSet) Values() []string { return slices.Clone(c.values) }

// Equal reports whether two colour sets are the same declared type.
func (c *ColorSet) Equal(d hcpn.Domain) bool {
	o, ok := d.(*ColorSet)
	if !ok || o == nil {
		return false
	}
	return c.name == o.name && c.kind == o.kind && slices.Equal(c.values, o.values)
}

func (c *ColorSet) Contains(v any) bool {
	switch c.kind {
	case IntKind:
		switch v.(type) {
		case int, int8, int16, int32, int64:
			return true
		}
		return false
	case FloatKind:
		switch v.(type) {
		case float32, float64:
			return true
		}
		return false
	case StringKind:
		_, ok := v.(string)
		return ok
	case BoolKind:
		_, ok := v.(bool)
		return ok
	case DecimalKind:
		_, ok := v.(decimal.Decimal)
		return ok
	case EnumKind:
		s, ok := v.(string)
		return ok && slices.Contains(c.values, s)
	case UnitKind:
		return v == nil
	}
	return false
}

// Parse converts a value decoded from text (YAML, flags) into a member of the colour set.
func (c *ColorSet) Parse(v any) (any, error) {
	var ret any = v
	switch c.kind {
	case IntKind:
		if f, ok := v.(float64); ok && f == float64(int(f)) {
			ret = int(f)
		}
	case FloatKind:
		if i, ok := v.(int); ok {
			ret = float64(i)
		}
	case DecimalKind:
		switch val := v.(type) {
		case string:
			d, err := decimal.NewFromString(val)
			if err != nil {
				return nil, err
			}
			ret = d
		case int:
			ret = decimal.NewFromInt(int64(val))
		case float64:
			ret = decimal.NewFromFloat(val)
		}
	}
	if !c.Contains(ret) {
		return nil, &InvalidTokenValueError{ColorSet: c, Value: v}
	}
	return ret, nil
}

func (c *ColorSet) String() string {
	if c.kind == EnumKind {
		return fmt.Sprintf("colset %s = with %v", c.name, c.values)
	}
	return fmt.Sprintf("colset %s = %s", c.name, c.kind)
}

type InvalidTokenValueError struct {
	ColorSet *ColorSet
	Value    any
}

func (e *InvalidTokenValueError) Error() string {
	return fmt.Sprintf("invalid value for colour set %s: %v", e.ColorSet.name, e.Value)
}
