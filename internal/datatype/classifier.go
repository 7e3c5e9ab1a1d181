// Package datatype classifies native column types into abstract categories
// and supplies the default interface and length of each type.
package datatype

import (
	"fmt"
	"slices"
	"strings"

	"github.com/spf13/cast"
)

// Interface tags used as defaults for native types
const (
	InterfaceAlias     = "alias"
	InterfaceToggle    = "toggle"
	InterfaceBlob      = "blob"
	InterfaceTextArea  = "textarea"
	InterfaceTextInput = "text-input"
	InterfaceDatetime  = "datetime"
	InterfaceDate      = "date"
	InterfaceTime      = "time"
	InterfaceNumeric   = "numeric"
)

// Classifier holds the read-only type classification tables.
// Build one at startup and share it; it is never mutated after New.
type Classifier struct {
	interfaces map[string]string
	lengths    map[string]int

	integerTypes []string
	decimalTypes []string
	stringTypes  []string
	booleanTypes []string
}

// Tables configures a Classifier. Keys of Interfaces and Lengths are
// uppercase native type names; the category lists are lowercase.
type Tables struct {
	Interfaces   map[string]string
	Lengths      map[string]int
	IntegerTypes []string
	DecimalTypes []string
	StringTypes  []string
	BooleanTypes []string
}

// DefaultTables returns the classification tables used by Default
func DefaultTables() Tables {
	return Tables{
		Interfaces: map[string]string{
			"ALIAS":      InterfaceAlias,
			"MANYTOMANY": InterfaceAlias,
			"ONETOMANY":  InterfaceAlias,

			"BIT":     InterfaceToggle,
			"TINYINT": InterfaceToggle,

			"MEDIUMBLOB": InterfaceBlob,
			"BLOB":       InterfaceBlob,

			"TINYTEXT":   InterfaceTextArea,
			"TEXT":       InterfaceTextArea,
			"MEDIUMTEXT": InterfaceTextArea,
			"LONGTEXT":   InterfaceTextArea,

			"CHAR":    InterfaceTextInput,
			"VARCHAR": InterfaceTextInput,
			"POINT":   InterfaceTextInput,

			"DATETIME":  InterfaceDatetime,
			"TIMESTAMP": InterfaceDatetime,

			"DATE": InterfaceDate,

			"TIME": InterfaceTime,

			"YEAR":      InterfaceNumeric,
			"SMALLINT":  InterfaceNumeric,
			"MEDIUMINT": InterfaceNumeric,
			"INT":       InterfaceNumeric,
			"INTEGER":   InterfaceNumeric,
			"BIGINT":    InterfaceNumeric,
			"FLOAT":     InterfaceNumeric,
			"DOUBLE":    InterfaceNumeric,
			"DECIMAL":   InterfaceNumeric,
		},
		Lengths: map[string]int{
			"CHAR":    1,
			"VARCHAR": 255,
			"INT":     11,
			"INTEGER": 11,
		},
		IntegerTypes: []string{
			"tinyint", "smallint", "mediumint", "int", "integer", "bigint",
			"serial", "bigserial", "smallserial", "int2", "int4", "int8", "year",
		},
		DecimalTypes: []string{
			"float", "double", "decimal", "real", "numeric", "float4", "float8",
		},
		StringTypes: []string{
			"char", "varchar", "character", "tinytext", "text", "mediumtext",
			"longtext", "string", "uuid", "enum", "set",
		},
		BooleanTypes: []string{"bool", "boolean", "bit"},
	}
}

// New builds a Classifier from t. The maps and slices are copied.
func New(t Tables) *Classifier {
	c := &Classifier{
		interfaces: make(map[string]string, len(t.Interfaces)),
		lengths:    make(map[string]int, len(t.Lengths)),
	}
	for k, v := range t.Interfaces {
		c.interfaces[strings.ToUpper(k)] = v
	}
	for k, v := range t.Lengths {
		c.lengths[strings.ToUpper(k)] = v
	}
	c.integerTypes = lowerAll(t.IntegerTypes)
	c.decimalTypes = lowerAll(t.DecimalTypes)
	c.stringTypes = lowerAll(t.StringTypes)
	c.booleanTypes = lowerAll(t.BooleanTypes)
	return c
}

// Default returns a Classifier over DefaultTables
func Default() *Classifier {
	return New(DefaultTables())
}

// DefaultInterface returns the interface tag for a native type, falling
// back to the text input interface for unknown types.
func (c *Classifier) DefaultInterface(nativeType string) string {
	if iface, ok := c.interfaces[strings.ToUpper(nativeType)]; ok {
		return iface
	}
	return InterfaceTextInput
}

// DefaultLength returns the default length of a native type.
// The boolean is false when the type has no default length.
func (c *Classifier) DefaultLength(nativeType string) (int, bool) {
	length, ok := c.lengths[strings.ToUpper(nativeType)]
	return length, ok
}

// IsType reports whether the lowercased native type appears in list
func (c *Classifier) IsType(nativeType string, list []string) bool {
	return slices.Contains(list, strings.ToLower(nativeType))
}

// DataType maps application level types onto the native text type that
// stores them. Any other type is returned unchanged.
func (c *Classifier) DataType(t string) string {
	switch strings.ToLower(t) {
	case "array", "json":
		return "text"
	case "tinyjson":
		return "tinytext"
	case "mediumjson":
		return "mediumtext"
	case "longjson":
		return "longtext"
	}
	return t
}

func (c *Classifier) IntegerTypes() []string { return clone(c.integerTypes) }
func (c *Classifier) DecimalTypes() []string { return clone(c.decimalTypes) }
func (c *Classifier) StringTypes() []string  { return clone(c.stringTypes) }

// NumericTypes returns the integer types followed by the decimal types
func (c *Classifier) NumericTypes() []string {
	return append(clone(c.integerTypes), c.decimalTypes...)
}

func (c *Classifier) IsIntegerType(t string) bool { return c.IsType(t, c.integerTypes) }
func (c *Classifier) IsDecimalType(t string) bool { return c.IsType(t, c.decimalTypes) }
func (c *Classifier) IsStringType(t string) bool  { return c.IsType(t, c.stringTypes) }
func (c *Classifier) IsBooleanType(t string) bool { return c.IsType(t, c.booleanTypes) }

func (c *Classifier) IsNumericType(t string) bool {
	return c.IsIntegerType(t) || c.IsDecimalType(t)
}

// CastValue converts a raw value to the Go value matching the category of
// nativeType: int64 for integers, float64 for decimals, bool for booleans
// and string for string types. Values of other types and nil are returned
// unchanged.
func (c *Classifier) CastValue(value any, nativeType string) (any, error) {
	if value == nil {
		return nil, nil
	}
	// drivers hand back text columns as []byte
	if b, ok := value.([]byte); ok {
		value = string(b)
	}

	var (
		out any
		err error
	)
	switch {
	case c.IsBooleanType(nativeType):
		out, err = cast.ToBoolE(value)
	case c.IsIntegerType(nativeType):
		if str, ok := value.(string); ok {
			value = decimalText(str)
		}
		out, err = cast.ToInt64E(value)
	case c.IsDecimalType(nativeType):
		out, err = cast.ToFloat64E(value)
	case c.IsStringType(nativeType):
		out, err = cast.ToStringE(value)
	default:
		return value, nil
	}
	if err != nil {
		return nil, fmt.Errorf("cannot cast %v to %s: %w", value, nativeType, err)
	}
	return out, nil
}

// decimalText drops the leading zeros of a signed run of digits so cast
// does not read "010" as octal. Anything else is returned unchanged.
func decimalText(s string) string {
	s = strings.TrimSpace(s)
	sign, digits := "", s
	if strings.HasPrefix(digits, "-") || strings.HasPrefix(digits, "+") {
		sign, digits = digits[:1], digits[1:]
	}
	if digits == "" || strings.TrimLeft(digits, "0123456789") != "" {
		return s
	}
	if digits = strings.TrimLeft(digits, "0"); digits == "" {
		digits = "0"
	}
	return sign + digits
}

func lowerAll(in []string) []string {
	out := make([]string, len(in))
	for i, s := range in {
		out[i] = strings.ToLower(s)
	}
	return out
}

func clone(in []string) []string {
	out := make([]string, len(in))
	copy(out, in)
	return out
}
