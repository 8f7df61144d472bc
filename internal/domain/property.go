package domain

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// PropertyKind discriminates the value held by a PropertyValue.
type PropertyKind int

const (
	PropertyUnset PropertyKind = iota
	PropertyString
	PropertyInt
	PropertyDouble
)

func (k PropertyKind) String() string {
	switch k {
	case PropertyString:
		return "string"
	case PropertyInt:
		return "int"
	case PropertyDouble:
		return "double"
	default:
		return "unset"
	}
}

// PropertyValue is a closed union of the property types an artifact may
// carry. The metadata store schema only knows strings, integers and
// doubles, so the union is deliberately not extensible.
type PropertyValue struct {
	Kind   PropertyKind
	Str    string
	Int    int64
	Double float64
}

func StringValue(v string) PropertyValue {
	return PropertyValue{Kind: PropertyString, Str: v}
}

func IntValue(v int64) PropertyValue {
	return PropertyValue{Kind: PropertyInt, Int: v}
}

func DoubleValue(v float64) PropertyValue {
	return PropertyValue{Kind: PropertyDouble, Double: v}
}

func (v PropertyValue) String() string {
	switch v.Kind {
	case PropertyString:
		return v.Str
	case PropertyInt:
		return strconv.FormatInt(v.Int, 10)
	case PropertyDouble:
		return strconv.FormatFloat(v.Double, 'g', -1, 64)
	default:
		return ""
	}
}

type propertyValuePayload struct {
	StringValue *string  `json:"string_value,omitempty"`
	IntValue    *int64   `json:"int_value,omitempty"`
	DoubleValue *float64 `json:"double_value,omitempty"`
}

// MarshalJSON projects the value as a one-key object so the wire format
// stays self-describing, e.g. {"int_value":3}.
func (v PropertyValue) MarshalJSON() ([]byte, error) {
	var payload propertyValuePayload
	switch v.Kind {
	case PropertyString:
		payload.StringValue = &v.Str
	case PropertyInt:
		payload.IntValue = &v.Int
	case PropertyDouble:
		payload.DoubleValue = &v.Double
	default:
		return nil, fmt.Errorf("property value kind %q cannot be serialized", v.Kind)
	}
	return json.Marshal(payload)
}

func (v *PropertyValue) UnmarshalJSON(raw []byte) error {
	var payload propertyValuePayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return fmt.Errorf("decode property value: %w", err)
	}
	set := 0
	if payload.StringValue != nil {
		set++
	}
	if payload.IntValue != nil {
		set++
	}
	if payload.DoubleValue != nil {
		set++
	}
	if set != 1 {
		return fmt.Errorf("property value must carry exactly one of string_value, int_value, double_value (got %d)", set)
	}
	switch {
	case payload.StringValue != nil:
		*v = StringValue(*payload.StringValue)
	case payload.IntValue != nil:
		*v = IntValue(*payload.IntValue)
	default:
		*v = DoubleValue(*payload.DoubleValue)
	}
	return nil
}
