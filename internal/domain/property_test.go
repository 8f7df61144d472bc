package domain

import (
	"encoding/json"
	"testing"
)

func TestPropertyValueJSON_String(t *testing.T) {
	raw, err := json.Marshal(StringValue("hello"))
	if err != nil {
		t.Fatalf("Marshal() err=%v", err)
	}
	if string(raw) != `{"string_value":"hello"}` {
		t.Fatalf("Marshal()=%s", raw)
	}
	var v PropertyValue
	if err := json.Unmarshal(raw, &v); err != nil {
		t.Fatalf("Unmarshal() err=%v", err)
	}
	if v != StringValue("hello") {
		t.Fatalf("round trip=%v", v)
	}
}

func TestPropertyValueJSON_Int(t *testing.T) {
	raw, err := json.Marshal(IntValue(42))
	if err != nil {
		t.Fatalf("Marshal() err=%v", err)
	}
	var v PropertyValue
	if err := json.Unmarshal(raw, &v); err != nil {
		t.Fatalf("Unmarshal() err=%v", err)
	}
	if v != IntValue(42) {
		t.Fatalf("round trip=%v", v)
	}
}

func TestPropertyValueJSON_Double(t *testing.T) {
	raw, err := json.Marshal(DoubleValue(0.5))
	if err != nil {
		t.Fatalf("Marshal() err=%v", err)
	}
	var v PropertyValue
	if err := json.Unmarshal(raw, &v); err != nil {
		t.Fatalf("Unmarshal() err=%v", err)
	}
	if v != DoubleValue(0.5) {
		t.Fatalf("round trip=%v", v)
	}
}

func TestPropertyValueJSON_RejectsUnset(t *testing.T) {
	if _, err := json.Marshal(PropertyValue{}); err == nil {
		t.Fatalf("expected error for unset property value")
	}
}

func TestPropertyValueJSON_RejectsEmptyObject(t *testing.T) {
	var v PropertyValue
	if err := json.Unmarshal([]byte(`{}`), &v); err == nil {
		t.Fatalf("expected error for empty property object")
	}
}

func TestPropertyValueString(t *testing.T) {
	if got := IntValue(7).String(); got != "7" {
		t.Fatalf("String()=%q, want 7", got)
	}
	if got := StringValue("x").String(); got != "x" {
		t.Fatalf("String()=%q, want x", got)
	}
}
