package credit

import (
	"encoding/json"
	"math"
	"testing"
)

func TestValueOf(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want Kind
	}{
		{"nil", nil, KindNull},
		{"bool", true, KindBool},
		{"string", "x", KindString},
		{"float", 1.5, KindNumber},
		{"int", 3, KindNumber},
		{"uint64", uint64(3), KindNumber},
		{"json number", json.Number("820"), KindNumber},
		{"bad json number", json.Number("8x"), KindMalformed},
		{"nan", math.NaN(), KindMalformed},
		{"inf", math.Inf(-1), KindMalformed},
		{"list", []any{1}, KindMalformed},
		{"object", map[string]any{}, KindMalformed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ValueOf(tt.in).Kind(); got != tt.want {
				t.Errorf("ValueOf(%v).Kind() = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestValue_String(t *testing.T) {
	tests := []struct {
		v    Value
		want string
	}{
		{NumberValue(820), "820"},
		{NumberValue(0.35), "0.35"},
		{StringValue("auto"), `"auto"`},
		{BoolValue(false), "false"},
		{NullValue(), "null"},
		{MalformedValue("bad"), "<malformed: bad>"},
	}
	for _, tt := range tests {
		if got := tt.v.String(); got != tt.want {
			t.Errorf("String() = %q, want %q", got, tt.want)
		}
	}
}

func TestDecision_Text(t *testing.T) {
	for _, name := range []string{"approve", "decline", "refer"} {
		d, err := ParseDecision(name)
		if err != nil {
			t.Fatalf("ParseDecision(%q) error = %v", name, err)
		}
		text, err := d.MarshalText()
		if err != nil || string(text) != name {
			t.Errorf("MarshalText() = %q, %v, want %q", text, err, name)
		}
	}

	if _, err := ParseDecision("Approve"); err == nil {
		t.Error("ParseDecision(\"Approve\") error = nil, want error")
	}
	if _, err := DecisionUnknown.MarshalText(); err == nil {
		t.Error("MarshalText() on unknown decision error = nil, want error")
	}
}
