package ir

import "testing"

func TestPrimitiveByName(t *testing.T) {
	tests := []struct {
		name string
		want PrimitiveKind
		ok   bool
	}{
		{"bool", PrimitiveBool, true},
		{"i32", PrimitiveI32, true},
		{"i64", PrimitiveI64, true},
		{"u32", PrimitiveU32, true},
		{"u64", PrimitiveU64, true},
		{"f32", PrimitiveF32, true},
		{"f64", PrimitiveF64, true},
		{"string", PrimitiveString, true},
		{"bytes", PrimitiveBytes, true},
		{"uuid", PrimitiveUUID, true},
		{"timestamp", PrimitiveTimestamp, true},
		{"int", 0, false},
		{"String", 0, false},
		{"", 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := PrimitiveByName(tt.name)
			if ok != tt.ok {
				t.Fatalf("PrimitiveByName(%q) ok = %v, want %v", tt.name, ok, tt.ok)
			}
			if ok && got != tt.want {
				t.Errorf("PrimitiveByName(%q) = %v, want %v", tt.name, got, tt.want)
			}
		})
	}
}

func TestPrimitiveKind_String_RoundTrip(t *testing.T) {
	for name, kind := range primitivesByName {
		if kind.String() != name {
			t.Errorf("PrimitiveKind(%d).String() = %q, want %q", kind, kind.String(), name)
		}
	}
}

func TestPrimitiveKind_ValidMapKey(t *testing.T) {
	valid := []PrimitiveKind{PrimitiveString, PrimitiveUUID, PrimitiveI32, PrimitiveI64, PrimitiveU32, PrimitiveU64}
	invalid := []PrimitiveKind{PrimitiveBool, PrimitiveF32, PrimitiveF64, PrimitiveBytes, PrimitiveTimestamp}

	for _, k := range valid {
		if !k.ValidMapKey() {
			t.Errorf("%v.ValidMapKey() = false, want true", k)
		}
	}
	for _, k := range invalid {
		if k.ValidMapKey() {
			t.Errorf("%v.ValidMapKey() = true, want false", k)
		}
	}
}

func TestPrimitiveKind_Is64Bit(t *testing.T) {
	if !PrimitiveI64.Is64Bit() || !PrimitiveU64.Is64Bit() {
		t.Error("i64/u64 should be 64-bit")
	}
	if PrimitiveI32.Is64Bit() || PrimitiveF64.Is64Bit() {
		t.Error("i32/f64 should not be 64-bit")
	}
}
