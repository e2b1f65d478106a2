package gen

import "testing"

func TestToPascalCase(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"", ""},
		{"simple", "Simple"},
		{"Simple", "Simple"},
		{"my_field", "MyField"},
		{"MY_FIELD", "MyField"},
		{"hyperEdge", "HyperEdge"},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := toPascalCase(tt.input); got != tt.want {
				t.Errorf("toPascalCase(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestToCamelCase(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"", ""},
		{"simple", "simple"},
		{"Simple", "simple"},
		{"my_field", "myField"},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := toCamelCase(tt.input); got != tt.want {
				t.Errorf("toCamelCase(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestToSnakeCase(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"", ""},
		{"simple", "simple"},
		{"Simple", "simple"},
		{"MyField", "my_field"},
		{"myField", "my_field"},
		{"my_field", "my_field"},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := toSnakeCase(tt.input); got != tt.want {
				t.Errorf("toSnakeCase(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestProfile_Casing(t *testing.T) {
	p := Profile{Target: "go", TypeCase: "pascal", FieldCase: "pascal"}
	if got := p.TypeName("hyper_edge"); got != "HyperEdge" {
		t.Errorf("TypeName = %q", got)
	}
	if got := p.FieldName("id"); got != "Id" {
		t.Errorf("FieldName = %q", got)
	}

	preserve := Profile{Target: "typescript", FieldCase: "preserve"}
	if got := preserve.FieldName("myField"); got != "myField" {
		t.Errorf("preserve FieldName = %q", got)
	}
}
