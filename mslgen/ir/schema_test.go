package ir

import "testing"

func TestSchema_FindType(t *testing.T) {
	s := &Schema{}
	s.AddType(&Composite{Name: "Node", Fields: []FieldDef{
		{Name: "id", Type: Primitive(PrimitiveUUID)},
	}})
	s.AddType(&Enum{Name: "Color", Variants: []string{"Red", "Green"}})

	if got := s.FindType("Node"); got == nil {
		t.Fatal("FindType(Node) = nil, want composite")
	}
	if _, ok := s.FindType("Color").(*Enum); !ok {
		t.Error("FindType(Color) is not *Enum")
	}
	if got := s.FindType("node"); got != nil {
		t.Error("type names must be case-sensitive")
	}
	if got := s.FindType("Missing"); got != nil {
		t.Error("FindType(Missing) should be nil")
	}
	if got := s.FindType(UnitName); got != nil {
		t.Error("Unit is reserved, not a declared type")
	}
}

func TestComposite_Field(t *testing.T) {
	c := &Composite{Name: "Node", Fields: []FieldDef{
		{Name: "id", Type: Primitive(PrimitiveUUID)},
		{Name: "title", Type: Primitive(PrimitiveString)},
	}}
	if f := c.Field("title"); f == nil || f.Name != "title" {
		t.Errorf("Field(title) = %v", f)
	}
	if f := c.Field("absent"); f != nil {
		t.Errorf("Field(absent) = %v, want nil", f)
	}
}

func TestWalkRefs(t *testing.T) {
	// map<string,[Node?]> visits map, list, optional, named in that order.
	ref := Map(PrimitiveString, List(Optional(Named("Node"))))

	var kinds []RefKind
	WalkRefs(ref, func(r TypeRef) { kinds = append(kinds, r.Kind()) })

	want := []RefKind{KindMap, KindList, KindOptional, KindNamed}
	if len(kinds) != len(want) {
		t.Fatalf("visited %d refs, want %d", len(kinds), len(want))
	}
	for i := range want {
		if kinds[i] != want[i] {
			t.Errorf("visit %d = %v, want %v", i, kinds[i], want[i])
		}
	}
}

func TestRefKind_String(t *testing.T) {
	tests := []struct {
		kind RefKind
		want string
	}{
		{KindPrimitive, "Primitive"},
		{KindNamed, "Named"},
		{KindOptional, "Optional"},
		{KindList, "List"},
		{KindMap, "Map"},
		{RefKind(99), "Unknown"},
	}
	for _, tt := range tests {
		if got := tt.kind.String(); got != tt.want {
			t.Errorf("RefKind(%d).String() = %q, want %q", tt.kind, got, tt.want)
		}
	}
}
