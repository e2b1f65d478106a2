package golang

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/msl-lang/mslc/mslgen/gen"
	"github.com/msl-lang/mslc/mslgen/ir"
	"github.com/msl-lang/mslc/mslgen/resolve"
	"github.com/msl-lang/mslc/mslgen/sink"
)

func testSchema(t *testing.T) *resolve.ResolvedSchema {
	t.Helper()

	schema := &ir.Schema{}
	schema.AddType(&ir.Composite{
		Name: "Node",
		Fields: []ir.FieldDef{
			{Name: "id", Type: ir.Primitive(ir.PrimitiveUUID)},
			{Name: "label", Type: ir.Optional(ir.Primitive(ir.PrimitiveString))},
			{Name: "weight", Type: ir.Primitive(ir.PrimitiveF64)},
			{Name: "revision", Type: ir.Primitive(ir.PrimitiveI64)},
		},
	})
	schema.AddType(&ir.Composite{
		Name: "HyperEdge",
		Fields: []ir.FieldDef{
			{Name: "id", Type: ir.Primitive(ir.PrimitiveUUID)},
			{Name: "nodes", Type: ir.List(ir.Primitive(ir.PrimitiveUUID))},
			{Name: "attrs", Type: ir.Map(ir.PrimitiveString, ir.Primitive(ir.PrimitiveString))},
		},
	})
	schema.AddType(&ir.Enum{Name: "Color", Variants: []string{"Red", "Green", "Blue"}})
	schema.AddFunction(ir.FunctionContract{
		Name:   "get_node",
		Input:  ir.Named("Node"),
		Output: ir.Named("HyperEdge"),
	})
	schema.AddFunction(ir.FunctionContract{
		Name:   "reset",
		Input:  ir.Named(ir.UnitName),
		Output: ir.Named(ir.UnitName),
	})

	resolved, err := resolve.Resolve(schema)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	return resolved
}

func generate(t *testing.T, resolved *resolve.ResolvedSchema) map[string][]byte {
	t.Helper()
	mem := sink.NewMemorySink()
	g := New()
	if _, err := g.Generate(context.Background(), resolved, gen.Options{Sink: mem}); err != nil {
		t.Fatalf("Generate: %v", err)
	}
	return mem.Files()
}

func TestGenerate_Types(t *testing.T) {
	files := generate(t, testSchema(t))

	types := string(files["types.gen.go"])
	if types == "" {
		t.Fatal("types.gen.go not generated")
	}

	// gofmt aligns struct columns, so compare with collapsed whitespace.
	flat := strings.Join(strings.Fields(types), " ")
	for _, want := range []string{
		"// Code generated by mslc. DO NOT EDIT.",
		"package schema",
		"type Node struct {",
		"Id uuid.UUID `json:\"id\"`",
		"Label *string `json:\"label,omitempty\"`",
		"Revision Int64String `json:\"revision\"`",
		"Nodes []uuid.UUID `json:\"nodes\"`",
		"Attrs map[string]string `json:\"attrs\"`",
		"type Color string",
		"ColorRed Color = \"Red\"",
		"func (v Color) Valid() bool",
		"type Int64String int64",
	} {
		if !strings.Contains(flat, want) {
			t.Errorf("types.gen.go missing %q\n%s", want, types)
		}
	}

	// u64 never appears in the schema, so its newtype is not emitted.
	if strings.Contains(types, "Uint64String") {
		t.Error("types.gen.go emitted unused Uint64String helper")
	}
}

func TestGenerate_Codecs(t *testing.T) {
	files := generate(t, testSchema(t))

	codec := string(files["codec.gen.go"])
	for _, want := range []string{
		"func SerializeNode(v Node) ([]byte, error)",
		"func DeserializeNode(data []byte) (Node, error)",
		"func DeserializeColor(data []byte) (Color, error)",
		"unknown Color variant",
	} {
		if !strings.Contains(codec, want) {
			t.Errorf("codec.gen.go missing %q", want)
		}
	}
}

func TestGenerate_CallWrappers(t *testing.T) {
	files := generate(t, testSchema(t))

	calls := string(files["calls.gen.go"])
	for _, want := range []string{
		"type Runtime interface {",
		"type CallResult interface {",
		"func CallGetNode(rt Runtime, input Node) (HyperEdge, error)",
		"rt.Call(\"get_node\", payload)",
		"defer res.Release()",
		"func CallReset(rt Runtime) error",
	} {
		if !strings.Contains(calls, want) {
			t.Errorf("calls.gen.go missing %q\n%s", want, calls)
		}
	}
}

func TestGenerate_NoCallsFileWithoutFunctions(t *testing.T) {
	schema := &ir.Schema{}
	schema.AddType(&ir.Enum{Name: "Color", Variants: []string{"Red"}})
	resolved, err := resolve.Resolve(schema)
	if err != nil {
		t.Fatal(err)
	}

	files := generate(t, resolved)
	if _, ok := files["calls.gen.go"]; ok {
		t.Error("calls.gen.go generated for a schema without functions")
	}
	if len(files) != 2 {
		t.Errorf("generated %d files, want 2", len(files))
	}
}

func TestGenerate_Deterministic(t *testing.T) {
	resolved := testSchema(t)

	first := generate(t, resolved)
	second := generate(t, resolved)

	if len(first) != len(second) {
		t.Fatalf("file counts differ: %d vs %d", len(first), len(second))
	}
	for path, content := range first {
		if !bytes.Equal(content, second[path]) {
			t.Errorf("%s differs between runs", path)
		}
	}
}

func TestGenerate_ValueEmbeddedTypesComeFirst(t *testing.T) {
	schema := &ir.Schema{}
	schema.AddType(&ir.Composite{
		Name:   "Outer",
		Fields: []ir.FieldDef{{Name: "inner", Type: ir.Named("Inner")}},
	})
	schema.AddType(&ir.Composite{
		Name:   "Inner",
		Fields: []ir.FieldDef{{Name: "n", Type: ir.Primitive(ir.PrimitiveI32)}},
	})
	resolved, err := resolve.Resolve(schema)
	if err != nil {
		t.Fatal(err)
	}

	types := string(generate(t, resolved)["types.gen.go"])
	inner := strings.Index(types, "type Inner struct")
	outer := strings.Index(types, "type Outer struct")
	if inner == -1 || outer == -1 || inner > outer {
		t.Errorf("Inner must be declared before Outer (inner=%d outer=%d)", inner, outer)
	}
}

func TestGenerate_StructsReproduceGoldenWireForms(t *testing.T) {
	// The wire package pins golden byte forms for Node and HyperEdge
	// values. encoding/json marshals struct fields in declaration order,
	// so the emitted declarations below produce exactly those bytes:
	// keys in declared order, absent optionals dropped by omitempty.
	schema := &ir.Schema{}
	schema.AddType(&ir.Composite{
		Name: "Node",
		Fields: []ir.FieldDef{
			{Name: "id", Type: ir.Primitive(ir.PrimitiveUUID)},
			{Name: "label", Type: ir.Optional(ir.Primitive(ir.PrimitiveString))},
			{Name: "weight", Type: ir.Primitive(ir.PrimitiveF64)},
		},
	})
	schema.AddType(&ir.Composite{
		Name: "HyperEdge",
		Fields: []ir.FieldDef{
			{Name: "id", Type: ir.Primitive(ir.PrimitiveUUID)},
			{Name: "nodes", Type: ir.List(ir.Primitive(ir.PrimitiveUUID))},
			{Name: "label", Type: ir.Optional(ir.Primitive(ir.PrimitiveString))},
		},
	})
	resolved, err := resolve.Resolve(schema)
	if err != nil {
		t.Fatal(err)
	}

	files := generate(t, resolved)
	flat := strings.Join(strings.Fields(string(files["types.gen.go"])), " ")
	for _, want := range []string{
		"type Node struct { Id uuid.UUID `json:\"id\"` Label *string `json:\"label,omitempty\"` Weight float64 `json:\"weight\"` }",
		"type HyperEdge struct { Id uuid.UUID `json:\"id\"` Nodes []uuid.UUID `json:\"nodes\"` Label *string `json:\"label,omitempty\"` }",
	} {
		if !strings.Contains(flat, want) {
			t.Errorf("types.gen.go missing %q\n%s", want, files["types.gen.go"])
		}
	}
	if !strings.Contains(string(files["codec.gen.go"]), "return json.Marshal(v)") {
		t.Error("codec.gen.go must serialize through the struct's json tags")
	}
}

func TestGenerate_NilCollectionCaveatDocumented(t *testing.T) {
	files := generate(t, testSchema(t))

	codec := string(files["codec.gen.go"])
	idx := strings.Index(codec, "// SerializeHyperEdge")
	if idx == -1 {
		t.Fatal("SerializeHyperEdge doc comment not found")
	}
	if !strings.Contains(codec[idx:], "must be non-nil") {
		t.Error("serializer for a type with required collections lacks the nil caveat")
	}
	// Node has no required collection field, so no caveat.
	nodeIdx := strings.Index(codec, "// SerializeNode")
	if nodeIdx == -1 {
		t.Fatal("SerializeNode doc comment not found")
	}
	nodeDoc := codec[nodeIdx:strings.Index(codec[nodeIdx:], "func ")+nodeIdx]
	if strings.Contains(nodeDoc, "must be non-nil") {
		t.Error("nil caveat emitted for a type without nilable required fields")
	}
}

func TestGenerate_FieldCasingCollisionFails(t *testing.T) {
	schema := &ir.Schema{}
	schema.AddType(&ir.Composite{
		Name: "Account",
		Fields: []ir.FieldDef{
			{Name: "user_id", Type: ir.Primitive(ir.PrimitiveString)},
			{Name: "userId", Type: ir.Primitive(ir.PrimitiveString)},
		},
	})
	resolved, err := resolve.Resolve(schema)
	if err != nil {
		t.Fatal(err)
	}

	mem := sink.NewMemorySink()
	_, err = New().Generate(context.Background(), resolved, gen.Options{Sink: mem})
	var collision *gen.CollisionError
	if !errors.As(err, &collision) {
		t.Fatalf("Generate = %v, want *gen.CollisionError", err)
	}
	if collision.TypeName != "Account" || collision.Rendered != "UserId" {
		t.Errorf("error fields = %+v", collision)
	}
	if len(mem.Files()) != 0 {
		t.Error("files written despite collision error")
	}
}

func TestRegistry(t *testing.T) {
	g, ok := gen.Get("go")
	if !ok {
		t.Fatal("go generator not registered")
	}
	if g.Name() != "go" {
		t.Errorf("Name() = %q", g.Name())
	}
}
