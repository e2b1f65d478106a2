package golang

import (
	"bytes"
	"fmt"

	"github.com/msl-lang/mslc/mslgen/ir"
	"github.com/msl-lang/mslc/mslgen/resolve"
)

const fileHeader = "// Code generated by mslc. DO NOT EDIT.\n\n"

// emitter builds the Go source files for one resolved schema.
type emitter struct {
	pkg      string
	resolved *resolve.ResolvedSchema

	needUUID bool
	needTime bool
	needI64  bool
	needU64  bool
}

func newEmitter(pkg string, resolved *resolve.ResolvedSchema) *emitter {
	e := &emitter{pkg: pkg, resolved: resolved}

	scan := func(ref ir.TypeRef) {
		ir.WalkRefs(ref, func(r ir.TypeRef) {
			p, ok := r.(*ir.PrimitiveRef)
			if !ok {
				return
			}
			switch p.Primitive {
			case ir.PrimitiveUUID:
				e.needUUID = true
			case ir.PrimitiveTimestamp:
				e.needTime = true
			case ir.PrimitiveI64:
				e.needI64 = true
			case ir.PrimitiveU64:
				e.needU64 = true
			}
		})
		if m, ok := ref.(*ir.MapRef); ok {
			switch m.Key {
			case ir.PrimitiveUUID:
				e.needUUID = true
			case ir.PrimitiveI64:
				e.needI64 = true
			case ir.PrimitiveU64:
				e.needU64 = true
			}
		}
	}
	for _, t := range resolved.Ordered {
		if c, ok := t.(*ir.Composite); ok {
			for _, f := range c.Fields {
				scan(f.Type)
			}
		}
	}
	for _, fn := range resolved.Functions {
		scan(fn.Input)
		scan(fn.Output)
	}
	return e
}

// typeExpr renders a type reference as a Go type expression.
func (e *emitter) typeExpr(ref ir.TypeRef) string {
	switch r := ref.(type) {
	case *ir.PrimitiveRef:
		return profile.Primitives[r.Primitive]
	case *ir.NamedRef:
		return profile.TypeName(r.Name)
	case *ir.OptionalRef:
		return "*" + e.typeExpr(r.Inner)
	case *ir.ListRef:
		return "[]" + e.typeExpr(r.Element)
	case *ir.MapRef:
		return "map[" + profile.Primitives[r.Key] + "]" + e.typeExpr(r.Value)
	default:
		return "any"
	}
}

func (e *emitter) fileStart(buf *bytes.Buffer, imports ...string) {
	buf.WriteString(fileHeader)
	fmt.Fprintf(buf, "package %s\n\n", e.pkg)
	if len(imports) > 0 {
		buf.WriteString("import (\n")
		for _, imp := range imports {
			fmt.Fprintf(buf, "\t%q\n", imp)
		}
		buf.WriteString(")\n\n")
	}
}

// typesFile emits the type definitions: string-encoded 64-bit integer
// newtypes when used, one struct per composite in generation order, one
// string-backed constant group per enum.
func (e *emitter) typesFile() []byte {
	var buf bytes.Buffer

	var imports []string
	if e.needI64 || e.needU64 {
		imports = append(imports, "fmt", "strconv")
	}
	if e.needTime {
		imports = append(imports, "time")
	}
	if e.needUUID {
		imports = append(imports, "github.com/google/uuid")
	}
	e.fileStart(&buf, imports...)

	if e.needI64 {
		e.emitIntString(&buf, "Int64String", "int64", "ParseInt", "FormatInt")
	}
	if e.needU64 {
		e.emitIntString(&buf, "Uint64String", "uint64", "ParseUint", "FormatUint")
	}

	for _, t := range e.resolved.Ordered {
		switch t := t.(type) {
		case *ir.Composite:
			e.emitStruct(&buf, t)
		case *ir.Enum:
			e.emitEnum(&buf, t)
		}
	}
	return buf.Bytes()
}

// emitIntString emits a 64-bit integer newtype that travels as a decimal
// string, so decoders that parse JSON numbers as doubles keep every bit.
func (e *emitter) emitIntString(buf *bytes.Buffer, name, underlying, parseFn, formatFn string) {
	fmt.Fprintf(buf, "// %s is %s carried on the wire as a decimal string.\n", name, articleFor(underlying))
	fmt.Fprintf(buf, "type %s %s\n\n", name, underlying)

	fmt.Fprintf(buf, "func (v %s) MarshalJSON() ([]byte, error) {\n", name)
	fmt.Fprintf(buf, "\treturn strconv.AppendQuote(nil, strconv.%s(%s(v), 10)), nil\n", formatFn, underlying)
	buf.WriteString("}\n\n")

	fmt.Fprintf(buf, "func (v *%s) UnmarshalJSON(data []byte) error {\n", name)
	buf.WriteString("\ts, err := strconv.Unquote(string(data))\n")
	buf.WriteString("\tif err != nil {\n")
	fmt.Fprintf(buf, "\t\treturn fmt.Errorf(\"%s: wire form must be a decimal string\")\n", name)
	buf.WriteString("\t}\n")
	fmt.Fprintf(buf, "\tn, err := strconv.%s(s, 10, 64)\n", parseFn)
	buf.WriteString("\tif err != nil {\n\t\treturn err\n\t}\n")
	fmt.Fprintf(buf, "\t*v = %s(n)\n", name)
	buf.WriteString("\treturn nil\n}\n\n")
}

func articleFor(word string) string {
	if word == "int64" {
		return "an int64"
	}
	return "a " + word
}

func (e *emitter) emitStruct(buf *bytes.Buffer, c *ir.Composite) {
	fmt.Fprintf(buf, "type %s struct {\n", profile.TypeName(c.Name))
	for _, f := range c.Fields {
		tag := f.Name
		if _, optional := f.Type.(*ir.OptionalRef); optional {
			tag += ",omitempty"
		}
		fmt.Fprintf(buf, "\t%s %s `json:%q`\n", profile.FieldName(f.Name), e.typeExpr(f.Type), tag)
	}
	buf.WriteString("}\n\n")
}

func (e *emitter) emitEnum(buf *bytes.Buffer, en *ir.Enum) {
	typeName := profile.TypeName(en.Name)
	fmt.Fprintf(buf, "type %s string\n\n", typeName)

	buf.WriteString("const (\n")
	for _, v := range en.Variants {
		fmt.Fprintf(buf, "\t%s%s %s = %q\n", typeName, profile.TypeName(v), typeName, v)
	}
	buf.WriteString(")\n\n")

	fmt.Fprintf(buf, "// Valid reports whether v is a declared %s variant.\n", typeName)
	fmt.Fprintf(buf, "func (v %s) Valid() bool {\n\tswitch v {\n\tcase ", typeName)
	for i, variant := range en.Variants {
		if i > 0 {
			buf.WriteString(", ")
		}
		buf.WriteString(typeName + profile.TypeName(variant))
	}
	buf.WriteString(":\n\t\treturn true\n\t}\n\treturn false\n}\n\n")
}

// codecFile emits Serialize/Deserialize pairs for every named type.
// Composites lean on the struct's json tags; enums additionally reject
// undeclared variants on decode.
func (e *emitter) codecFile() []byte {
	var buf bytes.Buffer

	imports := []string{"encoding/json"}
	if e.hasEnums() {
		imports = append(imports, "fmt")
	}
	e.fileStart(&buf, imports...)

	for _, t := range e.resolved.Ordered {
		typeName := profile.TypeName(t.TypeName())

		fmt.Fprintf(&buf, "// Serialize%s encodes v to its wire form.\n", typeName)
		if c, ok := t.(*ir.Composite); ok && hasNilableRequired(c) {
			buf.WriteString("// Required slice, map, and byte fields must be non-nil: a nil value\n")
			buf.WriteString("// marshals as null, which decoders on other targets reject.\n")
		}
		fmt.Fprintf(&buf, "func Serialize%s(v %s) ([]byte, error) {\n", typeName, typeName)
		buf.WriteString("\treturn json.Marshal(v)\n}\n\n")

		fmt.Fprintf(&buf, "// Deserialize%s decodes the wire form of %s.\n", typeName, typeName)
		fmt.Fprintf(&buf, "func Deserialize%s(data []byte) (%s, error) {\n", typeName, typeName)
		fmt.Fprintf(&buf, "\tvar v %s\n", typeName)
		buf.WriteString("\tif err := json.Unmarshal(data, &v); err != nil {\n")
		fmt.Fprintf(&buf, "\t\treturn v, err\n\t}\n")
		if _, isEnum := e.resolved.FindType(t.TypeName()).(*ir.Enum); isEnum {
			buf.WriteString("\tif !v.Valid() {\n")
			fmt.Fprintf(&buf, "\t\treturn v, fmt.Errorf(\"unknown %s variant %%q\", string(v))\n", typeName)
			buf.WriteString("\t}\n")
		}
		buf.WriteString("\treturn v, nil\n}\n\n")
	}
	return buf.Bytes()
}

func (e *emitter) hasEnums() bool {
	for _, t := range e.resolved.Ordered {
		if _, ok := t.(*ir.Enum); ok {
			return true
		}
	}
	return false
}

// callsFile emits the native-boundary surface: the Runtime and
// CallResult interfaces plus one typed wrapper per function contract.
// Every wrapper releases the result buffer exactly once on every path.
func (e *emitter) callsFile() []byte {
	var buf bytes.Buffer
	e.fileStart(&buf, "encoding/json")

	buf.WriteString(`// Runtime dispatches serialized calls across the native boundary. It is
// provided by the host application, never generated. The host must call
// Init once, before the first Call.
type Runtime interface {
	Init() error
	Call(name string, input []byte) (CallResult, error)
}

// CallResult owns a native result buffer. Release must be called exactly
// once; Bytes is invalid afterwards.
type CallResult interface {
	Bytes() []byte
	Release()
}

`)

	for _, fn := range e.resolved.Functions {
		e.emitWrapper(&buf, fn)
	}
	return buf.Bytes()
}

func (e *emitter) emitWrapper(buf *bytes.Buffer, fn ir.FunctionContract) {
	wrapperName := "Call" + profile.TypeName(fn.Name)
	inputUnit := isUnitRef(fn.Input)
	outputUnit := isUnitRef(fn.Output)

	params := "rt Runtime"
	if !inputUnit {
		params += ", input " + e.typeExpr(fn.Input)
	}

	returns := "error"
	if !outputUnit {
		returns = fmt.Sprintf("(%s, error)", e.typeExpr(fn.Output))
	}

	fmt.Fprintf(buf, "// %s invokes the %q function.\n", wrapperName, fn.Name)
	fmt.Fprintf(buf, "func %s(%s) %s {\n", wrapperName, params, returns)

	fail := "err"
	if !outputUnit {
		fmt.Fprintf(buf, "\tvar zero %s\n", e.typeExpr(fn.Output))
		fail = "zero, err"
	}

	switch {
	case inputUnit:
		buf.WriteString("\tpayload := []byte(\"{}\")\n")
	default:
		if named, ok := fn.Input.(*ir.NamedRef); ok {
			fmt.Fprintf(buf, "\tpayload, err := Serialize%s(input)\n", profile.TypeName(named.Name))
		} else {
			buf.WriteString("\tpayload, err := json.Marshal(input)\n")
		}
		fmt.Fprintf(buf, "\tif err != nil {\n\t\treturn %s\n\t}\n", fail)
	}

	fmt.Fprintf(buf, "\tres, err := rt.Call(%q, payload)\n", fn.Name)
	fmt.Fprintf(buf, "\tif err != nil {\n\t\treturn %s\n\t}\n", fail)
	buf.WriteString("\tdefer res.Release()\n")

	switch {
	case outputUnit:
		buf.WriteString("\treturn nil\n")
	default:
		if named, ok := fn.Output.(*ir.NamedRef); ok {
			fmt.Fprintf(buf, "\tout, err := Deserialize%s(res.Bytes())\n", profile.TypeName(named.Name))
			fmt.Fprintf(buf, "\tif err != nil {\n\t\treturn %s\n\t}\n", fail)
		} else {
			fmt.Fprintf(buf, "\tvar out %s\n", e.typeExpr(fn.Output))
			buf.WriteString("\tif err := json.Unmarshal(res.Bytes(), &out); err != nil {\n")
			fmt.Fprintf(buf, "\t\treturn %s\n\t}\n", fail)
		}
		buf.WriteString("\treturn out, nil\n")
	}
	buf.WriteString("}\n\n")
}

// hasNilableRequired reports whether any required field of c has a Go
// representation that can be nil (slice, map, or byte slice).
func hasNilableRequired(c *ir.Composite) bool {
	for _, f := range c.Fields {
		switch r := f.Type.(type) {
		case *ir.ListRef, *ir.MapRef:
			return true
		case *ir.PrimitiveRef:
			if r.Primitive == ir.PrimitiveBytes {
				return true
			}
		}
	}
	return false
}

func isUnitRef(ref ir.TypeRef) bool {
	named, ok := ref.(*ir.NamedRef)
	return ok && named.Name == ir.UnitName
}
