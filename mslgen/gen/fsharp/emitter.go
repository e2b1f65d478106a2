package fsharp

import (
	"bytes"
	"fmt"

	"github.com/msl-lang/mslc/mslgen/ir"
	"github.com/msl-lang/mslc/mslgen/resolve"
)

const fileHeader = "// Code generated by mslc. DO NOT EDIT.\n\n"

// emitter builds the single F# output file.
type emitter struct {
	resolved *resolve.ResolvedSchema
	buf      bytes.Buffer

	needI64  bool
	needU64  bool
	needTime bool
}

func newEmitter(resolved *resolve.ResolvedSchema) *emitter {
	e := &emitter{resolved: resolved}

	scan := func(ref ir.TypeRef) {
		ir.WalkRefs(ref, func(r ir.TypeRef) {
			p, ok := r.(*ir.PrimitiveRef)
			if !ok {
				return
			}
			switch p.Primitive {
			case ir.PrimitiveI64:
				e.needI64 = true
			case ir.PrimitiveU64:
				e.needU64 = true
			case ir.PrimitiveTimestamp:
				e.needTime = true
			}
		})
	}
	for _, t := range resolved.Ordered {
		if c, ok := t.(*ir.Composite); ok {
			for _, f := range c.Fields {
				scan(f.Type)
			}
		}
	}
	return e
}

func (e *emitter) emit() []byte {
	e.buf.WriteString(fileHeader)
	e.buf.WriteString("namespace Schema\n\n")
	e.buf.WriteString("open System\n")
	e.buf.WriteString("open System.Text.Json\n")
	e.buf.WriteString("open System.Text.Json.Serialization\n\n")

	if e.needI64 {
		e.emitIntStrConverter("Int64StringConverter", "int64")
	}
	if e.needU64 {
		e.emitIntStrConverter("UInt64StringConverter", "uint64")
	}
	if e.needTime {
		e.emitTimestampConverter()
	}

	for _, t := range e.resolved.Ordered {
		switch t := t.(type) {
		case *ir.Composite:
			e.emitRecord(t)
		case *ir.Enum:
			e.emitUnion(t)
		}
	}

	e.emitCodecModule()
	return e.buf.Bytes()
}

// typeExpr renders a type reference as an F# type expression. Option
// and array are postfix, so nesting needs no parentheses.
func (e *emitter) typeExpr(ref ir.TypeRef) string {
	switch r := ref.(type) {
	case *ir.PrimitiveRef:
		return profile.Primitives[r.Primitive]
	case *ir.NamedRef:
		return profile.TypeName(r.Name)
	case *ir.OptionalRef:
		return e.typeExpr(r.Inner) + " option"
	case *ir.ListRef:
		return e.typeExpr(r.Element) + "[]"
	case *ir.MapRef:
		return "Map<string, " + e.typeExpr(r.Value) + ">"
	default:
		return "obj"
	}
}

// emitIntStrConverter emits a JsonConverter carrying a 64-bit integer
// as a decimal string, so decoders that parse JSON numbers as doubles
// keep every bit.
func (e *emitter) emitIntStrConverter(name, underlying string) {
	fmt.Fprintf(&e.buf, "type %s() =\n", name)
	fmt.Fprintf(&e.buf, "    inherit JsonConverter<%s>()\n", underlying)
	fmt.Fprintf(&e.buf, "    override _.Read(reader, _typ, _opts) = %s (reader.GetString())\n", underlying)
	e.buf.WriteString("    override _.Write(writer, value, _opts) = writer.WriteStringValue(string value)\n\n")
}

// emitTimestampConverter emits a JsonConverter pinning timestamps to
// UTC RFC 3339 text ending in Z.
func (e *emitter) emitTimestampConverter() {
	e.buf.WriteString("type TimestampConverter() =\n")
	e.buf.WriteString("    inherit JsonConverter<DateTimeOffset>()\n")
	e.buf.WriteString("    override _.Read(reader, _typ, _opts) =\n")
	e.buf.WriteString("        DateTimeOffset.Parse(reader.GetString(), null, Globalization.DateTimeStyles.RoundtripKind)\n")
	e.buf.WriteString("    override _.Write(writer, value, _opts) =\n")
	e.buf.WriteString("        writer.WriteStringValue(value.UtcDateTime.ToString(\"O\"))\n\n")
}

func (e *emitter) emitRecord(c *ir.Composite) {
	typeName := profile.TypeName(c.Name)

	// F# records cannot be empty; an empty composite becomes a plain
	// class, which serializes to {} either way.
	if len(c.Fields) == 0 {
		fmt.Fprintf(&e.buf, "type %s() =\n    class end\n\n", typeName)
		return
	}

	fmt.Fprintf(&e.buf, "type %s =\n", typeName)
	for i, f := range c.Fields {
		prefix, suffix := "      ", ""
		if i == 0 {
			prefix = "    { "
		}
		if i == len(c.Fields)-1 {
			suffix = " }"
		}
		member := profile.FieldName(f.Name)
		attr := ""
		if member != f.Name {
			attr = fmt.Sprintf("[<JsonPropertyName(%q)>] ", f.Name)
		}
		fmt.Fprintf(&e.buf, "%s%s%s: %s%s\n", prefix, attr, escapeKeyword(member), e.typeExpr(f.Type), suffix)
	}
	e.buf.WriteString("\n")
}

func (e *emitter) emitUnion(en *ir.Enum) {
	fmt.Fprintf(&e.buf, "type %s =\n", profile.TypeName(en.Name))
	for _, v := range en.Variants {
		caseName := profile.TypeName(v)
		if caseName != v {
			fmt.Fprintf(&e.buf, "    | [<JsonPropertyName(%q)>] %s\n", v, caseName)
		} else {
			fmt.Fprintf(&e.buf, "    | %s\n", caseName)
		}
	}
	e.buf.WriteString("\n")
}

// emitCodecModule emits the serializer options plus one
// serialize/deserialize pair per named type. Fieldless unions travel
// as their case-name string and None fields are omitted entirely, both
// via FSharp.SystemTextJson.
func (e *emitter) emitCodecModule() {
	e.buf.WriteString("module Codec =\n")
	e.buf.WriteString("    let options =\n")
	e.buf.WriteString("        let o =\n")
	e.buf.WriteString("            JsonFSharpOptions.Default()\n")
	e.buf.WriteString("                .WithUnionUnwrapFieldlessTags()\n")
	e.buf.WriteString("                .WithSkippableOptionFields()\n")
	e.buf.WriteString("                .ToJsonSerializerOptions()\n")
	if e.needI64 {
		e.buf.WriteString("        o.Converters.Add(Int64StringConverter())\n")
	}
	if e.needU64 {
		e.buf.WriteString("        o.Converters.Add(UInt64StringConverter())\n")
	}
	if e.needTime {
		e.buf.WriteString("        o.Converters.Add(TimestampConverter())\n")
	}
	e.buf.WriteString("        o\n\n")

	for _, t := range e.resolved.Ordered {
		typeName := profile.TypeName(t.TypeName())
		fmt.Fprintf(&e.buf, "    let serialize%s (v: %s) : byte[] =\n", typeName, typeName)
		e.buf.WriteString("        JsonSerializer.SerializeToUtf8Bytes(v, options)\n\n")
		fmt.Fprintf(&e.buf, "    let deserialize%s (data: byte[]) : %s =\n", typeName, typeName)
		fmt.Fprintf(&e.buf, "        JsonSerializer.Deserialize<%s>(ReadOnlySpan(data), options)\n\n", typeName)
	}
}

// fsharpKeywords are member identifiers that need double-backtick
// quoting.
var fsharpKeywords = map[string]bool{
	"and": true, "as": true, "base": true, "begin": true, "class": true,
	"default": true, "do": true, "done": true, "downcast": true,
	"elif": true, "else": true, "end": true, "exception": true,
	"extern": true, "false": true, "finally": true, "fixed": true,
	"for": true, "fun": true, "function": true, "global": true,
	"if": true, "in": true, "inherit": true, "inline": true,
	"interface": true, "internal": true, "lazy": true, "let": true,
	"match": true, "member": true, "module": true, "mutable": true,
	"namespace": true, "new": true, "null": true, "of": true,
	"open": true, "or": true, "override": true, "private": true,
	"public": true, "rec": true, "return": true, "static": true,
	"struct": true, "then": true, "to": true, "true": true, "try": true,
	"type": true, "upcast": true, "use": true, "val": true, "void": true,
	"when": true, "while": true, "with": true, "yield": true,
}

func escapeKeyword(name string) string {
	if fsharpKeywords[name] {
		return "``" + name + "``"
	}
	return name
}
