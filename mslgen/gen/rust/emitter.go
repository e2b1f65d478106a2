package rust

import (
	"bytes"
	"fmt"

	"github.com/msl-lang/mslc/mslgen/gen"
	"github.com/msl-lang/mslc/mslgen/ir"
	"github.com/msl-lang/mslc/mslgen/resolve"
)

const fileHeader = "// Code generated by mslc. DO NOT EDIT.\n\n"

// emitter builds the single Rust output file.
type emitter struct {
	resolved *resolve.ResolvedSchema
	buf      bytes.Buffer

	needI64   bool
	needU64   bool
	needBytes bool
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
			case ir.PrimitiveBytes:
				e.needBytes = true
			}
		})
		if m, ok := ref.(*ir.MapRef); ok {
			switch m.Key {
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
	return e
}

func (e *emitter) emit() []byte {
	e.buf.WriteString(fileHeader)
	e.buf.WriteString("use serde::{Deserialize, Serialize};\n\n")

	if e.needI64 {
		e.emitIntStr("I64Str", "i64", "An i64")
	}
	if e.needU64 {
		e.emitIntStr("U64Str", "u64", "A u64")
	}
	if e.needBytes {
		e.emitBytesNewtype()
	}

	for _, t := range e.resolved.Ordered {
		switch t := t.(type) {
		case *ir.Composite:
			e.emitStruct(t)
		case *ir.Enum:
			e.emitEnum(t)
		}
	}

	for _, t := range e.resolved.Ordered {
		e.emitCodecPair(t)
	}
	return e.buf.Bytes()
}

// typeExpr renders a type reference as a Rust type expression.
func (e *emitter) typeExpr(ref ir.TypeRef) string {
	switch r := ref.(type) {
	case *ir.PrimitiveRef:
		return profile.Primitives[r.Primitive]
	case *ir.NamedRef:
		return profile.TypeName(r.Name)
	case *ir.OptionalRef:
		inner := e.typeExpr(r.Inner)
		if named, ok := r.Inner.(*ir.NamedRef); ok {
			// A struct can reach itself through an optional field; the
			// indirection keeps the type finite.
			if _, composite := e.resolved.FindType(named.Name).(*ir.Composite); composite {
				inner = "Box<" + inner + ">"
			}
		}
		return "Option<" + inner + ">"
	case *ir.ListRef:
		return "Vec<" + e.typeExpr(r.Element) + ">"
	case *ir.MapRef:
		return "std::collections::BTreeMap<" + profile.Primitives[r.Key] + ", " + e.typeExpr(r.Value) + ">"
	default:
		return "serde_json::Value"
	}
}

// emitIntStr emits a 64-bit integer newtype that travels as a decimal
// string, so decoders that parse JSON numbers as doubles keep every bit.
func (e *emitter) emitIntStr(name, underlying, article string) {
	fmt.Fprintf(&e.buf, "/// %s carried on the wire as a decimal string.\n", article)
	e.buf.WriteString("#[derive(Debug, Clone, Copy, PartialEq, Eq, Hash, PartialOrd, Ord, Default)]\n")
	fmt.Fprintf(&e.buf, "pub struct %s(pub %s);\n\n", name, underlying)

	fmt.Fprintf(&e.buf, "impl Serialize for %s {\n", name)
	e.buf.WriteString("    fn serialize<S: serde::Serializer>(&self, serializer: S) -> Result<S::Ok, S::Error> {\n")
	e.buf.WriteString("        serializer.serialize_str(&self.0.to_string())\n")
	e.buf.WriteString("    }\n}\n\n")

	fmt.Fprintf(&e.buf, "impl<'de> Deserialize<'de> for %s {\n", name)
	e.buf.WriteString("    fn deserialize<D: serde::Deserializer<'de>>(deserializer: D) -> Result<Self, D::Error> {\n")
	e.buf.WriteString("        let s = String::deserialize(deserializer)?;\n")
	fmt.Fprintf(&e.buf, "        s.parse::<%s>().map(%s).map_err(serde::de::Error::custom)\n", underlying, name)
	e.buf.WriteString("    }\n}\n\n")
}

// emitBytesNewtype emits binary data as standard base64 text, matching
// the wire format instead of serde_json's default number array.
func (e *emitter) emitBytesNewtype() {
	e.buf.WriteString(`/// Binary data carried on the wire as standard base64 text.
#[derive(Debug, Clone, PartialEq, Eq, Default)]
pub struct Bytes(pub Vec<u8>);

const BASE64_ALPHABET: &[u8; 64] =
    b"ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789+/";

fn base64_encode(data: &[u8]) -> String {
    let mut out = String::with_capacity(data.len().div_ceil(3) * 4);
    for chunk in data.chunks(3) {
        let b0 = chunk[0] as u32;
        let b1 = chunk.get(1).copied().unwrap_or(0) as u32;
        let b2 = chunk.get(2).copied().unwrap_or(0) as u32;
        out.push(BASE64_ALPHABET[(b0 >> 2) as usize] as char);
        out.push(BASE64_ALPHABET[(((b0 & 3) << 4) | (b1 >> 4)) as usize] as char);
        out.push(if chunk.len() > 1 {
            BASE64_ALPHABET[(((b1 & 15) << 2) | (b2 >> 6)) as usize] as char
        } else {
            '='
        });
        out.push(if chunk.len() > 2 {
            BASE64_ALPHABET[(b2 & 63) as usize] as char
        } else {
            '='
        });
    }
    out
}

fn base64_decode(text: &str) -> Result<Vec<u8>, String> {
    let clean = text.trim_end_matches('=');
    let mut out = Vec::with_capacity(clean.len() * 3 / 4);
    let mut acc: u32 = 0;
    let mut bits: u32 = 0;
    for ch in clean.bytes() {
        let idx = BASE64_ALPHABET
            .iter()
            .position(|&c| c == ch)
            .ok_or_else(|| "invalid base64 input".to_string())?;
        acc = (acc << 6) | idx as u32;
        bits += 6;
        if bits >= 8 {
            bits -= 8;
            out.push((acc >> bits) as u8);
        }
    }
    Ok(out)
}

impl Serialize for Bytes {
    fn serialize<S: serde::Serializer>(&self, serializer: S) -> Result<S::Ok, S::Error> {
        serializer.serialize_str(&base64_encode(&self.0))
    }
}

impl<'de> Deserialize<'de> for Bytes {
    fn deserialize<D: serde::Deserializer<'de>>(deserializer: D) -> Result<Self, D::Error> {
        let s = String::deserialize(deserializer)?;
        base64_decode(&s).map(Bytes).map_err(serde::de::Error::custom)
    }
}

`)
}

func (e *emitter) emitStruct(c *ir.Composite) {
	fmt.Fprintf(&e.buf, "#[derive(Debug, Clone, PartialEq, Serialize, Deserialize)]\n")
	fmt.Fprintf(&e.buf, "pub struct %s {\n", profile.TypeName(c.Name))
	for _, f := range c.Fields {
		fieldName := profile.FieldName(f.Name)
		if fieldName != f.Name {
			fmt.Fprintf(&e.buf, "    #[serde(rename = %q)]\n", f.Name)
		}
		if _, optional := f.Type.(*ir.OptionalRef); optional {
			// Absent stays absent on both sides of the codec.
			e.buf.WriteString("    #[serde(skip_serializing_if = \"Option::is_none\", default)]\n")
		}
		fmt.Fprintf(&e.buf, "    pub %s: %s,\n", escapeKeyword(fieldName), e.typeExpr(f.Type))
	}
	e.buf.WriteString("}\n\n")
}

func (e *emitter) emitEnum(en *ir.Enum) {
	e.buf.WriteString("#[derive(Debug, Clone, Copy, PartialEq, Eq, Hash, Serialize, Deserialize)]\n")
	fmt.Fprintf(&e.buf, "pub enum %s {\n", profile.TypeName(en.Name))
	for _, v := range en.Variants {
		variant := profile.TypeName(v)
		if variant != v {
			fmt.Fprintf(&e.buf, "    #[serde(rename = %q)]\n", v)
		}
		fmt.Fprintf(&e.buf, "    %s,\n", variant)
	}
	e.buf.WriteString("}\n\n")
}

func (e *emitter) emitCodecPair(t ir.NamedType) {
	typeName := profile.TypeName(t.TypeName())
	fnName := toSnake(t.TypeName())

	fmt.Fprintf(&e.buf, "/// Encodes a %s to its wire form.\n", typeName)
	fmt.Fprintf(&e.buf, "pub fn serialize_%s(v: &%s) -> Result<Vec<u8>, serde_json::Error> {\n", fnName, typeName)
	e.buf.WriteString("    serde_json::to_vec(v)\n}\n\n")

	fmt.Fprintf(&e.buf, "/// Decodes the wire form of a %s.\n", typeName)
	fmt.Fprintf(&e.buf, "pub fn deserialize_%s(data: &[u8]) -> Result<%s, serde_json::Error> {\n", fnName, typeName)
	e.buf.WriteString("    serde_json::from_slice(data)\n}\n\n")
}

func toSnake(name string) string {
	p := gen.Profile{FieldCase: "snake"}
	return p.FieldName(name)
}

// rustKeywords are field identifiers that need the raw prefix.
var rustKeywords = map[string]bool{
	"as": true, "break": true, "const": true, "continue": true,
	"crate": true, "else": true, "enum": true, "fn": true, "for": true,
	"if": true, "impl": true, "in": true, "let": true, "loop": true,
	"match": true, "mod": true, "move": true, "mut": true, "pub": true,
	"ref": true, "return": true, "self": true, "static": true,
	"struct": true, "super": true, "trait": true, "true": true,
	"type": true, "unsafe": true, "use": true, "where": true, "while": true,
}

func escapeKeyword(name string) string {
	if rustKeywords[name] {
		return "r#" + name
	}
	return name
}
