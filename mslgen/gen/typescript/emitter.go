package typescript

import (
	"bytes"
	"fmt"

	"github.com/msl-lang/mslc/mslgen/ir"
	"github.com/msl-lang/mslc/mslgen/resolve"
)

const fileHeader = "// Code generated by mslc. DO NOT EDIT.\n\n"

// emitter builds the single TypeScript output file: type declarations,
// per-type wire conversion helpers, serialize/deserialize pairs, and the
// native-call surface.
type emitter struct {
	resolved *resolve.ResolvedSchema
	buf      bytes.Buffer

	needBytes bool
}

func newEmitter(resolved *resolve.ResolvedSchema) *emitter {
	e := &emitter{resolved: resolved}

	scan := func(ref ir.TypeRef) {
		ir.WalkRefs(ref, func(r ir.TypeRef) {
			if p, ok := r.(*ir.PrimitiveRef); ok && p.Primitive == ir.PrimitiveBytes {
				e.needBytes = true
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
	for _, fn := range resolved.Functions {
		scan(fn.Input)
		scan(fn.Output)
	}
	return e
}

func (e *emitter) emit() []byte {
	e.buf.WriteString(fileHeader)

	if e.needBytes {
		e.emitBase64Helpers()
	}

	for _, t := range e.resolved.Ordered {
		switch t := t.(type) {
		case *ir.Composite:
			e.emitComposite(t)
		case *ir.Enum:
			e.emitEnum(t)
		}
	}

	for _, t := range e.resolved.Ordered {
		e.emitCodecPair(t)
	}

	if len(e.resolved.Functions) > 0 {
		e.emitCallSurface()
	}
	return e.buf.Bytes()
}

// typeExpr renders a type reference as a TypeScript type expression.
func (e *emitter) typeExpr(ref ir.TypeRef) string {
	switch r := ref.(type) {
	case *ir.PrimitiveRef:
		return profile.Primitives[r.Primitive]
	case *ir.NamedRef:
		return profile.TypeName(r.Name)
	case *ir.OptionalRef:
		return e.typeExpr(r.Inner) + " | null"
	case *ir.ListRef:
		elem := e.typeExpr(r.Element)
		if _, optional := r.Element.(*ir.OptionalRef); optional {
			elem = "(" + elem + ")"
		}
		return elem + "[]"
	case *ir.MapRef:
		// Keys are the key kind's canonical wire text.
		return "Record<string, " + e.typeExpr(r.Value) + ">"
	default:
		return "unknown"
	}
}

func (e *emitter) emitComposite(c *ir.Composite) {
	name := profile.TypeName(c.Name)
	fmt.Fprintf(&e.buf, "export interface %s {\n", name)
	for _, f := range c.Fields {
		if opt, ok := f.Type.(*ir.OptionalRef); ok {
			fmt.Fprintf(&e.buf, "  %s?: %s;\n", f.Name, e.typeExpr(opt.Inner))
			continue
		}
		fmt.Fprintf(&e.buf, "  %s: %s;\n", f.Name, e.typeExpr(f.Type))
	}
	e.buf.WriteString("}\n\n")

	e.emitCompositeToWire(c)
	e.emitCompositeFromWire(c)
}

func (e *emitter) emitCompositeToWire(c *ir.Composite) {
	name := profile.TypeName(c.Name)
	fmt.Fprintf(&e.buf, "function %sToWire(v: %s): unknown {\n", lowerFirst(name), name)
	e.buf.WriteString("  const w: Record<string, unknown> = {};\n")
	for _, f := range c.Fields {
		access := "v." + f.Name
		if opt, ok := f.Type.(*ir.OptionalRef); ok {
			// Absent stays absent: the key is omitted entirely.
			fmt.Fprintf(&e.buf, "  if (%s !== undefined && %s !== null) {\n", access, access)
			fmt.Fprintf(&e.buf, "    w[%q] = %s;\n", f.Name, e.encodeExpr(opt.Inner, access, 0))
			e.buf.WriteString("  }\n")
			continue
		}
		fmt.Fprintf(&e.buf, "  w[%q] = %s;\n", f.Name, e.encodeExpr(f.Type, access, 0))
	}
	e.buf.WriteString("  return w;\n}\n\n")
}

func (e *emitter) emitCompositeFromWire(c *ir.Composite) {
	name := profile.TypeName(c.Name)
	fmt.Fprintf(&e.buf, "function %sFromWire(w: any): %s {\n", lowerFirst(name), name)
	fmt.Fprintf(&e.buf, "  const v: any = {};\n")
	for _, f := range c.Fields {
		access := fmt.Sprintf("w[%q]", f.Name)
		if opt, ok := f.Type.(*ir.OptionalRef); ok {
			fmt.Fprintf(&e.buf, "  if (%s !== undefined && %s !== null) {\n", access, access)
			fmt.Fprintf(&e.buf, "    v.%s = %s;\n", f.Name, e.decodeExpr(opt.Inner, access, 0))
			e.buf.WriteString("  }\n")
			continue
		}
		fmt.Fprintf(&e.buf, "  if (%s === undefined) {\n", access)
		fmt.Fprintf(&e.buf, "    throw new Error(\"%s: missing required field '%s'\");\n", name, f.Name)
		e.buf.WriteString("  }\n")
		fmt.Fprintf(&e.buf, "  v.%s = %s;\n", f.Name, e.decodeExpr(f.Type, access, 0))
	}
	fmt.Fprintf(&e.buf, "  return v as %s;\n}\n\n", name)
}

func (e *emitter) emitEnum(en *ir.Enum) {
	name := profile.TypeName(en.Name)

	fmt.Fprintf(&e.buf, "export type %s =", name)
	for i, v := range en.Variants {
		if i > 0 {
			e.buf.WriteString(" |")
		}
		fmt.Fprintf(&e.buf, " %q", v)
	}
	e.buf.WriteString(";\n\n")

	fmt.Fprintf(&e.buf, "const %s_VARIANTS: ReadonlySet<string> = new Set([", screamingName(en.Name))
	for i, v := range en.Variants {
		if i > 0 {
			e.buf.WriteString(", ")
		}
		fmt.Fprintf(&e.buf, "%q", v)
	}
	e.buf.WriteString("]);\n\n")

	fmt.Fprintf(&e.buf, "function %sFromWire(w: any): %s {\n", lowerFirst(name), name)
	fmt.Fprintf(&e.buf, "  if (typeof w !== \"string\" || !%s_VARIANTS.has(w)) {\n", screamingName(en.Name))
	fmt.Fprintf(&e.buf, "    throw new Error(`unknown %s variant ${w}`);\n", name)
	e.buf.WriteString("  }\n")
	fmt.Fprintf(&e.buf, "  return w as %s;\n}\n\n", name)
}

// encodeExpr renders the expression converting a runtime value to its
// wire form. depth disambiguates nested lambda parameters.
func (e *emitter) encodeExpr(ref ir.TypeRef, v string, depth int) string {
	switch r := ref.(type) {
	case *ir.PrimitiveRef:
		switch r.Primitive {
		case ir.PrimitiveI64, ir.PrimitiveU64:
			return v + ".toString()"
		case ir.PrimitiveBytes:
			return "bytesToBase64(" + v + ")"
		case ir.PrimitiveUUID:
			return v + ".toLowerCase()"
		case ir.PrimitiveTimestamp:
			return v + ".toISOString()"
		default:
			return v
		}
	case *ir.NamedRef:
		if _, isComposite := e.resolved.FindType(r.Name).(*ir.Composite); isComposite {
			return lowerFirst(profile.TypeName(r.Name)) + "ToWire(" + v + ")"
		}
		// Enum variants and Unit pass through.
		return v
	case *ir.OptionalRef:
		inner := e.encodeExpr(r.Inner, v, depth)
		return fmt.Sprintf("(%s === undefined || %s === null ? null : %s)", v, v, inner)
	case *ir.ListRef:
		elem := fmt.Sprintf("e%d", depth)
		return fmt.Sprintf("%s.map((%s) => %s)", v, elem, e.encodeExpr(r.Element, elem, depth+1))
	case *ir.MapRef:
		key := fmt.Sprintf("k%d", depth)
		val := fmt.Sprintf("m%d", depth)
		return fmt.Sprintf("Object.fromEntries(Object.entries(%s).map(([%s, %s]) => [%s, %s]))",
			v, key, val, key, e.encodeExpr(r.Value, val, depth+1))
	default:
		return v
	}
}

// decodeExpr renders the expression converting a wire value back to its
// runtime form.
func (e *emitter) decodeExpr(ref ir.TypeRef, v string, depth int) string {
	switch r := ref.(type) {
	case *ir.PrimitiveRef:
		switch r.Primitive {
		case ir.PrimitiveI64, ir.PrimitiveU64:
			return "BigInt(" + v + ")"
		case ir.PrimitiveBytes:
			return "base64ToBytes(" + v + ")"
		case ir.PrimitiveUUID:
			return "String(" + v + ").toLowerCase()"
		case ir.PrimitiveTimestamp:
			return "new Date(" + v + ")"
		default:
			return v
		}
	case *ir.NamedRef:
		if r.Name == ir.UnitName {
			return v
		}
		return lowerFirst(profile.TypeName(r.Name)) + "FromWire(" + v + ")"
	case *ir.OptionalRef:
		inner := e.decodeExpr(r.Inner, v, depth)
		return fmt.Sprintf("(%s === undefined || %s === null ? null : %s)", v, v, inner)
	case *ir.ListRef:
		elem := fmt.Sprintf("e%d", depth)
		return fmt.Sprintf("%s.map((%s: any) => %s)", v, elem, e.decodeExpr(r.Element, elem, depth+1))
	case *ir.MapRef:
		key := fmt.Sprintf("k%d", depth)
		val := fmt.Sprintf("m%d", depth)
		return fmt.Sprintf("Object.fromEntries(Object.entries(%s).map(([%s, %s]: [string, any]) => [%s, %s]))",
			v, key, val, key, e.decodeExpr(r.Value, val, depth+1))
	default:
		return v
	}
}

func (e *emitter) emitCodecPair(t ir.NamedType) {
	name := profile.TypeName(t.TypeName())

	fmt.Fprintf(&e.buf, "export function serialize%s(v: %s): string {\n", name, name)
	switch t.(type) {
	case *ir.Composite:
		fmt.Fprintf(&e.buf, "  return JSON.stringify(%sToWire(v));\n", lowerFirst(name))
	case *ir.Enum:
		e.buf.WriteString("  return JSON.stringify(v);\n")
	}
	e.buf.WriteString("}\n\n")

	fmt.Fprintf(&e.buf, "export function deserialize%s(text: string): %s {\n", name, name)
	fmt.Fprintf(&e.buf, "  return %sFromWire(JSON.parse(text));\n", lowerFirst(name))
	e.buf.WriteString("}\n\n")
}

func (e *emitter) emitCallSurface() {
	e.buf.WriteString(`/**
 * CallResult owns a native result buffer. release must be called exactly
 * once; payload is invalid afterwards.
 */
export interface CallResult {
  readonly payload: string;
  release(): void;
}

/**
 * Runtime dispatches serialized calls across the native boundary. It is
 * provided by the host application, never generated. The host must call
 * init once, before the first call.
 */
export interface Runtime {
  init(): void;
  call(name: string, payload: string): CallResult;
}

`)

	for _, fn := range e.resolved.Functions {
		e.emitWrapper(fn)
	}
}

func (e *emitter) emitWrapper(fn ir.FunctionContract) {
	wrapperName := "call" + profile.TypeName(fn.Name)
	inputUnit := isUnitRef(fn.Input)
	outputUnit := isUnitRef(fn.Output)

	params := "rt: Runtime"
	if !inputUnit {
		params += ", input: " + e.typeExpr(fn.Input)
	}
	returns := "void"
	if !outputUnit {
		returns = e.typeExpr(fn.Output)
	}

	fmt.Fprintf(&e.buf, "export function %s(%s): %s {\n", wrapperName, params, returns)

	payload := `"{}"`
	if !inputUnit {
		payload = "JSON.stringify(" + e.encodeExpr(fn.Input, "input", 0) + ")"
	}
	fmt.Fprintf(&e.buf, "  const res = rt.call(%q, %s);\n", fn.Name, payload)

	if outputUnit {
		e.buf.WriteString("  res.release();\n}\n\n")
		return
	}
	e.buf.WriteString("  try {\n")
	e.buf.WriteString("    const w = JSON.parse(res.payload);\n")
	fmt.Fprintf(&e.buf, "    return %s;\n", e.decodeExpr(fn.Output, "w", 0))
	e.buf.WriteString("  } finally {\n    res.release();\n  }\n}\n\n")
}

func (e *emitter) emitBase64Helpers() {
	e.buf.WriteString(`const BASE64_ALPHABET =
  "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789+/";

function bytesToBase64(bytes: Uint8Array): string {
  let out = "";
  for (let i = 0; i < bytes.length; i += 3) {
    const b0 = bytes[i];
    const b1 = i + 1 < bytes.length ? bytes[i + 1] : 0;
    const b2 = i + 2 < bytes.length ? bytes[i + 2] : 0;
    out += BASE64_ALPHABET[b0 >> 2];
    out += BASE64_ALPHABET[((b0 & 3) << 4) | (b1 >> 4)];
    out += i + 1 < bytes.length ? BASE64_ALPHABET[((b1 & 15) << 2) | (b2 >> 6)] : "=";
    out += i + 2 < bytes.length ? BASE64_ALPHABET[b2 & 63] : "=";
  }
  return out;
}

function base64ToBytes(text: string): Uint8Array {
  const clean = text.replace(/=+$/, "");
  const out = new Uint8Array(Math.floor((clean.length * 3) / 4));
  let acc = 0;
  let bits = 0;
  let n = 0;
  for (const ch of clean) {
    const idx = BASE64_ALPHABET.indexOf(ch);
    if (idx < 0) {
      throw new Error("invalid base64 input");
    }
    acc = (acc << 6) | idx;
    bits += 6;
    if (bits >= 8) {
      bits -= 8;
      out[n++] = (acc >> bits) & 0xff;
    }
  }
  return out;
}

`)
}

func isUnitRef(ref ir.TypeRef) bool {
	named, ok := ref.(*ir.NamedRef)
	return ok && named.Name == ir.UnitName
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	b := []byte(s)
	if b[0] >= 'A' && b[0] <= 'Z' {
		b[0] += 'a' - 'A'
	}
	return string(b)
}

// screamingName renders the SCREAMING_SNAKE constant prefix for an enum.
func screamingName(name string) string {
	var out []byte
	for i := 0; i < len(name); i++ {
		c := name[i]
		if c >= 'a' && c <= 'z' {
			out = append(out, c-'a'+'A')
			continue
		}
		if c >= 'A' && c <= 'Z' && i > 0 && name[i-1] >= 'a' && name[i-1] <= 'z' {
			out = append(out, '_')
		}
		out = append(out, c)
	}
	return string(out)
}
