// Package wire is the reference implementation of the interchange format
// every generated codec must agree on. It encodes schema-typed dynamic
// values to canonical JSON and back, guided by resolved type references.
//
// Canonical primitive encodings:
//
//	bool            true/false
//	i32, u32        JSON number
//	i64, u64        decimal string (survives double-precision decoders)
//	f32, f64        JSON number, finite only
//	string          UTF-8 text
//	bytes           standard base64 text
//	uuid            lowercase hyphenated text
//	timestamp       RFC 3339 UTC text
//
// Optional values are omitted when absent (null where a key cannot be
// omitted, e.g. inside lists). Composites encode one key per field in
// declared order; enums encode the variant name; map keys use the key
// primitive's canonical text form, sorted for deterministic bytes.
package wire

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"math"
	"sort"
	"strconv"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/msl-lang/mslc/mslgen/ir"
	"github.com/msl-lang/mslc/mslgen/resolve"
)

// Codec encodes and decodes dynamic values for one resolved schema.
//
// Dynamic value mapping per type reference:
//
//	bool → bool, i32 → int32, i64 → int64, u32 → uint32, u64 → uint64,
//	f32 → float32, f64 → float64, string → string, bytes → []byte,
//	uuid → uuid.UUID, timestamp → time.Time, list → []any,
//	map → map[string]any (canonical key text), composite → map[string]any
//	keyed by field name, enum → variant string, absent optional → nil.
type Codec struct {
	resolved *resolve.ResolvedSchema
}

// NewCodec creates a codec over a resolved schema.
func NewCodec(resolved *resolve.ResolvedSchema) *Codec {
	return &Codec{resolved: resolved}
}

// Encode serializes a dynamic value of the given named type.
func (c *Codec) Encode(typeName string, v any) ([]byte, error) {
	var buf bytes.Buffer
	if err := c.encodeRef(&buf, ir.Named(typeName), v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Decode deserializes data into a dynamic value of the given named type.
func (c *Codec) Decode(typeName string, data []byte) (any, error) {
	var raw any
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("decode %s: %w", typeName, err)
	}
	return c.decodeRef(ir.Named(typeName), raw)
}

// EncodeRef serializes a dynamic value of an arbitrary type reference.
func (c *Codec) EncodeRef(ref ir.TypeRef, v any) ([]byte, error) {
	var buf bytes.Buffer
	if err := c.encodeRef(&buf, ref, v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// DecodeRef deserializes data guided by an arbitrary type reference.
func (c *Codec) DecodeRef(ref ir.TypeRef, data []byte) (any, error) {
	var raw any
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&raw); err != nil {
		return nil, err
	}
	return c.decodeRef(ref, raw)
}

func (c *Codec) encodeRef(buf *bytes.Buffer, ref ir.TypeRef, v any) error {
	switch r := ref.(type) {
	case *ir.PrimitiveRef:
		return encodePrimitive(buf, r.Primitive, v)

	case *ir.OptionalRef:
		if v == nil {
			buf.WriteString("null")
			return nil
		}
		return c.encodeRef(buf, r.Inner, v)

	case *ir.ListRef:
		items, ok := v.([]any)
		if !ok {
			return fmt.Errorf("list value must be []any, got %T", v)
		}
		buf.WriteByte('[')
		for i, item := range items {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := c.encodeRef(buf, r.Element, item); err != nil {
				return err
			}
		}
		buf.WriteByte(']')
		return nil

	case *ir.MapRef:
		m, ok := v.(map[string]any)
		if !ok {
			return fmt.Errorf("map value must be map[string]any, got %T", v)
		}
		// Values stay addressable by their original key text; only the
		// emitted key is canonical.
		type keyPair struct {
			canonical, original string
		}
		pairs := make([]keyPair, 0, len(m))
		for k := range m {
			canonical, err := canonicalKey(r.Key, k)
			if err != nil {
				return err
			}
			pairs = append(pairs, keyPair{canonical: canonical, original: k})
		}
		sort.Slice(pairs, func(i, j int) bool { return pairs[i].canonical < pairs[j].canonical })
		buf.WriteByte('{')
		for i, p := range pairs {
			if i > 0 {
				if p.canonical == pairs[i-1].canonical {
					return fmt.Errorf("map keys %q and %q collide after canonicalization", pairs[i-1].original, p.original)
				}
				buf.WriteByte(',')
			}
			writeJSONString(buf, p.canonical)
			buf.WriteByte(':')
			if err := c.encodeRef(buf, r.Value, m[p.original]); err != nil {
				return err
			}
		}
		buf.WriteByte('}')
		return nil

	case *ir.NamedRef:
		return c.encodeNamed(buf, r.Name, v)

	default:
		return fmt.Errorf("unhandled type reference %s", ref.Kind())
	}
}

func (c *Codec) encodeNamed(buf *bytes.Buffer, name string, v any) error {
	if name == ir.UnitName {
		buf.WriteString("{}")
		return nil
	}

	switch t := c.resolved.FindType(name).(type) {
	case *ir.Composite:
		m, ok := v.(map[string]any)
		if !ok {
			return fmt.Errorf("value for composite %q must be map[string]any, got %T", name, v)
		}
		buf.WriteByte('{')
		first := true
		for _, f := range t.Fields {
			fv, present := m[f.Name]
			if opt, isOpt := f.Type.(*ir.OptionalRef); isOpt {
				// Absent optional fields are omitted entirely.
				if !present || fv == nil {
					continue
				}
				if !first {
					buf.WriteByte(',')
				}
				first = false
				writeJSONString(buf, f.Name)
				buf.WriteByte(':')
				if err := c.encodeRef(buf, opt.Inner, fv); err != nil {
					return err
				}
				continue
			}
			if !present {
				return fmt.Errorf("composite %q missing required field %q", name, f.Name)
			}
			if !first {
				buf.WriteByte(',')
			}
			first = false
			writeJSONString(buf, f.Name)
			buf.WriteByte(':')
			if err := c.encodeRef(buf, f.Type, fv); err != nil {
				return fmt.Errorf("field %q: %w", f.Name, err)
			}
		}
		buf.WriteByte('}')
		return nil

	case *ir.Enum:
		variant, ok := v.(string)
		if !ok {
			return fmt.Errorf("value for enum %q must be a variant name string, got %T", name, v)
		}
		for _, known := range t.Variants {
			if known == variant {
				writeJSONString(buf, variant)
				return nil
			}
		}
		return fmt.Errorf("enum %q has no variant %q", name, variant)

	default:
		return fmt.Errorf("unknown type %q", name)
	}
}

func (c *Codec) decodeRef(ref ir.TypeRef, raw any) (any, error) {
	switch r := ref.(type) {
	case *ir.PrimitiveRef:
		return decodePrimitive(r.Primitive, raw)

	case *ir.OptionalRef:
		if raw == nil {
			return nil, nil
		}
		return c.decodeRef(r.Inner, raw)

	case *ir.ListRef:
		items, ok := raw.([]any)
		if !ok {
			return nil, fmt.Errorf("expected array, got %T", raw)
		}
		out := make([]any, len(items))
		for i, item := range items {
			v, err := c.decodeRef(r.Element, item)
			if err != nil {
				return nil, err
			}
			out[i] = v
		}
		return out, nil

	case *ir.MapRef:
		m, ok := raw.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("expected object, got %T", raw)
		}
		out := make(map[string]any, len(m))
		for k, item := range m {
			canonical, err := canonicalKey(r.Key, k)
			if err != nil {
				return nil, err
			}
			v, err := c.decodeRef(r.Value, item)
			if err != nil {
				return nil, err
			}
			out[canonical] = v
		}
		return out, nil

	case *ir.NamedRef:
		return c.decodeNamed(r.Name, raw)

	default:
		return nil, fmt.Errorf("unhandled type reference %s", ref.Kind())
	}
}

func (c *Codec) decodeNamed(name string, raw any) (any, error) {
	if name == ir.UnitName {
		return map[string]any{}, nil
	}

	switch t := c.resolved.FindType(name).(type) {
	case *ir.Composite:
		m, ok := raw.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("composite %q: expected object, got %T", name, raw)
		}
		out := make(map[string]any, len(t.Fields))
		for _, f := range t.Fields {
			fv, present := m[f.Name]
			if _, isOpt := f.Type.(*ir.OptionalRef); isOpt {
				if !present || fv == nil {
					// Stays absent, never a zero value.
					continue
				}
			} else if !present {
				return nil, fmt.Errorf("composite %q missing required field %q", name, f.Name)
			}
			v, err := c.decodeRef(f.Type, fv)
			if err != nil {
				return nil, fmt.Errorf("field %q: %w", f.Name, err)
			}
			out[f.Name] = v
		}
		return out, nil

	case *ir.Enum:
		variant, ok := raw.(string)
		if !ok {
			return nil, fmt.Errorf("enum %q: expected variant string, got %T", name, raw)
		}
		for _, known := range t.Variants {
			if known == variant {
				return variant, nil
			}
		}
		return nil, fmt.Errorf("enum %q has no variant %q", name, variant)

	default:
		return nil, fmt.Errorf("unknown type %q", name)
	}
}

func encodePrimitive(buf *bytes.Buffer, kind ir.PrimitiveKind, v any) error {
	switch kind {
	case ir.PrimitiveBool:
		b, ok := v.(bool)
		if !ok {
			return typeErr(kind, v)
		}
		buf.WriteString(strconv.FormatBool(b))

	case ir.PrimitiveI32:
		n, ok := asInt64(v)
		if !ok || n < math.MinInt32 || n > math.MaxInt32 {
			return typeErr(kind, v)
		}
		buf.WriteString(strconv.FormatInt(n, 10))

	case ir.PrimitiveU32:
		n, ok := asUint64(v)
		if !ok || n > math.MaxUint32 {
			return typeErr(kind, v)
		}
		buf.WriteString(strconv.FormatUint(n, 10))

	case ir.PrimitiveI64:
		n, ok := asInt64(v)
		if !ok {
			return typeErr(kind, v)
		}
		writeJSONString(buf, strconv.FormatInt(n, 10))

	case ir.PrimitiveU64:
		n, ok := asUint64(v)
		if !ok {
			return typeErr(kind, v)
		}
		writeJSONString(buf, strconv.FormatUint(n, 10))

	case ir.PrimitiveF32:
		f, ok := v.(float32)
		if !ok {
			return typeErr(kind, v)
		}
		if math.IsNaN(float64(f)) || math.IsInf(float64(f), 0) {
			return fmt.Errorf("f32 value must be finite")
		}
		buf.WriteString(strconv.FormatFloat(float64(f), 'g', -1, 32))

	case ir.PrimitiveF64:
		f, ok := v.(float64)
		if !ok {
			return typeErr(kind, v)
		}
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return fmt.Errorf("f64 value must be finite")
		}
		buf.WriteString(strconv.FormatFloat(f, 'g', -1, 64))

	case ir.PrimitiveString:
		s, ok := v.(string)
		if !ok {
			return typeErr(kind, v)
		}
		writeJSONString(buf, s)

	case ir.PrimitiveBytes:
		b, ok := v.([]byte)
		if !ok {
			return typeErr(kind, v)
		}
		writeJSONString(buf, base64.StdEncoding.EncodeToString(b))

	case ir.PrimitiveUUID:
		id, err := asUUID(v)
		if err != nil {
			return err
		}
		writeJSONString(buf, id.String())

	case ir.PrimitiveTimestamp:
		t, ok := v.(time.Time)
		if !ok {
			return typeErr(kind, v)
		}
		writeJSONString(buf, formatTimestamp(t))

	default:
		return fmt.Errorf("unhandled primitive kind %v", kind)
	}
	return nil
}

func decodePrimitive(kind ir.PrimitiveKind, raw any) (any, error) {
	switch kind {
	case ir.PrimitiveBool:
		b, ok := raw.(bool)
		if !ok {
			return nil, wireErr(kind, raw)
		}
		return b, nil

	case ir.PrimitiveI32:
		num, ok := raw.(json.Number)
		if !ok {
			return nil, wireErr(kind, raw)
		}
		n, err := strconv.ParseInt(num.String(), 10, 32)
		if err != nil {
			return nil, fmt.Errorf("i32: %w", err)
		}
		return int32(n), nil

	case ir.PrimitiveU32:
		num, ok := raw.(json.Number)
		if !ok {
			return nil, wireErr(kind, raw)
		}
		n, err := strconv.ParseUint(num.String(), 10, 32)
		if err != nil {
			return nil, fmt.Errorf("u32: %w", err)
		}
		return uint32(n), nil

	case ir.PrimitiveI64:
		s, ok := raw.(string)
		if !ok {
			return nil, wireErr(kind, raw)
		}
		n, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("i64: %w", err)
		}
		return n, nil

	case ir.PrimitiveU64:
		s, ok := raw.(string)
		if !ok {
			return nil, wireErr(kind, raw)
		}
		n, err := strconv.ParseUint(s, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("u64: %w", err)
		}
		return n, nil

	case ir.PrimitiveF32:
		num, ok := raw.(json.Number)
		if !ok {
			return nil, wireErr(kind, raw)
		}
		f, err := strconv.ParseFloat(num.String(), 32)
		if err != nil {
			return nil, fmt.Errorf("f32: %w", err)
		}
		return float32(f), nil

	case ir.PrimitiveF64:
		num, ok := raw.(json.Number)
		if !ok {
			return nil, wireErr(kind, raw)
		}
		f, err := num.Float64()
		if err != nil {
			return nil, fmt.Errorf("f64: %w", err)
		}
		return f, nil

	case ir.PrimitiveString:
		s, ok := raw.(string)
		if !ok {
			return nil, wireErr(kind, raw)
		}
		return s, nil

	case ir.PrimitiveBytes:
		s, ok := raw.(string)
		if !ok {
			return nil, wireErr(kind, raw)
		}
		b, err := base64.StdEncoding.DecodeString(s)
		if err != nil {
			return nil, fmt.Errorf("bytes: %w", err)
		}
		return b, nil

	case ir.PrimitiveUUID:
		s, ok := raw.(string)
		if !ok {
			return nil, wireErr(kind, raw)
		}
		id, err := uuid.Parse(s)
		if err != nil {
			return nil, fmt.Errorf("uuid: %w", err)
		}
		return id, nil

	case ir.PrimitiveTimestamp:
		s, ok := raw.(string)
		if !ok {
			return nil, wireErr(kind, raw)
		}
		t, err := parseTimestamp(s)
		if err != nil {
			return nil, fmt.Errorf("timestamp: %w", err)
		}
		return t, nil

	default:
		return nil, fmt.Errorf("unhandled primitive kind %v", kind)
	}
}

// canonicalKey normalizes a map key string to the key kind's canonical
// text form, rejecting keys that do not parse.
func canonicalKey(kind ir.PrimitiveKind, key string) (string, error) {
	switch kind {
	case ir.PrimitiveString:
		return key, nil
	case ir.PrimitiveI32:
		n, err := strconv.ParseInt(key, 10, 32)
		if err != nil {
			return "", fmt.Errorf("map key %q: %w", key, err)
		}
		return strconv.FormatInt(n, 10), nil
	case ir.PrimitiveI64:
		n, err := strconv.ParseInt(key, 10, 64)
		if err != nil {
			return "", fmt.Errorf("map key %q: %w", key, err)
		}
		return strconv.FormatInt(n, 10), nil
	case ir.PrimitiveU32:
		n, err := strconv.ParseUint(key, 10, 32)
		if err != nil {
			return "", fmt.Errorf("map key %q: %w", key, err)
		}
		return strconv.FormatUint(n, 10), nil
	case ir.PrimitiveU64:
		n, err := strconv.ParseUint(key, 10, 64)
		if err != nil {
			return "", fmt.Errorf("map key %q: %w", key, err)
		}
		return strconv.FormatUint(n, 10), nil
	case ir.PrimitiveUUID:
		id, err := uuid.Parse(key)
		if err != nil {
			return "", fmt.Errorf("map key %q: %w", key, err)
		}
		return id.String(), nil
	default:
		return "", fmt.Errorf("map key kind %v is not allowed", kind)
	}
}

// formatTimestamp renders the canonical wire form: UTC RFC 3339 with
// trailing zero fractions trimmed.
func formatTimestamp(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTimestamp(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		if t2, err2 := time.Parse(time.RFC3339, s); err2 == nil {
			return t2.UTC(), nil
		}
		return time.Time{}, err
	}
	return t.UTC(), nil
}

func asInt64(v any) (int64, bool) {
	switch n := v.(type) {
	case int:
		return int64(n), true
	case int32:
		return int64(n), true
	case int64:
		return n, true
	}
	return 0, false
}

func asUint64(v any) (uint64, bool) {
	switch n := v.(type) {
	case uint:
		return uint64(n), true
	case uint32:
		return uint64(n), true
	case uint64:
		return n, true
	case int:
		if n >= 0 {
			return uint64(n), true
		}
	case int64:
		if n >= 0 {
			return uint64(n), true
		}
	}
	return 0, false
}

func asUUID(v any) (uuid.UUID, error) {
	switch id := v.(type) {
	case uuid.UUID:
		return id, nil
	case string:
		parsed, err := uuid.Parse(id)
		if err != nil {
			return uuid.UUID{}, fmt.Errorf("uuid: %w", err)
		}
		return parsed, nil
	}
	return uuid.UUID{}, typeErr(ir.PrimitiveUUID, v)
}

func writeJSONString(buf *bytes.Buffer, s string) {
	// go-json escapes per RFC 8259; strings never fail to marshal.
	b, _ := json.Marshal(s)
	buf.Write(b)
}

func typeErr(kind ir.PrimitiveKind, v any) error {
	return fmt.Errorf("value for %s has unsupported Go type %T", kind, v)
}

func wireErr(kind ir.PrimitiveKind, raw any) error {
	return fmt.Errorf("wire form for %s has unexpected JSON type %T", kind, raw)
}
