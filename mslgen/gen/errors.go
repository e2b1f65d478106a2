package gen

import (
	"fmt"

	"github.com/msl-lang/mslc/mslgen/ir"
)

// UnsupportedConstructError reports a schema construct the target profile
// cannot express. It aborts generation for that target only; other
// targets proceed.
type UnsupportedConstructError struct {
	Target    string
	Used      string // declaring type or function name
	Construct ir.RefKind
}

func (e *UnsupportedConstructError) Error() string {
	return fmt.Sprintf("target %q does not support %s (used by %q)", e.Target, e.Construct, e.Used)
}

// CollisionError reports two schema identifiers that render to the same
// target identifier after casing, which would produce a duplicate
// declaration in the generated source.
type CollisionError struct {
	Target   string
	TypeName string
	Names    [2]string
	Rendered string
}

func (e *CollisionError) Error() string {
	return fmt.Sprintf("target %q: %q and %q in type %q both render as %q",
		e.Target, e.Names[0], e.Names[1], e.TypeName, e.Rendered)
}

// CheckSupported walks every type reference in the given types and
// function contracts and returns an UnsupportedConstructError for the
// first construct outside the profile's support matrix. Generators call
// this before emitting anything so a failed target writes no output at
// all.
func CheckSupported(types []ir.NamedType, fns []ir.FunctionContract, p Profile) error {
	for _, t := range types {
		c, ok := t.(*ir.Composite)
		if !ok {
			continue
		}
		for _, f := range c.Fields {
			if err := checkRefSupported(f.Type, c.Name, p); err != nil {
				return err
			}
		}
	}
	for _, fn := range fns {
		if err := checkRefSupported(fn.Input, fn.Name, p); err != nil {
			return err
		}
		if err := checkRefSupported(fn.Output, fn.Name, p); err != nil {
			return err
		}
	}
	return nil
}

func checkRefSupported(ref ir.TypeRef, used string, p Profile) error {
	var unsupported *UnsupportedConstructError
	ir.WalkRefs(ref, func(r ir.TypeRef) {
		if unsupported == nil && !p.Supports(r.Kind()) {
			unsupported = &UnsupportedConstructError{
				Target:    p.Target,
				Used:      used,
				Construct: r.Kind(),
			}
		}
	})
	if unsupported != nil {
		return unsupported
	}
	return nil
}

// CheckCollisions verifies that the profile's casing keeps composite
// fields and enum variants distinct. Schema names are unique as
// declared, but casing can fold two of them together (user_id and
// userId both pascal-case to UserId).
func CheckCollisions(types []ir.NamedType, p Profile) error {
	for _, t := range types {
		switch t := t.(type) {
		case *ir.Composite:
			seen := make(map[string]string, len(t.Fields))
			for _, f := range t.Fields {
				rendered := p.FieldName(f.Name)
				if prev, dup := seen[rendered]; dup {
					return &CollisionError{
						Target:   p.Target,
						TypeName: t.Name,
						Names:    [2]string{prev, f.Name},
						Rendered: rendered,
					}
				}
				seen[rendered] = f.Name
			}
		case *ir.Enum:
			seen := make(map[string]string, len(t.Variants))
			for _, v := range t.Variants {
				rendered := p.TypeName(v)
				if prev, dup := seen[rendered]; dup {
					return &CollisionError{
						Target:   p.Target,
						TypeName: t.Name,
						Names:    [2]string{prev, v},
						Rendered: rendered,
					}
				}
				seen[rendered] = v
			}
		}
	}
	return nil
}
