package contract

import (
	"reflect"
)

// translateAnnotation normalizes a raw annotation into a TypeSpec.
//
// Accepted annotation forms:
//   - nil: Unspecified
//   - TypeSpec: passed through unchanged
//   - reflect.Type: translated recursively (see translateType)
//   - string: parsed as a type expression (see ParseTypeExpr)
//
// Anything else fails with a TranslationError. Translation happens once, at
// compile time.
func translateAnnotation(a any) (TypeSpec, error) {
	switch v := a.(type) {
	case nil:
		return Unspecified, nil
	case TypeSpec:
		return translateSpec(v)
	case reflect.Type:
		return translateType(v)
	case string:
		return ParseTypeExpr(v)
	default:
		return nil, &TranslationError{
			Annotation: a,
			Reason:     "annotations must be a TypeSpec, a reflect.Type, or a type expression string",
		}
	}
}

// translateSpec walks an explicit TypeSpec and normalizes nested member
// specs, so that a nil member inside OneOf/Tuple/List behaves like
// Unspecified rather than panicking at validation time.
func translateSpec(s TypeSpec) (TypeSpec, error) {
	switch v := s.(type) {
	case oneOfSpec:
		if len(v.members) == 0 {
			return nil, &TranslationError{Annotation: s, Reason: "a union must have at least one member"}
		}
		members := make([]TypeSpec, len(v.members))
		for i, m := range v.members {
			t, err := translateMember(m)
			if err != nil {
				return nil, err
			}
			members[i] = t
		}
		return oneOfSpec{members: members}, nil
	case tupleSpec:
		if !v.constrained {
			return v, nil
		}
		slots := make([]TypeSpec, len(v.slots))
		for i, m := range v.slots {
			t, err := translateMember(m)
			if err != nil {
				return nil, err
			}
			slots[i] = t
		}
		return tupleSpec{slots: slots, constrained: true}, nil
	case listSpec:
		elem, err := translateMember(v.elem)
		if err != nil {
			return nil, err
		}
		return listSpec{elem: elem}, nil
	case arraySpec:
		if v.dtype != reflect.Invalid && !isNumericKind(v.dtype) {
			return nil, &TranslationError{Annotation: s, Reason: "array dtype must be a numeric kind"}
		}
		for _, d := range v.shape {
			if d < 0 && d != AnyDim {
				return nil, &TranslationError{Annotation: s, Reason: "array dimensions must be non-negative or AnyDim"}
			}
		}
		return v, nil
	case instanceSpec:
		if v.typ == nil {
			return nil, &TranslationError{Annotation: s, Reason: "instance spec requires a type"}
		}
		return v, nil
	case exactSpec:
		if v.typ == nil {
			return nil, &TranslationError{Annotation: s, Reason: "exact spec requires a type"}
		}
		return v, nil
	default:
		return s, nil
	}
}

func translateMember(m TypeSpec) (TypeSpec, error) {
	if m == nil {
		return Unspecified, nil
	}
	return translateSpec(m)
}

// translateType converts a reflected Go type into a TypeSpec, recursively
// for nested container forms:
//
//   - interface{}: Unspecified (the Go analog of a missing declaration)
//   - non-empty interfaces: Instance with subtyping (any implementation)
//   - []T: List of the translated element
//   - [N]T: constrained Tuple of N translated slots
//   - everything else: Exact
//
// []any and [N]any translate to unconstrained element specs, so a bare
// slice or array declaration accepts any element.
func translateType(t reflect.Type) (TypeSpec, error) {
	if t == nil {
		return Unspecified, nil
	}
	switch t.Kind() {
	case reflect.Invalid:
		return nil, &TranslationError{Annotation: t, Reason: "invalid type"}
	case reflect.Interface:
		if t.NumMethod() == 0 {
			return Unspecified, nil
		}
		return Instance(t, true), nil
	case reflect.Slice:
		elem, err := translateType(t.Elem())
		if err != nil {
			return nil, err
		}
		return listSpec{elem: elem}, nil
	case reflect.Array:
		elem, err := translateType(t.Elem())
		if err != nil {
			return nil, err
		}
		slots := make([]TypeSpec, t.Len())
		for i := range slots {
			slots[i] = elem
		}
		return tupleSpec{slots: slots, constrained: true}, nil
	default:
		return exactSpec{typ: t}, nil
	}
}
