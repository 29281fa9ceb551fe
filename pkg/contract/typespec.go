package contract

import (
	"fmt"
	"reflect"
	"strings"
)

// TypeSpec is the normalized representation of a declared type. It is a
// closed union: the set of variants is fixed, and new kinds of checks are
// added here rather than through user-supplied validator plugins.
type TypeSpec interface {
	// String renders the spec the way it appears in violation messages.
	String() string

	typeSpec()
}

// AnyDim is a wildcard array dimension: any extent is accepted.
const AnyDim = -1

// Unspecified is the TypeSpec of a parameter or return value that carries no
// declaration. It matches every value and is never validated.
var Unspecified TypeSpec = unspecifiedSpec{}

// None is the TypeSpec matching only nil values. A nil value satisfies no
// other spec, and no non-nil value satisfies None.
var None TypeSpec = noneSpec{}

type unspecifiedSpec struct{}

func (unspecifiedSpec) typeSpec()      {}
func (unspecifiedSpec) String() string { return "unspecified" }

type noneSpec struct{}

func (noneSpec) typeSpec()      {}
func (noneSpec) String() string { return "None" }

// exactSpec requires the value's dynamic type to be identical to the
// declared type, modulo numeric widening.
type exactSpec struct {
	typ reflect.Type
}

// Exact returns a TypeSpec requiring the value's dynamic type to be t.
// Numeric widening applies: a value of a strictly narrower numeric kind
// satisfies a wider declared kind (int into float64), never the reverse.
func Exact(t reflect.Type) TypeSpec {
	return exactSpec{typ: t}
}

func (s exactSpec) typeSpec()      {}
func (s exactSpec) String() string { return s.typ.String() }

// oneOfSpec accepts a value matching any member spec.
type oneOfSpec struct {
	members []TypeSpec
}

// OneOf returns a TypeSpec accepting values that satisfy at least one of the
// member specs. Members are tried in order.
func OneOf(members ...TypeSpec) TypeSpec {
	return oneOfSpec{members: members}
}

func (s oneOfSpec) typeSpec() {}

func (s oneOfSpec) String() string {
	parts := make([]string, len(s.members))
	for i, m := range s.members {
		parts[i] = m.String()
	}
	return "one of (" + strings.Join(parts, ", ") + ")"
}

// literalSpec accepts a value equal to any of the enumerated literals.
// Comparison is by deep equality, not by type.
type literalSpec struct {
	values []any
}

// Literal returns a TypeSpec accepting exactly the enumerated values.
func Literal(values ...any) TypeSpec {
	return literalSpec{values: values}
}

func (s literalSpec) typeSpec() {}

func (s literalSpec) String() string {
	parts := make([]string, len(s.values))
	for i, v := range s.values {
		parts[i] = fmt.Sprintf("%#v", v)
	}
	return "literal(" + strings.Join(parts, ", ") + ")"
}

// tupleSpec requires a fixed-arity array value with per-slot specs. The
// zero-slot form is unconstrained: it accepts any array, and, as a documented
// looseness, any slice as well.
type tupleSpec struct {
	slots       []TypeSpec
	constrained bool
}

// Tuple returns a TypeSpec for fixed-arity values. Go expresses tuples as
// arrays: a constrained Tuple(a, b) matches only a two-element array whose
// slots satisfy a and b. Tuple() with no slots is unconstrained and accepts
// arrays of any arity; it also accepts slices, mirroring the native
// list-to-tuple looseness of unconstrained tuple declarations.
func Tuple(slots ...TypeSpec) TypeSpec {
	return tupleSpec{slots: slots, constrained: len(slots) > 0}
}

func (s tupleSpec) typeSpec() {}

func (s tupleSpec) String() string {
	if !s.constrained {
		return "tuple"
	}
	parts := make([]string, len(s.slots))
	for i, m := range s.slots {
		parts[i] = m.String()
	}
	return "tuple(" + strings.Join(parts, ", ") + ")"
}

// listSpec requires a slice value whose every element satisfies the element
// spec. Arrays are not lists: an array value never satisfies a listSpec.
type listSpec struct {
	elem TypeSpec
}

// List returns a TypeSpec for homogeneous slices. Every element is validated
// recursively against elem. List(Unspecified) accepts any slice.
func List(elem TypeSpec) TypeSpec {
	if elem == nil {
		elem = Unspecified
	}
	return listSpec{elem: elem}
}

func (s listSpec) typeSpec() {}

func (s listSpec) String() string {
	if s.elem == Unspecified {
		return "list"
	}
	return "list(" + s.elem.String() + ")"
}

// arraySpec requires a numeric-array-like value (nested slices or arrays of
// numeric leaves) whose elements can be safely upcast to the declared dtype
// and whose shape matches the declared dimensions.
type arraySpec struct {
	dtype reflect.Kind // reflect.Invalid means any numeric dtype
	shape []int        // nil means any shape; AnyDim wildcards a dimension
}

// Array returns a TypeSpec for numeric array-like values. dtype is the
// declared element kind (reflect.Invalid accepts any numeric element kind);
// every element must be safely castable to it without loss. shape constrains
// the dimensions, with AnyDim accepting any extent; an empty shape accepts
// any dimensionality.
func Array(dtype reflect.Kind, shape ...int) TypeSpec {
	return arraySpec{dtype: dtype, shape: shape}
}

func (s arraySpec) typeSpec() {}

func (s arraySpec) String() string {
	dt := "numeric"
	if s.dtype != reflect.Invalid {
		dt = s.dtype.String()
	}
	if len(s.shape) == 0 {
		return "array(dtype=" + dt + ")"
	}
	dims := make([]string, len(s.shape))
	for i, d := range s.shape {
		if d == AnyDim {
			dims[i] = "any"
		} else {
			dims[i] = fmt.Sprintf("%d", d)
		}
	}
	return "array(dtype=" + dt + ", shape=[" + strings.Join(dims, " ") + "])"
}

// instanceSpec performs nominal checks against a declared type.
type instanceSpec struct {
	typ      reflect.Type
	subtypes bool
}

// Instance returns a TypeSpec performing a nominal check against t. With
// subtypes false the value's dynamic type must be exactly t. With subtypes
// true, interface types accept any implementation and concrete types accept
// any assignable dynamic type.
func Instance(t reflect.Type, subtypes bool) TypeSpec {
	return instanceSpec{typ: t, subtypes: subtypes}
}

func (s instanceSpec) typeSpec() {}

func (s instanceSpec) String() string {
	if s.subtypes {
		return "instance of " + s.typ.String()
	}
	return "exact instance of " + s.typ.String()
}
