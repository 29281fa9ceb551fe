package contract

import (
	"errors"
	"reflect"
)

// Validation outcomes distinguished internally so the caller can pick the
// right violation message. errMismatch is the ordinary failure; errArrayCast
// selects the dedicated array-cast message.
var (
	errMismatch  = errors.New("value does not satisfy declared type")
	errArrayCast = errors.New("value cannot be safely cast to the declared dtype")
)

// validator checks a single value against a compiled TypeSpec. Validators
// never mutate or coerce the value; they only accept or reject it.
type validator func(v any) error

// compileSpec builds a reusable validator by dispatching on the TypeSpec
// variant. Compilation happens once per declared type, at construction time.
func compileSpec(spec TypeSpec) validator {
	switch s := spec.(type) {
	case unspecifiedSpec:
		return func(any) error { return nil }
	case noneSpec:
		return validateNone
	case exactSpec:
		return compileExact(s)
	case oneOfSpec:
		return compileOneOf(s)
	case literalSpec:
		return compileLiteral(s)
	case tupleSpec:
		return compileTuple(s)
	case listSpec:
		return compileList(s)
	case arraySpec:
		return compileArray(s)
	case instanceSpec:
		return compileInstance(s)
	default:
		// The union is closed; an unknown variant is a programming error.
		return func(any) error { return errMismatch }
	}
}

// isNone reports whether a value counts as nil: the untyped nil interface,
// or a nil-valued pointer, slice, map, channel, function, or interface.
func isNone(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Ptr, reflect.Slice, reflect.Map, reflect.Chan, reflect.Func, reflect.Interface:
		return rv.IsNil()
	}
	return false
}

func validateNone(v any) error {
	if isNone(v) {
		return nil
	}
	return errMismatch
}

func compileExact(s exactSpec) validator {
	return func(v any) error {
		// nil satisfies only None.
		if isNone(v) {
			return errMismatch
		}
		vt := reflect.TypeOf(v)
		if vt == s.typ {
			return nil
		}
		if widens(vt.Kind(), s.typ.Kind()) {
			return nil
		}
		return errMismatch
	}
}

func compileOneOf(s oneOfSpec) validator {
	members := make([]validator, len(s.members))
	for i, m := range s.members {
		members[i] = compileSpec(m)
	}
	return func(v any) error {
		for _, check := range members {
			if check(v) == nil {
				return nil
			}
		}
		return errMismatch
	}
}

func compileLiteral(s literalSpec) validator {
	return func(v any) error {
		for _, allowed := range s.values {
			if reflect.DeepEqual(v, allowed) {
				return nil
			}
		}
		return errMismatch
	}
}

func compileTuple(s tupleSpec) validator {
	if !s.constrained {
		// Unconstrained tuples accept any array. Slices are accepted too:
		// the native list-to-tuple looseness for bare tuple declarations.
		return func(v any) error {
			if isNone(v) {
				return errMismatch
			}
			switch reflect.ValueOf(v).Kind() {
			case reflect.Array, reflect.Slice:
				return nil
			}
			return errMismatch
		}
	}
	slots := make([]validator, len(s.slots))
	for i, m := range s.slots {
		slots[i] = compileSpec(m)
	}
	return func(v any) error {
		if isNone(v) {
			return errMismatch
		}
		rv := reflect.ValueOf(v)
		// A slice never satisfies a constrained tuple declaration.
		if rv.Kind() != reflect.Array || rv.Len() != len(slots) {
			return errMismatch
		}
		for i, check := range slots {
			if err := check(rv.Index(i).Interface()); err != nil {
				return err
			}
		}
		return nil
	}
}

func compileList(s listSpec) validator {
	elem := compileSpec(s.elem)
	unconstrained := s.elem == Unspecified
	return func(v any) error {
		if isNone(v) {
			return errMismatch
		}
		rv := reflect.ValueOf(v)
		// An array never satisfies a list declaration.
		if rv.Kind() != reflect.Slice {
			return errMismatch
		}
		if unconstrained {
			return nil
		}
		for i := 0; i < rv.Len(); i++ {
			if err := elem(rv.Index(i).Interface()); err != nil {
				return err
			}
		}
		return nil
	}
}

func compileInstance(s instanceSpec) validator {
	return func(v any) error {
		if isNone(v) {
			return errMismatch
		}
		vt := reflect.TypeOf(v)
		if vt == s.typ {
			return nil
		}
		if !s.subtypes {
			return errMismatch
		}
		if s.typ.Kind() == reflect.Interface {
			if vt.Implements(s.typ) {
				return nil
			}
			return errMismatch
		}
		if vt.AssignableTo(s.typ) {
			return nil
		}
		return errMismatch
	}
}

// widens reports whether a value of kind `from` is accepted where kind `to`
// is declared. The policy is widening only: a narrower numeric value
// satisfies a wider declared type, never the reverse.
func widens(from, to reflect.Kind) bool {
	if from == to {
		return true
	}
	fromRank, fromInt := intRank(from)
	toRank, toInt := intRank(to)

	switch {
	case fromInt && toInt:
		// Unsigned widens into strictly larger signed; same-signedness
		// widens into larger sizes.
		if isUnsigned(from) == isUnsigned(to) {
			return fromRank < toRank
		}
		return isUnsigned(from) && fromRank < toRank
	case fromInt && isFloatKind(to):
		return true
	case fromInt && isComplexKind(to):
		return true
	case isFloatKind(from) && isFloatKind(to):
		return from == reflect.Float32 && to == reflect.Float64
	case isFloatKind(from) && isComplexKind(to):
		return from == reflect.Float32 || to == reflect.Complex128
	case isComplexKind(from) && isComplexKind(to):
		return from == reflect.Complex64 && to == reflect.Complex128
	}
	return false
}

// intRank orders integer kinds by width. The boolean reports whether the
// kind is an integer kind at all.
func intRank(k reflect.Kind) (int, bool) {
	switch k {
	case reflect.Int8, reflect.Uint8:
		return 1, true
	case reflect.Int16, reflect.Uint16:
		return 2, true
	case reflect.Int32, reflect.Uint32:
		return 3, true
	case reflect.Int, reflect.Uint, reflect.Int64, reflect.Uint64:
		return 4, true
	}
	return 0, false
}

func isUnsigned(k reflect.Kind) bool {
	switch k {
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return true
	}
	return false
}

func isFloatKind(k reflect.Kind) bool {
	return k == reflect.Float32 || k == reflect.Float64
}

func isComplexKind(k reflect.Kind) bool {
	return k == reflect.Complex64 || k == reflect.Complex128
}

func isNumericKind(k reflect.Kind) bool {
	if _, ok := intRank(k); ok {
		return true
	}
	return isFloatKind(k) || isComplexKind(k)
}
