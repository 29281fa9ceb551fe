package contract

import (
	"reflect"
)

// compileArray builds the validator for array declarations. A value is
// array-like when it is a (possibly nested) slice or array whose leaves are
// all numeric and whose nesting is rectangular. Validation checks two
// independent constraints:
//
//   - dtype: every leaf's kind must cast safely (without loss) to the
//     declared dtype; failure selects the dedicated array-cast message.
//   - shape: the inferred dimensions must match the declared ones, where
//     AnyDim accepts any extent.
func compileArray(s arraySpec) validator {
	return func(v any) error {
		if isNone(v) {
			return errMismatch
		}
		rv := reflect.ValueOf(v)
		shape, err := inferShape(rv)
		if err != nil {
			return err
		}
		if err := castableTo(rv, s.dtype); err != nil {
			return err
		}
		if len(s.shape) == 0 {
			return nil
		}
		if len(shape) != len(s.shape) {
			return errMismatch
		}
		for i, want := range s.shape {
			if want != AnyDim && shape[i] != want {
				return errMismatch
			}
		}
		return nil
	}
}

// inferShape determines the dimensions of a nested slice/array value and
// verifies it is rectangular. A bare numeric scalar has zero dimensions.
func inferShape(rv reflect.Value) ([]int, error) {
	if rv.Kind() == reflect.Interface {
		rv = rv.Elem()
	}
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		dims := []int{rv.Len()}
		if rv.Len() == 0 {
			return dims, nil
		}
		first, err := inferShape(rv.Index(0))
		if err != nil {
			return nil, err
		}
		for i := 1; i < rv.Len(); i++ {
			rest, err := inferShape(rv.Index(i))
			if err != nil {
				return nil, err
			}
			if !sameShape(first, rest) {
				// Ragged nesting is not an array.
				return nil, errMismatch
			}
		}
		return append(dims, first...), nil
	default:
		if !isNumericKind(rv.Kind()) {
			return nil, errMismatch
		}
		return nil, nil
	}
}

// castableTo verifies every leaf element's kind can be safely upcast to the
// declared dtype. The casting rule is conservative: identity or widening
// only, never a narrowing conversion.
func castableTo(rv reflect.Value, dtype reflect.Kind) error {
	if rv.Kind() == reflect.Interface {
		rv = rv.Elem()
	}
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		for i := 0; i < rv.Len(); i++ {
			if err := castableTo(rv.Index(i), dtype); err != nil {
				return err
			}
		}
		return nil
	default:
		if !isNumericKind(rv.Kind()) {
			return errMismatch
		}
		if dtype == reflect.Invalid {
			return nil
		}
		if widens(rv.Kind(), dtype) {
			return nil
		}
		return errArrayCast
	}
}

func sameShape(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
