package contract

import (
	"fmt"
	"reflect"
	"strings"
)

// UnspecifiedParameterTypeError reports parameters that lack a type
// declaration while the contract requires one. It is raised at construction
// time only, never at call time.
type UnspecifiedParameterTypeError struct {
	// Func is the callable's name as it appears in messages.
	Func string

	// Params lists every offending parameter name in declaration order.
	Params []string

	// Packed is set to "positional" or "keyword" when the offender is a
	// variadic pack rather than a normal parameter.
	Packed string
}

// Error implements the error interface.
func (e *UnspecifiedParameterTypeError) Error() string {
	switch e.Packed {
	case "positional":
		return fmt.Sprintf("packed positional parameter '%s' of '%s' must be given a type declaration", e.Params[0], e.Func)
	case "keyword":
		return fmt.Sprintf("packed keyword parameter '%s' of '%s' must be given a type declaration", e.Params[0], e.Func)
	}
	quoted := make([]string, len(e.Params))
	for i, p := range e.Params {
		quoted[i] = "'" + p + "'"
	}
	return fmt.Sprintf("the following parameters of '%s' must be given type declarations: [%s]", e.Func, strings.Join(quoted, ", "))
}

// UnspecifiedReturnTypeError reports a missing return type declaration while
// the contract requires one. Raised at construction time only.
type UnspecifiedReturnTypeError struct {
	Func string
}

// Error implements the error interface.
func (e *UnspecifiedReturnTypeError) Error() string {
	return fmt.Sprintf("a return type declaration must be specified for '%s'", e.Func)
}

// ParameterTypeError reports an argument (or declared default) that violates
// its parameter's declared type. Raised at call time for supplied or default
// arguments, and at construction time when a declared default is itself
// invalid.
type ParameterTypeError struct {
	// Func is the callable's name.
	Func string

	// Param is the offending parameter's name.
	Param string

	// Declared is the parameter's declared type.
	Declared TypeSpec

	// Value is the offending value.
	Value any

	// ValueType is the offending value's runtime type; nil for nil values.
	ValueType reflect.Type

	// Keyword is set when the offender is an entry of a variadic keyword
	// pack; it holds the offending entry's key.
	Keyword string

	// CastDType is set for array cast failures; it names the dtype the
	// value could not be safely cast to.
	CastDType string

	// variadic marks an offender from a variadic positional pack.
	variadic bool
}

// Error implements the error interface.
func (e *ParameterTypeError) Error() string {
	if e.CastDType != "" {
		return fmt.Sprintf("The '%s' parameter of '%s' could not be cast to an array of dtype %s",
			e.Param, e.Func, e.CastDType)
	}
	if e.Keyword != "" {
		return fmt.Sprintf("The '%s' keywords of '%s' must have values of type %s, but '%s':%#v %s was specified.",
			e.Param, e.Func, e.Declared, e.Keyword, e.Value, typeName(e.ValueType))
	}
	if e.variadic {
		return fmt.Sprintf("The '%s' parameters of '%s' must be %s, but a value of %#v %s was specified.",
			e.Param, e.Func, e.Declared, e.Value, typeName(e.ValueType))
	}
	return fmt.Sprintf("The '%s' parameter of '%s' must be %s, but a value of %#v %s was specified.",
		e.Param, e.Func, e.Declared, e.Value, typeName(e.ValueType))
}

// ReturnTypeError reports a return value that violates the declared return
// type. The wrapped callable has already executed by the time this is
// raised; Value always carries the computed result so callers can recover it.
type ReturnTypeError struct {
	// Func is the callable's name.
	Func string

	// Declared is the declared return type.
	Declared TypeSpec

	// Value is the actual returned value, recoverable regardless of
	// validity.
	Value any

	// ValueType is the returned value's runtime type; nil for nil values.
	ValueType reflect.Type
}

// Error implements the error interface.
func (e *ReturnTypeError) Error() string {
	return fmt.Sprintf("The return type of '%s' must be %s, but a value of %#v %s was returned.",
		e.Func, e.Declared, e.Value, typeName(e.ValueType))
}

// TranslationError reports an annotation that could not be normalized into a
// TypeSpec. Unsupported forms fail loudly at compile time rather than
// silently passing validation.
type TranslationError struct {
	// Annotation is the annotation that failed to translate.
	Annotation any

	// Reason describes why translation failed.
	Reason string
}

// Error implements the error interface.
func (e *TranslationError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("cannot translate annotation %v into a type spec: %s", e.Annotation, e.Reason)
	}
	return fmt.Sprintf("cannot translate annotation %v into a type spec", e.Annotation)
}

func typeName(t reflect.Type) string {
	if t == nil {
		return "<nil>"
	}
	return t.String()
}
