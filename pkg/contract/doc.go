// Package contract enforces declared type contracts on callables at call
// time. It converts a function's signature, plus an optional explicit
// schema, into reusable per-parameter validators once at construction time,
// then cheaply re-validates every call's arguments and return value.
//
// # Architecture
//
// Three collaborating stages, all resolved at construction:
//
//   - signature analysis: the callable's reflected parameter list is
//     classified (normal, variadic positional, variadic keyword, self-like),
//     merged with declared names, defaults, and annotation overrides, and
//     checked against the required-declaration policy.
//   - translation: each raw annotation (a TypeSpec, a reflect.Type, or a
//     type expression string like "list[int]" or "tuple[str, int]") is
//     normalized into the closed TypeSpec union, recursively for nested
//     generic forms. Unsupported forms fail loudly with a TranslationError.
//   - validator compilation: one reusable validator per parameter and one
//     for the return type, dispatched on the TypeSpec variant. Declared
//     defaults are validated eagerly here, so a bad default fails once at
//     construction instead of on every call that omits the argument.
//
// The resulting Enforcer is immutable and safe for concurrent use.
//
// # Basic Usage
//
//	halve := func(a int) float64 { return float64(a) / 2 }
//
//	enf, err := contract.New(halve,
//	    contract.ParamNames("a"),
//	    contract.RequireArgs(),
//	    contract.RequireReturn(),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	result, err := enf.Call([]any{5}, nil)   // 2.5, nil
//	_, err = enf.Call([]any{"x"}, nil)       // *ParameterTypeError naming 'a'
//
// VerifyArgs and VerifyResult can also be driven directly around a manual
// invocation; Call is just the two verifications around a reflect call.
//
// # Type compatibility
//
// Matching is nominal with one deliberate loosening: numeric widening. A
// value of a narrower numeric kind satisfies a wider declared kind (an int
// satisfies a float64 parameter) but never the reverse (a float64 fails an
// int parameter). nil satisfies only the None spec. Slices are lists and
// arrays are tuples: a slice never satisfies a constrained tuple declaration
// and an array never satisfies a list declaration, except that the
// unconstrained "tuple" form also accepts slices.
//
// # Violations
//
// Argument violations raise *ParameterTypeError before the callable runs;
// return violations raise *ReturnTypeError after it has run, carrying the
// computed value so callers can recover it. Optional ViolationSink and
// StatsSink hooks observe every violation and verification for audit and
// metrics pipelines (see pkg/violations and pkg/telemetry/metrics).
package contract
