package contract

import (
	"fmt"
	"reflect"
	"sort"
	"time"
)

// Enforcer validates calls against a callable's declared contract. It is
// built once per callable, is immutable afterwards, and is safe for
// concurrent use: per-call state lives entirely on the stack.
type Enforcer struct {
	fn  reflect.Value
	ft  reflect.Type
	sig *signature

	checks      []validator // one per parameter, indexed like sig.params
	returnCheck validator
	declaredKw  map[string]bool // normal parameter names, for keyword splitting

	sink  ViolationSink
	stats StatsSink
}

// New analyzes fn's signature, compiles one validator per declared parameter
// and for the return type, and eagerly validates every declared default.
//
// fn must be a function value; method expressions work too, with IgnoreSelf
// exempting the receiver parameter. Construction fails with
// UnspecifiedParameterTypeError or UnspecifiedReturnTypeError when a
// required declaration is missing, with ParameterTypeError when a declared
// default violates its own type, and with TranslationError when an
// annotation cannot be normalized.
func New(fn any, opts ...Option) (*Enforcer, error) {
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}

	sig, err := analyze(fn, o)
	if err != nil {
		return nil, err
	}

	e := &Enforcer{
		fn:         reflect.ValueOf(fn),
		ft:         reflect.TypeOf(fn),
		sig:        sig,
		checks:     make([]validator, len(sig.params)),
		declaredKw: make(map[string]bool, len(sig.normals)),
		sink:       o.sink,
		stats:      o.stats,
	}
	for i, p := range sig.params {
		e.checks[i] = compileSpec(p.Declared)
	}
	e.returnCheck = compileSpec(sig.returns)
	for _, i := range sig.normals {
		e.declaredKw[sig.params[i].Name] = true
	}

	// A bad default is caught once, here, rather than on every call that
	// omits the argument.
	for _, i := range sig.normals {
		p := &sig.params[i]
		if !p.HasDefault || p.Declared == Unspecified {
			continue
		}
		if cause := e.checks[i](p.Default); cause != nil {
			return nil, e.paramViolation(p, p.Default, cause, CheckDefault, "", false)
		}
	}

	if e.stats != nil {
		e.stats.ContractCompiled(sig.name)
	}
	return e, nil
}

// Name returns the callable's name as used in violation messages.
func (e *Enforcer) Name() string {
	return e.sig.name
}

// Parameters returns the declared parameter specs in declaration order.
// The returned slice is a copy; the model itself is immutable.
func (e *Enforcer) Parameters() []ParameterSpec {
	out := make([]ParameterSpec, len(e.sig.params))
	copy(out, e.sig.params)
	return out
}

// ReturnSpec returns the declared return type.
func (e *Enforcer) ReturnSpec() TypeSpec {
	return e.sig.returns
}

// VerifyArgs validates one call's arguments against the declared contract.
// Validation proceeds in parameter declaration order and the first violated
// parameter fails the call; positional values are resolved before keyword
// values for the same parameter, then defaults. Unresolved or unspecified
// parameters are never validated.
func (e *Enforcer) VerifyArgs(args []any, kwargs map[string]any) error {
	start := time.Now()
	err := e.verifyArgs(args, kwargs)
	if e.stats != nil {
		e.stats.ObserveVerification(e.sig.name, CheckArgument, time.Since(start), err != nil)
	}
	return err
}

func (e *Enforcer) verifyArgs(args []any, kwargs map[string]any) error {
	sig := e.sig

	// Consume and discard the self-like value before validation runs. The
	// receiver is usually the leading positional, but may arrive by keyword.
	if sig.self >= 0 {
		selfName := sig.params[sig.self].Name
		if _, ok := kwargs[selfName]; ok {
			trimmed := make(map[string]any, len(kwargs)-1)
			for k, v := range kwargs {
				if k != selfName {
					trimmed[k] = v
				}
			}
			kwargs = trimmed
		} else if len(args) > 0 {
			args = args[1:]
		}
	}

	// Split off the variadic positional tail at the declared slot count.
	var packedArgs []any
	if sig.vararg >= 0 && len(args) > len(sig.normals) {
		packedArgs = args[len(sig.normals):]
		args = args[:len(sig.normals)]
	}

	// Split keyword values by declared-name membership: names that match no
	// normal parameter belong to the keyword pack.
	normalKw := kwargs
	var packedKw map[string]any
	if sig.kwPack >= 0 && len(kwargs) > 0 {
		normalKw = make(map[string]any, len(kwargs))
		packedKw = make(map[string]any)
		for k, v := range kwargs {
			if e.declaredKw[k] {
				normalKw[k] = v
			} else {
				packedKw[k] = v
			}
		}
	}

	for slot, idx := range sig.normals {
		p := &sig.params[idx]
		var value any
		resolved := false
		switch {
		case slot < len(args):
			value = args[slot]
			resolved = true
		default:
			if v, ok := normalKw[p.Name]; ok {
				value = v
				resolved = true
			} else if p.HasDefault {
				value = p.Default
				resolved = true
			}
		}
		// A genuinely absent value, or an unspecified declaration, is
		// never validated.
		if !resolved || p.Declared == Unspecified {
			continue
		}
		if cause := e.checks[idx](value); cause != nil {
			return e.paramViolation(p, value, cause, CheckArgument, "", false)
		}
	}

	if sig.vararg >= 0 && sig.params[sig.vararg].Declared != Unspecified {
		p := &sig.params[sig.vararg]
		for _, value := range packedArgs {
			if cause := e.checks[sig.vararg](value); cause != nil {
				return e.paramViolation(p, value, cause, CheckArgument, "", true)
			}
		}
	}

	if sig.kwPack >= 0 && sig.params[sig.kwPack].Declared != Unspecified && len(packedKw) > 0 {
		p := &sig.params[sig.kwPack]
		// Keyword packs have no declaration order; fail on the smallest
		// violating key so the outcome is deterministic.
		keys := make([]string, 0, len(packedKw))
		for k := range packedKw {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			if cause := e.checks[sig.kwPack](packedKw[k]); cause != nil {
				return e.paramViolation(p, packedKw[k], cause, CheckArgument, k, false)
			}
		}
	}

	return nil
}

// VerifyResult validates the wrapped callable's return value. An unspecified
// return type always passes without inspecting the value. On failure the
// returned ReturnTypeError carries the value: the callable has already run,
// so the error is a report, not a rollback.
func (e *Enforcer) VerifyResult(value any) error {
	start := time.Now()
	err := e.verifyResult(value)
	if e.stats != nil {
		e.stats.ObserveVerification(e.sig.name, CheckReturn, time.Since(start), err != nil)
	}
	return err
}

func (e *Enforcer) verifyResult(value any) error {
	if e.sig.returns == Unspecified {
		return nil
	}
	if e.returnCheck(value) == nil {
		return nil
	}
	rerr := &ReturnTypeError{
		Func:      e.sig.name,
		Declared:  e.sig.returns,
		Value:     value,
		ValueType: reflect.TypeOf(value),
	}
	e.emit(Violation{
		Time:      time.Now(),
		Func:      e.sig.name,
		Check:     CheckReturn,
		Declared:  e.sig.returns.String(),
		Value:     value,
		ValueType: typeName(rerr.ValueType),
		Message:   rerr.Error(),
	})
	return rerr
}

// Call verifies the arguments, invokes the wrapped callable, and verifies
// its result. The callable is never invoked when argument validation fails;
// it has already executed, side effects included, when return validation
// fails. When the callable's own trailing error result is non-nil it is
// returned as-is and the result is not validated.
func (e *Enforcer) Call(args []any, kwargs map[string]any) (any, error) {
	if err := e.VerifyArgs(args, kwargs); err != nil {
		return nil, err
	}

	in, err := e.bind(args, kwargs)
	if err != nil {
		return nil, err
	}

	outs := e.fn.Call(in)

	var callErr error
	if e.sig.errResult {
		last := outs[len(outs)-1]
		if !last.IsNil() {
			callErr = last.Interface().(error)
		}
		outs = outs[:len(outs)-1]
	}

	var result any
	if len(outs) > 0 {
		result = outs[0].Interface()
	}
	if callErr != nil {
		return result, callErr
	}

	if err := e.VerifyResult(result); err != nil {
		return result, err
	}
	return result, nil
}

// bind resolves every declared parameter to a concrete reflect value in the
// callable's own order, including the self-like slot and both packs.
func (e *Enforcer) bind(args []any, kwargs map[string]any) ([]reflect.Value, error) {
	sig := e.sig
	in := make([]reflect.Value, 0, e.ft.NumIn())
	cursor := 0 // next unconsumed positional

	consumed := make(map[string]bool, len(kwargs))

	if sig.kwPack == -1 {
		for k := range kwargs {
			if idx := paramIndex(sig.params, k); idx == -1 || sig.params[idx].Kind == KindVariadicPositional {
				return nil, fmt.Errorf("contract: unknown keyword argument '%s' in call to '%s'", k, sig.name)
			}
		}
	}

	for i, p := range sig.params {
		switch p.Kind {
		case KindVariadicPositional:
			elemType := e.ft.In(i).Elem()
			for ; cursor < len(args); cursor++ {
				rv, err := e.bindValue(args[cursor], elemType, p.Name)
				if err != nil {
					return nil, err
				}
				in = append(in, rv)
			}
		case KindVariadicKeyword:
			mapType := e.ft.In(i)
			pack := reflect.MakeMap(mapType)
			for k, v := range kwargs {
				if e.declaredKw[k] || consumed[k] {
					continue
				}
				rv, err := e.bindValue(v, mapType.Elem(), p.Name)
				if err != nil {
					return nil, err
				}
				pack.SetMapIndex(reflect.ValueOf(k), rv)
				consumed[k] = true
			}
			in = append(in, pack)
		default:
			var value any
			resolved := false
			// The receiver may arrive by keyword; it must not consume the
			// first normal parameter's positional slot when it does.
			if p.Kind == KindSelfLike {
				if v, ok := kwargs[p.Name]; ok {
					value = v
					consumed[p.Name] = true
					resolved = true
				}
			}
			switch {
			case resolved:
			case cursor < len(args):
				value = args[cursor]
				cursor++
				resolved = true
			default:
				if v, ok := kwargs[p.Name]; ok {
					value = v
					consumed[p.Name] = true
					resolved = true
				} else if p.HasDefault {
					value = p.Default
					resolved = true
				}
			}
			if !resolved {
				return nil, fmt.Errorf("contract: missing argument '%s' in call to '%s'", p.Name, sig.name)
			}
			rv, err := e.bindValue(value, e.ft.In(i), p.Name)
			if err != nil {
				return nil, err
			}
			in = append(in, rv)
		}
	}

	if cursor < len(args) {
		return nil, fmt.Errorf("contract: too many positional arguments in call to '%s': %d given", sig.name, len(args))
	}
	return in, nil
}

// bindValue converts a supplied value to the parameter's static type.
// Validation never coerces values; conversion here happens only where the
// Go signature's static type requires a representation change, and only
// along the widening policy already accepted by validation.
func (e *Enforcer) bindValue(value any, to reflect.Type, param string) (reflect.Value, error) {
	if value == nil {
		switch to.Kind() {
		case reflect.Ptr, reflect.Slice, reflect.Map, reflect.Chan, reflect.Func, reflect.Interface:
			return reflect.Zero(to), nil
		}
		return reflect.Value{}, fmt.Errorf("contract: cannot bind nil to parameter '%s' of '%s'", param, e.sig.name)
	}
	rv := reflect.ValueOf(value)
	if rv.Type().AssignableTo(to) {
		return rv, nil
	}
	if widens(rv.Kind(), to.Kind()) && rv.Type().ConvertibleTo(to) {
		return rv.Convert(to), nil
	}
	return reflect.Value{}, fmt.Errorf("contract: cannot bind %s to parameter '%s' of '%s' (%s)",
		rv.Type(), param, e.sig.name, to)
}

// paramViolation builds the ParameterTypeError for a failed check and feeds
// the violation sink.
func (e *Enforcer) paramViolation(p *ParameterSpec, value any, cause error, check CheckKind, keyword string, variadic bool) *ParameterTypeError {
	perr := &ParameterTypeError{
		Func:      e.sig.name,
		Param:     p.Name,
		Declared:  p.Declared,
		Value:     value,
		ValueType: reflect.TypeOf(value),
		Keyword:   keyword,
		variadic:  variadic,
	}
	if cause == errArrayCast {
		perr.CastDType = castDType(p.Declared)
	}
	e.emit(Violation{
		Time:      time.Now(),
		Func:      e.sig.name,
		Param:     p.Name,
		Check:     check,
		Declared:  p.Declared.String(),
		Value:     value,
		ValueType: typeName(perr.ValueType),
		Message:   perr.Error(),
	})
	return perr
}

func (e *Enforcer) emit(v Violation) {
	if e.sink != nil {
		e.sink.RecordViolation(v)
	}
}

// castDType finds the dtype of the array spec a cast failure bubbled out of.
func castDType(spec TypeSpec) string {
	switch s := spec.(type) {
	case arraySpec:
		if s.dtype == reflect.Invalid {
			return "numeric"
		}
		return s.dtype.String()
	case listSpec:
		return castDType(s.elem)
	case tupleSpec:
		for _, slot := range s.slots {
			if dt := castDType(slot); dt != "" {
				return dt
			}
		}
	}
	return ""
}
