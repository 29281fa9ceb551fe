package contract

import (
	"fmt"
	"reflect"
	"runtime"
	"strings"
)

// ParamKind classifies a declared parameter.
type ParamKind int

const (
	// KindNormal is an ordinary positional-or-keyword parameter.
	KindNormal ParamKind = iota

	// KindVariadicPositional collects extra positional arguments beyond the
	// declared ones (a Go `...T` parameter).
	KindVariadicPositional

	// KindVariadicKeyword collects extra keyword arguments beyond the
	// declared ones (a trailing map[string]T parameter declared through the
	// KeywordPack option).
	KindVariadicKeyword

	// KindSelfLike is the exempted receiver parameter of a method
	// expression. It binds at call time but is never validated.
	KindSelfLike
)

// ParameterSpec describes one declared parameter: its name, declared type,
// default, and kind. ParameterSpecs are immutable once built, and their
// declaration order is semantically meaningful for positional binding.
type ParameterSpec struct {
	Name       string
	Declared   TypeSpec
	Default    any
	HasDefault bool
	Kind       ParamKind
}

type options struct {
	name          string
	paramNames    []string
	annotations   map[string]any
	defaults      map[string]any
	returnAnnot   any
	hasReturn     bool
	requireArgs   bool
	requireReturn bool
	ignoreSelf    bool
	kwPackName    string
	kwPackAnnot   any
	hasKwPack     bool
	returnExempt  []string
	sink          ViolationSink
	stats         StatsSink
}

// Option configures contract construction.
type Option func(*options)

// FuncName overrides the callable's name used in violation messages. The
// default is derived from the function's runtime symbol.
func FuncName(name string) Option {
	return func(o *options) { o.name = name }
}

// ParamNames declares parameter names in declaration order. Parameters
// beyond the provided names get generated names. Names enable keyword
// binding; without them only positional binding is useful.
func ParamNames(names ...string) Option {
	return func(o *options) { o.paramNames = names }
}

// Annotate overrides the declared type of a named parameter. The annotation
// may be a TypeSpec, a reflect.Type, or a type expression string; it is
// translated once, at construction time.
func Annotate(name string, annotation any) Option {
	return func(o *options) {
		if o.annotations == nil {
			o.annotations = make(map[string]any)
		}
		o.annotations[name] = annotation
	}
}

// Default declares a default value for a named parameter, used when a call
// omits it. Defaults are validated eagerly at construction time.
func Default(name string, value any) Option {
	return func(o *options) {
		if o.defaults == nil {
			o.defaults = make(map[string]any)
		}
		o.defaults[name] = value
	}
}

// Return overrides the declared return type. The annotation forms accepted
// by Annotate apply.
func Return(annotation any) Option {
	return func(o *options) {
		o.returnAnnot = annotation
		o.hasReturn = true
	}
}

// RequireArgs makes an unspecified parameter type a construction-time error.
func RequireArgs() Option {
	return func(o *options) { o.requireArgs = true }
}

// RequireReturn makes an unspecified return type a construction-time error.
func RequireReturn() Option {
	return func(o *options) { o.requireReturn = true }
}

// IgnoreSelf marks the first declared parameter as the receiver of a method
// expression. It is exempted from required-annotation checks and from
// validation, but still binds at call time. Exemption always wins over any
// annotation placed on the receiver.
func IgnoreSelf() Option {
	return func(o *options) { o.ignoreSelf = true }
}

// KeywordPack declares the named parameter as the variadic keyword pack.
// The parameter must be the last non-variadic one and have type map[string]T.
// Keyword arguments whose names match no declared parameter land in the pack
// and are validated against the annotation (or the map's element type).
func KeywordPack(name string, annotation any) Option {
	return func(o *options) {
		o.kwPackName = name
		o.kwPackAnnot = annotation
		o.hasKwPack = true
	}
}

// ReturnExempt overrides the set of callable names exempted from the
// required-return check when IgnoreSelf is set. Constructor-style methods
// conventionally return nothing meaningful; the default set is {"Init"}.
func ReturnExempt(names ...string) Option {
	return func(o *options) { o.returnExempt = names }
}

// WithViolationSink attaches a sink that observes every violation, including
// construction-time default violations.
func WithViolationSink(s ViolationSink) Option {
	return func(o *options) { o.sink = s }
}

// WithStats attaches a stats sink that observes every verification.
func WithStats(s StatsSink) Option {
	return func(o *options) { o.stats = s }
}

var defaultReturnExempt = []string{"Init"}

// signature is the analyzed model of a callable: the ordered parameter
// specs plus the metadata the validator engine needs for binding.
type signature struct {
	name    string
	params  []ParameterSpec
	normals []int // indexes into params, positional order
	self    int   // index of the self-like parameter, -1 when absent
	vararg  int   // index of the variadic positional pack, -1 when absent
	kwPack  int   // index of the variadic keyword pack, -1 when absent
	returns TypeSpec

	// errResult records a trailing error result, passed through unvalidated.
	errResult bool
}

var errorType = reflect.TypeOf((*error)(nil)).Elem()

// analyze inspects a callable's reflected type together with the declared
// schema and produces the signature model. All required-annotation policy is
// applied here, at analysis time, never at call time.
func analyze(fn any, o *options) (*signature, error) {
	fv := reflect.ValueOf(fn)
	if !fv.IsValid() || fv.Kind() != reflect.Func {
		return nil, fmt.Errorf("contract: %T is not a function", fn)
	}
	ft := fv.Type()

	sig := &signature{
		name:   o.name,
		self:   -1,
		vararg: -1,
		kwPack: -1,
	}
	if sig.name == "" {
		sig.name = funcBaseName(fv)
	}

	if len(o.paramNames) > ft.NumIn() {
		return nil, fmt.Errorf("contract: %d parameter names declared for '%s', which has %d parameters",
			len(o.paramNames), sig.name, ft.NumIn())
	}

	names, err := resolveNames(ft, o, sig.name)
	if err != nil {
		return nil, err
	}

	for i := 0; i < ft.NumIn(); i++ {
		p := ParameterSpec{Name: names[i], Kind: KindNormal}
		declared := ft.In(i)

		switch {
		case o.ignoreSelf && i == 0:
			p.Kind = KindSelfLike
		case ft.IsVariadic() && i == ft.NumIn()-1:
			p.Kind = KindVariadicPositional
			declared = declared.Elem()
		case o.hasKwPack && names[i] == o.kwPackName:
			if declared.Kind() != reflect.Map || declared.Key().Kind() != reflect.String {
				return nil, fmt.Errorf("contract: keyword pack '%s' of '%s' must be a map with string keys, have %s",
					p.Name, sig.name, declared)
			}
			lastNonVariadic := ft.NumIn() - 1
			if ft.IsVariadic() {
				lastNonVariadic--
			}
			if i != lastNonVariadic {
				return nil, fmt.Errorf("contract: keyword pack '%s' of '%s' must be the last non-variadic parameter",
					p.Name, sig.name)
			}
			p.Kind = KindVariadicKeyword
			declared = declared.Elem()
		}

		var annot any = declared
		if p.Kind == KindVariadicKeyword && o.kwPackAnnot != nil {
			annot = o.kwPackAnnot
		}
		if override, ok := o.annotations[p.Name]; ok {
			annot = override
		}
		spec, err := translateAnnotation(annot)
		if err != nil {
			return nil, err
		}
		p.Declared = spec

		if dv, ok := o.defaults[p.Name]; ok {
			if p.Kind != KindNormal {
				return nil, fmt.Errorf("contract: parameter '%s' of '%s' cannot have a default", p.Name, sig.name)
			}
			p.Default = dv
			p.HasDefault = true
		}

		idx := len(sig.params)
		sig.params = append(sig.params, p)
		switch p.Kind {
		case KindNormal:
			sig.normals = append(sig.normals, idx)
		case KindSelfLike:
			sig.self = idx
		case KindVariadicPositional:
			sig.vararg = idx
		case KindVariadicKeyword:
			sig.kwPack = idx
		}
	}

	if o.hasKwPack && sig.kwPack == -1 {
		return nil, fmt.Errorf("contract: keyword pack '%s' does not name a parameter of '%s'", o.kwPackName, sig.name)
	}
	for name := range o.annotations {
		if paramIndex(sig.params, name) == -1 {
			return nil, fmt.Errorf("contract: annotation for unknown parameter '%s' of '%s'", name, sig.name)
		}
	}
	for name := range o.defaults {
		if paramIndex(sig.params, name) == -1 {
			return nil, fmt.Errorf("contract: default for unknown parameter '%s' of '%s'", name, sig.name)
		}
	}

	if err := checkRequiredAnnotations(sig, o); err != nil {
		return nil, err
	}

	returns, errResult, err := analyzeReturn(ft, o, sig.name)
	if err != nil {
		return nil, err
	}
	sig.returns = returns
	sig.errResult = errResult

	if o.requireReturn && sig.returns == Unspecified && !returnExempted(sig.name, o) {
		return nil, &UnspecifiedReturnTypeError{Func: sig.name}
	}

	return sig, nil
}

// resolveNames assigns a name to every parameter: declared names first,
// generated names for the rest. The self placeholder name must never collide
// with a real parameter's name, or the real parameter would be stripped from
// keyword binding instead of validated; collisions are resolved by aliasing
// the generated name until it is collision-free.
func resolveNames(ft reflect.Type, o *options, funcName string) ([]string, error) {
	taken := make(map[string]bool, ft.NumIn())
	for i, name := range o.paramNames {
		if name == "" {
			return nil, fmt.Errorf("contract: parameter %d of '%s' has an empty name", i, funcName)
		}
		if taken[name] {
			return nil, fmt.Errorf("contract: duplicate parameter name '%s' on '%s'", name, funcName)
		}
		taken[name] = true
	}

	names := make([]string, ft.NumIn())
	copy(names, o.paramNames)
	for i := len(o.paramNames); i < ft.NumIn(); i++ {
		base := fmt.Sprintf("arg%d", i)
		if o.ignoreSelf && i == 0 {
			base = "self"
		}
		names[i] = uniqueName(base, taken)
		taken[names[i]] = true
	}
	return names, nil
}

// uniqueName deterministically aliases base until it collides with nothing.
func uniqueName(base string, taken map[string]bool) string {
	name := base
	for n := 1; taken[name]; n++ {
		name = fmt.Sprintf("%s#%d", base, n)
	}
	return name
}

func checkRequiredAnnotations(sig *signature, o *options) error {
	if !o.requireArgs {
		return nil
	}
	// Packs are reported individually, in declaration order relative to the
	// normal parameters, so walk everything once.
	var missing []string
	for _, p := range sig.params {
		if p.Kind == KindSelfLike || p.Declared != Unspecified {
			continue
		}
		switch p.Kind {
		case KindVariadicPositional:
			return &UnspecifiedParameterTypeError{Func: sig.name, Params: []string{p.Name}, Packed: "positional"}
		case KindVariadicKeyword:
			return &UnspecifiedParameterTypeError{Func: sig.name, Params: []string{p.Name}, Packed: "keyword"}
		default:
			missing = append(missing, p.Name)
		}
	}
	if len(missing) > 0 {
		return &UnspecifiedParameterTypeError{Func: sig.name, Params: missing}
	}
	return nil
}

// analyzeReturn determines the declared return type. A trailing error result
// is the callable's failure channel, not a value, and is excluded from
// validation. Multiple value results are not supported.
func analyzeReturn(ft reflect.Type, o *options, funcName string) (TypeSpec, bool, error) {
	if o.hasReturn {
		spec, err := translateAnnotation(o.returnAnnot)
		if err != nil {
			return nil, false, err
		}
		errResult := ft.NumOut() > 0 && ft.Out(ft.NumOut()-1) == errorType
		return spec, errResult, nil
	}

	outs := ft.NumOut()
	errResult := outs > 0 && ft.Out(outs-1) == errorType
	if errResult {
		outs--
	}
	switch outs {
	case 0:
		return Unspecified, errResult, nil
	case 1:
		spec, err := translateAnnotation(ft.Out(0))
		if err != nil {
			return nil, false, err
		}
		return spec, errResult, nil
	default:
		return nil, false, fmt.Errorf("contract: '%s' has %d value results; at most one is supported", funcName, outs)
	}
}

func returnExempted(name string, o *options) bool {
	if !o.ignoreSelf {
		return false
	}
	exempt := o.returnExempt
	if exempt == nil {
		exempt = defaultReturnExempt
	}
	base := name
	if i := strings.LastIndex(base, "."); i >= 0 {
		base = base[i+1:]
	}
	for _, e := range exempt {
		if base == e {
			return true
		}
	}
	return false
}

func paramIndex(params []ParameterSpec, name string) int {
	for i, p := range params {
		if p.Name == name {
			return i
		}
	}
	return -1
}

// funcBaseName derives a message-friendly name from the function's runtime
// symbol, trimming the package path and closure suffixes.
func funcBaseName(fv reflect.Value) string {
	rf := runtime.FuncForPC(fv.Pointer())
	if rf == nil {
		return "func"
	}
	name := rf.Name()
	if i := strings.LastIndex(name, "/"); i >= 0 {
		name = name[i+1:]
	}
	if i := strings.Index(name, "."); i >= 0 {
		name = name[i+1:]
	}
	name = strings.TrimSuffix(name, "-fm")
	if name == "" {
		return "func"
	}
	return name
}
