package contract

import (
	"errors"
	"strings"
	"testing"
)

func TestRequireArgs_ListsOffendersInDeclarationOrder(t *testing.T) {
	fn := func(a any, b int, c any) {}

	_, err := New(fn, ParamNames("a", "b", "c"), RequireArgs())

	var uerr *UnspecifiedParameterTypeError
	if !errors.As(err, &uerr) {
		t.Fatalf("New() error = %v, want *UnspecifiedParameterTypeError", err)
	}
	if len(uerr.Params) != 2 || uerr.Params[0] != "a" || uerr.Params[1] != "c" {
		t.Errorf("Params = %v, want [a c]", uerr.Params)
	}
	if !strings.Contains(uerr.Error(), "'a'") || !strings.Contains(uerr.Error(), "'c'") {
		t.Errorf("Error() = %q, want both offenders named", uerr.Error())
	}
}

func TestRequireArgs_SatisfiedByAnnotationOverride(t *testing.T) {
	fn := func(a any) {}

	_, err := New(fn, ParamNames("a"), Annotate("a", "int|string"), RequireArgs())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
}

func TestRequireArgs_UnannotatedVariadicPositional(t *testing.T) {
	fn := func(a int, rest ...any) {}

	_, err := New(fn, ParamNames("a", "rest"), RequireArgs())

	var uerr *UnspecifiedParameterTypeError
	if !errors.As(err, &uerr) {
		t.Fatalf("New() error = %v, want *UnspecifiedParameterTypeError", err)
	}
	if uerr.Packed != "positional" || uerr.Params[0] != "rest" {
		t.Errorf("Packed, Params = %q, %v; want positional pack 'rest'", uerr.Packed, uerr.Params)
	}
}

func TestRequireArgs_UnannotatedKeywordPack(t *testing.T) {
	fn := func(a int, opts map[string]any) {}

	_, err := New(fn,
		ParamNames("a", "opts"),
		KeywordPack("opts", nil),
		RequireArgs(),
	)

	var uerr *UnspecifiedParameterTypeError
	if !errors.As(err, &uerr) {
		t.Fatalf("New() error = %v, want *UnspecifiedParameterTypeError", err)
	}
	if uerr.Packed != "keyword" {
		t.Errorf("Packed = %q, want keyword", uerr.Packed)
	}
}

func TestRequireArgs_UnannotatedPacksLegalWhenNotRequired(t *testing.T) {
	fn := func(a int, opts map[string]any, rest ...any) {}

	_, err := New(fn, ParamNames("a", "opts", "rest"), KeywordPack("opts", nil))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
}

func TestRequireReturn_Missing(t *testing.T) {
	fn := func(a int) {}

	_, err := New(fn, ParamNames("a"), RequireReturn())

	var uerr *UnspecifiedReturnTypeError
	if !errors.As(err, &uerr) {
		t.Fatalf("New() error = %v, want *UnspecifiedReturnTypeError", err)
	}
}

func TestRequireReturn_SatisfiedByAnyReturn(t *testing.T) {
	fn := func(a int) any { return nil }

	// An interface{} result is an unspecified declaration.
	if _, err := New(fn, ParamNames("a"), RequireReturn()); err == nil {
		t.Fatal("New() expected error for any-typed return")
	}

	typed := func(a int) int { return a }
	if _, err := New(typed, ParamNames("a"), RequireReturn()); err != nil {
		t.Fatalf("New() error = %v", err)
	}
}

func TestRequireReturn_ConstructorExemption(t *testing.T) {
	fn := func(self any, a int) {}

	// Constructor-style names skip the required-return check, but only for
	// methods (IgnoreSelf set).
	_, err := New(fn,
		FuncName("Init"),
		ParamNames("self", "a"),
		IgnoreSelf(),
		RequireReturn(),
	)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	_, err = New(fn, FuncName("Init"), ParamNames("self", "a"), RequireReturn())
	if err == nil {
		t.Fatal("New() without IgnoreSelf expected error")
	}
}

func TestRequireReturn_ExemptionOverride(t *testing.T) {
	fn := func(self any, a int) {}

	_, err := New(fn,
		FuncName("Setup"),
		ParamNames("self", "a"),
		IgnoreSelf(),
		RequireReturn(),
		ReturnExempt("Setup"),
	)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
}

func TestIgnoreSelf_AnnotatedReceiverStillExempt(t *testing.T) {
	// Exemption always wins over a conflicting receiver annotation.
	fn := func(self int, a int) {}

	enf, err := New(fn,
		ParamNames("self", "a"),
		IgnoreSelf(),
		RequireArgs(),
	)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if err := enf.VerifyArgs([]any{"not an int", 1}, nil); err != nil {
		t.Errorf("VerifyArgs() error = %v; receiver must never be validated", err)
	}
}

func TestAnalyze_GeneratedNamesAvoidCollision(t *testing.T) {
	fn := func(a, b any) {}

	// The user-declared name occupies the generator's first choice for
	// parameter 1; the generated name must not collide with it.
	enf, err := New(fn, ParamNames("arg1"))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	params := enf.Parameters()
	if params[0].Name != "arg1" {
		t.Errorf("params[0].Name = %q, want arg1", params[0].Name)
	}
	if params[1].Name == "arg1" {
		t.Error("generated name collides with declared name")
	}
}

func TestAnalyze_DuplicateNamesRejected(t *testing.T) {
	fn := func(a, b int) {}

	if _, err := New(fn, ParamNames("a", "a")); err == nil {
		t.Fatal("New() expected duplicate-name error")
	}
}

func TestAnalyze_TooManyNamesRejected(t *testing.T) {
	fn := func(a int) {}

	if _, err := New(fn, ParamNames("a", "b")); err == nil {
		t.Fatal("New() expected error for surplus names")
	}
}

func TestAnalyze_UnknownAnnotationTarget(t *testing.T) {
	fn := func(a int) {}

	if _, err := New(fn, ParamNames("a"), Annotate("nope", "int")); err == nil {
		t.Fatal("New() expected error for unknown annotation target")
	}
}

func TestAnalyze_UnknownDefaultTarget(t *testing.T) {
	fn := func(a int) {}

	if _, err := New(fn, ParamNames("a"), Default("nope", 1)); err == nil {
		t.Fatal("New() expected error for unknown default target")
	}
}

func TestAnalyze_DefaultOnVariadicRejected(t *testing.T) {
	fn := func(a int, rest ...int) {}

	if _, err := New(fn, ParamNames("a", "rest"), Default("rest", 1)); err == nil {
		t.Fatal("New() expected error for default on variadic parameter")
	}
}

func TestAnalyze_KeywordPackMustBeStringKeyedMap(t *testing.T) {
	fn := func(a int, opts []string) {}

	if _, err := New(fn, ParamNames("a", "opts"), KeywordPack("opts", nil)); err == nil {
		t.Fatal("New() expected error for non-map keyword pack")
	}

	intKeyed := func(a int, opts map[int]string) {}
	if _, err := New(intKeyed, ParamNames("a", "opts"), KeywordPack("opts", nil)); err == nil {
		t.Fatal("New() expected error for int-keyed keyword pack")
	}
}

func TestAnalyze_KeywordPackMustBeLastNonVariadic(t *testing.T) {
	fn := func(opts map[string]any, a int) {}

	if _, err := New(fn, ParamNames("opts", "a"), KeywordPack("opts", nil)); err == nil {
		t.Fatal("New() expected position error for keyword pack")
	}
}

func TestAnalyze_MultipleValueResultsRejected(t *testing.T) {
	fn := func(a int) (int, int) { return 0, 0 }

	if _, err := New(fn, ParamNames("a")); err == nil {
		t.Fatal("New() expected error for multiple value results")
	}
}

func TestAnalyze_ValueAndErrorResultAccepted(t *testing.T) {
	fn := func(a int) (int, error) { return 0, nil }

	enf, err := New(fn, ParamNames("a"), RequireReturn())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if enf.ReturnSpec().String() != "int" {
		t.Errorf("ReturnSpec() = %q, want int", enf.ReturnSpec().String())
	}
}

func TestFuncBaseName_DerivedFromSymbol(t *testing.T) {
	enf, err := New(sampleCallable, ParamNames("a"))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if !strings.Contains(enf.Name(), "sampleCallable") {
		t.Errorf("Name() = %q, want it to contain sampleCallable", enf.Name())
	}
}

func sampleCallable(a int) int { return a }
