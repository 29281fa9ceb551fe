package contract

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"unicode"
)

// ParseTypeExpr parses a textual type expression into a TypeSpec. It covers
// the declaration forms that cannot be spelled as a plain Go type:
//
//	"int"                     exact int
//	"string | int"            union
//	"float64?"                nullable: one of (float64, None)
//	"list[int]"               homogeneous slice, recursive
//	"list"                    slice with unconstrained elements
//	"tuple[str, int]"         fixed arity with per-slot specs
//	"tuple"                   unconstrained tuple
//	"array[float64, 2, any]"  numeric array with dtype and shape
//	"literal[2, 5, 'foo']"    enumerated allowed values
//	"none"                    nil only
//	"any"                     unspecified
//
// Unrecognized names and container forms fail with a TranslationError;
// unsupported generics never silently pass validation.
func ParseTypeExpr(src string) (TypeSpec, error) {
	p := &exprParser{src: src}
	p.next()
	spec, err := p.parseUnion()
	if err != nil {
		return nil, err
	}
	if p.tok.kind != tokEOF {
		return nil, p.errorf("unexpected %q after type expression", p.tok.text)
	}
	return spec, nil
}

type tokenKind int

const (
	tokEOF tokenKind = iota
	tokIdent
	tokNumber
	tokString
	tokPunct
)

type token struct {
	kind tokenKind
	text string
}

type exprParser struct {
	src string
	pos int
	tok token
}

func (p *exprParser) errorf(format string, args ...any) error {
	return &TranslationError{
		Annotation: p.src,
		Reason:     fmt.Sprintf(format, args...),
	}
}

func (p *exprParser) next() {
	for p.pos < len(p.src) && unicode.IsSpace(rune(p.src[p.pos])) {
		p.pos++
	}
	if p.pos >= len(p.src) {
		p.tok = token{kind: tokEOF}
		return
	}
	c := p.src[p.pos]
	switch {
	case c == '_' || unicode.IsLetter(rune(c)):
		start := p.pos
		for p.pos < len(p.src) && (p.src[p.pos] == '_' || unicode.IsLetter(rune(p.src[p.pos])) || unicode.IsDigit(rune(p.src[p.pos]))) {
			p.pos++
		}
		p.tok = token{kind: tokIdent, text: p.src[start:p.pos]}
	case unicode.IsDigit(rune(c)) || c == '-':
		start := p.pos
		p.pos++
		for p.pos < len(p.src) && (unicode.IsDigit(rune(p.src[p.pos])) || p.src[p.pos] == '.') {
			p.pos++
		}
		p.tok = token{kind: tokNumber, text: p.src[start:p.pos]}
	case c == '\'' || c == '"':
		quote := c
		p.pos++
		start := p.pos
		for p.pos < len(p.src) && p.src[p.pos] != quote {
			p.pos++
		}
		if p.pos >= len(p.src) {
			p.tok = token{kind: tokString, text: p.src[start:]}
			p.pos = len(p.src)
			return
		}
		p.tok = token{kind: tokString, text: p.src[start:p.pos]}
		p.pos++ // closing quote
	default:
		p.tok = token{kind: tokPunct, text: string(c)}
		p.pos++
	}
}

func (p *exprParser) parseUnion() (TypeSpec, error) {
	first, err := p.parsePostfix()
	if err != nil {
		return nil, err
	}
	members := []TypeSpec{first}
	for p.tok.kind == tokPunct && p.tok.text == "|" {
		p.next()
		m, err := p.parsePostfix()
		if err != nil {
			return nil, err
		}
		members = append(members, m)
	}
	if len(members) == 1 {
		return members[0], nil
	}
	return oneOfSpec{members: members}, nil
}

func (p *exprParser) parsePostfix() (TypeSpec, error) {
	spec, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}
	if p.tok.kind == tokPunct && p.tok.text == "?" {
		p.next()
		return oneOfSpec{members: []TypeSpec{spec, None}}, nil
	}
	return spec, nil
}

func (p *exprParser) parsePrimary() (TypeSpec, error) {
	if p.tok.kind != tokIdent {
		return nil, p.errorf("expected a type name, found %q", p.tok.text)
	}
	name := p.tok.text
	p.next()

	bracketed := p.tok.kind == tokPunct && p.tok.text == "["

	switch strings.ToLower(name) {
	case "list":
		if !bracketed {
			return listSpec{elem: Unspecified}, nil
		}
		args, err := p.parseArgs(p.parseUnionArg)
		if err != nil {
			return nil, err
		}
		if len(args) != 1 {
			return nil, p.errorf("list takes exactly one element type, found %d", len(args))
		}
		return listSpec{elem: args[0]}, nil
	case "tuple":
		if !bracketed {
			return tupleSpec{}, nil
		}
		args, err := p.parseArgs(p.parseUnionArg)
		if err != nil {
			return nil, err
		}
		return tupleSpec{slots: args, constrained: true}, nil
	case "array":
		if !bracketed {
			return arraySpec{}, nil
		}
		return p.parseArraySpec()
	case "literal":
		if !bracketed {
			return nil, p.errorf("literal requires enumerated values")
		}
		return p.parseLiteralSpec()
	}

	if bracketed {
		return nil, p.errorf("unsupported parameterized form %q", name)
	}
	return p.namedSpec(name)
}

// parseArgs consumes "[ arg (, arg)* ]" using the supplied element parser.
func (p *exprParser) parseArgs(parse func() (TypeSpec, error)) ([]TypeSpec, error) {
	p.next() // consume "["
	var args []TypeSpec
	for {
		arg, err := parse()
		if err != nil {
			return nil, err
		}
		args = append(args, arg)
		if p.tok.kind == tokPunct && p.tok.text == "," {
			p.next()
			continue
		}
		break
	}
	if p.tok.kind != tokPunct || p.tok.text != "]" {
		return nil, p.errorf("expected ']', found %q", p.tok.text)
	}
	p.next()
	return args, nil
}

func (p *exprParser) parseUnionArg() (TypeSpec, error) {
	return p.parseUnion()
}

func (p *exprParser) parseArraySpec() (TypeSpec, error) {
	p.next() // consume "["
	if p.tok.kind != tokIdent {
		return nil, p.errorf("array requires a dtype, found %q", p.tok.text)
	}
	dtype, ok := numericKindNames[strings.ToLower(p.tok.text)]
	if !ok {
		return nil, p.errorf("unknown array dtype %q", p.tok.text)
	}
	p.next()

	var shape []int
	for p.tok.kind == tokPunct && p.tok.text == "," {
		p.next()
		switch {
		case p.tok.kind == tokIdent && strings.ToLower(p.tok.text) == "any":
			shape = append(shape, AnyDim)
		case p.tok.kind == tokNumber:
			n, err := strconv.Atoi(p.tok.text)
			if err != nil || n < 0 {
				return nil, p.errorf("invalid array dimension %q", p.tok.text)
			}
			shape = append(shape, n)
		default:
			return nil, p.errorf("invalid array dimension %q", p.tok.text)
		}
		p.next()
	}
	if p.tok.kind != tokPunct || p.tok.text != "]" {
		return nil, p.errorf("expected ']', found %q", p.tok.text)
	}
	p.next()
	return arraySpec{dtype: dtype, shape: shape}, nil
}

func (p *exprParser) parseLiteralSpec() (TypeSpec, error) {
	p.next() // consume "["
	var values []any
	for {
		switch p.tok.kind {
		case tokString:
			values = append(values, p.tok.text)
		case tokNumber:
			if strings.Contains(p.tok.text, ".") {
				f, err := strconv.ParseFloat(p.tok.text, 64)
				if err != nil {
					return nil, p.errorf("invalid literal %q", p.tok.text)
				}
				values = append(values, f)
			} else {
				n, err := strconv.Atoi(p.tok.text)
				if err != nil {
					return nil, p.errorf("invalid literal %q", p.tok.text)
				}
				values = append(values, n)
			}
		case tokIdent:
			switch strings.ToLower(p.tok.text) {
			case "true":
				values = append(values, true)
			case "false":
				values = append(values, false)
			case "none", "nil":
				values = append(values, nil)
			default:
				return nil, p.errorf("invalid literal %q", p.tok.text)
			}
		default:
			return nil, p.errorf("invalid literal %q", p.tok.text)
		}
		p.next()
		if p.tok.kind == tokPunct && p.tok.text == "," {
			p.next()
			continue
		}
		break
	}
	if p.tok.kind != tokPunct || p.tok.text != "]" {
		return nil, p.errorf("expected ']', found %q", p.tok.text)
	}
	p.next()
	return literalSpec{values: values}, nil
}

// namedSpec resolves a bare type name.
func (p *exprParser) namedSpec(name string) (TypeSpec, error) {
	switch strings.ToLower(name) {
	case "any":
		return Unspecified, nil
	case "none", "nil":
		return None, nil
	case "str", "string":
		return exactSpec{typ: reflect.TypeOf("")}, nil
	case "bool":
		return exactSpec{typ: reflect.TypeOf(false)}, nil
	}
	if k, ok := numericKindNames[strings.ToLower(name)]; ok {
		return exactSpec{typ: kindType(k)}, nil
	}
	return nil, p.errorf("unknown type name %q", name)
}

var numericKindNames = map[string]reflect.Kind{
	"int":        reflect.Int,
	"int8":       reflect.Int8,
	"int16":      reflect.Int16,
	"int32":      reflect.Int32,
	"int64":      reflect.Int64,
	"uint":       reflect.Uint,
	"uint8":      reflect.Uint8,
	"uint16":     reflect.Uint16,
	"uint32":     reflect.Uint32,
	"uint64":     reflect.Uint64,
	"float32":    reflect.Float32,
	"float64":    reflect.Float64,
	"float":      reflect.Float64,
	"complex64":  reflect.Complex64,
	"complex128": reflect.Complex128,
}

func kindType(k reflect.Kind) reflect.Type {
	switch k {
	case reflect.Int:
		return reflect.TypeOf(int(0))
	case reflect.Int8:
		return reflect.TypeOf(int8(0))
	case reflect.Int16:
		return reflect.TypeOf(int16(0))
	case reflect.Int32:
		return reflect.TypeOf(int32(0))
	case reflect.Int64:
		return reflect.TypeOf(int64(0))
	case reflect.Uint:
		return reflect.TypeOf(uint(0))
	case reflect.Uint8:
		return reflect.TypeOf(uint8(0))
	case reflect.Uint16:
		return reflect.TypeOf(uint16(0))
	case reflect.Uint32:
		return reflect.TypeOf(uint32(0))
	case reflect.Uint64:
		return reflect.TypeOf(uint64(0))
	case reflect.Float32:
		return reflect.TypeOf(float32(0))
	case reflect.Float64:
		return reflect.TypeOf(float64(0))
	case reflect.Complex64:
		return reflect.TypeOf(complex64(0))
	case reflect.Complex128:
		return reflect.TypeOf(complex128(0))
	default:
		return reflect.TypeOf((*any)(nil)).Elem()
	}
}
