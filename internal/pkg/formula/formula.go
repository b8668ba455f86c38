// Package formula evaluates payhead calculation formulas: arithmetic
// expressions over named variables with a closed operator set
// (+ - * / ^ sqrt abs). Formulas come from payhead configuration and are
// never treated as code.
package formula

import (
	"fmt"
	"math"
	"strings"
)

// Mode selects how a batch of formula evaluations reacts to a failure.
type Mode int

const (
	// ModeStrict invalidates the whole batch on any single failure.
	// Used by the committing pass: partial employee results must not be persisted.
	ModeStrict Mode = iota
	// ModeSuppress keeps going and leaves the failing entry at zero.
	// Used for exploratory evaluation.
	ModeSuppress
)

// EvaluationError reports a formula that could not be evaluated.
type EvaluationError struct {
	Formula string
	Pos     int
	Reason  string
}

func (e *EvaluationError) Error() string {
	return fmt.Sprintf("cannot evaluate %q at position %d: %s", e.Formula, e.Pos, e.Reason)
}

// Env is an explicit, insertion-ordered variable environment. Later bindings
// for the same name overwrite the value but keep the original position, so a
// payhead pass that re-binds a variable stays deterministic.
type Env struct {
	names  []string
	values map[string]float64
}

func NewEnv() *Env {
	return &Env{values: make(map[string]float64)}
}

func (e *Env) Set(name string, value float64) {
	if _, ok := e.values[name]; !ok {
		e.names = append(e.names, name)
	}
	e.values[name] = value
}

func (e *Env) Get(name string) (float64, bool) {
	v, ok := e.values[name]
	return v, ok
}

// Names returns the variable names in insertion order.
func (e *Env) Names() []string {
	out := make([]string, len(e.names))
	copy(out, e.names)
	return out
}

// sanitizer maps the user-facing glyphs payhead administrators type into
// evaluator-native forms. Applied before lexing, identically on every
// evaluation of the same source.
var sanitizer = strings.NewReplacer(
	"√", "sqrt",
	"×", "*",
	"÷", "/",
)

// Sanitize returns the evaluator-native form of a configured formula.
func Sanitize(src string) string {
	return sanitizer.Replace(src)
}

// Evaluate parses and evaluates a formula against env. It fails with an
// *EvaluationError when the formula is syntactically invalid, references an
// undefined variable, or produces a non-finite result (division by zero,
// square root of a negative).
func Evaluate(src string, env *Env) (float64, error) {
	p := &parser{src: src, input: Sanitize(src), env: env}
	p.next()
	v, err := p.parseExpr()
	if err != nil {
		return 0, err
	}
	if p.err != nil {
		return 0, p.err
	}
	if p.tok.kind != tokEOF {
		return 0, p.errorf(p.tok.pos, "unexpected %q", p.tok.text)
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, p.errorf(0, "result is not a finite number")
	}
	return v, nil
}

type tokenKind int

const (
	tokEOF tokenKind = iota
	tokNumber
	tokIdent
	tokOp    // + - * / ^
	tokLParen
	tokRParen
	tokComma
)

type token struct {
	kind tokenKind
	text string
	pos  int
}

type parser struct {
	src   string // original formula, for error messages
	input string // sanitized form being lexed
	off   int
	tok   token
	env   *Env
	err   *EvaluationError
}

func (p *parser) errorf(pos int, format string, args ...interface{}) error {
	return &EvaluationError{Formula: p.src, Pos: pos, Reason: fmt.Sprintf(format, args...)}
}

func (p *parser) next() {
	for p.off < len(p.input) && (p.input[p.off] == ' ' || p.input[p.off] == '\t' || p.input[p.off] == '\n' || p.input[p.off] == '\r') {
		p.off++
	}
	start := p.off
	if p.off >= len(p.input) {
		p.tok = token{kind: tokEOF, pos: start}
		return
	}

	c := p.input[p.off]
	switch {
	case c >= '0' && c <= '9' || c == '.':
		for p.off < len(p.input) && (p.input[p.off] >= '0' && p.input[p.off] <= '9' || p.input[p.off] == '.') {
			p.off++
		}
		p.tok = token{kind: tokNumber, text: p.input[start:p.off], pos: start}
	case isIdentStart(c):
		for p.off < len(p.input) && isIdentPart(p.input[p.off]) {
			p.off++
		}
		p.tok = token{kind: tokIdent, text: p.input[start:p.off], pos: start}
	case c == '+' || c == '-' || c == '*' || c == '/' || c == '^':
		p.off++
		p.tok = token{kind: tokOp, text: string(c), pos: start}
	case c == '(':
		p.off++
		p.tok = token{kind: tokLParen, text: "(", pos: start}
	case c == ')':
		p.off++
		p.tok = token{kind: tokRParen, text: ")", pos: start}
	case c == ',':
		p.off++
		p.tok = token{kind: tokComma, text: ",", pos: start}
	default:
		p.off++
		p.tok = token{kind: tokEOF, text: string(c), pos: start}
		if p.err == nil {
			p.err = &EvaluationError{Formula: p.src, Pos: start, Reason: fmt.Sprintf("invalid character %q", c)}
		}
	}
}

func isIdentStart(c byte) bool {
	return c == '_' || c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z'
}

func isIdentPart(c byte) bool {
	return isIdentStart(c) || c >= '0' && c <= '9'
}

// parseExpr := parseTerm { (+|-) parseTerm }
func (p *parser) parseExpr() (float64, error) {
	left, err := p.parseTerm()
	if err != nil {
		return 0, err
	}
	for p.tok.kind == tokOp && (p.tok.text == "+" || p.tok.text == "-") {
		op := p.tok.text
		p.next()
		right, err := p.parseTerm()
		if err != nil {
			return 0, err
		}
		if op == "+" {
			left += right
		} else {
			left -= right
		}
	}
	return left, nil
}

// parseTerm := parseUnary { (*|/) parseUnary }
func (p *parser) parseTerm() (float64, error) {
	left, err := p.parseUnary()
	if err != nil {
		return 0, err
	}
	for p.tok.kind == tokOp && (p.tok.text == "*" || p.tok.text == "/") {
		op := p.tok.text
		pos := p.tok.pos
		p.next()
		right, err := p.parseUnary()
		if err != nil {
			return 0, err
		}
		if op == "*" {
			left *= right
		} else {
			if right == 0 {
				return 0, p.errorf(pos, "division by zero")
			}
			left /= right
		}
	}
	return left, nil
}

// parseUnary := - parseUnary | parsePower
func (p *parser) parseUnary() (float64, error) {
	if p.tok.kind == tokOp && p.tok.text == "-" {
		p.next()
		v, err := p.parseUnary()
		if err != nil {
			return 0, err
		}
		return -v, nil
	}
	return p.parsePower()
}

// parsePower := parsePrimary [ ^ parseUnary ]   (right associative)
func (p *parser) parsePower() (float64, error) {
	base, err := p.parsePrimary()
	if err != nil {
		return 0, err
	}
	if p.tok.kind == tokOp && p.tok.text == "^" {
		p.next()
		exp, err := p.parseUnary()
		if err != nil {
			return 0, err
		}
		return math.Pow(base, exp), nil
	}
	return base, nil
}

func (p *parser) parsePrimary() (float64, error) {
	if p.err != nil {
		return 0, p.err
	}
	switch p.tok.kind {
	case tokNumber:
		var v float64
		if _, err := fmt.Sscanf(p.tok.text, "%g", &v); err != nil {
			return 0, p.errorf(p.tok.pos, "invalid number %q", p.tok.text)
		}
		p.next()
		return v, nil
	case tokIdent:
		name := p.tok.text
		pos := p.tok.pos
		p.next()
		if p.tok.kind == tokLParen {
			return p.parseCall(name, pos)
		}
		v, ok := p.env.Get(name)
		if !ok {
			return 0, p.errorf(pos, "undefined variable %q", name)
		}
		return v, nil
	case tokLParen:
		p.next()
		v, err := p.parseExpr()
		if err != nil {
			return 0, err
		}
		if p.tok.kind != tokRParen {
			return 0, p.errorf(p.tok.pos, "expected closing parenthesis")
		}
		p.next()
		return v, nil
	default:
		return 0, p.errorf(p.tok.pos, "unexpected %q", p.tok.text)
	}
}

func (p *parser) parseCall(name string, pos int) (float64, error) {
	p.next() // consume '('
	arg, err := p.parseExpr()
	if err != nil {
		return 0, err
	}
	if p.tok.kind != tokRParen {
		return 0, p.errorf(p.tok.pos, "expected closing parenthesis after %s argument", name)
	}
	p.next()

	switch name {
	case "sqrt":
		if arg < 0 {
			return 0, p.errorf(pos, "square root of negative number")
		}
		return math.Sqrt(arg), nil
	case "abs":
		return math.Abs(arg), nil
	default:
		return 0, p.errorf(pos, "unknown function %q", name)
	}
}
