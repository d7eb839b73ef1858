package earnings

import (
	"math"
	"strconv"
	"strings"
	"unicode"
)

// Custom formulas are parsed by a small recursive-descent parser that knows
// only numbers, the duty variable table, a handful of functions and
//
//	+  -  *  /  %  **  ( )  ,
//
// Anything else is a parse error, so there is no path from a formula to
// attribute access, imports or general evaluation.
//
//	expr    = term { ("+" | "-") term }
//	term    = unary { ("*" | "/" | "%") unary }
//	unary   = ("-" | "+") unary | power
//	power   = primary [ "**" unary ]
//	primary = number | name | name "(" [ expr { "," expr } ] ")" | "(" expr ")"

const maxFormulaLength = 2000

// reserved words are rejected with a dedicated message even though the
// grammar would refuse them anyway.
var reservedWords = map[string]bool{
	"import": true, "exec": true, "eval": true, "open": true, "lambda": true,
	"globals": true, "locals": true, "getattr": true, "compile": true,
}

type formulaFunc struct {
	minArgs, maxArgs int // maxArgs < 0 means variadic
	call             func(args []float64) (float64, error)
}

var formulaFuncs = map[string]formulaFunc{
	"abs": {1, 1, func(a []float64) (float64, error) { return math.Abs(a[0]), nil }},
	"max": {1, -1, func(a []float64) (float64, error) {
		m := a[0]
		for _, v := range a[1:] {
			m = math.Max(m, v)
		}
		return m, nil
	}},
	"min": {1, -1, func(a []float64) (float64, error) {
		m := a[0]
		for _, v := range a[1:] {
			m = math.Min(m, v)
		}
		return m, nil
	}},
	"round": {1, 2, func(a []float64) (float64, error) {
		if len(a) == 1 {
			return math.RoundToEven(a[0]), nil
		}
		scale := math.Pow(10, math.Trunc(a[1]))
		return math.RoundToEven(a[0]*scale) / scale, nil
	}},
	"sum": {0, -1, func(a []float64) (float64, error) {
		var s float64
		for _, v := range a {
			s += v
		}
		return s, nil
	}},
	"pow": {2, 2, func(a []float64) (float64, error) { return math.Pow(a[0], a[1]), nil }},
	"len": {0, -1, func(a []float64) (float64, error) { return float64(len(a)), nil }},
}

// EvaluateFormula parses and evaluates formula against vars. Any failure is
// returned as a *FormulaError; a non-finite result is an evaluation error.
func EvaluateFormula(formula string, vars map[string]float64) (float64, error) {
	expr, err := ParseFormula(formula, vars)
	if err != nil {
		return 0, err
	}
	v, err := expr.eval(vars)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, &FormulaError{Kind: ErrFormulaEval, Msg: "result is not a finite number"}
	}
	return v, nil
}

// ValidateFormula checks that formula parses against the duty variable table.
func ValidateFormula(formula string) error {
	_, err := ParseFormula(formula, Facts{}.variables())
	return err
}

// Formula is a parsed expression.
type Formula struct {
	root node
}

func (f *Formula) eval(vars map[string]float64) (float64, error) {
	return f.root.eval(vars)
}

// ParseFormula validates formula against the names in vars without
// evaluating it.
func ParseFormula(formula string, vars map[string]float64) (*Formula, error) {
	if strings.TrimSpace(formula) == "" {
		return nil, &FormulaError{Kind: ErrFormulaSyntax, Msg: "empty formula"}
	}
	if len(formula) > maxFormulaLength {
		return nil, &FormulaError{Kind: ErrFormulaSyntax, Msg: "formula too long"}
	}

	toks, err := tokenize(formula)
	if err != nil {
		return nil, err
	}
	p := &parser{toks: toks, vars: vars}
	root, err := p.expr()
	if err != nil {
		return nil, err
	}
	if t := p.peek(); t.kind != tokEOF {
		return nil, &FormulaError{Kind: ErrFormulaSyntax, Pos: t.pos, Msg: "unexpected " + strconv.Quote(t.text)}
	}
	return &Formula{root: root}, nil
}

// ---- lexer ----

type tokKind int

const (
	tokEOF tokKind = iota
	tokNum
	tokName
	tokOp
)

type token struct {
	kind tokKind
	text string
	num  float64
	pos  int
}

func tokenize(src string) ([]token, error) {
	var toks []token
	for i := 0; i < len(src); {
		c := rune(src[i])
		switch {
		case unicode.IsSpace(c):
			i++
		case unicode.IsDigit(c) || (c == '.' && i+1 < len(src) && unicode.IsDigit(rune(src[i+1]))):
			start := i
			for i < len(src) && (unicode.IsDigit(rune(src[i])) || src[i] == '.') {
				i++
			}
			if i < len(src) && (src[i] == 'e' || src[i] == 'E') {
				j := i + 1
				if j < len(src) && (src[j] == '+' || src[j] == '-') {
					j++
				}
				if j < len(src) && unicode.IsDigit(rune(src[j])) {
					i = j
					for i < len(src) && unicode.IsDigit(rune(src[i])) {
						i++
					}
				}
			}
			text := src[start:i]
			n, err := strconv.ParseFloat(text, 64)
			if err != nil {
				return nil, &FormulaError{Kind: ErrFormulaSyntax, Pos: start, Msg: "bad number " + strconv.Quote(text)}
			}
			toks = append(toks, token{kind: tokNum, text: text, num: n, pos: start})
		case c == '_' || unicode.IsLetter(c):
			start := i
			for i < len(src) && (src[i] == '_' || unicode.IsLetter(rune(src[i])) || unicode.IsDigit(rune(src[i]))) {
				i++
			}
			name := src[start:i]
			if strings.Contains(name, "__") || reservedWords[name] {
				return nil, &FormulaError{Kind: ErrFormulaIdentifier, Pos: start, Msg: "forbidden name " + strconv.Quote(name)}
			}
			toks = append(toks, token{kind: tokName, text: name, pos: start})
		case c == '*' && i+1 < len(src) && src[i+1] == '*':
			toks = append(toks, token{kind: tokOp, text: "**", pos: i})
			i += 2
		case strings.ContainsRune("+-*/%(),", c):
			toks = append(toks, token{kind: tokOp, text: string(c), pos: i})
			i++
		default:
			return nil, &FormulaError{Kind: ErrFormulaSyntax, Pos: i, Msg: "unexpected character " + strconv.QuoteRune(c)}
		}
	}
	return append(toks, token{kind: tokEOF, pos: len(src)}), nil
}

// ---- parser ----

type parser struct {
	toks []token
	i    int
	vars map[string]float64
}

func (p *parser) peek() token { return p.toks[p.i] }

func (p *parser) next() token {
	t := p.toks[p.i]
	if t.kind != tokEOF {
		p.i++
	}
	return t
}

func (p *parser) isOp(text string) bool {
	t := p.peek()
	return t.kind == tokOp && t.text == text
}

func (p *parser) expect(text string) error {
	if !p.isOp(text) {
		t := p.peek()
		return &FormulaError{Kind: ErrFormulaSyntax, Pos: t.pos, Msg: "expected " + strconv.Quote(text)}
	}
	p.next()
	return nil
}

func (p *parser) expr() (node, error) {
	left, err := p.term()
	if err != nil {
		return nil, err
	}
	for p.isOp("+") || p.isOp("-") {
		op := p.next()
		right, err := p.term()
		if err != nil {
			return nil, err
		}
		left = binary{op: op.text, pos: op.pos, l: left, r: right}
	}
	return left, nil
}

func (p *parser) term() (node, error) {
	left, err := p.unary()
	if err != nil {
		return nil, err
	}
	for p.isOp("*") || p.isOp("/") || p.isOp("%") {
		op := p.next()
		right, err := p.unary()
		if err != nil {
			return nil, err
		}
		left = binary{op: op.text, pos: op.pos, l: left, r: right}
	}
	return left, nil
}

func (p *parser) unary() (node, error) {
	if p.isOp("-") || p.isOp("+") {
		op := p.next()
		operand, err := p.unary()
		if err != nil {
			return nil, err
		}
		if op.text == "-" {
			return negate{operand}, nil
		}
		return operand, nil
	}
	return p.power()
}

func (p *parser) power() (node, error) {
	base, err := p.primary()
	if err != nil {
		return nil, err
	}
	if p.isOp("**") {
		op := p.next()
		exp, err := p.unary()
		if err != nil {
			return nil, err
		}
		return binary{op: "**", pos: op.pos, l: base, r: exp}, nil
	}
	return base, nil
}

func (p *parser) primary() (node, error) {
	t := p.next()
	switch {
	case t.kind == tokNum:
		return number(t.num), nil
	case t.kind == tokName:
		if p.isOp("(") {
			return p.call(t)
		}
		if _, ok := p.vars[t.text]; !ok {
			return nil, &FormulaError{Kind: ErrFormulaIdentifier, Pos: t.pos, Msg: "unknown variable " + strconv.Quote(t.text)}
		}
		return variable(t.text), nil
	case t.kind == tokOp && t.text == "(":
		inner, err := p.expr()
		if err != nil {
			return nil, err
		}
		if err := p.expect(")"); err != nil {
			return nil, err
		}
		return inner, nil
	case t.kind == tokEOF:
		return nil, &FormulaError{Kind: ErrFormulaSyntax, Pos: t.pos, Msg: "unexpected end of formula"}
	default:
		return nil, &FormulaError{Kind: ErrFormulaSyntax, Pos: t.pos, Msg: "unexpected " + strconv.Quote(t.text)}
	}
}

func (p *parser) call(name token) (node, error) {
	fn, ok := formulaFuncs[name.text]
	if !ok {
		return nil, &FormulaError{Kind: ErrFormulaIdentifier, Pos: name.pos, Msg: "unknown function " + strconv.Quote(name.text)}
	}
	p.next() // "("

	var args []node
	if !p.isOp(")") {
		for {
			arg, err := p.expr()
			if err != nil {
				return nil, err
			}
			args = append(args, arg)
			if !p.isOp(",") {
				break
			}
			p.next()
		}
	}
	if err := p.expect(")"); err != nil {
		return nil, err
	}

	if len(args) < fn.minArgs || (fn.maxArgs >= 0 && len(args) > fn.maxArgs) {
		return nil, &FormulaError{Kind: ErrFormulaSyntax, Pos: name.pos, Msg: "wrong number of arguments to " + name.text}
	}
	return call{fn: fn, name: name.text, pos: name.pos, args: args}, nil
}

// ---- evaluation ----

type node interface {
	eval(vars map[string]float64) (float64, error)
}

type number float64

func (n number) eval(map[string]float64) (float64, error) { return float64(n), nil }

type variable string

func (v variable) eval(vars map[string]float64) (float64, error) { return vars[string(v)], nil }

type negate struct{ x node }

func (n negate) eval(vars map[string]float64) (float64, error) {
	v, err := n.x.eval(vars)
	return -v, err
}

type binary struct {
	op   string
	pos  int
	l, r node
}

func (b binary) eval(vars map[string]float64) (float64, error) {
	l, err := b.l.eval(vars)
	if err != nil {
		return 0, err
	}
	r, err := b.r.eval(vars)
	if err != nil {
		return 0, err
	}
	switch b.op {
	case "+":
		return l + r, nil
	case "-":
		return l - r, nil
	case "*":
		return l * r, nil
	case "/":
		if r == 0 {
			return 0, &FormulaError{Kind: ErrFormulaEval, Pos: b.pos, Msg: "division by zero"}
		}
		return l / r, nil
	case "%":
		if r == 0 {
			return 0, &FormulaError{Kind: ErrFormulaEval, Pos: b.pos, Msg: "modulo by zero"}
		}
		m := math.Mod(l, r)
		if m != 0 && (m < 0) != (r < 0) {
			m += r
		}
		return m, nil
	case "**":
		return math.Pow(l, r), nil
	}
	return 0, &FormulaError{Kind: ErrFormulaEval, Pos: b.pos, Msg: "unknown operator " + b.op}
}

type call struct {
	fn   formulaFunc
	name string
	pos  int
	args []node
}

func (c call) eval(vars map[string]float64) (float64, error) {
	vals := make([]float64, len(c.args))
	for i, a := range c.args {
		v, err := a.eval(vars)
		if err != nil {
			return 0, err
		}
		vals[i] = v
	}
	return c.fn.call(vals)
}
