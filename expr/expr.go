package expr

import (
	"math"
	"strconv"
	"strings"

	"github.com/npillmayer/blockflow"
)

// Resolver resolves variable names to values.
type Resolver interface {
	Resolve(name string) (float64, bool)
}

// Vars is a simple Resolver backed by a map.
type Vars map[string]float64

// Resolve is part of interface Resolver.
func (v Vars) Resolve(name string) (float64, bool) {
	x, ok := v[name]
	return x, ok
}

// Tokenize splits an arithmetic expression into tokens. Any character which
// cannot start a number, a name, an operator or a bracket results in an
// ExpressionError of reason InvalidCharacters.
func Tokenize(expression string) ([]Token, error) {
	lex, err := Lexer()
	if err != nil {
		return nil, blockflow.Wrap(err, "cannot create lexer")
	}
	scan, err := lex.Scanner(expression)
	if err != nil {
		return nil, blockflow.ExprErrorf(blockflow.InvalidCharacters, "%v", err)
	}
	var invalid error
	scan.SetErrorHandler(func(e error) {
		tracer().Debugf("unconsumed input: %v", e)
		if invalid == nil {
			invalid = blockflow.ExprErrorf(blockflow.InvalidCharacters,
				"expression contains invalid characters")
		}
	})
	var tokens []Token
	for token := scan.NextToken(); token.Type != EOF; token = scan.NextToken() {
		if token.Type == Number {
			v, err := strconv.ParseFloat(strings.TrimSuffix(token.Lexeme, "."), 64)
			if err != nil {
				return nil, blockflow.ExprErrorf(blockflow.Malformed,
					"malformed number %q", token.Lexeme)
			}
			token.Value = v
		}
		tokens = append(tokens, token)
	}
	if invalid != nil {
		return nil, invalid
	}
	return tokens, nil
}

// Substitute replaces every identifier token by a number token carrying the
// variable's value. Names are resolved through r, which is expected to search
// the innermost scope first. Unresolvable identifiers are left in place.
func Substitute(tokens []Token, r Resolver) []Token {
	if r == nil {
		return tokens
	}
	for i, t := range tokens {
		if t.Type != Ident {
			continue
		}
		if v, ok := r.Resolve(t.Lexeme); ok {
			tracer().Debugf("substitute %s = %g", t.Lexeme, v)
			tokens[i] = Token{Type: Number, Lexeme: t.Lexeme, Value: v, Pos: t.Pos}
		}
	}
	return tokens
}

// Eval evaluates an arithmetic expression. Variables are substituted by their
// values, then the expression is converted to postfix order and calculated.
//
// Operators are + - * / // % ^ with parentheses (or square brackets) for grouping.
// Division, integer division and modulo by zero are errors, as is a result which
// is not a finite number. All errors returned are of kind ExpressionError.
func Eval(expression string, r Resolver) (float64, error) {
	if strings.TrimSpace(expression) == "" {
		return 0, blockflow.ExprErrorf(blockflow.EmptyExpression, "expression missing")
	}
	tokens, err := Tokenize(expression)
	if err != nil {
		return 0, err
	}
	rpn, err := ToRPN(Substitute(tokens, r))
	if err != nil {
		return 0, err
	}
	tracer().Debugf("%s => RPN %s", expression, RPNString(rpn))
	return EvalRPN(rpn)
}

// Simple evaluates a simple expression: either the name of a variable or a
// numeric literal.
func Simple(text string, r Resolver) (float64, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return 0, blockflow.ExprErrorf(blockflow.EmptyExpression, "value missing")
	}
	if r != nil {
		if v, ok := r.Resolve(text); ok {
			return v, nil
		}
	}
	v, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return 0, blockflow.ExprErrorf(blockflow.Malformed, "invalid value '%s'", text)
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, blockflow.ExprErrorf(blockflow.InvalidResult, "invalid value '%s'", text)
	}
	return v, nil
}

// Format converts a number to its output representation: integers without
// a fractional part, other numbers in the shortest form that reads back
// to the same value.
func Format(v float64) string {
	if v == 0 {
		return "0" // avoid "-0"
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// --- Conditions ------------------------------------------------------------

// Comparison operators understood by Compare.
var Comparisons = []string{"<", ">", "==", "!=", "<=", ">="}

// Condition is a comparison in textual form, e.g. "i < 10".
type Condition struct {
	Left  string
	Op    string
	Right string
}

// ParseCondition splits a condition text of the form "<left> <op> <right>".
// If op is non-empty, it takes precedence over the operator of the text.
// Without any operator, "==" is assumed.
func ParseCondition(text string, op string) Condition {
	fields := strings.Fields(text)
	c := Condition{Op: strings.TrimSpace(op)}
	if len(fields) > 0 {
		c.Left = fields[0]
	}
	if len(fields) > 1 && c.Op == "" {
		c.Op = fields[1]
	}
	if len(fields) > 2 {
		c.Right = fields[2]
	}
	if c.Op == "" {
		c.Op = "=="
	}
	return c
}

func (c Condition) String() string {
	return c.Left + " " + c.Op + " " + c.Right
}

// Compare applies a comparison operator.
func Compare(op string, left, right float64) (bool, error) {
	switch op {
	case "<":
		return left < right, nil
	case ">":
		return left > right, nil
	case "==":
		return left == right, nil
	case "!=":
		return left != right, nil
	case "<=":
		return left <= right, nil
	case ">=":
		return left >= right, nil
	}
	return false, blockflow.ExprErrorf(blockflow.UnknownOperator, "unknown comparison operator '%s'", op)
}

// --- Assignment statements -------------------------------------------------

// ParseAssignment splits a statement of the form "<name> = <expression>".
func ParseAssignment(statement string) (string, string, error) {
	parts := strings.Split(statement, "=")
	if len(parts) != 2 || strings.TrimSpace(parts[0]) == "" {
		return "", "", blockflow.ExprErrorf(blockflow.Malformed,
			"invalid assignment statement '%s'", statement)
	}
	return strings.TrimSpace(parts[0]), strings.TrimSpace(parts[1]), nil
}
