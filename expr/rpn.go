package expr

import (
	"fmt"
	"math"
	"strings"

	"github.com/emirpasic/gods/stacks/arraystack"
	"github.com/npillmayer/blockflow"
)

// Operator precedences. All binary operators are left-associative, including
// '^': 2^3^2 is (2^3)^2. Unary minus binds weaker than '^' and stronger than
// the multiplicative operators.
var precedence = map[string]int{
	"^":   5,
	"neg": 4,
	"*":   3,
	"/":   3,
	"//":  3,
	"%":   3,
	"+":   2,
	"-":   2,
}

// closing maps opening brackets to their counterparts.
var closing = map[string]string{"(": ")", "[": "]"}

// ToRPN converts a sequence of infix tokens into postfix order, using
// the shunting-yard algorithm. Identifiers must have been substituted before.
// A '-' or '+' at the start of an expression, after an operator or after an
// opening bracket is a unary sign.
func ToRPN(tokens []Token) ([]Token, error) {
	output := make([]Token, 0, len(tokens))
	stack := arraystack.New()
	prev := Illegal // type of previous token; Illegal at start
	for _, token := range tokens {
		switch token.Type {
		case Number:
			if prev == Number || prev == RParen {
				return nil, blockflow.ExprErrorf(blockflow.Malformed,
					"missing operator before %q", token.Lexeme)
			}
			output = append(output, token)
		case Ident:
			return nil, blockflow.ExprErrorf(blockflow.InvalidCharacters,
				"expression contains unknown name '%s'", token.Lexeme)
		case LParen:
			if prev == Number || prev == RParen {
				return nil, blockflow.ExprErrorf(blockflow.Malformed,
					"missing operator before '%s'", token.Lexeme)
			}
			stack.Push(token)
		case RParen:
			found := false
			for !stack.Empty() {
				top, _ := stack.Pop()
				if open := top.(Token); open.Type == LParen {
					if closing[open.Lexeme] != token.Lexeme {
						return nil, blockflow.ExprErrorf(blockflow.Malformed,
							"'%s' at position %d does not match '%s'", token.Lexeme, token.Pos, open.Lexeme)
					}
					found = true
					break
				}
				output = append(output, top.(Token))
			}
			if !found {
				return nil, blockflow.ExprErrorf(blockflow.Malformed,
					"unbalanced '%s' at position %d", token.Lexeme, token.Pos)
			}
		case Operator:
			if prev == Illegal || prev == Operator || prev == LParen {
				switch token.Lexeme {
				case "-":
					token.Lexeme = "neg"
					stack.Push(token) // prefix operators do not pop
				case "+":
					// unary plus is a no-op
				default:
					return nil, blockflow.ExprErrorf(blockflow.Malformed,
						"missing operand before '%s'", token.Lexeme)
				}
				break
			}
			for !stack.Empty() {
				top, _ := stack.Peek()
				op := top.(Token)
				if op.Type == LParen || precedence[token.Lexeme] > precedence[op.Lexeme] {
					break
				}
				stack.Pop()
				output = append(output, op)
			}
			stack.Push(token)
		default:
			return nil, blockflow.ExprErrorf(blockflow.InvalidCharacters,
				"invalid token %q", token.Lexeme)
		}
		prev = token.Type
	}
	for !stack.Empty() {
		top, _ := stack.Pop()
		if top.(Token).Type == LParen {
			return nil, blockflow.ExprErrorf(blockflow.Malformed, "unbalanced '('")
		}
		output = append(output, top.(Token))
	}
	return output, nil
}

// EvalRPN evaluates a sequence of tokens in postfix order. The result is
// guaranteed to be a finite number if no error is returned.
func EvalRPN(rpn []Token) (float64, error) {
	stack := arraystack.New()
	pop := func() (float64, bool) {
		v, ok := stack.Pop()
		if !ok {
			return 0, false
		}
		return v.(float64), true
	}
	for _, token := range rpn {
		if token.Type == Number {
			stack.Push(token.Value)
			continue
		}
		if token.Lexeme == "neg" {
			a, ok := pop()
			if !ok {
				return 0, blockflow.ExprErrorf(blockflow.Malformed, "missing operand for '-'")
			}
			stack.Push(-a)
			continue
		}
		b, ok1 := pop()
		a, ok2 := pop()
		if !ok1 || !ok2 {
			return 0, blockflow.ExprErrorf(blockflow.Malformed,
				"missing operand for '%s'", token.Lexeme)
		}
		switch token.Lexeme {
		case "+":
			stack.Push(a + b)
		case "-":
			stack.Push(a - b)
		case "*":
			stack.Push(a * b)
		case "/":
			if b == 0 {
				return 0, blockflow.ExprErrorf(blockflow.DivisionByZero, "division by zero")
			}
			stack.Push(a / b)
		case "//":
			if b == 0 {
				return 0, blockflow.ExprErrorf(blockflow.IntegerDivisionByZero,
					"division by zero (integer division)")
			}
			stack.Push(math.Floor(a / b))
		case "%":
			if b == 0 {
				return 0, blockflow.ExprErrorf(blockflow.ModuloByZero, "division by zero (modulo)")
			}
			stack.Push(math.Mod(a, b))
		case "^":
			stack.Push(math.Pow(a, b))
		default:
			return 0, blockflow.ExprErrorf(blockflow.UnknownOperator,
				"unknown operator '%s'", token.Lexeme)
		}
	}
	if stack.Size() != 1 {
		return 0, blockflow.ExprErrorf(blockflow.Malformed, "malformed expression")
	}
	result, _ := pop()
	if math.IsNaN(result) || math.IsInf(result, 0) {
		return 0, blockflow.ExprErrorf(blockflow.InvalidResult, "invalid result of calculation")
	}
	return result, nil
}

// RPNString is a debugging helper, returning postfix tokens separated by blanks.
func RPNString(rpn []Token) string {
	var b strings.Builder
	for i, t := range rpn {
		if i > 0 {
			b.WriteByte(' ')
		}
		if t.Type == Number {
			b.WriteString(Format(t.Value))
		} else {
			fmt.Fprint(&b, t.Lexeme)
		}
	}
	return b.String()
}
