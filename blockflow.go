package blockflow

import (
	"errors"
	"fmt"
)

// --- Block kinds -----------------------------------------------------------

// Kind is the category of a placed block. The set of kinds is closed; the
// palette may offer more templates, but only these are understood by the
// interpreter.
type Kind int8

// Block kinds
const (
	NoKind Kind = iota
	Variable
	Assignment
	Arithmetic
	If
	While
	For
	Start
	End
	Output
	FunctionStart
	FunctionCall
	FunctionEnd
	ArrayDeclaration
	ArrayAssignment
	ArrayElement
)

var kindNames = [...]string{
	NoKind:           "",
	Variable:         "variable",
	Assignment:       "assignment",
	Arithmetic:       "arithmetic",
	If:               "if",
	While:            "while",
	For:              "for",
	Start:            "start",
	End:              "end",
	Output:           "output",
	FunctionStart:    "functionStart",
	FunctionCall:     "functionCall",
	FunctionEnd:      "functionEnd",
	ArrayDeclaration: "arrayDeclaration",
	ArrayAssignment:  "arrayAssignment",
	ArrayElement:     "arrayElement",
}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return fmt.Sprintf("<kind %d>", k)
	}
	return kindNames[k]
}

// ParseKind finds the kind for a type tag as used by hosts, e.g. "arrayElement".
// Returns NoKind and false for unknown tags.
func ParseKind(s string) (Kind, bool) {
	for k, nm := range kindNames {
		if k > 0 && nm == s {
			return Kind(k), true
		}
	}
	return NoKind, false
}

// IsDataProducer is a predicate: may blocks of this kind be bound to a data input?
func (k Kind) IsDataProducer() bool {
	return k == Arithmetic || k == ArrayElement
}

// IsBranching is a predicate: does this kind use true/false links?
func (k Kind) IsBranching() bool {
	return k == If || k == While || k == For
}

// --- Errors ----------------------------------------------------------------

// ErrorKind is the category of a failure. Hosts should switch on the kind
// rather than on message text.
type ErrorKind int8

// Error kinds
const (
	NoError ErrorKind = iota
	GraphError
	DeclarationError
	ReferenceError
	BoundsError
	ExpressionError
	RecursionError
	IterationLimitError
	LinkageError
)

func (k ErrorKind) String() string {
	switch k {
	case NoError:
		return "ok"
	case GraphError:
		return "graph"
	case DeclarationError:
		return "declaration"
	case ReferenceError:
		return "reference"
	case BoundsError:
		return "bounds"
	case ExpressionError:
		return "expression"
	case RecursionError:
		return "recursion"
	case IterationLimitError:
		return "iteration-limit"
	case LinkageError:
		return "linkage"
	}
	return fmt.Sprintf("<error-kind %d>", k)
}

// Reason refines an ExpressionError.
type Reason int8

// Reasons for expression errors
const (
	Unspecified Reason = iota
	InvalidCharacters
	Malformed
	DivisionByZero
	IntegerDivisionByZero
	ModuloByZero
	InvalidResult
	EmptyExpression
	UnknownOperator
)

// Error is the error type for everything going wrong while editing or
// running a block graph. Node is the instance ID of the block the error is
// attributed to, Source the instance ID of a data block the failure
// originated in (if different from Node).
type Error struct {
	Kind   ErrorKind
	Reason Reason
	Node   string
	Source string
	Msg    string
}

// Errorf creates an error of a given kind.
func Errorf(kind ErrorKind, format string, args ...interface{}) *Error {
	return &Error{
		Kind: kind,
		Msg:  fmt.Sprintf(format, args...),
	}
}

// ExprErrorf creates an ExpressionError with a reason.
func ExprErrorf(reason Reason, format string, args ...interface{}) *Error {
	e := Errorf(ExpressionError, format, args...)
	e.Reason = reason
	return e
}

func (e *Error) Error() string {
	return e.Msg
}

// At attributes an error to a block, if not already attributed.
// Returns the error (for chaining).
func (e *Error) At(node string) *Error {
	if e.Node == "" {
		e.Node = node
	}
	return e
}

// From sets the originating data block, if not already set.
func (e *Error) From(node string) *Error {
	if e.Source == "" {
		e.Source = node
	}
	return e
}

// Wrap prepends context to an error's message. If err is a *Error, its kind,
// reason and attribution are kept. Other errors become a GraphError.
func Wrap(err error, context string) *Error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		w := *e
		w.Msg = context + ": " + e.Msg
		return &w
	}
	return Errorf(GraphError, "%s: %v", context, err)
}

// KindOf returns the error kind of err, or NoError for nil and for
// errors not created by this module.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return NoError
}

// ReasonOf returns the expression error reason of err.
func ReasonOf(err error) Reason {
	var e *Error
	if errors.As(err, &e) {
		return e.Reason
	}
	return Unspecified
}

// As converts err into a *Error, wrapping foreign errors as GraphError.
func As(err error) *Error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return Errorf(GraphError, "%v", err)
}
