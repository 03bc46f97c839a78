package expr

import (
	"fmt"
	"strings"
	"sync"

	"github.com/timtadh/lexmachine"
	"github.com/timtadh/lexmachine/machines"
)

// TokType is a category type for a Token.
type TokType int

// Token types
const (
	EOF TokType = iota - 1
	Illegal
	Number
	Ident
	Operator
	LParen
	RParen
)

func (t TokType) String() string {
	switch t {
	case EOF:
		return "EOF"
	case Number:
		return "number"
	case Ident:
		return "identifier"
	case Operator:
		return "operator"
	case LParen:
		return "("
	case RParen:
		return ")"
	}
	return "illegal"
}

// Token is an input token of an arithmetic expression. For numbers, Value
// has been set by the scanner (for identifiers, after substitution).
type Token struct {
	Type   TokType
	Lexeme string
	Value  float64
	Pos    int // byte offset in the input
}

func (t Token) String() string {
	return fmt.Sprintf("<%s %q @%d>", t.Type, t.Lexeme, t.Pos)
}

// The tokens representing operators and brackets. Square brackets group
// like parentheses.
var literals = []string{"(", ")", "[", "]"}
var ops = []string{"+", "-", "*", "/", "//", "%", "^"}

// tokenIds will be set in initTokens()
var tokenIds map[string]int // A map from the token names to their token types

var initOnce sync.Once // monitors one-time initialization of the DFA
var lexer *LMAdapter
var lexerErr error

func initTokens() {
	tokenIds = make(map[string]int)
	tokenIds["NUM"] = int(Number)
	tokenIds["ID"] = int(Ident)
	tokenIds["("] = int(LParen)
	tokenIds["["] = int(LParen)
	tokenIds[")"] = int(RParen)
	tokenIds["]"] = int(RParen)
	for _, op := range ops {
		tokenIds[op] = int(Operator)
	}
}

// Lexer returns the lexmachine lexer for arithmetic expressions. The DFA is
// compiled once and shared.
func Lexer() (*LMAdapter, error) {
	initOnce.Do(func() {
		initTokens()
		init := func(lexer *lexmachine.Lexer) {
			lexer.Add([]byte(`[0-9]+(\.[0-9]*)?`), MakeToken(tokenIds["NUM"]))
			lexer.Add([]byte(`([a-z]|[A-Z]|_)([a-z]|[A-Z]|[0-9]|_)*`), MakeToken(tokenIds["ID"]))
			lexer.Add([]byte(`( |\t|\n|\r)+`), Skip)
		}
		lexer, lexerErr = NewLMAdapter(init, append(literals, ops...), tokenIds)
	})
	return lexer, lexerErr
}

// --- lexmachine adapter ----------------------------------------------------

// LMAdapter is a lexmachine adapter to use lexmachine as a scanner.
type LMAdapter struct {
	Lexer *lexmachine.Lexer
}

// NewLMAdapter creates a new lexmachine adapter. It receives a list of
// literals ('(', '+', …) and a map for translating token strings to their values.
//
// NewLMAdapter will return an error if compiling the DFA failed.
func NewLMAdapter(init func(*lexmachine.Lexer), literals []string, tokenIds map[string]int) (*LMAdapter, error) {
	adapter := &LMAdapter{}
	adapter.Lexer = lexmachine.NewLexer()
	init(adapter.Lexer)
	for _, lit := range literals {
		r := "\\" + strings.Join(strings.Split(lit, ""), "\\")
		adapter.Lexer.Add([]byte(r), MakeToken(tokenIds[lit]))
	}
	if err := adapter.Lexer.Compile(); err != nil {
		tracer().Errorf("Error compiling DFA: %v", err)
		return nil, err
	}
	return adapter, nil
}

// Scanner creates a scanner for a given input.
func (lm *LMAdapter) Scanner(input string) (*LMScanner, error) {
	s, err := lm.Lexer.Scanner([]byte(input))
	if err != nil {
		return &LMScanner{}, err
	}
	return &LMScanner{s, logError}, nil
}

// LMScanner is a scanner type for lexmachine scanners.
type LMScanner struct {
	scanner *lexmachine.Scanner
	Error   func(error)
}

// SetErrorHandler sets an error handler for the scanner.
func (lms *LMScanner) SetErrorHandler(h func(error)) {
	if h == nil {
		lms.Error = logError
		return
	}
	lms.Error = h
}

// Default error reporting function for scanners
func logError(e error) {
	tracer().Errorf("scanner error: " + e.Error())
}

// NextToken returns the next token of the input, or a token of type EOF.
// Unconsumed input is reported to the error handler and skipped.
func (lms *LMScanner) NextToken() Token {
	tok, err, eof := lms.scanner.Next()
	for err != nil {
		lms.Error(err)
		if ui, is := err.(*machines.UnconsumedInput); is {
			lms.scanner.TC = ui.FailTC
		}
		tok, err, eof = lms.scanner.Next()
	}
	if eof {
		return Token{Type: EOF, Pos: lms.scanner.TC}
	}
	token := tok.(*lexmachine.Token)
	tracer().Debugf("token %q of type %d", token.Lexeme, token.Type)
	return Token{
		Type:   TokType(token.Type),
		Lexeme: string(token.Lexeme),
		Pos:    token.TC,
	}
}

// ---------------------------------------------------------------------------

// Skip is a pre-defined action which ignores the scanned match.
func Skip(*lexmachine.Scanner, *machines.Match) (interface{}, error) {
	return nil, nil
}

// MakeToken is a pre-defined action which wraps a scanned match into a token.
func MakeToken(id int) lexmachine.Action {
	return func(s *lexmachine.Scanner, m *machines.Match) (interface{}, error) {
		return s.Token(id, string(m.Bytes), m), nil
	}
}
