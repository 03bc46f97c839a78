package interp

import (
	"math"
	"strconv"
	"strings"

	"github.com/npillmayer/blockflow"
	"github.com/npillmayer/blockflow/expr"
	"github.com/npillmayer/blockflow/graph"
)

// execute runs a block which neither branches nor calls.
func (w *walker) execute(n *graph.Node) *blockflow.Error {
	switch f := n.Fields.(type) {
	case graph.VariableFields:
		names := f.List()
		if len(names) == 0 {
			return blockflow.Errorf(blockflow.DeclarationError, "variable name missing")
		}
		for _, name := range names {
			if err := w.rt.Declare(name); err != nil {
				return blockflow.As(err)
			}
		}
	case graph.AssignmentFields:
		if f.Variable == "" {
			return blockflow.Errorf(blockflow.DeclarationError, "variable name missing")
		}
		if _, ok := w.rt.Resolve(f.Variable); !ok {
			return blockflow.Errorf(blockflow.ReferenceError, "variable '%s' is not declared", f.Variable)
		}
		v, err := w.operand(n, graph.ValueSlot, f.Value, 0)
		if err != nil {
			return err
		}
		if err := w.rt.Update(f.Variable, v); err != nil {
			return blockflow.As(err)
		}
	case graph.OutputFields:
		text, err := w.outputText(n, f)
		if err != nil {
			return err
		}
		w.log.print(n.ID, text)
	case graph.ArrayDeclarationFields:
		if f.Array == "" {
			return blockflow.Errorf(blockflow.DeclarationError, "array name missing")
		}
		if f.Size == "" {
			return blockflow.Errorf(blockflow.DeclarationError, "array size missing")
		}
		size, err := strconv.Atoi(f.Size)
		if err != nil || size <= 0 {
			return blockflow.Errorf(blockflow.DeclarationError,
				"array size must be a positive integer, is '%s'", f.Size)
		}
		if err := w.rt.DeclareArray(f.Array, size); err != nil {
			return blockflow.As(err)
		}
	case graph.ArrayAssignmentFields:
		if f.Array == "" {
			return blockflow.Errorf(blockflow.DeclarationError, "array name missing")
		}
		index, err := w.index(n, f.Index, 0)
		if err != nil {
			return err
		}
		v, err := w.operand(n, graph.ValueSlot, f.Value, 0)
		if err != nil {
			return err
		}
		if err := w.rt.SetArrayElement(f.Array, index, v); err != nil {
			return blockflow.As(err)
		}
	default:
		return blockflow.Errorf(blockflow.GraphError, "cannot execute %s block", n.Type)
	}
	return nil
}

// outputText computes the text of an output block: the value of a bound data
// block, or else the value of the block's expression. An expression which
// cannot be evaluated is output verbatim.
func (w *walker) outputText(n *graph.Node, f graph.OutputFields) (string, *blockflow.Error) {
	if h := n.Input(graph.ValueSlot); h.Valid() {
		v, err := w.value(h, 1)
		if err != nil {
			return "", err
		}
		return expr.Format(v), nil
	}
	if strings.TrimSpace(f.Expression) == "" {
		return "", blockflow.ExprErrorf(blockflow.EmptyExpression, "nothing to output")
	}
	v, err := expr.Eval(f.Expression, w.rt)
	if err != nil {
		tracer().Debugf("output %q verbatim: %v", f.Expression, err)
		return f.Expression, nil
	}
	return expr.Format(v), nil
}

// condition evaluates a comparison. Each operand is taken from a bound data
// block (left or right input) or else from the condition text, where it must
// be a variable name or a number. A non-empty operator field takes precedence
// over the operator in the condition text.
func (w *walker) condition(n *graph.Node, text string, op string) (bool, *blockflow.Error) {
	c := expr.ParseCondition(text, op)
	left, err := w.operand(n, graph.LeftSlot, c.Left, 0)
	if err != nil {
		return false, err
	}
	right, err := w.operand(n, graph.RightSlot, c.Right, 0)
	if err != nil {
		return false, err
	}
	holds, e := expr.Compare(c.Op, left, right)
	if e != nil {
		return false, blockflow.As(e)
	}
	tracer().Debugf("condition %s = %v", c, holds)
	return holds, nil
}

// statement executes an assignment statement of a for-loop, e.g. "i = i + 1".
// With declare set, the variable is created in the current scope if necessary,
// otherwise it has to exist.
func (w *walker) statement(stmt string, declare bool) *blockflow.Error {
	name, expression, err := expr.ParseAssignment(stmt)
	if err != nil {
		return blockflow.As(err)
	}
	if !declare {
		if _, ok := w.rt.Resolve(name); !ok {
			return blockflow.Errorf(blockflow.ReferenceError, "variable '%s' is not declared", name)
		}
	}
	v, err := expr.Eval(expression, w.rt)
	if err != nil {
		return blockflow.As(err)
	}
	if declare {
		w.rt.DeclareOrUpdate(name, v)
		return nil
	}
	if err := w.rt.Update(name, v); err != nil {
		return blockflow.As(err)
	}
	return nil
}

// --- Data inputs -----------------------------------------------------------

// operand returns the value for a data-input slot of n: if the slot is bound,
// the value of the bound data block, otherwise the value of literal, which
// is either a variable name or a number.
func (w *walker) operand(n *graph.Node, slot graph.Slot, literal string, depth int) (float64, *blockflow.Error) {
	if h := n.Input(slot); h.Valid() {
		return w.value(h, depth+1)
	}
	v, err := expr.Simple(literal, w.rt)
	if err != nil {
		return 0, blockflow.As(err)
	}
	return v, nil
}

// index computes an array index, rounding down.
func (w *walker) index(n *graph.Node, literal string, depth int) (int, *blockflow.Error) {
	v, err := w.operand(n, graph.IndexSlot, literal, depth)
	if err != nil {
		return 0, err
	}
	return int(math.Floor(v)), nil
}

// value evaluates a data block. Failures are tagged with the data block as
// their source. As data blocks may be bound to each other, depth counts the
// nesting: it cannot exceed the number of blocks unless bindings are circular.
func (w *walker) value(h graph.Handle, depth int) (float64, *blockflow.Error) {
	n := w.g.Node(h)
	if depth > w.g.Len() {
		return 0, blockflow.Errorf(blockflow.LinkageError, "data inputs form a cycle").From(n.ID)
	}
	switch f := n.Fields.(type) {
	case graph.ArithmeticFields:
		v, err := expr.Eval(f.Expression, w.rt)
		if err != nil {
			return 0, blockflow.Wrap(err, "expression").From(n.ID)
		}
		return v, nil
	case graph.ArrayElementFields:
		if f.Array == "" {
			return 0, blockflow.Errorf(blockflow.DeclarationError, "array name missing").From(n.ID)
		}
		index, err := w.index(n, f.Index, depth)
		if err != nil {
			return 0, err.From(n.ID)
		}
		v, e := w.rt.ArrayElement(f.Array, index)
		if e != nil {
			return 0, blockflow.As(e).From(n.ID)
		}
		return v, nil
	}
	return 0, blockflow.Errorf(blockflow.LinkageError, "%s block produces no value", n.Type).From(n.ID)
}
