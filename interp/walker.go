package interp

import (
	"github.com/emirpasic/gods/stacks/arraystack"
	"github.com/npillmayer/blockflow"
	"github.com/npillmayer/blockflow/graph"
	"github.com/npillmayer/blockflow/runtime"
)

// The walker does not recurse into loop bodies and function bodies. Instead it
// keeps a stack of pending tasks: visiting a block pushes the tasks for its
// successors, with the block to run next on top.

type op int8

const (
	visitBlock op = iota // execute a block and schedule its successor(s)
	checkLoop            // evaluate the condition of a for-loop
	stepLoop             // execute the step statement of a for-loop
	returnCall           // leave a function body
)

// task is a pending piece of work. iter is the iteration count along the
// path of execution leading to it, end the functionEnd block delimiting the
// function body the task belongs to (Nil at top level). depth is the scope
// depth to restore when leaving a loop or a function.
type task struct {
	op    op
	node  graph.Handle
	iter  int
	end   graph.Handle
	depth int
}

type walker struct {
	g      *graph.Graph
	rt     *runtime.Runtime
	funcs  *registry
	limits Limits
	log    *collector
	tasks  *arraystack.Stack // of task
	calls  *arraystack.Stack // of function names
}

func newWalker(g *graph.Graph, funcs *registry, limits Limits, log *collector) *walker {
	return &walker{
		g:      g,
		rt:     runtime.NewRuntimeEnvironment(),
		funcs:  funcs,
		limits: limits,
		log:    log,
		tasks:  arraystack.New(),
		calls:  arraystack.New(),
	}
}

func (w *walker) push(t task) {
	if t.node.Valid() {
		w.tasks.Push(t)
	}
}

// follow schedules a successor, inheriting iteration count and function body.
func (w *walker) follow(h graph.Handle, from task) {
	w.push(task{op: visitBlock, node: h, iter: from.iter, end: from.end})
}

// run executes the graph, starting at the start block.
func (w *walker) run(start graph.Handle) {
	w.push(task{op: visitBlock, node: start, end: graph.Nil})
	for !w.tasks.Empty() {
		x, _ := w.tasks.Pop()
		t := x.(task)
		var err *blockflow.Error
		switch t.op {
		case visitBlock:
			err = w.visit(t)
		case checkLoop:
			err = w.checkLoop(t)
		case stepLoop:
			err = w.stepLoop(t)
		case returnCall:
			w.returnCall(t)
		}
		if err != nil {
			w.fail(t, err)
		}
	}
}

// fail records an error and abandons the current path of execution up to
// the innermost active function call. The call then returns normally and
// its caller resumes. Outside of any function the run ends.
func (w *walker) fail(t task, err *blockflow.Error) {
	if n := w.g.Node(t.node); n != nil {
		err.At(n.ID)
	}
	w.log.fail(err)
	for !w.tasks.Empty() {
		x, _ := w.tasks.Pop()
		if ret := x.(task); ret.op == returnCall {
			w.returnCall(ret)
			return
		}
	}
	w.rt.Unwind(1)
}

func (w *walker) visit(t task) *blockflow.Error {
	n := w.g.Node(t.node)
	if t.iter > w.limits.MaxIterations {
		return blockflow.Errorf(blockflow.IterationLimitError,
			"iteration limit of %d exceeded, possibly an endless loop", w.limits.MaxIterations)
	}
	if t.node == t.end {
		return nil // end of function body
	}
	tracer().Debugf("visit %v [%d]", n, t.iter)
	switch n.Kind {
	case blockflow.Start, blockflow.FunctionStart, blockflow.FunctionEnd:
		// markers only
	case blockflow.End:
		// ends the current chain; pending loop and return tasks still run
		tracer().Debugf("end block %s reached", n.ID)
		return nil
	case blockflow.Arithmetic, blockflow.ArrayElement:
		// evaluated on demand
	case blockflow.Variable, blockflow.Assignment, blockflow.Output,
		blockflow.ArrayDeclaration, blockflow.ArrayAssignment:
		if err := w.execute(n); err != nil {
			return err
		}
	case blockflow.If:
		c := n.Fields.(graph.ConditionFields)
		holds, err := w.condition(n, c.Condition, c.Operator)
		if err != nil {
			return err
		}
		if holds {
			w.follow(n.True, t)
		} else {
			w.follow(n.False, t)
		}
		return nil // no fall-through to next
	case blockflow.While:
		c := n.Fields.(graph.ConditionFields)
		holds, err := w.condition(n, c.Condition, c.Operator)
		if err != nil {
			return err
		}
		if !holds {
			w.follow(n.False, t)
		} else if n.True.Valid() {
			w.push(task{op: visitBlock, node: t.node, iter: t.iter + 1, end: t.end})
			w.push(task{op: visitBlock, node: n.True, iter: t.iter + 1, end: t.end})
		}
		return nil
	case blockflow.For:
		return w.enterLoop(n, t)
	case blockflow.FunctionCall:
		return w.call(n, t)
	default:
		return blockflow.Errorf(blockflow.GraphError, "unknown block type '%s'", n.Type)
	}
	w.follow(n.Next, t)
	return nil
}

// --- Counting loops --------------------------------------------------------

// enterLoop opens a new scope for a for-loop and executes its initialization.
func (w *walker) enterLoop(n *graph.Node, t task) *blockflow.Error {
	f := n.Fields.(graph.ForFields)
	depth := w.rt.Depth()
	w.rt.PushScope("for " + n.ID)
	if f.Init != "" {
		if err := w.statement(f.Init, true); err != nil {
			w.rt.Unwind(depth)
			return blockflow.Wrap(err, "loop initialization")
		}
	}
	w.tasks.Push(task{op: checkLoop, node: t.node, iter: t.iter, end: t.end, depth: depth})
	return nil
}

// checkLoop decides whether to run a for-loop's body once more. If not, the
// loop's scope is closed and execution continues with the false branch.
func (w *walker) checkLoop(t task) *blockflow.Error {
	n := w.g.Node(t.node)
	if t.iter > w.limits.MaxIterations {
		w.rt.Unwind(t.depth)
		return blockflow.Errorf(blockflow.IterationLimitError,
			"iteration limit of %d exceeded, possibly an endless loop", w.limits.MaxIterations)
	}
	f := n.Fields.(graph.ForFields)
	holds := false
	if f.Condition != "" {
		var err *blockflow.Error
		if holds, err = w.condition(n, f.Condition, f.Operator); err != nil {
			w.rt.Unwind(t.depth)
			return err
		}
	}
	if !holds {
		w.rt.Unwind(t.depth)
		w.follow(n.False, t)
		return nil
	}
	w.tasks.Push(task{op: stepLoop, node: t.node, iter: t.iter, end: t.end, depth: t.depth})
	w.push(task{op: visitBlock, node: n.True, iter: t.iter + 1, end: t.end})
	return nil
}

// stepLoop executes a for-loop's step statement after the body has run.
func (w *walker) stepLoop(t task) *blockflow.Error {
	f := w.g.Node(t.node).Fields.(graph.ForFields)
	if f.Step != "" {
		if err := w.statement(f.Step, false); err != nil {
			w.rt.Unwind(t.depth)
			return blockflow.Wrap(err, "loop step")
		}
	}
	w.tasks.Push(task{op: checkLoop, node: t.node, iter: t.iter + 1, end: t.end, depth: t.depth})
	return nil
}

// --- Function calls --------------------------------------------------------

// call enters a function body in a new scope. The matching returnCall task
// is scheduled beneath the body. A function body counts its iterations
// from zero.
func (w *walker) call(n *graph.Node, t task) *blockflow.Error {
	name := n.Fields.(graph.FunctionFields).Name
	if name == "" {
		return blockflow.Errorf(blockflow.DeclarationError, "name of function to call missing")
	}
	if w.calls.Size() >= w.limits.MaxCallDepth {
		return blockflow.Errorf(blockflow.RecursionError,
			"maximum depth of function calls (%d) exceeded", w.limits.MaxCallDepth)
	}
	if w.active(name) {
		return blockflow.Errorf(blockflow.RecursionError, "recursive call of function '%s'", name)
	}
	fn, ok := w.funcs.lookup(name)
	if !ok {
		return blockflow.Errorf(blockflow.ReferenceError, "function '%s' not found", name)
	}
	tracer().Debugf("call %s", name)
	w.calls.Push(name)
	depth := w.rt.Depth()
	w.rt.PushScope(name)
	w.tasks.Push(task{op: returnCall, node: t.node, iter: t.iter, end: t.end, depth: depth})
	w.push(task{op: visitBlock, node: w.g.Node(fn.Start).Next, iter: 0, end: fn.End})
	return nil
}

// returnCall leaves a function: its scope and call stack entry are released
// and the caller continues after the call block.
func (w *walker) returnCall(t task) {
	w.rt.Unwind(t.depth)
	if name, ok := w.calls.Pop(); ok {
		tracer().Debugf("return from %s", name)
	}
	w.follow(w.g.Node(t.node).Next, t)
}

// active is a predicate: is a function currently executing?
func (w *walker) active(name string) bool {
	for _, c := range w.calls.Values() {
		if c.(string) == name {
			return true
		}
	}
	return false
}
