package graph

import (
	"fmt"
	"strings"

	"github.com/npillmayer/blockflow"
)

// Handle addresses a node within a graph. Handles are indices into the
// graph's node arena; Nil denotes an absent link.
type Handle int32

// Nil is the handle of no node.
const Nil Handle = -1

// Valid is a predicate: does h point to a node?
func (h Handle) Valid() bool {
	return h >= 0
}

// Slot is a named data-input slot of a block.
type Slot int8

// Data-input slots
const (
	ValueSlot Slot = iota
	LeftSlot
	RightSlot
	IndexSlot
	slotCount
)

func (s Slot) String() string {
	switch s {
	case ValueSlot:
		return "value"
	case LeftSlot:
		return "left"
	case RightSlot:
		return "right"
	case IndexSlot:
		return "index"
	}
	return fmt.Sprintf("<slot %d>", s)
}

// Port is a control-flow connection point of a block. Next, True and False are
// outgoing, Top is the single incoming port.
type Port int8

// Control-flow ports
const (
	NextPort Port = iota
	TruePort
	FalsePort
	TopPort
)

func (p Port) String() string {
	switch p {
	case NextPort:
		return "next"
	case TruePort:
		return "true"
	case FalsePort:
		return "false"
	case TopPort:
		return "top"
	}
	return fmt.Sprintf("<port %d>", p)
}

// --- Fields ----------------------------------------------------------------

// Fields is the kind-specific part of a node. There is one variant per block
// kind, carrying only the fields relevant for that kind.
type Fields interface {
	isFields()
}

// NoFields is used for start, end and functionEnd blocks.
type NoFields struct{}

// VariableFields declares one or more comma-separated variable names.
type VariableFields struct {
	Names string
}

// AssignmentFields assigns a simple value (variable name or number) to a variable,
// unless the value input is bound.
type AssignmentFields struct {
	Variable string
	Value    string
}

// ArithmeticFields carries an arithmetic expression.
type ArithmeticFields struct {
	Expression string
}

// ConditionFields is used for if and while blocks.
type ConditionFields struct {
	Condition string
	Operator  string
}

// ForFields holds the three parts of a counting loop. Init and Step are
// assignment statements ("i = 0", "i = i + 1").
type ForFields struct {
	Init      string
	Condition string
	Operator  string
	Step      string
}

// OutputFields holds the text or expression to output.
type OutputFields struct {
	Expression string
}

// FunctionFields is used for functionStart and functionCall blocks.
type FunctionFields struct {
	Name string
}

// ArrayDeclarationFields declares a fixed-size array.
type ArrayDeclarationFields struct {
	Array string
	Size  string
}

// ArrayAssignmentFields writes an array element.
type ArrayAssignmentFields struct {
	Array string
	Index string
	Value string
}

// ArrayElementFields reads an array element.
type ArrayElementFields struct {
	Array string
	Index string
}

func (NoFields) isFields()               {}
func (VariableFields) isFields()         {}
func (AssignmentFields) isFields()       {}
func (ArithmeticFields) isFields()       {}
func (ConditionFields) isFields()        {}
func (ForFields) isFields()              {}
func (OutputFields) isFields()           {}
func (FunctionFields) isFields()         {}
func (ArrayDeclarationFields) isFields() {}
func (ArrayAssignmentFields) isFields()  {}
func (ArrayElementFields) isFields()     {}

// List splits the comma-separated variable names, dropping empty entries.
func (f VariableFields) List() []string {
	var names []string
	for _, nm := range strings.Split(f.Names, ",") {
		if nm = strings.TrimSpace(nm); nm != "" {
			names = append(names, nm)
		}
	}
	return names
}

// fieldsFor selects the fields variant for a kind.
func fieldsFor(kind blockflow.Kind, d Data) Fields {
	switch kind {
	case blockflow.Variable:
		return VariableFields{Names: d.VariableName}
	case blockflow.Assignment:
		return AssignmentFields{Variable: strings.TrimSpace(d.VariableName), Value: d.Value}
	case blockflow.Arithmetic:
		return ArithmeticFields{Expression: d.Expression}
	case blockflow.If, blockflow.While:
		return ConditionFields{Condition: d.Condition, Operator: d.Operator}
	case blockflow.For:
		return ForFields{
			Init:      strings.TrimSpace(d.Initialization),
			Condition: strings.TrimSpace(d.Condition),
			Operator:  d.Operator,
			Step:      strings.TrimSpace(d.Iteration),
		}
	case blockflow.Output:
		return OutputFields{Expression: d.Expression}
	case blockflow.FunctionStart, blockflow.FunctionCall:
		return FunctionFields{Name: strings.TrimSpace(d.FunctionName)}
	case blockflow.ArrayDeclaration:
		return ArrayDeclarationFields{Array: strings.TrimSpace(d.ArrayName), Size: strings.TrimSpace(d.ArraySize)}
	case blockflow.ArrayAssignment:
		return ArrayAssignmentFields{
			Array: strings.TrimSpace(d.ArrayName),
			Index: strings.TrimSpace(d.ArrayIndex),
			Value: strings.TrimSpace(d.Value),
		}
	case blockflow.ArrayElement:
		return ArrayElementFields{Array: strings.TrimSpace(d.ArrayName), Index: strings.TrimSpace(d.ArrayIndex)}
	}
	return NoFields{}
}

// --- Nodes and graphs ------------------------------------------------------

// Node is a placed block within a graph. Links are handles into the same graph.
type Node struct {
	ID       string
	Kind     blockflow.Kind
	Type     string // type tag as given by the host
	Title    string
	Next     Handle
	True     Handle
	False    Handle
	Previous Handle
	Inputs   [slotCount]Handle
	Fields   Fields
}

// Input returns the handle bound to a data-input slot, or Nil.
func (n *Node) Input(slot Slot) Handle {
	if slot < 0 || slot >= slotCount {
		return Nil
	}
	return n.Inputs[slot]
}

func (n *Node) String() string {
	return fmt.Sprintf("<%s %s>", n.Type, n.ID)
}

// Graph is an immutable arena of nodes. It is constructed from host records by
// Build and addresses nodes by handle.
type Graph struct {
	nodes []Node
	index map[string]Handle
	start Handle
}

// Build creates a graph from a set of records. Links to unknown instance IDs
// are dropped. Blocks of unknown type are kept with kind NoKind.
//
// Build fails with a GraphError for records without instance ID, for duplicate
// instance IDs and for more than one start block.
func Build(records []Record) (*Graph, error) {
	g := &Graph{
		nodes: make([]Node, len(records)),
		index: make(map[string]Handle, len(records)),
		start: Nil,
	}
	for i, rec := range records {
		if rec.InstanceID == "" {
			return nil, blockflow.Errorf(blockflow.GraphError, "block #%d has no instance ID", i)
		}
		if _, dup := g.index[rec.InstanceID]; dup {
			return nil, blockflow.Errorf(blockflow.GraphError,
				"duplicate instance ID '%s'", rec.InstanceID).At(rec.InstanceID)
		}
		g.index[rec.InstanceID] = Handle(i)
	}
	for i, rec := range records {
		kind, ok := blockflow.ParseKind(rec.Type)
		if !ok {
			tracer().Infof("block %s has unknown type '%s'", rec.InstanceID, rec.Type)
		}
		if kind == blockflow.Start {
			if g.start.Valid() {
				return nil, blockflow.Errorf(blockflow.GraphError,
					"more than one start block").At(rec.InstanceID)
			}
			g.start = Handle(i)
		}
		n := &g.nodes[i]
		n.ID = rec.InstanceID
		n.Kind = kind
		n.Type = rec.Type
		n.Title = rec.Title
		n.Next = g.resolve(rec.InstanceID, rec.Next)
		n.True = g.resolve(rec.InstanceID, rec.True)
		n.False = g.resolve(rec.InstanceID, rec.False)
		n.Previous = g.resolve(rec.InstanceID, rec.Previous)
		for s := ValueSlot; s < slotCount; s++ {
			n.Inputs[s] = g.resolve(rec.InstanceID, rec.Inputs.Input(s))
		}
		n.Fields = fieldsFor(kind, rec.Data)
	}
	tracer().Debugf("built graph with %d nodes", len(g.nodes))
	return g, nil
}

func (g *Graph) resolve(from string, id string) Handle {
	if id == "" {
		return Nil
	}
	h, ok := g.index[id]
	if !ok {
		tracer().Infof("block %s links to unknown block '%s'", from, id)
		return Nil
	}
	return h
}

// Len returns the number of nodes.
func (g *Graph) Len() int {
	return len(g.nodes)
}

// Node dereferences a handle. Returns nil for Nil.
func (g *Graph) Node(h Handle) *Node {
	if !h.Valid() || int(h) >= len(g.nodes) {
		return nil
	}
	return &g.nodes[h]
}

// Lookup finds the handle for an instance ID.
func (g *Graph) Lookup(id string) (Handle, bool) {
	h, ok := g.index[id]
	return h, ok
}

// Start returns the handle of the start block, or Nil.
func (g *Graph) Start() Handle {
	return g.start
}

// Each iterates over all nodes in order of the records they were built from.
func (g *Graph) Each(f func(Handle, *Node)) {
	for i := range g.nodes {
		f(Handle(i), &g.nodes[i])
	}
}
