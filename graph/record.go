package graph

import (
	"fmt"
)

// Record is a placed block as exchanged with the host: a block template
// instantiated with an instance ID, free-form data fields and links to other
// blocks by instance ID. Field names follow the host's JSON format, thus a
// workspace serialized by the host may be decoded directly.
type Record struct {
	InstanceID string `yaml:"instanceId" json:"instanceId"`
	Template   string `yaml:"id,omitempty" json:"id,omitempty"`
	Type       string `yaml:"type" json:"type"`
	Title      string `yaml:"title,omitempty" json:"title,omitempty"`
	Category   string `yaml:"category,omitempty" json:"category,omitempty"`
	Next       string `yaml:"nextBlockId,omitempty" json:"nextBlockId,omitempty"`
	True       string `yaml:"trueBlockId,omitempty" json:"trueBlockId,omitempty"`
	False      string `yaml:"falseBlockId,omitempty" json:"falseBlockId,omitempty"`
	Previous   string `yaml:"previousBlockId,omitempty" json:"previousBlockId,omitempty"`
	Inputs     Inputs `yaml:"inputConnections,omitempty" json:"inputConnections,omitempty"`
	Data       Data   `yaml:"data,omitempty" json:"data,omitempty"`
}

// Inputs holds the data-input bindings of a record: instance IDs of
// arithmetic or array-element blocks.
type Inputs struct {
	Value string `yaml:"valueInputId,omitempty" json:"valueInputId,omitempty"`
	Left  string `yaml:"leftInputId,omitempty" json:"leftInputId,omitempty"`
	Right string `yaml:"rightInputId,omitempty" json:"rightInputId,omitempty"`
	Index string `yaml:"indexInputId,omitempty" json:"indexInputId,omitempty"`
}

// Data holds the editable fields of a record. Which fields are relevant
// depends on the block's type.
type Data struct {
	VariableName   string `yaml:"variableName,omitempty" json:"variableName,omitempty"`
	Value          string `yaml:"value,omitempty" json:"value,omitempty"`
	Condition      string `yaml:"condition,omitempty" json:"condition,omitempty"`
	Operator       string `yaml:"operator,omitempty" json:"operator,omitempty"`
	Expression     string `yaml:"expression,omitempty" json:"expression,omitempty"`
	Initialization string `yaml:"initialization,omitempty" json:"initialization,omitempty"`
	Iteration      string `yaml:"iteration,omitempty" json:"iteration,omitempty"`
	FunctionName   string `yaml:"functionName,omitempty" json:"functionName,omitempty"`
	ArrayName      string `yaml:"arrayName,omitempty" json:"arrayName,omitempty"`
	ArraySize      string `yaml:"arraySize,omitempty" json:"arraySize,omitempty"`
	ArrayIndex     string `yaml:"arrayIndex,omitempty" json:"arrayIndex,omitempty"`
}

func (r Record) String() string {
	return fmt.Sprintf("<%s %s>", r.Type, r.InstanceID)
}

// Input returns the instance ID bound to an input slot, or "".
func (in Inputs) Input(slot Slot) string {
	switch slot {
	case ValueSlot:
		return in.Value
	case LeftSlot:
		return in.Left
	case RightSlot:
		return in.Right
	case IndexSlot:
		return in.Index
	}
	return ""
}

// bind sets the instance ID bound to an input slot.
func (in *Inputs) bind(slot Slot, id string) {
	switch slot {
	case ValueSlot:
		in.Value = id
	case LeftSlot:
		in.Left = id
	case RightSlot:
		in.Right = id
	case IndexSlot:
		in.Index = id
	}
}

// link returns the instance ID a control port points to, or "".
func (r *Record) link(port Port) string {
	switch port {
	case NextPort:
		return r.Next
	case TruePort:
		return r.True
	case FalsePort:
		return r.False
	case TopPort:
		return r.Previous
	}
	return ""
}

func (r *Record) setLink(port Port, id string) {
	switch port {
	case NextPort:
		r.Next = id
	case TruePort:
		r.True = id
	case FalsePort:
		r.False = id
	case TopPort:
		r.Previous = id
	}
}
