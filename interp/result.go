package interp

import (
	"github.com/npillmayer/blockflow"
	"github.com/npillmayer/blockflow/runtime"
)

// Failure is an error recorded during a run. NodeID is the block the failure
// is attributed to (empty for failures of the graph as a whole), Source the
// data block an evaluation failed in, if any.
type Failure struct {
	NodeID  string              `json:"nodeId" yaml:"nodeId"`
	Source  string              `json:"sourceId,omitempty" yaml:"sourceId,omitempty"`
	Kind    blockflow.ErrorKind `json:"kind" yaml:"kind"`
	Reason  blockflow.Reason    `json:"reason,omitempty" yaml:"reason,omitempty"`
	Message string              `json:"message" yaml:"message"`
}

// Error makes a Failure an error.
func (f Failure) Error() string {
	return f.Message
}

// Message is a line of output, tagged with the output block producing it.
type Message struct {
	NodeID string `json:"nodeId" yaml:"nodeId"`
	Text   string `json:"message" yaml:"message"`
}

// Result is the outcome of a run: the final state of all live scopes,
// failures and output in the order they occurred, and the functions known.
type Result struct {
	Success     bool               `json:"success" yaml:"success"`
	Variables   []runtime.Variable `json:"variables" yaml:"variables"`
	Arrays      []runtime.Array    `json:"arrays" yaml:"arrays"`
	Errors      []Failure          `json:"errors" yaml:"errors"`
	Output      []Message          `json:"output" yaml:"output"`
	Functions   []string           `json:"functions,omitempty" yaml:"functions,omitempty"`
	Fingerprint string             `json:"fingerprint,omitempty" yaml:"fingerprint,omitempty"`
}

// Lines returns the output texts.
func (r *Result) Lines() []string {
	lines := make([]string, len(r.Output))
	for i, msg := range r.Output {
		lines[i] = msg.Text
	}
	return lines
}

// ErrorsAt returns the failures attributed to a block, either directly
// or as the source of an evaluation.
func (r *Result) ErrorsAt(node string) []Failure {
	var fs []Failure
	for _, f := range r.Errors {
		if f.NodeID == node || f.Source == node {
			fs = append(fs, f)
		}
	}
	return fs
}

// Variable returns the final value of a variable.
func (r *Result) Variable(name string) (float64, bool) {
	for _, v := range r.Variables {
		if v.Name == name {
			return v.Value, true
		}
	}
	return 0, false
}

// ArrayNames returns the names of the final arrays.
func (r *Result) ArrayNames() []string {
	names := make([]string, len(r.Arrays))
	for i, a := range r.Arrays {
		names[i] = a.Name
	}
	return names
}

// --- Collector -------------------------------------------------------------

// collector accumulates failures and output of a run.
type collector struct {
	errors []Failure
	output []Message
}

func (c *collector) fail(e *blockflow.Error) {
	tracer().Infof("error at block '%s': %s", e.Node, e.Msg)
	c.errors = append(c.errors, Failure{
		NodeID:  e.Node,
		Source:  e.Source,
		Kind:    e.Kind,
		Reason:  e.Reason,
		Message: e.Msg,
	})
}

func (c *collector) print(node string, text string) {
	tracer().Debugf("output %s: %s", node, text)
	c.output = append(c.output, Message{NodeID: node, Text: text})
}
