package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/chzyer/readline"
	"github.com/npillmayer/blockflow"
	"github.com/npillmayer/blockflow/graph"
	"github.com/npillmayer/blockflow/interp"
	"github.com/pterm/pterm"
)

// Intp is our interactive session: a workspace of blocks and an interpreter
// to run them.
type Intp struct {
	ws   *graph.Workspace
	ip   *interp.Interpreter
	repl *readline.Instance
	name string // program name, from the last file loaded
	last *interp.Result
}

// REPL starts interactive mode.
func (intp *Intp) REPL() {
	for {
		line, err := intp.repl.Readline()
		if err != nil { // io.EOF
			break
		}
		if line = strings.TrimSpace(line); line == "" {
			continue
		}
		quit, err := intp.Eval(line)
		if err != nil {
			pterm.Error.Println(err.Error())
			continue
		}
		if quit {
			break
		}
	}
	println("Good bye!")
}

var commands = [][]string{
	{"Command", "Arguments", "Description"},
	{"load", "<file>", "load a program (YAML or JSON)"},
	{"save", "<file>", "save the program as YAML"},
	{"add", "<type> <id>", "add a block"},
	{"set", "<id> <field> <text>", "set a data field, e.g. set w1 condition i < 10"},
	{"connect", "<from> next|true|false <to>", "connect blocks"},
	{"disconnect", "<id> top|next|true|false", "remove a connection"},
	{"bind", "<producer> <target> value|left|right|index", "bind a data input"},
	{"unbind", "<id> value|left|right|index", "clear a data input"},
	{"remove", "<id>", "remove a block"},
	{"list", "", "list all blocks"},
	{"tree", "", "display control flow"},
	{"check", "", "validate the program"},
	{"run", "", "run the program"},
	{"vars", "", "show variables and arrays of the last run"},
	{"quit", "", "leave"},
}

// Eval executes a command, given on a line by itself.
func (intp *Intp) Eval(line string) (bool, error) {
	args := strings.Fields(line)
	cmd, args := args[0], args[1:]
	tracer().Debugf("command %s %v", cmd, args)
	need := func(n int) error {
		if len(args) < n {
			return fmt.Errorf("%s needs %d argument(s), try 'help'", cmd, n)
		}
		return nil
	}
	var err error
	switch cmd {
	case "help":
		showTable(commands)
	case "quit", "exit":
		return true, nil
	case "load":
		if err = need(1); err == nil {
			err = intp.load(args[0])
		}
	case "save":
		if err = need(1); err == nil {
			err = intp.save(args[0])
		}
	case "add":
		if err = need(2); err == nil {
			if _, ok := blockflow.ParseKind(args[0]); !ok {
				return false, fmt.Errorf("unknown block type '%s'", args[0])
			}
			err = intp.ws.Add(graph.Record{InstanceID: args[1], Type: args[0]})
		}
	case "set":
		if err = need(3); err == nil {
			err = intp.set(args[0], args[1], strings.Join(args[2:], " "))
		}
	case "connect":
		if err = need(3); err == nil {
			var port graph.Port
			if port, err = parsePort(args[1]); err == nil {
				err = intp.ws.Connect(args[0], port, args[2])
			}
		}
	case "disconnect":
		if err = need(2); err == nil {
			var port graph.Port
			if port, err = parsePort(args[1]); err == nil {
				err = intp.ws.Disconnect(args[0], port)
			}
		}
	case "bind":
		if err = need(3); err == nil {
			var slot graph.Slot
			if slot, err = parseSlot(args[2]); err == nil {
				err = intp.ws.ConnectInput(args[0], args[1], slot)
			}
		}
	case "unbind":
		if err = need(2); err == nil {
			var slot graph.Slot
			if slot, err = parseSlot(args[1]); err == nil {
				err = intp.ws.DisconnectInput(args[0], slot)
			}
		}
	case "remove":
		if err = need(1); err == nil {
			err = intp.ws.Remove(args[0])
		}
	case "list":
		intp.showBlocks()
	case "tree":
		intp.showTree()
	case "check":
		intp.check()
	case "run":
		intp.run()
	case "vars":
		if intp.last == nil {
			return false, fmt.Errorf("no program has been run yet")
		}
		showState(intp.last)
	default:
		return false, fmt.Errorf("unknown command '%s', try 'help'", cmd)
	}
	return false, err
}

func (intp *Intp) load(path string) error {
	records, err := graph.LoadFile(path)
	if err != nil {
		return err
	}
	ws, err := graph.NewWorkspace(records...)
	if err != nil {
		return err
	}
	intp.ws = ws
	intp.name = strings.TrimSuffix(path, ".yaml")
	tracer().Infof("loaded %d blocks from %s", ws.Len(), path)
	return nil
}

func (intp *Intp) save(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return graph.Encode(f, intp.name, intp.ws.Records())
}

// set changes a single data field of a block.
func (intp *Intp) set(id string, field string, text string) error {
	rec, ok := intp.ws.Block(id)
	if !ok {
		return fmt.Errorf("no block '%s'", id)
	}
	data := rec.Data
	if err := setField(&data, field, text); err != nil {
		return err
	}
	return intp.ws.Update(id, data)
}

// setField sets a data field by its name in the host format.
func setField(data *graph.Data, field string, text string) error {
	switch field {
	case "variableName":
		data.VariableName = text
	case "value":
		data.Value = text
	case "condition":
		data.Condition = text
	case "operator":
		data.Operator = text
	case "expression":
		data.Expression = text
	case "initialization":
		data.Initialization = text
	case "iteration":
		data.Iteration = text
	case "functionName":
		data.FunctionName = text
	case "arrayName":
		data.ArrayName = text
	case "arraySize":
		data.ArraySize = text
	case "arrayIndex":
		data.ArrayIndex = text
	default:
		return fmt.Errorf("unknown field '%s'", field)
	}
	return nil
}

func parsePort(s string) (graph.Port, error) {
	for _, p := range []graph.Port{graph.NextPort, graph.TruePort, graph.FalsePort, graph.TopPort} {
		if p.String() == s {
			return p, nil
		}
	}
	return graph.NextPort, fmt.Errorf("unknown port '%s'", s)
}

func parseSlot(s string) (graph.Slot, error) {
	for _, sl := range []graph.Slot{graph.ValueSlot, graph.LeftSlot, graph.RightSlot, graph.IndexSlot} {
		if sl.String() == s {
			return sl, nil
		}
	}
	return graph.ValueSlot, fmt.Errorf("unknown input '%s'", s)
}

// check validates the program and reports problems. Returns true if none
// have been found.
func (intp *Intp) check() bool {
	errs := graph.Validate(intp.ws.Records())
	for _, e := range errs {
		pterm.Error.Println(describe(e.Kind, e.Node, e.Msg))
	}
	if len(errs) == 0 {
		pterm.Info.Println("program is valid")
	}
	return len(errs) == 0
}

// run executes the program and displays the result. Returns the result's
// success flag.
func (intp *Intp) run() bool {
	r := intp.ip.Execute(intp.ws.Records())
	intp.last = r
	for _, msg := range r.Output {
		pterm.Info.Println(msg.Text)
	}
	for _, f := range r.Errors {
		node := f.NodeID
		if f.Source != "" {
			node += " <- " + f.Source
		}
		pterm.Error.Println(describe(f.Kind, node, f.Message))
	}
	showState(r)
	return r.Success
}

func describe(kind blockflow.ErrorKind, node string, msg string) string {
	if node == "" {
		return fmt.Sprintf("%s: %s", kind, msg)
	}
	return fmt.Sprintf("%s at [%s]: %s", kind, node, msg)
}
