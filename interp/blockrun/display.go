package main

import (
	"fmt"
	"strings"

	"github.com/emirpasic/gods/sets/hashset"
	"github.com/npillmayer/blockflow"
	"github.com/npillmayer/blockflow/expr"
	"github.com/npillmayer/blockflow/graph"
	"github.com/npillmayer/blockflow/interp"
	"github.com/pterm/pterm"
)

func showTable(data [][]string) {
	if err := pterm.DefaultTable.WithHasHeader().WithData(data).Render(); err != nil {
		tracer().Errorf("cannot render table: %v", err)
	}
}

func (intp *Intp) showBlocks() {
	data := [][]string{{"ID", "Type", "Fields", "Next", "True", "False", "Inputs"}}
	for _, rec := range intp.ws.Records() {
		data = append(data, []string{
			rec.InstanceID, rec.Type, summary(rec), rec.Next, rec.True, rec.False, inputs(rec.Inputs),
		})
	}
	showTable(data)
}

// showState displays the variables and arrays of a run.
func showState(r *interp.Result) {
	if len(r.Variables) > 0 {
		data := [][]string{{"Variable", "Value"}}
		for _, v := range r.Variables {
			data = append(data, []string{v.Name, expr.Format(v.Value)})
		}
		showTable(data)
	}
	if len(r.Arrays) > 0 {
		data := [][]string{{"Array", "Size", "Elements"}}
		for _, a := range r.Arrays {
			elems := make([]string, len(a.Elements))
			for i, e := range a.Elements {
				elems[i] = expr.Format(e)
			}
			data = append(data, []string{a.Name, fmt.Sprint(a.Size), strings.Join(elems, " ")})
		}
		showTable(data)
	}
}

// showTree displays the control flow, starting at the start block and at
// every function start.
func (intp *Intp) showTree() {
	records := intp.ws.Records()
	g, err := graph.Build(records)
	if err != nil {
		pterm.Error.Println(err.Error())
		return
	}
	var roots []graph.Handle
	if g.Start().Valid() {
		roots = append(roots, g.Start())
	}
	g.Each(func(h graph.Handle, n *graph.Node) {
		if n.Kind == blockflow.FunctionStart {
			roots = append(roots, h)
		}
	})
	ll := pterm.LeveledList{}
	visited := hashset.New()
	for _, h := range roots {
		ll = leveledChain(g, h, ll, 0, visited)
	}
	tracer().Debugf("|ll| = %d", len(ll))
	if len(ll) == 0 {
		pterm.Info.Println("no start block")
		return
	}
	root := pterm.NewTreeFromLeveledList(ll)
	if err := pterm.DefaultTree.WithRoot(root).Render(); err != nil {
		tracer().Errorf("cannot render tree: %v", err)
	}
}

// leveledChain appends a chain of blocks linked by next-links, with branches
// one level deeper.
func leveledChain(g *graph.Graph, h graph.Handle, ll pterm.LeveledList, level int,
	visited *hashset.Set) pterm.LeveledList {
	//
	for ; h.Valid(); h = g.Node(h).Next {
		n := g.Node(h)
		if visited.Contains(h) {
			ll = append(ll, pterm.LeveledListItem{Level: level, Text: "↻ " + n.ID})
			return ll
		}
		visited.Add(h)
		ll = append(ll, pterm.LeveledListItem{Level: level, Text: label(n)})
		if n.True.Valid() {
			ll = append(ll, pterm.LeveledListItem{Level: level + 1, Text: "true:"})
			ll = leveledChain(g, n.True, ll, level+2, visited)
		}
		if n.False.Valid() {
			ll = append(ll, pterm.LeveledListItem{Level: level + 1, Text: "false:"})
			ll = leveledChain(g, n.False, ll, level+2, visited)
		}
	}
	return ll
}

func label(n *graph.Node) string {
	switch f := n.Fields.(type) {
	case graph.VariableFields:
		return fmt.Sprintf("%s %s: %s", n.Type, n.ID, f.Names)
	case graph.AssignmentFields:
		return fmt.Sprintf("%s %s: %s = %s", n.Type, n.ID, f.Variable, f.Value)
	case graph.ConditionFields:
		return fmt.Sprintf("%s %s: %s", n.Type, n.ID, expr.ParseCondition(f.Condition, f.Operator))
	case graph.ForFields:
		return fmt.Sprintf("%s %s: %s; %s; %s", n.Type, n.ID, f.Init,
			expr.ParseCondition(f.Condition, f.Operator), f.Step)
	case graph.OutputFields:
		return fmt.Sprintf("%s %s: %s", n.Type, n.ID, f.Expression)
	case graph.FunctionFields:
		return fmt.Sprintf("%s %s: %s", n.Type, n.ID, f.Name)
	case graph.ArrayDeclarationFields:
		return fmt.Sprintf("%s %s: %s[%s]", n.Type, n.ID, f.Array, f.Size)
	case graph.ArrayAssignmentFields:
		return fmt.Sprintf("%s %s: %s[%s] = %s", n.Type, n.ID, f.Array, f.Index, f.Value)
	}
	return fmt.Sprintf("%s %s", n.Type, n.ID)
}

// summary lists the non-empty data fields of a record.
func summary(rec graph.Record) string {
	d := rec.Data
	var fields []string
	for _, kv := range [][2]string{
		{"variableName", d.VariableName}, {"value", d.Value}, {"condition", d.Condition},
		{"operator", d.Operator}, {"expression", d.Expression}, {"initialization", d.Initialization},
		{"iteration", d.Iteration}, {"functionName", d.FunctionName}, {"arrayName", d.ArrayName},
		{"arraySize", d.ArraySize}, {"arrayIndex", d.ArrayIndex},
	} {
		if kv[1] != "" {
			fields = append(fields, kv[0]+"="+kv[1])
		}
	}
	return strings.Join(fields, ", ")
}

func inputs(in graph.Inputs) string {
	var bound []string
	for _, s := range []graph.Slot{graph.ValueSlot, graph.LeftSlot, graph.RightSlot, graph.IndexSlot} {
		if id := in.Input(s); id != "" {
			bound = append(bound, s.String()+"<-"+id)
		}
	}
	return strings.Join(bound, ", ")
}
