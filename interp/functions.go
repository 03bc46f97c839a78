package interp

import (
	"github.com/emirpasic/gods/maps/linkedhashmap"
	"github.com/emirpasic/gods/sets/hashset"
	"github.com/npillmayer/blockflow"
	"github.com/npillmayer/blockflow/graph"
)

// Function is a function found in a graph: a functionStart block carrying the
// function's name, and the functionEnd block reached by following next-links.
// Functions have neither parameters nor return values.
type Function struct {
	Name  string
	Start graph.Handle
	End   graph.Handle
}

// registry holds the functions of a graph, in order of discovery.
type registry struct {
	funcs *linkedhashmap.Map // name -> *Function
}

// discoverFunctions scans a graph for functionStart blocks. Blocks without a
// name, without a reachable end block or with a name already taken are
// reported and skipped; discovery continues with the remaining blocks.
func discoverFunctions(g *graph.Graph, log *collector) *registry {
	reg := &registry{funcs: linkedhashmap.New()}
	g.Each(func(h graph.Handle, n *graph.Node) {
		if n.Kind != blockflow.FunctionStart {
			return
		}
		name := n.Fields.(graph.FunctionFields).Name
		if name == "" {
			log.fail(blockflow.Errorf(blockflow.DeclarationError, "function name missing").At(n.ID))
			return
		}
		end := findFunctionEnd(g, h)
		if !end.Valid() {
			log.fail(blockflow.Errorf(blockflow.LinkageError,
				"no end block found for function '%s'", name).At(n.ID))
			return
		}
		if _, dup := reg.funcs.Get(name); dup {
			log.fail(blockflow.Errorf(blockflow.DeclarationError,
				"function '%s' is already declared", name).At(n.ID))
			return
		}
		tracer().Debugf("found function %s: %s ... %s", name, n.ID, g.Node(end).ID)
		reg.funcs.Put(name, &Function{Name: name, Start: h, End: end})
	})
	return reg
}

// findFunctionEnd follows next-links from a function's start until a
// functionEnd block is met. Returns Nil if the chain ends or runs in a circle.
func findFunctionEnd(g *graph.Graph, start graph.Handle) graph.Handle {
	visited := hashset.New()
	for h := start; h.Valid() && !visited.Contains(h); h = g.Node(h).Next {
		visited.Add(h)
		if g.Node(h).Kind == blockflow.FunctionEnd {
			return h
		}
	}
	return graph.Nil
}

func (reg *registry) lookup(name string) (*Function, bool) {
	f, ok := reg.funcs.Get(name)
	if !ok {
		return nil, false
	}
	return f.(*Function), true
}

func (reg *registry) names() []string {
	names := make([]string, 0, reg.funcs.Size())
	reg.funcs.Each(func(k interface{}, _ interface{}) {
		names = append(names, k.(string))
	})
	return names
}
