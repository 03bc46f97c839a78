package graph

import (
	"github.com/emirpasic/gods/sets/hashset"
	"github.com/npillmayer/blockflow"
)

// inputSlots lists the data-input slots a block kind offers. Kinds not
// listed accept no data inputs.
var inputSlots = map[blockflow.Kind][]Slot{
	blockflow.Assignment:      {ValueSlot},
	blockflow.Output:          {ValueSlot},
	blockflow.If:              {LeftSlot, RightSlot},
	blockflow.While:           {LeftSlot, RightSlot},
	blockflow.For:             {LeftSlot, RightSlot},
	blockflow.ArrayAssignment: {ValueSlot, IndexSlot},
	blockflow.ArrayElement:    {IndexSlot},
}

// AcceptsInput is a predicate: does a block of kind k offer a data-input slot?
func AcceptsInput(k blockflow.Kind, slot Slot) bool {
	for _, s := range inputSlots[k] {
		if s == slot {
			return true
		}
	}
	return false
}

// Validate checks a set of records for structural problems, without running
// anything. It reports
//
//   - missing, duplicate or multiple start blocks (GraphError)
//   - records without or with duplicate instance IDs (GraphError)
//   - unknown block types (GraphError)
//   - links to unknown blocks, self-links, branch links on non-branching blocks,
//     blocks with more than one incoming link (LinkageError)
//   - data inputs bound to unsuitable blocks or slots, and cyclic data inputs (LinkageError)
//
// The interpreter is lenient about most of these, thus Validate is a service
// for editors and for the command line tool.
func Validate(records []Record) []*blockflow.Error {
	var errs []*blockflow.Error
	report := func(e *blockflow.Error) {
		tracer().Debugf("validate: %s (%s)", e.Msg, e.Node)
		errs = append(errs, e)
	}
	index := make(map[string]int, len(records))
	starts := 0
	for i, rec := range records {
		if rec.InstanceID == "" {
			report(blockflow.Errorf(blockflow.GraphError, "block #%d has no instance ID", i))
			continue
		}
		if _, dup := index[rec.InstanceID]; dup {
			report(blockflow.Errorf(blockflow.GraphError, "duplicate instance ID '%s'",
				rec.InstanceID).At(rec.InstanceID))
			continue
		}
		index[rec.InstanceID] = i
		if rec.Type == blockflow.Start.String() {
			if starts++; starts > 1 {
				report(blockflow.Errorf(blockflow.GraphError, "more than one start block").At(rec.InstanceID))
			}
		}
	}
	if starts == 0 {
		report(blockflow.Errorf(blockflow.GraphError, "no start block"))
	}
	incoming := make(map[string]int)
	for _, rec := range records {
		if rec.InstanceID == "" {
			continue
		}
		id := rec.InstanceID
		kind, ok := blockflow.ParseKind(rec.Type)
		if !ok {
			report(blockflow.Errorf(blockflow.GraphError, "unknown block type '%s'", rec.Type).At(id))
		}
		for _, port := range []Port{NextPort, TruePort, FalsePort} {
			target := rec.link(port)
			if target == "" {
				continue
			}
			if port != NextPort && !kind.IsBranching() {
				report(blockflow.Errorf(blockflow.LinkageError,
					"%s block has no %s branch", rec.Type, port).At(id))
			}
			if target == id {
				report(blockflow.Errorf(blockflow.LinkageError, "block links to itself").At(id))
				continue
			}
			if _, ok := index[target]; !ok {
				report(blockflow.Errorf(blockflow.LinkageError,
					"%s link to unknown block '%s'", port, target).At(id))
				continue
			}
			if incoming[target]++; incoming[target] == 2 {
				report(blockflow.Errorf(blockflow.LinkageError,
					"block has more than one incoming link").At(target))
			}
		}
		for s := ValueSlot; s < slotCount; s++ {
			producer := rec.Inputs.Input(s)
			if producer == "" {
				continue
			}
			if !AcceptsInput(kind, s) {
				report(blockflow.Errorf(blockflow.LinkageError,
					"%s block has no %s input", rec.Type, s).At(id))
				continue
			}
			j, ok := index[producer]
			if !ok {
				report(blockflow.Errorf(blockflow.LinkageError,
					"%s input bound to unknown block '%s'", s, producer).At(id))
				continue
			}
			pk, _ := blockflow.ParseKind(records[j].Type)
			if !pk.IsDataProducer() {
				report(blockflow.Errorf(blockflow.LinkageError,
					"%s input bound to %s block, which produces no value", s, pk).At(id))
			}
		}
	}
	for _, id := range inputCycles(records, index) {
		report(blockflow.Errorf(blockflow.LinkageError, "data inputs form a cycle").At(id))
	}
	return errs
}

// inputCycles finds blocks whose data inputs lead back to themselves.
// Each cycle is reported once, at the block where it has been detected.
func inputCycles(records []Record, index map[string]int) []string {
	var cycles []string
	done := hashset.New()
	onPath := hashset.New()
	var visit func(id string)
	visit = func(id string) {
		if done.Contains(id) {
			return
		}
		i, ok := index[id]
		if !ok {
			return
		}
		onPath.Add(id)
		for s := ValueSlot; s < slotCount; s++ {
			producer := records[i].Inputs.Input(s)
			if producer == "" {
				continue
			}
			if onPath.Contains(producer) {
				cycles = append(cycles, producer)
				continue
			}
			visit(producer)
		}
		onPath.Remove(id)
		done.Add(id)
	}
	for _, rec := range records {
		if rec.InstanceID != "" {
			visit(rec.InstanceID)
		}
	}
	return cycles
}
