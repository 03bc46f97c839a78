package graph

import (
	"github.com/npillmayer/blockflow"
)

// Workspace is an editable set of records. It performs the edits a host's
// editor does and keeps links consistent: every control link has a matching
// back-link in the target's previous-field, and removing a block clears all
// references to it.
//
// A Workspace is not safe for concurrent use.
type Workspace struct {
	records []Record
	index   map[string]int
}

// NewWorkspace creates a workspace, adding records one at a time.
func NewWorkspace(records ...Record) (*Workspace, error) {
	ws := &Workspace{index: make(map[string]int)}
	for _, rec := range records {
		if err := ws.Add(rec); err != nil {
			return nil, err
		}
	}
	return ws, nil
}

// Add places a new block. Fails for records without instance ID, duplicate
// instance IDs and a second start block.
func (ws *Workspace) Add(rec Record) error {
	if rec.InstanceID == "" {
		return blockflow.Errorf(blockflow.LinkageError, "block has no instance ID")
	}
	if _, dup := ws.index[rec.InstanceID]; dup {
		return blockflow.Errorf(blockflow.LinkageError, "duplicate instance ID '%s'",
			rec.InstanceID).At(rec.InstanceID)
	}
	if rec.Type == blockflow.Start.String() {
		for _, r := range ws.records {
			if r.Type == rec.Type {
				return blockflow.Errorf(blockflow.LinkageError,
					"workspace already has a start block").At(rec.InstanceID)
			}
		}
	}
	ws.index[rec.InstanceID] = len(ws.records)
	ws.records = append(ws.records, rec)
	tracer().Debugf("workspace: added %v", rec)
	return nil
}

func (ws *Workspace) find(id string) (*Record, error) {
	i, ok := ws.index[id]
	if !ok {
		return nil, blockflow.Errorf(blockflow.LinkageError, "no block '%s' in workspace", id).At(id)
	}
	return &ws.records[i], nil
}

// Block returns a copy of the record with instance ID id.
func (ws *Workspace) Block(id string) (Record, bool) {
	i, ok := ws.index[id]
	if !ok {
		return Record{}, false
	}
	return ws.records[i], true
}

// Len returns the number of blocks in the workspace.
func (ws *Workspace) Len() int {
	return len(ws.records)
}

// Connect links port of block from to block to. Valid ports are NextPort,
// TruePort and FalsePort, the latter two only for branching blocks.
// A block may not be connected to itself, a port may carry only one link,
// and a block may have only one incoming link.
func (ws *Workspace) Connect(from string, port Port, to string) error {
	if from == to {
		return blockflow.Errorf(blockflow.LinkageError, "cannot connect a block to itself").At(from)
	}
	src, err := ws.find(from)
	if err != nil {
		return err
	}
	dest, err := ws.find(to)
	if err != nil {
		return err
	}
	switch port {
	case NextPort:
	case TruePort, FalsePort:
		if k, _ := blockflow.ParseKind(src.Type); !k.IsBranching() {
			return blockflow.Errorf(blockflow.LinkageError, "%s block has no %s branch",
				src.Type, port).At(from)
		}
	default:
		return blockflow.Errorf(blockflow.LinkageError, "cannot connect from %s port", port).At(from)
	}
	if src.link(port) != "" {
		return blockflow.Errorf(blockflow.LinkageError, "%s port is already connected", port).At(from)
	}
	if dest.Previous != "" || ws.hasIncoming(to) {
		return blockflow.Errorf(blockflow.LinkageError, "block already has an incoming link").At(to)
	}
	src.setLink(port, to)
	dest.Previous = from
	tracer().Debugf("workspace: %s.%s -> %s", from, port, to)
	return nil
}

func (ws *Workspace) hasIncoming(id string) bool {
	for i := range ws.records {
		r := &ws.records[i]
		if r.Next == id || r.True == id || r.False == id {
			return true
		}
	}
	return false
}

// ConnectInput binds the value of a producer block (arithmetic or
// arrayElement) to a data-input slot of block target. An existing binding of
// the slot is replaced.
func (ws *Workspace) ConnectInput(producer string, target string, slot Slot) error {
	if producer == target {
		return blockflow.Errorf(blockflow.LinkageError, "cannot bind a block to itself").At(target)
	}
	p, err := ws.find(producer)
	if err != nil {
		return err
	}
	t, err := ws.find(target)
	if err != nil {
		return err
	}
	if pk, _ := blockflow.ParseKind(p.Type); !pk.IsDataProducer() {
		return blockflow.Errorf(blockflow.LinkageError, "%s block produces no value",
			p.Type).At(target).From(producer)
	}
	if tk, _ := blockflow.ParseKind(t.Type); !AcceptsInput(tk, slot) {
		return blockflow.Errorf(blockflow.LinkageError, "%s block has no %s input",
			t.Type, slot).At(target).From(producer)
	}
	t.Inputs.bind(slot, producer)
	tracer().Debugf("workspace: %s -> %s.%s", producer, target, slot)
	return nil
}

// Disconnect removes the link at a port of block id, clearing both ends.
// For TopPort the incoming link is removed.
func (ws *Workspace) Disconnect(id string, port Port) error {
	rec, err := ws.find(id)
	if err != nil {
		return err
	}
	switch port {
	case TopPort:
		if prev := rec.Previous; prev != "" {
			if p, err := ws.find(prev); err == nil {
				for _, out := range []Port{NextPort, TruePort, FalsePort} {
					if p.link(out) == id {
						p.setLink(out, "")
					}
				}
			}
			rec.Previous = ""
		}
	case NextPort, TruePort, FalsePort:
		if to := rec.link(port); to != "" {
			if t, err := ws.find(to); err == nil && t.Previous == id {
				t.Previous = ""
			}
			rec.setLink(port, "")
		}
	default:
		return blockflow.Errorf(blockflow.LinkageError, "unknown port %s", port).At(id)
	}
	return nil
}

// DisconnectInput clears a data-input binding of block id.
func (ws *Workspace) DisconnectInput(id string, slot Slot) error {
	rec, err := ws.find(id)
	if err != nil {
		return err
	}
	rec.Inputs.bind(slot, "")
	return nil
}

// Remove deletes block id and clears every link and input binding of other
// blocks pointing to it.
func (ws *Workspace) Remove(id string) error {
	i, ok := ws.index[id]
	if !ok {
		return blockflow.Errorf(blockflow.LinkageError, "no block '%s' in workspace", id).At(id)
	}
	ws.records = append(ws.records[:i], ws.records[i+1:]...)
	delete(ws.index, id)
	for j := range ws.records {
		r := &ws.records[j]
		ws.index[r.InstanceID] = j
		for _, port := range []Port{NextPort, TruePort, FalsePort, TopPort} {
			if r.link(port) == id {
				r.setLink(port, "")
			}
		}
		for s := ValueSlot; s < slotCount; s++ {
			if r.Inputs.Input(s) == id {
				r.Inputs.bind(s, "")
			}
		}
	}
	tracer().Debugf("workspace: removed %s", id)
	return nil
}

// Update replaces the data fields of block id.
func (ws *Workspace) Update(id string, data Data) error {
	rec, err := ws.find(id)
	if err != nil {
		return err
	}
	rec.Data = data
	return nil
}

// Records returns a copy of the current set of records, ready for execution.
func (ws *Workspace) Records() []Record {
	records := make([]Record, len(ws.records))
	copy(records, ws.records)
	return records
}
