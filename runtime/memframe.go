package runtime

import (
	"fmt"
)

// This module implements a stack of memory frames.
// Memory frames are used by the interpreter to allocate local storage
// for function calls and counting loops.

// DynamicMemoryFrame is a memory frame, representing a piece of memory for a scope.
// Variables and arrays live in separate symbol tables, i.e. a variable and an
// array may share a name.
type DynamicMemoryFrame struct {
	Name   string
	Vars   *SymbolTable
	Arrays *SymbolTable
	Parent *DynamicMemoryFrame
	index  int
}

// NewDynamicMemoryFrame creates a new memory frame.
func NewDynamicMemoryFrame(nm string) *DynamicMemoryFrame {
	mf := &DynamicMemoryFrame{
		Name:   nm,
		Vars:   NewSymbolTable(),
		Arrays: NewSymbolTable(),
	}
	return mf
}

func (mf *DynamicMemoryFrame) String() string {
	return fmt.Sprintf("<mem %s #%d>", mf.Name, mf.index)
}

// IsRoot is a predicate: Is this a root frame?
func (mf *DynamicMemoryFrame) IsRoot() bool {
	return (mf.Parent == nil)
}

// Index is the position of the frame in the stack, with the global frame at 0.
func (mf *DynamicMemoryFrame) Index() int {
	return mf.index
}

// ---------------------------------------------------------------------------

// MemoryFrameStack is a (call-)stack of memory frames.
// The bottommost frame holds the global symbols and is never popped.
type MemoryFrameStack struct {
	memoryFrameBase *DynamicMemoryFrame
	memoryFrameTOS  *DynamicMemoryFrame
}

// Current gets the current memory frame of a stack (TOS).
func (mfst *MemoryFrameStack) Current() *DynamicMemoryFrame {
	if mfst.memoryFrameTOS == nil {
		panic("attempt to access memory frame from empty stack")
	}
	return mfst.memoryFrameTOS
}

// Globals gets the outermost memory frame, containing global symbols.
func (mfst *MemoryFrameStack) Globals() *DynamicMemoryFrame {
	if mfst.memoryFrameBase == nil {
		panic("attempt to access global memory frame from empty stack")
	}
	return mfst.memoryFrameBase
}

// Depth returns the number of frames on the stack.
func (mfst *MemoryFrameStack) Depth() int {
	if mfst.memoryFrameTOS == nil {
		return 0
	}
	return mfst.memoryFrameTOS.index + 1
}

// PushNewMemoryFrame pushes a new memory frame as TOS.
// A frame is constructed, having the recent TOS as its
// parent. If the stack is empty, the new frame becomes the global frame.
//
func (mfst *MemoryFrameStack) PushNewMemoryFrame(nm string) *DynamicMemoryFrame {
	mfp := mfst.memoryFrameTOS
	newmf := NewDynamicMemoryFrame(nm)
	newmf.Parent = mfp
	if mfp == nil { // the new frame is the global frame
		mfst.memoryFrameBase = newmf // make new mf anchor
	} else {
		newmf.index = mfp.index + 1
	}
	mfst.memoryFrameTOS = newmf // new frame now TOS
	tracer().P("mem", newmf.Name).Debugf("pushing new memory frame #%d", newmf.index)
	return newmf
}

// PopMemoryFrame pops the top-most memory frame. Returns the popped frame.
// Popping the global frame is a no-op returning nil.
func (mfst *MemoryFrameStack) PopMemoryFrame() *DynamicMemoryFrame {
	if mfst.memoryFrameTOS == nil {
		panic("attempt to pop memory frame from empty call stack")
	}
	if mfst.memoryFrameTOS.IsRoot() {
		tracer().Errorf("attempt to pop the global memory frame ignored")
		return nil
	}
	mf := mfst.memoryFrameTOS
	tracer().Debugf("popping memory frame [%s]", mf.Name)
	mfst.memoryFrameTOS = mfst.memoryFrameTOS.Parent
	return mf
}

// Each iterates over the frames, from the global frame to TOS.
func (mfst *MemoryFrameStack) Each(mapper func(*DynamicMemoryFrame)) {
	frames := make([]*DynamicMemoryFrame, mfst.Depth())
	for mf := mfst.memoryFrameTOS; mf != nil; mf = mf.Parent {
		frames[mf.index] = mf
	}
	for _, mf := range frames {
		mapper(mf)
	}
}
