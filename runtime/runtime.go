/*
Package runtime implements the runtime environment of the block interpreter,
consisting of a stack of memory frames holding variables and arrays.

Memory Frames

The global frame is at the bottom of the stack and lives for a whole run.
The interpreter pushes a frame when it enters a function call or the first
iteration of a counting loop, and pops it on return or loop exit.

Symbols are resolved innermost-first. Declaring checks for collisions in the
current frame only (variables) or in all visible frames (arrays); updating
never creates a binding.

----------------------------------------------------------------------

BSD License

Copyright (c) 2017-22, Norbert Pillmayer

All rights reserved.

Redistribution and use in source and binary forms, with or without
modification, are permitted provided that the following conditions
are met:

1. Redistributions of source code must retain the above copyright
notice, this list of conditions and the following disclaimer.

2. Redistributions in binary form must reproduce the above copyright
notice, this list of conditions and the following disclaimer in the
documentation and/or other materials provided with the distribution.

3. Neither the name of this software or the names of its contributors
may be used to endorse or promote products derived from this software
without specific prior written permission.

THIS SOFTWARE IS PROVIDED BY THE COPYRIGHT HOLDERS AND CONTRIBUTORS
"AS IS" AND ANY EXPRESS OR IMPLIED WARRANTIES, INCLUDING, BUT NOT
LIMITED TO, THE IMPLIED WARRANTIES OF MERCHANTABILITY AND FITNESS FOR
A PARTICULAR PURPOSE ARE DISCLAIMED. IN NO EVENT SHALL THE COPYRIGHT
HOLDER OR CONTRIBUTORS BE LIABLE FOR ANY DIRECT, INDIRECT, INCIDENTAL,
SPECIAL, EXEMPLARY, OR CONSEQUENTIAL DAMAGES (INCLUDING, BUT NOT
LIMITED TO, PROCUREMENT OF SUBSTITUTE GOODS OR SERVICES; LOSS OF USE,
DATA, OR PROFITS; OR BUSINESS INTERRUPTION) HOWEVER CAUSED AND ON ANY
THEORY OF LIABILITY, WHETHER IN CONTRACT, STRICT LIABILITY, OR TORT
(INCLUDING NEGLIGENCE OR OTHERWISE) ARISING IN ANY WAY OUT OF THE USE
OF THIS SOFTWARE, EVEN IF ADVISED OF THE POSSIBILITY OF SUCH DAMAGE. */
package runtime

import (
	"github.com/emirpasic/gods/maps/linkedhashmap"
	"github.com/npillmayer/blockflow"
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'blockflow.runtime'.
func tracer() tracing.Trace {
	return tracing.Select("blockflow.runtime")
}

// Runtime is a type implementing a runtime environment for the interpreter.
type Runtime struct {
	MemFrameStack *MemoryFrameStack // runtime stack of memory frames
}

// NewRuntimeEnvironment constructs a new runtime environment, initialized
// with an empty global frame.
//
func NewRuntimeEnvironment() *Runtime {
	rt := &Runtime{}
	rt.MemFrameStack = new(MemoryFrameStack) // initialize memory frame stack
	rt.MemFrameStack.PushNewMemoryFrame("global")
	return rt
}

// PushScope pushes a new memory frame.
func (rt *Runtime) PushScope(nm string) {
	rt.MemFrameStack.PushNewMemoryFrame(nm)
}

// PopScope pops the top-most memory frame. The global frame is never popped.
func (rt *Runtime) PopScope() {
	rt.MemFrameStack.PopMemoryFrame()
}

// Depth is the number of live frames, including the global frame.
func (rt *Runtime) Depth() int {
	return rt.MemFrameStack.Depth()
}

// Unwind pops frames until at most depth frames are left.
func (rt *Runtime) Unwind(depth int) {
	if depth < 1 {
		depth = 1
	}
	for rt.Depth() > depth {
		rt.PopScope()
	}
}

// --- Variables -------------------------------------------------------------

// Declare creates a variable with value 0 in the current frame.
// It is an error if the current frame already contains a variable of that name;
// shadowing variables of outer frames is fine.
func (rt *Runtime) Declare(name string) error {
	if name == "" {
		return blockflow.Errorf(blockflow.DeclarationError, "variable name missing")
	}
	vars := rt.MemFrameStack.Current().Vars
	if vars.ResolveTag(name) != nil {
		return blockflow.Errorf(blockflow.DeclarationError,
			"variable '%s' already exists in the current scope", name)
	}
	vars.DefineTag(name)
	return nil
}

// DeclareOrUpdate sets a variable in the current frame, creating it if needed.
func (rt *Runtime) DeclareOrUpdate(name string, value float64) {
	vars := rt.MemFrameStack.Current().Vars
	if tag := vars.ResolveTag(name); tag != nil {
		tag.Value = value
		return
	}
	vars.InsertTag(NewTag(name).WithValue(value))
}

// Lookup finds a variable, innermost frame first. Returns the variable's value
// and the index of the frame it has been found in (global = 0).
// If not found, the index is -1.
func (rt *Runtime) Lookup(name string) (float64, int) {
	for mf := rt.MemFrameStack.memoryFrameTOS; mf != nil; mf = mf.Parent {
		if tag := mf.Vars.ResolveTag(name); tag != nil {
			return tag.Value, mf.index
		}
	}
	return 0, -1
}

// Resolve looks up a variable's value, innermost frame first.
func (rt *Runtime) Resolve(name string) (float64, bool) {
	v, inx := rt.Lookup(name)
	return v, inx >= 0
}

// Update changes the value of the innermost variable of a given name.
// Update never creates a variable.
func (rt *Runtime) Update(name string, value float64) error {
	for mf := rt.MemFrameStack.memoryFrameTOS; mf != nil; mf = mf.Parent {
		if tag := mf.Vars.ResolveTag(name); tag != nil {
			tag.Value = value
			return nil
		}
	}
	return blockflow.Errorf(blockflow.ReferenceError, "variable '%s' is not declared", name)
}

// --- Arrays ----------------------------------------------------------------

// DeclareArray creates a zero-filled array in the current frame. It is an error
// if an array of this name is visible from the current frame.
func (rt *Runtime) DeclareArray(name string, size int) error {
	if name == "" {
		return blockflow.Errorf(blockflow.DeclarationError, "array name missing")
	}
	if size <= 0 {
		return blockflow.Errorf(blockflow.DeclarationError,
			"array size must be a positive number, is %d", size)
	}
	if rt.FindArray(name) != nil {
		return blockflow.Errorf(blockflow.DeclarationError, "array '%s' already exists", name)
	}
	rt.MemFrameStack.Current().Arrays.InsertTag(NewArrayTag(name, size))
	return nil
}

// FindArray finds an array, innermost frame first. Returns nil if not found.
func (rt *Runtime) FindArray(name string) *Array {
	for mf := rt.MemFrameStack.memoryFrameTOS; mf != nil; mf = mf.Parent {
		if tag := mf.Arrays.ResolveTag(name); tag != nil {
			return tag.Array
		}
	}
	return nil
}

func (rt *Runtime) checkedArray(name string, index int) (*Array, error) {
	a := rt.FindArray(name)
	if a == nil {
		return nil, blockflow.Errorf(blockflow.ReferenceError, "array '%s' is not declared", name)
	}
	if index < 0 || index >= a.Size {
		return nil, blockflow.Errorf(blockflow.BoundsError,
			"index %d is out of bounds for array '%s' (size %d)", index, name, a.Size)
	}
	return a, nil
}

// ArrayElement reads an element of an array, bounds-checked.
func (rt *Runtime) ArrayElement(name string, index int) (float64, error) {
	a, err := rt.checkedArray(name, index)
	if err != nil {
		return 0, err
	}
	return a.Elements[index], nil
}

// SetArrayElement writes an element of an array, bounds-checked.
func (rt *Runtime) SetArrayElement(name string, index int, value float64) error {
	a, err := rt.checkedArray(name, index)
	if err != nil {
		return err
	}
	a.Elements[index] = value
	return nil
}

// --- Snapshots -------------------------------------------------------------

// Variable is a name/value pair of a snapshot.
type Variable struct {
	Name  string  `json:"name" yaml:"name"`
	Value float64 `json:"value" yaml:"value"`
}

// Variables returns all variables of all live frames. If a name is present in
// more than one frame, the innermost frame wins. Order is the order of first
// declaration, outermost frame first.
func (rt *Runtime) Variables() []Variable {
	all := linkedhashmap.New()
	rt.MemFrameStack.Each(func(mf *DynamicMemoryFrame) {
		mf.Vars.Each(func(nm string, tag *Tag) {
			all.Put(nm, tag.Value)
		})
	})
	vars := make([]Variable, 0, all.Size())
	all.Each(func(k interface{}, v interface{}) {
		vars = append(vars, Variable{Name: k.(string), Value: v.(float64)})
	})
	return vars
}

// Arrays returns copies of all arrays of all live frames, innermost frame
// winning on name collisions.
func (rt *Runtime) Arrays() []Array {
	all := linkedhashmap.New()
	rt.MemFrameStack.Each(func(mf *DynamicMemoryFrame) {
		mf.Arrays.Each(func(nm string, tag *Tag) {
			all.Put(nm, tag.Array)
		})
	})
	arrays := make([]Array, 0, all.Size())
	all.Each(func(_ interface{}, v interface{}) {
		arrays = append(arrays, v.(*Array).Copy())
	})
	return arrays
}
