package runtime

import (
	"fmt"

	"github.com/emirpasic/gods/maps/linkedhashmap"
)

// Symbol tables for variables and arrays. Symbol tables are attached to
// memory frames.
//

// --- Tags -------------------------------------------------------

// Tag is the symbols type to be stored into symbol tables. The name 'Tag' is
// kept apart from 'Symbol', which is what a block's fields contain before a
// run: tags only live during a run.
//
// A tag either holds a numeric value or an array.
type Tag struct {
	name  string
	Typ   int8
	Value float64
	Array *Array
}

// Pre-defined tag types.
const (
	Undefined int8 = iota
	NumericType
	ArrayType
)

// NewTag creates a new numeric tag with value 0.
func NewTag(nm string) *Tag {
	return &Tag{
		name: nm,
		Typ:  NumericType,
	}
}

// NewArrayTag creates a tag for a zero-filled array of a fixed size.
func NewArrayTag(nm string, size int) *Tag {
	return &Tag{
		name: nm,
		Typ:  ArrayType,
		Array: &Array{
			Name:     nm,
			Size:     size,
			Elements: make([]float64, size),
		},
	}
}

// WithValue sets the initial value of a tag. Use as
//
//    tag := NewTag("x").WithValue(7)
//
func (s *Tag) WithValue(v float64) *Tag {
	s.Value = v
	return s
}

// String is a debug Stringer for tags.
func (s *Tag) String() string {
	if s.Typ == ArrayType {
		return fmt.Sprintf("<tag '%s'[%d]>", s.Name(), s.Array.Size)
	}
	return fmt.Sprintf("<tag '%s'=%g>", s.Name(), s.Value)
}

// Name gets the tag's name.
func (s *Tag) Name() string {
	return s.name
}

// Array is a fixed-size vector of numbers. Its elements may be changed in
// place, its size never changes.
type Array struct {
	Name     string
	Size     int
	Elements []float64
}

// Copy returns an independent copy of an array.
func (a *Array) Copy() Array {
	c := Array{Name: a.Name, Size: a.Size, Elements: make([]float64, len(a.Elements))}
	copy(c.Elements, a.Elements)
	return c
}

// === Symbol Tables =========================================================

// SymbolTable is a symbol table to store tags (map-like semantics).
// Iteration follows the order of definition.
type SymbolTable struct {
	table *linkedhashmap.Map
}

// NewSymbolTable creates an empty symbol table.
//
func NewSymbolTable() *SymbolTable {
	return &SymbolTable{
		table: linkedhashmap.New(),
	}
}

// ResolveTag checks for a tag in the symbol table.
// Returns a tag or nil.
//
func (t *SymbolTable) ResolveTag(tagname string) *Tag {
	if tag, found := t.table.Get(tagname); found {
		return tag.(*Tag)
	}
	return nil
}

// DefineTag creates a new numeric tag to store into the symbol table.
// The tag's name may not be empty.
// Overwrites existing tag with this name, if any.
// Returns the new tag and the previously stored tag (or nil).
//
func (t *SymbolTable) DefineTag(tagname string) (*Tag, *Tag) {
	if len(tagname) == 0 {
		return nil, nil
	}
	tag := NewTag(tagname)
	old := t.InsertTag(tag)
	return tag, old
}

// InsertTag inserts a pre-created tag. Returns the tag previously stored
// under the same name, or nil.
func (t *SymbolTable) InsertTag(tag *Tag) *Tag {
	old := t.ResolveTag(tag.name)
	t.table.Put(tag.name, tag)
	return old
}

// Size counts the tags in a symbol table.
func (t *SymbolTable) Size() int {
	return t.table.Size()
}

// Each iterates over each tag in the table in order of definition,
// executing a mapper function.
func (t *SymbolTable) Each(mapper func(string, *Tag)) {
	t.table.Each(func(k interface{}, v interface{}) {
		mapper(k.(string), v.(*Tag))
	})
}
