package runtime

import (
	"testing"

	"github.com/npillmayer/blockflow"
	"github.com/npillmayer/schuko/tracing/gotestingadapter"
)

func TestNewSymTab(t *testing.T) {
	symtab := NewSymbolTable()
	if symtab == nil {
		t.Error("no symbol table created")
	}
}

func TestDefineTag(t *testing.T) {
	symtab := NewSymbolTable()
	sym, _ := symtab.DefineTag("new-sym")
	if sym == nil {
		t.Fatal("no symbol created for table")
	}
	if _, old := symtab.DefineTag("new-sym"); old != sym {
		t.Error("symbol should have been replaced")
	}
	if s := symtab.ResolveTag("new-sym"); s == nil {
		t.Error("cannot find stored symbol in table")
	}
}

func TestSymbolTableOrder(t *testing.T) {
	symtab := NewSymbolTable()
	for _, nm := range []string{"c", "a", "b"} {
		symtab.DefineTag(nm)
	}
	var names string
	symtab.Each(func(nm string, _ *Tag) {
		names += nm
	})
	if names != "cab" {
		t.Errorf("expected iteration in order of definition, got %q", names)
	}
}

func TestDeclareTwiceInFrame(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "blockflow.runtime")
	defer teardown()
	//
	rt := NewRuntimeEnvironment()
	if err := rt.Declare("x"); err != nil {
		t.Fatal(err)
	}
	err := rt.Declare("x")
	if blockflow.KindOf(err) != blockflow.DeclarationError {
		t.Errorf("expected declaration error for second declaration, got %v", err)
	}
}

func TestShadowing(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "blockflow.runtime")
	defer teardown()
	//
	rt := NewRuntimeEnvironment()
	rt.Declare("x")
	rt.Update("x", 1)
	rt.PushScope("inner")
	if err := rt.Declare("x"); err != nil {
		t.Fatalf("shadowing declaration failed: %v", err)
	}
	if err := rt.Update("x", 2); err != nil {
		t.Fatal(err)
	}
	if v, inx := rt.Lookup("x"); v != 2 || inx != 1 {
		t.Errorf("expected x=2 in frame 1, got %g in frame %d", v, inx)
	}
	vars := rt.Variables()
	if len(vars) != 1 || vars[0].Value != 2 {
		t.Errorf("expected innermost x to win in snapshot, got %v", vars)
	}
	rt.PopScope()
	if v, inx := rt.Lookup("x"); v != 1 || inx != 0 {
		t.Errorf("expected outer x=1 untouched, got %g in frame %d", v, inx)
	}
}

func TestUpdateUndeclared(t *testing.T) {
	rt := NewRuntimeEnvironment()
	err := rt.Update("y", 3)
	if blockflow.KindOf(err) != blockflow.ReferenceError {
		t.Errorf("expected reference error, got %v", err)
	}
	if _, inx := rt.Lookup("y"); inx != -1 {
		t.Errorf("update must not create a variable")
	}
}

func TestPopGlobalFrame(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "blockflow.runtime")
	defer teardown()
	//
	rt := NewRuntimeEnvironment()
	rt.Declare("g")
	rt.PopScope()
	rt.PopScope()
	if rt.Depth() != 1 {
		t.Errorf("global frame must survive pops, depth is %d", rt.Depth())
	}
	if _, inx := rt.Lookup("g"); inx != 0 {
		t.Errorf("global variable lost")
	}
}

func TestUnwind(t *testing.T) {
	rt := NewRuntimeEnvironment()
	rt.PushScope("a")
	rt.PushScope("b")
	rt.PushScope("c")
	rt.Unwind(2)
	if rt.Depth() != 2 {
		t.Errorf("expected depth 2, is %d", rt.Depth())
	}
	rt.Unwind(0)
	if rt.Depth() != 1 {
		t.Errorf("expected depth 1, is %d", rt.Depth())
	}
}

func TestArrays(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "blockflow.runtime")
	defer teardown()
	//
	rt := NewRuntimeEnvironment()
	if err := rt.DeclareArray("a", 5); err != nil {
		t.Fatal(err)
	}
	if err := rt.SetArrayElement("a", 4, 42); err != nil {
		t.Error(err)
	}
	if v, err := rt.ArrayElement("a", 4); err != nil || v != 42 {
		t.Errorf("expected a[4]=42, got %g (%v)", v, err)
	}
	err := rt.SetArrayElement("a", 5, 1)
	if blockflow.KindOf(err) != blockflow.BoundsError {
		t.Errorf("expected bounds error, got %v", err)
	}
	t.Logf("bounds error: %v", err)
	if _, err = rt.ArrayElement("b", 0); blockflow.KindOf(err) != blockflow.ReferenceError {
		t.Errorf("expected reference error for undeclared array, got %v", err)
	}
	rt.PushScope("inner")
	if err = rt.DeclareArray("a", 2); blockflow.KindOf(err) != blockflow.DeclarationError {
		t.Errorf("expected collision with visible array, got %v", err)
	}
	if err = rt.DeclareArray("z", 0); blockflow.KindOf(err) != blockflow.DeclarationError {
		t.Errorf("expected error for size 0, got %v", err)
	}
}

func TestArraySnapshotIsCopy(t *testing.T) {
	rt := NewRuntimeEnvironment()
	rt.DeclareArray("a", 2)
	snap := rt.Arrays()
	snap[0].Elements[0] = 99
	if v, _ := rt.ArrayElement("a", 0); v != 0 {
		t.Errorf("snapshot must not alias live array")
	}
}
