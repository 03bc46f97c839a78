package interp

import (
	"reflect"
	"strings"
	"testing"

	"github.com/npillmayer/blockflow"
	"github.com/npillmayer/blockflow/graph"
	"github.com/npillmayer/schuko/gconf"
	"github.com/npillmayer/schuko/schukonf/testconfig"
	"github.com/npillmayer/schuko/tracing/gotestingadapter"
)

func program(t *testing.T, src string) []graph.Record {
	records, err := graph.Decode(strings.NewReader(src))
	if err != nil {
		t.Fatalf("cannot decode test program: %v", err)
	}
	return records
}

func expectOutput(t *testing.T, r *Result, lines ...string) {
	t.Helper()
	if got := r.Lines(); !reflect.DeepEqual(got, lines) && !(len(got) == 0 && len(lines) == 0) {
		t.Errorf("expected output %q, got %q", lines, got)
	}
}

func expectError(t *testing.T, r *Result, node string, kind blockflow.ErrorKind) Failure {
	t.Helper()
	for _, f := range r.Errors {
		t.Logf("error at %s: %s", f.NodeID, f.Message)
	}
	if r.Success {
		t.Fatalf("expected run to fail")
	}
	for _, f := range r.Errors {
		if f.NodeID == node && f.Kind == kind {
			return f
		}
	}
	t.Fatalf("expected %s at block '%s', got %v", kind, node, r.Errors)
	return Failure{}
}

func expectSuccess(t *testing.T, r *Result) {
	t.Helper()
	if !r.Success || len(r.Errors) > 0 {
		t.Fatalf("expected run to succeed, got errors %v", r.Errors)
	}
}

func TestForLoop(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "blockflow.interp")
	defer teardown()
	//
	r := New().Execute(program(t, `
- { instanceId: s, type: start, nextBlockId: f }
- instanceId: f
  type: for
  data: { initialization: "i = 0", condition: "i < 3", iteration: "i = i + 1" }
  trueBlockId: o
- { instanceId: o, type: output, data: { expression: "i" } }
`))
	expectSuccess(t, r)
	expectOutput(t, r, "0", "1", "2")
	if _, ok := r.Variable("i"); ok {
		t.Errorf("expected loop variable to be out of scope after the loop")
	}
}

func TestNestedForLoops(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "blockflow.interp")
	defer teardown()
	//
	r := New().Execute(program(t, `
- { instanceId: s, type: start, nextBlockId: f1 }
- instanceId: f1
  type: for
  data: { initialization: "i = 0", condition: "i < 2", iteration: "i = i + 1" }
  trueBlockId: f2
  falseBlockId: done
- instanceId: f2
  type: for
  data: { initialization: "j = 0", condition: "j < 2", iteration: "j = j + 1" }
  trueBlockId: o
- { instanceId: o, type: output, data: { expression: "i * 10 + j" } }
- { instanceId: done, type: output, data: { expression: "done" } }
`))
	expectSuccess(t, r)
	expectOutput(t, r, "0", "1", "10", "11", "done")
}

func TestForLoopWithoutCondition(t *testing.T) {
	r := New().Execute(program(t, `
- { instanceId: s, type: start, nextBlockId: f }
- instanceId: f
  type: for
  data: { initialization: "i = 0" }
  trueBlockId: o
  falseBlockId: after
- { instanceId: o, type: output, data: { expression: "body" } }
- { instanceId: after, type: output, data: { expression: "after" } }
`))
	expectSuccess(t, r)
	expectOutput(t, r, "after")
}

func TestWhileLoop(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "blockflow.interp")
	defer teardown()
	//
	r := New().Execute(program(t, `
- { instanceId: s, type: start, nextBlockId: v }
- { instanceId: v, type: variable, data: { variableName: n }, nextBlockId: a }
- { instanceId: a, type: assignment, data: { variableName: n, value: "3" }, nextBlockId: w }
- instanceId: w
  type: while
  data: { condition: "n > 0" }
  trueBlockId: o
  falseBlockId: done
- { instanceId: o, type: output, data: { expression: "n" }, nextBlockId: dec }
- instanceId: dec
  type: assignment
  data: { variableName: n }
  inputConnections: { valueInputId: minus }
- { instanceId: minus, type: arithmetic, data: { expression: "n - 1" } }
- { instanceId: done, type: output, data: { expression: "done" } }
`))
	expectSuccess(t, r)
	expectOutput(t, r, "3", "2", "1", "done")
	if n, _ := r.Variable("n"); n != 0 {
		t.Errorf("expected n = 0, is %g", n)
	}
}

func TestEndlessWhileLoop(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "blockflow.interp")
	defer teardown()
	//
	records := program(t, `
- { instanceId: s, type: start, nextBlockId: v }
- { instanceId: v, type: variable, data: { variableName: x }, nextBlockId: w }
- instanceId: w
  type: while
  data: { condition: "x < 1" }
  trueBlockId: a
  falseBlockId: never
- { instanceId: a, type: assignment, data: { variableName: x, value: "0" } }
- { instanceId: never, type: output, data: { expression: "unreachable" } }
`)
	for _, ip := range []*Interpreter{New(), New(WithMaxIterations(20))} {
		r := ip.Execute(records)
		if len(r.Errors) != 1 || r.Errors[0].Kind != blockflow.IterationLimitError {
			t.Errorf("expected a single iteration limit error, got %v", r.Errors)
		}
		expectOutput(t, r)
	}
}

func TestEndlessForLoop(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "blockflow.interp")
	defer teardown()
	//
	r := New(WithMaxIterations(20)).Execute(program(t, `
- { instanceId: s, type: start, nextBlockId: v }
- { instanceId: v, type: variable, data: { variableName: x }, nextBlockId: f }
- instanceId: f
  type: for
  data: { initialization: "i = 0", condition: "i < 1", iteration: "i = 0" }
  trueBlockId: a
  falseBlockId: never
- { instanceId: a, type: assignment, data: { variableName: x }, inputConnections: { valueInputId: p } }
- { instanceId: p, type: arithmetic, data: { expression: "x + 1" } }
- { instanceId: never, type: output, data: { expression: "unreachable" } }
`))
	if len(r.Errors) != 1 || r.Errors[0].Kind != blockflow.IterationLimitError {
		t.Fatalf("expected a single iteration limit error, got %v", r.Errors)
	}
	expectOutput(t, r)
	if _, ok := r.Variable("i"); ok {
		t.Errorf("expected loop scope to be discarded")
	}
	if x, _ := r.Variable("x"); x != 20 {
		t.Errorf("expected loop body to run 20 times, x = %g", x)
	}
}

func TestIfBranches(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "blockflow.interp")
	defer teardown()
	//
	src := `
- { instanceId: s, type: start, nextBlockId: v }
- { instanceId: v, type: variable, data: { variableName: x }, nextBlockId: a }
- { instanceId: a, type: assignment, data: { variableName: x, value: "VALUE" }, nextBlockId: i }
- instanceId: i
  type: if
  data: { condition: "x >= 5" }
  trueBlockId: yes
  falseBlockId: no
  nextBlockId: never
- { instanceId: yes, type: output, data: { expression: "big" } }
- { instanceId: no, type: output, data: { expression: "small" } }
- { instanceId: never, type: output, data: { expression: "fall-through" } }
`
	r := New().Execute(program(t, strings.Replace(src, "VALUE", "7", 1)))
	expectSuccess(t, r)
	expectOutput(t, r, "big")
	r = New().Execute(program(t, strings.Replace(src, "VALUE", "-1", 1)))
	expectSuccess(t, r)
	expectOutput(t, r, "small")
}

func TestConditionOperands(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "blockflow.interp")
	defer teardown()
	//
	r := New().Execute(program(t, `
- { instanceId: s, type: start, nextBlockId: i }
- instanceId: i
  type: if
  data: { condition: "_ < 5", operator: ">" }
  inputConnections: { leftInputId: six }
  trueBlockId: yes
- { instanceId: six, type: arithmetic, data: { expression: "2 * 3" } }
- { instanceId: yes, type: output, data: { expression: "6 > 5" } }
`))
	expectSuccess(t, r)
	expectOutput(t, r, "6 > 5")
	r = New().Execute(program(t, `
- { instanceId: s, type: start, nextBlockId: i }
- { instanceId: i, type: if, data: { condition: "1 ~ 2" } }
`))
	f := expectError(t, r, "i", blockflow.ExpressionError)
	if f.Reason != blockflow.UnknownOperator {
		t.Errorf("expected unknown operator, got %v", f)
	}
}

func TestArrays(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "blockflow.interp")
	defer teardown()
	//
	r := New().Execute(program(t, `
- { instanceId: s, type: start, nextBlockId: d }
- { instanceId: d, type: arrayDeclaration, data: { arrayName: arr, arraySize: "5" }, nextBlockId: ok }
- instanceId: ok
  type: arrayAssignment
  data: { arrayName: arr, arrayIndex: "4", value: "7" }
  nextBlockId: o
- instanceId: o
  type: output
  inputConnections: { valueInputId: el }
  nextBlockId: bad
- { instanceId: el, type: arrayElement, data: { arrayName: arr, arrayIndex: "4" } }
- { instanceId: bad, type: arrayAssignment, data: { arrayName: arr, arrayIndex: "5", value: "1" } }
`))
	expectOutput(t, r, "7")
	f := expectError(t, r, "bad", blockflow.BoundsError)
	if !strings.Contains(f.Message, "5") || !strings.Contains(f.Message, "size 5") {
		t.Errorf("expected message to name index and size, is %q", f.Message)
	}
	if len(r.Arrays) != 1 || r.Arrays[0].Name != "arr" || r.Arrays[0].Elements[4] != 7 {
		t.Errorf("unexpected arrays %v", r.Arrays)
	}
	if names := r.ArrayNames(); len(names) != 1 || names[0] != "arr" {
		t.Errorf("unexpected array names %v", names)
	}
}

func TestArrayErrors(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "blockflow.interp")
	defer teardown()
	//
	for _, test := range []struct {
		block string
		kind  blockflow.ErrorKind
	}{
		{`{ instanceId: x, type: arrayDeclaration, data: { arrayName: a, arraySize: "0" } }`, blockflow.DeclarationError},
		{`{ instanceId: x, type: arrayDeclaration, data: { arrayName: a, arraySize: "many" } }`, blockflow.DeclarationError},
		{`{ instanceId: x, type: arrayDeclaration, data: { arraySize: "3" } }`, blockflow.DeclarationError},
		{`{ instanceId: x, type: arrayAssignment, data: { arrayName: b, arrayIndex: "0", value: "1" } }`, blockflow.ReferenceError},
		{`{ instanceId: x, type: arrayAssignment, data: { arrayName: a, arrayIndex: "-1", value: "1" } }`, blockflow.BoundsError},
		{`{ instanceId: x, type: arrayDeclaration, data: { arrayName: a, arraySize: "2" } }`, blockflow.DeclarationError},
	} {
		src := `
- { instanceId: s, type: start, nextBlockId: d }
- { instanceId: d, type: arrayDeclaration, data: { arrayName: a, arraySize: "3" }, nextBlockId: x }
- ` + test.block
		r := New().Execute(program(t, src))
		expectError(t, r, "x", test.kind)
	}
}

func TestVariables(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "blockflow.interp")
	defer teardown()
	//
	r := New().Execute(program(t, `
- { instanceId: s, type: start, nextBlockId: v }
- { instanceId: v, type: variable, data: { variableName: "b, a" }, nextBlockId: v2 }
- { instanceId: v2, type: variable, data: { variableName: "c, a" } }
`))
	expectError(t, r, "v2", blockflow.DeclarationError)
	names := make([]string, 0)
	for _, v := range r.Variables {
		names = append(names, v.Name)
	}
	if !reflect.DeepEqual(names, []string{"b", "a", "c"}) {
		t.Errorf("expected variables in declaration order, got %v", names)
	}
	r = New().Execute(program(t, `
- { instanceId: s, type: start, nextBlockId: a }
- { instanceId: a, type: assignment, data: { variableName: ghost, value: "1" } }
`))
	expectError(t, r, "a", blockflow.ReferenceError)
}

func TestAssignmentFromArithmetic(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "blockflow.interp")
	defer teardown()
	//
	ws, err := graph.NewWorkspace(program(t, `
- { instanceId: s, type: start, nextBlockId: v }
- { instanceId: v, type: variable, data: { variableName: "x, y" }, nextBlockId: init }
- { instanceId: init, type: assignment, data: { variableName: y, value: "5" }, nextBlockId: a }
- { instanceId: a, type: assignment, data: { variableName: x, value: "999" }, nextBlockId: o }
- { instanceId: calc, type: arithmetic, data: { expression: "y * 2 + 1" } }
- { instanceId: o, type: output, data: { expression: "x" } }
`)...)
	if err != nil {
		t.Fatal(err)
	}
	if err := ws.ConnectInput("calc", "a", graph.ValueSlot); err != nil {
		t.Fatal(err)
	}
	ip := New()
	r1 := ip.Execute(ws.Records())
	expectSuccess(t, r1)
	expectOutput(t, r1, "11")
	if err := ws.Update("init", graph.Data{VariableName: "y", Value: "10"}); err != nil {
		t.Fatal(err)
	}
	r2 := ip.Execute(ws.Records())
	expectSuccess(t, r2)
	expectOutput(t, r2, "21")
	if r1.Fingerprint == r2.Fingerprint {
		t.Errorf("expected fingerprint to change with the program")
	}
}

func TestErrorSource(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "blockflow.interp")
	defer teardown()
	//
	r := New().Execute(program(t, `
- { instanceId: s, type: start, nextBlockId: o }
- { instanceId: o, type: output, inputConnections: { valueInputId: div }, nextBlockId: o2 }
- { instanceId: div, type: arithmetic, data: { expression: "1 / 0" } }
- { instanceId: o2, type: output, data: { expression: "skipped" } }
`))
	f := expectError(t, r, "o", blockflow.ExpressionError)
	if f.Source != "div" || f.Reason != blockflow.DivisionByZero {
		t.Errorf("expected division by zero originating in div, got %+v", f)
	}
	if len(r.ErrorsAt("div")) != 1 {
		t.Errorf("expected error to be found for the data block")
	}
	expectOutput(t, r)
}

func TestDataInputCycle(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "blockflow.interp")
	defer teardown()
	//
	r := New().Execute(program(t, `
- { instanceId: s, type: start, nextBlockId: o }
- { instanceId: o, type: output, inputConnections: { valueInputId: e1 } }
- { instanceId: e1, type: arrayElement, data: { arrayName: a }, inputConnections: { indexInputId: e2 } }
- { instanceId: e2, type: arrayElement, data: { arrayName: a }, inputConnections: { indexInputId: e1 } }
`))
	expectError(t, r, "o", blockflow.LinkageError)
}

func TestOutputVerbatim(t *testing.T) {
	r := New().Execute(program(t, `
- { instanceId: s, type: start, nextBlockId: o1 }
- { instanceId: o1, type: output, data: { expression: "Hello World!" }, nextBlockId: o2 }
- { instanceId: o2, type: output, data: { expression: "7 / 2" }, nextBlockId: o3 }
- { instanceId: o3, type: output }
`))
	expectOutput(t, r, "Hello World!", "3.5")
	expectError(t, r, "o3", blockflow.ExpressionError)
}

func TestEndInLoopBody(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "blockflow.interp")
	defer teardown()
	//
	r := New().Execute(program(t, `
- { instanceId: s, type: start, nextBlockId: f }
- instanceId: f
  type: for
  data: { initialization: "i = 0", condition: "i < 5", iteration: "i = i + 1" }
  trueBlockId: o
  falseBlockId: after
- { instanceId: o, type: output, data: { expression: "i" }, nextBlockId: e }
- { instanceId: e, type: end, nextBlockId: o2 }
- { instanceId: o2, type: output, data: { expression: "not reached" } }
- { instanceId: after, type: output, data: { expression: "after" } }
`))
	expectSuccess(t, r)
	expectOutput(t, r, "0", "1", "2", "3", "4", "after")
	if _, ok := r.Variable("i"); ok {
		t.Errorf("expected loop variable to be out of scope after the loop")
	}
}

func TestEndStopsProgram(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "blockflow.interp")
	defer teardown()
	//
	r := New().Execute(program(t, `
- { instanceId: s, type: start, nextBlockId: o1 }
- { instanceId: o1, type: output, data: { expression: "1" }, nextBlockId: e }
- { instanceId: e, type: end, nextBlockId: o2 }
- { instanceId: o2, type: output, data: { expression: "not reached" } }
`))
	expectSuccess(t, r)
	expectOutput(t, r, "1")
}

func TestNoStartBlock(t *testing.T) {
	r := New().Execute(program(t, `
- { instanceId: o, type: output, data: { expression: "1" } }
- { instanceId: fs, type: functionStart }
`))
	if r.Success || len(r.Errors) != 1 {
		t.Fatalf("expected exactly one error, got %v", r.Errors)
	}
	if f := r.Errors[0]; f.Kind != blockflow.GraphError || f.NodeID != "" {
		t.Errorf("expected graph error without block, got %+v", f)
	}
	expectOutput(t, r)
}

func TestDuplicateStartBlock(t *testing.T) {
	r := New().Execute(program(t, `
- { instanceId: s1, type: start }
- { instanceId: s2, type: start }
`))
	if r.Success || len(r.Errors) != 1 || r.Errors[0].Kind != blockflow.GraphError {
		t.Errorf("expected graph error, got %v", r.Errors)
	}
}

func TestUnknownBlockType(t *testing.T) {
	r := New().Execute(program(t, `
- { instanceId: s, type: start, nextBlockId: r }
- { instanceId: r, type: repeat }
`))
	expectError(t, r, "r", blockflow.GraphError)
}

func TestLimitsFromConfig(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "blockflow.interp")
	defer teardown()
	//
	gconf.Initialize(testconfig.Conf{
		"tracing.adapter": "test",
		ConfigMaxIterations: "30",
		ConfigMaxCallDepth:  "3",
	})
	defer gconf.Initialize(testconfig.Conf{"tracing.adapter": "test"})
	l := LimitsFromConfig()
	if l.MaxIterations != 30 || l.MaxCallDepth != 3 {
		t.Errorf("expected limits from configuration, have %+v", l)
	}
	gconf.Initialize(testconfig.Conf{"tracing.adapter": "test", ConfigMaxCallDepth: "4"})
	ip := New(WithLimits(LimitsFromConfig()))
	if ip.Limits().MaxIterations != DefaultMaxIterations || ip.Limits().MaxCallDepth != 4 {
		t.Errorf("expected unset key to keep its default, have %+v", ip.Limits())
	}
}

func TestLimitsFromConfigDefaults(t *testing.T) {
	l := Limits{MaxIterations: 0, MaxCallDepth: 7}
	ip := New(WithLimits(l))
	if ip.Limits().MaxIterations != DefaultMaxIterations || ip.Limits().MaxCallDepth != 7 {
		t.Errorf("unexpected limits %+v", ip.Limits())
	}
}
