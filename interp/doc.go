/*
Package interp runs block graphs.

An Interpreter walks the control links of a graph, starting at its start
block. Data blocks (arithmetic, arrayElement) are not executed in this sense,
but evaluated on demand by the blocks reading them through data inputs.
Variables and arrays live in a stack of scopes: function calls and counting
loops open a new scope, which is discarded on return or on loop exit.

Failures do not abort a run. Every failure is recorded, tagged with the block
it occurred at, and the current path of execution is abandoned up to the
nearest function call, whose caller then resumes. Only a graph without a start
block is rejected immediately.

	ip := interp.New(interp.WithMaxIterations(500))
	result := ip.Execute(records)
	for _, msg := range result.Output {
		fmt.Println(msg.Text)
	}

Runaway programs are stopped by two ceilings: an iteration count, increased
on every loop-body traversal and counted afresh within each function body,
and a limit on the depth of nested function calls. Each Execute starts from a fresh state; an Interpreter
may be re-used, but not concurrently.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2022 Norbert Pillmayer <norbert@pillmayer.com>

*/
package interp

import (
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'blockflow.interp'.
func tracer() tracing.Trace {
	return tracing.Select("blockflow.interp")
}
