/*
Package expr evaluates the expressions found in block fields.

Arithmetic expressions are processed in three steps: the input is tokenized
by a lexmachine DFA, variable names are substituted by their values, and the
infix tokens are converted to postfix order by the shunting-yard algorithm.
The postfix sequence is then calculated on a stack.

	x, err := expr.Eval("(a + 3) * 4", expr.Vars{"a": 2})   // x = 20

Comparisons are simpler: a condition consists of a left operand, an operator
and a right operand, each operand being a variable name or a number.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2022 Norbert Pillmayer <norbert@pillmayer.com>

*/
package expr

import (
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'blockflow.expr'.
func tracer() tracing.Trace {
	return tracing.Select("blockflow.expr")
}
