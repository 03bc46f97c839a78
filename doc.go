/*
Package blockflow is an interpreter for block-based visual programs.

Users of a visual programming environment place blocks (variables,
assignments, arithmetic expressions, conditionals, loops, functions,
arrays and output) on a workspace and connect them. BlockFlow walks the
resulting graph and returns final variable and array state together with
output and error messages, each keyed by the block which produced it.
Package structure is as follows:

■ graph: Package graph holds placed blocks in an arena addressed by handles,
together with an editor for workspaces and decoding of block graphs from YAML or JSON.

■ expr: Package expr tokenizes, converts and evaluates arithmetic expressions
and comparisons.

■ runtime: Package runtime provides a stack of memory frames holding variables
and arrays.

■ interp: Package interp walks a block graph and collects output and errors.

The base package contains the kinds of blocks and the kinds of errors, which are
used throughout all the other packages.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2022 Norbert Pillmayer <norbert@pillmayer.com>

*/
package blockflow
