/*
Package blockrun/main provides a command line tool for block programs.

Called with a file argument, blockrun loads a program in YAML or JSON format,
runs it and prints output, errors and the final variables:

	blockrun [-trace Debug] [-max-iterations 500] program.yaml

With flag -check the program is validated only, with flag -tree its control
flow is displayed as a tree.

Without a file argument blockrun starts an interactive session, where
programs may be assembled block by block, inspected and run. Enter 'help'
for a list of commands.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2022 Norbert Pillmayer <norbert@pillmayer.com>

*/
package main

import (
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'blockflow.blockrun'
func tracer() tracing.Trace {
	return tracing.Select("blockflow.blockrun")
}
