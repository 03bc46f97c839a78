/*
Package graph holds the block graph of a visual program.

Hosts exchange placed blocks as records, linked by instance IDs. Records may
be edited in a Workspace, which keeps links consistent, checked with Validate,
and loaded from YAML or JSON files.

For execution records are built into an immutable Graph: an arena of nodes,
addressed by handles, with kind-specific fields per node.

	records, err := graph.LoadFile("program.yaml")
	g, err := graph.Build(records)
	start := g.Node(g.Start())

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2022 Norbert Pillmayer <norbert@pillmayer.com>

*/
package graph

import (
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'blockflow.graph'.
func tracer() tracing.Trace {
	return tracing.Select("blockflow.graph")
}
