package interp

import (
	"github.com/npillmayer/blockflow"
	"github.com/npillmayer/blockflow/graph"
)

// Interpreter executes block graphs. The zero value is not usable, create
// interpreters with New.
type Interpreter struct {
	limits Limits
}

// New creates an interpreter with default ceilings, modified by options.
func New(opts ...Option) *Interpreter {
	ip := &Interpreter{
		limits: Limits{
			MaxIterations: DefaultMaxIterations,
			MaxCallDepth:  DefaultMaxCallDepth,
		},
	}
	for _, opt := range opts {
		opt(ip)
	}
	return ip
}

// Limits returns the ceilings in effect.
func (ip *Interpreter) Limits() Limits {
	return ip.limits
}

// Execute runs a program given as a set of host records. It never fails as a
// whole: all problems are reported in the result. If the records cannot be
// assembled into a graph, in particular if there is no start block, the
// result holds a single GraphError and nothing is executed.
func (ip *Interpreter) Execute(records []graph.Record) *Result {
	fp, err := graph.Fingerprint(records)
	if err != nil {
		tracer().Errorf("cannot fingerprint program: %v", err)
	}
	g, err := graph.Build(records)
	if err != nil {
		r := failed(blockflow.As(err))
		r.Fingerprint = fp
		return r
	}
	r := ip.Run(g)
	r.Fingerprint = fp
	return r
}

// Run executes a graph. See Execute.
func (ip *Interpreter) Run(g *graph.Graph) *Result {
	if !g.Start().Valid() {
		return failed(blockflow.Errorf(blockflow.GraphError, "no start block found"))
	}
	log := &collector{}
	funcs := discoverFunctions(g, log)
	w := newWalker(g, funcs, ip.limits, log)
	tracer().Infof("running program with %d blocks", g.Len())
	w.run(g.Start())
	r := &Result{
		Variables: w.rt.Variables(),
		Arrays:    w.rt.Arrays(),
		Errors:    log.errors,
		Output:    log.output,
		Functions: funcs.names(),
	}
	r.Success = len(r.Errors) == 0
	tracer().Infof("program finished with %d error(s)", len(r.Errors))
	return r
}

// failed creates the result of a program which could not be started.
func failed(e *blockflow.Error) *Result {
	log := &collector{}
	log.fail(e)
	return &Result{Success: false, Errors: log.errors}
}
