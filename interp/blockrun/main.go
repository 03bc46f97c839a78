package main

import (
	"flag"
	"os"

	"github.com/chzyer/readline"
	"github.com/npillmayer/blockflow/graph"
	"github.com/npillmayer/blockflow/interp"
	"github.com/pterm/pterm"

	"github.com/npillmayer/schuko/gtrace"
	"github.com/npillmayer/schuko/tracing"
	"github.com/npillmayer/schuko/tracing/gologadapter"
)

// main either runs a program file or starts an interactive session.
func main() {
	// set up logging
	initDisplay()
	gtrace.SyntaxTracer = gologadapter.New()
	tlevel := flag.String("trace", "Error", "Trace level [Debug|Info|Error]")
	check := flag.Bool("check", false, "Validate program without running it")
	tree := flag.Bool("tree", false, "Display control flow of program")
	maxIter := flag.Int("max-iterations", 0, "Iteration ceiling (default 1000)")
	maxDepth := flag.Int("max-depth", 0, "Maximum depth of function calls (default 50)")
	flag.Parse()
	tracer().SetTraceLevel(tracing.TraceLevelFromString(*tlevel))
	tracer().Infof("Trace level is %s", *tlevel)
	//
	// configured limits may be overridden by flags
	limits := interp.LimitsFromConfig()
	if *maxIter > 0 {
		limits.MaxIterations = *maxIter
	}
	if *maxDepth > 0 {
		limits.MaxCallDepth = *maxDepth
	}
	intp := &Intp{
		ip: interp.New(interp.WithLimits(limits)),
	}
	intp.ws, _ = graph.NewWorkspace()
	//
	if flag.NArg() > 0 {
		if err := intp.load(flag.Arg(0)); err != nil {
			pterm.Error.Println(err.Error())
			os.Exit(2)
		}
		if *tree {
			intp.showTree()
		}
		if *check {
			if !intp.check() {
				os.Exit(1)
			}
			return
		}
		if !intp.run() {
			os.Exit(1)
		}
		return
	}
	//
	// set up REPL
	repl, err := readline.New("blocks> ")
	if err != nil {
		tracer().Errorf(err.Error())
		os.Exit(3)
	}
	intp.repl = repl
	pterm.Info.Println("Welcome to blockrun. Enter 'help' for a list of commands, quit with <ctrl>D")
	intp.REPL()
}

// We use pterm for moderately fancy output.
func initDisplay() {
	pterm.Info.Prefix = pterm.Prefix{
		Text:  "  >>",
		Style: pterm.NewStyle(pterm.BgCyan, pterm.FgBlack),
	}
	pterm.Error.Prefix = pterm.Prefix{
		Text:  "  Error",
		Style: pterm.NewStyle(pterm.BgRed, pterm.FgBlack),
	}
}
