package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/flipcoder/iox/internal/iox"
	"github.com/flipcoder/iox/internal/ioxutil"
)

// Program and Version match the original tool's --version banner.
const (
	Program = "iox"
	Version = "0.1.0"
)

const usage = `iox

    iox language interpreter

    Usage:
      iox <script>...

    Options:
      -h --help     Show this screen.
      --version     Show version.
`

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr, os.Stdin))
}

func run(args []string, stdout, stderr io.Writer, stdin io.Reader) int {
	fs := flag.NewFlagSet(Program, flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() { fmt.Fprint(stderr, usage) }
	var showVersion bool
	fs.BoolVar(&showVersion, "version", false, "show version")
	fs.BoolVar(&showVersion, "v", false, "show version")
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}

	if showVersion {
		fmt.Fprintf(stdout, "%s version %s\n", Program, Version)
		return 0
	}

	scripts := fs.Args()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if len(scripts) == 0 {
		return runInteractive(ctx, stdout, stderr, stdin)
	}
	return runScripts(scripts, stdout, stderr, stdin)
}

// runInteractive drives a single REPL session (no seekable source, so
// mark/jmp are unavailable — spec.md §6).
func runInteractive(ctx context.Context, stdout, stderr io.Writer, stdin io.Reader) int {
	ip := iox.NewInterp(stdout, stderr, stdin)
	ip.Interactive = true

	src := iox.NewPromptSource(stdin, stdout, "iox> ")

	done := make(chan error, 1)
	go func() { done <- ip.Run(src) }()

	select {
	case <-ctx.Done():
		return 0
	case err := <-done:
		if err != nil {
			fmt.Fprintln(stderr, err)
			return 1
		}
		return 0
	}
}

// runScripts runs each script path in its own fresh Interp, in order,
// matching the original loop over command-line arguments. Diagnostics
// for each script are prefixed with its path once more than one script
// is given, so interleaved output stays attributable. An unknown or
// unreadable path returns exit 1 silently (spec.md §6: "without
// output"), distinct from an uncaught runtime error, which is reported
// to stderr.
func runScripts(paths []string, stdout, stderr io.Writer, stdin io.Reader) int {
	for _, path := range paths {
		f, err := os.Open(path)
		if err != nil {
			return 1
		}

		errOut := io.Writer(stderr)
		if len(paths) > 1 {
			pw := ioxutil.PrefixWriter(path+": ", stderr)
			defer pw.Close()
			errOut = pw
		}

		ip := iox.NewInterp(stdout, errOut, stdin)
		ip.Interactive = false

		runErr := ip.Run(iox.NewFileSource(f))
		f.Close()

		if runErr != nil {
			fmt.Fprintln(errOut, runErr)
			return 1
		}
	}
	return 0
}
