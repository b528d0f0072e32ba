// Command metaiivm loads a compiled META II bytecode image and runs it
// against the program's standard input, writing translated output to
// standard output.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"

	"gvm/vm"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("metaiivm", flag.ContinueOnError)
	fs.SetOutput(stderr)

	trace := fs.Bool("trace", false, "log one debug record per dispatched instruction to stderr")
	maxDepth := fs.Int("max-depth", 0, "call stack depth ceiling (0 keeps the built-in default)")
	disasm := fs.Bool("disasm", false, "print a disassembly of the image instead of running it")

	fs.Usage = func() {
		fmt.Fprintf(stderr, "usage: %s [flags] <image-file>\n", fs.Name())
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() != 1 {
		fs.Usage()
		return 2
	}

	data, err := os.ReadFile(fs.Arg(0))
	if err != nil {
		fmt.Fprintln(stderr, "metaiivm:", err)
		return 2
	}

	img, err := vm.LoadImage(data)
	if err != nil {
		fmt.Fprintln(stderr, "metaiivm:", err)
		return 2
	}

	if *disasm {
		if err := img.Disassemble(stdout); err != nil {
			fmt.Fprintln(stderr, "metaiivm:", err)
			return 2
		}
		return 0
	}

	input, err := io.ReadAll(stdin)
	if err != nil {
		fmt.Fprintln(stderr, "metaiivm:", err)
		return 2
	}

	var opts []vm.Option
	if *maxDepth > 0 {
		opts = append(opts, vm.WithMaxDepth(*maxDepth))
	}
	if *trace {
		logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
		opts = append(opts, vm.WithTrace(logger))
	}

	m := vm.NewMachine(img, input, stdout, opts...)
	result := m.Run()
	if result.Err != nil && !errors.Is(result.Err, vm.ErrSyntaxFailure) {
		fmt.Fprintln(stderr, "metaiivm:", result.Err)
	}
	return result.ExitCode
}
