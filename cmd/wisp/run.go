package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"

	"wisp/compiler"
	"wisp/vm"
)

// exit codes follow the sysexits.h convention the reference tooling uses:
// 65 for a malformed input (compile error), 70 for an internal/runtime
// failure.
const (
	exitDataError     = 65
	exitSoftwareError = 70
)

type runCmd struct{}

func (*runCmd) Name() string     { return "run" }
func (*runCmd) Synopsis() string { return "execute a script file" }
func (*runCmd) Usage() string {
	return `run <path>:
  Compile and execute a script file.
`
}
func (*runCmd) SetFlags(*flag.FlagSet) {}

func (*runCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	args := f.Args()
	if len(args) != 1 {
		fmt.Fprintln(os.Stderr, "usage: wisp run <path>")
		return subcommands.ExitUsageError
	}

	source, err := os.ReadFile(args[0])
	if err != nil {
		fmt.Fprintf(os.Stderr, "wisp: %s\n", err)
		return subcommands.ExitFailure
	}

	machine := vm.New(os.Stdout, os.Stderr)
	if err := machine.Interpret(string(source)); err != nil {
		if errors.Is(err, compiler.ErrCompileFailed) {
			return exitDataError
		}
		fmt.Fprintln(os.Stderr, err)
		return exitSoftwareError
	}
	return subcommands.ExitSuccess
}
