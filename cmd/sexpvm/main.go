// Command sexpvm translates and runs programs written in a small
// S-expression language on a single-accumulator virtual machine.
package main

import (
	"context"
	"os"

	"sexpvm/internal/cli"
	"sexpvm/internal/cli/cmd"
)

func main() {
	commands := []cli.Command{
		cmd.Translator(),
		cmd.Executor(),
	}

	runner := cli.New(context.Background()).
		WithLogger(os.Stderr).
		WithHelp(cmd.Help(commands)).
		WithCommands(commands)

	os.Exit(runner.Execute(os.Args[1:]))
}
