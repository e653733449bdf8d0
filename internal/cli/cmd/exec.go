package cmd

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"sexpvm/internal/cli"
	"sexpvm/internal/container"
	"sexpvm/internal/log"
	"sexpvm/internal/tty"
	"sexpvm/internal/vm"
)

// Executor is the command that runs a translated image on the simulator.
//
//	sexpvm exec program.out [input.txt]
func Executor() cli.Command {
	return &executor{timeout: 10 * time.Second}
}

type executor struct {
	logLevel    slog.Level
	timeout     time.Duration
	interactive bool
}

func (executor) Description() string {
	return "run a translated image"
}

func (executor) Usage(out io.Writer) error {
	_, err := fmt.Fprintln(out, `exec program.out [input.txt]

Runs a translated image on the simulator. If given, input.txt is fed to
read_char one character at a time.`)

	return err
}

func (ex *executor) FlagSet() *cli.FlagSet {
	fs := flag.NewFlagSet("exec", flag.ExitOnError)
	fs.Func("loglevel", "set log `level`", func(s string) error {
		return ex.logLevel.UnmarshalText([]byte(s))
	})
	fs.DurationVar(&ex.timeout, "timeout", ex.timeout, "execution timeout")
	fs.BoolVar(&ex.interactive, "interactive", false, "read read_char input from the terminal instead of input.txt")

	return fs
}

// Run loads and executes the named image.
func (ex *executor) Run(ctx context.Context, args []string, stdout io.Writer, logger *log.Logger) int {
	log.LogLevel.Set(ex.logLevel)

	if len(args) < 1 {
		logger.Error("exec: expected an image file")
		return 1
	}

	mem, err := ex.loadImage(args[0])
	if err != nil {
		logger.Error("Error loading image", "err", err)
		return 1
	}

	input, err := ex.loadInput(args)
	if err != nil {
		logger.Error("Error loading input", "err", err)
		return 1
	}

	ctx, cancel := context.WithTimeout(ctx, ex.timeout)
	defer cancel()

	logger.Debug("Initializing machine")

	machine := vm.New(vm.WithLogger(logger))
	if err := machine.Load(mem); err != nil {
		logger.Error("Error loading machine", "err", err)
		return 1
	}

	machine.DataPath.SetInput(input)

	if ex.interactive {
		console, err := tty.NewConsole(os.Stdin, os.Stdout, os.Stderr)
		if err != nil {
			logger.Error("Error starting console", "err", err)
			return 1
		}

		defer console.Restore()

		machine.DataPath.SetInputSource(console)
		machine.DataPath.SetOutputSink(console.Writer())
	}

	logger.Info("Starting machine", "file", args[0])

	err = machine.Run(ctx)

	if !ex.interactive {
		fmt.Fprint(stdout, machine.DataPath.Output())
	}

	switch {
	case errors.Is(err, context.DeadlineExceeded):
		logger.Error("Execution timed out")
		return 2
	case errors.Is(err, vm.ErrLimitExceeded):
		fmt.Fprintf(stdout, "instr_counter: %d, ticks: %d (limit exceeded)\n",
			machine.InstructionCount(), machine.Ticks)
		return 0
	case errors.Is(err, vm.ErrInputExhausted):
		logger.Warn("Input exhausted", "instructions", machine.InstructionCount())
		fmt.Fprintf(stdout, "instr_counter: %d, ticks: %d (input exhausted)\n",
			machine.InstructionCount(), machine.Ticks)
		return 0
	case err != nil:
		logger.Error("Program error", "err", err)
		return 2
	default:
		fmt.Fprintf(stdout, "instr_counter: %d, ticks: %d\n", machine.InstructionCount(), machine.Ticks)
		return 0
	}
}

func (ex executor) loadImage(fn string) ([]vm.Word, error) {
	file, err := os.Open(fn)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	return container.ReadFrom(file)
}

func (ex executor) loadInput(args []string) ([]rune, error) {
	if len(args) < 2 {
		return nil, nil
	}

	data, err := os.ReadFile(args[1])
	if err != nil {
		return nil, err
	}

	return append([]rune(string(data)), 0), nil
}
