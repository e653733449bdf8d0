package cmd

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"

	"sexpvm/internal/cli"
	"sexpvm/internal/container"
	"sexpvm/internal/lexer"
	"sexpvm/internal/log"
	"sexpvm/internal/translate"
)

// Translator is the command that lexes and translates source into a
// memory image object file.
//
//	sexpvm translate -o a.out FILE.sexp
func Translator() cli.Command {
	return new(translator)
}

type translator struct {
	debug   bool
	output  string
	listing string
}

func (translator) Description() string {
	return "translate source into a machine code image"
}

func (translator) Usage(out io.Writer) error {
	_, err := fmt.Fprintln(out, `translate [-o file.out] [-listing file.lst] file.sexp

Translate source into a machine code image.`)

	return err
}

func (t *translator) FlagSet() *cli.FlagSet {
	fs := flag.NewFlagSet("translate", flag.ExitOnError)
	fs.BoolVar(&t.debug, "debug", false, "enable debug logging")
	fs.StringVar(&t.output, "o", "a.out", "output `filename`")
	fs.StringVar(&t.listing, "listing", "", "write a debug listing to `filename`")

	return fs
}

// Run translates the named source file and writes the resulting image.
func (t *translator) Run(ctx context.Context, args []string, stdout io.Writer, logger *log.Logger) int {
	if t.debug {
		log.LogLevel.Set(log.Debug)
	}

	if len(args) != 1 {
		logger.Error("translate: expected exactly one source file")
		return 1
	}

	src, err := os.ReadFile(args[0])
	if err != nil {
		logger.Error("Error reading source", "err", err)
		return 1
	}

	terms, err := lexer.Lex(string(src))
	if err != nil {
		logger.Error("Lex error", "err", err)
		return 1
	}

	logger.Debug("Lexed source", "terms", len(terms))

	img, err := translate.Translate(terms)
	if err != nil {
		logger.Error("Translate error", "err", err)
		return 1
	}

	out, err := os.Create(t.output)
	if err != nil {
		logger.Error("open failed", "out", t.output, "err", err)
		return 1
	}
	defer out.Close()

	wrote, err := container.WriteTo(out, img)
	if err != nil {
		logger.Error("I/O error", "out", t.output, "err", err)
		return 1
	}

	if t.listing != "" {
		if err := os.WriteFile(t.listing, []byte(img.Listing()), 0o644); err != nil {
			logger.Error("writing listing failed", "file", t.listing, "err", err)
			return 1
		}
	}

	logger.Debug("Compiled image",
		"out", t.output,
		"size", wrote,
		"data", img.DataLen,
		"code", img.CodeLen,
	)

	fmt.Fprintf(stdout, "source terms: %d machine code instr: %d\n", len(terms), img.CodeLen)

	return 0
}
