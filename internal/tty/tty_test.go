// Package tty_test tries to test ttys.
//
// The test is skipped when stdin is not a terminal (ErrNoTTY). Notably, this includes when run with
// "go test" because it redirects tests' standard input/output streams. You can test it by building
// a test binary and running it directly:
//
//	$ go test -c && ./tty.test
package tty_test

import (
	"errors"
	"os"
	"testing"

	"sexpvm/internal/tty"
)

func TestConsole(t *testing.T) {
	console, err := tty.NewConsole(os.Stdin, os.Stdout, os.Stderr)
	if errors.Is(err, tty.ErrNoTTY) {
		t.Skipf("error: %s", err)
	}

	if err != nil {
		t.Fatalf("NewConsole: %v", err)
	}

	defer console.Restore()

	if console.Writer() == nil {
		t.Error("Writer() = nil")
	}
}
