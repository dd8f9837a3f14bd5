// Command cscript transpiles CScript sources to JavaScript.
package main

import (
	"errors"
	"log/slog"
	"os"
	"slices"

	"github.com/roach88/cscript/internal/cli"
)

func main() {
	level := slog.LevelWarn
	if slices.Contains(os.Args[1:], "-v") || slices.Contains(os.Args[1:], "--verbose") {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	err := cli.NewRootCommand().Execute()
	if err != nil {
		var exitErr *cli.ExitError
		if !errors.As(err, &exitErr) {
			// Cobra usage errors are not printed by the commands themselves.
			os.Stderr.WriteString("Error: " + err.Error() + "\n")
		}
	}
	os.Exit(cli.GetExitCode(err))
}
