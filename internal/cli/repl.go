package cli

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/chzyer/readline"
	"github.com/spf13/cobra"

	"github.com/roach88/cscript/internal/transform"
	"github.com/roach88/cscript/internal/transpile"
)

const replHelp = `Enter CScript; each line is transpiled and printed.
End a line with \ to continue it on the next one.

  :features          list feature toggles
  :enable <name>     switch a feature on
  :disable <name>    switch a feature off
  :stats             toggle printing of lowering counts
  :help              show this text
  :quit              leave`

// NewReplCommand creates the repl command.
func NewReplCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "repl",
		Short:         "Interactively transpile CScript",
		Long:          "Start a read-eval-print loop that transpiles each entry and prints the JavaScript.\n\n" + replHelp,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRepl(rootOpts, cmd)
		},
	}
}

func runRepl(opts *RootOptions, cmd *cobra.Command) error {
	// The REPL talks to a human; JSON output makes no sense here.
	formatter := opts.formatter(cmd)
	formatter.Format = "text"

	proj, err := opts.loadProject()
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrorCode(err), err)
	}

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "cscript> ",
		InterruptPrompt: "^C",
		EOFPrompt:       ":quit",
	})
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeGeneric, err)
	}
	defer rl.Close()

	s := &replSession{features: proj.features(), logger: proj.logger, out: formatter}
	fmt.Fprintln(formatter.Writer, "CScript REPL. Type :help for commands.")
	s.run(rl)
	fmt.Fprintln(formatter.Writer, "Good bye!")
	return nil
}

// lineReader is the part of *readline.Instance the session uses.
type lineReader interface {
	Readline() (string, error)
}

type replSession struct {
	features transform.Features
	logger   *slog.Logger
	out      *OutputFormatter
	stats    bool
	pending  []string // continued lines
}

func (s *replSession) run(r lineReader) {
	for {
		line, err := r.Readline()
		if errors.Is(err, readline.ErrInterrupt) {
			s.pending = nil
			continue
		}
		if err != nil { // io.EOF
			return
		}
		if s.eval(line) {
			return
		}
	}
}

// eval handles one input line and reports whether the session should end.
func (s *replSession) eval(line string) bool {
	if cont, ok := strings.CutSuffix(line, `\`); ok {
		s.pending = append(s.pending, cont)
		return false
	}
	if len(s.pending) > 0 {
		line = strings.Join(append(s.pending, line), "\n")
		s.pending = nil
	}

	line = strings.TrimSpace(line)
	if line == "" {
		return false
	}
	if strings.HasPrefix(line, ":") {
		return s.command(strings.Fields(line))
	}

	out, err := transpile.Transpile(line,
		transpile.WithFeatures(s.features),
		transpile.WithLogger(s.logger),
	)
	if err != nil {
		_ = s.out.Error(ErrorCode(err), err.Error(), nil)
		return false
	}
	fmt.Fprint(s.out.Writer, out.Code)
	if s.stats {
		if stats := out.Result.StatsLine(); stats != "" {
			fmt.Fprintf(s.out.Writer, "// %s\n", stats)
		}
	}
	return false
}

func (s *replSession) command(args []string) bool {
	w := s.out.Writer
	switch args[0] {
	case ":quit", ":q", ":exit":
		return true
	case ":help":
		fmt.Fprintln(w, replHelp)
	case ":features":
		for _, f := range featureStates(s.features) {
			if f.Enabled {
				s.out.Check("%s", f.Name)
			} else {
				s.out.Cross("%s", f.Name)
			}
		}
	case ":enable", ":disable":
		if len(args) != 2 {
			fmt.Fprintf(w, "usage: %s <feature>\n", args[0])
			return false
		}
		features, err := s.features.Override(map[string]bool{args[1]: args[0] == ":enable"})
		if err != nil {
			_ = s.out.Error(ErrCodeGeneric, err.Error(), nil)
			return false
		}
		s.features = features
		s.out.Check("%s %sd", args[1], strings.TrimPrefix(args[0], ":"))
	case ":stats":
		s.stats = !s.stats
		fmt.Fprintf(w, "stats %s\n", onOff(s.stats))
	default:
		fmt.Fprintf(w, "unknown command %s (try :help)\n", args[0])
	}
	return false
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}

var _ lineReader = (*readline.Instance)(nil)

