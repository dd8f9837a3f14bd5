package cli

import (
	"errors"
	"fmt"
	"time"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/roach88/cscript/internal/journal"
)

// HistoryOptions holds flags for the history command.
type HistoryOptions struct {
	*RootOptions
	Limit  int
	Input  string
	RunID  string
	Status string
}

// NewHistoryCommand creates the history command.
func NewHistoryCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &HistoryOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "history [build-id]",
		Short: "Show recorded builds from the journal",
		Long: `List the builds recorded in the journal, newest first, or show one
build in detail when its id is given.

Examples:
  cscript history
  cscript history --limit 5 --status error
  cscript history 01927c3e-...`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				return runHistoryShow(opts, args[0], cmd)
			}
			return runHistory(opts, cmd)
		},
	}

	cmd.Flags().IntVarP(&opts.Limit, "limit", "n", 20, "maximum number of builds (0 for all)")
	cmd.Flags().StringVar(&opts.Input, "input", "", "only builds of this input path")
	cmd.Flags().StringVar(&opts.RunID, "run", "", "only builds of this run")
	cmd.Flags().StringVar(&opts.Status, "status", "", "only builds with this status (ok|error)")

	return cmd
}

func (o *HistoryOptions) openJournal(formatter *OutputFormatter) (*journal.Journal, error) {
	proj, err := o.loadProject()
	if err != nil {
		return nil, formatter.Fail(ExitCommandError, ErrorCode(err), err)
	}
	if proj.cfg.Journal.Path == "" {
		return nil, formatter.Fail(ExitCommandError, ErrCodeJournal, errors.New("journal.path is not set"))
	}
	// Reading works even when recording is switched off.
	proj.cfg.Journal.Enabled = true
	j, err := proj.openJournal()
	if err != nil {
		return nil, formatter.Fail(ExitCommandError, ErrCodeJournal, err)
	}
	return j, nil
}

func runHistory(opts *HistoryOptions, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	status := journal.Status(opts.Status)
	if status != "" && status != journal.StatusOK && status != journal.StatusError {
		return formatter.Fail(ExitCommandError, ErrCodeGeneric, fmt.Errorf("invalid status %q: must be ok or error", opts.Status))
	}

	j, err := opts.openJournal(formatter)
	if err != nil {
		return err
	}
	defer j.Close()

	entries, err := j.List(cmd.Context(), journal.Filter{
		Limit:     opts.Limit,
		InputPath: opts.Input,
		RunID:     opts.RunID,
		Status:    status,
	})
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeJournal, err)
	}
	if entries == nil {
		entries = []journal.Entry{}
	}

	if formatter.Format == "json" {
		return formatter.Success(entries)
	}
	if len(entries) == 0 {
		fmt.Fprintln(formatter.Writer, "No builds recorded.")
		return nil
	}

	data := pterm.TableData{{"ID", "STARTED", "STATUS", "INPUT", "LOWERED"}}
	for _, e := range entries {
		lowered := statsLine(&FileResult{Stats: e.Stats})
		if e.Status == journal.StatusError {
			lowered = e.ErrorCode
		}
		data = append(data, []string{
			e.ID,
			e.StartedAt.Local().Format(time.DateTime),
			string(e.Status),
			e.InputPath,
			lowered,
		})
	}
	return renderTable(formatter, data)
}

func runHistoryShow(opts *HistoryOptions, id string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	j, err := opts.openJournal(formatter)
	if err != nil {
		return err
	}
	defer j.Close()

	e, err := j.Get(cmd.Context(), id)
	if errors.Is(err, journal.ErrNotFound) {
		return formatter.Fail(ExitFailure, ErrCodeJournal, err)
	}
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeJournal, err)
	}

	if formatter.Format == "json" {
		return formatter.Success(e)
	}

	w := formatter.Writer
	fmt.Fprintf(w, "Build %s\n", e.ID)
	fmt.Fprintf(w, "  Run:       %s\n", e.RunID)
	fmt.Fprintf(w, "  Started:   %s (%s)\n", e.StartedAt.Local().Format(time.DateTime), e.Duration)
	fmt.Fprintf(w, "  Input:     %s\n", e.InputPath)
	if e.OutputPath != "" {
		fmt.Fprintf(w, "  Output:    %s\n", e.OutputPath)
	}
	fmt.Fprintf(w, "  Status:    %s\n", e.Status)
	if e.Error != "" {
		fmt.Fprintf(w, "  Error:     %s %s\n", e.ErrorCode, e.Error)
	}
	fmt.Fprintf(w, "  Features:  %v\n", e.Features)
	if stats := statsLine(&FileResult{Stats: e.Stats}); stats != "" {
		fmt.Fprintf(w, "  Lowered:   %s\n", stats)
	}
	fmt.Fprintf(w, "  Source:    %s\n", e.SourceHash)
	if e.OutputHash != "" {
		fmt.Fprintf(w, "  Generated: %s\n", e.OutputHash)
	}
	fmt.Fprintf(w, "  Tool:      cscript %s\n", e.ToolVersion)
	return nil
}

func renderTable(formatter *OutputFormatter, data pterm.TableData) error {
	formatter.setupPterm()
	out, err := pterm.DefaultTable.WithHasHeader().WithData(data).Srender()
	if err != nil {
		return err
	}
	fmt.Fprintln(formatter.Writer, out)
	return nil
}
