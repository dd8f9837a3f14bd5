package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/roach88/cscript/internal/config"
)

// InitOptions holds flags for the init command.
type InitOptions struct {
	*RootOptions
	Force bool
}

// NewInitCommand creates the init command.
func NewInitCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &InitOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "init [dir]",
		Short: "Write a default csconfig.json",
		Long: `Write the default configuration to csconfig.json in dir (default: the
working directory). An existing file is kept unless --force is given.
Pass --config to choose another file name, e.g. csconfig.yaml.`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) == 1 {
				dir = args[0]
			}
			return runInit(opts, dir, cmd)
		},
	}

	cmd.Flags().BoolVar(&opts.Force, "force", false, "overwrite an existing config file")

	return cmd
}

func runInit(opts *InitOptions, dir string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	path := opts.Config
	if path == "" {
		path = filepath.Join(dir, config.FileNames[0])
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeWrite, err)
	}
	if err := config.WriteDefault(path, opts.Force); err != nil {
		return formatter.Fail(ExitCommandError, ErrorCode(err), err)
	}

	if formatter.Format == "json" {
		return formatter.Success(map[string]string{"path": path})
	}
	formatter.Check("Created %s", path)
	fmt.Fprintln(formatter.Writer, "Edit languageFeatures to switch individual lowerings on or off.")
	return nil
}
