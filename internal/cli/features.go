package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/cscript/internal/transform"
)

// FeatureState is one toggle as resolved from csconfig.
type FeatureState struct {
	Name    string `json:"name"`
	Enabled bool   `json:"enabled"`
}

// FeaturesResult is the payload of the features command.
type FeaturesResult struct {
	Config   string         `json:"config,omitempty"` // "" when the defaults apply
	Features []FeatureState `json:"features"`
}

// NewFeaturesCommand creates the features command.
func NewFeaturesCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "features",
		Short:         "List language feature toggles",
		Long:          "List every languageFeatures toggle and whether the current csconfig enables it.",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFeatures(rootOpts, cmd)
		},
	}
}

func runFeatures(opts *RootOptions, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	proj, err := opts.loadProject()
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrorCode(err), err)
	}
	result := FeaturesResult{Config: proj.cfg.Path, Features: featureStates(proj.features())}

	if formatter.Format == "json" {
		return formatter.Success(result)
	}

	source := result.Config
	if source == "" {
		source = "defaults"
	}
	fmt.Fprintf(formatter.Writer, "Language features (%s):\n", source)
	for _, f := range result.Features {
		if f.Enabled {
			formatter.Check("%s", f.Name)
		} else {
			formatter.Cross("%s", f.Name)
		}
	}
	return nil
}

// featureStates lists the lowerings in dispatch order, then enhancedTypes.
func featureStates(fs transform.Features) []FeatureState {
	out := make([]FeatureState, 0, len(transform.AllFeatures)+1)
	for _, f := range transform.AllFeatures {
		out = append(out, FeatureState{Name: string(f), Enabled: fs.Enabled(f)})
	}
	return append(out, FeatureState{Name: transform.EnhancedTypesName, Enabled: fs.EnhancedTypes})
}
