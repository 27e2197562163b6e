package main

import (
	"github.com/spf13/cobra"

	"github.com/backmassage/chaptersplit/internal/config"
)

// newRootCmd builds the chaptersplit command. Flags are bound onto cfg;
// after parsing, negated flags are applied and cfg is validated before
// action runs. action's return value is stored in code.
func newRootCmd(cfg *config.Config, action func(*config.Config) int, code *int) *cobra.Command {
	var negated *config.NegatedFlags

	cmd := &cobra.Command{
		Use:   "chaptersplit -i <file> -o <dir>",
		Short: "Split an audiobook into per-chapter files using ffmpeg",
		Long: `chaptersplit reads the chapter metadata embedded in an audio file
(m4b, mp3, mka, ...) with ffprobe and writes every chapter to its own file
with ffmpeg stream copy, in parallel. Nothing is re-encoded and existing
files are never overwritten.`,
		Version:       version + " (" + commit + ")",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		PreRunE: func(cmd *cobra.Command, args []string) error {
			config.Finalize(cfg, negated)
			return cfg.Validate()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			*code = action(cfg)
			return nil
		},
	}
	cmd.Flags().SortFlags = false
	negated = config.BindFlags(cmd.Flags(), cfg)
	return cmd
}
