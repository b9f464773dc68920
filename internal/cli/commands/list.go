package commands

import (
	"fmt"
	"strconv"

	"github.com/couchcryptid/rainfall-intel/internal/cli/ui"
	"github.com/spf13/cobra"
)

func newStatesCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:     "states",
		Short:   "list the states in the dataset",
		Example: `  $ rainctl states`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			index, err := opts.loadIndex(opts.logger())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, s := range index.States() {
				fmt.Fprintln(out, s)
			}
			return nil
		},
	}
}

func newDistrictsCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:     "districts <state>",
		Short:   "list the districts of a state",
		Example: `  $ rainctl districts Kerala`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			index, err := opts.loadIndex(opts.logger())
			if err != nil {
				return err
			}
			districts, err := index.Districts(args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, d := range districts {
				fmt.Fprintln(out, d)
			}
			return nil
		},
	}
}

func newYearsCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "years",
		Short: "list the years offered for location-based prediction",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			index, err := opts.loadIndex(opts.logger())
			if err != nil {
				return err
			}
			years := index.Years()
			out := cmd.OutOrStdout()
			if len(years) == 0 {
				ui.PrintWarning(out, "dataset has no year information")
				return nil
			}
			for _, y := range years {
				fmt.Fprintln(out, strconv.Itoa(y))
			}
			return nil
		},
	}
}
