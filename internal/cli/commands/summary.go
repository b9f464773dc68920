package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/couchcryptid/rainfall-intel/internal/cli/ui"
	"github.com/couchcryptid/rainfall-intel/internal/domain"
	"github.com/spf13/cobra"
)

func newSummaryCmd(opts *options) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "summary <state> <district>",
		Short: "aggregate the records of one district",
		Long: `Show monthly and seasonal means, the annual total and category, the yearly
trend, and the weather-condition distribution for one district.

Sections the dataset cannot support are reported as unavailable.`,
		Example: `  $ rainctl summary Maharashtra Pune
  $ rainctl summary Kerala Wayanad --json`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := opts.logger()
			index, err := opts.loadIndex(logger)
			if err != nil {
				return err
			}
			records, err := index.Filter(args[0], args[1])
			if err != nil {
				return err
			}
			summary, err := domain.Summarize(args[0], args[1], records)
			if err != nil {
				return fmt.Errorf("summarize %s: %w", args[1], err)
			}

			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(summary)
			}
			return printSummary(out, summary)
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the summary as JSON")
	return cmd
}

func printSummary(w io.Writer, s domain.Summary) error {
	ui.PrintHeader(w, "%s, %s (%d records)", s.District, s.State, s.Records)

	fmt.Fprintln(w)
	if s.MonthlyMeans == nil {
		ui.PrintWarning(w, "monthly data unavailable")
	} else {
		rows := make([][]string, 0, domain.MonthsPerYear)
		for _, m := range domain.Months() {
			rows = append(rows, []string{m.String(), formatMM(s.MonthlyMeans[m])})
		}
		if err := ui.PrintTable(w, []string{"month", "mean mm"}, rows); err != nil {
			return err
		}
	}

	if s.SeasonalMeans != nil {
		fmt.Fprintln(w)
		rows := make([][]string, 0, domain.SeasonsPerYear)
		for _, season := range domain.Seasons() {
			rows = append(rows, []string{season.String(), formatMM(s.SeasonalMeans[season])})
		}
		if err := ui.PrintTable(w, []string{"season", "mean mm"}, rows); err != nil {
			return err
		}
	}

	fmt.Fprintln(w)
	if s.AnnualTotal != nil {
		ui.PrintInfo(w, "annual total %s mm (%s)", formatMM(*s.AnnualTotal), s.AnnualCategory)
	}

	if len(s.YearlySeries) > 0 {
		fmt.Fprintln(w)
		rows := make([][]string, 0, len(s.YearlySeries))
		for _, p := range s.YearlySeries {
			rows = append(rows, []string{strconv.Itoa(p.Year), formatMM(p.Value)})
		}
		if err := ui.PrintTable(w, []string{"year", "annual mm"}, rows); err != nil {
			return err
		}
	}

	if len(s.Conditions) > 0 {
		fmt.Fprintln(w)
		rows := make([][]string, 0, len(s.Conditions))
		for _, c := range s.Conditions {
			rows = append(rows, []string{c.Condition, strconv.Itoa(c.Count)})
		}
		if err := ui.PrintTable(w, []string{"condition", "count"}, rows); err != nil {
			return err
		}
	}
	return nil
}

func formatMM(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}
