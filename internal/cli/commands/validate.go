package commands

import (
	"fmt"
	"io"

	"github.com/couchcryptid/rainfall-intel/internal/cli/ui"
	"github.com/couchcryptid/rainfall-intel/internal/dataset"
	"github.com/couchcryptid/rainfall-intel/internal/domain"
	"github.com/spf13/cobra"
)

// maxReportedIssues caps the lines printed per phase.
const maxReportedIssues = 10

// phase tracks pass/fail for one validation step. Warnings do not fail it.
type phase struct {
	name     string
	errors   []string
	warnings []string
}

func (p *phase) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) warnf(format string, args ...any) {
	p.warnings = append(p.warnings, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

func newValidateCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "check a dataset before serving it",
		Long: `Load the dataset with the configured schema and report:

  • schema: required columns resolve and every row parses
  • coverage: every record carries monthly, annual, or per-year rainfall
  • bounds: monthly values stay within the prediction input range
  • locations: districts listed under more than one state`,
		Example: `  $ rainctl validate --dataset data/district_rainfall.csv
  $ rainctl validate --schema aliases.yaml`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			out := cmd.OutOrStdout()
			schema := &phase{name: "schema"}

			records, err := dataset.Open(opts.datasetPath, opts.schemaFile, opts.logger())
			if err != nil {
				schema.errorf("%v", err)
				report(out, []*phase{schema})
				return fmt.Errorf("dataset %s failed validation", opts.datasetPath)
			}

			index := domain.NewLocationIndex(records)
			phases := []*phase{
				schema,
				validateCoverage(records),
				validateBounds(records),
				validateLocations(index),
			}
			if !report(out, phases) {
				return fmt.Errorf("dataset %s failed validation", opts.datasetPath)
			}
			ui.PrintSuccess(out, "%d records, %d states, %d years", index.Len(), len(index.States()), len(index.Years()))
			return nil
		},
	}
}

func validateCoverage(records []domain.RainfallRecord) *phase {
	p := &phase{name: "coverage"}
	for i, r := range records {
		if _, ok := r.AnnualRainfall(); ok || r.HasMonthly || len(r.Yearly) > 0 {
			continue
		}
		p.warnf("record %d (%s, %s) has no rainfall values", i+1, r.District, r.State)
	}
	return p
}

func validateBounds(records []domain.RainfallRecord) *phase {
	p := &phase{name: "bounds"}
	for i, r := range records {
		if !r.HasMonthly {
			continue
		}
		for _, m := range domain.Months() {
			if v := r.Monthly[m]; v > domain.MaxMonthlyMM {
				p.warnf("record %d (%s, %s): %s %.1f mm exceeds %.0f", i+1, r.District, r.State, m, v, domain.MaxMonthlyMM)
			}
		}
	}
	return p
}

func validateLocations(index *domain.LocationIndex) *phase {
	p := &phase{name: "locations"}
	for _, c := range index.Conflicts() {
		p.warnf("district %s listed under %v", c.District, c.States)
	}
	return p
}

// report prints each phase and returns true when all passed.
func report(w io.Writer, phases []*phase) bool {
	allPassed := true
	for _, p := range phases {
		switch {
		case !p.passed():
			allPassed = false
			ui.PrintError(w, "%s: %d error(s)", p.name, len(p.errors))
		case len(p.warnings) > 0:
			ui.PrintWarning(w, "%s: %d warning(s)", p.name, len(p.warnings))
		default:
			ui.PrintSuccess(w, "%s", p.name)
		}
		printIssues(w, p.errors)
		printIssues(w, p.warnings)
	}
	return allPassed
}

func printIssues(w io.Writer, issues []string) {
	for i, msg := range issues {
		if i == maxReportedIssues {
			fmt.Fprintf(w, "    ... and %d more\n", len(issues)-maxReportedIssues)
			return
		}
		fmt.Fprintf(w, "    %s\n", msg)
	}
}
