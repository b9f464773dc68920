package commands

import (
	"context"
	"fmt"
	"os"
	"strconv"

	"github.com/couchcryptid/rainfall-intel/internal/cli/ui"
	"github.com/couchcryptid/rainfall-intel/internal/domain"
	"github.com/spf13/cobra"
)

type predictOptions struct {
	monthly  map[string]string
	seasonal map[string]string
	autoFill bool
	clamp    bool
	useMeans bool
	year     int
	out      string
}

func newPredictCmd(opts *options) *cobra.Command {
	popts := &predictOptions{}

	cmd := &cobra.Command{
		Use:   "predict <state> <district>",
		Short: "predict annual rainfall for a district",
		Long: `Predict annual rainfall from twelve monthly values, or from the district
and a year with --year.

Seasonal totals default to sums of the months. Explicit --seasonal values are
kept unless --auto-fill is set. Monthly values outside [0, 2000] mm are
rejected unless --clamp pins them into range. --use-means takes the monthly
values from the district's dataset means.

The monthly prediction is written as a CSV record to --out, or to
rainfall_prediction_<district>.csv when --out is empty. Use --out - for stdout.`,
		Example: `  $ rainctl predict Maharashtra Pune --model model.yaml --use-means
  $ rainctl predict Maharashtra Pune --model model.yaml --clamp \
      --monthly JAN=10,FEB=20,MAR=30,APR=40,MAY=50,JUN=2500,JUL=250,AUG=220,SEP=180,OCT=60,NOV=30,DEC=15
  $ rainctl predict Kerala Wayanad --year 2019 --model-server http://localhost:9000`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPredict(cmd, opts, popts, args[0], args[1])
		},
	}

	flags := cmd.Flags()
	flags.StringToStringVar(&popts.monthly, "monthly", nil, "monthly rainfall in mm, e.g. JAN=10,FEB=20")
	flags.StringToStringVar(&popts.seasonal, "seasonal", nil, "seasonal totals in mm, e.g. Jan-Feb=30,Mar-May=120")
	flags.BoolVar(&popts.autoFill, "auto-fill", false, "overwrite seasonal totals with sums of the months")
	flags.BoolVar(&popts.clamp, "clamp", false, "pin monthly values into the accepted range")
	flags.BoolVar(&popts.useMeans, "use-means", false, "use the district's monthly means as input")
	flags.IntVar(&popts.year, "year", 0, "predict from location and year instead of monthly values")
	flags.StringVarP(&popts.out, "out", "o", "", "CSV output path (- for stdout)")
	cmd.MarkFlagsMutuallyExclusive("monthly", "use-means")
	cmd.MarkFlagsMutuallyExclusive("monthly", "year")
	return cmd
}

func runPredict(cmd *cobra.Command, opts *options, popts *predictOptions, state, district string) error {
	logger := opts.logger()
	svc, err := opts.openService(logger)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), modelServerTimeout)
	defer cancel()
	out := cmd.OutOrStdout()

	if popts.year != 0 {
		pred, err := svc.PredictLocationYear(ctx, domain.LocationYear{State: state, District: district, Year: popts.year})
		if err != nil {
			return err
		}
		ui.PrintSuccess(out, "%s, %s %d: %s mm (%s)", district, state, popts.year, formatMM(pred.PredictedMM), pred.Category)
		if pred.Condition != "" {
			ui.PrintInfo(out, "condition: %s", pred.Condition)
		}
		return nil
	}

	monthly, err := popts.monthlyValues(svc.Summary, state, district)
	if err != nil {
		return err
	}
	seasonal, err := parseValues(popts.seasonal)
	if err != nil {
		return err
	}

	result, err := svc.PredictMonthly(ctx, domain.PredictionRequest{
		State:            state,
		District:         district,
		Monthly:          monthly,
		Seasonal:         seasonal,
		AutoFillSeasonal: popts.autoFill,
	})
	if err != nil {
		return err
	}

	if popts.out == "-" {
		return domain.WriteCSV(out, result)
	}
	path := popts.out
	if path == "" {
		path = domain.CSVFilename(district)
	}
	if err := writeCSVFile(path, result); err != nil {
		return err
	}

	ui.PrintSuccess(out, "%s, %s: %s mm (%s)", district, state, formatMM(result.PredictedMM), result.Category)
	ui.PrintInfo(out, "record written to %s", path)
	return nil
}

// monthlyValues resolves the monthly input from flags or dataset means,
// clamping when asked.
func (p *predictOptions) monthlyValues(summary func(state, district string) (domain.Summary, error), state, district string) (map[string]float64, error) {
	var values map[string]float64
	if p.useMeans {
		s, err := summary(state, district)
		if err != nil {
			return nil, err
		}
		if s.MonthlyMeans == nil {
			return nil, fmt.Errorf("%s has no monthly data: %w", district, domain.ErrEmptyRecordSet)
		}
		values = monthlyMap(domain.MonthlyInputSet(*s.MonthlyMeans))
	} else {
		var err error
		if values, err = parseValues(p.monthly); err != nil {
			return nil, err
		}
	}

	if !p.clamp {
		return values, nil
	}
	m, err := domain.ParseMonthly(values)
	if err != nil {
		return nil, err
	}
	return monthlyMap(m.Clamp()), nil
}

func monthlyMap(m domain.MonthlyInputSet) map[string]float64 {
	out := make(map[string]float64, domain.MonthsPerYear)
	for _, month := range domain.Months() {
		out[month.String()] = m[month]
	}
	return out
}

func parseValues(raw map[string]string) (map[string]float64, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	out := make(map[string]float64, len(raw))
	for k, v := range raw {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid value for %s: %q", k, v)
		}
		out[k] = f
	}
	return out, nil
}

func writeCSVFile(path string, result domain.PredictionResult) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()
	if err := domain.WriteCSV(f, result); err != nil {
		return fmt.Errorf("write prediction record: %w", err)
	}
	return nil
}
