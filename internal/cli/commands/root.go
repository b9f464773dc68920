// Package commands implements the rainctl command tree.
package commands

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/couchcryptid/rainfall-intel/internal/adapter/modelfile"
	"github.com/couchcryptid/rainfall-intel/internal/adapter/modelhttp"
	"github.com/couchcryptid/rainfall-intel/internal/dataset"
	"github.com/couchcryptid/rainfall-intel/internal/domain"
	"github.com/couchcryptid/rainfall-intel/internal/gateway"
	"github.com/couchcryptid/rainfall-intel/internal/observability"
	"github.com/couchcryptid/rainfall-intel/internal/service"
	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/spf13/cobra"
)

const version = "0.1.0"

const modelServerTimeout = 30 * time.Second

// options holds the persistent flags shared by every subcommand.
type options struct {
	datasetPath string
	schemaFile  string
	modelPath   string
	modelServer string
	logLevel    string
}

// NewRootCmd builds a fresh rainctl command tree.
func NewRootCmd() *cobra.Command {
	opts := &options{}

	cmd := &cobra.Command{
		Use:     "rainctl",
		Short:   "District rainfall dataset and prediction CLI",
		Version: version,
		Long: `Inspect a district rainfall dataset and run rainfall predictions offline.

Flags default from the same environment variables the rainfall service reads,
so a shell configured for the service works unchanged.`,
		Example: `  # List states in the dataset
  $ rainctl states --dataset data/district_rainfall.csv

  # Aggregate one district
  $ rainctl summary Maharashtra Pune

  # Check a dataset before deploying it
  $ rainctl validate --schema aliases.yaml

  # Predict from monthly values and write the CSV record
  $ rainctl predict Maharashtra Pune --model model.yaml \
      --monthly JAN=10,FEB=20,MAR=30,APR=40,MAY=50,JUN=200,JUL=250,AUG=220,SEP=180,OCT=60,NOV=30,DEC=15`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.SetVersionTemplate(fmt.Sprintf("rainctl version %s\n", version))
	cmd.CompletionOptions.DisableDefaultCmd = true

	flags := cmd.PersistentFlags()
	flags.StringVar(&opts.datasetPath, "dataset", sharedcfg.EnvOrDefault("DATASET_PATH", "data/district_rainfall.csv"), "rainfall dataset CSV")
	flags.StringVar(&opts.schemaFile, "schema", sharedcfg.EnvOrDefault("DATASET_SCHEMA_FILE", ""), "YAML file with extra column aliases")
	flags.StringVar(&opts.modelPath, "model", sharedcfg.EnvOrDefault("MODEL_PATH", ""), "linear rainfall model file")
	flags.StringVar(&opts.modelServer, "model-server", sharedcfg.EnvOrDefault("MODEL_SERVER_URL", ""), "base URL of a model server")
	flags.StringVar(&opts.logLevel, "log-level", "error", "log level (debug, info, warn, error)")

	cmd.AddCommand(
		newStatesCmd(opts),
		newDistrictsCmd(opts),
		newYearsCmd(opts),
		newSummaryCmd(opts),
		newValidateCmd(opts),
		newPredictCmd(opts),
	)
	return cmd
}

// Execute runs rainctl with os.Args.
func Execute() error {
	return NewRootCmd().Execute()
}

func (o *options) logger() *slog.Logger {
	return sharedobs.NewLogger(o.logLevel, "text")
}

func (o *options) loadIndex(logger *slog.Logger) (*domain.LocationIndex, error) {
	records, err := dataset.Open(o.datasetPath, o.schemaFile, logger)
	if err != nil {
		return nil, err
	}
	return domain.NewLocationIndex(records), nil
}

// openService loads the dataset and whichever models the flags name.
func (o *options) openService(logger *slog.Logger) (*service.Service, error) {
	index, err := o.loadIndex(logger)
	if err != nil {
		return nil, err
	}

	metrics := observability.NewUnregisteredMetrics()
	var models gateway.Models
	if o.modelPath != "" {
		m, err := modelfile.Load(o.modelPath)
		if err != nil {
			return nil, err
		}
		models.Rainfall = m
	}
	if o.modelServer != "" {
		client := modelhttp.NewClient(o.modelServer, modelServerTimeout, logger)
		models.Location = client
		models.Condition = client
		if models.Rainfall == nil {
			models.Rainfall = client
		}
	}

	return service.New(index, gateway.New(models, metrics, logger), logger), nil
}
