package commands

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/couchcryptid/rainfall-intel/internal/domain"
	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	monthlyDataset  = filepath.Join("..", "..", "dataset", "testdata", "district_monthly.csv")
	yearwiseDataset = filepath.Join("..", "..", "dataset", "testdata", "yearwise.csv")
	linearModel     = filepath.Join("..", "..", "adapter", "modelfile", "testdata", "linear.yaml")
)

const puneMonthly = "JAN=10,FEB=20,MAR=30,APR=40,MAY=50,JUN=2500,JUL=250,AUG=220,SEP=180,OCT=60,NOV=30,DEC=15"

func TestMain(m *testing.M) {
	color.NoColor = true
	m.Run()
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCmd()
	var buf bytes.Buffer
	cmd.SetOut(&buf)
	cmd.SetErr(&buf)
	cmd.SetArgs(append(args, "--log-level", "error"))
	err := cmd.Execute()
	return buf.String(), err
}

func writeDataset(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "dataset.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestStates(t *testing.T) {
	out, err := execute(t, "states", "--dataset", monthlyDataset)
	require.NoError(t, err)
	assert.Equal(t, "Kerala\nMaharashtra\n", out)
}

func TestStates_DatasetFromEnv(t *testing.T) {
	t.Setenv("DATASET_PATH", yearwiseDataset)
	out, err := execute(t, "states")
	require.NoError(t, err)
	assert.Equal(t, "Kerala\nMaharashtra\n", out)
}

func TestDistricts(t *testing.T) {
	t.Run("known state", func(t *testing.T) {
		out, err := execute(t, "districts", "Maharashtra", "--dataset", monthlyDataset)
		require.NoError(t, err)
		assert.Equal(t, "Nagpur\nPune\n", out)
	})

	t.Run("unknown state", func(t *testing.T) {
		_, err := execute(t, "districts", "Atlantis", "--dataset", monthlyDataset)
		require.ErrorIs(t, err, domain.ErrUnknownLocation)
	})

	t.Run("missing argument", func(t *testing.T) {
		_, err := execute(t, "districts", "--dataset", monthlyDataset)
		require.Error(t, err)
	})
}

func TestYears(t *testing.T) {
	t.Run("year-wise dataset", func(t *testing.T) {
		out, err := execute(t, "years", "--dataset", yearwiseDataset)
		require.NoError(t, err)
		assert.Equal(t, "2019\n2020\n2021\n", out)
	})

	t.Run("monthly dataset", func(t *testing.T) {
		out, err := execute(t, "years", "--dataset", monthlyDataset)
		require.NoError(t, err)
		assert.Contains(t, out, "dataset has no year information")
	})
}

func TestSummary(t *testing.T) {
	t.Run("table", func(t *testing.T) {
		out, err := execute(t, "summary", "Maharashtra", "Pune", "--dataset", monthlyDataset)
		require.NoError(t, err)
		assert.Contains(t, out, "Pune, Maharashtra (1 records)")
		assert.Contains(t, out, "JAN    10.00")
		assert.Contains(t, out, "Jun-Sep  850.00")
		assert.Contains(t, out, "annual total 1105.00 mm (Moderate)")
	})

	t.Run("year-wise dataset", func(t *testing.T) {
		out, err := execute(t, "summary", "Maharashtra", "Pune", "--dataset", yearwiseDataset)
		require.NoError(t, err)
		assert.Contains(t, out, "monthly data unavailable")
		assert.Contains(t, out, "2019  1320.50")
		assert.Contains(t, out, "Rainy      2")
	})

	t.Run("json", func(t *testing.T) {
		out, err := execute(t, "summary", "Maharashtra", "Pune", "--dataset", monthlyDataset, "--json")
		require.NoError(t, err)

		var s domain.Summary
		require.NoError(t, json.Unmarshal([]byte(out), &s))
		assert.Equal(t, 1, s.Records)
		require.NotNil(t, s.AnnualTotal)
		assert.Equal(t, 1105.0, *s.AnnualTotal)
	})

	t.Run("district of another state", func(t *testing.T) {
		_, err := execute(t, "summary", "Kerala", "Pune", "--dataset", monthlyDataset)
		require.ErrorIs(t, err, domain.ErrUnknownLocation)
	})
}

func TestValidate(t *testing.T) {
	t.Run("clean dataset", func(t *testing.T) {
		out, err := execute(t, "validate", "--dataset", monthlyDataset)
		require.NoError(t, err)
		assert.Contains(t, out, "✓ schema")
		assert.Contains(t, out, "✓ locations")
		assert.Contains(t, out, "3 records, 2 states, 0 years")
	})

	t.Run("warnings do not fail", func(t *testing.T) {
		path := writeDataset(t, "STATE/UT,DISTRICT,YEAR,ANNUAL\n"+
			"Andhra Pradesh,Hyderabad,2013,800\n"+
			"Telangana,Hyderabad,2015,750\n"+
			"Telangana,Warangal,2015,NA\n")
		out, err := execute(t, "validate", "--dataset", path)
		require.NoError(t, err)
		assert.Contains(t, out, "⚠ locations: 1 warning(s)")
		assert.Contains(t, out, "district Hyderabad listed under [Andhra Pradesh Telangana]")
		assert.Contains(t, out, "⚠ coverage: 1 warning(s)")
	})

	t.Run("monthly value above input range", func(t *testing.T) {
		path := writeDataset(t, "STATE,DISTRICT,JAN,FEB,MAR,APR,MAY,JUN,JUL,AUG,SEP,OCT,NOV,DEC\n"+
			"Meghalaya,East Khasi Hills,20,40,90,250,500,2400,2100,1300,900,300,50,15\n")
		out, err := execute(t, "validate", "--dataset", path)
		require.NoError(t, err)
		assert.Contains(t, out, "JUN 2400.0 mm exceeds 2000")
	})

	t.Run("unparsable dataset", func(t *testing.T) {
		path := writeDataset(t, "STATE,DISTRICT,YEAR,ANNUAL\nKerala,Idukki,2019,lots\n")
		out, err := execute(t, "validate", "--dataset", path)
		require.Error(t, err)
		assert.Contains(t, out, "✗ schema: 1 error(s)")
		assert.Contains(t, out, `invalid number "lots"`)
	})
}

func TestPrintIssues_Truncates(t *testing.T) {
	issues := make([]string, maxReportedIssues+3)
	for i := range issues {
		issues[i] = "issue"
	}
	var buf bytes.Buffer
	printIssues(&buf, issues)
	assert.Equal(t, maxReportedIssues+1, strings.Count(buf.String(), "\n"))
	assert.Contains(t, buf.String(), "... and 3 more")
}

func TestPredict_UseMeans(t *testing.T) {
	out := filepath.Join(t.TempDir(), "pune.csv")
	stdout, err := execute(t, "predict", "Maharashtra", "Pune",
		"--dataset", monthlyDataset, "--model", linearModel, "--use-means", "--out", out)
	require.NoError(t, err)
	assert.Contains(t, stdout, "Pune, Maharashtra: 1110.00 mm (Moderate)")

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, "District,State,Prediction_mm,Category\nPune,Maharashtra,1110.00,Moderate\n", string(data))
}

func TestPredict_DefaultFilename(t *testing.T) {
	dataset, err := filepath.Abs(monthlyDataset)
	require.NoError(t, err)
	model, err := filepath.Abs(linearModel)
	require.NoError(t, err)
	t.Chdir(t.TempDir())

	_, err = execute(t, "predict", "Maharashtra", "Pune", "--dataset", dataset, "--model", model, "--use-means")
	require.NoError(t, err)
	assert.FileExists(t, "rainfall_prediction_Pune.csv")
}

func TestPredict_Monthly(t *testing.T) {
	t.Run("out of range without clamp", func(t *testing.T) {
		_, err := execute(t, "predict", "Maharashtra", "Pune",
			"--dataset", monthlyDataset, "--model", linearModel, "--monthly", puneMonthly, "--out", "-")
		require.ErrorIs(t, err, domain.ErrInvalidRange)
	})

	t.Run("clamped to stdout", func(t *testing.T) {
		out, err := execute(t, "predict", "Maharashtra", "Pune",
			"--dataset", monthlyDataset, "--model", linearModel, "--monthly", puneMonthly, "--clamp", "--out", "-")
		require.NoError(t, err)
		assert.Equal(t, "District,State,Prediction_mm,Category\nPune,Maharashtra,2910.00,Heavy\n", out)
	})

	t.Run("missing month", func(t *testing.T) {
		_, err := execute(t, "predict", "Maharashtra", "Pune",
			"--dataset", monthlyDataset, "--model", linearModel, "--monthly", "JAN=10", "--out", "-")
		require.ErrorIs(t, err, domain.ErrInvalidRange)
	})

	t.Run("non-numeric value", func(t *testing.T) {
		_, err := execute(t, "predict", "Maharashtra", "Pune",
			"--dataset", monthlyDataset, "--model", linearModel, "--monthly", "JAN=wet", "--out", "-")
		require.Error(t, err)
		assert.Contains(t, err.Error(), `invalid value for JAN: "wet"`)
	})

	t.Run("no model", func(t *testing.T) {
		_, err := execute(t, "predict", "Maharashtra", "Pune",
			"--dataset", monthlyDataset, "--model", "", "--model-server", "", "--use-means", "--out", "-")
		require.ErrorIs(t, err, domain.ErrModelUnavailable)
	})

	t.Run("unknown district", func(t *testing.T) {
		_, err := execute(t, "predict", "Kerala", "Pune",
			"--dataset", monthlyDataset, "--model", linearModel, "--monthly", puneMonthly, "--clamp", "--out", "-")
		require.ErrorIs(t, err, domain.ErrUnknownLocation)
	})

	t.Run("conflicting inputs", func(t *testing.T) {
		_, err := execute(t, "predict", "Maharashtra", "Pune",
			"--dataset", monthlyDataset, "--model", linearModel, "--monthly", puneMonthly, "--use-means")
		require.Error(t, err)
	})
}

func TestPredict_LocationYear(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/v1/models/location:predict":
			_, _ = w.Write([]byte(`{"prediction": 3520.5}`))
		case "/v1/models/condition:predict":
			_, _ = w.Write([]byte(`{"label": "Stormy"}`))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	t.Run("within dataset years", func(t *testing.T) {
		out, err := execute(t, "predict", "Kerala", "Wayanad",
			"--dataset", yearwiseDataset, "--model-server", srv.URL, "--year", "2019")
		require.NoError(t, err)
		assert.Contains(t, out, "Wayanad, Kerala 2019: 3520.50 mm (Heavy)")
		assert.Contains(t, out, "condition: Stormy")
	})

	t.Run("outside dataset years", func(t *testing.T) {
		_, err := execute(t, "predict", "Kerala", "Wayanad",
			"--dataset", yearwiseDataset, "--model-server", srv.URL, "--year", "1990")
		require.ErrorIs(t, err, domain.ErrInvalidRange)
	})
}
