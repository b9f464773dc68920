package ui

import (
	"bytes"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	color.NoColor = true
	m.Run()
}

func TestPrintHelpers(t *testing.T) {
	tests := []struct {
		name  string
		print func(*bytes.Buffer)
		want  string
	}{
		{"success", func(b *bytes.Buffer) { PrintSuccess(b, "loaded %d", 3) }, "✓ loaded 3\n"},
		{"error", func(b *bytes.Buffer) { PrintError(b, "bad %s", "row") }, "✗ bad row\n"},
		{"warning", func(b *bytes.Buffer) { PrintWarning(b, "clash") }, "⚠ clash\n"},
		{"info", func(b *bytes.Buffer) { PrintInfo(b, "note") }, "ℹ note\n"},
		{"header", func(b *bytes.Buffer) { PrintHeader(b, "States") }, "States\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			tt.print(&buf)
			assert.Equal(t, tt.want, buf.String())
		})
	}
}

func TestPrintTable(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, PrintTable(&buf, []string{"month", "mm"}, [][]string{{"JAN", "10.00"}, {"FEB", "200.50"}}))
	assert.Equal(t, "MONTH  MM\nJAN    10.00\nFEB    200.50\n", buf.String())
}
