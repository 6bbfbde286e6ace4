package report

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/user/profile_plot_go/internal/parser"
)

func TestPivotRows(t *testing.T) {
	table := testTable(t, []parser.Record{
		{Name: "1 threads new100", Average: 0.0004},
		{Name: "4 threads Free100", Average: 0.002},
	})
	rows := pivotRows(table, Microseconds)
	assert.Equal(t, [][]string{
		{"1", "0.400", "-", "-", "-"},
		{"4", "-", "-", "-", "2.000"},
	}, rows)
}

func TestBuildPDFReport(t *testing.T) {
	table := testTable(t, []parser.Record{
		{Name: "1 threads new100", Average: 0.0004},
		{Name: "1 threads Alloc100", Average: 0.0001},
		{Name: "2 threads delete100", Average: 0.0006},
	})
	img, err := CreateBarPlot(table, smallSpec(Milliseconds))
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "reports", "profile_report.pdf")
	err = BuildPDFReport(path, ReportData{
		Source:     "/data/profile_data.txt",
		NumRecords: 3,
		Skipped:    1,
		Tables: []TableSection{
			{Title: "Average time", Table: table, Unit: Milliseconds},
			{Title: "Empty", Table: nil, Unit: Milliseconds},
		},
		Charts: []ChartImage{
			{Key: "avg_ms", Title: "Average (ms)", Caption: "average per thread", PNG: img},
			{Key: "missing", Title: "Broken chart"},
		},
	})
	require.NoError(t, err)

	out, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, len(out) > 4 && string(out[:4]) == "%PDF", "output is a PDF document")
}
