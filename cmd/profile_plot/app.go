package main

import (
	"fmt"
	"path/filepath"

	"github.com/hashicorp/go-hclog"
	"gonum.org/v1/plot/vg"

	"github.com/user/profile_plot_go/internal/analysis"
	"github.com/user/profile_plot_go/internal/config"
	"github.com/user/profile_plot_go/internal/export"
	"github.com/user/profile_plot_go/internal/parser"
	"github.com/user/profile_plot_go/internal/report"
)

const (
	averageTitle = "Average time per thread count\n(malloc vs TLSAlloc, free vs TLSFree)"
	totalTitle   = "Total time per thread\n(malloc vs TLSAlloc, free vs TLSFree)"
)

// App runs the parse, pivot and render pipeline for one configuration.
type App struct {
	cfg    *config.Config
	logger hclog.Logger
}

// NewApp creates an App.
func NewApp(cfg *config.Config, logger hclog.Logger) *App {
	return &App{cfg: cfg, logger: logger}
}

func (a *App) sendStatus(message string, args ...interface{}) {
	a.logger.Info(message, args...)
}

// plotJob is one chart to render and save.
type plotJob struct {
	Key    string
	Title  string
	YLabel string
	Name   string // report heading, ASCII only
	Table  *analysis.PivotTable
	Unit   report.Unit
	Path   string
}

func (a *App) chartSpec(job plotJob) report.ChartSpec {
	spec := report.DefaultChartSpec(job.Title, job.YLabel, job.Unit)
	spec.Width = vg.Length(a.cfg.Chart.WidthInches) * vg.Inch
	spec.Height = vg.Length(a.cfg.Chart.HeightInches) * vg.Inch
	spec.DPI = a.cfg.Chart.DPI
	return spec
}

// Run executes the pipeline. Errors are returned unlogged; the caller reports them.
func (a *App) Run() error {
	inputPath := a.cfg.InputPath()

	a.sendStatus("parsing profile", "path", inputPath)
	parsedData, err := parser.ParseProfileData(inputPath)
	if err != nil {
		return err
	}
	a.sendStatus("parsed profile", "records", len(parsedData.Records))
	if parsedData.Skipped > 0 {
		a.logger.Debug("skipped malformed lines", "count", parsedData.Skipped)
	}

	observations, err := analysis.Classify(parsedData.Records)
	if err != nil {
		return fmt.Errorf("error classifying records: %w", err)
	}
	for _, o := range observations {
		if o.Op == analysis.OpUnknown {
			a.logger.Debug("unrecognized operation", "name", o.Name)
		}
	}

	averageTable, err := analysis.BuildAverageTable(observations)
	if err != nil {
		return fmt.Errorf("error pivoting average times: %w", err)
	}
	totalTable, err := analysis.BuildTotalPerThreadTable(observations)
	if err != nil {
		return fmt.Errorf("error pivoting total times: %w", err)
	}
	a.sendStatus("pivoted", "threads", averageTable.Threads(), "operations", len(averageTable.Operations()))

	units, err := a.cfg.ParsedUnits()
	if err != nil {
		return err
	}

	var jobs []plotJob
	for _, unit := range units {
		jobs = append(jobs, plotJob{
			Key:    "average" + unit.Suffix(),
			Title:  averageTitle,
			YLabel: fmt.Sprintf("Average time (%s)", unit.Label),
			Name:   fmt.Sprintf("Average time per thread count (%s)", unit.Name),
			Table:  averageTable,
			Unit:   unit,
			Path:   unit.OutputPath(a.cfg.AverageImagePath()),
		})
	}
	jobs = append(jobs, plotJob{
		Key:    "total_per_thread",
		Title:  totalTitle,
		YLabel: fmt.Sprintf("Total time per thread (%s)", report.Milliseconds.Label),
		Name:   fmt.Sprintf("Total time per thread (%s)", report.Milliseconds.Name),
		Table:  totalTable,
		Unit:   report.Milliseconds,
		Path:   a.cfg.TotalImagePath(),
	})

	// A chart that fails to render is listed as unavailable in the report and
	// fails the run once the report is written.
	var renderErr error
	charts := make([]report.ChartImage, 0, len(jobs))
	for _, job := range jobs {
		chart := report.ChartImage{
			Key:     job.Key,
			Title:   job.Name,
			Caption: filepath.Base(job.Path),
		}
		img, err := report.CreateBarPlot(job.Table, a.chartSpec(job))
		if err != nil {
			a.logger.Error("error generating plot", "chart", job.Key, "error", err)
			if renderErr == nil {
				renderErr = fmt.Errorf("error generating plot %s: %w", job.Key, err)
			}
			charts = append(charts, chart)
			continue
		}
		if err := report.SaveImage(job.Path, img); err != nil {
			return err
		}
		a.sendStatus("wrote chart", "path", job.Path)
		chart.PNG = img
		charts = append(charts, chart)
	}

	if path := a.cfg.ReportPath(); path != "" {
		err := report.BuildPDFReport(path, report.ReportData{
			Source:     parsedData.Source,
			NumRecords: len(parsedData.Records),
			Skipped:    parsedData.Skipped,
			Tables: []report.TableSection{
				{Title: "Average time", Table: averageTable, Unit: report.Milliseconds},
				{Title: "Total time per thread", Table: totalTable, Unit: report.Milliseconds},
			},
			Charts: charts,
		})
		if err != nil {
			return err
		}
		a.sendStatus("wrote report", "path", path)
	}

	if path := a.cfg.BenchExportPath(); path != "" {
		n, err := export.WriteBenchmarkFile(path, observations)
		if err != nil {
			return err
		}
		a.sendStatus("wrote benchmarks", "path", path, "results", n)
	}

	return renderErr
}
