package report

import (
	"bytes"
	"fmt"
	"image/color"
	"os"
	"path/filepath"
	"strconv"

	"github.com/user/profile_plot_go/internal/analysis"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette/brewer"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"
)

const (
	// clusterFill is the share of a thread-count slot taken by one bar.
	clusterFill = 0.2
	// plotAreaShare approximates the share of the image width left for data.
	plotAreaShare = 0.85
	// headroom above the tallest bar, leaving space for value labels.
	headroom = 1.15
)

// ChartSpec describes one grouped bar chart.
type ChartSpec struct {
	Title  string
	XLabel string
	YLabel string
	Unit   Unit
	Width  vg.Length
	Height vg.Length
	DPI    int
}

// DefaultChartSpec returns a 10x6 inch, 300 DPI chart in the given unit.
func DefaultChartSpec(title, yLabel string, unit Unit) ChartSpec {
	return ChartSpec{
		Title:  title,
		XLabel: "Threads",
		YLabel: yLabel,
		Unit:   unit,
		Width:  10 * vg.Inch,
		Height: 6 * vg.Inch,
		DPI:    300,
	}
}

// CreateBarPlot draws one cluster of bars per thread count, one bar per
// operation, and returns the PNG encoding. Table values are multiplied by the
// unit factor before drawing.
func CreateBarPlot(table *analysis.PivotTable, spec ChartSpec) ([]byte, error) {
	if table == nil || len(table.Threads()) == 0 {
		return nil, fmt.Errorf("no pivot data to plot")
	}
	if spec.Width <= 0 || spec.Height <= 0 {
		return nil, fmt.Errorf("invalid chart size %vx%v", spec.Width, spec.Height)
	}

	scaled := table.Scale(spec.Unit.Factor)
	threads := scaled.Threads()

	p := plot.New()
	p.Title.Text = spec.Title
	p.X.Label.Text = spec.XLabel
	p.Y.Label.Text = spec.YLabel

	pal, err := brewer.GetPalette(brewer.TypeQualitative, "Paired", len(analysis.Operations))
	if err != nil {
		return nil, fmt.Errorf("failed to load palette: %w", err)
	}
	colors := pal.Colors()

	barWidth := spec.Width * plotAreaShare * clusterFill / vg.Length(len(threads))

	for _, series := range buildSeries(scaled, spec.Unit, barWidth) {
		bars, err := plotter.NewBarChart(series.Values, barWidth)
		if err != nil {
			return nil, fmt.Errorf("failed to create bars for %s: %w", series.Op, err)
		}
		bars.Color = colors[series.Index%len(colors)]
		bars.LineStyle.Width = 0
		bars.Offset = series.Offset
		p.Add(bars)
		p.Legend.Add(string(series.Op), bars)

		if len(series.LabelPts) == 0 {
			continue
		}
		labels, err := plotter.NewLabels(plotter.XYLabels{XYs: series.LabelPts, Labels: series.Labels})
		if err != nil {
			return nil, fmt.Errorf("failed to create labels for %s: %w", series.Op, err)
		}
		for k := range labels.TextStyle {
			labels.TextStyle[k].XAlign = draw.XCenter
			labels.TextStyle[k].YAlign = draw.YBottom
			labels.TextStyle[k].Font.Size *= 0.7
			labels.TextStyle[k].Color = color.Black
		}
		labels.Offset = vg.Point{X: series.Offset, Y: vg.Points(2)}
		p.Add(labels)
	}

	xTicks := make([]plot.Tick, len(threads))
	for j, n := range threads {
		xTicks[j] = plot.Tick{Value: float64(j), Label: strconv.Itoa(n)}
	}
	p.X.Tick.Marker = plot.ConstantTicks(xTicks)
	p.X.Min = -0.5
	p.X.Max = float64(len(threads)) - 0.5
	p.Y.Min, p.Y.Max = yRange(scaled)

	p.Legend.Top = true

	return encodePNG(p, spec)
}

// barSeries is the bars and value labels of one operation. X positions are
// indexes into the table's thread counts.
type barSeries struct {
	Op       analysis.Operation
	Index    int // position in analysis.Operations
	Values   plotter.Values
	LabelPts plotter.XYs
	Labels   []string
	Offset   vg.Length
}

// buildSeries lays out one series per operation present in scaled, in
// canonical order. Absent cells get a zero value and no label.
func buildSeries(scaled *analysis.PivotTable, unit Unit, barWidth vg.Length) []barSeries {
	threads := scaled.Threads()
	center := float64(len(analysis.Operations)-1) / 2

	present := make(map[analysis.Operation]bool)
	for _, op := range scaled.Operations() {
		present[op] = true
	}

	var out []barSeries
	for i, op := range analysis.Operations {
		if !present[op] {
			continue
		}
		s := barSeries{
			Op:     op,
			Index:  i,
			Values: make(plotter.Values, len(threads)),
			Offset: vg.Length(float64(i)-center) * barWidth,
		}
		for j, n := range threads {
			v, ok := scaled.Value(n, op)
			if !ok {
				continue
			}
			s.Values[j] = v
			s.LabelPts = append(s.LabelPts, plotter.XY{X: float64(j), Y: v})
			s.Labels = append(s.Labels, unit.Format(v))
		}
		out = append(out, s)
	}
	return out
}

// yRange runs from 0 to headroom times the tallest bar, or to 1 when there
// is nothing above zero.
func yRange(scaled *analysis.PivotTable) (float64, float64) {
	if top := scaled.Max(); top > 0 {
		return 0, top * headroom
	}
	return 0, 1
}

func encodePNG(p *plot.Plot, spec ChartSpec) ([]byte, error) {
	dpi := spec.DPI
	if dpi <= 0 {
		dpi = vgimg.DefaultDPI
	}
	c := vgimg.NewWith(vgimg.UseWH(spec.Width, spec.Height), vgimg.UseDPI(dpi), vgimg.UseBackgroundColor(color.White))
	p.Draw(draw.New(c))

	buf := new(bytes.Buffer)
	png := vgimg.PngCanvas{Canvas: c}
	if _, err := png.WriteTo(buf); err != nil {
		return nil, fmt.Errorf("failed to write plot to buffer: %w", err)
	}
	return buf.Bytes(), nil
}

// SaveImage writes an encoded chart to path, creating parent directories and
// replacing any existing file.
func SaveImage(path string, img []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	if err := os.WriteFile(path, img, 0o644); err != nil {
		return fmt.Errorf("failed to write image '%s': %w", path, err)
	}
	return nil
}
