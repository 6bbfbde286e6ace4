// Package config holds the settings of a profile_plot run.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/hashicorp/go-hclog"
	"gopkg.in/yaml.v3"

	"github.com/user/profile_plot_go/internal/report"
)

// FileName is the optional settings file looked up in the base directory.
const FileName = "profile_plot.yaml"

// Config is the full set of run settings. Relative paths resolve against
// BaseDir.
type Config struct {
	BaseDir string `yaml:"-"`

	InputFile    string   `yaml:"input"`
	OutputDir    string   `yaml:"output_dir"`
	AverageImage string   `yaml:"average_image"`
	TotalImage   string   `yaml:"total_image"`
	Units        []string `yaml:"units"`
	ReportPDF    string   `yaml:"report_pdf"`   // empty disables the PDF report
	BenchExport  string   `yaml:"bench_export"` // empty disables the benchfmt export

	Chart ChartConfig `yaml:"chart"`

	LogLevel string `yaml:"log_level"`
}

// ChartConfig sizes the rendered images.
type ChartConfig struct {
	WidthInches  float64 `yaml:"width_inches"`
	HeightInches float64 `yaml:"height_inches"`
	DPI          int     `yaml:"dpi"`
}

// Default returns the settings used when no file is present.
func Default(baseDir string) *Config {
	return &Config{
		BaseDir:      baseDir,
		InputFile:    "profile_data.txt",
		OutputDir:    ".",
		AverageImage: "comparison_average_per_thread.png",
		TotalImage:   "comparison_total_per_thread.png",
		Units:        []string{"ns", "us", "ms"},
		ReportPDF:    "profile_report.pdf",
		BenchExport:  "profile_data.bench",
		Chart: ChartConfig{
			WidthInches:  10,
			HeightInches: 6,
			DPI:          300,
		},
		LogLevel: "info",
	}
}

// Load returns Default(baseDir) overlaid with FileName from baseDir when it
// exists.
func Load(baseDir string) (*Config, error) {
	cfg := Default(baseDir)

	path := filepath.Join(baseDir, FileName)
	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return cfg, cfg.Validate()
	case err != nil:
		return nil, fmt.Errorf("failed to read config '%s': %w", path, err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config '%s': %w", path, err)
	}
	cfg.BaseDir = baseDir
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config '%s': %w", path, err)
	}
	return cfg, nil
}

// Validate checks the settings that cannot be defaulted.
func (c *Config) Validate() error {
	if c.InputFile == "" {
		return errors.New("input file must be set")
	}
	if c.AverageImage == "" || c.TotalImage == "" {
		return errors.New("image names must be set")
	}
	if _, err := c.ParsedUnits(); err != nil {
		return err
	}
	if c.Chart.WidthInches <= 0 || c.Chart.HeightInches <= 0 {
		return fmt.Errorf("chart size must be positive, got %vx%v", c.Chart.WidthInches, c.Chart.HeightInches)
	}
	if c.Chart.DPI <= 0 {
		return fmt.Errorf("chart dpi must be positive, got %d", c.Chart.DPI)
	}
	if c.Level() == hclog.NoLevel {
		return fmt.Errorf("unknown log level %q", c.LogLevel)
	}
	return nil
}

// ParsedUnits resolves Units. An empty list is an error.
func (c *Config) ParsedUnits() ([]report.Unit, error) {
	if len(c.Units) == 0 {
		return nil, errors.New("at least one unit is required")
	}
	units := make([]report.Unit, 0, len(c.Units))
	for _, name := range c.Units {
		u, err := report.ParseUnit(name)
		if err != nil {
			return nil, err
		}
		units = append(units, u)
	}
	return units, nil
}

// Level is the hclog level named by LogLevel.
func (c *Config) Level() hclog.Level {
	return hclog.LevelFromString(c.LogLevel)
}

func (c *Config) resolve(p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(c.BaseDir, p)
}

func (c *Config) output(name string) string {
	if name == "" || filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(c.resolve(c.OutputDir), name)
}

// InputPath is the resolved profile table path.
func (c *Config) InputPath() string { return c.resolve(c.InputFile) }

// AverageImagePath is the base average chart path, before the unit suffix.
func (c *Config) AverageImagePath() string { return c.output(c.AverageImage) }

// TotalImagePath is the total-per-thread chart path.
func (c *Config) TotalImagePath() string { return c.output(c.TotalImage) }

// ReportPath is the PDF path, or "" when disabled.
func (c *Config) ReportPath() string { return c.output(c.ReportPDF) }

// BenchExportPath is the benchfmt export path, or "" when disabled.
func (c *Config) BenchExportPath() string { return c.output(c.BenchExport) }
