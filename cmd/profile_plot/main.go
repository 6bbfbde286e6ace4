// Command profile_plot reads profile_data.txt from the working directory and
// writes grouped bar charts comparing malloc/free with the TLS allocator
// across thread counts.
package main

import (
	"errors"
	"io"
	"io/fs"
	"os"

	"github.com/hashicorp/go-hclog"

	"github.com/user/profile_plot_go/internal/config"
)

func main() {
	baseDir, err := os.Getwd()
	if err != nil {
		hclog.Default().Error("cannot determine working directory", "error", err)
		os.Exit(1)
	}
	os.Exit(run(baseDir, os.Stderr))
}

// run executes one pipeline rooted at baseDir and returns the exit code.
func run(baseDir string, out io.Writer) int {
	logger := hclog.New(&hclog.LoggerOptions{
		Name:   "profile-plot",
		Level:  hclog.Info,
		Output: out,
	})

	cfg, err := config.Load(baseDir)
	if err != nil {
		logger.Error("error loading config", "error", err)
		return 1
	}
	logger.SetLevel(cfg.Level())

	if err := NewApp(cfg, logger).Run(); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			logger.Error("input file not found", "path", cfg.InputPath())
			return 1
		}
		logger.Error("profile plot failed", "error", err)
		return 1
	}
	return 0
}
