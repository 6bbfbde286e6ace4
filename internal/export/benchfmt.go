// Package export writes classified profile observations in the Go benchmark
// format so they can be compared with benchstat.
package export

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/perf/benchfmt"

	"github.com/user/profile_plot_go/internal/analysis"
)

// Units of the exported values.
const (
	UnitAverage        = "ns/op"
	UnitTotalPerThread = "ms-total/thread"
)

// benchName capitalizes the operation so the line reads BenchmarkMalloc/....
func benchName(o analysis.Observation) string {
	op := string(o.Op)
	return fmt.Sprintf("%s%s/threads=%d", strings.ToUpper(op[:1]), op[1:], o.Threads)
}

// Result converts one observation to a benchmark result named
// "<Op>/threads=<n>". Iters is the call count, or 1 when unknown.
// The observation must have a recognized operation.
func Result(o analysis.Observation) *benchfmt.Result {
	iters := o.Calls
	if iters <= 0 {
		iters = 1
	}
	return &benchfmt.Result{
		Name:  benchfmt.Name(benchName(o)),
		Iters: iters,
		Values: []benchfmt.Value{
			{Value: o.Average * 1e6, Unit: UnitAverage},
			{Value: o.TotalPerThread, Unit: UnitTotalPerThread},
		},
	}
}

// WriteBenchmarks writes every observation with a recognized operation and
// returns how many were written.
func WriteBenchmarks(w io.Writer, obs []analysis.Observation) (int, error) {
	bw := benchfmt.NewWriter(w)
	n := 0
	for _, o := range obs {
		if o.Op == analysis.OpUnknown {
			continue
		}
		if err := bw.Write(Result(o)); err != nil {
			return n, fmt.Errorf("failed to write benchmark %s: %w", o.Name, err)
		}
		n++
	}
	return n, nil
}

// WriteBenchmarkFile writes the observations to path, creating its directory.
func WriteBenchmarkFile(path string, obs []analysis.Observation) (int, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return 0, fmt.Errorf("failed to create export directory: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return 0, fmt.Errorf("failed to create benchmark file '%s': %w", path, err)
	}
	n, err := WriteBenchmarks(f, obs)
	if cerr := f.Close(); err == nil && cerr != nil {
		err = fmt.Errorf("failed to close benchmark file '%s': %w", path, cerr)
	}
	return n, err
}
