package analysis

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/user/profile_plot_go/internal/parser"
)

var (
	threadsPattern   = regexp.MustCompile(`^(\d+)`)
	operationPattern = regexp.MustCompile(`threads\s+([A-Za-z]+)`)
)

// ExtractThreads returns the thread count encoded as the leading digits of name.
func ExtractThreads(name string) (int, error) {
	match := threadsPattern.FindStringSubmatch(name)
	if len(match) < 2 {
		return 0, fmt.Errorf("could not extract thread count from name: %s", name)
	}
	n, err := strconv.Atoi(match[1])
	if err != nil {
		return 0, fmt.Errorf("could not convert thread count '%s' to int: %w", match[1], err)
	}
	return n, nil
}

// ExtractOperation returns the canonical operation named after "threads" in
// name. The token matches a raw operation name exactly, ignoring case, or
// starts with one followed by an upper-case letter, so "newAlloc" is malloc
// and "freeze" is unknown. The second result is false when nothing matches.
func ExtractOperation(name string) (Operation, bool) {
	match := operationPattern.FindStringSubmatch(name)
	if len(match) < 2 {
		return OpUnknown, false
	}
	token := match[1]
	lower := strings.ToLower(token)
	if op, ok := rawOperations[lower]; ok {
		return op, true
	}
	for _, raw := range rawOperationOrder {
		if strings.HasPrefix(lower, raw) && isUpperASCII(token[len(raw)]) {
			return rawOperations[raw], true
		}
	}
	return OpUnknown, false
}

func isUpperASCII(b byte) bool {
	return b >= 'A' && b <= 'Z'
}

// Classify resolves the thread count and operation of every record.
func Classify(records []parser.Record) ([]Observation, error) {
	out := make([]Observation, 0, len(records))
	for _, rec := range records {
		threads, err := ExtractThreads(rec.Name)
		if err != nil {
			return nil, err
		}
		if threads == 0 {
			return nil, fmt.Errorf("thread count must be positive in name: %s", rec.Name)
		}
		op, _ := ExtractOperation(rec.Name)

		obs := Observation{
			Name:           rec.Name,
			Threads:        threads,
			Op:             op,
			Average:        rec.Average,
			Total:          rec.Total,
			TotalPerThread: rec.Total / float64(threads),
		}
		if calls, ok := rec.Field(parser.ColumnCalls); ok {
			if n, err := strconv.Atoi(calls); err == nil {
				obs.Calls = n
			}
		}
		out = append(out, obs)
	}
	return out, nil
}

// BuildAverageTable pivots the observations on their average time.
func BuildAverageTable(obs []Observation) (*PivotTable, error) {
	return pivot(obs, func(o Observation) float64 { return o.Average })
}

// BuildTotalPerThreadTable pivots the observations on total time divided by
// the thread count.
func BuildTotalPerThreadTable(obs []Observation) (*PivotTable, error) {
	return pivot(obs, func(o Observation) float64 { return o.TotalPerThread })
}

func pivot(obs []Observation, value func(Observation) float64) (*PivotTable, error) {
	table := newPivotTable()
	for _, o := range obs {
		table.addThreads(o.Threads)
		if o.Op == OpUnknown {
			continue
		}
		row := table.cells[o.Threads]
		if _, dup := row[o.Op]; dup {
			return nil, fmt.Errorf("duplicate entry for %d threads, operation %s (%s)", o.Threads, o.Op, o.Name)
		}
		row[o.Op] = value(o)
	}
	return table, nil
}
