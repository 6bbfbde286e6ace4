package analysis

import "sort"

// Operation is the canonical name of a profiled allocator operation.
type Operation string

const (
	OpMalloc   Operation = "malloc"
	OpTLSAlloc Operation = "TLSAlloc"
	OpFree     Operation = "free"
	OpTLSFree  Operation = "TLSFree"
	OpUnknown  Operation = ""
)

// Operations lists the canonical operations in chart order.
var Operations = []Operation{OpMalloc, OpTLSAlloc, OpFree, OpTLSFree}

// rawOperations maps the lower-cased token the profiler writes to its operation.
var rawOperations = map[string]Operation{
	"new":    OpMalloc,
	"alloc":  OpTLSAlloc,
	"delete": OpFree,
	"free":   OpTLSFree,
}

// rawOperationOrder fixes the prefix match order; no raw name prefixes another.
var rawOperationOrder = []string{"delete", "alloc", "free", "new"}

// Observation is a parsed record with its thread count and operation resolved.
type Observation struct {
	Name           string
	Threads        int
	Op             Operation // OpUnknown if the name did not map to an operation
	Average        float64
	Total          float64
	TotalPerThread float64
	Calls          int // 0 if the profile has no Calls column
}

// PivotTable holds one value per (thread count, operation) pair.
type PivotTable struct {
	threads []int
	cells   map[int]map[Operation]float64
}

func newPivotTable() *PivotTable {
	return &PivotTable{cells: make(map[int]map[Operation]float64)}
}

// addThreads registers a thread count even if it ends up with no cells.
func (t *PivotTable) addThreads(threads int) {
	if _, ok := t.cells[threads]; ok {
		return
	}
	t.cells[threads] = make(map[Operation]float64)
	t.threads = append(t.threads, threads)
	sort.Ints(t.threads)
}

// Threads returns the thread counts in ascending order.
func (t *PivotTable) Threads() []int {
	out := make([]int, len(t.threads))
	copy(out, t.threads)
	return out
}

// Value returns the cell for threads and op.
func (t *PivotTable) Value(threads int, op Operation) (float64, bool) {
	row, ok := t.cells[threads]
	if !ok {
		return 0, false
	}
	v, ok := row[op]
	return v, ok
}

// Operations returns the canonical operations that have at least one cell.
func (t *PivotTable) Operations() []Operation {
	var ops []Operation
	for _, op := range Operations {
		for _, row := range t.cells {
			if _, ok := row[op]; ok {
				ops = append(ops, op)
				break
			}
		}
	}
	return ops
}

// Max returns the largest cell value, or 0 for a table without cells.
func (t *PivotTable) Max() float64 {
	m := 0.0
	first := true
	for _, row := range t.cells {
		for _, v := range row {
			if first || v > m {
				m = v
				first = false
			}
		}
	}
	return m
}

// Len returns the number of populated cells.
func (t *PivotTable) Len() int {
	n := 0
	for _, row := range t.cells {
		n += len(row)
	}
	return n
}

// Scale returns a copy of the table with every cell multiplied by factor.
func (t *PivotTable) Scale(factor float64) *PivotTable {
	out := newPivotTable()
	for _, threads := range t.threads {
		out.addThreads(threads)
		for op, v := range t.cells[threads] {
			out.cells[threads][op] = v * factor
		}
	}
	return out
}
