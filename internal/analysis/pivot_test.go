package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/user/profile_plot_go/internal/parser"
)

func TestExtractThreads(t *testing.T) {
	n, err := ExtractThreads("16 threads Alloc100000")
	require.NoError(t, err)
	assert.Equal(t, 16, n)

	_, err = ExtractThreads("threads new")
	assert.Error(t, err)
}

func TestExtractOperation(t *testing.T) {
	tests := []struct {
		name   string
		want   Operation
		wantOK bool
	}{
		{"1 threads new100000", OpMalloc, true},
		{"2 threads Alloc100000", OpTLSAlloc, true},
		{"4 threads delete100000", OpFree, true},
		{"8 threads Free100000", OpTLSFree, true},
		{"4 threads newAlloc", OpMalloc, true},
		{"16 threads FREE", OpTLSFree, true},
		{"4 threads realloc", OpUnknown, false},
		{"4 threads freeze", OpUnknown, false},
		{"4 threads allocate", OpUnknown, false},
		{"4 threads newer", OpUnknown, false},
		{"4 threads deleted", OpUnknown, false},
		{"4 threads deleteTLS", OpFree, true},
		{"4 new", OpUnknown, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			op, ok := ExtractOperation(tt.name)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, op)
		})
	}
}

func sampleRecords() []parser.Record {
	return []parser.Record{
		{Name: "1 threads new100000", Average: 0.0004, Total: 0.04, Fields: map[string]string{"Calls": "100"}},
		{Name: "1 threads Alloc100000", Average: 0.0001, Total: 0.01},
		{Name: "4 threads delete100000", Average: 0.0005, Total: 0.2},
		{Name: "4 threads Free100000", Average: 0.00009, Total: 0.036},
		{Name: "8 threads realloc100000", Average: 0.1, Total: 1},
	}
}

func TestClassify(t *testing.T) {
	obs, err := Classify([]parser.Record{{Name: "4 threads newAlloc", Average: 0.002, Total: 0.048}})
	require.NoError(t, err)
	require.Len(t, obs, 1)
	assert.Equal(t, 4, obs[0].Threads)
	assert.Equal(t, OpMalloc, obs[0].Op)
	assert.Equal(t, 0.002, obs[0].Average)
	assert.Equal(t, 0.048, obs[0].Total)
	assert.InDelta(t, 0.012, obs[0].TotalPerThread, 1e-15)

	obs, err = Classify(sampleRecords())
	require.NoError(t, err)
	assert.Equal(t, 100, obs[0].Calls)
	assert.Equal(t, 0, obs[1].Calls)
	for _, o := range obs {
		assert.InDelta(t, o.Total/float64(o.Threads), o.TotalPerThread, 1e-15)
	}

	_, err = Classify([]parser.Record{{Name: "threads new"}})
	assert.Error(t, err)
	_, err = Classify([]parser.Record{{Name: "0 threads new"}})
	assert.Error(t, err)
}

func TestBuildAverageTable(t *testing.T) {
	obs, err := Classify(sampleRecords())
	require.NoError(t, err)

	table, err := BuildAverageTable(obs)
	require.NoError(t, err)

	// 8 threads only has an unknown operation but still shows up.
	assert.Equal(t, []int{1, 4, 8}, table.Threads())
	assert.Equal(t, Operations, table.Operations())
	assert.Equal(t, 4, table.Len())

	v, ok := table.Value(1, OpMalloc)
	assert.True(t, ok)
	assert.Equal(t, 0.0004, v)
	_, ok = table.Value(1, OpFree)
	assert.False(t, ok)
	_, ok = table.Value(8, OpMalloc)
	assert.False(t, ok)
	_, ok = table.Value(2, OpMalloc)
	assert.False(t, ok)

	assert.Equal(t, 0.0005, table.Max())

	again, err := BuildAverageTable(obs)
	require.NoError(t, err)
	assert.Equal(t, table, again)
}

func TestBuildTotalPerThreadTable(t *testing.T) {
	obs, err := Classify(sampleRecords())
	require.NoError(t, err)

	table, err := BuildTotalPerThreadTable(obs)
	require.NoError(t, err)

	v, ok := table.Value(4, OpFree)
	require.True(t, ok)
	assert.InDelta(t, 0.05, v, 1e-15)
	v, ok = table.Value(1, OpTLSAlloc)
	require.True(t, ok)
	assert.InDelta(t, 0.01, v, 1e-15)
}

func TestPivotDuplicate(t *testing.T) {
	obs, err := Classify([]parser.Record{
		{Name: "2 threads new10", Average: 1},
		{Name: "2 threads new20", Average: 2},
	})
	require.NoError(t, err)
	_, err = BuildAverageTable(obs)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate entry for 2 threads")
}

func TestPivotTableOperationsPartial(t *testing.T) {
	obs, err := Classify([]parser.Record{
		{Name: "2 threads Free10", Average: 1},
		{Name: "2 threads new10", Average: 2},
	})
	require.NoError(t, err)
	table, err := BuildAverageTable(obs)
	require.NoError(t, err)
	assert.Equal(t, []Operation{OpMalloc, OpTLSFree}, table.Operations())
}

func TestPivotTableScale(t *testing.T) {
	obs, err := Classify(sampleRecords())
	require.NoError(t, err)
	table, err := BuildAverageTable(obs)
	require.NoError(t, err)

	ns := table.Scale(1e6)
	us := table.Scale(1e3)
	assert.Equal(t, table.Threads(), ns.Threads())
	for _, threads := range table.Threads() {
		for _, op := range Operations {
			ms, ok := table.Value(threads, op)
			nsV, nsOK := ns.Value(threads, op)
			usV, usOK := us.Value(threads, op)
			assert.Equal(t, ok, nsOK)
			assert.Equal(t, ok, usOK)
			if ok {
				assert.InDelta(t, ms*1e6, nsV, 1e-9)
				assert.InDelta(t, ms*1e3, usV, 1e-12)
			}
		}
	}

	// Scale leaves the source untouched.
	v, _ := table.Value(1, OpMalloc)
	assert.Equal(t, 0.0004, v)
}

func TestPivotTableEmpty(t *testing.T) {
	table, err := BuildAverageTable(nil)
	require.NoError(t, err)
	assert.Empty(t, table.Threads())
	assert.Empty(t, table.Operations())
	assert.Equal(t, 0.0, table.Max())
}
