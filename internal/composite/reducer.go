package composite

import (
	"fmt"
	"sort"
	"strings"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Reducer collapses the valid observations of one pixel into a single value.
// values is never empty and may be reordered by the reducer.
type Reducer func(values []float64) float64

const (
	ReducerMedian = "median"
	ReducerMean   = "mean"
	ReducerMin    = "min"
	ReducerMax    = "max"
)

var reducers = map[string]Reducer{
	ReducerMedian: Median,
	ReducerMean:   Mean,
	ReducerMin:    floats.Min,
	ReducerMax:    floats.Max,
}

// Median of an even count is the mean of the two central order statistics.
func Median(values []float64) float64 {
	sort.Float64s(values)
	n := len(values)
	if n%2 == 1 {
		return values[n/2]
	}
	return (values[n/2-1] + values[n/2]) / 2
}

func Mean(values []float64) float64 {
	return stat.Mean(values, nil)
}

// ParseReducer returns the reducer registered under name. An empty name
// selects the median.
func ParseReducer(name string) (Reducer, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		name = ReducerMedian
	}
	r, ok := reducers[name]
	if !ok {
		return nil, fmt.Errorf("unknown reducer %q", name)
	}
	return r, nil
}

func ReducerNames() []string {
	names := make([]string, 0, len(reducers))
	for name := range reducers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
