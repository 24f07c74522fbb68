package sample

import (
	"fmt"
)

// Row is one sampled pixel: its position on the composite grid, the
// geographic coordinate of its centre and one value per sample column.
type Row struct {
	X      int       `json:"x"`
	Y      int       `json:"y"`
	Lon    float64   `json:"lon"`
	Lat    float64   `json:"lat"`
	Values []float64 `json:"values"`
}

// Sample is a table of rows sharing the same columns.
type Sample struct {
	Columns []string `json:"columns"`
	Rows    []Row    `json:"rows"`
}

func (s *Sample) Len() int {
	return len(s.Rows)
}

func (s *Sample) ColumnIndex(name string) (int, error) {
	for i, c := range s.Columns {
		if c == name {
			return i, nil
		}
	}
	return -1, fmt.Errorf("sample has no column %q (columns: %v)", name, s.Columns)
}

// Column returns a copy of the values of the named column in row order.
func (s *Sample) Column(name string) ([]float64, error) {
	idx, err := s.ColumnIndex(name)
	if err != nil {
		return nil, err
	}
	out := make([]float64, len(s.Rows))
	for i, row := range s.Rows {
		out[i] = row.Values[idx]
	}
	return out, nil
}

// Pairs returns the x and y columns together, ready for correlation.
func (s *Sample) Pairs(x, y string) ([]float64, []float64, error) {
	xs, err := s.Column(x)
	if err != nil {
		return nil, nil, err
	}
	ys, err := s.Column(y)
	if err != nil {
		return nil, nil, err
	}
	return xs, ys, nil
}
