package sample

import "fmt"

// Interval keeps rows whose Column value lies in [Min, Max].
type Interval struct {
	Column string  `yaml:"column" json:"column"`
	Min    float64 `yaml:"min" json:"min"`
	Max    float64 `yaml:"max" json:"max"`
}

func (iv Interval) Validate() error {
	if iv.Column == "" {
		return fmt.Errorf("filter interval needs a column")
	}
	if iv.Max < iv.Min {
		return fmt.Errorf("filter %s: max %v is below min %v", iv.Column, iv.Max, iv.Min)
	}
	return nil
}

// Filter is a conjunction of closed intervals.
type Filter []Interval

// Apply returns a new sample holding the rows that satisfy every interval,
// in their original order. Surviving rows are shared, not copied.
func (f Filter) Apply(s *Sample) (*Sample, error) {
	cols := make([]int, len(f))
	for i, iv := range f {
		if err := iv.Validate(); err != nil {
			return nil, err
		}
		idx, err := s.ColumnIndex(iv.Column)
		if err != nil {
			return nil, err
		}
		cols[i] = idx
	}

	out := &Sample{Columns: s.Columns, Rows: make([]Row, 0, len(s.Rows))}
	for _, row := range s.Rows {
		keep := true
		for i, iv := range f {
			v := row.Values[cols[i]]
			if v < iv.Min || v > iv.Max {
				keep = false
				break
			}
		}
		if keep {
			out.Rows = append(out.Rows, row)
		}
	}
	return out, nil
}
