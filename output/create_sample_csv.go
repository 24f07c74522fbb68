package output

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/forest-guardian/urban-heat-island/internal/correlation"
	"github.com/forest-guardian/urban-heat-island/internal/sample"
	"github.com/gocarina/gocsv"
)

// SampleValue is one cell of a sample table in long format.
type SampleValue struct {
	Row   int     `csv:"row"`
	X     int     `csv:"x"`
	Y     int     `csv:"y"`
	Lon   float64 `csv:"lon"`
	Lat   float64 `csv:"lat"`
	Band  string  `csv:"band"`
	Value float64 `csv:"value"`
}

func LongFormat(s *sample.Sample) []SampleValue {
	out := make([]SampleValue, 0, len(s.Rows)*len(s.Columns))
	for i, row := range s.Rows {
		for j, band := range s.Columns {
			out = append(out, SampleValue{
				Row: i, X: row.X, Y: row.Y, Lon: row.Lon, Lat: row.Lat,
				Band: band, Value: row.Values[j],
			})
		}
	}
	return out
}

func CreateSampleCSV(s *sample.Sample, outputPath string) error {
	rows := LongFormat(s)
	return writeCSV(&rows, outputPath)
}

// CreateCorrelationCSV writes one summary line per result.
func CreateCorrelationCSV(results []correlation.Result, outputPath string) error {
	return writeCSV(&results, outputPath)
}

func writeCSV(rows interface{}, outputPath string) error {
	if err := os.MkdirAll(filepath.Dir(outputPath), 0755); err != nil {
		return err
	}
	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", outputPath, err)
	}
	defer file.Close()

	if err := gocsv.MarshalFile(rows, file); err != nil {
		return fmt.Errorf("failed to write %s: %w", outputPath, err)
	}
	return nil
}
