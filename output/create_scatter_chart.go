package output

import (
	"fmt"
	"image/color"
	"os"
	"path/filepath"

	"github.com/forest-guardian/urban-heat-island/internal/correlation"
	"github.com/forest-guardian/urban-heat-island/internal/sample"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

// CreateScatterChart plots column y against column x with the least-squares
// trend line and saves it to outputPath. The format follows the extension.
func CreateScatterChart(s *sample.Sample, res correlation.Result, trend correlation.Trend, outputPath string) error {
	xs, ys, err := s.Pairs(res.X, res.Y)
	if err != nil {
		return err
	}
	if len(xs) == 0 {
		return fmt.Errorf("no sample rows to plot")
	}

	p := plot.New()
	p.Title.Text = fmt.Sprintf("%s vs %s (R² = %.3f, n = %d)", res.Y, res.X, res.R2, res.N)
	p.X.Label.Text = res.X
	p.Y.Label.Text = res.Y
	p.Add(plotter.NewGrid())

	pts := make(plotter.XYs, len(xs))
	for i := range xs {
		pts[i].X = xs[i]
		pts[i].Y = ys[i]
	}
	scatter, err := plotter.NewScatter(pts)
	if err != nil {
		return fmt.Errorf("failed to create scatter: %w", err)
	}
	scatter.GlyphStyle.Radius = vg.Points(1.5)
	scatter.GlyphStyle.Color = color.RGBA{R: 30, G: 90, B: 200, A: 255}

	x0, x1 := floats.Min(xs), floats.Max(xs)
	line, err := plotter.NewLine(plotter.XYs{
		{X: x0, Y: trend.At(x0)},
		{X: x1, Y: trend.At(x1)},
	})
	if err != nil {
		return fmt.Errorf("failed to create trend line: %w", err)
	}
	line.LineStyle.Width = vg.Points(2)
	line.LineStyle.Color = color.RGBA{R: 220, A: 255}

	p.Add(scatter, line)
	p.Legend.Add("samples", scatter)
	p.Legend.Add(fmt.Sprintf("y = %.3fx + %.3f", trend.Slope, trend.Intercept), line)

	if err := os.MkdirAll(filepath.Dir(outputPath), 0755); err != nil {
		return err
	}
	if err := p.Save(6*vg.Inch, 4*vg.Inch, outputPath); err != nil {
		return fmt.Errorf("failed to save chart: %w", err)
	}
	return nil
}
