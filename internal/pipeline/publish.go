package pipeline

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/forest-guardian/urban-heat-island/internal/config"
	"github.com/forest-guardian/urban-heat-island/internal/correlation"
	"github.com/forest-guardian/urban-heat-island/internal/imagery"
	"github.com/forest-guardian/urban-heat-island/internal/notification"
	"github.com/forest-guardian/urban-heat-island/internal/store"
	"github.com/forest-guardian/urban-heat-island/output"
	"github.com/sirupsen/logrus"
)

// Exporter writes a composite to a file destination and returns its location.
type Exporter interface {
	Export(img *imagery.MultibandImage, name string) (string, error)
}

// Publisher hands run results to the export sink, renderers, database and
// reporter. Every collaborator is optional.
type Publisher struct {
	Exporter Exporter
	Store    *store.Store
	Reporter notification.Reporter
	Logger   logrus.FieldLogger
}

// Outputs lists the files and records a publish produced.
type Outputs struct {
	RunID     string
	Composite string
	Maps      []string
	Chart     string
	SampleCSV string
	Summary   string
}

func (pub *Publisher) Publish(ctx context.Context, cfg *config.Config, res *Result) (*Outputs, error) {
	out := &Outputs{}
	base := filepath.Join(cfg.Export.Dir, cfg.Name)

	if pub.Exporter != nil {
		path, err := pub.Exporter.Export(res.Composite, cfg.Name)
		if err != nil {
			return nil, fmt.Errorf("failed to export composite: %w", err)
		}
		out.Composite = path
	}

	if cfg.Export.Maps {
		for _, band := range res.Composite.BandNames() {
			path := fmt.Sprintf("%s_%s.png", base, strings.ToLower(band))
			if err := output.CreateMapImage(res.Composite.Bands[band], band, path, 1); err != nil {
				return nil, err
			}
			out.Maps = append(out.Maps, path)
		}
	}
	if cfg.Export.Chart {
		out.Chart = fmt.Sprintf("%s_%s_%s.png", base, strings.ToLower(res.Correlation.X), strings.ToLower(res.Correlation.Y))
		if err := output.CreateScatterChart(res.Filtered, res.Correlation, res.Trend, out.Chart); err != nil {
			return nil, err
		}
	}

	out.SampleCSV = base + "_sample.csv"
	if err := output.CreateSampleCSV(res.Filtered, out.SampleCSV); err != nil {
		return nil, err
	}
	out.Summary = base + "_correlation.csv"
	if err := output.CreateCorrelationCSV([]correlation.Result{res.Correlation}, out.Summary); err != nil {
		return nil, err
	}

	if pub.Store != nil {
		id, err := pub.record(ctx, cfg, res)
		if err != nil {
			return nil, err
		}
		out.RunID = id
	}

	if pub.Reporter != nil {
		label := fmt.Sprintf("%s (%s, %s to %s)", cfg.Name, cfg.Profile().Name,
			cfg.Start.Format(config.DateLayout), cfg.End.Format(config.DateLayout))
		if err := pub.Reporter.Correlation(label, res.Correlation); err != nil && pub.Logger != nil {
			pub.Logger.WithError(err).Warn("failed to report correlation")
		}
	}
	return out, nil
}

func (pub *Publisher) record(ctx context.Context, cfg *config.Config, res *Result) (string, error) {
	id, err := pub.Store.CreateRun(ctx, store.Run{
		Name:   cfg.Name,
		Sensor: cfg.Profile().Name,
		Region: res.Region.Name,
		Start:  cfg.Start.Time,
		End:    cfg.End.Time,
		Images: res.Images,
	})
	if err != nil {
		return "", err
	}
	if err := pub.Store.SaveSample(ctx, id, res.Filtered); err != nil {
		return "", fmt.Errorf("failed to save sample: %w", err)
	}
	if err := pub.Store.SaveCorrelation(ctx, id, res.Correlation); err != nil {
		return "", err
	}
	return id, nil
}
