package pipeline

import (
	"errors"
	"fmt"
	"sync"

	"github.com/forest-guardian/urban-heat-island/internal/imagery"
	"github.com/forest-guardian/urban-heat-island/internal/indices"
	"github.com/forest-guardian/urban-heat-island/internal/lst"
	"github.com/forest-guardian/urban-heat-island/internal/raster"
	"github.com/forest-guardian/urban-heat-island/internal/sensor"
	"github.com/gammazero/workerpool"
	"github.com/schollz/progressbar/v3"
	"github.com/sirupsen/logrus"
)

// Deriver turns a raw image into the bands that get composited.
type Deriver struct {
	Profile   sensor.Profile
	Indices   []string
	Retriever *lst.Retriever
}

// Derive returns a new image holding the requested indices and, when a
// retriever is set, the LST band.
func (d *Deriver) Derive(img *imagery.MultibandImage) (*imagery.MultibandImage, error) {
	bands := make(map[string]*raster.Raster, len(d.Indices)+1)
	for _, name := range d.Indices {
		r, err := indices.Compute(img, d.Profile, name)
		if err != nil {
			return nil, fmt.Errorf("failed to compute %s: %w", name, err)
		}
		bands[name] = r
	}
	if d.Retriever != nil {
		t, err := d.Retriever.Retrieve(img, bands[indices.NDVI])
		if err != nil {
			return nil, fmt.Errorf("failed to retrieve %s: %w", lst.Band, err)
		}
		bands[lst.Band] = t
	}
	return img.WithBands(bands)
}

// deriveAll maps Derive over the collection on a worker pool. Results keep
// collection order. Images missing a profile band are dropped under the skip
// policy; any other failure aborts.
func (p *Pipeline) deriveAll(d *Deriver, c imagery.Collection) (imagery.Collection, []string, error) {
	derived := make([]*imagery.MultibandImage, len(c))
	errs := make([]error, len(c))

	bar := p.progress(len(c), "Deriving bands")
	var mu sync.Mutex
	wp := workerpool.New(p.Config.Workers)
	for i, img := range c {
		wp.Submit(func() {
			derived[i], errs[i] = d.Derive(img)
			mu.Lock()
			bar.Add(1)
			mu.Unlock()
		})
	}
	wp.StopWait()

	var (
		out     []*imagery.MultibandImage
		skipped []string
	)
	for i, err := range errs {
		if err == nil {
			out = append(out, derived[i])
			continue
		}
		var missing *indices.MissingBandError
		if errors.As(err, &missing) && p.skipMissing() {
			p.Logger.WithFields(logrus.Fields{"image": c[i].ID, "band": missing.Band}).Warn("skipping image: ", err)
			skipped = append(skipped, c[i].ID)
			continue
		}
		return nil, nil, fmt.Errorf("image %s: %w", c[i].ID, err)
	}
	return imagery.Collection(out), skipped, nil
}

func (p *Pipeline) progress(n int, description string) *progressbar.ProgressBar {
	if p.Progress {
		return progressbar.Default(int64(n), description)
	}
	return progressbar.DefaultSilent(int64(n), description)
}
