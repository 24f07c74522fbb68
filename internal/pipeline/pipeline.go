package pipeline

import (
	"context"
	"fmt"

	"github.com/forest-guardian/urban-heat-island/internal/cache"
	"github.com/forest-guardian/urban-heat-island/internal/composite"
	"github.com/forest-guardian/urban-heat-island/internal/config"
	"github.com/forest-guardian/urban-heat-island/internal/correlation"
	"github.com/forest-guardian/urban-heat-island/internal/imagery"
	"github.com/forest-guardian/urban-heat-island/internal/lst"
	"github.com/forest-guardian/urban-heat-island/internal/region"
	"github.com/forest-guardian/urban-heat-island/internal/sample"
	"github.com/sirupsen/logrus"
)

// Pipeline runs catalog query, derivation, compositing, sampling, filtering
// and correlation for one configuration.
type Pipeline struct {
	Config  *config.Config
	Catalog imagery.Catalog
	Logger  logrus.FieldLogger
	// Cache, when set and enabled in the configuration, stores clipped composites.
	Cache    cache.Cache[*cache.Composite]
	Progress bool
}

// Result holds everything a run produced.
type Result struct {
	Region      region.Region
	Images      int
	Skipped     []string
	CacheHit    bool
	Composite   *imagery.MultibandImage
	Sample      *sample.Sample
	Filtered    *sample.Sample
	Correlation correlation.Result
	Trend       correlation.Trend
}

func New(cfg *config.Config, catalog imagery.Catalog, logger logrus.FieldLogger) *Pipeline {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Pipeline{Config: cfg, Catalog: catalog, Logger: logger}
}

func (p *Pipeline) skipMissing() bool {
	return p.Config.MissingBand != config.MissingBandAbort
}

func (p *Pipeline) Run(ctx context.Context) (*Result, error) {
	cfg := p.Config
	reg, err := cfg.Region.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build region: %w", err)
	}
	res := &Result{Region: reg}

	res.Composite, err = p.composite(ctx, reg, res)
	if err != nil {
		return nil, err
	}

	sampler, err := sample.NewSampler(cfg.Sample.Size, cfg.Sample.SeedValue())
	if err != nil {
		return nil, err
	}
	res.Sample, err = sampler.Draw(res.Composite, reg, cfg.Bands)
	if err != nil {
		return nil, fmt.Errorf("failed to sample composite: %w", err)
	}
	res.Filtered, err = sample.Filter(cfg.Filters).Apply(res.Sample)
	if err != nil {
		return nil, fmt.Errorf("failed to filter sample: %w", err)
	}
	p.Logger.WithFields(logrus.Fields{"n": res.Sample.Len(), "kept": res.Filtered.Len()}).Info("sample drawn")

	res.Correlation, err = correlation.Correlate(res.Filtered, cfg.Correlate.X, cfg.Correlate.Y)
	if err != nil {
		return nil, err
	}
	res.Trend, err = correlation.FitTrend(res.Filtered, cfg.Correlate.X, cfg.Correlate.Y)
	if err != nil {
		return nil, err
	}
	return res, nil
}

// composite returns the clipped composite, from the cache when possible.
func (p *Pipeline) composite(ctx context.Context, reg region.Region, res *Result) (*imagery.MultibandImage, error) {
	cfg := p.Config
	useCache := cfg.Cache && p.Cache != nil
	var key string
	if useCache {
		key = p.Cache.GenerateKey(cfg.CompositeKey()...)
		if cached, ok := p.Cache.Get(key); ok && cached != nil && cached.Image != nil {
			p.Logger.WithField("key", key).Info("composite loaded from cache")
			res.CacheHit = true
			res.Images = cached.Images
			res.Skipped = cached.Skipped
			return cached.Image, nil
		}
	}

	collection, err := p.collect(ctx, reg)
	if err != nil {
		return nil, err
	}
	res.Images = len(collection)

	deriver, err := p.deriver()
	if err != nil {
		return nil, err
	}
	derived, skipped, err := p.deriveAll(deriver, collection)
	if err != nil {
		return nil, err
	}
	res.Skipped = skipped

	img, err := composite.CompositeRegion(derived, cfg.Bands, cfg.ReducerFunc(), reg)
	if err != nil {
		return nil, err
	}
	p.Logger.WithFields(logrus.Fields{"n": len(derived), "reducer": cfg.Reducer}).Info("composite built")

	if useCache {
		if err := p.Cache.Set(key, &cache.Composite{Image: img, Images: res.Images, Skipped: res.Skipped}); err != nil {
			p.Logger.WithError(err).Warn("failed to cache composite")
		}
	}
	return img, nil
}

// collect queries every configured source and merges the results by date.
func (p *Pipeline) collect(ctx context.Context, reg region.Region) (imagery.Collection, error) {
	var merged imagery.Collection
	for _, q := range p.Config.Queries(reg) {
		c, err := p.Catalog.Query(ctx, q)
		if err != nil {
			return nil, fmt.Errorf("failed to query %s: %w", q.Source, err)
		}
		p.Logger.WithFields(logrus.Fields{"source": q.Source, "n": len(c)}).Info("images found")
		merged = merged.Merge(c)
	}
	return merged, nil
}

func (p *Pipeline) deriver() (*Deriver, error) {
	cfg := p.Config
	d := &Deriver{Profile: cfg.Profile(), Indices: cfg.IndexBands()}
	if cfg.NeedsLST() {
		r, err := lst.NewRetriever(d.Profile, cfg.EmissivityModel())
		if err != nil {
			return nil, err
		}
		d.Retriever = r
	}
	return d, nil
}
