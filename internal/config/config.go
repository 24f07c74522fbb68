package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/forest-guardian/urban-heat-island/internal/composite"
	"github.com/forest-guardian/urban-heat-island/internal/imagery"
	"github.com/forest-guardian/urban-heat-island/internal/indices"
	"github.com/forest-guardian/urban-heat-island/internal/lst"
	"github.com/forest-guardian/urban-heat-island/internal/properties"
	"github.com/forest-guardian/urban-heat-island/internal/region"
	"github.com/forest-guardian/urban-heat-island/internal/sample"
	"github.com/forest-guardian/urban-heat-island/internal/sensor"
	"gopkg.in/yaml.v3"
)

const DateLayout = "2006-01-02"

// Missing band policies.
const (
	MissingBandSkip  = "skip"
	MissingBandAbort = "abort"
)

// Defaults taken from the reference Earth Engine runs.
const (
	DefaultMaxCloud       = 0.2
	DefaultSampleSize     = 2000
	DefaultSampleSeed     = 10
	DefaultSegments       = 64
	DefaultMaxPixels      = 1e13
	DefaultEmissivity     = 0.986
	DefaultNDVIMin        = 0.2
	DefaultNDVIMax        = 0.8
	DefaultExportSubdir   = "result"
	DefaultCatalogSubdir  = "catalog"
	DefaultDatabaseFile   = "runs.db"
	DefaultWorkerPoolSize = 4
)

// Date is a calendar day written as YYYY-MM-DD.
type Date struct {
	time.Time
}

func (d *Date) UnmarshalYAML(node *yaml.Node) error {
	t, err := time.Parse(DateLayout, strings.TrimSpace(node.Value))
	if err != nil {
		return fmt.Errorf("invalid date %q, expected YYYY-MM-DD", node.Value)
	}
	d.Time = t
	return nil
}

func (d Date) MarshalYAML() (interface{}, error) {
	return d.Format(DateLayout), nil
}

// Source is one catalog collection. Its own date window, when set, replaces
// the run window.
type Source struct {
	Name  string `yaml:"name"`
	Start *Date  `yaml:"start,omitempty"`
	End   *Date  `yaml:"end,omitempty"`
}

// Region is either a buffered point or a GeoJSON feature.
type Region struct {
	Name     string    `yaml:"name"`
	Center   []float64 `yaml:"center,omitempty"`
	BufferM  float64   `yaml:"buffer_m,omitempty"`
	Segments int       `yaml:"segments,omitempty"`
	GeoJSON  string    `yaml:"geojson,omitempty"`
	Key      string    `yaml:"key,omitempty"`
	Value    string    `yaml:"value,omitempty"`
}

type Emissivity struct {
	Mode    string   `yaml:"mode"`
	Value   *float64 `yaml:"value,omitempty"`
	NDVIMin float64  `yaml:"ndvi_min,omitempty"`
	NDVIMax float64  `yaml:"ndvi_max,omitempty"`
}

type Sample struct {
	Size int    `yaml:"size"`
	Seed *int64 `yaml:"seed"`
}

// SeedValue returns the configured seed, or the default when none is set.
func (s Sample) SeedValue() int64 {
	if s.Seed == nil {
		return DefaultSampleSeed
	}
	return *s.Seed
}

type Pair struct {
	X string `yaml:"x"`
	Y string `yaml:"y"`
}

type Export struct {
	Dir        string  `yaml:"dir"`
	Resolution float64 `yaml:"resolution"`
	MaxPixels  float64 `yaml:"max_pixels"`
	Maps       bool    `yaml:"maps"`
	Chart      bool    `yaml:"chart"`
}

// Config describes one analysis run.
type Config struct {
	Name        string            `yaml:"name"`
	Sensor      string            `yaml:"sensor"`
	Catalog     string            `yaml:"catalog"`
	Sources     []Source          `yaml:"sources"`
	Region      Region            `yaml:"region"`
	Start       Date              `yaml:"start"`
	End         Date              `yaml:"end"`
	MaxCloud    *float64          `yaml:"max_cloud,omitempty"`
	Emissivity  Emissivity        `yaml:"emissivity"`
	Reducer     string            `yaml:"reducer"`
	Bands       []string          `yaml:"bands"`
	Sample      Sample            `yaml:"sample"`
	Filters     []sample.Interval `yaml:"filters"`
	Correlate   Pair              `yaml:"correlate"`
	MissingBand string            `yaml:"missing_band"`
	Export      Export            `yaml:"export"`
	Cache       bool              `yaml:"cache"`
	Workers     int               `yaml:"workers"`
	Database    string            `yaml:"database"`
}

// Load reads, defaults and validates a run configuration.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	return Parse(data)
}

func Parse(data []byte) (*Config, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var cfg Config
	if err := dec.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) ApplyDefaults() {
	if c.Name == "" {
		c.Name = "run"
	}
	if c.Region.Name == "" {
		c.Region.Name = c.Name
	}
	if c.Region.Segments == 0 {
		c.Region.Segments = DefaultSegments
	}
	if c.MaxCloud == nil {
		v := DefaultMaxCloud
		c.MaxCloud = &v
	}
	if c.Emissivity.Mode == "" {
		c.Emissivity.Mode = string(lst.EmissivityNDVI)
	}
	switch lst.EmissivityMode(c.Emissivity.Mode) {
	case lst.EmissivityNDVI:
		if c.Emissivity.NDVIMin == 0 && c.Emissivity.NDVIMax == 0 {
			c.Emissivity.NDVIMin, c.Emissivity.NDVIMax = DefaultNDVIMin, DefaultNDVIMax
		}
	case lst.EmissivityConstant:
		if c.Emissivity.Value == nil {
			v := DefaultEmissivity
			c.Emissivity.Value = &v
		}
	}
	if c.Reducer == "" {
		c.Reducer = composite.ReducerMedian
	}
	if c.Correlate.X == "" && c.Correlate.Y == "" {
		c.Correlate = Pair{X: indices.NDVI, Y: lst.Band}
	}
	if len(c.Bands) == 0 {
		c.Bands = []string{c.Correlate.X, c.Correlate.Y}
	}
	if c.Sample.Size == 0 {
		c.Sample.Size = DefaultSampleSize
	}
	if c.Sample.Seed == nil {
		seed := int64(DefaultSampleSeed)
		c.Sample.Seed = &seed
	}
	if c.MissingBand == "" {
		c.MissingBand = MissingBandSkip
	}
	if c.Catalog == "" {
		c.Catalog = properties.DataPath(DefaultCatalogSubdir)
	}
	if c.Export.Dir == "" {
		c.Export.Dir = properties.DataPath(DefaultExportSubdir)
	}
	if c.Database == "" {
		c.Database = properties.DataPath(DefaultDatabaseFile)
	}
	if c.Export.MaxPixels == 0 {
		c.Export.MaxPixels = DefaultMaxPixels
	}
	if c.Workers == 0 {
		c.Workers = DefaultWorkerPoolSize
	}
}

// Validate rejects a configuration before any raster work starts.
func (c *Config) Validate() error {
	profile, err := sensor.Lookup(c.Sensor)
	if err != nil {
		return err
	}
	if len(c.Sources) == 0 {
		return errors.New("config: at least one source is required")
	}
	for _, s := range c.Sources {
		if s.Name == "" {
			return errors.New("config: source name is required")
		}
		start, end := c.window(s)
		if start.IsZero() || end.IsZero() {
			return fmt.Errorf("config: source %s has no date window", s.Name)
		}
		if end.Before(start) {
			return fmt.Errorf("config: source %s ends before it starts", s.Name)
		}
	}
	if err := c.Region.validate(); err != nil {
		return err
	}
	if mc := c.maxCloud(); mc <= 0 || mc > 1 {
		return fmt.Errorf("config: max_cloud must be within (0, 1], got %v", mc)
	}
	if err := c.EmissivityModel().Validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if _, err := composite.ParseReducer(c.Reducer); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	for _, band := range c.Bands {
		switch {
		case indices.IsIndex(band):
		case band == lst.Band:
			if !profile.HasThermal() {
				return fmt.Errorf("config: sensor %s has no thermal band, cannot derive %s", profile.Name, lst.Band)
			}
		default:
			return fmt.Errorf("config: unknown band %q", band)
		}
	}
	if !contains(c.Bands, c.Correlate.X) || !contains(c.Bands, c.Correlate.Y) {
		return fmt.Errorf("config: correlate pair %s/%s must be listed in bands %v", c.Correlate.X, c.Correlate.Y, c.Bands)
	}
	if c.Sample.Size < 1 {
		return fmt.Errorf("config: sample size must be at least 1, got %d", c.Sample.Size)
	}
	for _, f := range c.Filters {
		if err := f.Validate(); err != nil {
			return fmt.Errorf("config: %w", err)
		}
		if !contains(c.Bands, f.Column) {
			return fmt.Errorf("config: filter column %s is not a sampled band", f.Column)
		}
	}
	if c.MissingBand != MissingBandSkip && c.MissingBand != MissingBandAbort {
		return fmt.Errorf("config: missing_band must be %s or %s, got %q", MissingBandSkip, MissingBandAbort, c.MissingBand)
	}
	if c.Export.Resolution < 0 || c.Export.MaxPixels <= 0 {
		return errors.New("config: export resolution and max_pixels must be positive")
	}
	if c.Workers < 1 {
		return fmt.Errorf("config: workers must be at least 1, got %d", c.Workers)
	}
	return nil
}

func (r Region) validate() error {
	switch {
	case r.GeoJSON != "":
		return nil
	case len(r.Center) == 2:
		if r.BufferM <= 0 {
			return errors.New("config: region buffer_m must be positive")
		}
		return nil
	default:
		return errors.New("config: region needs either geojson or center [lon, lat] with buffer_m")
	}
}

// Build constructs the region value described by the configuration.
func (r Region) Build() (region.Region, error) {
	if r.GeoJSON != "" {
		reg, err := region.FromGeoJSON(r.GeoJSON, r.Key, r.Value)
		if err != nil {
			return region.Region{}, err
		}
		reg.Name = r.Name
		return reg, nil
	}
	return region.Buffered(r.Name, r.Center[0], r.Center[1], r.BufferM, r.Segments)
}

func (c *Config) window(s Source) (time.Time, time.Time) {
	start, end := c.Start.Time, c.End.Time
	if s.Start != nil {
		start = s.Start.Time
	}
	if s.End != nil {
		end = s.End.Time
	}
	return start, end
}

func (c *Config) maxCloud() float64 {
	if c.MaxCloud == nil {
		return DefaultMaxCloud
	}
	return *c.MaxCloud
}

func (c *Config) Profile() sensor.Profile {
	p, _ := sensor.Lookup(c.Sensor)
	return p
}

func (c *Config) EmissivityModel() lst.Emissivity {
	e := lst.Emissivity{
		Mode:    lst.EmissivityMode(c.Emissivity.Mode),
		NDVIMin: c.Emissivity.NDVIMin,
		NDVIMax: c.Emissivity.NDVIMax,
	}
	if c.Emissivity.Value != nil {
		e.Value = *c.Emissivity.Value
	}
	return e
}

func (c *Config) ReducerFunc() composite.Reducer {
	r, _ := composite.ParseReducer(c.Reducer)
	return r
}

// Queries returns one catalog query per source. The end date is inclusive.
func (c *Config) Queries(reg region.Region) []imagery.Query {
	out := make([]imagery.Query, 0, len(c.Sources))
	for _, s := range c.Sources {
		start, end := c.window(s)
		out = append(out, imagery.Query{
			Source:           s.Name,
			Region:           reg,
			Start:            start,
			End:              end.Add(24*time.Hour - time.Nanosecond),
			MaxCloudFraction: c.maxCloud(),
		})
	}
	return out
}

// NeedsLST reports whether the thermal retrieval has to run.
func (c *Config) NeedsLST() bool {
	return contains(c.Bands, lst.Band)
}

// IndexBands returns the requested normalized-difference bands.
func (c *Config) IndexBands() []string {
	var out []string
	for _, b := range c.Bands {
		if indices.IsIndex(b) {
			out = append(out, b)
		}
	}
	return out
}

// CompositeKey lists every parameter that changes the composite, including
// the missing-band policy that decides which images reach it.
func (c *Config) CompositeKey() []interface{} {
	params := []interface{}{c.Sensor, c.Catalog, c.Reducer, c.Bands, c.maxCloud(), c.EmissivityModel(), c.Region, c.MissingBand}
	for _, s := range c.Sources {
		start, end := c.window(s)
		params = append(params, s.Name, start.Format(DateLayout), end.Format(DateLayout))
	}
	return params
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}
