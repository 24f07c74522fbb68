package imagery

import (
	"fmt"
	"sort"
	"time"

	"github.com/forest-guardian/urban-heat-island/internal/raster"
	"github.com/forest-guardian/urban-heat-island/internal/utils"
)

// MultibandImage is one acquisition: named bands on a shared grid plus its
// metadata. It is not modified once built.
type MultibandImage struct {
	ID            string                    `json:"id"`
	Source        string                    `json:"source"`
	Date          time.Time                 `json:"date"`
	CloudFraction float64                   `json:"cloud_fraction"`
	Bands         map[string]*raster.Raster `json:"bands"`
}

// NewMultibandImage validates that every band shares one grid.
func NewMultibandImage(id, source string, date time.Time, cloudFraction float64, bands map[string]*raster.Raster) (*MultibandImage, error) {
	var ref *raster.Raster
	for _, name := range sortedNames(bands) {
		band := bands[name]
		if band == nil {
			return nil, fmt.Errorf("image %s: band %s is nil", id, name)
		}
		if ref == nil {
			ref = band
			continue
		}
		if err := raster.CheckAligned("image "+id, ref, band); err != nil {
			return nil, err
		}
	}
	return &MultibandImage{
		ID:            id,
		Source:        source,
		Date:          date,
		CloudFraction: cloudFraction,
		Bands:         bands,
	}, nil
}

func (m *MultibandImage) Band(name string) (*raster.Raster, bool) {
	r, ok := m.Bands[name]
	return r, ok && r != nil
}

// Grid returns the grid shared by the image bands.
func (m *MultibandImage) Grid() (raster.Grid, bool) {
	for _, name := range m.BandNames() {
		return m.Bands[name].Grid, true
	}
	return raster.Grid{}, false
}

func (m *MultibandImage) BandNames() []string {
	return sortedNames(m.Bands)
}

// WithBands returns a new image with the same metadata holding only bands.
func (m *MultibandImage) WithBands(bands map[string]*raster.Raster) (*MultibandImage, error) {
	return NewMultibandImage(m.ID, m.Source, m.Date, m.CloudFraction, bands)
}

func sortedNames(bands map[string]*raster.Raster) []string {
	names := make([]string, 0, len(bands))
	for name := range bands {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Collection is an ordered sequence of images, oldest first.
type Collection []*MultibandImage

// NewCollection copies images into a collection ordered by acquisition date.
func NewCollection(images ...*MultibandImage) Collection {
	c := make(Collection, len(images))
	copy(c, images)
	utils.SortByDate(c, func(m *MultibandImage) time.Time { return m.Date }, true)
	return c
}

// Merge returns a new collection holding the images of c and others in date order.
func (c Collection) Merge(others ...Collection) Collection {
	all := append([]*MultibandImage{}, c...)
	for _, o := range others {
		all = append(all, o...)
	}
	return NewCollection(all...)
}

// Select returns the named band of every image, in collection order.
func (c Collection) Select(band string) ([]*raster.Raster, error) {
	out := make([]*raster.Raster, 0, len(c))
	for _, img := range c {
		r, ok := img.Band(band)
		if !ok {
			return nil, fmt.Errorf("image %s has no band %s", img.ID, band)
		}
		out = append(out, r)
	}
	return out, nil
}

func (c Collection) Dates() []time.Time {
	dates := make([]time.Time, len(c))
	for i, img := range c {
		dates[i] = img.Date
	}
	return dates
}
