package imagery

import (
	"context"
	"errors"
	"time"

	"github.com/forest-guardian/urban-heat-island/internal/region"
)

// Query selects images from a named source intersecting a region within a
// date window. Only images whose cloud fraction is strictly below
// MaxCloudFraction are kept.
type Query struct {
	Source           string
	Region           region.Region
	Start            time.Time
	End              time.Time
	MaxCloudFraction float64
}

func (q Query) Validate() error {
	if q.Source == "" {
		return errors.New("catalog query: source is required")
	}
	if q.Region.Geometry == nil {
		return errors.New("catalog query: region is required")
	}
	if q.Start.IsZero() || q.End.IsZero() {
		return errors.New("catalog query: start and end dates are required")
	}
	if q.End.Before(q.Start) {
		return errors.New("catalog query: end date is before start date")
	}
	if q.MaxCloudFraction <= 0 || q.MaxCloudFraction > 1 {
		return errors.New("catalog query: max cloud fraction must be within (0, 1]")
	}
	return nil
}

// Accepts reports whether image metadata satisfies the date and cloud filters.
func (q Query) Accepts(date time.Time, cloudFraction float64) bool {
	if date.Before(q.Start) || date.After(q.End) {
		return false
	}
	return cloudFraction < q.MaxCloudFraction
}

// Catalog returns the images matching a query ordered by acquisition date.
// An empty collection is a valid result.
type Catalog interface {
	Query(ctx context.Context, q Query) (Collection, error)
}

// StaticCatalog serves images held in memory, keyed by source name.
type StaticCatalog map[string]Collection

func (s StaticCatalog) Query(ctx context.Context, q Query) (Collection, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}
	var out []*MultibandImage
	for _, img := range s[q.Source] {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if !q.Accepts(img.Date, img.CloudFraction) {
			continue
		}
		if grid, ok := img.Grid(); ok && !q.Region.Intersects(grid) {
			continue
		}
		out = append(out, img)
	}
	return NewCollection(out...), nil
}
