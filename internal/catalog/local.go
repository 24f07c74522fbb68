package catalog

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/forest-guardian/urban-heat-island/internal/imagery"
	"github.com/forest-guardian/urban-heat-island/internal/raster"
	"github.com/sirupsen/logrus"
)

// Reader loads the named bands of a raster file. Band i of the file is
// returned under bands[i].
type Reader interface {
	Read(path string, bands []string) (map[string]*raster.Raster, error)
}

// Local serves images listed in a directory's manifest.csv.
type Local struct {
	Dir    string
	Reader Reader
	Logger logrus.FieldLogger
}

func NewLocal(dir string, reader Reader, logger logrus.FieldLogger) *Local {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Local{Dir: dir, Reader: reader, Logger: logger}
}

func (l *Local) logger() logrus.FieldLogger {
	if l.Logger == nil {
		return logrus.StandardLogger()
	}
	return l.Logger
}

func (l *Local) Entries() ([]Entry, error) {
	return ReadManifest(filepath.Join(l.Dir, ManifestFile))
}

// Query loads every manifest image matching q whose footprint overlaps the
// query region. No match is an empty collection, not an error.
func (l *Local) Query(ctx context.Context, q imagery.Query) (imagery.Collection, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}
	entries, err := l.Entries()
	if err != nil {
		return nil, err
	}
	selected, err := Select(entries, q)
	if err != nil {
		return nil, err
	}

	images := make([]*imagery.MultibandImage, 0, len(selected))
	for _, e := range selected {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		img, err := l.load(e)
		if err != nil {
			return nil, err
		}
		grid, ok := img.Grid()
		if !ok || !q.Region.Intersects(grid) {
			l.logger().WithField("image", img.ID).Debug("image does not overlap region")
			continue
		}
		images = append(images, img)
	}
	l.logger().WithFields(logrus.Fields{"source": q.Source, "n": len(images)}).Info("catalog query")
	return imagery.NewCollection(images...), nil
}

func (l *Local) load(e Entry) (*imagery.MultibandImage, error) {
	date, err := e.AcquiredAt()
	if err != nil {
		return nil, err
	}
	path := e.Path
	if !filepath.IsAbs(path) {
		path = filepath.Join(l.Dir, path)
	}
	bands, err := l.Reader.Read(path, e.BandNames())
	if err != nil {
		return nil, fmt.Errorf("failed to read image %s: %w", e.ID(), err)
	}
	return imagery.NewMultibandImage(e.ID(), e.Source, date, e.CloudFraction, bands)
}
