package catalog

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/forest-guardian/urban-heat-island/internal/imagery"
	"github.com/forest-guardian/urban-heat-island/internal/utils"
	"github.com/gocarina/gocsv"
)

// ManifestFile is the name of the index expected at the root of a catalog directory.
const ManifestFile = "manifest.csv"

const dateLayout = "2006-01-02"

// Entry is one manifest row. Bands lists the band names of the GeoTIFF in
// file order, separated by "|". Relative paths are resolved against the
// catalog directory.
type Entry struct {
	Source        string  `csv:"source"`
	Date          string  `csv:"date"`
	CloudFraction float64 `csv:"cloud_fraction"`
	Path          string  `csv:"path"`
	Bands         string  `csv:"bands"`
}

func (e Entry) AcquiredAt() (time.Time, error) {
	t, err := time.Parse(dateLayout, strings.TrimSpace(e.Date))
	if err != nil {
		return time.Time{}, fmt.Errorf("manifest entry %s: invalid date %q", e.Path, e.Date)
	}
	return t, nil
}

func (e Entry) BandNames() []string {
	var out []string
	for _, b := range strings.Split(e.Bands, "|") {
		if b = strings.TrimSpace(b); b != "" {
			out = append(out, b)
		}
	}
	return out
}

// ID is the file name without extension.
func (e Entry) ID() string {
	base := filepath.Base(e.Path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

func ReadManifest(path string) ([]Entry, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open manifest: %w", err)
	}
	defer file.Close()

	var entries []Entry
	if err := gocsv.UnmarshalFile(file, &entries); err != nil {
		return nil, fmt.Errorf("failed to parse manifest %s: %w", path, err)
	}
	return entries, nil
}

// Select returns the entries accepted by q's source, date and cloud filters,
// oldest first.
func Select(entries []Entry, q imagery.Query) ([]Entry, error) {
	var out []Entry
	for _, e := range entries {
		if e.Source != q.Source {
			continue
		}
		date, err := e.AcquiredAt()
		if err != nil {
			return nil, err
		}
		if q.Accepts(date, e.CloudFraction) {
			out = append(out, e)
		}
	}
	utils.SortByDate(out, func(e Entry) time.Time {
		date, _ := e.AcquiredAt()
		return date
	}, true)
	return out, nil
}

// Inventory groups entries of one source by acquisition date.
func Inventory(entries []Entry, source string) (map[time.Time][]Entry, error) {
	out := map[time.Time][]Entry{}
	for _, e := range entries {
		if source != "" && e.Source != source {
			continue
		}
		date, err := e.AcquiredAt()
		if err != nil {
			return nil, err
		}
		out[date] = append(out[date], e)
	}
	return out, nil
}

// InventoryDates returns the dates of an inventory in ascending order.
func InventoryDates(inv map[time.Time][]Entry) []time.Time {
	return utils.GetSortedKeys(inv, true)
}
