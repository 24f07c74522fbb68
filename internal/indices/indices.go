package indices

import (
	"fmt"

	"github.com/forest-guardian/urban-heat-island/internal/imagery"
	"github.com/forest-guardian/urban-heat-island/internal/raster"
	"github.com/forest-guardian/urban-heat-island/internal/sensor"
)

// Logical names of the derived bands, identical for every sensor.
const (
	NDVI = "NDVI"
	NDBI = "NDBI"
	NDWI = "NDWI"
)

var All = []string{NDVI, NDBI, NDWI}

// MissingBandError reports a profile band that the image does not carry.
type MissingBandError struct {
	ImageID string
	Role    sensor.Role
	Band    string
}

func (e *MissingBandError) Error() string {
	if e.Band == "" {
		return fmt.Sprintf("image %s: sensor profile has no %s band", e.ImageID, e.Role)
	}
	return fmt.Sprintf("image %s: missing %s band %s", e.ImageID, e.Role, e.Band)
}

// RoleBand returns the image band playing role under profile.
func RoleBand(img *imagery.MultibandImage, profile sensor.Profile, role sensor.Role) (*raster.Raster, error) {
	name, ok := profile.Band(role)
	if !ok {
		return nil, &MissingBandError{ImageID: img.ID, Role: role}
	}
	band, ok := img.Band(name)
	if !ok {
		return nil, &MissingBandError{ImageID: img.ID, Role: role, Band: name}
	}
	return band, nil
}

func normalizedDifference(img *imagery.MultibandImage, profile sensor.Profile, a, b sensor.Role) (*raster.Raster, error) {
	ra, err := RoleBand(img, profile, a)
	if err != nil {
		return nil, err
	}
	rb, err := RoleBand(img, profile, b)
	if err != nil {
		return nil, err
	}
	return raster.NormalizedDifference(ra, rb)
}

func ComputeNDVI(img *imagery.MultibandImage, profile sensor.Profile) (*raster.Raster, error) {
	return normalizedDifference(img, profile, sensor.NIR, sensor.Red)
}

func ComputeNDBI(img *imagery.MultibandImage, profile sensor.Profile) (*raster.Raster, error) {
	return normalizedDifference(img, profile, sensor.SWIR, sensor.NIR)
}

// ComputeNDWI uses the band pair declared by the profile's NDWI variant.
func ComputeNDWI(img *imagery.MultibandImage, profile sensor.Profile) (*raster.Raster, error) {
	switch profile.NDWI {
	case sensor.NDWIGreenNIR:
		return normalizedDifference(img, profile, sensor.Green, sensor.NIR)
	case sensor.NDWINIRSWIR:
		return normalizedDifference(img, profile, sensor.NIR, sensor.SWIR)
	default:
		return nil, fmt.Errorf("sensor %s: unsupported NDWI variant %s", profile.Name, profile.NDWI)
	}
}

// Compute returns the named index for img.
func Compute(img *imagery.MultibandImage, profile sensor.Profile, name string) (*raster.Raster, error) {
	switch name {
	case NDVI:
		return ComputeNDVI(img, profile)
	case NDBI:
		return ComputeNDBI(img, profile)
	case NDWI:
		return ComputeNDWI(img, profile)
	default:
		return nil, fmt.Errorf("unknown index %q", name)
	}
}

// Calculate returns a new image holding the requested indices under their
// logical names. With no names, all indices are computed.
func Calculate(img *imagery.MultibandImage, profile sensor.Profile, names ...string) (*imagery.MultibandImage, error) {
	if len(names) == 0 {
		names = All
	}
	bands := make(map[string]*raster.Raster, len(names))
	for _, name := range names {
		r, err := Compute(img, profile, name)
		if err != nil {
			return nil, fmt.Errorf("failed to compute %s: %w", name, err)
		}
		bands[name] = r
	}
	return img.WithBands(bands)
}

func IsIndex(name string) bool {
	for _, n := range All {
		if n == name {
			return true
		}
	}
	return false
}
