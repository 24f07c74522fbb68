package sensor

import (
	"fmt"
	"sort"
	"strings"
)

type Role string

const (
	Red     Role = "red"
	NIR     Role = "nir"
	SWIR    Role = "swir"
	Green   Role = "green"
	Thermal Role = "thermal"
)

// NDWIVariant selects the band pair used for the water index.
type NDWIVariant int

const (
	// NDWIGreenNIR is McFeeters' NDWI, (Green - NIR) / (Green + NIR).
	NDWIGreenNIR NDWIVariant = iota
	// NDWINIRSWIR is Gao's NDWI, (NIR - SWIR) / (NIR + SWIR).
	NDWINIRSWIR
)

func (v NDWIVariant) String() string {
	switch v {
	case NDWIGreenNIR:
		return "green-nir"
	case NDWINIRSWIR:
		return "nir-swir"
	default:
		return fmt.Sprintf("NDWIVariant(%d)", int(v))
	}
}

// Second radiation constant in cm·K, matching a wavelength expressed in cm.
const RadiationConstantC2 = 1.4388

// Profile maps logical band roles to the band identifiers of one sensor
// family and carries the thermal calibration constants.
type Profile struct {
	Name  string
	Bands map[Role]string
	NDWI  NDWIVariant

	ThermalScale  float64
	ThermalOffset float64
	// Effective wavelength of the thermal band, in the unit of C2.
	ThermalWavelength float64
	C2                float64

	// Nominal pixel size in metres.
	Resolution float64
}

// Band returns the sensor band identifier for role.
func (p Profile) Band(role Role) (string, bool) {
	band, ok := p.Bands[role]
	return band, ok && band != ""
}

func (p Profile) HasThermal() bool {
	_, ok := p.Band(Thermal)
	return ok
}

var (
	Landsat8 = Profile{
		Name: "landsat8",
		Bands: map[Role]string{
			Green:   "SR_B3",
			Red:     "SR_B4",
			NIR:     "SR_B5",
			SWIR:    "SR_B6",
			Thermal: "ST_B10",
		},
		NDWI:              NDWIGreenNIR,
		ThermalScale:      0.00341802,
		ThermalOffset:     149.0,
		ThermalWavelength: 0.00115,
		C2:                RadiationConstantC2,
		Resolution:        30,
	}

	// Landsat 5 TM and Landsat 7 ETM+ share band numbering in Collection 2 Level-2.
	Landsat57 = Profile{
		Name: "landsat57",
		Bands: map[Role]string{
			Green:   "SR_B2",
			Red:     "SR_B3",
			NIR:     "SR_B4",
			SWIR:    "SR_B5",
			Thermal: "ST_B6",
		},
		NDWI:              NDWIGreenNIR,
		ThermalScale:      0.00341802,
		ThermalOffset:     149.0,
		ThermalWavelength: 0.001145,
		C2:                RadiationConstantC2,
		Resolution:        30,
	}

	Sentinel2 = Profile{
		Name: "sentinel2",
		Bands: map[Role]string{
			Green: "B3",
			Red:   "B4",
			NIR:   "B8",
			SWIR:  "B11",
		},
		NDWI:       NDWINIRSWIR,
		Resolution: 10,
	}
)

var profiles = map[string]Profile{
	Landsat8.Name:  Landsat8,
	"landsat9":     withName(Landsat8, "landsat9"),
	Landsat57.Name: Landsat57,
	Sentinel2.Name: Sentinel2,
}

func withName(p Profile, name string) Profile {
	p.Name = name
	return p
}

// Lookup returns the registered profile with the given name.
func Lookup(name string) (Profile, error) {
	p, ok := profiles[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return Profile{}, fmt.Errorf("unknown sensor profile %q (available: %s)", name, strings.Join(Names(), ", "))
	}
	return p, nil
}

func Names() []string {
	names := make([]string, 0, len(profiles))
	for name := range profiles {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
