package lst

import (
	"errors"
	"fmt"

	"github.com/forest-guardian/urban-heat-island/internal/imagery"
	"github.com/forest-guardian/urban-heat-island/internal/indices"
	"github.com/forest-guardian/urban-heat-island/internal/raster"
	"github.com/forest-guardian/urban-heat-island/internal/sensor"
)

// Band is the logical name of the land surface temperature band, in Celsius.
const Band = "LST"

const kelvinToCelsius = 273.15

// Emissivity model coefficients: e = FV*vegetationCoefficient + soilEmissivity.
const (
	vegetationCoefficient = 0.004
	soilEmissivity        = 0.986
)

type EmissivityMode string

const (
	EmissivityConstant EmissivityMode = "constant"
	EmissivityNDVI     EmissivityMode = "ndvi"
)

// Emissivity selects how surface emissivity is estimated. Value is used by
// the constant mode; NDVIMin and NDVIMax are the bare-soil and full-vegetation
// NDVI thresholds of the NDVI mode.
type Emissivity struct {
	Mode    EmissivityMode
	Value   float64
	NDVIMin float64
	NDVIMax float64
}

func ConstantEmissivity(value float64) Emissivity {
	return Emissivity{Mode: EmissivityConstant, Value: value}
}

func NDVIEmissivity(ndviMin, ndviMax float64) Emissivity {
	return Emissivity{Mode: EmissivityNDVI, NDVIMin: ndviMin, NDVIMax: ndviMax}
}

// DefaultEmissivity is the NDVI model with 0.2/0.8 soil/vegetation thresholds.
func DefaultEmissivity() Emissivity {
	return NDVIEmissivity(0.2, 0.8)
}

func (e Emissivity) Validate() error {
	switch e.Mode {
	case EmissivityConstant:
		if e.Value <= 0 || e.Value > 1 {
			return fmt.Errorf("constant emissivity must be within (0, 1], got %v", e.Value)
		}
	case EmissivityNDVI:
		if e.NDVIMax <= e.NDVIMin {
			return fmt.Errorf("ndvi_max (%v) must be greater than ndvi_min (%v)", e.NDVIMax, e.NDVIMin)
		}
	default:
		return fmt.Errorf("unknown emissivity mode %q", e.Mode)
	}
	return nil
}

// BrightnessTemperature converts calibrated thermal counts to Kelvin.
func BrightnessTemperature(thermal *raster.Raster, profile sensor.Profile) *raster.Raster {
	return raster.Affine(thermal, profile.ThermalScale, profile.ThermalOffset)
}

// FractionalVegetation rescales NDVI between the soil and vegetation
// thresholds and clamps the result to [0, 1].
func FractionalVegetation(ndvi *raster.Raster, ndviMin, ndviMax float64) *raster.Raster {
	span := ndviMax - ndviMin
	return raster.Clamp(raster.Affine(ndvi, 1/span, -ndviMin/span), 0, 1)
}

func EmissivityFromNDVI(ndvi *raster.Raster, ndviMin, ndviMax float64) *raster.Raster {
	fv := FractionalVegetation(ndvi, ndviMin, ndviMax)
	return raster.Affine(fv, vegetationCoefficient, soilEmissivity)
}

// Invert applies the emissivity correction
//
//	LST = BT / (1 + (λ·BT / c2) · ln(ε)) − 273.15
//
// Pixels where BT or ε is NoData, ε <= 0, or the denominator is zero are NoData.
func Invert(bt, emissivity *raster.Raster, profile sensor.Profile) (*raster.Raster, error) {
	logE := raster.Log(emissivity)
	scaled := raster.Affine(bt, profile.ThermalWavelength/profile.C2, 0)
	correction, err := raster.Multiply(scaled, logE)
	if err != nil {
		return nil, err
	}
	denominator := raster.Affine(correction, 1, 1)
	kelvin, err := raster.Divide(bt, denominator)
	if err != nil {
		return nil, err
	}
	return raster.Affine(kelvin, 1, -kelvinToCelsius), nil
}

// Retriever estimates land surface temperature for images of one sensor.
type Retriever struct {
	Profile    sensor.Profile
	Emissivity Emissivity
}

func NewRetriever(profile sensor.Profile, emissivity Emissivity) (*Retriever, error) {
	if !profile.HasThermal() {
		return nil, fmt.Errorf("sensor %s has no thermal band", profile.Name)
	}
	if profile.C2 <= 0 {
		return nil, errors.New("sensor radiation constant c2 must be positive")
	}
	if err := emissivity.Validate(); err != nil {
		return nil, err
	}
	return &Retriever{Profile: profile, Emissivity: emissivity}, nil
}

// EmissivityFor builds the emissivity raster for img. ndvi may be nil, in
// which case it is computed from the image when the NDVI model is active.
func (r *Retriever) EmissivityFor(img *imagery.MultibandImage, grid raster.Grid, ndvi *raster.Raster) (*raster.Raster, error) {
	if r.Emissivity.Mode == EmissivityConstant {
		return raster.Fill(grid, r.Emissivity.Value), nil
	}
	if ndvi == nil {
		var err error
		ndvi, err = indices.ComputeNDVI(img, r.Profile)
		if err != nil {
			return nil, err
		}
	}
	return EmissivityFromNDVI(ndvi, r.Emissivity.NDVIMin, r.Emissivity.NDVIMax), nil
}

// Retrieve computes the LST band of img, reusing ndvi when it is not nil.
func (r *Retriever) Retrieve(img *imagery.MultibandImage, ndvi *raster.Raster) (*raster.Raster, error) {
	thermal, err := indices.RoleBand(img, r.Profile, sensor.Thermal)
	if err != nil {
		return nil, err
	}
	bt := BrightnessTemperature(thermal, r.Profile)
	emissivity, err := r.EmissivityFor(img, thermal.Grid, ndvi)
	if err != nil {
		return nil, err
	}
	return Invert(bt, emissivity, r.Profile)
}
