package properties

import (
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
)

func RootPath() string {
	if root := os.Getenv("ROOT_PATH"); root != "" {
		return root
	}
	return "."
}

// DataPath joins parts below <ROOT_PATH>/data.
func DataPath(parts ...string) string {
	return filepath.Join(append([]string{RootPath(), "data"}, parts...)...)
}

// LogLevel parses LOG_LEVEL, falling back to info.
func LogLevel() logrus.Level {
	level, err := logrus.ParseLevel(os.Getenv("LOG_LEVEL"))
	if err != nil {
		return logrus.InfoLevel
	}
	return level
}

func DiscordSuccessNotificationUrl() string {
	return os.Getenv("DISCORD_SUCCESS_NOTIFICATION_URL")
}

func DiscordErrorNotificationUrl() string {
	return os.Getenv("DISCORD_ERROR_NOTIFICATION_URL")
}

type Color struct {
	R, G, B uint8
}

var (
	Red    = Color{255, 0, 0}
	Yellow = Color{255, 255, 0}
	Green  = Color{0, 128, 0}
)

// Palette is a colour ramp stretched over [Min, Max].
type Palette struct {
	Min, Max float64
	Colors   []Color
}

// Palettes holds the map styling of every band the pipeline can render.
var Palettes = map[string]Palette{
	"NDVI": {Min: -1, Max: 1, Colors: []Color{Red, Yellow, Green}},
	"NDWI": {Min: -1, Max: 1, Colors: []Color{Red, Yellow, Green}},
	"NDBI": {Min: -1, Max: 1, Colors: []Color{Green, Yellow, Red}},
	"LST":  {Min: 15, Max: 50, Colors: []Color{Green, Yellow, Red}},
}

// PaletteFor returns the palette registered for band, or a green-to-red ramp
// over [lo, hi] when none is.
func PaletteFor(band string, lo, hi float64) Palette {
	if p, ok := Palettes[band]; ok {
		return p
	}
	return Palette{Min: lo, Max: hi, Colors: []Color{Green, Yellow, Red}}
}
