package cache

import "github.com/forest-guardian/urban-heat-island/internal/imagery"

// Composite is a cached clipped composite with the collection facts of the
// run that built it.
type Composite struct {
	Image   *imagery.MultibandImage `json:"image"`
	Images  int                     `json:"images"`
	Skipped []string                `json:"skipped"`
}

// Composites caches composites keyed by the parameters that produced them.
type Composites = FileCache[*Composite]

func NewComposites() *Composites {
	return NewFileCache[*Composite]("composites")
}
