// Package sound holds the immutable alarm sound catalog.
package sound

import (
	"fmt"
	"path/filepath"

	"github.com/borgmon/wakebell/pkg/models"
)

// Catalog is a lookup table of the available alarm sounds. An id that
// is not in the catalog resolves to the default sound rather than
// failing; a missing sound must never reject a schedule call.
type Catalog struct {
	sounds []models.Sound
	byID   map[int]models.Sound
}

// New builds a catalog from the given sounds. The first sound is the
// default fallback; the slice must not be empty.
func New(sounds []models.Sound) *Catalog {
	byID := make(map[int]models.Sound, len(sounds))
	for _, s := range sounds {
		byID[s.ID] = s
	}
	return &Catalog{sounds: sounds, byID: byID}
}

// DefaultCatalog returns the built-in six-sound catalog with asset
// paths rooted at assetDir.
func DefaultCatalog(assetDir string) *Catalog {
	names := []string{
		"Morning Breeze",
		"Gentle Chimes",
		"Forest Dawn",
		"Echo Pulse",
		"Crystal Bell",
		"Feather Wake",
	}
	sounds := make([]models.Sound, 0, len(names))
	for i, name := range names {
		sounds = append(sounds, models.Sound{
			ID:   i + 1,
			Name: name,
			Path: filepath.Join(assetDir, fmt.Sprintf("alarm%d.wav", i+1)),
		})
	}
	return New(sounds)
}

// ByID looks up a sound, falling back to the default when the id is
// unknown.
func (c *Catalog) ByID(id int) models.Sound {
	if s, ok := c.byID[id]; ok {
		return s
	}
	return c.Default()
}

// Default returns the fallback sound.
func (c *Catalog) Default() models.Sound {
	return c.sounds[0]
}

// Sounds returns the catalog entries in order.
func (c *Catalog) Sounds() []models.Sound {
	return append([]models.Sound(nil), c.sounds...)
}
