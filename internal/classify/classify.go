// Package classify buckets bodies into display classes by mass.
package classify

import (
	"fmt"
	"image/color"

	"github.com/san-kum/orbview/internal/trajectory"
)

// Class is the display category of a body.
type Class int

const (
	SmallBody Class = iota
	Moon
	Planet
	Star
)

// Mass thresholds in kg.
const (
	StarMin   = 1e29
	PlanetMin = 1e23
	PlanetMax = 1e28
	MoonMin   = 1e19
)

// Classify maps a mass to its class. Masses between PlanetMax and StarMin
// (inclusive of StarMin) have no class of their own and fall through to
// SmallBody.
func Classify(mass float64) Class {
	switch {
	case mass > StarMin:
		return Star
	case mass >= PlanetMin && mass <= PlanetMax:
		return Planet
	case mass >= MoonMin && mass < PlanetMin:
		return Moon
	default:
		return SmallBody
	}
}

func (c Class) String() string {
	switch c {
	case Star:
		return "star"
	case Planet:
		return "planet"
	case Moon:
		return "moon"
	default:
		return "small body"
	}
}

// RGBA is the fixed display color of the class.
func (c Class) RGBA() color.RGBA {
	switch c {
	case Star:
		return color.RGBA{R: 255, G: 220, B: 0, A: 255}
	case Planet:
		return color.RGBA{R: 40, G: 110, B: 255, A: 255}
	case Moon:
		return color.RGBA{R: 184, G: 115, B: 51, A: 255}
	default:
		return color.RGBA{R: 255, G: 255, B: 255, A: 255}
	}
}

// Hex formats the class color as "#rrggbb".
func (c Class) Hex() string {
	rgba := c.RGBA()
	return fmt.Sprintf("#%02x%02x%02x", rgba.R, rgba.G, rgba.B)
}

// Glyph is the rune the terminal renderer draws for the class.
func (c Class) Glyph() rune {
	switch c {
	case Star:
		return '✸'
	case Planet:
		return '●'
	case Moon:
		return '•'
	default:
		return '·'
	}
}

// Classifier caches classes by body name. The first mass seen for a name
// decides its class for the rest of the session.
type Classifier struct {
	classify func(float64) Class
	byName   map[string]Class
}

func NewClassifier() *Classifier {
	return &Classifier{classify: Classify, byName: make(map[string]Class)}
}

// Class returns the cached class of b, classifying it on first sight.
func (c *Classifier) Class(b trajectory.BodyState) Class {
	if cls, ok := c.byName[b.Name]; ok {
		return cls
	}
	cls := c.classify(b.Mass)
	c.byName[b.Name] = cls
	return cls
}

// Warm classifies every body of rec that has not been seen yet.
func (c *Classifier) Warm(rec trajectory.TimestepRecord) {
	for _, b := range rec.Bodies {
		c.Class(b)
	}
}

// Len is the number of cached names.
func (c *Classifier) Len() int { return len(c.byName) }

// Counts tallies the cached names per class.
func (c *Classifier) Counts() map[Class]int {
	counts := make(map[Class]int, 4)
	for _, cls := range c.byName {
		counts[cls]++
	}
	return counts
}
