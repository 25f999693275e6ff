// Package classify derives the change state and confidence of systems and
// integrations from the datasets they appear in.
package classify

import (
	"math"

	"github.com/agenthands/fuxi/internal/core/model"
)

// Presence describes which datasets mention an item.
type Presence struct {
	InLucid     bool
	InInventory bool
	InFuture    bool
	Changed     bool
}

// PresenceOf builds a Presence from a list of sources.
func PresenceOf(sources []model.Source, changed bool) Presence {
	p := Presence{Changed: changed}
	for _, s := range sources {
		switch s {
		case model.SourceLucid:
			p.InLucid = true
		case model.SourceInventory:
			p.InInventory = true
		case model.SourceFuture:
			p.InFuture = true
		}
	}
	return p
}

// InCurrent reports presence in any current-state source.
func (p Presence) InCurrent() bool {
	return p.InLucid || p.InInventory
}

// State classifies an item. Without any future dataset every item is
// unchanged: with a single snapshot nothing can be called removed.
func State(p Presence, hasFuture bool) model.State {
	if !hasFuture {
		return model.StateUnchanged
	}
	switch {
	case p.InFuture && !p.InCurrent():
		return model.StateAdded
	case p.InCurrent() && !p.InFuture:
		return model.StateRemoved
	case p.Changed:
		return model.StateModified
	default:
		return model.StateUnchanged
	}
}

// Confidence is 0.5 + 0.2·future + 0.15·inventory + 0.1·lucid − 0.05·changed,
// clamped to [0,1] and rounded to two decimals.
func Confidence(p Presence) float64 {
	c := 0.5
	if p.InFuture {
		c += 0.2
	}
	if p.InInventory {
		c += 0.15
	}
	if p.InLucid {
		c += 0.1
	}
	if p.Changed {
		c -= 0.05
	}
	return Round2(Clamp(c))
}

// Clamp limits v to [0,1].
func Clamp(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}

// Round2 rounds to two decimals.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}
