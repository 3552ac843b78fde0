// Package effects implements the animated entity layers (sparkles, ripples,
// particle bursts), the screen-space ambient effects and the background.
package effects

import "math"

// Entity is one simulated sparkle, ripple or particle. Fields a given
// layer does not use stay zero.
type Entity struct {
	X, Y      float64
	VX, VY    float64
	Life      float64
	Size      float64
	Phase     float64
	Radius    float64
	MaxRadius float64
}

// Population is a bounded set of entities owned by a single layer.
type Population struct {
	Max   int
	items []Entity
}

func (p *Population) Len() int { return len(p.items) }

// Items exposes the current entities. Callers must not retain the slice
// across an Advance.
func (p *Population) Items() []Entity { return p.items }

// Room is how many entities can still be spawned this tick.
func (p *Population) Room() int {
	return max(0, p.Max-len(p.items))
}

// Quota returns how many entities a trigger value asks for, capped by Room.
func (p *Population) Quota(trigger, factor float64) int {
	n := int(math.Round(trigger * factor))
	return max(0, min(n, p.Room()))
}

// Spawn appends e unless the population is full. It reports whether e was
// added.
func (p *Population) Spawn(e Entity) bool {
	if len(p.items) >= p.Max {
		return false
	}
	p.items = append(p.items, e)
	return true
}

// Advance applies step to every entity and drops those for which it
// returns false. Survivors keep their relative order.
func (p *Population) Advance(step func(e *Entity) bool) {
	kept := p.items[:0]
	for i := range p.items {
		e := p.items[i]
		if step(&e) {
			kept = append(kept, e)
		}
	}
	clear(p.items[len(kept):])
	p.items = kept
}

func (p *Population) Clear() {
	p.items = p.items[:0]
}
