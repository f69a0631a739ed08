// Package viewer holds the ship currently on display for one viewer session.
package viewer

import (
	"github.com/lawnchairsociety/shipyard/internal/geom"
	"github.com/lawnchairsociety/shipyard/internal/logger"
	"github.com/lawnchairsociety/shipyard/internal/ship"
)

// Slot owns one realised ship at a time. A slot belongs to a single goroutine.
type Slot struct {
	builder geom.Builder
	opts    []ship.Option
	current *ship.Ship
	handle  geom.Handle
	shown   int
}

// NewSlot returns an empty slot that realises ships through b.
func NewSlot(b geom.Builder, opts ...ship.Option) *Slot {
	return &Slot{builder: b, opts: opts}
}

// Show generates the ship for seed, realises it, swaps it in and only then releases
// the previous ship. The slot never exposes a partly built ship.
func (s *Slot) Show(seed string) *ship.Ship {
	next := ship.Generate(seed, s.opts...)
	handle := geom.Realize(s.builder, next.Root)

	prev := s.handle
	s.current, s.handle = next, handle
	s.shown++

	if prev != nil {
		s.builder.Release(prev)
	}
	logger.Debug("Ship shown", "seed", next.Seed, "meshes", next.Root.MeshCount(), "shown", s.shown)
	return next
}

// Current returns the ship on display, or nil.
func (s *Slot) Current() *ship.Ship {
	return s.current
}

// Handle returns the realised root of the ship on display, or nil.
func (s *Slot) Handle() geom.Handle {
	return s.handle
}

// Shown returns how many ships this slot has displayed.
func (s *Slot) Shown() int {
	return s.shown
}

// Clear releases the ship on display.
func (s *Slot) Clear() {
	if s.handle != nil {
		s.builder.Release(s.handle)
	}
	s.current, s.handle = nil, nil
}
