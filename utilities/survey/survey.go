// Package survey runs Monte Carlo surveys over many seeds to tune ship generation.
package survey

import (
	"fmt"
	"math"
	"sort"

	"github.com/lawnchairsociety/shipyard/internal/geom"
	"github.com/lawnchairsociety/shipyard/internal/ship"
)

// Stats summarises a sample.
type Stats struct {
	N      int
	Mean   float64
	StdDev float64
	Min    float64
	Max    float64
	P10    float64
	P50    float64
	P90    float64
}

// Summarize computes Stats for values. An empty sample yields the zero Stats.
func Summarize(values []float64) Stats {
	if len(values) == 0 {
		return Stats{}
	}
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)

	sum := 0.0
	for _, v := range sorted {
		sum += v
	}
	mean := sum / float64(len(sorted))

	variance := 0.0
	for _, v := range sorted {
		variance += (v - mean) * (v - mean)
	}
	variance /= float64(len(sorted))

	return Stats{
		N:      len(sorted),
		Mean:   mean,
		StdDev: math.Sqrt(variance),
		Min:    sorted[0],
		Max:    sorted[len(sorted)-1],
		P10:    percentile(sorted, 0.10),
		P50:    percentile(sorted, 0.50),
		P90:    percentile(sorted, 0.90),
	}
}

// percentile uses the nearest-rank method on a sorted sample.
func percentile(sorted []float64, p float64) float64 {
	rank := int(math.Ceil(p*float64(len(sorted)))) - 1
	rank = max(0, min(rank, len(sorted)-1))
	return sorted[rank]
}

// Seeds returns n deterministic seeds "prefix-0" .. "prefix-(n-1)".
func Seeds(prefix string, n int) []string {
	seeds := make([]string, n)
	for i := range seeds {
		seeds[i] = fmt.Sprintf("%s-%d", prefix, i)
	}
	return seeds
}

// Bucket is one histogram bin covering [Lo, Hi).
type Bucket struct {
	Lo, Hi float64
	Count  int
}

// Histogram bins values into n equal-width buckets across [lo, hi]. Values
// outside the range land in the first or last bucket.
func Histogram(values []float64, lo, hi float64, n int) []Bucket {
	if n <= 0 || hi <= lo {
		return nil
	}
	width := (hi - lo) / float64(n)
	buckets := make([]Bucket, n)
	for i := range buckets {
		buckets[i] = Bucket{Lo: lo + float64(i)*width, Hi: lo + float64(i+1)*width}
	}
	for _, v := range values {
		i := int((v - lo) / width)
		i = max(0, min(i, n-1))
		buckets[i].Count++
	}
	return buckets
}

// MassSurvey is the distribution of drawn ship masses.
type MassSurvey struct {
	Mass Stats
	// BelowMidpoint is the share of ships lighter than the middle of the mass range.
	BelowMidpoint float64
	Histogram     []Bucket
}

// RunMassSurvey generates each seed and summarises total mass.
func RunMassSurvey(seeds []string) MassSurvey {
	masses := make([]float64, 0, len(seeds))
	mid := (ship.MinShipMass + ship.MaxShipMass) / 2
	below := 0
	for _, seed := range seeds {
		m := ship.Generate(seed).Budget.Total
		masses = append(masses, m)
		if m < mid {
			below++
		}
	}

	result := MassSurvey{
		Mass:      Summarize(masses),
		Histogram: Histogram(masses, ship.MinShipMass, ship.MaxShipMass, 10),
	}
	if len(seeds) > 0 {
		result.BelowMidpoint = float64(below) / float64(len(seeds))
	}
	return result
}

// SectionSurvey summarises each section's share of ship mass and length.
type SectionSurvey struct {
	MassShare   map[ship.SectionKind]Stats
	LengthShare map[ship.SectionKind]Stats
	// CargoShortfall is target minus realised cargo mass, as a share of the target.
	CargoShortfall Stats
	TotalLength    Stats
}

// RunSectionSurvey generates each seed with the given options.
func RunSectionSurvey(seeds []string, opts ...ship.Option) SectionSurvey {
	mass := map[ship.SectionKind][]float64{}
	length := map[ship.SectionKind][]float64{}
	var shortfall, total []float64

	for _, seed := range seeds {
		s := ship.Generate(seed, opts...)
		for _, p := range s.Sections {
			mass[p.Kind] = append(mass[p.Kind], p.Section.Mass/s.Budget.Total)
			length[p.Kind] = append(length[p.Kind], p.Section.Length/s.TotalLength)
		}
		if s.Budget.CargoTarget > 0 {
			shortfall = append(shortfall, (s.Budget.CargoTarget-s.Budget.Cargo)/s.Budget.CargoTarget)
		}
		total = append(total, s.TotalLength)
	}

	result := SectionSurvey{
		MassShare:      map[ship.SectionKind]Stats{},
		LengthShare:    map[ship.SectionKind]Stats{},
		CargoShortfall: Summarize(shortfall),
		TotalLength:    Summarize(total),
	}
	for kind, v := range mass {
		result.MassShare[kind] = Summarize(v)
	}
	for kind, v := range length {
		result.LengthShare[kind] = Summarize(v)
	}
	return result
}

// LayoutSurvey counts the discrete design choices across seeds.
type LayoutSurvey struct {
	ThrusterLayouts   map[string]int
	CargoArrangements map[string]int
	PodShapes         map[string]int
	EngineShapes      map[string]int
	DeckShapes        map[string]int
	ThrusterCount     Stats
	PodsPerSegment    Stats
	Segments          Stats
}

// RunLayoutSurvey generates each seed and tallies its choices.
func RunLayoutSurvey(seeds []string) LayoutSurvey {
	result := LayoutSurvey{
		ThrusterLayouts:   map[string]int{},
		CargoArrangements: map[string]int{},
		PodShapes:         map[string]int{},
		EngineShapes:      map[string]int{},
		DeckShapes:        map[string]int{},
	}
	var thrusters, pods, segments []float64

	for _, seed := range seeds {
		s := ship.Generate(seed)
		result.ThrusterLayouts[string(s.Thrusters.Layout)]++
		result.CargoArrangements[string(s.Cargo.Arrangement)]++
		result.PodShapes[string(s.Cargo.Pod.Shape)]++
		result.EngineShapes[string(s.Engine.Shape)]++
		result.DeckShapes[string(s.Deck.Shape)]++
		thrusters = append(thrusters, float64(s.Thrusters.Count))
		pods = append(pods, float64(s.Cargo.PodsPerSegment))
		segments = append(segments, float64(s.Cargo.Segments))
	}

	result.ThrusterCount = Summarize(thrusters)
	result.PodsPerSegment = Summarize(pods)
	result.Segments = Summarize(segments)
	return result
}

// Tolerance for floating point invariant checks.
const Tolerance = 1e-6

// Check returns every structural invariant the ship violates.
func Check(s *ship.Ship) []string {
	var problems []string

	b := s.Budget
	if sum := b.Cargo + b.EngineBlock + b.CommandDeck; math.Abs(sum-b.Total) > Tolerance*b.Total {
		problems = append(problems, fmt.Sprintf("mass: sections sum to %.6f, total %.6f", sum, b.Total))
	}
	if b.Total < ship.MinShipMass || b.Total > ship.MaxShipMass {
		problems = append(problems, fmt.Sprintf("mass: total %.3f outside range", b.Total))
	}
	if b.Cargo > b.CargoCap+Tolerance {
		problems = append(problems, fmt.Sprintf("cargo: %.3f exceeds cap %.3f", b.Cargo, b.CargoCap))
	}

	z := 0.0
	for i, p := range s.Sections {
		if math.Abs(p.AttachZ-z) > Tolerance {
			problems = append(problems, fmt.Sprintf("chain: section %d (%s) attaches at %.6f, expected %.6f", i, p.Kind, p.AttachZ, z))
		}
		if p.Section.Length < ship.MinDimension-Tolerance {
			problems = append(problems, fmt.Sprintf("dimension: %s length %.6f", p.Kind, p.Section.Length))
		}
		z = p.AttachZ + p.Section.Length
	}
	if math.Abs(z-s.TotalLength) > Tolerance {
		problems = append(problems, fmt.Sprintf("chain: sections end at %.6f, total length %.6f", z, s.TotalLength))
	}

	if offset := s.Root.Position.Z; math.Abs(offset+s.TotalLength/2) > Tolerance {
		problems = append(problems, fmt.Sprintf("centering: root offset %.6f, total length %.6f", offset, s.TotalLength))
	}

	s.Root.Walk(func(n *geom.Node, _ int) bool {
		if n.Shape == nil {
			return true
		}
		size := n.Shape.Bounds().Size()
		for _, d := range []float64{size.X, size.Y, size.Z} {
			if math.IsNaN(d) || math.IsInf(d, 0) || d <= 0 {
				problems = append(problems, fmt.Sprintf("dimension: mesh %q has size %v", n.Name, size))
				break
			}
		}
		return true
	})

	return problems
}

// SweepPoint is the outcome of generating many seeds at one forced mass.
type SweepPoint struct {
	Mass          float64
	Length        Stats
	ThrusterCount Stats
	CargoShare    Stats
	Violations    int
	FirstProblem  string
}

// DefaultSweepMasses spans the mass range with extra resolution at the light end.
var DefaultSweepMasses = []float64{10, 25, 50, 100, 200, 350, 500, 750, 1000}

// RunSweep forces each mass across all seeds and checks every ship.
func RunSweep(seeds []string, masses []float64) []SweepPoint {
	points := make([]SweepPoint, 0, len(masses))
	for _, m := range masses {
		var length, thrusters, cargo []float64
		point := SweepPoint{Mass: m}
		for _, seed := range seeds {
			s := ship.Generate(seed, ship.WithMass(m))
			length = append(length, s.TotalLength)
			thrusters = append(thrusters, float64(s.Thrusters.Count))
			cargo = append(cargo, s.Budget.Cargo/s.Budget.Total)
			if problems := Check(s); len(problems) > 0 {
				point.Violations++
				if point.FirstProblem == "" {
					point.FirstProblem = seed + ": " + problems[0]
				}
			}
		}
		point.Length = Summarize(length)
		point.ThrusterCount = Summarize(thrusters)
		point.CargoShare = Summarize(cargo)
		points = append(points, point)
	}
	return points
}
