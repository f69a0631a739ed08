// Package layout places identical circular units on a plane without overlap.
//
// All algorithms are pure functions of (count, unit size, rng). Grid and offset grid
// only apply to counts with a suitable factorisation and report infeasibility with
// ok == false; Radial accepts any positive count and is the final fallback.
package layout

import (
	"math"

	"github.com/lawnchairsociety/shipyard/internal/rng"
)

// Ring and lattice spacing factors, relative to the unit size.
const (
	RingSpacing    = 1.15
	RingArcPerUnit = 1.1
	GridSpacing    = 1.3
)

// Point is a position in the layout plane, relative to the central axis.
type Point struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
}

// Dist returns the distance from the origin.
func (p Point) Dist() float64 {
	return math.Hypot(p.X, p.Y)
}

// Kind identifies which algorithm produced a layout.
type Kind string

const (
	KindSingle Kind = "single"
	KindRadial Kind = "radial"
	KindGrid   Kind = "grid"
	KindOffset Kind = "offset"
)

// Result is a chosen layout.
type Result struct {
	Kind   Kind
	Points []Point
}

// IsRadial reports whether the layout is rotationally arranged around the axis.
func (r Result) IsRadial() bool {
	return r.Kind == KindRadial || r.Kind == KindSingle
}

// Choose applies the selection policy: offset grid for count >= 7 (50%),
// then even grid for count > 3 (50%), then radial.
// A preference whose precondition fails falls through to the next one.
func Choose(count int, unit float64, r *rng.Rand) Result {
	if count >= 7 && r.Chance(0.5) {
		if pts, ok := OffsetGrid(count, unit, r); ok {
			return Result{Kind: KindOffset, Points: pts}
		}
	}
	if count > 3 && r.Chance(0.5) {
		if pts, ok := Grid(count, unit, r); ok {
			return Result{Kind: KindGrid, Points: pts}
		}
	}
	pts := Radial(count, unit, r)
	if count == 1 {
		return Result{Kind: KindSingle, Points: pts}
	}
	return Result{Kind: KindRadial, Points: pts}
}

// Radial places units in concentric rings around an optional centre cluster.
func Radial(count int, unit float64, r *rng.Rand) []Point {
	if count <= 0 {
		return nil
	}
	if count == 1 {
		return []Point{{0, 0}}
	}

	points := make([]Point, 0, count)
	centre := r.Int(0, count/3)
	radius := 0.0

	switch {
	case centre == 1:
		points = append(points, Point{0, 0})
	case centre > 1:
		radius = ClusterRadius(centre, unit)
		points = append(points, ring(centre, radius, 0)...)
	}

	remaining := count - centre
	ringIndex := 0
	for remaining > 0 {
		if len(points) == 0 {
			radius = unit * RingSpacing
		} else {
			radius += unit * RingSpacing
		}
		capacity := int(math.Floor(2 * math.Pi * radius / (unit * RingArcPerUnit)))
		if capacity < 1 {
			capacity = 1
		}
		n := min(capacity, remaining)

		phase := 0.0
		if ringIndex%2 == 1 {
			phase = math.Pi / float64(n)
		}
		points = append(points, ring(n, radius, phase)...)

		remaining -= n
		ringIndex++
	}

	return points
}

// ClusterRadius is the ring radius for n units around the axis: large enough for the
// circumference to hold n units with margin and for neighbouring chords to clear a unit.
func ClusterRadius(n int, unit float64) float64 {
	if n < 2 {
		return 0
	}
	byCircumference := float64(n) * unit * RingArcPerUnit / (2 * math.Pi)
	byChord := unit * RingArcPerUnit / (2 * math.Sin(math.Pi/float64(n)))
	return math.Max(byCircumference, byChord)
}

func ring(n int, radius, phase float64) []Point {
	pts := make([]Point, n)
	step := 2 * math.Pi / float64(n)
	for i := range pts {
		a := phase + float64(i)*step
		pts[i] = Point{X: radius * math.Cos(a), Y: radius * math.Sin(a)}
	}
	return pts
}

// Factorizations returns every (rows, cols) pair with rows*cols == count and both >= 2.
func Factorizations(count int) [][2]int {
	var pairs [][2]int
	for rows := 2; rows <= count/2; rows++ {
		if count%rows == 0 && count/rows >= 2 {
			pairs = append(pairs, [2]int{rows, count / rows})
		}
	}
	return pairs
}

// Grid places units on a centred rectangular lattice using a random factorisation.
// It reports ok == false when count has no factor pair with rows, cols >= 2.
func Grid(count int, unit float64, r *rng.Rand) ([]Point, bool) {
	pairs := Factorizations(count)
	if len(pairs) == 0 {
		return nil, false
	}
	pick := pairs[r.Int(0, len(pairs)-1)]
	rows, cols := pick[0], pick[1]
	spacing := unit * GridSpacing

	points := make([]Point, 0, count)
	for row := 0; row < rows; row++ {
		for col := 0; col < cols; col++ {
			points = append(points, Point{
				X: (float64(col) - float64(cols-1)/2) * spacing,
				Y: (float64(row) - float64(rows-1)/2) * spacing,
			})
		}
	}
	return points, true
}

// StaggeredRows returns every (rows, k) such that an odd number of rows alternating
// k+1, k, ..., k+1 units sums to count.
func StaggeredRows(count int) [][2]int {
	var options [][2]int
	for n := 3; n <= count; n += 2 {
		num := 2*count - n - 1
		if num <= 0 {
			break
		}
		if num%(2*n) == 0 {
			k := num / (2 * n)
			if k >= 1 {
				options = append(options, [2]int{n, k})
			}
		}
	}
	return options
}

// OffsetGrid places units in hex-packed staggered rows.
// It reports ok == false when count has no staggered decomposition.
func OffsetGrid(count int, unit float64, r *rng.Rand) ([]Point, bool) {
	options := StaggeredRows(count)
	if len(options) == 0 {
		return nil, false
	}
	pick := options[r.Int(0, len(options)-1)]
	rows, k := pick[0], pick[1]
	vertical := r.Chance(0.5)

	spacing := unit * GridSpacing
	rowStep := spacing * math.Sqrt(3) / 2

	points := make([]Point, 0, count)
	for row := 0; row < rows; row++ {
		length := k + 1
		if row%2 == 1 {
			length = k
		}
		y := (float64(row) - float64(rows-1)/2) * rowStep
		for i := 0; i < length; i++ {
			x := (float64(i) - float64(length-1)/2) * spacing
			p := Point{X: x, Y: y}
			if vertical {
				p = Point{X: y, Y: x}
			}
			points = append(points, p)
		}
	}
	return points, true
}

// MinDistance returns the smallest pairwise distance, or +Inf for fewer than two points.
func MinDistance(points []Point) float64 {
	best := math.Inf(1)
	for i := 0; i < len(points); i++ {
		for j := i + 1; j < len(points); j++ {
			d := math.Hypot(points[i].X-points[j].X, points[i].Y-points[j].Y)
			if d < best {
				best = d
			}
		}
	}
	return best
}

// MaxRadius returns the largest distance of any point from the origin.
func MaxRadius(points []Point) float64 {
	best := 0.0
	for _, p := range points {
		best = math.Max(best, p.Dist())
	}
	return best
}

// Bounds returns the axis-aligned extent of the points.
func Bounds(points []Point) (minX, minY, maxX, maxY float64) {
	if len(points) == 0 {
		return 0, 0, 0, 0
	}
	minX, minY = math.Inf(1), math.Inf(1)
	maxX, maxY = math.Inf(-1), math.Inf(-1)
	for _, p := range points {
		minX = math.Min(minX, p.X)
		minY = math.Min(minY, p.Y)
		maxX = math.Max(maxX, p.X)
		maxY = math.Max(maxY, p.Y)
	}
	return minX, minY, maxX, maxY
}
