package ship

import (
	"math"

	"github.com/lawnchairsociety/shipyard/internal/rng"
)

// MinWindowSize is the smallest window edge worth placing.
const MinWindowSize = 0.05

// Window is a rectangle on a face, centred at (X, Y) in face coordinates
// where the face spans [-w/2, w/2] x [-h/2, h/2].
type Window struct {
	X      float64 `json:"x" yaml:"x"`
	Y      float64 `json:"y" yaml:"y"`
	Width  float64 `json:"width" yaml:"width"`
	Height float64 `json:"height" yaml:"height"`
}

// PlanWindows lays a single row of equal windows across the upper half of a face.
// It returns nil when nothing fits; it never fails.
func PlanWindows(faceWidth, faceHeight float64, r *rng.Rand) []Window {
	aspect := r.Range(1.0, 3.0)
	spacing := r.Range(0.2, 0.5)
	heightFrac := r.Range(0.25, 0.6)

	if !(faceWidth > 0) || !(faceHeight > 0) || math.IsInf(faceWidth, 0) || math.IsInf(faceHeight, 0) {
		return nil
	}

	usableWidth := faceWidth * 0.8
	bandHeight := faceHeight * 0.5
	h := bandHeight * heightFrac
	w := h * aspect
	if h < MinWindowSize || w > usableWidth {
		return nil
	}

	gap := w * spacing
	most := int(math.Floor((usableWidth + gap) / (w + gap)))
	if most < 1 {
		return nil
	}
	count := r.Int(max(1, most/2), most)

	margin := faceHeight * 0.05
	top := math.Max(0, faceHeight/2-h/2-margin)
	y := r.Range(0, top)

	total := float64(count)*w + float64(count-1)*gap
	windows := make([]Window, count)
	for i := range windows {
		windows[i] = Window{
			X:      -total/2 + w/2 + float64(i)*(w+gap),
			Y:      y,
			Width:  w,
			Height: h,
		}
	}
	return windows
}
