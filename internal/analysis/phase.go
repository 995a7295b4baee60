package analysis

import (
	"math"
	"strings"

	"github.com/go-gl/mathgl/mgl64"
)

// Point is one sample of a 2D plot.
type Point struct{ X, Y float64 }

// PhasePortrait2D holds a node's height against its vertical velocity.
type PhasePortrait2D struct {
	Node   int
	Points []Point
}

// NodeHeights extracts the y coordinate of one node from each snapshot.
func NodeHeights(snaps [][]mgl64.Vec3, node int) []float64 {
	out := make([]float64, 0, len(snaps))
	for _, snap := range snaps {
		if node < 0 || node >= len(snap) {
			return nil
		}
		out = append(out, snap[node].Y())
	}
	return out
}

// NodePhase pairs each recorded height of node with its vertical velocity,
// taken as a central difference between neighbouring snapshots.
func NodePhase(snaps [][]mgl64.Vec3, times []float64, node int) *PhasePortrait2D {
	heights := NodeHeights(snaps, node)
	if len(heights) < 3 || len(times) != len(heights) {
		return nil
	}

	portrait := &PhasePortrait2D{
		Node:   node,
		Points: make([]Point, 0, len(heights)-2),
	}
	for i := 1; i < len(heights)-1; i++ {
		span := times[i+1] - times[i-1]
		if span <= 0 {
			continue
		}
		portrait.Points = append(portrait.Points, Point{
			X: heights[i],
			Y: (heights[i+1] - heights[i-1]) / span,
		})
	}
	return portrait
}

// Crossings returns the interpolated times at which samples rise through
// threshold.
func Crossings(samples, times []float64, threshold float64) []float64 {
	out := make([]float64, 0)
	for i := 1; i < len(samples) && i < len(times); i++ {
		prev, curr := samples[i-1], samples[i]
		if !(prev < threshold && curr >= threshold) {
			continue
		}
		frac := (threshold - prev) / (curr - prev)
		if math.IsNaN(frac) || math.IsInf(frac, 0) {
			frac = 0.5
		}
		out = append(out, times[i-1]+frac*(times[i]-times[i-1]))
	}
	return out
}

// PhasePortraitToASCII scatters the portrait on a width by height rune grid
// with axes where zero is in view.
func PhasePortraitToASCII(portrait *PhasePortrait2D, width, height int) string {
	if portrait == nil || len(portrait.Points) == 0 || width < 2 || height < 2 {
		return ""
	}

	minX, maxX := portrait.Points[0].X, portrait.Points[0].X
	minY, maxY := portrait.Points[0].Y, portrait.Points[0].Y

	for _, p := range portrait.Points {
		minX, maxX = min(minX, p.X), max(maxX, p.X)
		minY, maxY = min(minY, p.Y), max(maxY, p.Y)
	}

	minX, rangeX := padRange(minX, maxX)
	minY, rangeY := padRange(minY, maxY)
	maxX, maxY = minX+rangeX, minY+rangeY

	canvas := make([][]rune, height)
	for i := range canvas {
		canvas[i] = make([]rune, width)
		for j := range canvas[i] {
			canvas[i][j] = ' '
		}
	}

	for _, p := range portrait.Points {
		col := int((p.X - minX) / rangeX * float64(width-1))
		row := height - 1 - int((p.Y-minY)/rangeY*float64(height-1))

		if row >= 0 && row < height && col >= 0 && col < width {
			canvas[row][col] = '•'
		}
	}

	if minX <= 0 && maxX >= 0 {
		col := int((0 - minX) / rangeX * float64(width-1))
		for row := 0; row < height; row++ {
			if col >= 0 && col < width && canvas[row][col] == ' ' {
				canvas[row][col] = '│'
			}
		}
	}
	if minY <= 0 && maxY >= 0 {
		row := height - 1 - int((0-minY)/rangeY*float64(height-1))
		for col := 0; col < width; col++ {
			if row >= 0 && row < height && canvas[row][col] == ' ' {
				canvas[row][col] = '─'
			}
		}
	}

	var sb strings.Builder
	for _, row := range canvas {
		sb.WriteString(string(row))
		sb.WriteRune('\n')
	}
	return sb.String()
}

// padRange widens [lo, hi] by a tenth on each side. A zero span becomes one.
func padRange(lo, hi float64) (float64, float64) {
	span := hi - lo
	if span == 0 {
		span = 1
	}
	return lo - span*0.1, span * 1.2
}
