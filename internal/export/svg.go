package export

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/clothsim/internal/dynamo"
	"github.com/san-kum/clothsim/internal/viz"
)

const (
	background = "#0a0a0a"
	clothFill  = "#1e6f8c"
	clothLine  = "#9fe3ff"
)

// ClothToSVG projects the cloth through cam and draws every triangle as a
// filled polygon, far to near. Triangles behind the camera are dropped.
func ClothToSVG(positions []mgl64.Vec3, triangles []dynamo.Triangle, cam *viz.Camera, width, height int) string {
	type poly struct {
		pts   [3][2]int
		depth float64
	}

	polys := make([]poly, 0, len(triangles))
	for _, tri := range triangles {
		var p poly
		visible := true
		for k, idx := range tri {
			if idx < 0 || idx >= len(positions) {
				visible = false
				break
			}
			x, y, d, ok := cam.Project(positions[idx], width, height)
			if !ok {
				visible = false
				break
			}
			p.pts[k] = [2]int{x, y}
			p.depth += d / 3
		}
		if visible {
			polys = append(polys, p)
		}
	}
	sort.SliceStable(polys, func(i, j int) bool { return polys[i].depth > polys[j].depth })

	var sb strings.Builder
	writeHeader(&sb, width, height)
	sb.WriteString(fmt.Sprintf(`<g fill="%s" fill-opacity="0.85" stroke="%s" stroke-width="0.5">
`, clothFill, clothLine))
	for _, p := range polys {
		sb.WriteString(fmt.Sprintf(`<polygon points="%d,%d %d,%d %d,%d"/>
`, p.pts[0][0], p.pts[0][1], p.pts[1][0], p.pts[1][1], p.pts[2][0], p.pts[2][1]))
	}
	sb.WriteString("</g>\n</svg>")
	return sb.String()
}

func writeHeader(sb *strings.Builder, width, height int) {
	sb.WriteString(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="%s"/>
`, width, height, width, height, background))
}

// CanvasToSVG converts a Braille canvas to SVG format
func CanvasToSVG(canvas *viz.Canvas, scale float64) string {
	if canvas == nil {
		return ""
	}

	sw, sh := canvas.SubSize()
	width, height := float64(sw)*scale, float64(sh)*scale

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%.0f" height="%.0f" viewBox="0 0 %.0f %.0f">
<rect width="100%%" height="100%%" fill="%s"/>
<g fill="#00ff00">
`, width, height, width, height, background))

	dotRadius := scale * 0.4
	for y := 0; y < sh; y++ {
		for x := 0; x < sw; x++ {
			if !canvas.Lit(x, y) {
				continue
			}
			cx := float64(x)*scale + scale/2
			cy := float64(y)*scale + scale/2
			sb.WriteString(fmt.Sprintf(`<circle cx="%.1f" cy="%.1f" r="%.1f"/>
`, cx, cy, dotRadius))
		}
	}

	sb.WriteString("</g>\n</svg>")
	return sb.String()
}

// Trajectory picks one node out of each snapshot and maps it to 2D with
// project, for example time against height.
func Trajectory(snaps [][]mgl64.Vec3, times []float64, node int, project func(t float64, p mgl64.Vec3) mgl64.Vec2) []mgl64.Vec2 {
	points := make([]mgl64.Vec2, 0, len(snaps))
	for i, snap := range snaps {
		if node < 0 || node >= len(snap) || i >= len(times) {
			continue
		}
		points = append(points, project(times[i], snap[node]))
	}
	return points
}

// TrajectoryToSVG creates an SVG from trajectory data
func TrajectoryToSVG(points []mgl64.Vec2, width, height int, strokeColor string) string {
	if len(points) < 2 {
		return ""
	}

	minX, maxX := points[0].X(), points[0].X()
	minY, maxY := points[0].Y(), points[0].Y()
	for _, p := range points {
		minX, maxX = math.Min(minX, p.X()), math.Max(maxX, p.X())
		minY, maxY = math.Min(minY, p.Y()), math.Max(maxY, p.Y())
	}

	// Add padding
	rangeX := maxX - minX
	rangeY := maxY - minY
	if rangeX == 0 {
		rangeX = 1
	}
	if rangeY == 0 {
		rangeY = 1
	}
	minX -= rangeX * 0.1
	maxX += rangeX * 0.1
	minY -= rangeY * 0.1
	maxY += rangeY * 0.1
	rangeX = maxX - minX
	rangeY = maxY - minY

	var sb strings.Builder
	writeHeader(&sb, width, height)
	sb.WriteString(fmt.Sprintf(`<path fill="none" stroke="%s" stroke-width="1.5" d="M`, strokeColor))

	for i, p := range points {
		x := (p.X() - minX) / rangeX * float64(width)
		y := float64(height) - (p.Y()-minY)/rangeY*float64(height)

		if i == 0 {
			sb.WriteString(fmt.Sprintf("%.1f,%.1f", x, y))
		} else {
			sb.WriteString(fmt.Sprintf(" L%.1f,%.1f", x, y))
		}
	}

	sb.WriteString(`"/>
</svg>`)
	return sb.String()
}
