package config

import (
	"sort"

	"github.com/go-gl/mathgl/mgl64"
)

// Presets build fresh scene configurations on every call.
var Presets = map[string]func() *Config{
	"drape": func() *Config {
		c := DefaultConfig()
		c.Ticks = 600
		c.Obstacles = append(c.Obstacles, ObstacleConfig{
			Name: "ball", Kind: "sphere", Position: mgl64.Vec3{0, 0.7, 0},
			Radius: 0.5, Scale: 1, Rigidity: 500,
		})
		return c
	},
	"flag": func() *Config {
		c := DefaultConfig()
		c.Ticks = 2000
		c.Substeps = 2
		c.Cloth.Cols, c.Cloth.Rows = 31, 21
		c.Cloth.Width, c.Cloth.Depth = 3, 2
		c.Cloth.Rotation = mgl64.Vec3{90, 0, 0}
		c.Cloth.Position = mgl64.Vec3{0, 2, 0}
		c.Wind.Mode = "changing"
		c.Obstacles = nil
		c.Anchors = []AnchorConfig{
			{Name: "pole", Min: mgl64.Vec3{-1.55, 0.9, -0.1}, Max: mgl64.Vec3{-1.45, 3.1, 0.1}},
		}
		return c
	},
	"hammock": func() *Config {
		c := DefaultConfig()
		c.Ticks = 1500
		c.Cloth.Cols, c.Cloth.Rows = 31, 11
		c.Cloth.Width, c.Cloth.Depth = 3, 1
		c.Anchors = []AnchorConfig{
			{Name: "left", Min: mgl64.Vec3{-1.55, 1.4, -0.6}, Max: mgl64.Vec3{-1.45, 1.6, 0.6}},
			{Name: "right", Min: mgl64.Vec3{1.45, 1.4, -0.6}, Max: mgl64.Vec3{1.55, 1.6, 0.6}},
		}
		return c
	},
	"tablecloth": func() *Config {
		c := DefaultConfig()
		c.Ticks = 800
		c.Substeps = 2
		c.Cloth.Position = mgl64.Vec3{0, 1.2, 0}
		c.Obstacles = append(c.Obstacles, ObstacleConfig{
			Name: "table", Kind: "box", Position: mgl64.Vec3{0, 0.5, 0},
			Radius: 0.5, Scale: 1, Rigidity: 500,
		})
		return c
	},
}

// GetPreset returns nil for an unknown name.
func GetPreset(name string) *Config {
	fn, ok := Presets[name]
	if !ok {
		return nil
	}
	return fn()
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
