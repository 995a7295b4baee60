package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/clothsim/internal/collision"
	"github.com/san-kum/clothsim/internal/dynamo"
	"github.com/san-kum/clothsim/internal/integrators"
	"github.com/san-kum/clothsim/internal/physics"
	"gopkg.in/yaml.v3"
)

const (
	DefaultDt       = 0.01
	DefaultSubsteps = 1
	DefaultTicks    = 1000
	DefaultCols     = 21
	DefaultRows     = 21
	DefaultSize     = 2.0
	DefaultHeight   = 1.5
)

type Config struct {
	Integrator string           `yaml:"integrator"`
	Dt         float64          `yaml:"dt"`
	Substeps   int              `yaml:"substeps"`
	Ticks      int              `yaml:"ticks"`
	Seed       int64            `yaml:"seed"`

	// RecordEvery keeps one position snapshot per this many ticks; zero
	// keeps every tick.
	RecordEvery int `yaml:"record_every,omitempty"`

	Cloth     ClothConfig      `yaml:"cloth"`
	Params    ParamsConfig     `yaml:"params"`
	Wind      WindConfig       `yaml:"wind"`
	Obstacles []ObstacleConfig `yaml:"obstacles"`
	Anchors   []AnchorConfig   `yaml:"anchors,omitempty"`
	Logging   LoggingConfig    `yaml:"logging"`
}

// ClothConfig describes the initial surface. OBJ, when set, replaces the
// procedural grid.
type ClothConfig struct {
	Cols     int        `yaml:"cols"`
	Rows     int        `yaml:"rows"`
	Width    float64    `yaml:"width"`
	Depth    float64    `yaml:"depth"`
	OBJ      string     `yaml:"obj,omitempty"`
	Position mgl64.Vec3 `yaml:"position"`
	Rotation mgl64.Vec3 `yaml:"rotation"`
	Scale    float64    `yaml:"scale"`
	// Jitter displaces every vertex by up to this distance, seeded by Seed.
	Jitter float64 `yaml:"jitter,omitempty"`
}

type ParamsConfig struct {
	Mass              float64    `yaml:"mass"`
	TractionStiffness float64    `yaml:"traction_stiffness"`
	FlexionStiffness  float64    `yaml:"flexion_stiffness"`
	AirFriction       float64    `yaml:"air_friction"`
	ClothFriction     float64    `yaml:"cloth_friction"`
	SpringDamping     float64    `yaml:"spring_damping"`
	Gravity           mgl64.Vec3 `yaml:"gravity"`
}

type WindConfig struct {
	Mode     string     `yaml:"mode"`
	Velocity mgl64.Vec3 `yaml:"velocity"`
}

// ObstacleConfig is one rigid obstacle. Kind is plane, sphere, box, ico or obj.
type ObstacleConfig struct {
	Name     string     `yaml:"name,omitempty"`
	Kind     string     `yaml:"kind"`
	Position mgl64.Vec3 `yaml:"position"`
	Rotation mgl64.Vec3 `yaml:"rotation"`
	Scale    float64    `yaml:"scale"`
	// Radius of a sphere or icosahedron, or half extent of a box, before scaling.
	Radius   float64 `yaml:"radius,omitempty"`
	Path     string  `yaml:"path,omitempty"`
	Rigidity float64 `yaml:"rigidity"`
	// Offset lifts a plane along its normal.
	Offset *float64 `yaml:"offset,omitempty"`
}

type AnchorConfig struct {
	Name     string     `yaml:"name,omitempty"`
	Min      mgl64.Vec3 `yaml:"min"`
	Max      mgl64.Vec3 `yaml:"max"`
	Velocity mgl64.Vec3 `yaml:"velocity,omitempty"`
}

type LoggingConfig struct {
	Level string `yaml:"level"`
	File  string `yaml:"file,omitempty"`
}

func DefaultConfig() *Config {
	return &Config{
		Integrator: integrators.Default,
		Dt:         DefaultDt,
		Substeps:   DefaultSubsteps,
		Ticks:      DefaultTicks,
		Cloth: ClothConfig{
			Cols:     DefaultCols,
			Rows:     DefaultRows,
			Width:    DefaultSize,
			Depth:    DefaultSize,
			Position: mgl64.Vec3{0, DefaultHeight, 0},
			Scale:    1,
		},
		Params: ParamsConfig{
			Mass:              physics.DefaultMass,
			TractionStiffness: physics.DefaultTractionStiffness,
			FlexionStiffness:  physics.DefaultFlexionStiffness,
			AirFriction:       physics.DefaultAirFriction,
			ClothFriction:     physics.DefaultClothFriction,
			SpringDamping:     physics.DefaultSpringDamping,
			Gravity:           physics.DefaultGravity,
		},
		Wind: WindConfig{Mode: physics.WindConstant.String()},
		Obstacles: []ObstacleConfig{
			{Name: "floor", Kind: "plane", Scale: 1, Rigidity: collision.DefaultRigidity},
		},
		Logging: LoggingConfig{Level: "info"},
	}
}

// Load reads a YAML file over the defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// SaveTo is Save with parent directory creation.
func SaveTo(path string, cfg *Config) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}
	return Save(path, cfg)
}

// PhysicsParams converts the params and wind sections.
func (c *Config) PhysicsParams() (physics.Params, error) {
	mode, err := physics.ParseWindMode(c.Wind.Mode)
	if err != nil {
		return physics.Params{}, err
	}
	return physics.Params{
		TotalMass:         c.Params.Mass,
		TractionStiffness: c.Params.TractionStiffness,
		FlexionStiffness:  c.Params.FlexionStiffness,
		AirFriction:       c.Params.AirFriction,
		ClothFriction:     c.Params.ClothFriction,
		SpringDamping:     c.Params.SpringDamping,
		Gravity:           c.Params.Gravity,
		Wind:              physics.Wind{Mode: mode, Velocity: c.Wind.Velocity},
	}, nil
}

// Validate reports every configuration error that would abort a run.
func (c *Config) Validate() error {
	if _, err := integrators.ByName(c.Integrator); err != nil {
		return err
	}
	if !(c.Dt > 0) {
		return fmt.Errorf("%w: dt = %v", dynamo.ErrInvalidTimeStep, c.Dt)
	}
	if c.Substeps < 1 {
		return fmt.Errorf("%w: substeps = %d", dynamo.ErrInvalidSubsteps, c.Substeps)
	}
	if c.Ticks < 1 {
		return fmt.Errorf("%w: ticks = %d", dynamo.ErrParameterBounds, c.Ticks)
	}

	p, err := c.PhysicsParams()
	if err != nil {
		return err
	}
	if err := p.Validate(); err != nil {
		return err
	}

	if c.Cloth.OBJ == "" && (c.Cloth.Cols < 2 || c.Cloth.Rows < 2 || !(c.Cloth.Width > 0) || !(c.Cloth.Depth > 0)) {
		return fmt.Errorf("%w: cloth grid %dx%d of %vx%v", dynamo.ErrInvalidGeometry,
			c.Cloth.Cols, c.Cloth.Rows, c.Cloth.Width, c.Cloth.Depth)
	}
	if !(c.Cloth.Scale > 0) || c.Cloth.Jitter < 0 {
		return fmt.Errorf("%w: cloth scale %v, jitter %v", dynamo.ErrParameterBounds, c.Cloth.Scale, c.Cloth.Jitter)
	}

	for i, o := range c.Obstacles {
		if err := o.validate(); err != nil {
			return fmt.Errorf("obstacle %d: %w", i, err)
		}
	}
	return nil
}

func (o ObstacleConfig) validate() error {
	switch o.Kind {
	case "plane", "box", "ico", "sphere":
	case "obj":
		if o.Path == "" {
			return fmt.Errorf("%w: obj obstacle needs a path", dynamo.ErrInvalidGeometry)
		}
	default:
		return fmt.Errorf("%w: unknown obstacle kind %q", dynamo.ErrParameterBounds, o.Kind)
	}
	if !(o.Scale > 0) || o.Rigidity < 0 || o.Radius < 0 {
		return fmt.Errorf("%w: scale %v, rigidity %v, radius %v", dynamo.ErrParameterBounds, o.Scale, o.Rigidity, o.Radius)
	}
	return nil
}

// Set overrides one scalar by name. It accepts the runtime cloth tunables
// plus dt, substeps, ticks, cols, rows and jitter. Bounds are left to
// Validate.
func (c *Config) Set(name string, v float64) error {
	switch name {
	case "dt":
		c.Dt = v
	case "substeps":
		c.Substeps = int(v)
	case "ticks":
		c.Ticks = int(v)
	case "cols":
		c.Cloth.Cols = int(v)
	case "rows":
		c.Cloth.Rows = int(v)
	case "jitter":
		c.Cloth.Jitter = v
	case "mass":
		c.Params.Mass = v
	case "traction_stiffness":
		c.Params.TractionStiffness = v
	case "flexion_stiffness":
		c.Params.FlexionStiffness = v
	case "air_friction":
		c.Params.AirFriction = v
	case "cloth_friction":
		c.Params.ClothFriction = v
	case "spring_damping":
		c.Params.SpringDamping = v
	case "gravity":
		c.Params.Gravity = physics.ScaleGravity(c.Params.Gravity, v)
	case "wind_x":
		c.Wind.Velocity[0] = v
	case "wind_y":
		c.Wind.Velocity[1] = v
	case "wind_z":
		c.Wind.Velocity[2] = v
	default:
		return fmt.Errorf("%w: %s", dynamo.ErrUnknownParameter, name)
	}
	return nil
}

// Clone returns a deep copy.
func (c *Config) Clone() *Config {
	out := *c
	out.Obstacles = append([]ObstacleConfig(nil), c.Obstacles...)
	for i, o := range out.Obstacles {
		if o.Offset != nil {
			v := *o.Offset
			out.Obstacles[i].Offset = &v
		}
	}
	out.Anchors = append([]AnchorConfig(nil), c.Anchors...)
	return &out
}
