package experiment

import (
	"fmt"
	"sort"

	"github.com/san-kum/clothsim/internal/collision"
	"github.com/san-kum/clothsim/internal/config"
	"github.com/san-kum/clothsim/internal/dynamo"
	"github.com/san-kum/clothsim/internal/integrators"
	"github.com/san-kum/clothsim/internal/mesh"
	"github.com/san-kum/clothsim/internal/metrics"
	"github.com/san-kum/clothsim/internal/physics"
)

const (
	DefaultObstacleRadius = 0.5
	StabilitySpeedLimit   = 50.0
)

// ObstacleBuilder turns one obstacle section into a collider.
type ObstacleBuilder func(o config.ObstacleConfig) (dynamo.Collider, error)

type Registry struct {
	obstacles map[string]ObstacleBuilder
	windModes []physics.WindMode
}

func NewRegistry() *Registry {
	r := &Registry{
		obstacles: make(map[string]ObstacleBuilder),
		windModes: []physics.WindMode{physics.WindConstant, physics.WindChanging},
	}

	r.obstacles["plane"] = func(o config.ObstacleConfig) (dynamo.Collider, error) {
		offset := collision.DefaultPlaneOffset
		if o.Offset != nil {
			offset = *o.Offset
		}
		return collision.PlaneFromPose(pose(o), offset, o.Rigidity), nil
	}
	r.obstacles["sphere"] = func(o config.ObstacleConfig) (dynamo.Collider, error) {
		s := collision.NewSphere(o.Position, radius(o), o.Rigidity)
		s.SetPose(pose(o))
		return s, nil
	}
	r.obstacles["box"] = func(o config.ObstacleConfig) (dynamo.Collider, error) {
		return collision.NewMesh(mesh.Box(radius(o)), pose(o), o.Rigidity)
	}
	r.obstacles["ico"] = func(o config.ObstacleConfig) (dynamo.Collider, error) {
		return collision.NewMesh(mesh.Icosahedron(radius(o)), pose(o), o.Rigidity)
	}
	r.obstacles["obj"] = func(o config.ObstacleConfig) (dynamo.Collider, error) {
		g, err := mesh.LoadOBJ(o.Path)
		if err != nil {
			return nil, err
		}
		return collision.NewMesh(g, pose(o), o.Rigidity)
	}

	return r
}

func pose(o config.ObstacleConfig) collision.Transform {
	return collision.FromEuler(o.Position, o.Rotation, o.Scale)
}

func radius(o config.ObstacleConfig) float64 {
	if o.Radius > 0 {
		return o.Radius
	}
	return DefaultObstacleRadius
}

// RegisterObstacle adds or replaces an obstacle kind.
func (r *Registry) RegisterObstacle(kind string, fn ObstacleBuilder) {
	r.obstacles[kind] = fn
}

func (r *Registry) GetIntegrator(name string) (dynamo.Integrator, error) {
	return integrators.ByName(name)
}

func (r *Registry) GetObstacle(o config.ObstacleConfig) (dynamo.Collider, error) {
	fn, ok := r.obstacles[o.Kind]
	if !ok {
		return nil, fmt.Errorf("unknown obstacle: %s", o.Kind)
	}
	return fn(o)
}

func (r *Registry) ListIntegrators() []string {
	return integrators.Names()
}

func (r *Registry) ListObstacles() []string {
	names := make([]string, 0, len(r.obstacles))
	for name := range r.obstacles {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (r *Registry) ListWindModes() []string {
	names := make([]string, len(r.windModes))
	for i, m := range r.windModes {
		names[i] = m.String()
	}
	return names
}

func (r *Registry) DefaultMetrics(c *physics.Cloth) []dynamo.Metric {
	return []dynamo.Metric{
		metrics.NewEnergy(c),
		metrics.NewEnergyDrift(c),
		metrics.NewStability(StabilitySpeedLimit),
		metrics.NewStretch(c),
	}
}
