package integrators

import (
	"fmt"
	"sort"
	"strings"

	"github.com/san-kum/clothsim/internal/dynamo"
)

// Default is the scheme used when none is configured.
const Default = "symplectic"

var schemes = map[string]func() dynamo.Integrator{
	"explicit":   func() dynamo.Integrator { return NewExplicit() },
	"symplectic": func() dynamo.Integrator { return NewSymplectic() },
}

// ByName resolves a scheme name. An empty name selects Default.
func ByName(name string) (dynamo.Integrator, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		name = Default
	}
	fn, ok := schemes[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", dynamo.ErrUnknownIntegrator, name)
	}
	return fn(), nil
}

func Names() []string {
	names := make([]string, 0, len(schemes))
	for n := range schemes {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
