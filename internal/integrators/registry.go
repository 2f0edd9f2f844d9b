package integrators

import (
	"fmt"
	"sort"
)

// Default is the integrator used when none is configured.
const Default = "semi_implicit_euler"

var constructors = map[string]func(g float64) Integrator{
	"semi_implicit_euler": func(g float64) Integrator { return NewSemiImplicitEuler(g) },
	"explicit_euler":      func(g float64) Integrator { return NewEuler(g) },
	"velocity_verlet":     func(g float64) Integrator { return NewVerlet(g) },
	"rk4":                 func(g float64) Integrator { return NewRK4(g) },
}

// New returns the integrator registered under name, using acceleration g.
func New(name string, g float64) (Integrator, error) {
	if name == "" {
		name = Default
	}
	fn, ok := constructors[name]
	if !ok {
		return nil, fmt.Errorf("unknown integrator: %s", name)
	}
	return fn(g), nil
}

func Names() []string {
	names := make([]string, 0, len(constructors))
	for name := range constructors {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
