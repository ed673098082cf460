// Package strategies defines the strategy contract and a registry of named
// strategy builders. The registry is an explicit object constructed at
// startup and passed by reference, so tests can hold isolated registries
// and nothing depends on import-time side effects.
package strategies

import (
	"fmt"
	"sort"

	"github.com/quantlab/backtester/market"
)

// Strategy is invoked once per symbol per timestamp at which that symbol
// has a bar. Returning nil proposes no order for the step.
type Strategy interface {
	Name() string
	OnBar(bar market.Bar) *market.Order
}

// Builder constructs a strategy instance for one symbol from free-form
// config params.
type Builder func(symbol string, params map[string]any) (Strategy, error)

// Registry maps strategy names to builders.
type Registry struct {
	builders map[string]Builder
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{builders: make(map[string]Builder)}
}

// Register adds a builder under name. Registering the same name twice is an
// error, to surface conflicting registrations at startup.
func (r *Registry) Register(name string, b Builder) error {
	if _, exists := r.builders[name]; exists {
		return fmt.Errorf("strategy %q already registered", name)
	}
	r.builders[name] = b
	return nil
}

// Build constructs a strategy instance by name.
func (r *Registry) Build(name, symbol string, params map[string]any) (Strategy, error) {
	b, ok := r.builders[name]
	if !ok {
		return nil, fmt.Errorf("unknown strategy %q (registered: %v)", name, r.Names())
	}
	return b(symbol, params)
}

// Names lists registered strategy names, sorted.
func (r *Registry) Names() []string {
	out := make([]string, 0, len(r.builders))
	for name := range r.builders {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// DefaultRegistry returns a registry with the built-in strategies.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	// Registration of built-ins cannot collide.
	_ = r.Register("noop", func(symbol string, params map[string]any) (Strategy, error) {
		return Noop{}, nil
	})
	_ = r.Register("ma_crossover", NewMACrossover)
	_ = r.Register("momentum", NewMomentum)
	return r
}

// intParam reads an integer parameter, tolerating the numeric types YAML
// and JSON decoding produce.
func intParam(params map[string]any, key string, def int) (int, error) {
	v, ok := params[key]
	if !ok {
		return def, nil
	}
	switch n := v.(type) {
	case int:
		return n, nil
	case int64:
		return int(n), nil
	case float64:
		return int(n), nil
	default:
		return 0, fmt.Errorf("param %q: want integer, got %T", key, v)
	}
}
