package neat

import "fmt"

// Catalog is an ordered table of named functions of one kind. The order is the
// registration order and fixes the one-hot layout produced by Genome.ToVector.
type Catalog[F any] struct {
	names []string
	funcs map[string]F
}

// NewCatalog creates an empty catalog.
func NewCatalog[F any]() *Catalog[F] {
	return &Catalog[F]{funcs: make(map[string]F)}
}

// Register adds fn under name. Registering a name twice replaces the function
// but keeps its original position.
func (c *Catalog[F]) Register(name string, fn F) {
	if _, ok := c.funcs[name]; !ok {
		c.names = append(c.names, name)
	}
	c.funcs[name] = fn
}

// Lookup returns the function registered under name.
func (c *Catalog[F]) Lookup(name string) (F, bool) {
	fn, ok := c.funcs[name]
	return fn, ok
}

// Index returns the position of name, or -1.
func (c *Catalog[F]) Index(name string) int {
	for i, n := range c.names {
		if n == name {
			return i
		}
	}
	return -1
}

// Len returns the number of registered functions.
func (c *Catalog[F]) Len() int {
	return len(c.names)
}

// Names returns the registered names in order.
func (c *Catalog[F]) Names() []string {
	out := make([]string, len(c.names))
	copy(out, c.names)
	return out
}

// Functions is the read-only set of activation and aggregation functions shared
// by a population. Genes refer to its entries by name.
type Functions struct {
	Activations  *Catalog[ActivationFunc]
	Aggregations *Catalog[AggregationFunc]
}

// NewFunctions builds catalogs from built-in function names, in the given order.
func NewFunctions(activations, aggregations []string) (*Functions, error) {
	if len(activations) == 0 || len(aggregations) == 0 {
		return nil, fmt.Errorf("%w: activation and aggregation options must not be empty", ErrConfiguration)
	}
	fns := &Functions{
		Activations:  NewCatalog[ActivationFunc](),
		Aggregations: NewCatalog[AggregationFunc](),
	}
	for _, name := range activations {
		fn, err := GetActivation(name)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrConfiguration, err)
		}
		fns.Activations.Register(name, fn)
	}
	for _, name := range aggregations {
		fn, err := GetAggregation(name)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrConfiguration, err)
		}
		fns.Aggregations.Register(name, fn)
	}
	return fns, nil
}

// resolve returns the activation and aggregation functions of a node gene.
func (f *Functions) resolve(node *NodeGene) (ActivationFunc, AggregationFunc, error) {
	act, ok := f.Activations.Lookup(node.Activation)
	if !ok {
		return nil, nil, fmt.Errorf("%w: node %d activation %q", ErrUnknownFunction, node.ID, node.Activation)
	}
	agg, ok := f.Aggregations.Lookup(node.Aggregation)
	if !ok {
		return nil, nil, fmt.Errorf("%w: node %d aggregation %q", ErrUnknownFunction, node.ID, node.Aggregation)
	}
	return act, agg, nil
}
