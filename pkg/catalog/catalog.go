// Package catalog is the fixed registry of read-only cluster operations. The
// router uses it to build keyword tables and LLM tool lists, the executor to
// validate arguments before dispatch.
package catalog

import (
	"fmt"
	"slices"
)

// Catalog is an immutable, ordered set of operations.
type Catalog struct {
	ops    []Operation
	byName map[string]int
}

// New builds a catalog from operations in the given order. Names must be
// unique and non-empty.
func New(ops ...Operation) (*Catalog, error) {
	c := &Catalog{
		ops:    make([]Operation, 0, len(ops)),
		byName: make(map[string]int, len(ops)),
	}
	for _, op := range ops {
		if op.Name == "" {
			return nil, fmt.Errorf("operation with empty name")
		}
		if _, dup := c.byName[op.Name]; dup {
			return nil, fmt.Errorf("duplicate operation %q", op.Name)
		}
		for _, p := range op.Params {
			if p.Type == ParamTypeEnum && len(p.Enum) == 0 {
				return nil, fmt.Errorf("operation %q: enum parameter %q has no values", op.Name, p.Name)
			}
		}
		c.byName[op.Name] = len(c.ops)
		c.ops = append(c.ops, op)
	}
	return c, nil
}

// Default returns the catalog of built-in cluster operations.
func Default() *Catalog {
	c, err := New(Operations()...)
	if err != nil {
		panic(fmt.Sprintf("built-in catalog is invalid: %v", err))
	}
	return c
}

// List returns the operations in stable catalog order.
func (c *Catalog) List() []Operation {
	return slices.Clone(c.ops)
}

// Names returns the operation names in catalog order.
func (c *Catalog) Names() []string {
	names := make([]string, len(c.ops))
	for i, op := range c.ops {
		names[i] = op.Name
	}
	return names
}

// Get returns the named operation or a *NotFoundError.
func (c *Catalog) Get(name string) (*Operation, error) {
	i, ok := c.byName[name]
	if !ok {
		return nil, &NotFoundError{Name: name}
	}
	op := c.ops[i]
	return &op, nil
}

// Validate looks up the operation and checks args against it. It returns the
// operation together with normalized arguments.
func (c *Catalog) Validate(name string, args map[string]any) (*Operation, Arguments, error) {
	op, err := c.Get(name)
	if err != nil {
		return nil, nil, err
	}
	normalized, err := op.Validate(args)
	if err != nil {
		return nil, nil, err
	}
	return op, normalized, nil
}
