package lang

import (
	"log/slog"
	"maps"
	"slices"
)

// Scope is one layer of name bindings.
type Scope struct {
	vars map[string]*Value
}

// NewScope returns an empty scope.
func NewScope() *Scope {
	return &Scope{vars: make(map[string]*Value)}
}

// Define binds name to v. Binding a name already present in the scope fails.
func (s *Scope) Define(name string, v Value) error {
	if _, ok := s.vars[name]; ok {
		return ErrAlreadyDefined.With(slog.String("name", name))
	}

	s.vars[name] = &v

	return nil
}

// Lookup returns the slot bound to name.
func (s *Scope) Lookup(name string) (*Value, bool) {
	v, ok := s.vars[name]

	return v, ok
}

// Names returns the bound names in sorted order.
func (s *Scope) Names() []string {
	return slices.Sorted(maps.Keys(s.vars))
}

// Context is the runtime environment of an evaluation: a stack of scope
// layers with the innermost layer active.
//
// A call context additionally reads through to the caller context. Writes to
// names owned by the caller land in a call-local overlay, so the caller
// never observes them unless reconciled after the call.
type Context struct {
	layers  []*Scope
	caller  *Context
	overlay *Scope
}

// NewContext returns a context with a single empty layer.
func NewContext() *Context {
	return &Context{layers: []*Scope{NewScope()}}
}

// newCallContext returns a context whose base layer is params and whose
// reads fall through to caller.
func newCallContext(caller *Context, params *Scope) *Context {
	return &Context{
		layers:  []*Scope{params},
		caller:  caller,
		overlay: NewScope(),
	}
}

// Depth returns the number of layers, including the base layer.
func (c *Context) Depth() int { return len(c.layers) }

// Push activates a new empty layer.
func (c *Context) Push() {
	c.layers = append(c.layers, NewScope())
}

// Pop discards the active layer along with every name defined in it. Writes
// made through the layer to names owned by outer layers have already landed
// in those layers. The base layer is never popped.
func (c *Context) Pop() {
	if len(c.layers) > 1 {
		c.layers[len(c.layers)-1] = nil
		c.layers = c.layers[:len(c.layers)-1]
	}
}

// Define binds name in the active layer.
func (c *Context) Define(name string, v Value) error {
	return c.layers[len(c.layers)-1].Define(name, v)
}

// Get returns a deep copy of the value bound to name.
func (c *Context) Get(name string) (Value, error) {
	slot, ok := c.lookup(name)
	if !ok {
		return Unit(), ErrUndefinedVariable.With(slog.String("name", name))
	}

	return slot.Clone(), nil
}

// Has reports whether name is visible from the active layer.
func (c *Context) Has(name string) bool {
	_, ok := c.lookup(name)

	return ok
}

// Assign overwrites the existing binding of name.
func (c *Context) Assign(name string, v Value) error {
	slot, err := c.Slot(name)
	if err != nil {
		return err
	}

	*slot = v

	return nil
}

// Slot returns the writable location bound to name. Names owned by a caller
// are first copied into the call overlay.
func (c *Context) Slot(name string) (*Value, error) {
	if slot, ok := c.local(name); ok {
		return slot, nil
	}

	if c.caller != nil {
		if v, ok := c.caller.lookup(name); ok {
			cp := v.Clone()
			c.overlay.vars[name] = &cp

			return &cp, nil
		}
	}

	return nil, ErrUndefinedVariable.With(slog.String("name", name))
}

// Names returns every name visible from the active layer, sorted.
func (c *Context) Names() []string {
	seen := make(map[string]struct{})

	for ctx := c; ctx != nil; ctx = ctx.caller {
		for _, s := range ctx.layers {
			for name := range s.vars {
				seen[name] = struct{}{}
			}
		}
	}

	return slices.Sorted(maps.Keys(seen))
}

// lookup finds name in the layers (innermost first), then the overlay, then
// the caller chain.
func (c *Context) lookup(name string) (*Value, bool) {
	for ctx := c; ctx != nil; ctx = ctx.caller {
		if slot, ok := ctx.local(name); ok {
			return slot, true
		}
	}

	return nil, false
}

// local finds name in this context's own layers and overlay.
func (c *Context) local(name string) (*Value, bool) {
	for i := len(c.layers) - 1; i >= 0; i-- {
		if slot, ok := c.layers[i].Lookup(name); ok {
			return slot, true
		}
	}

	if c.overlay != nil {
		return c.overlay.Lookup(name)
	}

	return nil, false
}

// reconcile copies the call-local rebinding of name, if any, back into the
// caller.
func (c *Context) reconcile(name string) {
	if c.caller == nil || c.overlay == nil {
		return
	}

	v, ok := c.overlay.Lookup(name)
	if !ok {
		return
	}

	if slot, err := c.caller.Slot(name); err == nil {
		*slot = *v
	}
}
