package lang

import (
	"errors"
	"slices"
	"testing"
)

func TestContext_Layers(t *testing.T) {
	c := NewContext()

	if err := c.Define("a", Number(1)); err != nil {
		t.Fatalf("define error: %v", err)
	}

	c.Push()

	if err := c.Define("a", Number(2)); err != nil {
		t.Fatalf("shadowing define error: %v", err)
	}

	if err := c.Define("b", Number(3)); err != nil {
		t.Fatalf("define error: %v", err)
	}

	if v, _ := c.Get("a"); v.Number != 2 {
		t.Errorf("expected inner a=2, got %s", v.Source())
	}

	if c.Depth() != 2 {
		t.Errorf("expected depth 2, got %d", c.Depth())
	}

	c.Pop()

	if v, _ := c.Get("a"); v.Number != 1 {
		t.Errorf("expected outer a=1 after pop, got %s", v.Source())
	}

	if c.Has("b") {
		t.Errorf("expected b to be discarded with its layer")
	}

	c.Pop()

	if c.Depth() != 1 {
		t.Errorf("expected base layer to survive pop, got depth %d", c.Depth())
	}
}

func TestContext_AssignThroughLayers(t *testing.T) {
	c := NewContext()
	_ = c.Define("x", Number(1))

	c.Push()

	if err := c.Assign("x", Number(5)); err != nil {
		t.Fatalf("assign error: %v", err)
	}

	c.Pop()

	if v, _ := c.Get("x"); v.Number != 5 {
		t.Errorf("expected assignment to persist, got %s", v.Source())
	}

	if err := c.Assign("y", Number(1)); !errors.Is(err, ErrUndefinedVariable) {
		t.Errorf("expected undefined variable, got %v", err)
	}

	if err := c.Define("x", Number(2)); !errors.Is(err, ErrAlreadyDefined) {
		t.Errorf("expected already defined, got %v", err)
	}
}

func TestContext_GetCopies(t *testing.T) {
	c := NewContext()
	_ = c.Define("xs", List(Number(1)))

	v, _ := c.Get("xs")
	v.List[0] = Number(9)

	if got, _ := c.Get("xs"); got.List[0].Number != 1 {
		t.Errorf("expected Get to return a copy, got %s", got.Source())
	}
}

func TestContext_CallIsolation(t *testing.T) {
	caller := NewContext()
	_ = caller.Define("x", Number(1))
	_ = caller.Define("f", Number(0))

	params := NewScope()
	_ = params.Define("p", Number(7))

	inner := newCallContext(caller, params)

	if !inner.Has("x") || !inner.Has("p") {
		t.Fatalf("expected call context to see caller and params")
	}

	if err := inner.Assign("x", Number(10)); err != nil {
		t.Fatalf("assign error: %v", err)
	}

	if err := inner.Assign("f", Number(2)); err != nil {
		t.Fatalf("assign error: %v", err)
	}

	if v, _ := inner.Get("x"); v.Number != 10 {
		t.Errorf("expected call-local x=10, got %s", v.Source())
	}

	if v, _ := caller.Get("x"); v.Number != 1 {
		t.Errorf("expected caller x unchanged, got %s", v.Source())
	}

	inner.reconcile("f")

	if v, _ := caller.Get("f"); v.Number != 2 {
		t.Errorf("expected reconciled f=2, got %s", v.Source())
	}

	if v, _ := caller.Get("x"); v.Number != 1 {
		t.Errorf("expected only f to be reconciled, got x=%s", v.Source())
	}

	if got := inner.Names(); !slices.Equal(got, []string{"f", "p", "x"}) {
		t.Errorf("expected names [f p x], got %v", got)
	}
}
