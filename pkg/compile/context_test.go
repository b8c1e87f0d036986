package compile

import (
	"testing"

	"github.com/thistle-tpl/thistle/pkg/scope"
)

func TestContext(t *testing.T) {
	root := NewContext()
	if err := root.AddService("a", 1); err != nil {
		t.Fatal(err)
	}
	if _, ok := root.GetAncestorService("a"); ok {
		t.Errorf("local service visible as ancestor service")
	}
	if err := root.AddService("a", 2); err == nil {
		t.Errorf("duplicate registration succeeded")
	}

	child := root.MakeChildNodeContext()
	root.AddService("b", 3)
	if v, ok := child.GetAncestorService("a"); !ok || v != 1 {
		t.Errorf("GetAncestorService(a) -> (%v, %v), want (1, true)", v, ok)
	}
	if _, ok := child.GetAncestorService("b"); ok {
		t.Errorf("service registered after MakeChildNodeContext is visible")
	}
	if err := child.AddService("a", 4); err != nil {
		t.Errorf("shadowing an ancestor service failed: %v", err)
	}
	grandchild := child.MakeChildNodeContext()
	if v, _ := grandchild.GetAncestorService("a"); v != 4 {
		t.Errorf("GetAncestorService(a) -> %v, want 4", v)
	}
	if v, _ := root.MakeChildNodeContext().GetAncestorService("a"); v != 1 {
		t.Errorf("registration in child leaked into parent")
	}
}

func TestFrame(t *testing.T) {
	fm := NewFrame(scope.Empty)
	key1, key2 := new(int), new(int)
	if _, ok := fm.Pop(key1); ok {
		t.Errorf("Pop on empty stack succeeded")
	}
	fm.Push(key1, "a")
	fm.Push(key1, "b")
	fm.Push(key2, "c")

	child := fm.WithScope(scope.Map{"x": 1})
	if v, ok := child.Top(key1); !ok || v != "b" {
		t.Errorf("Top -> (%v, %v), want (b, true)", v, ok)
	}
	if v, _ := child.Pop(key1); v != "b" {
		t.Errorf("Pop -> %v, want b", v)
	}
	if v, _ := fm.Top(key1); v != "a" {
		t.Errorf("Pop in forked frame not visible in parent; Top -> %v", v)
	}
	if v, _ := fm.Top(key2); v != "c" {
		t.Errorf("stacks with different keys interfere; Top -> %v", v)
	}
	if _, ok := fm.Scope.Lookup("x"); ok {
		t.Errorf("WithScope changed the scope of the parent frame")
	}
}
