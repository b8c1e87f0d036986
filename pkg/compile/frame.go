package compile

import "github.com/thistle-tpl/thistle/pkg/scope"

// Frame is the state of one link call. Frames for nested scopes are forked
// with WithScope and share the rest of the state with their parent.
//
// A Frame must not be shared between concurrent link calls.
type Frame struct {
	Scope scope.Scope
	state *frameState
}

type frameState struct {
	stacks map[any][]any
}

// NewFrame creates a Frame for a new link call.
func NewFrame(s scope.Scope) *Frame {
	return &Frame{s, &frameState{}}
}

// WithScope returns a Frame that links against s and shares all other state
// with fm.
func (fm *Frame) WithScope(s scope.Scope) *Frame {
	return &Frame{s, fm.state}
}

// Push pushes a value onto the stack identified by key. Directives use keys
// they own, such as a pointer to their compile-time service, so that nested
// instances of one directive keep separate state.
func (fm *Frame) Push(key, v any) {
	if fm.state.stacks == nil {
		fm.state.stacks = make(map[any][]any)
	}
	fm.state.stacks[key] = append(fm.state.stacks[key], v)
}

// Pop pops a value from the stack identified by key.
func (fm *Frame) Pop(key any) (any, bool) {
	stack := fm.state.stacks[key]
	if len(stack) == 0 {
		return nil, false
	}
	v := stack[len(stack)-1]
	stack[len(stack)-1] = nil
	fm.state.stacks[key] = stack[:len(stack)-1]
	return v, true
}

// Top returns the value on top of the stack identified by key.
func (fm *Frame) Top(key any) (any, bool) {
	stack := fm.state.stacks[key]
	if len(stack) == 0 {
		return nil, false
	}
	return stack[len(stack)-1], true
}
