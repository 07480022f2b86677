// Copyright © 2018 The ELPS authors

package lisp

import (
	"fmt"
	"io"

	"github.com/luthersystems/clove/parser/token"
)

// DefaultMaxStackHeight bounds the number of nested function calls on one
// Thread.
const DefaultMaxStackHeight = 10000

// CallStack is a function call stack.  Every function invocation pushes a
// frame, including builtin and macro calls, so failures can report the chain
// of qualified function names that led to them.
type CallStack struct {
	Frames    []CallFrame
	MaxHeight int
}

// CallFrame is one frame in the CallStack
type CallFrame struct {
	// Source is the location of the call site.
	Source *token.Location
	// Name is the qualified name of the called function.
	Name string
	// Package is the namespace defining the called function.
	Package string
}

func (f *CallFrame) String() string {
	if f.Source != nil && f.Source.Pos >= 0 {
		return fmt.Sprintf("%s: %s", f.Source, f.Name)
	}
	return f.Name
}

// Copy creates a copy of the current stack so that it can be attached to a
// runtime error.
func (s *CallStack) Copy() *CallStack {
	frames := make([]CallFrame, len(s.Frames))
	copy(frames, s.Frames)
	return &CallStack{
		MaxHeight: s.MaxHeight,
		Frames:    frames,
	}
}

// Top returns the CallFrame at the top of the stack or nil if none exists.
func (s *CallStack) Top() *CallFrame {
	if s == nil || len(s.Frames) == 0 {
		return nil
	}
	return &s.Frames[len(s.Frames)-1]
}

// Height returns the number of frames on the stack.
func (s *CallStack) Height() int {
	return len(s.Frames)
}

// Push pushes a new stack frame onto s.  Push fails when the stack has reached
// its maximum height.
func (s *CallStack) Push(src *token.Location, name string, pkg string) error {
	if s.MaxHeight > 0 && s.MaxHeight <= len(s.Frames) {
		return &StackOverflowError{len(s.Frames) + 1}
	}
	s.Frames = append(s.Frames, CallFrame{
		Source:  src,
		Name:    name,
		Package: pkg,
	})
	return nil
}

// Pop removes the top CallFrame from the stack and returns it.
func (s *CallStack) Pop() CallFrame {
	if len(s.Frames) < 1 {
		panic("pop called on an empty stack")
	}
	f := s.Frames[len(s.Frames)-1]
	s.Frames[len(s.Frames)-1] = CallFrame{}
	s.Frames = s.Frames[:len(s.Frames)-1]
	return f
}

// DebugPrint prints s
func (s *CallStack) DebugPrint(w io.Writer) (int, error) {
	n, err := fmt.Fprintf(w, "Stack Trace [%d frames -- entrypoint last]:\n", len(s.Frames))
	if err != nil {
		return n, err
	}
	indent := "  "
	for i := len(s.Frames) - 1; i >= 0; i-- {
		_n, err := fmt.Fprintf(w, "%sheight %d: %s\n", indent, i, s.Frames[i].String())
		n += _n
		if err != nil {
			return n, err
		}
	}
	return n, nil
}

type StackOverflowError struct {
	Height int
}

func (e *StackOverflowError) Error() string {
	return fmt.Sprintf("stack height exceeded maximum: %v", e.Height)
}
