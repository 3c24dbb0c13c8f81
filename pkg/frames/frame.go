package frames

import "fmt"

// Code identifies a code location independent of any particular invocation:
// a function name plus the file that defines it.
type Code struct {
	Name string
	File string
}

func (c Code) String() string {
	return c.Name
}

// ContextID identifies an execution context: a goroutine, or a cooperative
// fiber multiplexed onto one.
type ContextID int64

// Snapshot maps every captured context to its innermost frame.
type Snapshot map[ContextID]*Frame

// Frame is a single call-stack entry: a code location plus the execution
// position within it. Frames link to their caller, forming the raw chain a
// capture produces; the innermost frame is the head of the chain. Frames are
// immutable after construction.
type Frame struct {
	code   Code
	line   int
	caller *Frame
}

func NewFrame(code Code, line int, caller *Frame) *Frame {
	return &Frame{code: code, line: line, caller: caller}
}

func (f *Frame) Code() Code {
	return f.code
}

func (f *Frame) Line() int {
	return f.line
}

// Caller returns the frame that invoked this one, or nil at the outermost
// frame.
func (f *Frame) Caller() *Frame {
	return f.caller
}

func (f *Frame) String() string {
	return fmt.Sprintf("%s (%s:%d)", f.code.Name, f.code.File, f.line)
}
