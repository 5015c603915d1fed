package iox

// Frame is the value sequence making up one level of the Stream stack,
// or the contents of the Cycle buffer, or a stored Variable.
type Frame []Value

// Stream is the stack of value sequences the interpreter evaluates
// against (spec.md §3's "Stream Stack S" and "Cycle Buffer C"). The top
// frame is the one most operators read from and rewrite.
//
// Invariant: the stack is never empty once constructed; Pop re-seeds an
// empty frame rather than allowing the stack to run dry.
type Stream struct {
	frames []Frame
	cycled Frame
}

// NewStream returns a Stream initialized with one empty top frame.
func NewStream() *Stream {
	return &Stream{frames: []Frame{nil}}
}

// Top returns the active frame.
func (s *Stream) Top() Frame {
	return s.frames[len(s.frames)-1]
}

// SetTop replaces the active frame's contents.
func (s *Stream) SetTop(f Frame) {
	s.frames[len(s.frames)-1] = f
}

// Push appends a value to the active frame.
func (s *Stream) Push(v Value) {
	i := len(s.frames) - 1
	s.frames[i] = append(s.frames[i], v)
}

// Append appends a run of values to the active frame, preserving order.
func (s *Stream) Append(vs Frame) {
	i := len(s.frames) - 1
	s.frames[i] = append(s.frames[i], vs...)
}

// Flush clears the active frame in place without touching the cycle
// buffer.
func (s *Stream) Flush() {
	s.SetTop(nil)
}

// Cycle saves the active frame into the cycle buffer and starts a fresh
// empty active frame (spec.md §4.3's cycle()).
func (s *Stream) Cycle() {
	s.cycled = s.Top()
	s.SetTop(nil)
}

// Recycle pushes the cycle buffer onto the stack as a new active frame
// and clears the cycle buffer (spec.md §4.3's recycle()).
func (s *Stream) Recycle() {
	s.frames = append(s.frames, s.cycled)
	s.cycled = nil
}

// Cycled returns the current contents of the cycle buffer, as consulted
// by the wildcard `_` operator.
func (s *Stream) Cycled() Frame {
	return s.cycled
}

// PushFrame pushes a new empty frame onto the stack.
func (s *Stream) PushFrame() {
	s.frames = append(s.frames, nil)
}

// PopFrame pops the active frame, re-seeding an empty frame if that
// would otherwise leave the stack empty.
func (s *Stream) PopFrame() {
	if len(s.frames) > 1 {
		s.frames = s.frames[:len(s.frames)-1]
		return
	}
	s.frames[0] = nil
}

// Depth reports how many frames are on the stack.
func (s *Stream) Depth() int { return len(s.frames) }

// Reset clears the whole stack back to a single empty frame and empties
// the cycle buffer.
func (s *Stream) Reset() {
	s.frames = s.frames[:1]
	s.frames[0] = nil
	s.cycled = nil
}
