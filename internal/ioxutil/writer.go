// Package ioxutil holds small writer/formatting helpers shared between
// the iox CLI and its interpreter, independent of language semantics.
package ioxutil

import (
	"bytes"
	"io"
)

// WriteBuffer combines a byte buffer with a destination writer and a
// flush policy. Example use:
//
//	var buf WriteBuffer
//	buf.To = os.Stderr
//	for line := range lines {
//		fmt.Fprintln(&buf, line)
//		buf.MaybeFlush()
//	}
//	buf.Flush()
type WriteBuffer struct {
	FlushPolicy
	To io.Writer
	bytes.Buffer
}

// FlushPolicy determines when a WriteBuffer should flush during its
// main write phase.
type FlushPolicy interface {
	ShouldFlush(b []byte) int
}

// FlushPolicyFunc adapts a plain function to FlushPolicy.
type FlushPolicyFunc func(b []byte) int

// ShouldFlush calls the receiver function pointer.
func (f FlushPolicyFunc) ShouldFlush(b []byte) int { return f(b) }

// Flush writes all buffered bytes to To, regardless of FlushPolicy.
func (buf *WriteBuffer) Flush() error {
	_, err := buf.WriteTo(buf.To)
	return err
}

// MaybeFlush writes N bytes to To if FlushPolicy returns N > 0, then
// discards those N bytes from the buffer. Defaults to FlushLineChunks
// when no FlushPolicy has been set.
func (buf *WriteBuffer) MaybeFlush() error {
	if buf.FlushPolicy == nil {
		buf.FlushPolicy = FlushPolicyFunc(FlushLineChunks)
	}
	b := buf.Bytes()
	if n := buf.ShouldFlush(b); n > 0 {
		m, err := buf.To.Write(b[:n])
		buf.Next(m)
		return err
	}
	return nil
}

// FlushLineChunks flushes as large a chunk as possible, through the
// last written newline byte.
func FlushLineChunks(b []byte) int {
	if i := bytes.LastIndexByte(b, '\n'); i >= 0 {
		return i + 1
	}
	return 0
}

// PrefixWriter returns a writer that prepends prefix before every line
// written through it — used by cmd/iox to label which script path a
// stderr diagnostic came from when running more than one script in a
// single invocation (stdout, including out/dbg output, is not wrapped). Callers should Close it to flush any
// buffered partial final line.
func PrefixWriter(prefix string, w io.Writer) *Prefixer {
	var p Prefixer
	p.Buffer.To = w
	p.Prefix = prefix
	return &p
}

// Prefixer writes Prefix before every line written to an underlying
// writer. Create with PrefixWriter. Set Skip true for a one-shot
// "don't prefix the next line" (used right after a caller has already
// written its own leading label).
type Prefixer struct {
	Prefix string
	Skip   bool
	Buffer WriteBuffer
}

// Close flushes all internally buffered bytes to the underlying writer.
func (p *Prefixer) Close() error { return p.Buffer.Flush() }

// Flush flushes all internally buffered bytes to the underlying writer.
func (p *Prefixer) Flush() error { return p.Buffer.Flush() }

// Write implements io.Writer, inserting Prefix before every line.
func (p *Prefixer) Write(b []byte) (n int, err error) {
	first := true
	for len(b) > 0 {
		if !first {
			p.addPrefix()
		} else if i := p.Buffer.Len() - 1; i < 0 || p.Buffer.Bytes()[i] == '\n' {
			p.addPrefix()
			first = false
		} else {
			first = false
		}

		line := b
		if i := bytes.IndexByte(b, '\n'); i >= 0 {
			i++
			line = b[:i]
			b = b[i:]
		} else {
			b = nil
		}
		m, _ := p.Buffer.Write(line)
		n += m
	}
	return n, p.Buffer.MaybeFlush()
}

func (p *Prefixer) addPrefix() {
	if p.Skip {
		p.Skip = false
	} else {
		p.Buffer.WriteString(p.Prefix)
	}
}
