package iox

import (
	"fmt"
	"io"
	"strings"
	"time"
)

// opFunc is the signature every builtin operator implements: it reads
// and/or replaces ip.Stream.Top() and returns an error on failure.
// errShortCircuit is the one sentinel with special meaning to the
// driver (see evalTokens); every other non-nil error aborts the line.
type opFunc func(ip *Interp) error

// opTable is the builtin operator catalog (spec.md §4.5), plus the
// supplemented abs (SPEC_FULL.md §9).
var opTable = map[string]opFunc{
	"out":    opOut,
	"dbg":    opDbg,
	"in":     opIn,
	"?":      opPredicate,
	"not":    opNot,
	"!":      opNot,
	"assert": opAssert,
	"else":   opNoop,
	"sleep":  opSleep,
	"len":    opLen,
	"int":    opCastInt,
	"real":   opNoop,
	"str":    opNoop,
	"bool":   opCastBool,
	"!!":     opCastBool,
	"+":      opSum,
	"-":      opDiff,
	"*":      opMult,
	"/":      opDiv,
	"flip":   opFlip,
	"rev":    opRev,
	"seq":    opSeq,
	"<=":     opLte,
	">=":     opGte,
	"<":      opLt,
	">":      opGt,
	"==":     opEq,
	"!=":     opNeq,
	"rand":   opRand,
	"choice": opChoice,
	"type":   opType,
	"mark":   opMark,
	"jmp":    opJmp,
	"join":   opJoin,
	"take":   opTake,
	"front":  opFront,
	"back":   opBack,
	"abs":    opAbs,
	";":      opClear,
}

func opNoop(ip *Interp) error { return nil }

func opClear(ip *Interp) error {
	ip.Stream.Flush()
	return nil
}

// writeOut implements the shared body of out and dbg: join the top
// frame's elements with sep, optionally single-quoting strings, and
// optionally trailing a newline.
func writeOut(ip *Interp, sep string, newline, quoteStrings bool) error {
	st := ip.Stream.Top()
	var b strings.Builder
	for i, v := range st {
		if i > 0 {
			b.WriteString(sep)
		}
		if quoteStrings && v.Tag == Str {
			b.WriteByte('\'')
			b.WriteString(v.Str())
			b.WriteByte('\'')
		} else {
			b.WriteString(v.String())
		}
	}
	if newline {
		b.WriteByte('\n')
	}
	_, err := io.WriteString(ip.Stdout, b.String())
	return err
}

func opOut(ip *Interp) error { return writeOut(ip, "", true, false) }
func opDbg(ip *Interp) error { return writeOut(ip, ", ", true, true) }

// opIn reads one line of stdin and replaces the stream with it as a
// single Str. If the stream
// isn't empty, its current contents are echoed first (plain, no
// trailing newline) so an interactive prompt can label the read.
func opIn(ip *Interp) error {
	if len(ip.Stream.Top()) > 0 {
		if err := writeOut(ip, "", false, false); err != nil {
			return err
		}
	}
	line, err := ip.readStdinLine()
	if err != nil {
		return err
	}
	ip.Stream.Flush()
	ip.Stream.Push(StrValue(line))
	return nil
}

// opPredicate implements `?`: cast the whole top frame to Bool in
// place, then use element 0 as the line's go/no-go decision.
func opPredicate(ip *Interp) error {
	st := ip.Stream.Top()
	if len(st) == 0 {
		return fmt.Errorf("?: empty stream has no predicate value")
	}
	out := make(Frame, len(st))
	for i, v := range st {
		b, err := v.ToBool()
		if err != nil {
			return err
		}
		out[i] = b
	}
	ip.Stream.SetTop(out)
	if !out[0].Bool() {
		return errShortCircuit
	}
	return nil
}

func opNot(ip *Interp) error {
	st := ip.Stream.Top()
	out := make(Frame, len(st))
	for i, v := range st {
		b, err := v.ToBool()
		if err != nil {
			return err
		}
		out[i] = BoolValue(!b.Bool())
	}
	ip.Stream.SetTop(out)
	return nil
}

// opAssert requires every element to cast to true, leaving the
// original (un-cast) stream in place if it does.
func opAssert(ip *Interp) error {
	for _, v := range ip.Stream.Top() {
		b, err := v.ToBool()
		if err != nil {
			return err
		}
		if !b.Bool() {
			return errAssertFailed(ip.ln)
		}
	}
	return nil
}

func opSleep(ip *Interp) error {
	st := ip.Stream.Top()
	if len(st) == 0 {
		return fmt.Errorf("sleep: expected a duration in seconds")
	}
	n, err := st[0].ToInt()
	if err != nil {
		return err
	}
	ip.Stream.Flush()
	ip.Sleep(time.Duration(n.Int()) * time.Second)
	return nil
}

func opLen(ip *Interp) error {
	n := len(ip.Stream.Top())
	ip.Stream.Flush()
	ip.Stream.Push(IntValue(int64(n)))
	return nil
}

func opCastInt(ip *Interp) error {
	st := ip.Stream.Top()
	out := make(Frame, len(st))
	for i, v := range st {
		nv, err := v.ToInt()
		if err != nil {
			return err
		}
		out[i] = nv
	}
	ip.Stream.SetTop(out)
	return nil
}

func opCastBool(ip *Interp) error {
	st := ip.Stream.Top()
	out := make(Frame, len(st))
	for i, v := range st {
		nv, err := v.ToBool()
		if err != nil {
			return err
		}
		out[i] = nv
	}
	ip.Stream.SetTop(out)
	return nil
}

// requireInt enforces the strict integer-tag requirement that
// spec.md's arithmetic operators (as distinct from the explicit int
// cast) carry over from the original: + - * / operate on Ints only,
// raising a type error rather than silently coercing.
func requireInt(v Value) (int64, error) {
	if v.Tag != Int {
		return 0, fmt.Errorf("type error: expected int, got %s", v.Tag)
	}
	return v.i, nil
}

func opSum(ip *Interp) error {
	var tot int64
	for _, v := range ip.Stream.Top() {
		n, err := requireInt(v)
		if err != nil {
			return err
		}
		tot += n
	}
	ip.Stream.Flush()
	ip.Stream.Push(IntValue(tot))
	return nil
}

// opDiff subtracts every element after the first from the first
// (spec.md §4.5: "first element minus the sum of the rest").
func opDiff(ip *Interp) error {
	st := ip.Stream.Top()
	var tot int64
	for i, v := range st {
		n, err := requireInt(v)
		if err != nil {
			return err
		}
		if i == 0 {
			tot = n
		} else {
			tot -= n
		}
	}
	ip.Stream.Flush()
	ip.Stream.Push(IntValue(tot))
	return nil
}

func opMult(ip *Interp) error {
	tot := int64(1)
	for _, v := range ip.Stream.Top() {
		n, err := requireInt(v)
		if err != nil {
			return err
		}
		tot *= n
	}
	ip.Stream.Flush()
	ip.Stream.Push(IntValue(tot))
	return nil
}

// opDiv divides the first element sequentially by the rest
// (spec.md §4.5); dividing by a zero anywhere in the rest fails.
func opDiv(ip *Interp) error {
	st := ip.Stream.Top()
	var tot int64
	for i, v := range st {
		n, err := requireInt(v)
		if err != nil {
			return err
		}
		if i == 0 {
			tot = n
			continue
		}
		if n == 0 {
			return ErrDivideByZero
		}
		tot /= n
	}
	ip.Stream.Flush()
	ip.Stream.Push(IntValue(tot))
	return nil
}

func opAbs(ip *Interp) error {
	st := ip.Stream.Top()
	out := make(Frame, len(st))
	for i, v := range st {
		switch v.Tag {
		case Int:
			n := v.i
			if n < 0 {
				n = -n
			}
			out[i] = IntValue(n)
		case Real:
			r := v.r
			if r < 0 {
				r = -r
			}
			out[i] = RealValue(r)
		default:
			return fmt.Errorf("abs: expected int or real, got %s", v.Tag)
		}
	}
	ip.Stream.SetTop(out)
	return nil
}

func opFlip(ip *Interp) error {
	st := ip.Stream.Top()
	for i, j := 0, len(st)-1; i < j; i, j = i+1, j-1 {
		st[i], st[j] = st[j], st[i]
	}
	return nil
}

func reverseRunes(s string) string {
	r := []rune(s)
	for i, j := 0, len(r)-1; i < j; i, j = i+1, j-1 {
		r[i], r[j] = r[j], r[i]
	}
	return string(r)
}

func opRev(ip *Interp) error {
	st := ip.Stream.Top()
	out := make(Frame, len(st))
	for i, v := range st {
		if v.Tag != Str {
			return fmt.Errorf("rev: expected string, got %s", v.Tag)
		}
		out[i] = StrValue(reverseRunes(v.Str()))
	}
	ip.Stream.SetTop(out)
	return nil
}

// opSeq builds an inclusive integer range (spec.md §9's seq
// supplement): one argument n counts up from 1; two arguments s, e
// step +1 or -1 depending on direction; three arguments s, e, inc use
// an explicit, possibly negative, step.
func opSeq(ip *Interp) error {
	st := ip.Stream.Top()
	var start, end, step int64

	switch {
	case len(st) <= 1:
		n := int64(1)
		if len(st) == 1 {
			v, err := st[0].ToInt()
			if err != nil {
				return err
			}
			n = v.Int()
		}
		start, end, step = 1, n, 1
	case len(st) == 2:
		s, err := st[0].ToInt()
		if err != nil {
			return err
		}
		e, err := st[1].ToInt()
		if err != nil {
			return err
		}
		start, end = s.Int(), e.Int()
		if start <= end {
			step = 1
		} else {
			step = -1
		}
	default:
		s, err := st[0].ToInt()
		if err != nil {
			return err
		}
		e, err := st[1].ToInt()
		if err != nil {
			return err
		}
		inc, err := st[2].ToInt()
		if err != nil {
			return err
		}
		start, end, step = s.Int(), e.Int(), inc.Int()
	}

	if step == 0 {
		return fmt.Errorf("seq: step must not be zero")
	}

	ip.Stream.Flush()
	if step > 0 {
		for i := start; i <= end; i += step {
			ip.Stream.Push(IntValue(i))
		}
	} else {
		for i := start; i >= end; i += step {
			ip.Stream.Push(IntValue(i))
		}
	}
	return nil
}

func opRand(ip *Interp) error {
	st := ip.Stream.Top()
	if len(st) < 2 {
		return fmt.Errorf("rand: expected [lo, hi]")
	}
	lo, err := st[0].ToInt()
	if err != nil {
		return err
	}
	hi, err := st[1].ToInt()
	if err != nil {
		return err
	}
	span := hi.Int() - lo.Int() + 1
	if span <= 0 {
		return fmt.Errorf("rand: invalid range [%d, %d]", lo.Int(), hi.Int())
	}
	v := lo.Int() + ip.Rand.Int63n(span)
	ip.Stream.Flush()
	ip.Stream.Push(IntValue(v))
	return nil
}

// opChoice keeps exactly one uniformly chosen element. An empty stream
// raises a catchable error rather than panicking (SPEC_FULL.md §9).
func opChoice(ip *Interp) error {
	st := ip.Stream.Top()
	if len(st) == 0 {
		return fmt.Errorf("choice: empty stream")
	}
	v := st[ip.Rand.Intn(len(st))]
	ip.Stream.Flush()
	ip.Stream.Push(v)
	return nil
}

func opType(ip *Interp) error {
	st := ip.Stream.Top()
	out := make(Frame, len(st))
	for i, v := range st {
		out[i] = StrValue(v.Tag.String())
	}
	ip.Stream.SetTop(out)
	return nil
}

func opMark(ip *Interp) error {
	st := ip.Stream.Top()
	if len(st) == 0 || st[0].Tag != Str {
		return fmt.Errorf("mark: expected a string name")
	}
	ip.Marks.Set(st[0].Str(), ip.seekpos)
	return nil
}

func opJmp(ip *Interp) error {
	if !ip.CanJump {
		return ErrMarksUnavailable
	}
	st := ip.Stream.Top()
	if len(st) == 0 || st[0].Tag != Str {
		return fmt.Errorf("jmp: expected a string name")
	}
	pos, ok := ip.Marks.Lookup(st[0].Str())
	if !ok {
		return errNoSuchMark(st[0].Str())
	}
	return ip.Source.Seek(pos)
}

// opJoin concatenates all but the last element (required to be
// strings) using the last element (also a string) as separator.
func opJoin(ip *Interp) error {
	st := ip.Stream.Top()
	if len(st) == 0 {
		return fmt.Errorf("join: empty stream")
	}
	sep := st[len(st)-1]
	if sep.Tag != Str {
		return fmt.Errorf("join: separator must be a string")
	}
	parts := make([]string, 0, len(st)-1)
	for _, v := range st[:len(st)-1] {
		if v.Tag != Str {
			return fmt.Errorf("join: expected string elements")
		}
		parts = append(parts, v.Str())
	}
	joined := strings.Join(parts, sep.Str())
	ip.Stream.Flush()
	ip.Stream.Push(StrValue(joined))
	return nil
}

// opTake keeps a prefix of the stream whose length is the last
// element (an int k), clamped to the available prefix length
// (spec.md §9's asymmetric-bound supplement: k may exceed the prefix
// length, but k < 1 is a range error).
func opTake(ip *Interp) error {
	st := ip.Stream.Top()
	if len(st) == 0 {
		return ErrSliceRange
	}
	kv, err := st[len(st)-1].ToInt()
	if err != nil {
		return err
	}
	k := int(kv.Int())
	if k < 1 {
		return ErrSliceRange
	}
	prefix := st[:len(st)-1]
	if k > len(prefix) {
		k = len(prefix)
	}
	out := make(Frame, k)
	copy(out, prefix[:k])
	ip.Stream.SetTop(out)
	return nil
}

func opFront(ip *Interp) error {
	st := ip.Stream.Top()
	if len(st) == 0 {
		return fmt.Errorf("front: empty stream")
	}
	v := st[0]
	ip.Stream.Flush()
	ip.Stream.Push(v)
	return nil
}

func opBack(ip *Interp) error {
	st := ip.Stream.Top()
	if len(st) == 0 {
		return fmt.Errorf("back: empty stream")
	}
	v := st[len(st)-1]
	ip.Stream.Flush()
	ip.Stream.Push(v)
	return nil
}

// chainedCompare implements < <= > >= as a pairwise chained comparison
// over adjacent elements (SPEC_FULL.md §9), collapsing the stream to a
// single Bool that is true only if every adjacent pair satisfies cmp.
func chainedCompare(ip *Interp, cmp func(a, b int64) bool) error {
	st := ip.Stream.Top()
	good := true
	for i := 1; i < len(st); i++ {
		a, err := requireInt(st[i-1])
		if err != nil {
			return err
		}
		b, err := requireInt(st[i])
		if err != nil {
			return err
		}
		if !cmp(a, b) {
			good = false
			break
		}
	}
	ip.Stream.Flush()
	ip.Stream.Push(BoolValue(good))
	return nil
}

func opLt(ip *Interp) error  { return chainedCompare(ip, func(a, b int64) bool { return a < b }) }
func opLte(ip *Interp) error { return chainedCompare(ip, func(a, b int64) bool { return a <= b }) }
func opGt(ip *Interp) error  { return chainedCompare(ip, func(a, b int64) bool { return a > b }) }
func opGte(ip *Interp) error { return chainedCompare(ip, func(a, b int64) bool { return a >= b }) }

// compareAll implements == (spec.md §4.5): try the stream as uniformly
// Bool, then Int, then Str, and compare all adjacent pairs under
// whichever tag matches every element. A stream that isn't uniformly
// one of those three tags has no defined comparison.
func compareAll(st Frame) (Value, error) {
	for _, tag := range []Tag{Bool, Int, Str} {
		uniform := true
		for _, v := range st {
			if v.Tag != tag {
				uniform = false
				break
			}
		}
		if !uniform {
			continue
		}
		good := true
		for i := 1; i < len(st); i++ {
			if !valueEqual(st[i-1], st[i], tag) {
				good = false
				break
			}
		}
		return BoolValue(good), nil
	}
	return Value{}, fmt.Errorf("type error: == requires uniformly bool, int, or string elements")
}

func valueEqual(a, b Value, tag Tag) bool {
	switch tag {
	case Bool:
		return a.b == b.b
	case Int:
		return a.i == b.i
	case Str:
		return a.s == b.s
	default:
		return false
	}
}

func opEq(ip *Interp) error {
	v, err := compareAll(ip.Stream.Top())
	if err != nil {
		return err
	}
	ip.Stream.Flush()
	ip.Stream.Push(v)
	return nil
}

func opNeq(ip *Interp) error {
	if err := opEq(ip); err != nil {
		return err
	}
	return opNot(ip)
}
