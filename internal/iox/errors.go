package iox

import (
	"errors"
	"fmt"
)

// Sentinel errors backing spec.md §7's message taxonomy, so callers can
// errors.Is against a failure mode instead of string-matching Error().
// The ones with dynamic text (a name or a line number) are produced
// through wrapErr below, which keeps Error() exactly matching spec.md's
// message while still Unwrap()ing to the sentinel.
var (
	ErrDivideByZero     = errors.New("divide by zero")
	ErrSliceRange       = errors.New("slice length out of range")
	ErrMarksUnavailable = errors.New("marks feature unavailable")
	ErrNoSuchFunc       = errors.New("no such function")
	ErrNoSuchVar        = errors.New("no such variable")
	ErrNoSuchMark       = errors.New("no such mark")
	ErrAssertFailed     = errors.New("assertion failed")
	ErrQuoteParse       = errors.New("quote parse issue")
)

// wrappedErr carries a spec-exact display message while still
// Unwrap()ing to a stable sentinel for errors.Is.
type wrappedErr struct {
	msg      string
	sentinel error
}

func (w *wrappedErr) Error() string { return w.msg }
func (w *wrappedErr) Unwrap() error { return w.sentinel }

func wrapErr(sentinel error, format string, args ...interface{}) error {
	return &wrappedErr{msg: fmt.Sprintf(format, args...), sentinel: sentinel}
}

func errNoSuchFunc(name string) error {
	return wrapErr(ErrNoSuchFunc, "no such function '%s'", name)
}

func errNoSuchVar(name string) error {
	return wrapErr(ErrNoSuchVar, "no such variable '%s'", name)
}

func errNoSuchMark(name string) error {
	return wrapErr(ErrNoSuchMark, "no such mark '%s'", name)
}

func errAssertFailed(ln int) error {
	return wrapErr(ErrAssertFailed, "assertion failed @ ln %d", ln)
}

func errQuoteParse(ln int) error {
	return wrapErr(ErrQuoteParse, "quote parse issue @ %d", ln)
}
