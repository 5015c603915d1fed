package iox

// MarkTable is the Mark Table M from spec.md §3: a mapping from mark
// name to an opaque seek position captured at the moment `mark` ran.
type MarkTable map[string]int64

// Set records pos under name.
func (m MarkTable) Set(name string, pos int64) {
	m[name] = pos
}

// Lookup returns the position recorded under name, if any.
func (m MarkTable) Lookup(name string) (int64, bool) {
	pos, ok := m[name]
	return pos, ok
}
