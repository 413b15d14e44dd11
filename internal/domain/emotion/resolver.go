package emotion

import "strings"

// entry records a name's ancestors. Empty fields mean the name sits at
// that level or above.
type entry struct {
	main string
	mid  string
}

// Resolver answers ancestry queries for emotion names in O(1). Build it
// once from a validated taxonomy and share it; it is read-only after
// construction.
type Resolver struct {
	index map[string]entry
}

// NewResolver flattens the taxonomy into a name index. The tree is
// walked in order, first match wins, so a duplicate name (rejected by
// Validate anyway) resolves to its earliest occurrence.
func NewResolver(t Taxonomy) *Resolver {
	idx := make(map[string]entry)
	put := func(name string, e entry) {
		if _, ok := idx[name]; !ok {
			idx[name] = e
		}
	}
	for _, main := range t.Mains {
		put(main.Name, entry{main: main.Name})
		for _, mid := range main.Mids {
			put(mid.Name, entry{main: main.Name, mid: mid.Name})
			for _, leaf := range mid.Leaves {
				put(leaf, entry{main: main.Name, mid: mid.Name})
			}
		}
	}
	return &Resolver{index: idx}
}

// Parent resolves any emotion name to its main emotion. Unknown names
// resolve to themselves, so callers never hit an error path and
// resolution is idempotent.
func (r *Resolver) Parent(name string) string {
	if e, ok := r.index[name]; ok {
		return e.main
	}
	return name
}

// Mid resolves a name to its mid-level ancestor (a mid resolves to
// itself). Main names and unknown names have none; the empty string
// says so.
func (r *Resolver) Mid(name string) string {
	if e, ok := r.index[name]; ok {
		return e.mid
	}
	return ""
}

// Known reports whether the name appears anywhere in the taxonomy.
func (r *Resolver) Known(name string) bool {
	_, ok := r.index[name]
	return ok
}

// Breadcrumb returns the root-to-name ancestor path: [main] for a main,
// [main, mid] for a mid, [main, mid, leaf] for a leaf. Unknown names
// get a single-element path of themselves.
func (r *Resolver) Breadcrumb(name string) []string {
	e, ok := r.index[name]
	if !ok {
		return []string{name}
	}
	switch {
	case name == e.main:
		return []string{e.main}
	case name == e.mid:
		return []string{e.main, e.mid}
	default:
		return []string{e.main, e.mid, name}
	}
}

// BreadcrumbString renders the ancestor path for display, e.g.
// "sad > grief-cluster > lonely".
func (r *Resolver) BreadcrumbString(name string) string {
	return strings.Join(r.Breadcrumb(name), " > ")
}
