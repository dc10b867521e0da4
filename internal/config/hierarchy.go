package config

import (
	"property-mapper/internal/introspect"
)

// HierarchyScanStrategy selects the types whose members are scanned.
type HierarchyScanStrategy interface {
	// FilterHierarchy returns t and the ancestors to scan, most specific first.
	FilterHierarchy(t introspect.Type) []introspect.Type
}

// HierarchyScan walks the embedding chain of a type, optionally stopping at
// a highest ancestor.
type HierarchyScan struct {
	disabled bool
	highest  *introspect.TypeID
	included bool
}

// HierarchyOption configures HierarchyScan.
type HierarchyOption func(*HierarchyScan)

// WithHighestAncestor stops the walk at id. The ancestor itself is scanned
// only when included is true.
func WithHighestAncestor(id introspect.TypeID, included bool) HierarchyOption {
	return func(h *HierarchyScan) {
		h.highest = &id
		h.included = included
	}
}

// NewHierarchyScan creates a strategy that walks the whole chain unless
// limited by options.
func NewHierarchyScan(opts ...HierarchyOption) *HierarchyScan {
	h := &HierarchyScan{}
	for _, opt := range opts {
		opt(h)
	}

	return h
}

// DisabledHierarchyScan creates a strategy that scans only the mapped type.
func DisabledHierarchyScan() *HierarchyScan {
	return &HierarchyScan{disabled: true}
}

// Enabled reports whether ancestors are scanned at all.
func (h *HierarchyScan) Enabled() bool { return !h.disabled }

// HighestAncestor returns the cutoff, if any, and whether it is scanned.
func (h *HierarchyScan) HighestAncestor() (id introspect.TypeID, included, ok bool) {
	if h.highest == nil {
		return introspect.TypeID{}, false, false
	}

	return *h.highest, h.included, true
}

// FilterHierarchy implements HierarchyScanStrategy. The mapped type is always
// returned first, even when it is the cutoff. A type is never returned twice.
func (h *HierarchyScan) FilterHierarchy(t introspect.Type) []introspect.Type {
	out := []introspect.Type{t}

	if h.disabled || t.IsInterface() {
		return out
	}

	if h.highest != nil && t.ID() == *h.highest {
		return out
	}

	seen := map[introspect.TypeID]bool{t.ID(): true}

	for cur := t; ; {
		anc, ok := cur.Ancestor()
		if !ok || seen[anc.ID()] {
			break
		}

		seen[anc.ID()] = true

		if h.highest != nil && anc.ID() == *h.highest {
			if h.included {
				out = append(out, anc)
			}

			break
		}

		out = append(out, anc)
		cur = anc
	}

	return out
}
