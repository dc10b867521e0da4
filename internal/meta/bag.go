package meta

// Bag is the resolved set of metadata of one property, at most one annotation
// per kind. Iteration follows insertion order.
type Bag struct {
	entries map[Kind]Annotation
	order   []Kind
}

// NewBag creates a bag seeded with anns, first occurrence of a kind winning.
func NewBag(anns ...Annotation) *Bag {
	b := &Bag{entries: make(map[Kind]Annotation, len(anns))}
	b.AddAll(anns)

	return b
}

// Add stores a unless its kind is already present. It reports whether a was stored.
func (b *Bag) Add(a Annotation) bool {
	if a == nil {
		return false
	}

	if b.entries == nil {
		b.entries = make(map[Kind]Annotation)
	}

	k := a.Kind()
	if _, ok := b.entries[k]; ok {
		return false
	}

	b.entries[k] = a
	b.order = append(b.order, k)

	return true
}

// AddAll adds every annotation in order and returns how many were stored.
func (b *Bag) AddAll(anns []Annotation) int {
	n := 0
	for _, a := range anns {
		if b.Add(a) {
			n++
		}
	}

	return n
}

// Get returns the annotation of kind k.
func (b *Bag) Get(k Kind) (Annotation, bool) {
	if b == nil {
		return nil, false
	}

	a, ok := b.entries[k]

	return a, ok
}

// Has reports whether the bag holds an annotation of kind k.
func (b *Bag) Has(k Kind) bool {
	_, ok := b.Get(k)
	return ok
}

// HasAny reports whether the bag holds at least one of kinds.
func (b *Bag) HasAny(kinds ...Kind) bool {
	for _, k := range kinds {
		if b.Has(k) {
			return true
		}
	}

	return false
}

// Kinds returns the stored kinds in insertion order.
func (b *Bag) Kinds() []Kind {
	if b == nil {
		return nil
	}

	return append([]Kind(nil), b.order...)
}

// All returns the stored annotations in insertion order.
func (b *Bag) All() []Annotation {
	if b == nil {
		return nil
	}

	out := make([]Annotation, 0, len(b.order))
	for _, k := range b.order {
		out = append(out, b.entries[k])
	}

	return out
}

// Len returns the number of stored annotations.
func (b *Bag) Len() int {
	if b == nil {
		return 0
	}

	return len(b.order)
}

// Lookup returns the annotation of kind k as its concrete type.
func Lookup[A Annotation](b *Bag, k Kind) (A, bool) {
	var zero A

	a, ok := b.Get(k)
	if !ok {
		return zero, false
	}

	typed, ok := a.(A)

	return typed, ok
}
