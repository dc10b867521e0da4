package scan

import (
	"property-mapper/internal/introspect"
	"property-mapper/internal/meta"
)

// TypeLookup finds a type by ID.
type TypeLookup func(id introspect.TypeID) (introspect.Type, bool)

// ChainLookup indexes types together with their whole ancestor chains,
// including ancestors a hierarchy scan would have cut off.
func ChainLookup(types ...introspect.Type) TypeLookup {
	index := make(map[introspect.TypeID]introspect.Type)

	for _, t := range types {
		for _, cur := range introspect.Chain(t) {
			if _, ok := index[cur.ID()]; !ok {
				index[cur.ID()] = cur
			}
		}
	}

	return func(id introspect.TypeID) (introspect.Type, bool) {
		t, ok := index[id]
		return t, ok
	}
}

// Source produces the annotations of a candidate, nearest first.
type Source struct {
	Name    string
	Collect func(c *Candidate) ([]meta.Annotation, error)
}

// GetterSource yields the metadata of the getter itself.
func GetterSource() Source {
	return Source{Name: "getter", Collect: func(c *Candidate) ([]meta.Annotation, error) {
		if c.Getter == nil {
			return nil, nil
		}

		return c.Getter.Metadata, nil
	}}
}

// SlotSource yields the metadata of the field.
func SlotSource() Source {
	return Source{Name: "field", Collect: func(c *Candidate) ([]meta.Annotation, error) {
		if c.Slot == nil {
			return nil, nil
		}

		return c.Slot.Metadata, nil
	}}
}

// OverriddenGetterSource yields the metadata of methods with the getter's
// signature in every ancestor of the getter's declarer, nearest first.
func OverriddenGetterSource(lookup TypeLookup) Source {
	return Source{Name: "overridden-getter", Collect: func(c *Candidate) ([]meta.Annotation, error) {
		if c.Getter == nil {
			return nil, nil
		}

		declarer, ok := lookup(c.Getter.Declarer)
		if !ok {
			return nil, nil
		}

		var out []meta.Annotation

		for _, anc := range introspect.Chain(declarer)[1:] {
			m, err := introspect.DeclaredMethod(anc, c.Getter.Name, c.Getter.Params)
			if err != nil {
				return nil, err
			}

			if m != nil {
				out = append(out, m.Metadata...)
			}
		}

		return out, nil
	}}
}

// ContractSource yields the metadata of the getter's counterpart in the
// contracts of the declarer and of each of its ancestors.
func ContractSource(lookup TypeLookup) Source {
	return Source{Name: "contract", Collect: func(c *Candidate) ([]meta.Annotation, error) {
		if c.Getter == nil {
			return nil, nil
		}

		declarer, ok := lookup(c.Getter.Declarer)
		if !ok {
			return nil, nil
		}

		var out []meta.Annotation

		for _, t := range introspect.Chain(declarer) {
			for _, contract := range t.Contracts() {
				m, err := introspect.DeclaredMethod(contract, c.Getter.Name, c.Getter.Params)
				if err != nil {
					return nil, err
				}

				if m != nil {
					out = append(out, m.Metadata...)
				}
			}
		}

		return out, nil
	}}
}

// DefaultSources returns the sources in precedence order: getter, field,
// overridden getters, contracts.
func DefaultSources(lookup TypeLookup) []Source {
	return []Source{
		GetterSource(),
		SlotSource(),
		OverriddenGetterSource(lookup),
		ContractSource(lookup),
	}
}

// Resolver merges metadata from its sources. Earlier sources win for a
// given kind.
type Resolver struct {
	sources []Source
}

// NewResolver creates a resolver over sources, highest precedence first.
func NewResolver(sources ...Source) *Resolver {
	return &Resolver{sources: sources}
}

// Sources returns the sources in precedence order.
func (r *Resolver) Sources() []Source {
	return r.sources
}

// Resolve builds the metadata bag of c.
func (r *Resolver) Resolve(c *Candidate) (*meta.Bag, error) {
	bag := meta.NewBag()

	for _, s := range r.sources {
		anns, err := s.Collect(c)
		if err != nil {
			return nil, err
		}

		bag.AddAll(anns)
	}

	return bag, nil
}
