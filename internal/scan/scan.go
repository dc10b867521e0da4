// Package scan discovers candidate properties of a type and resolves the
// metadata attached to each of them.
package scan

import (
	"errors"
	"slices"

	"property-mapper/internal/config"
	"property-mapper/internal/introspect"
	"property-mapper/internal/mapperr"
)

// Candidate is a discovered property before transience filtering. At least
// one of Slot, Getter and Setter is set.
type Candidate struct {
	Name   string
	Slot   *introspect.Slot
	Getter *introspect.Method
	Setter *introspect.Method
}

// Candidates maps property names to candidates.
type Candidates map[string]*Candidate

// Sorted returns the candidates ordered by name.
func (c Candidates) Sorted() []*Candidate {
	out := make([]*Candidate, 0, len(c))
	for _, cand := range c {
		out = append(out, cand)
	}

	slices.SortFunc(out, func(a, b *Candidate) int {
		switch {
		case a.Name < b.Name:
			return -1
		case a.Name > b.Name:
			return 1
		default:
			return 0
		}
	})

	return out
}

// Scan collects the candidates of mapped over the walked hierarchy, most
// specific type first. Slots are scanned before accessors; for a given name
// the first type that declares it wins. Unexported slots the access strategy
// keeps out are returned as dropped.
func Scan(mapped introspect.Type, hierarchy []introspect.Type, access config.AccessStrategy) (Candidates, []string, error) {
	cands := make(Candidates)

	if access.FieldScanAllowed() {
		for _, t := range hierarchy {
			slots, err := t.Slots()
			if err != nil {
				return nil, nil, introspectionError(t, err)
			}

			for i := range slots {
				s := &slots[i]
				if s.Synthetic {
					continue
				}

				name := introspect.PropertyName(s.Name)
				if _, ok := cands[name]; ok {
					continue
				}

				cands[name] = &Candidate{Name: name, Slot: s}
			}
		}
	}

	if access.AccessorScanAllowed() {
		seen := make(map[string]introspect.TypeRef)

		for _, t := range hierarchy {
			pds, err := introspect.Properties(t)
			if err != nil {
				return nil, nil, introspectionError(t, err)
			}

			for _, pd := range pds {
				getter := access.ChooseGetter(mapped, pd)
				setter := access.ChooseSetter(mapped, pd)

				if getter == nil && setter == nil {
					continue
				}

				// Nearer types win; an ancestor only completes a missing
				// accessor of the same property type.
				if typ, ok := seen[pd.Name]; ok {
					c := cands[pd.Name]
					if !typ.Identical(pd.Type) {
						continue
					}

					if c.Getter == nil {
						c.Getter = getter
					}

					if c.Setter == nil {
						c.Setter = setter
					}

					continue
				}

				seen[pd.Name] = pd.Type

				c := cands[pd.Name]
				if c == nil {
					c = &Candidate{Name: pd.Name}
					cands[pd.Name] = c
				}

				c.Getter = getter
				c.Setter = setter
			}
		}
	}

	var dropped []string

	if filter, ok := access.(config.FieldFilter); ok {
		for name, c := range cands {
			if c.Getter == nil && c.Setter == nil && !filter.IncludeField(c.Slot) {
				delete(cands, name)
				dropped = append(dropped, name)
			}
		}
	}

	slices.Sort(dropped)

	return cands, dropped, nil
}

func introspectionError(t introspect.Type, err error) error {
	var merr *mapperr.Error
	if errors.As(err, &merr) {
		return err
	}

	return mapperr.Introspection(t.ID().String(), err)
}
