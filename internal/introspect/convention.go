package introspect

// PropertyDescriptor pairs the conventional accessors of one property.
type PropertyDescriptor struct {
	Name  string  // Property name, e.g. "userName"
	Stem  string  // Accessor stem, e.g. "UserName"
	Type  TypeRef // Getter result type, or setter parameter type
	Read  *Method // Conventional getter, or nil
	Write *Method // Conventional setter, or nil
}

// getter ranks, lower wins.
const (
	rankGet = iota
	rankIs
	rankPlain
)

type getterCandidate struct {
	method *Method
	rank   int
}

// Properties applies the accessor convention to the methods declared by t.
// Descriptors are returned in the order their first accessor is declared.
func Properties(t Type) ([]PropertyDescriptor, error) {
	methods, err := t.Methods()
	if err != nil {
		return nil, err
	}

	var stems []string

	seen := make(map[string]bool)
	track := func(stem string) {
		if !seen[stem] {
			seen[stem] = true
			stems = append(stems, stem)
		}
	}

	getters := make(map[string]getterCandidate)
	setters := make(map[string]*Method)
	plain := make(map[string]*Method)

	for i := range methods {
		m := &methods[i]
		if !isExported(m.Name) {
			continue
		}

		if stem, ok := accessorStem(m.Name, SetterPrefix); ok {
			if len(m.Params) == 1 && setters[stem] == nil {
				setters[stem] = m
				track(stem)
			}

			continue
		}

		if !isGetterShape(m) {
			continue
		}

		stem, rank := m.Name, rankPlain
		if s, ok := accessorStem(m.Name, GetterPrefix); ok {
			stem, rank = s, rankGet
		} else if s, ok := accessorStem(m.Name, BoolGetterPrefix); ok && m.Results[0].IsBool() {
			stem, rank = s, rankIs
		}

		if rank == rankPlain {
			if plain[stem] == nil {
				plain[stem] = m
			}

			continue
		}

		if cur, ok := getters[stem]; !ok || rank < cur.rank {
			getters[stem] = getterCandidate{method: m, rank: rank}
		}

		track(stem)
	}

	// A plain getter X only counts next to a setter SetX.
	for stem, m := range plain {
		if _, ok := getters[stem]; ok || setters[stem] == nil {
			continue
		}

		getters[stem] = getterCandidate{method: m, rank: rankPlain}
	}

	var out []PropertyDescriptor

	for _, stem := range stems {
		pd := PropertyDescriptor{Name: PropertyName(stem), Stem: stem}

		if g, ok := getters[stem]; ok {
			pd.Read = g.method
			pd.Type = g.method.ValueResults()[0]
		}

		if s := setters[stem]; s != nil && isConventionalSetter(s) {
			if pd.Read == nil {
				pd.Type = s.Params[0]
				pd.Write = s
			} else if s.Params[0].Identical(pd.Type) {
				pd.Write = s
			}
		}

		if pd.Read == nil && pd.Write == nil {
			continue
		}

		out = append(out, pd)
	}

	return out, nil
}

// isGetterShape reports a method without parameters returning T or (T, error).
func isGetterShape(m *Method) bool {
	if len(m.Params) != 0 {
		return false
	}

	switch len(m.Results) {
	case 1:
		return !m.Results[0].IsError()
	case 2:
		return m.ReturnsError() && !m.Results[0].IsError()
	default:
		return false
	}
}

// isConventionalSetter reports a setter returning nothing or only an error.
func isConventionalSetter(m *Method) bool {
	return len(m.Results) == 0 || (len(m.Results) == 1 && m.ReturnsError())
}
