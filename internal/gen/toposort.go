package gen

import (
	"fmt"
	"slices"
)

// topoSort orders the indices 0..n-1 so that every index comes after the
// indices deps returns for it. Among ready indices the smallest goes first,
// so the order only depends on the input order.
func topoSort(n int, deps func(i int) []int) ([]int, error) {
	pending := make([]int, n)
	dependents := make([][]int, n)

	for i := range n {
		for _, d := range deps(i) {
			if d < 0 || d >= n {
				return nil, fmt.Errorf("index %d depends on %d, outside [0, %d)", i, d, n)
			}

			pending[i]++
			dependents[d] = append(dependents[d], i)
		}
	}

	var ready []int

	for i, p := range pending {
		if p == 0 {
			ready = append(ready, i)
		}
	}

	order := make([]int, 0, n)

	for len(ready) > 0 {
		i := ready[0]
		ready = ready[1:]
		order = append(order, i)

		for _, j := range dependents[i] {
			if pending[j]--; pending[j] == 0 {
				k, _ := slices.BinarySearch(ready, j)
				ready = slices.Insert(ready, k, j)
			}
		}
	}

	if len(order) != n {
		return nil, fmt.Errorf("dependency cycle among %d types", n-len(order))
	}

	return order, nil
}
