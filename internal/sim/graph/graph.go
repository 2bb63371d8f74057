// Package graph is a minimal weighted undirected adjacency store.
package graph

type edgeKey struct {
	a, b int
}

// Graph stores one weight per node pair and a degree count per node.
// AddEdge is not idempotent: every call bumps both degrees, even when the
// pair already has a weight.
type Graph[T any] struct {
	degrees map[int]int
	weights map[edgeKey]T
}

func New[T any]() *Graph[T] {
	return &Graph[T]{
		degrees: map[int]int{},
		weights: map[edgeKey]T{},
	}
}

func (g *Graph[T]) AddEdge(a, b int, weight T) {
	g.degrees[a]++
	g.degrees[b]++
	g.weights[edgeKey{a, b}] = weight
	g.weights[edgeKey{b, a}] = weight
}

func (g *Graph[T]) Degree(v int) int {
	return g.degrees[v]
}

func (g *Graph[T]) Weight(a, b int) (T, bool) {
	w, ok := g.weights[edgeKey{a, b}]
	return w, ok
}

// Clone copies both maps. Weights are copied by value, so reference payloads
// (slices, maps, pointers) are shared with the original.
func (g *Graph[T]) Clone() *Graph[T] {
	out := &Graph[T]{
		degrees: make(map[int]int, len(g.degrees)),
		weights: make(map[edgeKey]T, len(g.weights)),
	}
	for k, v := range g.degrees {
		out.degrees[k] = v
	}
	for k, v := range g.weights {
		out.weights[k] = v
	}
	return out
}
