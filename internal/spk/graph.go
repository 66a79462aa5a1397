package spk

import (
	"fmt"
	"slices"
)

// graph is the routing index derived from one snapshot of Kernel.Segments.
type graph struct {
	snapshot []*Segment
	edges    map[Code]Vector // target -> edge or *Stack
	broken   map[Code]error  // targets whose edge could not be built
}

// edge is a lone segment as seen from one kernel's graph.
type edge struct {
	*Segment
	kernel *Kernel
}

// Kernel implements Vector.
func (e edge) Kernel() *Kernel { return e.kernel }

// pair is a center -> target relationship.
type pair struct {
	center, target Code
}

// graph returns the routing index for the current segment list, rebuilding
// it when the list has changed since the last build.
func (k *Kernel) graph() *graph {
	if k.cached != nil && slices.Equal(k.cached.snapshot, k.Segments) {
		return k.cached
	}
	k.cached = k.buildGraph()
	return k.cached
}

func (k *Kernel) buildGraph() *graph {
	g := &graph{
		snapshot: append([]*Segment(nil), k.Segments...),
		edges:    make(map[Code]Vector),
		broken:   make(map[Code]error),
	}

	byPair := make(map[pair][]*Segment)
	centers := make(map[Code][]Code) // target -> distinct centers in order
	var pairs []pair
	for _, s := range g.snapshot {
		p := pair{s.center, s.target}
		if _, ok := byPair[p]; !ok {
			pairs = append(pairs, p)
			centers[s.target] = append(centers[s.target], s.center)
		}
		byPair[p] = append(byPair[p], s)
	}

	for _, p := range pairs {
		if cs := centers[p.target]; len(cs) > 1 {
			g.broken[p.target] = NewAmbiguousPath(p.target, cs)
			continue
		}
		segs := byPair[p]
		if len(segs) == 1 {
			g.edges[p.target] = edge{Segment: segs[0], kernel: k}
			continue
		}
		stack, err := NewStack(k, segs...)
		if err != nil {
			g.broken[p.target] = err
			continue
		}
		g.edges[p.target] = stack
	}

	k.logger.Debug("kernel graph rebuilt: %d segments, %d edges, %d broken",
		len(g.snapshot), len(g.edges), len(g.broken))
	return g
}

// rootPath walks from code toward the barycenter. nodes[0] is code and
// nodes[len-1] the root reached; edges[i] joins nodes[i] to its center
// nodes[i+1].
func (g *graph) rootPath(code Code) (nodes []Code, edges []Vector, err error) {
	nodes = []Code{code}
	seen := map[Code]bool{code: true}
	for code != SolarSystemBarycenter {
		if err := g.broken[code]; err != nil {
			return nil, nil, err
		}
		e, ok := g.edges[code]
		if !ok {
			break
		}
		code = e.Center()
		if seen[code] {
			return nil, nil, NewLookup(fmt.Sprintf("segments form a cycle through %s", describe(code)))
		}
		seen[code] = true
		nodes = append(nodes, code)
		edges = append(edges, e)
	}
	return nodes, edges, nil
}

// resolve builds the vector center -> target. targetLabel names the target
// in error messages the way the caller asked for it.
func (k *Kernel) resolve(center, target Code, targetLabel string) (Vector, error) {
	if center == target {
		return nil, NewLookup(fmt.Sprintf("cannot resolve a vector from %s to itself", describe(center)))
	}

	g := k.graph()
	nodesA, edgesA, err := g.rootPath(center)
	if err != nil {
		return nil, err
	}
	nodesB, edgesB, err := g.rootPath(target)
	if err != nil {
		return nil, err
	}

	rootA, rootB := nodesA[len(nodesA)-1], nodesB[len(nodesB)-1]
	if rootA != rootB {
		missing := rootB
		if rootB == SolarSystemBarycenter {
			missing = rootA
		}
		return nil, NewMissingLink(centerLabel(center), targetLabel, missing)
	}

	// Drop the shared tail so nodesA[i] == nodesB[j] is the lowest common
	// ancestor.
	i, j := len(nodesA)-1, len(nodesB)-1
	for i > 0 && j > 0 && nodesA[i-1] == nodesB[j-1] {
		i--
		j--
	}

	legs := make([]Leg, 0, i+j)
	for _, e := range edgesA[:i] {
		legs = append(legs, Leg{Vector: e, Sign: -1})
	}
	for n := j - 1; n >= 0; n-- {
		legs = append(legs, Leg{Vector: edgesB[n], Sign: 1})
	}

	if len(legs) == 1 && legs[0].Sign > 0 {
		return legs[0].Vector, nil
	}
	return NewVectorSum(k, center, target, legs...)
}

func centerLabel(center Code) string {
	if center == SolarSystemBarycenter {
		return "the Solar System Barycenter"
	}
	return describe(center)
}
