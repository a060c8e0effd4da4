package octree

import (
	"math"
	"sort"

	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	"github.com/tidwall/tinyqueue"

	"github.com/widve/widve/spatialmath"
)

// Neighbor is a search result: a stored item and its distance from the query point.
type Neighbor[T comparable] struct {
	Value    T
	Position r3.Vector
	Distance float64
}

type queueItem[T comparable] struct {
	node *Node[T]
	// bound is the squared distance from the query point to the node's cube.
	bound float64
}

func (item *queueItem[T]) Less(b tinyqueue.Item) bool {
	return item.bound < b.(*queueItem[T]).bound
}

// FindNearest returns the stored item closest to point and its Euclidean distance.
// Nodes are visited in order of their distance from point and the search stops once
// the closest unvisited node is farther than the best item found.
func (tree *Octree[T]) FindNearest(point r3.Vector) (T, float64, error) {
	var zero T
	neighbors, err := tree.FindNearestN(point, 1)
	if err != nil {
		return zero, 0, err
	}
	return neighbors[0].Value, neighbors[0].Distance, nil
}

// FindNearestN returns up to n stored items ordered from closest to farthest.
func (tree *Octree[T]) FindNearestN(point r3.Vector, n int) ([]Neighbor[T], error) {
	if n <= 0 {
		return nil, errors.Errorf("invalid neighbor count %d", n)
	}
	if tree.size == 0 {
		return nil, ErrEmpty
	}

	// best is kept sorted by distance, closest first; distances are squared until return.
	best := make([]Neighbor[T], 0, min(n, tree.size))
	worst := func() float64 {
		if len(best) < n {
			return math.Inf(1)
		}
		return best[len(best)-1].Distance
	}

	queue := tinyqueue.New(nil)
	queue.Push(&queueItem[T]{node: tree.root, bound: tree.root.distanceSquared(point)})
	for queue.Len() > 0 {
		next := queue.Pop().(*queueItem[T])
		if next.bound > worst() {
			break
		}
		node := next.node
		if node.IsLeaf() {
			for _, entry := range node.contents {
				d := entry.Position.Sub(point).Norm2()
				if d >= worst() {
					continue
				}
				best = insertNeighbor(best, n, Neighbor[T]{Value: entry.Value, Position: entry.Position, Distance: d})
			}
			continue
		}
		for _, child := range node.children {
			if child == nil {
				continue
			}
			if bound := child.distanceSquared(point); bound <= worst() {
				queue.Push(&queueItem[T]{node: child, bound: bound})
			}
		}
	}

	for i := range best {
		best[i].Distance = math.Sqrt(best[i].Distance)
	}
	return best, nil
}

// FindWithinRadius returns every stored item within radius of point, closest first.
func (tree *Octree[T]) FindWithinRadius(point r3.Vector, radius float64) ([]Neighbor[T], error) {
	if radius < 0 || math.IsNaN(radius) {
		return nil, errors.Errorf("invalid radius %v", radius)
	}
	limit := radius * radius
	var found []Neighbor[T]
	var visit func(node *Node[T])
	visit = func(node *Node[T]) {
		if node.distanceSquared(point) > limit {
			return
		}
		for _, entry := range node.contents {
			if d := entry.Position.Sub(point).Norm2(); d <= limit {
				found = append(found, Neighbor[T]{Value: entry.Value, Position: entry.Position, Distance: math.Sqrt(d)})
			}
		}
		for _, child := range node.children {
			if child != nil {
				visit(child)
			}
		}
	}
	visit(tree.root)
	sort.SliceStable(found, func(i, j int) bool { return found[i].Distance < found[j].Distance })
	return found, nil
}

// FindNearestLinear is the brute-force counterpart of FindNearest: it scans every
// stored item. It is only suitable for small trees and for checking FindNearest.
func (tree *Octree[T]) FindNearestLinear(point r3.Vector) (T, float64, error) {
	var bestItem T
	if tree.size == 0 {
		return bestItem, 0, ErrEmpty
	}
	bestDist := math.Inf(1)
	tree.Iterate(func(item T, position r3.Vector) bool {
		if d := position.Sub(point).Norm2(); d < bestDist {
			bestDist = d
			bestItem = item
		}
		return true
	})
	return bestItem, math.Sqrt(bestDist), nil
}

func (n *Node[T]) distanceSquared(point r3.Vector) float64 {
	return spatialmath.BoxDistanceSquared(n.lo, n.hi, point)
}

// insertNeighbor adds candidate to the sorted slice best, keeping at most n entries.
func insertNeighbor[T comparable](best []Neighbor[T], n int, candidate Neighbor[T]) []Neighbor[T] {
	i := sort.Search(len(best), func(i int) bool { return best[i].Distance > candidate.Distance })
	if len(best) < n {
		best = append(best, Neighbor[T]{})
	} else if i >= len(best) {
		return best
	}
	copy(best[i+1:], best[i:len(best)-1])
	best[i] = candidate
	return best
}
