// Package vertexindex answers closest-vertex queries against a posed mesh by
// keeping an octree of its world-space vertices.
package vertexindex

import (
	"time"

	"github.com/edaniels/golog"
	"github.com/golang/geo/r3"
	"github.com/pkg/errors"

	"github.com/widve/widve/logging"
	"github.com/widve/widve/octree"
	"github.com/widve/widve/spatialmath"
)

// Config sizes the octree built over the vertices.
type Config struct {
	// MinHalfSize is the half-size at and below which nodes become leaves.
	MinHalfSize float64
	// Padding widens the root cube beyond the vertices' bounding box.
	Padding float64
}

// Match is a vertex found by a query.
type Match struct {
	Index    int
	Position r3.Vector
	Distance float64
}

// Index holds mesh vertices in local space together with the pose placing them in
// the world. The tree is rebuilt wholesale whenever the pose changes.
type Index struct {
	logger   golog.Logger
	cfg      Config
	vertices []r3.Vector
	world    []r3.Vector
	pose     spatialmath.Pose
	tree     *octree.Octree[int]
}

// New indexes vertices under the zero pose. The slice is copied. A nil logger means
// the global logger.
func New(vertices []r3.Vector, cfg Config, logger golog.Logger) (*Index, error) {
	if logger == nil {
		logger = logging.Global()
	}
	if cfg.Padding < 0 {
		return nil, errors.Errorf("padding must be non-negative, got %v", cfg.Padding)
	}
	idx := &Index{
		logger:   logger,
		cfg:      cfg,
		vertices: append([]r3.Vector(nil), vertices...),
		pose:     spatialmath.NewZeroPose(),
	}
	if err := idx.Rebuild(); err != nil {
		return nil, err
	}
	return idx, nil
}

// Len returns the number of indexed vertices.
func (idx *Index) Len() int {
	return len(idx.vertices)
}

// Pose returns the pose the tree was last built under.
func (idx *Index) Pose() spatialmath.Pose {
	return idx.pose
}

// Tree returns the underlying octree. Callers must not mutate it.
func (idx *Index) Tree() *octree.Octree[int] {
	return idx.tree
}

// Vertex returns the world position of vertex i.
func (idx *Index) Vertex(i int) (r3.Vector, error) {
	if i < 0 || i >= len(idx.world) {
		return r3.Vector{}, errors.Errorf("vertex %d out of range [0,%d)", i, len(idx.world))
	}
	return idx.world[i], nil
}

// SetPose moves the mesh. The tree is rebuilt only when pose differs from the
// current one; the returned bool reports whether a rebuild happened. On error the
// previous pose and tree are kept.
func (idx *Index) SetPose(pose spatialmath.Pose) (bool, error) {
	if spatialmath.PoseAlmostEqual(idx.pose, pose) {
		return false, nil
	}
	prev := idx.pose
	idx.pose = pose
	if err := idx.Rebuild(); err != nil {
		idx.pose = prev
		return false, err
	}
	return true, nil
}

// Rebuild recomputes world positions under the current pose and builds a fresh
// tree over them.
func (idx *Index) Rebuild() error {
	start := time.Now()

	world := make([]r3.Vector, len(idx.vertices))
	items := make([]int, len(idx.vertices))
	for i, v := range idx.vertices {
		world[i] = idx.pose.TransformPoint(v)
		items[i] = i
	}

	var tree *octree.Octree[int]
	var err error
	if len(world) == 0 {
		tree, err = octree.New[int](idx.cfg.MinHalfSize, idx.pose.Point(), idx.cfg.MinHalfSize, idx.logger)
	} else {
		tree, err = octree.NewFromPoints(idx.cfg.MinHalfSize, idx.cfg.Padding, items, world, idx.logger)
	}
	if err != nil {
		return errors.Wrap(err, "building vertex tree")
	}

	idx.world = world
	idx.tree = tree
	idx.logger.Debugw("rebuilt vertex index",
		"vertices", len(world),
		"center", tree.Center(),
		"half_size", tree.HalfSize(),
		"depth", tree.Depth(),
		"duration", time.Since(start),
	)
	return nil
}

// ClosestVertex returns the vertex nearest to a world-space point.
func (idx *Index) ClosestVertex(point r3.Vector) (Match, error) {
	i, dist, err := idx.tree.FindNearest(point)
	if err != nil {
		return Match{}, err
	}
	return Match{Index: i, Position: idx.world[i], Distance: dist}, nil
}

// ClosestVertices returns up to n vertices ordered by distance from point.
func (idx *Index) ClosestVertices(point r3.Vector, n int) ([]Match, error) {
	neighbors, err := idx.tree.FindNearestN(point, n)
	if err != nil {
		return nil, err
	}
	matches := make([]Match, 0, len(neighbors))
	for _, neighbor := range neighbors {
		matches = append(matches, Match{Index: neighbor.Value, Position: neighbor.Position, Distance: neighbor.Distance})
	}
	return matches, nil
}
