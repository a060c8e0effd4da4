package main

import (
	"fmt"
	"math/rand"
	"path/filepath"
	"strings"
	"time"

	"github.com/edaniels/golog"
	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	"github.com/samber/lo"
	"github.com/spf13/cast"
	"github.com/urfave/cli/v2"

	"github.com/widve/widve/config"
	"github.com/widve/widve/meshio"
	"github.com/widve/widve/pointcloud"
	"github.com/widve/widve/spatialmath"
	"github.com/widve/widve/vertexindex"
)

func nearestCommand(c *cli.Context, logger golog.Logger) error {
	point, err := parsePoint(c.String(flagPoint))
	if err != nil {
		return err
	}
	idx, err := indexFromFlags(c, logger)
	if err != nil {
		return err
	}
	matches, err := idx.ClosestVertices(point, c.Int(flagCount))
	if err != nil {
		return err
	}
	for _, m := range matches {
		fmt.Fprintf(c.App.Writer, "%d\t%g %g %g\t%.6f\n", m.Index, m.Position.X, m.Position.Y, m.Position.Z, m.Distance)
	}
	return nil
}

func statsCommand(c *cli.Context, logger golog.Logger) error {
	idx, err := indexFromFlags(c, logger)
	if err != nil {
		return err
	}
	tree := idx.Tree()
	center := tree.Center()
	fmt.Fprintf(c.App.Writer, "vertices: %d\n", idx.Len())
	fmt.Fprintf(c.App.Writer, "center: %g %g %g\n", center.X, center.Y, center.Z)
	fmt.Fprintf(c.App.Writer, "half size: %g\n", tree.HalfSize())
	fmt.Fprintf(c.App.Writer, "min half size: %g\n", tree.MinHalfSize())
	fmt.Fprintf(c.App.Writer, "depth: %d (max %d)\n", tree.Depth(), tree.MaxDepth())
	return nil
}

func benchCommand(c *cli.Context, logger golog.Logger) error {
	queries := c.Int(flagQueries)
	if queries <= 0 {
		return errors.Errorf("--%s must be positive", flagQueries)
	}
	idx, err := indexFromFlags(c, logger)
	if err != nil {
		return err
	}
	tree := idx.Tree()
	if tree.Size() == 0 {
		return errors.New("nothing to benchmark, the index is empty")
	}

	rng := rand.New(rand.NewSource(c.Int64(flagSeed)))
	center, h := tree.Center(), tree.HalfSize()
	points := lo.Times(queries, func(int) r3.Vector {
		return r3.Vector{
			X: center.X + (rng.Float64()*2-1)*h,
			Y: center.Y + (rng.Float64()*2-1)*h,
			Z: center.Z + (rng.Float64()*2-1)*h,
		}
	})

	treeDists := make([]float64, len(points))
	start := time.Now()
	for i, p := range points {
		if _, treeDists[i], err = tree.FindNearest(p); err != nil {
			return err
		}
	}
	treeTime := time.Since(start)

	mismatches := 0
	start = time.Now()
	for i, p := range points {
		_, d, err := tree.FindNearestLinear(p)
		if err != nil {
			return err
		}
		if d != treeDists[i] {
			mismatches++
		}
	}
	linearTime := time.Since(start)

	fmt.Fprintf(c.App.Writer, "queries: %d over %d vertices\n", queries, tree.Size())
	fmt.Fprintf(c.App.Writer, "tree:   %v (%v/query)\n", treeTime, treeTime/time.Duration(queries))
	fmt.Fprintf(c.App.Writer, "linear: %v (%v/query)\n", linearTime, linearTime/time.Duration(queries))
	fmt.Fprintf(c.App.Writer, "mismatches: %d\n", mismatches)
	if mismatches > 0 {
		return errors.Errorf("tree search disagreed with linear scan on %d queries", mismatches)
	}
	return nil
}

// indexFromFlags builds an index from either --config or --file.
func indexFromFlags(c *cli.Context, logger golog.Logger) (*vertexindex.Index, error) {
	cfgPath, file := c.String(flagConfig), c.String(flagFile)
	switch {
	case cfgPath != "" && file != "":
		return nil, errors.Errorf("only one of --%s and --%s may be given", flagConfig, flagFile)
	case cfgPath == "" && file == "":
		return nil, errors.Errorf("one of --%s or --%s is required", flagConfig, flagFile)
	}

	cfg := &config.IndexConfig{
		Source:      file,
		MinHalfSize: config.DefaultMinHalfSize,
		Padding:     config.DefaultPadding,
	}
	if cfgPath != "" {
		var err error
		if cfg, err = config.Read(cfgPath, logger); err != nil {
			return nil, err
		}
	}

	if c.IsSet(flagVoxel) {
		cfg.VoxelSize = c.Float64(flagVoxel)
	}
	if err := cfg.Validate(flagConfig); err != nil {
		return nil, err
	}

	vertices, err := loadVertices(cfg.Source, cfg.VoxelSize, logger)
	if err != nil {
		return nil, err
	}
	idx, err := vertexindex.New(vertices, cfg.IndexOptions(), logger)
	if err != nil {
		return nil, err
	}
	if _, err := idx.SetPose(cfg.ToPose()); err != nil {
		return nil, err
	}
	return idx, nil
}

// loadVertices reads positions from a point cloud or mesh file, picking the
// reader by extension. A positive voxelSize thins them first, after which
// indices refer to the thinned set.
func loadVertices(path string, voxelSize float64, logger golog.Logger) ([]r3.Vector, error) {
	var cloud *pointcloud.Cloud
	switch strings.ToLower(filepath.Ext(path)) {
	case ".gltf", ".glb":
		vertices, err := meshio.LoadGLTFFile(path)
		if err != nil {
			return nil, err
		}
		cloud = pointcloud.New(0)
		cloud.Points = vertices
	case ".pcd", ".las":
		var err error
		if cloud, err = pointcloud.NewFromFile(path, logger); err != nil {
			return nil, err
		}
		if !spatialmath.PoseAlmostEqual(cloud.Viewpoint, spatialmath.NewZeroPose()) {
			logger.Debugw("ignoring point cloud viewpoint", "path", path, "translation", cloud.Viewpoint.Point())
		}
	default:
		return nil, errors.Errorf("unsupported file type %q", path)
	}

	if voxelSize > 0 && cloud.Size() > 0 {
		thinned, err := cloud.Downsample(voxelSize)
		if err != nil {
			return nil, err
		}
		logger.Debugw("downsampled source", "path", path, "before", cloud.Size(), "after", thinned.Size())
		cloud = thinned
	}
	return cloud.Points, nil
}

// parsePoint parses "x,y,z".
func parsePoint(s string) (r3.Vector, error) {
	parts := lo.Map(strings.Split(s, ","), func(part string, _ int) string {
		return strings.TrimSpace(part)
	})
	if len(parts) != 3 {
		return r3.Vector{}, errors.Errorf("point %q must have three comma separated coordinates", s)
	}
	coords := make([]float64, 3)
	for i, part := range parts {
		v, err := cast.ToFloat64E(part)
		if err != nil {
			return r3.Vector{}, errors.Wrapf(err, "invalid coordinate %q in point %q", part, s)
		}
		coords[i] = v
	}
	return r3.Vector{X: coords[0], Y: coords[1], Z: coords[2]}, nil
}
