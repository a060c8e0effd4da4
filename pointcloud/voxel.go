package pointcloud

import (
	"math"
	"sort"

	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
)

/* A voxel grid buckets points into cubes of a fixed edge length laid out from the
cloud's minimum corner. Replacing every occupied voxel by the barycenter of its
points thins dense scans before they are indexed.
*/

// VoxelCoords stores Voxel coordinates in VoxelGrid axes.
type VoxelCoords struct {
	I, J, K int64
}

// Voxel holds the points falling in one grid cell.
type Voxel struct {
	Key    VoxelCoords
	Points []r3.Vector
	Center r3.Vector
}

// VoxelGrid is a sparse map of occupied voxels.
type VoxelGrid struct {
	Voxels    map[VoxelCoords]*Voxel
	VoxelSize float64
	Origin    r3.Vector
}

// GetVoxelCoordinates computes the voxel coordinates of a point relative to ptMin.
func GetVoxelCoordinates(pt, ptMin r3.Vector, voxelSize float64) VoxelCoords {
	return VoxelCoords{
		I: int64(math.Floor((pt.X - ptMin.X) / voxelSize)),
		J: int64(math.Floor((pt.Y - ptMin.Y) / voxelSize)),
		K: int64(math.Floor((pt.Z - ptMin.Z) / voxelSize)),
	}
}

// GetVoxelCenter returns the barycenter of points.
func GetVoxelCenter(points []r3.Vector) r3.Vector {
	center := r3.Vector{}
	for _, pt := range points {
		center = center.Add(pt)
	}
	return center.Mul(1. / float64(len(points)))
}

// NewVoxelGridFromCloud creates and fills a VoxelGrid from a point cloud.
func NewVoxelGridFromCloud(cloud *Cloud, voxelSize float64) (*VoxelGrid, error) {
	if !(voxelSize > 0) || math.IsInf(voxelSize, 0) {
		return nil, errors.Errorf("invalid voxel size %v", voxelSize)
	}
	ptMin, _ := cloud.Bounds()
	grid := &VoxelGrid{
		Voxels:    make(map[VoxelCoords]*Voxel),
		VoxelSize: voxelSize,
		Origin:    ptMin,
	}
	for _, pt := range cloud.Points {
		coords := GetVoxelCoordinates(pt, ptMin, voxelSize)
		vox, ok := grid.Voxels[coords]
		if !ok {
			vox = &Voxel{Key: coords}
			grid.Voxels[coords] = vox
		}
		vox.Points = append(vox.Points, pt)
	}
	for _, vox := range grid.Voxels {
		vox.Center = GetVoxelCenter(vox.Points)
	}
	return grid, nil
}

// Keys returns the occupied voxel coordinates in I, J, K order.
func (vg *VoxelGrid) Keys() []VoxelCoords {
	keys := make([]VoxelCoords, 0, len(vg.Voxels))
	for k := range vg.Voxels {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(a, b int) bool {
		if keys[a].I != keys[b].I {
			return keys[a].I < keys[b].I
		}
		if keys[a].J != keys[b].J {
			return keys[a].J < keys[b].J
		}
		return keys[a].K < keys[b].K
	})
	return keys
}

// ToCloud returns a cloud with one point, the voxel's barycenter, per occupied voxel.
func (vg *VoxelGrid) ToCloud() *Cloud {
	out := New(len(vg.Voxels))
	for _, k := range vg.Keys() {
		out.Points = append(out.Points, vg.Voxels[k].Center)
	}
	return out
}

// Downsample thins the cloud to one point per occupied voxel of edge voxelSize.
// The viewpoint is carried over.
func (cloud *Cloud) Downsample(voxelSize float64) (*Cloud, error) {
	grid, err := NewVoxelGridFromCloud(cloud, voxelSize)
	if err != nil {
		return nil, err
	}
	out := grid.ToCloud()
	out.Viewpoint = cloud.Viewpoint
	return out, nil
}
