package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/golang/geo/r3"
	"go.viam.com/test"

	"github.com/widve/widve/logging"
	"github.com/widve/widve/spatialmath"
)

func TestReadJSON(t *testing.T) {
	logger := logging.NewTestLogger(t)
	dir := t.TempDir()
	t.Setenv("WIDVE_TEST_MESH", "mesh.glb")

	fn := filepath.Join(dir, "index.json")
	test.That(t, os.WriteFile(fn, []byte(`{
		"source": "${WIDVE_TEST_MESH}",
		"min_half_size": 0.05,
		"pose": {"translation": {"x": 1, "y": 2, "z": 3}, "axis": {"z": 1}, "angle_deg": 90}
	}`), 0o600), test.ShouldBeNil)

	cfg, err := Read(fn, logger)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, cfg.Source, test.ShouldEqual, filepath.Join(dir, "mesh.glb"))
	test.That(t, cfg.MinHalfSize, test.ShouldEqual, 0.05)
	test.That(t, cfg.Padding, test.ShouldEqual, DefaultPadding)
	test.That(t, cfg.Pose.Translation, test.ShouldResemble, r3.Vector{1, 2, 3})

	expected := spatialmath.NewPoseFromDegrees(r3.Vector{1, 2, 3}, r3.Vector{0, 0, 1}, 90)
	test.That(t, spatialmath.PoseAlmostEqual(cfg.ToPose(), expected), test.ShouldBeTrue)

	opts := cfg.IndexOptions()
	test.That(t, opts.MinHalfSize, test.ShouldEqual, 0.05)
	test.That(t, opts.Padding, test.ShouldEqual, DefaultPadding)
}

func TestReadYAML(t *testing.T) {
	logger := logging.NewTestLogger(t)
	dir := t.TempDir()

	fn := filepath.Join(dir, "index.yaml")
	test.That(t, os.WriteFile(fn, []byte(`source: /data/cloud.pcd
padding: 0.25
voxel_size: 0.5
pose:
  translation:
    x: -4
`), 0o600), test.ShouldBeNil)

	cfg, err := Read(fn, logger)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, cfg.Source, test.ShouldEqual, "/data/cloud.pcd")
	test.That(t, cfg.MinHalfSize, test.ShouldEqual, DefaultMinHalfSize)
	test.That(t, cfg.Padding, test.ShouldEqual, 0.25)
	test.That(t, cfg.VoxelSize, test.ShouldEqual, 0.5)
	test.That(t, cfg.ToPose().Point(), test.ShouldResemble, r3.Vector{-4, 0, 0})
	test.That(t, spatialmath.PoseAlmostEqual(cfg.ToPose(), spatialmath.NewPoseFromPoint(r3.Vector{-4, 0, 0})), test.ShouldBeTrue)
}

func TestFromReaderErrors(t *testing.T) {
	logger := logging.NewTestLogger(t)
	for _, tc := range []struct {
		name     string
		path     string
		contents string
		expected string
	}{
		{"bad json", "a.json", `{"source": `, "cannot parse config"},
		{"bad yaml", "a.yml", "source: [", "cannot parse config"},
		{"missing source", "a.json", `{"min_half_size": 1}`, "source"},
		{"negative min half size", "a.json", `{"source": "a.pcd", "min_half_size": -1}`, "min_half_size"},
		{"negative padding", "a.yaml", "source: a.pcd\npadding: -2\n", "padding"},
		{"negative voxel size", "a.json", `{"source": "a.pcd", "voxel_size": -0.1}`, "voxel_size"},
		{"angle without axis", "a.json", `{"source": "a.pcd", "pose": {"angle_deg": 45}}`, "axis"},
	} {
		t.Run(tc.name, func(t *testing.T) {
			_, err := FromReader(tc.path, strings.NewReader(tc.contents), logger)
			test.That(t, err, test.ShouldNotBeNil)
			test.That(t, err.Error(), test.ShouldContainSubstring, tc.expected)
		})
	}

	_, err := Read(filepath.Join(t.TempDir(), "missing.json"), logger)
	test.That(t, err, test.ShouldNotBeNil)
}

func TestValidate(t *testing.T) {
	cfg := IndexConfig{Source: "a.pcd"}
	test.That(t, cfg.Validate("index"), test.ShouldBeNil)

	cfg.Pose.AngleDeg = 30
	err := cfg.Validate("index")
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "index.pose")

	cfg.Pose.Axis = r3.Vector{1, 0, 0}
	test.That(t, cfg.Validate("index"), test.ShouldBeNil)
}
