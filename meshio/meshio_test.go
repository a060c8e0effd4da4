package meshio

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/golang/geo/r3"
	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"
	"go.viam.com/test"
)

// two vertices, (1, 2, 3) and (-0.5, 0, 4), in an embedded buffer
const triangleGLTF = `{
  "asset": {"version": "2.0"},
  "buffers": [{"byteLength": 24, "uri": "data:application/octet-stream;base64,AACAPwAAAEAAAEBAAAAAvwAAAAAAAIBA"}],
  "bufferViews": [{"buffer": 0, "byteLength": 24}],
  "accessors": [{
    "bufferView": 0, "componentType": 5126, "count": 2, "type": "VEC3",
    "min": [-0.5, 0, 3], "max": [1, 2, 4]
  }],
  "meshes": [{"primitives": [{"attributes": {"POSITION": 0}}]}]
}`

func TestReadGLTF(t *testing.T) {
	vertices, err := ReadGLTF(strings.NewReader(triangleGLTF))
	test.That(t, err, test.ShouldBeNil)
	test.That(t, vertices, test.ShouldResemble, []r3.Vector{{1, 2, 3}, {-0.5, 0, 4}})

	_, err = ReadGLTF(strings.NewReader("not a gltf document"))
	test.That(t, err, test.ShouldNotBeNil)
}

func TestLoadGLTFFile(t *testing.T) {
	fn := filepath.Join(t.TempDir(), "mesh.gltf")
	test.That(t, os.WriteFile(fn, []byte(triangleGLTF), 0o600), test.ShouldBeNil)

	vertices, err := LoadGLTFFile(fn)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, vertices, test.ShouldHaveLength, 2)
	test.That(t, vertices[1], test.ShouldResemble, r3.Vector{-0.5, 0, 4})

	_, err = LoadGLTFFile(filepath.Join(t.TempDir(), "missing.gltf"))
	test.That(t, err, test.ShouldNotBeNil)
}

func TestVerticesFromDocument(t *testing.T) {
	doc := gltf.NewDocument()
	first := modeler.WritePosition(doc, [][3]float32{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}})
	second := modeler.WritePosition(doc, [][3]float32{{5, 5, 5}})
	doc.Meshes = []*gltf.Mesh{
		{Name: "a", Primitives: []*gltf.Primitive{
			{Attributes: gltf.PrimitiveAttributes{gltf.POSITION: first}},
			{Attributes: gltf.PrimitiveAttributes{}},
		}},
		{Name: "b", Primitives: []*gltf.Primitive{
			{Attributes: gltf.PrimitiveAttributes{gltf.POSITION: second}},
		}},
	}

	vertices, err := VerticesFromDocument(doc)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, vertices, test.ShouldResemble, []r3.Vector{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}, {5, 5, 5}})

	doc.Meshes[1].Primitives[0].Attributes[gltf.POSITION] = 9
	_, err = VerticesFromDocument(doc)
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "missing accessor")

	vertices, err = VerticesFromDocument(gltf.NewDocument())
	test.That(t, err, test.ShouldBeNil)
	test.That(t, vertices, test.ShouldBeEmpty)
}
