// Package meshio loads vertex positions out of glTF and GLB mesh documents.
package meshio

import (
	"io"

	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"
)

// LoadGLTFFile reads the .gltf or .glb file at path and returns the positions of
// every vertex of every mesh it contains.
func LoadGLTFFile(path string) ([]r3.Vector, error) {
	doc, err := gltf.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "opening glTF file %q", path)
	}
	return VerticesFromDocument(doc)
}

// ReadGLTF decodes a self-contained glTF or GLB stream. Buffers referencing
// external files cannot be resolved and fail to decode.
func ReadGLTF(r io.Reader) ([]r3.Vector, error) {
	doc := gltf.NewDocument()
	if err := gltf.NewDecoder(r).Decode(doc); err != nil {
		return nil, errors.Wrap(err, "decoding glTF")
	}
	return VerticesFromDocument(doc)
}

// VerticesFromDocument returns the POSITION attribute of every primitive in
// mesh order. Positions are in mesh-local space; node transforms are not applied.
// Primitives without positions are skipped.
func VerticesFromDocument(doc *gltf.Document) ([]r3.Vector, error) {
	var vertices []r3.Vector
	for m, mesh := range doc.Meshes {
		for p, prim := range mesh.Primitives {
			idx, ok := prim.Attributes[gltf.POSITION]
			if !ok {
				continue
			}
			if int(idx) >= len(doc.Accessors) {
				return nil, errors.Errorf("mesh %d primitive %d references missing accessor %d", m, p, idx)
			}
			positions, err := modeler.ReadPosition(doc, doc.Accessors[idx], nil)
			if err != nil {
				return nil, errors.Wrapf(err, "reading positions of mesh %d primitive %d", m, p)
			}
			for _, v := range positions {
				vertices = append(vertices, r3.Vector{X: float64(v[0]), Y: float64(v[1]), Z: float64(v[2])})
			}
		}
	}
	return vertices, nil
}
