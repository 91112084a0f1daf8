// Package pointio defines the two external-collaborator seams: a
// restartable point stream feeding the octree builder, and a mesh sink
// receiving the extracted iso-surface. Neither reads nor writes a file —
// that is explicitly delegated outside the core — but a concrete
// in-memory implementation of each is provided here for tests and for
// cmd/ when no external sink is wired.
package pointio

import "gonum.org/v1/gonum/spatial/r3"

// Point is one oriented sample: a world-space position and a (not
// necessarily unit-length, when useConfidence is enabled) normal.
type Point struct {
	Position r3.Vec
	Normal   r3.Vec
}

// Stream is a restartable lazy sequence of oriented points in world
// coordinates. The core calls Next until it
// returns ok=false, then Reset for a second pass (octree construction
// does a density pass and a normal pass over the same input).
type Stream interface {
	Next() (p Point, ok bool, err error)
	Reset() error
}

// Vertex is one iso-surface vertex: always a position, optionally a
// "density-depth" sample estimate.
type Vertex struct {
	Position r3.Vec
	HasDepth bool
	Depth    float64
}

// MeshSink is the external mesh-serialization seam. In-core points are
// indexed contiguously from 0; out-of-core points return an opaque id and
// may be streamed to disk by the implementation. Implementations must be
// safe for concurrent AddInCorePoint / AddOutOfCorePoint / AddPolygon
// calls.
type MeshSink interface {
	AddInCorePoint(v Vertex) int
	AddOutOfCorePoint(v Vertex) int
	AddPolygon(indices []int) error
	InCorePoints(i int) Vertex
	InCorePointCount() int
}
