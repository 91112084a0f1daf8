package pointio

import "sync"

// MemoryStream is an in-process Stream over a fixed slice, used by tests
// and by the seed-scenario generators in reconstruct/reconstruct_test.go —
// the point-cloud-file reader itself stays an external collaborator, so
// this is the simplest thing that satisfies the Stream contract without
// touching a filesystem.
type MemoryStream struct {
	points []Point
	pos    int
}

func NewMemoryStream(points []Point) *MemoryStream {
	return &MemoryStream{points: points}
}

func (s *MemoryStream) Next() (Point, bool, error) {
	if s.pos >= len(s.points) {
		return Point{}, false, nil
	}
	p := s.points[s.pos]
	s.pos++
	return p, true, nil
}

func (s *MemoryStream) Reset() error {
	s.pos = 0
	return nil
}

// MemorySink is a thread-safe in-memory MeshSink. It keeps everything
// in-core (the out-of-core path exists only to satisfy the interface;
// there is no disk-backed overflow tier in this reference sink).
type MemorySink struct {
	mu       sync.Mutex
	inCore   []Vertex
	outCore  []Vertex
	polygons [][]int
}

func NewMemorySink() *MemorySink {
	return &MemorySink{}
}

func (s *MemorySink) AddInCorePoint(v Vertex) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.inCore = append(s.inCore, v)
	return len(s.inCore) - 1
}

func (s *MemorySink) AddOutOfCorePoint(v Vertex) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.outCore = append(s.outCore, v)
	return -(len(s.outCore)) // negative ids distinguish out-of-core points
}

func (s *MemorySink) AddPolygon(indices []int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := make([]int, len(indices))
	copy(cp, indices)
	s.polygons = append(s.polygons, cp)
	return nil
}

func (s *MemorySink) InCorePoints(i int) Vertex {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.inCore[i]
}

func (s *MemorySink) InCorePointCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.inCore)
}

// Polygons returns a snapshot of the recorded polygon index tuples, used
// by tests to check mesh-closure and watertightness properties.
func (s *MemorySink) Polygons() [][]int {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([][]int, len(s.polygons))
	copy(out, s.polygons)
	return out
}
