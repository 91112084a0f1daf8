package cmd

import (
	"bufio"
	"fmt"
	"os"

	"github.com/geoplusplus/poisson-reconstruction/pointio"
)

// asciiPointStream is the file-backed pointio.Stream implementation this
// CLI uses: one "x y z nx ny nz" sample per line. The core reconstruction
// packages never see this type — they only see pointio.Stream — so this
// stays a cmd/-local concern, same as point-file reading staying outside
// the reconstruction core.
type asciiPointStream struct {
	path string
	f    *os.File
	r    *bufio.Scanner
}

func newASCIIPointStream(path string) (*asciiPointStream, error) {
	s := &asciiPointStream{path: path}
	if err := s.Reset(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *asciiPointStream) Next() (pointio.Point, bool, error) {
	for s.r.Scan() {
		line := s.r.Text()
		var p pointio.Point
		n, err := fmt.Sscanf(line, "%f %f %f %f %f %f",
			&p.Position.X, &p.Position.Y, &p.Position.Z,
			&p.Normal.X, &p.Normal.Y, &p.Normal.Z)
		if err != nil || n != 6 {
			continue
		}
		return p, true, nil
	}
	if err := s.r.Err(); err != nil {
		return pointio.Point{}, false, err
	}
	return pointio.Point{}, false, nil
}

func (s *asciiPointStream) Reset() error {
	if s.f != nil {
		s.f.Close()
	}
	f, err := os.Open(s.path)
	if err != nil {
		return err
	}
	s.f = f
	s.r = bufio.NewScanner(f)
	s.r.Buffer(make([]byte, 64*1024), 1024*1024)
	return nil
}

func (s *asciiPointStream) Close() error {
	if s.f != nil {
		return s.f.Close()
	}
	return nil
}

// writeASCIIMesh serializes sink's in-core vertices and polygons to path as
// plain-text "v x y z" / "f i0 i1 ..." records (1-based indices), one
// geometry record per line; the point reader above does not read this
// format.
func writeASCIIMesh(path string, sink *pointio.MemorySink) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	defer w.Flush()

	n := sink.InCorePointCount()
	for i := 0; i < n; i++ {
		v := sink.InCorePoints(i)
		if _, err := fmt.Fprintf(w, "v %.9g %.9g %.9g\n", v.Position.X, v.Position.Y, v.Position.Z); err != nil {
			return err
		}
	}
	for _, poly := range sink.Polygons() {
		if _, err := fmt.Fprint(w, "f"); err != nil {
			return err
		}
		for _, idx := range poly {
			if _, err := fmt.Fprintf(w, " %d", idx+1); err != nil {
				return err
			}
		}
		if _, err := fmt.Fprint(w, "\n"); err != nil {
			return err
		}
	}
	return nil
}
