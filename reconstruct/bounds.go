package reconstruct

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/geoplusplus/poisson-reconstruction/config"
	"github.com/geoplusplus/poisson-reconstruction/pointio"
)

// unitCubeTransform maps xForm-transformed world points into [0,1]^3,
// centered on the input's bounding box and padded by scaleFactor so the
// octree's inset domain never exactly touches the sample extents.
type unitCubeTransform struct {
	center r3.Vec
	scale  float64
}

// computeBounds runs one full pass over stream, resetting it afterward,
// applying xForm to every position, and returns the unit-cube transform
// derived from the resulting bounding box.
func computeBounds(stream pointio.Stream, cfg config.PoissonConfig) (unitCubeTransform, error) {
	lo := r3.Vec{X: math.Inf(1), Y: math.Inf(1), Z: math.Inf(1)}
	hi := r3.Vec{X: math.Inf(-1), Y: math.Inf(-1), Z: math.Inf(-1)}
	var any bool
	for {
		p, ok, err := stream.Next()
		if err != nil {
			return unitCubeTransform{}, err
		}
		if !ok {
			break
		}
		any = true
		pos := applyXForm(cfg.XForm, p.Position)
		lo.X, hi.X = math.Min(lo.X, pos.X), math.Max(hi.X, pos.X)
		lo.Y, hi.Y = math.Min(lo.Y, pos.Y), math.Max(hi.Y, pos.Y)
		lo.Z, hi.Z = math.Min(lo.Z, pos.Z), math.Max(hi.Z, pos.Z)
	}
	if err := stream.Reset(); err != nil {
		return unitCubeTransform{}, err
	}
	if !any {
		return unitCubeTransform{center: r3.Vec{}, scale: 1}, nil
	}

	center := r3.Scale(0.5, r3.Add(lo, hi))
	extent := r3.Sub(hi, lo)
	radius := math.Max(extent.X, math.Max(extent.Y, extent.Z)) / 2
	if radius == 0 {
		radius = 0.5
	}
	scaleFactor := cfg.ScaleFactor
	if scaleFactor <= 0 {
		scaleFactor = 1
	}
	return unitCubeTransform{center: center, scale: 1 / (2 * radius * scaleFactor)}, nil
}

// toUnit maps a world position (already xForm-transformed) into [0,1]^3.
func (u unitCubeTransform) toUnit(pos r3.Vec) r3.Vec {
	return r3.Add(r3.Scale(u.scale, r3.Sub(pos, u.center)), r3.Vec{X: 0.5, Y: 0.5, Z: 0.5})
}

// toUnitVec rescales a direction (normal) by the same isotropic factor,
// without the translation toUnit applies to positions.
func (u unitCubeTransform) toUnitVec(v r3.Vec) r3.Vec {
	return r3.Scale(u.scale, v)
}

// fromUnit is toUnit's inverse, used to map extracted mesh vertices back
// into the xForm-transformed world frame.
func (u unitCubeTransform) fromUnit(pos r3.Vec) r3.Vec {
	return r3.Add(r3.Scale(1/u.scale, r3.Sub(pos, r3.Vec{X: 0.5, Y: 0.5, Z: 0.5})), u.center)
}
