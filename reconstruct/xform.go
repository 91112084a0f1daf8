package reconstruct

import "gonum.org/v1/gonum/spatial/r3"

// applyXForm applies m (row-major 4x4) to pos as a full affine transform.
func applyXForm(m [16]float64, pos r3.Vec) r3.Vec {
	return r3.Vec{
		X: m[0]*pos.X + m[1]*pos.Y + m[2]*pos.Z + m[3],
		Y: m[4]*pos.X + m[5]*pos.Y + m[6]*pos.Z + m[7],
		Z: m[8]*pos.X + m[9]*pos.Y + m[10]*pos.Z + m[11],
	}
}

// applyXFormLinear applies m's upper-left 3x3 (no translation), used for
// normals: a normal is a direction, not a point, and must not be shifted
// by the transform's translation component.
func applyXFormLinear(m [16]float64, v r3.Vec) r3.Vec {
	return r3.Vec{
		X: m[0]*v.X + m[1]*v.Y + m[2]*v.Z,
		Y: m[4]*v.X + m[5]*v.Y + m[6]*v.Z,
		Z: m[8]*v.X + m[9]*v.Y + m[10]*v.Z,
	}
}
