package shared

// FaceEdges and FaceCorners describe the 6 cube faces (index = axis*2+side,
// side 0 negative, 1 positive) as a cyclic walk of 4 edges/corners, each
// face edge given in the same direction as the corner walk. Derived by
// hand from cubeEdges/cornerDelta's bit convention (bit0=+x, bit1=+y,
// bit2=+z) so the two stay consistent: FaceEdges[f][i] is the cube edge
// connecting FaceCorners[f][i] to FaceCorners[f][(i+1)%4].
var FaceEdges = [6][4]int{
	{4, 10, 6, 8},  // -x: corners 0,2,6,4
	{5, 11, 7, 9},  // +x: corners 1,3,7,5
	{0, 9, 2, 8},   // -y: corners 0,1,5,4
	{1, 11, 3, 10}, // +y: corners 2,3,7,6
	{0, 5, 1, 4},   // -z: corners 0,1,3,2
	{2, 7, 3, 6},   // +z: corners 4,5,7,6
}

var FaceCorners = [6][4]int{
	{0, 2, 6, 4},
	{1, 3, 7, 5},
	{0, 1, 5, 4},
	{2, 3, 7, 6},
	{0, 1, 3, 2},
	{4, 5, 7, 6},
}
