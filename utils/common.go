// Package utils holds the small generic numeric and parallel-execution
// plumbing shared by every core package, in the same spirit as the
// teacher's own utils package: no domain knowledge, only the primitives
// the domain packages build on.
package utils

// Tol is the generic floating point tolerance used for node-local
// geometric comparisons (edge roots inside [0,1], symmetry checks).
const Tol = 1.e-12
