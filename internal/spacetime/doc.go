// Package spacetime models events and inertial trajectories in 1+1 dimensional
// flat (Minkowski) spacetime.
//
// This package is the foundation layer: engine, harness, compiler and cli all
// import spacetime; spacetime imports nothing internal.
//
// Key design constraints:
//   - All types are immutable values; a maneuver is a new WorldLine.
//   - One tolerance (Epsilon) is shared by interval classification and line
//     intersection, so a ray classified null and a ray computed by intersection
//     agree.
//   - Geometric non-outcomes (parallel lines, light moving away from its target)
//     are values, never errors. Only invalid configuration returns an error.
//   - Natural units by default: c = 1.
package spacetime
