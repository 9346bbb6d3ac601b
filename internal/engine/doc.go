// Package engine drives world lines through a discrete time grid.
//
// Two modes are supported:
//   - Conditional simulation: every world line is sampled at each grid time and
//     a caller predicate decides whether the step is recorded.
//   - Spontaneous events: one world line is sampled at each grid time and an
//     event is emitted with a fixed probability per step.
//
// DETERMINISM:
//
// Grid times are computed by index, t_i = start + i*step, never by repeated
// addition, so long runs do not drift. Randomness comes only from an injected
// Source; a seeded Source reproduces the same events on every run.
//
// CONCURRENCY:
//
// A Stepper holds no per-run state. Every call validates its inputs, iterates
// synchronously in increasing-t order (decreasing for a negative step) and
// returns. Predicates and sources are invoked once per grid step on the
// caller's goroutine. Separate calls may run in parallel as long as they do
// not share a non-thread-safe Source.
//
// Invalid configuration (zero step, a step pointing away from the end time,
// probability outside [0,1], nil predicate) fails fast with a
// spacetime.InvalidConfigError before any callback runs.
package engine
