// Package harness runs declarative spacetime scenarios against the engine.
//
// A scenario names events, world lines and null lines, then lists queries
// over them. Each query is executed in order and recorded in a trace; its
// optional expect clause and the scenario's assertions decide pass/fail.
//
// # Scenario Format
//
// Scenarios are YAML (.yaml, .yml) or TOML (.toml) files:
//
//	name: head_on
//	description: "Two world lines approaching each other"
//	light_speed: 1
//	seed: 7
//	events:
//	  - { label: origin, t: 0, x: 0 }
//	world_lines:
//	  - { label: a, x0: -1, v: 1 }
//	  - { label: b, x0: 1, v: -1 }
//	null_lines:
//	  - { label: photon, from: origin, direction: 1 }
//	queries:
//	  - name: meeting
//	    op: intersect
//	    lines: [a, b]
//	    expect: { outcome: crossing, t: 1, x: 0 }
//	  - name: close
//	    op: conditional
//	    lines: [a, b]
//	    grid: { start: 0, end: 2, step: 0.5 }
//	    when: { type: separation_below, value: 0.5 }
//	    expect: { count: 1, times: [1] }
//	assertions:
//	  - { type: outcome, query: meeting, outcome: crossing }
//
// # Operations
//
//   - classify: interval between events from and to
//   - intersect: two lines; outcome crossing, parallel or coincident
//   - light_rest: light from event from toward rest_x in direction
//   - position: event on lines[0] at time at
//   - conditional: lines sampled over grid, recorded when the condition holds
//   - spontaneous: random events on lines[0] over grid with probability
//
// A query whose parameters are invalid records outcome "invalid" and the
// error code. That is a failure unless expect.error names the code.
//
// # Deterministic Testing
//
// Spontaneous queries draw from a source seeded by the scenario seed (or the
// scenario name when no seed is given) and the query name, so every run of a
// scenario produces the same trace and golden files stay stable.
package harness
