// Package events defines the solver events emitted on the event bus.
//
// Available event types:
//   - SolveStarted: a scheduling request entered an algorithm
//   - Progress: periodic search progress (generations, nodes)
//   - SolveFinished: the algorithm returned, with outcome and timings
package events
