// Package ga searches schedules with a genetic algorithm.
//
// A chromosome is a dual vector keyed by activity index: a
// precedence-valid operation sequence and one chosen resource per
// activity. Decoding runs the same deterministic left-to-right
// placement as the greedy scheduler, so every individual yields a
// complete schedule; hard-window or capacity breaches are never
// dropped, they surface as a dominating fitness penalty. Population
// evaluation is independent per individual and runs across workers.
package ga
