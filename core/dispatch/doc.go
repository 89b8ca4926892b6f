// Package dispatch ranks ready activities for greedy assignment.
//
// A rule maps (context, activity) to a comparable key; the engine
// stable-sorts by a primary rule, resolves ties through an ordered
// chain of further rules and falls back to the activity identifier, so
// identical inputs always produce identical orderings.
package dispatch
