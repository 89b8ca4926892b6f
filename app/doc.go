// Package app assembles the solving engine behind a single request
// boundary. A Request names its tasks, resources, constraints and the
// algorithm to run; the Engine compiles it, solves it and scores the
// result. All failures come back inside the Response so the boundary
// stays serializable end to end.
package app
