// Package model defines the shared scheduling vocabulary: tasks made
// of ordered activities, resources with calendars and efficiency
// factors, constraints, and the Schedule produced by every algorithm.
// Domain objects are constructed once per request and treated as
// read-only by all solvers, which makes them safe to share across
// concurrent evaluation without synchronization.
package model
