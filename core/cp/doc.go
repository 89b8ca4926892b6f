// Package cp solves scheduling instances with constraint propagation
// followed by backtracking search.
//
// Each activity's (resource, start) pair is a finite-domain variable:
// a set of candidate resource indices plus inclusive start bounds.
// An arc-consistency pass shrinks domains against precedence, window
// and calendar constraints until a fixed point; an emptied domain
// proves infeasibility before any search. The search phase branches on
// the most constrained ready activity, snapshotting domains and
// placement state per branch, and keeps the best schedule found under
// the configured node and time budgets.
package cp
