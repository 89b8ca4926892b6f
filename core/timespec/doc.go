// Package timespec provides the time and duration primitives shared by
// every scheduling algorithm: bounded time windows with hard/soft
// semantics, PERT three-point estimates and analytic duration
// distributions. All values are expressed in milliseconds since the
// schedule origin. Quantiles are computed analytically so repeated
// evaluations of the same spec are reproducible.
package timespec
