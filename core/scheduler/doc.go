// Package scheduler produces baseline schedules with an event-driven
// greedy simulation ordered by dispatching rules. Its Timeline type
// owns the calendar, efficiency and capacity placement arithmetic and
// is reused by the metaheuristic decoders.
package scheduler
