// Package sim implements a discrete-time simulation of a series-connected
// battery pack being charged and voltage-balanced. The Engine advances one
// step per call under one of four strategies: passive balancing, active
// balancing, active equalization during charge, or voltage-regulated
// charging. It is renderer-free and scheduler-free; an external driver calls
// Step once per tick and reads Snapshot for display.
package sim
