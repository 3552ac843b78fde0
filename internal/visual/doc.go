// Package visual implements the deterministic renderables: shapes computed
// from the current feature record plus a little smoothed state.
//
// Smoothed state only changes in Update. Draw reads it, so a renderable can
// be drawn any number of times per tick with identical output, and Reset
// returns it to its initial state when the host seeks.
package visual
