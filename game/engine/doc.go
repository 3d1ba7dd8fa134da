// Package engine provides the grid model and the A* search behind the path visualizer.
//
// The engine package implements:
//   - Cells with a single state tag and cached 4-directional adjacency
//   - Fixed-size square grids with pixel-to-cell mapping
//   - Manhattan-distance heuristic
//   - A* search with deterministic insertion-order tie breaking
//   - Path reconstruction that marks the route step by step
//   - The editing rules for start, end and barrier cells
//   - Grid layout configuration loading and validation
//
// Core Types:
//
// Grid owns its Cells. RunSearch is the single entry point into the
// algorithm: it takes the grid, a start and an end cell, and a callback that
// is invoked with no arguments after every expansion and every path mark so
// a renderer can draw the frame. PathEngine wraps a grid with the input
// policy a shell needs (first pick is start, second is end, then barriers).
//
// Usage:
//
//	eng := engine.NewEngineWithDefaults()
//	eng.Paint(engine.Position{Row: 2, Col: 3})   // start
//	eng.Paint(engine.Position{Row: 40, Col: 45}) // end
//	eng.Paint(engine.Position{Row: 10, Col: 10}) // barrier
//
//	result, err := eng.Run(func(phase engine.Phase) {
//		draw(eng.Grid())
//	})
//
// Adjacency:
//
// Neighbors are computed once per run, immediately before the search starts.
// Barrier edits made after that point are only seen by the next run.
package engine
