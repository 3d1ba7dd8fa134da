// Package config provides grid layout management for the path visualizer.
//
// The config package handles:
//   - Loading grid layouts from JSON files
//   - Layout validation through the engine rules
//   - Default layout selection
//   - Layout discovery, listing and saving
//
// Configuration Format:
//
// Layouts are stored as JSON files in the configs directory. Each one
// defines a name, a description, the number of rows, an optional surface
// width in pixels and up to rows strings of glyphs:
//
//	.  free cell
//	#  barrier
//	S  start (at most one)
//	E  end (at most one)
//
// An empty layout is an all-free grid.
//
// Usage:
//
//	manager, err := config.NewManager("configs")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	maze, err := manager.LoadConfig("maze")
//	defaultConfig := manager.GetDefault()
//	configs, err := manager.ListConfigs()
//
// The default is blank.json when present, otherwise the first valid file,
// otherwise the built-in empty 50x50 grid.
package config
