// Package config loads maze configurations from a directory of JSON files.
//
// Each file holds an engine.MazeConfig: a name, a description and a layout
// of '#' walls and '.' open cells, with optional 'S' and 'E' markers for the
// endpoints. The file name without its .json extension is the config ID used
// when creating sessions.
//
// Usage:
//
//	manager, err := config.NewManager("configs")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	maze, err := manager.LoadConfig("classic")
//	infos, err := manager.ListConfigs()
//
// The default configuration is classic.json when present, otherwise the
// first valid file, otherwise a small built-in maze.
package config
