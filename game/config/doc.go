// Package config provides configuration management for the Quackers game.
//
// The config package handles:
//   - Loading game configurations from JSON files
//   - Configuration validation
//   - Default configuration selection
//   - Configuration discovery and listing
//
// Configuration Format:
//
// Each JSON file in the config directory tunes one pond. Fields left out
// keep the built-in values:
//
//	{
//	  "name": "Big Pond",
//	  "description": "Room for a crowd",
//	  "world_width": 2000,
//	  "world_height": 1200,
//	  "player": {"friendly_name": "[NO_NAME]", "color": "red", "quack_pitch": 1.0,
//	             "radius": 25, "spawn_x": 1000, "spawn_y": 600},
//	  "cracker": {"radius": 10, "points": 1}
//	}
//
// The default configuration is default.json when present, otherwise the
// first valid file, otherwise the built-in one.
//
// Usage:
//
//	manager, err := config.NewManager("configs")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	gameConfig, err := manager.LoadConfig("big_pond")
//	configs, err := manager.ListConfigs()
package config
