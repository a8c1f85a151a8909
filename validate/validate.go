// Command validate checks the game configuration JSON files in a directory
// (default "configs"). For every file it checks:
//   - JSON syntax, rejecting unknown fields so typos do not silently fall back to defaults
//   - The rules the server applies when loading a config
//   - That the cracker and a player both fit inside the world
package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/wricardo/quackers-game/game/engine"
)

// ValidationResult captures the outcome of validating a single file.
// If Valid is true, Errors contains informational messages; otherwise it
// accumulates the validation errors that were found.
type ValidationResult struct {
	File   string
	Valid  bool
	Errors []string
}

func (r *ValidationResult) fail(format string, args ...interface{}) {
	r.Valid = false
	r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
}

func (r *ValidationResult) info(format string, args ...interface{}) {
	r.Errors = append(r.Errors, "✓ "+fmt.Sprintf(format, args...))
}

// validateConfig loads and validates a single configuration JSON file.
func validateConfig(filePath string) ValidationResult {
	result := ValidationResult{
		File:   filepath.Base(filePath),
		Valid:  true,
		Errors: []string{},
	}

	data, err := os.ReadFile(filePath)
	if err != nil {
		result.fail("Failed to read file: %v", err)
		return result
	}

	config := engine.DefaultGameConfig()
	decoder := json.NewDecoder(bytes.NewReader(data))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(config); err != nil {
		result.fail("Invalid JSON: %v", err)
		return result
	}

	if err := engine.ValidateGameConfig(config); err != nil {
		result.fail("%v", err)
		return result
	}
	result.info("%s: %.0fx%.0f world", config.Name, config.WorldWidth, config.WorldHeight)

	shortSide := math.Min(config.WorldWidth, config.WorldHeight)
	if 2*config.Cracker.Radius >= shortSide {
		result.fail("Cracker diameter %.0f does not fit in a %.0fx%.0f world",
			2*config.Cracker.Radius, config.WorldWidth, config.WorldHeight)
	}
	if 2*config.Player.Radius >= shortSide {
		result.fail("Player diameter %.0f does not fit in a %.0fx%.0f world",
			2*config.Player.Radius, config.WorldWidth, config.WorldHeight)
	}

	if result.Valid {
		result.info("Cracker radius %.0f worth %d, player radius %.0f",
			config.Cracker.Radius, config.Cracker.Points, config.Player.Radius)
	}

	return result
}

// main validates every *.json file in the directory given as the first
// argument, printing a concise report and exiting with non-zero status if
// any are invalid.
func main() {
	configDir := "configs"
	if len(os.Args) > 1 {
		configDir = os.Args[1]
	}

	files, err := filepath.Glob(filepath.Join(configDir, "*.json"))
	if err != nil {
		fmt.Printf("Error finding config files: %v\n", err)
		os.Exit(1)
	}
	if len(files) == 0 {
		fmt.Printf("No config files found in %s\n", configDir)
		os.Exit(1)
	}

	allValid := true
	for _, file := range files {
		result := validateConfig(file)

		fmt.Printf("\n%s %s\n", strings.Repeat("=", 20), result.File)

		if result.Valid {
			fmt.Println("✅ VALID")
			for _, info := range result.Errors {
				fmt.Println("  " + info)
			}
		} else {
			fmt.Println("❌ INVALID")
			allValid = false
			for _, err := range result.Errors {
				if !strings.HasPrefix(err, "✓") {
					fmt.Println("  ❌ " + err)
				}
			}
		}
	}

	fmt.Printf("\n%s\n", strings.Repeat("=", 40))
	if allValid {
		fmt.Println("✅ All configurations are valid!")
	} else {
		fmt.Println("❌ Some configurations have errors")
		os.Exit(1)
	}
}
