package engine

import (
	"encoding/json"
	"fmt"
	"os"
)

// DefaultGameConfig returns the built-in configuration
func DefaultGameConfig() *GameConfig {
	config := &GameConfig{
		Name:        "Quackers",
		Description: "Default pond",
		WorldWidth:  WorldWidth,
		WorldHeight: WorldHeight,
	}
	config.Player.FriendlyName = DefaultFriendlyName
	config.Player.Color = DefaultColor
	config.Player.QuackPitch = DefaultQuackPitch
	config.Player.Radius = PlayerRadius
	config.Player.SpawnX = PlayerXDefaultStartPosition
	config.Player.SpawnY = PlayerYDefaultStartPosition
	config.Cracker.Radius = CrackerRadius
	config.Cracker.Points = CrackerPoints
	return config
}

// ValidateGameConfig validates a game configuration for correctness and playability
func ValidateGameConfig(config *GameConfig) error {
	if config == nil {
		return fmt.Errorf("config validation: config is nil")
	}
	if config.Name == "" {
		return fmt.Errorf("config validation: name is required")
	}

	if config.WorldWidth <= 0 || config.WorldHeight <= 0 {
		return fmt.Errorf("config validation: world dimensions must be positive, got %gx%g",
			config.WorldWidth, config.WorldHeight)
	}

	p := config.Player
	if p.FriendlyName == "" {
		return fmt.Errorf("config validation: player.friendly_name is required")
	}
	if p.Color == "" {
		return fmt.Errorf("config validation: player.color is required")
	}
	if p.QuackPitch < MinQuackPitch || p.QuackPitch > MaxQuackPitch {
		return fmt.Errorf("config validation: player.quack_pitch must be between %g and %g, got %g",
			MinQuackPitch, MaxQuackPitch, p.QuackPitch)
	}
	if p.Radius <= 0 {
		return fmt.Errorf("config validation: player.radius must be positive, got %g", p.Radius)
	}
	if p.SpawnX < 0 || p.SpawnX > config.WorldWidth || p.SpawnY < 0 || p.SpawnY > config.WorldHeight {
		return fmt.Errorf("config validation: spawn (%g,%g) is outside the %gx%g world",
			p.SpawnX, p.SpawnY, config.WorldWidth, config.WorldHeight)
	}

	if config.Cracker.Radius <= 0 {
		return fmt.Errorf("config validation: cracker.radius must be positive, got %g", config.Cracker.Radius)
	}
	if config.Cracker.Points < 1 {
		return fmt.Errorf("config validation: cracker.points must be at least 1, got %d", config.Cracker.Points)
	}

	return nil
}

// LoadConfigFromFile reads and validates a configuration file.
// Fields missing from the file keep their default values.
func LoadConfigFromFile(path string) (*GameConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultGameConfig()
	if err := json.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := ValidateGameConfig(config); err != nil {
		return nil, err
	}

	return config, nil
}

// NewClientGameData creates the attributes a client starts with.
// A nil config uses the built-in defaults.
func NewClientGameData(clientID string, config *GameConfig) ClientGameData {
	if config == nil {
		config = DefaultGameConfig()
	}

	return ClientGameData{
		ClientID:     clientID,
		FriendlyName: config.Player.FriendlyName,
		Color:        config.Player.Color,
		QuackPitch:   config.Player.QuackPitch,
		XPos:         config.Player.SpawnX,
		YPos:         config.Player.SpawnY,
		Radius:       config.Player.Radius,
		CrackerCount: 0,
	}
}
