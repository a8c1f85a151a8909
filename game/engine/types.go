package engine

// Player and world defaults used when no configuration overrides them
const (
	DefaultFriendlyName = "[NO_NAME]"
	DefaultColor        = "red"
	DefaultQuackPitch   = 1.0

	PlayerRadius                = 25.0
	PlayerXDefaultStartPosition = 640.0
	PlayerYDefaultStartPosition = 360.0

	WorldWidth    = 1280.0
	WorldHeight   = 720.0
	CrackerRadius = 10.0
	CrackerPoints = 1

	// Validation constants
	MinQuackPitch = 0.1
	MaxQuackPitch = 4.0
	MaxNameLength = 32
)

// Position represents world coordinates
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// ClientGameData holds the mutable game attributes of one connected client
type ClientGameData struct {
	ClientID     string  `json:"client_id"`
	FriendlyName string  `json:"friendly_name"`
	Color        string  `json:"color"`
	QuackPitch   float64 `json:"quack_pitch"`
	XPos         float64 `json:"x_pos"`
	YPos         float64 `json:"y_pos"`
	Radius       float64 `json:"radius"`
	CrackerCount int     `json:"cracker_count"`
}

// Position returns the client's current coordinates
func (d ClientGameData) Position() Position {
	return Position{X: d.XPos, Y: d.YPos}
}

// Cracker is the single collectible shared by every player
type Cracker struct {
	XPos   float64 `json:"x_pos"`
	YPos   float64 `json:"y_pos"`
	Radius float64 `json:"radius"`
	Points int     `json:"points"`
}

// Position returns the cracker's coordinates
func (c Cracker) Position() Position {
	return Position{X: c.XPos, Y: c.YPos}
}

// GameConfig represents the game tuning loaded from JSON
type GameConfig struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	WorldWidth  float64 `json:"world_width"`
	WorldHeight float64 `json:"world_height"`

	Player struct {
		FriendlyName string  `json:"friendly_name"`
		Color        string  `json:"color"`
		QuackPitch   float64 `json:"quack_pitch"`
		Radius       float64 `json:"radius"`
		SpawnX       float64 `json:"spawn_x"`
		SpawnY       float64 `json:"spawn_y"`
	} `json:"player"`

	Cracker struct {
		Radius float64 `json:"radius"`
		Points int     `json:"points"`
	} `json:"cracker"`
}
