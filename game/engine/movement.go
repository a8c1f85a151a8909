package engine

import "math"

// Distance returns the euclidean distance between two points
func Distance(a, b Position) float64 {
	return math.Hypot(a.X-b.X, a.Y-b.Y)
}

// Touches reports whether a player's circle overlaps the cracker's
func Touches(player ClientGameData, cracker Cracker) bool {
	return Distance(player.Position(), cracker.Position()) <= player.Radius+cracker.Radius
}

// ClampToWorld keeps a position inside a width x height world.
// NaN coordinates collapse to the origin.
func ClampToWorld(pos Position, width, height float64) Position {
	return Position{
		X: clamp(pos.X, 0, width),
		Y: clamp(pos.Y, 0, height),
	}
}

func clamp(v, lo, hi float64) float64 {
	if math.IsNaN(v) {
		return lo
	}
	return math.Max(lo, math.Min(hi, v))
}
