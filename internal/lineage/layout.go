package lineage

import "math"

// Layout constants for the circular arrangement.
const (
	LayoutRadius  = 250.0
	LayoutCenterX = 400.0
	LayoutCenterY = 300.0
)

// Position is a node's render coordinate.
type Position struct {
	ID string  `json:"id"`
	X  float64 `json:"x"`
	Y  float64 `json:"y"`
}

// AssignPositions spreads nodes evenly on a circle in their given order. The
// same input order always yields the same coordinates.
func AssignPositions(nodes []Node) []Position {
	n := len(nodes)
	positions := make([]Position, 0, n)
	for i, node := range nodes {
		var angle float64
		if n > 1 {
			angle = 2 * math.Pi * float64(i) / float64(n)
		}
		positions = append(positions, Position{
			ID: node.ID,
			X:  LayoutCenterX + LayoutRadius*math.Cos(angle),
			Y:  LayoutCenterY + LayoutRadius*math.Sin(angle),
		})
	}
	return positions
}
