package lineage

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAssignPositions_Deterministic(t *testing.T) {
	nodes := []Node{{ID: "A"}, {ID: "B"}, {ID: "C"}, {ID: "D"}}
	assert.Equal(t, AssignPositions(nodes), AssignPositions(nodes))
}

func TestAssignPositions_Singleton(t *testing.T) {
	got := AssignPositions([]Node{{ID: "A"}})
	require.Len(t, got, 1)
	assert.Equal(t, Position{ID: "A", X: LayoutCenterX + LayoutRadius, Y: LayoutCenterY}, got[0])
}

func TestAssignPositions_Empty(t *testing.T) {
	got := AssignPositions(nil)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestAssignPositions_EvenlySpaced(t *testing.T) {
	got := AssignPositions([]Node{{ID: "A"}, {ID: "B"}, {ID: "C"}, {ID: "D"}})
	require.Len(t, got, 4)

	want := [][2]float64{
		{LayoutCenterX + LayoutRadius, LayoutCenterY},
		{LayoutCenterX, LayoutCenterY + LayoutRadius},
		{LayoutCenterX - LayoutRadius, LayoutCenterY},
		{LayoutCenterX, LayoutCenterY - LayoutRadius},
	}
	for i, p := range got {
		assert.InDelta(t, want[i][0], p.X, 1e-9, "x of %s", p.ID)
		assert.InDelta(t, want[i][1], p.Y, 1e-9, "y of %s", p.ID)
		dist := math.Hypot(p.X-LayoutCenterX, p.Y-LayoutCenterY)
		assert.InDelta(t, LayoutRadius, dist, 1e-9)
	}
}
