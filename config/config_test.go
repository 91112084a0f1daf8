package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseOverridesDefaults(t *testing.T) {
	c := Default()
	err := c.Parse([]byte(`{"maxDepth": 9, "boundaryType": "dirichlet"}`))
	assert.NoError(t, err)
	assert.Equal(t, 9, c.MaxDepth)
	assert.Equal(t, BoundaryDirichlet, c.BoundaryType)
	// untouched fields keep their default
	assert.Equal(t, 1.1, c.ScaleFactor)
}

func TestEffectiveMaxSolveDepth(t *testing.T) {
	c := Default()
	c.MaxDepth = 7
	assert.Equal(t, 7, c.EffectiveMaxSolveDepth())
	c.MaxSolveDepth = 4
	assert.Equal(t, 4, c.EffectiveMaxSolveDepth())
}

func TestScreeningEnabled(t *testing.T) {
	c := Default()
	assert.False(t, c.ScreeningEnabled())
	c.ConstraintWeight = 2
	assert.True(t, c.ScreeningEnabled())
}
