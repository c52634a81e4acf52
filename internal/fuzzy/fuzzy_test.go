package fuzzy

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOrAnd(t *testing.T) {
	assert.InDelta(t, 0.75, Or(0.5, 0.5), 1e-9)
	assert.InDelta(t, 0.25, And(0.5, 0.5), 1e-9)
	assert.InDelta(t, 0.0, Or(), 1e-9)
	assert.InDelta(t, 1.0, And(), 1e-9)
}

func TestMeans(t *testing.T) {
	assert.InDelta(t, 0.5, AveAri(0.25, 0.75), 1e-9)
	assert.InDelta(t, 0.9, AveGeo(0.9, 0.9, 0.9), 1e-9)
	assert.Equal(t, 0.0, AveGeo())
}

func TestClamp(t *testing.T) {
	assert.Equal(t, 0.0, Clamp(-0.2))
	assert.Equal(t, Max, Clamp(1.0))
	assert.Equal(t, Max, Clamp(7))
	assert.Equal(t, 0.0, Clamp(math.NaN()))
	assert.Equal(t, 0.3, Clamp(0.3))
}
