package model

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsValidBevelAngle(t *testing.T) {
	assert.True(t, IsValidBevelAngle(0))
	assert.True(t, IsValidBevelAngle(45))
	assert.True(t, IsValidBevelAngle(89.999))
	assert.False(t, IsValidBevelAngle(90))
	assert.False(t, IsValidBevelAngle(-1))
}

func TestCanAnglesMatch_ZeroNeverMatches(t *testing.T) {
	assert.False(t, CanAnglesMatch(0, 0, 10))
	assert.False(t, CanAnglesMatch(0, 45, 10))
	assert.False(t, CanAnglesMatch(45, 0, 10))
}

func TestCanAnglesMatch_Symmetric(t *testing.T) {
	for _, tol := range []float64{0, 5, 10} {
		assert.Equal(t, CanAnglesMatch(30, 38, tol), CanAnglesMatch(38, 30, tol))
	}
}

func TestCanAnglesMatch_WithinTolerance(t *testing.T) {
	assert.True(t, CanAnglesMatch(30, 35, 10))
	assert.False(t, CanAnglesMatch(30, 45, 10))
}

func TestSharedCutSavings_ZeroAtZeroAngle(t *testing.T) {
	assert.Equal(t, 0.0, SharedCutSavings(0, 10, 10))
}

func TestSharedCutSavings_UsesThinnerThickness(t *testing.T) {
	got := SharedCutSavings(45, 10, 20)
	want := math.Sin(45*math.Pi/180) * 10
	assert.InDelta(t, want, got, 1e-9)
}

func TestSharedCutSavings_MonotoneNonDecreasing(t *testing.T) {
	prev := SharedCutSavings(0, 10, 10)
	for a := 1.0; a < 90; a += 1.0 {
		cur := SharedCutSavings(a, 10, 10)
		require.GreaterOrEqual(t, cur, prev)
		prev = cur
	}
}

func TestSharedCutSavings_Deterministic(t *testing.T) {
	a, b := SharedCutSavings(37.5, 12, 8), SharedCutSavings(37.5, 12, 8)
	assert.Equal(t, a, b)
}

func TestValidatePartAngles_Valid(t *testing.T) {
	err := ValidatePartAngles(PartAngles{TopLeft: 45, TopRight: 0, BottomLeft: 0, BottomRight: 30})
	assert.NoError(t, err)
}

func TestValidatePartAngles_LeftSideExclusion(t *testing.T) {
	err := ValidatePartAngles(PartAngles{TopLeft: 45, BottomLeft: 30})
	require.Error(t, err)
	ve, ok := err.(*ValidationError)
	require.True(t, ok)
	found := false
	for _, fe := range ve.Errors {
		if fe.Field == "left" {
			found = true
		}
	}
	assert.True(t, found)
}

func TestValidatePartAngles_RightSideExclusion(t *testing.T) {
	err := ValidatePartAngles(PartAngles{TopRight: 20, BottomRight: 20})
	require.Error(t, err)
}

func TestValidatePartAngles_OutOfRangeCollectsAll(t *testing.T) {
	err := ValidatePartAngles(PartAngles{TopLeft: 90, TopRight: -5, BottomLeft: 0, BottomRight: 0})
	require.Error(t, err)
	ve := err.(*ValidationError)
	assert.Len(t, ve.Errors, 2)
}

func TestValidatePartAngles_Idempotent(t *testing.T) {
	angles := PartAngles{TopLeft: 45, BottomLeft: 30}
	first := ValidatePartAngles(angles)
	second := ValidatePartAngles(angles)
	require.Error(t, first)
	require.Error(t, second)
	assert.Equal(t, first.(*ValidationError).Errors, second.(*ValidationError).Errors)
}
