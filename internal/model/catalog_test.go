package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMaterialCatalog_AddRejectsDuplicateLength(t *testing.T) {
	var c MaterialCatalog
	_, err := c.AddMaterial(6000)
	require.NoError(t, err)
	_, err = c.AddMaterial(6000)
	assert.Error(t, err)
}

func TestMaterialCatalog_AddRejectsNonPositive(t *testing.T) {
	var c MaterialCatalog
	_, err := c.AddMaterial(0)
	assert.Error(t, err)
	_, err = c.AddMaterial(-5)
	assert.Error(t, err)
}

func TestMaterialCatalog_LongestShortest(t *testing.T) {
	var c MaterialCatalog
	_, _ = c.AddMaterial(2000)
	_, _ = c.AddMaterial(6000)
	_, _ = c.AddMaterial(4000)

	longest, ok := c.Longest()
	require.True(t, ok)
	assert.Equal(t, 6000.0, longest.Length)

	shortest, ok := c.Shortest()
	require.True(t, ok)
	assert.Equal(t, 2000.0, shortest.Length)
}

func TestPartCatalog_AddPartValidatesAngles(t *testing.T) {
	var c PartCatalog
	_, err := c.AddPart(1500, 1, PartAngles{TopLeft: 45, BottomLeft: 30}, 10)
	assert.Error(t, err)
}

func TestPartCatalog_AddPartRejectsBadQuantity(t *testing.T) {
	var c PartCatalog
	_, err := c.AddPart(1500, 0, PartAngles{}, 10)
	assert.Error(t, err)
}

func TestPartCatalog_AddPartDefaultsThickness(t *testing.T) {
	var c PartCatalog
	p, err := c.AddPart(1500, 1, PartAngles{}, 0)
	require.NoError(t, err)
	assert.Equal(t, DefaultThickness, p.EffectiveThickness())
}

func TestPartCatalog_FilterByAngle(t *testing.T) {
	var c PartCatalog
	_, _ = c.AddPart(1000, 1, PartAngles{TopLeft: 30}, 10)
	_, _ = c.AddPart(2000, 1, PartAngles{}, 10)

	beveled := c.FilterByAngle(true)
	require.Len(t, beveled, 1)
	assert.Equal(t, 1000.0, beveled[0].Length)

	square := c.FilterByAngle(false)
	require.Len(t, square, 1)
	assert.Equal(t, 2000.0, square[0].Length)
}

func TestPartCatalog_FilterByLengthRange(t *testing.T) {
	var c PartCatalog
	_, _ = c.AddPart(500, 1, PartAngles{}, 10)
	_, _ = c.AddPart(1500, 1, PartAngles{}, 10)
	_, _ = c.AddPart(3000, 1, PartAngles{}, 10)

	inRange := c.FilterByLengthRange(1000, 2000)
	require.Len(t, inRange, 1)
	assert.Equal(t, 1500.0, inRange[0].Length)
}

func TestPartCatalog_RemoveAndList(t *testing.T) {
	var c PartCatalog
	p, _ := c.AddPart(500, 1, PartAngles{}, 10)
	require.True(t, c.Remove(p.ID))
	assert.Empty(t, c.List())
	assert.False(t, c.Remove(p.ID))
}
