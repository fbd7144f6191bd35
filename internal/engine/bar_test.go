package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cutstock/sharedcut/internal/model"
)

func TestBarPool_SynthesizesDefaultWhenEmpty(t *testing.T) {
	pool := NewBarPool(nil, 5000, 10, 3)
	bar, ok := pool.AcquireBar(5013, 5006)
	require.True(t, ok)
	assert.Equal(t, "default", bar.MaterialID)
	assert.Equal(t, 6000.0, bar.Length)
}

func TestBarPool_SynthesizedDefaultScalesWithLongestPart(t *testing.T) {
	pool := NewBarPool(nil, 8000, 10, 3)
	bar, ok := pool.AcquireBar(8013, 8006)
	require.True(t, ok)
	assert.Equal(t, 8013.0, bar.Length)
}

func TestBarPool_AcquireBarReusesBeforeProvisioning(t *testing.T) {
	pool := NewBarPool([]model.Material{model.NewMaterial("m1", 6000)}, 1000, 10, 3)

	first, ok := pool.AcquireBar(1013, 1006)
	require.True(t, ok)
	Place(first, 10, 3, model.PlacedPart{PartID: "p1", Length: 1000})

	second, ok := pool.AcquireBar(1006, 999)
	require.True(t, ok)
	assert.Same(t, first, second)
	assert.Len(t, pool.Bars(), 1)
}

func TestBarPool_ProvisionSynthesizesOversizeWhenNothingFits(t *testing.T) {
	pool := NewBarPool([]model.Material{model.NewMaterial("m1", 1000)}, 1000, 10, 3)
	bar, ok := pool.AcquireBar(5000, 4993)
	require.True(t, ok)
	assert.GreaterOrEqual(t, bar.Length, 5000.0)
	require.Len(t, pool.Warnings(), 1)
	assert.Equal(t, "oversize_auto_provision", pool.Warnings()[0].Kind)
}

func TestBarPool_FiniteSupplyWarnsPastPreferredCount(t *testing.T) {
	m := model.Material{ID: "m1", Length: 1000, Supply: model.FiniteSupply(1)}
	pool := NewBarPool([]model.Material{m}, 500, 10, 3)

	_, ok := pool.Provision(513)
	require.True(t, ok)
	assert.Empty(t, pool.Warnings())

	_, ok = pool.Provision(513)
	require.True(t, ok)
	require.Len(t, pool.Warnings(), 1)
	assert.Equal(t, "supply_exceeded", pool.Warnings()[0].Kind)
}

func TestPlace_ChargesFrontLossOnFirstCutAndKerfOnEvery(t *testing.T) {
	pool := NewBarPool([]model.Material{model.NewMaterial("m1", 6000)}, 1000, 10, 3)
	bar, ok := pool.AcquireBar(2026, 2006)
	require.True(t, ok)

	first := Place(bar, 10, 3, model.PlacedPart{PartID: "a", Length: 1000})
	second := Place(bar, 10, 3, model.PlacedPart{PartID: "b", Length: 1000})

	assert.Equal(t, 13.0, first.Position)
	assert.Equal(t, 1016.0, second.Position)
	assert.Equal(t, 2016.0, bar.UsedLength)
}

func TestBarPool_BestFitPrefersTightestRemainingSpace(t *testing.T) {
	pool := NewBarPool([]model.Material{
		model.NewMaterial("m1", 6000),
		model.NewMaterial("m2", 2013),
	}, 1000, 10, 3)

	loose, _ := pool.Provision(6000)
	Place(loose, 10, 3, model.PlacedPart{PartID: "p1", Length: 1000})

	tight, _ := pool.Provision(2013)
	Place(tight, 10, 3, model.PlacedPart{PartID: "p2", Length: 1000})

	chosen, ok := pool.FindBestFit(1000, 993)
	require.True(t, ok)
	assert.Same(t, tight, chosen)
}
