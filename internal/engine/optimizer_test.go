package engine

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cutstock/sharedcut/internal/model"
)

func TestOptimize_SimpleConsolidationOntoOneBar(t *testing.T) {
	materials := []model.Material{model.NewMaterial("m1", 6000)}
	parts := []model.Part{
		{ID: "p1", Length: 2000, Quantity: 2, Thickness: 10},
		{ID: "p2", Length: 1500, Quantity: 1, Thickness: 10},
	}

	result, err := New(model.DefaultSettings()).Optimize(materials, parts)
	require.NoError(t, err)

	assert.True(t, result.AllPartsPlaced)
	assert.Equal(t, 1, result.TotalMaterialsUsed)
	assert.Greater(t, result.OverallUtilization, 0.85)
}

func TestOptimize_EmptyCatalogAutoProvisions(t *testing.T) {
	parts := []model.Part{{ID: "p1", Length: 10000, Quantity: 1, Thickness: 10}}

	result, err := New(model.DefaultSettings()).Optimize(nil, parts)
	require.NoError(t, err)

	assert.True(t, result.AllPartsPlaced)
	require.Len(t, result.MaterialUsagePlans, 1)
	assert.GreaterOrEqual(t, result.MaterialUsagePlans[0].Length, 10010.0)
}

func TestOptimize_SharedCutChainFormsAndFitsOneBar(t *testing.T) {
	materials := []model.Material{model.NewMaterial("m1", 4000)}
	parts := []model.Part{
		{ID: "p1", Length: 1500, Quantity: 1, Thickness: 10, Angles: model.PartAngles{TopLeft: 45}},
		{ID: "p2", Length: 1500, Quantity: 1, Thickness: 10, Angles: model.PartAngles{TopLeft: 45}},
	}

	result, err := New(model.DefaultSettings()).Optimize(materials, parts)
	require.NoError(t, err)

	require.Len(t, result.Chains, 1)
	assert.InDelta(t, 7.07, result.Chains[0].TotalSavings, 0.01)
	assert.True(t, result.AllPartsPlaced)
	assert.Equal(t, 1, result.TotalMaterialsUsed)
}

func TestOptimize_PrefersShorterBarThatStillFits(t *testing.T) {
	materials := []model.Material{model.NewMaterial("m1", 6000), model.NewMaterial("m2", 2000)}
	parts := []model.Part{{ID: "p1", Length: 1500, Quantity: 1, Thickness: 10}}

	result, err := New(model.DefaultSettings()).Optimize(materials, parts)
	require.NoError(t, err)

	require.Len(t, result.MaterialUsagePlans, 1)
	assert.Equal(t, 2000.0, result.MaterialUsagePlans[0].Length)
}

func TestOptimize_RejectsLeftSideDoubleBevel(t *testing.T) {
	materials := []model.Material{model.NewMaterial("m1", 4000)}
	parts := []model.Part{{ID: "p1", Length: 1000, Quantity: 1, Thickness: 10,
		Angles: model.PartAngles{TopLeft: 45, BottomLeft: 30}}}

	result, err := New(model.DefaultSettings()).Optimize(materials, parts)
	require.NoError(t, err)

	require.Len(t, result.InvalidParts, 1)
	assert.Contains(t, result.InvalidParts[0].Reason.Error(), "left")
}

func TestOptimize_AutoProvisionsOversizeBarWhenNoMaterialLongEnough(t *testing.T) {
	materials := []model.Material{model.NewMaterial("m1", 1000)}
	parts := []model.Part{{ID: "p1", Length: 5000, Quantity: 1, Thickness: 10}}

	result, err := New(model.DefaultSettings()).Optimize(materials, parts)
	require.NoError(t, err)

	assert.True(t, result.AllPartsPlaced)
	require.Empty(t, result.UnplacedParts)
	require.Len(t, result.MaterialUsagePlans, 1)
	assert.GreaterOrEqual(t, result.MaterialUsagePlans[0].Length, 5013.0)
	require.Len(t, result.Warnings, 1)
	assert.Equal(t, "oversize_auto_provision", result.Warnings[0].Kind)
}

func TestOptimize_LogsWarningsAtWarnLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelWarn}))

	materials := []model.Material{model.NewMaterial("m1", 1000)}
	parts := []model.Part{{ID: "p1", Length: 5000, Quantity: 1, Thickness: 10}}

	result, err := New(model.DefaultSettings()).WithLogger(logger).Optimize(materials, parts)
	require.NoError(t, err)
	require.Len(t, result.Warnings, 1)

	out := buf.String()
	assert.Contains(t, out, "level=WARN")
	assert.Contains(t, out, "kind=oversize_auto_provision")
}

func TestOptimize_ConfigErrorOnInvalidSettings(t *testing.T) {
	settings := model.DefaultSettings()
	settings.MaxChainLength = 1
	_, err := New(settings).Optimize(nil, nil)
	assert.Error(t, err)
}

func TestOptimize_DeterministicAcrossRuns(t *testing.T) {
	materials := []model.Material{model.NewMaterial("m1", 6000)}
	parts := []model.Part{
		{ID: "p1", Length: 2000, Quantity: 3, Thickness: 10, Angles: model.PartAngles{TopRight: 45}},
		{ID: "p2", Length: 1800, Quantity: 2, Thickness: 10, Angles: model.PartAngles{TopLeft: 45}},
		{ID: "p3", Length: 900, Quantity: 4, Thickness: 10},
	}

	r1, err1 := New(model.DefaultSettings()).Optimize(materials, parts)
	require.NoError(t, err1)
	r2, err2 := New(model.DefaultSettings()).Optimize(materials, parts)
	require.NoError(t, err2)

	assert.Equal(t, r1, r2)
}

func TestOptimize_CompletenessAcrossChainsAndSingles(t *testing.T) {
	materials := []model.Material{model.NewMaterial("m1", 6000)}
	parts := []model.Part{
		{ID: "p1", Length: 1000, Quantity: 3, Thickness: 10, Angles: model.PartAngles{TopRight: 45}},
		{ID: "p2", Length: 1200, Quantity: 2, Thickness: 10, Angles: model.PartAngles{TopLeft: 45}},
	}

	result, err := New(model.DefaultSettings()).Optimize(materials, parts)
	require.NoError(t, err)

	placed := 0
	for _, bar := range result.MaterialUsagePlans {
		placed += len(bar.Placed)
	}
	assert.Equal(t, 5, placed)
	assert.True(t, result.AllPartsPlaced)
}
