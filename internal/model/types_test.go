package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPart_EffectiveThicknessDefaults(t *testing.T) {
	p := Part{Length: 100, Quantity: 1}
	assert.Equal(t, DefaultThickness, p.EffectiveThickness())

	p.Thickness = 18
	assert.Equal(t, 18.0, p.EffectiveThickness())
}

func TestPartAngles_HasUsableAngles(t *testing.T) {
	assert.False(t, PartAngles{}.HasUsableAngles())
	assert.True(t, PartAngles{TopRight: 30}.HasUsableAngles())
}

func TestSettings_ValidateRejectsBadMaxChainLength(t *testing.T) {
	s := DefaultSettings()
	s.MaxChainLength = 1
	assert.Error(t, s.Validate())
}

func TestSettings_ValidateRejectsNegativeTolerance(t *testing.T) {
	s := DefaultSettings()
	s.AngleTolerance = -1
	assert.Error(t, s.Validate())
}

func TestSettings_DefaultsAreValid(t *testing.T) {
	assert.NoError(t, DefaultSettings().Validate())
}

func TestMaterialInstance_RemainingAndUtilization(t *testing.T) {
	m := MaterialInstance{Length: 1000, UsedLength: 250}
	assert.Equal(t, 750.0, m.RemainingLength())
	assert.Equal(t, 0.25, m.Utilization())
	assert.True(t, m.IsEmpty())
}
