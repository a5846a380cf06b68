package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRoundQuantity(t *testing.T) {
	tests := []struct {
		in   float64
		want float64
	}{
		{1.1235, 1.124}, // half rounds away from zero
		{1.1234, 1.123},
		{-1.1235, -1.124},
		{2.0005, 2.001},
		{3, 3},
		{0.0004, 0},
	}
	for _, tt := range tests {
		assert.InDelta(t, tt.want, RoundQuantity(tt.in), 1e-9, "RoundQuantity(%v)", tt.in)
	}
}

func TestClampQuantity(t *testing.T) {
	assert.Equal(t, MinQuantity, ClampQuantity(0))
	assert.Equal(t, MinQuantity, ClampQuantity(-5))
	assert.Equal(t, MaxQuantity, ClampQuantity(99999))
	assert.InDelta(t, 1.124, ClampQuantity(1.1235), 1e-9)
}

func TestPendingMutationValidate(t *testing.T) {
	valid := PendingMutation{
		ID:        "4b7c1a60-0000-0000-0000-000000000001",
		Kind:      KindProduction,
		ItemID:    "item-1",
		Quantity:  2.5,
		Status:    StatusPending,
		EventAt:   time.Now(),
		CreatedAt: time.Now(),
	}
	assert.NoError(t, valid.Validate())

	noKey := valid
	noKey.ID = ""
	assert.Error(t, noKey.Validate())

	noItem := valid
	noItem.ItemID = ""
	assert.Error(t, noItem.Validate())

	badKind := valid
	badKind.Kind = "adjustment"
	assert.Error(t, badKind.Validate())

	tooBig := valid
	tooBig.Quantity = MaxQuantity + 1
	assert.Error(t, tooBig.Validate())

	tooPrecise := valid
	tooPrecise.Quantity = 1.00005
	assert.Error(t, tooPrecise.Validate())

	correction := valid
	correction.Quantity = -3.25
	assert.NoError(t, correction.Validate(), "signed corrections are valid")
}

func TestTargetExplicit(t *testing.T) {
	assert.True(t, CachedTarget{Date: "2026-08-31", Weekday: -1}.Explicit())
	assert.False(t, CachedTarget{Weekday: 1}.Explicit())
}
