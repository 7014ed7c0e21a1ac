package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStage_CanTransitionTo(t *testing.T) {
	assert.True(t, StageInitial.CanTransitionTo(StageConsultation))
	assert.True(t, StageInitial.CanTransitionTo(StageBookingConfirmed))
	assert.True(t, StageConsultation.CanTransitionTo(StageConsultation))
	assert.False(t, StagePaymentPending.CanTransitionTo(StageConsultation))
	assert.False(t, StagePaymentConfirmed.CanTransitionTo(StageInitial))
	assert.False(t, Stage("vip").CanTransitionTo(StageConsultation))
	assert.False(t, StageInitial.CanTransitionTo(Stage("vip")))
}

func TestStage_Advance(t *testing.T) {
	assert.Equal(t, StageBookingConfirmed, StageConsultation.Advance(StageBookingConfirmed))
	assert.Equal(t, StagePaymentPending, StagePaymentPending.Advance(StageBookingConfirmed))
}

func TestParseStage(t *testing.T) {
	s, err := ParseStage("payment_pending")
	assert.NoError(t, err)
	assert.Equal(t, StagePaymentPending, s)

	_, err = ParseStage("done")
	assert.ErrorIs(t, err, ErrValidation)
}
