package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/m04kA/GlampingBackoffice/pkg/ptr"
)

func TestSession_ApplyKeepsExistingValues(t *testing.T) {
	s := &Session{
		ContactName: ptr.Ptr("Иван"),
		Email:       ptr.Ptr("ivan@example.kz"),
	}

	s.Apply(SessionPatch{
		AccommodationType: ptr.Ptr("VIP"),
		Email:             nil,
	})

	assert.Equal(t, "Иван", *s.ContactName)
	assert.Equal(t, "ivan@example.kz", *s.Email)
	assert.Equal(t, "VIP", *s.AccommodationType)

	s.Apply(SessionPatch{ContactName: ptr.Ptr("Иван Петров")})
	assert.Equal(t, "Иван Петров", *s.ContactName)
}

func TestSession_ApplyLastInteractionNeverMovesBack(t *testing.T) {
	earlier := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	later := earlier.Add(5 * time.Minute)
	s := &Session{}

	s.Apply(SessionPatch{LastInteractionAt: &later})
	s.Apply(SessionPatch{LastInteractionAt: &earlier})

	assert.Equal(t, later, *s.LastInteractionAt)
}

func TestSession_IsBlocked(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	assert.False(t, (&Session{}).IsBlocked(now))
	assert.True(t, (&Session{Blocked: true}).IsBlocked(now))
	assert.True(t, (&Session{Blocked: true, BlockedUntil: ptr.Ptr(now.Add(time.Hour))}).IsBlocked(now))
	assert.False(t, (&Session{Blocked: true, BlockedUntil: ptr.Ptr(now.Add(-time.Hour))}).IsBlocked(now))
}

func TestSession_MissingBookingFields(t *testing.T) {
	s := &Session{ContactName: ptr.Ptr("Иван"), AccommodationType: ptr.Ptr("")}
	assert.Equal(t, []string{"checkIn", "checkOut", "accommodationType"}, s.MissingBookingFields())

	checkIn := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	s.CheckIn = &checkIn
	s.CheckOut = ptr.Ptr(checkIn.AddDate(0, 0, 2))
	s.AccommodationType = ptr.Ptr("VIP")
	assert.Empty(t, s.MissingBookingFields())
}

func TestValidationError(t *testing.T) {
	err := NewValidationError("missing required fields", "checkIn", "checkOut")
	assert.ErrorIs(t, err, ErrValidation)
	assert.Equal(t, "validation failed: missing required fields: checkIn, checkOut", err.Error())

	ve, ok := AsValidationError(err)
	assert.True(t, ok)
	assert.Equal(t, []string{"checkIn", "checkOut"}, ve.Fields)
}
