package bookings

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/GlampingBackoffice/internal/domain"
	"github.com/m04kA/GlampingBackoffice/internal/infra/storage/memstore"
	"github.com/m04kA/GlampingBackoffice/internal/service/bookings/models"
	"github.com/m04kA/GlampingBackoffice/pkg/logger"
	"github.com/m04kA/GlampingBackoffice/pkg/ptr"
)

func seedBooking(t *testing.T, repo *memstore.Bookings, clientID int64, checkIn string) *domain.Booking {
	t.Helper()
	in, err := time.Parse(domain.DateFormat, checkIn)
	require.NoError(t, err)

	b, err := repo.Create(context.Background(), &domain.Booking{
		ClientID:          clientID,
		AccommodationType: "VIP",
		CheckIn:           in,
		CheckOut:          in.AddDate(0, 0, 2),
		GuestCount:        2,
		ContactName:       "Иван",
		ContactPhone:      "+77011234567",
		Status:            domain.StatusPending,
	})
	require.NoError(t, err)
	return b
}

func TestGetByID(t *testing.T) {
	repo := memstore.NewBookings()
	svc := NewService(repo, logger.NewNop())
	b := seedBooking(t, repo, 1, "2025-06-01")

	got, err := svc.GetByID(context.Background(), b.ID)
	require.NoError(t, err)
	assert.Equal(t, "2025-06-01", got.CheckIn)
	assert.Equal(t, "2025-06-03", got.CheckOut)
	assert.Equal(t, 2, got.Nights)
	assert.Equal(t, "pending", got.Status)

	_, err = svc.GetByID(context.Background(), 100)
	assert.ErrorIs(t, err, ErrBookingNotFound)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestList_Filters(t *testing.T) {
	repo := memstore.NewBookings()
	svc := NewService(repo, logger.NewNop())
	ctx := context.Background()

	seedBooking(t, repo, 1, "2025-06-01")
	seedBooking(t, repo, 1, "2025-07-01")
	seedBooking(t, repo, 2, "2025-06-10")

	all, err := svc.List(ctx, &models.ListBookingsRequest{})
	require.NoError(t, err)
	assert.Len(t, all.Bookings, 3)

	byClient, err := svc.List(ctx, &models.ListBookingsRequest{ClientID: ptr.Ptr(int64(1))})
	require.NoError(t, err)
	assert.Len(t, byClient.Bookings, 2)

	june, err := svc.List(ctx, &models.ListBookingsRequest{From: ptr.Ptr("2025-06-01"), To: ptr.Ptr("2025-06-30")})
	require.NoError(t, err)
	assert.Len(t, june.Bookings, 2)

	_, err = svc.List(ctx, &models.ListBookingsRequest{Status: ptr.Ptr("unknown"), From: ptr.Ptr("01.06.2025")})
	ve, ok := domain.AsValidationError(err)
	require.True(t, ok)
	assert.ElementsMatch(t, []string{"status", "from"}, ve.Fields)
}

func TestCancel(t *testing.T) {
	repo := memstore.NewBookings()
	svc := NewService(repo, logger.NewNop())
	ctx := context.Background()
	b := seedBooking(t, repo, 1, "2025-06-01")

	_, err := svc.Cancel(ctx, b.ID, &models.CancelBookingRequest{CancellationReason: "  "})
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = svc.Cancel(ctx, b.ID, &models.CancelBookingRequest{CancellationReason: strings.Repeat("я", domain.MaxCancellationReasonLength+1)})
	assert.ErrorIs(t, err, domain.ErrValidation)

	got, err := svc.Cancel(ctx, b.ID, &models.CancelBookingRequest{CancellationReason: " гость передумал "})
	require.NoError(t, err)
	assert.Equal(t, "cancelled", got.Status)
	require.NotNil(t, got.CancellationReason)
	assert.Equal(t, "гость передумал", *got.CancellationReason)
	assert.NotNil(t, got.CancelledAt)

	_, err = svc.Cancel(ctx, b.ID, &models.CancelBookingRequest{CancellationReason: "ещё раз"})
	assert.ErrorIs(t, err, ErrCannotCancel)

	_, err = svc.Cancel(ctx, 404, &models.CancelBookingRequest{CancellationReason: "нет такого"})
	assert.ErrorIs(t, err, ErrBookingNotFound)
}
