package materialize_booking

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/GlampingBackoffice/internal/domain"
	"github.com/m04kA/GlampingBackoffice/internal/infra/storage/memstore"
	"github.com/m04kA/GlampingBackoffice/pkg/logger"
	"github.com/m04kA/GlampingBackoffice/pkg/ptr"
)

const phone = "+77011234567"

type fixture struct {
	uc       *UseCase
	sessions *memstore.Sessions
	bookings *memstore.Bookings
	clients  *memstore.Clients
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		sessions: memstore.NewSessions(),
		bookings: memstore.NewBookings(),
		clients:  memstore.NewClients(),
	}
	f.uc = NewUseCase(f.sessions, f.bookings, f.clients, memstore.TxManager{}, logger.NewNop())
	return f
}

func date(t *testing.T, v string) *time.Time {
	t.Helper()
	d, err := time.Parse(domain.DateFormat, v)
	require.NoError(t, err)
	return &d
}

func (f *fixture) seed(t *testing.T, patch domain.SessionPatch) *domain.Session {
	t.Helper()
	s, err := f.sessions.Upsert(context.Background(), phone, patch)
	require.NoError(t, err)
	return s
}

func TestExecute_CreatesBooking(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	session := f.seed(t, domain.SessionPatch{
		ContactName:       ptr.Ptr("Иван"),
		CheckIn:           date(t, "2025-06-01"),
		CheckOut:          date(t, "2025-06-03"),
		AccommodationType: ptr.Ptr("VIP"),
	})

	resp, err := f.uc.Execute(ctx, &Request{Phone: "+7 (701) 123-45-67"})
	require.NoError(t, err)
	require.True(t, resp.Created)

	b := resp.Booking
	assert.Equal(t, domain.StatusPending, b.Status)
	assert.Equal(t, "VIP", b.AccommodationType)
	assert.Equal(t, "Иван", b.ContactName)
	assert.Equal(t, phone, b.ContactPhone)
	assert.Equal(t, 1, b.GuestCount)
	assert.Equal(t, 0.0, b.TotalPrice)
	assert.Equal(t, 2, b.Nights())
	assert.Equal(t, domain.PlaceholderEmail(phone), b.ContactEmail)
	require.NotNil(t, b.SessionID)
	assert.Equal(t, session.ID, *b.SessionID)

	// Клиент создан и связан с сессией
	assert.Equal(t, 1, f.clients.Count())
	stored, err := f.sessions.GetByPhone(ctx, phone)
	require.NoError(t, err)
	require.NotNil(t, stored.BookingID)
	assert.Equal(t, b.ID, *stored.BookingID)
	require.NotNil(t, stored.ClientID)
	assert.Equal(t, resp.ClientID, *stored.ClientID)
	assert.Equal(t, domain.StageBookingConfirmed, stored.Stage)
}

func TestExecute_Idempotent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.seed(t, domain.SessionPatch{
		ContactName:       ptr.Ptr("Иван"),
		CheckIn:           date(t, "2025-06-01"),
		CheckOut:          date(t, "2025-06-03"),
		AccommodationType: ptr.Ptr("VIP"),
	})

	first, err := f.uc.Execute(ctx, &Request{Phone: phone})
	require.NoError(t, err)
	second, err := f.uc.Execute(ctx, &Request{Phone: phone})
	require.NoError(t, err)

	assert.False(t, second.Created)
	assert.Equal(t, first.Booking.ID, second.Booking.ID)
	assert.Equal(t, 1, f.bookings.Count())
	assert.Equal(t, 1, f.clients.Count())
}

func TestExecute_ReusesLinkedClient(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	client, _, err := f.clients.FindOrCreate(ctx, &domain.Client{
		Name:   "Иван Петров",
		Phone:  phone,
		Email:  "ivan@example.kz",
		Source: domain.ClientSourceMessaging,
	})
	require.NoError(t, err)

	f.seed(t, domain.SessionPatch{
		ClientID:          ptr.Ptr(client.ID),
		ContactName:       ptr.Ptr("Иван"),
		CheckIn:           date(t, "2025-06-01"),
		CheckOut:          date(t, "2025-06-03"),
		GuestCount:        ptr.Ptr(3),
		TotalPrice:        ptr.Ptr(120000.0),
		AccommodationType: ptr.Ptr("Купол"),
	})

	resp, err := f.uc.Execute(ctx, &Request{Phone: phone})
	require.NoError(t, err)
	assert.Equal(t, client.ID, resp.ClientID)
	assert.Equal(t, "ivan@example.kz", resp.Booking.ContactEmail)
	assert.Equal(t, 3, resp.Booking.GuestCount)
	assert.Equal(t, 120000.0, resp.Booking.TotalPrice)
	assert.Equal(t, 1, f.clients.Count())
}

func TestExecute_StageNeverRegresses(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	s := f.seed(t, domain.SessionPatch{
		ContactName:       ptr.Ptr("Иван"),
		CheckIn:           date(t, "2025-06-01"),
		CheckOut:          date(t, "2025-06-03"),
		AccommodationType: ptr.Ptr("VIP"),
	})
	require.NoError(t, f.sessions.SetStageByID(ctx, s.ID, domain.StagePaymentPending))

	_, err := f.uc.Execute(ctx, &Request{Phone: phone})
	require.NoError(t, err)

	stored, err := f.sessions.GetByPhone(ctx, phone)
	require.NoError(t, err)
	assert.Equal(t, domain.StagePaymentPending, stored.Stage)
}

func TestExecute_ValidationLeavesNoRows(t *testing.T) {
	ctx := context.Background()

	t.Run("missing fields", func(t *testing.T) {
		f := newFixture(t)
		f.seed(t, domain.SessionPatch{ContactName: ptr.Ptr("Иван")})

		_, err := f.uc.Execute(ctx, &Request{Phone: phone})
		ve, ok := domain.AsValidationError(err)
		require.True(t, ok)
		assert.ElementsMatch(t, []string{"checkIn", "checkOut", "accommodationType"}, ve.Fields)
		assert.Equal(t, 0, f.bookings.Count())
		assert.Equal(t, 0, f.clients.Count())
	})

	t.Run("check-out before check-in", func(t *testing.T) {
		f := newFixture(t)
		f.seed(t, domain.SessionPatch{
			ContactName:       ptr.Ptr("Иван"),
			CheckIn:           date(t, "2025-06-03"),
			CheckOut:          date(t, "2025-06-03"),
			AccommodationType: ptr.Ptr("VIP"),
		})

		_, err := f.uc.Execute(ctx, &Request{Phone: phone})
		ve, ok := domain.AsValidationError(err)
		require.True(t, ok)
		assert.Equal(t, []string{"checkOut"}, ve.Fields)
		assert.Equal(t, 0, f.bookings.Count())

		stored, err := f.sessions.GetByPhone(ctx, phone)
		require.NoError(t, err)
		assert.Nil(t, stored.BookingID)
		assert.Equal(t, domain.StageInitial, stored.Stage)
	})
}

func TestExecute_Errors(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.uc.Execute(ctx, &Request{Phone: "abc"})
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = f.uc.Execute(ctx, &Request{Phone: phone})
	assert.ErrorIs(t, err, ErrSessionNotFound)
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}
