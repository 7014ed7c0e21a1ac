package send_manual_message

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/GlampingBackoffice/internal/domain"
	"github.com/m04kA/GlampingBackoffice/internal/infra/storage/memstore"
	"github.com/m04kA/GlampingBackoffice/internal/service/clients"
	"github.com/m04kA/GlampingBackoffice/internal/service/sessions"
	"github.com/m04kA/GlampingBackoffice/pkg/logger"
	"github.com/m04kA/GlampingBackoffice/pkg/ptr"
)

type sent struct {
	handleID int64
	to, text string
}

type fakeTransport struct {
	handles []*domain.TransportHandle
	sendErr error
	sent    []sent
}

func (f *fakeTransport) List(context.Context) ([]*domain.TransportHandle, error) {
	return f.handles, nil
}

func (f *fakeTransport) Send(_ context.Context, handleID int64, to, text string) error {
	if f.sendErr != nil {
		return f.sendErr
	}
	f.sent = append(f.sent, sent{handleID: handleID, to: to, text: text})
	return nil
}

type fixture struct {
	uc          *UseCase
	transport   *fakeTransport
	transcripts *memstore.Transcripts
	sessionRepo *memstore.Sessions
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	log := logger.NewNop()
	f := &fixture{
		transport: &fakeTransport{handles: []*domain.TransportHandle{
			{ID: 1, Name: "reception", Status: domain.TransportDisconnected},
			{ID: 2, Name: "manager", Status: domain.TransportConnected},
		}},
		transcripts: memstore.NewTranscripts(),
		sessionRepo: memstore.NewSessions(),
	}
	f.uc = NewUseCase(
		clients.NewService(memstore.NewClients(), log),
		f.transcripts,
		f.transport,
		sessions.NewService(f.sessionRepo, memstore.TxManager{}, log),
		log,
	)
	return f
}

func TestExecute_Sends(t *testing.T) {
	f := newFixture(t)

	resp, err := f.uc.Execute(context.Background(), &Request{Phone: "+77011234567", Text: " Ваша бронь подтверждена "})
	require.NoError(t, err)
	assert.Equal(t, int64(2), resp.HandleID)
	assert.Equal(t, string(domain.DeliverySent), resp.DeliveryStatus)

	require.Len(t, f.transport.sent, 1)
	assert.Equal(t, sent{handleID: 2, to: "77011234567", text: "Ваша бронь подтверждена"}, f.transport.sent[0])

	entries := f.transcripts.All()
	require.Len(t, entries, 1)
	assert.Equal(t, domain.MessageSourceManualAdmin, entries[0].Source)
	assert.Equal(t, domain.DirectionToClient, entries[0].Direction)
	assert.Equal(t, 1, f.sessionRepo.Count())
}

func TestExecute_ExplicitHandle(t *testing.T) {
	f := newFixture(t)

	resp, err := f.uc.Execute(context.Background(), &Request{Phone: "+77011234567", Text: "Добрый день", HandleID: ptr.Ptr(int64(7))})
	require.NoError(t, err)
	assert.Equal(t, int64(7), resp.HandleID)
}

func TestExecute_SendFailureIsRecorded(t *testing.T) {
	f := newFixture(t)
	f.transport.sendErr = domain.ErrTransientTransport

	_, err := f.uc.Execute(context.Background(), &Request{Phone: "+77011234567", Text: "Добрый день"})
	require.ErrorIs(t, err, ErrSendFailed)
	assert.True(t, errors.Is(err, domain.ErrTransientTransport))

	entries := f.transcripts.All()
	require.Len(t, entries, 1)
	assert.Equal(t, domain.DeliveryFailed, entries[0].DeliveryStatus)
}

func TestExecute_NoConnectedTransport(t *testing.T) {
	f := newFixture(t)
	f.transport.handles = f.transport.handles[:1]

	_, err := f.uc.Execute(context.Background(), &Request{Phone: "+77011234567", Text: "Добрый день"})
	require.ErrorIs(t, err, ErrNoConnectedTransport)
	assert.ErrorIs(t, err, domain.ErrCapabilityUnavailable)
	assert.Empty(t, f.transcripts.All())
}

func TestExecute_Validation(t *testing.T) {
	f := newFixture(t)

	_, err := f.uc.Execute(context.Background(), &Request{
		Phone:    "12",
		Text:     strings.Repeat("a", domain.MaxManualMessageLength+1),
		HandleID: ptr.Ptr(int64(0)),
	})
	ve, ok := domain.AsValidationError(err)
	require.True(t, ok)
	assert.ElementsMatch(t, []string{"phoneNumber", "text", "handleId"}, ve.Fields)
	assert.Empty(t, f.transport.sent)
}
