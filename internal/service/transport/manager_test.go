package transport

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/GlampingBackoffice/internal/domain"
	"github.com/m04kA/GlampingBackoffice/internal/events"
	"github.com/m04kA/GlampingBackoffice/internal/infra/storage/memstore"
	"github.com/m04kA/GlampingBackoffice/pkg/logger"
	"github.com/m04kA/GlampingBackoffice/pkg/ptr"
)

type fakeConn struct {
	handle     domain.TransportHandle
	emit       func(Event)
	connectErr error
	connects   atomic.Int32
	closed     atomic.Bool

	mu   sync.Mutex
	sent []string
}

func (c *fakeConn) Connect(ctx context.Context) error {
	c.connects.Add(1)
	return c.connectErr
}

func (c *fakeConn) Send(ctx context.Context, to, text string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sent = append(c.sent, to+": "+text)
	return nil
}

func (c *fakeConn) Close() { c.closed.Store(true) }

type fakeDriver struct {
	mu         sync.Mutex
	conns      []*fakeConn
	connectErr error
}

func (d *fakeDriver) Open(ctx context.Context, handle domain.TransportHandle, onEvent func(Event)) (Conn, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	c := &fakeConn{handle: handle, emit: onEvent, connectErr: d.connectErr}
	d.conns = append(d.conns, c)
	return c, nil
}

func (d *fakeDriver) count() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.conns)
}

func (d *fakeDriver) last() *fakeConn {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.conns[len(d.conns)-1]
}

func testConfig() Config {
	return Config{
		PairingTimeout:     time.Second,
		ReconnectBaseDelay: 10 * time.Millisecond,
		ReconnectMaxDelay:  40 * time.Millisecond,
		MaxReconnects:      3,
		SendBurst:          10,
		ReconnectOnBoot:    true,
	}
}

func newTestManager(t *testing.T, cfg Config) (*Manager, *fakeDriver, *memstore.TransportHandles, events.Bus) {
	t.Helper()

	driver := &fakeDriver{}
	repo := memstore.NewTransportHandles()
	bus := events.NewBus()
	m := NewManager(cfg, driver, repo, bus, logger.NewNop())
	t.Cleanup(m.Shutdown)

	return m, driver, repo, bus
}

func stored(t *testing.T, repo *memstore.TransportHandles, id int64) *domain.TransportHandle {
	t.Helper()
	h, err := repo.GetByID(context.Background(), id)
	require.NoError(t, err)
	return h
}

func status(repo *memstore.TransportHandles, id int64) domain.TransportStatus {
	h, err := repo.GetByID(context.Background(), id)
	if err != nil {
		return ""
	}
	return h.Status
}

func lastError(repo *memstore.TransportHandles, id int64) string {
	h, err := repo.GetByID(context.Background(), id)
	if err != nil {
		return ""
	}
	return ptr.Value(h.LastError)
}

func TestCreate(t *testing.T) {
	m, _, _, _ := newTestManager(t, testConfig())
	ctx := context.Background()

	h, err := m.Create(ctx, " reception ")
	require.NoError(t, err)
	assert.Equal(t, "reception", h.Name)
	assert.Equal(t, domain.TransportDisconnected, h.Status)

	_, err = m.Create(ctx, "reception")
	assert.ErrorIs(t, err, ErrHandleExists)

	_, err = m.Create(ctx, "  ")
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = m.BeginPairing(ctx, 99)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestBeginPairing_CodeThenTimeout(t *testing.T) {
	cfg := testConfig()
	cfg.PairingTimeout = 50 * time.Millisecond
	m, driver, repo, _ := newTestManager(t, cfg)
	ctx := context.Background()

	h, err := m.Create(ctx, "reception")
	require.NoError(t, err)
	_, err = m.BeginPairing(ctx, h.ID)
	require.NoError(t, err)

	conn := driver.last()
	conn.emit(Event{Kind: EventPairingCode, PairingCode: "2@abc"})

	got := stored(t, repo, h.ID)
	assert.Equal(t, domain.TransportWaitingForPairing, got.Status)
	assert.Equal(t, "2@abc", ptr.Value(got.PairingArtifact))

	require.Eventually(t, func() bool {
		return status(repo, h.ID) == domain.TransportDisconnected
	}, time.Second, 5*time.Millisecond)

	got = stored(t, repo, h.ID)
	assert.Nil(t, got.PairingArtifact)
	assert.Equal(t, "pairing timed out", ptr.Value(got.LastError))
	assert.True(t, conn.closed.Load())
	assert.Equal(t, 1, driver.count(), "после таймаута привязки переподключения нет")
}

func TestBeginPairing_CodeRotationKeepsWindow(t *testing.T) {
	cfg := testConfig()
	cfg.PairingTimeout = 300 * time.Millisecond
	m, driver, repo, _ := newTestManager(t, cfg)
	ctx := context.Background()

	h, err := m.Create(ctx, "reception")
	require.NoError(t, err)
	_, err = m.BeginPairing(ctx, h.ID)
	require.NoError(t, err)

	conn := driver.last()
	conn.emit(Event{Kind: EventPairingCode, PairingCode: "code-1"})
	time.Sleep(200 * time.Millisecond)
	conn.emit(Event{Kind: EventPairingCode, PairingCode: "code-2"})
	assert.Equal(t, "code-2", ptr.Value(stored(t, repo, h.ID).PairingArtifact))

	// окно отсчитывается от начала привязки, а не от последнего кода
	require.Eventually(t, func() bool {
		return status(repo, h.ID) == domain.TransportDisconnected
	}, 250*time.Millisecond, 5*time.Millisecond)
}

// обрыв во время ожидания привязки не продлевает окно
func TestPairingWindow_SurvivesReconnect(t *testing.T) {
	cfg := testConfig()
	cfg.PairingTimeout = 200 * time.Millisecond
	m, driver, repo, _ := newTestManager(t, cfg)
	ctx := context.Background()

	h, err := m.Create(ctx, "reception")
	require.NoError(t, err)
	_, err = m.BeginPairing(ctx, h.ID)
	require.NoError(t, err)
	driver.last().emit(Event{Kind: EventPairingCode, PairingCode: "code-1"})

	time.Sleep(120 * time.Millisecond)
	driver.last().emit(Event{Kind: EventClosed, Reason: CloseTransient, Err: errors.New("websocket closed")})

	require.Eventually(t, func() bool { return driver.count() == 2 }, time.Second, 5*time.Millisecond)
	driver.last().emit(Event{Kind: EventPairingCode, PairingCode: "code-2"})

	// новое окно истекло бы через 200ms после переподключения
	require.Eventually(t, func() bool {
		return lastError(repo, h.ID) == "pairing timed out"
	}, 150*time.Millisecond, 5*time.Millisecond)
	assert.Equal(t, domain.TransportDisconnected, status(repo, h.ID))
	assert.True(t, driver.last().closed.Load())

	// новая привязка получает полное окно
	_, err = m.BeginPairing(ctx, h.ID)
	require.NoError(t, err)
	driver.last().emit(Event{Kind: EventPairingCode, PairingCode: "code-3"})
	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, domain.TransportWaitingForPairing, status(repo, h.ID))
}

func TestConnectedEvent(t *testing.T) {
	cfg := testConfig()
	cfg.PairingTimeout = 50 * time.Millisecond
	m, driver, repo, _ := newTestManager(t, cfg)
	ctx := context.Background()

	h, err := m.Create(ctx, "reception")
	require.NoError(t, err)
	_, err = m.BeginPairing(ctx, h.ID)
	require.NoError(t, err)

	conn := driver.last()
	conn.emit(Event{Kind: EventPairingCode, PairingCode: "2@abc"})
	conn.emit(Event{Kind: EventConnected, Address: "+77010000001", DeviceJID: "77010000001:3@s.whatsapp.net"})

	got := stored(t, repo, h.ID)
	assert.Equal(t, domain.TransportConnected, got.Status)
	assert.Nil(t, got.PairingArtifact)
	assert.Equal(t, "+77010000001", ptr.Value(got.BoundPhone))
	assert.Equal(t, "77010000001:3@s.whatsapp.net", ptr.Value(got.DeviceJID))

	// таймер привязки отменён
	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, domain.TransportConnected, stored(t, repo, h.ID).Status)

	// повторный вызов не открывает новое подключение
	_, err = m.BeginPairing(ctx, h.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, driver.count())
}

func TestDisconnect_IgnoresStaleEvents(t *testing.T) {
	m, driver, repo, _ := newTestManager(t, testConfig())
	ctx := context.Background()

	h, err := m.Create(ctx, "reception")
	require.NoError(t, err)
	_, err = m.BeginPairing(ctx, h.ID)
	require.NoError(t, err)

	conn := driver.last()
	conn.emit(Event{Kind: EventConnected, Address: "+77010000001"})

	got, err := m.Disconnect(ctx, h.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.TransportDisconnected, got.Status)
	assert.Nil(t, got.BoundPhone)
	assert.True(t, conn.closed.Load())

	// событие от закрытого подключения
	conn.emit(Event{Kind: EventConnected, Address: "+77010000001"})
	assert.Equal(t, domain.TransportDisconnected, stored(t, repo, h.ID).Status)
}

func TestLoggedOut_NoReconnect(t *testing.T) {
	m, driver, repo, _ := newTestManager(t, testConfig())
	ctx := context.Background()

	h, err := m.Create(ctx, "reception")
	require.NoError(t, err)
	_, err = m.BeginPairing(ctx, h.ID)
	require.NoError(t, err)

	driver.last().emit(Event{Kind: EventConnected, Address: "+77010000001", DeviceJID: "77010000001:3@s.whatsapp.net"})
	driver.last().emit(Event{Kind: EventClosed, Reason: CloseLoggedOut})

	got := stored(t, repo, h.ID)
	assert.Equal(t, domain.TransportDisconnected, got.Status)
	assert.Nil(t, got.BoundPhone)
	assert.Nil(t, got.DeviceJID)

	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, 1, driver.count())
}

func TestTransientDrop_Reconnects(t *testing.T) {
	m, driver, repo, _ := newTestManager(t, testConfig())
	ctx := context.Background()

	h, err := m.Create(ctx, "reception")
	require.NoError(t, err)
	_, err = m.BeginPairing(ctx, h.ID)
	require.NoError(t, err)

	driver.last().emit(Event{Kind: EventConnected, Address: "+77010000001"})
	driver.last().emit(Event{Kind: EventClosed, Reason: CloseTransient, Err: errors.New("websocket closed")})

	got := stored(t, repo, h.ID)
	assert.Equal(t, domain.TransportDisconnected, got.Status)
	assert.Contains(t, ptr.Value(got.LastError), "reconnect attempt 1/3")

	require.Eventually(t, func() bool { return driver.count() == 2 }, time.Second, 5*time.Millisecond)
	require.Eventually(t, func() bool { return driver.last().connects.Load() == 1 }, time.Second, 5*time.Millisecond)

	driver.last().emit(Event{Kind: EventConnected, Address: "+77010000001"})
	got = stored(t, repo, h.ID)
	assert.Equal(t, domain.TransportConnected, got.Status)
	assert.Nil(t, got.LastError)
}

func TestReconnect_BoundedAttempts(t *testing.T) {
	cfg := testConfig()
	cfg.MaxReconnects = 2
	m, driver, repo, _ := newTestManager(t, cfg)
	driver.connectErr = errors.New("dial tcp: connection refused")
	ctx := context.Background()

	h, err := m.Create(ctx, "reception")
	require.NoError(t, err)

	_, err = m.BeginPairing(ctx, h.ID)
	require.ErrorIs(t, err, domain.ErrTransientTransport)

	require.Eventually(t, func() bool {
		return strings.Contains(lastError(repo, h.ID), "gave up after 2 reconnect attempts")
	}, time.Second, 5*time.Millisecond)

	// первая попытка и две повторные
	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, 3, driver.count())
	assert.Equal(t, domain.TransportDisconnected, stored(t, repo, h.ID).Status)
}

func TestDisconnect_CancelsPendingReconnect(t *testing.T) {
	cfg := testConfig()
	cfg.ReconnectBaseDelay = 100 * time.Millisecond
	cfg.ReconnectMaxDelay = time.Second
	m, driver, _, _ := newTestManager(t, cfg)
	ctx := context.Background()

	h, err := m.Create(ctx, "reception")
	require.NoError(t, err)
	_, err = m.BeginPairing(ctx, h.ID)
	require.NoError(t, err)

	driver.last().emit(Event{Kind: EventConnected})
	driver.last().emit(Event{Kind: EventClosed, Reason: CloseTransient})

	_, err = m.Disconnect(ctx, h.ID)
	require.NoError(t, err)

	time.Sleep(200 * time.Millisecond)
	assert.Equal(t, 1, driver.count())
}

func TestSend(t *testing.T) {
	m, driver, _, _ := newTestManager(t, testConfig())
	ctx := context.Background()

	h, err := m.Create(ctx, "reception")
	require.NoError(t, err)

	err = m.Send(ctx, h.ID, "77011234567@s.whatsapp.net", "hi")
	require.ErrorIs(t, err, ErrNotConnected)
	assert.ErrorIs(t, err, domain.ErrTransientTransport)

	_, err = m.BeginPairing(ctx, h.ID)
	require.NoError(t, err)
	driver.last().emit(Event{Kind: EventConnected, Address: "+77010000001"})

	require.NoError(t, m.Send(ctx, h.ID, "77011234567@s.whatsapp.net", "Добрый день"))
	assert.Equal(t, []string{"77011234567@s.whatsapp.net: Добрый день"}, driver.last().sent)
}

type slowRepo struct {
	*memstore.TransportHandles
	block   atomic.Bool
	entered chan struct{}
	release chan struct{}
}

func (r *slowRepo) SaveState(ctx context.Context, h *domain.TransportHandle) error {
	if r.block.Load() {
		r.entered <- struct{}{}
		<-r.release
	}
	return r.TransportHandles.SaveState(ctx, h)
}

func TestSlowStateWrite_DoesNotBlockSend(t *testing.T) {
	driver := &fakeDriver{}
	repo := &slowRepo{
		TransportHandles: memstore.NewTransportHandles(),
		entered:          make(chan struct{}),
		release:          make(chan struct{}),
	}
	m := NewManager(testConfig(), driver, repo, events.NewBus(), logger.NewNop())
	t.Cleanup(m.Shutdown)
	ctx := context.Background()

	h, err := m.Create(ctx, "reception")
	require.NoError(t, err)
	_, err = m.BeginPairing(ctx, h.ID)
	require.NoError(t, err)
	driver.last().emit(Event{Kind: EventConnected, Address: "+77010000001"})

	repo.block.Store(true)
	release := sync.OnceFunc(func() {
		repo.block.Store(false)
		close(repo.release)
	})
	defer release()

	persisted := make(chan struct{})
	go func() {
		defer close(persisted)
		driver.last().emit(Event{Kind: EventConnected, Address: "+77010000002"})
	}()
	<-repo.entered

	sent := make(chan error, 1)
	go func() { sent <- m.Send(ctx, h.ID, "77011234567@s.whatsapp.net", "Добрый день") }()

	select {
	case err := <-sent:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("Send ждет записи состояния в БД")
	}

	release()
	<-persisted
	assert.Equal(t, "+77010000002", ptr.Value(stored(t, repo.TransportHandles, h.ID).BoundPhone))
}

func TestMessageEvent_PublishedOnBus(t *testing.T) {
	m, driver, repo, bus := newTestManager(t, testConfig())
	ctx := context.Background()

	got := make(chan domain.InboundMessage, 1)
	require.NoError(t, bus.Subscribe(events.TopicInboundMessage, func(msg domain.InboundMessage) { got <- msg }))

	h, err := m.Create(ctx, "reception")
	require.NoError(t, err)
	_, err = m.BeginPairing(ctx, h.ID)
	require.NoError(t, err)
	driver.last().emit(Event{Kind: EventConnected})

	driver.last().emit(Event{Kind: EventMessage, Message: &domain.InboundMessage{
		MessageID: "3EB0",
		SenderJID: "77011234567@s.whatsapp.net",
		ChatJID:   "77011234567@s.whatsapp.net",
		Text:      "Здравствуйте",
	}})

	msg := <-got
	assert.Equal(t, h.ID, msg.HandleID)
	assert.Equal(t, "Здравствуйте", msg.Text)
	assert.False(t, msg.ReceivedAt.IsZero())
	assert.NotNil(t, stored(t, repo, h.ID).LastActivityAt)
}

func TestStatePublished(t *testing.T) {
	m, driver, _, bus := newTestManager(t, testConfig())
	ctx := context.Background()

	var mu sync.Mutex
	var statuses []domain.TransportStatus
	require.NoError(t, bus.Subscribe(events.TopicTransportState, func(h domain.TransportHandle) {
		mu.Lock()
		defer mu.Unlock()
		statuses = append(statuses, h.Status)
	}))

	h, err := m.Create(ctx, "reception")
	require.NoError(t, err)
	_, err = m.BeginPairing(ctx, h.ID)
	require.NoError(t, err)
	driver.last().emit(Event{Kind: EventPairingCode, PairingCode: "c"})
	driver.last().emit(Event{Kind: EventConnected})

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []domain.TransportStatus{
		domain.TransportDisconnected,
		domain.TransportWaitingForPairing,
		domain.TransportConnected,
	}, statuses)
}

func TestReconcile(t *testing.T) {
	m, driver, repo, _ := newTestManager(t, testConfig())
	ctx := context.Background()

	repo.Put(domain.TransportHandle{
		ID:         1,
		Name:       "reception",
		Status:     domain.TransportConnected,
		BoundPhone: ptr.Ptr("+77010000001"),
		DeviceJID:  ptr.Ptr("77010000001:3@s.whatsapp.net"),
	})
	repo.Put(domain.TransportHandle{
		ID:              2,
		Name:            "marketing",
		Status:          domain.TransportWaitingForPairing,
		PairingArtifact: ptr.Ptr("old-code"),
	})
	repo.Put(domain.TransportHandle{ID: 3, Name: "idle", Status: domain.TransportDisconnected})

	resumed, err := m.Reconcile(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, resumed)

	require.Equal(t, 1, driver.count())
	assert.Equal(t, int64(1), driver.last().handle.ID)
	assert.Equal(t, "77010000001:3@s.whatsapp.net", ptr.Value(driver.last().handle.DeviceJID))

	reset := stored(t, repo, 2)
	assert.Equal(t, domain.TransportDisconnected, reset.Status)
	assert.Nil(t, reset.PairingArtifact)
	assert.Equal(t, "process restarted", ptr.Value(reset.LastError))
}

func TestShutdown(t *testing.T) {
	m, driver, _, _ := newTestManager(t, testConfig())
	ctx := context.Background()

	h, err := m.Create(ctx, "reception")
	require.NoError(t, err)
	_, err = m.BeginPairing(ctx, h.ID)
	require.NoError(t, err)

	m.Shutdown()
	assert.True(t, driver.last().closed.Load())

	_, err = m.BeginPairing(ctx, h.ID)
	assert.ErrorIs(t, err, ErrManagerClosed)
}

func TestReconnectDelay(t *testing.T) {
	cfg := Config{ReconnectBaseDelay: time.Second, ReconnectMaxDelay: 5 * time.Second}

	assert.Equal(t, time.Second, cfg.reconnectDelay(1))
	assert.Equal(t, 2*time.Second, cfg.reconnectDelay(2))
	assert.Equal(t, 4*time.Second, cfg.reconnectDelay(3))
	assert.Equal(t, 5*time.Second, cfg.reconnectDelay(4))
	assert.Equal(t, 5*time.Second, cfg.reconnectDelay(10))
}
