package transport

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/m04kA/GlampingBackoffice/internal/domain"
	"github.com/m04kA/GlampingBackoffice/internal/events"
	handleRepo "github.com/m04kA/GlampingBackoffice/internal/infra/storage/transporthandle"
)

const persistTimeout = 5 * time.Second

// Manager реестр живых подключений к мессенджеру
//
// Персистентная строка хэндла остается источником истины для UI,
// живое состояние (сокет, таймеры, счетчик попыток) есть только в памяти процесса.
// Каждое открытие подключения увеличивает поколение хэндла, события
// от закрытых подключений старых поколений игнорируются.
type Manager struct {
	cfg    Config
	driver Driver
	repo   HandleRepository
	bus    Publisher
	logger Logger
	now    func() time.Time

	mu     sync.Mutex
	live   map[int64]*liveHandle
	closed bool
}

type liveHandle struct {
	state        domain.TransportHandle
	conn         Conn
	gen          uint64
	attempts     int
	pairingTimer *time.Timer
	retryTimer   *time.Timer
	limiter      *rate.Limiter

	// pairingDeadline конец окна привязки, переживает переподключения внутри окна
	pairingDeadline time.Time

	// version растет при каждом снимке под m.mu, persisted пишется под persistMu
	version   uint64
	persistMu sync.Mutex
	persisted uint64
}

// stateSnapshot состояние хэндла на момент перехода, записывается после снятия m.mu
type stateSnapshot struct {
	lh      *liveHandle
	state   domain.TransportHandle
	version uint64
}

func (h *liveHandle) stopTimers() {
	if h.pairingTimer != nil {
		h.pairingTimer.Stop()
		h.pairingTimer = nil
	}
	if h.retryTimer != nil {
		h.retryTimer.Stop()
		h.retryTimer = nil
	}
}

// detach отвязывает текущее подключение, события от него больше не принимаются
func (h *liveHandle) detach() Conn {
	conn := h.conn
	h.conn = nil
	h.gen++
	return conn
}

// NewManager создает менеджер
func NewManager(cfg Config, driver Driver, repo HandleRepository, bus Publisher, logger Logger) *Manager {
	if cfg.PairingTimeout <= 0 {
		cfg.PairingTimeout = domain.DefaultPairingTimeout
	}
	if cfg.SendRate <= 0 {
		cfg.SendRate = rate.Inf
	}
	if cfg.SendBurst <= 0 {
		cfg.SendBurst = 1
	}

	return &Manager{
		cfg:    cfg,
		driver: driver,
		repo:   repo,
		bus:    bus,
		logger: logger,
		now:    time.Now,
		live:   make(map[int64]*liveHandle),
	}
}

// Create регистрирует новый хэндл в состоянии disconnected
func (m *Manager) Create(ctx context.Context, name string) (*domain.TransportHandle, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, domain.NewValidationError("handle name is required", "name")
	}

	h, err := m.repo.Create(ctx, name)
	if err != nil {
		if errors.Is(err, handleRepo.ErrDuplicateName) {
			m.logger.Warn("Create: handle name=%s already exists", name)
			return nil, ErrHandleExists
		}
		m.logger.Error("Create: repository error for name=%s: %v", name, err)
		return nil, fmt.Errorf("%w: Create - repository error: %v", ErrInternal, err)
	}

	m.logger.Info("Create: handle id=%d name=%s created", h.ID, h.Name)
	m.publishState(*h)
	return h, nil
}

// Get возвращает персистентное состояние хэндла
func (m *Manager) Get(ctx context.Context, id int64) (*domain.TransportHandle, error) {
	h, err := m.repo.GetByID(ctx, id)
	if err != nil {
		return nil, m.mapRepoError("Get", id, err)
	}
	return h, nil
}

// List возвращает все хэндлы
func (m *Manager) List(ctx context.Context) ([]*domain.TransportHandle, error) {
	handles, err := m.repo.List(ctx)
	if err != nil {
		m.logger.Error("List: repository error: %v", err)
		return nil, fmt.Errorf("%w: List - repository error: %v", ErrInternal, err)
	}
	return handles, nil
}

// BeginPairing открывает подключение для хэндла
// Если устройство уже привязано, подключение восстановится без кода.
// Иначе драйвер пришлет код, который нужно отсканировать за PairingTimeout.
// Повторный вызов для подключенного или ожидающего хэндла ничего не делает.
func (m *Manager) BeginPairing(ctx context.Context, id int64) (*domain.TransportHandle, error) {
	row, err := m.repo.GetByID(ctx, id)
	if err != nil {
		return nil, m.mapRepoError("BeginPairing", id, err)
	}

	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return nil, ErrManagerClosed
	}

	lh, ok := m.live[id]
	if ok && lh.conn != nil && lh.state.Status != domain.TransportDisconnected {
		snapshot := lh.state
		m.mu.Unlock()
		m.logger.Info("BeginPairing: handle id=%d already %s", id, snapshot.Status)
		return &snapshot, nil
	}
	if !ok {
		lh = &liveHandle{limiter: rate.NewLimiter(m.cfg.SendRate, m.cfg.SendBurst)}
		m.live[id] = lh
	}

	lh.stopTimers()
	if stale := lh.detach(); stale != nil {
		defer stale.Close()
	}
	lh.state = *row
	lh.state.LastError = nil
	lh.attempts = 0
	lh.pairingDeadline = time.Time{}

	conn, gen, err := m.openLocked(ctx, id, lh)
	if err != nil {
		saved := m.snapshotLocked(lh)
		m.mu.Unlock()
		m.persist(saved)
		return &saved.state, err
	}
	m.mu.Unlock()

	m.logger.Info("BeginPairing: connecting handle id=%d name=%s", id, row.Name)
	if err := conn.Connect(ctx); err != nil {
		m.logger.Warn("BeginPairing: connect failed for handle id=%d: %v", id, err)
		m.handleEvent(id, gen, Event{Kind: EventClosed, Reason: CloseTransient, Err: err})
		return m.snapshot(ctx, id), fmt.Errorf("%w: %v", domain.ErrTransientTransport, err)
	}

	return m.snapshot(ctx, id), nil
}

// openLocked открывает подключение нового поколения и запускает окно привязки
// Окно отсчитывается от первого открытия, переподключение внутри окна его не продлевает.
// При ошибке состояние меняется в памяти, записать его должен вызывающий.
func (m *Manager) openLocked(ctx context.Context, id int64, lh *liveHandle) (Conn, uint64, error) {
	lh.gen++
	gen := lh.gen

	conn, err := m.driver.Open(ctx, lh.state, func(ev Event) { m.handleEvent(id, gen, ev) })
	if err != nil {
		msg := "failed to open connection: " + err.Error()
		lh.state.Status = domain.TransportDisconnected
		lh.state.LastError = &msg
		lh.pairingDeadline = time.Time{}
		m.logger.Error("BeginPairing: driver open failed for handle id=%d: %v", id, err)
		return nil, 0, fmt.Errorf("%w: BeginPairing - driver open: %v", ErrInternal, err)
	}

	now := m.now()
	if lh.pairingDeadline.IsZero() {
		lh.pairingDeadline = now.Add(m.cfg.PairingTimeout)
	}
	wait := lh.pairingDeadline.Sub(now)
	if wait < 0 {
		wait = 0
	}

	lh.conn = conn
	lh.pairingTimer = time.AfterFunc(wait, func() { m.onPairingTimeout(id, gen) })
	return conn, gen, nil
}

// Disconnect закрывает подключение, отменяет таймеры и переподключения
func (m *Manager) Disconnect(ctx context.Context, id int64) (*domain.TransportHandle, error) {
	row, err := m.repo.GetByID(ctx, id)
	if err != nil {
		return nil, m.mapRepoError("Disconnect", id, err)
	}

	m.mu.Lock()
	lh, ok := m.live[id]
	if !ok {
		lh = &liveHandle{limiter: rate.NewLimiter(m.cfg.SendRate, m.cfg.SendBurst)}
		m.live[id] = lh
	}
	if lh.state.ID == 0 {
		lh.state = *row
	}

	lh.stopTimers()
	conn := lh.detach()
	lh.attempts = 0
	lh.pairingDeadline = time.Time{}
	lh.state.Status = domain.TransportDisconnected
	lh.state.PairingArtifact = nil
	lh.state.BoundPhone = nil
	lh.state.LastError = nil
	saved := m.snapshotLocked(lh)
	m.mu.Unlock()

	m.persist(saved)
	if conn != nil {
		conn.Close()
	}

	m.logger.Info("Disconnect: handle id=%d disconnected by operator", id)
	return &saved.state, nil
}

// Send отправляет текст через подключенный хэндл с ограничением частоты
func (m *Manager) Send(ctx context.Context, handleID int64, to, text string) error {
	m.mu.Lock()
	lh, ok := m.live[handleID]
	if !ok || lh.conn == nil || lh.state.Status != domain.TransportConnected {
		m.mu.Unlock()
		return fmt.Errorf("%w: handle id=%d", ErrNotConnected, handleID)
	}
	conn, limiter := lh.conn, lh.limiter
	m.mu.Unlock()

	if err := limiter.Wait(ctx); err != nil {
		return fmt.Errorf("%w: rate limiter: %v", domain.ErrTransientTransport, err)
	}

	if err := conn.Send(ctx, to, text); err != nil {
		if errors.Is(err, domain.ErrTransientTransport) {
			return err
		}
		return fmt.Errorf("%w: %v", domain.ErrTransientTransport, err)
	}

	m.touch(handleID)
	return nil
}

// Reconcile восстанавливает подключения после рестарта процесса
// Строки в connected/waiting_for_pairing остались от прошлого процесса:
// хэндлы с привязанным устройством переподключаются, остальные сбрасываются в disconnected.
func (m *Manager) Reconcile(ctx context.Context) (int, error) {
	rows, err := m.repo.List(ctx, domain.TransportConnected, domain.TransportWaitingForPairing)
	if err != nil {
		return 0, fmt.Errorf("%w: Reconcile - repository error: %v", ErrInternal, err)
	}

	resumed := 0
	for _, row := range rows {
		if m.cfg.ReconnectOnBoot && row.DeviceJID != nil {
			if _, err := m.BeginPairing(ctx, row.ID); err != nil {
				m.logger.Warn("Reconcile: handle id=%d failed to resume: %v", row.ID, err)
				continue
			}
			resumed++
			continue
		}

		msg := "process restarted"
		row.Status = domain.TransportDisconnected
		row.PairingArtifact = nil
		row.LastError = &msg
		if err := m.repo.SaveState(ctx, row); err != nil {
			m.logger.Error("Reconcile: failed to reset handle id=%d: %v", row.ID, err)
			continue
		}
		m.publishState(*row)
	}

	m.logger.Info("Reconcile: %d stale handles found, %d resumed", len(rows), resumed)
	return resumed, nil
}

// Shutdown закрывает все подключения без изменения строк в БД
// Следующий запуск восстановит их через Reconcile.
func (m *Manager) Shutdown() {
	m.mu.Lock()
	m.closed = true
	conns := make([]Conn, 0, len(m.live))
	for _, lh := range m.live {
		lh.stopTimers()
		if conn := lh.detach(); conn != nil {
			conns = append(conns, conn)
		}
	}
	m.mu.Unlock()

	for _, conn := range conns {
		conn.Close()
	}
	m.logger.Info("Shutdown: %d connections closed", len(conns))
}

// handleEvent применяет событие драйвера к состоянию хэндла
func (m *Manager) handleEvent(id int64, gen uint64, ev Event) {
	if ev.Kind == EventMessage {
		m.onMessage(id, gen, ev)
		return
	}

	m.mu.Lock()
	lh, ok := m.live[id]
	if !ok || lh.gen != gen {
		m.mu.Unlock()
		return
	}

	var toClose Conn
	switch ev.Kind {
	case EventPairingCode:
		// смена кода не продлевает окно привязки
		code := ev.PairingCode
		lh.state.Status = domain.TransportWaitingForPairing
		lh.state.PairingArtifact = &code
		m.logger.Info("handleEvent: handle id=%d waiting for pairing", id)

	case EventConnected:
		lh.stopTimers()
		lh.attempts = 0
		lh.pairingDeadline = time.Time{}
		now := m.now()
		lh.state.Status = domain.TransportConnected
		lh.state.PairingArtifact = nil
		lh.state.LastError = nil
		lh.state.LastActivityAt = &now
		if ev.Address != "" {
			addr := ev.Address
			lh.state.BoundPhone = &addr
		}
		if ev.DeviceJID != "" {
			jid := ev.DeviceJID
			lh.state.DeviceJID = &jid
		}
		m.logger.Info("handleEvent: handle id=%d connected as %s", id, ev.Address)

	case EventClosed:
		lh.stopTimers()
		toClose = lh.detach()
		lh.state.PairingArtifact = nil
		lh.state.Status = domain.TransportDisconnected

		if ev.Reason == CloseLoggedOut {
			msg := "logged out"
			lh.attempts = 0
			lh.pairingDeadline = time.Time{}
			lh.state.BoundPhone = nil
			lh.state.DeviceJID = nil
			lh.state.LastError = &msg
			m.logger.Warn("handleEvent: handle id=%d logged out", id)
			break
		}

		m.scheduleReconnectLocked(id, lh, ev.Err)

	default:
		m.mu.Unlock()
		return
	}

	saved := m.snapshotLocked(lh)
	m.mu.Unlock()

	m.persist(saved)
	if toClose != nil {
		toClose.Close()
	}
}

// scheduleReconnectLocked планирует переподключение с экспоненциальной задержкой
func (m *Manager) scheduleReconnectLocked(id int64, lh *liveHandle, cause error) {
	reason := "connection lost"
	if cause != nil {
		reason = cause.Error()
	}

	lh.attempts++
	if lh.attempts > m.cfg.MaxReconnects {
		msg := fmt.Sprintf("%s; gave up after %d reconnect attempts", reason, m.cfg.MaxReconnects)
		lh.state.LastError = &msg
		lh.attempts = 0
		lh.pairingDeadline = time.Time{}
		m.logger.Error("handleEvent: handle id=%d %s", id, msg)
		return
	}

	delay := m.cfg.reconnectDelay(lh.attempts)
	msg := fmt.Sprintf("%s; reconnect attempt %d/%d in %s", reason, lh.attempts, m.cfg.MaxReconnects, delay)
	lh.state.LastError = &msg

	gen := lh.gen
	lh.retryTimer = time.AfterFunc(delay, func() { m.reconnect(id, gen) })
	m.logger.Warn("handleEvent: handle id=%d %s", id, msg)
}

func (m *Manager) reconnect(id int64, gen uint64) {
	ctx := context.Background()

	m.mu.Lock()
	lh, ok := m.live[id]
	if !ok || lh.gen != gen || m.closed {
		m.mu.Unlock()
		return
	}
	lh.retryTimer = nil

	conn, connGen, err := m.openLocked(ctx, id, lh)
	if err != nil {
		saved := m.snapshotLocked(lh)
		m.mu.Unlock()
		m.persist(saved)
		return
	}
	m.mu.Unlock()

	if err := conn.Connect(ctx); err != nil {
		m.logger.Warn("reconnect: handle id=%d connect failed: %v", id, err)
		m.handleEvent(id, connGen, Event{Kind: EventClosed, Reason: CloseTransient, Err: err})
	}
}

func (m *Manager) onPairingTimeout(id int64, gen uint64) {
	m.mu.Lock()
	lh, ok := m.live[id]
	if !ok || lh.gen != gen || lh.state.Status == domain.TransportConnected {
		m.mu.Unlock()
		return
	}

	lh.stopTimers()
	conn := lh.detach()
	msg := "pairing timed out"
	lh.attempts = 0
	lh.pairingDeadline = time.Time{}
	lh.state.Status = domain.TransportDisconnected
	lh.state.PairingArtifact = nil
	lh.state.LastError = &msg
	saved := m.snapshotLocked(lh)
	m.mu.Unlock()

	m.persist(saved)
	if conn != nil {
		conn.Close()
	}
	m.logger.Warn("onPairingTimeout: handle id=%d was not paired in %s", id, m.cfg.PairingTimeout)
}

func (m *Manager) onMessage(id int64, gen uint64, ev Event) {
	if ev.Message == nil {
		return
	}

	m.mu.Lock()
	lh, ok := m.live[id]
	current := ok && lh.gen == gen
	m.mu.Unlock()
	if !current {
		return
	}

	msg := *ev.Message
	msg.HandleID = id
	if msg.ReceivedAt.IsZero() {
		msg.ReceivedAt = m.now()
	}

	m.touch(id)
	m.bus.Publish(events.TopicInboundMessage, msg)
}

func (m *Manager) touch(id int64) {
	ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
	defer cancel()

	if err := m.repo.TouchActivity(ctx, id, m.now()); err != nil {
		m.logger.Warn("touch: handle id=%d: %v", id, err)
	}
}

// snapshotLocked фиксирует состояние для записи вне m.mu
func (m *Manager) snapshotLocked(lh *liveHandle) stateSnapshot {
	lh.version++
	return stateSnapshot{lh: lh, state: lh.state, version: lh.version}
}

// persist сохраняет снимок и публикует его в шину
// Вызывается без m.mu. Снимок старше уже записанного пропускается,
// ошибка записи не откатывает состояние в памяти.
func (m *Manager) persist(s stateSnapshot) {
	s.lh.persistMu.Lock()
	defer s.lh.persistMu.Unlock()

	if s.version <= s.lh.persisted {
		return
	}
	s.lh.persisted = s.version

	ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
	defer cancel()

	state := s.state
	if err := m.repo.SaveState(ctx, &state); err != nil {
		m.logger.Error("persist: handle id=%d status=%s: %v", state.ID, state.Status, err)
	}
	m.publishState(state)
}

func (m *Manager) publishState(h domain.TransportHandle) {
	m.bus.Publish(events.TopicTransportState, h)
}

// snapshot текущее состояние хэндла, из памяти или из БД
func (m *Manager) snapshot(ctx context.Context, id int64) *domain.TransportHandle {
	m.mu.Lock()
	if lh, ok := m.live[id]; ok {
		s := lh.state
		m.mu.Unlock()
		return &s
	}
	m.mu.Unlock()

	h, err := m.repo.GetByID(ctx, id)
	if err != nil {
		return nil
	}
	return h
}

func (m *Manager) mapRepoError(op string, id int64, err error) error {
	if errors.Is(err, handleRepo.ErrHandleNotFound) {
		m.logger.Warn("%s: handle id=%d not found", op, id)
		return ErrHandleNotFound
	}
	m.logger.Error("%s: repository error for handle id=%d: %v", op, id, err)
	return fmt.Errorf("%w: %s - repository error: %v", ErrInternal, op, err)
}
