package stream

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	repo "MarketRadar/internal/domain/repository"
	applogger "MarketRadar/pkg/logger"

	"github.com/gorilla/websocket"
)

// State is the lifecycle phase of one subscription.
type State int32

const (
	StateConnecting State = iota
	StateOpen
	StateClosed
	StateReconnectWait
	StateStopped
)

func (s State) String() string {
	switch s {
	case StateConnecting:
		return "connecting"
	case StateOpen:
		return "open"
	case StateClosed:
		return "closed"
	case StateReconnectWait:
		return "reconnect_wait"
	case StateStopped:
		return "stopped"
	default:
		return "unknown"
	}
}

// Handler consumes one raw inbound message. Panics are caught by the dispatch
// loop and do not terminate the connection.
type Handler func(message []byte)

// Subscription describes one named long-lived connection. Handshake, when
// non-nil, is JSON-encoded and sent once immediately after each successful
// connect; the manager does not interpret it.
type Subscription struct {
	Name              string
	Endpoint          string
	Handshake         any
	Handler           Handler
	ReconnectInterval time.Duration
}

// Manager owns one goroutine per active subscription and the registry mapping
// names to running units. At most one connection is active per name; re-adding
// a name tears down the prior unit first. Transport errors never surface to
// callers, they only drive the reconnect cycle.
type Manager struct {
	mu    sync.Mutex
	units map[string]*unit

	dialer  *websocket.Dialer
	log     *applogger.Logger
	metrics repo.Metrics
}

// NewManager creates an empty stream manager.
func NewManager(log *applogger.Logger, metrics repo.Metrics) *Manager {
	return &Manager{
		units:   make(map[string]*unit),
		dialer:  websocket.DefaultDialer,
		log:     log,
		metrics: metrics,
	}
}

// Add registers sub and starts its connection goroutine. An existing
// subscription with the same name is stopped and replaced.
func (m *Manager) Add(sub Subscription) error {
	if sub.Name == "" {
		return fmt.Errorf("subscription name is required")
	}
	if sub.Handler == nil {
		return fmt.Errorf("subscription %q: handler is required", sub.Name)
	}
	if sub.ReconnectInterval <= 0 {
		return fmt.Errorf("subscription %q: reconnect interval must be positive", sub.Name)
	}

	u := &unit{sub: sub, stop: make(chan struct{})}
	u.state.Store(int32(StateConnecting))

	m.mu.Lock()
	if prev, ok := m.units[sub.Name]; ok {
		m.log.Warn("subscription already exists, replacing", applogger.String("name", sub.Name))
		prev.terminate()
	}
	m.units[sub.Name] = u
	m.mu.Unlock()

	go u.run(m)
	m.log.Info("subscription added",
		applogger.String("name", sub.Name),
		applogger.String("endpoint", sub.Endpoint),
		applogger.Duration("reconnect_interval", sub.ReconnectInterval),
	)
	return nil
}

// Close stops the named subscription and suppresses any further reconnect,
// including one already sleeping. Closing an unknown name is a no-op warning.
func (m *Manager) Close(name string) {
	m.mu.Lock()
	u, ok := m.units[name]
	if ok {
		delete(m.units, name)
	}
	m.mu.Unlock()

	if !ok {
		m.log.Warn("close of unknown subscription", applogger.String("name", name))
		return
	}
	u.terminate()
	m.log.Info("subscription closed", applogger.String("name", name))
}

// Shutdown closes every active subscription and clears the registry. Safe to
// call multiple times.
func (m *Manager) Shutdown() {
	m.mu.Lock()
	units := m.units
	m.units = make(map[string]*unit)
	m.mu.Unlock()

	for name, u := range units {
		u.terminate()
		m.log.Info("subscription closed", applogger.String("name", name))
	}
	if len(units) > 0 {
		m.log.Info("all stream subscriptions closed", applogger.Int("count", len(units)))
	}
}

// States reports the current lifecycle phase per registered subscription.
func (m *Manager) States() map[string]string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[string]string, len(m.units))
	for name, u := range m.units {
		out[name] = State(u.state.Load()).String()
	}
	return out
}

// unit is one subscription's running state: the goroutine in run owns the
// connection; terminate may be called from any goroutine exactly once.
type unit struct {
	sub      Subscription
	stop     chan struct{}
	stopOnce sync.Once
	state    atomic.Int32

	connMu sync.Mutex
	conn   *websocket.Conn
}

func (u *unit) terminate() {
	u.stopOnce.Do(func() {
		close(u.stop)
	})
	u.state.Store(int32(StateStopped))
	u.connMu.Lock()
	if u.conn != nil {
		_ = u.conn.Close()
	}
	u.connMu.Unlock()
}

func (u *unit) stopped() bool {
	select {
	case <-u.stop:
		return true
	default:
		return false
	}
}

// run drives the per-subscription state machine:
// CONNECTING -> OPEN -> CLOSED -> RECONNECT_WAIT -> CONNECTING, with STOPPED
// terminal from any state.
func (u *unit) run(m *Manager) {
	for {
		if u.stopped() {
			return
		}
		u.state.Store(int32(StateConnecting))

		conn, resp, err := m.dialer.Dial(u.sub.Endpoint, nil)
		if resp != nil && resp.Body != nil {
			_ = resp.Body.Close()
		}
		if err != nil {
			m.log.Warn("stream connect failed",
				applogger.String("name", u.sub.Name),
				applogger.Error(err),
			)
			m.metrics.RecordError("stream_connect")
			u.state.Store(int32(StateClosed))
			if !u.waitReconnect(m) {
				return
			}
			continue
		}

		u.connMu.Lock()
		u.conn = conn
		u.connMu.Unlock()
		if u.stopped() {
			_ = conn.Close()
			return
		}
		u.state.Store(int32(StateOpen))
		m.log.Info("stream connected", applogger.String("name", u.sub.Name))

		if u.sub.Handshake != nil {
			if err := conn.WriteJSON(u.sub.Handshake); err != nil {
				m.log.Warn("handshake send failed",
					applogger.String("name", u.sub.Name),
					applogger.Error(err),
				)
				m.metrics.RecordError("stream_handshake")
				_ = conn.Close()
				u.state.Store(int32(StateClosed))
				if !u.waitReconnect(m) {
					return
				}
				continue
			}
			m.log.Debug("handshake sent", applogger.String("name", u.sub.Name))
		}

		u.dispatch(m, conn)
		_ = conn.Close()
		u.state.Store(int32(StateClosed))

		if u.stopped() {
			return
		}
		m.log.Info("stream disconnected, scheduling reconnect",
			applogger.String("name", u.sub.Name),
			applogger.Duration("wait", u.sub.ReconnectInterval),
		)
		if !u.waitReconnect(m) {
			return
		}
	}
}

// dispatch reads messages until the connection dies. Handler failures are
// contained: a panicking handler is logged and the loop continues.
func (u *unit) dispatch(m *Manager, conn *websocket.Conn) {
	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			if !u.stopped() {
				m.log.Warn("stream read error",
					applogger.String("name", u.sub.Name),
					applogger.Error(err),
				)
				m.metrics.RecordError("stream_read")
			}
			return
		}
		m.metrics.RecordMessageReceived(u.sub.Name)
		u.handle(m, msg)
	}
}

func (u *unit) handle(m *Manager, msg []byte) {
	defer func() {
		if r := recover(); r != nil {
			m.log.Error("message handler panic",
				applogger.String("name", u.sub.Name),
				applogger.Any("panic", r),
			)
			m.metrics.RecordError("handler_panic")
		}
	}()
	u.sub.Handler(msg)
}

// waitReconnect sleeps the fixed reconnect interval. It returns false when the
// subscription was stopped before or during the wait; the stop signal is
// checked again after the timer fires so a close always wins the race.
func (u *unit) waitReconnect(m *Manager) bool {
	u.state.Store(int32(StateReconnectWait))
	t := time.NewTimer(u.sub.ReconnectInterval)
	defer t.Stop()
	select {
	case <-u.stop:
		return false
	case <-t.C:
	}
	if u.stopped() {
		return false
	}
	m.metrics.RecordReconnect(u.sub.Name)
	return true
}
