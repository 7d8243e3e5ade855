// session/session.go
package session

import (
	"errors"
	"sync"
	"time"

	"github.com/wfunc/drawserver/network"
	"golang.org/x/time/rate"
)

// OutboxSize is the number of frames a session may have queued before it is
// treated as a stalled client.
const OutboxSize = 256

var (
	ErrSessionClosed = errors.New("session closed")
	ErrSlowConsumer  = errors.New("outbox full, client too slow")
)

// Session 是一个连接的会话
type Session struct {
	ID         string
	Conn       network.Connection
	CreatedAt  time.Time
	LastActive time.Time
	limiter    *rate.Limiter
	outbox     chan []byte
	closed     chan struct{}
	closeOnce  sync.Once
	mutex      sync.RWMutex
}

// NewSession binds a connection. A zero chatRate disables chat throttling.
// Frames are written by WritePump, which the caller must start.
func NewSession(id string, conn network.Connection, chatRate float64, chatBurst int) *Session {
	now := time.Now()
	s := &Session{
		ID:         id,
		Conn:       conn,
		CreatedAt:  now,
		LastActive: now,
		outbox:     make(chan []byte, OutboxSize),
		closed:     make(chan struct{}),
	}
	if chatRate > 0 {
		if chatBurst < 1 {
			chatBurst = 1
		}
		s.limiter = rate.NewLimiter(rate.Limit(chatRate), chatBurst)
	}
	return s
}

// Send queues a frame without blocking. A full outbox closes the session so
// one stalled socket cannot hold up the caller.
func (s *Session) Send(data []byte) error {
	select {
	case <-s.closed:
		return ErrSessionClosed
	default:
	}

	select {
	case s.outbox <- data:
		return nil
	default:
		s.Close()
		return ErrSlowConsumer
	}
}

// WritePump 把发送队列写到连接上，直到会话关闭或写入失败
func (s *Session) WritePump() {
	for {
		select {
		case <-s.closed:
			return
		case data := <-s.outbox:
			if err := s.Conn.Send(data); err != nil {
				s.Close()
				return
			}
		}
	}
}

// Pending returns the number of queued frames.
func (s *Session) Pending() int {
	return len(s.outbox)
}

func (s *Session) Closed() bool {
	select {
	case <-s.closed:
		return true
	default:
		return false
	}
}

// Touch records inbound activity.
func (s *Session) Touch() {
	s.mutex.Lock()
	s.LastActive = time.Now()
	s.mutex.Unlock()
}

func (s *Session) IdleFor(now time.Time) time.Duration {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return now.Sub(s.LastActive)
}

// AllowChat spends one token of the chat and guess budget.
func (s *Session) AllowChat() bool {
	if s.limiter == nil {
		return true
	}
	return s.limiter.Allow()
}

func (s *Session) GetID() string {
	return s.ID
}

// Close stops the write pump and closes the connection in the background, so
// the read pump sees the socket end and reports the disconnect.
func (s *Session) Close() error {
	s.closeOnce.Do(func() {
		close(s.closed)
		go s.Conn.Close()
	})
	return nil
}

// Session管理器，按连接 id 索引
type Manager struct {
	sessions map[string]*Session
	mutex    sync.RWMutex
}

func NewManager() *Manager {
	return &Manager{
		sessions: make(map[string]*Session),
	}
}

func (m *Manager) Add(session *Session) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.sessions[session.ID] = session
}

func (m *Manager) Remove(sessionID string) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	delete(m.sessions, sessionID)
}

func (m *Manager) Get(sessionID string) (*Session, bool) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	session, exists := m.sessions[sessionID]
	return session, exists
}

func (m *Manager) Count() int {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	return len(m.sessions)
}

// All returns a snapshot of the live sessions.
func (m *Manager) All() []*Session {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	result := make([]*Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		result = append(result, s)
	}
	return result
}
