// broadcast/broadcast.go
package broadcast

import (
	"github.com/wfunc/drawserver/logger"
	"github.com/wfunc/drawserver/network"
	"github.com/wfunc/drawserver/session"
)

type Broadcaster interface {
	Deliver(messages []network.Outbound) int
	SendTo(connID string, event string, payload any) error
}

// 基于会话的广播器
// SessionBroadcaster routes outbound events to the sessions they address.
type SessionBroadcaster struct {
	sessionManager *session.Manager
}

func NewSessionBroadcaster(sessionManager *session.Manager) *SessionBroadcaster {
	return &SessionBroadcaster{sessionManager: sessionManager}
}

// Deliver queues each message in order and returns the number of frames
// queued. It never blocks on a socket: recipients that are gone or too slow are
// skipped and their read pump reports the disconnect.
func (b *SessionBroadcaster) Deliver(messages []network.Outbound) int {
	written := 0
	for _, msg := range messages {
		data, err := network.Encode(msg.Event, msg.Payload)
		if err != nil {
			logger.Log.Errorw("encode outbound event", "event", msg.Event, "error", err)
			continue
		}
		for _, id := range msg.To {
			s, ok := b.sessionManager.Get(id)
			if !ok {
				continue
			}
			if err := s.Send(data); err != nil {
				logger.Log.Warnw("dropping frame", "conn", id, "event", msg.Event, "error", err)
				continue
			}
			written++
		}
	}
	return written
}

func (b *SessionBroadcaster) SendTo(connID string, event string, payload any) error {
	s, ok := b.sessionManager.Get(connID)
	if !ok {
		return nil
	}
	data, err := network.Encode(event, payload)
	if err != nil {
		return err
	}
	return s.Send(data)
}
