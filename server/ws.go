package server

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/wfunc/drawserver/gateway"
	"github.com/wfunc/drawserver/logger"
	"github.com/wfunc/drawserver/network"
	"github.com/wfunc/drawserver/session"
)

func (s *GameServer) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Log.Infof("Failed to upgrade connection: %v", err)
		return
	}
	s.handleConnection(network.NewWSConnection(conn))
}

// handleConnection is the read pump of one socket. It only forwards events to
// the hub and synthesizes a disconnect when the socket closes. Writes go through
// the session's WritePump.
func (s *GameServer) handleConnection(conn network.Connection) {
	sess := session.NewSession(uuid.New().String(), conn, s.cfg.Game.ChatRate, s.cfg.Game.ChatBurst)
	s.sessionManager.Add(sess)
	s.monitor.IncOnlinePlayers()
	go sess.WritePump()
	if s.cfg.Server.Heartbeat > 0 {
		conn.SetHeartbeat(s.cfg.Server.Heartbeat)
	}

	logger.Log.Infof("New connection from %s, session ID: %s", conn.RemoteAddr(), sess.GetID())

	defer func() {
		logger.Log.Infof("Connection closed from %s, session ID: %s", conn.RemoteAddr(), sess.GetID())
		s.sessionManager.Remove(sess.GetID())
		s.monitor.DecOnlinePlayers()
		if err := s.hub.Submit(network.Inbound{ConnID: sess.GetID(), Event: network.EventDisconnect}); err != nil {
			logger.Log.Warnf("Disconnect of %s not processed: %v", sess.GetID(), err)
		}
		sess.Close()
	}()

	for {
		packet, err := conn.ReadPacket()
		if err != nil {
			if network.IsRecoverable(err) {
				s.reject(sess, gateway.ErrMalformedPayload)
				continue
			}
			return
		}
		sess.Touch()

		if packet.Event == network.EventDisconnect {
			s.reject(sess, gateway.ErrUnknownEvent)
			continue
		}
		if err := s.hub.Submit(network.Inbound{ConnID: sess.GetID(), Event: packet.Event, Data: packet.Data}); err != nil {
			return
		}
	}
}

func (s *GameServer) reject(sess *session.Session, err error) {
	if sendErr := s.broadcaster.SendTo(sess.GetID(), network.EventError, gateway.ErrorMessage{
		Message: gateway.ClientMessage(err),
	}); sendErr != nil {
		logger.Log.Debugf("Reject to %s failed: %v", sess.GetID(), sendErr)
	}
}
