// network/connection.go
package network

import (
	"encoding/json"
	"errors"
	"net"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

var ErrEmptyEvent = errors.New("packet has no event name")

type Connection interface {
	Send(data []byte) error
	Close() error
	RemoteAddr() net.Addr
	SetHeartbeat(interval time.Duration)
	ReadPacket() (*Packet, error)
}

type WSConnection struct {
	conn      *websocket.Conn
	sendMutex sync.Mutex
	heartbeat time.Duration
}

func NewWSConnection(conn *websocket.Conn) *WSConnection {
	return &WSConnection{conn: conn}
}

// Send writes one JSON frame. Safe for concurrent use.
func (c *WSConnection) Send(data []byte) error {
	c.sendMutex.Lock()
	defer c.sendMutex.Unlock()

	if c.heartbeat > 0 {
		c.conn.SetWriteDeadline(time.Now().Add(c.heartbeat))
	}
	return c.conn.WriteMessage(websocket.TextMessage, data)
}

// ReadPacket blocks for the next frame. A frame that is not valid JSON returns
// a *json.SyntaxError and leaves the connection usable.
func (c *WSConnection) ReadPacket() (*Packet, error) {
	_, data, err := c.conn.ReadMessage()
	if err != nil {
		return nil, err
	}

	var packet Packet
	if err := json.Unmarshal(data, &packet); err != nil {
		return nil, err
	}
	if packet.Event == "" {
		return nil, ErrEmptyEvent
	}
	return &packet, nil
}

// SetHeartbeat arms read deadlines that pongs keep extending, and starts pinging
// at the given interval until the connection closes.
func (c *WSConnection) SetHeartbeat(interval time.Duration) {
	c.heartbeat = interval
	c.conn.SetReadDeadline(time.Now().Add(interval * 2))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(interval * 2))
	})

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for range ticker.C {
			err := c.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(interval))
			if err != nil {
				return
			}
		}
	}()
}

// Close does not wait for a pending Send; WriteControl and Close are safe
// alongside a blocked data write.
func (c *WSConnection) Close() error {
	c.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(time.Second))
	return c.conn.Close()
}

func (c *WSConnection) RemoteAddr() net.Addr {
	return c.conn.RemoteAddr()
}

// IsRecoverable reports whether a ReadPacket error only affected one frame.
func IsRecoverable(err error) bool {
	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	return errors.Is(err, ErrEmptyEvent) || errors.As(err, &syntaxErr) || errors.As(err, &typeErr)
}
