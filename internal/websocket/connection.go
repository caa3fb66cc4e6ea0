package websocket

import (
	"github.com/gorilla/websocket"
)

// wsConn adapts a gorilla connection to Connection
type wsConn struct {
	*websocket.Conn
}

// NewConnection wraps a gorilla/websocket connection
func NewConnection(conn *websocket.Conn) Connection {
	return wsConn{Conn: conn}
}

// RemoteAddr returns the remote network address as a string
func (c wsConn) RemoteAddr() string {
	if addr := c.Conn.RemoteAddr(); addr != nil {
		return addr.String()
	}
	return ""
}
