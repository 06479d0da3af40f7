package websocket

import (
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeWait = 10 * time.Second
	readWait  = 5 * time.Minute
)

// WriteJSON sends an event with its data over the WebSocket.
func WriteJSON(conn *websocket.Conn, event Event, data interface{}) error {
	return writeTyped(conn, ResponsePayload{Event: event, Data: data})
}

// WriteError sends an error event over the WebSocket.
func WriteError(conn *websocket.Conn, errMsg string) error {
	return writeTyped(conn, ResponsePayload{Event: EventError, Error: errMsg})
}

// ReadJSON reads and decodes a message into the provided structure.
// It sets a read deadline.
func ReadJSON(conn *websocket.Conn, v interface{}) error {
	conn.SetReadDeadline(time.Now().Add(readWait))
	return conn.ReadJSON(v)
}

func writeTyped(conn *websocket.Conn, v interface{}) error {
	conn.SetWriteDeadline(time.Now().Add(writeWait))
	return conn.WriteJSON(v)
}
