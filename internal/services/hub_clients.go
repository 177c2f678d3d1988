package services

import (
	"encoding/json"
	"time"

	"github.com/gofiber/contrib/websocket"
)

const (
	sendBuffer   = 16
	writeWait    = 10 * time.Second
	pongWait     = 60 * time.Second
	pingPeriod   = pongWait * 9 / 10
	maxInboundSz = 4 << 10

	// EventStateRequest is the only message a client sends: it asks for the
	// current state to be pushed again.
	EventStateRequest = "state.request"
)

type WSClient struct {
	id   string
	conn *websocket.Conn
	send chan []byte
}

func newWSClient(id string, conn *websocket.Conn) *WSClient {
	return &WSClient{id: id, conn: conn, send: make(chan []byte, sendBuffer)}
}

type clientMessage struct {
	Type string `json:"type"`
}

// parseClientMessage returns the type of an inbound frame, or "" when the
// frame is not a JSON object with a type.
func parseClientMessage(frame []byte) string {
	var msg clientMessage
	if err := json.Unmarshal(frame, &msg); err != nil {
		return ""
	}
	return msg.Type
}

// pumpWrites drains c.send onto the socket and keeps the peer alive with
// pings. It returns when send is closed or a write fails.
func (c *WSClient) pumpWrites() {
	ping := time.NewTicker(pingPeriod)
	defer ping.Stop()

	for {
		select {
		case msg, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ping.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// pumpReads hands every inbound message type to onMessage until the peer
// goes away or stops answering pings, then calls onDone.
func (c *WSClient) pumpReads(onMessage func(msgType string), onDone func()) {
	defer onDone()

	c.conn.SetReadLimit(maxInboundSz)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		kind, frame, err := c.conn.ReadMessage()
		if err != nil {
			return
		}
		if kind != websocket.TextMessage {
			continue
		}
		if t := parseClientMessage(frame); t != "" {
			onMessage(t)
		}
	}
}
