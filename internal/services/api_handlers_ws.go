package services

import (
	"strings"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
)

func (a *Api) WsUpgrade() fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(ctx) {
			return ctx.Next()
		}
		return fiber.ErrUpgradeRequired
	}
}

// Notifications streams hub events to one client. The current state is sent
// right after connecting so a client never starts blank.
func (a *Api) Notifications() fiber.Handler {
	return websocket.New(func(conn *websocket.Conn) {

		clientId := strings.TrimSpace(conn.Params("id"))
		if clientId == "" {
			conn.WriteMessage(websocket.CloseMessage, []byte("missing client id"))
			conn.Close()
			return
		}

		client := newWSClient(clientId, conn)
		a.hub.Add(client)
		a.log.Debug("ws client connected", "clientId", clientId)

		a.pushState(clientId)

		go client.pumpReads(
			func(msgType string) { a.handleClientMessage(clientId, msgType) },
			func() { a.hub.removeIf(clientId, client) },
		)
		client.pumpWrites()
		a.hub.removeIf(clientId, client)
		a.log.Debug("ws client disconnected", "clientId", clientId)
	})
}

func (a *Api) pushState(clientId string) {
	resp := toStateResponse(a.orch.Snapshot())
	a.hub.SendTo(clientId, WSEvent{Type: EventStateChanged, State: &resp})
}

func (a *Api) handleClientMessage(clientId, msgType string) {
	switch msgType {
	case EventStateRequest:
		a.pushState(clientId)
	default:
		a.log.Debug("ignored ws message", "clientId", clientId, "type", msgType)
	}
}
