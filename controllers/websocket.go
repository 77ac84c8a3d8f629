package controllers

import (
	"oquvmarkaz_go/middleware"
	ws "oquvmarkaz_go/services/websocket"

	"github.com/gofiber/fiber/v2"
	fiberws "github.com/gofiber/websocket/v2"
)

type WebSocketController struct {
	hub *ws.Hub
}

func NewWebSocketController(hub *ws.Hub) *WebSocketController {
	return &WebSocketController{hub: hub}
}

// Upgrade gates the websocket upgrade behind JWT auth and stashes the user ID
// for the connection handler.
func (wc *WebSocketController) Upgrade(c *fiber.Ctx) error {
	if !fiberws.IsWebSocketUpgrade(c) {
		return c.Status(fiber.StatusUpgradeRequired).JSON(fiber.Map{
			"error": "WebSocket upgrade required",
		})
	}

	user, err := middleware.GetCurrentUser(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Not authenticated",
		})
	}

	c.Locals("ws_user_id", user.ID)
	return c.Next()
}

// Handler serves the websocket connection
func (wc *WebSocketController) Handler() fiber.Handler {
	return fiberws.New(func(conn *fiberws.Conn) {
		userID, _ := conn.Locals("ws_user_id").(uint)
		wc.hub.ServeFiberWS(conn, userID)
	})
}

// Stats returns connection counts for the admin screen
func (wc *WebSocketController) Stats(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"connected_clients": wc.hub.GetClientCount(),
	})
}
