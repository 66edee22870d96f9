package server

import (
	"context"
	"encoding/json"
	"log"

	"gearswap/internal/notifications"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
)

// wsFrame is an incoming client frame.
type wsFrame struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// WebsocketHandler handles GET /api/ws. Clients send {"type":"chat",
// "message":"..."} frames; the styler's reply comes back on the socket as a
// styler_response push. Anything else is acknowledged with an error frame.
func (s *Server) WebsocketHandler() fiber.Handler {
	return websocket.New(func(conn *websocket.Conn) {
		userIDVal := conn.Locals("userID")
		if userIDVal == nil {
			log.Printf("WebSocket: Unauthenticated connection attempt")
			_ = conn.WriteMessage(websocket.TextMessage, []byte(`{"error":"unauthorized"}`))
			_ = conn.Close()
			return
		}
		userID := userIDVal.(uint)

		client, err := s.hub.Register(userID, conn)
		if err != nil {
			log.Printf("WebSocket: Failed to register user %d: %v", userID, err)
			_ = conn.WriteMessage(websocket.TextMessage, []byte(`{"error":"`+err.Error()+`"}`))
			_ = conn.Close()
			return
		}

		client.IncomingHandler = func(c *notifications.Client, message []byte) {
			var frame wsFrame
			if err := json.Unmarshal(message, &frame); err != nil {
				log.Printf("WebSocket: Invalid frame from user %d", userID)
				c.TrySend([]byte(`{"type":"error","error":"invalid frame"}`))
				return
			}

			switch frame.Type {
			case "chat":
				// The reply is pushed by the styler service once it is
				// ready, so the read loop stays free for further frames.
				go func() {
					if _, err := s.stylerService.Chat(context.Background(), userID, frame.Message); err != nil {
						payload, _ := json.Marshal(map[string]string{
							"type":  "error",
							"error": err.Error(),
						})
						c.TrySend(payload)
					}
				}()

			case "ping":
				c.TrySend([]byte(`{"type":"pong"}`))

			default:
				log.Printf("WebSocket: Unrecognized frame type %q from user %d", frame.Type, userID)
				payload, _ := json.Marshal(map[string]string{
					"type":  "error",
					"error": "unrecognized frame type: " + frame.Type,
				})
				c.TrySend(payload)
			}
		}

		welcome, _ := json.Marshal(map[string]interface{}{
			"type":   "connected",
			"userId": userID,
		})
		client.TrySend(welcome)

		go client.WritePump()

		// Read pump runs in the handler goroutine; it unregisters the
		// client from the hub when the connection drops.
		client.ReadPump()
	})
}
