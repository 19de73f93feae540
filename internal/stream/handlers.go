package stream

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
)

// StatusFunc looks up a trip's current persisted status; it errors when the
// trip does not exist.
type StatusFunc func(ctx context.Context, tripID string) (string, error)

func RegisterRoutes(r fiber.Router, hub *Hub, status StatusFunc) {
	r.Get("/ws/trips/:id", func(c *fiber.Ctx) error {
		if !websocket.IsWebSocketUpgrade(c) {
			return fiber.ErrUpgradeRequired
		}
		current, err := status(c.Context(), c.Params("id"))
		if err != nil {
			return fiber.NewError(fiber.StatusNotFound, "trip not found")
		}
		c.Locals("tripStatus", current)
		return c.Next()
	}, websocket.New(func(c *websocket.Conn) {
		tripID := c.Params("id")
		current, _ := c.Locals("tripStatus").(string)

		client := hub.Register(tripID)

		// Snapshot events so a fresh subscriber knows where the trip stands.
		hub.queue(client, Event{Type: EventConnected, Data: ConnectedData{TripID: tripID, Message: "subscribed to trip progress"}})
		hub.queue(client, Event{Type: EventStatus, Data: StatusData{Status: current}})

		done := make(chan struct{})
		go func() {
			for msg := range client.Send {
				if err := c.WriteMessage(websocket.TextMessage, msg); err != nil {
					break
				}
			}
			close(done)
		}()

		for {
			if _, _, err := c.ReadMessage(); err != nil {
				break
			}
		}

		// Unregister closes the send channel, which ends the writer.
		hub.Unregister(client)
		<-done
	}))
}
