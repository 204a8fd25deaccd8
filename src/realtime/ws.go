package realtime

import (
	"log/slog"

	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// LikeUpdatedEvent broadcasts the full likes set of a post after a toggle.
type LikeUpdatedEvent struct {
	PostID primitive.ObjectID   `json:"postId"`
	Likes  []primitive.ObjectID `json:"likes"`
}

// CommentAddedEvent broadcasts the full comment list after an append.
type CommentAddedEvent struct {
	PostID   primitive.ObjectID `json:"postId"`
	Comments interface{}        `json:"comments"`
}

// Handler upgrades the connection and pumps hub events to the client as
// JSON frames until the peer goes away.
func Handler(hub *Hub) func(*websocket.Conn) {
	return func(conn *websocket.Conn) {
		id := uuid.NewString()
		events := hub.Subscribe(id)
		defer hub.Unsubscribe(id)

		slog.Info("realtime client connected", "subscriber", id)

		// Lector en segundo plano: el canal solo es de salida, pero leer
		// detecta el cierre del peer y los frames de control
		done := make(chan struct{})
		go func() {
			defer close(done)
			for {
				if _, _, err := conn.ReadMessage(); err != nil {
					return
				}
			}
		}()

		for {
			select {
			case event, ok := <-events:
				if !ok {
					return
				}
				if err := conn.WriteJSON(event); err != nil {
					slog.Warn("failed to write realtime event", "subscriber", id, "error", err)
					return
				}
			case <-done:
				slog.Info("realtime client disconnected", "subscriber", id)
				return
			}
		}
	}
}
