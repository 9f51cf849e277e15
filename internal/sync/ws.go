package sync

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// The CLI and the web client connect from arbitrary origins.
	CheckOrigin: func(*http.Request) bool { return true },
}

// WSHandler upgrades the request and parks the connection on the hub
// until the peer goes away. The feed is one-way; anything a listener
// sends is read off and dropped.
func WSHandler(hub *Hub) gin.HandlerFunc {
	return func(c *gin.Context) {
		ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			return
		}

		hub.AddWS(ws)
		log.Printf("[ws] listener connected: %s", ws.RemoteAddr())

		if b, err := json.Marshal(hello{Type: "hello", Feed: "books", Transport: "websocket"}); err == nil {
			_ = ws.WriteMessage(websocket.TextMessage, append(b, '\n'))
		}

		for {
			if _, _, err := ws.ReadMessage(); err != nil {
				break
			}
		}

		hub.RemoveWS(ws)
		log.Printf("[ws] listener disconnected: %s", ws.RemoteAddr())
	}
}
