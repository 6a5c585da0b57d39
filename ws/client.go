package ws

import (
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"farmlink/utils"
)

// Client is one user's websocket connection.
type Client struct {
	UserID string
	Conn   *websocket.Conn
	Send   chan []byte
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// ServeWS upgrades the connection and registers the caller's
// presence. The token comes from the query string because browser
// websocket clients cannot set headers; the Authorization header
// works too.
func ServeWS(hub *Hub) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := c.Query("token")
		if tokenString == "" {
			tokenString = strings.TrimPrefix(c.GetHeader("Authorization"), "Bearer ")
		}
		id, _, err := utils.ParseToken(tokenString)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"success": false, "error": "Not authorized to access this route"})
			return
		}

		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			log.Println("Websocket upgrade failed:", err)
			return
		}

		client := &Client{
			UserID: id,
			Conn:   conn,
			Send:   make(chan []byte, 64),
		}
		hub.Register <- client

		go client.writePump()
		go client.readPump(hub)
	}
}

// readPump drains inbound frames until the peer goes away. The chat
// API is REST; inbound frames are ignored, the read loop exists to
// detect disconnects.
func (c *Client) readPump(hub *Hub) {
	defer func() {
		hub.Unregister <- c
		c.Conn.Close()
	}()

	for {
		if _, _, err := c.Conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("Websocket read error for %s: %v", c.UserID, err)
			}
			return
		}
	}
}

// writePump forwards queued events to the connection.
func (c *Client) writePump() {
	defer c.Conn.Close()

	for message := range c.Send {
		if err := c.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
			return
		}
	}
	c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
}
