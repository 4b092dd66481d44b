package controllers

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"sync/atomic"

	"github.com/beanline/beanline-api/config"
	"github.com/beanline/beanline-api/middleware"
	"github.com/beanline/beanline-api/models"
	"github.com/beanline/beanline-api/realtime"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Browser clients connect from the web app's origin; access
	// control happens per topic, not per origin
	CheckOrigin: func(r *http.Request) bool { return true },
}

var wsClientSeq uint64

// SubscribeMessage is the control message clients send over the socket
type SubscribeMessage struct {
	Action string   `json:"action"` // "subscribe" or "unsubscribe"
	Topics []string `json:"topics"`
}

type ackMessage struct {
	Event string `json:"event"`
	Topic string `json:"topic,omitempty"`
	Error string `json:"error,omitempty"`
}

// WebSocket returns the GET /ws handler. Connections are anonymous by
// default; a valid token (via the OptionalToken middleware) lets the
// client join its private user and café rooms. Public queue rooms are
// open to everyone.
func WebSocket(hub *realtime.Hub) gin.HandlerFunc {
	return func(c *gin.Context) {
		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			log.Printf("websocket upgrade failed: %v", err)
			return
		}

		// Resolve the caller's profile once; an unauthenticated
		// connection simply has no user
		var user *models.User
		if u, err := middleware.CurrentUser(c); err == nil {
			user = u
		}

		clientID := fmt.Sprintf("ws-%d", atomic.AddUint64(&wsClientSeq, 1))
		client := hub.Register(clientID)
		defer func() {
			hub.Unregister(clientID)
			conn.Close()
		}()

		// Drain the hub's send channel into the connection
		go func() {
			for payload := range client.Send {
				if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
					return
				}
			}
		}()

		for {
			_, data, err := conn.ReadMessage()
			if err != nil {
				return
			}

			var msg SubscribeMessage
			if err := json.Unmarshal(data, &msg); err != nil {
				writeAck(client, ackMessage{Event: "error", Error: "malformed message"})
				continue
			}
			if msg.Action != "subscribe" && msg.Action != "unsubscribe" {
				writeAck(client, ackMessage{Event: "error", Error: fmt.Sprintf("unknown action %q", msg.Action)})
				continue
			}

			for _, raw := range msg.Topics {
				topic, err := realtime.ParseTopic(raw)
				if err != nil {
					writeAck(client, ackMessage{Event: "error", Topic: raw, Error: err.Error()})
					continue
				}

				if msg.Action == "unsubscribe" {
					hub.Unsubscribe(clientID, topic)
					writeAck(client, ackMessage{Event: "unsubscribed", Topic: raw})
					continue
				}

				if !authorizedForTopic(user, topic) {
					writeAck(client, ackMessage{Event: "error", Topic: raw, Error: "not authorized for this topic"})
					continue
				}
				hub.Subscribe(clientID, topic)
				writeAck(client, ackMessage{Event: "subscribed", Topic: raw})
			}
		}
	}
}

// authorizedForTopic checks whether the (possibly anonymous) caller
// may join a topic room
func authorizedForTopic(user *models.User, topic realtime.Topic) bool {
	if !topic.RequiresAuth() {
		return true
	}
	if user == nil {
		return false
	}

	switch topic.Kind {
	case realtime.KindOrderOwner:
		return user.ID == topic.ID || user.Role == models.RoleAdmin
	case realtime.KindCafeStaff:
		if user.Role == models.RoleAdmin {
			return true
		}
		db := config.GetDB()
		var cafe models.Cafe
		if err := db.First(&cafe, topic.ID).Error; err != nil {
			return false
		}
		return cafe.OwnerID == user.ID
	default:
		return false
	}
}

// writeAck queues a control response through the client's send
// channel so all socket writes happen on the single write goroutine
func writeAck(client *realtime.Client, msg ackMessage) {
	payload, err := json.Marshal(msg)
	if err != nil {
		return
	}
	select {
	case client.Send <- payload:
	default:
	}
}
