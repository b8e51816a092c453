package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/ninahidul9/connect-chat/internal/auth"
	"github.com/ninahidul9/connect-chat/internal/gateway"
	"github.com/ninahidul9/connect-chat/internal/session"
	"github.com/ninahidul9/connect-chat/internal/ws"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// The browser client runs on a different origin in development.
	CheckOrigin: func(r *http.Request) bool { return true },
}

type WSHandler struct {
	hub       *ws.Hub
	store     gateway.Store
	feed      gateway.Feed
	jwtSecret string
	log       *slog.Logger
}

func NewWSHandler(hub *ws.Hub, store gateway.Store, feed gateway.Feed, jwtSecret string, log *slog.Logger) *WSHandler {
	return &WSHandler{hub: hub, store: store, feed: feed, jwtSecret: jwtSecret, log: log}
}

// HandleWebSocket authenticates via the token query parameter (browsers
// cannot set headers on websocket dials), upgrades, and hands the socket a
// fresh session.
func (h *WSHandler) HandleWebSocket(c *gin.Context) {
	userID, err := auth.ParseUserID(c.Query("token"), h.jwtSecret)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Error("websocket upgrade failed", "error", err)
		return
	}

	sess := session.New(userID, h.store, h.feed, h.log)
	client := ws.NewClient(h.hub, conn, sess, h.log)
	if err := client.Start(); err != nil {
		h.log.Error("session start failed", "user", userID, "error", err)
		conn.Close()
		return
	}

	h.hub.Register <- client
	go client.WritePump()
	go client.ReadPump()
}
