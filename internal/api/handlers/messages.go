package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ninahidul9/connect-chat/internal/api/middleware"
	"github.com/ninahidul9/connect-chat/internal/gateway"
	"github.com/ninahidul9/connect-chat/pkg/response"
)

type MessagesHandler struct {
	store gateway.Store
}

func NewMessagesHandler(store gateway.Store) *MessagesHandler {
	return &MessagesHandler{store: store}
}

// GetThread returns the full message history with one peer, oldest first.
func (h *MessagesHandler) GetThread(c *gin.Context) {
	peerID := c.Param("peerID")
	msgs, err := h.store.MessagesBetween(c.Request.Context(), middleware.UserID(c), peerID)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "could not load messages")
		return
	}
	response.OK(c, msgs)
}

// GetUnread returns the per-sender unread counts and their total.
func (h *MessagesHandler) GetUnread(c *gin.Context) {
	msgs, err := h.store.UnreadMessagesFor(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "could not load unread counts")
		return
	}
	counts := make(map[string]int)
	for _, m := range msgs {
		counts[m.SenderID]++
	}
	total := 0
	for _, n := range counts {
		total += n
	}
	response.OK(c, gin.H{"counts": counts, "total": total})
}
