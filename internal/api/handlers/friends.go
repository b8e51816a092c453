package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ninahidul9/connect-chat/internal/api/middleware"
	"github.com/ninahidul9/connect-chat/internal/gateway"
	"github.com/ninahidul9/connect-chat/internal/models"
	"github.com/ninahidul9/connect-chat/pkg/response"
)

// FriendsHandler serves the snapshot reads the browser does before its
// socket session is up. Mutations go through the socket so they run on the
// session's synchronizers.
type FriendsHandler struct {
	store gateway.Store
}

func NewFriendsHandler(store gateway.Store) *FriendsHandler {
	return &FriendsHandler{store: store}
}

func (h *FriendsHandler) GetFriends(c *gin.Context) {
	rows, err := h.store.FriendshipsFor(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "could not load friends")
		return
	}
	friends := make([]models.Profile, 0, len(rows))
	for _, row := range rows {
		if row.Friend != nil {
			friends = append(friends, *row.Friend)
		}
	}
	response.OK(c, friends)
}

func (h *FriendsHandler) GetRequests(c *gin.Context) {
	userID := middleware.UserID(c)
	received, err := h.store.PendingRequestsTo(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "could not load requests")
		return
	}
	sent, err := h.store.PendingRequestsFrom(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "could not load requests")
		return
	}
	response.OK(c, gin.H{"received": received, "sent": sent})
}
