package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ninahidul9/connect-chat/internal/api/middleware"
	"github.com/ninahidul9/connect-chat/internal/gateway"
	"github.com/ninahidul9/connect-chat/internal/sync/search"
	"github.com/ninahidul9/connect-chat/pkg/response"
)

type UserHandler struct {
	store gateway.Store
	log   *slog.Logger
}

func NewUserHandler(store gateway.Store, log *slog.Logger) *UserHandler {
	return &UserHandler{store: store, log: log}
}

func (h *UserHandler) GetMe(c *gin.Context) {
	profile, err := h.store.ProfileByID(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		if errors.Is(err, gateway.ErrNotFound) {
			response.Error(c, http.StatusNotFound, "profile not found")
			return
		}
		response.Error(c, http.StatusInternalServerError, "could not load profile")
		return
	}
	response.OK(c, profile)
}

// SearchUsers is the one-shot REST variant of peer search, for the initial
// render; live search with relationship annotation runs over the socket.
func (h *UserHandler) SearchUsers(c *gin.Context) {
	projector := search.New(middleware.UserID(c), h.store, h.log)
	projector.Search(c.Request.Context(), c.Query("q"))
	response.OK(c, projector.Results())
}
