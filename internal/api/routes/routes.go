package routes

import (
	"log/slog"

	"github.com/gin-gonic/gin"

	"github.com/ninahidul9/connect-chat/internal/api/handlers"
	"github.com/ninahidul9/connect-chat/internal/api/middleware"
	"github.com/ninahidul9/connect-chat/internal/auth"
	"github.com/ninahidul9/connect-chat/internal/gateway"
	"github.com/ninahidul9/connect-chat/internal/ws"
)

type Router struct {
	engine          *gin.Engine
	authHandler     *handlers.AuthHandler
	userHandler     *handlers.UserHandler
	friendsHandler  *handlers.FriendsHandler
	messagesHandler *handlers.MessagesHandler
	wsHandler       *handlers.WSHandler
	authMW          *middleware.AuthMiddleware
}

func NewRouter(
	hub *ws.Hub,
	store gateway.Store,
	feed gateway.Feed,
	authSvc *auth.Service,
	jwtSecret string,
	log *slog.Logger,
) *Router {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(middleware.CORS())
	engine.Use(middleware.LogAPI())

	return &Router{
		engine:          engine,
		authHandler:     handlers.NewAuthHandler(authSvc),
		userHandler:     handlers.NewUserHandler(store, log),
		friendsHandler:  handlers.NewFriendsHandler(store),
		messagesHandler: handlers.NewMessagesHandler(store),
		wsHandler:       handlers.NewWSHandler(hub, store, feed, jwtSecret, log),
		authMW:          middleware.NewAuthMiddleware(jwtSecret),
	}
}

func (r *Router) SetupRoutes() {
	r.engine.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	api := r.engine.Group("/api/v1")

	api.POST("/auth/register", r.authHandler.Register)
	api.POST("/auth/login", r.authHandler.Login)

	// Token travels as a query parameter on the websocket dial.
	api.GET("/ws", r.wsHandler.HandleWebSocket)

	authed := api.Group("/")
	authed.Use(r.authMW.RequireAuth())
	{
		authed.GET("/users/me", r.userHandler.GetMe)
		authed.GET("/users/search", r.userHandler.SearchUsers)

		authed.GET("/friends", r.friendsHandler.GetFriends)
		authed.GET("/friends/requests", r.friendsHandler.GetRequests)

		authed.GET("/messages/unread", r.messagesHandler.GetUnread)
		authed.GET("/messages/:peerID", r.messagesHandler.GetThread)
	}
}

func (r *Router) GetEngine() *gin.Engine {
	return r.engine
}
