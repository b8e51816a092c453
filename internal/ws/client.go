package ws

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/ninahidul9/connect-chat/internal/session"
	"github.com/ninahidul9/connect-chat/internal/sync/search"
)

// Client owns one websocket connection and the session behind it. The read
// pump turns frames into synchronizer actions; synchronizer change callbacks
// turn state into frames for the write pump.
type Client struct {
	userID string
	conn   *websocket.Conn
	sess   *session.Session
	hub    *Hub
	log    *slog.Logger

	ctx      context.Context
	cancel   context.CancelFunc
	debounce *search.Debouncer

	sendMu sync.Mutex
	send   chan []byte
	closed bool

	shutdownOnce sync.Once
}

func NewClient(hub *Hub, conn *websocket.Conn, sess *session.Session, log *slog.Logger) *Client {
	ctx, cancel := context.WithCancel(context.Background())
	return &Client{
		userID:   sess.UserID,
		conn:     conn,
		sess:     sess,
		hub:      hub,
		log:      log.With("component", "ws", "user", sess.UserID),
		ctx:      ctx,
		cancel:   cancel,
		debounce: search.NewDebouncer(search.DebounceQuiet),
		send:     make(chan []byte, 32),
	}
}

// Start wires the change callbacks and brings the session up. The initial
// loads fire the callbacks, so the first state frames go out from here.
func (c *Client) Start() error {
	c.sess.Friends.OnChange(c.pushFriends)
	c.sess.Thread.OnChange(c.pushThread)
	c.sess.Unread.OnChange(c.pushUnread)
	c.sess.Search.OnChange(c.pushSearch)
	return c.sess.Start(c.ctx)
}

func (c *Client) ReadPump() {
	defer func() {
		c.hub.Unregister <- c
	}()
	for {
		var in intentFrame
		if err := c.conn.ReadJSON(&in); err != nil {
			return
		}
		c.handleIntent(in)
	}
}

func (c *Client) WritePump() {
	for msg := range c.send {
		if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			break
		}
	}
	c.conn.Close()
}

func (c *Client) handleIntent(in intentFrame) {
	switch in.Type {
	case intentSelectPeer:
		c.sess.Thread.SetPeer(c.ctx, in.PeerID)
		if in.PeerID != "" {
			// Opening a thread clears its unread state.
			c.sess.Thread.MarkRead(c.ctx)
		}

	case intentSendMessage:
		if err := c.sess.Thread.Send(c.ctx, in.Content); err != nil {
			c.log.Error("send message failed", "error", err)
			c.pushError(in.Type, "could not send message")
		}

	case intentMarkRead:
		c.sess.Thread.MarkRead(c.ctx)

	case intentSendRequest:
		if err := c.sess.Friends.SendRequest(c.ctx, in.UserID); err != nil {
			c.log.Error("send friend request failed", "error", err)
			c.pushError(in.Type, "could not send friend request")
		}

	case intentAcceptRequest:
		if err := c.sess.Friends.AcceptRequest(c.ctx, in.RequestID, in.FromUserID); err != nil {
			c.log.Error("accept friend request failed", "error", err)
			c.pushError(in.Type, "could not accept friend request")
		}

	case intentDeclineRequest:
		if err := c.sess.Friends.DeclineRequest(c.ctx, in.RequestID); err != nil {
			c.log.Error("decline friend request failed", "error", err)
			c.pushError(in.Type, "could not decline friend request")
		}

	case intentRemoveFriend:
		if err := c.sess.Friends.RemoveFriend(c.ctx, in.UserID); err != nil {
			c.log.Error("remove friend failed", "error", err)
			c.pushError(in.Type, "could not remove friend")
		}

	case intentSearch:
		query := in.Query
		if strings.TrimSpace(query) == "" {
			c.debounce.Stop()
			c.sess.Search.ClearResults()
			return
		}
		// The projector does not debounce; the caller does.
		c.debounce.Do(func() {
			c.sess.Search.Search(c.ctx, query)
		})

	default:
		c.pushError(in.Type, "unknown intent")
	}
}

func (c *Client) pushFriends() {
	c.enqueue(friendsFrame{Type: "friends", Snapshot: c.sess.Friends.Snapshot()})
}

func (c *Client) pushThread() {
	c.enqueue(threadFrame{
		Type:     "thread",
		PeerID:   c.sess.Thread.Peer(),
		Messages: c.sess.Thread.Messages(),
	})
}

func (c *Client) pushUnread() {
	c.enqueue(unreadFrame{
		Type:   "unread",
		Counts: c.sess.Unread.Counts(),
		Total:  c.sess.Unread.Total(),
	})
}

func (c *Client) pushSearch() {
	profiles := c.sess.Search.Results()
	results := make([]searchResult, 0, len(profiles))
	for _, p := range profiles {
		results = append(results, searchResult{
			Profile:      p,
			Relationship: c.sess.RelationshipTo(p.ID),
		})
	}
	c.enqueue(searchFrame{Type: "search", Results: results})
}

func (c *Client) pushError(action, message string) {
	c.enqueue(errorFrame{Type: "error", Action: action, Message: message})
}

func (c *Client) enqueue(frame any) {
	payload, err := json.Marshal(frame)
	if err != nil {
		c.log.Error("marshal frame failed", "error", err)
		return
	}
	c.sendMu.Lock()
	defer c.sendMu.Unlock()
	if c.closed {
		return
	}
	select {
	case c.send <- payload:
	default:
		c.log.Warn("slow websocket consumer, dropping frame")
	}
}

// shutdown stops new frames, tears the session down, and closes the write
// pump. Safe to call more than once.
func (c *Client) shutdown() {
	c.shutdownOnce.Do(func() {
		c.sendMu.Lock()
		c.closed = true
		c.sendMu.Unlock()
		c.cancel()
		c.debounce.Stop()
		c.sess.Close()
		close(c.send)
		c.conn.Close()
	})
}
