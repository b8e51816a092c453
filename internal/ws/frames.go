package ws

import (
	"github.com/ninahidul9/connect-chat/internal/models"
	"github.com/ninahidul9/connect-chat/internal/session"
	"github.com/ninahidul9/connect-chat/internal/sync/friendgraph"
)

// intentFrame is what the browser sends. Type selects the action; the other
// fields are filled as the action requires.
type intentFrame struct {
	Type       string `json:"type"`
	PeerID     string `json:"peer_id,omitempty"`
	Content    string `json:"content,omitempty"`
	UserID     string `json:"user_id,omitempty"`
	RequestID  string `json:"request_id,omitempty"`
	FromUserID string `json:"from_user_id,omitempty"`
	Query      string `json:"query,omitempty"`
}

const (
	intentSelectPeer     = "select_peer"
	intentSendMessage    = "send_message"
	intentMarkRead       = "mark_read"
	intentSendRequest    = "send_request"
	intentAcceptRequest  = "accept_request"
	intentDeclineRequest = "decline_request"
	intentRemoveFriend   = "remove_friend"
	intentSearch         = "search"
)

type friendsFrame struct {
	Type string `json:"type"`
	friendgraph.Snapshot
}

type threadFrame struct {
	Type     string           `json:"type"`
	PeerID   string           `json:"peer_id"`
	Messages []models.Message `json:"messages"`
}

type unreadFrame struct {
	Type   string         `json:"type"`
	Counts map[string]int `json:"counts"`
	Total  int            `json:"total"`
}

type searchResult struct {
	Profile      models.Profile       `json:"profile"`
	Relationship session.Relationship `json:"relationship"`
}

type searchFrame struct {
	Type    string         `json:"type"`
	Results []searchResult `json:"results"`
}

// errorFrame is the toast equivalent: pushed only for explicit actions whose
// failure the user should see.
type errorFrame struct {
	Type    string `json:"type"`
	Action  string `json:"action"`
	Message string `json:"message"`
}
