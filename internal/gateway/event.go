package gateway

import "encoding/json"

// Table names the backing tables the feed can report on.
type Table string

const (
	TableProfiles       Table = "profiles"
	TableFriendRequests Table = "friend_requests"
	TableFriendships    Table = "friendships"
	TableMessages       Table = "messages"
)

// EventType selects which change events a subscription receives.
type EventType string

const (
	EventInsert EventType = "insert"
	EventUpdate EventType = "update"
	// EventAny subscribes to both inserts and updates. It is only valid as a
	// subscription filter; published events always carry a concrete type.
	EventAny EventType = "*"
)

// Event is one row-level change: the table, what happened, and the row's new
// state. Consumers decode Row into the model for the table.
type Event struct {
	Table Table           `json:"table"`
	Type  EventType       `json:"type"`
	Row   json.RawMessage `json:"row"`
}

// Decode unmarshals the changed row into v.
func (e Event) Decode(v any) error {
	return json.Unmarshal(e.Row, v)
}

// NewEvent marshals row into an Event. Marshal failures are programmer
// errors (all row types are plain structs), so they panic.
func NewEvent(table Table, typ EventType, row any) Event {
	raw, err := json.Marshal(row)
	if err != nil {
		panic("gateway: unmarshalable row: " + err.Error())
	}
	return Event{Table: table, Type: typ, Row: raw}
}

// Matches reports whether a published event passes a subscription filter.
func (e Event) Matches(table Table, typ EventType) bool {
	if e.Table != table {
		return false
	}
	return typ == EventAny || e.Type == typ
}

// Subscription is a live feed registration. Events arrive on C until Cancel
// is called, after which C is closed and no further events are delivered.
type Subscription struct {
	C      <-chan Event
	cancel func()
}

// NewSubscription wires a subscription around an event channel and a cancel
// function. Feed implementations construct these; consumers only read C and
// call Cancel.
func NewSubscription(c <-chan Event, cancel func()) *Subscription {
	return &Subscription{C: c, cancel: cancel}
}

// Cancel stops delivery. Safe to call more than once.
func (s *Subscription) Cancel() {
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
}
