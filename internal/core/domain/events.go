package domain

import "time"

// EventKind names a map-state change pushed to the page.
type EventKind string

const (
	EventMarkersChanged EventKind = "markers.changed"
	EventUserPinPlaced  EventKind = "userpin.placed"
	EventPopupOpened    EventKind = "popup.opened"
	EventRouteRendered  EventKind = "route.rendered"
	EventSessionClosed  EventKind = "session.closed"
)

// SessionEvent is a change to one session's map state.
type SessionEvent struct {
	SessionID string    `json:"session_id"`
	Kind      EventKind `json:"kind"`
	Time      time.Time `json:"time"`
	Payload   any       `json:"payload,omitempty"`
}
