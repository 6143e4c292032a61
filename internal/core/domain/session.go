package domain

import (
	"sync"
	"time"
)

// Session is the state of one open map page: the map surface, its markers,
// the selection list, the user pin and the shared popup.
//
// Records, Markers and Selection are index-aligned. Callers must hold the
// session lock while reading or mutating any field.
type Session struct {
	mu sync.Mutex

	ID        string
	CreatedAt time.Time
	LastSeen  time.Time
	Viewport  Viewport
	Records   []LocationRecord
	Markers   []*MarkerHandle
	Selection []SelectionEntry
	UserPin   *UserPin
	Popup     *Popup
	FeedError string

	byID map[string]int
}

// NewSession creates an empty session centered on the given viewport.
func NewSession(id string, viewport Viewport, now time.Time) *Session {
	return &Session{
		ID:        id,
		CreatedAt: now,
		LastSeen:  now,
		Viewport:  viewport,
		byID:      make(map[string]int),
	}
}

func (s *Session) Lock()   { s.mu.Lock() }
func (s *Session) Unlock() { s.mu.Unlock() }

// AddMarker appends a record together with its marker and selection entry.
func (s *Session) AddMarker(rec LocationRecord, m *MarkerHandle, entry SelectionEntry) {
	if s.byID == nil {
		s.byID = make(map[string]int)
	}
	s.byID[rec.ID] = len(s.Records)
	s.Records = append(s.Records, rec)
	s.Markers = append(s.Markers, m)
	s.Selection = append(s.Selection, entry)
}

// Marker returns the marker and record with the given ID.
func (s *Session) Marker(id string) (*MarkerHandle, LocationRecord, bool) {
	i, ok := s.byID[id]
	if !ok {
		return nil, LocationRecord{}, false
	}
	return s.Markers[i], s.Records[i], true
}

// SessionView is a copy of a session's state safe to hand out.
type SessionView struct {
	ID        string           `json:"id"`
	CreatedAt time.Time        `json:"created_at"`
	Viewport  Viewport         `json:"viewport"`
	Markers   []MarkerHandle   `json:"markers"`
	Selection []SelectionEntry `json:"selection"`
	UserPin   *UserPin         `json:"user_pin,omitempty"`
	Popup     *Popup           `json:"popup,omitempty"`
	FeedError string           `json:"feed_error,omitempty"`
}

// View copies the session state. The caller must hold the lock.
func (s *Session) View() SessionView {
	v := SessionView{
		ID:        s.ID,
		CreatedAt: s.CreatedAt,
		Viewport:  s.Viewport,
		Markers:   make([]MarkerHandle, len(s.Markers)),
		Selection: append([]SelectionEntry(nil), s.Selection...),
		FeedError: s.FeedError,
	}
	for i, m := range s.Markers {
		v.Markers[i] = *m
	}
	if s.UserPin != nil {
		pin := *s.UserPin
		v.UserPin = &pin
	}
	if s.Popup != nil {
		p := *s.Popup
		v.Popup = &p
	}
	return v
}
