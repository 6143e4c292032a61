package domain

import (
	"time"
)

// Unavailable is displayed in place of any missing feed field.
const Unavailable = "Information Unavailable"

// LightingYes is the only NearbyLighting value treated as lit.
const LightingYes = "Yes"

// LocationRecord is one bike-parking location read from the feed.
// Empty string fields mean the feed did not provide the value.
type LocationRecord struct {
	ID             string   `json:"id"`
	Coordinates    GeoPoint `json:"coordinates"`
	Name           string   `json:"name"`
	Address        string   `json:"address"`
	RackOwner      string   `json:"rack_owner"`
	TotalCapacity  string   `json:"total_capacity"`
	Covered        string   `json:"covered"`
	RackType       string   `json:"rack_type"`
	NearbyLighting string   `json:"nearby_lighting"`
}

// PopupContent is the detail overlay shown when a pin is clicked.
// Every field is already substituted with Unavailable when missing.
type PopupContent struct {
	Name           string `json:"name"`
	Address        string `json:"address"`
	RackOwner      string `json:"rack_owner"`
	RackType       string `json:"rack_type"`
	TotalCapacity  string `json:"total_capacity"`
	Covered        string `json:"covered"`
	NearbyLighting string `json:"nearby_lighting"`
}

// MarkerHandle is the map pin bound 1:1 to a LocationRecord. Handles are
// never removed from a session, only detached.
type MarkerHandle struct {
	ID       string       `json:"id"`
	Position GeoPoint     `json:"position"`
	Title    string       `json:"title"`
	Attached bool         `json:"attached"`
	Popup    PopupContent `json:"popup"`
}

// Popup is the single shared popup of a session, anchored at a marker.
type Popup struct {
	MarkerID string       `json:"marker_id"`
	Position GeoPoint     `json:"position"`
	Content  PopupContent `json:"content"`
}

// UserPinSource records how the user pin was placed.
type UserPinSource string

const (
	UserPinBrowser UserPinSource = "browser"
	UserPinAddress UserPinSource = "address"
)

// UserPin is the user's current or entered location. A session holds at most one.
type UserPin struct {
	Position         GeoPoint      `json:"position"`
	Source           UserPinSource `json:"source"`
	Query            string        `json:"query,omitempty"`
	FormattedAddress string        `json:"formatted_address,omitempty"`
	PlacedAt         time.Time     `json:"placed_at"`
}

// SelectionEntry is one destination option. It carries the record ID so
// that selection survives any reordering or filtering.
type SelectionEntry struct {
	ID    string `json:"id"`
	Label string `json:"label"`
}

// PositionReport is what the page's platform location API produced: either
// a position or a PositionError code.
type PositionReport struct {
	Position  *GeoPoint `json:"position,omitempty"`
	ErrorCode string    `json:"error,omitempty"`
}

// GeocodeResult is a resolved address.
type GeocodeResult struct {
	Position         GeoPoint `json:"position"`
	FormattedAddress string   `json:"formatted_address"`
	Provider         string   `json:"provider"`
}

// TravelMode is the routing mode requested from the directions service.
type TravelMode string

const TravelModeWalking TravelMode = "WALKING"

// RouteStep is a single instruction of a route.
type RouteStep struct {
	Instruction     string `json:"instruction"`
	DistanceMeters  int    `json:"distance_meters"`
	DurationSeconds int    `json:"duration_seconds"`
}

// RouteResult is a rendered route. It is produced per request and not kept
// on the session.
type RouteResult struct {
	Origin             GeoPoint      `json:"origin"`
	Destination        GeoPoint      `json:"destination"`
	DestinationID      string        `json:"destination_id"`
	Mode               TravelMode    `json:"mode"`
	Summary            string        `json:"summary,omitempty"`
	Path               []GeoPoint    `json:"path"`
	DistanceMeters     int           `json:"distance_meters"`
	DurationSeconds    int           `json:"duration_seconds"`
	Steps              []RouteStep   `json:"steps,omitempty"`
	StraightLineMeters float64       `json:"straight_line_meters"`
	Warnings           []string      `json:"warnings,omitempty"`
}
