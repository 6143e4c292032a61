package usecases

import (
	"strings"

	"github.com/samirrijal/bikepark/internal/core/domain"
)

// MarkerPresenter turns location records into map pins, popups and
// selection entries.
type MarkerPresenter struct{}

// NewMarkerPresenter creates a new MarkerPresenter.
func NewMarkerPresenter() *MarkerPresenter {
	return &MarkerPresenter{}
}

// Present returns an attached marker at the record's coordinates.
func (p *MarkerPresenter) Present(rec domain.LocationRecord) *domain.MarkerHandle {
	return &domain.MarkerHandle{
		ID:       rec.ID,
		Position: rec.Coordinates,
		Title:    orUnavailable(rec.Name),
		Attached: true,
		Popup:    p.Popup(rec),
	}
}

// Popup builds the detail overlay for a record.
func (p *MarkerPresenter) Popup(rec domain.LocationRecord) domain.PopupContent {
	return domain.PopupContent{
		Name:           orUnavailable(rec.Name),
		Address:        orUnavailable(rec.Address),
		RackOwner:      orUnavailable(rec.RackOwner),
		RackType:       orUnavailable(rec.RackType),
		TotalCapacity:  orUnavailable(rec.TotalCapacity),
		Covered:        orUnavailable(rec.Covered),
		NearbyLighting: orUnavailable(rec.NearbyLighting),
	}
}

// Label is the selection-list text for a record: "<name> - <address>".
func (p *MarkerPresenter) Label(rec domain.LocationRecord) string {
	return orUnavailable(rec.Name) + " - " + orUnavailable(rec.Address)
}

// Entry returns the selection entry for a record.
func (p *MarkerPresenter) Entry(rec domain.LocationRecord) domain.SelectionEntry {
	return domain.SelectionEntry{ID: rec.ID, Label: p.Label(rec)}
}

func orUnavailable(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return domain.Unavailable
	}
	return s
}
