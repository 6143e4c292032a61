package http

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"github.com/samirrijal/bikepark/internal/core/domain"
	"github.com/samirrijal/bikepark/internal/core/usecases"
)

const maxAddressLen = 200

// CreateSessionHandler opens a map session: feed load, markers, selection list.
func CreateSessionHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		view, err := deps.Sessions.Bootstrap(c.UserContext())
		if err != nil {
			return errInternal(c, err.Error())
		}
		c.Location("/v1/sessions/" + view.ID)
		return c.Status(fiber.StatusCreated).JSON(view)
	}
}

// GetSessionHandler returns a session snapshot.
func GetSessionHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		view, err := deps.Sessions.Get(c.UserContext(), c.Params("id"))
		if err != nil {
			return errDomain(c, err)
		}
		return c.JSON(view)
	}
}

// DeleteSessionHandler tears a session down.
func DeleteSessionHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := deps.Sessions.Close(c.UserContext(), c.Params("id")); err != nil {
			return errDomain(c, err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}

// SessionMarkersHandler lists the session's markers. With ?format=geojson it
// returns a FeatureCollection of the attached markers only.
func SessionMarkersHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		view, err := deps.Sessions.Get(c.UserContext(), c.Params("id"))
		if err != nil {
			return errDomain(c, err)
		}

		switch c.Query("format") {
		case "", "json":
			return c.JSON(view.Markers)
		case "geojson":
			c.Set(fiber.HeaderContentType, "application/geo+json")
			return c.JSON(markersGeoJSON(view.Markers))
		default:
			return errBadRequest(c, "format must be json or geojson")
		}
	}
}

// SessionSelectionHandler returns the destination selection list.
func SessionSelectionHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		view, err := deps.Sessions.Get(c.UserContext(), c.Params("id"))
		if err != nil {
			return errDomain(c, err)
		}
		return c.JSON(view.Selection)
	}
}

// ClickMarkerHandler opens the shared popup at a marker.
func ClickMarkerHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		popup, err := deps.Sessions.OpenPopup(c.UserContext(), c.Params("id"), c.Params("markerId"))
		if err != nil {
			return errDomain(c, err)
		}
		return c.JSON(popup)
	}
}

// locateRequest is what the page's geolocation callback posts: a position
// or a PositionError code.
type locateRequest struct {
	Lat   *float64 `json:"lat"`
	Lng   *float64 `json:"lng"`
	Error string   `json:"error"`
}

// LocateHandler places the user pin at the browser-reported position.
func LocateHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req locateRequest
		if err := c.BodyParser(&req); err != nil {
			return errBadRequest(c, "invalid JSON body")
		}

		report := domain.PositionReport{ErrorCode: strings.ToUpper(strings.TrimSpace(req.Error))}
		if report.ErrorCode == "" {
			if req.Lat == nil || req.Lng == nil {
				return errBadRequest(c, "lat and lng, or error, are required")
			}
			report.Position = &domain.GeoPoint{Lat: *req.Lat, Lng: *req.Lng}
		}

		pin, err := deps.Geocoding.LocateByBrowser(c.UserContext(), c.Params("id"), report)
		if err != nil {
			return errDomain(c, err)
		}
		return c.JSON(pin)
	}
}

type addressRequest struct {
	Address string `json:"address"`
}

// AddressHandler geocodes the entered address and places the user pin there.
func AddressHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req addressRequest
		if err := c.BodyParser(&req); err != nil {
			return errBadRequest(c, "invalid JSON body")
		}
		if len(req.Address) > maxAddressLen {
			return errBadRequest(c, "address too long (max 200 characters)")
		}

		pin, err := deps.Geocoding.LocateByAddress(c.UserContext(), c.Params("id"), req.Address)
		if err != nil {
			return errDomain(c, err)
		}
		return c.JSON(pin)
	}
}

// FilterLitHandler shows only markers with lighting nearby.
func FilterLitHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		vis, err := deps.Filter.ShowOnly(c.UserContext(), c.Params("id"), usecases.LitNearby)
		if err != nil {
			return errDomain(c, err)
		}
		return c.JSON(vis)
	}
}

// FilterAllHandler shows every marker again.
func FilterAllHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		vis, err := deps.Filter.ShowAll(c.UserContext(), c.Params("id"))
		if err != nil {
			return errDomain(c, err)
		}
		return c.JSON(vis)
	}
}

type directionsRequest struct {
	DestinationID string `json:"destination_id"`
}

// DirectionsHandler returns a walking route from the user pin to the chosen
// destination, together with its path as a GeoJSON LineString feature.
func DirectionsHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req directionsRequest
		if len(c.Body()) > 0 {
			if err := c.BodyParser(&req); err != nil {
				return errBadRequest(c, "invalid JSON body")
			}
		}

		route, err := deps.Directions.GetDirections(c.UserContext(), c.Params("id"), req.DestinationID)
		if err != nil {
			return errDomain(c, err)
		}
		return c.JSON(fiber.Map{
			"route":   route,
			"feature": routeGeoJSON(route),
		})
	}
}

// ListLocationsHandler returns the feed records, paginated.
func ListLocationsHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		records, err := deps.Locations.Load(c.UserContext(), deps.FeedURL)
		if err != nil {
			var ferr *domain.FetchError
			if errors.As(err, &ferr) {
				return newError(c, 502, "feed_unavailable", "location feed could not be loaded")
			}
			return errInternal(c, err.Error())
		}

		pg := NewPagination(c.QueryInt("offset", 0), c.QueryInt("limit", usecases.MaxRecords), len(records), usecases.MaxRecords)
		start, end := pg.Bounds()
		page := records[start:end]

		SetLinkHeaders(c, pg)
		return c.JSON(PaginatedResponse{Data: page, Pagination: pg})
	}
}

func markersGeoJSON(markers []domain.MarkerHandle) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	for _, m := range markers {
		if !m.Attached {
			continue
		}
		f := geojson.NewFeature(orb.Point{m.Position.Lng, m.Position.Lat})
		f.ID = m.ID
		f.Properties["title"] = m.Title
		f.Properties["name"] = m.Popup.Name
		f.Properties["address"] = m.Popup.Address
		f.Properties["rack_owner"] = m.Popup.RackOwner
		f.Properties["rack_type"] = m.Popup.RackType
		f.Properties["total_capacity"] = m.Popup.TotalCapacity
		f.Properties["covered"] = m.Popup.Covered
		f.Properties["nearby_lighting"] = m.Popup.NearbyLighting
		fc.Append(f)
	}
	return fc
}

func routeGeoJSON(r *domain.RouteResult) *geojson.Feature {
	ls := make(orb.LineString, 0, len(r.Path))
	for _, p := range r.Path {
		ls = append(ls, orb.Point{p.Lng, p.Lat})
	}
	f := geojson.NewFeature(ls)
	f.Properties["destination_id"] = r.DestinationID
	f.Properties["mode"] = string(r.Mode)
	f.Properties["distance_meters"] = r.DistanceMeters
	f.Properties["duration_seconds"] = r.DurationSeconds
	return f
}
