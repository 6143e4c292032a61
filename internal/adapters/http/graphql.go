package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/graphql-go/graphql"

	"github.com/samirrijal/bikepark/internal/core/domain"
	"github.com/samirrijal/bikepark/internal/core/usecases"
)

// buildSchema creates the read-only GraphQL schema over locations and sessions.
func buildSchema(deps *Dependencies) (graphql.Schema, error) {
	geoPointType := graphql.NewObject(graphql.ObjectConfig{
		Name: "GeoPoint",
		Fields: graphql.Fields{
			"lat": &graphql.Field{Type: graphql.Float},
			"lng": &graphql.Field{Type: graphql.Float},
		},
	})

	locationType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Location",
		Fields: graphql.Fields{
			"id":              &graphql.Field{Type: graphql.String},
			"coordinates":     &graphql.Field{Type: geoPointType},
			"name":            &graphql.Field{Type: graphql.String},
			"address":         &graphql.Field{Type: graphql.String},
			"rack_owner":      &graphql.Field{Type: graphql.String},
			"total_capacity":  &graphql.Field{Type: graphql.String},
			"covered":         &graphql.Field{Type: graphql.String},
			"rack_type":       &graphql.Field{Type: graphql.String},
			"nearby_lighting": &graphql.Field{Type: graphql.String},
		},
	})

	popupContentType := graphql.NewObject(graphql.ObjectConfig{
		Name: "PopupContent",
		Fields: graphql.Fields{
			"name":            &graphql.Field{Type: graphql.String},
			"address":         &graphql.Field{Type: graphql.String},
			"rack_owner":      &graphql.Field{Type: graphql.String},
			"rack_type":       &graphql.Field{Type: graphql.String},
			"total_capacity":  &graphql.Field{Type: graphql.String},
			"covered":         &graphql.Field{Type: graphql.String},
			"nearby_lighting": &graphql.Field{Type: graphql.String},
		},
	})

	markerType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Marker",
		Fields: graphql.Fields{
			"id":       &graphql.Field{Type: graphql.String},
			"position": &graphql.Field{Type: geoPointType},
			"title":    &graphql.Field{Type: graphql.String},
			"attached": &graphql.Field{Type: graphql.Boolean},
			"popup":    &graphql.Field{Type: popupContentType},
		},
	})

	selectionType := graphql.NewObject(graphql.ObjectConfig{
		Name: "SelectionEntry",
		Fields: graphql.Fields{
			"id":    &graphql.Field{Type: graphql.String},
			"label": &graphql.Field{Type: graphql.String},
		},
	})

	userPinType := graphql.NewObject(graphql.ObjectConfig{
		Name: "UserPin",
		Fields: graphql.Fields{
			"position": &graphql.Field{Type: geoPointType},
			"source": &graphql.Field{
				Type: graphql.String,
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					if pin, ok := p.Source.(*domain.UserPin); ok {
						return string(pin.Source), nil
					}
					return nil, nil
				},
			},
			"query":             &graphql.Field{Type: graphql.String},
			"formatted_address": &graphql.Field{Type: graphql.String},
		},
	})

	sessionType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Session",
		Fields: graphql.Fields{
			"id":         &graphql.Field{Type: graphql.String},
			"markers":    &graphql.Field{Type: graphql.NewList(markerType)},
			"selection":  &graphql.Field{Type: graphql.NewList(selectionType)},
			"user_pin":   &graphql.Field{Type: userPinType},
			"feed_error": &graphql.Field{Type: graphql.String},
		},
	})

	queryType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Query",
		Fields: graphql.Fields{
			"locations": &graphql.Field{
				Type:        graphql.NewList(locationType),
				Description: "Bike-parking locations from the feed",
				Args: graphql.FieldConfigArgument{
					"lit_only": &graphql.ArgumentConfig{Type: graphql.Boolean, DefaultValue: false},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					records, err := deps.Locations.Load(p.Context, deps.FeedURL)
					if err != nil {
						return nil, err
					}
					if litOnly, _ := p.Args["lit_only"].(bool); litOnly {
						lit := make([]domain.LocationRecord, 0, len(records))
						for _, r := range records {
							if usecases.LitNearby(r) {
								lit = append(lit, r)
							}
						}
						return lit, nil
					}
					return records, nil
				},
			},
			"session": &graphql.Field{
				Type:        sessionType,
				Description: "Get an open map session by ID",
				Args: graphql.FieldConfigArgument{
					"id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					id := p.Args["id"].(string)
					view, err := deps.Sessions.Get(p.Context, id)
					if err != nil {
						return nil, err
					}
					return view, nil
				},
			},
		},
	})

	return graphql.NewSchema(graphql.SchemaConfig{
		Query: queryType,
	})
}

// GraphQLHandler serves the GraphQL endpoint.
func GraphQLHandler(deps *Dependencies) fiber.Handler {
	schema, err := buildSchema(deps)
	if err != nil {
		// This would be a programming error in the schema definition
		panic("graphql schema build: " + err.Error())
	}

	type gqlRequest struct {
		Query         string                 `json:"query"`
		OperationName string                 `json:"operationName"`
		Variables     map[string]interface{} `json:"variables"`
	}

	return func(c *fiber.Ctx) error {
		var req gqlRequest
		if err := c.BodyParser(&req); err != nil {
			return errBadRequest(c, "invalid request body")
		}

		result := graphql.Do(graphql.Params{
			Schema:         schema,
			RequestString:  req.Query,
			VariableValues: req.Variables,
			OperationName:  req.OperationName,
			Context:        c.UserContext(),
		})

		return c.JSON(result)
	}
}
