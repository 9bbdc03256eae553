// Package ingest adapts external request formats into catalog.PostRequest
// batches and query.Request batches. The core never sees either format —
// these adapters are the parser, an external collaborator to the engine.
package ingest

import (
	"encoding/json"
	"fmt"
	"io"

	"transitcat/internal/catalog"
	"transitcat/internal/query"
)

// Envelope is the top-level JSON document a batch ingest run reads: a
// list of base_requests that build the catalog, a routing_settings
// block, and a list of stat_requests answered against it once built.
type Envelope struct {
	BaseRequests    []catalog.PostRequest
	RoutingSettings catalog.RoutingSettings
	StatRequests    []query.Request
}

// wireBaseRequest is the JSON shape of one base_requests element, tagged
// by "type": "Stop" or "Bus".
type wireBaseRequest struct {
	Type string `json:"type"`

	// Stop fields
	Name          string         `json:"name"`
	Latitude      float64        `json:"latitude"`
	Longitude     float64        `json:"longitude"`
	RoadDistances map[string]int `json:"road_distances"`

	// Bus fields
	Stops       []string `json:"stops"`
	IsRoundtrip bool     `json:"is_roundtrip"`
}

// wireStatRequest is the JSON shape of one stat_requests element, tagged
// by "type": "Stop", "Bus", "Route", or "Map".
type wireStatRequest struct {
	ID   int    `json:"id"`
	Type string `json:"type"`
	Name string `json:"name"`
	From string `json:"from"`
	To   string `json:"to"`
}

type wireRoutingSettings struct {
	BusWaitTime int     `json:"bus_wait_time"`
	BusVelocity float64 `json:"bus_velocity"`
}

type wireEnvelope struct {
	BaseRequests    []wireBaseRequest   `json:"base_requests"`
	RoutingSettings wireRoutingSettings `json:"routing_settings"`
	StatRequests    []wireStatRequest   `json:"stat_requests"`
}

// DecodeJSON reads a {base_requests, routing_settings, stat_requests}
// envelope. Bus routes are normalized here (round-trip sequences pass
// through unchanged; a declared-linear sequence is expanded to its
// round-trip form by appending the reverse of the sequence minus its
// last stop) so the catalog only ever sees already-normalized routes.
func DecodeJSON(r io.Reader) (*Envelope, error) {
	var wire wireEnvelope
	if err := json.NewDecoder(r).Decode(&wire); err != nil {
		return nil, fmt.Errorf("decode request envelope: %w", err)
	}

	base := make([]catalog.PostRequest, 0, len(wire.BaseRequests))
	for i, req := range wire.BaseRequests {
		parsed, err := parseBaseRequest(req)
		if err != nil {
			return nil, fmt.Errorf("base_requests[%d]: %w", i, err)
		}
		base = append(base, parsed)
	}

	stat := make([]query.Request, 0, len(wire.StatRequests))
	for i, req := range wire.StatRequests {
		parsed, err := parseStatRequest(req)
		if err != nil {
			return nil, fmt.Errorf("stat_requests[%d]: %w", i, err)
		}
		stat = append(stat, parsed)
	}

	return &Envelope{
		BaseRequests: base,
		RoutingSettings: catalog.RoutingSettings{
			BusWaitTime: wire.RoutingSettings.BusWaitTime,
			BusVelocity: wire.RoutingSettings.BusVelocity,
		},
		StatRequests: stat,
	}, nil
}

func parseBaseRequest(req wireBaseRequest) (catalog.PostRequest, error) {
	switch req.Type {
	case "Stop":
		return catalog.PostStopRequest{
			Stop:      req.Name,
			Coords:    catalog.Coordinates{Latitude: req.Latitude, Longitude: req.Longitude},
			Distances: req.RoadDistances,
		}, nil
	case "Bus":
		if len(req.Stops) < 2 {
			return nil, fmt.Errorf("bus %q needs at least two stops", req.Name)
		}
		return catalog.PostBusRequest{
			Bus:   req.Name,
			Stops: NormalizeRoute(req.Stops, req.IsRoundtrip),
		}, nil
	default:
		return nil, fmt.Errorf("unknown base request type %q", req.Type)
	}
}

// NormalizeRoute expands a declared-linear route into its round-trip
// stop sequence. A round-trip route (first == last already) is returned
// unchanged.
func NormalizeRoute(stops []string, isRoundtrip bool) []string {
	if isRoundtrip {
		return append([]string(nil), stops...)
	}

	normalized := append([]string(nil), stops...)
	for i := len(stops) - 2; i >= 0; i-- {
		normalized = append(normalized, stops[i])
	}
	return normalized
}

func parseStatRequest(req wireStatRequest) (query.Request, error) {
	switch req.Type {
	case "Bus":
		return query.BusRequest{ID: req.ID, Bus: req.Name}, nil
	case "Stop":
		return query.StopRequest{ID: req.ID, Stop: req.Name}, nil
	case "Route":
		return query.RouteRequest{ID: req.ID, From: req.From, To: req.To}, nil
	case "Map":
		return query.MapRequest{ID: req.ID}, nil
	default:
		return nil, fmt.Errorf("unknown stat request type %q", req.Type)
	}
}
