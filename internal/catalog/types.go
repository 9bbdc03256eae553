// Package catalog implements the transport-catalog core: ingestion,
// validation, and canonical stop/bus entities.
package catalog

import (
	"encoding/json"
	"fmt"
)

// Coordinates is a geographic point in degrees.
type Coordinates struct {
	Latitude  float64
	Longitude float64
}

const (
	minLatitude  = -90.0
	maxLatitude  = 90.0
	minLongitude = -180.0
	maxLongitude = 180.0
)

func (c Coordinates) valid() bool {
	return c.Latitude >= minLatitude && c.Latitude <= maxLatitude &&
		c.Longitude >= minLongitude && c.Longitude <= maxLongitude
}

// PostRequest is the tagged union of ingestion requests the catalog
// accepts. Only PostStopRequest and PostBusRequest implement it.
type PostRequest interface {
	isPostRequest()
}

// PostStopRequest declares a stop and its measured road distances to
// neighboring stops.
type PostStopRequest struct {
	Stop      string
	Coords    Coordinates
	Distances map[string]int // neighbor stop name -> meters
}

func (PostStopRequest) isPostRequest() {}

// PostBusRequest declares a bus and its stop sequence. Round-trip vs.
// linear normalization has already happened by the time the catalog sees
// this — see internal/ingest.
type PostBusRequest struct {
	Bus   string
	Stops []string
}

func (PostBusRequest) isPostRequest() {}

// RoutingSettings parameterizes the routing graph builder.
type RoutingSettings struct {
	BusWaitTime int     // minutes, >= 0
	BusVelocity float64 // km/h, > 0
}

// Stop is a canonical, immutable stop entity.
type Stop struct {
	Name      string
	Coords    Coordinates
	Distances map[string]int // canonicalized road distances to neighbors
	Buses     []string       // sorted, de-duplicated
}

// Bus is a canonical, immutable bus entity.
type Bus struct {
	Name            string
	Stops           []string // normalized route, first == last
	UniqueStopCount int
	RoadLength      float64
	GeoLength       float64
	Curvature       float64 // RoadLength / GeoLength; unspecified if GeoLength == 0
}

// RouteItem is the tagged union of itinerary steps.
type RouteItem interface {
	isRouteItem()
}

// WaitItem models waiting at a stop for a bus to depart.
type WaitItem struct {
	Stop string
	Time int // minutes, truncated from the wait edge weight
}

func (WaitItem) isRouteItem() {}

// MarshalJSON tags the wire form with "type":"Wait" so a RouteInfo's
// Items round-trip through JSON without losing their concrete type.
func (w WaitItem) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Type string `json:"type"`
		Stop string `json:"stop_name"`
		Time int    `json:"time"`
	}{Type: "Wait", Stop: w.Stop, Time: w.Time})
}

// RoadItem models riding a bus for a number of consecutive stops.
type RoadItem struct {
	Bus       string
	Time      float64 // minutes
	SpanCount int
}

func (RoadItem) isRouteItem() {}

// MarshalJSON tags the wire form with "type":"Bus".
func (r RoadItem) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Type      string  `json:"type"`
		Bus       string  `json:"bus"`
		Time      float64 `json:"time"`
		SpanCount int     `json:"span_count"`
	}{Type: "Bus", Bus: r.Bus, Time: r.Time, SpanCount: r.SpanCount})
}

// RouteInfo is a full itinerary: total time plus the ordered steps.
type RouteInfo struct {
	Time  float64
	Items []RouteItem
}

// MarshalJSON flattens Items under their own tagging (each element
// already encodes "type"), matching the shape a batch query response
// uses on the wire.
func (r RouteInfo) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Time  float64     `json:"total_time"`
		Items []RouteItem `json:"items"`
	}{Time: r.Time, Items: r.Items})
}

// UnmarshalJSON reconstructs Items by dispatching on each element's
// "type" field, the inverse of MarshalJSON. Used when a cached
// RouteResponse is read back from storage.
func (r *RouteInfo) UnmarshalJSON(data []byte) error {
	var wire struct {
		Time  float64           `json:"total_time"`
		Items []json.RawMessage `json:"items"`
	}
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}

	items := make([]RouteItem, 0, len(wire.Items))
	for _, raw := range wire.Items {
		var tagged struct {
			Type string `json:"type"`
		}
		if err := json.Unmarshal(raw, &tagged); err != nil {
			return err
		}
		switch tagged.Type {
		case "Wait":
			var w struct {
				Stop string `json:"stop_name"`
				Time int    `json:"time"`
			}
			if err := json.Unmarshal(raw, &w); err != nil {
				return err
			}
			items = append(items, WaitItem{Stop: w.Stop, Time: w.Time})
		case "Bus":
			var b struct {
				Bus       string  `json:"bus"`
				Time      float64 `json:"time"`
				SpanCount int     `json:"span_count"`
			}
			if err := json.Unmarshal(raw, &b); err != nil {
				return err
			}
			items = append(items, RoadItem{Bus: b.Bus, Time: b.Time, SpanCount: b.SpanCount})
		default:
			return fmt.Errorf("catalog: unknown route item type %q", tagged.Type)
		}
	}

	r.Time = wire.Time
	r.Items = items
	return nil
}

