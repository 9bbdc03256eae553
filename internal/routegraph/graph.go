// Package routegraph builds a time-expanded directed weighted graph: two
// vertices per stop (arrive/depart), one wait edge per stop, and one edge
// per bus per (i, j) stop-index pair along its route.
package routegraph

import (
	"sort"

	"transitcat/internal/distance"
)

// EdgeTag classifies an edge for itinerary reconstruction. Only WaitTag
// and RoadTag implement it.
type EdgeTag interface {
	isEdgeTag()
}

// WaitTag marks the arrive(stop) -> depart(stop) boarding-wait edge.
type WaitTag struct {
	Stop string
}

func (WaitTag) isEdgeTag() {}

// RoadTag marks a depart(r_i) -> arrive(r_j) single-bus-leg edge.
type RoadTag struct {
	Bus       string
	SpanCount int
}

func (RoadTag) isEdgeTag() {}

// Edge is one directed, weighted edge of the graph.
type Edge struct {
	From, To int
	Weight   float64
	Tag      EdgeTag
}

// Graph is the time-expanded routing graph: VertexCount vertices and a
// flat, edge-id-indexed Edges slice.
type Graph struct {
	VertexCount int
	Edges       []Edge

	stopIDs   map[string]int
	stopNames []string
}

// StopSet is the minimal read-only view the builder needs from the
// catalog: the set of stop names and, per bus, its normalized stop
// sequence. Kept separate from catalog.Catalog so this package does not
// need to import it.
type StopSet interface {
	StopNames() []string
	BusRoutes() map[string][]string // bus name -> normalized stop sequence
}

func arriveVertex(stopID int) int { return stopID * 2 }
func departVertex(stopID int) int { return stopID*2 + 1 }

// StopID returns the internal numeric id assigned to a stop name, used to
// address ArriveVertex. ok is false for unknown stops.
func (g *Graph) StopID(name string) (id int, ok bool) {
	id, ok = g.stopIDs[name]
	return id, ok
}

// ArriveVertex returns the "just arrived at stop" vertex id.
func (g *Graph) ArriveVertex(stopID int) int { return arriveVertex(stopID) }

// StopName returns the name of the stop with the given stop id.
func (g *Graph) StopName(stopID int) string { return g.stopNames[stopID] }

// Build constructs the graph. Stops are assigned ids in sorted-name order
// and buses are processed in sorted-name order so that edge ids — and
// therefore the router's tie-break choices — are reproducible across runs.
func Build(stops StopSet, src distance.StopSource, settings Settings) *Graph {
	stopNames := append([]string(nil), stops.StopNames()...)
	sort.Strings(stopNames)

	g := &Graph{
		VertexCount: len(stopNames) * 2,
		stopIDs:     make(map[string]int, len(stopNames)),
		stopNames:   stopNames,
	}

	for id, name := range stopNames {
		g.stopIDs[name] = id
		g.Edges = append(g.Edges, Edge{
			From:   arriveVertex(id),
			To:     departVertex(id),
			Weight: float64(settings.BusWaitTime),
			Tag:    WaitTag{Stop: name},
		})
	}

	routes := stops.BusRoutes()
	busNames := make([]string, 0, len(routes))
	for bus := range routes {
		busNames = append(busNames, bus)
	}
	sort.Strings(busNames)

	metersPerMinute := settings.BusVelocity * 1000 / 60
	for _, bus := range busNames {
		route := routes[bus]
		for i := 0; i+1 < len(route); i++ {
			depart := departVertex(g.stopIDs[route[i]])
			var cumulative float64
			for j := i + 1; j < len(route); j++ {
				cumulative += distance.RoadLeg(route[j-1], route[j], src)
				arrive := arriveVertex(g.stopIDs[route[j]])
				g.Edges = append(g.Edges, Edge{
					From:   depart,
					To:     arrive,
					Weight: cumulative / metersPerMinute,
					Tag:    RoadTag{Bus: bus, SpanCount: j - i},
				})
			}
		}
	}

	return g
}

// Settings mirrors catalog.RoutingSettings without importing catalog.
type Settings struct {
	BusWaitTime int
	BusVelocity float64
}
