// Package router implements the shortest-path engine: a precomputed
// Floyd-Warshall all-pairs table over the time-expanded graph, plus
// itinerary reconstruction into catalog.RouteInfo values.
package router

import (
	"errors"
	"math"

	"transitcat/internal/catalog"
	"transitcat/internal/routegraph"
)

// ErrUnknownStop is returned by FindRoute when either endpoint is not a
// stop in the graph.
var ErrUnknownStop = errors.New("unknown stop")

// Router answers single-pair shortest-path queries over a built graph.
// It is immutable and safe for concurrent read-only use once New returns.
type Router struct {
	graph *routegraph.Graph

	// dist[u][v] and nextEdge[u][v] form the Floyd-Warshall table: the
	// minimum weight from u to v, and the id of an edge on some
	// minimum-weight u->v path (specifically, the first edge of that
	// path — route reconstruction walks it forward).
	dist     [][]float64
	nextEdge [][]int // -1 means "no path" / "u == v, no edge needed"
}

const noEdge = -1

// New builds the all-pairs table from a catalog and routing settings.
// Runs in O(V^3) where V = 2 * number of stops.
func New(c *catalog.Catalog, settings catalog.RoutingSettings) *Router {
	graph := routegraph.Build(c, c, routegraph.Settings{
		BusWaitTime: settings.BusWaitTime,
		BusVelocity: settings.BusVelocity,
	})

	n := graph.VertexCount
	dist := make([][]float64, n)
	nextEdge := make([][]int, n)
	for i := range dist {
		dist[i] = make([]float64, n)
		nextEdge[i] = make([]int, n)
		for j := range dist[i] {
			if i == j {
				dist[i][j] = 0
			} else {
				dist[i][j] = math.Inf(1)
			}
			nextEdge[i][j] = noEdge
		}
	}

	// Initialize with the minimum-weight edge for each (u, v) pair that
	// has at least one direct edge — several parallel edges can connect
	// the same pair (e.g. a bus passing a stop twice on a round trip).
	for id, e := range graph.Edges {
		if e.Weight < dist[e.From][e.To] {
			dist[e.From][e.To] = e.Weight
			nextEdge[e.From][e.To] = id
		}
	}

	// Relaxation order is fixed (k, then u, then v, all ascending) so
	// that ties are broken identically across runs.
	for k := 0; k < n; k++ {
		for u := 0; u < n; u++ {
			if math.IsInf(dist[u][k], 1) {
				continue
			}
			for v := 0; v < n; v++ {
				alt := dist[u][k] + dist[k][v]
				if alt < dist[u][v] {
					dist[u][v] = alt
					nextEdge[u][v] = nextEdge[u][k]
				}
			}
		}
	}

	return &Router{graph: graph, dist: dist, nextEdge: nextEdge}
}

// FindRoute returns the least-time itinerary from "from" to "to".
// Returns ErrUnknownStop if either stop is not in the graph, (nil, nil) if
// no path exists, and otherwise a *catalog.RouteInfo.
func (r *Router) FindRoute(from, to string) (*catalog.RouteInfo, error) {
	fromID, ok := r.graph.StopID(from)
	if !ok {
		return nil, ErrUnknownStop
	}
	toID, ok := r.graph.StopID(to)
	if !ok {
		return nil, ErrUnknownStop
	}

	fromVertex := r.graph.ArriveVertex(fromID)
	toVertex := r.graph.ArriveVertex(toID)

	if fromVertex == toVertex {
		return &catalog.RouteInfo{Time: 0, Items: nil}, nil
	}

	if math.IsInf(r.dist[fromVertex][toVertex], 1) {
		return nil, nil
	}

	var items []catalog.RouteItem
	v := fromVertex
	for v != toVertex {
		edgeID := r.nextEdge[v][toVertex]
		edge := r.graph.Edges[edgeID]
		items = append(items, toRouteItem(edge))
		v = edge.To
	}

	return &catalog.RouteInfo{Time: r.dist[fromVertex][toVertex], Items: items}, nil
}

func toRouteItem(edge routegraph.Edge) catalog.RouteItem {
	switch tag := edge.Tag.(type) {
	case routegraph.WaitTag:
		return catalog.WaitItem{Stop: tag.Stop, Time: int(edge.Weight)}
	case routegraph.RoadTag:
		return catalog.RoadItem{Bus: tag.Bus, Time: edge.Weight, SpanCount: tag.SpanCount}
	default:
		panic("router: unknown edge tag")
	}
}
