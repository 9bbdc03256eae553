// Package query is the response façade over catalog and router: it
// tags every request and response with a caller-supplied id, exactly the
// way a batch of stat_requests is answered in order, and is the only
// layer a caller (CLI batch mode, HTTP handler) needs to talk to.
package query

import (
	"errors"
	"log/slog"

	"transitcat/internal/catalog"
	"transitcat/internal/router"
)

// ErrNotFound marks a query-time miss (unknown bus, unknown stop, or no
// route). It is never logged as an error — misses are an expected,
// routine outcome, not a fault.
var ErrNotFound = errors.New("not found")

// Request is the tagged union of queries the façade accepts. Only
// BusRequest, StopRequest, RouteRequest, and MapRequest implement it.
type Request interface {
	isRequest()
	RequestID() int
}

// BusRequest asks for a bus's route metrics.
type BusRequest struct {
	ID  int
	Bus string
}

func (BusRequest) isRequest()    {}
func (r BusRequest) RequestID() int { return r.ID }

// StopRequest asks for the buses serving a stop.
type StopRequest struct {
	ID   int
	Stop string
}

func (StopRequest) isRequest()    {}
func (r StopRequest) RequestID() int { return r.ID }

// RouteRequest asks for the least-time itinerary between two stops.
type RouteRequest struct {
	ID   int
	From string
	To   string
}

func (RouteRequest) isRequest()    {}
func (r RouteRequest) RequestID() int { return r.ID }

// MapRequest asks for a rendered map. Rendering is an external
// collaborator this repo does not implement; the façade always answers
// it with an Unsupported response.
type MapRequest struct {
	ID int
}

func (MapRequest) isRequest()    {}
func (r MapRequest) RequestID() int { return r.ID }

// Response is the tagged union of query results. Every variant carries
// the id of the request it answers.
type Response interface {
	isResponse()
	ResponseID() int
}

// BusResponse answers a BusRequest. Found is false, and the rest of the
// fields are zero, when the bus is unknown.
type BusResponse struct {
	ID              int
	Found           bool
	StopCount       int
	UniqueStopCount int
	Length          float64
	Curvature       float64
}

func (BusResponse) isResponse()    {}
func (r BusResponse) ResponseID() int { return r.ID }

// StopResponse answers a StopRequest. Found is false when the stop is
// unknown; Buses is empty (not Found=false) when the stop exists but no
// bus serves it.
type StopResponse struct {
	ID    int
	Found bool
	Buses []string
}

func (StopResponse) isResponse()    {}
func (r StopResponse) ResponseID() int { return r.ID }

// RouteResponse answers a RouteRequest. Found is false when either stop
// is unknown or no path exists between them.
type RouteResponse struct {
	ID    int
	Found bool
	Info  *catalog.RouteInfo
}

func (RouteResponse) isResponse()    {}
func (r RouteResponse) ResponseID() int { return r.ID }

// MapResponse answers a MapRequest with a fixed "unsupported" marker.
type MapResponse struct {
	ID          int
	Unsupported bool
}

func (MapResponse) isResponse()    {}
func (r MapResponse) ResponseID() int { return r.ID }

// Facade answers queries against a built catalog and router. Both
// collaborators are immutable once constructed, so a Facade is safe for
// concurrent use without any locking of its own.
type Facade struct {
	catalog *catalog.Catalog
	router  *router.Router
	cache   Cache
	logger  *slog.Logger
}

// New builds a Facade. cache may be nil, in which case every query
// bypasses caching (used in tests and whenever the cache is disabled in
// configuration).
func New(c *catalog.Catalog, r *router.Router, cache Cache, logger *slog.Logger) *Facade {
	if logger == nil {
		logger = slog.Default()
	}
	return &Facade{catalog: c, router: r, cache: cache, logger: logger}
}

// Run answers a batch of requests in order, preserving each request's id
// on its corresponding response (mirrors a stat_requests batch being
// answered as a single ordered response list).
func (f *Facade) Run(requests []Request) []Response {
	responses := make([]Response, len(requests))
	for i, req := range requests {
		responses[i] = f.answer(req)
	}
	return responses
}

func (f *Facade) answer(req Request) Response {
	switch r := req.(type) {
	case BusRequest:
		return f.GetBus(r.ID, r.Bus)
	case StopRequest:
		return f.GetStop(r.ID, r.Stop)
	case RouteRequest:
		return f.GetRoute(r.ID, r.From, r.To)
	case MapRequest:
		return f.GetMap(r.ID)
	default:
		panic("query: unknown request type")
	}
}

// GetBus returns a bus's route metrics, or Found=false if the bus is
// unknown.
func (f *Facade) GetBus(id int, name string) BusResponse {
	if f.cache != nil {
		if cached, ok := f.cache.GetBus(name); ok {
			cached.ID = id
			return cached
		}
	}

	bus, ok := f.catalog.Bus(name)
	if !ok {
		return BusResponse{ID: id, Found: false}
	}

	resp := BusResponse{
		ID:              id,
		Found:           true,
		StopCount:       len(bus.Stops),
		UniqueStopCount: bus.UniqueStopCount,
		Length:          bus.RoadLength,
		Curvature:       bus.Curvature,
	}
	if f.cache != nil {
		f.cache.SetBus(name, resp)
	}
	return resp
}

// GetStop returns the sorted, de-duplicated buses serving a stop, or
// Found=false if the stop is unknown.
func (f *Facade) GetStop(id int, name string) StopResponse {
	if f.cache != nil {
		if cached, ok := f.cache.GetStop(name); ok {
			cached.ID = id
			return cached
		}
	}

	stop, ok := f.catalog.Stop(name)
	if !ok {
		return StopResponse{ID: id, Found: false}
	}

	resp := StopResponse{ID: id, Found: true, Buses: stop.Buses}
	if f.cache != nil {
		f.cache.SetStop(name, resp)
	}
	return resp
}

// GetRoute returns the least-time itinerary between two stops, or
// Found=false if either stop is unknown or no path exists.
func (f *Facade) GetRoute(id int, from, to string) RouteResponse {
	if f.cache != nil {
		if cached, ok := f.cache.GetRoute(from, to); ok {
			cached.ID = id
			return cached
		}
	}

	info, err := f.router.FindRoute(from, to)
	if err != nil {
		f.logger.Debug("route query missed", "from", from, "to", to, "err", err)
		return RouteResponse{ID: id, Found: false}
	}
	if info == nil {
		return RouteResponse{ID: id, Found: false}
	}

	resp := RouteResponse{ID: id, Found: true, Info: info}
	if f.cache != nil {
		f.cache.SetRoute(from, to, resp)
	}
	return resp
}

// GetMap always answers Unsupported: map rendering is not implemented by
// this engine.
func (f *Facade) GetMap(id int) MapResponse {
	return MapResponse{ID: id, Unsupported: true}
}
