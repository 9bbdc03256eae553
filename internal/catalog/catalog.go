package catalog

import (
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"transitcat/internal/distance"
)

// ErrInvalidConfiguration is returned (wrapped with the rule that
// tripped, for operator-facing logs) when a batch of PostRequests fails
// semantic validation.
var ErrInvalidConfiguration = errors.New("invalid configuration")

// Catalog is the immutable, validated collection of stops and buses built
// from a batch of PostRequests. Once New returns successfully nothing in
// a Catalog is ever mutated again.
type Catalog struct {
	stops map[string]*Stop
	buses map[string]*Bus
}

// New validates requests and builds a Catalog. On any validation failure
// it returns (nil, error wrapping ErrInvalidConfiguration) and constructs
// nothing — there are no partial catalogs.
func New(requests []PostRequest, logger *slog.Logger) (*Catalog, error) {
	if logger == nil {
		logger = slog.Default()
	}

	stopReqs, busReqs, err := partition(requests)
	if err != nil {
		return nil, err
	}

	if err := validate(stopReqs, busReqs); err != nil {
		return nil, err
	}

	c := &Catalog{
		stops: make(map[string]*Stop, len(stopReqs)),
		buses: make(map[string]*Bus, len(busReqs)),
	}

	// Canonicalize distances in request order: explicit wins, and the
	// direction not yet explicitly set inherits the first explicit value.
	explicit := make(map[[2]string]bool)
	for _, req := range stopReqs {
		c.ensureStop(req.Stop).Coords = req.Coords
		for to, meters := range req.Distances {
			c.addDistance(req.Stop, to, meters, explicit)
		}
	}

	for _, req := range busReqs {
		c.addBus(req.Bus, req.Stops)
	}

	c.computeDerivedMetrics()

	logger.Info("catalog built", "stops", len(c.stops), "buses", len(c.buses))
	return c, nil
}

func partition(requests []PostRequest) ([]PostStopRequest, []PostBusRequest, error) {
	var stopReqs []PostStopRequest
	var busReqs []PostBusRequest
	for _, r := range requests {
		switch v := r.(type) {
		case PostStopRequest:
			stopReqs = append(stopReqs, v)
		case PostBusRequest:
			busReqs = append(busReqs, v)
		default:
			return nil, nil, fmt.Errorf("%w: unknown request type %T", ErrInvalidConfiguration, r)
		}
	}
	return stopReqs, busReqs, nil
}

// validate enforces stop/bus declaration rules: no duplicate names,
// coordinates in range, and every distance or route reference resolves to
// a declared stop.
func validate(stopReqs []PostStopRequest, busReqs []PostBusRequest) error {
	declaredStops := make(map[string]bool, len(stopReqs))
	for _, s := range stopReqs {
		if declaredStops[s.Stop] {
			return fmt.Errorf("%w: duplicate stop %q", ErrInvalidConfiguration, s.Stop)
		}
		declaredStops[s.Stop] = true
	}

	for _, s := range stopReqs {
		if !s.Coords.valid() {
			return fmt.Errorf("%w: stop %q coordinates out of range", ErrInvalidConfiguration, s.Stop)
		}
		for to := range s.Distances {
			if !declaredStops[to] {
				return fmt.Errorf("%w: stop %q has distance to undeclared stop %q", ErrInvalidConfiguration, s.Stop, to)
			}
		}
	}

	declaredBuses := make(map[string]bool, len(busReqs))
	for _, b := range busReqs {
		if declaredBuses[b.Bus] {
			return fmt.Errorf("%w: duplicate bus %q", ErrInvalidConfiguration, b.Bus)
		}
		declaredBuses[b.Bus] = true
		for _, stop := range b.Stops {
			if !declaredStops[stop] {
				return fmt.Errorf("%w: bus %q references undeclared stop %q", ErrInvalidConfiguration, b.Bus, stop)
			}
		}
	}
	return nil
}

func (c *Catalog) ensureStop(name string) *Stop {
	s, ok := c.stops[name]
	if !ok {
		s = &Stop{Name: name, Distances: make(map[string]int)}
		c.stops[name] = s
	}
	return s
}

// addDistance assigns from->to unconditionally, then fills in to->from
// only if it has not already been set explicitly by an earlier request.
func (c *Catalog) addDistance(from, to string, meters int, explicit map[[2]string]bool) {
	c.ensureStop(from).Distances[to] = meters
	explicit[[2]string{from, to}] = true

	if !explicit[[2]string{to, from}] {
		c.ensureStop(to).Distances[from] = meters
	}
}

func (c *Catalog) addBus(name string, stops []string) {
	for _, stop := range stops {
		c.ensureStop(stop).Buses = append(c.ensureStop(stop).Buses, name)
	}
	c.buses[name] = &Bus{Name: name, Stops: append([]string(nil), stops...)}
}

// computeDerivedMetrics fills in the per-bus metrics and per-stop sorted
// bus lists. Run once, after all requests are absorbed.
func (c *Catalog) computeDerivedMetrics() {
	src := c // *Catalog implements distance.StopSource below
	for _, bus := range c.buses {
		bus.GeoLength = distance.GeoDistance(bus.Stops, src)
		bus.RoadLength = distance.RoadDistance(bus.Stops, src)
		bus.UniqueStopCount = uniqueCount(bus.Stops)
		if bus.GeoLength > 0 {
			bus.Curvature = bus.RoadLength / bus.GeoLength
		}
	}
	for _, stop := range c.stops {
		stop.Buses = sortUnique(stop.Buses)
	}
}

func uniqueCount(stops []string) int {
	seen := make(map[string]struct{}, len(stops))
	for _, s := range stops {
		seen[s] = struct{}{}
	}
	return len(seen)
}

func sortUnique(in []string) []string {
	if len(in) == 0 {
		return nil
	}
	cp := append([]string(nil), in...)
	sort.Strings(cp)
	out := cp[:1]
	for _, s := range cp[1:] {
		if s != out[len(out)-1] {
			out = append(out, s)
		}
	}
	return out
}

// Coords implements distance.StopSource.
func (c *Catalog) Coords(name string) (lat, lon float64, ok bool) {
	s, ok := c.stops[name]
	if !ok {
		return 0, 0, false
	}
	return s.Coords.Latitude, s.Coords.Longitude, true
}

// RoadLeg implements distance.StopSource.
func (c *Catalog) RoadLeg(from, to string) (meters float64, ok bool) {
	s, ok := c.stops[from]
	if !ok {
		return 0, false
	}
	d, ok := s.Distances[to]
	return float64(d), ok
}

// Stop returns the canonical stop entity, or (nil, false) if unknown.
func (c *Catalog) Stop(name string) (*Stop, bool) {
	s, ok := c.stops[name]
	return s, ok
}

// Bus returns the canonical bus entity, or (nil, false) if unknown.
func (c *Catalog) Bus(name string) (*Bus, bool) {
	b, ok := c.buses[name]
	return b, ok
}

// Stops returns the full stop table.
func (c *Catalog) Stops() map[string]*Stop {
	return c.stops
}

// Buses returns the full bus table.
func (c *Catalog) Buses() map[string]*Bus {
	return c.buses
}

// StopNames implements routegraph.StopSet.
func (c *Catalog) StopNames() []string {
	names := make([]string, 0, len(c.stops))
	for name := range c.stops {
		names = append(names, name)
	}
	return names
}

// BusRoutes implements routegraph.StopSet.
func (c *Catalog) BusRoutes() map[string][]string {
	routes := make(map[string][]string, len(c.buses))
	for name, bus := range c.buses {
		routes[name] = bus.Stops
	}
	return routes
}
