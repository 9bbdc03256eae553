package catalog

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Bus info for a round-trip route with one measured leg.
func TestNew_BusInfo(t *testing.T) {
	requests := []PostRequest{
		PostStopRequest{
			Stop:      "stop1",
			Coords:    Coordinates{Latitude: 55.611087, Longitude: 37.20829},
			Distances: map[string]int{"stop2": 3000},
		},
		PostStopRequest{
			Stop:   "stop2",
			Coords: Coordinates{Latitude: 55.595884, Longitude: 37.209755},
		},
		PostStopRequest{
			Stop:   "stop3",
			Coords: Coordinates{Latitude: 55.632761, Longitude: 37.333324},
		},
		PostBusRequest{
			Bus:   "Bus1",
			Stops: []string{"stop1", "stop2", "stop3", "stop2", "stop1"},
		},
	}

	c, err := New(requests, nil)
	require.NoError(t, err)

	bus, ok := c.Bus("Bus1")
	require.True(t, ok)
	assert.Len(t, bus.Stops, 5)
	assert.Equal(t, 3, bus.UniqueStopCount)
	assert.InDelta(t, 23553.5, bus.RoadLength, 5)
}

// An empty catalog reports no stops.
func TestNew_EmptyCatalog_StopMiss(t *testing.T) {
	c, err := New(nil, nil)
	require.NoError(t, err)

	_, ok := c.Stop("s")
	assert.False(t, ok)
}

// A stop with no buses is found and has an empty bus list.
func TestNew_StopWithNoBuses(t *testing.T) {
	requests := []PostRequest{
		PostStopRequest{Stop: "stop1", Coords: Coordinates{}},
	}
	c, err := New(requests, nil)
	require.NoError(t, err)

	stop, ok := c.Stop("stop1")
	require.True(t, ok)
	assert.Empty(t, stop.Buses)
}

// A duplicate bus name fails construction.
func TestNew_DuplicateBus_Fails(t *testing.T) {
	requests := []PostRequest{
		PostStopRequest{Stop: "a", Coords: Coordinates{}},
		PostBusRequest{Bus: "Bus1", Stops: []string{"a", "a", "a"}},
		PostBusRequest{Bus: "Bus1", Stops: []string{"a", "a", "a"}},
	}
	_, err := New(requests, nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidConfiguration))
}

func TestNew_DuplicateStop_Fails(t *testing.T) {
	requests := []PostRequest{
		PostStopRequest{Stop: "a", Coords: Coordinates{}},
		PostStopRequest{Stop: "a", Coords: Coordinates{}},
	}
	_, err := New(requests, nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidConfiguration))
}

func TestNew_BusReferencesUndeclaredStop_Fails(t *testing.T) {
	requests := []PostRequest{
		PostBusRequest{Bus: "Bus1", Stops: []string{"ghost", "ghost"}},
	}
	_, err := New(requests, nil)
	require.Error(t, err)
}

func TestNew_DistanceToUndeclaredStop_Fails(t *testing.T) {
	requests := []PostRequest{
		PostStopRequest{Stop: "a", Distances: map[string]int{"ghost": 100}},
	}
	_, err := New(requests, nil)
	require.Error(t, err)
}

func TestCoordinates_BoundaryValues(t *testing.T) {
	valid := []PostRequest{
		PostStopRequest{Stop: "a", Coords: Coordinates{Latitude: 90, Longitude: 180}},
		PostStopRequest{Stop: "b", Coords: Coordinates{Latitude: -90, Longitude: -180}},
	}
	_, err := New(valid, nil)
	require.NoError(t, err)

	invalid := []PostRequest{
		PostStopRequest{Stop: "a", Coords: Coordinates{Latitude: 90.0001, Longitude: 0}},
	}
	_, err = New(invalid, nil)
	require.Error(t, err)
}

// Symmetric distance fill-in: an explicit value in one direction is
// mirrored to the other only if that direction has no explicit value of
// its own.
func TestDistanceCanonicalization_SymmetricFillIn(t *testing.T) {
	requests := []PostRequest{
		PostStopRequest{Stop: "A", Distances: map[string]int{"B": 100}},
		PostStopRequest{Stop: "B"},
	}
	c, err := New(requests, nil)
	require.NoError(t, err)

	aToB, ok := c.RoadLeg("A", "B")
	require.True(t, ok)
	bToA, ok := c.RoadLeg("B", "A")
	require.True(t, ok)
	assert.Equal(t, 100.0, aToB)
	assert.Equal(t, 100.0, bToA)
}

func TestDistanceCanonicalization_ExplicitBothDirectionsStaysAsymmetric(t *testing.T) {
	requests := []PostRequest{
		PostStopRequest{Stop: "A", Distances: map[string]int{"B": 100}},
		PostStopRequest{Stop: "B", Distances: map[string]int{"A": 200}},
	}
	c, err := New(requests, nil)
	require.NoError(t, err)

	aToB, _ := c.RoadLeg("A", "B")
	bToA, _ := c.RoadLeg("B", "A")
	assert.Equal(t, 100.0, aToB)
	assert.Equal(t, 200.0, bToA)
}

func TestStopBuses_SortedAndDeduplicated(t *testing.T) {
	requests := []PostRequest{
		PostStopRequest{Stop: "a"},
		PostBusRequest{Bus: "Z", Stops: []string{"a", "a", "a"}},
		PostBusRequest{Bus: "A", Stops: []string{"a", "a", "a"}},
	}
	c, err := New(requests, nil)
	require.NoError(t, err)

	stop, ok := c.Stop("a")
	require.True(t, ok)
	assert.Equal(t, []string{"A", "Z"}, stop.Buses)
}

func TestBuildingTwice_YieldsIdenticalDerivedValues(t *testing.T) {
	requests := []PostRequest{
		PostStopRequest{Stop: "A", Coords: Coordinates{Latitude: 0, Longitude: 0}, Distances: map[string]int{"B": 500}},
		PostStopRequest{Stop: "B", Coords: Coordinates{Latitude: 0, Longitude: 0.01}},
		PostBusRequest{Bus: "B1", Stops: []string{"A", "B", "A"}},
	}

	c1, err := New(requests, nil)
	require.NoError(t, err)
	c2, err := New(requests, nil)
	require.NoError(t, err)

	b1, _ := c1.Bus("B1")
	b2, _ := c2.Bus("B1")
	assert.Equal(t, b1.RoadLength, b2.RoadLength)
	assert.Equal(t, b1.Curvature, b2.Curvature)
}
