package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"transitcat/internal/catalog"
	"transitcat/internal/router"
)

func buildFacade(t *testing.T) *Facade {
	t.Helper()
	requests := []catalog.PostRequest{
		catalog.PostStopRequest{Stop: "A", Coords: catalog.Coordinates{Latitude: 0, Longitude: 0}},
		catalog.PostStopRequest{Stop: "B", Coords: catalog.Coordinates{Latitude: 0, Longitude: 0.001}},
		catalog.PostBusRequest{Bus: "Bus1", Stops: []string{"A", "B", "A"}},
	}
	c, err := catalog.New(requests, nil)
	require.NoError(t, err)
	r := router.New(c, catalog.RoutingSettings{BusWaitTime: 5, BusVelocity: 40})
	return New(c, r, nil, nil)
}

func TestGetBus_Found(t *testing.T) {
	f := buildFacade(t)
	resp := f.GetBus(1, "Bus1")
	assert.Equal(t, 1, resp.ID)
	assert.True(t, resp.Found)
	assert.Equal(t, 3, resp.StopCount)
	assert.Equal(t, 2, resp.UniqueStopCount)
}

func TestGetBus_NotFound(t *testing.T) {
	f := buildFacade(t)
	resp := f.GetBus(2, "ghost")
	assert.Equal(t, 2, resp.ID)
	assert.False(t, resp.Found)
}

func TestGetStop_Found(t *testing.T) {
	f := buildFacade(t)
	resp := f.GetStop(3, "A")
	assert.True(t, resp.Found)
	assert.Equal(t, []string{"Bus1"}, resp.Buses)
}

func TestGetRoute_Found(t *testing.T) {
	f := buildFacade(t)
	resp := f.GetRoute(4, "A", "B")
	assert.True(t, resp.Found)
	require.NotNil(t, resp.Info)
	assert.NotEmpty(t, resp.Info.Items)
}

func TestGetMap_Unsupported(t *testing.T) {
	f := buildFacade(t)
	resp := f.GetMap(5)
	assert.True(t, resp.Unsupported)
	assert.Equal(t, 5, resp.ID)
}

func TestRun_PreservesOrderAndIDs(t *testing.T) {
	f := buildFacade(t)
	requests := []Request{
		StopRequest{ID: 10, Stop: "A"},
		BusRequest{ID: 20, Bus: "ghost"},
		RouteRequest{ID: 30, From: "A", To: "B"},
	}

	responses := f.Run(requests)
	require.Len(t, responses, 3)
	assert.Equal(t, 10, responses[0].ResponseID())
	assert.Equal(t, 20, responses[1].ResponseID())
	assert.Equal(t, 30, responses[2].ResponseID())

	bus, ok := responses[1].(BusResponse)
	require.True(t, ok)
	assert.False(t, bus.Found)
}
