package routegraph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSource struct {
	coords map[string][2]float64
	road   map[[2]string]float64
}

func (f fakeSource) Coords(stop string) (lat, lon float64, ok bool) {
	c, ok := f.coords[stop]
	return c[0], c[1], ok
}

func (f fakeSource) RoadLeg(from, to string) (meters float64, ok bool) {
	m, ok := f.road[[2]string{from, to}]
	return m, ok
}

type fakeStopSet struct {
	names  []string
	routes map[string][]string
}

func (f fakeStopSet) StopNames() []string            { return f.names }
func (f fakeStopSet) BusRoutes() map[string][]string { return f.routes }

func TestBuild_WaitEdgePerStop(t *testing.T) {
	stops := fakeStopSet{names: []string{"A", "B"}, routes: nil}
	src := fakeSource{road: map[[2]string]float64{}}

	g := Build(stops, src, Settings{BusWaitTime: 7, BusVelocity: 40})

	require.Equal(t, 4, g.VertexCount)
	require.Len(t, g.Edges, 2)
	for _, e := range g.Edges {
		tag, ok := e.Tag.(WaitTag)
		require.True(t, ok)
		assert.Equal(t, 7.0, e.Weight)
		assert.Contains(t, []string{"A", "B"}, tag.Stop)
	}
}

func TestBuild_RoadEdgesCoverAllSpans(t *testing.T) {
	stops := fakeStopSet{
		names:  []string{"A", "B", "C"},
		routes: map[string][]string{"Bus1": {"A", "B", "C"}},
	}
	src := fakeSource{
		road: map[[2]string]float64{
			{"A", "B"}: 100,
			{"B", "C"}: 200,
		},
	}

	g := Build(stops, src, Settings{BusWaitTime: 1, BusVelocity: 60})

	var roadEdges []Edge
	for _, e := range g.Edges {
		if _, ok := e.Tag.(RoadTag); ok {
			roadEdges = append(roadEdges, e)
		}
	}
	// (A,B), (A,C), (B,C): every i<j pair along the route.
	require.Len(t, roadEdges, 3)

	spanCounts := map[int]int{}
	for _, e := range roadEdges {
		spanCounts[e.Tag.(RoadTag).SpanCount]++
	}
	assert.Equal(t, 2, spanCounts[1])
	assert.Equal(t, 1, spanCounts[2])
}

func TestBuild_DeterministicVertexAssignment(t *testing.T) {
	stops := fakeStopSet{names: []string{"Zebra", "Apple"}, routes: nil}
	src := fakeSource{}

	g1 := Build(stops, src, Settings{BusWaitTime: 1, BusVelocity: 10})
	g2 := Build(stops, src, Settings{BusWaitTime: 1, BusVelocity: 10})

	id1, _ := g1.StopID("Apple")
	id2, _ := g2.StopID("Apple")
	assert.Equal(t, 0, id1)
	assert.Equal(t, id1, id2)
}

func TestBuild_RoadEdgeFallsBackToGeoDistance(t *testing.T) {
	stops := fakeStopSet{
		names:  []string{"A", "B"},
		routes: map[string][]string{"Bus1": {"A", "B"}},
	}
	src := fakeSource{
		coords: map[string][2]float64{
			"A": {0, 0},
			"B": {0, 0.01},
		},
		road: map[[2]string]float64{},
	}

	g := Build(stops, src, Settings{BusWaitTime: 1, BusVelocity: 60})

	var found bool
	for _, e := range g.Edges {
		if tag, ok := e.Tag.(RoadTag); ok {
			found = true
			assert.Greater(t, e.Weight, 0.0)
			assert.Equal(t, 1, tag.SpanCount)
		}
	}
	assert.True(t, found)
}
