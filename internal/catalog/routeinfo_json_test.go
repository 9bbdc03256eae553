package catalog

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRouteInfo_JSONRoundTrip(t *testing.T) {
	original := RouteInfo{
		Time: 11.4,
		Items: []RouteItem{
			WaitItem{Stop: "A", Time: 6},
			RoadItem{Bus: "B1", Time: 5.4, SpanCount: 2},
		},
	}

	data, err := json.Marshal(original)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"type":"Wait"`)
	assert.Contains(t, string(data), `"type":"Bus"`)

	var decoded RouteInfo
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, original, decoded)
}
